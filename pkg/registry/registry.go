// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"os"
)

func LoadManifest(path string) (*BotManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var manifest BotManifest
	err = json.Unmarshal(data, &manifest)
	return &manifest, err
}

// Find returns the manifest entry for a bot id.
func (m *BotManifest) Find(id string) (Bot, bool) {
	for _, bot := range m.Bots {
		if bot.ID == id {
			return bot, true
		}
	}
	return Bot{}, false
}
