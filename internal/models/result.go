// internal/models/result.go
package models

import "encoding/json"

// AsPayload converts a bot's typed output struct into the opaque payload map
// recorded in the run artifact, via its JSON representation, so the recorded
// shape matches what the bot would serialize itself.
func AsPayload(output interface{}) map[string]interface{} {
	data, err := json.Marshal(output)
	if err != nil {
		return map[string]interface{}{}
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return map[string]interface{}{}
	}
	return out
}
