// pkg/registry/schema.go
package registry

// BotManifest is the static metadata catalogue behind GET /bots. It describes
// every bot the deployment knows about, including disabled ones; the runtime
// adapter registry decides which actually execute.
type BotManifest struct {
	Version     string `json:"version"`
	LastUpdated string `json:"lastUpdated"`
	Bots        []Bot  `json:"bots"`
}

type Bot struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"displayName"`
	Description string   `json:"description"`
	Institution string   `json:"institution"`
	PortalURL   string   `json:"portalUrl"`
	Category    string   `json:"category"` // university, bursary, account
	Status      string   `json:"status"`   // active, disabled, experimental
	ErrorCodes  []string `json:"errorCodes"`
	Tags        []string `json:"tags"`
}
