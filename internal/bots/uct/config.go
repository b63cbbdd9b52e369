// internal/bots/uct/config.go
package uct

const (
	BotID      = "uct"
	University = "UCT"

	DefaultBaseURL = "https://www.uct.ac.za"
)

const (
	applyPath  = "/apply"
	loginPath  = "/apply/login"
	startPath  = "/apply/start"
	detailPath = "/apply/details"
	uploadPath = "/apply/documents"
	submitPath = "/apply/submit"
)

// fieldCandidates maps payload keys to the form field names the portal has
// used across revisions; the first one present on the page wins.
var fieldCandidates = map[string][]string{
	"first_name": {"firstName", "given_name", "first_name"},
	"last_name":  {"lastName", "family_name", "last_name"},
	"email":      {"email", "emailAddress"},
	"phone":      {"phone", "mobile", "phoneNumber"},
	"id_number":  {"idNumber", "national_id", "id"},
}
