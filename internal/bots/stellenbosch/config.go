// internal/bots/stellenbosch/config.go
package stellenbosch

const (
	BotID      = "stellenbosch"
	University = "Stellenbosch"

	DefaultBaseURL = "https://www.maties.com"
)

// Portal paths, relative to the configured base URL.
const (
	applyPath    = "/apply"
	profilePath  = "/apply/profile"
	personalPath = "/apply/personal"
	academicPath = "/apply/academic"
	programsPath = "/apply/programs"
	uploadPath   = "/apply/documents"
	paymentPath  = "/apply/payment"
	submitPath   = "/apply/submit"
)
