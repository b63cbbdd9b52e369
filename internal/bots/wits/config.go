// internal/bots/wits/config.go
package wits

const (
	BotID      = "wits"
	University = "Wits"

	DefaultBaseURL = "https://www.wits.ac.za"
)

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
