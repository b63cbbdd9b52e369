// internal/bots/nsfas/config.go
package nsfas

const (
	BotID  = "nsfas"
	Scheme = "NSFAS"

	DefaultBaseURL = "https://my.nsfas.org.za"
)

const (
	portalPath      = "/"
	registerPath    = "/register"
	loginPath       = "/login"
	profilePath     = "/apply/profile"
	householdPath   = "/apply/household"
	institutionPath = "/apply/institution"
	uploadPath      = "/apply/documents"
	declarationPath = "/apply/declaration"
)

// Means-test documents NSFAS requires, in the portal's field names.
var requiredDocuments = []string{"id_doc", "proof_income", "consent_form", "academic_record"}
