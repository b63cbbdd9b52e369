// internal/bots/uj/config.go
package uj

const (
	BotID      = "uj"
	University = "UJ"

	DefaultBaseURL = "https://student.uj.ac.za"
)

const (
	loginPath    = "/StayConnected/Anonymous/Login.aspx"
	profilePath  = "/apply/profile"
	personalPath = "/apply/personal"
	programPath  = "/apply/programme"
	addressPath  = "/apply/address"
	uploadPath   = "/apply/documents"
	paymentPath  = "/apply/payment"
	submitPath   = "/apply/submit"
)

// Documents UJ requires, in the portal's upload field names.
var requiredDocuments = []string{"id_doc", "results", "residence_proof", "affidavit"}
