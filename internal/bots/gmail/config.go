// internal/bots/gmail/config.go
package gmail

const (
	BotID = "gmail"

	DefaultBaseURL = "https://accounts.google.com"
)

const (
	signupPath   = "/signup"
	namePath     = "/signup/name"
	birthdayPath = "/signup/birthdaygender"
	usernamePath = "/signup/username"
	passwordPath = "/signup/password"
)

const (
	passwordLength  = 16
	passwordCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*"
)
