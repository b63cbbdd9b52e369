// internal/bots/gmail/models.go
package gmail

// Credentials are the generated account details. They end up in the run
// artifact and in a credentials file under the snapshot dir so downstream
// university bots can use the created address.
type Credentials struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	BirthDay   int    `json:"birth_day"`
	BirthMonth int    `json:"birth_month"`
	BirthYear  int    `json:"birth_year"`
	Gender     string `json:"gender"`
}

type Output struct {
	Success     bool        `json:"success"`
	Email       string      `json:"email,omitempty"`
	Credentials Credentials `json:"credentials"`
	Message     string      `json:"message"`
	Timestamp   string      `json:"timestamp"`
	Snapshots   []string    `json:"snapshots"`
}
