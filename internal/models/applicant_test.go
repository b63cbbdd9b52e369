package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplicantAccessors(t *testing.T) {
	a := Applicant{
		"applicant_ref": "ref-1",
		"created_email": "testuser@gmail.com",
		"personal": map[string]interface{}{
			"first_name": "Test",
		},
		"documents": map[string]interface{}{
			"id_doc":  "/tmp/id.pdf",
			"invalid": 42,
		},
		"program_preferences": []interface{}{
			map[string]interface{}{"faculty": "Science"},
			"not-an-object",
		},
	}

	assert.Equal(t, "ref-1", a.String("applicant_ref"))
	assert.Empty(t, a.String("missing"))

	assert.Equal(t, "Test", a.Section("personal")["first_name"])
	assert.Nil(t, a.Section("missing"))

	docs := a.Documents()
	assert.Equal(t, map[string]string{"id_doc": "/tmp/id.pdf"}, docs, "non-string entries are dropped")

	prefs := a.ObjectSlice("program_preferences")
	assert.Len(t, prefs, 1)
	assert.Equal(t, "Science", prefs[0]["faculty"])
}

func TestApplicantRef(t *testing.T) {
	assert.Equal(t, "explicit", Applicant{
		"applicant_ref": "explicit",
		"created_email": "fallback@gmail.com",
	}.Ref())

	assert.Equal(t, "fallback@gmail.com", Applicant{
		"created_email": "fallback@gmail.com",
	}.Ref())

	assert.Empty(t, Applicant{}.Ref())
}

func TestAsPayload(t *testing.T) {
	type output struct {
		Success bool   `json:"success"`
		Ref     string `json:"reference,omitempty"`
	}

	payload := AsPayload(output{Success: true, Ref: "R-1"})
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, "R-1", payload["reference"])

	empty := AsPayload(output{Success: false})
	_, present := empty["reference"]
	assert.False(t, present)
}
