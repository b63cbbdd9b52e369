// internal/models/applicant.go
package models

// Applicant is the free-form applicant payload handed to bot adapters. The
// orchestrator never validates its shape; it only passes it through. Each
// adapter extracts the fields it needs and fails clearly when a required one
// is absent.
type Applicant map[string]interface{}

// String returns a top-level string field, or "" when absent or not a string.
func (a Applicant) String(key string) string {
	if v, ok := a[key].(string); ok {
		return v
	}
	return ""
}

// Section returns a nested object field (e.g. "personal", "academic").
func (a Applicant) Section(key string) map[string]interface{} {
	if v, ok := a[key].(map[string]interface{}); ok {
		return v
	}
	return nil
}

// StringSlice returns a top-level list of objects (e.g. program preferences).
func (a Applicant) ObjectSlice(key string) []map[string]interface{} {
	raw, ok := a[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]map[string]interface{}, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]interface{}); ok {
			out = append(out, m)
		}
	}
	return out
}

// Documents returns the document name -> file path mapping.
func (a Applicant) Documents() map[string]string {
	raw := a.Section("documents")
	if raw == nil {
		return nil
	}
	out := make(map[string]string, len(raw))
	for name, v := range raw {
		if path, ok := v.(string); ok {
			out[name] = path
		}
	}
	return out
}

// Ref returns the correlation identifier for this applicant: an explicit
// applicant_ref when present, otherwise the created email, otherwise "".
func (a Applicant) Ref() string {
	if ref := a.String("applicant_ref"); ref != "" {
		return ref
	}
	return a.String("created_email")
}
