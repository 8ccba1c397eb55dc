package booking

import "github.com/google/uuid"

// canonicalID returns id in the hyphenated lower-case form. uuid.Parse also accepts the
// urn, braced and unhyphenated forms, which Postgres rejects as uuid input.
func canonicalID(id string) (string, bool) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}
