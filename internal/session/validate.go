package session

import (
	"fmt"
	"regexp"
)

// Session names become directory entries under the data dir, so the
// accepted alphabet is kept narrow.
var namePattern = regexp.MustCompile(`^[a-z0-9_-]{1,64}$`)

// ValidateName checks that name is usable as a session name: lowercase
// letters, digits, hyphen and underscore, 1 to 64 characters.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("invalid session name %q: allowed are a-z, 0-9, '-' and '_', up to 64 characters", name)
	}
	return nil
}
