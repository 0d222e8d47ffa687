package token

import "strings"

const (
	minAccountIDLength = 2
	maxAccountIDLength = 64
)

// ValidAccountID reports whether the identifier is a syntactically valid
// account id: 2..64 characters, lowercase alphanumeric parts joined by a
// single '.', '_' or '-', never starting or ending with a separator.
func ValidAccountID(id string) bool {
	if len(id) < minAccountIDLength || len(id) > maxAccountIDLength {
		return false
	}
	lastWasSeparator := true
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			lastWasSeparator = false
		case c == '.' || c == '_' || c == '-':
			if lastWasSeparator {
				return false
			}
			lastWasSeparator = true
		default:
			return false
		}
	}
	return !lastWasSeparator
}

func validateAccountID(id string) (string, error) {
	trimmed := strings.TrimSpace(id)
	if !ValidAccountID(trimmed) {
		return "", ErrInvalidAccountID
	}
	return trimmed, nil
}
