package shared

import (
	"strconv"
	"strings"
)

// ParseID parses a decimal identifier coming from a path or query string.
// Empty, non-numeric and non-positive values are rejected with ErrInvalidID.
func ParseID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, NewDomainError("shared", "ParseID", ErrInvalidID, "identifier is empty")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, WrapError("shared", "ParseID", ErrInvalidID, "identifier is not a number", err)
	}
	if id <= 0 {
		return 0, NewDomainError("shared", "ParseID", ErrInvalidID, "identifier must be positive")
	}
	return id, nil
}

// GithubID is a GitHub login used to look up task owners.
type GithubID string

// Normalize returns the login without surrounding whitespace.
func (g GithubID) Normalize() GithubID {
	return GithubID(strings.TrimSpace(string(g)))
}

// IsValid reports whether the login is non-empty after trimming.
func (g GithubID) IsValid() bool {
	return g.Normalize() != ""
}

// String returns the string representation.
func (g GithubID) String() string {
	return string(g)
}
