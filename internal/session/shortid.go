package session

import (
	"fmt"
	"strings"
)

// MinShortIDLength is the minimum prefix length accepted when referring to
// a session by short ID. Six characters balances typing effort against
// collision risk across a device's session history.
const MinShortIDLength = 6

// NotFoundError indicates no session matched the short ID.
type NotFoundError struct {
	ShortID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no sessions found matching '%s'", e.ShortID)
}

// AmbiguousError indicates multiple sessions matched the short ID.
type AmbiguousError struct {
	ShortID string
	Matches []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous short ID '%s' matches %d sessions", e.ShortID, len(e.Matches))
}

// IsNotFoundError checks if an error is a NotFoundError.
func IsNotFoundError(err error) bool {
	_, ok := err.(*NotFoundError)
	return ok
}

// ResolveID resolves a session short ID prefix to a full UUID. A full UUID
// is verified to exist and returned as-is; a prefix must match exactly one
// stored session.
func (m *Manager) ResolveID(shortID string) (string, error) {
	if len(shortID) == 36 && strings.Count(shortID, "-") == 4 {
		if _, err := m.Load(shortID); err != nil {
			return "", fmt.Errorf("session not found: %s", shortID)
		}
		return shortID, nil
	}

	if len(shortID) < MinShortIDLength {
		return "", fmt.Errorf("short ID must be at least %d characters (got %d)", MinShortIDLength, len(shortID))
	}

	ids, err := m.List()
	if err != nil {
		return "", fmt.Errorf("failed to search for session: %w", err)
	}
	var matches []string
	for _, id := range ids {
		if strings.HasPrefix(id, shortID) {
			matches = append(matches, id)
		}
	}

	switch len(matches) {
	case 0:
		return "", &NotFoundError{ShortID: shortID}
	case 1:
		return matches[0], nil
	default:
		return "", &AmbiguousError{ShortID: shortID, Matches: matches}
	}
}
