package availabilityzone

import (
	"errors"
	"fmt"
	"strings"
)

// MaxNameLength matches the width of the availability_zone column.
const MaxNameLength = 255

var ErrInvalidZoneName = errors.New("invalid availability zone name")

// ValidateName accepts the empty name (no zone) and otherwise requires a trimmed,
// comma-free name no longer than MaxNameLength.
func ValidateName(name string) error {
	if name == "" {
		return nil
	}
	if strings.TrimSpace(name) != name {
		return fmt.Errorf("%w: %q has surrounding whitespace", ErrInvalidZoneName, name)
	}
	if strings.Contains(name, ",") {
		return fmt.Errorf("%w: %q contains a comma", ErrInvalidZoneName, name)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: longer than %d characters", ErrInvalidZoneName, MaxNameLength)
	}
	return nil
}

// ParseHints splits the stored comma-joined form of a zone hint list.
// Blank entries are dropped and duplicates keep their first position.
func ParseHints(s string) ([]string, error) {
	hints := []string{}
	seen := make(map[string]bool)
	for _, part := range strings.Split(s, ",") {
		name := strings.TrimSpace(part)
		if name == "" || seen[name] {
			continue
		}
		if err := ValidateName(name); err != nil {
			return nil, err
		}
		seen[name] = true
		hints = append(hints, name)
	}
	return hints, nil
}

// FormatHints is the inverse of ParseHints.
func FormatHints(hints []string) (string, error) {
	out := make([]string, 0, len(hints))
	seen := make(map[string]bool, len(hints))
	for _, name := range hints {
		if name == "" || seen[name] {
			continue
		}
		if err := ValidateName(name); err != nil {
			return "", err
		}
		seen[name] = true
		out = append(out, name)
	}
	return strings.Join(out, ","), nil
}
