// validation.go
package cogbot

import (
	"fmt"
	"sort"
	"strings"
)

func parseMode(v string) (Mode, bool) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(v))); m {
	case ModeOn, ModeOff, ModeReset:
		return m, true
	default:
		return "", false
	}
}

// ValidateDefaults checks that every category has an explicit On/Off default.
// A missing default is a configuration fault and must be rejected at startup.
func ValidateDefaults(categories []string, defaults Defaults) error {
	if len(categories) == 0 {
		return ErrNoCategories
	}
	var missing []string
	for _, cat := range categories {
		state, ok := defaults[cat]
		if !ok {
			missing = append(missing, cat)
			continue
		}
		if state != On && state != Off {
			return fmt.Errorf("%w: default for %q is %s", ErrInvalidState, cat, state)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%w: %s", ErrMissingDefault, strings.Join(missing, ", "))
	}
	return nil
}

// ParseWriteArgs validates the positional arguments of a settings write
// command: exactly a category and a mode. Both are lowercased.
func (m *Manager) ParseWriteArgs(args []string) (string, Mode, error) {
	if len(args) != 2 {
		return "", "", m.validationError(fmt.Errorf("%w: got %d", ErrArgCount, len(args)))
	}
	category := strings.ToLower(strings.TrimSpace(args[0]))
	if !m.isCategory(category) {
		return "", "", m.validationError(fmt.Errorf("%w: %q", ErrInvalidCategory, args[0]))
	}
	mode, ok := parseMode(args[1])
	if !ok {
		return "", "", m.validationError(fmt.Errorf("%w: %q", ErrInvalidMode, args[1]))
	}
	return category, mode, nil
}

func (m *Manager) validationError(err error) *ValidationError {
	return &ValidationError{
		Err:        err,
		Categories: m.Categories(),
		Modes:      append([]Mode(nil), Modes...),
	}
}

func (m *Manager) isCategory(category string) bool {
	_, ok := m.categorySet[category]
	return ok
}
