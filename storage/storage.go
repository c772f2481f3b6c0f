// Package storage provides the cache persistence backends used by cogbot.
//
// Every backend stores one opaque blob per cache name and implements
// cogbot.Storage: Read returns cogbot.ErrNotFound for an unknown name and
// Write replaces the blob wholesale.
package storage

import (
	"fmt"
	"regexp"

	"github.com/CreativeUnicorns/cogbot"
)

var validName = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// checkName rejects cache names that could escape a directory or key prefix.
func checkName(name string) error {
	if !validName.MatchString(name) || name == "." || name == ".." {
		return fmt.Errorf("%w: cache name %q", cogbot.ErrInvalidInput, name)
	}
	return nil
}
