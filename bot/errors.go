package bot

import (
	"errors"
	"fmt"
	"time"

	"github.com/CreativeUnicorns/cogbot/format"
)

var (
	// ErrMissingPermissions is returned when the author lacks a required permission.
	ErrMissingPermissions = errors.New("missing permissions")
	// ErrGuildOnly is returned when a guild command is used in a direct message.
	ErrGuildOnly = errors.New("command can only be used in a server")
)

// CooldownError is returned when a command is used again inside its cooldown window.
type CooldownError struct {
	Command    string
	RetryAfter time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("command %q is on cooldown, retry in %s", e.Command, format.Wait(e.RetryAfter))
}

// CategoryDisabledError is returned when a gated command's category resolves
// to Off for the channel.
type CategoryDisabledError struct {
	Category string
}

func (e *CategoryDisabledError) Error() string {
	return fmt.Sprintf("category %q is disabled in this context", e.Category)
}
