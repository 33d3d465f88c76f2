package command

import (
	"context"

	"github.com/teslashibe/go-wastesort/internal/log"
)

// Discard logs commands without sending them. Used for dry runs.
type Discard struct{}

// Send logs cmd and returns nil.
func (Discard) Send(ctx context.Context, cmd Command) error {
	log.Component("command").Info("dry-run command", "command", cmd)
	return nil
}
