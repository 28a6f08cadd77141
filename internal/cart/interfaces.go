package cart

import "context"

// Repository stores one cart per shopper session. Saving an empty cart
// removes the stored entry.
type Repository interface {
	Load(ctx context.Context, sessionID string) (State, error)
	Save(ctx context.Context, sessionID string, state State) error
}

type commandRecorder interface {
	IncCartCommand(command, outcome string)
}
