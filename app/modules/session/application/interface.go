package sessionservice

import (
	"context"
	"encoding/json"

	sessiondomain "github.com/Black-And-White-Club/truthtable/app/modules/session/domain"
)

// Service manages the facilitator's session configuration.
type Service interface {
	GetConfig(ctx context.Context, key string) (*sessiondomain.Entry, error)
	SetConfig(ctx context.Context, key string, value json.RawMessage) (*sessiondomain.Entry, error)
	ListConfig(ctx context.Context) ([]sessiondomain.Entry, error)

	// MaxTeams falls back to teamdomain.MaxTeams when unset.
	MaxTeams(ctx context.Context) (int, error)
	// GameActive is false until a reset starts a game.
	GameActive(ctx context.Context) (bool, error)
}
