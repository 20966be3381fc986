package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopbill/shopbill-api/internal/domain/entity"
)

// IdempotencyRepository stores the responses of processed checkout
// requests so a retried Idempotency-Key replays instead of re-running.
type IdempotencyRepository interface {
	// GetByKey returns the stored record for a key, scoped to the user
	// who sent it, or nil when the key has not been seen.
	GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error)
	// Create stores the response for a processed key.
	Create(ctx context.Context, rec *entity.IdempotencyKey) error
	// DeleteExpired purges keys past their expiry and reports how many
	// were removed.
	DeleteExpired(ctx context.Context) (int64, error)
}
