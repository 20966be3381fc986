package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopbill/shopbill-api/internal/domain/entity"
	"github.com/shopbill/shopbill-api/internal/domain/repository"
	"github.com/shopbill/shopbill-api/internal/presentation/http/dto/response"
)

// IdempotencyKeyHeader carries the client-chosen key for a checkout.
const IdempotencyKeyHeader = "Idempotency-Key"

// ReplayedHeader marks a response served from the key store rather
// than by running the handler again.
const ReplayedHeader = "X-Idempotency-Replayed"

const defaultIdempotencyTTL = 24 * time.Hour

// IdempotencyConfig wires the middleware to its key store.
type IdempotencyConfig struct {
	Repo repository.IdempotencyRepository
	// TTL is how long a processed key keeps replaying its response.
	// Zero means 24 hours, comfortably past any POS retry window.
	TTL time.Duration
}

// bodyRecorder tees the response body so a successful checkout can be
// stored against its idempotency key.
type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyRequired rejects requests without an Idempotency-Key and
// replays the stored response when the same key arrives again, so a
// cashier retrying a timed-out checkout can never record the sale or
// deduct the stock twice. Keys are scoped per user, and a key reused
// on a different endpoint is a conflict rather than a replay.
func IdempotencyRequired(config IdempotencyConfig) gin.HandlerFunc {
	ttl := config.TTL
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			response.BadRequest(c, "Idempotency-Key header is required for this request")
			c.Abort()
			return
		}

		userIDValue, exists := c.Get("user_id")
		if !exists {
			response.Unauthorized(c, "User not authenticated")
			c.Abort()
			return
		}
		userID, ok := userIDValue.(uuid.UUID)
		if !ok {
			response.Unauthorized(c, "Invalid user ID")
			c.Abort()
			return
		}

		endpoint := c.Request.Method + " " + c.FullPath()

		existing, err := config.Repo.GetByKey(c.Request.Context(), key, userID)
		if err != nil {
			response.InternalServerError(c, "Failed to check idempotency key")
			c.Abort()
			return
		}
		if existing != nil && !existing.IsExpired() {
			if existing.Endpoint != endpoint {
				response.ErrorWithCode(c, http.StatusConflict,
					"Idempotency-Key was already used for a different request")
				c.Abort()
				return
			}
			c.Header(ReplayedHeader, "true")
			c.Data(existing.ResponseCode, "application/json", []byte(existing.ResponseBody))
			c.Abort()
			return
		}

		rec := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = rec

		c.Next()

		// Only successful responses replay; a failed checkout may be
		// retried with the same key and run for real.
		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}

		_ = config.Repo.Create(c.Request.Context(), &entity.IdempotencyKey{
			Key:          key,
			UserID:       userID,
			Endpoint:     endpoint,
			ResponseCode: status,
			ResponseBody: rec.body.String(),
			ExpiresAt:    time.Now().Add(ttl),
		})
	}
}
