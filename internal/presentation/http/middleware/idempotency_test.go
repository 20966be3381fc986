package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopbill/shopbill-api/internal/domain/entity"
)

type memoryIdempotencyRepo struct {
	keys map[string]*entity.IdempotencyKey
}

func newMemoryIdempotencyRepo() *memoryIdempotencyRepo {
	return &memoryIdempotencyRepo{keys: make(map[string]*entity.IdempotencyKey)}
}

func (r *memoryIdempotencyRepo) GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error) {
	rec, ok := r.keys[key+"/"+userID.String()]
	if !ok {
		return nil, nil
	}
	return rec, nil
}

func (r *memoryIdempotencyRepo) Create(ctx context.Context, rec *entity.IdempotencyKey) error {
	id := rec.Key + "/" + rec.UserID.String()
	if _, exists := r.keys[id]; exists {
		return nil
	}
	r.keys[id] = rec
	return nil
}

func (r *memoryIdempotencyRepo) DeleteExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

// checkoutTestRouter wires a fake checkout endpoint behind the
// idempotency middleware. The handler counts how many times it runs.
func checkoutTestRouter(repo *memoryIdempotencyRepo, userID uuid.UUID, handlerRuns *int, status int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
	})

	mw := IdempotencyRequired(IdempotencyConfig{Repo: repo})
	handler := func(c *gin.Context) {
		*handlerRuns++
		c.JSON(status, gin.H{"runs": *handlerRuns})
	}
	router.POST("/sales", mw, handler)
	router.POST("/other", mw, handler)
	return router
}

func postWithKey(router *gin.Engine, path, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIdempotencyRequiredRejectsMissingKey(t *testing.T) {
	runs := 0
	router := checkoutTestRouter(newMemoryIdempotencyRepo(), uuid.New(), &runs, http.StatusOK)

	w := postWithKey(router, "/sales", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if runs != 0 {
		t.Errorf("handler ran %d times, want 0", runs)
	}
}

func TestIdempotencyRequiredReplaysStoredResponse(t *testing.T) {
	runs := 0
	router := checkoutTestRouter(newMemoryIdempotencyRepo(), uuid.New(), &runs, http.StatusOK)

	first := postWithKey(router, "/sales", "till-7-checkout-42")
	if first.Code != http.StatusOK {
		t.Fatalf("first status = %d, want 200", first.Code)
	}
	if runs != 1 {
		t.Fatalf("handler ran %d times, want 1", runs)
	}

	retry := postWithKey(router, "/sales", "till-7-checkout-42")
	if retry.Code != http.StatusOK {
		t.Errorf("retry status = %d, want 200", retry.Code)
	}
	if runs != 1 {
		t.Errorf("retry re-ran the handler: %d runs, want 1", runs)
	}
	if retry.Header().Get(ReplayedHeader) != "true" {
		t.Error("retry should be marked as replayed")
	}
	if retry.Body.String() != first.Body.String() {
		t.Errorf("retry body = %q, want the original %q", retry.Body.String(), first.Body.String())
	}
}

func TestIdempotencyKeyScopedPerUser(t *testing.T) {
	repo := newMemoryIdempotencyRepo()
	runsA, runsB := 0, 0
	routerA := checkoutTestRouter(repo, uuid.New(), &runsA, http.StatusOK)
	routerB := checkoutTestRouter(repo, uuid.New(), &runsB, http.StatusOK)

	postWithKey(routerA, "/sales", "shared-key")
	postWithKey(routerB, "/sales", "shared-key")

	if runsA != 1 || runsB != 1 {
		t.Errorf("runs = %d/%d, want 1/1: another user's key must not replay", runsA, runsB)
	}
}

func TestIdempotencyKeyReuseAcrossEndpointsConflicts(t *testing.T) {
	runs := 0
	router := checkoutTestRouter(newMemoryIdempotencyRepo(), uuid.New(), &runs, http.StatusOK)

	postWithKey(router, "/sales", "till-7-checkout-42")
	w := postWithKey(router, "/other", "till-7-checkout-42")

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
	if runs != 1 {
		t.Errorf("handler ran %d times, want 1", runs)
	}
}

func TestIdempotencyDoesNotStoreFailedResponses(t *testing.T) {
	runs := 0
	router := checkoutTestRouter(newMemoryIdempotencyRepo(), uuid.New(), &runs, http.StatusConflict)

	postWithKey(router, "/sales", "till-7-checkout-42")
	postWithKey(router, "/sales", "till-7-checkout-42")

	// A failed checkout must not replay; the retry runs for real.
	if runs != 2 {
		t.Errorf("handler ran %d times, want 2", runs)
	}
}
