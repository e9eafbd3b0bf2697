package cycle

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/zakat-tracker/backend/internal/application/adapter"
	domainerror "github.com/zakat-tracker/backend/internal/domain/error"
)

// RunLocked runs fn while holding the user's evaluation lock. A nil locker
// runs fn directly.
func RunLocked(ctx context.Context, locker adapter.UserLocker, userID uuid.UUID, fn func() error) error {
	if locker == nil {
		return fn()
	}

	unlock, err := locker.Lock(ctx, userID)
	if err != nil {
		slog.Warn("Failed to acquire user lock", "userID", userID, "error", err)
		return domainerror.NewHawlError(domainerror.ErrCodeUserBusy, "hawl evaluation is busy, retry shortly", domainerror.ErrUserBusy)
	}
	defer unlock()

	return fn()
}
