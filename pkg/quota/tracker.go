// Package quota tracks the per-user daily exchange counter. The day boundary
// is the UTC date, applied lazily on both the check and the increment path
// rather than by a scheduled job; both paths share the same rule.
package quota

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/balanshq/balans/pkg/db"
	"github.com/balanshq/balans/pkg/db/models"
)

// DefaultDailyLimit is the number of coaching exchanges per UTC day.
const DefaultDailyLimit = 15

type Tracker struct {
	dbc   *db.DB
	limit int
}

func New(dbc *db.DB, limit int) *Tracker {
	if limit <= 0 {
		limit = DefaultDailyLimit
	}
	return &Tracker{dbc: dbc, limit: limit}
}

// CheckAllowed reports whether the user has budget left today. A counter
// last reset before the current UTC date counts as zero.
func (t *Tracker) CheckAllowed(ctx context.Context, userID string) (bool, error) {
	var qc models.QuotaCounter
	res := t.dbc.DB.WithContext(ctx).First(&qc, "user_id = ?", userID)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return true, nil
		}
		return false, res.Error
	}

	return EffectiveCount(&qc, time.Now().UTC()) < t.limit, nil
}

// Increment consumes one exchange, applying the same lazy reset rule as
// CheckAllowed. Called only after a turn reaches a definitive outcome.
func (t *Tracker) Increment(ctx context.Context, userID string) error {
	now := time.Now().UTC()

	var qc models.QuotaCounter
	res := t.dbc.DB.WithContext(ctx).First(&qc, "user_id = ?", userID)
	if res.Error != nil {
		if !errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return res.Error
		}
		qc = models.QuotaCounter{UserID: userID}
	}

	qc.Count = EffectiveCount(&qc, now) + 1
	qc.LastResetAt = now

	return t.dbc.DB.WithContext(ctx).Save(&qc).Error
}

// EffectiveCount returns the count the counter represents at the given time:
// the stored count if the counter was last reset today (UTC), zero otherwise.
func EffectiveCount(qc *models.QuotaCounter, now time.Time) int {
	if SameUTCDay(qc.LastResetAt, now) {
		return qc.Count
	}
	return 0
}

// SameUTCDay reports whether a and b fall on the same UTC calendar date.
func SameUTCDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
