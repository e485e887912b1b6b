// Package profile reads the user context the coaching prompt needs: display
// name and the most recent wellbeing snapshot. Profile management itself is
// another subsystem; this is a read-only view, cached briefly.
package profile

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/balanshq/balans/pkg/apis/cache"
	v1 "github.com/balanshq/balans/pkg/apis/coaching/v1"
	"github.com/balanshq/balans/pkg/db"
	"github.com/balanshq/balans/pkg/db/models"
)

const summaryCacheTTL = 5 * time.Minute

type Provider struct {
	dbc   *db.DB
	cache cache.Cache
}

// New builds a provider. cacheClient may be nil, in which case every lookup
// hits the database.
func New(dbc *db.DB, cacheClient cache.Cache) *Provider {
	return &Provider{dbc: dbc, cache: cacheClient}
}

// Summary returns the coaching-facing view of a user. A user with no profile
// row and no snapshots yields an empty summary, not an error.
func (p *Provider) Summary(ctx context.Context, userID string) (*v1.ProfileSummary, error) {
	cacheKey := "profile-summary~" + userID

	if p.cache != nil {
		if raw, err := p.cache.Get(cacheKey); err == nil && len(raw) > 0 {
			var summary v1.ProfileSummary
			if err := json.Unmarshal(raw, &summary); err == nil {
				return &summary, nil
			}
		}
	}

	summary := &v1.ProfileSummary{}

	var prof models.UserProfile
	res := p.dbc.DB.WithContext(ctx).First(&prof, "user_id = ?", userID)
	if res.Error == nil {
		summary.DisplayName = prof.DisplayName
	} else if !errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, res.Error
	}

	var snapshot models.WellbeingSnapshot
	res = p.dbc.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&snapshot)
	if res.Error == nil {
		summary.Wellbeing = &v1.WellbeingSummary{
			Score:      snapshot.Score,
			Note:       snapshot.Note,
			RecordedAt: snapshot.CreatedAt,
		}
	} else if !errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, res.Error
	}

	if p.cache != nil {
		if raw, err := json.Marshal(summary); err == nil {
			if err := p.cache.Set(cacheKey, raw, summaryCacheTTL); err != nil {
				log.WithError(err).Warn("could not cache profile summary")
			}
		}
	}

	return summary, nil
}
