// Package commitments owns the micro-commitment lifecycle: creation with a
// 14-day follow-up date, due-follow-up selection, resurfacing, completion,
// dismissal, statistics, and the out-of-band expiry sweep.
package commitments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	v1 "github.com/balanshq/balans/pkg/apis/coaching/v1"
	"github.com/balanshq/balans/pkg/db"
	"github.com/balanshq/balans/pkg/db/models"
)

// ErrNotFound covers a commitment that does not exist, belongs to someone
// else, or is no longer active. Terminal states are final, so an operation
// against a non-active commitment is indistinguishable from a missing one.
var ErrNotFound = errors.New("commitment not found")

// ErrInvalidRating rejects helpfulness ratings outside 1-5.
var ErrInvalidRating = errors.New("rating must be between 1 and 5")

type Store struct {
	dbc *db.DB

	followUp      time.Duration
	followUpDefer time.Duration
}

// New builds a store where new commitments come due after followUpDays and
// resurfaced ones are deferred by deferDays.
func New(dbc *db.DB, followUpDays, deferDays int) *Store {
	return &Store{
		dbc:           dbc,
		followUp:      time.Duration(followUpDays) * 24 * time.Hour,
		followUpDefer: time.Duration(deferDays) * 24 * time.Hour,
	}
}

// Create stores an extracted commitment as active with its first follow-up
// date in the future.
func (s *Store) Create(ctx context.Context, userID string, conversationID uuid.UUID, ext v1.ExtractedCommitment, topic string) (*models.Commitment, error) {
	cm := models.Commitment{
		UserID:         userID,
		ConversationID: conversationID,
		Action:         ext.Action,
		Reflection:     ext.Reflection,
		Rationale:      ext.Rationale,
		Topic:          topic,
		Status:         models.CommitmentStatusActive,
		FollowUpDate:   time.Now().UTC().Add(s.followUp),
	}
	if err := s.dbc.DB.WithContext(ctx).Create(&cm).Error; err != nil {
		return nil, errors.Wrap(err, "could not create commitment")
	}
	return &cm, nil
}

// DueFollowups returns the user's active commitments whose follow-up date
// has passed, oldest due first. The query is read-only: calling it twice
// without an intervening RecordFollowup returns the same set.
func (s *Store) DueFollowups(ctx context.Context, userID string) ([]models.Commitment, error) {
	var due []models.Commitment
	err := s.dbc.DB.WithContext(ctx).
		Where("user_id = ? AND status = ? AND follow_up_date <= ?", userID, models.CommitmentStatusActive, time.Now().UTC()).
		Order("follow_up_date ASC").
		Find(&due).Error
	return due, err
}

// RecordFollowup marks a commitment as resurfaced: the follow-up counter is
// incremented and the follow-up date pushed forward so it does not
// immediately re-trigger on the next turn.
func (s *Store) RecordFollowup(ctx context.Context, id uuid.UUID) error {
	now := time.Now().UTC()
	res := s.dbc.DB.WithContext(ctx).Model(&models.Commitment{}).
		Where("id = ? AND status = ?", id, models.CommitmentStatusActive).
		Updates(map[string]interface{}{
			"follow_up_count":   gorm.Expr("follow_up_count + 1"),
			"follow_up_date":    now.Add(s.followUpDefer),
			"last_follow_up_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Complete transitions an active commitment to completed with an optional
// reflection and 1-5 helpfulness rating.
func (s *Store) Complete(ctx context.Context, id uuid.UUID, userID, reflection string, rating *int) error {
	if rating != nil && (*rating < 1 || *rating > 5) {
		return ErrInvalidRating
	}

	values := map[string]interface{}{
		"status":       models.CommitmentStatusCompleted,
		"completed_at": time.Now().UTC(),
	}
	if reflection != "" {
		values["completion_reflection"] = reflection
	}
	if rating != nil {
		values["rating"] = *rating
	}

	return s.transition(ctx, id, userID, values)
}

// Dismiss transitions an active commitment to dismissed.
func (s *Store) Dismiss(ctx context.Context, id uuid.UUID, userID string) error {
	return s.transition(ctx, id, userID, map[string]interface{}{
		"status": models.CommitmentStatusDismissed,
	})
}

// ListActive returns the user's active commitments, soonest follow-up first.
func (s *Store) ListActive(ctx context.Context, userID string) ([]models.Commitment, error) {
	var active []models.Commitment
	err := s.dbc.DB.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.CommitmentStatusActive).
		Order("follow_up_date ASC").
		Find(&active).Error
	return active, err
}

// Statistics summarizes the user's commitment history: counts by status,
// completion rate, and the mean helpfulness rating.
func (s *Store) Statistics(ctx context.Context, userID string) (*v1.CommitmentStatistics, error) {
	type statusCount struct {
		Status models.CommitmentStatus
		N      int64
	}

	var rows []statusCount
	err := s.dbc.DB.WithContext(ctx).Model(&models.Commitment{}).
		Select("status, count(*) as n").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := map[models.CommitmentStatus]int64{}
	for _, r := range rows {
		counts[r.Status] = r.N
	}

	var ratings []float64
	err = s.dbc.DB.WithContext(ctx).Model(&models.Commitment{}).
		Where("user_id = ? AND rating IS NOT NULL", userID).
		Pluck("rating", &ratings).Error
	if err != nil {
		return nil, err
	}

	return ComputeStatistics(counts, ratings), nil
}

// ComputeStatistics derives the statistics payload from raw counts and
// ratings. Completion rate is completed over all ever created.
func ComputeStatistics(counts map[models.CommitmentStatus]int64, ratings []float64) *v1.CommitmentStatistics {
	st := &v1.CommitmentStatistics{
		Active:    counts[models.CommitmentStatusActive],
		Completed: counts[models.CommitmentStatusCompleted],
		Dismissed: counts[models.CommitmentStatusDismissed],
		Expired:   counts[models.CommitmentStatusExpired],
	}
	st.Total = st.Active + st.Completed + st.Dismissed + st.Expired

	if st.Total > 0 {
		st.CompletionRate = float64(st.Completed) / float64(st.Total)
	}
	if len(ratings) > 0 {
		if mean, err := stats.Mean(ratings); err == nil {
			st.AverageRating = mean
		}
	}

	return st
}

// ExpireOlderThan moves active commitments created more than the given
// number of days ago to expired, returning how many were swept. This is
// out-of-band maintenance, not part of the per-turn path.
func (s *Store) ExpireOlderThan(ctx context.Context, days int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	res := s.dbc.DB.WithContext(ctx).Model(&models.Commitment{}).
		Where("status = ? AND created_at < ?", models.CommitmentStatusActive, cutoff).
		Update("status", models.CommitmentStatusExpired)
	return res.RowsAffected, res.Error
}

func (s *Store) transition(ctx context.Context, id uuid.UUID, userID string, values map[string]interface{}) error {
	res := s.dbc.DB.WithContext(ctx).Model(&models.Commitment{}).
		Where("id = ? AND user_id = ? AND status = ?", id, userID, models.CommitmentStatusActive).
		Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
