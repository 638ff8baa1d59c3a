package aggregate

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReconcileReport counts the parents a reconcile pass rewrote.
type ReconcileReport struct {
	Lists   int
	Reviews int
	Users   int
}

// ReconcileAll recomputes every stored aggregate, one short transaction per
// parent. It repairs rows written before the maintainer existed or by hand.
func (m *Maintainer) ReconcileAll(ctx context.Context, progressEvery int) (ReconcileReport, error) {
	var report ReconcileReport
	if progressEvery <= 0 {
		progressEvery = 500
	}

	listIDs, err := m.ids(ctx, &models.List{})
	if err != nil {
		return report, err
	}
	for _, id := range listIDs {
		if err := m.inTx(ctx, func(tx *gorm.DB) error {
			_, err := m.RecomputeListRating(ctx, tx, id)
			return err
		}); err != nil {
			return report, err
		}
		report.Lists++
		if report.Lists%progressEvery == 0 {
			slog.Info("reconcile progress", "lists", report.Lists)
		}
	}

	reviewIDs, err := m.ids(ctx, &models.Review{})
	if err != nil {
		return report, err
	}
	for _, id := range reviewIDs {
		if err := m.inTx(ctx, func(tx *gorm.DB) error {
			_, err := m.RecomputeReviewScore(ctx, tx, id)
			return err
		}); err != nil {
			return report, err
		}
		report.Reviews++
	}

	userIDs, err := m.ids(ctx, &models.User{})
	if err != nil {
		return report, err
	}
	for _, id := range userIDs {
		if err := m.inTx(ctx, func(tx *gorm.DB) error {
			_, err := m.RecomputeUserXP(ctx, tx, id)
			return err
		}); err != nil {
			return report, err
		}
		report.Users++
	}

	slog.Info("reconcile completed", "lists", report.Lists, "reviews", report.Reviews, "users", report.Users)
	return report, nil
}

func (m *Maintainer) ids(ctx context.Context, model interface{}) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := m.db.WithContext(ctx).Model(model).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("load ids: %w", err)
	}
	return ids, nil
}

func (m *Maintainer) inTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return m.db.WithContext(ctx).Transaction(fn)
}

func sortedUnique(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i][:], out[j][:]) < 0
	})
	return out
}
