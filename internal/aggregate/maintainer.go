// Package aggregate keeps denormalized counters on parent rows consistent
// with their child rows. Every value is recomputed from the full child set
// inside the transaction that mutated a child; nothing is patched
// incrementally.
package aggregate

import (
	"context"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/apperr"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Definition describes one parent/child aggregate. Empty column names are
// not written.
type Definition struct {
	Name          string
	ParentTable   string
	ChildTable    string
	ParentKey     string // column in ChildTable referencing the parent id
	ValueColumn   string
	CountColumn   string
	SumColumn     string
	AverageColumn string
}

var (
	ListRatings = Definition{
		Name:          "list_ratings",
		ParentTable:   "lists",
		ChildTable:    "list_ratings",
		ParentKey:     "list_id",
		ValueColumn:   "value",
		CountColumn:   "rating_count",
		AverageColumn: "average_rating",
	}
	ReviewVotes = Definition{
		Name:        "review_votes",
		ParentTable: "reviews",
		ChildTable:  "review_votes",
		ParentKey:   "target_id",
		ValueColumn: "value",
		CountColumn: "vote_count",
		SumColumn:   "vote_score",
	}
)

// Snapshot is the freshly computed aggregate. Average is 0 when Count is 0.
type Snapshot struct {
	Count   int64
	Sum     int64
	Average float64
}

type Maintainer struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Maintainer {
	return &Maintainer{db: db}
}

// Lock takes a row lock on the parent so concurrent recomputes of the same
// parent run one after another and each sees the other's committed children.
// Callers lock before touching children. SQLite has a single writer and
// needs no row lock.
func (m *Maintainer) Lock(ctx context.Context, tx *gorm.DB, table string, id uuid.UUID) error {
	q := tx.WithContext(ctx).Table(table).Select("id").Where("id = ?", id).Limit(1)
	if strength := lockStrength(tx); strength != "" {
		q = q.Clauses(clause.Locking{Strength: strength})
	}
	var row struct{ ID string }
	res := q.Scan(&row)
	if res.Error != nil {
		return fmt.Errorf("lock %s row: %w", table, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("%s row %s not found", table, id)
	}
	return nil
}

// LockAll locks several rows of one table in ascending id order so two
// transactions locking the same pair cannot deadlock.
func (m *Maintainer) LockAll(ctx context.Context, tx *gorm.DB, table string, ids ...uuid.UUID) error {
	for _, id := range sortedUnique(ids) {
		if err := m.Lock(ctx, tx, table, id); err != nil {
			return err
		}
	}
	return nil
}

// Recompute reads COUNT/SUM/AVG over every current child of parentID and
// overwrites the parent's stored fields. It must run inside the transaction
// that changed the child so a failure rolls both back.
func (m *Maintainer) Recompute(ctx context.Context, tx *gorm.DB, def Definition, parentID uuid.UUID) (Snapshot, error) {
	if err := m.Lock(ctx, tx, def.ParentTable, parentID); err != nil {
		return Snapshot{}, err
	}

	var row struct {
		RowCount int64
		ValueSum int64
		ValueAvg float64
	}
	selectExpr := fmt.Sprintf(
		"COUNT(*) AS row_count, COALESCE(SUM(%[1]s), 0) AS value_sum, COALESCE(AVG(%[1]s * 1.0), 0) AS value_avg",
		def.ValueColumn,
	)
	err := tx.WithContext(ctx).Table(def.ChildTable).
		Select(selectExpr).
		Where(def.ParentKey+" = ?", parentID).
		Scan(&row).Error
	if err != nil {
		return Snapshot{}, fmt.Errorf("recompute %s: %w", def.Name, err)
	}

	snap := Snapshot{Count: row.RowCount, Sum: row.ValueSum}
	if snap.Count > 0 {
		snap.Average = row.ValueAvg
	}

	updates := map[string]interface{}{}
	if def.CountColumn != "" {
		updates[def.CountColumn] = snap.Count
	}
	if def.SumColumn != "" {
		updates[def.SumColumn] = snap.Sum
	}
	if def.AverageColumn != "" {
		updates[def.AverageColumn] = snap.Average
	}
	if err := tx.WithContext(ctx).Table(def.ParentTable).Where("id = ?", parentID).Updates(updates).Error; err != nil {
		return Snapshot{}, fmt.Errorf("store %s: %w", def.Name, err)
	}
	return snap, nil
}

// RecomputeListRating refreshes rating_count and average_rating on a list.
func (m *Maintainer) RecomputeListRating(ctx context.Context, tx *gorm.DB, listID uuid.UUID) (Snapshot, error) {
	return m.Recompute(ctx, tx, ListRatings, listID)
}

// RecomputeReviewScore refreshes vote_count and vote_score (upvotes minus
// downvotes) on a review.
func (m *Maintainer) RecomputeReviewScore(ctx context.Context, tx *gorm.DB, reviewID uuid.UUID) (Snapshot, error) {
	return m.Recompute(ctx, tx, ReviewVotes, reviewID)
}

func lockStrength(tx *gorm.DB) string {
	switch tx.Dialector.Name() {
	case "postgres":
		// Does not conflict with the KEY SHARE locks foreign key checks take.
		return "NO KEY UPDATE"
	case "mysql":
		return clause.LockingStrengthUpdate
	default:
		return ""
	}
}
