package votes

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tally is the live vote count of one target.
type Tally struct {
	Up   int64 `json:"upvotes"`
	Down int64 `json:"downvotes"`
}

func (t Tally) Score() int64 {
	return t.Up - t.Down
}

func (t Tally) Total() int64 {
	return t.Up + t.Down
}

// Tallies counts current votes for each target in one grouped query.
// Targets without votes are absent from the map.
func Tallies(ctx context.Context, db *gorm.DB, table string, targetIDs []uuid.UUID) (map[uuid.UUID]Tally, error) {
	out := make(map[uuid.UUID]Tally, len(targetIDs))
	if len(targetIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		TargetID uuid.UUID
		Up       int64
		Down     int64
	}
	err := db.WithContext(ctx).Table(table).
		Select("target_id, SUM(CASE WHEN value > 0 THEN 1 ELSE 0 END) AS up, SUM(CASE WHEN value < 0 THEN 1 ELSE 0 END) AS down").
		Where("target_id IN ?", targetIDs).
		Group("target_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("tally %s: %w", table, err)
	}
	for _, r := range rows {
		out[r.TargetID] = Tally{Up: r.Up, Down: r.Down}
	}
	return out, nil
}

// UserVotes returns actor's vote value per target; targets the actor has not
// voted on are absent.
func UserVotes(ctx context.Context, db *gorm.DB, table string, actor uuid.UUID, targetIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	out := make(map[uuid.UUID]int)
	if actor == uuid.Nil || len(targetIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		TargetID uuid.UUID
		Value    int
	}
	err := db.WithContext(ctx).Table(table).
		Select("target_id, value").
		Where("user_id = ? AND target_id IN ?", actor, targetIDs).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load %s user votes: %w", table, err)
	}
	for _, r := range rows {
		out[r.TargetID] = r.Value
	}
	return out, nil
}

// TallyOf counts the votes of a single target.
func (l *Ledger) TallyOf(ctx context.Context, targetID uuid.UUID) (Tally, error) {
	tallies, err := Tallies(ctx, l.db, l.kind.Table, []uuid.UUID{targetID})
	if err != nil {
		return Tally{}, err
	}
	return tallies[targetID], nil
}
