// Package votes implements the toggle/flip/remove voting primitive shared by
// every votable target. A score is never stored by the ledger itself; kinds
// that keep a denormalized score recompute it in AfterChange.
package votes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Result string

const (
	Inserted Result = "inserted"
	Removed  Result = "removed"
	Flipped  Result = "flipped"
)

const (
	Up   = 1
	Down = -1
)

// Target is anything that can be voted on.
type Target interface {
	TargetID() uuid.UUID
	OwnerID() uuid.UUID
}

// Change describes what a vote submission did to the actor's vote row.
// Value is 0 after a removal.
type Change struct {
	Result   Result
	Previous int
	Value    int
}

// Kind binds the ledger to one vote table and its target type.
type Kind struct {
	Name  string
	Table string

	// Load returns the target, locking its row when the store supports it.
	// A missing target must be reported as apperr.NotFound.
	Load func(ctx context.Context, tx *gorm.DB, targetID uuid.UUID) (Target, error)

	// Authorize checks the actor against the target's owning resource.
	Authorize func(ctx context.Context, tx *gorm.DB, actor uuid.UUID, target Target) error

	// AfterChange runs in the same transaction once the vote row changed.
	AfterChange func(ctx context.Context, tx *gorm.DB, actor uuid.UUID, target Target, change Change) error
}

// Outcome is returned by SubmitVote.
type Outcome struct {
	Change
	Target Target
}

type Ledger struct {
	db   *gorm.DB
	kind Kind
	now  func() time.Time
}

func NewLedger(db *gorm.DB, kind Kind) *Ledger {
	return &Ledger{db: db, kind: kind, now: time.Now}
}

type voteRow struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	UserID    uuid.UUID `gorm:"type:char(36)"`
	TargetID  uuid.UUID `gorm:"type:char(36)"`
	Value     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SubmitVote applies the per-(actor, target) state machine:
// no vote inserts, the same value removes, the other value flips.
func (l *Ledger) SubmitVote(ctx context.Context, actor, targetID uuid.UUID, value int) (Outcome, error) {
	if value != Up && value != Down {
		return Outcome{}, apperr.Invalid("vote value must be 1 or -1")
	}
	if actor == uuid.Nil {
		return Outcome{}, apperr.Forbidden("sign in to vote")
	}

	var out Outcome
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		target, err := l.kind.Load(ctx, tx, targetID)
		if err != nil {
			return err
		}
		if target.OwnerID() == actor {
			return apperr.Invalid("cannot vote on your own %s", l.kind.Name)
		}
		if err := access.NewResolver(tx).ActiveActor(ctx, actor); err != nil {
			return err
		}
		if l.kind.Authorize != nil {
			if err := l.kind.Authorize(ctx, tx, actor, target); err != nil {
				return err
			}
		}

		change, err := l.apply(ctx, tx, actor, targetID, value)
		if err != nil {
			return err
		}
		if l.kind.AfterChange != nil {
			if err := l.kind.AfterChange(ctx, tx, actor, target, change); err != nil {
				return err
			}
		}
		out = Outcome{Change: change, Target: target}
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}
	return out, nil
}

// apply retries once when a concurrent first vote by the same actor won the
// insert race; the second pass sees that row and toggles or flips it.
func (l *Ledger) apply(ctx context.Context, tx *gorm.DB, actor, targetID uuid.UUID, value int) (Change, error) {
	change, err := l.transition(ctx, tx, actor, targetID, value)
	if !database.IsUniqueViolation(err) {
		return change, err
	}
	change, err = l.transition(ctx, tx, actor, targetID, value)
	if database.IsUniqueViolation(err) {
		return Change{}, apperr.Conflict("concurrent %s vote", l.kind.Name)
	}
	return change, err
}

func (l *Ledger) transition(ctx context.Context, tx *gorm.DB, actor, targetID uuid.UUID, value int) (Change, error) {
	db := tx.WithContext(ctx)

	var existing voteRow
	err := db.Table(l.kind.Table).Where("user_id = ? AND target_id = ?", actor, targetID).Take(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		now := l.now()
		row := voteRow{
			ID:        uuid.New(),
			UserID:    actor,
			TargetID:  targetID,
			Value:     value,
			CreatedAt: now,
			UpdatedAt: now,
		}
		// Savepoint so a unique violation leaves the outer transaction usable.
		err := db.Transaction(func(sp *gorm.DB) error {
			return sp.Table(l.kind.Table).Create(&row).Error
		})
		if err != nil {
			return Change{}, err
		}
		return Change{Result: Inserted, Value: value}, nil

	case err != nil:
		return Change{}, fmt.Errorf("load %s vote: %w", l.kind.Name, err)

	case existing.Value == value:
		if err := db.Table(l.kind.Table).Where("id = ?", existing.ID).Delete(&voteRow{}).Error; err != nil {
			return Change{}, fmt.Errorf("remove %s vote: %w", l.kind.Name, err)
		}
		return Change{Result: Removed, Previous: existing.Value}, nil

	default:
		err := db.Table(l.kind.Table).Where("id = ?", existing.ID).
			Updates(map[string]interface{}{"value": value, "updated_at": l.now()}).Error
		if err != nil {
			return Change{}, fmt.Errorf("flip %s vote: %w", l.kind.Name, err)
		}
		return Change{Result: Flipped, Previous: existing.Value, Value: value}, nil
	}
}
