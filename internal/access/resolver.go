// Package access decides whether an actor may see or interact with another
// user's content. Every read path that exposes user content goes through it.
package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Anonymous is the actor ID of a request without identity.
var Anonymous = uuid.Nil

// Resource is the part of a profile, list or comment thread that visibility
// depends on. Comments use their owning list.
type Resource struct {
	OwnerID    uuid.UUID
	Visibility models.Visibility
}

func ListResource(l *models.List) Resource {
	return Resource{OwnerID: l.UserID, Visibility: l.Visibility}
}

func ProfileResource(u *models.User) Resource {
	return Resource{OwnerID: u.ID, Visibility: u.ProfileVisibility}
}

// Relations is the snapshot of the edges between actor and owner.
type Relations struct {
	Blocked   bool // a block exists in either direction
	Following bool // actor -> owner follow edge exists
}

// Decide applies the rules in order; the first match wins.
func Decide(actor uuid.UUID, res Resource, rel Relations) bool {
	if actor != Anonymous && actor == res.OwnerID {
		return true
	}
	if rel.Blocked {
		return false
	}
	switch res.Visibility {
	case models.VisibilityPublic:
		return true
	case models.VisibilityFollowersOnly:
		return actor != Anonymous && rel.Following
	default:
		return false
	}
}

type Resolver struct {
	db *gorm.DB
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// WithDB returns a resolver bound to db, typically an open transaction.
func (r *Resolver) WithDB(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// CanView loads only the relations the rule order needs before deciding.
func (r *Resolver) CanView(ctx context.Context, actor uuid.UUID, res Resource) (bool, error) {
	if actor == Anonymous || actor == res.OwnerID {
		return Decide(actor, res, Relations{}), nil
	}

	var rel Relations
	blocked, err := r.IsBlocked(ctx, actor, res.OwnerID)
	if err != nil {
		return false, err
	}
	rel.Blocked = blocked

	if !blocked && res.Visibility == models.VisibilityFollowersOnly {
		following, err := r.IsFollowing(ctx, actor, res.OwnerID)
		if err != nil {
			return false, err
		}
		rel.Following = following
	}
	return Decide(actor, res, rel), nil
}

// ActiveActor returns Forbidden unless actor is a registered account that
// has not been deleted. Every write path calls it, since a token outlives
// the account it was issued for.
func (r *Resolver) ActiveActor(ctx context.Context, actor uuid.UUID) error {
	if actor == Anonymous {
		return apperr.Forbidden("sign in first")
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND deleted = ?", actor, false).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("check actor: %w", err)
	}
	if count == 0 {
		return apperr.Forbidden("account is not active")
	}
	return nil
}

// CanInteract gates follow, vote and block-sensitive actions between two
// users. It returns NotFound when the target does not exist or was deleted,
// and Forbidden when the actor's own account is gone.
func (r *Resolver) CanInteract(ctx context.Context, actor, target uuid.UUID) (bool, error) {
	if _, err := r.activeUser(ctx, target); err != nil {
		return false, err
	}
	if actor == Anonymous {
		return false, nil
	}
	if err := r.ActiveActor(ctx, actor); err != nil {
		return false, err
	}
	if actor == target {
		return true, nil
	}
	blocked, err := r.IsBlocked(ctx, actor, target)
	if err != nil {
		return false, err
	}
	return !blocked, nil
}

// CanMessage applies the recipient's message policy on top of the block wall.
func (r *Resolver) CanMessage(ctx context.Context, sender, recipient uuid.UUID) (bool, error) {
	user, err := r.activeUser(ctx, recipient)
	if err != nil {
		return false, err
	}
	if sender == Anonymous || sender == recipient {
		return false, nil
	}
	if err := r.ActiveActor(ctx, sender); err != nil {
		return false, err
	}
	blocked, err := r.IsBlocked(ctx, sender, recipient)
	if err != nil || blocked {
		return false, err
	}
	switch user.MessagePolicy {
	case models.MessageEveryone:
		return true, nil
	case models.MessageFollowingOnly:
		return r.IsFollowing(ctx, recipient, sender)
	default:
		return false, nil
	}
}

// AuthorizeList loads a list and checks that actor may view it.
func (r *Resolver) AuthorizeList(ctx context.Context, actor, listID uuid.UUID) (*models.List, error) {
	var list models.List
	if err := r.db.WithContext(ctx).First(&list, "id = ?", listID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("list not found")
		}
		return nil, fmt.Errorf("load list: %w", err)
	}
	ok, err := r.CanView(ctx, actor, ListResource(&list))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Forbidden("list is not visible to you")
	}
	return &list, nil
}

// AuthorizeProfile loads a user and checks that actor may view the profile.
func (r *Resolver) AuthorizeProfile(ctx context.Context, actor, userID uuid.UUID) (*models.User, error) {
	user, err := r.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ok, err := r.CanView(ctx, actor, ProfileResource(user))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Forbidden("profile is not visible to you")
	}
	return user, nil
}

// IsBlocked reports whether a block exists between a and b in either direction.
func (r *Resolver) IsBlocked(ctx context.Context, a, b uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Block{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)", a, b, b, a).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check block: %w", err)
	}
	return count > 0, nil
}

// IsFollowing reports whether the follower -> followee edge exists.
func (r *Resolver) IsFollowing(ctx context.Context, follower, followee uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", follower, followee).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check follow: %w", err)
	}
	return count > 0, nil
}

func (r *Resolver) activeUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ? AND deleted = ?", id, false).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &user, nil
}
