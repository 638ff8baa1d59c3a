package comments

import (
	"context"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/votes"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Node is one rendered comment. ReplyCount is the number of direct replies;
// on the last rendered level Replies is empty and ReplyCount tells the client
// whether to fetch the thread.
type Node struct {
	ID         uuid.UUID       `json:"id"`
	ListID     uuid.UUID       `json:"list_id"`
	ParentID   *uuid.UUID      `json:"parent_id,omitempty"`
	Author     dto.UserSummary `json:"author"`
	Content    string          `json:"content"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	Score      int64           `json:"score"`
	Upvotes    int64           `json:"upvotes"`
	Downvotes  int64           `json:"downvotes"`
	UserVote   int             `json:"user_vote"`
	ReplyCount int64           `json:"reply_count"`
	Replies    []*Node         `json:"replies"`
}

type Tree struct {
	ListID   uuid.UUID `json:"list_id"`
	Comments []*Node   `json:"comments"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
	Total    int64     `json:"total"`
}

const newestFirst = "created_at DESC, id DESC"

// GetTree returns one page of top-level comments, newest first, with replies
// attached down to the render depth. The list is authorized once.
func (s *Service) GetTree(ctx context.Context, actor, listID uuid.UUID, page, pageSize int) (*Tree, error) {
	if _, err := s.resolver.AuthorizeList(ctx, actor, listID); err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	switch {
	case pageSize <= 0:
		pageSize = s.defaultPageSize
	case pageSize > s.maxPageSize:
		pageSize = s.maxPageSize
	}

	db := s.db.WithContext(ctx)
	top := db.Model(&models.Comment{}).Where("list_id = ? AND parent_comment_id IS NULL", listID)

	var total int64
	if err := top.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count comments: %w", err)
	}

	var roots []models.Comment
	err := db.Where("list_id = ? AND parent_comment_id IS NULL", listID).
		Order(newestFirst).
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&roots).Error
	if err != nil {
		return nil, fmt.Errorf("load comments: %w", err)
	}

	nodes, err := s.build(ctx, db, actor, roots)
	if err != nil {
		return nil, err
	}
	return &Tree{ListID: listID, Comments: nodes, Page: page, PageSize: pageSize, Total: total}, nil
}

// GetThread returns the subtree rooted at commentID, rendered to the same
// depth as GetTree, for replies below the tree's last level.
func (s *Service) GetThread(ctx context.Context, actor, commentID uuid.UUID) (*Node, error) {
	db := s.db.WithContext(ctx)
	root, err := loadComment(ctx, db, commentID)
	if err != nil {
		return nil, err
	}
	if _, err := s.resolver.AuthorizeList(ctx, actor, root.ListID); err != nil {
		return nil, err
	}

	nodes, err := s.build(ctx, db, actor, []models.Comment{*root})
	if err != nil {
		return nil, err
	}
	return nodes[0], nil
}

// build loads replies breadth-first, one query per level, until the render
// depth, then counts the replies of the last level and decorates every node
// with its tally, the actor's vote and its author.
func (s *Service) build(ctx context.Context, db *gorm.DB, actor uuid.UUID, roots []models.Comment) ([]*Node, error) {
	byID := make(map[uuid.UUID]*Node)
	all := make([]models.Comment, 0, len(roots))

	out := make([]*Node, 0, len(roots))
	for i := range roots {
		n := newNode(&roots[i])
		byID[n.ID] = n
		out = append(out, n)
	}
	all = append(all, roots...)

	level := idsOf(roots)
	for depth := 1; len(level) > 0; depth++ {
		if depth == s.depth {
			counts, err := replyCounts(ctx, db, level)
			if err != nil {
				return nil, err
			}
			for id, n := range counts {
				byID[id].ReplyCount = n
			}
			break
		}

		var children []models.Comment
		err := db.Where("parent_comment_id IN ?", level).Order(newestFirst).Find(&children).Error
		if err != nil {
			return nil, fmt.Errorf("load replies: %w", err)
		}
		for i := range children {
			n := newNode(&children[i])
			byID[n.ID] = n
			parent := byID[*children[i].ParentCommentID]
			parent.Replies = append(parent.Replies, n)
			parent.ReplyCount++
		}
		all = append(all, children...)
		level = idsOf(children)
	}

	if err := s.decorate(ctx, db, actor, all, byID); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) decorate(ctx context.Context, db *gorm.DB, actor uuid.UUID, all []models.Comment, byID map[uuid.UUID]*Node) error {
	ids := idsOf(all)
	tallies, err := votes.Tallies(ctx, db, voteTable, ids)
	if err != nil {
		return err
	}
	mine, err := votes.UserVotes(ctx, db, voteTable, actor, ids)
	if err != nil {
		return err
	}

	authorIDs := make([]uuid.UUID, 0, len(all))
	seen := make(map[uuid.UUID]bool)
	for _, c := range all {
		if !seen[c.UserID] {
			seen[c.UserID] = true
			authorIDs = append(authorIDs, c.UserID)
		}
	}
	var users []models.User
	if len(authorIDs) > 0 {
		if err := db.Where("id IN ?", authorIDs).Find(&users).Error; err != nil {
			return fmt.Errorf("load authors: %w", err)
		}
	}
	authors := make(map[uuid.UUID]*models.User, len(users))
	for i := range users {
		authors[users[i].ID] = &users[i]
	}

	for _, c := range all {
		n := byID[c.ID]
		t := tallies[c.ID]
		n.Score = t.Score()
		n.Upvotes = t.Up
		n.Downvotes = t.Down
		n.UserVote = mine[c.ID]
		n.Author = dto.NewUserSummary(authors[c.UserID])
	}
	return nil
}

func replyCounts(ctx context.Context, db *gorm.DB, parents []uuid.UUID) (map[uuid.UUID]int64, error) {
	var rows []struct {
		ParentCommentID uuid.UUID
		N               int64
	}
	err := db.WithContext(ctx).Model(&models.Comment{}).
		Select("parent_comment_id, COUNT(*) AS n").
		Where("parent_comment_id IN ?", parents).
		Group("parent_comment_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count replies: %w", err)
	}
	out := make(map[uuid.UUID]int64, len(rows))
	for _, r := range rows {
		out[r.ParentCommentID] = r.N
	}
	return out, nil
}

func newNode(c *models.Comment) *Node {
	return &Node{
		ID:        c.ID,
		ListID:    c.ListID,
		ParentID:  c.ParentCommentID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Replies:   []*Node{},
	}
}

func idsOf(cs []models.Comment) []uuid.UUID {
	ids := make([]uuid.UUID, len(cs))
	for i := range cs {
		ids[i] = cs[i].ID
	}
	return ids
}
