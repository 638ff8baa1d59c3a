package handlers

import (
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/comments"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

type CommentHandler struct {
	comments *comments.Service
}

func NewCommentHandler(svc *comments.Service) *CommentHandler {
	return &CommentHandler{comments: svc}
}

func (h *CommentHandler) Tree(c *fiber.Ctx) error {
	listID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	q := pageQuery(c)

	tree, err := h.comments.GetTree(c.UserContext(), middleware.Actor(c), listID, q.Page, q.PageSize)
	if err != nil {
		return err
	}
	return c.JSON(tree)
}

func (h *CommentHandler) Thread(c *fiber.Ctx) error {
	commentID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	node, err := h.comments.GetThread(c.UserContext(), middleware.Actor(c), commentID)
	if err != nil {
		return err
	}
	return c.JSON(node)
}

func (h *CommentHandler) Create(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	listID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req dto.CreateCommentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	comment, err := h.comments.Create(c.UserContext(), actor, listID, req.ParentID, req.Content)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

func (h *CommentHandler) Edit(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	commentID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req dto.EditCommentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	comment, err := h.comments.Edit(c.UserContext(), actor, commentID, req.Content)
	if err != nil {
		return err
	}
	return c.JSON(comment)
}

func (h *CommentHandler) Delete(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	commentID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.comments.Delete(c.UserContext(), actor, commentID); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Comment deleted successfully"})
}

func (h *CommentHandler) Vote(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	commentID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req dto.VoteRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	result, err := h.comments.Vote(c.UserContext(), actor, commentID, req.Value)
	if err != nil {
		return err
	}
	return c.JSON(result)
}
