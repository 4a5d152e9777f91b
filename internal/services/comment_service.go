// file: internal/services/comment_service.go
package services

import (
	"context"
	"errors"
	"strings"

	"doclib/internal/events"
	"doclib/internal/models"
	"doclib/internal/repositories"

	"go.uber.org/zap"
)

// commentService implements CommentService
type commentService struct {
	comments repositories.CommentRepository
	docs     repositories.DocumentRepository
	notifier Notifier
	events   events.EventBus
	logger   *zap.Logger
}

// NewCommentService creates a new comment service
func NewCommentService(
	comments repositories.CommentRepository,
	docs repositories.DocumentRepository,
	notifier Notifier,
	bus events.EventBus,
	logger *zap.Logger,
) CommentService {
	return &commentService{
		comments: comments,
		docs:     docs,
		notifier: notifier,
		events:   bus,
		logger:   logger,
	}
}

// Create adds a top-level comment or a reply to one. Replies to replies
// are rejected so threads stay one level deep.
func (s *commentService) Create(ctx context.Context, req *CreateCommentRequest) (*models.Comment, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if _, err := requireApproved(ctx, s.docs, s.logger, req.DocumentID); err != nil {
		return nil, err
	}

	if req.ParentCommentID != nil {
		parent, err := s.comments.GetByID(ctx, *req.ParentCommentID)
		if err != nil {
			return nil, internalError(s.logger, "failed to load parent comment", err)
		}
		if parent == nil || parent.IsDeleted {
			return nil, EntityNotFoundError("parent comment", *req.ParentCommentID)
		}
		if parent.DocumentID != req.DocumentID {
			return nil, NewValidationError("parent comment belongs to a different document", nil)
		}
		if parent.IsReply() {
			return nil, NewValidationError("replies can only be made to top-level comments", nil)
		}
	}

	ctx = context.WithoutCancel(ctx)
	comment := &models.Comment{
		DocumentID:      req.DocumentID,
		UserID:          req.UserID,
		ParentCommentID: req.ParentCommentID,
		Content:         strings.TrimSpace(req.Content),
		User:            models.UserRef{ID: req.UserID, Name: req.UserName},
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, internalError(s.logger, "failed to create comment", err, zap.Int64("document_id", req.DocumentID))
	}

	s.logger.Info("Comment created",
		zap.Int64("comment_id", comment.ID),
		zap.Int64("document_id", comment.DocumentID),
		zap.Int64("user_id", comment.UserID),
	)
	publishEngagement(ctx, s.events, s.logger, events.EngagementComment, req.DocumentID, &req.UserID)

	_, notifyErr := s.notifier.NotifyDocumentOwner(ctx, req.DocumentID, req.UserID, models.NotificationNewComment, req.UserName)
	return comment, NewSideEffectError("notification", notifyErr)
}

func (s *commentService) Update(ctx context.Context, commentID int64, content string, actor Actor) (*models.Comment, error) {
	if err := validateRequest(&UpdateCommentRequest{Content: content}); err != nil {
		return nil, err
	}
	comment, err := s.editable(ctx, commentID, actor, "update")
	if err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if err := s.comments.UpdateContent(ctx, commentID, content); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, EntityNotFoundError("comment", commentID)
		}
		return nil, internalError(s.logger, "failed to update comment", err, zap.Int64("comment_id", commentID))
	}

	updated, err := s.comments.GetByID(ctx, commentID)
	if err != nil || updated == nil {
		comment.Content = content
		comment.IsEdited = true
		return comment, nil
	}
	return updated, nil
}

func (s *commentService) Delete(ctx context.Context, commentID int64, actor Actor) error {
	if _, err := s.editable(ctx, commentID, actor, "delete"); err != nil {
		return err
	}
	if err := s.comments.SoftDelete(ctx, commentID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return EntityNotFoundError("comment", commentID)
		}
		return internalError(s.logger, "failed to delete comment", err, zap.Int64("comment_id", commentID))
	}
	s.logger.Info("Comment deleted", zap.Int64("comment_id", commentID), zap.Int64("actor_id", actor.UserID))
	return nil
}

// editable loads a live comment the actor may change
func (s *commentService) editable(ctx context.Context, commentID int64, actor Actor, action string) (*models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, internalError(s.logger, "failed to load comment", err, zap.Int64("comment_id", commentID))
	}
	if comment == nil || comment.IsDeleted {
		return nil, EntityNotFoundError("comment", commentID)
	}
	if !comment.IsOwnedBy(actor.UserID) && !actor.IsAdmin() {
		return nil, InsufficientPermissionsError(action, "comment")
	}
	return comment, nil
}

func (s *commentService) Report(ctx context.Context, commentID, reporterID int64) error {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return internalError(s.logger, "failed to load comment", err, zap.Int64("comment_id", commentID))
	}
	if comment == nil || comment.IsDeleted {
		return EntityNotFoundError("comment", commentID)
	}

	marked, err := s.comments.MarkReported(ctx, commentID)
	if err != nil {
		return internalError(s.logger, "failed to report comment", err, zap.Int64("comment_id", commentID))
	}
	if !marked {
		return NewConflictError("comment has already been reported", "ALREADY_REPORTED")
	}

	s.logger.Warn("Comment reported", zap.Int64("comment_id", commentID), zap.Int64("reporter_id", reporterID))
	publishEngagement(ctx, s.events, s.logger, events.EngagementReport, comment.DocumentID, &reporterID)
	return nil
}

// List pages top-level comments and attaches their live replies oldest first.
func (s *commentService) List(ctx context.Context, documentID int64, p models.PaginationParams, newestFirst bool) (*models.Page[*models.Comment], error) {
	if _, err := requireApproved(ctx, s.docs, s.logger, documentID); err != nil {
		return nil, err
	}
	p = models.NewPaginationParams(p.Page, p.Limit)

	top, total, err := s.comments.ListTopLevel(ctx, documentID, p, newestFirst)
	if err != nil {
		return nil, internalError(s.logger, "failed to list comments", err, zap.Int64("document_id", documentID))
	}
	if len(top) == 0 {
		return models.NewPage(top, total, p), nil
	}

	ids := make([]int64, len(top))
	byID := make(map[int64]*models.Comment, len(top))
	for i, c := range top {
		ids[i] = c.ID
		c.Replies = []*models.Comment{}
		byID[c.ID] = c
	}

	replies, err := s.comments.ListReplies(ctx, ids)
	if err != nil {
		return nil, internalError(s.logger, "failed to list replies", err, zap.Int64("document_id", documentID))
	}
	for _, r := range replies {
		if parent, ok := byID[*r.ParentCommentID]; ok {
			parent.Replies = append(parent.Replies, r)
		}
	}
	return models.NewPage(top, total, p), nil
}
