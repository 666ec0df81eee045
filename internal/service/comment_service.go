package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/tracker-bot/internal/events"
	"github.com/spec-kit/tracker-bot/internal/tracker"
	apperrors "github.com/spec-kit/tracker-bot/pkg/util"
)

// CommentService posts standalone comments on tracker issues.
type CommentService struct {
	tracker    tracker.Client
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewCommentService constructs the service.
func NewCommentService(trackerClient tracker.Client, dispatcher events.Dispatcher, logger *zap.Logger) *CommentService {
	return &CommentService{tracker: trackerClient, dispatcher: dispatcher, logger: logger}
}

// Comment adds a comment to the issue. Failures are reported once; the user
// may re-invoke the command.
func (s *CommentService) Comment(ctx context.Context, key, body string) error {
	if strings.TrimSpace(body) == "" {
		return apperrors.NewValidationError("comment text required", nil)
	}
	if err := s.tracker.AddComment(ctx, key, body); err != nil {
		s.logger.Info("comment failed", zap.String("key", key), zap.Error(err))
		return err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventCommentAdded,
			IssueKey:  key,
			Timestamp: time.Now(),
			Payload:   events.CommentAddedPayload{BodyPreview: preview(body, 120)},
		})
	}
	return nil
}

func preview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
