package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/tracker-bot/internal/events"
)

// NotificationService logs an audit trail for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	return &NotificationService{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventIssueResolved, n.handleIssueResolved)
	n.dispatcher.Subscribe(events.EventCommentAdded, n.handleCommentAdded)
	n.dispatcher.Subscribe(events.EventTokenRequested, n.handleTokenRequested)
	n.dispatcher.Subscribe(events.EventTokenCommitted, n.handleTokenCommitted)
}

func (n *NotificationService) handleIssueResolved(ctx context.Context, event events.Event) error {
	n.logger.Info("IssueResolved", zap.String("issue_key", event.IssueKey), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleCommentAdded(ctx context.Context, event events.Event) error {
	n.logger.Info("CommentAdded", zap.String("issue_key", event.IssueKey), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleTokenRequested(ctx context.Context, event events.Event) error {
	n.logger.Info("TokenRequested", zap.String("user", event.UserIdentity), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleTokenCommitted(ctx context.Context, event events.Event) error {
	n.logger.Info("TokenCommitted", zap.String("user", event.UserIdentity))
	return nil
}
