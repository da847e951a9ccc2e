package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/events"
)

// CacheInvalidator retires derived read models after a write.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// TransitionRecorder counts lifecycle transitions.
type TransitionRecorder interface {
	RecordTransition(from, to string)
}

// NotificationService reacts to committed issue events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cache      CacheInvalidator
	metrics    TransitionRecorder
}

// NewNotificationService creates the service. cache and metrics are optional.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cache CacheInvalidator, metrics TransitionRecorder) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     loggerOrNop(logger),
		cache:      cache,
		metrics:    metrics,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.SubscribeAll(n.invalidateAnalytics)
	n.dispatcher.Subscribe(events.EventIssueCreated, n.handleIssueCreated)
	n.dispatcher.Subscribe(events.EventIssueStatusChanged, n.handleIssueStatusChanged)
	n.dispatcher.Subscribe(events.EventIssueAssigned, n.handleIssueAssigned)
	n.dispatcher.Subscribe(events.EventIssueCommentAdded, n.handleIssueCommentAdded)
	n.dispatcher.Subscribe(events.EventIssueTypeMapped, n.handleIssueTypeMapped)
}

func (n *NotificationService) invalidateAnalytics(ctx context.Context, _ events.Event) error {
	if n.cache == nil {
		return nil
	}
	return n.cache.Invalidate(ctx)
}

func (n *NotificationService) handleIssueCreated(_ context.Context, event events.Event) error {
	n.logger.Info("IssueCreated", zap.String("issue_id", event.IssueID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleIssueStatusChanged(_ context.Context, event events.Event) error {
	n.logger.Info("IssueStatusChanged", zap.String("issue_id", event.IssueID), zap.Any("payload", event.Payload))
	if payload, ok := event.Payload.(events.IssueStatusChangedPayload); ok && n.metrics != nil {
		n.metrics.RecordTransition(string(payload.OldStatus), string(payload.NewStatus))
	}
	return nil
}

func (n *NotificationService) handleIssueAssigned(_ context.Context, event events.Event) error {
	n.logger.Info("IssueAssigned", zap.String("issue_id", event.IssueID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleIssueCommentAdded(_ context.Context, event events.Event) error {
	n.logger.Debug("IssueCommentAdded", zap.String("issue_id", event.IssueID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleIssueTypeMapped(_ context.Context, event events.Event) error {
	n.logger.Info("IssueTypeMapped", zap.String("issue_id", event.IssueID), zap.Any("payload", event.Payload))
	return nil
}
