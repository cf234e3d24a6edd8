package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/taskboard-service/internal/events"
)

// NotificationService records domain events for downstream consumers.
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
	n.dispatcher.Subscribe(events.EventUserRegistered, n.handleUserRegistered)
	n.dispatcher.Subscribe(events.EventUserVerified, n.handleUserVerified)
	n.dispatcher.Subscribe(events.EventTaskCreated, n.handleTaskCreated)
	n.dispatcher.Subscribe(events.EventTaskStatusChanged, n.handleTaskStatusChanged)
}

func (n *NotificationService) handleUserRegistered(_ context.Context, event events.Event) error {
	n.logger.Info("UserRegistered", zap.String("user_id", event.UserID))
	return nil
}

func (n *NotificationService) handleUserVerified(_ context.Context, event events.Event) error {
	n.logger.Info("UserVerified", zap.String("user_id", event.UserID))
	return nil
}

func (n *NotificationService) handleTaskCreated(_ context.Context, event events.Event) error {
	n.logger.Info("TaskCreated", zap.String("user_id", event.UserID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleTaskStatusChanged(_ context.Context, event events.Event) error {
	n.logger.Info("TaskStatusChanged", zap.String("user_id", event.UserID), zap.Any("payload", event.Payload))
	return nil
}
