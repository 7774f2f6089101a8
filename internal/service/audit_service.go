package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/popx/account-portal/internal/events"
)

// AuditService writes a structured log line for every session transition.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
	}
}

// RegisterHandlers subscribes to every session event.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.SubscribeAll(func(ctx context.Context, event events.Event) error {
		if event.Type == events.EventAuthFailed {
			return a.handleAuthFailed(ctx, event)
		}
		return a.handleTransition(ctx, event)
	})
}

func (a *AuditService) handleTransition(_ context.Context, event events.Event) error {
	a.logger.Info(string(event.Type), eventFields(event)...)
	return nil
}

func (a *AuditService) handleAuthFailed(_ context.Context, event events.Event) error {
	fields := eventFields(event)
	if payload, ok := event.Payload.(events.AuthFailedPayload); ok {
		fields = append(fields,
			zap.String("operation", payload.Operation),
			zap.String("cause", payload.Cause))
	}
	a.logger.Warn(string(event.Type), fields...)
	return nil
}

func eventFields(event events.Event) []zap.Field {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("client_id", event.ClientID),
		zap.String("status", string(event.Status)),
		zap.Time("at", event.Timestamp),
	}
	if event.UserID != "" {
		fields = append(fields, zap.String("user_id", event.UserID))
	}
	if payload, ok := event.Payload.(events.UserUpdatedPayload); ok {
		fields = append(fields, zap.Strings("fields", payload.Fields))
	}
	return fields
}
