package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/campus-auth/internal/events"
)

// AuditCounter receives one increment per audited event.
type AuditCounter interface {
	RecordAuthEvent(eventType string)
}

// AuditService writes auth events to the log. Rejection reasons only
// ever surface here.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	counter    AuditCounter
}

// NewAuditService creates the service. counter may be nil.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger, counter AuditCounter) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
		counter:    counter,
	}
}

// RegisterHandlers subscribes to every auth event type.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, eventType := range events.AllEventTypes {
		a.dispatcher.Subscribe(eventType, a.handle)
	}
}

func (a *AuditService) handle(_ context.Context, event events.Event) error {
	if a.counter != nil {
		a.counter.RecordAuthEvent(string(event.Type))
	}

	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.Time("at", event.Timestamp),
	}
	if event.Identity != "" {
		fields = append(fields, zap.String("identity", event.Identity))
	}
	if event.Reason != "" {
		fields = append(fields, zap.String("reason", event.Reason))
	}
	if event.Payload != nil {
		fields = append(fields, zap.Any("payload", event.Payload))
	}

	switch event.Type {
	case events.EventLoginFailed, events.EventTokenRejected, events.EventElevationDenied, events.EventPayloadRejected:
		a.logger.Warn("auth rejected", fields...)
	default:
		a.logger.Info("auth event", fields...)
	}
	return nil
}
