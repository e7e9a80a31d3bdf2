package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/skillbridge/skillbridge-api/internal/model"
	"github.com/skillbridge/skillbridge-api/pkg/logger"
	"github.com/skillbridge/skillbridge-api/pkg/metrics"
)

// EventPublisher sends domain events to the event bus.
type EventPublisher interface {
	PublishChatTurn(ctx context.Context, ev *model.ChatTurnEvent) error
	PublishAnalysis(ctx context.Context, ev *model.AnalysisEvent) error
}

// NopPublisher drops every event. It is used when NATS is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishChatTurn(context.Context, *model.ChatTurnEvent) error { return nil }
func (NopPublisher) PublishAnalysis(context.Context, *model.AnalysisEvent) error { return nil }

func publishChatTurn(ctx context.Context, p EventPublisher, log *logger.Logger, ev *model.ChatTurnEvent) {
	err := p.PublishChatTurn(ctx, ev)
	metrics.IncEventPublished(string(ev.Type), err == nil)
	if err != nil {
		log.Warn("failed to publish chat turn", zap.String("event_id", ev.ID), zap.Error(err))
	}
}

func publishAnalysis(ctx context.Context, p EventPublisher, log *logger.Logger, ev *model.AnalysisEvent) {
	err := p.PublishAnalysis(ctx, ev)
	metrics.IncEventPublished(string(ev.Type), err == nil)
	if err != nil {
		log.Warn("failed to publish analysis event",
			zap.String("event_id", ev.ID),
			zap.String("analysis_id", ev.AnalysisID),
			zap.Error(err),
		)
	}
}
