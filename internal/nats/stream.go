package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/skillbridge/skillbridge-api/internal/model"
)

const (
	// StreamName is the name of the SkillBridge events stream.
	StreamName = "SKILLBRIDGE"

	chatPrefix     = "chat"
	analysisPrefix = "analysis"
)

// StreamManager publishes and replays SkillBridge events.
type StreamManager struct {
	client *Client
}

// NewStreamManager creates a new stream manager.
func NewStreamManager(client *Client) *StreamManager {
	return &StreamManager{client: client}
}

// EnsureStream creates the events stream when it does not exist yet.
func (m *StreamManager) EnsureStream(ctx context.Context) error {
	js := m.client.JetStream()

	if _, err := js.Stream(ctx, StreamName); err == nil {
		return nil
	} else if !errors.Is(err, jetstream.ErrStreamNotFound) {
		return fmt.Errorf("failed to look up stream: %w", err)
	}

	_, err := js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{chatPrefix + ".>", analysisPrefix + ".>"},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      90 * 24 * time.Hour,
		MaxBytes:    10 * 1024 * 1024 * 1024,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Compression: jetstream.S2Compression,
		Description: "SkillBridge chat turns and analysis outcomes",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}
	m.client.logger.Info("created stream", zap.String("stream", StreamName))
	return nil
}

// token makes s safe to use as one subject token.
func token(s string) string {
	if s == "" {
		return "anonymous"
	}
	return strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_").Replace(s)
}

// ChatTurnSubject returns the subject a user's chat turns are published on.
func ChatTurnSubject(userID string) string {
	return fmt.Sprintf("%s.turn.%s", chatPrefix, token(userID))
}

// AnalysisSubject returns the subject for an analysis outcome.
func AnalysisSubject(status model.AnalysisStatus, userID string) string {
	return fmt.Sprintf("%s.%s.%s", analysisPrefix, status, token(userID))
}

// PublishChatTurn publishes a chat turn and records its stream sequence.
func (m *StreamManager) PublishChatTurn(ctx context.Context, ev *model.ChatTurnEvent) error {
	seq, err := m.publish(ctx, ChatTurnSubject(ev.UserID), ev.ID, ev)
	if err != nil {
		return err
	}
	ev.Sequence = seq
	return nil
}

// PublishAnalysis publishes an analysis outcome and records its stream
// sequence.
func (m *StreamManager) PublishAnalysis(ctx context.Context, ev *model.AnalysisEvent) error {
	seq, err := m.publish(ctx, AnalysisSubject(ev.Status, ev.UserID), ev.ID, ev)
	if err != nil {
		return err
	}
	ev.Sequence = seq
	return nil
}

func (m *StreamManager) publish(ctx context.Context, subject, msgID string, v any) (uint64, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal event: %w", err)
	}

	var opts []jetstream.PublishOpt
	if msgID != "" {
		opts = append(opts, jetstream.WithMsgID(msgID))
	}
	ack, err := m.client.JetStream().Publish(ctx, subject, data, opts...)
	if err != nil {
		return 0, fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	return ack.Sequence, nil
}

// ChatTurns replays a user's chat turn events starting after a stream
// sequence. It reports the last sequence read and whether more may follow.
func (m *StreamManager) ChatTurns(ctx context.Context, userID string, afterSequence uint64, limit int) ([]model.ChatTurnEvent, uint64, bool, error) {
	js := m.client.JetStream()

	consumerConfig := jetstream.OrderedConsumerConfig{
		FilterSubjects: []string{ChatTurnSubject(userID)},
		DeliverPolicy:  jetstream.DeliverAllPolicy,
	}
	if afterSequence > 0 {
		consumerConfig.DeliverPolicy = jetstream.DeliverByStartSequencePolicy
		consumerConfig.OptStartSeq = afterSequence + 1
	}

	consumer, err := js.OrderedConsumer(ctx, StreamName, consumerConfig)
	if err != nil {
		return nil, 0, false, fmt.Errorf("failed to create consumer: %w", err)
	}

	batch, err := consumer.Fetch(limit, jetstream.FetchMaxWait(2*time.Second))
	if err != nil {
		return nil, 0, false, fmt.Errorf("failed to fetch chat turns: %w", err)
	}

	events := make([]model.ChatTurnEvent, 0, limit)
	lastSequence := afterSequence
	for msg := range batch.Messages() {
		var ev model.ChatTurnEvent
		if err := json.Unmarshal(msg.Data(), &ev); err != nil {
			m.client.logger.Warn("skipping malformed chat turn event",
				zap.String("subject", msg.Subject()),
				zap.Error(err),
			)
			continue
		}
		if meta, err := msg.Metadata(); err == nil {
			ev.Sequence = meta.Sequence.Stream
			lastSequence = meta.Sequence.Stream
		}
		events = append(events, ev)
	}

	if err := batch.Error(); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return nil, 0, false, fmt.Errorf("batch error: %w", err)
	}

	return events, lastSequence, len(events) == limit, nil
}
