package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/skillbridge/skillbridge-api/internal/middleware"
	"github.com/skillbridge/skillbridge-api/internal/model"
	"github.com/skillbridge/skillbridge-api/internal/service"
	"github.com/skillbridge/skillbridge-api/pkg/logger"
	"github.com/skillbridge/skillbridge-api/pkg/metrics"
)

// DefaultHeartbeat is the idle interval between SSE heartbeats.
const DefaultHeartbeat = 15 * time.Second

// replayBatch is the number of events fetched per replay round.
const replayBatch = 50

// ChatEventReplayer reads back published chat turn events.
type ChatEventReplayer interface {
	ChatTurns(ctx context.Context, userID string, afterSequence uint64, limit int) ([]model.ChatTurnEvent, uint64, bool, error)
}

// StreamHandler handles SSE streaming endpoints.
type StreamHandler struct {
	analyses  *service.AnalysisService
	events    ChatEventReplayer
	heartbeat time.Duration
	logger    *logger.Logger
}

// NewStreamHandler creates a new stream handler. events may be nil when
// the event bus is disabled.
func NewStreamHandler(analyses *service.AnalysisService, events ChatEventReplayer, log *logger.Logger) *StreamHandler {
	return &StreamHandler{
		analyses:  analyses,
		events:    events,
		heartbeat: DefaultHeartbeat,
		logger:    log,
	}
}

// ReplayCompleteEvent represents the completion of event replay.
type ReplayCompleteEvent struct {
	LastSequence uint64 `json:"lastSequence"`
	EventCount   int    `json:"eventCount"`
}

func startSSE(w http.ResponseWriter) (http.Flusher, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return nil, false
	}
	// Streams outlive the server write timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	return flusher, true
}

// AnalyzeStream handles GET /api/analyze/{id}/stream. It runs the analysis
// and reports each stage, then the result or the failure.
func (h *StreamHandler) AnalyzeStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	resumeID := chi.URLParam(r, "id")
	log := middleware.RequestLogger(ctx, h.logger).With(zap.String("resume_id", resumeID))

	if err := middleware.ValidateID(resumeID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	flusher, ok := startSSE(w)
	if !ok {
		return
	}
	metrics.IncrementSSEConnections()
	defer metrics.DecrementSSEConnections()

	sendSSEEvent(w, flusher, "connected", map[string]string{"resumeId": resumeID})

	type outcome struct {
		result *model.AnalysisResult
		err    error
	}
	progress := make(chan model.AnalysisProgressEvent, 8)
	done := make(chan outcome, 1)

	go func() {
		result, err := h.analyses.Analyze(ctx, userID, resumeID, func(ev model.AnalysisProgressEvent) {
			select {
			case progress <- ev:
			case <-ctx.Done():
			}
		})
		done <- outcome{result: result, err: err}
	}()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("SSE client disconnected")
			return

		case ev := <-progress:
			sendSSEEvent(w, flusher, "progress", ev)

		case <-heartbeat.C:
			sendSSEEvent(w, flusher, "heartbeat", &model.HeartbeatEvent{Timestamp: time.Now().UTC()})

		case out := <-done:
			// Drain stage events reported before the result.
			for len(progress) > 0 {
				sendSSEEvent(w, flusher, "progress", <-progress)
			}
			if out.err != nil {
				status, body := analysisError(out.err)
				if status == http.StatusInternalServerError {
					log.Error("streamed analysis failed", zap.Error(out.err))
				}
				ev := &model.AnalysisErrorEvent{Error: fmt.Sprint(body["message"])}
				if reason, ok := body["reason"].(string); ok {
					ev.Reason = reason
				}
				if sugg, ok := body["suggestions"].([]string); ok {
					ev.Suggestions = sugg
				}
				sendSSEEvent(w, flusher, "error", ev)
			} else {
				sendSSEEvent(w, flusher, "result", out.result)
			}
			sendSSEEvent(w, flusher, "done", map[string]bool{"success": out.err == nil})
			return
		}
	}
}

// ChatEvents handles GET /api/chat/events. It replays the caller's chat
// turn events after ?after_sequence=N and keeps the connection open with
// heartbeats.
func (h *StreamHandler) ChatEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	log := middleware.RequestLogger(ctx, h.logger)

	if h.events == nil {
		writeError(w, http.StatusServiceUnavailable, "Event stream is not enabled")
		return
	}

	var afterSequence uint64
	if seqStr := r.URL.Query().Get("after_sequence"); seqStr != "" {
		if seq, err := strconv.ParseUint(seqStr, 10, 64); err == nil {
			afterSequence = seq
		}
	}

	flusher, ok := startSSE(w)
	if !ok {
		return
	}
	metrics.IncrementSSEConnections()
	defer metrics.DecrementSSEConnections()

	sendSSEEvent(w, flusher, "connected", map[string]string{"userId": userID})

	lastSequence := afterSequence
	total := 0
	for {
		events, last, more, err := h.events.ChatTurns(ctx, userID, lastSequence, replayBatch)
		if err != nil {
			log.Error("failed to replay chat events", zap.Error(err))
			sendSSEEvent(w, flusher, "error", &model.AnalysisErrorEvent{
				Error:  "Failed to replay events",
				Reason: "replay_error",
			})
			break
		}
		for _, ev := range events {
			select {
			case <-ctx.Done():
				return
			default:
			}
			sendSSEEvent(w, flusher, "chat_turn", ev)
			total++
		}
		lastSequence = last
		if !more || len(events) == 0 {
			break
		}
	}

	sendSSEEvent(w, flusher, "replay_complete", &ReplayCompleteEvent{
		LastSequence: lastSequence,
		EventCount:   total,
	})
	log.Info("chat event replay complete",
		zap.Int("events_replayed", total),
		zap.Uint64("last_sequence", lastSequence),
	)

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("SSE client disconnected")
			return
		case <-heartbeat.C:
			sendSSEEvent(w, flusher, "heartbeat", &model.HeartbeatEvent{Timestamp: time.Now().UTC()})
		}
	}
}

func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "event: %s\n", event)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
	flusher.Flush()

	return nil
}
