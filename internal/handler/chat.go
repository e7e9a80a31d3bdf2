package handler

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/skillbridge/skillbridge-api/internal/middleware"
	"github.com/skillbridge/skillbridge-api/internal/model"
	"github.com/skillbridge/skillbridge-api/internal/service"
	"github.com/skillbridge/skillbridge-api/pkg/logger"
)

// ChatHandler handles chat endpoints.
type ChatHandler struct {
	chat      *service.ChatService
	contexts  *service.ContextService
	validator *middleware.Validator
	logger    *logger.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(chat *service.ChatService, contexts *service.ContextService, v *middleware.Validator, log *logger.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, contexts: contexts, validator: v, logger: log}
}

type chatReply struct {
	Success bool `json:"success"`
	*model.ChatResponse
}

type chatHistory struct {
	Success bool `json:"success"`
	*model.ChatHistoryResponse
}

func (h *ChatHandler) serverError(w http.ResponseWriter, r *http.Request, what string, err error) {
	middleware.RequestLogger(r.Context(), h.logger).Error(what+" failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

// Send handles POST /api/chat/send. Authentication is optional.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req model.ChatRequest
	if !decode(w, r, nil, &req) {
		return
	}
	if err := middleware.ValidateMessageContent(req.Message); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.chat.Send(ctx, middleware.GetUserID(ctx), req)
	if err != nil {
		if errors.Is(err, service.ErrEmptyMessage) {
			writeError(w, http.StatusBadRequest, "Message is required")
			return
		}
		h.serverError(w, r, "chat send", err)
		return
	}
	writeJSON(w, http.StatusOK, chatReply{Success: true, ChatResponse: resp})
}

// History handles GET /api/chat/history?limit=50&sessionId=
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	out, err := h.chat.History(ctx, middleware.GetUserID(ctx),
		r.URL.Query().Get("sessionId"),
		queryInt(r, "limit", service.DefaultHistoryLimit),
	)
	if err != nil {
		h.serverError(w, r, "chat history", err)
		return
	}
	writeJSON(w, http.StatusOK, chatHistory{Success: true, ChatHistoryResponse: out})
}

// Insights handles GET /api/chat/insights
func (h *ChatHandler) Insights(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	insights, err := h.contexts.Insights(ctx, middleware.GetUserID(ctx))
	if err != nil {
		h.serverError(w, r, "chat insights", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "insights": insights})
}

// Preferences handles GET /api/chat/preferences
func (h *ChatHandler) Preferences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	prefs, err := h.contexts.Preferences(ctx, middleware.GetUserID(ctx))
	if err != nil {
		h.serverError(w, r, "load preferences", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "preferences": prefs})
}

// UpdatePreferences handles PUT /api/chat/preferences
func (h *ChatHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req model.PreferencesUpdate
	if !decode(w, r, h.validator, &req) {
		return
	}
	prefs, err := h.contexts.UpdatePreferences(ctx, middleware.GetUserID(ctx), req)
	if err != nil {
		h.serverError(w, r, "update preferences", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     "Preferences updated successfully",
		"preferences": prefs,
	})
}

// Feedback handles POST /api/chat/feedback
func (h *ChatHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req model.FeedbackRequest
	if !decode(w, r, h.validator, &req) {
		return
	}
	perf, err := h.contexts.RecordFeedback(ctx, middleware.GetUserID(ctx), req.Rating)
	if err != nil {
		h.serverError(w, r, "record feedback", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     "Feedback recorded",
		"performance": perf,
	})
}

// Performance handles GET /api/chat/performance
func (h *ChatHandler) Performance(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "metrics": h.chat.Performance(r.Context())})
}

// Languages handles GET /api/chat/languages
func (h *ChatHandler) Languages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "languages": h.chat.Languages()})
}

// ClearCache handles POST /api/chat/clear-cache
func (h *ChatHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	h.chat.ClearCaches(r.Context())
	respond(w, http.StatusOK, "All caches cleared successfully", nil)
}

// Health handles GET /api/chat/health
func (h *ChatHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Chat service is healthy",
		"timestamp": time.Now().UTC(),
	})
}
