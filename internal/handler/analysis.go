package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/skillbridge/skillbridge-api/internal/middleware"
	"github.com/skillbridge/skillbridge-api/internal/model"
	"github.com/skillbridge/skillbridge-api/internal/service"
	"github.com/skillbridge/skillbridge-api/pkg/logger"
)

// AnalysisHandler handles resume analysis endpoints.
type AnalysisHandler struct {
	service *service.AnalysisService
	logger  *logger.Logger
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(svc *service.AnalysisService, log *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{service: svc, logger: log}
}

// Analyze handles POST /api/analyze/{id}
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resumeID := chi.URLParam(r, "id")
	if err := middleware.ValidateID(resumeID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.Analyze(ctx, middleware.GetUserID(ctx), resumeID, nil)
	if err != nil {
		h.writeAnalysisError(w, r, err)
		return
	}

	msg := "Resume analysis completed successfully"
	if result.Cached {
		msg = "Analysis retrieved from cache"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": msg,
		"data":    result.Analysis,
		"cached":  result.Cached,
	})
}

func (h *AnalysisHandler) writeAnalysisError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := analysisError(err)
	if status == http.StatusInternalServerError {
		middleware.RequestLogger(r.Context(), h.logger).Error("analysis failed", zap.Error(err))
	}
	writeJSON(w, status, body)
}

// analysisError maps an Analyze error to a status and response body.
func analysisError(err error) (int, map[string]any) {
	var failure *service.AnalysisFailure
	switch {
	case errors.As(err, &failure):
		body := map[string]any{"success": false, "message": failure.Message}
		if failure.Kind == service.FailureExtraction {
			body["error"] = failure.Reason
			body["reason"] = failure.Reason
			body["suggestions"] = failure.Suggestions
			return http.StatusBadRequest, body
		}
		return http.StatusServiceUnavailable, body
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, map[string]any{"success": false, "message": "Resume not found"}
	case errors.Is(err, service.ErrFileMissing):
		return http.StatusNotFound, map[string]any{"success": false, "message": "Resume file not found on server"}
	default:
		return http.StatusInternalServerError, map[string]any{"success": false, "message": "Server error during analysis"}
	}
}

// Latest handles GET /api/analyze/{id}
func (h *AnalysisHandler) Latest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resumeID := chi.URLParam(r, "id")
	if err := middleware.ValidateID(resumeID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	a, err := h.service.Latest(ctx, middleware.GetUserID(ctx), resumeID)
	h.writeAnalysis(w, r, a, err)
}

// LatestCompleted handles GET /api/analyze/resume/{resumeId}
func (h *AnalysisHandler) LatestCompleted(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resumeID := chi.URLParam(r, "resumeId")
	if err := middleware.ValidateID(resumeID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	a, err := h.service.LatestCompleted(ctx, middleware.GetUserID(ctx), resumeID)
	h.writeAnalysis(w, r, a, err)
}

func (h *AnalysisHandler) writeAnalysis(w http.ResponseWriter, r *http.Request, a *model.Analysis, err error) {
	switch {
	case err == nil:
		respond(w, http.StatusOK, "", a)
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "Analysis not found")
	default:
		middleware.RequestLogger(r.Context(), h.logger).Error("load analysis failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Server error")
	}
}
