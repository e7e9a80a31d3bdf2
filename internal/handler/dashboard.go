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

// DashboardHandler handles dashboard endpoints.
type DashboardHandler struct {
	service *service.DashboardService
	logger  *logger.Logger
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(svc *service.DashboardService, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{service: svc, logger: log}
}

func (h *DashboardHandler) fail(w http.ResponseWriter, r *http.Request, what string, err error) {
	if errors.Is(err, service.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Analysis not found")
		return
	}
	middleware.RequestLogger(r.Context(), h.logger).Error(what+" failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "Server error")
}

// Analytics handles GET /api/dashboard/analytics?period=30d
func (h *DashboardHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	period := model.Period(r.URL.Query().Get("period")).Normalize()
	out, err := h.service.Analytics(ctx, middleware.GetUserID(ctx), period)
	if err != nil {
		h.fail(w, r, "dashboard analytics", err)
		return
	}
	respond(w, http.StatusOK, "", out)
}

// Recent handles GET /api/dashboard/recent-analyses?limit=5
func (h *DashboardHandler) Recent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	out, err := h.service.Recent(ctx, middleware.GetUserID(ctx), queryInt(r, "limit", service.DefaultRecentLimit))
	if err != nil {
		h.fail(w, r, "recent analyses", err)
		return
	}
	respond(w, http.StatusOK, "", out)
}

// Stats handles GET /api/dashboard/user-stats
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	out, err := h.service.Stats(ctx, middleware.GetUserID(ctx))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		h.fail(w, r, "user stats", err)
		return
	}
	respond(w, http.StatusOK, "", out)
}

// SkillsSummary handles GET /api/dashboard/skills-summary
func (h *DashboardHandler) SkillsSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	out, err := h.service.SkillsSummary(ctx, middleware.GetUserID(ctx))
	if err != nil {
		h.fail(w, r, "skills summary", err)
		return
	}
	respond(w, http.StatusOK, "", out)
}

// DomainsSummary handles GET /api/dashboard/career-domains-summary
func (h *DashboardHandler) DomainsSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	out, err := h.service.DomainsSummary(ctx, middleware.GetUserID(ctx))
	if err != nil {
		h.fail(w, r, "career domains summary", err)
		return
	}
	respond(w, http.StatusOK, "", out)
}

// Delete handles DELETE /api/dashboard/analysis/{analysisId}
func (h *DashboardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "analysisId")
	if err := middleware.ValidateID(id); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.service.DeleteEntry(ctx, middleware.GetUserID(ctx), id); err != nil {
		h.fail(w, r, "delete history entry", err)
		return
	}
	respond(w, http.StatusOK, "Analysis deleted successfully", nil)
}

// Export handles GET /api/dashboard/export-analysis/{analysisId}
func (h *DashboardHandler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "analysisId")
	if err := middleware.ValidateID(id); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	report, err := h.service.Export(ctx, middleware.GetUserID(ctx), id)
	if err != nil {
		h.fail(w, r, "export analysis", err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(report.Body)
}

// GoalHandler handles learning goal endpoints.
type GoalHandler struct {
	service   *service.GoalService
	validator *middleware.Validator
	logger    *logger.Logger
}

// NewGoalHandler creates a new goal handler.
func NewGoalHandler(svc *service.GoalService, v *middleware.Validator, log *logger.Logger) *GoalHandler {
	return &GoalHandler{service: svc, validator: v, logger: log}
}

// List handles GET /api/goals
func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	goals, err := h.service.List(ctx, middleware.GetUserID(ctx))
	if err != nil {
		middleware.RequestLogger(ctx, h.logger).Error("list goals failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	respond(w, http.StatusOK, "", goals)
}

// Create handles POST /api/goals
func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req model.LearningGoalRequest
	if !decode(w, r, h.validator, &req) {
		return
	}
	g, err := h.service.Create(ctx, middleware.GetUserID(ctx), req)
	if err != nil {
		middleware.RequestLogger(ctx, h.logger).Error("create goal failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	respond(w, http.StatusCreated, "Goal created", g)
}

// Update handles PUT /api/goals/{id}
func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	if err := middleware.ValidateID(id); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req model.LearningGoalRequest
	if !decode(w, r, h.validator, &req) {
		return
	}
	g, err := h.service.Update(ctx, middleware.GetUserID(ctx), id, req)
	switch {
	case err == nil:
		respond(w, http.StatusOK, "Goal updated", g)
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "Goal not found")
	default:
		middleware.RequestLogger(ctx, h.logger).Error("update goal failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Server error")
	}
}
