package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/skillbridge/skillbridge-api/internal/extract"
	"github.com/skillbridge/skillbridge-api/internal/middleware"
	"github.com/skillbridge/skillbridge-api/internal/service"
	"github.com/skillbridge/skillbridge-api/pkg/logger"
)

// uploadField is the multipart field carrying the resume file.
const uploadField = "resume"

// ResumeHandler handles resume upload endpoints.
type ResumeHandler struct {
	service  *service.ResumeService
	maxBytes int64
	logger   *logger.Logger
}

// NewResumeHandler creates a new resume handler.
func NewResumeHandler(svc *service.ResumeService, maxBytes int64, log *logger.Logger) *ResumeHandler {
	if maxBytes <= 0 {
		maxBytes = service.DefaultUploadMaxBytes
	}
	return &ResumeHandler{service: svc, maxBytes: maxBytes, logger: log}
}

func (h *ResumeHandler) tooLarge(w http.ResponseWriter) {
	writeError(w, http.StatusRequestEntityTooLarge, "File too large. Maximum size is "+extract.FormatSize(h.maxBytes)+".")
}

// Upload handles POST /api/resume/upload-resume
func (h *ResumeHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	// Multipart framing needs headroom over the file limit.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+64<<10)

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.tooLarge(w)
			return
		}
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	res, err := h.service.Upload(ctx, middleware.GetUserID(ctx), header.Filename, file)
	switch {
	case err == nil:
		respond(w, http.StatusCreated, "Resume uploaded successfully", map[string]any{"resume": res})
	case errors.Is(err, service.ErrUnsupportedFile):
		writeError(w, http.StatusBadRequest, extract.MessageFor(extract.ReasonUnsupportedType))
	case errors.Is(err, service.ErrFileTooLarge):
		h.tooLarge(w)
	case errors.Is(err, service.ErrEmptyFile):
		writeError(w, http.StatusBadRequest, "Uploaded file is empty")
	default:
		middleware.RequestLogger(ctx, h.logger).Error("resume upload failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Server error during file upload")
	}
}

// List handles GET /api/resume/resumes
func (h *ResumeHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resumes, err := h.service.List(ctx, middleware.GetUserID(ctx))
	if err != nil {
		middleware.RequestLogger(ctx, h.logger).Error("list resumes failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	respond(w, http.StatusOK, "", map[string]any{"resumes": resumes, "count": len(resumes)})
}

// Delete handles DELETE /api/resume/resumes/{id}
func (h *ResumeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	if err := middleware.ValidateID(id); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	err := h.service.Delete(ctx, middleware.GetUserID(ctx), id)
	switch {
	case err == nil:
		respond(w, http.StatusOK, "Resume deleted successfully", nil)
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "Resume not found")
	default:
		middleware.RequestLogger(ctx, h.logger).Error("delete resume failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Server error")
	}
}
