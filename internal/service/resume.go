package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/skillbridge/skillbridge-api/internal/extract"
	"github.com/skillbridge/skillbridge-api/internal/model"
	"github.com/skillbridge/skillbridge-api/pkg/logger"
)

// DefaultUploadMaxBytes caps a resume upload.
const DefaultUploadMaxBytes = 5 << 20

var allowedExtensions = map[string]bool{
	".pdf":      true,
	".docx":     true,
	".txt":      true,
	".html":     true,
	".htm":      true,
	".md":       true,
	".markdown": true,
}

// ResumeStore persists resume records.
type ResumeStore interface {
	Create(ctx context.Context, r *model.Resume) error
	Get(ctx context.Context, id, userID string) (*model.Resume, error)
	ListByUser(ctx context.Context, userID string) ([]model.Resume, error)
	Delete(ctx context.Context, id, userID string) error
	DeleteByUser(ctx context.Context, userID string) ([]model.Resume, error)
}

// AnalysisDeleter removes analyses of a resume.
type AnalysisDeleter interface {
	DeleteByResume(ctx context.Context, resumeID string) error
}

// FormatChecker reports whether a MIME type can be turned into text.
type FormatChecker interface {
	Supports(mimeType string) bool
}

// ResumeService stores uploaded resume files.
type ResumeService struct {
	resumes  ResumeStore
	analyses AnalysisDeleter
	formats  FormatChecker
	dir      string
	maxBytes int64
	logger   *logger.Logger
	now      func() time.Time
}

// NewResumeService creates a resume service writing files under dir.
func NewResumeService(resumes ResumeStore, analyses AnalysisDeleter, formats FormatChecker, dir string, maxBytes int64, log *logger.Logger) *ResumeService {
	if maxBytes <= 0 {
		maxBytes = DefaultUploadMaxBytes
	}
	return &ResumeService{
		resumes:  resumes,
		analyses: analyses,
		formats:  formats,
		dir:      dir,
		maxBytes: maxBytes,
		logger:   log.Named("resume"),
		now:      time.Now,
	}
}

// Upload validates and stores a resume file read from r.
func (s *ResumeService) Upload(ctx context.Context, userID, originalName string, r io.Reader) (*model.Resume, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedExtensions[ext] {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFile, ext)
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	switch {
	case len(data) == 0:
		return nil, ErrEmptyFile
	case int64(len(data)) > s.maxBytes:
		return nil, ErrFileTooLarge
	}

	mimeType := extract.Detect(data, originalName)
	if !s.formats.Supports(mimeType) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, mimeType)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	id := model.NewID()
	filename := id + ext
	path := filepath.Join(s.dir, filename)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, fmt.Errorf("write upload: %w", err)
	}

	res := &model.Resume{
		ID:           id,
		UserID:       userID,
		Filename:     filename,
		OriginalName: filepath.Base(originalName),
		FilePath:     path,
		FileSize:     int64(len(data)),
		MimeType:     mimeType,
		UploadDate:   s.now().UTC(),
		Status:       model.ResumeUploaded,
	}
	if err := s.resumes.Create(ctx, res); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("save resume: %w", err)
	}
	s.logger.Info("resume uploaded",
		zap.String("user_id", userID),
		zap.String("resume_id", id),
		zap.String("mime", mimeType),
		zap.Int64("size", res.FileSize),
	)
	return res, nil
}

// List returns the user's resumes, newest first.
func (s *ResumeService) List(ctx context.Context, userID string) ([]model.Resume, error) {
	out, err := s.resumes.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Resume{}
	}
	return out, nil
}

// Delete removes a resume, its file and its analyses.
func (s *ResumeService) Delete(ctx context.Context, userID, id string) error {
	res, err := s.resumes.Get(ctx, id, userID)
	if err != nil {
		return err
	}
	s.removeFile(res.FilePath)
	if err := s.analyses.DeleteByResume(ctx, id); err != nil {
		s.logger.Warn("failed to delete resume analyses", zap.String("resume_id", id), zap.Error(err))
	}
	return s.resumes.Delete(ctx, id, userID)
}

// DeleteAll removes every resume of a user with its file.
func (s *ResumeService) DeleteAll(ctx context.Context, userID string) error {
	removed, err := s.resumes.DeleteByUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, r := range removed {
		s.removeFile(r.FilePath)
	}
	return nil
}

func (s *ResumeService) removeFile(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("failed to remove resume file", zap.String("path", path), zap.Error(err))
	}
}
