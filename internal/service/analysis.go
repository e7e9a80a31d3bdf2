package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/skillbridge/skillbridge-api/internal/analyzer"
	"github.com/skillbridge/skillbridge-api/internal/extract"
	"github.com/skillbridge/skillbridge-api/internal/model"
	"github.com/skillbridge/skillbridge-api/pkg/logger"
	"github.com/skillbridge/skillbridge-api/pkg/metrics"
	"github.com/skillbridge/skillbridge-api/pkg/tracing"
)

// UnavailableMessage is returned when the analyzer fails its health check.
const UnavailableMessage = "Analysis service is currently unavailable. Please try again later."

// DefaultReuseWindow is how long a completed analysis is served again
// instead of re-running the analyzer.
const DefaultReuseWindow = 24 * time.Hour

// ErrFileMissing reports a resume whose stored file is gone.
var ErrFileMissing = errors.New("resume file not found on server")

// Analyzer runs the remote analysis.
type Analyzer interface {
	Health(ctx context.Context) error
	Analyze(ctx context.Context, text string) (*analyzer.Result, error)
}

// TextExtractor turns a stored resume file into text.
type TextExtractor interface {
	ExtractFile(ctx context.Context, path, mimeType string) (string, error)
}

// ResumeRepository is the resume storage the analysis flow needs.
type ResumeRepository interface {
	Get(ctx context.Context, id, userID string) (*model.Resume, error)
	SetStatus(ctx context.Context, id string, status model.ResumeStatus) error
}

// AnalysisRepository stores analysis runs.
type AnalysisRepository interface {
	Create(ctx context.Context, a *model.Analysis) error
	Update(ctx context.Context, a *model.Analysis) error
	LatestForResume(ctx context.Context, resumeID, userID string) (*model.Analysis, error)
	LatestCompletedForResume(ctx context.Context, resumeID, userID string) (*model.Analysis, error)
	CompletedSince(ctx context.Context, resumeID, userID string, since time.Time) (*model.Analysis, error)
}

// HistoryWriter records dashboard snapshots.
type HistoryWriter interface {
	Create(ctx context.Context, h *model.AnalysisHistory) error
}

// ProgressFunc receives stage changes of a running analysis.
type ProgressFunc func(model.AnalysisProgressEvent)

// AnalysisService runs resume analyses.
type AnalysisService struct {
	resumes     ResumeRepository
	analyses    AnalysisRepository
	history     HistoryWriter
	analyzer    Analyzer
	extractor   TextExtractor
	events      EventPublisher
	reuseWindow time.Duration
	logger      *logger.Logger
	now         func() time.Time
}

// NewAnalysisService creates an analysis service.
func NewAnalysisService(
	resumes ResumeRepository,
	analyses AnalysisRepository,
	history HistoryWriter,
	az Analyzer,
	extractor TextExtractor,
	events EventPublisher,
	reuseWindow time.Duration,
	log *logger.Logger,
) *AnalysisService {
	if events == nil {
		events = NopPublisher{}
	}
	if reuseWindow <= 0 {
		reuseWindow = DefaultReuseWindow
	}
	return &AnalysisService{
		resumes:     resumes,
		analyses:    analyses,
		history:     history,
		analyzer:    az,
		extractor:   extractor,
		events:      events,
		reuseWindow: reuseWindow,
		logger:      log.Named("analysis"),
		now:         time.Now,
	}
}

// Analyze analyzes a resume owned by userID. A completed analysis inside
// the reuse window is returned with Cached set. progress may be nil.
func (s *AnalysisService) Analyze(ctx context.Context, userID, resumeID string, progress ProgressFunc) (*model.AnalysisResult, error) {
	ctx, span := tracing.Tracer("analysis").Start(ctx, "AnalysisService.Analyze")
	defer span.End()
	span.SetAttributes(attribute.String("resume.id", resumeID))

	if progress == nil {
		progress = func(model.AnalysisProgressEvent) {}
	}
	report := func(stage model.AnalysisStage, pct int, msg string) {
		progress(model.AnalysisProgressEvent{ResumeID: resumeID, Stage: stage, Progress: pct, Message: msg})
	}

	start := s.now()
	log := s.logger.With(zap.String("user_id", userID), zap.String("resume_id", resumeID))

	resume, err := s.resumes.Get(ctx, resumeID, userID)
	if err != nil {
		return nil, fmt.Errorf("resume %s: %w", resumeID, err)
	}
	if _, err := os.Stat(resume.FilePath); err != nil {
		log.Error("resume file missing", zap.String("path", resume.FilePath), zap.Error(err))
		return nil, ErrFileMissing
	}

	cached, err := s.analyses.CompletedSince(ctx, resumeID, userID, start.UTC().Add(-s.reuseWindow))
	if err == nil {
		log.Info("returning recent analysis", zap.String("analysis_id", cached.ID))
		report(model.StageCompleted, 100, "Analysis retrieved from cache")
		return &model.AnalysisResult{Analysis: cached, Cached: true}, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("look up recent analysis: %w", err)
	}

	report(model.StageQueued, 5, "Checking analysis service")
	if err := s.analyzer.Health(ctx); err != nil {
		log.Warn("analyzer health check failed", zap.Error(err))
		recordError(ctx, err)
		return nil, &AnalysisFailure{Kind: FailureUnavailable, Message: UnavailableMessage, Err: err}
	}

	a := &model.Analysis{
		ResumeID: resumeID,
		UserID:   userID,
		Status:   model.AnalysisProcessing,
	}
	if err := s.analyses.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create analysis: %w", err)
	}
	s.setResumeStatus(ctx, log, resumeID, model.ResumeAnalyzing)

	report(model.StageExtracting, 20, "Extracting text from resume")
	text, err := s.extractor.ExtractFile(ctx, resume.FilePath, resume.MimeType)
	if err != nil {
		reason := extract.ReasonOf(err)
		metrics.IncExtractionFailure(string(reason))
		log.Warn("text extraction failed", zap.String("reason", string(reason)), zap.Error(err))
		failure := &AnalysisFailure{
			Kind:        FailureExtraction,
			Reason:      string(reason),
			Message:     extract.UserMessageOf(err),
			Suggestions: extract.Suggestions(),
			Err:         err,
		}
		s.fail(ctx, log, a, failure, start)
		return nil, failure
	}

	report(model.StageAnalyzing, 50, "Analyzing resume")
	result, err := s.analyzer.Analyze(ctx, text)
	if err != nil {
		failure := &AnalysisFailure{Kind: FailureAnalyzer, Message: "Analysis service unavailable", Err: err}
		var ae *analyzer.Error
		if errors.As(err, &ae) {
			failure.Reason = string(ae.Kind)
			failure.Message = ae.UserMessage()
		}
		s.fail(ctx, log, a, failure, start)
		return nil, failure
	}

	report(model.StageSaving, 85, "Saving results")
	result.ApplyTo(a)
	a.Status = model.AnalysisCompleted
	a.ErrorMessage = ""
	a.ProcessingTimeMs = s.now().Sub(start).Milliseconds()
	if err := s.analyses.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("save analysis: %w", err)
	}

	if err := s.history.Create(ctx, HistoryFor(a)); err != nil {
		log.Warn("failed to save analysis history", zap.Error(err))
	}
	s.setResumeStatus(ctx, log, resumeID, model.ResumeCompleted)

	elapsed := s.now().Sub(start)
	metrics.RecordAnalysis(string(model.AnalysisCompleted), elapsed.Seconds())
	publishAnalysis(ctx, s.events, log, s.event(a, ""))
	log.Info("analysis completed",
		zap.String("analysis_id", a.ID),
		zap.Int("skills", len(a.ExtractedSkills)),
		zap.Int("gaps", len(a.LearningGaps)),
		zap.Duration("elapsed", elapsed),
	)
	report(model.StageCompleted, 100, "Resume analysis completed successfully")

	return &model.AnalysisResult{Analysis: a}, nil
}

func (s *AnalysisService) fail(ctx context.Context, log *logger.Logger, a *model.Analysis, f *AnalysisFailure, start time.Time) {
	recordError(ctx, f)
	a.Status = model.AnalysisFailed
	a.ErrorMessage = f.Message
	a.ProcessingTimeMs = s.now().Sub(start).Milliseconds()
	if err := s.analyses.Update(ctx, a); err != nil {
		log.Error("failed to mark analysis failed", zap.String("analysis_id", a.ID), zap.Error(err))
	}
	s.setResumeStatus(ctx, log, a.ResumeID, model.ResumeFailed)

	metrics.RecordAnalysis(string(model.AnalysisFailed), s.now().Sub(start).Seconds())
	publishAnalysis(ctx, s.events, log, s.event(a, f.Reason))
}

func (s *AnalysisService) setResumeStatus(ctx context.Context, log *logger.Logger, resumeID string, status model.ResumeStatus) {
	if err := s.resumes.SetStatus(ctx, resumeID, status); err != nil {
		log.Warn("failed to update resume status", zap.String("status", string(status)), zap.Error(err))
	}
}

func (s *AnalysisService) event(a *model.Analysis, reason string) *model.AnalysisEvent {
	typ := model.EventAnalysisCompleted
	if a.Status == model.AnalysisFailed {
		typ = model.EventAnalysisFailed
	}
	return &model.AnalysisEvent{
		ID:               model.NewID(),
		Type:             typ,
		UserID:           a.UserID,
		ResumeID:         a.ResumeID,
		AnalysisID:       a.ID,
		Status:           a.Status,
		Reason:           reason,
		TopDomain:        a.Summary.TopDomain,
		SkillsFound:      len(a.ExtractedSkills),
		ProcessingTimeMs: a.ProcessingTimeMs,
		CreatedAt:        s.now().UTC(),
	}
}

// Latest returns the newest analysis of a resume in any status.
func (s *AnalysisService) Latest(ctx context.Context, userID, resumeID string) (*model.Analysis, error) {
	if _, err := s.resumes.Get(ctx, resumeID, userID); err != nil {
		return nil, fmt.Errorf("resume %s: %w", resumeID, err)
	}
	return s.analyses.LatestForResume(ctx, resumeID, userID)
}

// LatestCompleted returns the newest completed analysis of a resume.
func (s *AnalysisService) LatestCompleted(ctx context.Context, userID, resumeID string) (*model.Analysis, error) {
	return s.analyses.LatestCompletedForResume(ctx, resumeID, userID)
}

// HistoryConfidence is the fixed confidence recorded on history entries.
const HistoryConfidence = 0.8

// HistoryFor builds the dashboard snapshot of a completed analysis.
func HistoryFor(a *model.Analysis) *model.AnalysisHistory {
	skills := make([]model.SkillFound, 0, len(a.ExtractedSkills))
	for _, sk := range a.ExtractedSkills {
		skills = append(skills, model.SkillFound{Skill: sk, Category: analyzer.SkillCategory(sk)})
	}

	domains := make([]model.CareerDomainScore, 0, len(a.PredictedCareerDomains))
	for _, d := range a.PredictedCareerDomains {
		domains = append(domains, model.CareerDomainScore{Domain: d, Confidence: a.DomainMatchScores[d] / 100})
	}

	var gaps []model.SkillGap
	for _, g := range a.LearningGaps {
		for _, sk := range g.MissingSkills {
			gaps = append(gaps, model.SkillGap{Skill: sk, Domain: g.Domain, Priority: g.Priority})
		}
	}
	if gaps == nil {
		gaps = []model.SkillGap{}
	}

	years := a.ExperienceYears.TotalYears
	return &model.AnalysisHistory{
		UserID:          a.UserID,
		ResumeID:        a.ResumeID,
		AnalysisID:      a.ID,
		AnalysisDate:    a.UpdatedAt.UTC(),
		Status:          model.HistoryActive,
		SkillsFound:     skills,
		CareerDomains:   domains,
		SkillGaps:       gaps,
		ExperienceLevel: model.ExperienceLevel{Years: years, Level: analyzer.ExperienceLevel(years)},
		Metrics: model.HistoryMetrics{
			TotalSkillsFound:    a.Summary.TotalSkillsFound,
			TotalGapsIdentified: a.Summary.GapsIdentified,
			ProcessingTimeMs:    a.ProcessingTimeMs,
			ConfidenceScore:     HistoryConfidence,
		},
	}
}

// round rounds v to the given number of decimals.
func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
