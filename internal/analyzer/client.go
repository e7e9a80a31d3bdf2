// Package analyzer talks to the remote resume analysis service.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/skillbridge/skillbridge-api/internal/model"
	"github.com/skillbridge/skillbridge-api/pkg/logger"
)

// Kind classifies an analyzer failure.
type Kind string

const (
	KindTimeout     Kind = "timeout"
	KindUpstream    Kind = "upstream"
	KindUnavailable Kind = "unavailable"
)

// Error is a failed analyzer call.
type Error struct {
	Kind   Kind
	Status int
	// Detail is the upstream error text or status text.
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("analyzer %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("analyzer %s: %d %s", e.Kind, e.Status, e.Detail)
}

func (e *Error) Unwrap() error { return e.Err }

// UserMessage is the message returned to the caller of an analysis.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case KindTimeout:
		return "Analysis request timed out"
	case KindUpstream:
		return "Analysis failed: " + e.Detail
	default:
		return "Analysis service not responding"
	}
}

// Config configures a Client.
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	HealthTimeout time.Duration
}

// Client calls the analyzer over HTTP.
type Client struct {
	http          *resty.Client
	healthTimeout time.Duration
	log           *logger.Logger
}

// New creates an analyzer client.
func New(cfg Config, log *logger.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.HealthTimeout <= 0 {
		cfg.HealthTimeout = 5 * time.Second
	}
	if log == nil {
		log = logger.NewNop()
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		http:          client,
		healthTimeout: cfg.HealthTimeout,
		log:           log.Named("analyzer"),
	}
}

// Health reports whether the analyzer answers its health endpoint.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	resp, err := c.http.R().SetContext(ctx).Get("/health")
	if err != nil {
		return classify(err)
	}
	if resp.StatusCode() != http.StatusOK {
		return &Error{Kind: KindUnavailable, Status: resp.StatusCode(), Detail: http.StatusText(resp.StatusCode())}
	}
	return nil
}

type analyzeRequest struct {
	Text string `json:"text"`
}

type upstreamError struct {
	Error string `json:"error"`
}

// Analyze sends resume text for analysis.
func (c *Client) Analyze(ctx context.Context, text string) (*Result, error) {
	var (
		result Result
		failed upstreamError
	)
	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(analyzeRequest{Text: text}).
		SetResult(&result).
		SetError(&failed).
		Post("/analyze-resume")
	if err != nil {
		c.log.Warn("analyzer request failed", zap.Error(err), zap.Int("text_length", len(text)))
		return nil, classify(err)
	}
	if resp.IsError() {
		detail := failed.Error
		if detail == "" {
			detail = http.StatusText(resp.StatusCode())
		}
		c.log.Warn("analyzer returned an error",
			zap.Int("status", resp.StatusCode()),
			zap.String("detail", detail),
		)
		return nil, &Error{Kind: KindUpstream, Status: resp.StatusCode(), Detail: detail}
	}

	c.log.Debug("analyzer response received",
		zap.Int("skills", len(result.ExtractedSkills)),
		zap.Int("domains", len(result.PredictedCareerDomains)),
		zap.Int("gaps", len(result.LearningGaps)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &result, nil
}

func classify(err error) *Error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &Error{Kind: KindTimeout, Err: err}
	}
	return &Error{Kind: KindUnavailable, Err: err}
}

// Result is the analyzer's response body.
type Result struct {
	ExtractedSkills        []string           `json:"extracted_skills"`
	ExperienceYears        resultExperience   `json:"experience_years"`
	Keywords               []string           `json:"keywords"`
	PredictedCareerDomains []string           `json:"predicted_career_domains"`
	DomainMatchScores      map[string]float64 `json:"domain_match_scores"`
	LearningGaps           []resultGap        `json:"learning_gaps"`
	Summary                *resultSummary     `json:"analysis_summary"`
}

type resultExperience struct {
	TotalYears float64   `json:"total_years"`
	Mentions   []float64 `json:"mentions"`
}

type resultGap struct {
	Domain        string   `json:"domain"`
	MissingSkills []string `json:"missing_skills"`
	Priority      string   `json:"priority"`
}

type resultSummary struct {
	TotalSkillsFound int     `json:"total_skills_found"`
	YearsExperience  float64 `json:"years_experience"`
	TopDomain        string  `json:"top_domain"`
	GapsIdentified   int     `json:"gaps_identified"`
}

// ApplyTo copies the result into a, filling summary fields the analyzer
// left empty.
func (r *Result) ApplyTo(a *model.Analysis) {
	a.ExtractedSkills = nonNil(r.ExtractedSkills)
	a.ExperienceYears = model.ExperienceYears{
		TotalYears: r.ExperienceYears.TotalYears,
		Mentions:   r.ExperienceYears.Mentions,
	}
	if a.ExperienceYears.Mentions == nil {
		a.ExperienceYears.Mentions = []float64{}
	}
	a.Keywords = nonNil(r.Keywords)
	a.PredictedCareerDomains = nonNil(r.PredictedCareerDomains)
	a.DomainMatchScores = r.DomainMatchScores
	if a.DomainMatchScores == nil {
		a.DomainMatchScores = map[string]float64{}
	}

	a.LearningGaps = make([]model.LearningGap, 0, len(r.LearningGaps))
	for _, g := range r.LearningGaps {
		p := model.Priority(g.Priority)
		switch p {
		case model.PriorityHigh, model.PriorityMedium, model.PriorityLow:
		default:
			p = model.PriorityMedium
		}
		a.LearningGaps = append(a.LearningGaps, model.LearningGap{
			Domain:        g.Domain,
			MissingSkills: nonNil(g.MissingSkills),
			Priority:      p,
		})
	}

	var s resultSummary
	if r.Summary != nil {
		s = *r.Summary
	}
	if s.TotalSkillsFound == 0 {
		s.TotalSkillsFound = len(a.ExtractedSkills)
	}
	if s.YearsExperience == 0 {
		s.YearsExperience = a.ExperienceYears.TotalYears
	}
	if s.TopDomain == "" {
		s.TopDomain = "Unknown"
		if len(a.PredictedCareerDomains) > 0 {
			s.TopDomain = a.PredictedCareerDomains[0]
		}
	}
	if s.GapsIdentified == 0 {
		s.GapsIdentified = len(a.LearningGaps)
	}
	a.Summary = model.AnalysisSummary{
		TotalSkillsFound: s.TotalSkillsFound,
		YearsExperience:  s.YearsExperience,
		TopDomain:        s.TopDomain,
		GapsIdentified:   s.GapsIdentified,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
