package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/skillbridge/skillbridge-api/internal/model"
	"github.com/skillbridge/skillbridge-api/pkg/logger"
)

// Selection categories that are not phrase-table names.
const (
	CategoryContextAwareSkills = "context_aware_skills"
	CategoryExactMatch         = "exact_match"
	CategoryFallback           = "fallback"
)

const (
	// ClarifyResponse is used when a keyword category has no table entry.
	ClarifyResponse = "I can help you with that! Could you please provide more specific details about what you'd like to know?"
	// NotSureResponse is the generic fallback reply.
	NotSureResponse = "I'm not sure how to help with that. Would you like advice on your career, skills, or learning paths?"
)

var learnNextPhrases = []string{
	"what should i learn next",
	"what skills should i learn",
	"what to learn next",
	"which skills to learn",
}

var keywordCategories = []rule{
	{"resume", []string{"resume", "cv", "curriculum vitae", "application"}},
	{"interview", []string{"interview", "interviewing", "questions", "preparation"}},
	{"career", []string{"career", "job", "profession", "work", "employment"}},
	{"skills", []string{"skill", "learn", "training", "development", "competency"}},
	{"networking", []string{"network", "connect", "relationship", "linkedin"}},
	{"salary", []string{"salary", "pay", "compensation", "money", "earnings"}},
	{"leadership", []string{"lead", "leadership", "manage", "supervise", "direct"}},
	{"communication", []string{"communicate", "presentation", "speaking", "writing"}},
	{"time", []string{"time management", "productivity", "efficiency", "schedule"}},
	{"remote", []string{"remote", "work from home", "telecommute", "virtual"}},
	{"freelance", []string{"freelance", "contract", "consulting", "self-employed"}},
	{"branding", []string{"brand", "personal brand", "reputation", "image"}},
}

// AnalysisReader exposes a user's most recent completed analysis.
type AnalysisReader interface {
	LatestCompleted(ctx context.Context, userID string) (*model.Analysis, error)
}

// Selection is the base reply chosen for a message.
type Selection struct {
	Message      string
	Confidence   float64
	Category     string
	Pattern      string
	ResponseTime time.Duration
}

// Matched reports whether a rule tier produced the reply.
func (s Selection) Matched() bool {
	return s.Category != CategoryFallback
}

// Selector picks a base reply by walking the rule tiers in order.
type Selector struct {
	table    *PhraseTable
	analyses AnalysisReader
	logger   *logger.Logger
	now      func() time.Time
}

// NewSelector creates a selector. analyses may be nil, disabling the
// analysis-aware tiers.
func NewSelector(table *PhraseTable, analyses AnalysisReader, log *logger.Logger) *Selector {
	if table == nil {
		table = DefaultPhraseTable()
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Selector{
		table:    table,
		analyses: analyses,
		logger:   log,
		now:      time.Now,
	}
}

// Select returns the reply for message. userID is empty for anonymous callers.
func (s *Selector) Select(ctx context.Context, message, userID string) Selection {
	start := s.now()
	sel := s.selectReply(ctx, normalize(message), userID)
	sel.ResponseTime = s.now().Sub(start)
	return sel
}

func (s *Selector) selectReply(ctx context.Context, msg, userID string) Selection {
	if userID != "" && containsAny(msg, learnNextPhrases) {
		if sel, ok := s.learnNext(ctx, userID); ok {
			return sel
		}
	}

	if resp, ok := s.table.Exact(msg); ok {
		return Selection{Message: resp, Confidence: 1.0, Category: CategoryExactMatch}
	}

	if cat, p, ok := s.table.Match(msg); ok {
		return Selection{Message: p.Response, Confidence: 0.9, Category: cat, Pattern: p.Pattern}
	}

	if sel, ok := s.keywordMatch(msg); ok {
		return sel
	}

	return Selection{
		Message:    s.fallback(ctx, userID),
		Confidence: 0.5,
		Category:   CategoryFallback,
	}
}

func (s *Selector) learnNext(ctx context.Context, userID string) (Selection, bool) {
	gap, ok := s.firstGap(ctx, userID)
	if !ok {
		return Selection{}, false
	}
	if len(gap.MissingSkills) > 0 {
		return Selection{
			Message: fmt.Sprintf(
				"Based on your recent analysis, you should focus on developing these skills in the domain of %s: %s. Would you like resources or a learning plan for these?",
				gap.Domain, strings.Join(gap.MissingSkills, ", ")),
			Confidence: 1.0,
			Category:   CategoryContextAwareSkills,
		}, true
	}
	return Selection{
		Message:    fmt.Sprintf("Your top learning gap is in %s. Would you like advice or resources to improve in this area?", gap.Domain),
		Confidence: 0.9,
		Category:   CategoryContextAwareSkills,
	}, true
}

func (s *Selector) keywordMatch(msg string) (Selection, bool) {
	best, bestScore := "", 0
	for _, c := range keywordCategories {
		if score := countPresent(msg, c.keywords); score > bestScore {
			best, bestScore = c.label, score
		}
	}
	if bestScore == 0 {
		return Selection{}, false
	}

	resp := ClarifyResponse
	if cat, ok := s.table.Category(best); ok {
		if r, ok := cat.Pattern(best); ok {
			resp = r
		} else if r, ok := cat.FirstExact(); ok {
			resp = r
		}
	}

	return Selection{
		Message:    resp,
		Confidence: min(0.7+0.1*float64(bestScore), 1.0),
		Category:   best,
	}, true
}

func (s *Selector) fallback(ctx context.Context, userID string) string {
	if userID == "" {
		return NotSureResponse
	}
	a := s.latest(ctx, userID)
	if a == nil {
		return NotSureResponse
	}
	if gap, ok := a.FirstGap(); ok {
		return fmt.Sprintf("I'm not sure how to help with that. But I noticed you have a learning gap in %s. Would you like resources or advice to improve in this area?", gap.Domain)
	}
	if a.Summary.TopDomain != "" {
		return fmt.Sprintf("I'm not sure how to help with that. But your top domain is %s. Would you like tips or resources for this field?", a.Summary.TopDomain)
	}
	return NotSureResponse
}

func (s *Selector) firstGap(ctx context.Context, userID string) (model.LearningGap, bool) {
	return s.latest(ctx, userID).FirstGap()
}

// latest swallows lookup failures; a missing analysis only disables the
// personalized tiers.
func (s *Selector) latest(ctx context.Context, userID string) *model.Analysis {
	if s.analyses == nil {
		return nil
	}
	a, err := s.analyses.LatestCompleted(ctx, userID)
	if err != nil {
		s.logger.Debug("latest analysis lookup failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil
	}
	return a
}
