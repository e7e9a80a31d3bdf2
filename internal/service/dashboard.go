package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/skillbridge/skillbridge-api/internal/model"
	"github.com/skillbridge/skillbridge-api/internal/store"
	"github.com/skillbridge/skillbridge-api/pkg/logger"
)

// Dashboard limits.
const (
	DefaultRecentLimit = 5
	topGapLimit        = 10
	topSkillLimit      = 10
)

// HistoryReader reads dashboard snapshots.
type HistoryReader interface {
	ActiveSince(ctx context.Context, userID string, since time.Time) ([]model.AnalysisHistory, error)
	Recent(ctx context.Context, userID string, limit int) ([]model.AnalysisHistory, error)
	Active(ctx context.Context, userID string) ([]model.AnalysisHistory, error)
	Get(ctx context.Context, id, userID string) (*model.AnalysisHistory, error)
	Delete(ctx context.Context, id, userID string) error
}

// GoalProgressReader sums learning goals per week.
type GoalProgressReader interface {
	WeeklyProgress(ctx context.Context, userID string, since time.Time) ([]store.WeeklyGoals, error)
}

// UserReader loads accounts.
type UserReader interface {
	Get(ctx context.Context, id string) (*model.User, error)
}

// ResumeReader loads a resume owned by a user.
type ResumeReader interface {
	Get(ctx context.Context, id, userID string) (*model.Resume, error)
}

// DashboardService aggregates analysis history for charts.
type DashboardService struct {
	history HistoryReader
	goals   GoalProgressReader
	users   UserReader
	resumes ResumeReader
	logger  *logger.Logger
	now     func() time.Time
}

// NewDashboardService creates a dashboard service.
func NewDashboardService(history HistoryReader, goals GoalProgressReader, users UserReader, resumes ResumeReader, log *logger.Logger) *DashboardService {
	return &DashboardService{
		history: history,
		goals:   goals,
		users:   users,
		resumes: resumes,
		logger:  log.Named("dashboard"),
		now:     time.Now,
	}
}

// Analytics aggregates the user's active history inside the period.
func (s *DashboardService) Analytics(ctx context.Context, userID string, period model.Period) (*model.DashboardAnalytics, error) {
	period = period.Normalize()
	end := s.now().UTC()
	start := end.Add(-period.Duration())

	var (
		entries []model.AnalysisHistory
		goals   []store.WeeklyGoals
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		entries, err = s.history.ActiveSince(gctx, userID, start)
		if err != nil {
			return fmt.Errorf("load history: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		goals, err = s.goals.WeeklyProgress(gctx, userID, start)
		if err != nil {
			return fmt.Errorf("load goals: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("dashboard analytics failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	return &model.DashboardAnalytics{
		Overview: model.DashboardOverview{
			TotalAnalyses: len(entries),
			Period:        period,
			StartDate:     start,
			EndDate:       end,
		},
		AnalysesByWeek:     AnalysesByWeek(entries),
		SkillGaps:          TopSkillGaps(entries, topGapLimit),
		LearningProgress:   LearningProgress(goals),
		SkillsDistribution: SkillsDistribution(entries),
		CareerDomains:      CareerDomains(entries),
		ExperienceTrends:   ExperienceTrends(entries),
	}, nil
}

// ISOWeek formats t as "2006-W01".
func ISOWeek(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// AnalysesByWeek counts entries per ISO week in ascending week order.
func AnalysesByWeek(entries []model.AnalysisHistory) []model.WeeklyCount {
	counts := make(map[string]int)
	for _, e := range entries {
		counts[ISOWeek(e.AnalysisDate.UTC())]++
	}
	out := make([]model.WeeklyCount, 0, len(counts))
	for week, n := range counts {
		out = append(out, model.WeeklyCount{Week: week, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Week < out[j].Week })
	return out
}

// TopSkillGaps groups gaps by skill and priority, most frequent first.
// Equal counts keep first-seen order. The domain is the first one seen.
func TopSkillGaps(entries []model.AnalysisHistory, limit int) []model.GapFrequency {
	type key struct {
		skill    string
		priority model.Priority
	}
	index := make(map[key]int)
	var out []model.GapFrequency
	for _, e := range entries {
		for _, g := range e.SkillGaps {
			k := key{g.Skill, g.Priority}
			if i, ok := index[k]; ok {
				out[i].Frequency++
				continue
			}
			index[k] = len(out)
			out = append(out, model.GapFrequency{Skill: g.Skill, Domain: g.Domain, Priority: g.Priority, Frequency: 1})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Frequency > out[j].Frequency })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []model.GapFrequency{}
	}
	return out
}

// LearningProgress turns weekly goal sums into chart points.
func LearningProgress(weeks []store.WeeklyGoals) []model.WeeklyProgress {
	out := make([]model.WeeklyProgress, 0, len(weeks))
	for _, w := range weeks {
		p := model.WeeklyProgress{
			Week:           w.Week,
			TargetHours:    w.TargetHours,
			CompletedHours: w.CompletedHours,
		}
		if w.TotalGoals > 0 {
			p.CompletionRate = float64(w.CompletedGoals) / float64(w.TotalGoals) * 100
		}
		if w.TargetHours > 0 {
			p.ProgressPercentage = w.CompletedHours / w.TargetHours * 100
		}
		out = append(out, p)
	}
	return out
}

// SkillsDistribution is a histogram of skill categories, largest first.
func SkillsDistribution(entries []model.AnalysisHistory) []model.CategoryCount {
	index := make(map[string]int)
	seen := make(map[string]map[string]bool)
	var out []model.CategoryCount
	total := 0
	for _, e := range entries {
		for _, sk := range e.SkillsFound {
			total++
			i, ok := index[sk.Category]
			if !ok {
				i = len(out)
				index[sk.Category] = i
				seen[sk.Category] = make(map[string]bool)
				out = append(out, model.CategoryCount{Category: sk.Category, Skills: []string{}})
			}
			out[i].Count++
			if !seen[sk.Category][sk.Skill] {
				seen[sk.Category][sk.Skill] = true
				out[i].Skills = append(out[i].Skills, sk.Skill)
			}
		}
	}
	for i := range out {
		out[i].Percentage = round(float64(out[i].Count)/float64(total)*100, 1)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if out == nil {
		out = []model.CategoryCount{}
	}
	return out
}

// CareerDomains counts predicted domains with their average confidence.
func CareerDomains(entries []model.AnalysisHistory) []model.DomainFrequency {
	index := make(map[string]int)
	sums := make(map[string]float64)
	var out []model.DomainFrequency
	for _, e := range entries {
		for _, d := range e.CareerDomains {
			i, ok := index[d.Domain]
			if !ok {
				i = len(out)
				index[d.Domain] = i
				out = append(out, model.DomainFrequency{Domain: d.Domain})
			}
			out[i].Frequency++
			sums[d.Domain] += d.Confidence
		}
	}
	for i := range out {
		out[i].Confidence = round(sums[out[i].Domain]/float64(out[i].Frequency), 2)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		return out[i].Confidence > out[j].Confidence
	})
	if out == nil {
		out = []model.DomainFrequency{}
	}
	return out
}

// ExperienceTrends averages years per calendar month and picks the most
// common level. Ties go to the level seen first.
func ExperienceTrends(entries []model.AnalysisHistory) []model.ExperienceTrend {
	type month struct {
		years  float64
		n      int
		levels []string
		counts map[string]int
	}
	months := make(map[string]*month)
	var keys []string
	for _, e := range entries {
		k := e.AnalysisDate.UTC().Format("2006-01")
		m, ok := months[k]
		if !ok {
			m = &month{counts: make(map[string]int)}
			months[k] = m
			keys = append(keys, k)
		}
		m.years += e.ExperienceLevel.Years
		m.n++
		lvl := e.ExperienceLevel.Level
		if m.counts[lvl] == 0 {
			m.levels = append(m.levels, lvl)
		}
		m.counts[lvl]++
	}
	sort.Strings(keys)

	out := make([]model.ExperienceTrend, 0, len(keys))
	for _, k := range keys {
		m := months[k]
		best := ""
		for _, lvl := range m.levels {
			if best == "" || m.counts[lvl] > m.counts[best] {
				best = lvl
			}
		}
		out = append(out, model.ExperienceTrend{
			Period:          k,
			AvgYears:        round(m.years/float64(m.n), 1),
			MostCommonLevel: best,
		})
	}
	return out
}

// Recent returns the newest active history entries.
func (s *DashboardService) Recent(ctx context.Context, userID string, limit int) ([]model.AnalysisHistory, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	out, err := s.history.Recent(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.AnalysisHistory{}
	}
	return out, nil
}

// Stats summarizes the user's history and profile.
func (s *DashboardService) Stats(ctx context.Context, userID string) (*model.UserStats, error) {
	var (
		user    *model.User
		entries []model.AnalysisHistory
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = s.users.Get(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		entries, err = s.history.Active(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	st := &model.UserStats{
		TotalAnalyses:     len(entries),
		ProfileCompletion: user.ProfileCompletion(),
	}
	var years float64
	withAnalysis := 0
	for i, e := range entries {
		if i == 0 {
			d := e.AnalysisDate
			st.LastAnalysisDate = &d
		}
		if e.Analysis == nil {
			continue
		}
		withAnalysis++
		years += e.Analysis.ExperienceYears.TotalYears
		st.TotalSkills += len(e.Analysis.ExtractedSkills)
	}
	if withAnalysis > 0 {
		st.AverageExperience = round(years/float64(withAnalysis), 1)
	}
	return st, nil
}

// SkillsSummary lists the most frequently extracted skills.
func (s *DashboardService) SkillsSummary(ctx context.Context, userID string) (*model.SkillsSummary, error) {
	entries, err := s.history.Active(ctx, userID)
	if err != nil {
		return nil, err
	}
	var top []model.SkillFrequency
	index := make(map[string]int)
	for _, e := range entries {
		if e.Analysis == nil {
			continue
		}
		for _, sk := range e.Analysis.ExtractedSkills {
			if i, ok := index[sk]; ok {
				top[i].Frequency++
				continue
			}
			index[sk] = len(top)
			top = append(top, model.SkillFrequency{Skill: sk, Frequency: 1})
		}
	}
	sort.SliceStable(top, func(i, j int) bool { return top[i].Frequency > top[j].Frequency })
	total := len(top)
	if len(top) > topSkillLimit {
		top = top[:topSkillLimit]
	}
	if top == nil {
		top = []model.SkillFrequency{}
	}
	return &model.SkillsSummary{TotalSkills: total, TopSkills: top}, nil
}

// DomainsSummary counts predicted career domains across active analyses.
func (s *DashboardService) DomainsSummary(ctx context.Context, userID string) (*model.DomainsSummary, error) {
	entries, err := s.history.Active(ctx, userID)
	if err != nil {
		return nil, err
	}
	var top []model.DomainFrequency
	index := make(map[string]int)
	for _, e := range entries {
		if e.Analysis == nil {
			continue
		}
		for _, d := range e.Analysis.PredictedCareerDomains {
			if i, ok := index[d]; ok {
				top[i].Frequency++
				continue
			}
			index[d] = len(top)
			top = append(top, model.DomainFrequency{Domain: d, Frequency: 1})
		}
	}
	sort.SliceStable(top, func(i, j int) bool { return top[i].Frequency > top[j].Frequency })
	if top == nil {
		top = []model.DomainFrequency{}
	}
	return &model.DomainsSummary{TotalDomains: len(top), TopDomains: top}, nil
}

// DeleteEntry removes a history entry owned by the user.
func (s *DashboardService) DeleteEntry(ctx context.Context, userID, id string) error {
	if err := s.history.Delete(ctx, id, userID); err != nil {
		return err
	}
	s.logger.Info("history entry deleted", zap.String("user_id", userID), zap.String("history_id", id))
	return nil
}

// Report is an exported plain-text analysis report.
type Report struct {
	Filename string
	Body     []byte
}

// Export renders a history entry as a plain-text report.
func (s *DashboardService) Export(ctx context.Context, userID, id string) (*Report, error) {
	h, err := s.history.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	name := "Resume"
	if r, err := s.resumes.Get(ctx, h.ResumeID, userID); err == nil {
		name = r.OriginalName
	}

	var (
		skills  int
		years   float64
		domains = "None"
	)
	if a := h.Analysis; a != nil {
		skills = len(a.ExtractedSkills)
		years = a.ExperienceYears.TotalYears
		if len(a.PredictedCareerDomains) > 0 {
			domains = strings.Join(a.PredictedCareerDomains, ", ")
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Analysis Report for %s\n\n", name)
	fmt.Fprintf(&b, "Generated on: %s\n", s.now().UTC().Format("2006-01-02"))
	fmt.Fprintf(&b, "Total Skills Found: %d\n", skills)
	fmt.Fprintf(&b, "Experience Level: %g years (%s)\n", years, h.ExperienceLevel.Level)
	fmt.Fprintf(&b, "Career Domains: %s\n", domains)
	if len(h.SkillGaps) > 0 {
		b.WriteString("\nSkill Gaps:\n")
		for _, g := range h.SkillGaps {
			fmt.Fprintf(&b, "- %s (%s, %s priority)\n", g.Skill, g.Domain, g.Priority)
		}
	}

	return &Report{
		Filename: fmt.Sprintf("analysis-%s.txt", id),
		Body:     []byte(b.String()),
	}, nil
}
