package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillbridge/skillbridge-api/internal/model"
	"github.com/skillbridge/skillbridge-api/internal/store"
	"github.com/skillbridge/skillbridge-api/pkg/logger"
)

var dashboardNow = time.Date(2026, time.March, 18, 12, 0, 0, 0, time.UTC)

func historyEntry(id string, date time.Time, years float64, level string, gaps ...model.SkillGap) model.AnalysisHistory {
	return model.AnalysisHistory{
		ID:           id,
		UserID:       "user-1",
		ResumeID:     "r-1",
		AnalysisID:   "a-" + id,
		AnalysisDate: date,
		Status:       model.HistoryActive,
		SkillsFound: []model.SkillFound{
			{Skill: "python", Category: "Programming"},
			{Skill: "docker", Category: "Cloud"},
		},
		CareerDomains:   []model.CareerDomainScore{{Domain: "Backend Development", Confidence: 0.8}},
		SkillGaps:       gaps,
		ExperienceLevel: model.ExperienceLevel{Years: years, Level: level},
		Analysis: &model.Analysis{
			ExtractedSkills:        []string{"python", "docker"},
			ExperienceYears:        model.ExperienceYears{TotalYears: years},
			PredictedCareerDomains: []string{"Backend Development"},
		},
	}
}

func newDashboard(entries []model.AnalysisHistory, goals *fakeGoals) (*DashboardService, *fakeUsers, *fakeResumes) {
	users := newFakeUsers()
	users.users["user-1"] = &model.User{ID: "user-1", Name: "Asha", Email: "asha@example.com"}
	resumes := newFakeResumes(&model.Resume{ID: "r-1", UserID: "user-1", OriginalName: "asha.pdf"})
	if goals == nil {
		goals = &fakeGoals{}
	}
	svc := NewDashboardService(&fakeHistory{entries: entries}, goals, users, resumes, logger.NewNop())
	svc.now = func() time.Time { return dashboardNow }
	return svc, users, resumes
}

func TestAnalyticsWindowAndAggregates(t *testing.T) {
	kube := model.SkillGap{Skill: "kubernetes", Domain: "DevOps", Priority: model.PriorityHigh}
	tsHigh := model.SkillGap{Skill: "typescript", Domain: "Frontend", Priority: model.PriorityHigh}
	tsLow := model.SkillGap{Skill: "typescript", Domain: "Frontend", Priority: model.PriorityLow}

	entries := []model.AnalysisHistory{
		historyEntry("old", dashboardNow.AddDate(0, 0, -40), 1, "Junior", kube),
		historyEntry("h1", dashboardNow.AddDate(0, 0, -20), 2, "Junior", kube, tsHigh),
		historyEntry("h2", dashboardNow.AddDate(0, 0, -2), 4, "Mid", kube, tsLow),
		historyEntry("h3", dashboardNow.AddDate(0, 0, -1), 4, "Mid", tsHigh),
	}
	goals := &fakeGoals{weeks: []store.WeeklyGoals{
		{Week: "2026-W11", TargetHours: 10, CompletedHours: 5, CompletedGoals: 1, TotalGoals: 4},
	}}
	svc, _, _ := newDashboard(entries, goals)

	got, err := svc.Analytics(context.Background(), "user-1", "bogus")
	require.NoError(t, err)

	assert.Equal(t, model.Period30d, got.Overview.Period)
	assert.Equal(t, 3, got.Overview.TotalAnalyses)
	assert.Equal(t, dashboardNow.AddDate(0, 0, -30), got.Overview.StartDate)

	assert.Equal(t, []model.WeeklyCount{{Week: "2026-W09", Count: 1}, {Week: "2026-W12", Count: 2}}, got.AnalysesByWeek)

	require.Len(t, got.SkillGaps, 3)
	assert.Equal(t, "kubernetes", got.SkillGaps[0].Skill)
	assert.Equal(t, 2, got.SkillGaps[0].Frequency)
	assert.Equal(t, model.GapFrequency{Skill: "typescript", Domain: "Frontend", Priority: model.PriorityHigh, Frequency: 2}, got.SkillGaps[1])
	assert.Equal(t, model.PriorityLow, got.SkillGaps[2].Priority)

	require.Len(t, got.LearningProgress, 1)
	assert.InDelta(t, 25.0, got.LearningProgress[0].CompletionRate, 1e-9)
	assert.InDelta(t, 50.0, got.LearningProgress[0].ProgressPercentage, 1e-9)

	require.Len(t, got.SkillsDistribution, 2)
	assert.Equal(t, 3, got.SkillsDistribution[0].Count)
	assert.Equal(t, []string{"python"}, got.SkillsDistribution[0].Skills)
	assert.InDelta(t, 50.0, got.SkillsDistribution[0].Percentage, 1e-9)

	assert.Equal(t, []model.DomainFrequency{{Domain: "Backend Development", Frequency: 3, Confidence: 0.8}}, got.CareerDomains)

	assert.Equal(t, []model.ExperienceTrend{
		{Period: "2026-02", AvgYears: 2, MostCommonLevel: "Junior"},
		{Period: "2026-03", AvgYears: 4, MostCommonLevel: "Mid"},
	}, got.ExperienceTrends)
}

func TestAnalyticsEmpty(t *testing.T) {
	svc, _, _ := newDashboard(nil, nil)

	got, err := svc.Analytics(context.Background(), "user-1", model.Period7d)
	require.NoError(t, err)

	assert.Zero(t, got.Overview.TotalAnalyses)
	assert.NotNil(t, got.AnalysesByWeek)
	assert.NotNil(t, got.SkillGaps)
	assert.NotNil(t, got.SkillsDistribution)
	assert.NotNil(t, got.CareerDomains)
	assert.NotNil(t, got.ExperienceTrends)
	assert.NotNil(t, got.LearningProgress)
}

func TestPeriodDurations(t *testing.T) {
	day := 24 * time.Hour
	assert.Equal(t, 7*day, model.Period7d.Duration())
	assert.Equal(t, 30*day, model.Period30d.Duration())
	assert.Equal(t, 90*day, model.Period90d.Duration())
	assert.Equal(t, 365*day, model.Period1y.Duration())
	assert.Equal(t, 30*day, model.Period("2w").Duration())
}

func TestTopSkillGapsLimit(t *testing.T) {
	var gaps []model.SkillGap
	for _, s := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
		gaps = append(gaps, model.SkillGap{Skill: s, Priority: model.PriorityMedium})
	}
	entries := []model.AnalysisHistory{{SkillGaps: gaps}}

	got := TopSkillGaps(entries, 10)

	require.Len(t, got, 10)
	assert.Equal(t, "a", got[0].Skill)
	assert.Equal(t, "j", got[9].Skill)
}

func TestExperienceTrendTieKeepsFirstLevel(t *testing.T) {
	d := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	entries := []model.AnalysisHistory{
		{AnalysisDate: d, ExperienceLevel: model.ExperienceLevel{Years: 2, Level: "Junior"}},
		{AnalysisDate: d.AddDate(0, 0, 1), ExperienceLevel: model.ExperienceLevel{Years: 5, Level: "Senior"}},
	}

	got := ExperienceTrends(entries)

	require.Len(t, got, 1)
	assert.Equal(t, "Junior", got[0].MostCommonLevel)
	assert.Equal(t, 3.5, got[0].AvgYears)
}

func TestStatsAndSummaries(t *testing.T) {
	entries := []model.AnalysisHistory{
		historyEntry("h1", dashboardNow.AddDate(0, 0, -5), 2, "Junior"),
		historyEntry("h2", dashboardNow.AddDate(0, 0, -1), 5, "Senior"),
	}
	svc, _, _ := newDashboard(entries, nil)
	ctx := context.Background()

	st, err := svc.Stats(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, st.TotalAnalyses)
	assert.Equal(t, 3.5, st.AverageExperience)
	assert.Equal(t, 4, st.TotalSkills)
	require.NotNil(t, st.LastAnalysisDate)
	assert.Equal(t, dashboardNow.AddDate(0, 0, -1), *st.LastAnalysisDate)
	assert.Equal(t, 2*100/14, st.ProfileCompletion)

	skills, err := svc.SkillsSummary(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, skills.TotalSkills)
	assert.Equal(t, model.SkillFrequency{Skill: "python", Frequency: 2}, skills.TopSkills[0])

	domains, err := svc.DomainsSummary(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, domains.TotalDomains)
	assert.Equal(t, 2, domains.TopDomains[0].Frequency)

	recent, err := svc.Recent(ctx, "user-1", 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "h2", recent[0].ID)
}

func TestStatsUnknownUser(t *testing.T) {
	svc, _, _ := newDashboard(nil, nil)

	_, err := svc.Stats(context.Background(), "ghost")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAndExport(t *testing.T) {
	entries := []model.AnalysisHistory{
		historyEntry("h1", dashboardNow, 3, "Mid", model.SkillGap{Skill: "go", Domain: "Backend", Priority: model.PriorityHigh}),
	}
	svc, _, _ := newDashboard(entries, nil)
	ctx := context.Background()

	report, err := svc.Export(ctx, "user-1", "h1")
	require.NoError(t, err)
	assert.Equal(t, "analysis-h1.txt", report.Filename)
	body := string(report.Body)
	assert.Contains(t, body, "Analysis Report for asha.pdf")
	assert.Contains(t, body, "Generated on: 2026-03-18")
	assert.Contains(t, body, "Total Skills Found: 2")
	assert.Contains(t, body, "Career Domains: Backend Development")
	assert.Contains(t, body, "- go (Backend, High priority)")

	_, err = svc.Export(ctx, "user-2", "h1")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.DeleteEntry(ctx, "user-2", "h1"), ErrNotFound)
	require.NoError(t, svc.DeleteEntry(ctx, "user-1", "h1"))
	assert.ErrorIs(t, svc.DeleteEntry(ctx, "user-1", "h1"), ErrNotFound)
}
