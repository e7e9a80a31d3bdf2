package model

import "time"

// Period is a dashboard time window.
type Period string

const (
	Period7d  Period = "7d"
	Period30d Period = "30d"
	Period90d Period = "90d"
	Period1y  Period = "1y"
)

// Duration returns the window length. Unknown periods fall back to 30 days.
func (p Period) Duration() time.Duration {
	day := 24 * time.Hour
	switch p {
	case Period7d:
		return 7 * day
	case Period90d:
		return 90 * day
	case Period1y:
		return 365 * day
	default:
		return 30 * day
	}
}

// Normalize maps unknown periods to 30d.
func (p Period) Normalize() Period {
	switch p {
	case Period7d, Period30d, Period90d, Period1y:
		return p
	default:
		return Period30d
	}
}

// DashboardOverview heads the analytics response.
type DashboardOverview struct {
	TotalAnalyses int       `json:"totalAnalyses"`
	Period        Period    `json:"period"`
	StartDate     time.Time `json:"startDate"`
	EndDate       time.Time `json:"endDate"`
}

// WeeklyCount is the number of analyses in one ISO week.
type WeeklyCount struct {
	Week  string `json:"week"`
	Count int    `json:"count"`
}

// GapFrequency is how often a missing skill was reported.
type GapFrequency struct {
	Skill     string   `json:"skill"`
	Domain    string   `json:"domain"`
	Priority  Priority `json:"priority"`
	Frequency int      `json:"frequency"`
}

// WeeklyProgress is the learning progress of one week.
type WeeklyProgress struct {
	Week               string  `json:"week"`
	TargetHours        float64 `json:"targetHours"`
	CompletedHours     float64 `json:"completedHours"`
	CompletionRate     float64 `json:"completionRate"`
	ProgressPercentage float64 `json:"progressPercentage"`
}

// CategoryCount is one slice of the skills histogram.
type CategoryCount struct {
	Category   string   `json:"category"`
	Count      int      `json:"count"`
	Skills     []string `json:"skills"`
	Percentage float64  `json:"percentage"`
}

// DomainFrequency is how often a career domain was predicted.
type DomainFrequency struct {
	Domain     string  `json:"domain"`
	Frequency  int     `json:"frequency"`
	Confidence float64 `json:"confidence,omitempty"`
}

// ExperienceTrend is the experience summary of one month.
type ExperienceTrend struct {
	Period          string  `json:"period"`
	AvgYears        float64 `json:"avgYears"`
	MostCommonLevel string  `json:"mostCommonLevel"`
}

// DashboardAnalytics is the body of GET /api/dashboard/analytics.
type DashboardAnalytics struct {
	Overview           DashboardOverview `json:"overview"`
	AnalysesByWeek     []WeeklyCount     `json:"analysesByWeek"`
	SkillGaps          []GapFrequency    `json:"skillGaps"`
	LearningProgress   []WeeklyProgress  `json:"learningProgress"`
	SkillsDistribution []CategoryCount   `json:"skillsDistribution"`
	CareerDomains      []DomainFrequency `json:"careerDomains"`
	ExperienceTrends   []ExperienceTrend `json:"experienceTrends"`
}

// UserStats is the body of GET /api/dashboard/stats.
type UserStats struct {
	TotalAnalyses     int        `json:"totalAnalyses"`
	AverageExperience float64    `json:"averageExperience"`
	TotalSkills       int        `json:"totalSkills"`
	ProfileCompletion int        `json:"profileCompletion"`
	LastAnalysisDate  *time.Time `json:"lastAnalysisDate"`
}

// SkillFrequency is how often a skill was extracted.
type SkillFrequency struct {
	Skill     string `json:"skill"`
	Frequency int    `json:"frequency"`
}

// SkillsSummary is the body of GET /api/dashboard/skills-summary.
type SkillsSummary struct {
	TotalSkills int              `json:"totalSkills"`
	TopSkills   []SkillFrequency `json:"topSkills"`
}

// DomainsSummary is the body of GET /api/dashboard/career-domains-summary.
type DomainsSummary struct {
	TotalDomains int               `json:"totalDomains"`
	TopDomains   []DomainFrequency `json:"topDomains"`
}
