package model

import "time"

// HistoryStatus marks whether a history entry counts toward dashboards.
type HistoryStatus string

const (
	HistoryActive   HistoryStatus = "active"
	HistoryArchived HistoryStatus = "archived"
)

// SkillFound is one extracted skill with its category.
type SkillFound struct {
	Skill    string `json:"skill"`
	Category string `json:"category"`
}

// CareerDomainScore is a predicted domain with a 0-1 confidence.
type CareerDomainScore struct {
	Domain     string  `json:"domain"`
	Confidence float64 `json:"confidence"`
}

// SkillGap is one missing skill flattened out of a learning gap.
type SkillGap struct {
	Skill    string   `json:"skill"`
	Domain   string   `json:"domain"`
	Priority Priority `json:"priority"`
}

// ExperienceLevel pairs years with a level label.
type ExperienceLevel struct {
	Years float64 `json:"years"`
	Level string  `json:"level"`
}

// HistoryMetrics are per-run numbers copied from the analysis.
type HistoryMetrics struct {
	TotalSkillsFound    int     `json:"totalSkillsFound"`
	TotalGapsIdentified int     `json:"totalGapsIdentified"`
	ProcessingTimeMs    int64   `json:"processingTime"`
	ConfidenceScore     float64 `json:"confidenceScore"`
}

// AnalysisHistory is a dashboard-facing snapshot of a completed analysis.
type AnalysisHistory struct {
	ID              string              `json:"id" gorm:"primaryKey;size:36"`
	UserID          string              `json:"userId" gorm:"size:36;index;not null"`
	ResumeID        string              `json:"resumeId" gorm:"size:36;not null"`
	AnalysisID      string              `json:"analysisId" gorm:"size:36;index;not null"`
	AnalysisDate    time.Time           `json:"analysisDate" gorm:"index"`
	Status          HistoryStatus       `json:"status" gorm:"size:16;index;default:active"`
	SkillsFound     []SkillFound        `json:"skillsFound" gorm:"serializer:json"`
	CareerDomains   []CareerDomainScore `json:"careerDomains" gorm:"serializer:json"`
	SkillGaps       []SkillGap          `json:"skillGaps" gorm:"serializer:json"`
	ExperienceLevel ExperienceLevel     `json:"experienceLevel" gorm:"serializer:json"`
	Metrics         HistoryMetrics      `json:"analysisMetrics" gorm:"serializer:json"`
	Analysis        *Analysis           `json:"analysis,omitempty" gorm:"foreignKey:AnalysisID"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

// GoalStatus tracks a weekly learning goal.
type GoalStatus string

const (
	GoalNotStarted GoalStatus = "Not Started"
	GoalInProgress GoalStatus = "In Progress"
	GoalCompleted  GoalStatus = "Completed"
)

// LearningGoal is a weekly study target feeding the progress chart.
type LearningGoal struct {
	ID             string     `json:"id" gorm:"primaryKey;size:36"`
	UserID         string     `json:"userId" gorm:"size:36;index;not null"`
	Week           string     `json:"week" gorm:"size:10;index;not null"`
	Skill          string     `json:"skill" gorm:"size:128"`
	TargetHours    float64    `json:"targetHours"`
	CompletedHours float64    `json:"completedHours"`
	Status         GoalStatus `json:"status" gorm:"size:16;default:'Not Started'"`
	CreatedAt      time.Time  `json:"createdAt" gorm:"index"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// LearningGoalRequest creates or updates a learning goal.
type LearningGoalRequest struct {
	Week           string     `json:"week" validate:"required,isoweek"`
	Skill          string     `json:"skill" validate:"max=128"`
	TargetHours    float64    `json:"targetHours" validate:"gte=0,lte=168"`
	CompletedHours float64    `json:"completedHours" validate:"gte=0,lte=168"`
	Status         GoalStatus `json:"status" validate:"omitempty,oneof='Not Started' 'In Progress' Completed"`
}
