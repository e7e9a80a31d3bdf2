package model

import (
	"time"

	"gorm.io/datatypes"
)

// AnalysisStatus tracks an analysis run.
type AnalysisStatus string

const (
	AnalysisPending    AnalysisStatus = "pending"
	AnalysisProcessing AnalysisStatus = "processing"
	AnalysisCompleted  AnalysisStatus = "completed"
	AnalysisFailed     AnalysisStatus = "failed"
)

// Priority ranks a learning gap.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// LearningGap is a domain plus skills the resume does not evidence.
type LearningGap struct {
	Domain        string   `json:"domain"`
	MissingSkills []string `json:"missingSkills"`
	Priority      Priority `json:"priority"`
}

// ExperienceYears is the analyzer's experience estimate.
type ExperienceYears struct {
	TotalYears float64   `json:"totalYears"`
	Mentions   []float64 `json:"mentions"`
}

// AnalysisSummary condenses an analysis for listings and chat fallbacks.
type AnalysisSummary struct {
	TotalSkillsFound int     `json:"totalSkillsFound"`
	YearsExperience  float64 `json:"yearsExperience"`
	TopDomain        string  `json:"topDomain"`
	GapsIdentified   int     `json:"gapsIdentified"`
}

// Analysis is the stored result of analyzing one resume.
type Analysis struct {
	ID                     string                      `json:"id" gorm:"primaryKey;size:36"`
	ResumeID               string                      `json:"resumeId" gorm:"size:36;index;not null"`
	UserID                 string                      `json:"userId" gorm:"size:36;index;not null"`
	ExtractedSkills        datatypes.JSONSlice[string] `json:"extractedSkills"`
	ExperienceYears        ExperienceYears             `json:"experienceYears" gorm:"serializer:json"`
	Keywords               datatypes.JSONSlice[string] `json:"keywords"`
	PredictedCareerDomains datatypes.JSONSlice[string] `json:"predictedCareerDomains"`
	DomainMatchScores      map[string]float64          `json:"domainMatchScores" gorm:"serializer:json"`
	LearningGaps           []LearningGap               `json:"learningGaps" gorm:"serializer:json"`
	Summary                AnalysisSummary             `json:"analysisSummary" gorm:"serializer:json"`
	Status                 AnalysisStatus              `json:"status" gorm:"size:16;index;default:pending"`
	ErrorMessage           string                      `json:"errorMessage,omitempty"`
	ProcessingTimeMs       int64                       `json:"processingTime"`
	CreatedAt              time.Time                   `json:"createdAt" gorm:"index"`
	UpdatedAt              time.Time                   `json:"updatedAt"`
}

// FirstGap returns the first learning gap, if any.
func (a *Analysis) FirstGap() (LearningGap, bool) {
	if a == nil || len(a.LearningGaps) == 0 {
		return LearningGap{}, false
	}
	return a.LearningGaps[0], true
}

// AnalysisResult is what a finished analysis request returns.
type AnalysisResult struct {
	Analysis *Analysis `json:"data"`
	Cached   bool      `json:"cached"`
}
