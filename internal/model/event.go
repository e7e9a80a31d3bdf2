package model

import (
	"time"
)

// EventType names a published domain event.
type EventType string

const (
	EventChatTurn          EventType = "chat.turn"
	EventAnalysisCompleted EventType = "analysis.completed"
	EventAnalysisFailed    EventType = "analysis.failed"
)

// ChatTurnEvent is published after every chat turn.
type ChatTurnEvent struct {
	ID           string    `json:"id"`
	Type         EventType `json:"type"`
	UserID       string    `json:"userId,omitempty"`
	SessionID    string    `json:"sessionId"`
	Topic        string    `json:"topic"`
	Mood         string    `json:"mood"`
	Intent       string    `json:"intent"`
	Category     string    `json:"category"`
	Confidence   float64   `json:"confidence"`
	Language     string    `json:"language"`
	Personalized bool      `json:"personalized"`
	LatencyMs    int64     `json:"responseTime"`
	CreatedAt    time.Time `json:"createdAt"`
	Sequence     uint64    `json:"sequence,omitempty"`
}

// AnalysisEvent is published when an analysis completes or fails.
type AnalysisEvent struct {
	ID               string         `json:"id"`
	Type             EventType      `json:"type"`
	UserID           string         `json:"userId"`
	ResumeID         string         `json:"resumeId"`
	AnalysisID       string         `json:"analysisId"`
	Status           AnalysisStatus `json:"status"`
	Reason           string         `json:"reason,omitempty"`
	TopDomain        string         `json:"topDomain,omitempty"`
	SkillsFound      int            `json:"skillsFound"`
	ProcessingTimeMs int64          `json:"processingTime"`
	CreatedAt        time.Time      `json:"createdAt"`
	Sequence         uint64         `json:"sequence,omitempty"`
}

// AnalysisStage names a step reported on the progress stream.
type AnalysisStage string

const (
	StageQueued     AnalysisStage = "queued"
	StageExtracting AnalysisStage = "extracting"
	StageAnalyzing  AnalysisStage = "analyzing"
	StageSaving     AnalysisStage = "saving"
	StageCompleted  AnalysisStage = "completed"
	StageFailed     AnalysisStage = "failed"
)

// AnalysisProgressEvent is an SSE frame describing a stage change.
type AnalysisProgressEvent struct {
	ResumeID string        `json:"resumeId"`
	Stage    AnalysisStage `json:"stage"`
	Progress int           `json:"progress"`
	Message  string        `json:"message,omitempty"`
}

// AnalysisErrorEvent is an SSE frame for a failed analysis.
type AnalysisErrorEvent struct {
	Error       string   `json:"error"`
	Reason      string   `json:"reason,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// HeartbeatEvent keeps an idle SSE connection open.
type HeartbeatEvent struct {
	Timestamp time.Time `json:"timestamp"`
}
