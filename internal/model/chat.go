package model

import (
	"time"

	"gorm.io/datatypes"
)

// DefaultSessionID is used when a chat request names no session.
const DefaultSessionID = "default-session"

// Complexity buckets a turn by combined message length.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// ComplexityFor classifies a combined message length.
func ComplexityFor(length int) Complexity {
	switch {
	case length < 100:
		return ComplexitySimple
	case length < 500:
		return ComplexityModerate
	default:
		return ComplexityComplex
	}
}

// PersonalizationSnapshot records which preferences shaped a reply.
type PersonalizationSnapshot struct {
	ExperienceLevel    string `json:"experienceLevel"`
	Industry           string `json:"industry,omitempty"`
	PreferredLanguage  string `json:"preferredLanguage"`
	LearningStyle      string `json:"learningStyle"`
	CommunicationStyle string `json:"communicationStyle,omitempty"`
	ResponseLength     string `json:"responseLength,omitempty"`
}

// ChatTurn is one user message and the assistant reply. Rows are never updated.
type ChatTurn struct {
	ID               string                      `json:"id" gorm:"primaryKey;size:36"`
	UserID           string                      `json:"userId" gorm:"size:36;index:idx_chat_user_created,priority:1;not null"`
	SessionID        string                      `json:"sessionId" gorm:"size:128;index"`
	UserMessage      string                      `json:"userMessage" gorm:"not null"`
	AIResponse       string                      `json:"aiResponse" gorm:"not null"`
	Topic            string                      `json:"topic" gorm:"size:32;index"`
	Mood             string                      `json:"mood" gorm:"size:16"`
	Intent           string                      `json:"intent" gorm:"size:32"`
	Category         string                      `json:"category" gorm:"size:32"`
	Confidence       float64                     `json:"confidence"`
	Suggestions      datatypes.JSONSlice[string] `json:"suggestions"`
	Personalization  PersonalizationSnapshot     `json:"personalization" gorm:"serializer:json"`
	UserLanguage     string                      `json:"userLanguage" gorm:"size:8"`
	DetectedLanguage string                      `json:"detectedLanguage" gorm:"size:8"`
	Translated       bool                        `json:"translated"`
	LatencyMs        int64                       `json:"responseTime"`
	Complexity       Complexity                  `json:"complexity" gorm:"size:16"`
	CreatedAt        time.Time                   `json:"timestamp" gorm:"index:idx_chat_user_created,priority:2"`
}

// ChatRequest is the body of POST /api/chat/send.
type ChatRequest struct {
	Message   string `json:"message" validate:"required,max=4000"`
	SessionID string `json:"sessionId" validate:"max=128"`
	Language  string `json:"language" validate:"omitempty,oneof=en ne hi es fr"`
}

// ChatContext is the metadata block of a chat reply.
type ChatContext struct {
	Category     string  `json:"category"`
	Confidence   float64 `json:"confidence"`
	Language     string  `json:"language"`
	Personalized bool    `json:"personalized"`
	ResponseTime int64   `json:"responseTime"`
}

// ChatResponse is the reply to POST /api/chat/send.
type ChatResponse struct {
	Message         string      `json:"message"`
	Suggestions     []string    `json:"suggestions"`
	Context         ChatContext `json:"context"`
	OriginalMessage string      `json:"originalMessage,omitempty"`
	Translated      bool        `json:"translated,omitempty"`
}

// ChatHistoryResponse lists past turns oldest first.
type ChatHistoryResponse struct {
	Chats []ChatTurn `json:"chats"`
	Total int        `json:"total"`
}

// FeedbackRequest rates a reply from 1 to 5.
type FeedbackRequest struct {
	Rating int `json:"rating" validate:"required,min=1,max=5"`
}
