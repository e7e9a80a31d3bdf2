package model

import "time"

// ResumeStatus tracks a resume through analysis.
type ResumeStatus string

const (
	ResumeUploaded  ResumeStatus = "uploaded"
	ResumeAnalyzing ResumeStatus = "analyzing"
	ResumeCompleted ResumeStatus = "completed"
	ResumeFailed    ResumeStatus = "failed"
)

// Resume is an uploaded resume file owned by a user.
type Resume struct {
	ID           string       `json:"id" gorm:"primaryKey;size:36"`
	UserID       string       `json:"userId" gorm:"size:36;index;not null"`
	Filename     string       `json:"filename" gorm:"not null"`
	OriginalName string       `json:"originalName" gorm:"not null"`
	FilePath     string       `json:"-" gorm:"not null"`
	FileSize     int64        `json:"fileSize"`
	MimeType     string       `json:"mimeType" gorm:"size:128"`
	UploadDate   time.Time    `json:"uploadDate"`
	Status       ResumeStatus `json:"status" gorm:"size:16;default:uploaded"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}
