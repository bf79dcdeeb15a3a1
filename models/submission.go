package models

import (
	"time"

	"gorm.io/gorm"
)

// Submission outcomes recorded in SubmissionLog.Status.
const (
	SubmissionCompleted = "completed"
	SubmissionFailed    = "failed"
)

// SubmissionLog records the outcome of one submission to the processing
// backend. The Person Record itself is never stored; PAN and Aadhaar are kept
// encrypted so a failed submission can be traced back to an applicant.
type SubmissionLog struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	SessionID     string         `json:"session_id" gorm:"index;not null"`
	ApplicantName string         `json:"applicant_name"`
	PANCard       string         `json:"-"`
	AadharCard    string         `json:"-"`
	Status        string         `json:"status" gorm:"not null"` // completed, failed
	Files         string         `json:"files"`                  // comma separated file names
	Error         string         `json:"error"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}
