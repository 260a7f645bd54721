package models

import "time"

// Recognized document type tags. The set partitions uploads into folders and
// drives the legacy per-type endpoints.
const (
	DocumentTypeExamCard      = "exam-card"
	DocumentTypeFeesStructure = "fees-structure"
	DocumentTypeFeesStatement = "fees-statement"
	DocumentTypeFeesReceipt   = "fees-receipt"
	DocumentTypeResults       = "results"
	DocumentTypeTimetable     = "timetable"
)

// DocumentTypes enumerates every recognized document type.
var DocumentTypes = []string{
	DocumentTypeExamCard,
	DocumentTypeFeesStructure,
	DocumentTypeFeesStatement,
	DocumentTypeFeesReceipt,
	DocumentTypeResults,
	DocumentTypeTimetable,
}

// IsDocumentType reports whether tag is a recognized document type.
func IsDocumentType(tag string) bool {
	for _, t := range DocumentTypes {
		if t == tag {
			return true
		}
	}
	return false
}

// StudentDocument is the append-only upload log. The current document for a
// type is the newest row by UploadedAt; rows are never updated or replaced.
type StudentDocument struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	RegistrationNumber string    `gorm:"size:64;not null;index" json:"registration_number"`
	DocumentType       string    `gorm:"size:32;not null;index" json:"document_type"`
	FileURL            string    `gorm:"size:1024;not null" json:"file_url"`
	FileName           string    `gorm:"size:255;not null" json:"file_name"`
	FileSize           int64     `json:"file_size"`
	MimeType           string    `gorm:"size:128" json:"mime_type"`
	StorageMethod      string    `gorm:"size:16" json:"storage_method"`
	StorageKey         string    `gorm:"size:512" json:"-"`
	UploadedAt         time.Time `gorm:"not null;index" json:"uploaded_at"`
	CreatedAt          time.Time `json:"created_at"`
}

// Legacy per-type tables, written in parallel by the legacy endpoints for
// backward-compatible readers. They mirror subsets of StudentDocument.

type ExamCard struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	RegistrationNumber string    `gorm:"size:64;not null;index" json:"registration_number"`
	FileURL            string    `gorm:"size:1024;not null" json:"file_url"`
	UploadedAt         time.Time `json:"uploaded_at"`
}

func (ExamCard) TableName() string { return "exam_cards" }

type FinanceRecord struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	RegistrationNumber string    `gorm:"size:64;not null;index" json:"registration_number"`
	DocumentType       string    `gorm:"size:32;not null" json:"document_type"`
	FileURL            string    `gorm:"size:1024;not null" json:"file_url"`
	UploadedAt         time.Time `json:"uploaded_at"`
}

func (FinanceRecord) TableName() string { return "finance" }

type ResultRecord struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	RegistrationNumber string    `gorm:"size:64;not null;index" json:"registration_number"`
	FileURL            string    `gorm:"size:1024;not null" json:"file_url"`
	UploadedAt         time.Time `json:"uploaded_at"`
}

func (ResultRecord) TableName() string { return "results" }

type Timetable struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	RegistrationNumber string    `gorm:"size:64;not null;index" json:"registration_number"`
	FileURL            string    `gorm:"size:1024;not null" json:"file_url"`
	UploadedAt         time.Time `json:"uploaded_at"`
}

func (Timetable) TableName() string { return "timetables" }
