package models

import "time"

// Student lifecycle states.
const (
	StudentStatusActive       = "active"
	StudentStatusDeregistered = "deregistered"
	StudentStatusOnLeave      = "on_leave"
)

// Student is the portal account every allocation and document row hangs off.
// RegistrationNumber is the user-facing alternate key and may contain slashes
// (e.g. "CS/001/2021"); ID is the normalized join key.
type Student struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	RegistrationNumber string     `gorm:"size:64;uniqueIndex;not null" json:"registration_number"`
	Name               string     `gorm:"size:255;not null" json:"name"`
	Course             string     `gorm:"size:255" json:"course"`
	LevelOfStudy       string     `gorm:"size:64" json:"level_of_study"`
	NationalID         string     `gorm:"size:32" json:"national_id,omitempty"`
	BirthCertificate   string     `gorm:"size:64" json:"birth_certificate,omitempty"`
	DateOfBirth        *time.Time `json:"date_of_birth,omitempty"`
	Password           string     `gorm:"size:255" json:"-"`
	Status             string     `gorm:"size:32;not null;default:active" json:"status"`
	LeaveStart         *time.Time `json:"academic_leave_start,omitempty"`
	LeaveEnd           *time.Time `json:"academic_leave_end,omitempty"`
	DeregisteredAt     *time.Time `json:"deregistered_at,omitempty"`
	DeregisterReason   string     `gorm:"size:255" json:"deregister_reason,omitempty"`
	PhotoURL           string     `gorm:"size:512" json:"photo_url,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// FeeRecord tracks a student's billing position. A positive balance withholds
// the exam card.
type FeeRecord struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	StudentID    uint      `gorm:"not null;uniqueIndex:idx_fee_student_year" json:"student_id"`
	AcademicYear string    `gorm:"size:16;not null;uniqueIndex:idx_fee_student_year" json:"academic_year"`
	Billed       float64   `json:"billed"`
	Paid         float64   `json:"paid"`
	Balance      float64   `json:"balance"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Student Student `gorm:"foreignKey:StudentID" json:"-"`
}
