package dto

import (
	"time"

	"github.com/Khalick/student-portal-api/internal/models"
)

// StudentCreateRequest is the admin payload for creating a student account.
type StudentCreateRequest struct {
	RegistrationNumber string `json:"registration_number" validate:"required,min=3,max=64"`
	Name               string `json:"name" validate:"required,min=2,max=255"`
	Course             string `json:"course" validate:"omitempty,max=255"`
	LevelOfStudy       string `json:"level_of_study" validate:"omitempty,max=64"`
	NationalID         string `json:"national_id" validate:"omitempty,max=32"`
}

// FeeRecordRequest upserts a student's billing position for a year.
type FeeRecordRequest struct {
	RegistrationNumber string  `json:"registration_number" validate:"required"`
	AcademicYear       string  `json:"academic_year" validate:"required,min=4"`
	Billed             float64 `json:"billed" validate:"gte=0"`
	Paid               float64 `json:"paid" validate:"gte=0"`
}

// StudentResponse serializes a student record for API clients.
type StudentResponse struct {
	ID                 uint      `json:"id"`
	RegistrationNumber string    `json:"registration_number"`
	Name               string    `json:"name"`
	Course             string    `json:"course"`
	LevelOfStudy       string    `json:"level_of_study"`
	Status             string    `json:"status"`
	PhotoURL           string    `json:"photo_url,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// FeeRecordResponse serializes a fee record.
type FeeRecordResponse struct {
	ID           uint    `json:"id"`
	StudentID    uint    `json:"student_id"`
	AcademicYear string  `json:"academic_year"`
	Billed       float64 `json:"billed"`
	Paid         float64 `json:"paid"`
	Balance      float64 `json:"balance"`
}

// NewStudentResponse converts a Student model into a DTO.
func NewStudentResponse(model models.Student) StudentResponse {
	return StudentResponse{
		ID:                 model.ID,
		RegistrationNumber: model.RegistrationNumber,
		Name:               model.Name,
		Course:             model.Course,
		LevelOfStudy:       model.LevelOfStudy,
		Status:             model.Status,
		PhotoURL:           model.PhotoURL,
		CreatedAt:          model.CreatedAt,
	}
}

// NewFeeRecordResponse converts a FeeRecord model into a DTO.
func NewFeeRecordResponse(model models.FeeRecord) FeeRecordResponse {
	return FeeRecordResponse{
		ID:           model.ID,
		StudentID:    model.StudentID,
		AcademicYear: model.AcademicYear,
		Billed:       model.Billed,
		Paid:         model.Paid,
		Balance:      model.Balance,
	}
}
