package model

import "time"

// Offering links one University to one Program with its costs and duration.
// Nil attributes are unknown and render as "not available".
type Offering struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UniversityID   uint      `gorm:"not null;index:idx_offering_pair" json:"university_id"`
	ProgramID      uint      `gorm:"not null;index:idx_offering_pair" json:"program_id"`
	DurationYears  *float64  `json:"duration_years"`
	EnrollmentCost *float64  `json:"enrollment_cost"`
	AdmissionCost  *float64  `json:"admission_cost"`
	CreditCost     *float64  `json:"credit_cost"`
	TotalCredits   *int      `json:"total_credits"`
	CardCost       *float64  `json:"card_cost"`
	SyllabusURL    *string   `gorm:"type:varchar(500)" json:"syllabus_url"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relationships
	University *University `gorm:"foreignKey:UniversityID" json:"university,omitempty"`
	Program    *Program    `gorm:"foreignKey:ProgramID" json:"program,omitempty"`
}
