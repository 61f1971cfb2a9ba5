package entity

import (
	"time"

	"github.com/google/uuid"
)

// Gender enumerates the accepted gender values
type Gender string

const (
	GenderFemale  Gender = "female"
	GenderMale    Gender = "male"
	GenderOther   Gender = "other"
	GenderUnknown Gender = "unknown"
)

// IsValid checks membership in the gender enum
func (g Gender) IsValid() bool {
	switch g {
	case GenderFemale, GenderMale, GenderOther, GenderUnknown:
		return true
	}
	return false
}

// Diagnosis enumerates the admitting diagnoses the registry accepts
type Diagnosis string

const (
	DiagnosisBreast      Diagnosis = "breast"
	DiagnosisLung        Diagnosis = "lung"
	DiagnosisProstate    Diagnosis = "prostate"
	DiagnosisUnspecified Diagnosis = "unspecified"
)

// IsValid checks membership in the diagnosis enum
func (d Diagnosis) IsValid() bool {
	switch d {
	case DiagnosisBreast, DiagnosisLung, DiagnosisProstate, DiagnosisUnspecified:
		return true
	}
	return false
}

// Physician enumerates attending physicians assignable by diagnosis
type Physician string

const (
	PhysicianSusanJones Physician = "SUSAN_JONES"
	PhysicianBenSmith   Physician = "BEN_SMITH"
)

// Department enumerates departments assignable by diagnosis
type Department string

const (
	DepartmentJ Department = "J"
	DepartmentS Department = "S"
)

// VersionBase is the row version assigned at registration.
// Every successful mutation increments the version by exactly one.
const VersionBase = 1

// Patient represents a registered patient record
type Patient struct {
	ID                  uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	MedicalRecordNumber string      `gorm:"type:varchar(20);uniqueIndex;not null" json:"medical_record_number"`
	FirstName           string      `gorm:"type:varchar(100);not null" json:"first_name"`
	MiddleName          *string     `gorm:"type:varchar(100)" json:"middle_name,omitempty"`
	LastName            string      `gorm:"type:varchar(100);not null" json:"last_name"`
	Age                 int         `gorm:"not null" json:"age"`
	Gender              Gender      `gorm:"type:varchar(10);not null" json:"gender"`
	Contacts            Contacts    `gorm:"type:jsonb;not null;default:'[]'" json:"contacts"`
	AdmittingDiagnosis  *Diagnosis  `gorm:"type:varchar(20)" json:"admitting_diagnosis,omitempty"`
	AttendingPhysician  *Physician  `gorm:"type:varchar(20)" json:"attending_physician,omitempty"`
	Department          *Department `gorm:"type:varchar(5)" json:"department,omitempty"`
	CreatedAt           time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
	Version             int         `gorm:"not null;default:1" json:"version"`
	IsDeleted           bool        `gorm:"not null;default:false;index" json:"is_deleted"`
}

func (Patient) TableName() string {
	return "patients"
}

// HasDiagnosis checks whether the admitting diagnosis has been recorded
func (p *Patient) HasDiagnosis() bool {
	return p.AdmittingDiagnosis != nil
}
