package dto

import (
	"encoding/json"
	"time"

	"patient-registry/pkg/pagination"

	"github.com/google/uuid"
)

// NameInput carries a patient name at registration
type NameInput struct {
	First  string  `json:"first" validate:"required"`
	Middle *string `json:"middle"`
	Last   string  `json:"last" validate:"required"`
}

// ContactInput carries one contact entry
type ContactInput struct {
	Type      string `json:"type" validate:"required,oneof=mobile home work email other"`
	Value     string `json:"value" validate:"required"`
	Preferred *bool  `json:"preferred"`
}

// RegisterPatientRequest represents a patient registration payload.
// Diagnosis, physician and department are never accepted here; they start
// absent regardless of input.
type RegisterPatientRequest struct {
	Name     NameInput      `json:"name" validate:"required"`
	Age      *int           `json:"age" validate:"required,gte=0"`
	Gender   string         `json:"gender" validate:"required,oneof=female male other unknown"`
	Contacts []ContactInput `json:"contacts" validate:"omitempty,dive"`
}

// NullableString records whether a field appeared in the payload, so an
// explicit null clears the stored value while absence leaves it unchanged.
type NullableString struct {
	Present bool
	Value   *string
}

func (n *NullableString) UnmarshalJSON(b []byte) error {
	n.Present = true
	if string(b) == "null" {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

func (n NullableString) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.Value)
}

// NamePatchInput carries a partial name update. Middle is the only optional
// name part, so it is the only one that can be cleared with a null.
type NamePatchInput struct {
	First  *string        `json:"first" validate:"omitempty,min=1"`
	Middle NullableString `json:"middle"`
	Last   *string        `json:"last" validate:"omitempty,min=1"`
}

// UpdatePatientRequest represents a partial update. Absent fields leave the
// stored values unchanged; contacts, when present, replace the stored
// sequence entirely (an empty array clears it).
type UpdatePatientRequest struct {
	Name     *NamePatchInput `json:"name"`
	Age      *int            `json:"age" validate:"omitempty,gte=0"`
	Gender   *string         `json:"gender" validate:"omitempty,oneof=female male other unknown"`
	Contacts *[]ContactInput `json:"contacts" validate:"omitempty,dive"`
}

// SetDiagnosisRequest represents the one-way diagnosis assignment payload
type SetDiagnosisRequest struct {
	AdmittingDiagnosis string `json:"admitting_diagnosis" validate:"required"`
}

// ListPatientsRequest carries search parameters parsed by the transport layer
type ListPatientsRequest struct {
	Page           int
	PageSize       int
	Name           string
	MRN            string
	IncludeDeleted bool
	SortField      string
	SortDir        string
}

// ContactResponse represents one contact entry in responses
type ContactResponse struct {
	Type      string `json:"type"`
	Value     string `json:"value"`
	Preferred *bool  `json:"preferred,omitempty"`
}

// NameResponse represents a patient name in responses
type NameResponse struct {
	First  string  `json:"first"`
	Middle *string `json:"middle,omitempty"`
	Last   string  `json:"last"`
}

// PatientResponse represents a patient record in responses
type PatientResponse struct {
	ID                  uuid.UUID         `json:"id"`
	MedicalRecordNumber string            `json:"medical_record_number"`
	Name                NameResponse      `json:"name"`
	Age                 int               `json:"age"`
	Gender              string            `json:"gender"`
	Contacts            []ContactResponse `json:"contacts"`
	AdmittingDiagnosis  *string           `json:"admitting_diagnosis,omitempty"`
	AttendingPhysician  *string           `json:"attending_physician,omitempty"`
	Department          *string           `json:"department,omitempty"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
	Version             int               `json:"version"`
	IsDeleted           bool              `json:"is_deleted"`
}

// PatientListResponse represents one page of patients with paging metadata
type PatientListResponse struct {
	Patients []PatientResponse `json:"patients"`
	Meta     pagination.Meta   `json:"meta"`
}
