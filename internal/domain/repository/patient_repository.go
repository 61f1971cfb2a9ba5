package repository

import (
	"context"
	"errors"

	"patient-registry/internal/domain/entity"

	"github.com/google/uuid"
)

// Store-level error taxonomy. Implementations translate driver faults into
// these so callers never match on error strings or driver codes.
var (
	// ErrDuplicateMRN signals a medical record number collision on insert.
	ErrDuplicateMRN = errors.New("medical record number already exists")
	// ErrNotFound signals the patient is absent or soft-deleted for an
	// operation that requires an existing, active record.
	ErrNotFound = errors.New("patient not found")
	// ErrDeleteForbidden signals a delete attempt after the admitting
	// diagnosis has been set.
	ErrDeleteForbidden = errors.New("patient cannot be deleted after diagnosis is set")
	// ErrDiagnosisAlreadySet signals an attempt to re-assign the one-way
	// admitting diagnosis.
	ErrDiagnosisAlreadySet = errors.New("admitting diagnosis already set")
)

// RegisterPatient carries the fields of a registration at the store boundary.
// MedicalRecordNumber is optional at this layer; when empty the repository
// allocates the next sequential number inside the insert transaction.
type RegisterPatient struct {
	MedicalRecordNumber string
	FirstName           string
	MiddleName          *string
	LastName            string
	Age                 int
	Gender              entity.Gender
	Contacts            entity.Contacts
}

// PatientRepository is the transactional store for patient records.
// Every method executes as an atomic unit against the store.
type PatientRepository interface {
	// Register inserts a new patient with diagnosis, physician and
	// department absent and version at its base value.
	Register(ctx context.Context, input *RegisterPatient) (*entity.Patient, error)
	// FindByID returns (nil, nil) when the patient is absent or
	// soft-deleted; absence is not an error at this layer.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Patient, error)
	// Search returns one page of patients plus the total matching count.
	Search(ctx context.Context, filter *entity.PatientFilter) ([]entity.Patient, int64, error)
	// Update applies a partial patch to demographics/contacts only.
	Update(ctx context.Context, id uuid.UUID, patch *entity.PatientPatch) (*entity.Patient, error)
	// SetDiagnosis records the admitting diagnosis and the derived
	// physician/department assignment in one write.
	SetDiagnosis(ctx context.Context, id uuid.UUID, diagnosis entity.Diagnosis) (*entity.Patient, error)
	// SoftDelete marks the patient deleted; the row is retained so its
	// medical record number stays reserved.
	SoftDelete(ctx context.Context, id uuid.UUID) (*entity.Patient, error)
}
