package usecase

import (
	"context"
	"errors"

	"patient-registry/internal/converter"
	"patient-registry/internal/delivery/dto"
	"patient-registry/internal/domain/entity"
	"patient-registry/internal/domain/repository"
	"patient-registry/pkg/pagination"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Domain error taxonomy surfaced to the transport layer. Validation faults
// and business-rule conflicts stay distinguishable from internal failures so
// callers know whether retrying with different input can help.
var (
	ErrPatientNotFound     = errors.New("patient not found")
	ErrDuplicateMRN        = errors.New("medical record number already in use")
	ErrInvalidDiagnosis    = errors.New("invalid admitting diagnosis")
	ErrDiagnosisAlreadySet = errors.New("admitting diagnosis already set")
	ErrDeleteForbidden     = errors.New("patient cannot be deleted after admitting diagnosis is set")
)

type PatientUsecase interface {
	RegisterPatient(ctx context.Context, req *dto.RegisterPatientRequest) (*dto.PatientResponse, error)
	GetPatient(ctx context.Context, id uuid.UUID) (*dto.PatientResponse, error)
	ListPatients(ctx context.Context, req *dto.ListPatientsRequest) (*dto.PatientListResponse, error)
	UpdatePatient(ctx context.Context, id uuid.UUID, req *dto.UpdatePatientRequest) (*dto.PatientResponse, error)
	SetDiagnosis(ctx context.Context, id uuid.UUID, req *dto.SetDiagnosisRequest) (*dto.PatientResponse, error)
	DeletePatient(ctx context.Context, id uuid.UUID) error
}

type patientUsecase struct {
	log         *logrus.Logger
	patientRepo repository.PatientRepository
}

func NewPatientUsecase(log *logrus.Logger, patientRepo repository.PatientRepository) PatientUsecase {
	return &patientUsecase{
		log:         log,
		patientRepo: patientRepo,
	}
}

// RegisterPatient creates a new patient record. The MRN is always
// auto-allocated; diagnosis, physician and department start absent no matter
// what the caller sent.
func (u *patientUsecase) RegisterPatient(ctx context.Context, req *dto.RegisterPatientRequest) (*dto.PatientResponse, error) {
	patient, err := u.patientRepo.Register(ctx, &repository.RegisterPatient{
		FirstName:  req.Name.First,
		MiddleName: req.Name.Middle,
		LastName:   req.Name.Last,
		Age:        *req.Age,
		Gender:     entity.Gender(req.Gender),
		Contacts:   converter.ContactsFromInputs(req.Contacts),
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateMRN) {
			return nil, ErrDuplicateMRN
		}
		u.log.Warnf("Failed to register patient: %+v", err)
		return nil, err
	}

	return converter.PatientToResponse(patient), nil
}

// GetPatient fetches an active patient. Absence at the store layer becomes
// a domain error here.
func (u *patientUsecase) GetPatient(ctx context.Context, id uuid.UUID) (*dto.PatientResponse, error) {
	patient, err := u.patientRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find patient: %+v", err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	return converter.PatientToResponse(patient), nil
}

func (u *patientUsecase) ListPatients(ctx context.Context, req *dto.ListPatientsRequest) (*dto.PatientListResponse, error) {
	plan := pagination.NewPlan(req.Page, req.PageSize)
	sortField, sortDir := entity.NormalizeSort(req.SortField, req.SortDir)

	patients, total, err := u.patientRepo.Search(ctx, &entity.PatientFilter{
		MRN:            req.MRN,
		Name:           req.Name,
		IncludeDeleted: req.IncludeDeleted,
		SortField:      sortField,
		SortDir:        sortDir,
		Offset:         plan.Offset,
		Limit:          plan.PageSize,
	})
	if err != nil {
		u.log.Warnf("Failed to search patients: %+v", err)
		return nil, err
	}

	return &dto.PatientListResponse{
		Patients: converter.PatientsToResponses(patients),
		Meta:     plan.BuildMeta(total),
	}, nil
}

// UpdatePatient applies a partial update to demographics and contacts.
// Diagnosis, physician and department are not reachable through this path.
func (u *patientUsecase) UpdatePatient(ctx context.Context, id uuid.UUID, req *dto.UpdatePatientRequest) (*dto.PatientResponse, error) {
	patch := &entity.PatientPatch{
		Age: req.Age,
	}
	if req.Name != nil {
		patch.FirstName = req.Name.First
		patch.LastName = req.Name.Last
		if req.Name.Middle.Present {
			patch.MiddleName = entity.OptionalString{Set: true, Value: req.Name.Middle.Value}
		}
	}
	if req.Gender != nil {
		gender := entity.Gender(*req.Gender)
		patch.Gender = &gender
	}
	if req.Contacts != nil {
		contacts := converter.ContactsFromInputs(*req.Contacts)
		patch.Contacts = &contacts
	}

	patient, err := u.patientRepo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		u.log.Warnf("Failed to update patient: %+v", err)
		return nil, err
	}

	return converter.PatientToResponse(patient), nil
}

// SetDiagnosis records the admitting diagnosis once. The physician and
// department assignment is derived from the diagnosis, never supplied.
func (u *patientUsecase) SetDiagnosis(ctx context.Context, id uuid.UUID, req *dto.SetDiagnosisRequest) (*dto.PatientResponse, error) {
	diagnosis := entity.Diagnosis(req.AdmittingDiagnosis)
	if !diagnosis.IsValid() {
		return nil, ErrInvalidDiagnosis
	}

	patient, err := u.patientRepo.SetDiagnosis(ctx, id, diagnosis)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrPatientNotFound
		case errors.Is(err, repository.ErrDiagnosisAlreadySet):
			return nil, ErrDiagnosisAlreadySet
		}
		u.log.Warnf("Failed to set diagnosis: %+v", err)
		return nil, err
	}

	return converter.PatientToResponse(patient), nil
}

func (u *patientUsecase) DeletePatient(ctx context.Context, id uuid.UUID) error {
	_, err := u.patientRepo.SoftDelete(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return ErrPatientNotFound
		case errors.Is(err, repository.ErrDeleteForbidden):
			return ErrDeleteForbidden
		}
		u.log.Warnf("Failed to delete patient: %+v", err)
		return err
	}
	return nil
}
