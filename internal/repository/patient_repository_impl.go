package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"patient-registry/internal/domain/entity"
	domainRepo "patient-registry/internal/domain/repository"
	"patient-registry/pkg/mrn"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SequenceHint supplies a best-effort next sequence number for MRN
// allocation. A return value of 0 means no hint is available; the unique
// index on medical_record_number is the authoritative guard either way.
type SequenceHint interface {
	Next(ctx context.Context) int64
}

type patientRepository struct {
	db  *gorm.DB
	seq SequenceHint
}

// NewPatientRepository creates the Postgres-backed patient store.
// seq may be nil; allocation then relies on the transactional max read alone.
func NewPatientRepository(db *gorm.DB, seq SequenceHint) domainRepo.PatientRepository {
	return &patientRepository{db: db, seq: seq}
}

const uniqueViolationCode = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// nextSequence computes the next MRN sequence inside the register
// transaction. Soft-deleted rows keep their numbers, so the max is taken
// over every row. A fresher Redis hint wins over the max read; a stale one
// is ignored.
func (r *patientRepository) nextSequence(ctx context.Context, tx *gorm.DB) (int64, error) {
	var current int64
	err := tx.Model(&entity.Patient{}).
		Select("COALESCE(MAX(CAST(SUBSTRING(medical_record_number FROM 5) AS BIGINT)), 0)").
		Scan(&current).Error
	if err != nil {
		return 0, err
	}
	next := current + 1
	if r.seq != nil {
		if hint := r.seq.Next(ctx); hint >= next {
			next = hint
		}
	}
	return next, nil
}

func (r *patientRepository) Register(ctx context.Context, input *domainRepo.RegisterPatient) (*entity.Patient, error) {
	var patient *entity.Patient
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number := input.MedicalRecordNumber
		if number == "" {
			next, err := r.nextSequence(ctx, tx)
			if err != nil {
				return err
			}
			number = mrn.Format(next)
		}

		contacts := input.Contacts
		if contacts == nil {
			contacts = entity.Contacts{}
		}

		p := &entity.Patient{
			MedicalRecordNumber: number,
			FirstName:           input.FirstName,
			MiddleName:          input.MiddleName,
			LastName:            input.LastName,
			Age:                 input.Age,
			Gender:              input.Gender,
			Contacts:            contacts,
			Version:             entity.VersionBase,
		}
		if err := tx.Create(p).Error; err != nil {
			if isUniqueViolation(err) {
				return domainRepo.ErrDuplicateMRN
			}
			return err
		}
		patient = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return patient, nil
}

func (r *patientRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Patient, error) {
	var patient entity.Patient
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&patient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &patient, nil
}

// orderClause appends id to every sort so pagination stays stable when
// sort keys tie.
func orderClause(filter *entity.PatientFilter) string {
	dir := "DESC"
	if filter.SortDir == entity.SortDirAsc {
		dir = "ASC"
	}
	switch filter.SortField {
	case entity.SortFieldName:
		return fmt.Sprintf("lower(last_name) %s, lower(first_name) %s, id %s", dir, dir, dir)
	case entity.SortFieldMRN:
		return fmt.Sprintf("medical_record_number %s, id %s", dir, dir)
	default:
		return fmt.Sprintf("created_at %s, id %s", dir, dir)
	}
}

func (r *patientRepository) Search(ctx context.Context, filter *entity.PatientFilter) ([]entity.Patient, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Patient{})

	if !filter.IncludeDeleted {
		query = query.Where("is_deleted = ?", false)
	}
	if filter.MRN != "" {
		query = query.Where("medical_record_number = ?", filter.MRN)
	}
	if filter.Name != "" {
		query = query.Where("lower(first_name || ' ' || last_name) LIKE ?",
			"%"+strings.ToLower(filter.Name)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var patients []entity.Patient
	err := query.
		Order(orderClause(filter)).
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&patients).Error
	if err != nil {
		return nil, 0, err
	}
	return patients, total, nil
}

// lockActive loads the row for update inside tx; absent and soft-deleted
// rows both surface as ErrNotFound.
func lockActive(tx *gorm.DB, id uuid.UUID) (*entity.Patient, error) {
	var patient entity.Patient
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&patient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainRepo.ErrNotFound
		}
		return nil, err
	}
	if patient.IsDeleted {
		return nil, domainRepo.ErrNotFound
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, id uuid.UUID, patch *entity.PatientPatch) (*entity.Patient, error) {
	var patient *entity.Patient
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := lockActive(tx, id)
		if err != nil {
			return err
		}

		if patch.FirstName != nil {
			p.FirstName = *patch.FirstName
		}
		if patch.LastName != nil {
			p.LastName = *patch.LastName
		}
		if patch.MiddleName.Set {
			p.MiddleName = patch.MiddleName.Value
		}
		if patch.Age != nil {
			p.Age = *patch.Age
		}
		if patch.Gender != nil {
			p.Gender = *patch.Gender
		}
		if patch.Contacts != nil {
			p.Contacts = *patch.Contacts
		}
		p.Version++

		if err := tx.Save(p).Error; err != nil {
			return err
		}
		patient = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return patient, nil
}

func (r *patientRepository) SetDiagnosis(ctx context.Context, id uuid.UUID, diagnosis entity.Diagnosis) (*entity.Patient, error) {
	var patient *entity.Patient
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := lockActive(tx, id)
		if err != nil {
			return err
		}
		if p.HasDiagnosis() {
			return domainRepo.ErrDiagnosisAlreadySet
		}

		physician, department := entity.AssignmentFor(diagnosis)
		p.AdmittingDiagnosis = &diagnosis
		p.AttendingPhysician = &physician
		p.Department = &department
		p.Version++

		if err := tx.Save(p).Error; err != nil {
			return err
		}
		patient = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return patient, nil
}

func (r *patientRepository) SoftDelete(ctx context.Context, id uuid.UUID) (*entity.Patient, error) {
	var patient *entity.Patient
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := lockActive(tx, id)
		if err != nil {
			return err
		}
		if p.HasDiagnosis() {
			return domainRepo.ErrDeleteForbidden
		}

		p.IsDeleted = true
		p.Version++

		if err := tx.Save(p).Error; err != nil {
			return err
		}
		patient = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return patient, nil
}
