package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"patient-registry/internal/domain/entity"
	domainRepo "patient-registry/internal/domain/repository"
	"patient-registry/pkg/mrn"

	"github.com/google/uuid"
)

// InMemory is a map-backed PatientRepository that mirrors the Postgres
// implementation's semantics. It backs usecase and handler tests and is not
// safe to treat as durable storage.
type InMemory struct {
	mu       sync.RWMutex
	patients map[uuid.UUID]*entity.Patient
	seq      int64
}

func NewInMemory() *InMemory {
	return &InMemory{patients: make(map[uuid.UUID]*entity.Patient)}
}

func (s *InMemory) Register(ctx context.Context, input *domainRepo.RegisterPatient) (*entity.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	number := input.MedicalRecordNumber
	if number == "" {
		s.seq++
		number = mrn.Format(s.seq)
	}
	for _, p := range s.patients {
		if p.MedicalRecordNumber == number {
			return nil, domainRepo.ErrDuplicateMRN
		}
	}
	if seq, err := mrn.Sequence(number); err == nil && seq > s.seq {
		s.seq = seq
	}

	contacts := input.Contacts
	if contacts == nil {
		contacts = entity.Contacts{}
	}

	now := time.Now()
	p := &entity.Patient{
		ID:                  uuid.New(),
		MedicalRecordNumber: number,
		FirstName:           input.FirstName,
		MiddleName:          input.MiddleName,
		LastName:            input.LastName,
		Age:                 input.Age,
		Gender:              input.Gender,
		Contacts:            contacts,
		CreatedAt:           now,
		UpdatedAt:           now,
		Version:             entity.VersionBase,
	}
	s.patients[p.ID] = p

	out := *p
	return &out, nil
}

func (s *InMemory) FindByID(ctx context.Context, id uuid.UUID) (*entity.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.patients[id]
	if !ok || p.IsDeleted {
		return nil, nil
	}
	out := *p
	return &out, nil
}

func matches(p *entity.Patient, filter *entity.PatientFilter) bool {
	if !filter.IncludeDeleted && p.IsDeleted {
		return false
	}
	if filter.MRN != "" && p.MedicalRecordNumber != filter.MRN {
		return false
	}
	if filter.Name != "" {
		full := strings.ToLower(p.FirstName + " " + p.LastName)
		if !strings.Contains(full, strings.ToLower(filter.Name)) {
			return false
		}
	}
	return true
}

// less implements the same total ordering as the Postgres order clause,
// with the id as final tiebreaker.
func less(a, b *entity.Patient, sortField string) bool {
	switch sortField {
	case entity.SortFieldName:
		al, bl := strings.ToLower(a.LastName), strings.ToLower(b.LastName)
		if al != bl {
			return al < bl
		}
		af, bf := strings.ToLower(a.FirstName), strings.ToLower(b.FirstName)
		if af != bf {
			return af < bf
		}
	case entity.SortFieldMRN:
		if a.MedicalRecordNumber != b.MedicalRecordNumber {
			return a.MedicalRecordNumber < b.MedicalRecordNumber
		}
	default:
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	return a.ID.String() < b.ID.String()
}

func (s *InMemory) Search(ctx context.Context, filter *entity.PatientFilter) ([]entity.Patient, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matching []*entity.Patient
	for _, p := range s.patients {
		if matches(p, filter) {
			matching = append(matching, p)
		}
	}

	asc := filter.SortDir == entity.SortDirAsc
	sort.Slice(matching, func(i, j int) bool {
		if asc {
			return less(matching[i], matching[j], filter.SortField)
		}
		return less(matching[j], matching[i], filter.SortField)
	})

	total := int64(len(matching))
	start := filter.Offset
	if start > len(matching) {
		start = len(matching)
	}
	end := start + filter.Limit
	if filter.Limit <= 0 || end > len(matching) {
		end = len(matching)
	}

	page := make([]entity.Patient, 0, end-start)
	for _, p := range matching[start:end] {
		page = append(page, *p)
	}
	return page, total, nil
}

func (s *InMemory) Update(ctx context.Context, id uuid.UUID, patch *entity.PatientPatch) (*entity.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.patients[id]
	if !ok || p.IsDeleted {
		return nil, domainRepo.ErrNotFound
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
	p.UpdatedAt = time.Now()

	out := *p
	return &out, nil
}

func (s *InMemory) SetDiagnosis(ctx context.Context, id uuid.UUID, diagnosis entity.Diagnosis) (*entity.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.patients[id]
	if !ok || p.IsDeleted {
		return nil, domainRepo.ErrNotFound
	}
	if p.HasDiagnosis() {
		return nil, domainRepo.ErrDiagnosisAlreadySet
	}

	physician, department := entity.AssignmentFor(diagnosis)
	p.AdmittingDiagnosis = &diagnosis
	p.AttendingPhysician = &physician
	p.Department = &department
	p.Version++
	p.UpdatedAt = time.Now()

	out := *p
	return &out, nil
}

func (s *InMemory) SoftDelete(ctx context.Context, id uuid.UUID) (*entity.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.patients[id]
	if !ok || p.IsDeleted {
		return nil, domainRepo.ErrNotFound
	}
	if p.HasDiagnosis() {
		return nil, domainRepo.ErrDeleteForbidden
	}

	p.IsDeleted = true
	p.Version++
	p.UpdatedAt = time.Now()

	out := *p
	return &out, nil
}
