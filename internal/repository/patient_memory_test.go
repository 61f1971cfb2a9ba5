package repository

import (
	"context"
	"sync"
	"testing"

	"patient-registry/internal/domain/entity"
	domainRepo "patient-registry/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type PatientStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestPatientStoreSuite(t *testing.T) {
	suite.Run(t, new(PatientStoreSuite))
}

func (s *PatientStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *PatientStoreSuite) register(first, last string) *entity.Patient {
	p, err := s.store.Register(s.ctx, &domainRepo.RegisterPatient{
		FirstName: first,
		LastName:  last,
		Age:       40,
		Gender:    entity.GenderFemale,
	})
	s.Require().NoError(err)
	return p
}

func (s *PatientStoreSuite) TestRegister() {
	s.Run("assigns base version and leaves assignment absent", func() {
		p := s.register("Jane", "Doe")
		s.Equal(entity.VersionBase, p.Version)
		s.Nil(p.AdmittingDiagnosis)
		s.Nil(p.AttendingPhysician)
		s.Nil(p.Department)
		s.False(p.IsDeleted)
		s.NotNil(p.Contacts)
		s.Empty(p.Contacts)
	})

	s.Run("allocates sequential MRNs without gaps", func() {
		s.store = NewInMemory()
		a := s.register("Jane", "Doe")
		b := s.register("John", "Roe")
		s.Equal("MRN-000001", a.MedicalRecordNumber)
		s.Equal("MRN-000002", b.MedicalRecordNumber)
	})

	s.Run("rejects a caller-supplied duplicate MRN", func() {
		a := s.register("Jane", "Doe")
		_, err := s.store.Register(s.ctx, &domainRepo.RegisterPatient{
			MedicalRecordNumber: a.MedicalRecordNumber,
			FirstName:           "John",
			LastName:            "Roe",
			Age:                 50,
			Gender:              entity.GenderMale,
		})
		s.Require().ErrorIs(err, domainRepo.ErrDuplicateMRN)
	})

	s.Run("never reissues an MRN under concurrent registration", func() {
		store := NewInMemory()
		const n = 50
		var wg sync.WaitGroup
		results := make(chan string, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				p, err := store.Register(context.Background(), &domainRepo.RegisterPatient{
					FirstName: "Jane",
					LastName:  "Doe",
					Age:       40,
					Gender:    entity.GenderFemale,
				})
				s.NoError(err)
				results <- p.MedicalRecordNumber
			}()
		}
		wg.Wait()
		close(results)

		seen := make(map[string]bool)
		for number := range results {
			s.False(seen[number], "MRN %s issued twice", number)
			seen[number] = true
		}
		s.Len(seen, n)
	})
}

func (s *PatientStoreSuite) TestFindByID() {
	s.Run("returns nil without error when absent", func() {
		p, err := s.store.FindByID(s.ctx, uuid.New())
		s.Require().NoError(err)
		s.Nil(p)
	})

	s.Run("hides soft-deleted patients", func() {
		p := s.register("Jane", "Doe")
		_, err := s.store.SoftDelete(s.ctx, p.ID)
		s.Require().NoError(err)

		found, err := s.store.FindByID(s.ctx, p.ID)
		s.Require().NoError(err)
		s.Nil(found)
	})
}

func (s *PatientStoreSuite) TestUpdate() {
	s.Run("omitted fields stay unchanged", func() {
		p := s.register("Jane", "Doe")
		age := 41
		updated, err := s.store.Update(s.ctx, p.ID, &entity.PatientPatch{Age: &age})
		s.Require().NoError(err)
		s.Equal(41, updated.Age)
		s.Equal("Jane", updated.FirstName)
		s.Equal("Doe", updated.LastName)
		s.Equal(p.Version+1, updated.Version)
	})

	s.Run("explicit null clears the middle name", func() {
		middle := "Q"
		p, err := s.store.Register(s.ctx, &domainRepo.RegisterPatient{
			FirstName:  "Jane",
			MiddleName: &middle,
			LastName:   "Doe",
			Age:        40,
			Gender:     entity.GenderFemale,
		})
		s.Require().NoError(err)

		updated, err := s.store.Update(s.ctx, p.ID, &entity.PatientPatch{
			MiddleName: entity.OptionalString{Set: true, Value: nil},
		})
		s.Require().NoError(err)
		s.Nil(updated.MiddleName)
	})

	s.Run("present contacts replace the sequence entirely", func() {
		p, err := s.store.Register(s.ctx, &domainRepo.RegisterPatient{
			FirstName: "Jane",
			LastName:  "Doe",
			Age:       40,
			Gender:    entity.GenderFemale,
			Contacts: entity.Contacts{
				{Type: entity.ContactTypeMobile, Value: "555-0100"},
				{Type: entity.ContactTypeEmail, Value: "jane@example.com"},
			},
		})
		s.Require().NoError(err)

		empty := entity.Contacts{}
		updated, err := s.store.Update(s.ctx, p.ID, &entity.PatientPatch{Contacts: &empty})
		s.Require().NoError(err)
		s.Empty(updated.Contacts)
	})

	s.Run("returns ErrNotFound for soft-deleted patients", func() {
		p := s.register("Jane", "Doe")
		_, err := s.store.SoftDelete(s.ctx, p.ID)
		s.Require().NoError(err)

		age := 41
		_, err = s.store.Update(s.ctx, p.ID, &entity.PatientPatch{Age: &age})
		s.Require().ErrorIs(err, domainRepo.ErrNotFound)
	})
}

func (s *PatientStoreSuite) TestSetDiagnosis() {
	s.Run("derives physician and department from the diagnosis", func() {
		p := s.register("Jane", "Doe")
		updated, err := s.store.SetDiagnosis(s.ctx, p.ID, entity.DiagnosisLung)
		s.Require().NoError(err)
		s.Require().NotNil(updated.AdmittingDiagnosis)
		s.Equal(entity.DiagnosisLung, *updated.AdmittingDiagnosis)
		s.Equal(entity.PhysicianSusanJones, *updated.AttendingPhysician)
		s.Equal(entity.DepartmentJ, *updated.Department)
		s.Equal(p.Version+1, updated.Version)
	})

	s.Run("diagnosis is one-way", func() {
		p := s.register("Jane", "Doe")
		_, err := s.store.SetDiagnosis(s.ctx, p.ID, entity.DiagnosisProstate)
		s.Require().NoError(err)

		_, err = s.store.SetDiagnosis(s.ctx, p.ID, entity.DiagnosisBreast)
		s.Require().ErrorIs(err, domainRepo.ErrDiagnosisAlreadySet)
	})

	s.Run("returns ErrNotFound for unknown patients", func() {
		_, err := s.store.SetDiagnosis(s.ctx, uuid.New(), entity.DiagnosisBreast)
		s.Require().ErrorIs(err, domainRepo.ErrNotFound)
	})
}

func (s *PatientStoreSuite) TestSoftDelete() {
	s.Run("marks the patient deleted and keeps the MRN reserved", func() {
		p := s.register("Jane", "Doe")
		deleted, err := s.store.SoftDelete(s.ctx, p.ID)
		s.Require().NoError(err)
		s.True(deleted.IsDeleted)

		_, err = s.store.Register(s.ctx, &domainRepo.RegisterPatient{
			MedicalRecordNumber: p.MedicalRecordNumber,
			FirstName:           "John",
			LastName:            "Roe",
			Age:                 50,
			Gender:              entity.GenderMale,
		})
		s.Require().ErrorIs(err, domainRepo.ErrDuplicateMRN)
	})

	s.Run("is forbidden once diagnosis is set", func() {
		p := s.register("Jane", "Doe")
		_, err := s.store.SetDiagnosis(s.ctx, p.ID, entity.DiagnosisLung)
		s.Require().NoError(err)

		_, err = s.store.SoftDelete(s.ctx, p.ID)
		s.Require().ErrorIs(err, domainRepo.ErrDeleteForbidden)

		found, err := s.store.FindByID(s.ctx, p.ID)
		s.Require().NoError(err)
		s.Require().NotNil(found)
		s.False(found.IsDeleted)
	})

	s.Run("deleting twice returns ErrNotFound", func() {
		p := s.register("Jane", "Doe")
		_, err := s.store.SoftDelete(s.ctx, p.ID)
		s.Require().NoError(err)

		_, err = s.store.SoftDelete(s.ctx, p.ID)
		s.Require().ErrorIs(err, domainRepo.ErrNotFound)
	})
}

func (s *PatientStoreSuite) TestSearch() {
	s.Run("excludes soft-deleted patients by default", func() {
		s.store = NewInMemory()
		a := s.register("Jane", "Doe")
		s.register("John", "Roe")
		_, err := s.store.SoftDelete(s.ctx, a.ID)
		s.Require().NoError(err)

		page, total, err := s.store.Search(s.ctx, &entity.PatientFilter{Limit: 10})
		s.Require().NoError(err)
		s.Equal(int64(1), total)
		s.Len(page, 1)
		s.Equal("John", page[0].FirstName)

		_, total, err = s.store.Search(s.ctx, &entity.PatientFilter{Limit: 10, IncludeDeleted: true})
		s.Require().NoError(err)
		s.Equal(int64(2), total)
	})

	s.Run("matches exact MRN", func() {
		s.store = NewInMemory()
		a := s.register("Jane", "Doe")
		s.register("John", "Roe")

		page, total, err := s.store.Search(s.ctx, &entity.PatientFilter{
			MRN:   a.MedicalRecordNumber,
			Limit: 10,
		})
		s.Require().NoError(err)
		s.Equal(int64(1), total)
		s.Equal(a.ID, page[0].ID)
	})

	s.Run("matches name substring case-insensitively", func() {
		s.store = NewInMemory()
		s.register("Jane", "Doe")
		s.register("John", "Roe")

		_, total, err := s.store.Search(s.ctx, &entity.PatientFilter{Name: "ANE D", Limit: 10})
		s.Require().NoError(err)
		s.Equal(int64(1), total)
	})

	s.Run("orders by last then first name case-insensitively", func() {
		s.store = NewInMemory()
		s.register("zoe", "adams")
		s.register("Amy", "Brown")
		s.register("Ben", "adams")

		page, _, err := s.store.Search(s.ctx, &entity.PatientFilter{
			SortField: entity.SortFieldName,
			SortDir:   entity.SortDirAsc,
			Limit:     10,
		})
		s.Require().NoError(err)
		s.Require().Len(page, 3)
		s.Equal("Ben", page[0].FirstName)
		s.Equal("zoe", page[1].FirstName)
		s.Equal("Amy", page[2].FirstName)
	})

	s.Run("pagination is stable across repeated queries", func() {
		s.store = NewInMemory()
		for i := 0; i < 7; i++ {
			s.register("Jane", "Doe")
		}
		filter := func(offset int) *entity.PatientFilter {
			return &entity.PatientFilter{
				SortField: entity.SortFieldName,
				SortDir:   entity.SortDirAsc,
				Offset:    offset,
				Limit:     3,
			}
		}

		var firstPass []uuid.UUID
		for offset := 0; offset < 7; offset += 3 {
			page, _, err := s.store.Search(s.ctx, filter(offset))
			s.Require().NoError(err)
			for _, p := range page {
				firstPass = append(firstPass, p.ID)
			}
		}
		s.Len(firstPass, 7)

		var secondPass []uuid.UUID
		for offset := 0; offset < 7; offset += 3 {
			page, _, err := s.store.Search(s.ctx, filter(offset))
			s.Require().NoError(err)
			for _, p := range page {
				secondPass = append(secondPass, p.ID)
			}
		}
		s.Equal(firstPass, secondPass)

		seen := make(map[uuid.UUID]bool)
		for _, id := range firstPass {
			s.False(seen[id], "patient %s appeared on two pages", id)
			seen[id] = true
		}
	})
}
