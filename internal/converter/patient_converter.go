package converter

import (
	"patient-registry/internal/delivery/dto"
	"patient-registry/internal/domain/entity"
)

// ContactsFromInputs converts contact inputs into the domain contact list,
// preserving order. A nil input yields an empty list, never nil.
func ContactsFromInputs(inputs []dto.ContactInput) entity.Contacts {
	contacts := make(entity.Contacts, 0, len(inputs))
	for _, in := range inputs {
		contacts = append(contacts, entity.Contact{
			Type:      entity.ContactType(in.Type),
			Value:     in.Value,
			Preferred: in.Preferred,
		})
	}
	return contacts
}

// PatientToResponse converts a Patient entity to its response DTO
func PatientToResponse(p *entity.Patient) *dto.PatientResponse {
	if p == nil {
		return nil
	}

	contacts := make([]dto.ContactResponse, 0, len(p.Contacts))
	for _, c := range p.Contacts {
		contacts = append(contacts, dto.ContactResponse{
			Type:      string(c.Type),
			Value:     c.Value,
			Preferred: c.Preferred,
		})
	}

	resp := &dto.PatientResponse{
		ID:                  p.ID,
		MedicalRecordNumber: p.MedicalRecordNumber,
		Name: dto.NameResponse{
			First:  p.FirstName,
			Middle: p.MiddleName,
			Last:   p.LastName,
		},
		Age:       p.Age,
		Gender:    string(p.Gender),
		Contacts:  contacts,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
		Version:   p.Version,
		IsDeleted: p.IsDeleted,
	}
	if p.AdmittingDiagnosis != nil {
		diagnosis := string(*p.AdmittingDiagnosis)
		resp.AdmittingDiagnosis = &diagnosis
	}
	if p.AttendingPhysician != nil {
		physician := string(*p.AttendingPhysician)
		resp.AttendingPhysician = &physician
	}
	if p.Department != nil {
		department := string(*p.Department)
		resp.Department = &department
	}
	return resp
}

// PatientsToResponses converts a page of patients to response DTOs
func PatientsToResponses(patients []entity.Patient) []dto.PatientResponse {
	responses := make([]dto.PatientResponse, 0, len(patients))
	for i := range patients {
		responses = append(responses, *PatientToResponse(&patients[i]))
	}
	return responses
}
