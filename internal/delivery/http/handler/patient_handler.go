package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"patient-registry/internal/delivery/dto"
	"patient-registry/internal/usecase"
	"patient-registry/pkg/pagination"
	"patient-registry/pkg/response"
	"patient-registry/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type PatientHandler struct {
	patientUsecase usecase.PatientUsecase
	validator      *validator.CustomValidator
}

func NewPatientHandler(patientUsecase usecase.PatientUsecase, validator *validator.CustomValidator) *PatientHandler {
	return &PatientHandler{
		patientUsecase: patientUsecase,
		validator:      validator,
	}
}

func patientID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	return id, err == nil
}

func (h *PatientHandler) RegisterPatient(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterPatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	patient, err := h.patientUsecase.RegisterPatient(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrDuplicateMRN:
			response.Error(w, http.StatusConflict, "Medical record number already in use", nil)
		default:
			response.InternalServerError(w, "Failed to register patient")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Patient registered successfully", patient)
}

func (h *PatientHandler) GetPatient(w http.ResponseWriter, r *http.Request) {
	id, ok := patientID(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid patient id", nil)
		return
	}

	patient, err := h.patientUsecase.GetPatient(r.Context(), id)
	if err != nil {
		switch err {
		case usecase.ErrPatientNotFound:
			response.NotFound(w, "Patient not found")
		default:
			response.InternalServerError(w, "Failed to get patient")
		}
		return
	}

	response.Success(w, http.StatusOK, "", patient)
}

// parseListRequest maps query parameters onto the list request. Sort comes
// as "field:dir"; unknown values are normalized downstream, not rejected.
func parseListRequest(r *http.Request) *dto.ListPatientsRequest {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))

	sortField, sortDir := "", ""
	if sortParam := q.Get("sort"); sortParam != "" {
		parts := strings.SplitN(sortParam, ":", 2)
		sortField = parts[0]
		if len(parts) == 2 {
			sortDir = parts[1]
		}
	}

	return &dto.ListPatientsRequest{
		Page:           page,
		PageSize:       pageSize,
		Name:           strings.TrimSpace(q.Get("name")),
		MRN:            strings.TrimSpace(q.Get("mrn")),
		IncludeDeleted: q.Get("include_deleted") == "true",
		SortField:      sortField,
		SortDir:        sortDir,
	}
}

// linkHeader renders RFC 5988 navigation links. First and last are always
// present; prev and next only when the current page has a neighbor.
func linkHeader(r *http.Request, meta pagination.Meta) string {
	link := func(page int, rel string) string {
		q := url.Values{}
		for key, values := range r.URL.Query() {
			q[key] = values
		}
		q.Set("page", strconv.Itoa(page))
		return fmt.Sprintf("<%s?%s>; rel=%q", r.URL.Path, q.Encode(), rel)
	}

	links := []string{link(1, "first")}
	if meta.HasPrev {
		links = append(links, link(meta.Page-1, "prev"))
	}
	if meta.HasNext {
		links = append(links, link(meta.Page+1, "next"))
	}
	links = append(links, link(meta.LastPage, "last"))
	return strings.Join(links, ", ")
}

func (h *PatientHandler) ListPatients(w http.ResponseWriter, r *http.Request) {
	req := parseListRequest(r)

	list, err := h.patientUsecase.ListPatients(r.Context(), req)
	if err != nil {
		response.InternalServerError(w, "Failed to list patients")
		return
	}

	w.Header().Set("X-Total-Count", strconv.FormatInt(list.Meta.Total, 10))
	w.Header().Set("Link", linkHeader(r, list.Meta))
	response.Success(w, http.StatusOK, "", list)
}

func (h *PatientHandler) UpdatePatient(w http.ResponseWriter, r *http.Request) {
	id, ok := patientID(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid patient id", nil)
		return
	}

	var req dto.UpdatePatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	patient, err := h.patientUsecase.UpdatePatient(r.Context(), id, &req)
	if err != nil {
		switch err {
		case usecase.ErrPatientNotFound:
			response.NotFound(w, "Patient not found")
		default:
			response.InternalServerError(w, "Failed to update patient")
		}
		return
	}

	response.Success(w, http.StatusOK, "Patient updated successfully", patient)
}

func (h *PatientHandler) SetDiagnosis(w http.ResponseWriter, r *http.Request) {
	id, ok := patientID(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid patient id", nil)
		return
	}

	var req dto.SetDiagnosisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	patient, err := h.patientUsecase.SetDiagnosis(r.Context(), id, &req)
	if err != nil {
		switch err {
		case usecase.ErrInvalidDiagnosis:
			response.Error(w, http.StatusBadRequest, "Invalid admitting diagnosis", nil)
		case usecase.ErrPatientNotFound:
			response.NotFound(w, "Patient not found")
		case usecase.ErrDiagnosisAlreadySet:
			response.Error(w, http.StatusConflict, "Admitting diagnosis already set", nil)
		default:
			response.InternalServerError(w, "Failed to set diagnosis")
		}
		return
	}

	response.Success(w, http.StatusOK, "Diagnosis set successfully", patient)
}

func (h *PatientHandler) DeletePatient(w http.ResponseWriter, r *http.Request) {
	id, ok := patientID(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid patient id", nil)
		return
	}

	if err := h.patientUsecase.DeletePatient(r.Context(), id); err != nil {
		switch err {
		case usecase.ErrPatientNotFound:
			response.NotFound(w, "Patient not found")
		case usecase.ErrDeleteForbidden:
			response.Error(w, http.StatusConflict, "Cannot delete a patient after admitting diagnosis has been set", nil)
		default:
			response.InternalServerError(w, "Failed to delete patient")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
