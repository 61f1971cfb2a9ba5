package entity

// Sort fields accepted by the patient search. Anything else falls back to
// SortFieldCreatedAt descending.
const (
	SortFieldCreatedAt = "createdAt"
	SortFieldName      = "name"
	SortFieldMRN       = "mrn"

	SortDirAsc  = "asc"
	SortDirDesc = "desc"
)

// NormalizeSort maps requested sort parameters onto the allow-listed set.
// An unknown field silently falls back to creation time descending; an
// unknown direction becomes descending.
func NormalizeSort(field, dir string) (string, string) {
	switch field {
	case SortFieldCreatedAt, SortFieldName, SortFieldMRN:
	default:
		return SortFieldCreatedAt, SortDirDesc
	}
	if dir != SortDirAsc {
		dir = SortDirDesc
	}
	return field, dir
}

// PatientFilter is a domain-level filter for querying patients.
// Used by repository layer to avoid coupling with delivery DTOs.
type PatientFilter struct {
	MRN            string // Exact medical record number match
	Name           string // Case-insensitive substring match on "first last"
	IncludeDeleted bool   // Soft-deleted rows are excluded unless set
	SortField      string // One of the SortField constants
	SortDir        string // SortDirAsc or SortDirDesc
	Offset         int
	Limit          int
}

// OptionalString distinguishes "leave unchanged" (Set=false) from
// "clear" (Set=true, Value=nil) from "replace" (Set=true, Value!=nil).
type OptionalString struct {
	Set   bool
	Value *string
}

// PatientPatch carries the fields an update may touch. A nil pointer means
// the stored value is left unchanged. Contacts, when present, replace the
// stored sequence entirely; an empty slice clears it.
type PatientPatch struct {
	FirstName  *string
	MiddleName OptionalString
	LastName   *string
	Age        *int
	Gender     *Gender
	Contacts   *Contacts
}
