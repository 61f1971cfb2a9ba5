package entity

// AssignmentFor maps an admitting diagnosis to the attending physician and
// department that take over the patient. Callers must validate the diagnosis
// against the enum before calling; the mapping itself has no invalid branch.
func AssignmentFor(d Diagnosis) (Physician, Department) {
	if d == DiagnosisBreast || d == DiagnosisLung {
		return PhysicianSusanJones, DepartmentJ
	}
	return PhysicianBenSmith, DepartmentS
}
