package opinion

import "asclepius/pkg/errors"

// Department is a non-council department scored for informational surfacing
type Department string

const (
	Orthopedics       Department = "Orthopedics"
	ENT               Department = "ENT"
	Dermatology       Department = "Dermatology"
	Ophthalmology     Department = "Ophthalmology"
	Pediatrics        Department = "Pediatrics"
	ObGyn             Department = "Obstetrics & Gynecology"
	Psychiatry        Department = "Psychiatry"
	Urology           Department = "Urology"
	Nephrology        Department = "Nephrology"
	Endocrinology     Department = "Endocrinology"
	Oncology          Department = "Oncology"
	InfectiousDisease Department = "Infectious Disease"
	GeneralSurgery    Department = "General Surgery"
)

// OtherDepartments lists every non-council department, in scoring order
var OtherDepartments = []Department{
	Orthopedics, ENT, Dermatology, Ophthalmology, Pediatrics,
	ObGyn, Psychiatry, Urology, Nephrology, Endocrinology,
	Oncology, InfectiousDisease, GeneralSurgery,
}

// ReasonThreshold is the minimum relevance at which a scorer must attach
// a reason; SurfaceThreshold is the stricter cutoff for verdict inclusion.
const (
	ReasonThreshold  = 3
	SurfaceThreshold = 4
)

// OtherDepartmentScore is one non-council department's relevance to a patient
type OtherDepartmentScore struct {
	Department Department `json:"department"`
	Relevance  int        `json:"relevance"`
	Reason     string     `json:"reason,omitempty"`
}

// Validate enforces the scorer output contract
func (s *OtherDepartmentScore) Validate() error {
	known := false
	for _, d := range OtherDepartments {
		if d == s.Department {
			known = true
			break
		}
	}
	if !known {
		return errors.NewValidationError("department", "unknown department", s.Department)
	}
	if s.Relevance < 0 || s.Relevance > 10 {
		return errors.NewValidationError("relevance", "must be in [0,10]", s.Relevance)
	}
	if s.Relevance >= ReasonThreshold && s.Reason == "" {
		return errors.NewValidationError("reason", "required for relevance >= 3", s.Relevance)
	}
	return nil
}
