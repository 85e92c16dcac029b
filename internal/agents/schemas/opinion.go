package schemas

import (
	"google.golang.org/genai"
)

// Helper functions for creating float64 pointers
func float64Ptr(v float64) *float64 {
	return &v
}

// FlagSchema describes one clinical warning raised by a specialist
var FlagSchema = &genai.Schema{
	Type: "OBJECT",
	Properties: map[string]*genai.Schema{
		"severity": {
			Type:        "STRING",
			Description: "Flag severity",
			Enum:        []string{"RED_FLAG", "YELLOW_FLAG", "INFO"},
		},
		"label": {
			Type:        "STRING",
			Description: "Short clinical label for the finding (e.g. 'Possible ACS pattern')",
		},
		"pattern": {
			Type:        "STRING",
			Description: "Symptom/vital pattern supporting the flag",
		},
	},
	Required: []string{"severity", "label"},
}

// WorkupItemSchema describes one recommended test
var WorkupItemSchema = &genai.Schema{
	Type: "OBJECT",
	Properties: map[string]*genai.Schema{
		"test": {
			Type:        "STRING",
			Description: "Test name (e.g. 'ECG', 'Troponin I')",
		},
		"priority": {
			Type:        "STRING",
			Description: "How urgently the test is needed",
			Enum:        []string{"STAT", "URGENT", "ROUTINE"},
		},
		"rationale": {
			Type:        "STRING",
			Description: "Why this test is needed for this patient",
		},
	},
	Required: []string{"test", "priority", "rationale"},
}

// DifferentialItemSchema describes one differential consideration
var DifferentialItemSchema = &genai.Schema{
	Type: "OBJECT",
	Properties: map[string]*genai.Schema{
		"condition": {
			Type:        "STRING",
			Description: "Candidate condition",
		},
		"likelihood": {
			Type:        "STRING",
			Description: "Qualitative likelihood (e.g. 'high', 'moderate', 'low')",
		},
		"reasoning": {
			Type:        "STRING",
			Description: "Clinical reasoning for this consideration",
		},
	},
	Required: []string{"condition", "likelihood"},
}

// SpecialistOpinionSchema is the structured output contract every council
// specialist must satisfy. The specialty field is overwritten by the caller
// with the producer's fixed identity regardless of what the model emits.
var SpecialistOpinionSchema = &genai.Schema{
	Type: "OBJECT",
	Properties: map[string]*genai.Schema{
		"specialty": {
			Type:        "STRING",
			Description: "Your specialty name, exactly as given in the instructions",
		},
		"relevance_score": {
			Type:        "INTEGER",
			Description: "How relevant this case is to your specialty, 0-10",
			Minimum:     float64Ptr(0),
			Maximum:     float64Ptr(10),
		},
		"urgency_score": {
			Type:        "INTEGER",
			Description: "How urgently the patient needs your specialty, 0-10",
			Minimum:     float64Ptr(0),
			Maximum:     float64Ptr(10),
		},
		"confidence": {
			Type:        "STRING",
			Description: "Confidence in your own assessment",
			Enum:        []string{"HIGH", "MEDIUM", "LOW"},
		},
		"assessment": {
			Type:        "STRING",
			Description: "Full clinical assessment from your specialty's perspective",
		},
		"one_liner": {
			Type:        "STRING",
			Description: "One-line summary, at most 120 characters",
		},
		"flags": {
			Type:        "ARRAY",
			Description: "Clinical warnings; RED_FLAG only for findings needing immediate attention",
			Items:       FlagSchema,
		},
		"claims_primary": {
			Type:        "BOOLEAN",
			Description: "True only if this patient predominantly belongs to your department",
		},
		"recommended_department": {
			Type:        "STRING",
			Description: "Department to route to; required when claims_primary is true, omit otherwise",
		},
		"differential_considerations": {
			Type:        "ARRAY",
			Description: "Differential diagnoses considered",
			Items:       DifferentialItemSchema,
		},
		"recommended_workup": {
			Type:        "ARRAY",
			Description: "Tests to order",
			Items:       WorkupItemSchema,
		},
	},
	Required: []string{
		"specialty", "relevance_score", "urgency_score", "confidence",
		"assessment", "one_liner", "flags", "claims_primary",
		"differential_considerations", "recommended_workup",
	},
}

// OtherDepartmentScoreSchema describes one non-council department rating
var OtherDepartmentScoreSchema = &genai.Schema{
	Type: "OBJECT",
	Properties: map[string]*genai.Schema{
		"department": {
			Type:        "STRING",
			Description: "Department name, exactly as listed in the instructions",
		},
		"relevance": {
			Type:        "INTEGER",
			Description: "Relevance of this department to the case, 0-10",
			Minimum:     float64Ptr(0),
			Maximum:     float64Ptr(10),
		},
		"reason": {
			Type:        "STRING",
			Description: "Required when relevance is 3 or higher, omit otherwise",
		},
	},
	Required: []string{"department", "relevance"},
}

// OtherDepartmentsSchema is the scorer's full output: one entry per
// department, all 13, every invocation.
var OtherDepartmentsSchema = &genai.Schema{
	Type: "OBJECT",
	Properties: map[string]*genai.Schema{
		"scores": {
			Type:        "ARRAY",
			Description: "One score per department, covering every listed department",
			Items:       OtherDepartmentScoreSchema,
		},
	},
	Required: []string{"scores"},
}
