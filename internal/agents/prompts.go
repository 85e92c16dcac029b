package agents

import (
	"encoding/json"
	"fmt"
	"strings"

	"asclepius/internal/domain/opinion"
	"asclepius/internal/domain/triage"
)

// specialtyFocus is the clinical lens each council member applies
var specialtyFocus = map[opinion.Specialty]string{
	opinion.Cardiology: "cardiac and vascular causes: chest pain character, palpitations, " +
		"blood pressure extremes, heart rate abnormalities, cardiac history",
	opinion.Neurology: "neurological causes: headache red flags, focal deficits, numbness, " +
		"confusion, seizures, visual disturbance, stroke risk",
	opinion.Pulmonology: "respiratory causes: breathlessness, cough, wheezing, hypoxia, " +
		"SpO2 trends, asthma/COPD history, infection patterns",
	opinion.EmergencyMedicine: "immediate life threats and instability: shock physiology, " +
		"airway compromise, sepsis patterns, time-critical presentations across systems",
	opinion.GeneralMedicine: "the whole-patient view: common conditions, comorbidity interplay, " +
		"presentations not clearly owned by another specialty",
}

func specialistSystemPrompt(specialty opinion.Specialty) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are the %s specialist on a hospital triage council.\n", specialty)
	fmt.Fprintf(&b, "Assess the classified patient strictly through your specialty's lens, focusing on %s.\n", specialtyFocus[specialty])
	b.WriteString(`
Rules:
- Base your assessment ONLY on the provided patient data. Never invent symptoms, vitals or history.
- Set specialty to your own name exactly as given above.
- Set claims_primary=true only if the patient predominantly belongs to your department; then set recommended_department. Otherwise omit recommended_department entirely.
- Use RED_FLAG only for findings requiring immediate physician attention.
- Keep one_liner under 120 characters.
- Respond with the structured output only.`)
	return b.String()
}

func scorerSystemPrompt() string {
	var b strings.Builder
	b.WriteString("You rate how relevant each NON-council hospital department is to a triaged patient.\n")
	b.WriteString("Departments to score (score every one, exactly once):\n")
	for _, d := range opinion.OtherDepartments {
		fmt.Fprintf(&b, "- %s\n", d)
	}
	b.WriteString(`
Rules:
- relevance is 0-10 per department.
- Provide a reason when relevance is 3 or higher; omit the reason below that.
- Base ratings ONLY on the provided patient data.
- Respond with the structured output only.`)
	return b.String()
}

// patientPrompt serializes the classification for the model. The full
// ClassifierOutput is the single shared input every producer reads.
func patientPrompt(co *triage.ClassifierOutput) string {
	data, _ := json.MarshalIndent(co, "", "  ")
	return fmt.Sprintf("Classified patient:\n%s", data)
}
