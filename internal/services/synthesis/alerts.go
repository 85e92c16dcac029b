package synthesis

import (
	"asclepius/internal/domain/opinion"
	"asclepius/internal/domain/verdict"
)

// warningRelevanceThreshold gates YELLOW_FLAG promotion to WARNING alerts.
// The RED_FLAG rule has no threshold: every red flag surfaces, always.
const warningRelevanceThreshold = 4

const criticalActionRequired = "Immediate physician review required"

type alertKey struct {
	specialty opinion.Specialty
	label     string
}

// extractAlerts turns council flags into verdict-level safety alerts.
// Alerts are never merged across specialists; dedup only guards against the
// same flag surfacing twice, keyed by (specialty, label).
func extractAlerts(opinions []opinion.Opinion) []verdict.SafetyAlert {
	seen := make(map[alertKey]bool)
	alerts := make([]verdict.SafetyAlert, 0)

	for _, op := range opinions {
		for _, f := range op.Flags {
			key := alertKey{specialty: op.Specialty, label: f.Label}
			if seen[key] {
				continue
			}

			switch f.Severity {
			case opinion.RedFlag:
				seen[key] = true
				alerts = append(alerts, verdict.SafetyAlert{
					Severity:        verdict.AlertCritical,
					SourceSpecialty: op.Specialty,
					Label:           f.Label,
					ActionRequired:  criticalActionRequired,
					Pattern:         f.Pattern,
				})
			case opinion.YellowFlag:
				if op.RelevanceScore > warningRelevanceThreshold {
					seen[key] = true
					alerts = append(alerts, verdict.SafetyAlert{
						Severity:        verdict.AlertWarning,
						SourceSpecialty: op.Specialty,
						Label:           f.Label,
						Pattern:         f.Pattern,
					})
				}
			}
		}
	}

	return alerts
}
