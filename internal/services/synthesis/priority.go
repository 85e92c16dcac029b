package synthesis

import (
	"asclepius/internal/domain/triage"
	"asclepius/internal/domain/verdict"
)

const (
	urgencyContributionCap = 20
	alertContributionCap   = 15
	alertContribution      = 5
	referralContribution   = 5
)

var riskBase = map[triage.RiskLevel]int{
	triage.RiskCritical: 80,
	triage.RiskHigh:     60,
	triage.RiskMedium:   35,
	triage.RiskLow:      10,
}

// computePriority folds risk, urgency, alert load and referral into one
// score in [1,100] plus its matching action bracket.
func computePriority(final triage.RiskLevel, maxUrgency, criticalAlerts int, referral bool) (int, verdict.Action) {
	score := riskBase[final]

	score += min(urgencyContributionCap, maxUrgency*2)
	score += min(alertContributionCap, criticalAlerts*alertContribution)
	if referral {
		score += referralContribution
	}

	if score > 100 {
		score = 100
	}
	if score < 1 {
		score = 1
	}

	return score, verdict.ActionForScore(score)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
