package telegram

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"asclepius/internal/domain/triage"
	"asclepius/internal/domain/verdict"
	"asclepius/pkg/logger"
)

const deliveryRetries = 3

// Notifier pushes verdict and safety alert summaries to the configured
// on-call chats.
type Notifier struct {
	bot     *Bot
	chatIDs []int64
	log     *logger.Logger
}

// NewNotifier creates the notifier
func NewNotifier(bot *Bot, chatIDs []int64) *Notifier {
	return &Notifier{
		bot:     bot,
		chatIDs: chatIDs,
		log:     logger.Get().With("component", "telegram_notifier"),
	}
}

// NotifyVerdict delivers a verdict summary to every configured chat.
// Delivery failures are logged per chat; the last error is returned.
func (n *Notifier) NotifyVerdict(ctx context.Context, v *verdict.Verdict) error {
	text := FormatVerdict(v)

	var lastErr error
	for _, chatID := range n.chatIDs {
		if err := n.bot.SendMessageWithRetry(ctx, chatID, text, deliveryRetries); err != nil {
			n.log.Errorw("Failed to deliver verdict", "chat_id", chatID, "patient_id", v.PatientID, "error", err)
			lastErr = err
		}
	}
	return lastErr
}

// NotifyCriticalAlerts delivers each CRITICAL alert as its own message so
// on-call staff see them even when the verdict summary is skimmed
func (n *Notifier) NotifyCriticalAlerts(ctx context.Context, v *verdict.Verdict) error {
	var lastErr error
	for _, alert := range v.SafetyAlerts {
		if alert.Severity != verdict.AlertCritical {
			continue
		}
		text := FormatCriticalAlert(v, alert)
		for _, chatID := range n.chatIDs {
			if err := n.bot.SendMessageWithRetry(ctx, chatID, text, deliveryRetries); err != nil {
				n.log.Errorw("Failed to deliver alert", "chat_id", chatID, "patient_id", v.PatientID, "error", err)
				lastErr = err
			}
		}
	}
	return lastErr
}

// FormatVerdict renders the verdict summary as Telegram Markdown
func FormatVerdict(v *verdict.Verdict) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s *Triage Verdict* — %s\n\n", riskEmoji(v.FinalRiskLevel), v.PatientName)
	fmt.Fprintf(&b, "Risk: *%s*", v.FinalRiskLevel)
	if v.RiskAdjusted {
		fmt.Fprintf(&b, " (model said %s)", v.MLRiskLevel)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Department: *%s*\n", v.PrimaryDepartment)
	if v.SecondaryDepartment != "" {
		fmt.Fprintf(&b, "Secondary: %s\n", v.SecondaryDepartment)
	}
	fmt.Fprintf(&b, "Priority: *%d/100* — %s\n", v.PriorityScore, v.RecommendedAction)
	fmt.Fprintf(&b, "Consensus: %s\n", v.CouncilConsensus)

	if v.ReferralNeeded {
		fmt.Fprintf(&b, "⚠️ Referral needed: %s\n", v.ReferralDetails)
	}
	if n := v.CriticalAlertCount(); n > 0 {
		fmt.Fprintf(&b, "🚨 %d critical safety %s\n", n, plural(n, "alert", "alerts"))
	}

	fmt.Fprintf(&b, "\n_%s_\n", v.Explanation)
	fmt.Fprintf(&b, "\nCompleted %s", humanize.Time(v.CreatedAt))

	return b.String()
}

// FormatCriticalAlert renders one CRITICAL alert as Telegram Markdown
func FormatCriticalAlert(v *verdict.Verdict, alert verdict.SafetyAlert) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🚨 *CRITICAL ALERT* — %s\n\n", v.PatientName)
	fmt.Fprintf(&b, "%s flagged: *%s*\n", alert.SourceSpecialty, alert.Label)
	if alert.ActionRequired != "" {
		fmt.Fprintf(&b, "Action: %s\n", alert.ActionRequired)
	}
	fmt.Fprintf(&b, "\nPatient ID: `%s`", v.PatientID)

	return b.String()
}

func riskEmoji(level triage.RiskLevel) string {
	switch level {
	case triage.RiskCritical:
		return "🔴"
	case triage.RiskHigh:
		return "🟠"
	case triage.RiskMedium:
		return "🟡"
	default:
		return "🟢"
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
