package summary

import (
	"fmt"
	"strings"
	"time"

	"lead_intel_backend/internal/intel/domain"
)

const (
	excerptRunes     = 100
	inactiveAfterDay = 7
)

// Fallback builds the local summary from already loaded data. It never
// returns an empty string.
func Fallback(in Input, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s is currently in the %s stage.", displayName(in), displayStage(in.Lead))

	if n := len(in.Messages); n > 0 {
		last := in.Messages[n-1]
		fmt.Fprintf(&b, " Last message from %s %s: \"%s\".",
			senderLabel(last.Sender), domain.ShortAgo(last.CreatedAt, now), excerpt(last.Content))
	}

	fmt.Fprintf(&b, " Conversation status: %s.", conversationStatus(in.Messages, now))
	fmt.Fprintf(&b, " Response rate: %d%%.", responseRate(in.Messages))

	keyInfo := "none"
	if keyFacts := in.Facts.KeyFacts(); len(keyFacts) > 0 {
		keyInfo = strings.Join(keyFacts, "; ")
	}
	fmt.Fprintf(&b, " Key info: %s.", keyInfo)

	return b.String()
}

func senderLabel(s domain.Sender) string {
	switch s {
	case domain.SenderCustomer:
		return "customer"
	case domain.SenderAgent, domain.SenderSystem:
		return domain.AIActor
	default:
		return "unknown sender"
	}
}

// excerpt keeps the first 100 runes followed by "...".
func excerpt(content string) string {
	runes := []rune(strings.Join(strings.Fields(content), " "))
	if len(runes) > excerptRunes {
		runes = runes[:excerptRunes]
	}
	return string(runes) + "..."
}

func conversationStatus(messages []domain.Message, now time.Time) string {
	if len(messages) == 0 {
		return "no conversation yet"
	}
	last := messages[len(messages)-1]
	if days := int(domain.DaysBetween(last.CreatedAt, now)); days >= inactiveAfterDay {
		return fmt.Sprintf("inactive for %d days", days)
	}
	if last.Sender == domain.SenderCustomer {
		return "awaiting team response"
	}
	return "awaiting customer reply"
}
