package summary

import (
	"fmt"
	"math"
	"strings"
	"time"

	"lead_intel_backend/internal/intel/domain"
)

const (
	promptMessages   = 10
	promptActivities = 5
)

// BuildPrompt assembles the generation prompt from the latest messages, the
// latest team activities and the extracted key facts.
func BuildPrompt(in Input, now time.Time) string {
	var b strings.Builder

	b.WriteString("You are summarizing a sales lead for the team dashboard.\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- State only actions the customer explicitly confirmed in the conversation.\n")
	b.WriteString("- Do not infer a signup, booking or purchase from ambiguous acknowledgements such as \"ok\", \"sure\" or \"fine\".\n")
	b.WriteString("- Do not invent facts that are not present below.\n")
	b.WriteString("- Answer with exactly one paragraph and no headings or lists.\n\n")
	b.WriteString("Template:\n")
	b.WriteString("<Name> is a <stage> lead interested in <interest>. They have <confirmed actions>. ")
	b.WriteString("The conversation is <status>. Next step: <recommended action>.\n\n")

	fmt.Fprintf(&b, "Lead: %s\n", displayName(in))
	fmt.Fprintf(&b, "Stage: %s\n", displayStage(in.Lead))

	b.WriteString("\nKey facts:\n")
	fmt.Fprintf(&b, "- Budget: %s\n", orUnknown(in.Facts.Budget))
	fmt.Fprintf(&b, "- Service interest: %s\n", orUnknown(in.Facts.ServiceInterest))
	fmt.Fprintf(&b, "- Pain points: %s\n", orUnknown(strings.Join(in.Facts.PainPoints, ", ")))
	fmt.Fprintf(&b, "- Days inactive: %d\n", daysInactive(in, now))
	fmt.Fprintf(&b, "- Response rate: %d%%\n", responseRate(in.Messages))

	b.WriteString("\nRecent messages (oldest first):\n")
	recent := in.Messages
	if len(recent) > promptMessages {
		recent = recent[len(recent)-promptMessages:]
	}
	if len(recent) == 0 {
		b.WriteString("- none\n")
	}
	for _, m := range recent {
		fmt.Fprintf(&b, "- [%s] %s via %s: %s\n", m.CreatedAt.UTC().Format(time.RFC3339), m.Sender, m.Channel, strings.TrimSpace(m.Content))
	}

	b.WriteString("\nRecent team activity (newest first):\n")
	activities := latestActivities(in.Activities, promptActivities)
	if len(activities) == 0 {
		b.WriteString("- none\n")
	}
	for _, a := range activities {
		line := fmt.Sprintf("- [%s] %s", a.CreatedAt.UTC().Format(time.RFC3339), a.ActivityType)
		if note := strings.TrimSpace(a.Note); note != "" {
			line += ": " + note
		}
		b.WriteString(line + "\n")
	}

	return b.String()
}

func latestActivities(activities []domain.Activity, n int) []domain.Activity {
	sorted := make([]domain.Activity, len(activities))
	copy(sorted, activities)
	sortActivitiesDesc(sorted)
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "unknown"
	}
	return s
}

func displayName(in Input) string {
	if in.Facts.Contact.Name != "" {
		return in.Facts.Contact.Name
	}
	if name := strings.TrimSpace(in.Lead.Name); name != "" {
		return name
	}
	return "This lead"
}

func displayStage(lead domain.Lead) string {
	if stage := strings.TrimSpace(lead.LeadStage); stage != "" {
		return stage
	}
	return domain.StageNew
}

// daysInactive floors the days since the last message, else since the last
// recorded activity of the lead.
func daysInactive(in Input, now time.Time) int {
	last := in.Lead.LastActivityAt()
	if n := len(in.Messages); n > 0 && in.Messages[n-1].CreatedAt.After(last) {
		last = in.Messages[n-1].CreatedAt
	}
	return int(domain.DaysBetween(last, now))
}

func responseRate(messages []domain.Message) int {
	var customer, agent int
	for _, m := range messages {
		switch m.Sender {
		case domain.SenderCustomer:
			customer++
		case domain.SenderAgent:
			agent++
		}
	}
	if customer == 0 {
		return 0
	}
	return int(math.Round(100 * float64(agent) / float64(customer)))
}
