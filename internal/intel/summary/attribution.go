package summary

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"lead_intel_backend/internal/intel/domain"
)

const unknownTeamMember = "Team member"

// Attribution describes the most recent change to the lead: the latest stage
// change, else the latest team activity, else the latest message. It is
// empty when the lead has no history.
func Attribution(in Input, now time.Time) string {
	if ev, ok := latestStageChange(in.StageChanges); ok {
		return fmt.Sprintf("Last updated by %s %s - changed stage to %s",
			resolveActor(ev.ChangedBy, in.Users), domain.TimeAgo(ev.ChangedAt, now), ev.NewStage)
	}

	if activities := latestActivities(in.Activities, 1); len(activities) == 1 {
		a := activities[0]
		return fmt.Sprintf("Last updated by %s %s - %s",
			resolveActor(a.CreatedBy, in.Users), domain.TimeAgo(a.CreatedAt, now), activityLabel(a.ActivityType))
	}

	if m, ok := latestMessage(in.Messages); ok {
		actor := domain.AIActor
		if m.Sender == domain.SenderCustomer {
			actor = displayName(in)
		}
		return fmt.Sprintf("Last updated by %s %s - sent a message", actor, domain.TimeAgo(m.CreatedAt, now))
	}

	return ""
}

// resolveActor maps automated actors to the AI name and others to the
// looked-up user's name, then email.
func resolveActor(changedBy string, users map[string]domain.User) string {
	changedBy = strings.TrimSpace(changedBy)
	if domain.IsAutomatedActor(changedBy) {
		return domain.AIActor
	}
	if u, ok := users[changedBy]; ok {
		if name := u.DisplayName(); name != "" {
			return name
		}
	}
	return unknownTeamMember
}

func activityLabel(activityType string) string {
	label := strings.ReplaceAll(strings.TrimSpace(activityType), "_", " ")
	if label == "" {
		return "logged an activity"
	}
	return "logged " + strings.ToLower(label)
}

func latestStageChange(events []domain.StageChangeEvent) (domain.StageChangeEvent, bool) {
	var (
		best  domain.StageChangeEvent
		found bool
	)
	for _, ev := range events {
		if !found || ev.ChangedAt.After(best.ChangedAt) {
			best, found = ev, true
		}
	}
	return best, found
}

func latestMessage(messages []domain.Message) (domain.Message, bool) {
	var (
		best  domain.Message
		found bool
	)
	for _, m := range messages {
		if !found || m.CreatedAt.After(best.CreatedAt) {
			best, found = m, true
		}
	}
	return best, found
}

func sortActivitiesDesc(activities []domain.Activity) {
	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].CreatedAt.After(activities[j].CreatedAt)
	})
}
