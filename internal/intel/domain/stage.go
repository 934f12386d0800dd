package domain

const (
	StageNew         = "New"
	StageEngaged     = "Engaged"
	StageQualified   = "Qualified"
	StageHighIntent  = "High Intent"
	StageBookingMade = "Booking Made"
	StageConverted   = "Converted"
	StageClosedLost  = "Closed Lost"
	StageInSequence  = "In Sequence"
	StageCold        = "Cold"
)

// AIActor is the display name used for automated changes.
const AIActor = "PROXe AI"

// IsAutomatedActor reports whether changedBy refers to the system rather
// than a team member.
func IsAutomatedActor(changedBy string) bool {
	return changedBy == "system" || changedBy == AIActor
}
