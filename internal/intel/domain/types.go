package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Channel is one communication surface a lead can use.
type Channel string

const (
	ChannelWeb      Channel = "web"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelVoice    Channel = "voice"
	ChannelSocial   Channel = "social"
)

// ChannelOrder is the precedence used whenever per-channel facts compete.
var ChannelOrder = []Channel{ChannelWeb, ChannelWhatsApp, ChannelVoice, ChannelSocial}

// ParseChannel maps free-form channel labels onto a known Channel.
func ParseChannel(raw string) (Channel, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "web", "website", "chat":
		return ChannelWeb, true
	case "whatsapp", "wa":
		return ChannelWhatsApp, true
	case "voice", "call", "phone":
		return ChannelVoice, true
	case "social", "instagram", "facebook", "messenger":
		return ChannelSocial, true
	default:
		return "", false
	}
}

// Sender identifies who wrote a message.
type Sender string

const (
	SenderCustomer Sender = "customer"
	SenderAgent    Sender = "agent"
	SenderSystem   Sender = "system"
)

// Lead is a prospect tracked across channels. UnifiedContext is the raw,
// schemaless per-channel document; only the facts package reads it.
type Lead struct {
	ID                uuid.UUID
	Name              string
	Email             string
	Phone             string
	FirstTouchpoint   string
	LastTouchpoint    string
	UnifiedContext    map[string]any
	LeadScore         *int
	LeadStage         string
	SubStage          string
	LastInteractionAt *time.Time
	CreatedAt         time.Time
}

// LastActivityAt is the last interaction time, falling back to creation.
func (l Lead) LastActivityAt() time.Time {
	if l.LastInteractionAt != nil && !l.LastInteractionAt.IsZero() {
		return *l.LastInteractionAt
	}
	return l.CreatedAt
}

// Score returns the stored lead score, zero when never computed.
func (l Lead) Score() int {
	if l.LeadScore == nil {
		return 0
	}
	return *l.LeadScore
}

// ChannelSession is one engagement session on one channel.
type ChannelSession struct {
	ID           uuid.UUID
	LeadID       *uuid.UUID
	Channel      Channel
	MessageCount int
	BookingDate  *string
	BookingTime  *string
	CreatedAt    time.Time
}

// IsConversation reports whether the session counts as a unique conversation.
func (s ChannelSession) IsConversation() bool {
	return s.MessageCount >= 1
}

// Message is one turn in a conversation.
type Message struct {
	ID        uuid.UUID
	LeadID    *uuid.UUID
	Channel   Channel
	Sender    Sender
	Content   string
	CreatedAt time.Time
	Metadata  map[string]any
}

// ResponseTimeMs reads metadata.responseTimeMs when it carries a number.
func (m Message) ResponseTimeMs() (float64, bool) {
	if m.Metadata == nil {
		return 0, false
	}
	switch v := m.Metadata["responseTimeMs"].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// StageChangeEvent is an entry of the pipeline stage audit log.
type StageChangeEvent struct {
	ID            uuid.UUID
	LeadID        uuid.UUID
	OldStage      *string
	NewStage      string
	ScoreAtChange *int
	ChangedAt     time.Time
	ChangedBy     string
}

// Activity is a team activity logged against a lead.
type Activity struct {
	ID           uuid.UUID
	LeadID       uuid.UUID
	ActivityType string
	Note         string
	CreatedAt    time.Time
	CreatedBy    string
}

// User is a dashboard team member referenced by audit rows.
type User struct {
	ID    string
	Name  string
	Email string
}

// DisplayName prefers the user's name, then email.
func (u User) DisplayName() string {
	if name := strings.TrimSpace(u.Name); name != "" {
		return name
	}
	return strings.TrimSpace(u.Email)
}
