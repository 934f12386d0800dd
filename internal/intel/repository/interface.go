package repository

import (
	"context"
	"time"

	"lead_intel_backend/internal/intel/domain"

	"github.com/google/uuid"
)

// LeadReader provides read-only access to lead records.
type LeadReader interface {
	GetLead(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	ListLeads(ctx context.Context) ([]domain.Lead, error)
}

// SessionReader reads the per-channel session tables. Each channel lives in
// its own table, so callers fetch channels independently.
type SessionReader interface {
	ListSessionsByLead(ctx context.Context, channel domain.Channel, leadID uuid.UUID) ([]domain.ChannelSession, error)
	ListSessions(ctx context.Context, channel domain.Channel) ([]domain.ChannelSession, error)
}

// MessageReader reads conversation turns in ascending createdAt order.
type MessageReader interface {
	ListMessagesByLead(ctx context.Context, leadID uuid.UUID) ([]domain.Message, error)
	ListMessages(ctx context.Context) ([]domain.Message, error)
}

// HistoryReader reads the stage audit log and the team activity log.
type HistoryReader interface {
	ListStageChangesByLead(ctx context.Context, leadID uuid.UUID) ([]domain.StageChangeEvent, error)
	ListStageChangesSince(ctx context.Context, since time.Time) ([]domain.StageChangeEvent, error)
	ListActivitiesByLead(ctx context.Context, leadID uuid.UUID) ([]domain.Activity, error)
}

// UserReader resolves team members referenced by audit rows.
type UserReader interface {
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]domain.User, error)
}

// Reader is the full read model consumed by the intel service.
type Reader interface {
	LeadReader
	SessionReader
	MessageReader
	HistoryReader
	UserReader
}

// Compile-time check.
var _ Reader = (*Repository)(nil)
