// Package repository reads the lead read model from PostgreSQL. It never
// writes; persistence belongs to the surrounding application.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lead_intel_backend/internal/intel/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("lead not found")

// sessionTables maps each channel to its session table.
var sessionTables = map[domain.Channel]string{
	domain.ChannelWeb:      "web_sessions",
	domain.ChannelWhatsApp: "whatsapp_sessions",
	domain.ChannelVoice:    "voice_sessions",
	domain.ChannelSocial:   "social_sessions",
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const leadColumns = `
	id, COALESCE(customer_name, ''), COALESCE(email, ''), COALESCE(phone, ''),
	COALESCE(first_touchpoint, ''), COALESCE(last_touchpoint, ''), unified_context,
	lead_score, COALESCE(lead_stage, ''), COALESCE(sub_stage, ''), last_interaction_at, created_at`

func scanLead(row pgx.Row) (domain.Lead, error) {
	var (
		lead       domain.Lead
		rawContext []byte
	)
	err := row.Scan(
		&lead.ID, &lead.Name, &lead.Email, &lead.Phone,
		&lead.FirstTouchpoint, &lead.LastTouchpoint, &rawContext,
		&lead.LeadScore, &lead.LeadStage, &lead.SubStage, &lead.LastInteractionAt, &lead.CreatedAt,
	)
	if err != nil {
		return domain.Lead{}, err
	}
	lead.UnifiedContext = domain.DecodeUnifiedContext(rawContext)
	return lead, nil
}

func (r *Repository) GetLead(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM all_leads WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	if err != nil {
		return domain.Lead{}, fmt.Errorf("get lead: %w", err)
	}
	return lead, nil
}

func (r *Repository) ListLeads(ctx context.Context) ([]domain.Lead, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+leadColumns+` FROM all_leads ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	leads := make([]domain.Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, lead)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return leads, nil
}

func sessionTable(channel domain.Channel) (string, error) {
	table, ok := sessionTables[channel]
	if !ok {
		return "", fmt.Errorf("unknown channel %q", channel)
	}
	return table, nil
}

func (r *Repository) ListSessionsByLead(ctx context.Context, channel domain.Channel, leadID uuid.UUID) ([]domain.ChannelSession, error) {
	table, err := sessionTable(channel)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
		SELECT id, lead_id, message_count, booking_date, booking_time, created_at
		FROM %s
		WHERE lead_id = $1
		ORDER BY created_at ASC
	`, table)
	return r.querySessions(ctx, channel, query, leadID)
}

func (r *Repository) ListSessions(ctx context.Context, channel domain.Channel) ([]domain.ChannelSession, error) {
	table, err := sessionTable(channel)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
		SELECT id, lead_id, message_count, booking_date, booking_time, created_at
		FROM %s
		ORDER BY created_at ASC
	`, table)
	return r.querySessions(ctx, channel, query)
}

func (r *Repository) querySessions(ctx context.Context, channel domain.Channel, query string, args ...any) ([]domain.ChannelSession, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s sessions: %w", channel, err)
	}
	defer rows.Close()

	sessions := make([]domain.ChannelSession, 0)
	for rows.Next() {
		s := domain.ChannelSession{Channel: channel}
		if err := rows.Scan(&s.ID, &s.LeadID, &s.MessageCount, &s.BookingDate, &s.BookingTime, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan %s session: %w", channel, err)
		}
		sessions = append(sessions, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return sessions, nil
}

func (r *Repository) ListMessagesByLead(ctx context.Context, leadID uuid.UUID) ([]domain.Message, error) {
	return r.queryMessages(ctx, `
		SELECT id, lead_id, channel, sender, content, metadata, created_at
		FROM conversations
		WHERE lead_id = $1
		ORDER BY created_at ASC
	`, leadID)
}

func (r *Repository) ListMessages(ctx context.Context) ([]domain.Message, error) {
	return r.queryMessages(ctx, `
		SELECT id, lead_id, channel, sender, content, metadata, created_at
		FROM conversations
		ORDER BY created_at ASC
	`)
}

func (r *Repository) queryMessages(ctx context.Context, query string, args ...any) ([]domain.Message, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := make([]domain.Message, 0)
	for rows.Next() {
		var (
			m           domain.Message
			channel     string
			sender      string
			rawMetadata []byte
		)
		if err := rows.Scan(&m.ID, &m.LeadID, &channel, &sender, &m.Content, &rawMetadata, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if parsed, ok := domain.ParseChannel(channel); ok {
			m.Channel = parsed
		} else {
			m.Channel = domain.Channel(strings.ToLower(strings.TrimSpace(channel)))
		}
		m.Sender = domain.Sender(strings.ToLower(strings.TrimSpace(sender)))
		m.Metadata = domain.DecodeMetadata(rawMetadata)
		messages = append(messages, m)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return messages, nil
}

func (r *Repository) ListStageChangesByLead(ctx context.Context, leadID uuid.UUID) ([]domain.StageChangeEvent, error) {
	return r.queryStageChanges(ctx, `
		SELECT id, lead_id, old_stage, new_stage, score_at_change, changed_by, changed_at
		FROM lead_stage_changes
		WHERE lead_id = $1
		ORDER BY changed_at DESC
	`, leadID)
}

func (r *Repository) ListStageChangesSince(ctx context.Context, since time.Time) ([]domain.StageChangeEvent, error) {
	return r.queryStageChanges(ctx, `
		SELECT id, lead_id, old_stage, new_stage, score_at_change, changed_by, changed_at
		FROM lead_stage_changes
		WHERE changed_at >= $1
		ORDER BY changed_at DESC
	`, since)
}

func (r *Repository) queryStageChanges(ctx context.Context, query string, args ...any) ([]domain.StageChangeEvent, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stage changes: %w", err)
	}
	defer rows.Close()

	events := make([]domain.StageChangeEvent, 0)
	for rows.Next() {
		var ev domain.StageChangeEvent
		if err := rows.Scan(&ev.ID, &ev.LeadID, &ev.OldStage, &ev.NewStage, &ev.ScoreAtChange, &ev.ChangedBy, &ev.ChangedAt); err != nil {
			return nil, fmt.Errorf("scan stage change: %w", err)
		}
		events = append(events, ev)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return events, nil
}

func (r *Repository) ListActivitiesByLead(ctx context.Context, leadID uuid.UUID) ([]domain.Activity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, activity_type, COALESCE(note, ''), COALESCE(created_by, ''), created_at
		FROM activities
		WHERE lead_id = $1
		ORDER BY created_at DESC
	`, leadID)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	activities := make([]domain.Activity, 0)
	for rows.Next() {
		var a domain.Activity
		if err := rows.Scan(&a.ID, &a.LeadID, &a.ActivityType, &a.Note, &a.CreatedBy, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		activities = append(activities, a)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return activities, nil
}

func (r *Repository) GetUsersByIDs(ctx context.Context, ids []string) (map[string]domain.User, error) {
	users := make(map[string]domain.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, COALESCE(full_name, ''), COALESCE(email, '')
		FROM dashboard_users
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users[u.ID] = u
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return users, nil
}
