package dashboard

import (
	"math"
	"sort"

	"lead_intel_backend/internal/intel/domain"

	"github.com/google/uuid"
)

// AvgResponseSeconds is the mean response latency over messages. Recorded
// responseTimeMs metadata wins; when no message carries it, the mean of the
// positive customer-to-agent gaps between consecutive messages of each lead
// is used instead.
func AvgResponseSeconds(messages []domain.Message) float64 {
	var (
		sum float64
		n   int
	)
	for _, m := range messages {
		if ms, ok := m.ResponseTimeMs(); ok && ms >= 0 {
			sum += ms / 1000
			n++
		}
	}
	if n > 0 {
		return round1(sum / float64(n))
	}
	return pairedResponseSeconds(messages)
}

func pairedResponseSeconds(messages []domain.Message) float64 {
	byLead := make(map[uuid.UUID][]domain.Message)
	var order []uuid.UUID
	for _, m := range messages {
		key := uuid.Nil
		if m.LeadID != nil {
			key = *m.LeadID
		}
		if _, ok := byLead[key]; !ok {
			order = append(order, key)
		}
		byLead[key] = append(byLead[key], m)
	}

	var (
		sum float64
		n   int
	)
	for _, key := range order {
		thread := byLead[key]
		sort.SliceStable(thread, func(i, j int) bool {
			return thread[i].CreatedAt.Before(thread[j].CreatedAt)
		})
		for i := 1; i < len(thread); i++ {
			prev, cur := thread[i-1], thread[i]
			if prev.Sender != domain.SenderCustomer || cur.Sender != domain.SenderAgent {
				continue
			}
			if delta := cur.CreatedAt.Sub(prev.CreatedAt).Seconds(); delta > 0 {
				sum += delta
				n++
			}
		}
	}
	if n == 0 {
		return 0
	}
	return round1(sum / float64(n))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
