package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"lead_intel_backend/internal/intel/facts"
	"lead_intel_backend/internal/intel/summary"
	"lead_intel_backend/platform/metrics"
)

const summaryCacheName = "summary"

// cachedSummary is the cached form of a generated summary. Attribution is
// time relative, so it is recomputed on every request.
type cachedSummary struct {
	Summary string `json:"summary"`
}

func (s *Service) resolveSummary(ctx context.Context, b *leadBundle, canonical facts.CanonicalContext) summary.Result {
	in := summary.Input{
		Lead:         b.lead,
		Facts:        canonical,
		Messages:     b.messages,
		Activities:   b.activities,
		StageChanges: b.stageChanges,
		Users:        b.users,
	}

	key, ok := summaryCacheKey(in)
	if ok {
		var hit cachedSummary
		found, err := s.cache.Get(ctx, key, &hit)
		switch {
		case err != nil:
			metrics.CacheLookupsTotal.WithLabelValues(summaryCacheName, "error").Inc()
			s.log.WithContext(ctx).Warn("summary cache lookup failed", "error", err)
		case found && hit.Summary != "":
			metrics.CacheLookupsTotal.WithLabelValues(summaryCacheName, "hit").Inc()
			metrics.SummaryResolutionsTotal.WithLabelValues(string(summary.SourceGenerated)).Inc()
			return summary.Result{
				Summary:     hit.Summary,
				Attribution: summary.Attribution(in, s.now()),
				Source:      summary.SourceGenerated,
			}
		default:
			metrics.CacheLookupsTotal.WithLabelValues(summaryCacheName, "miss").Inc()
		}
	}

	res := s.summaries.Resolve(ctx, in)

	// Only generated text is worth caching; the other branches are local.
	if ok && res.Source == summary.SourceGenerated {
		if err := s.cache.Set(ctx, key, cachedSummary{Summary: res.Summary}, s.summaryTTL); err != nil {
			s.log.WithContext(ctx).Warn("summary cache store failed", "error", err)
		}
	}
	return res
}

// summaryCacheKey fingerprints every input the generation prompt reads, so a
// new message, activity or context change produces a new key.
func summaryCacheKey(in summary.Input) (string, bool) {
	payload, err := json.Marshal(struct {
		Context    map[string]any `json:"c"`
		Name       string         `json:"n"`
		Stage      string         `json:"s"`
		Messages   any            `json:"m"`
		Activities any            `json:"a"`
	}{
		Context:    in.Lead.UnifiedContext,
		Name:       in.Lead.Name,
		Stage:      in.Lead.LeadStage,
		Messages:   in.Messages,
		Activities: in.Activities,
	})
	if err != nil {
		return "", false
	}
	sum := sha256.Sum256(payload)
	return "summary:" + in.Lead.ID.String() + ":" + hex.EncodeToString(sum[:16]), true
}
