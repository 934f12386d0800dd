// Package summary resolves the narrative summary and attribution line shown
// for a lead. External generation is only attempted when no stored summary
// exists, and every failure degrades to a deterministic local summary.
package summary

import (
	"context"
	"errors"
	"strings"
	"time"

	"lead_intel_backend/internal/intel/domain"
	"lead_intel_backend/internal/intel/facts"
	"lead_intel_backend/platform/logger"
	"lead_intel_backend/platform/metrics"
	"lead_intel_backend/platform/sanitize"
)

const (
	defaultTimeout = 8 * time.Second

	// UnavailableText is returned when the lead itself could not be loaded.
	UnavailableText = "Unable to load summary"
)

// Source names the branch that produced a summary.
type Source string

const (
	SourceUnified     Source = "unified_summary"
	SourceChannels    Source = "channel_summaries"
	SourceGenerated   Source = "generated"
	SourceFallback    Source = "fallback"
	SourceUnavailable Source = "unavailable"
)

// Generator produces text for a prompt. Implementations must honour ctx.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Result is the resolved summary.
type Result struct {
	Summary     string `json:"summary"`
	Attribution string `json:"attribution"`
	Source      Source `json:"source"`
}

// Unavailable is the worst-case result for a lead that failed to load.
func Unavailable() Result {
	return Result{Summary: UnavailableText, Source: SourceUnavailable}
}

// Input is the materialized history for one lead. Messages are expected in
// ascending createdAt order. Users is keyed by user ID.
type Input struct {
	Lead         domain.Lead
	Facts        facts.CanonicalContext
	Messages     []domain.Message
	Activities   []domain.Activity
	StageChanges []domain.StageChangeEvent
	Users        map[string]domain.User
}

// Resolver applies the summary priority chain. Generator may be nil, in
// which case the chain goes straight from stored summaries to the fallback.
type Resolver struct {
	generator Generator
	timeout   time.Duration
	now       func() time.Time
	log       *logger.Logger
}

// NewResolver creates a Resolver. A zero timeout uses 8s, a nil clock uses
// time.Now and a nil logger discards output.
func NewResolver(generator Generator, timeout time.Duration, now func() time.Time, log *logger.Logger) *Resolver {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Resolver{generator: generator, timeout: timeout, now: now, log: log}
}

// Resolve never fails: the deterministic fallback always produces text.
func (r *Resolver) Resolve(ctx context.Context, in Input) Result {
	now := r.now()
	res := Result{Attribution: Attribution(in, now)}

	switch {
	case in.Facts.UnifiedSummary != "":
		res.Summary, res.Source = in.Facts.UnifiedSummary, SourceUnified
	case channelSummaries(in.Facts) != "":
		res.Summary, res.Source = channelSummaries(in.Facts), SourceChannels
	default:
		if text, ok := r.generate(ctx, in, now); ok {
			res.Summary, res.Source = text, SourceGenerated
		} else {
			res.Summary, res.Source = Fallback(in, now), SourceFallback
		}
	}

	metrics.SummaryResolutionsTotal.WithLabelValues(string(res.Source)).Inc()
	return res
}

func channelSummaries(ctx facts.CanonicalContext) string {
	var parts []string
	if s := ctx.ChannelSummaries[domain.ChannelWeb]; s != "" {
		parts = append(parts, "Web: "+s)
	}
	if s := ctx.ChannelSummaries[domain.ChannelWhatsApp]; s != "" {
		parts = append(parts, "WhatsApp: "+s)
	}
	return strings.Join(parts, "\n\n")
}

// generate calls the generator under its own timeout. Any error, including
// cancellation, reports ok=false.
func (r *Resolver) generate(ctx context.Context, in Input, now time.Time) (string, bool) {
	if r.generator == nil {
		return "", false
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	text, err := r.generator.Generate(callCtx, BuildPrompt(in, now))
	elapsed := time.Since(start)

	if err == nil {
		text = cleanGenerated(text)
		if text == "" {
			err = errEmptyGeneration
		}
	}
	if err != nil {
		metrics.TextGenerationDuration.WithLabelValues(outcome(err)).Observe(elapsed.Seconds())
		r.log.WithContext(ctx).ExternalCallFailed("textgen", float64(elapsed.Milliseconds()), err)
		return "", false
	}

	metrics.TextGenerationDuration.WithLabelValues("success").Observe(elapsed.Seconds())
	return text, true
}

var errEmptyGeneration = errors.New("generator returned empty text")

func outcome(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}

// cleanGenerated trims whitespace and one pair of surrounding quotes.
func cleanGenerated(text string) string {
	text = sanitize.PlainText(text)
	for _, q := range []string{`"`, "'", "`"} {
		if len(text) >= 2 && strings.HasPrefix(text, q) && strings.HasSuffix(text, q) {
			text = strings.TrimSpace(text[1 : len(text)-1])
			break
		}
	}
	return text
}
