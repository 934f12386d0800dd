// Package scoring computes the 0-100 lead health score from conversation
// text, engagement behaviour and reconciled business facts.
package scoring

import (
	"math"
	"time"

	"lead_intel_backend/internal/intel/domain"
	"lead_intel_backend/internal/intel/facts"
)

const (
	// scoreVersion tracks the scoring model for debugging and analysis.
	// Bump this when changing the weighting.
	scoreVersion = "60-30-10-v1"

	maxAIPoints       = 60
	maxActivityPoints = 30
	maxBusinessPoints = 10

	aiWeight       = 0.6
	activityWeight = 0.3

	// Intent, sentiment and buying signals share the AI sub-score.
	intentShare    = 0.4
	sentimentShare = 0.3
	buyingShare    = 0.3

	messageSaturation = 100.0
	recencyWindowDays = 30.0
	channelMixBonus   = 0.1

	bookingPoints      = 10
	reachabilityPoints = 5
	multichannelPoints = 5
)

// Health bands exposed alongside every score.
const (
	BandHot  = "Hot"
	BandWarm = "Warm"
	BandCold = "Cold"

	hotBandMin  = 90
	warmBandMin = 70
)

// HealthBand maps a total score onto its band.
func HealthBand(score int) string {
	switch {
	case score >= hotBandMin:
		return BandHot
	case score >= warmBandMin:
		return BandWarm
	default:
		return BandCold
	}
}

// Breakdown is the derived score with its weighted components.
type Breakdown struct {
	AI       int                `json:"ai"`
	Activity int                `json:"activity"`
	Business int                `json:"business"`
	Total    int                `json:"total"`
	Band     string             `json:"band"`
	Factors  map[string]float64 `json:"factors"`
	Version  string             `json:"version"`
}

// Input is everything needed to score one lead.
type Input struct {
	Lead     domain.Lead
	Facts    facts.CanonicalContext
	Messages []domain.Message
}

// Engine is a pure scorer. The clock is the only external input.
type Engine struct {
	lexicon *Lexicon
	now     func() time.Time
}

// New creates an Engine. A nil lexicon uses the embedded default and a nil
// clock uses time.Now.
func New(lexicon *Lexicon, now func() time.Time) *Engine {
	if lexicon == nil {
		lexicon = DefaultLexicon()
	}
	if now == nil {
		now = time.Now
	}
	return &Engine{lexicon: lexicon, now: now}
}

// Score computes the breakdown for one lead.
func (e *Engine) Score(in Input) Breakdown {
	now := e.now()
	factors := make(map[string]float64, 16)

	text := e.scoredText(in)
	ai := e.aiPoints(text, factors)
	activity := e.activityPoints(in, now, factors)
	business := businessPoints(in.Facts, factors)

	total := clampInt(ai+activity+business, 0, 100)

	return Breakdown{
		AI:       ai,
		Activity: activity,
		Business: business,
		Total:    total,
		Band:     HealthBand(total),
		Factors:  factors,
		Version:  scoreVersion + "/" + e.lexicon.Version,
	}
}

func (e *Engine) scoredText(in Input) corpus {
	parts := make([]string, 0, len(in.Messages)+len(in.Facts.ChannelSummaries)+1)
	parts = append(parts, in.Facts.UnifiedSummary)
	for _, ch := range domain.ChannelOrder {
		parts = append(parts, in.Facts.ChannelSummaries[ch])
	}
	for _, m := range in.Messages {
		parts = append(parts, m.Content)
	}
	return newCorpus(parts...)
}

func (e *Engine) aiPoints(text corpus, factors map[string]float64) int {
	matched := 0
	for _, category := range intentCategories {
		if text.matchesAny(e.lexicon.Intent[category]) {
			matched++
			factors["intent_"+category] = 1
		}
	}
	intentScore := 100 * float64(matched) / float64(len(intentCategories))

	positive := text.hits(e.lexicon.Positive)
	negative := text.hits(e.lexicon.Negative)
	var sentimentScore float64
	if positive > negative {
		sentimentScore = math.Min(100, 50+10*float64(positive))
	} else {
		sentimentScore = math.Max(0, 50-10*float64(negative))
	}

	buying := text.hits(e.lexicon.BuyingSignals)
	buyingScore := math.Min(100, 20*float64(buying))

	aiRaw := intentShare*intentScore + sentimentShare*sentimentScore + buyingShare*buyingScore

	factors["intent_score"] = round1(intentScore)
	factors["sentiment_score"] = round1(sentimentScore)
	factors["buying_signal_score"] = round1(buyingScore)
	factors["positive_hits"] = float64(positive)
	factors["negative_hits"] = float64(negative)
	factors["ai_raw"] = round1(aiRaw)

	return min(maxAIPoints, int(math.Round(aiRaw*aiWeight)))
}

func (e *Engine) activityPoints(in Input, now time.Time, factors map[string]float64) int {
	var customer, agent int
	for _, m := range in.Messages {
		switch m.Sender {
		case domain.SenderCustomer:
			customer++
		case domain.SenderAgent:
			agent++
		}
	}

	msgCountNorm := math.Min(1, float64(len(in.Messages))/messageSaturation)
	responseRate := float64(agent) / float64(max(1, customer))

	days := domain.DaysBetween(lastInteraction(in), now)
	recency := clampFloat(1-days/recencyWindowDays, 0, 1)

	bonus := 0.0
	if len(in.Facts.ChannelsUsed) >= 2 {
		bonus = channelMixBonus
	}

	activityRaw := (msgCountNorm+responseRate+recency)/3 + bonus

	factors["message_count_norm"] = round1(msgCountNorm)
	factors["response_rate"] = round1(responseRate)
	factors["recency"] = round1(recency)
	factors["days_since_interaction"] = round1(days)
	factors["channel_mix_bonus"] = bonus

	return min(maxActivityPoints, int(math.Round(math.Min(100, activityRaw*100)*activityWeight)))
}

func businessPoints(ctx facts.CanonicalContext, factors map[string]float64) int {
	raw := 0
	if ctx.HasBooking() {
		raw += bookingPoints
		factors["has_booking"] = 1
	}
	if ctx.Contact.HasReachability() {
		raw += reachabilityPoints
		factors["has_contact"] = 1
	}
	if len(ctx.ChannelsUsed) >= 2 {
		raw += multichannelPoints
		factors["multichannel"] = 1
	}
	factors["business_raw"] = float64(raw)

	// Truncation, not scaling: any two signals saturate the component.
	return min(maxBusinessPoints, raw)
}

// lastInteraction prefers the stored interaction time, then the newest
// message, then the lead's creation time.
func lastInteraction(in Input) time.Time {
	if in.Lead.LastInteractionAt != nil && !in.Lead.LastInteractionAt.IsZero() {
		return *in.Lead.LastInteractionAt
	}
	var newest time.Time
	for _, m := range in.Messages {
		if m.CreatedAt.After(newest) {
			newest = m.CreatedAt
		}
	}
	if !newest.IsZero() {
		return newest
	}
	return in.Lead.CreatedAt
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
