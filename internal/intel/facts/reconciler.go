// Package facts reconciles a lead's fragmented per-channel context into one
// canonical set of facts. It is the only package that reads the unified
// context document directly.
package facts

import (
	"strings"

	"lead_intel_backend/internal/intel/domain"
	"lead_intel_backend/platform/phone"
)

// Booking is the reconciled booking fact. Either field may be nil.
type Booking struct {
	Date *string `json:"date"`
	Time *string `json:"time"`
}

// Present reports whether either field resolved.
func (b Booking) Present() bool {
	return b.Date != nil || b.Time != nil
}

type Contact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// HasReachability reports whether the lead can be contacted directly.
func (c Contact) HasReachability() bool {
	return c.Email != "" || c.Phone != ""
}

// CanonicalContext holds every fact downstream components read about a lead.
type CanonicalContext struct {
	Booking          Booking                   `json:"booking"`
	Contact          Contact                   `json:"contact"`
	UnifiedSummary   string                    `json:"unifiedSummary,omitempty"`
	ChannelSummaries map[domain.Channel]string `json:"channelSummaries,omitempty"`
	Budget           string                    `json:"budget,omitempty"`
	ServiceInterest  string                    `json:"serviceInterest,omitempty"`
	PainPoints       []string                  `json:"painPoints,omitempty"`
	ChannelsUsed     []domain.Channel          `json:"channelsUsed"`
}

// HasBooking mirrors Reconciler.HasBooking for an already reconciled context.
func (c CanonicalContext) HasBooking() bool {
	return c.Booking.Present()
}

// KeyFacts renders the extracted facts as "label: value" fragments.
func (c CanonicalContext) KeyFacts() []string {
	var out []string
	if c.Budget != "" {
		out = append(out, "budget: "+c.Budget)
	}
	if c.ServiceInterest != "" {
		out = append(out, "interest: "+c.ServiceInterest)
	}
	if len(c.PainPoints) > 0 {
		out = append(out, "pain points: "+strings.Join(c.PainPoints, ", "))
	}
	return out
}

// Reconciler resolves canonical facts. Its path chains are compiled once and
// it holds no mutable state, so one instance is safe for concurrent use.
type Reconciler struct {
	phoneRegion string

	bookingDate pathChain
	bookingTime pathChain

	name  pathChain
	email pathChain
	phone pathChain

	unifiedSummary pathChain
	channelSummary map[domain.Channel]pathChain

	budget          pathChain
	serviceInterest pathChain
	painPoints      pathChain
}

// New builds a Reconciler. phoneRegion is the ISO region used for numbers
// without an international prefix; empty selects phone.DefaultRegion.
func New(phoneRegion string) *Reconciler {
	if strings.TrimSpace(phoneRegion) == "" {
		phoneRegion = phone.DefaultRegion
	}

	summaries := make(map[domain.Channel]pathChain, len(domain.ChannelOrder))
	for _, ch := range domain.ChannelOrder {
		summaries[ch] = compileChain(string(ch) + ".conversation_summary")
	}

	return &Reconciler{
		phoneRegion:     phoneRegion,
		bookingDate:     compileChain(perChannel("%s.booking_date", "%s.booking.date")...),
		bookingTime:     compileChain(perChannel("%s.booking_time", "%s.booking.time")...),
		name:            compileChain(perChannel("%s.customer_name", "%s.name")...),
		email:           compileChain(perChannel("%s.customer_email", "%s.email")...),
		phone:           compileChain(perChannel("%s.customer_phone", "%s.phone")...),
		unifiedSummary:  compileChain("unified_summary"),
		channelSummary:  summaries,
		budget:          keyFactChain("budget"),
		serviceInterest: keyFactChain("service_interest"),
		painPoints:      keyFactChain("pain_points"),
	}
}

// keyFactChain looks at the top level first, then each channel's direct key,
// then each channel's extracted block.
func keyFactChain(key string) pathChain {
	exprs := []string{key}
	exprs = append(exprs, perChannel("%s."+key, "%s.extracted."+key)...)
	return compileChain(exprs...)
}

// ResolveBooking resolves the booking date and time independently: context
// direct keys, then nested booking objects, then the most recently created
// session carrying the field.
func (r *Reconciler) ResolveBooking(lead domain.Lead, sessions []domain.ChannelSession) Booking {
	var booking Booking

	if date, ok := r.bookingDate.firstString(lead.UnifiedContext); ok {
		booking.Date = &date
	} else if date, ok := latestSessionField(sessions, func(s domain.ChannelSession) *string { return s.BookingDate }); ok {
		booking.Date = &date
	}

	if tm, ok := r.bookingTime.firstString(lead.UnifiedContext); ok {
		booking.Time = &tm
	} else if tm, ok := latestSessionField(sessions, func(s domain.ChannelSession) *string { return s.BookingTime }); ok {
		booking.Time = &tm
	}

	return booking
}

// HasBooking is true when either booking field resolves.
func (r *Reconciler) HasBooking(lead domain.Lead, sessions []domain.ChannelSession) bool {
	return r.ResolveBooking(lead, sessions).Present()
}

// latestSessionField scans sessions linearly. Only a strictly newer session
// replaces the current pick, so equal timestamps keep the first one found.
func latestSessionField(sessions []domain.ChannelSession, field func(domain.ChannelSession) *string) (string, bool) {
	var (
		best   string
		bestAt = -1
	)
	for i, s := range sessions {
		value, ok := presentString(field(s))
		if !ok {
			continue
		}
		if bestAt < 0 || s.CreatedAt.After(sessions[bestAt].CreatedAt) {
			best = value
			bestAt = i
		}
	}
	return best, bestAt >= 0
}

// Reconcile populates the full canonical context for one lead.
func (r *Reconciler) Reconcile(lead domain.Lead, sessions []domain.ChannelSession, messages []domain.Message) CanonicalContext {
	doc := lead.UnifiedContext

	out := CanonicalContext{
		Booking:      r.ResolveBooking(lead, sessions),
		Contact:      r.resolveContact(lead),
		ChannelsUsed: ChannelsUsed(doc, sessions, messages),
	}

	out.UnifiedSummary, _ = r.unifiedSummary.firstString(doc)
	for _, ch := range domain.ChannelOrder {
		if s, ok := r.channelSummary[ch].firstString(doc); ok {
			if out.ChannelSummaries == nil {
				out.ChannelSummaries = make(map[domain.Channel]string)
			}
			out.ChannelSummaries[ch] = s
		}
	}

	out.Budget, _ = r.budget.firstString(doc)
	out.ServiceInterest, _ = r.serviceInterest.firstString(doc)
	out.PainPoints = r.painPoints.firstStrings(doc)

	return out
}

func (r *Reconciler) resolveContact(lead domain.Lead) Contact {
	doc := lead.UnifiedContext

	contact := Contact{
		Name:  strings.TrimSpace(lead.Name),
		Email: strings.TrimSpace(lead.Email),
		Phone: strings.TrimSpace(lead.Phone),
	}
	if contact.Name == "" {
		contact.Name, _ = r.name.firstString(doc)
	}
	if contact.Email == "" {
		contact.Email, _ = r.email.firstString(doc)
	}
	if contact.Phone == "" {
		contact.Phone, _ = r.phone.firstString(doc)
	}
	contact.Email = strings.ToLower(contact.Email)
	contact.Phone = phone.NormalizeE164(contact.Phone, r.phoneRegion)
	return contact
}

// ChannelsUsed returns the distinct channels the lead touched, in channel
// order: any channel with a message, a session or a non-empty context block.
func ChannelsUsed(doc map[string]any, sessions []domain.ChannelSession, messages []domain.Message) []domain.Channel {
	seen := make(map[domain.Channel]bool, len(domain.ChannelOrder))
	for _, m := range messages {
		seen[m.Channel] = true
	}
	for _, s := range sessions {
		seen[s.Channel] = true
	}
	for _, ch := range domain.ChannelOrder {
		if block, ok := doc[string(ch)].(map[string]any); ok && len(block) > 0 {
			seen[ch] = true
		}
	}

	out := make([]domain.Channel, 0, len(seen))
	for _, ch := range domain.ChannelOrder {
		if seen[ch] {
			out = append(out, ch)
		}
	}
	return out
}
