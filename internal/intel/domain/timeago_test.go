package domain

import (
	"testing"
	"time"
)

func TestTimeAgo(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		elapsed time.Duration
		want    string
	}{
		{elapsed: 30 * time.Second, want: "just now"},
		{elapsed: -5 * time.Minute, want: "just now"},
		{elapsed: time.Minute, want: "1 minute ago"},
		{elapsed: 45 * time.Minute, want: "45 minutes ago"},
		{elapsed: 90 * time.Minute, want: "1 hour ago"},
		{elapsed: 23*time.Hour + 59*time.Minute, want: "23 hours ago"},
		{elapsed: 24 * time.Hour, want: "1 day ago"},
		{elapsed: 6 * 24 * time.Hour, want: "6 days ago"},
		{elapsed: 7 * 24 * time.Hour, want: "1 week ago"},
		{elapsed: 20 * 24 * time.Hour, want: "2 weeks ago"},
	}

	for _, tc := range cases {
		if got := TimeAgo(now.Add(-tc.elapsed), now); got != tc.want {
			t.Errorf("TimeAgo(-%v) = %q, want %q", tc.elapsed, got, tc.want)
		}
	}
}

func TestShortAgo(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	if got := ShortAgo(now.Add(-5*time.Hour), now); got != "5h ago" {
		t.Fatalf("expected 5h ago, got %q", got)
	}
	if got := ShortAgo(now.Add(-50*time.Hour), now); got != "2d ago" {
		t.Fatalf("expected 2d ago, got %q", got)
	}
}

func TestDecodeUnifiedContextUnwrapsDoubleEncoding(t *testing.T) {
	raw := []byte(`"{\"web\":{\"booking_date\":\"2025-01-01\"}}"`)
	ctx := DecodeUnifiedContext(raw)
	web, ok := ctx["web"].(map[string]any)
	if !ok || web["booking_date"] != "2025-01-01" {
		t.Fatalf("expected decoded web block, got %#v", ctx)
	}

	for _, bad := range []string{``, `null`, `[1,2]`, `"not json"`, `{broken`} {
		if got := DecodeUnifiedContext([]byte(bad)); got != nil {
			t.Errorf("DecodeUnifiedContext(%q) = %#v, want nil", bad, got)
		}
	}
}

func TestParseChannel(t *testing.T) {
	if ch, ok := ParseChannel(" WhatsApp "); !ok || ch != ChannelWhatsApp {
		t.Fatalf("expected whatsapp, got %q ok=%v", ch, ok)
	}
	if _, ok := ParseChannel("carrier-pigeon"); ok {
		t.Fatalf("expected unknown channel")
	}
}
