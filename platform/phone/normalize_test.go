package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		region string
		want   string
	}{
		{name: "empty", input: "   ", region: "IN", want: ""},
		{name: "already international", input: "+31 6 12345678", region: "IN", want: "+31612345678"},
		{name: "national with region", input: "06 12345678", region: "NL", want: "+31612345678"},
		{name: "unparsable kept trimmed", input: "  call me  ", region: "IN", want: "call me"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeE164(tc.input, tc.region); got != tc.want {
				t.Fatalf("NormalizeE164(%q, %q) = %q, want %q", tc.input, tc.region, got, tc.want)
			}
		})
	}
}
