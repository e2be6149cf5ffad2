package render

import "testing"

// Core fonts are cp1252, so the fixed text the renderer injects around user
// fields must stay plain ASCII.
func TestIssuerDateLine(t *testing.T) {
	tests := []struct {
		name   string
		issuer string
		date   string
		want   string
	}{
		{"issuer and date", "City School", "2024-11-02", "City School - 2024-11-02"},
		{"issuer only", "City School", "", "City School"},
		{"date only", "", "2024-11-02", "2024-11-02"},
		{"neither", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := issuerDateLine(tt.issuer, tt.date)
			if got != tt.want {
				t.Errorf("issuerDateLine() = %q, want %q", got, tt.want)
			}
			for _, r := range got {
				if r > 0x7f {
					t.Errorf("issuerDateLine() emits non-ASCII rune %q", r)
				}
			}
		})
	}
}
