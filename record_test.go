package phemap

import "testing"

func TestParseCode(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"495", 495, true},
		{"038.1", 38.1, true},
		{"008", 8, true},
		{" 495.1 ", 495.1, true},
		{"ABC123", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, err := ParseCode(tt.in)
		if tt.ok && err != nil {
			t.Errorf("ParseCode(%q) error = %v", tt.in, err)
			continue
		}
		if !tt.ok {
			if err == nil {
				t.Errorf("ParseCode(%q) expected error", tt.in)
			}
			continue
		}
		if got != tt.want {
			t.Errorf("ParseCode(%q) = %v; want %v", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeCode(t *testing.T) {
	t.Run("leading zeros collapse", func(t *testing.T) {
		for _, in := range []string{"038.1", "38.1", "38.10", " 38.1"} {
			got, err := NormalizeCode(in)
			if err != nil {
				t.Fatalf("NormalizeCode(%q) error = %v", in, err)
			}
			if got != "38.1" {
				t.Errorf("NormalizeCode(%q) = %q; want %q", in, got, "38.1")
			}
		}
	})

	t.Run("integer codes", func(t *testing.T) {
		got, err := NormalizeCode("008")
		if err != nil {
			t.Fatalf("NormalizeCode() error = %v", err)
		}
		if got != "8" {
			t.Errorf("NormalizeCode(%q) = %q; want %q", "008", got, "8")
		}
	})

	t.Run("unparseable code", func(t *testing.T) {
		if _, err := NormalizeCode("ABC123"); err == nil {
			t.Error("expected error for non-numeric code")
		}
	})
}

func TestRestoreICD10Dot(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"J451", "J45.1"},
		{"I210", "I21.0"},
		{"J45", "J45"},       // three characters, nothing to restore
		{"J45.1", "J45.1"},   // already dotted
		{"C5012", "C50.12"},  // longer tails keep all trailing characters
		{" J451 ", "J45.1"},
	}

	for _, tt := range tests {
		if got := RestoreICD10Dot(tt.in); got != tt.want {
			t.Errorf("RestoreICD10Dot(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}
