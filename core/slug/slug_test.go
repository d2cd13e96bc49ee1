package slug

import "testing"

func TestMake(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Nightfall", "Nightfall"},
		{"accents and punctuation", "Dj Pépé  & Co.", "Dj-Pepe-Co"},
		{"leading trailing junk", "  ~~Vôlt!! ", "Volt"},
		{"consecutive separators", "a---b__c", "a-b-c"},
		{"only junk", "!!!", ""},
		{"empty", "", ""},
		{"numbers kept", "Room 303", "Room-303"},
		{"diacritics everywhere", "Åsa Öström", "Asa-Ostrom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Make(tt.in); got != tt.want {
				t.Errorf("Make(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMakeIdempotent(t *testing.T) {
	inputs := []string{"Dj Pépé  & Co.", "Nightfall", "a---b", "Çağrı / Live", ""}
	for _, in := range inputs {
		once := Make(in)
		if twice := Make(once); twice != once {
			t.Errorf("Make not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestMakeNoEdgeHyphens(t *testing.T) {
	inputs := []string{"  x  ", "--y--", "!z!", "a & b & c", "...", "é!é"}
	for _, in := range inputs {
		got := Make(in)
		if len(got) == 0 {
			continue
		}
		if got[0] == '-' || got[len(got)-1] == '-' {
			t.Errorf("Make(%q) = %q has edge hyphen", in, got)
		}
		for i := 1; i < len(got); i++ {
			if got[i] == '-' && got[i-1] == '-' {
				t.Errorf("Make(%q) = %q has consecutive hyphens", in, got)
			}
		}
	}
}
