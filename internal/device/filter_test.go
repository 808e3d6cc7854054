package device

import "testing"

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantField string
		wantTerm  string
	}{
		{"bare term", "router", "", "router"},
		{"scoped", "brand:cisco", "brand", "cisco"},
		{"scoped with spaces", " name : core switch ", "name", "core switch"},
		{"unknown field kept as term", "vendor:cisco", "", "vendor:cisco"},
		{"empty", "", "", ""},
		{"numeric rack", "rack:0", "rack", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ParseFilter(tt.query)
			if f.Field != tt.wantField || f.Term != tt.wantTerm {
				t.Errorf("ParseFilter(%q) = {%q, %q}, want {%q, %q}",
					tt.query, f.Field, f.Term, tt.wantField, tt.wantTerm)
			}
		})
	}
}

func TestFilterMatches(t *testing.T) {
	d := &Device{
		ID:          "dev-1",
		Name:        "Core Router",
		Brand:       "Cisco",
		Category:    "Network",
		Rack:        intPtr(0),
		Slot:        intPtr(4),
		IP:          "10.0.0.1",
		Application: "routing",
	}

	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{"empty matches all", "", true},
		{"term across fields", "cisco", true},
		{"case insensitive", "CORE", true},
		{"scoped hit", "brand:cis", true},
		{"scoped miss", "name:cisco", false},
		{"rack zero numeric match", "rack:0", true},
		{"rack numeric miss", "rack:3", false},
		{"slot match", "slot:4", true},
		{"slot non-numeric term", "slot:four", false},
		{"no match anywhere", "juniper", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseFilter(tt.query).Matches(d); got != tt.want {
				t.Errorf("Matches(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestFilterUnplacedDevice(t *testing.T) {
	d := &Device{ID: "dev-2", Name: "Spare"}

	if ParseFilter("rack:0").Matches(d) {
		t.Error("unplaced device must not match rack:0")
	}
	if !ParseFilter("spare").Matches(d) {
		t.Error("name term should match")
	}
}
