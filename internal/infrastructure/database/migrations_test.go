package database

import (
	"context"
	"testing"
)

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		wantVersion string
		wantUp      bool
		wantOK      bool
	}{
		{"up migration", "20250601_120000_core_schema.up.sql", "20250601_120000", true, true},
		{"down migration", "20250601_120000_core_schema.down.sql", "20250601_120000", false, true},
		{"multi word description", "20250602_093000_add_audit_logs.up.sql", "20250602_093000", true, true},
		{"no direction", "20250601_120000_core_schema.sql", "", false, false},
		{"not sql", "20250601_120000_core_schema.up.txt", "", false, false},
		{"missing version parts", "readme.up.sql", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, isUp, ok := parseMigrationFilename(tt.filename)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if version != tt.wantVersion {
				t.Errorf("version = %q, want %q", version, tt.wantVersion)
			}
			if isUp != tt.wantUp {
				t.Errorf("isUp = %v, want %v", isUp, tt.wantUp)
			}
		})
	}
}

func TestMigrationName(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"20250601_120000_core_schema.up.sql", "core_schema"},
		{"20250602_093000_add_audit_logs.down.sql", "add_audit_logs"},
		{"weird.up.sql", "weird"},
	}

	for _, tt := range tests {
		if got := migrationName(tt.filename); got != tt.want {
			t.Errorf("migrationName(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}

func TestOpenAndHealthCheck(t *testing.T) {
	db := testDB(t)

	if err := db.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck failed: %v", err)
	}
	if db.Path() == "" {
		t.Error("Path should not be empty")
	}
}
