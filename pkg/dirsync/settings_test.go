package dirsync

import (
	"errors"
	"testing"
)

func TestParseSyncMode(t *testing.T) {
	valid := []struct {
		input string
		want  SyncMode
	}{
		{"FULL", SyncModeFull},
		{"full", SyncModeFull},
		{"FuLl  ", SyncModeFull},
		{"  quick", SyncModeQuick},
		{"QUICK", SyncModeQuick},
		{"QUiCK", SyncModeQuick},
	}
	for _, tc := range valid {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseSyncMode(tc.input)
			if err != nil {
				t.Fatalf("ParseSyncMode(%q) returned error: %v", tc.input, err)
			}
			if got != tc.want {
				t.Errorf("ParseSyncMode(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}

	invalid := []string{"", "ful l", "quick+full", "0", "fastest"}
	for _, input := range invalid {
		t.Run("invalid "+input, func(t *testing.T) {
			_, err := ParseSyncMode(input)
			if !errors.Is(err, ErrInvalidSyncMode) {
				t.Errorf("ParseSyncMode(%q) error = %v, want ErrInvalidSyncMode", input, err)
			}
		})
	}
}

func TestSyncModeString(t *testing.T) {
	if got := SyncModeQuick.String(); got != "QUICK" {
		t.Errorf("SyncModeQuick.String() = %q", got)
	}
	if got := SyncModeFull.String(); got != "FULL" {
		t.Errorf("SyncModeFull.String() = %q", got)
	}
}

func TestDefaultSettings(t *testing.T) {
	settings := DefaultSettings()
	if settings.Mode != SyncModeFull {
		t.Errorf("default mode = %v, want FULL", settings.Mode)
	}
	if settings.ForceCopy || settings.SyncMeta {
		t.Errorf("force-copy and metadata sync should default to off")
	}
}
