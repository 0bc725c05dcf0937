package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kitbuilder587/reactor-bot/internal/domain"
)

func writePresetsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "presets.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoadPresets(t *testing.T) {
	path := writePresetsFile(t, `
presets:
  - name: pilot
    conversion: 0.8
    mode: split
    split_ratio: 0.6
  - name: lab
    conversion: 0.25
    split_ratio: 0.5
`)

	presets, err := LoadPresets(path)
	if err != nil {
		t.Fatalf("LoadPresets() error = %v", err)
	}

	if len(presets) != 2 {
		t.Fatalf("LoadPresets() len = %d, want 2", len(presets))
	}

	if presets[0].Name != "pilot" || presets[0].Mode != domain.ModeSplit {
		t.Errorf("presets[0] = %+v, want pilot/split", presets[0])
	}
	if presets[0].Conversion != 0.8 || presets[0].SplitRatio != 0.6 {
		t.Errorf("presets[0] numbers = %v/%v, want 0.8/0.6", presets[0].Conversion, presets[0].SplitRatio)
	}

	// пропущенный mode означает single
	if presets[1].Mode != domain.ModeSingle {
		t.Errorf("presets[1].Mode = %v, want single", presets[1].Mode)
	}
}

func TestLoadPresets_EmptyPath(t *testing.T) {
	presets, err := LoadPresets("")
	if err != nil {
		t.Fatalf("LoadPresets(\"\") error = %v", err)
	}
	if presets != nil {
		t.Errorf("LoadPresets(\"\") = %v, want nil", presets)
	}
}

func TestLoadPresets_MissingFile(t *testing.T) {
	if _, err := LoadPresets(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadPresets() error = nil for missing file")
	}
}

func TestLoadPresets_BadYAML(t *testing.T) {
	path := writePresetsFile(t, "presets: [broken")

	if _, err := LoadPresets(path); err == nil {
		t.Error("LoadPresets() error = nil for broken yaml")
	}
}

func TestLoadPresets_InvalidEntryRejectsFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name: "conversion out of range",
			content: `
presets:
  - name: bad
    conversion: 1.5
    mode: single
    split_ratio: 0.5
`,
			wantErr: domain.ErrConversionOutOfRange,
		},
		{
			name: "unknown mode",
			content: `
presets:
  - name: bad
    conversion: 0.5
    mode: triple
    split_ratio: 0.5
`,
			wantErr: domain.ErrInvalidMode,
		},
		{
			name: "empty name",
			content: `
presets:
  - name: ""
    conversion: 0.5
    mode: single
    split_ratio: 0.5
`,
			wantErr: domain.ErrInvalidPresetName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writePresetsFile(t, tt.content)

			_, err := LoadPresets(path)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("LoadPresets() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
