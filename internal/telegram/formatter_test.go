package telegram

import (
	"strings"
	"testing"
	"time"

	"github.com/kitbuilder587/reactor-bot/internal/domain"
	"github.com/kitbuilder587/reactor-bot/internal/repository"
	"github.com/kitbuilder587/reactor-bot/internal/service"
)

func TestFormatStatus(t *testing.T) {
	snap := repository.Snapshot{
		Name:       "lab",
		Preset:     "rich",
		InputA:     10,
		InputB:     4,
		Conversion: 0.9,
		Mode:       domain.ModeSplit,
		SplitRatio: 0.7,
		Outputs:    []float64{2.52, 1.08},
		Runs:       3,
	}

	result := FormatStatus(snap)

	for _, want := range []string{"lab", "rich", "split", "0.9", "0.7", "A=10", "B=4", "2.52 и 1.08", "Прогонов в истории: 3"} {
		if !strings.Contains(result, want) {
			t.Errorf("FormatStatus() should contain %q, got:\n%s", want, result)
		}
	}
}

func TestFormatStatus_NoOutputs(t *testing.T) {
	snap := repository.Snapshot{
		Name:       "main",
		Preset:     "basic",
		Conversion: 0.5,
		Mode:       domain.ModeSingle,
		SplitRatio: 0.5,
	}

	result := FormatStatus(snap)

	if !strings.Contains(result, "Последние выходы: нет") {
		t.Errorf("FormatStatus() should report empty outputs, got:\n%s", result)
	}
}

func TestFormatReactorList(t *testing.T) {
	snapshots := []repository.Snapshot{
		{Name: "lab", Preset: "rich", Mode: domain.ModeSplit, Conversion: 0.9, Runs: 2},
		{Name: "main", Preset: "basic", Mode: domain.ModeSingle, Conversion: 0.5},
	}

	result := FormatReactorList(snapshots)

	if !strings.Contains(result, "1. <b>lab</b>") {
		t.Error("FormatReactorList() should number entries")
	}
	if !strings.Contains(result, "Всего: 2") {
		t.Error("FormatReactorList() should contain total count")
	}
}

func TestFormatPresetList(t *testing.T) {
	presets := []domain.Preset{
		{Name: "basic", Conversion: 0.5, Mode: domain.ModeSingle, SplitRatio: 0.5},
		{Name: "rich", Conversion: 0.9, Mode: domain.ModeSplit, SplitRatio: 0.7},
	}

	result := FormatPresetList(presets, "basic")

	if !strings.Contains(result, "basic") || !strings.Contains(result, "rich") {
		t.Error("FormatPresetList() should contain preset names")
	}
	if !strings.Contains(result, "(по умолчанию)") {
		t.Error("FormatPresetList() should mark the default preset")
	}
	// доля печатается только для split-пресетов
	if strings.Count(result, "доля") != 1 {
		t.Errorf("FormatPresetList() should mention split ratio once, got:\n%s", result)
	}
}

func TestFormatRun(t *testing.T) {
	rec := domain.RunRecord{
		ID:         "run-1",
		Reactor:    "lab",
		InputA:     10,
		InputB:     4,
		Conversion: 0.5,
		Mode:       domain.ModeSplit,
		SplitRatio: 0.25,
		Outputs:    []float64{0.5, 1.5},
		RanAt:      time.Now(),
	}

	result := FormatRun(rec)

	for _, want := range []string{"lab", "A=10", "B=4", "0.5", "Лимитирующий реагент: 4", "0.5 и 1.5"} {
		if !strings.Contains(result, want) {
			t.Errorf("FormatRun() should contain %q, got:\n%s", want, result)
		}
	}
}

func TestFormatRun_SingleOutput(t *testing.T) {
	rec := domain.RunRecord{
		Reactor:    "main",
		InputA:     6,
		InputB:     8,
		Conversion: 1,
		Mode:       domain.ModeSingle,
		SplitRatio: 0.5,
		Outputs:    []float64{6},
	}

	result := FormatRun(rec)

	if !strings.Contains(result, "Выход: 6") {
		t.Errorf("FormatRun() should contain single output, got:\n%s", result)
	}
	if strings.Contains(result, "доля разделения") {
		t.Error("FormatRun() should not mention split ratio in single mode")
	}
}

func TestFormatHistory(t *testing.T) {
	records := []domain.RunRecord{
		{InputA: 3, InputB: 3, Conversion: 1, Mode: domain.ModeSingle, Outputs: []float64{3}, RanAt: time.Date(2025, 8, 25, 12, 30, 0, 0, time.UTC)},
		{InputA: 2, InputB: 2, Conversion: 1, Mode: domain.ModeSingle, Outputs: []float64{2}, RanAt: time.Date(2025, 8, 25, 12, 29, 0, 0, time.UTC)},
	}

	result := FormatHistory("lab", records)

	if !strings.Contains(result, "История реактора lab") {
		t.Error("FormatHistory() should contain reactor name")
	}
	if !strings.Contains(result, "12:30:00") {
		t.Error("FormatHistory() should contain run time")
	}
	if strings.Index(result, "A=3") > strings.Index(result, "A=2") {
		t.Error("FormatHistory() should keep newest-first order")
	}
}

func TestFormatHistory_Empty(t *testing.T) {
	result := FormatHistory("lab", nil)

	if !strings.Contains(result, "пуста") {
		t.Errorf("FormatHistory() should report empty history, got:\n%s", result)
	}
}

func TestFormatBatch(t *testing.T) {
	result := FormatBatch(&service.BatchResult{
		ID: "batch-1",
		Results: []domain.ScenarioResult{
			{
				Scenario: domain.Scenario{InputA: 10, InputB: 5, Conversion: 0.5, Mode: domain.ModeSingle, SplitRatio: 0.5},
				Limiting: 5,
				Reacted:  2.5,
				Outputs:  []float64{2.5},
			},
			{
				Scenario: domain.Scenario{InputA: 10, InputB: 5, Conversion: 0.8, Mode: domain.ModeSplit, SplitRatio: 0.3},
				Limiting: 5,
				Reacted:  4,
				Outputs:  []float64{1.2, 2.8},
			},
		},
	})

	if !strings.Contains(result, "сценариев 2") {
		t.Error("FormatBatch() should contain scenario count")
	}
	if !strings.Contains(result, "1.2 и 2.8") {
		t.Error("FormatBatch() should contain split outputs")
	}
	if strings.Contains(result, "из кеша") {
		t.Error("FormatBatch() should not mark fresh result as cached")
	}
}

func TestFormatBatch_FromCache(t *testing.T) {
	result := FormatBatch(&service.BatchResult{
		FromCache: true,
		Results: []domain.ScenarioResult{
			{Scenario: domain.Scenario{Mode: domain.ModeSingle}, Outputs: []float64{0}},
		},
	})

	if !strings.Contains(result, "из кеша") {
		t.Error("FormatBatch() should mark cached result")
	}
}

func TestFormatQty(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0.5, "0.5"},
		{2, "2"},
		{2.9999999999999996, "3"},
		{0.30000000000000004, "0.3"},
		{1.0 / 3.0, "0.333333"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := formatQty(tt.in); got != tt.want {
				t.Errorf("formatQty(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSplitMessage(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		maxLen int
		want   int // number of parts
	}{
		{"short message", "Hello", 100, 1},
		{"exact length", "Hello", 5, 1},
		{"split needed", "Hello World Test", 7, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitMessage(tt.text, tt.maxLen)
			if len(got) != tt.want {
				t.Errorf("SplitMessage() parts = %v, want %v", len(got), tt.want)
			}
		})
	}
}

func TestSplitMessage_HTMLTags(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{
			name: "bold tag",
			text: `Some text <b>bold text here</b> more text`,
		},
		{
			name: "multiple tags",
			text: `<b>Реактор lab</b>\n<b>История</b>\nMore text here`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parts := SplitMessage(tt.text, 30)

			for i, part := range parts {
				openCount := strings.Count(part, "<")
				closeCount := strings.Count(part, ">")

				if openCount != closeCount {
					t.Errorf("Part %d has unbalanced tags (open=%d, close=%d): %q",
						i, openCount, closeCount, part)
				}
			}
		})
	}
}

func TestIsInsideHTMLTag(t *testing.T) {
	tests := []struct {
		text string
		pos  int
		want bool
	}{
		{`<a href="url">text</a>`, 5, true},   // inside <a href="...">
		{`<a href="url">text</a>`, 15, false}, // in "text"
		{`text <b>bold</b>`, 0, false},        // before any tag
		{`text <b>bold</b>`, 6, true},         // inside <b>
		{`text <b>bold</b>`, 9, false},        // in "bold"
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := isInsideHTMLTag(tt.text, tt.pos)
			if got != tt.want {
				t.Errorf("isInsideHTMLTag(%q, %d) = %v, want %v", tt.text, tt.pos, got, tt.want)
			}
		})
	}
}
