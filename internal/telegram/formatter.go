package telegram

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/kitbuilder587/reactor-bot/internal/domain"
	"github.com/kitbuilder587/reactor-bot/internal/repository"
	"github.com/kitbuilder587/reactor-bot/internal/service"
)

func FormatStatus(s repository.Snapshot) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>Реактор %s</b> (пресет %s)\n\n", html.EscapeString(s.Name), html.EscapeString(s.Preset))
	fmt.Fprintf(&sb, "Режим: %s\n", s.Mode)
	fmt.Fprintf(&sb, "Конверсия: %s\n", formatQty(s.Conversion))
	fmt.Fprintf(&sb, "Доля разделения: %s\n", formatQty(s.SplitRatio))
	fmt.Fprintf(&sb, "Входы: A=%s, B=%s\n", formatQty(s.InputA), formatQty(s.InputB))
	if len(s.Outputs) > 0 {
		fmt.Fprintf(&sb, "Последние выходы: %s\n", formatOutputs(s.Outputs))
	} else {
		sb.WriteString("Последние выходы: нет\n")
	}
	fmt.Fprintf(&sb, "Прогонов в истории: %d", s.Runs)
	return sb.String()
}

func FormatReactorList(snapshots []repository.Snapshot) string {
	var sb strings.Builder
	sb.WriteString("<b>Ваши реакторы:</b>\n\n")

	for i, s := range snapshots {
		fmt.Fprintf(&sb, "%d. <b>%s</b> (пресет %s) - %s, конверсия %s, прогонов %d\n",
			i+1,
			html.EscapeString(s.Name),
			html.EscapeString(s.Preset),
			s.Mode,
			formatQty(s.Conversion),
			s.Runs,
		)
	}

	fmt.Fprintf(&sb, "\nВсего: %d", len(snapshots))
	return sb.String()
}

func FormatPresetList(presets []domain.Preset, defaultName string) string {
	var sb strings.Builder
	sb.WriteString("<b>Доступные пресеты:</b>\n\n")

	for _, p := range presets {
		fmt.Fprintf(&sb, "• <b>%s</b> - режим %s, конверсия %s", html.EscapeString(p.Name), p.Mode, formatQty(p.Conversion))
		if p.Mode == domain.ModeSplit {
			fmt.Fprintf(&sb, ", доля %s", formatQty(p.SplitRatio))
		}
		if p.Name == defaultName {
			sb.WriteString(" (по умолчанию)")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\nСоздать реактор: /new имя пресет")
	return sb.String()
}

func FormatRun(rec domain.RunRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>Прогон реактора %s</b>\n\n", html.EscapeString(rec.Reactor))
	fmt.Fprintf(&sb, "Входы: A=%s, B=%s\n", formatQty(rec.InputA), formatQty(rec.InputB))
	fmt.Fprintf(&sb, "Конверсия: %s", formatQty(rec.Conversion))
	if rec.Mode == domain.ModeSplit {
		fmt.Fprintf(&sb, ", доля разделения %s", formatQty(rec.SplitRatio))
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Лимитирующий реагент: %s\n", formatQty(min(rec.InputA, rec.InputB)))
	if len(rec.Outputs) == 2 {
		fmt.Fprintf(&sb, "Выходы: %s", formatOutputs(rec.Outputs))
	} else {
		fmt.Fprintf(&sb, "Выход: %s", formatOutputs(rec.Outputs))
	}
	return sb.String()
}

func FormatHistory(name string, records []domain.RunRecord) string {
	if len(records) == 0 {
		return fmt.Sprintf("История реактора %s пуста. Запустите реакцию: /run %s",
			html.EscapeString(name), html.EscapeString(name))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>История реактора %s</b> (свежие сверху):\n\n", html.EscapeString(name))

	for i, rec := range records {
		fmt.Fprintf(&sb, "%d. [%s] A=%s, B=%s, конверсия %s, %s -> %s\n",
			i+1,
			rec.RanAt.Format("15:04:05"),
			formatQty(rec.InputA),
			formatQty(rec.InputB),
			formatQty(rec.Conversion),
			rec.Mode,
			formatOutputs(rec.Outputs),
		)
	}

	return sb.String()
}

func FormatBatch(result *service.BatchResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>Батч: сценариев %d</b>", len(result.Results))
	if result.FromCache {
		sb.WriteString(" (из кеша)")
	}
	sb.WriteString("\n\n")

	for i, res := range result.Results {
		sc := res.Scenario
		fmt.Fprintf(&sb, "%d. A=%s, B=%s, конверсия %s, %s\n",
			i+1,
			formatQty(sc.InputA),
			formatQty(sc.InputB),
			formatQty(sc.Conversion),
			sc.Mode,
		)
		fmt.Fprintf(&sb, "   прореагировало %s -> %s\n", formatQty(res.Reacted), formatOutputs(res.Outputs))
	}

	return sb.String()
}

// formatQty печатает количество без хвостов двоичного представления.
func formatQty(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

func formatOutputs(outputs []float64) string {
	parts := make([]string, len(outputs))
	for i, v := range outputs {
		parts[i] = formatQty(v)
	}
	return strings.Join(parts, " и ")
}

func SplitMessage(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}

	var messages []string
	for len(text) > 0 {
		if len(text) <= maxLen {
			messages = append(messages, text)
			break
		}

		splitPoint := findSafeSplitPoint(text, maxLen)
		if splitPoint <= 0 || splitPoint > len(text) {
			splitPoint = maxLen
		}

		messages = append(messages, text[:splitPoint])
		text = text[splitPoint:]
	}

	return messages
}

func findSafeSplitPoint(text string, maxLen int) int {
	// ищем пробел или перевод строки, не ломая HTML-теги
	for i := maxLen - 1; i > maxLen/2; i-- {
		if i >= len(text) {
			continue
		}
		if isInsideHTMLTag(text, i) {
			continue
		}

		if text[i] == '\n' || text[i] == ' ' {
			return i + 1
		}
	}

	// внутри тега - ищем конец
	if maxLen < len(text) && isInsideHTMLTag(text, maxLen) {
		for i := maxLen; i < len(text); i++ {
			if text[i] == '>' {
				for j := i + 1; j < len(text) && j < i+50; j++ {
					if text[j] == '\n' || text[j] == ' ' {
						return j + 1
					}
				}
				return i + 1
			}
		}
	}

	for i := maxLen - 1; i > 0; i-- {
		if text[i] == ' ' || text[i] == '\n' {
			return i + 1
		}
	}

	return maxLen
}

func isInsideHTMLTag(text string, pos int) bool {
	if pos >= len(text) || pos < 0 {
		return false
	}
	for i := pos; i >= 0; i-- {
		if text[i] == '>' {
			return false
		}
		if text[i] == '<' {
			return true
		}
	}
	return false
}
