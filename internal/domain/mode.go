package domain

import "strings"

// Mode - словарь режимов выходов для пресетов, команд и меток метрик.
// Внутри модели режим остается булевым флагом.
type Mode string

const (
	ModeSingle Mode = "single"
	ModeSplit  Mode = "split"
)

func (m Mode) IsValid() bool {
	switch m {
	case ModeSingle, ModeSplit:
		return true
	default:
		return false
	}
}

func (m Mode) String() string {
	return string(m)
}

// TwoOutputs переводит режим во флаг модели.
func (m Mode) TwoOutputs() bool {
	return m == ModeSplit
}

// ModeOf - режим по флагу модели.
func ModeOf(twoOutputs bool) Mode {
	if twoOutputs {
		return ModeSplit
	}
	return ModeSingle
}

// ParseMode разбирает пользовательский ввод режима без учета регистра.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", ErrInvalidMode
	}
	return m, nil
}
