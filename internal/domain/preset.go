package domain

import "strings"

// Preset - именованная конфигурация реактора.
type Preset struct {
	Name       string
	Conversion float64
	Mode       Mode
	SplitRatio float64
}

// Validate проверяет имя и диапазоны. Диапазоны те же, что и у модели.
func (p Preset) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrInvalidPresetName
	}
	if !p.Mode.IsValid() {
		return ErrInvalidMode
	}
	if p.Conversion < 0 || p.Conversion > 1 {
		return ErrConversionOutOfRange
	}
	if p.SplitRatio < 0 || p.SplitRatio > 1 {
		return ErrSplitRatioOutOfRange
	}
	return nil
}

// Build создает реактор по пресету.
func (p Preset) Build() (*Reactor, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return NewReactor(p.Conversion, p.Mode.TwoOutputs(), p.SplitRatio)
}

// DefaultPreset - конфигурация, используемая когда пользователь не выбрал
// пресет и каталог недоступен.
func DefaultPreset() Preset {
	return Preset{
		Name:       "basic",
		Conversion: DefaultConversion,
		Mode:       ModeSingle,
		SplitRatio: DefaultSplitRatio,
	}
}
