package domain

// MaxBatchScenarios ограничивает размер одного батча.
const MaxBatchScenarios = 50

// Scenario - автономный набор параметров для одного прогона реакции.
// Вычисляется на свежем реакторе и не затрагивает именованные реакторы
// пользователя.
type Scenario struct {
	InputA     float64
	InputB     float64
	Conversion float64
	Mode       Mode
	SplitRatio float64
}

func (s Scenario) Validate() error {
	if s.InputA < 0 || s.InputB < 0 {
		return ErrNegativeInputs
	}
	if !s.Mode.IsValid() {
		return ErrInvalidMode
	}
	if s.Conversion < 0 || s.Conversion > 1 {
		return ErrConversionOutOfRange
	}
	if s.SplitRatio < 0 || s.SplitRatio > 1 {
		return ErrSplitRatioOutOfRange
	}
	return nil
}

// Evaluate прогоняет сценарий на свежем реакторе.
func (s Scenario) Evaluate() (ScenarioResult, error) {
	if err := s.Validate(); err != nil {
		return ScenarioResult{}, err
	}

	r, err := NewReactor(s.Conversion, s.Mode.TwoOutputs(), s.SplitRatio)
	if err != nil {
		return ScenarioResult{}, err
	}
	if err := r.SetInputs(s.InputA, s.InputB); err != nil {
		return ScenarioResult{}, err
	}

	outputs := r.RunReaction()
	limiting := min(s.InputA, s.InputB)

	return ScenarioResult{
		Scenario: s,
		Limiting: limiting,
		Reacted:  limiting * s.Conversion,
		Outputs:  outputs,
	}, nil
}

// ScenarioResult - итог одного прогона сценария.
type ScenarioResult struct {
	Scenario Scenario
	Limiting float64
	Reacted  float64
	Outputs  []float64
}

// ValidateBatch проверяет батч целиком: границы размера и каждый сценарий.
// Батч неделим - первая ошибка отклоняет весь список.
func ValidateBatch(scenarios []Scenario) error {
	if len(scenarios) == 0 {
		return ErrEmptyBatch
	}
	if len(scenarios) > MaxBatchScenarios {
		return ErrBatchTooLarge
	}
	for _, s := range scenarios {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}
