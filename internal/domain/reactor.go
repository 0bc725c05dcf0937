package domain

// Значения конфигурации по умолчанию.
const (
	DefaultConversion = 0.5
	DefaultSplitRatio = 0.5
)

// Reactor - одна реакционная стадия: два реагента на входе, один или два
// продукта на выходе. Количество прореагировавшего вещества ограничено
// дефицитным реагентом и долей конверсии. Входы при прогоне не расходуются.
//
// Модель не содержит никакой синхронизации; при конкурентном доступе
// владелец держит одну блокировку на экземпляр на время любого вызова.
type Reactor struct {
	inputA      float64
	inputB      float64
	conversion  float64
	twoOutputs  bool
	splitRatio  float64
	lastOutputs []float64
}

// NewReactor создает реактор с нулевыми входами. conversion и splitRatio
// проверяются одним гейтом, оба должны лежать в [0,1].
func NewReactor(conversion float64, twoOutputs bool, splitRatio float64) (*Reactor, error) {
	if err := validateParams(conversion, splitRatio); err != nil {
		return nil, err
	}
	return &Reactor{
		conversion: conversion,
		twoOutputs: twoOutputs,
		splitRatio: splitRatio,
	}, nil
}

// DefaultReactor - реактор с конфигурацией по умолчанию. Не может
// завершиться ошибкой.
func DefaultReactor() *Reactor {
	return &Reactor{
		conversion: DefaultConversion,
		splitRatio: DefaultSplitRatio,
	}
}

func validateParams(conversion, splitRatio float64) error {
	if conversion < 0 || conversion > 1 {
		return ErrConversionOutOfRange
	}
	if splitRatio < 0 || splitRatio > 1 {
		return ErrSplitRatioOutOfRange
	}
	return nil
}

// SetInputs задает количества реагентов. При отрицательном значении
// прежние входы сохраняются без изменений.
func (r *Reactor) SetInputs(a, b float64) error {
	if a < 0 || b < 0 {
		return ErrNegativeInputs
	}
	r.inputA = a
	r.inputB = b
	return nil
}

// SetConversion задает долю конверсии лимитирующего реагента.
func (r *Reactor) SetConversion(v float64) error {
	if v < 0 || v > 1 {
		return ErrConversionOutOfRange
	}
	r.conversion = v
	return nil
}

// SetTwoOutputs переключает режим выходов. Всегда успешен.
func (r *Reactor) SetTwoOutputs(flag bool) {
	r.twoOutputs = flag
}

// SetSplitRatio задает долю прореагировавшей массы в первом продукте.
func (r *Reactor) SetSplitRatio(v float64) error {
	if v < 0 || v > 1 {
		return ErrSplitRatioOutOfRange
	}
	r.splitRatio = v
	return nil
}

// RunReaction выполняет реакцию над текущим состоянием: лимитирующий
// реагент умножается на конверсию, результат раскладывается по выходам.
// Вектор выходов кэшируется, наружу уходит копия. Детерминирован,
// повторный вызов без изменения состояния дает тот же результат.
func (r *Reactor) RunReaction() []float64 {
	limiting := min(r.inputA, r.inputB)
	reacted := limiting * r.conversion

	var outputs []float64
	if r.twoOutputs {
		outputs = []float64{reacted * r.splitRatio, reacted * (1 - r.splitRatio)}
	} else {
		outputs = []float64{reacted}
	}

	r.lastOutputs = outputs

	result := make([]float64, len(outputs))
	copy(result, outputs)
	return result
}

// Reset обнуляет входы и очищает кэш выходов. Конфигурация (конверсия,
// режим, доля разделения) сохраняется.
func (r *Reactor) Reset() {
	r.inputA = 0
	r.inputB = 0
	r.lastOutputs = nil
}

// LastOutput возвращает кэшированный выход по индексу. Индекс вне границ
// (реакция не запускалась, был Reset, либо индекс за пределами числа
// выходов режима) - ошибка.
func (r *Reactor) LastOutput(index int) (float64, error) {
	if index < 0 || index >= len(r.lastOutputs) {
		return 0, ErrNoSuchOutput
	}
	return r.lastOutputs[index], nil
}

func (r *Reactor) Inputs() (a, b float64) { return r.inputA, r.inputB }

func (r *Reactor) Conversion() float64 { return r.conversion }

func (r *Reactor) TwoOutputs() bool { return r.twoOutputs }

func (r *Reactor) SplitRatio() float64 { return r.splitRatio }

// Outputs возвращает копию кэша выходов; пустой срез, если прогонов не было.
func (r *Reactor) Outputs() []float64 {
	outputs := make([]float64, len(r.lastOutputs))
	copy(outputs, r.lastOutputs)
	return outputs
}
