package telegram

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kitbuilder587/reactor-bot/internal/domain"
)

// Команды адресуют реактор опциональным первым аргументом; без него
// берется main. Арность решает неоднозначность: лишнее поле в начале -
// это имя.

// ParseName разбирает аргументы команд вида /run [имя].
func ParseName(args string) (string, error) {
	fields := strings.Fields(args)
	switch len(fields) {
	case 0:
		return domain.DefaultReactorName, nil
	case 1:
		if err := domain.ValidateReactorName(fields[0]); err != nil {
			return "", err
		}
		return fields[0], nil
	default:
		return "", fmt.Errorf("expected at most one argument, got %d", len(fields))
	}
}

// ParseNameAndFloats разбирает аргументы команд вида /inputs [имя] A B:
// ровно count чисел, перед ними опциональное имя реактора.
func ParseNameAndFloats(args string, count int) (string, []float64, error) {
	fields := strings.Fields(args)

	name := domain.DefaultReactorName
	switch len(fields) {
	case count:
	case count + 1:
		name = fields[0]
		if err := domain.ValidateReactorName(name); err != nil {
			return "", nil, err
		}
		fields = fields[1:]
	default:
		return "", nil, fmt.Errorf("expected %d numbers, got %d arguments", count, len(fields))
	}

	values := make([]float64, 0, count)
	for _, f := range fields {
		v, err := parseQuantity(f)
		if err != nil {
			return "", nil, err
		}
		values = append(values, v)
	}

	return name, values, nil
}

// ParseNameAndIndex разбирает аргументы команд вида /out [имя] [число].
// Одиночный числовой аргумент трактуется как число, а не как имя, поэтому
// реактор с цифровым именем адресуется только парой "имя число".
func ParseNameAndIndex(args string, defaultIndex int) (string, int, error) {
	fields := strings.Fields(args)
	switch len(fields) {
	case 0:
		return domain.DefaultReactorName, defaultIndex, nil
	case 1:
		if n, err := strconv.Atoi(fields[0]); err == nil {
			return domain.DefaultReactorName, n, nil
		}
		if err := domain.ValidateReactorName(fields[0]); err != nil {
			return "", 0, err
		}
		return fields[0], defaultIndex, nil
	case 2:
		if err := domain.ValidateReactorName(fields[0]); err != nil {
			return "", 0, err
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return "", 0, fmt.Errorf("invalid number %q", fields[1])
		}
		return fields[0], n, nil
	default:
		return "", 0, fmt.Errorf("expected at most two arguments, got %d", len(fields))
	}
}

// ParseNameAndWord разбирает аргументы команд вида /mode [имя] слово.
func ParseNameAndWord(args string) (string, string, error) {
	fields := strings.Fields(args)
	switch len(fields) {
	case 1:
		return domain.DefaultReactorName, fields[0], nil
	case 2:
		if err := domain.ValidateReactorName(fields[0]); err != nil {
			return "", "", err
		}
		return fields[0], fields[1], nil
	default:
		return "", "", fmt.Errorf("expected one or two arguments, got %d", len(fields))
	}
}

// ParseNewArgs разбирает аргументы /new: обязательное имя и опциональный
// пресет.
func ParseNewArgs(args string) (name, preset string, err error) {
	fields := strings.Fields(args)
	switch len(fields) {
	case 1:
		name = fields[0]
	case 2:
		name = fields[0]
		preset = fields[1]
	default:
		return "", "", fmt.Errorf("expected one or two arguments, got %d", len(fields))
	}

	if err := domain.ValidateReactorName(name); err != nil {
		return "", "", err
	}
	return name, preset, nil
}

// ParseScenarioLine разбирает одну строку батча: три числа - режим single,
// четыре - режим split с долей разделения последним числом.
func ParseScenarioLine(line string) (domain.Scenario, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 && len(fields) != 4 {
		return domain.Scenario{}, fmt.Errorf("expected 3 or 4 numbers, got %d", len(fields))
	}

	values := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := parseQuantity(f)
		if err != nil {
			return domain.Scenario{}, err
		}
		values = append(values, v)
	}

	sc := domain.Scenario{
		InputA:     values[0],
		InputB:     values[1],
		Conversion: values[2],
		Mode:       domain.ModeSingle,
		SplitRatio: domain.DefaultSplitRatio,
	}
	if len(values) == 4 {
		sc.Mode = domain.ModeSplit
		sc.SplitRatio = values[3]
	}

	return sc, nil
}

// parseQuantity разбирает число, принимая запятую как десятичный
// разделитель. NaN и бесконечности отклоняются.
func parseQuantity(s string) (float64, error) {
	normalized := strings.Replace(s, ",", ".", 1)
	v, err := strconv.ParseFloat(normalized, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}
