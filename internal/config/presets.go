package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kitbuilder587/reactor-bot/internal/domain"
)

// PresetsFile - операторский файл пресетов. Записи перекрывают встроенный
// каталог по имени.
type PresetsFile struct {
	Presets []PresetEntry `yaml:"presets"`
}

type PresetEntry struct {
	Name       string  `yaml:"name"`
	Conversion float64 `yaml:"conversion"`
	Mode       string  `yaml:"mode"`
	SplitRatio float64 `yaml:"split_ratio"`
}

// LoadPresets читает пресеты из YAML-файла. Пустой путь - пресетов нет.
// Любая невалидная запись отклоняет весь файл; пропущенный mode означает
// single.
func LoadPresets(path string) ([]domain.Preset, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presets file: %w", err)
	}

	var file PresetsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse presets file: %w", err)
	}

	out := make([]domain.Preset, 0, len(file.Presets))
	for _, e := range file.Presets {
		mode := domain.ModeSingle
		if e.Mode != "" {
			mode, err = domain.ParseMode(e.Mode)
			if err != nil {
				return nil, fmt.Errorf("preset %q: %w", e.Name, err)
			}
		}

		p := domain.Preset{
			Name:       e.Name,
			Conversion: e.Conversion,
			Mode:       mode,
			SplitRatio: e.SplitRatio,
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("preset %q: %w", e.Name, err)
		}
		out = append(out, p)
	}

	return out, nil
}
