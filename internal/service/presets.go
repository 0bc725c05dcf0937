package service

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/kitbuilder587/reactor-bot/internal/domain"
)

//go:embed seed_presets.json
var seedPresetsJSON []byte

type SeedPreset struct {
	Name       string  `json:"name"`
	Conversion float64 `json:"conversion"`
	Mode       string  `json:"mode"`
	SplitRatio float64 `json:"split_ratio"`
}

// PresetCatalog - объединенный каталог пресетов: встроенные плюс
// операторские. Операторский пресет с тем же именем перекрывает встроенный.
type PresetCatalog struct {
	presets     map[string]domain.Preset
	defaultName string
}

// NewPresetCatalog собирает каталог из встроенного списка и extra.
// defaultName обязан присутствовать в итоговом каталоге; пустое имя
// означает встроенный пресет по умолчанию.
func NewPresetCatalog(extra []domain.Preset, defaultName string) (*PresetCatalog, error) {
	if defaultName == "" {
		defaultName = domain.DefaultPreset().Name
	}

	seed, err := loadSeedPresets()
	if err != nil {
		return nil, fmt.Errorf("load seed presets: %w", err)
	}

	presets := make(map[string]domain.Preset, len(seed)+len(extra))
	for _, p := range seed {
		presets[p.Name] = p
	}
	for _, p := range extra {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("preset %q: %w", p.Name, err)
		}
		presets[p.Name] = p
	}

	if _, ok := presets[defaultName]; !ok {
		return nil, fmt.Errorf("default preset %q: %w", defaultName, domain.ErrUnknownPreset)
	}

	return &PresetCatalog{
		presets:     presets,
		defaultName: defaultName,
	}, nil
}

// Get возвращает пресет по имени.
func (c *PresetCatalog) Get(name string) (domain.Preset, error) {
	p, ok := c.presets[name]
	if !ok {
		return domain.Preset{}, domain.ErrUnknownPreset
	}
	return p, nil
}

// Default - пресет, используемый когда пользователь не назвал пресет.
func (c *PresetCatalog) Default() domain.Preset {
	return c.presets[c.defaultName]
}

// List возвращает все пресеты, отсортированные по имени.
func (c *PresetCatalog) List() []domain.Preset {
	out := make([]domain.Preset, 0, len(c.presets))
	for _, p := range c.presets {
		out = append(out, p)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out
}

func loadSeedPresets() ([]domain.Preset, error) {
	var seed []SeedPreset
	if err := json.Unmarshal(seedPresetsJSON, &seed); err != nil {
		return nil, err
	}

	out := make([]domain.Preset, 0, len(seed))
	for _, s := range seed {
		mode, err := domain.ParseMode(s.Mode)
		if err != nil {
			return nil, fmt.Errorf("seed preset %q: %w", s.Name, err)
		}

		p := domain.Preset{
			Name:       s.Name,
			Conversion: s.Conversion,
			Mode:       mode,
			SplitRatio: s.SplitRatio,
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("seed preset %q: %w", s.Name, err)
		}
		out = append(out, p)
	}

	return out, nil
}
