package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kitbuilder587/reactor-bot/internal/domain"
)

// Instance - именованный реактор пользователя. Модель не синхронизируется
// сама, поэтому экземпляр несет одну блокировку и весь доступ к модели идет
// через методы ниже, держащие ее на время вызова.
type Instance struct {
	UserID    int64
	Name      string
	Preset    string
	CreatedAt time.Time

	mu      sync.Mutex
	reactor *domain.Reactor
	history []domain.RunRecord
}

func NewInstance(userID int64, name, preset string, r *domain.Reactor) *Instance {
	return &Instance{
		UserID:    userID,
		Name:      name,
		Preset:    preset,
		CreatedAt: time.Now(),
		reactor:   r,
	}
}

// With выполняет fn над моделью под блокировкой экземпляра.
func (i *Instance) With(fn func(r *domain.Reactor) error) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return fn(i.reactor)
}

// Run прогоняет реакцию и записывает результат в историю одной критической
// секцией, чтобы порядок истории совпадал с порядком прогонов.
func (i *Instance) Run(id string, now time.Time) domain.RunRecord {
	i.mu.Lock()
	defer i.mu.Unlock()

	outputs := i.reactor.RunReaction()
	a, b := i.reactor.Inputs()

	rec := domain.RunRecord{
		ID:         id,
		UserID:     i.UserID,
		Reactor:    i.Name,
		InputA:     a,
		InputB:     b,
		Conversion: i.reactor.Conversion(),
		Mode:       domain.ModeOf(i.reactor.TwoOutputs()),
		SplitRatio: i.reactor.SplitRatio(),
		Outputs:    outputs,
		RanAt:      now,
	}

	i.history = append(i.history, rec)
	if len(i.history) > domain.MaxRunHistory {
		i.history = i.history[len(i.history)-domain.MaxRunHistory:]
	}

	return rec
}

// Reset сбрасывает модель и очищает историю прогонов.
func (i *Instance) Reset() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.reactor.Reset()
	i.history = nil
}

// History возвращает копию истории, свежие записи первыми.
func (i *Instance) History(limit int) []domain.RunRecord {
	i.mu.Lock()
	defer i.mu.Unlock()

	n := len(i.history)
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]domain.RunRecord, 0, n)
	for idx := len(i.history) - 1; idx >= len(i.history)-n; idx-- {
		out = append(out, i.history[idx])
	}
	return out
}

// Snapshot - срез состояния экземпляра для отображения.
type Snapshot struct {
	Name       string
	Preset     string
	CreatedAt  time.Time
	InputA     float64
	InputB     float64
	Conversion float64
	Mode       domain.Mode
	SplitRatio float64
	Outputs    []float64
	Runs       int
}

func (i *Instance) Snapshot() Snapshot {
	i.mu.Lock()
	defer i.mu.Unlock()

	a, b := i.reactor.Inputs()
	return Snapshot{
		Name:       i.Name,
		Preset:     i.Preset,
		CreatedAt:  i.CreatedAt,
		InputA:     a,
		InputB:     b,
		Conversion: i.reactor.Conversion(),
		Mode:       domain.ModeOf(i.reactor.TwoOutputs()),
		SplitRatio: i.reactor.SplitRatio(),
		Outputs:    i.reactor.Outputs(),
		Runs:       len(i.history),
	}
}

// SortSnapshots упорядочивает снимки по имени для стабильных списков.
func SortSnapshots(snapshots []Snapshot) {
	sort.Slice(snapshots, func(a, b int) bool {
		return snapshots[a].Name < snapshots[b].Name
	})
}

// ReactorRepository - хранилище именованных реакторов по пользователям.
type ReactorRepository interface {
	Create(ctx context.Context, inst *Instance) error
	Get(ctx context.Context, userID int64, name string) (*Instance, error)
	ListByUser(ctx context.Context, userID int64) ([]*Instance, error)
	Delete(ctx context.Context, userID int64, name string) error
	CountByUser(ctx context.Context, userID int64) (int, error)
	CountAll(ctx context.Context) (int, error)
}
