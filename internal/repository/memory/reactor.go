package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/kitbuilder587/reactor-bot/internal/domain"
	"github.com/kitbuilder587/reactor-bot/internal/repository"
)

// ReactorRepository хранит реакторы в памяти. Это боевое хранилище:
// состояние живет только в процессе.
type ReactorRepository struct {
	mu       sync.RWMutex
	reactors map[int64]map[string]*repository.Instance // key: UserID -> Name
}

var _ repository.ReactorRepository = (*ReactorRepository)(nil)

func NewReactorRepository() *ReactorRepository {
	return &ReactorRepository{
		reactors: make(map[int64]map[string]*repository.Instance),
	}
}

func (m *ReactorRepository) Create(ctx context.Context, inst *repository.Instance) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	byUser, ok := m.reactors[inst.UserID]
	if !ok {
		byUser = make(map[string]*repository.Instance)
		m.reactors[inst.UserID] = byUser
	}

	if _, exists := byUser[inst.Name]; exists {
		return domain.ErrDuplicateReactor
	}
	if len(byUser) >= domain.MaxReactorsPerUser {
		return domain.ErrReactorLimitReached
	}

	byUser[inst.Name] = inst
	return nil
}

func (m *ReactorRepository) Get(ctx context.Context, userID int64, name string) (*repository.Instance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if inst, ok := m.reactors[userID][name]; ok {
		return inst, nil
	}
	return nil, domain.ErrReactorNotFound
}

func (m *ReactorRepository) ListByUser(ctx context.Context, userID int64) ([]*repository.Instance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byUser := m.reactors[userID]
	out := make([]*repository.Instance, 0, len(byUser))
	for _, inst := range byUser {
		out = append(out, inst)
	}

	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out, nil
}

func (m *ReactorRepository) Delete(ctx context.Context, userID int64, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.reactors[userID][name]; !ok {
		return domain.ErrReactorNotFound
	}
	delete(m.reactors[userID], name)
	return nil
}

func (m *ReactorRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.reactors[userID]), nil
}

func (m *ReactorRepository) CountAll(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := 0
	for _, byUser := range m.reactors {
		total += len(byUser)
	}
	return total, nil
}
