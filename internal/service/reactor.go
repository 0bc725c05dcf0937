package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kitbuilder587/reactor-bot/internal/domain"
	"github.com/kitbuilder587/reactor-bot/internal/metrics"
	"github.com/kitbuilder587/reactor-bot/internal/repository"
)

// ReactorService - операции над именованными реакторами пользователя.
// Все мутации модели идут под блокировкой экземпляра; ошибки модели
// пробрасываются вызывающему без переупаковки.
type ReactorService interface {
	EnsureDefault(ctx context.Context, userID int64) (bool, error)
	Create(ctx context.Context, userID int64, name, presetName string) (repository.Snapshot, error)
	Remove(ctx context.Context, userID int64, name string) error
	List(ctx context.Context, userID int64) ([]repository.Snapshot, error)
	Status(ctx context.Context, userID int64, name string) (repository.Snapshot, error)
	SetInputs(ctx context.Context, userID int64, name string, a, b float64) error
	SetConversion(ctx context.Context, userID int64, name string, value float64) error
	SetSplitRatio(ctx context.Context, userID int64, name string, value float64) error
	SetMode(ctx context.Context, userID int64, name string, mode domain.Mode) error
	Run(ctx context.Context, userID int64, name string) (domain.RunRecord, error)
	Reset(ctx context.Context, userID int64, name string) error
	Output(ctx context.Context, userID int64, name string, index int) (float64, error)
	History(ctx context.Context, userID int64, name string, limit int) ([]domain.RunRecord, error)
	Presets() []domain.Preset
	DefaultPresetName() string
}

type reactorService struct {
	repo    repository.ReactorRepository
	catalog *PresetCatalog
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewReactorService(repo repository.ReactorRepository, catalog *PresetCatalog, logger *zap.Logger, m *metrics.Metrics) ReactorService {
	return &reactorService{
		repo:    repo,
		catalog: catalog,
		logger:  logger,
		metrics: m,
	}
}

// EnsureDefault создает реактор main из пресета по умолчанию, если у
// пользователя еще нет ни одного реактора. Возвращает true, если создал.
func (s *reactorService) EnsureDefault(ctx context.Context, userID int64) (bool, error) {
	count, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	preset := s.catalog.Default()
	if _, err := s.create(ctx, userID, domain.DefaultReactorName, preset); err != nil {
		// параллельный первый контакт мог успеть раньше
		if errors.Is(err, domain.ErrDuplicateReactor) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *reactorService) Create(ctx context.Context, userID int64, name, presetName string) (repository.Snapshot, error) {
	if err := domain.ValidateReactorName(name); err != nil {
		return repository.Snapshot{}, err
	}

	preset := s.catalog.Default()
	if presetName != "" {
		var err error
		preset, err = s.catalog.Get(presetName)
		if err != nil {
			return repository.Snapshot{}, err
		}
	}

	return s.create(ctx, userID, name, preset)
}

func (s *reactorService) create(ctx context.Context, userID int64, name string, preset domain.Preset) (repository.Snapshot, error) {
	reactor, err := preset.Build()
	if err != nil {
		return repository.Snapshot{}, err
	}

	inst := repository.NewInstance(userID, name, preset.Name, reactor)
	if err := s.repo.Create(ctx, inst); err != nil {
		return repository.Snapshot{}, err
	}

	s.logger.Info("reactor created",
		zap.Int64("user_id", userID),
		zap.String("reactor", name),
		zap.String("preset", preset.Name),
	)
	s.updateActiveReactors(ctx)

	return inst.Snapshot(), nil
}

func (s *reactorService) Remove(ctx context.Context, userID int64, name string) error {
	if err := s.repo.Delete(ctx, userID, name); err != nil {
		return err
	}

	s.logger.Info("reactor removed",
		zap.Int64("user_id", userID),
		zap.String("reactor", name),
	)
	s.updateActiveReactors(ctx)

	return nil
}

func (s *reactorService) List(ctx context.Context, userID int64) ([]repository.Snapshot, error) {
	instances, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	snapshots := make([]repository.Snapshot, 0, len(instances))
	for _, inst := range instances {
		snapshots = append(snapshots, inst.Snapshot())
	}
	repository.SortSnapshots(snapshots)

	return snapshots, nil
}

func (s *reactorService) Status(ctx context.Context, userID int64, name string) (repository.Snapshot, error) {
	inst, err := s.repo.Get(ctx, userID, name)
	if err != nil {
		return repository.Snapshot{}, err
	}
	return inst.Snapshot(), nil
}

func (s *reactorService) SetInputs(ctx context.Context, userID int64, name string, a, b float64) error {
	inst, err := s.repo.Get(ctx, userID, name)
	if err != nil {
		return err
	}
	return inst.With(func(r *domain.Reactor) error {
		return r.SetInputs(a, b)
	})
}

func (s *reactorService) SetConversion(ctx context.Context, userID int64, name string, value float64) error {
	inst, err := s.repo.Get(ctx, userID, name)
	if err != nil {
		return err
	}
	return inst.With(func(r *domain.Reactor) error {
		return r.SetConversion(value)
	})
}

func (s *reactorService) SetSplitRatio(ctx context.Context, userID int64, name string, value float64) error {
	inst, err := s.repo.Get(ctx, userID, name)
	if err != nil {
		return err
	}
	return inst.With(func(r *domain.Reactor) error {
		return r.SetSplitRatio(value)
	})
}

func (s *reactorService) SetMode(ctx context.Context, userID int64, name string, mode domain.Mode) error {
	if !mode.IsValid() {
		return domain.ErrInvalidMode
	}

	inst, err := s.repo.Get(ctx, userID, name)
	if err != nil {
		return err
	}
	return inst.With(func(r *domain.Reactor) error {
		r.SetTwoOutputs(mode.TwoOutputs())
		return nil
	})
}

func (s *reactorService) Run(ctx context.Context, userID int64, name string) (domain.RunRecord, error) {
	inst, err := s.repo.Get(ctx, userID, name)
	if err != nil {
		return domain.RunRecord{}, err
	}

	rec := inst.Run(uuid.New().String(), time.Now())

	s.logger.Info("reaction run",
		zap.Int64("user_id", userID),
		zap.String("reactor", name),
		zap.String("run_id", rec.ID),
		zap.String("mode", rec.Mode.String()),
	)
	if s.metrics != nil {
		s.metrics.RecordReactionRun(rec.Mode.String())
	}

	return rec, nil
}

func (s *reactorService) Reset(ctx context.Context, userID int64, name string) error {
	inst, err := s.repo.Get(ctx, userID, name)
	if err != nil {
		return err
	}

	inst.Reset()

	s.logger.Info("reactor reset",
		zap.Int64("user_id", userID),
		zap.String("reactor", name),
	)

	return nil
}

func (s *reactorService) Output(ctx context.Context, userID int64, name string, index int) (float64, error) {
	inst, err := s.repo.Get(ctx, userID, name)
	if err != nil {
		return 0, err
	}

	var value float64
	err = inst.With(func(r *domain.Reactor) error {
		var lastErr error
		value, lastErr = r.LastOutput(index)
		return lastErr
	})
	return value, err
}

func (s *reactorService) History(ctx context.Context, userID int64, name string, limit int) ([]domain.RunRecord, error) {
	inst, err := s.repo.Get(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	return inst.History(limit), nil
}

func (s *reactorService) Presets() []domain.Preset {
	return s.catalog.List()
}

func (s *reactorService) DefaultPresetName() string {
	return s.catalog.Default().Name
}

func (s *reactorService) updateActiveReactors(ctx context.Context) {
	if s.metrics == nil {
		return
	}
	total, err := s.repo.CountAll(ctx)
	if err != nil {
		s.logger.Warn("failed to count reactors", zap.Error(err))
		return
	}
	s.metrics.SetActiveReactors(float64(total))
}
