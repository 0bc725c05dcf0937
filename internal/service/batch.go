package service

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kitbuilder587/reactor-bot/internal/cache"
	"github.com/kitbuilder587/reactor-bot/internal/domain"
	"github.com/kitbuilder587/reactor-bot/internal/metrics"
)

// BatchService считает пакеты сценариев what-if, не трогая именованные
// реакторы пользователя.
type BatchService interface {
	Process(ctx context.Context, userID int64, scenarios []domain.Scenario) (*BatchResult, error)
}

// BatchResult - итог обработки батча. Results идут в порядке сценариев.
type BatchResult struct {
	ID        string
	Results   []domain.ScenarioResult
	FromCache bool
	Elapsed   time.Duration
}

type BatchConfig struct {
	Workers      int
	MaxScenarios int
	CacheTTL     time.Duration
	Timeout      time.Duration
}

// BatchServiceDeps - зависимости для BatchService.
type BatchServiceDeps struct {
	Cache   cache.Cache
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	Config  BatchConfig
}

type batchService struct {
	cache   cache.Cache
	logger  *zap.Logger
	metrics *metrics.Metrics
	config  BatchConfig
}

func NewBatchService(deps BatchServiceDeps) BatchService {
	if deps.Config.Workers <= 0 {
		deps.Config.Workers = 4
	}
	if deps.Config.MaxScenarios <= 0 || deps.Config.MaxScenarios > domain.MaxBatchScenarios {
		deps.Config.MaxScenarios = domain.MaxBatchScenarios
	}
	if deps.Config.CacheTTL == 0 {
		deps.Config.CacheTTL = 10 * time.Minute
	}
	if deps.Config.Timeout == 0 {
		deps.Config.Timeout = 30 * time.Second
	}

	return &batchService{
		cache:   deps.Cache,
		logger:  deps.Logger,
		metrics: deps.Metrics,
		config:  deps.Config,
	}
}

func (s *batchService) Process(ctx context.Context, userID int64, scenarios []domain.Scenario) (*BatchResult, error) {
	startTime := time.Now()

	if s.metrics != nil {
		s.metrics.IncRequestsInFlight()
		defer s.metrics.DecRequestsInFlight()
	}

	// конфиг может только ужесточить доменный лимит
	if len(scenarios) > s.config.MaxScenarios {
		if s.metrics != nil {
			s.metrics.RecordBatch("validation_error", 0, time.Since(startTime))
		}
		return nil, domain.ErrBatchTooLarge
	}
	if err := domain.ValidateBatch(scenarios); err != nil {
		if s.metrics != nil {
			s.metrics.RecordBatch("validation_error", 0, time.Since(startTime))
		}
		return nil, err
	}

	batchID := uuid.New().String()
	cacheKey := s.cacheKey(scenarios)

	if s.cache != nil {
		if cached, ok := s.cache.Get(cacheKey); ok {
			if results, ok := cached.([]domain.ScenarioResult); ok {
				if s.metrics != nil {
					s.metrics.RecordCacheHit()
					s.metrics.RecordBatch("cache_hit", 0, time.Since(startTime))
				}
				s.logger.Debug("batch served from cache",
					zap.Int64("user_id", userID),
					zap.String("batch_id", batchID),
					zap.Int("scenarios", len(results)),
				)
				return &BatchResult{
					ID:        batchID,
					Results:   results,
					FromCache: true,
					Elapsed:   time.Since(startTime),
				}, nil
			}
		}
		if s.metrics != nil {
			s.metrics.RecordCacheMiss()
		}
	}

	results, err := s.evaluate(ctx, scenarios)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordBatch("error", 0, time.Since(startTime))
		}
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(cacheKey, results, s.config.CacheTTL)
	}

	s.logger.Info("batch processed",
		zap.Int64("user_id", userID),
		zap.String("batch_id", batchID),
		zap.Int("scenarios", len(scenarios)),
		zap.Duration("elapsed", time.Since(startTime)),
	)

	if s.metrics != nil {
		s.metrics.RecordBatch("success", len(scenarios), time.Since(startTime))
	}

	return &BatchResult{
		ID:      batchID,
		Results: results,
		Elapsed: time.Since(startTime),
	}, nil
}

// evaluate считает сценарии параллельно, сохраняя порядок по индексу.
func (s *batchService) evaluate(ctx context.Context, scenarios []domain.Scenario) ([]domain.ScenarioResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	results := make([]domain.ScenarioResult, len(scenarios))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)

	for i, sc := range scenarios {
		i, sc := i, sc // capture for goroutine
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := sc.Evaluate()
			if err != nil {
				return fmt.Errorf("scenario %d: %w", i+1, err)
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// cacheKey - детерминированный ключ по параметрам всех сценариев батча.
func (s *batchService) cacheKey(scenarios []domain.Scenario) string {
	var sb strings.Builder
	for _, sc := range scenarios {
		fmt.Fprintf(&sb, "%g|%g|%g|%s|%g\n", sc.InputA, sc.InputB, sc.Conversion, sc.Mode, sc.SplitRatio)
	}
	hash := sha256.Sum256([]byte(sb.String()))
	return fmt.Sprintf("batch:%x", hash[:8])
}
