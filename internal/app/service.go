// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/okian/attrition/internal/adapters/repository"
	"github.com/okian/attrition/internal/domain/analytics"
	"github.com/okian/attrition/internal/domain/idempotency"
	"github.com/okian/attrition/internal/domain/snapshot"
	"github.com/okian/attrition/pkg/logger"
	"github.com/okian/attrition/pkg/metrics"
)

// Default service configuration.
const (
	defaultDatabasePath      = "data/employee_attrition.db"
	defaultEmployeeListLimit = 50
	defaultIdempotencySize   = 10_000
	component                = "service"
)

// Service implements the API dependencies for the attrition dashboard.
type Service struct {
	mu sync.RWMutex

	// Core components
	store  repository.Store
	engine *analytics.Engine
	guard  idempotency.Guard

	// Configuration
	databasePath      string
	filterDimension   string
	employeeListLimit int
	idempotencySize   int
	ownsStore         bool

	// State
	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore injects a record store. The service does not close it on Stop.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithDatabasePath sets the SQLite database opened by Start.
func WithDatabasePath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.databasePath = path
		}
	}
}

// WithEngine sets the analytics engine.
func WithEngine(e *analytics.Engine) Option {
	return func(s *Service) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithFilterDimension sets the column DepartmentFilter narrows on.
func WithFilterDimension(dim string) Option {
	return func(s *Service) {
		if dim != "" {
			s.filterDimension = dim
		}
	}
}

// WithEmployeeListLimit caps Employees.
func WithEmployeeListLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.employeeListLimit = limit
		}
	}
}

// WithIdempotencySize bounds the remembered idempotency keys.
func WithIdempotencySize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.idempotencySize = size
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		engine:            analytics.NewEngine(),
		databasePath:      defaultDatabasePath,
		filterDimension:   analytics.DefaultFilterDimension,
		employeeListLimit: defaultEmployeeListLimit,
		idempotencySize:   defaultIdempotencySize,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start opens the record store and the idempotency guard.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting attrition service...")

	if s.store == nil {
		store, err := repository.NewSQLiteStore(ctx, s.databasePath,
			repository.WithMaxListLimit(s.employeeListLimit),
		)
		if err != nil {
			metrics.RecordErrorByComponent(component, "store_open")
			return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		s.store = store
		s.ownsStore = true
		s.logger.Info(ctx, "opened sqlite store", logger.String("path", s.databasePath))
	}

	guard, err := idempotency.NewGuard(idempotency.WithMaxSize(s.idempotencySize))
	if err != nil {
		return fmt.Errorf("create idempotency guard: %w", err)
	}
	s.guard = guard

	s.started = true
	s.logger.Info(ctx, "attrition service started",
		logger.String("filterDimension", s.filterDimension),
		logger.Int("employeeListLimit", s.employeeListLimit),
		logger.Int("idempotencySize", s.idempotencySize),
	)

	return nil
}

// Stop closes the store if the service opened it.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping attrition service...")

	if s.ownsStore && s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(context.Background(), "close store failed", logger.Error(err))
		}
		s.store = nil
		s.ownsStore = false
	}

	s.started = false
	s.logger.Info(context.Background(), "attrition service stopped")
}

func (s *Service) currentStore() repository.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil
	}
	return s.store
}

func (s *Service) log() logger.Logger {
	if s.logger != nil {
		return s.logger
	}
	return logger.Get()
}

// DepartmentFilter narrows on the configured filter dimension. An empty
// department selects everything.
func (s *Service) DepartmentFilter(department string) snapshot.Filter {
	if strings.TrimSpace(department) == "" {
		return snapshot.NoFilter
	}
	return snapshot.Eq(s.filterDimension, department)
}

// Refresh loads one snapshot and computes the bundle for filter. When the
// store cannot be read the bundle is computed over an empty snapshot.
func (s *Service) Refresh(ctx context.Context, filter snapshot.Filter) analytics.Bundle {
	start := time.Now()

	snap := s.loadSnapshot(ctx)
	bundle := s.engine.Refresh(snap, filter)

	metrics.RecordRefresh(bundle.FilterApplied, bundle.TotalRows, bundle.FilteredRows)
	metrics.RecordRefreshLatency(msSince(start))
	for name, reason := range bundle.Unavailable() {
		metrics.RecordMetricUnavailable(name)
		s.log().Debug(ctx, "metric unavailable",
			logger.String("metric", name),
			logger.String("reason", reason),
		)
	}

	s.log().Debug(ctx, "refreshed metrics",
		logger.String("snapshot", bundle.SnapshotID),
		logger.String("filter", filter.String()),
		logger.Int("rows", bundle.TotalRows),
		logger.Int("filteredRows", bundle.FilteredRows),
	)
	return bundle
}

func (s *Service) loadSnapshot(ctx context.Context) *snapshot.Snapshot {
	store := s.currentStore()
	if store == nil {
		s.log().Warn(ctx, "record store not available, using empty snapshot")
		metrics.RecordErrorByComponent(component, "store_unavailable")
		return snapshot.Empty()
	}
	snap, err := store.LoadSnapshot(ctx)
	if err != nil {
		s.log().Warn(ctx, "load snapshot failed, using empty snapshot", logger.Error(err))
		metrics.RecordErrorByComponent(component, "store_unavailable")
		return snapshot.Empty()
	}
	return snap
}

// Departments returns the department names for the filter selector.
func (s *Service) Departments(ctx context.Context) ([]string, error) {
	store := s.currentStore()
	if store == nil {
		return nil, ErrNotStarted
	}
	deps, err := store.Departments(ctx)
	if err != nil {
		return nil, fmt.Errorf("departments: %w", err)
	}
	if deps == nil {
		deps = []string{}
	}
	return deps, nil
}

// Employees returns the employee table. limit <= 0 or above the configured
// cap uses the cap.
func (s *Service) Employees(ctx context.Context, limit int) ([]repository.EmployeeRow, error) {
	store := s.currentStore()
	if store == nil {
		return nil, ErrNotStarted
	}
	if limit <= 0 || limit > s.employeeListLimit {
		limit = s.employeeListLimit
	}
	return store.ListEmployees(ctx, limit)
}

// AddEmployee inserts an employee. A non-empty key makes the call
// idempotent: repeating it returns the first id with replayed set.
func (s *Service) AddEmployee(ctx context.Context, key string, e repository.NewEmployee) (int64, bool, error) {
	store := s.currentStore()
	if store == nil {
		return 0, false, ErrNotStarted
	}
	if key == "" {
		id, err := store.InsertRecord(ctx, e)
		if err != nil {
			return 0, false, err
		}
		s.log().Info(ctx, "employee added", logger.Any("id", id), logger.String("department", e.Department))
		return id, false, nil
	}

	id, status, err := s.guard.Reserve(ctx, key)
	if err != nil {
		return 0, false, fmt.Errorf("add employee: %w", err)
	}
	switch status {
	case idempotency.Replay:
		metrics.RecordIdempotentReplay()
		s.log().Debug(ctx, "replayed employee create", logger.String("key", key), logger.Any("id", id))
		return id, true, nil
	case idempotency.InFlight:
		return 0, false, idempotency.ErrInFlight
	}

	id, err = store.InsertRecord(ctx, e)
	if err != nil {
		s.guard.Release(ctx, key)
		return 0, false, err
	}
	if err := s.guard.Commit(ctx, key, id); err != nil {
		return 0, false, err
	}
	metrics.UpdateIdempotencyKeys(s.guard.Size())
	s.log().Info(ctx, "employee added",
		logger.Any("id", id),
		logger.String("department", e.Department),
		logger.String("key", key),
	)
	return id, false, nil
}

// UpdateField sets one column of one employee.
func (s *Service) UpdateField(ctx context.Context, id int64, field string, value any) error {
	store := s.currentStore()
	if store == nil {
		return ErrNotStarted
	}
	if err := store.UpdateField(ctx, id, field, value); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log().Warn(ctx, "update field failed",
				logger.Any("id", id),
				logger.String("field", field),
				logger.Error(err),
			)
		}
		return err
	}
	s.log().Info(ctx, "employee updated", logger.Any("id", id), logger.String("field", field))
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":           s.started,
		"databasePath":      s.databasePath,
		"filterDimension":   s.filterDimension,
		"groupDimensions":   s.engine.GroupDimensions(),
		"employeeListLimit": s.employeeListLimit,
		"idempotencySize":   s.idempotencySize,
	}

	if s.started {
		if n, err := s.store.Count(ctx); err == nil {
			stats["totalEmployees"] = n
		} else {
			stats["storeError"] = err.Error()
		}
		keys := s.guard.Size()
		stats["idempotencyKeys"] = keys
		metrics.UpdateIdempotencyKeys(keys)
	}

	return stats
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
