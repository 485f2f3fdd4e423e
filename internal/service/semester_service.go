package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ElCzar/secchub-backend-sub001/internal/models"
	"github.com/ElCzar/secchub-backend-sub001/internal/repository"
	appErrors "github.com/ElCzar/secchub-backend-sub001/pkg/errors"
)

// CurrentSemesterCacheKey prefixes the cached current semester. Entries are versioned by the
// counter at currentSemesterGenerationKey, which every activation advances after commit.
const CurrentSemesterCacheKey = "semester:current"

const currentSemesterGenerationKey = "semester:generation"

func currentSemesterKey(gen int64) string {
	return fmt.Sprintf("%s:%d", CurrentSemesterCacheKey, gen)
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type semesterRepository interface {
	FindByID(ctx context.Context, id string) (*models.Semester, error)
	FindCurrent(ctx context.Context) (*models.Semester, error)
	List(ctx context.Context) ([]models.Semester, error)
	ListPast(ctx context.Context) ([]models.Semester, error)
	LockCurrentWithTx(ctx context.Context, tx *sqlx.Tx) error
	ClearCurrentWithTx(ctx context.Context, tx *sqlx.Tx) error
	CreateWithTx(ctx context.Context, tx *sqlx.Tx, semester *models.Semester) error
}

type planningFlagResetter interface {
	ResetPlanningClosedWithTx(ctx context.Context, tx *sqlx.Tx) error
}

type semesterCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Evict(ctx context.Context, keys ...string) error
	Generation(ctx context.Context, key string) (int64, error)
	Bump(ctx context.Context, key string) (int64, error)
}

// SemesterService manages semesters and the single current semester.
type SemesterService struct {
	semesters semesterRepository
	sections  planningFlagResetter
	tx        txProvider
	cache     semesterCache
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
}

// NewSemesterService constructs a SemesterService. cache may be nil.
func NewSemesterService(semesters semesterRepository, sections planningFlagResetter, tx txProvider, cache semesterCache, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *SemesterService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SemesterService{
		semesters: semesters,
		sections:  sections,
		tx:        tx,
		cache:     cache,
		cacheTTL:  cacheTTL,
		validator: validate,
		logger:    logger,
	}
}

// Create opens a new semester and makes it the only current one. Planning is reopened for
// every section in the same transaction, and the cache generation is advanced before the call
// returns, so a refill racing with the commit lands under a generation nobody reads.
func (s *SemesterService) Create(ctx context.Context, req models.CreateSemesterRequest) (*models.Semester, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "year, period, start date and end date are required")
	}
	if !req.StartDate.Before(*req.EndDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start date must be before end date")
	}

	semester := &models.Semester{
		Year:             *req.Year,
		Period:           *req.Period,
		StartDate:        *req.StartDate,
		EndDate:          *req.EndDate,
		StartSpecialWeek: req.StartSpecialWeek,
		IsCurrent:        true,
	}

	if err := s.activate(ctx, semester); err != nil {
		return nil, err
	}

	if s.cache != nil {
		gen, err := s.cache.Bump(ctx, currentSemesterGenerationKey)
		if err != nil {
			s.logger.Error("current semester cache not invalidated", zap.String("semester_id", semester.ID), zap.Error(err))
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to refresh current semester")
		}
		if gen > 0 {
			if err := s.cache.Evict(ctx, currentSemesterKey(gen-1)); err != nil {
				s.logger.Warn("stale current semester entry left to expire", zap.Int64("generation", gen-1), zap.Error(err))
			}
		}
	}

	s.metrics.RecordSemesterActivation()
	s.logger.Info("semester activated", zap.String("semester_id", semester.ID), zap.Int("year", semester.Year), zap.Int("period", semester.Period))
	return semester, nil
}

func (s *SemesterService) activate(ctx context.Context, semester *models.Semester) (err error) {
	tx, err := s.tx.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to start semester transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.semesters.LockCurrentWithTx(ctx, tx); err != nil {
		return s.mapActivationError(err)
	}
	if err = s.semesters.ClearCurrentWithTx(ctx, tx); err != nil {
		return s.mapActivationError(err)
	}
	if err = s.semesters.CreateWithTx(ctx, tx, semester); err != nil {
		return s.mapActivationError(err)
	}
	if err = s.sections.ResetPlanningClosedWithTx(ctx, tx); err != nil {
		return s.mapActivationError(err)
	}
	if err = tx.Commit(); err != nil {
		return s.mapActivationError(err)
	}
	return nil
}

func (s *SemesterService) mapActivationError(err error) error {
	if errors.Is(err, repository.ErrDuplicate) || repository.IsSerializationFailure(err) {
		return appErrors.Clone(appErrors.ErrConflict, "another semester was activated concurrently")
	}
	s.logger.Error("semester activation failed", zap.Error(err))
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create semester")
}

// GetCurrent returns the current semester, reading through the cache. The generation is read
// before the database so a refill can never outlive a later activation.
func (s *SemesterService) GetCurrent(ctx context.Context) (*models.Semester, error) {
	cacheKey := ""
	if s.cache != nil {
		if gen, err := s.cache.Generation(ctx, currentSemesterGenerationKey); err == nil {
			cacheKey = currentSemesterKey(gen)
			var cached models.Semester
			hit, err := s.cache.Get(ctx, cacheKey, &cached)
			if err == nil && hit {
				return &cached, nil
			}
		}
	}

	semester, err := s.semesters.FindCurrent(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no current semester")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load current semester")
	}

	if cacheKey != "" {
		_ = s.cache.Set(ctx, cacheKey, semester, s.cacheTTL)
	}
	return semester, nil
}

// CurrentID returns the id of the current semester.
func (s *SemesterService) CurrentID(ctx context.Context) (string, error) {
	semester, err := s.GetCurrent(ctx)
	if err != nil {
		return "", err
	}
	return semester.ID, nil
}

// Get returns a semester by id.
func (s *SemesterService) Get(ctx context.Context, id string) (*models.Semester, error) {
	semester, err := s.semesters.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "semester not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
	}
	return semester, nil
}

// List returns every semester, newest first.
func (s *SemesterService) List(ctx context.Context) ([]models.Semester, error) {
	semesters, err := s.semesters.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list semesters")
	}
	return semesters, nil
}

// ListPast returns every semester except the current one.
func (s *SemesterService) ListPast(ctx context.Context) ([]models.Semester, error) {
	semesters, err := s.semesters.ListPast(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list past semesters")
	}
	return semesters, nil
}

// WithMetrics attaches planning counters. A nil service disables them.
func (s *SemesterService) WithMetrics(m *MetricsService) *SemesterService {
	s.metrics = m
	return s
}
