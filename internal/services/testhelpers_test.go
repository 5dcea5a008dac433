package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ksys/admission-service/internal/cache"
	"github.com/ksys/admission-service/internal/events"
	"github.com/ksys/admission-service/internal/models"
	"github.com/ksys/admission-service/internal/repositories"
	"github.com/ksys/admission-service/internal/repositories/postgres"
	"github.com/ksys/admission-service/internal/validator"
)

const (
	superAdmin  = "root-admin"
	helperAdmin = "helper-admin"
	outsider    = "plain-user"
)

type fakeUsers struct {
	known map[string]bool
	err   error
}

func (f *fakeUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if !f.known[id] {
		return nil, repositories.ErrNotFound
	}
	return &models.User{ID: id}, nil
}

func (f *fakeUsers) ExistsByID(ctx context.Context, id string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.known[id], nil
}

type fakeBlobs struct {
	stored map[string][]byte
	err    error
}

func (f *fakeBlobs) Put(ctx context.Context, name, contentType string, data []byte) (*repositories.BlobObject, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.stored[name] = data
	return &repositories.BlobObject{Name: name, URL: "https://cdn.test/" + name, ContentType: contentType, Size: int64(len(data))}, nil
}

func (f *fakeBlobs) Delete(ctx context.Context, name string) error {
	delete(f.stored, name)
	return nil
}

type testEnv struct {
	db        *gorm.DB
	repo      repositories.Repository
	users     *fakeUsers
	blobs     *fakeBlobs
	publisher *events.MockEventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithCache(t, cache.NewCacheManager(nil, 0))
}

// newCachedTestEnv backs the repositories with miniredis
func newCachedTestEnv(t *testing.T) (*testEnv, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return newTestEnvWithCache(t, cache.NewCacheManager(client, 0)), mr
}

func newTestEnvWithCache(t *testing.T, cm *cache.CacheManager) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := postgres.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	users := &fakeUsers{known: map[string]bool{superAdmin: true, helperAdmin: true, outsider: true}}
	blobs := &fakeBlobs{stored: map[string][]byte{}}
	repo := postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{DB: db, Cache: cm, User: users, Blob: blobs})

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	// Seed the roster directly so tests start from a known state
	if err := repo.Admin().Create(context.Background(), nil, &models.Admin{Principal: superAdmin, IsSuperAdmin: true}); err != nil {
		t.Fatalf("seed super admin: %v", err)
	}
	if err := repo.Admin().Create(context.Background(), nil, &models.Admin{Principal: helperAdmin, AddedBy: superAdmin}); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	return &testEnv{
		db:        db,
		repo:      repo,
		users:     users,
		blobs:     blobs,
		publisher: events.NewMockEventPublisher(log),
		logger:    log,
		validator: validator.New(),
	}
}

func (e *testEnv) candidates(year int) *candidateService {
	svc := NewCandidateService(e.repo, e.db, e.logger, e.validator, e.publisher).(*candidateService)
	svc.now = func() time.Time { return time.Date(year, time.March, 1, 10, 0, 0, 0, time.UTC) }
	return svc
}

func form(name, mobile string) *AdmissionSubmitRequest {
	return &AdmissionSubmitRequest{
		FullName:    name,
		FatherName:  "Father " + name,
		DateOfBirth: "2002-06-30",
		Mobile:      mobile,
		Address:     "12 Station Road, Jaipur",
	}
}

func assertPermissionError(t *testing.T, err error) {
	t.Helper()
	var pe *PermissionError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PermissionError, got %v", err)
	}
}
