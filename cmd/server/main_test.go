package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asap-project/pickuplines/internal/storage"
)

// fakeObjStorage — заглушка объектного хранилища для тестов сборки зависимостей.
type fakeObjStorage struct{}

func (fakeObjStorage) UploadObject(context.Context, string, io.Reader, int64, string) error {
	return nil
}

func (fakeObjStorage) DownloadObject(context.Context, string) (io.ReadCloser, error) {
	return nil, errors.New("not implemented")
}

// withStubbedDeps подменяет внешние зависимости на заглушки и восстанавливает
// их по завершении теста.
func withStubbedDeps(t *testing.T, db *sqlx.DB, migrateErr, storageErr error) {
	t.Helper()
	oldNewPostgresDB := newPostgresDB
	oldRunMigrations := runMigrations
	oldNewObjStorage := newObjStorage
	t.Cleanup(func() {
		newPostgresDB = oldNewPostgresDB
		runMigrations = oldRunMigrations
		newObjStorage = oldNewObjStorage
	})

	newPostgresDB = func(string) (*sqlx.DB, error) {
		if db == nil {
			return nil, errors.New("ошибка подключения к БД")
		}
		return db, nil
	}
	runMigrations = func(context.Context, *sql.DB) error {
		return migrateErr
	}
	newObjStorage = func(storage.MinioConfig) (storage.ObjectStorage, error) {
		if storageErr != nil {
			return nil, storageErr
		}
		return fakeObjStorage{}, nil
	}
}

func testConfig() *config {
	return &config{
		Port:        "8080",
		DatabaseDSN: "postgres://localhost/test",
		JWTSecret:   "test-secret",
	}
}

func TestSetupDependencies(t *testing.T) {
	t.Run("Успешная инициализация", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		sqlxDB := sqlx.NewDb(db, "sqlmock")
		withStubbedDeps(t, sqlxDB, nil, nil)

		deps, err := setupDependencies(testConfig())
		require.NoError(t, err)
		require.NotNil(t, deps)
		assert.NotNil(t, deps.db)
		assert.NotNil(t, deps.objStorage)
		assert.NotNil(t, deps.authService)
		assert.NotNil(t, deps.authHandler)
		assert.NotNil(t, deps.lineHandler)
		assert.NotNil(t, deps.exportHandler)
	})

	t.Run("Ошибка подключения к БД", func(t *testing.T) {
		withStubbedDeps(t, nil, nil, nil)

		deps, err := setupDependencies(testConfig())
		require.Error(t, err)
		assert.Nil(t, deps)
		assert.Contains(t, err.Error(), "ошибка инициализации БД")
	})

	t.Run("Ошибка применения миграций", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		sqlxDB := sqlx.NewDb(db, "sqlmock")
		mock.ExpectClose()
		withStubbedDeps(t, sqlxDB, errors.New("миграция не применилась"), nil)

		deps, err := setupDependencies(testConfig())
		require.Error(t, err)
		assert.Nil(t, deps)
		assert.Contains(t, err.Error(), "ошибка применения миграций")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Ошибка инициализации MinIO", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		sqlxDB := sqlx.NewDb(db, "sqlmock")
		mock.ExpectClose()
		withStubbedDeps(t, sqlxDB, nil, errors.New("bucket недоступен"))

		deps, err := setupDependencies(testConfig())
		require.Error(t, err)
		assert.Nil(t, deps)
		assert.Contains(t, err.Error(), "ошибка инициализации клиента MinIO")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSetupRouter(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "sqlmock")
	withStubbedDeps(t, sqlxDB, nil, nil)

	deps, err := setupDependencies(testConfig())
	require.NoError(t, err)

	r := setupRouter(deps)
	require.NotNil(t, r)

	// Собираем все зарегистрированные маршруты
	registered := map[string]bool{}
	walkFn := func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		registered[method+" "+route] = true
		return nil
	}
	require.NoError(t, chi.Walk(r, walkFn))

	expectedRoutes := []string{
		"GET /",
		"GET /ping",
		"POST /api/register",
		"POST /api/login",
		"POST /api/logout",
		"GET /api/lines/",
		"GET /api/lines/{lineID}",
		"POST /api/lines/",
		"PUT /api/lines/{lineID}",
		"DELETE /api/lines/{lineID}",
		"POST /api/lines/export",
		"GET /api/lines/export/latest",
	}
	for _, route := range expectedRoutes {
		assert.True(t, registered[route], "маршрут %s не зарегистрирован", route)
	}
}

func TestHomeHandler(t *testing.T) {
	t.Run("БД подключена", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		sqlxDB := sqlx.NewDb(db, "sqlmock")

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rr := httptest.NewRecorder()

		homeHandler(sqlxDB)(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp struct {
			Message        string `json:"message"`
			DatabaseStatus string `json:"databaseStatus"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "Welcome to the ASAP Project!", resp.Message)
		assert.Equal(t, "Connected", resp.DatabaseStatus)
	})

	t.Run("БД не подключена", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rr := httptest.NewRecorder()

		homeHandler(nil)(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp struct {
			DatabaseStatus string `json:"databaseStatus"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "Not Connected", resp.DatabaseStatus)
	})
}

func TestGetEnv(t *testing.T) {
	t.Run("Переменная установлена", func(t *testing.T) {
		t.Setenv("TEST_GETENV_KEY", "значение")
		assert.Equal(t, "значение", getEnv("TEST_GETENV_KEY", "запасное"))
	})

	t.Run("Переменная не установлена", func(t *testing.T) {
		assert.Equal(t, "запасное", getEnv("TEST_GETENV_MISSING_KEY", "запасное"))
	})
}
