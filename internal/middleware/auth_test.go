package middleware

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"testing"
	"todoapi/internal/database"
	"todoapi/internal/utils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
)

func TestMain(m *testing.M) {
	_ = os.Setenv("JWT_SECRET", "todoapi_test_jwt_secret_key_1234567890")
	os.Exit(m.Run())
}

func setupMockDB(t *testing.T) (sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}

	previousDB := database.DB
	database.DB = db

	return mock, func() {
		database.DB = previousDB
		_ = db.Close()
	}
}

func newProtectedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(AuthMiddleware())
	router.GET("/protected", func(c *gin.Context) {
		userID, _ := c.Get(UserIDContextKey)
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	return router
}

func performWithHeader(t *testing.T, router *gin.Engine, header string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	resp := performWithHeader(t, newProtectedRouter(), "")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestAuthMiddlewareMalformedHeader(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	router := newProtectedRouter()
	for _, header := range []string{"Basic abc", "Bearer", "Bearer a b"} {
		resp := performWithHeader(t, router, header)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, resp.Code)
		}
	}
}

func TestAuthMiddlewareGarbageToken(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	resp := performWithHeader(t, newProtectedRouter(), "Bearer not-a-token")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestAuthMiddlewareResolvesUser(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	token, err := utils.GenerateToken("alice")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	mock.
		ExpectQuery(regexp.QuoteMeta(`SELECT id, role, enabled FROM users WHERE username = $1`)).
		WithArgs("alice").
		WillReturnRows(
			sqlmock.NewRows([]string{"id", "role", "enabled"}).
				AddRow(101, "ROLE_USER", true),
		)

	resp := performWithHeader(t, newProtectedRouter(), "Bearer "+token)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", resp.Code, resp.Body.String())
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

// A valid token whose user was deleted after issuance must stop resolving.
func TestAuthMiddlewareDeletedUser(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	token, err := utils.GenerateToken("ghost")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	mock.
		ExpectQuery(regexp.QuoteMeta(`SELECT id, role, enabled FROM users WHERE username = $1`)).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	resp := performWithHeader(t, newProtectedRouter(), "Bearer "+token)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestAuthMiddlewareDisabledUser(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	token, err := utils.GenerateToken("alice")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	mock.
		ExpectQuery(regexp.QuoteMeta(`SELECT id, role, enabled FROM users WHERE username = $1`)).
		WithArgs("alice").
		WillReturnRows(
			sqlmock.NewRows([]string{"id", "role", "enabled"}).
				AddRow(101, "ROLE_USER", false),
		)

	resp := performWithHeader(t, newProtectedRouter(), "Bearer "+token)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}
