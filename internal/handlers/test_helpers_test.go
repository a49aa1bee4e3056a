package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"todoapi/internal/database"
	"todoapi/internal/middleware"
	"todoapi/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
)

const testJWTSecret = "todoapi_test_jwt_secret_key_1234567890"

func TestMain(m *testing.M) {
	_ = os.Setenv("JWT_SECRET", testJWTSecret)
	code := m.Run()
	os.Exit(code)
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}

	previousDB := database.DB
	database.DB = db

	cleanup := func() {
		database.DB = previousDB
		_ = db.Close()
	}

	return db, mock, cleanup
}

func withTestUser(userID int, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDContextKey, userID)
		c.Set(middleware.UserRoleContextKey, role)
		c.Next()
	}
}

func withTestUserID(userID int) gin.HandlerFunc {
	return withTestUser(userID, models.RoleUser)
}

func performJSON(t *testing.T, router *gin.Engine, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json.Marshal: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func decodeEnvelope(t *testing.T, resp *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	return out
}

func mustStatus(t *testing.T, actual int, expected int) {
	t.Helper()
	if actual != expected {
		t.Fatalf("expected status %d, got %d", expected, actual)
	}
}

func expectHTTP200(t *testing.T, status int) {
	t.Helper()
	mustStatus(t, status, http.StatusOK)
}
