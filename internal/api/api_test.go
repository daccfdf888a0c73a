package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/mock/gomock"

	apiError "github.com/recipevault/recipevault/internal/api/error"
	"github.com/recipevault/recipevault/internal/api/token"
	"github.com/recipevault/recipevault/internal/database"
	dbmoc "github.com/recipevault/recipevault/internal/dbmock"
	"github.com/recipevault/recipevault/internal/env"
	"github.com/recipevault/recipevault/internal/jwt"
	"github.com/recipevault/recipevault/internal/log"
)

func testRouter(t *testing.T, mockDB *dbmoc.MockQuerier) (*env.Env, http.Handler) {
	t.Helper()
	e := env.New(map[string]string{
		"APP_SECRET":         "test-secret-32-bytes-long-123456",
		"APP_SECRET_VERSION": "1",
		"ENV":                "DEV",
		"HOST_ORIGIN":        "http://localhost:8080",
	})
	e.Logger = log.NullLogger()
	e.Database = &database.Database{Querier: mockDB}
	return e, NewRouter(e)
}

func TestPing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	_, router := testRouter(t, dbmoc.NewMockQuerier(ctrl))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if w.Code != 200 {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["message"] != "pong" {
		t.Errorf("unexpected body %v", body)
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	_, router := testRouter(t, dbmoc.NewMockQuerier(ctrl))

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/recipes/recipe/"},
		{http.MethodPost, "/recipes/recipe/"},
		{http.MethodGet, "/recipes/recipe/1/"},
		{http.MethodGet, "/recipes/tags/"},
		{http.MethodGet, "/recipes/ingredients/"},
		{http.MethodGet, "/user/me/"},
	}

	for _, tt := range paths {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			if w.Code != 401 {
				t.Fatalf("expected status 401, got %d: %s", w.Code, w.Body.String())
			}
			var apiErr apiError.Error
			if err := json.Unmarshal(w.Body.Bytes(), &apiErr); err != nil {
				t.Fatalf("failed to decode error body: %v", err)
			}
			if apiErr.Code != apiError.AuthenticationRequired {
				t.Errorf("expected code %s, got %s", apiError.AuthenticationRequired, apiErr.Code)
			}
		})
	}
}

func TestTrailingSlashesAccepted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockDB := dbmoc.NewMockQuerier(ctrl)
	e, router := testRouter(t, mockDB)

	accessToken, err := token.NewAccessToken(jwt.JWTParams{UserID: "123"}, e)
	if err != nil {
		t.Fatalf("failed to create access token: %v", err)
	}

	mockDB.EXPECT().
		ListRecipes(gomock.Any(), database.ListRecipesParams{UserID: 123}).
		Return([]database.Recipe{}, nil).
		Times(2)

	for _, path := range []string{"/recipes/recipe", "/recipes/recipe/"} {
		r := httptest.NewRequest(http.MethodGet, path, nil)
		r.Header.Set("Authorization", "Bearer "+accessToken)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, r)

		if w.Code != 200 {
			t.Errorf("GET %s: expected status 200, got %d: %s", path, w.Code, w.Body.String())
		}
	}
}

func TestUserCreateIsPublic(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	_, router := testRouter(t, dbmoc.NewMockQuerier(ctrl))

	// No Authorization header; validation still runs.
	r := httptest.NewRequest(http.MethodPost, "/user/create/", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, r)

	if w.Code != 400 {
		t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
	}
}
