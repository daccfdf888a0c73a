package ingredients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"go.uber.org/mock/gomock"

	apiError "github.com/recipevault/recipevault/internal/api/error"
	"github.com/recipevault/recipevault/internal/api/requestid"
	"github.com/recipevault/recipevault/internal/api/token"
	"github.com/recipevault/recipevault/internal/database"
	dbmoc "github.com/recipevault/recipevault/internal/dbmock"
	"github.com/recipevault/recipevault/internal/env"
	"github.com/recipevault/recipevault/internal/log"
)

func testCtx(t *testing.T, mockDB *dbmoc.MockQuerier, userID int64) context.Context {
	t.Helper()
	ctx := requestid.InjectRequestID(context.Background(), 12345)
	ctx = token.UserIDWithCtx(ctx, userID)
	return env.WithCtx(ctx, &env.Env{
		Logger:   log.NullLogger(),
		Database: &database.Database{Querier: mockDB},
	})
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestHandleListIngredients(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockDB := dbmoc.NewMockQuerier(ctrl)

	tests := []struct {
		name    string
		query   string
		setup   func()
		wantLen int
	}{
		{
			name:  "all ingredients",
			query: "",
			setup: func() {
				mockDB.EXPECT().
					ListIngredients(gomock.Any(), database.ListIngredientsParams{UserID: 123}).
					Return([]database.Ingredient{
						{ID: 2, UserID: 123, Name: "salt"},
						{ID: 1, UserID: 123, Name: "pepper"},
					}, nil)
			},
			wantLen: 2,
		},
		{
			name:  "assigned only",
			query: "?assigned_only=1",
			setup: func() {
				mockDB.EXPECT().
					ListIngredients(gomock.Any(), database.ListIngredientsParams{UserID: 123, AssignedOnly: true}).
					Return([]database.Ingredient{{ID: 1, UserID: 123, Name: "pepper"}}, nil)
			},
			wantLen: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()

			r := httptest.NewRequest(http.MethodGet, "/recipes/ingredients"+tt.query, nil)
			r = r.WithContext(testCtx(t, mockDB, 123))
			w := httptest.NewRecorder()

			HandleListIngredients(w, r)

			if w.Code != 200 {
				t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
			}
			var resp []IngredientResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if len(resp) != tt.wantLen {
				t.Errorf("expected %d ingredients, got %d", tt.wantLen, len(resp))
			}
		})
	}
}

func TestHandleCreateIngredient(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockDB := dbmoc.NewMockQuerier(ctrl)

	tests := []struct {
		name       string
		body       string
		setup      func()
		wantStatus int
	}{
		{
			name: "created",
			body: `{"name":"cumin"}`,
			setup: func() {
				mockDB.EXPECT().
					CreateIngredient(gomock.Any(), database.CreateIngredientParams{UserID: 123, Name: "cumin"}).
					Return(database.Ingredient{ID: 4, UserID: 123, Name: "cumin"}, nil)
			},
			wantStatus: 201,
		},
		{
			name:       "missing name",
			body:       `{}`,
			setup:      func() {},
			wantStatus: 400,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()

			r := httptest.NewRequest(http.MethodPost, "/recipes/ingredients", strings.NewReader(tt.body))
			r = r.WithContext(testCtx(t, mockDB, 123))
			w := httptest.NewRecorder()

			HandleCreateIngredient(w, r)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestHandleUpdateIngredient(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockDB := dbmoc.NewMockQuerier(ctrl)

	tests := []struct {
		name       string
		setup      func()
		wantStatus int
		wantCode   string
	}{
		{
			name: "renamed",
			setup: func() {
				mockDB.EXPECT().
					UpdateIngredient(gomock.Any(), database.UpdateIngredientParams{ID: 4, UserID: 123, Name: "coriander"}).
					Return(database.Ingredient{ID: 4, UserID: 123, Name: "coriander"}, nil)
			},
			wantStatus: 200,
		},
		{
			name: "not owned looks missing",
			setup: func() {
				mockDB.EXPECT().
					UpdateIngredient(gomock.Any(), gomock.Any()).
					Return(database.Ingredient{}, pgx.ErrNoRows)
			},
			wantStatus: 404,
			wantCode:   apiError.IngredientNotFound.String(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()

			r := httptest.NewRequest(http.MethodPatch, "/recipes/ingredients/4", strings.NewReader(`{"name":"coriander"}`))
			r = r.WithContext(testCtx(t, mockDB, 123))
			r = withURLParam(r, "ingredientID", "4")
			w := httptest.NewRecorder()

			HandleUpdateIngredient(w, r)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantCode != "" {
				var apiErr apiError.Error
				if err := json.Unmarshal(w.Body.Bytes(), &apiErr); err != nil {
					t.Fatalf("failed to decode error body: %v", err)
				}
				if apiErr.Code.String() != tt.wantCode {
					t.Errorf("expected code %s, got %s", tt.wantCode, apiErr.Code)
				}
			}
		})
	}
}

func TestHandleDeleteIngredient(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockDB := dbmoc.NewMockQuerier(ctrl)

	tests := []struct {
		name       string
		setup      func()
		wantStatus int
	}{
		{
			name: "deleted",
			setup: func() {
				mockDB.EXPECT().
					DeleteIngredient(gomock.Any(), database.DeleteIngredientParams{ID: 4, UserID: 123}).
					Return(nil)
			},
			wantStatus: 204,
		},
		{
			name: "not owned looks missing",
			setup: func() {
				mockDB.EXPECT().
					DeleteIngredient(gomock.Any(), database.DeleteIngredientParams{ID: 4, UserID: 123}).
					Return(pgx.ErrNoRows)
			},
			wantStatus: 404,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()

			r := httptest.NewRequest(http.MethodDelete, "/recipes/ingredients/4", nil)
			r = r.WithContext(testCtx(t, mockDB, 123))
			r = withURLParam(r, "ingredientID", "4")
			w := httptest.NewRecorder()

			HandleDeleteIngredient(w, r)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
		})
	}
}
