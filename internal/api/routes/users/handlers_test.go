package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/mock/gomock"

	apiError "github.com/recipevault/recipevault/internal/api/error"
	"github.com/recipevault/recipevault/internal/api/requestid"
	"github.com/recipevault/recipevault/internal/api/token"
	"github.com/recipevault/recipevault/internal/argon2id"
	"github.com/recipevault/recipevault/internal/database"
	dbmoc "github.com/recipevault/recipevault/internal/dbmock"
	"github.com/recipevault/recipevault/internal/env"
	"github.com/recipevault/recipevault/internal/log"
)

const (
	testAppSecret = "test-secret-32-bytes-long-123456"
	goodPassword  = "Sup3r$ecretPassword!"
)

func testCtx(t *testing.T, mockDB *dbmoc.MockQuerier, userID int64) context.Context {
	t.Helper()
	e := env.New(map[string]string{
		"APP_SECRET":         testAppSecret,
		"APP_SECRET_VERSION": "1",
	})
	e.Logger = log.NullLogger()
	e.Database = &database.Database{Querier: mockDB}

	ctx := requestid.InjectRequestID(context.Background(), 12345)
	if userID != 0 {
		ctx = token.UserIDWithCtx(ctx, userID)
	}
	return env.WithCtx(ctx, e)
}

func TestHandleCreateUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockDB := dbmoc.NewMockQuerier(ctrl)

	tests := []struct {
		name       string
		body       string
		setup      func()
		wantStatus int
		wantField  string
	}{
		{
			name: "created",
			body: `{"email":"cook@example.com","name":"Cook","password":"` + goodPassword + `"}`,
			setup: func() {
				mockDB.EXPECT().
					CreateUser(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, arg database.CreateUserParams) (database.User, error) {
						if arg.Email != "cook@example.com" || arg.Name != "Cook" {
							t.Errorf("unexpected params: %+v", arg)
						}
						if arg.PasswordHash == goodPassword || !strings.HasPrefix(arg.PasswordHash, "$argon2id$") {
							t.Errorf("expected an argon2id hash, got %q", arg.PasswordHash)
						}
						return database.User{ID: 1, Email: arg.Email, Name: arg.Name, PasswordHash: arg.PasswordHash}, nil
					})
			},
			wantStatus: 201,
		},
		{
			name:       "weak password",
			body:       `{"email":"cook@example.com","name":"Cook","password":"short"}`,
			setup:      func() {},
			wantStatus: 400,
			wantField:  "password",
		},
		{
			name:       "invalid email",
			body:       `{"email":"not-an-email","name":"Cook","password":"` + goodPassword + `"}`,
			setup:      func() {},
			wantStatus: 400,
			wantField:  "email",
		},
		{
			name: "duplicate email",
			body: `{"email":"cook@example.com","name":"Cook","password":"` + goodPassword + `"}`,
			setup: func() {
				mockDB.EXPECT().
					CreateUser(gomock.Any(), gomock.Any()).
					Return(database.User{}, &pgconn.PgError{Code: "23505"})
			},
			wantStatus: 400,
			wantField:  "email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()

			r := httptest.NewRequest(http.MethodPost, "/user/create", strings.NewReader(tt.body))
			r = r.WithContext(testCtx(t, mockDB, 0))
			w := httptest.NewRecorder()

			HandleCreateUser(w, r)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantField != "" {
				var apiErr apiError.Error
				if err := json.Unmarshal(w.Body.Bytes(), &apiErr); err != nil {
					t.Fatalf("failed to decode error body: %v", err)
				}
				if _, ok := apiErr.Fields[tt.wantField]; !ok {
					t.Errorf("expected field %q in %v", tt.wantField, apiErr.Fields)
				}
				return
			}

			var resp UserResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Email != "cook@example.com" {
				t.Errorf("unexpected response: %+v", resp)
			}
			if strings.Contains(w.Body.String(), "password") {
				t.Errorf("password material leaked in response: %s", w.Body.String())
			}
		})
	}
}

func TestHandleCreateToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockDB := dbmoc.NewMockQuerier(ctrl)

	hash, err := argon2id.EncodeHash(goodPassword, argon2id.DefaultParams)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	storedUser := database.User{ID: 1, Email: "cook@example.com", Name: "Cook", PasswordHash: hash}

	tests := []struct {
		name       string
		body       string
		setup      func()
		wantStatus int
		wantCode   string
	}{
		{
			name: "valid credentials",
			body: `{"email":"cook@example.com","password":"` + goodPassword + `"}`,
			setup: func() {
				mockDB.EXPECT().
					GetUserByEmail(gomock.Any(), "cook@example.com").
					Return(storedUser, nil)
			},
			wantStatus: 200,
		},
		{
			name: "wrong password",
			body: `{"email":"cook@example.com","password":"Wr0ng$Password!!"}`,
			setup: func() {
				mockDB.EXPECT().
					GetUserByEmail(gomock.Any(), "cook@example.com").
					Return(storedUser, nil)
			},
			wantStatus: 401,
			wantCode:   apiError.InvalidCredentials.String(),
		},
		{
			name: "unknown email",
			body: `{"email":"ghost@example.com","password":"` + goodPassword + `"}`,
			setup: func() {
				mockDB.EXPECT().
					GetUserByEmail(gomock.Any(), "ghost@example.com").
					Return(database.User{}, pgx.ErrNoRows)
			},
			wantStatus: 401,
			wantCode:   apiError.InvalidCredentials.String(),
		},
		{
			name:       "missing password",
			body:       `{"email":"cook@example.com"}`,
			setup:      func() {},
			wantStatus: 400,
		},
		{
			name: "database error",
			body: `{"email":"cook@example.com","password":"` + goodPassword + `"}`,
			setup: func() {
				mockDB.EXPECT().
					GetUserByEmail(gomock.Any(), "cook@example.com").
					Return(database.User{}, errors.New("database connection failed"))
			},
			wantStatus: 500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()

			r := httptest.NewRequest(http.MethodPost, "/user/token", strings.NewReader(tt.body))
			r = r.WithContext(testCtx(t, mockDB, 0))
			w := httptest.NewRecorder()

			HandleCreateToken(w, r)

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
				return
			}
			if tt.wantStatus == 200 {
				var resp TokenResponse
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				if resp.Token == "" {
					t.Errorf("expected a token in the response")
				}
			}
		})
	}
}

func TestHandleGetMe(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockDB := dbmoc.NewMockQuerier(ctrl)

	mockDB.EXPECT().
		GetUserByID(gomock.Any(), int64(123)).
		Return(database.User{ID: 123, Email: "cook@example.com", Name: "Cook", PasswordHash: "secret-hash"}, nil)

	r := httptest.NewRequest(http.MethodGet, "/user/me", nil)
	r = r.WithContext(testCtx(t, mockDB, 123))
	w := httptest.NewRecorder()

	HandleGetMe(w, r)

	if w.Code != 200 {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp UserResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != 123 || resp.Email != "cook@example.com" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if strings.Contains(w.Body.String(), "secret-hash") {
		t.Errorf("password hash leaked in response: %s", w.Body.String())
	}
}

func TestHandleUpdateMe(t *testing.T) {
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
			name: "rename only",
			body: `{"name":"New Name"}`,
			setup: func() {
				mockDB.EXPECT().
					UpdateUser(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, arg database.UpdateUserParams) (database.User, error) {
						if arg.ID != 123 || arg.Name == nil || *arg.Name != "New Name" {
							t.Errorf("unexpected params: %+v", arg)
						}
						if arg.PasswordHash != nil {
							t.Errorf("expected password untouched")
						}
						return database.User{ID: 123, Email: "cook@example.com", Name: *arg.Name}, nil
					})
			},
			wantStatus: 200,
		},
		{
			name: "password change is hashed",
			body: `{"password":"` + goodPassword + `"}`,
			setup: func() {
				mockDB.EXPECT().
					UpdateUser(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, arg database.UpdateUserParams) (database.User, error) {
						if arg.PasswordHash == nil || !strings.HasPrefix(*arg.PasswordHash, "$argon2id$") {
							t.Errorf("expected an argon2id hash, got %+v", arg.PasswordHash)
						}
						return database.User{ID: 123, Email: "cook@example.com", Name: "Cook"}, nil
					})
			},
			wantStatus: 200,
		},
		{
			name:       "weak new password",
			body:       `{"password":"short"}`,
			setup:      func() {},
			wantStatus: 400,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()

			r := httptest.NewRequest(http.MethodPatch, "/user/me", strings.NewReader(tt.body))
			r = r.WithContext(testCtx(t, mockDB, 123))
			w := httptest.NewRecorder()

			HandleUpdateMe(w, r)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
		})
	}
}
