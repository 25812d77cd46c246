package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"eventrate/internal/config"
	"eventrate/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock of the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, userID uint, passwordHash string) error {
	args := m.Called(ctx, userID, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateRecoveryCode(ctx context.Context, userID uint, code string) error {
	args := m.Called(ctx, userID, code)
	return args.Error(0)
}

func (m *MockUserRepository) HasConflict(ctx context.Context, excludeID uint, username, email string) (bool, error) {
	args := m.Called(ctx, excludeID, username, email)
	return args.Bool(0), args.Error(1)
}

// MockResetTokenRepository is a mock of the ResetTokenRepository interface
type MockResetTokenRepository struct {
	mock.Mock
}

func (m *MockResetTokenRepository) Replace(ctx context.Context, token *models.PasswordResetToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockResetTokenRepository) GetByToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PasswordResetToken), args.Error(1)
}

func (m *MockResetTokenRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockResetTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) *http.Response {
	t.Helper()
	encoded, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(encoded))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func jsonBody(t *testing.T, v interface{}) *bytes.Reader {
	t.Helper()
	encoded, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(encoded)
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestRegister(t *testing.T) {
	app := fiber.New()
	mockRepo := new(MockUserRepository)

	s := &Server{
		config:   &config.Config{JWTSecret: "test_secret"},
		userRepo: mockRepo,
	}
	app.Post("/register", s.Register)

	tests := []struct {
		name           string
		body           map[string]string
		mockSetup      func()
		expectedStatus int
	}{
		{
			name: "Success",
			body: map[string]string{
				"username": "testuser",
				"email":    "test@example.com",
				"password": "Password123!",
			},
			mockSetup: func() {
				mockRepo.On("HasConflict", mock.Anything, uint(0), "testuser", "test@example.com").Return(false, nil)
				mockRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Duplicate User",
			body: map[string]string{
				"username": "existing",
				"email":    "exists@example.com",
				"password": "Password123!",
			},
			mockSetup: func() {
				mockRepo.On("HasConflict", mock.Anything, uint(0), "existing", "exists@example.com").Return(true, nil)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "Weak Password",
			body: map[string]string{
				"username": "testuser",
				"email":    "test@example.com",
				"password": "abc",
			},
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Missing Fields",
			body: map[string]string{
				"username": "testuser",
			},
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			resp := postJSON(t, app, "/register", tt.body)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestRegister_TokenRoundTrip(t *testing.T) {
	app := fiber.New()
	mockRepo := new(MockUserRepository)
	mockRepo.On("HasConflict", mock.Anything, uint(0), mock.Anything, mock.Anything).Return(false, nil)
	mockRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*models.User).ID = 42
	}).Return(nil)

	s := &Server{
		config:   &config.Config{JWTSecret: "test_secret"},
		userRepo: mockRepo,
	}
	app.Post("/register", s.Register)
	app.Get("/whoami", s.AuthRequired(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"userID": c.Locals("userID")})
	})

	resp := postJSON(t, app, "/register", map[string]string{
		"username": "roundtrip",
		"email":    "roundtrip@example.com",
		"password": "Password123!",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	whoResp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, whoResp.StatusCode)
	whoBody := decodeBody(t, whoResp)
	assert.Equal(t, float64(42), whoBody["userID"])
}

func TestLogin_EnumerationResistance(t *testing.T) {
	app := fiber.New()
	mockRepo := new(MockUserRepository)

	hashed, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.DefaultCost)
	require.NoError(t, err)
	mockRepo.On("GetByEmail", mock.Anything, "known@example.com").Return(&models.User{
		ID:       1,
		Email:    "known@example.com",
		Password: string(hashed),
	}, nil)
	mockRepo.On("GetByEmail", mock.Anything, "unknown@example.com").Return(nil, nil)

	s := &Server{
		config:   &config.Config{JWTSecret: "test_secret"},
		userRepo: mockRepo,
	}
	app.Post("/login", s.Login)

	wrongPassword := postJSON(t, app, "/login", map[string]string{
		"email":    "known@example.com",
		"password": "wrong-password",
	})
	unknownEmail := postJSON(t, app, "/login", map[string]string{
		"email":    "unknown@example.com",
		"password": "whatever",
	})

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.StatusCode)
	assert.Equal(t, decodeBody(t, wrongPassword)["error"], decodeBody(t, unknownEmail)["error"])
}

func TestLogin_Success(t *testing.T) {
	app := fiber.New()
	mockRepo := new(MockUserRepository)

	hashed, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.DefaultCost)
	require.NoError(t, err)
	mockRepo.On("GetByEmail", mock.Anything, "known@example.com").Return(&models.User{
		ID:       1,
		Username: "alice",
		Email:    "known@example.com",
		Password: string(hashed),
	}, nil)

	s := &Server{
		config:   &config.Config{JWTSecret: "test_secret"},
		userRepo: mockRepo,
	}
	app.Post("/login", s.Login)

	resp := postJSON(t, app, "/login", map[string]string{
		"email":    "known@example.com",
		"password": "correct-password",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.NotEmpty(t, body["token"])
}

func TestForgotPassword(t *testing.T) {
	t.Run("unknown email gets the same message and no token", func(t *testing.T) {
		app := fiber.New()
		mockRepo := new(MockUserRepository)
		mockTokens := new(MockResetTokenRepository)
		mockRepo.On("GetByEmail", mock.Anything, "known@example.com").Return(&models.User{ID: 1, Email: "known@example.com"}, nil)
		mockRepo.On("GetByEmail", mock.Anything, "unknown@example.com").Return(nil, nil)
		mockTokens.On("DeleteExpired", mock.Anything).Return(int64(0), nil)
		mockTokens.On("Replace", mock.Anything, mock.Anything).Return(nil)

		s := &Server{
			config:         &config.Config{JWTSecret: "test_secret", Env: "test"},
			userRepo:       mockRepo,
			resetTokenRepo: mockTokens,
		}
		app.Post("/forgot-password", s.ForgotPassword)

		known := postJSON(t, app, "/forgot-password", map[string]string{"email": "known@example.com"})
		unknown := postJSON(t, app, "/forgot-password", map[string]string{"email": "unknown@example.com"})

		require.Equal(t, http.StatusOK, known.StatusCode)
		require.Equal(t, http.StatusOK, unknown.StatusCode)

		knownBody := decodeBody(t, known)
		unknownBody := decodeBody(t, unknown)
		assert.Equal(t, knownBody["message"], unknownBody["message"])
		assert.NotEmpty(t, knownBody["resetToken"])
		assert.Nil(t, unknownBody["resetToken"])
		mockTokens.AssertNumberOfCalls(t, "Replace", 1)
	})

	t.Run("production responses never carry the token", func(t *testing.T) {
		app := fiber.New()
		mockRepo := new(MockUserRepository)
		mockTokens := new(MockResetTokenRepository)
		mockRepo.On("GetByEmail", mock.Anything, "known@example.com").Return(&models.User{ID: 1}, nil)
		mockTokens.On("DeleteExpired", mock.Anything).Return(int64(0), nil)
		mockTokens.On("Replace", mock.Anything, mock.Anything).Return(nil)

		s := &Server{
			config:         &config.Config{JWTSecret: "test_secret", Env: "production"},
			userRepo:       mockRepo,
			resetTokenRepo: mockTokens,
		}
		app.Post("/forgot-password", s.ForgotPassword)

		resp := postJSON(t, app, "/forgot-password", map[string]string{"email": "known@example.com"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Nil(t, decodeBody(t, resp)["resetToken"])
	})

	t.Run("sweeps expired tokens and survives a sweep failure", func(t *testing.T) {
		app := fiber.New()
		mockRepo := new(MockUserRepository)
		mockTokens := new(MockResetTokenRepository)
		mockRepo.On("GetByEmail", mock.Anything, "known@example.com").Return(&models.User{ID: 1}, nil)
		mockTokens.On("DeleteExpired", mock.Anything).Return(int64(0), errors.New("db down"))
		mockTokens.On("Replace", mock.Anything, mock.Anything).Return(nil)

		s := &Server{
			config:         &config.Config{JWTSecret: "test_secret", Env: "test"},
			userRepo:       mockRepo,
			resetTokenRepo: mockTokens,
		}
		app.Post("/forgot-password", s.ForgotPassword)

		resp := postJSON(t, app, "/forgot-password", map[string]string{"email": "known@example.com"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		mockTokens.AssertCalled(t, "DeleteExpired", mock.Anything)
		mockTokens.AssertCalled(t, "Replace", mock.Anything, mock.Anything)
	})
}

func TestResetPassword(t *testing.T) {
	t.Run("valid token resets and is deleted", func(t *testing.T) {
		app := fiber.New()
		mockRepo := new(MockUserRepository)
		mockTokens := new(MockResetTokenRepository)

		mockTokens.On("GetByToken", mock.Anything, "goodtoken").Return(&models.PasswordResetToken{
			ID:        9,
			UserID:    1,
			Token:     "goodtoken",
			ExpiresAt: timeInFuture(),
		}, nil)
		mockRepo.On("UpdatePassword", mock.Anything, uint(1), mock.Anything).Return(nil)
		mockTokens.On("Delete", mock.Anything, uint(9)).Return(nil)

		s := &Server{
			config:         &config.Config{JWTSecret: "test_secret"},
			userRepo:       mockRepo,
			resetTokenRepo: mockTokens,
		}
		app.Post("/reset-password", s.ResetPassword)

		resp := postJSON(t, app, "/reset-password", map[string]string{
			"token":       "goodtoken",
			"newPassword": "newPassword1",
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockTokens.AssertCalled(t, "Delete", mock.Anything, uint(9))
	})

	t.Run("unknown token is rejected", func(t *testing.T) {
		app := fiber.New()
		mockTokens := new(MockResetTokenRepository)
		mockTokens.On("GetByToken", mock.Anything, "gone").Return(nil, nil)

		s := &Server{
			config:         &config.Config{JWTSecret: "test_secret"},
			resetTokenRepo: mockTokens,
		}
		app.Post("/reset-password", s.ResetPassword)

		resp := postJSON(t, app, "/reset-password", map[string]string{
			"token":       "gone",
			"newPassword": "newPassword1",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("short password is rejected before any lookup", func(t *testing.T) {
		app := fiber.New()
		s := &Server{config: &config.Config{JWTSecret: "test_secret"}}
		app.Post("/reset-password", s.ResetPassword)

		resp := postJSON(t, app, "/reset-password", map[string]string{
			"token":       "goodtoken",
			"newPassword": "abc",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestResetWithRecoveryCode(t *testing.T) {
	t.Run("valid code resets password and rotates the code", func(t *testing.T) {
		app := fiber.New()
		mockRepo := new(MockUserRepository)
		mockRepo.On("GetByEmail", mock.Anything, "known@example.com").Return(&models.User{
			ID:           1,
			Email:        "known@example.com",
			RecoveryCode: "RC-ABC123-DEF456",
		}, nil)
		mockRepo.On("UpdatePassword", mock.Anything, uint(1), mock.Anything).Return(nil)
		mockRepo.On("UpdateRecoveryCode", mock.Anything, uint(1), mock.Anything).Return(nil)

		s := &Server{
			config:   &config.Config{JWTSecret: "test_secret"},
			userRepo: mockRepo,
		}
		app.Post("/reset-with-recovery-code", s.ResetWithRecoveryCode)

		resp := postJSON(t, app, "/reset-with-recovery-code", map[string]string{
			"email":        "known@example.com",
			"recoveryCode": "RC-ABC123-DEF456",
			"newPassword":  "newPassword1",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		newCode, _ := body["recoveryCode"].(string)
		assert.Regexp(t, `^RC-[0-9A-F]{6}-[0-9A-F]{6}$`, newCode)
		assert.NotEqual(t, "RC-ABC123-DEF456", newCode)
		mockRepo.AssertCalled(t, "UpdateRecoveryCode", mock.Anything, uint(1), mock.Anything)
	})

	t.Run("wrong code and unknown email fail identically", func(t *testing.T) {
		app := fiber.New()
		mockRepo := new(MockUserRepository)
		mockRepo.On("GetByEmail", mock.Anything, "known@example.com").Return(&models.User{
			ID:           1,
			RecoveryCode: "RC-ABC123-DEF456",
		}, nil)
		mockRepo.On("GetByEmail", mock.Anything, "unknown@example.com").Return(nil, nil)

		s := &Server{
			config:   &config.Config{JWTSecret: "test_secret"},
			userRepo: mockRepo,
		}
		app.Post("/reset-with-recovery-code", s.ResetWithRecoveryCode)

		wrongCode := postJSON(t, app, "/reset-with-recovery-code", map[string]string{
			"email":        "known@example.com",
			"recoveryCode": "RC-000000-000000",
			"newPassword":  "newPassword1",
		})
		unknownEmail := postJSON(t, app, "/reset-with-recovery-code", map[string]string{
			"email":        "unknown@example.com",
			"recoveryCode": "RC-ABC123-DEF456",
			"newPassword":  "newPassword1",
		})

		assert.Equal(t, http.StatusUnauthorized, wrongCode.StatusCode)
		assert.Equal(t, http.StatusUnauthorized, unknownEmail.StatusCode)
		assert.Equal(t, decodeBody(t, wrongCode)["error"], decodeBody(t, unknownEmail)["error"])
	})
}

func TestGenerateRecoveryCode(t *testing.T) {
	app := fiber.New()
	s := &Server{config: &config.Config{JWTSecret: "test_secret"}}
	app.Get("/recovery-code", s.GenerateRecoveryCode)

	req := httptest.NewRequest(http.MethodGet, "/recovery-code", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	code, _ := body["recoveryCode"].(string)
	assert.Regexp(t, regexp.MustCompile(`^RC-[0-9A-F]{6}-[0-9A-F]{6}$`), code)
}

func timeInFuture() time.Time {
	return time.Now().Add(30 * time.Minute)
}

func TestAuthRequired_RejectsForgedIssuer(t *testing.T) {
	app := fiber.New()
	s := &Server{config: &config.Config{JWTSecret: "test_secret"}}
	app.Get("/protected", s.AuthRequired(), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogout_RevokesToken(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	app := fiber.New()
	s := &Server{
		config: &config.Config{JWTSecret: "test_secret"},
		redis:  rdb,
	}
	app.Post("/logout", s.AuthRequired(), s.Logout)
	app.Get("/protected", s.AuthRequired(), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	token, err := s.generateToken(7, "alice")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Same token must be rejected once its jti is blacklisted
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
