package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"notesapi/internal/model"
	"notesapi/internal/service"
	serviceMocks "notesapi/internal/service/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestRegister(t *testing.T) {
	newApp := func(mockSvc *serviceMocks.MockAuthService) *fiber.App {
		app := fiber.New()
		app.Post("/auth/register", Register(mockSvc))
		return app
	}

	post := func(app *fiber.App, body string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		return resp
	}

	t.Run("success", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockAuthService)
		app := newApp(mockSvc)

		mockSvc.On("Register", mock.Anything, "jo@example.com", "Jo", "hunter2secret").
			Return(&model.User{ID: "user-1", Email: "jo@example.com", Role: model.RoleStudent}, nil).Once()

		resp := post(app, `{"email":"jo@example.com","name":"Jo","password":"hunter2secret"}`)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var user model.User
		json.NewDecoder(resp.Body).Decode(&user)
		assert.Equal(t, "user-1", user.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid email", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockAuthService)
		app := newApp(mockSvc)

		resp := post(app, `{"email":"not-an-email","name":"Jo","password":"hunter2secret"}`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "INVALID_EMAIL", body.Error.Code)
	})

	t.Run("short password", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockAuthService)
		app := newApp(mockSvc)

		resp := post(app, `{"email":"jo@example.com","name":"Jo","password":"short"}`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "WEAK_PASSWORD", body.Error.Code)
	})

	t.Run("email taken", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockAuthService)
		app := newApp(mockSvc)

		mockSvc.On("Register", mock.Anything, "jo@example.com", "Jo", "hunter2secret").
			Return(nil, service.ErrEmailTaken).Once()

		resp := post(app, `{"email":"jo@example.com","name":"Jo","password":"hunter2secret"}`)

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "EMAIL_TAKEN", body.Error.Code)
	})
}

func TestLogin(t *testing.T) {
	newApp := func(mockSvc *serviceMocks.MockAuthService) *fiber.App {
		app := fiber.New()
		app.Post("/auth/login", Login(mockSvc))
		return app
	}

	post := func(app *fiber.App, body string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		return resp
	}

	t.Run("success", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockAuthService)
		app := newApp(mockSvc)

		mockSvc.On("Login", mock.Anything, "jo@example.com", "hunter2secret").
			Return("signed.jwt.token", &model.User{ID: "user-1"}, nil).Once()

		resp := post(app, `{"email":"jo@example.com","password":"hunter2secret"}`)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]any
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "signed.jwt.token", body["access_token"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("bad credentials", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockAuthService)
		app := newApp(mockSvc)

		mockSvc.On("Login", mock.Anything, "jo@example.com", "wrong-password").
			Return("", nil, service.ErrInvalidCredentials).Once()

		resp := post(app, `{"email":"jo@example.com","password":"wrong-password"}`)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "INVALID_CREDENTIALS", body.Error.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockAuthService)
		app := newApp(mockSvc)

		resp := post(app, `{"email":"jo@example.com"}`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		mockSvc.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
	})
}
