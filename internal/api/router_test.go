package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/daria-hk/contacts-api/internal/api"
	"github.com/daria-hk/contacts-api/internal/api/handlers"
	"github.com/daria-hk/contacts-api/internal/api/middleware"
	"github.com/daria-hk/contacts-api/internal/config"
	"github.com/daria-hk/contacts-api/internal/models"
	"github.com/daria-hk/contacts-api/internal/repositories"
	"github.com/daria-hk/contacts-api/internal/services"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "integration-secret-32-bytes-long!!!!"

// capturingMailer records confirmation tokens instead of sending mail.
type capturingMailer struct {
	tokens map[string]string
}

func (m *capturingMailer) SendConfirmation(to, username, token string) error {
	m.tokens[to] = token
	return nil
}

// inlineDispatcher runs jobs synchronously.
type inlineDispatcher struct{}

func (inlineDispatcher) Enqueue(job func() error) { _ = job() }

// fakeAvatarStore pretends to be the image host.
type fakeAvatarStore struct{}

func (fakeAvatarStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	return fmt.Sprintf("https://img.example/cdn-cgi/image/width=250,height=250,fit=cover/%s", key), nil
}

type testEnv struct {
	handler http.Handler
	mailer  *capturingMailer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Contact{}))

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	userRepo := repositories.NewUserRepository(db)
	contactRepo := repositories.NewContactRepository(db)

	mailer := &capturingMailer{tokens: map[string]string{}}
	tokens := services.NewTokenService(testSecret, 30*time.Minute, 24*time.Hour)
	authService := services.NewAuthService(userRepo, tokens, mailer, inlineDispatcher{}, log)
	userService := services.NewUserService(userRepo, fakeAvatarStore{})
	contactService := services.NewContactService(contactRepo)

	handler := api.SetupRouter(api.Deps{
		Auth:          handlers.NewAuthHandler(authService),
		Users:         handlers.NewUserHandler(userService),
		Contacts:      handlers.NewContactHandler(contactService),
		Authenticator: middleware.NewAuthenticator(tokens, userRepo),
		CorsOptions:   config.CorsConfig(),
		Logger:        log,
	})

	return &testEnv{handler: handler, mailer: mailer}
}

type payload struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *testEnv) do(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, payload) {
	t.Helper()
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	var body payload
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &body)
	}
	return rec, body
}

func jsonRequest(method, target string, body any) *http.Request {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func (e *testEnv) register(t *testing.T, username, email, password string) payload {
	t.Helper()
	rec, body := e.do(t, jsonRequest(http.MethodPost, "/api/auth/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}))
	require.Equal(t, http.StatusCreated, rec.Code, "register: %s", rec.Body.String())
	return body
}

func (e *testEnv) confirm(t *testing.T, email string) {
	t.Helper()
	token := e.mailer.tokens[email]
	require.NotEmpty(t, token, "confirmation token should have been mailed")

	rec, _ := e.do(t, httptest.NewRequest(http.MethodGet, "/api/auth/confirmed_email/"+token, nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec, body := e.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code, "login: %s", rec.Body.String())

	var data struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &data))
	require.Equal(t, "bearer", data.TokenType)
	require.NotEmpty(t, data.AccessToken)
	return data.AccessToken
}

func authed(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestRegisterLoginContactLifecycle(t *testing.T) {
	env := newTestEnv(t)

	env.register(t, "agent007", "agent007@x.com", "12345678")

	// login before confirmation is rejected
	form := url.Values{"username": {"agent007"}, "password": {"12345678"}}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec, body := env.do(t, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, body.Message, "not confirmed")

	env.confirm(t, "agent007@x.com")
	token := env.login(t, "agent007", "12345678")

	// create a contact
	rec, body = env.do(t, authed(jsonRequest(http.MethodPost, "/api/contacts", map[string]any{
		"first_name": "John",
		"last_name":  "Doe",
		"email":      "john@x.com",
		"phone":      "+380441234567",
		"birthday":   "1990-04-15",
	}), token))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var contact models.Contact
	require.NoError(t, json.Unmarshal(body.Data, &contact))
	require.NotEmpty(t, contact.ID)
	assert.Equal(t, "John", contact.FirstName)

	// read it back
	rec, body = env.do(t, authed(httptest.NewRequest(http.MethodGet, "/api/contacts/"+contact.ID.String(), nil), token))
	require.Equal(t, http.StatusOK, rec.Code)
	var fetched models.Contact
	require.NoError(t, json.Unmarshal(body.Data, &fetched))
	assert.Equal(t, contact.ID, fetched.ID)

	// partial update keeps unspecified fields
	rec, body = env.do(t, authed(jsonRequest(http.MethodPut, "/api/contacts/"+contact.ID.String(), map[string]any{
		"last_name": "Smith",
	}), token))
	require.Equal(t, http.StatusOK, rec.Code)
	var updated models.Contact
	require.NoError(t, json.Unmarshal(body.Data, &updated))
	assert.Equal(t, "Smith", updated.LastName)
	assert.Equal(t, "John", updated.FirstName)
	assert.Equal(t, "john@x.com", updated.Email)

	// delete, then the contact is gone
	rec, _ = env.do(t, authed(httptest.NewRequest(http.MethodDelete, "/api/contacts/"+contact.ID.String(), nil), token))
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = env.do(t, authed(httptest.NewRequest(http.MethodGet, "/api/contacts/"+contact.ID.String(), nil), token))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "contact not found", body.Message)
}

func TestRegisterDuplicate(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "agent007", "agent007@x.com", "12345678")

	rec, _ := env.do(t, jsonRequest(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "agent007",
		"email":    "different@x.com",
		"password": "12345678",
	}))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = env.do(t, jsonRequest(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "different",
		"email":    "agent007@x.com",
		"password": "12345678",
	}))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	for _, target := range []string{"/api/contacts", "/api/users/me", "/api/contacts/birthdays"} {
		rec, _ := env.do(t, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
	}

	rec, _ := env.do(t, authed(httptest.NewRequest(http.MethodGet, "/api/users/me", nil), "bogus-token"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestContactsAreInvisibleAcrossUsers(t *testing.T) {
	env := newTestEnv(t)

	env.register(t, "alice", "alice@x.com", "password1")
	env.confirm(t, "alice@x.com")
	aliceToken := env.login(t, "alice", "password1")

	env.register(t, "bob", "bob@x.com", "password2")
	env.confirm(t, "bob@x.com")
	bobToken := env.login(t, "bob", "password2")

	rec, body := env.do(t, authed(jsonRequest(http.MethodPost, "/api/contacts", map[string]any{
		"first_name": "Secret",
		"last_name":  "Friend",
		"email":      "friend@x.com",
		"phone":      "123456",
	}), aliceToken))
	require.Equal(t, http.StatusCreated, rec.Code)
	var contact models.Contact
	require.NoError(t, json.Unmarshal(body.Data, &contact))

	// bob gets not-found, never forbidden
	rec, body = env.do(t, authed(httptest.NewRequest(http.MethodGet, "/api/contacts/"+contact.ID.String(), nil), bobToken))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "contact not found", body.Message)

	rec, _ = env.do(t, authed(httptest.NewRequest(http.MethodDelete, "/api/contacts/"+contact.ID.String(), nil), bobToken))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCurrentUserAndRateLimit(t *testing.T) {
	env := newTestEnv(t)

	env.register(t, "agent007", "agent007@x.com", "12345678")
	env.confirm(t, "agent007@x.com")
	token := env.login(t, "agent007", "12345678")

	var lastCode int
	for i := 0; i < 10; i++ {
		rec, body := env.do(t, authed(httptest.NewRequest(http.MethodGet, "/api/users/me", nil), token))
		lastCode = rec.Code
		if i == 0 {
			require.Equal(t, http.StatusOK, rec.Code)
			var user models.User
			require.NoError(t, json.Unmarshal(body.Data, &user))
			assert.Equal(t, "agent007", user.Username)
			assert.Contains(t, user.Avatar, "gravatar.com")
		}
	}
	require.Equal(t, http.StatusOK, lastCode, "10 requests per minute are allowed")

	rec, _ := env.do(t, authed(httptest.NewRequest(http.MethodGet, "/api/users/me", nil), token))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code, "11th request in the window is throttled")
}

func TestAvatarUpload(t *testing.T) {
	env := newTestEnv(t)

	env.register(t, "agent007", "agent007@x.com", "12345678")
	env.confirm(t, "agent007@x.com")
	token := env.login(t, "agent007", "12345678")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "avatar.png")
	require.NoError(t, err)
	_, err = io.Copy(part, bytes.NewReader([]byte("png-bytes")))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPatch, "/api/users/avatar", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec, body := env.do(t, authed(req, token))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var user models.User
	require.NoError(t, json.Unmarshal(body.Data, &user))
	assert.Equal(t,
		"https://img.example/cdn-cgi/image/width=250,height=250,fit=cover/avatars/agent007",
		user.Avatar)
}

func TestBirthdaysRoute(t *testing.T) {
	env := newTestEnv(t)

	env.register(t, "agent007", "agent007@x.com", "12345678")
	env.confirm(t, "agent007@x.com")
	token := env.login(t, "agent007", "12345678")

	soon := time.Now().AddDate(0, 0, 3)
	rec, _ := env.do(t, authed(jsonRequest(http.MethodPost, "/api/contacts", map[string]any{
		"first_name": "Soon",
		"last_name":  "Birthday",
		"email":      "soon@x.com",
		"phone":      "123",
		"birthday":   fmt.Sprintf("2000-%02d-%02d", soon.Month(), soon.Day()),
	}), token))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, body := env.do(t, authed(httptest.NewRequest(http.MethodGet, "/api/contacts/birthdays", nil), token))
	require.Equal(t, http.StatusOK, rec.Code)

	var contacts []models.Contact
	require.NoError(t, json.Unmarshal(body.Data, &contacts))
	require.Len(t, contacts, 1)
	assert.Equal(t, "Soon", contacts[0].FirstName)
}
