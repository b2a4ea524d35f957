package auth

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"bookswap/exchange-api/internal"
	"bookswap/exchange-api/internal/model"
	"bookswap/exchange-api/pkg/middleware"
	"bookswap/exchange-api/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeMailer struct {
	sentTo    []string
	sentLinks []string
	fail      error
}

func (f *fakeMailer) SendPasswordReset(to, resetLink string) error {
	if f.fail != nil {
		return f.fail
	}

	f.sentTo = append(f.sentTo, to)
	f.sentLinks = append(f.sentLinks, resetLink)
	return nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *internal.Deps, *fakeMailer) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	viper.Set("jwt.secret", "test-secret")
	viper.Set("host.frontend_url", "http://localhost:5173")

	database, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(model.User{}, model.Book{}))

	mailer := &fakeMailer{}
	d := &internal.Deps{
		DB:     database,
		Argon:  security.New(),
		Mailer: mailer,
	}

	r := gin.New()
	r.Use(middleware.NewRequestIDMiddleware())

	a := r.Group("/api/auth")
	a.POST("/register", func(c *gin.Context) { Register(c, d) })
	a.POST("/login", func(c *gin.Context) { Login(c, d) })
	a.POST("/forgotpassword", func(c *gin.Context) { ForgotPassword(c, d) })
	a.POST("/resetpassword/:resettoken", func(c *gin.Context) { ResetPassword(c, d) })

	return r, d, mailer
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	parsed := map[string]any{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	}

	return w, parsed
}

func registerUser(t *testing.T, r *gin.Engine, name, email, password string) map[string]any {
	t.Helper()

	w, body := doJSON(t, r, http.MethodPost, "/api/auth/register", gin.H{
		"name":     name,
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	return body
}

func TestRegister(t *testing.T) {
	r, d, _ := newTestRouter(t)

	body := registerUser(t, r, "A", "a@gmail.com", "secret1")

	assert.Equal(t, "A", body["name"])
	assert.Equal(t, "a@gmail.com", body["email"])
	assert.NotEmpty(t, body["id"])
	assert.NotEmpty(t, body["token"])

	userID, err := security.ParseSessionToken(body["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, body["id"], userID)

	// The password itself must never land in the database
	var user model.User
	require.NoError(t, d.DB.First(&user, "id = ?", userID).Error)
	assert.NotEqual(t, "secret1", user.PasswordHash)
	assert.NotContains(t, user.PasswordHash, "secret1")
	assert.Nil(t, user.ResetTokenHash)
	assert.Nil(t, user.ResetTokenExpiresAt)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	r, d, _ := newTestRouter(t)

	registerUser(t, r, "A", "a@gmail.com", "secret1")

	// Same address, different case
	w, body := doJSON(t, r, http.MethodPost, "/api/auth/register", gin.H{
		"name":     "B",
		"email":    "A@Gmail.com",
		"password": "secret2",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, body["error"])

	var count int64
	require.NoError(t, d.DB.Model(model.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRegister_DuplicateLosesRaceToUniqueIndex(t *testing.T) {
	r, d, _ := newTestRouter(t)

	// Land a conflicting row after the handler's pre-check but
	// before its INSERT, so only the unique index on email can
	// catch the duplicate
	var raced bool
	err := d.DB.Callback().Create().Before("gorm:create").Register("concurrent_register", func(tx *gorm.DB) {
		if raced {
			return
		}
		raced = true

		hash, hashErr := d.Argon.GenerateFromPassword("secret2")
		require.NoError(t, hashErr)

		require.NoError(t, d.DB.Session(&gorm.Session{NewDB: true}).Create(&model.User{
			ID:           "raced-user-id",
			Name:         "B",
			Email:        "a@gmail.com",
			PasswordHash: hash,
		}).Error)
	})
	require.NoError(t, err)

	w, body := doJSON(t, r, http.MethodPost, "/api/auth/register", gin.H{
		"name":     "A",
		"email":    "a@gmail.com",
		"password": "secret1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, duplicateEmailMsg, body["error"])

	// The winner's record survives, the loser created nothing
	var count int64
	require.NoError(t, d.DB.Model(model.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	var user model.User
	require.NoError(t, d.DB.First(&user, "email = ?", "a@gmail.com").Error)
	assert.Equal(t, "raced-user-id", user.ID)
}

func TestRegister_InvalidInput(t *testing.T) {
	r, _, _ := newTestRouter(t)

	cases := []struct {
		name string
		body gin.H
	}{
		{"missing name", gin.H{"email": "a@gmail.com", "password": "secret1"}},
		{"bad email", gin.H{"name": "A", "email": "nope", "password": "secret1"}},
		{"short password", gin.H{"name": "A", "email": "a@gmail.com", "password": "12345"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, _ := doJSON(t, r, http.MethodPost, "/api/auth/register", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestLogin(t *testing.T) {
	r, _, _ := newTestRouter(t)

	registerUser(t, r, "A", "a@gmail.com", "secret1")

	w, body := doJSON(t, r, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "a@gmail.com",
		"password": "secret1",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "A", body["name"])
	assert.NotEmpty(t, body["token"])
}

func TestLogin_NoAccountEnumeration(t *testing.T) {
	r, _, _ := newTestRouter(t)

	registerUser(t, r, "A", "a@gmail.com", "secret1")

	wrongPass, wrongPassBody := doJSON(t, r, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "a@gmail.com",
		"password": "wrong",
	})
	unknown, unknownBody := doJSON(t, r, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "nobody@gmail.com",
		"password": "whatever",
	})

	// Wrong password and unknown email must be indistinguishable
	assert.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, wrongPassBody["error"], unknownBody["error"])
}

func TestForgotPassword_UnknownEmail(t *testing.T) {
	r, _, mailer := newTestRouter(t)

	w, body := doJSON(t, r, http.MethodPost, "/api/auth/forgotpassword", gin.H{
		"email": "nobody@gmail.com",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, forgotPasswordMsg, body["message"])
	assert.Empty(t, mailer.sentTo)
}

func TestForgotPassword_SetsResetFields(t *testing.T) {
	r, d, mailer := newTestRouter(t)

	registerUser(t, r, "A", "a@gmail.com", "secret1")

	w, body := doJSON(t, r, http.MethodPost, "/api/auth/forgotpassword", gin.H{
		"email": "a@gmail.com",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	// Same message as the unknown-email branch
	assert.Equal(t, forgotPasswordMsg, body["message"])

	require.Len(t, mailer.sentTo, 1)
	assert.Equal(t, "a@gmail.com", mailer.sentTo[0])
	assert.Contains(t, mailer.sentLinks[0], "/reset-password/")

	var user model.User
	require.NoError(t, d.DB.First(&user, "email = ?", "a@gmail.com").Error)
	require.NotNil(t, user.ResetTokenHash)
	require.NotNil(t, user.ResetTokenExpiresAt)
	assert.WithinDuration(t, time.Now().Add(security.ResetTokenTTL), *user.ResetTokenExpiresAt, time.Minute)

	// Only the hash is persisted, never the mailed plaintext
	plaintext := resetTokenFromLink(t, mailer.sentLinks[0])
	assert.NotEqual(t, plaintext, *user.ResetTokenHash)
	assert.Equal(t, security.HashResetToken(plaintext), *user.ResetTokenHash)
}

func TestForgotPassword_SendFailureRollsBack(t *testing.T) {
	r, d, mailer := newTestRouter(t)

	registerUser(t, r, "A", "a@gmail.com", "secret1")

	mailer.fail = errors.New("smtp down")

	// Known gap: this branch breaks the enumeration resistance the
	// unknown-email branch provides, matching the upstream behavior
	w, _ := doJSON(t, r, http.MethodPost, "/api/auth/forgotpassword", gin.H{
		"email": "a@gmail.com",
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var user model.User
	require.NoError(t, d.DB.First(&user, "email = ?", "a@gmail.com").Error)
	assert.Nil(t, user.ResetTokenHash)
	assert.Nil(t, user.ResetTokenExpiresAt)
}

func resetTokenFromLink(t *testing.T, link string) string {
	t.Helper()

	idx := strings.LastIndex(link, "/")
	require.Greater(t, idx, -1)

	return link[idx+1:]
}

func TestResetPassword_RoundTrip(t *testing.T) {
	r, d, mailer := newTestRouter(t)

	registerUser(t, r, "A", "a@gmail.com", "secret1")

	w, _ := doJSON(t, r, http.MethodPost, "/api/auth/forgotpassword", gin.H{"email": "a@gmail.com"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, mailer.sentLinks, 1)

	token := resetTokenFromLink(t, mailer.sentLinks[0])

	w, body := doJSON(t, r, http.MethodPost, "/api/auth/resetpassword/"+token, gin.H{
		"password": "secret2",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, body["message"])
	// No session token on reset, the user logs in afterward
	assert.NotContains(t, body, "token")

	var user model.User
	require.NoError(t, d.DB.First(&user, "email = ?", "a@gmail.com").Error)
	assert.Nil(t, user.ResetTokenHash)
	assert.Nil(t, user.ResetTokenExpiresAt)

	w, _ = doJSON(t, r, http.MethodPost, "/api/auth/login", gin.H{"email": "a@gmail.com", "password": "secret2"})
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/api/auth/login", gin.H{"email": "a@gmail.com", "password": "secret1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestResetPassword_SingleUse(t *testing.T) {
	r, _, mailer := newTestRouter(t)

	registerUser(t, r, "A", "a@gmail.com", "secret1")

	w, _ := doJSON(t, r, http.MethodPost, "/api/auth/forgotpassword", gin.H{"email": "a@gmail.com"})
	require.Equal(t, http.StatusOK, w.Code)

	token := resetTokenFromLink(t, mailer.sentLinks[0])

	w, _ = doJSON(t, r, http.MethodPost, "/api/auth/resetpassword/"+token, gin.H{"password": "secret2"})
	require.Equal(t, http.StatusOK, w.Code)

	w, body := doJSON(t, r, http.MethodPost, "/api/auth/resetpassword/"+token, gin.H{"password": "secret3"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid or expired reset token", body["error"])
}

func TestResetPassword_Expired(t *testing.T) {
	r, d, mailer := newTestRouter(t)

	registerUser(t, r, "A", "a@gmail.com", "secret1")

	w, _ := doJSON(t, r, http.MethodPost, "/api/auth/forgotpassword", gin.H{"email": "a@gmail.com"})
	require.Equal(t, http.StatusOK, w.Code)

	token := resetTokenFromLink(t, mailer.sentLinks[0])

	// Age the token past its window
	past := time.Now().Add(-time.Minute)
	require.NoError(t, d.DB.Model(model.User{}).
		Where("email = ?", "a@gmail.com").
		Update("reset_token_expires_at", past).Error)

	w, body := doJSON(t, r, http.MethodPost, "/api/auth/resetpassword/"+token, gin.H{"password": "secret2"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid or expired reset token", body["error"])
}

func TestResetPassword_UnknownToken(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w, _ := doJSON(t, r, http.MethodPost, "/api/auth/resetpassword/deadbeef", gin.H{"password": "secret2"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResetPassword_ShortPassword(t *testing.T) {
	r, _, mailer := newTestRouter(t)

	registerUser(t, r, "A", "a@gmail.com", "secret1")

	w, _ := doJSON(t, r, http.MethodPost, "/api/auth/forgotpassword", gin.H{"email": "a@gmail.com"})
	require.Equal(t, http.StatusOK, w.Code)

	token := resetTokenFromLink(t, mailer.sentLinks[0])

	w, _ = doJSON(t, r, http.MethodPost, "/api/auth/resetpassword/"+token, gin.H{"password": "123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
