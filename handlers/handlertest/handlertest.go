// Package handlertest holds helpers for exercising fiber handlers against an
// in-memory database.
package handlertest

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/EnmanuelReynoso23/el-pensum/model"
	"github.com/EnmanuelReynoso23/el-pensum/utils/auth"
	"github.com/EnmanuelReynoso23/el-pensum/utils/response"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Password is the password of every user created by CreateUser
const Password = "password123"

// Envelope mirrors the response package envelope with a raw data payload
type Envelope struct {
	Success    bool                     `json:"success"`
	Message    string                   `json:"message"`
	Data       json.RawMessage          `json:"data"`
	Error      *response.ErrorDetail    `json:"error"`
	Pagination *response.PaginationMeta `json:"pagination"`
}

// Decode unmarshals the data payload into dest
func (e *Envelope) Decode(t testing.TB, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(e.Data, dest))
}

// JWTManager returns a manager with a fixed test secret
func JWTManager() *auth.JWTManager {
	return auth.NewJWTManager(auth.JWTConfig{
		Secret:        "handler-test-secret-0123456789",
		Expiry:        time.Hour,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "el-pensum-test",
	})
}

// CreateUser stores a user with Password, hashed at the minimum bcrypt cost
func CreateUser(t testing.TB, db *gorm.DB, email, role string) *model.User {
	t.Helper()
	hash, err := auth.HashPasswordWithCost(Password, bcrypt.MinCost)
	require.NoError(t, err)

	user := &model.User{Email: email, PasswordHash: hash, Name: "Test " + role, Role: role}
	require.NoError(t, db.Create(user).Error)
	return user
}

// Token returns a signed access token for user
func Token(t testing.TB, m *auth.JWTManager, user *model.User) string {
	t.Helper()
	token, _, err := m.GenerateAccessToken(user.ID, user.Email, user.Role, user.TokenVersion)
	require.NoError(t, err)
	return token
}

// Request is one HTTP call against a fiber app
type Request struct {
	Method      string
	Path        string
	Body        interface{}
	Token       string
	ContentType string
	Raw         io.Reader
}

// Do performs r and decodes the JSON envelope when the response carries one
func Do(t testing.TB, app *fiber.App, r Request) (*http.Response, *Envelope) {
	t.Helper()

	body := r.Raw
	contentType := r.ContentType
	if r.Body != nil {
		raw, err := json.Marshal(r.Body)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
		contentType = fiber.MIMEApplicationJSON
	}

	req := httptest.NewRequest(r.Method, r.Path, body)
	if contentType != "" {
		req.Header.Set(fiber.HeaderContentType, contentType)
	}
	if r.Token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+r.Token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(raw))

	env := &Envelope{}
	if len(raw) > 0 && json.Valid(raw) {
		require.NoError(t, json.Unmarshal(raw, env))
	}
	return resp, env
}

// Multipart builds a multipart body with a single file field
func Multipart(t testing.TB, field, filename string, content []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

// ID formats an id for use in a path
func ID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
