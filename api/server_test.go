package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rpupo63/portfolio-blog-backend/auth"
	"github.com/rpupo63/portfolio-blog-backend/config"
	"github.com/rpupo63/portfolio-blog-backend/database"
	"github.com/rpupo63/portfolio-blog-backend/metrics"
	"github.com/rpupo63/portfolio-blog-backend/models"
	"github.com/rpupo63/portfolio-blog-backend/services"
)

func testSettings() config.Settings {
	return config.Settings{
		Environment: "test",
		Port:        "0",
		JWTSecret:   "test-secret",
		TokenTTL:    7 * 24 * time.Hour,

		PrivilegedSignup: true,
	}
}

func newTestRouter(t *testing.T, settings config.Settings, opts ...RouterOption) *chi.Mux {
	t.Helper()

	db := database.NewMemory()
	authSvc := services.NewAuthService(
		db.UserRepo(),
		auth.NewBcryptHasher(bcrypt.MinCost),
		auth.NewTokenIssuer(settings.JWTSecret, settings.TokenTTL),
		nil,
		nil,
		zerolog.Nop(),
	).WithPrivilegedSignup(settings.PrivilegedSignup)
	opts = append([]RouterOption{WithAuthService(authSvc)}, opts...)
	return newRouter(settings, db, opts...)
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func registerUser(t *testing.T, h http.Handler, name, email, role string) (string, string) {
	t.Helper()

	rec, body := doJSON(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "p1", "role": role,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	user := body["newUser"].(map[string]any)
	return user["id"].(string), body["token"].(string)
}

func TestBlogLifecycle(t *testing.T) {
	h := newTestRouter(t, testSettings())

	rec, body := doJSON(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Ann", "email": "a@x.com", "password": "p1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Success", body["status"])
	assert.Equal(t, services.EmailStatusFailed, body["emailStatus"])
	annID := body["newUser"].(map[string]any)["id"].(string)
	assert.NotContains(t, body["newUser"], "password")

	rec, body = doJSON(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "a@x.com", "password": "p1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Success", body["status"])
	token := body["token"].(string)
	require.NotEmpty(t, token)

	post := map[string]string{"title": "Hi", "description": "World"}
	rec, _ = doJSON(t, h, http.MethodPost, "/api/blogs/create", token, post)
	require.Equal(t, http.StatusForbidden, rec.Code)

	_, bossToken := registerUser(t, h, "Boss", "boss@x.com", string(models.RoleMainAdmin))
	rec, body = doJSON(t, h, http.MethodPut, "/user/"+annID+"/role", bossToken, map[string]string{"role": "admin"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "admin", body["userData"].(map[string]any)["role"])

	rec, body = doJSON(t, h, http.MethodPost, "/api/blogs/create", token, post)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	blog := body["blog"].(map[string]any)
	assert.Equal(t, true, blog["isPublished"])
	assert.Equal(t, annID, blog["author"])
	postID := blog["id"].(string)

	rec, body = doJSON(t, h, http.MethodPut, "/api/blogs/like/"+postID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, body["likes"])
	assert.Equal(t, true, body["liked"])

	rec, body = doJSON(t, h, http.MethodPut, "/api/blogs/like/"+postID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, body["likes"])
	assert.Equal(t, false, body["liked"])
}

func TestBlogRoutes_RequireSession(t *testing.T) {
	h := newTestRouter(t, testSettings())

	rec, body := doJSON(t, h, http.MethodGet, "/api/blogs", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Fail", body["status"])

	rec, _ = doJSON(t, h, http.MethodGet, "/api/blogs", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCommentAndGetPost(t *testing.T) {
	h := newTestRouter(t, testSettings())
	_, adminToken := registerUser(t, h, "Ada", "ada@x.com", "admin")
	_, readerToken := registerUser(t, h, "Rey", "rey@x.com", "")

	rec, body := doJSON(t, h, http.MethodPost, "/api/blogs/create", adminToken, map[string]string{
		"title": "Go", "description": "<p>Hello</p><script>alert(1)</script>",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	postID := body["blog"].(map[string]any)["id"].(string)
	assert.NotContains(t, body["blog"].(map[string]any)["description"], "script")

	rec, _ = doJSON(t, h, http.MethodPost, "/api/blogs/comment/"+postID, readerToken, map[string]string{"content": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = doJSON(t, h, http.MethodPost, "/api/blogs/comment/"+postID, readerToken, map[string]string{"content": "nice"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "nice", body["comment"].(map[string]any)["content"])

	rec, body = doJSON(t, h, http.MethodGet, "/api/blogs/"+postID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	blog := body["blog"].(map[string]any)
	comments := blog["comments"].([]any)
	require.Len(t, comments, 1)
	assert.Equal(t, "Rey", comments[0].(map[string]any)["user"].(map[string]any)["name"])

	rec, _ = doJSON(t, h, http.MethodGet, "/api/blogs/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = doJSON(t, h, http.MethodDelete, "/api/blogs/"+postID, readerToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = doJSON(t, h, http.MethodDelete, "/api/blogs/"+postID, adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, h, http.MethodGet, "/api/blogs/"+postID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEditBlogPost_PartialUpdate(t *testing.T) {
	h := newTestRouter(t, testSettings())
	_, token := registerUser(t, h, "Ada", "ada@x.com", "admin")

	_, body := doJSON(t, h, http.MethodPost, "/api/blogs/create", token, map[string]string{
		"title": "Draft", "description": "Body", "category": "go",
	})
	postID := body["blog"].(map[string]any)["id"].(string)

	rec, body := doJSON(t, h, http.MethodPut, "/api/blogs/edit/"+postID, token, map[string]any{
		"title": "Final", "isPublished": false,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	blog := body["blog"].(map[string]any)
	assert.Equal(t, "Final", blog["title"])
	assert.Equal(t, "Body", blog["description"])
	assert.Equal(t, "go", blog["category"])
	assert.Equal(t, false, blog["isPublished"])

	rec, body = doJSON(t, h, http.MethodGet, "/api/blogs", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body["blogs"])

	rec, body = doJSON(t, h, http.MethodGet, "/api/blogs/my", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["blogs"], 1)
}

func TestCreateBlogPost_MultipartThumbnail(t *testing.T) {
	dir := t.TempDir()
	storage, err := services.NewLocalStorage(dir, "http://localhost:7000")
	require.NoError(t, err)

	h := newTestRouter(t, testSettings(), WithStorage(storage, storage.Dir()))
	_, token := registerUser(t, h, "Ada", "ada@x.com", "admin")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "Pics"))
	require.NoError(t, mw.WriteField("description", "With a thumbnail"))
	fw, err := mw.CreateFormFile("thumbnail", "cover.PNG")
	require.NoError(t, err)
	_, err = fw.Write([]byte("fake-png"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/blogs/create", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	thumbnail := body["blog"].(map[string]any)["thumbnail"].(string)
	require.True(t, strings.HasPrefix(thumbnail, "http://localhost:7000/uploads/thumbnails/"), thumbnail)
	assert.True(t, strings.HasSuffix(thumbnail, ".png"))

	path := strings.TrimPrefix(thumbnail, "http://localhost:7000")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fake-png", rec.Body.String())
}

func multipartRequest(t *testing.T, method, path, token string, fields map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile("thumbnail", "cover.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("fake-png"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestThumbnailRemovedWhenRequestFails(t *testing.T) {
	dir := t.TempDir()
	storage, err := services.NewLocalStorage(dir, "http://localhost:7000")
	require.NoError(t, err)

	h := newTestRouter(t, testSettings(), WithStorage(storage, storage.Dir()))
	_, token := registerUser(t, h, "Ada", "ada@x.com", "admin")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, multipartRequest(t, http.MethodPost, "/api/blogs/create", token, map[string]string{"description": "no title"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, multipartRequest(t, http.MethodPut, "/api/blogs/edit/does-not-exist", token, map[string]string{"title": "x"}))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	entries, err := os.ReadDir(filepath.Join(dir, "thumbnails"))
	require.NoError(t, err)
	assert.Empty(t, entries)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, multipartRequest(t, http.MethodPost, "/api/blogs/create", token, map[string]string{"title": "Hi", "description": "World"}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	entries, err = os.ReadDir(filepath.Join(dir, "thumbnails"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSessionCookie(t *testing.T) {
	h := newTestRouter(t, testSettings())
	registerUser(t, h, "Ann", "a@x.com", "")

	rec, _ := doJSON(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "a@x.com", "password": "p1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, tokenCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookies[0].SameSite)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/is-auth", nil)
	req.AddCookie(cookies[0])
	authRec := httptest.NewRecorder()
	h.ServeHTTP(authRec, req)
	assert.Equal(t, http.StatusOK, authRec.Code)

	rec, _ = doJSON(t, h, http.MethodPost, "/api/auth/logout", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Empty(t, cleared[0].Value)
	assert.Less(t, cleared[0].MaxAge, 0)
}

func TestLoginErrors(t *testing.T) {
	h := newTestRouter(t, testSettings())
	registerUser(t, h, "Ann", "a@x.com", "")

	rec, _ := doJSON(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "nobody@x.com", "password": "p1"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = doJSON(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "a@x.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = doJSON(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{"name": "Ann", "email": "a@x.com", "password": "p1"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("{"))
	bad := httptest.NewRecorder()
	h.ServeHTTP(bad, req)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestUserRoutes(t *testing.T) {
	h := newTestRouter(t, testSettings())
	userID, userToken := registerUser(t, h, "Ann", "a@x.com", "")
	_, adminToken := registerUser(t, h, "Ada", "ada@x.com", "admin")

	rec, body := doJSON(t, h, http.MethodGet, "/user/data", userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["userData"].(map[string]any)
	assert.Equal(t, userID, data["id"])
	assert.Equal(t, false, data["isAccountVerified"])

	rec, _ = doJSON(t, h, http.MethodGet, "/user", userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, body = doJSON(t, h, http.MethodGet, "/user", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["users"], 2)

	rec, _ = doJSON(t, h, http.MethodPut, "/user/"+userID+"/role", adminToken, map[string]string{"role": "admin"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestEmailVerificationFlow(t *testing.T) {
	notifier := &capturingNotifier{}
	settings := testSettings()

	db := database.NewMemory()
	authSvc := services.NewAuthService(db.UserRepo(), auth.NewBcryptHasher(bcrypt.MinCost),
		auth.NewTokenIssuer(settings.JWTSecret, settings.TokenTTL), notifier, nil, zerolog.Nop())
	h := newRouter(settings, db, WithAuthService(authSvc))

	_, token := registerUser(t, h, "Ann", "a@x.com", "")

	rec, body := doJSON(t, h, http.MethodPost, "/api/auth/emailOtp", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, services.EmailStatusSent, body["emailStatus"])
	code := notifier.lastCode(t)

	rec, _ = doJSON(t, h, http.MethodPost, "/api/auth/verifyEmail", token, map[string]string{"otp": "000000"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = doJSON(t, h, http.MethodPost, "/api/auth/verifyEmail", token, map[string]string{"otp": code})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, h, http.MethodPost, "/api/auth/verifyEmail", token, map[string]string{"otp": code})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = doJSON(t, h, http.MethodPost, "/api/auth/emailOtp", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPasswordResetFlow(t *testing.T) {
	notifier := &capturingNotifier{}
	settings := testSettings()

	db := database.NewMemory()
	authSvc := services.NewAuthService(db.UserRepo(), auth.NewBcryptHasher(bcrypt.MinCost),
		auth.NewTokenIssuer(settings.JWTSecret, settings.TokenTTL), notifier, nil, zerolog.Nop())
	h := newRouter(settings, db, WithAuthService(authSvc))

	_, token := registerUser(t, h, "Ann", "a@x.com", "")

	rec, _ := doJSON(t, h, http.MethodPost, "/api/auth/send-reset-otp", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	code := notifier.lastCode(t)

	rec, _ = doJSON(t, h, http.MethodPost, "/api/auth/reset-password", "", map[string]string{"email": "a@x.com", "otp": code})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = doJSON(t, h, http.MethodPost, "/api/auth/reset-password", "", map[string]string{
		"email": "a@x.com", "otp": code, "newPassword": "p2",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, _ = doJSON(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "a@x.com", "password": "p2"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSystemRoutes(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := newTestRouter(t, testSettings(), WithMetrics(metrics.NewCollector(reg), reg))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "App Working Properly", rec.Body.String())

	rec, body := doJSON(t, h, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `blog_http_requests_total{method="GET",route="/health",status_code="200"}`)
}

func TestCORSPreflight(t *testing.T) {
	settings := testSettings()
	settings.AcceptedOrigins = []string{"https://blog.example.com"}
	h := newTestRouter(t, settings)

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := preflight("https://evil.example.com")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = preflight("https://blog.example.com")
	assert.Equal(t, "https://blog.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestLoginRateLimited(t *testing.T) {
	settings := testSettings()
	settings.RateLimitPerMinute = 2
	h := newTestRouter(t, settings)

	creds := map[string]string{"email": "nobody@x.com", "password": "p1"}
	for i := 0; i < 2; i++ {
		rec, _ := doJSON(t, h, http.MethodPost, "/api/auth/login", "", creds)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}

	rec, body := doJSON(t, h, http.MethodPost, "/api/auth/login", "", creds)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "30", rec.Header().Get("Retry-After"))
	assert.Equal(t, false, body["success"])

	// other routes keep their own budget
	rec, _ = doJSON(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{"name": "Ann", "email": "a@x.com", "password": "p1"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func loginFrom(h http.Handler, forwardedFor string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"nobody@x.com","password":"p1"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", forwardedFor)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestLoginRateLimited_IgnoresForwardedForByDefault(t *testing.T) {
	settings := testSettings()
	settings.RateLimitPerMinute = 2
	h := newTestRouter(t, settings)

	assert.Equal(t, http.StatusNotFound, loginFrom(h, "10.0.0.1").Code)
	assert.Equal(t, http.StatusNotFound, loginFrom(h, "10.0.0.2").Code)
	assert.Equal(t, http.StatusTooManyRequests, loginFrom(h, "10.0.0.3").Code)
}

func TestLoginRateLimited_TrustedProxy(t *testing.T) {
	settings := testSettings()
	settings.RateLimitPerMinute = 1
	settings.TrustProxyHeaders = true
	h := newTestRouter(t, settings)

	assert.Equal(t, http.StatusNotFound, loginFrom(h, "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, loginFrom(h, "10.0.0.1").Code)
	assert.Equal(t, http.StatusNotFound, loginFrom(h, "10.0.0.2").Code)
}

func TestRegister_RejectsOverlongPassword(t *testing.T) {
	h := newTestRouter(t, testSettings())

	rec, body := doJSON(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Ann", "email": "a@x.com", "password": strings.Repeat("p", 80),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "password", body["field"])
}

func TestRegister_PrivilegedSignupDisabled(t *testing.T) {
	settings := testSettings()
	settings.PrivilegedSignup = false
	h := newTestRouter(t, settings)

	rec, _ := doJSON(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Eve", "email": "eve@x.com", "password": "p1", "role": "main-admin",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	userID, _ := registerUser(t, h, "Ann", "a@x.com", "")
	assert.NotEmpty(t, userID)
}
