package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jvagarinho/Domestik/internal/i18n"
	"github.com/Jvagarinho/Domestik/internal/services"
	"github.com/Jvagarinho/Domestik/internal/storage"
)

const testSecret = "test-secret-test-secret-test-secret!"

func newTestServer(t *testing.T) *Server {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(t.TempDir() + "/test.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	s := NewServer(Options{
		Addr:           ":0",
		JWTSecret:      testSecret,
		DefaultLocale:  i18n.EN,
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	}, services.NewLedger(repo, nil))
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

func mintToken(t *testing.T, owner string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   owner,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func doForm(s *Server, method, path, token string, form url.Values) *httptest.ResponseRecorder {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func createTestClient(t *testing.T, s *Server, token, name string) string {
	t.Helper()
	rec := doForm(s, http.MethodPost, "/clients", token, url.Values{
		"name":  {name},
		"color": {"#FF8800"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	list := doForm(s, http.MethodGet, "/ui/services", token, nil)
	require.Equal(t, http.StatusOK, list.Code)
	return firstULID(list.Body.String())
}

// firstULID pulls the first 26-char option value out of the rendered
// client select.
func firstULID(body string) string {
	const marker = `<option value="`
	for i := 0; ; {
		idx := strings.Index(body[i:], marker)
		if idx < 0 {
			return ""
		}
		i += idx + len(marker)
		end := strings.IndexByte(body[i:], '"')
		if end == 26 {
			return body[i : i+26]
		}
	}
}

func TestHealthEndpointsOpen(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		rec := doForm(s, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	rec := doForm(s, http.MethodGet, "/ui/dashboard", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doForm(s, http.MethodGet, "/ui/dashboard", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthCookieAccepted(t *testing.T) {
	s := newTestServer(t)
	token := mintToken(t, "owner-1")

	req := httptest.NewRequest(http.MethodGet, "/ui/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: token})
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateClientTriggersRefresh(t *testing.T) {
	s := newTestServer(t)
	token := mintToken(t, "owner-1")

	rec := doForm(s, http.MethodPost, "/clients", token, url.Values{
		"name":  {"Maria Silva"},
		"color": {"#FF8800"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	trigger := rec.Header().Get("HX-Trigger")
	assert.Contains(t, trigger, "clients:refresh")
	assert.Contains(t, trigger, "modal:close")
	assert.Contains(t, trigger, "Client added successfully")
}

func TestCreateClientValidation(t *testing.T) {
	s := newTestServer(t)
	token := mintToken(t, "owner-1")

	rec := doForm(s, http.MethodPost, "/clients", token, url.Values{
		"name":  {"A"},
		"color": {"red"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "find .form-errors", rec.Header().Get("HX-Retarget"))
	assert.Contains(t, rec.Body.String(), "Name must be at least 2 characters")
	assert.Contains(t, rec.Body.String(), "Invalid color format")
}

func TestServiceLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := mintToken(t, "owner-1")
	clientID := createTestClient(t, s, token, "Maria Silva")
	require.NotEmpty(t, clientID)

	rec := doForm(s, http.MethodPost, "/services", token, url.Values{
		"date":        {"2026-03-10"},
		"client_id":   {clientID},
		"time_worked": {"5"},
		"hourly_rate": {"30"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("HX-Trigger"), "services:refresh")
	assert.Contains(t, rec.Header().Get("HX-Trigger"), "dashboard:refresh")

	dash := doForm(s, http.MethodGet, "/ui/dashboard?year=2026&month=3", token, nil)
	require.Equal(t, http.StatusOK, dash.Code)
	assert.Contains(t, dash.Body.String(), "150.00")

	history := doForm(s, http.MethodGet, "/ui/services?year=2026&month=3", token, nil)
	require.Equal(t, http.StatusOK, history.Code)
	assert.Contains(t, history.Body.String(), "Maria Silva")
	assert.Contains(t, history.Body.String(), "2026-03-10")
}

func TestAnalyticsShowsPreviousYearSeries(t *testing.T) {
	s := newTestServer(t)
	token := mintToken(t, "owner-1")
	clientID := createTestClient(t, s, token, "Maria Silva")
	require.NotEmpty(t, clientID)

	rec := doForm(s, http.MethodPost, "/services", token, url.Values{
		"date":        {"2026-03-10"},
		"client_id":   {clientID},
		"time_worked": {"4"},
		"hourly_rate": {"25"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doForm(s, http.MethodPost, "/services", token, url.Values{
		"date":        {"2025-03-12"},
		"client_id":   {clientID},
		"time_worked": {"3"},
		"hourly_rate": {"20"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	analytics := doForm(s, http.MethodGet, "/ui/analytics?year=2026", token, nil)
	require.Equal(t, http.StatusOK, analytics.Code)
	body := analytics.Body.String()
	assert.Contains(t, body, "This Year")
	assert.Contains(t, body, "Last Year")
	assert.Contains(t, body, "(2025)")
	assert.Contains(t, body, "100.00")
	assert.Contains(t, body, "60.00")
}

func TestServiceValidationKeepsForm(t *testing.T) {
	s := newTestServer(t)
	token := mintToken(t, "owner-1")

	rec := doForm(s, http.MethodPost, "/services", token, url.Values{
		"date":        {"bad-date"},
		"client_id":   {"nope"},
		"time_worked": {"0.1"},
		"hourly_rate": {"0"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Invalid date format (YYYY-MM-DD)")
	assert.Contains(t, body, "Please select a client")
	assert.Contains(t, body, "Minimum 0.5 hours")
	assert.Contains(t, body, "Rate must be greater than 0")
}

func TestArchivedClientStillResolvedInHistory(t *testing.T) {
	s := newTestServer(t)
	token := mintToken(t, "owner-1")
	clientID := createTestClient(t, s, token, "Maria Silva")
	require.NotEmpty(t, clientID)

	rec := doForm(s, http.MethodPost, "/services", token, url.Values{
		"date":        {"2026-03-10"},
		"client_id":   {clientID},
		"time_worked": {"4"},
		"hourly_rate": {"25"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doForm(s, http.MethodPost, "/clients/"+clientID+"/archive", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Hidden from the active client list.
	active := doForm(s, http.MethodGet, "/ui/clients", token, nil)
	require.Equal(t, http.StatusOK, active.Code)
	assert.NotContains(t, active.Body.String(), "Maria Silva")

	// The existing entry still shows the client's name and color.
	history := doForm(s, http.MethodGet, "/ui/services?year=2026&month=3", token, nil)
	require.Equal(t, http.StatusOK, history.Code)
	assert.Contains(t, history.Body.String(), "Maria Silva")
	assert.Contains(t, history.Body.String(), "#FF8800")
	assert.NotContains(t, history.Body.String(), "Unknown")
}

func TestOwnerIsolation(t *testing.T) {
	s := newTestServer(t)
	tokenA := mintToken(t, "owner-a")
	tokenB := mintToken(t, "owner-b")
	clientID := createTestClient(t, s, tokenA, "Maria Silva")
	require.NotEmpty(t, clientID)

	rec := doForm(s, http.MethodPost, "/clients/"+clientID+"/archive", tokenB, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	list := doForm(s, http.MethodGet, "/ui/clients", tokenB, nil)
	require.Equal(t, http.StatusOK, list.Code)
	assert.NotContains(t, list.Body.String(), "Maria Silva")
}

func TestExportCSVDownload(t *testing.T) {
	s := newTestServer(t)
	token := mintToken(t, "owner-1")

	rec := doForm(s, http.MethodGet, "/export/csv?year=2026&month=3", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Domestik_March 2026_Report.csv")
	assert.Contains(t, rec.Body.String(), "Date,Client,Hours,Rate/Hr,Total")
}

func TestExportDocumentLocalized(t *testing.T) {
	s := newTestServer(t)
	token := mintToken(t, "owner-1")

	rec := doForm(s, http.MethodGet, "/export/document?year=2026&month=3&lang=pt", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Domestik_março 2026_Report.html")
	assert.Contains(t, rec.Body.String(), "Relatório Mensal")
}

func TestExportClientNotFound(t *testing.T) {
	s := newTestServer(t)
	token := mintToken(t, "owner-1")

	rec := doForm(s, http.MethodGet, "/export/clients/01ARZ3NDEKTSV4RRFFQ69G5FAV/csv", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRateLimitMutations(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(t.TempDir() + "/test.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	s := NewServer(Options{
		Addr:           ":0",
		JWTSecret:      testSecret,
		DefaultLocale:  i18n.EN,
		RateLimitRPS:   0.01,
		RateLimitBurst: 1,
	}, services.NewLedger(repo, nil))
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	token := mintToken(t, "owner-1")

	form := url.Values{"name": {"Maria Silva"}, "color": {"#FF8800"}}
	first := doForm(s, http.MethodPost, "/clients", token, form)
	require.Equal(t, http.StatusCreated, first.Code)

	second := doForm(s, http.MethodPost, "/clients", token, form)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "60", second.Header().Get("Retry-After"))

	// Reads stay unthrottled.
	read := doForm(s, http.MethodGet, "/ui/dashboard", token, nil)
	assert.Equal(t, http.StatusOK, read.Code)
}

func TestStorageFailureNotifiesUser(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(t.TempDir() + "/test.db")
	require.NoError(t, err)

	s := NewServer(Options{
		Addr:           ":0",
		JWTSecret:      testSecret,
		DefaultLocale:  i18n.EN,
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	}, services.NewLedger(repo, nil))
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	token := mintToken(t, "owner-1")

	require.NoError(t, repo.Close())

	rec := doForm(s, http.MethodGet, "/ui/dashboard", token, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Header().Get("HX-Trigger"), "show-notification")
	assert.Contains(t, rec.Header().Get("HX-Trigger"), `"type":"error"`)
	assert.Contains(t, rec.Body.String(), "An error occurred. Please try again.")
}

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(t)
	token := mintToken(t, "owner-1")

	rec := doForm(s, http.MethodGet, "/ui/dashboard", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestMetricsCountRequests(t *testing.T) {
	s := newTestServer(t)
	token := mintToken(t, "owner-1")

	doForm(s, http.MethodGet, "/ui/dashboard", token, nil)

	rec := doForm(s, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "domestik_http_requests_total")
	assert.Contains(t, rec.Body.String(), "domestik_cache_services_entries")
}

func TestLocaleResolution(t *testing.T) {
	s := newTestServer(t)
	token := mintToken(t, "owner-1")

	rec := doForm(s, http.MethodGet, "/ui/dashboard?lang=pt", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "TOTAL MENSAL")

	req := httptest.NewRequest(http.MethodGet, "/ui/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.AddCookie(&http.Cookie{Name: LocaleCookieName, Value: "pt"})
	cookieRec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(cookieRec, req)
	assert.Contains(t, cookieRec.Body.String(), "TOTAL MENSAL")
}

func TestCacheInvalidationAfterMutation(t *testing.T) {
	s := newTestServer(t)
	token := mintToken(t, "owner-1")
	clientID := createTestClient(t, s, token, "Maria Silva")
	require.NotEmpty(t, clientID)

	// Prime the cache with an empty month.
	dash := doForm(s, http.MethodGet, "/ui/dashboard?year=2026&month=3", token, nil)
	require.Equal(t, http.StatusOK, dash.Code)
	assert.Contains(t, dash.Body.String(), "0.00")

	rec := doForm(s, http.MethodPost, "/services", token, url.Values{
		"date":        {"2026-03-10"},
		"client_id":   {clientID},
		"time_worked": {"4"},
		"hourly_rate": {"25"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	dash = doForm(s, http.MethodGet, "/ui/dashboard?year=2026&month=3", token, nil)
	require.Equal(t, http.StatusOK, dash.Code)
	assert.Contains(t, dash.Body.String(), "100.00")
}
