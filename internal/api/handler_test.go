package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/l1emant/insidex-web/auth"
	"github.com/l1emant/insidex-web/config"
	"github.com/l1emant/insidex-web/internal/app"
	"github.com/l1emant/insidex-web/models"
	"github.com/l1emant/insidex-web/observability"
	"github.com/l1emant/insidex-web/repository"

	"github.com/prometheus/client_golang/prometheus"
)

// fakeStocks scripts the aggregation layer per test
type fakeStocks struct {
	news          []models.NewsArticle
	newsErr       error
	searchResults []models.StockWithWatchlistStatus
	details       *models.StockDetails
	detailsErr    error
	watchlist     []models.WatchlistStock
	watchlistErr  error
	items         []models.WatchlistItem
}

func (f *fakeStocks) GetNews(ctx context.Context, symbols []string) ([]models.NewsArticle, error) {
	return f.news, f.newsErr
}

func (f *fakeStocks) SearchStocks(ctx context.Context, query, userEmail string) []models.StockWithWatchlistStatus {
	return f.searchResults
}

func (f *fakeStocks) GetStockDetails(ctx context.Context, symbol string) (*models.StockDetails, error) {
	return f.details, f.detailsErr
}

func (f *fakeStocks) GetUserWatchlist(ctx context.Context, userID string) ([]models.WatchlistItem, error) {
	return f.items, f.watchlistErr
}

func (f *fakeStocks) GetWatchlistWithData(ctx context.Context, userID string) ([]models.WatchlistStock, error) {
	return f.watchlist, f.watchlistErr
}

var _ app.StocksService = (*fakeStocks)(nil)

// fakeAuth resolves every request to a fixed user (or error)
type fakeAuth struct {
	user       *models.User
	sessionErr error
	signOutErr error
}

func (f *fakeAuth) SignUp(ctx context.Context, email, password, name string) (*models.User, string, error) {
	return f.user, "test-token", nil
}

func (f *fakeAuth) SignIn(ctx context.Context, email, password string) (*models.User, string, error) {
	if f.user == nil {
		return nil, "", auth.ErrInvalidCredentials
	}
	return f.user, "test-token", nil
}

func (f *fakeAuth) SignOut(ctx context.Context, token string) error {
	return f.signOutErr
}

func (f *fakeAuth) SessionFromRequest(r *http.Request) (*models.User, error) {
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	return f.user, nil
}

func (f *fakeAuth) CookieName() string {
	return "insidex_session"
}

var _ app.AuthService = (*fakeAuth)(nil)

// fakeAppRepo covers the repository surface App needs
type fakeAppRepo struct {
	healthErr error
	addErr    error
	removeErr error
	added     []*models.WatchlistItem
}

func (f *fakeAppRepo) Close() {}

func (f *fakeAppRepo) Health(ctx context.Context) error {
	return f.healthErr
}

func (f *fakeAppRepo) AddToWatchlist(ctx context.Context, item *models.WatchlistItem) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.added = append(f.added, item)
	return nil
}

func (f *fakeAppRepo) RemoveFromWatchlist(ctx context.Context, userID, symbol string) error {
	return f.removeErr
}

func (f *fakeAppRepo) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	return 0, nil
}

var _ app.RepositoryInterface = (*fakeAppRepo)(nil)

func testUser() *models.User {
	return &models.User{
		ID:        "user-1",
		Email:     "jordan@example.com",
		Name:      "Jordan",
		CreatedAt: time.Now().UTC(),
	}
}

func newTestRouter(t *testing.T, stocks *fakeStocks, authSvc *fakeAuth, repo *fakeAppRepo) http.Handler {
	t.Helper()
	observability.SetMetricsForTesting(observability.NewMetrics(prometheus.NewRegistry()))

	if stocks == nil {
		stocks = &fakeStocks{}
	}
	if authSvc == nil {
		authSvc = &fakeAuth{user: testUser()}
	}
	if repo == nil {
		repo = &fakeAppRepo{}
	}

	cfg := config.NewTestConfig()
	application := app.New(cfg, repo, stocks, authSvc, nil)
	return NewRouter(NewHandler(application, cfg))
}

func TestHandleHealth(t *testing.T) {
	router := newTestRouter(t, nil, nil, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %v, want 200", rec.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %v, want ok", body["status"])
	}
}

func TestHandleHealth_DatabaseDown(t *testing.T) {
	repo := &fakeAppRepo{healthErr: errors.New("connection refused")}
	router := newTestRouter(t, nil, nil, repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["status"] != "degraded" {
		t.Errorf("status field = %v, want degraded", body["status"])
	}
}

func TestProtectedRoute_Unauthenticated(t *testing.T) {
	authSvc := &fakeAuth{sessionErr: auth.ErrNotAuthenticated}
	router := newTestRouter(t, nil, authSvc, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/watchlist", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %v, want 401", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["redirect"] != "/sign-in" {
		t.Errorf("redirect = %v, want /sign-in", body["redirect"])
	}
}

func TestHandleSignIn_SetsCookie(t *testing.T) {
	router := newTestRouter(t, nil, nil, nil)

	req := httptest.NewRequest("POST", "/api/auth/sign-in",
		strings.NewReader(`{"email": "jordan@example.com", "password": "hunter2!"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %v, want 200", rec.Code)
	}

	cookies := rec.Result().Cookies()
	found := false
	for _, c := range cookies {
		if c.Name == "insidex_session" && c.Value == "test-token" {
			found = true
			if !c.HttpOnly {
				t.Error("session cookie should be HttpOnly")
			}
		}
	}
	if !found {
		t.Error("expected session cookie to be set")
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["success"] != true {
		t.Errorf("success = %v, want true", body["success"])
	}
}

func TestHandleSignIn_InvalidCredentials(t *testing.T) {
	authSvc := &fakeAuth{user: nil}
	router := newTestRouter(t, nil, authSvc, nil)

	req := httptest.NewRequest("POST", "/api/auth/sign-in",
		strings.NewReader(`{"email": "jordan@example.com", "password": "wrong"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %v, want 401", rec.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["success"] != false {
		t.Errorf("success = %v, want false", body["success"])
	}
}

func TestHandleSignUp(t *testing.T) {
	router := newTestRouter(t, nil, nil, nil)

	req := httptest.NewRequest("POST", "/api/auth/sign-up",
		strings.NewReader(`{"email": "jordan@example.com", "password": "hunter2!", "fullName": "Jordan"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %v, want 200", rec.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["success"] != true {
		t.Errorf("success = %v, want true", body["success"])
	}
}

func TestHandleSignOut_ClearsCookie(t *testing.T) {
	router := newTestRouter(t, nil, nil, nil)

	req := httptest.NewRequest("POST", "/api/auth/sign-out", nil)
	req.AddCookie(&http.Cookie{Name: "insidex_session", Value: "test-token"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %v, want 200", rec.Code)
	}

	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "insidex_session" && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("expected session cookie to be cleared")
	}
}

func TestHandleSearch(t *testing.T) {
	stocks := &fakeStocks{
		searchResults: []models.StockWithWatchlistStatus{
			{Symbol: "AAPL", Name: "Apple Inc", Exchange: "NASDAQ", Type: "Common Stock", IsInWatchlist: true},
		},
	}
	router := newTestRouter(t, stocks, nil, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/search?q=apple", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %v, want 200", rec.Code)
	}

	var results []models.StockWithWatchlistStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &results); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(results) != 1 || results[0].Symbol != "AAPL" {
		t.Errorf("results = %v, want one AAPL entry", results)
	}
	if !results[0].IsInWatchlist {
		t.Error("IsInWatchlist = false, want true")
	}
}

func TestHandleNews_PublicRoute(t *testing.T) {
	stocks := &fakeStocks{
		news: []models.NewsArticle{{ID: 1, Headline: "Markets open higher", URL: "https://example.com/1"}},
	}
	// No session at all; news must still answer
	authSvc := &fakeAuth{sessionErr: auth.ErrNotAuthenticated}
	router := newTestRouter(t, stocks, authSvc, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/news?symbols=AAPL,MSFT", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %v, want 200", rec.Code)
	}

	var articles []models.NewsArticle
	if err := json.Unmarshal(rec.Body.Bytes(), &articles); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(articles) != 1 {
		t.Errorf("articles length = %v, want 1", len(articles))
	}
}

func TestHandleNews_UpstreamError(t *testing.T) {
	stocks := &fakeStocks{newsErr: errors.New("failed to fetch news")}
	router := newTestRouter(t, stocks, nil, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/news", nil))

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %v, want 502", rec.Code)
	}
}

func TestHandleStockDetails(t *testing.T) {
	stocks := &fakeStocks{
		details: &models.StockDetails{
			Symbol:         "AAPL",
			Company:        "Apple Inc",
			CurrentPrice:   150.25,
			PriceFormatted: "$150.25",
		},
	}
	router := newTestRouter(t, stocks, nil, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/stocks/AAPL", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %v, want 200", rec.Code)
	}

	var details models.StockDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &details); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if details.Symbol != "AAPL" || details.PriceFormatted != "$150.25" {
		t.Errorf("details = %+v, want AAPL at $150.25", details)
	}
}

func TestHandleGetWatchlist(t *testing.T) {
	stocks := &fakeStocks{
		watchlist: []models.WatchlistStock{
			{UserID: "user-1", Symbol: "AAPL", Company: "Apple Inc", PriceFormatted: "$150.25"},
		},
	}
	router := newTestRouter(t, stocks, nil, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/watchlist", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %v, want 200", rec.Code)
	}

	var list []models.WatchlistStock
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(list) != 1 || list[0].Symbol != "AAPL" {
		t.Errorf("list = %v, want one AAPL entry", list)
	}
}

func TestHandleAddToWatchlist(t *testing.T) {
	repo := &fakeAppRepo{}
	router := newTestRouter(t, nil, nil, repo)

	req := httptest.NewRequest("POST", "/api/watchlist",
		strings.NewReader(`{"symbol": "aapl", "company": "Apple Inc"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %v, want 200", rec.Code)
	}
	if len(repo.added) != 1 {
		t.Fatalf("added entries = %v, want 1", len(repo.added))
	}
	if repo.added[0].Symbol != "AAPL" {
		t.Errorf("stored symbol = %v, want AAPL", repo.added[0].Symbol)
	}
	if repo.added[0].UserID != "user-1" {
		t.Errorf("stored user = %v, want user-1", repo.added[0].UserID)
	}
}

func TestHandleAddToWatchlist_Duplicate(t *testing.T) {
	repo := &fakeAppRepo{addErr: repository.ErrAlreadyInWatchlist}
	router := newTestRouter(t, nil, nil, repo)

	req := httptest.NewRequest("POST", "/api/watchlist",
		strings.NewReader(`{"symbol": "AAPL"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %v, want 200", rec.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["success"] != false {
		t.Errorf("success = %v, want false", body["success"])
	}
	if body["error"] != "Stock already in watchlist" {
		t.Errorf("error = %v, want 'Stock already in watchlist'", body["error"])
	}
}

func TestHandleAddToWatchlist_MissingSymbol(t *testing.T) {
	router := newTestRouter(t, nil, nil, nil)

	req := httptest.NewRequest("POST", "/api/watchlist", strings.NewReader(`{"symbol": "  "}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %v, want 400", rec.Code)
	}
}

func TestHandleRemoveFromWatchlist(t *testing.T) {
	router := newTestRouter(t, nil, nil, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("DELETE", "/api/watchlist/AAPL", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %v, want 200", rec.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["success"] != true {
		t.Errorf("success = %v, want true", body["success"])
	}
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	router := newTestRouter(t, nil, nil, nil)

	req := httptest.NewRequest("OPTIONS", "/api/news", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %v, want 200", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got == "" {
		t.Error("expected Access-Control-Allow-Origin header")
	}
}
