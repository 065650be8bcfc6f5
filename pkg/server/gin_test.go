package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Jayjokeer/loyalty-api/config"
	"github.com/Jayjokeer/loyalty-api/dao"
	"github.com/Jayjokeer/loyalty-api/handler"
	"github.com/Jayjokeer/loyalty-api/middleware"
	"github.com/Jayjokeer/loyalty-api/pkg/timeutil"
	"github.com/Jayjokeer/loyalty-api/service"

	"github.com/gin-gonic/gin"
	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const apiKey = "test_key"

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

type testApp struct {
	engine *gin.Engine
	ledger *dao.MemoryLedger
	clock  *clock
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	conf := config.Default()
	conf.Auth.ApiKey = apiKey
	require.NoError(t, conf.Validate())

	clk := &clock{t: time.Date(2025, 3, 1, 11, 0, 0, 0, time.UTC)}
	cal, err := timeutil.NewCalendar(conf.Loyalty.Timezone, clk.Now)
	require.NoError(t, err)

	ledger := dao.NewMemoryLedger()
	locks := service.NewLocks()
	h := &Handlers{
		Health:   &handler.Health{Calendar: cal},
		Customer: &handler.Customer{CustomerService: &service.CustomerService{Ledger: ledger, Calendar: cal, Locks: locks}},
		Points: &handler.Point{
			Config:       conf,
			PointService: &service.PointService{Config: conf, Ledger: ledger, Calendar: cal, Locks: locks},
			Idempotency:  dao.NewMemoryIdempotency(conf.Idempotency.TTL),
			Calendar:     cal,
		},
		Wallet: &handler.Wallet{WalletService: &service.WalletService{Ledger: ledger, Calendar: cal, Locks: locks}},
	}
	return &testApp{engine: NewGinEngine(conf, h), ledger: ledger, clock: clk}
}

type call struct {
	method, path, body, idemKey string
	noAuth                      bool
}

func (a *testApp) do(c call) *httptest.ResponseRecorder {
	req := httptest.NewRequest(c.method, c.path, strings.NewReader(c.body))
	req.Header.Set("Content-Type", "application/json")
	if !c.noAuth {
		req.Header.Set(middleware.HeaderApiKey, apiKey)
	}
	if c.idemKey != "" {
		req.Header.Set(middleware.HeaderIdempotencyKey, c.idemKey)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *testApp) createCustomer(t *testing.T, phone string) string {
	t.Helper()
	w := a.do(call{method: http.MethodPost, path: "/customers", body: fmt.Sprintf(`{"phone":%q}`, phone)})
	require.Contains(t, []int{http.StatusOK, http.StatusCreated}, w.Code, w.Body.String())
	return gjson.Get(w.Body.String(), "id").String()
}

func (a *testApp) earn(customerID string, amountMinor int64, key string) *httptest.ResponseRecorder {
	return a.do(call{
		method:  http.MethodPost,
		path:    "/earn",
		body:    fmt.Sprintf(`{"customerId":%q,"amountMinor":%d,"currency":"NGN"}`, customerID, amountMinor),
		idemKey: key,
	})
}

func (a *testApp) redeem(customerID string, points int64, key string) *httptest.ResponseRecorder {
	return a.do(call{
		method:  http.MethodPost,
		path:    "/redeem",
		body:    fmt.Sprintf(`{"customerId":%q,"points":%d}`, customerID, points),
		idemKey: key,
	})
}

func errorCode(w *httptest.ResponseRecorder) string {
	return gjson.Get(w.Body.String(), "error").String()
}

func TestScenario(t *testing.T) {
	app := newTestApp(t)
	id := app.createCustomer(t, "+2348000000001")
	assert.True(t, strings.HasPrefix(id, "cust_"))

	w := app.earn(id, 10000, "earn-1")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, int64(100), gjson.Get(w.Body.String(), "creditedPoints").Int())
	assert.Equal(t, int64(4900), gjson.Get(w.Body.String(), "remainingDailyAllowance").Int())
	assert.True(t, strings.HasPrefix(gjson.Get(w.Body.String(), "transaction.id").String(), "tx_"))
	assert.Equal(t, id, gjson.Get(w.Body.String(), "transaction.customerId").String())

	w = app.redeem(id, 60, "redeem-1")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, fmt.Sprintf(`{"customerId":%q,"redeemedPoints":60,"newBalance":40}`, id), w.Body.String())

	w = app.redeem(id, 41, "redeem-2")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"INSUFFICIENT_POINTS","message":"Not enough points to redeem."}`, w.Body.String())

	w = app.do(call{method: http.MethodGet, path: "/wallet/" + id})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, fmt.Sprintf(`{
		"customerId": %q,
		"balancePoints": 40,
		"todayEarnedPoints": 100,
		"lifetimeEarnedPoints": 100,
		"lifetimeRedeemedPoints": 60
	}`, id), w.Body.String())
}

func TestEarnReplayIsByteIdentical(t *testing.T) {
	app := newTestApp(t)
	id := app.createCustomer(t, "+2348000000002")

	first := app.earn(id, 10000, "same-key")
	require.Equal(t, http.StatusOK, first.Code)

	app.clock.Set(app.clock.Now().Add(time.Minute))
	second := app.earn(id, 10000, "same-key")
	assert.Equal(t, first.Code, second.Code)
	assert.Equal(t, first.Body.Bytes(), second.Body.Bytes())
	assert.Equal(t, "true", second.Header().Get(middleware.HeaderReplayed))

	stats, err := app.ledger.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Transactions)

	// 不同的 key 是新请求
	third := app.earn(id, 10000, "other-key")
	assert.NotEqual(t, first.Body.String(), third.Body.String())
	stats, err = app.ledger.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Transactions)
}

func TestInsufficientPointsIsReplayed(t *testing.T) {
	app := newTestApp(t)
	id := app.createCustomer(t, "+2348000000003")

	first := app.redeem(id, 10, "r-1")
	assert.Equal(t, http.StatusBadRequest, first.Code)

	require.Equal(t, http.StatusOK, app.earn(id, 10000, "e-1").Code)

	// 余额已经足够, 但同一请求仍然重放首次的拒绝
	again := app.redeem(id, 10, "r-1")
	assert.Equal(t, http.StatusBadRequest, again.Code)
	assert.Equal(t, "INSUFFICIENT_POINTS", errorCode(again))
	assert.Equal(t, "true", again.Header().Get(middleware.HeaderReplayed))

	fresh := app.redeem(id, 10, "r-2")
	assert.Equal(t, http.StatusOK, fresh.Code)
}

func TestDailyCapOverHTTP(t *testing.T) {
	app := newTestApp(t)
	id := app.createCustomer(t, "+2348000000004")

	w := app.earn(id, 600000, "cap-1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(5000), gjson.Get(w.Body.String(), "creditedPoints").Int())
	assert.Equal(t, int64(0), gjson.Get(w.Body.String(), "remainingDailyAllowance").Int())

	w = app.earn(id, 10000, "cap-2")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(0), gjson.Get(w.Body.String(), "creditedPoints").Int())
}

func TestCreateCustomer(t *testing.T) {
	app := newTestApp(t)

	w := app.do(call{method: http.MethodPost, path: "/customers", body: `{"phone":"+2348000000005","email":"a@b.co"}`})
	require.Equal(t, http.StatusCreated, w.Code)
	id := gjson.Get(w.Body.String(), "id").String()
	assert.Equal(t, "a@b.co", gjson.Get(w.Body.String(), "email").String())
	assert.True(t, gjson.Get(w.Body.String(), "createdAt").Exists())

	w = app.do(call{method: http.MethodPost, path: "/customers", body: `{"phone":"+2348000000005"}`})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, gjson.Get(w.Body.String(), "id").String())

	w = app.do(call{method: http.MethodPost, path: "/customers", body: `{"phone":"+2348000000006"}`})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, gjson.Null, gjson.Get(w.Body.String(), "email").Type)

	for _, body := range []string{`{}`, `{"phone":""}`, `{"phone":"   "}`, `not json`} {
		w = app.do(call{method: http.MethodPost, path: "/customers", body: body})
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.JSONEq(t, `{"error":"INVALID_REQUEST","message":"Phone is required"}`, w.Body.String(), body)
	}
}

func TestEarnValidation(t *testing.T) {
	app := newTestApp(t)
	id := app.createCustomer(t, "+2348000000007")

	tests := []struct {
		name     string
		body     string
		key      string
		wantCode int
		wantErr  string
	}{
		{"missing key", fmt.Sprintf(`{"customerId":%q,"amountMinor":100,"currency":"NGN"}`, id), "", 400, "MISSING_IDEMPOTENCY_KEY"},
		{"missing amount", fmt.Sprintf(`{"customerId":%q,"currency":"NGN"}`, id), "v-1", 400, "INVALID_REQUEST"},
		{"negative amount", fmt.Sprintf(`{"customerId":%q,"amountMinor":-1,"currency":"NGN"}`, id), "v-2", 400, "INVALID_REQUEST"},
		{"fractional amount", fmt.Sprintf(`{"customerId":%q,"amountMinor":1.5,"currency":"NGN"}`, id), "v-3", 400, "INVALID_REQUEST"},
		{"missing customer id", `{"amountMinor":100,"currency":"NGN"}`, "v-4", 400, "INVALID_REQUEST"},
		{"invalid json", `{"customerId":`, "v-5", 400, "INVALID_REQUEST"},
		{"wrong currency", fmt.Sprintf(`{"customerId":%q,"amountMinor":100,"currency":"USD"}`, id), "v-6", 400, "INVALID_CURRENCY"},
		{"unknown customer", `{"customerId":"cust_missing","amountMinor":100,"currency":"NGN"}`, "v-7", 404, "CUSTOMER_NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := call{method: http.MethodPost, path: "/earn", body: tt.body, idemKey: tt.key}
			w := app.do(c)
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
			assert.Equal(t, tt.wantErr, errorCode(w))

			// 校验类错误不缓存
			again := app.do(c)
			assert.Empty(t, again.Header().Get(middleware.HeaderReplayed))
		})
	}

	stats, err := app.ledger.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Transactions)
}

func TestEarnZeroAmount(t *testing.T) {
	app := newTestApp(t)
	id := app.createCustomer(t, "+2348000000008")

	w := app.earn(id, 0, "zero")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, int64(0), gjson.Get(w.Body.String(), "creditedPoints").Int())
	assert.Equal(t, int64(0), gjson.Get(w.Body.String(), "transaction.points").Int())
}

func TestRedeemValidation(t *testing.T) {
	app := newTestApp(t)
	id := app.createCustomer(t, "+2348000000009")

	for i, body := range []string{
		fmt.Sprintf(`{"customerId":%q}`, id),
		fmt.Sprintf(`{"customerId":%q,"points":0}`, id),
		fmt.Sprintf(`{"customerId":%q,"points":-5}`, id),
		`{"points":5}`,
	} {
		w := app.do(call{method: http.MethodPost, path: "/redeem", body: body, idemKey: fmt.Sprintf("rv-%d", i)})
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, "INVALID_REQUEST", errorCode(w), body)
	}

	w := app.redeem("cust_missing", 1, "rv-x")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "CUSTOMER_NOT_FOUND", errorCode(w))
}

func TestWalletNotFoundAndHistory(t *testing.T) {
	app := newTestApp(t)

	w := app.do(call{method: http.MethodGet, path: "/wallet/cust_missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"CUSTOMER_NOT_FOUND","message":"Customer does not exist"}`, w.Body.String())

	id := app.createCustomer(t, "+2348000000010")
	require.Equal(t, http.StatusOK, app.earn(id, 10000, "h-1").Code)
	app.clock.Set(app.clock.Now().Add(time.Minute))
	require.Equal(t, http.StatusOK, app.redeem(id, 30, "h-2").Code)

	w = app.do(call{method: http.MethodGet, path: "/wallet/" + id + "/history?limit=1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, int64(-30), gjson.Get(w.Body.String(), "records.0.amount").Int())
	assert.Equal(t, "EXPENSE", gjson.Get(w.Body.String(), "records.0.order_type").String())
	assert.True(t, gjson.Get(w.Body.String(), "has_more").Bool())
	assert.Equal(t, int64(1), gjson.Get(w.Body.String(), "next_cursor").Int())

	w = app.do(call{method: http.MethodGet, path: "/wallet/" + id + "/history?action=1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), gjson.Get(w.Body.String(), "records.#").Int())
	assert.Equal(t, int64(10000), gjson.Get(w.Body.String(), "records.0.amount_minor").Int())

	w = app.do(call{method: http.MethodGet, path: "/wallet/" + id + "/history?action=7"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthAndFallbacks(t *testing.T) {
	app := newTestApp(t)

	for _, c := range []call{
		{method: http.MethodPost, path: "/customers", body: `{"phone":"+1"}`, noAuth: true},
		{method: http.MethodPost, path: "/earn", body: `{}`, idemKey: "k", noAuth: true},
		{method: http.MethodGet, path: "/wallet/cust_x", noAuth: true},
	} {
		w := app.do(c)
		assert.Equal(t, http.StatusUnauthorized, w.Code, c.path)
		assert.Equal(t, "UNAUTHORIZED", errorCode(w))
	}

	w := app.do(call{method: http.MethodGet, path: "/health", noAuth: true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", gjson.Get(w.Body.String(), "status").String())
	assert.Equal(t, "2025-03-01T11:00:00.000Z", gjson.Get(w.Body.String(), "timestamp").String())

	w = app.do(call{method: http.MethodGet, path: "/metrics", noAuth: true})
	assert.Equal(t, http.StatusOK, w.Code)

	w = app.do(call{method: http.MethodGet, path: "/nope", noAuth: true})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"NOT_FOUND","message":"Endpoint not found"}`, w.Body.String())
}

func TestPanicIsInternalError(t *testing.T) {
	app := newTestApp(t)
	app.engine.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := app.do(call{method: http.MethodGet, path: "/boom"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"INTERNAL_ERROR","message":"An internal error occurred"}`, w.Body.String())
}

func TestConcurrentDuplicateRequestsWriteOneRow(t *testing.T) {
	app := newTestApp(t)
	id := app.createCustomer(t, "+2348000000011")

	bodies := make(chan string, 30)
	var wg conc.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Go(func() {
			bodies <- app.earn(id, 10000, "dup").Body.String()
		})
	}
	wg.Wait()
	close(bodies)

	var first string
	for b := range bodies {
		if first == "" {
			first = b
		}
		assert.Equal(t, first, b)
	}

	stats, err := app.ledger.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Transactions)
}

func TestSweepIdempotencyStopsOnCancel(t *testing.T) {
	store := dao.NewMemoryIdempotency(time.Millisecond)
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Store(context.Background(), "fp", 200, []byte(`{}`), now))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- sweepIdempotency(ctx, store, 5*time.Millisecond, func() time.Time { return now.Add(time.Hour) })
	}()

	assert.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}

	assert.NoError(t, sweepIdempotency(context.Background(), store, 0, time.Now))
}
