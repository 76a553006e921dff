package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chilin89117/shopfront/internal/adapter/http/middleware"
	"github.com/chilin89117/shopfront/internal/entity"
	"github.com/chilin89117/shopfront/internal/invoice"
	"github.com/chilin89117/shopfront/internal/upload"
	"github.com/chilin89117/shopfront/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ---- port stubs ----

type stubSessions struct {
	mu       sync.Mutex
	sessions map[string]entity.Principal
}

func (s *stubSessions) Create(_ context.Context, p entity.Principal) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := "tok-" + p.ID
	s.sessions[token] = p
	return token, nil
}

func (s *stubSessions) Get(_ context.Context, token string) (entity.Principal, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.sessions[token]
	return p, ok, nil
}

func (s *stubSessions) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

type stubUsers struct {
	byEmail map[string]*entity.User
}

func (r *stubUsers) Create(_ context.Context, u *entity.User) error {
	r.byEmail[u.Email] = u
	return nil
}

func (r *stubUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (r *stubUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	if u, ok := r.byEmail[email]; ok {
		return u, nil
	}
	return nil, entity.ErrNotFound
}

func (r *stubUsers) UpdatePassword(_ context.Context, id, hash string) error { return nil }

type stubMail struct{}

func (stubMail) Send(context.Context, string, string, string) error { return nil }

type stubProducts struct {
	products []entity.Product
}

func (r *stubProducts) Create(_ context.Context, p *entity.Product) error {
	r.products = append(r.products, *p)
	return nil
}

func (r *stubProducts) Update(_ context.Context, p *entity.Product) error { return nil }

func (r *stubProducts) SoftDelete(_ context.Context, id string) error { return nil }

func (r *stubProducts) GetByID(_ context.Context, id string) (*entity.Product, error) {
	for _, p := range r.products {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (r *stubProducts) List(_ context.Context, offset, limit int) ([]entity.Product, error) {
	if offset >= len(r.products) {
		return nil, nil
	}
	end := offset + limit
	if end > len(r.products) {
		end = len(r.products)
	}
	return r.products[offset:end], nil
}

func (r *stubProducts) Count(_ context.Context) (int, error) { return len(r.products), nil }

func (r *stubProducts) ListByOwner(_ context.Context, ownerID string, offset, limit int) ([]entity.Product, error) {
	return r.List(context.Background(), offset, limit)
}

func (r *stubProducts) CountByOwner(_ context.Context, ownerID string) (int, error) {
	return len(r.products), nil
}

type stubCarts struct{}

func (stubCarts) Items(context.Context, string) ([]entity.CartItem, error) { return nil, nil }
func (stubCarts) Add(context.Context, string, string) error                { return nil }
func (stubCarts) Remove(context.Context, string, string, int) error        { return nil }
func (stubCarts) Clear(context.Context, string) error                      { return nil }
func (stubCarts) PurgeProduct(context.Context, string) error               { return nil }

type stubOrders struct {
	orders map[string]*entity.Order
}

func (r *stubOrders) Create(_ context.Context, o *entity.Order) error {
	r.orders[o.ID] = o
	return nil
}

func (r *stubOrders) GetByID(_ context.Context, id string) (*entity.Order, error) {
	if o, ok := r.orders[id]; ok {
		return o, nil
	}
	return nil, entity.ErrNotFound
}

func (r *stubOrders) ListByUser(_ context.Context, userID string) ([]entity.Order, error) {
	var out []entity.Order
	for _, o := range r.orders {
		if o.User.ID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *stubOrders) UpdatePaymentStatusIf(_ context.Context, id string, from, to entity.PaymentStatus) (bool, error) {
	return true, nil
}

type stubGateway struct{}

func (stubGateway) Charge(context.Context, usecase.ChargeInput) (usecase.ChargeResult, error) {
	return usecase.ChargeResult{ProviderRef: "ch_test"}, nil
}

type stubEvents struct{}

func (stubEvents) PublishPlaced(context.Context, usecase.OrderPlacedMsg) error { return nil }

type stubStatuses struct{}

func (stubStatuses) SetPaymentStatus(context.Context, string, string) error { return nil }
func (stubStatuses) GetPaymentStatus(context.Context, string) (string, bool, error) {
	return "", false, nil
}

// in-memory artifact store + counting renderer for the invoice route

type testArtifacts struct {
	mu    sync.Mutex
	files map[string][]byte
}

func (s *testArtifacts) Open(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.files[key]
	if !ok {
		return nil, invoice.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (s *testArtifacts) Create(_ context.Context, key string) (invoice.PendingArtifact, error) {
	return &testPending{store: s, key: key}, nil
}

type testPending struct {
	store *testArtifacts
	key   string
	buf   bytes.Buffer
}

func (p *testPending) Write(b []byte) (int, error) { return p.buf.Write(b) }

func (p *testPending) Commit() error {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()
	p.store.files[p.key] = p.buf.Bytes()
	return nil
}

func (p *testPending) Discard() error { return nil }

type testRenderer struct {
	calls atomic.Int32
}

func (r *testRenderer) Render(_ context.Context, order *entity.Order, w io.Writer) error {
	r.calls.Add(1)
	_, err := w.Write([]byte("%PDF-1.4 test invoice " + order.ID))
	return err
}

// ---- fixture ----

type testApp struct {
	router   *gin.Engine
	sessions *stubSessions
	orders   *stubOrders
	renderer *testRenderer
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)

	sessions := &stubSessions{sessions: map[string]entity.Principal{
		"tok-u1":    {ID: "u1", Name: "Abbie", Email: "abbie@example.com"},
		"tok-u2":    {ID: "u2", Name: "Ben", Email: "ben@example.com"},
		"tok-admin": {ID: "a1", Name: "Root", Email: "root@example.com", Admin: true},
	}}
	users := &stubUsers{byEmail: map[string]*entity.User{
		"abbie@example.com": {ID: "u1", Name: "Abbie", Email: "abbie@example.com", PasswordHash: string(hash)},
	}}
	products := &stubProducts{products: []entity.Product{
		{ID: "p1", Title: "Widget", Price: decimal.RequireFromString("5.00"), ImagePath: "w.png", OwnerID: "a1"},
		{ID: "p2", Title: "Gadget", Price: decimal.RequireFromString("9.99"), ImagePath: "g.png", OwnerID: "a1"},
	}}
	orders := &stubOrders{orders: map[string]*entity.Order{
		"o1": {
			ID:   "o1",
			User: entity.OrderUser{ID: "u1", Name: "Abbie", Email: "abbie@example.com"},
			Items: []entity.OrderItem{
				{Title: "Widget", Qty: 2, UnitPrice: decimal.RequireFromString("5.00"), ImagePath: "w.png"},
			},
			PaymentStatus: entity.PaymentPaid,
			CreatedAt:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		},
	}}

	images, err := upload.NewImageStore(t.TempDir())
	require.NoError(t, err)
	renderer := &testRenderer{}
	invoices := invoice.NewMaterializer(&testArtifacts{files: map[string][]byte{}}, renderer)

	authUC := usecase.NewAuth(users, sessions, stubMail{}, usecase.AuthConfig{
		ResetSecret: "s", Issuer: "shopfront", ResetTTL: time.Hour, ResetURL: "http://x/reset?token=",
	})
	catalogUC := usecase.NewCatalog(products, stubCarts{}, 4, 2)
	cartUC := usecase.NewCart(stubCarts{}, products)
	checkoutUC := usecase.NewCheckout(stubCarts{}, orders, stubGateway{}, stubEvents{}, stubStatuses{}, "usd")
	ordersUC := usecase.NewOrders(orders, stubStatuses{})

	sh := NewShopHandler(catalogUC, cartUC, checkoutUC, ordersUC, invoices)
	ah := NewAuthHandler(authUC, "sid", time.Hour)
	adm := NewAdminHandler(catalogUC, images)
	sa := middleware.NewSessionAuth(sessions, "sid")

	return &testApp{
		router:   NewRouter(sh, ah, adm, sa, images.Dir()),
		sessions: sessions,
		orders:   orders,
		renderer: renderer,
	}
}

func (a *testApp) do(method, path, token string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: token})
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// ---- tests ----

func TestListProductsPublic(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "/products", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp pageResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Products, 2)
	assert.Equal(t, "5.00", resp.Products[0].Price)
	assert.Equal(t, "/uploads/w.png", resp.Products[0].ImageURL)
}

func TestAuthedRoutesRejectAnonymous(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/cart", "/orders", "/orders/o1/invoice"} {
		w := app.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
	assert.Zero(t, app.renderer.calls.Load())
}

func TestAdminRoutesRequireAdminFlag(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "/admin/products", "tok-u1", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(http.MethodGet, "/admin/products", "tok-admin", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginSetsSessionCookie(t *testing.T) {
	app := newTestApp(t)

	body := bytes.NewBufferString(`{"email":"abbie@example.com","password":"secret1"}`)
	w := app.do(http.MethodPost, "/login", "", body)
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	var sid *http.Cookie
	for _, ck := range cookies {
		if ck.Name == "sid" {
			sid = ck
		}
	}
	require.NotNil(t, sid)
	assert.NotEmpty(t, sid.Value)
	assert.True(t, sid.HttpOnly)

	w = app.do(http.MethodPost, "/login", "", bytes.NewBufferString(`{"email":"abbie@example.com","password":"wrong"}`))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetInvoice(t *testing.T) {
	app := newTestApp(t)

	t.Run("owner downloads the invoice", func(t *testing.T) {
		w := app.do(http.MethodGet, "/orders/o1/invoice", "tok-u1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Equal(t, `inline; filename="invoice-o1.pdf"`, w.Header().Get("Content-Disposition"))
		assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
	})

	t.Run("repeat download is served from cache", func(t *testing.T) {
		first := app.renderer.calls.Load()
		w := app.do(http.MethodGet, "/orders/o1/invoice", "tok-u1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, first, app.renderer.calls.Load())
	})

	t.Run("other users are forbidden and trigger no render", func(t *testing.T) {
		before := app.renderer.calls.Load()
		w := app.do(http.MethodGet, "/orders/o1/invoice", "tok-u2", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, before, app.renderer.calls.Load())
	})

	t.Run("unknown order is not found", func(t *testing.T) {
		w := app.do(http.MethodGet, "/orders/nope/invoice", "tok-u1", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCheckoutEmptyCart(t *testing.T) {
	app := newTestApp(t)

	body := bytes.NewBufferString(`{"paymentToken":"tok_visa"}`)
	w := app.do(http.MethodPost, "/checkout", "tok-u1", body)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestListOrders(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "/orders", "tok-u1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Orders []orderResp `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Orders, 1)
	assert.Equal(t, "o1", resp.Orders[0].ID)
	assert.Equal(t, "PAID", resp.Orders[0].PaymentStatus)
	assert.Equal(t, "10.00", resp.Orders[0].Total)
}
