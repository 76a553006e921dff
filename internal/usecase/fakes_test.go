package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/chilin89117/shopfront/internal/entity"
)

// In-memory fakes for the repo/gateway ports. They keep just enough
// state for the usecases under test.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User // keyed by id
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[string]*entity.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.users {
		if e.Email == u.Email {
			return entity.ErrDuplicateEmail
		}
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, entity.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return entity.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]entity.Principal
	next     int
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[string]entity.Principal{}}
}

func (s *fakeSessionStore) Create(_ context.Context, p entity.Principal) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	token := string(rune('a' + s.next))
	s.sessions[token] = p
	return token, nil
}

func (s *fakeSessionStore) Get(_ context.Context, token string) (entity.Principal, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.sessions[token]
	return p, ok, nil
}

func (s *fakeSessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type fakeMailSender struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailSender) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

type fakeCartRepo struct {
	mu     sync.Mutex
	items  map[string][]entity.CartItem // keyed by user id
	purged []string
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{items: map[string][]entity.CartItem{}}
}

func (r *fakeCartRepo) Items(_ context.Context, userID string) ([]entity.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.CartItem(nil), r.items[userID]...), nil
}

func (r *fakeCartRepo) Add(_ context.Context, userID, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, it := range r.items[userID] {
		if it.ProductID == productID {
			r.items[userID][i].Qty++
			return nil
		}
	}
	r.items[userID] = append(r.items[userID], entity.CartItem{ProductID: productID, Qty: 1})
	return nil
}

func (r *fakeCartRepo) Remove(_ context.Context, userID, productID string, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := r.items[userID]
	for i, it := range lines {
		if it.ProductID != productID {
			continue
		}
		if qty <= 0 || qty >= it.Qty {
			r.items[userID] = append(lines[:i], lines[i+1:]...)
		} else {
			lines[i].Qty -= qty
		}
		return nil
	}
	return nil
}

func (r *fakeCartRepo) Clear(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, userID)
	return nil
}

func (r *fakeCartRepo) PurgeProduct(_ context.Context, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.purged = append(r.purged, productID)
	for uid, lines := range r.items {
		kept := lines[:0]
		for _, it := range lines {
			if it.ProductID != productID {
				kept = append(kept, it)
			}
		}
		r.items[uid] = kept
	}
	return nil
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*entity.Order
	seq    []string // creation order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[string]*entity.Order{}}
}

func (r *fakeOrderRepo) Create(_ context.Context, o *entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *o
	r.orders[o.ID] = &cp
	r.seq = append(r.seq, o.ID)
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.orders[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, entity.ErrNotFound
}

func (r *fakeOrderRepo) ListByUser(_ context.Context, userID string) ([]entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Order
	for i := len(r.seq) - 1; i >= 0; i-- {
		if o := r.orders[r.seq[i]]; o.User.ID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) UpdatePaymentStatusIf(_ context.Context, id string, from, to entity.PaymentStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.PaymentStatus != from {
		return false, nil
	}
	o.PaymentStatus = to
	return true, nil
}

type fakeGateway struct {
	mu     sync.Mutex
	err    error
	inputs []ChargeInput
}

func (g *fakeGateway) Charge(_ context.Context, in ChargeInput) (ChargeResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.inputs = append(g.inputs, in)
	if g.err != nil {
		return ChargeResult{}, g.err
	}
	return ChargeResult{ProviderRef: "ch_test"}, nil
}

type fakeEvents struct {
	mu   sync.Mutex
	msgs []OrderPlacedMsg
	err  error
}

func (e *fakeEvents) PublishPlaced(_ context.Context, msg OrderPlacedMsg) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.msgs = append(e.msgs, msg)
	return nil
}

type fakeStatusCache struct {
	mu       sync.Mutex
	statuses map[string]string
}

func newFakeStatusCache() *fakeStatusCache {
	return &fakeStatusCache{statuses: map[string]string{}}
}

func (c *fakeStatusCache) SetPaymentStatus(_ context.Context, orderID, status string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statuses[orderID] = status
	return nil
}

func (c *fakeStatusCache) GetPaymentStatus(_ context.Context, orderID string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.statuses[orderID]
	return s, ok, nil
}

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[string]*entity.Product
	seq      []string
}

func newFakeProductRepo(products ...*entity.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: map[string]*entity.Product{}}
	for _, p := range products {
		r.products[p.ID] = p
		r.seq = append(r.seq, p.ID)
	}
	return r
}

func (r *fakeProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.products[p.ID] = &cp
	r.seq = append(r.seq, p.ID)
	return nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[p.ID]; !ok {
		return entity.ErrNotFound
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) SoftDelete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return entity.ErrNotFound
	}
	p.Deleted = true
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, entity.ErrNotFound
}

func (r *fakeProductRepo) live() []entity.Product {
	var out []entity.Product
	for i := len(r.seq) - 1; i >= 0; i-- {
		if p := r.products[r.seq[i]]; !p.Deleted {
			out = append(out, *p)
		}
	}
	return out
}

func (r *fakeProductRepo) List(_ context.Context, offset, limit int) ([]entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return window(r.live(), offset, limit), nil
}

func (r *fakeProductRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live()), nil
}

func (r *fakeProductRepo) ListByOwner(_ context.Context, ownerID string, offset, limit int) ([]entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var owned []entity.Product
	for _, p := range r.live() {
		if p.OwnerID == ownerID {
			owned = append(owned, p)
		}
	}
	return window(owned, offset, limit), nil
}

func (r *fakeProductRepo) CountByOwner(_ context.Context, ownerID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.live() {
		if p.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

func window(prods []entity.Product, offset, limit int) []entity.Product {
	if offset >= len(prods) {
		return nil
	}
	end := offset + limit
	if end > len(prods) {
		end = len(prods)
	}
	return prods[offset:end]
}

var errBoom = errors.New("boom")
