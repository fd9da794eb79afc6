package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/plsp-store/backend/internal/auth"
	"github.com/plsp-store/backend/internal/catalog"
	"github.com/plsp-store/backend/internal/order"
	"github.com/plsp-store/backend/internal/user"
)

//
// ---------- STUBS ----------
//

// stubUserRepo implements user.Repository in memory.
type stubUserRepo struct {
	byEmail map[string]*user.User
}

func newStubUserRepo(users ...*user.User) *stubUserRepo {
	s := &stubUserRepo{byEmail: make(map[string]*user.User)}
	for _, u := range users {
		s.byEmail[u.Email] = u
	}
	return s
}

func (s *stubUserRepo) Create(ctx context.Context, u *user.User) error {
	if _, ok := s.byEmail[u.Email]; ok {
		return user.ErrAlreadyExist
	}
	s.byEmail[u.Email] = u
	return nil
}

func (s *stubUserRepo) GetByID(ctx context.Context, id string) (*user.User, error) {
	for _, u := range s.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if u, ok := s.byEmail[email]; ok {
		return u, nil
	}
	return nil, user.ErrNotFound
}

// stubCatalogRepo implements catalog.Repository over a fixed product list.
type stubCatalogRepo struct {
	categories []catalog.Category
	products   []catalog.Product
}

func (s *stubCatalogRepo) ListCategories(ctx context.Context, activeOnly bool) ([]catalog.Category, error) {
	out := []catalog.Category{}
	for _, c := range s.categories {
		if activeOnly && !c.IsActive {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *stubCatalogRepo) CreateCategory(ctx context.Context, c *catalog.Category) error {
	s.categories = append(s.categories, *c)
	return nil
}

func (s *stubCatalogRepo) UpdateCategory(ctx context.Context, id string, upd catalog.CategoryUpdate) error {
	for i := range s.categories {
		if s.categories[i].ID == id {
			if upd.Name != "" {
				s.categories[i].Name = upd.Name
			}
			if upd.IsActive != nil {
				s.categories[i].IsActive = *upd.IsActive
			}
			return nil
		}
	}
	return catalog.ErrNotFound
}

func (s *stubCatalogRepo) ListProducts(ctx context.Context, q catalog.ProductQuery) ([]catalog.Product, error) {
	out := []catalog.Product{}
	for _, p := range s.products {
		if q.ActiveOnly && !p.IsActive {
			continue
		}
		if q.CategoryID != "" && p.CategoryID != q.CategoryID {
			continue
		}
		if q.Q != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(q.Q)) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *stubCatalogRepo) GetProductsByIDs(ctx context.Context, ids []string) ([]catalog.Product, error) {
	out := []catalog.Product{}
	for _, p := range s.products {
		for _, id := range ids {
			if p.ID == id {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

func (s *stubCatalogRepo) CreateProduct(ctx context.Context, p *catalog.Product, variants []catalog.Variant) error {
	cp := *p
	cp.Variants = variants
	s.products = append(s.products, cp)
	return nil
}

func (s *stubCatalogRepo) UpdateProduct(ctx context.Context, id string, upd catalog.ProductUpdate, variants []catalog.Variant) error {
	for i := range s.products {
		if s.products[i].ID == id {
			if upd.Name != "" {
				s.products[i].Name = upd.Name
			}
			if upd.BasePrice != nil {
				s.products[i].BasePrice = *upd.BasePrice
			}
			if upd.IsActive != nil {
				s.products[i].IsActive = *upd.IsActive
			}
			if variants != nil {
				s.products[i].Variants = variants
			}
			return nil
		}
	}
	return catalog.ErrNotFound
}

func (s *stubCatalogRepo) DeactivateProduct(ctx context.Context, id string) error {
	f := false
	return s.UpdateProduct(ctx, id, catalog.ProductUpdate{IsActive: &f}, nil)
}

// stubOrderRepo implements order.Repository in memory.
type stubOrderRepo struct {
	orders     []order.Order
	lastFilter order.Filter
	failCreate bool
}

func (s *stubOrderRepo) Create(ctx context.Context, o *order.Order, items []order.Item) error {
	if s.failCreate {
		// nothing must become visible to readers
		return fmt.Errorf("write failed")
	}
	// the real repo writes the stored timestamps back via RETURNING
	o.CreatedAt = time.Now().UTC()
	o.UpdatedAt = o.CreatedAt
	cp := *o
	cp.Items = append([]order.Item(nil), items...)
	s.orders = append(s.orders, cp)
	return nil
}

func (s *stubOrderRepo) GetByID(ctx context.Context, id string) (*order.Order, error) {
	for i := range s.orders {
		if s.orders[i].ID == id {
			cp := s.orders[i]
			return &cp, nil
		}
	}
	return nil, order.ErrNotFound
}

func (s *stubOrderRepo) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	out := []order.Order{}
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *stubOrderRepo) List(ctx context.Context, f order.Filter) ([]order.Order, int, error) {
	s.lastFilter = f
	out := []order.Order{}
	for _, o := range s.orders {
		if f.Status != "" && string(o.Status) != f.Status {
			continue
		}
		if f.PaymentMethod != "" && string(o.PaymentMethod) != f.PaymentMethod {
			continue
		}
		if f.Search != "" {
			term := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(o.ID), term) &&
				!strings.Contains(strings.ToLower(o.CustomerEmail), term) &&
				!strings.Contains(strings.ToLower(o.CustomerName), term) {
				continue
			}
		}
		out = append(out, o)
	}
	total := len(out)
	start := f.Offset()
	if start > len(out) {
		return []order.Order{}, total, nil
	}
	end := start + f.PerPage
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (s *stubOrderRepo) UpdateStatus(ctx context.Context, id string, status order.Status) error {
	for i := range s.orders {
		if s.orders[i].ID == id {
			s.orders[i].Status = status
			return nil
		}
	}
	return order.ErrNotFound
}

//
// ---------- TEST ROUTER ----------
//

const testSecret = "test-secret"

func newTestRouter(users user.Repository, cat catalog.Repository, orders order.Repository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return newRouter(deps{
		issuer:         auth.NewIssuer(testSecret),
		adminTokenTTL:  time.Hour,
		mobileTokenTTL: time.Hour,
		users:          users,
		catalog:        cat,
		orders:         orders,
	})
}

func tokenFor(userID, role string) string {
	tok, err := auth.NewIssuer(testSecret).Issue(userID, role, time.Hour)
	if err != nil {
		panic(err)
	}
	return tok
}

func doJSON(r http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func mustDec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func mustDecPtr(s string) *decimal.Decimal {
	d := mustDec(s)
	return &d
}

func testCatalog() *stubCatalogRepo {
	return &stubCatalogRepo{
		products: []catalog.Product{
			{
				ID: "11111111-1111-1111-1111-111111111111", Name: "PLSP Hoodie",
				BasePrice: mustDec("100.00"), IsActive: true, CategoryID: "cat-merch",
				Variants: []catalog.Variant{
					{ID: uuid.NewString(), Name: "Large", SKU: "HOOD-L", Price: mustDecPtr("120.00")},
				},
			},
			{
				ID: "22222222-2222-2222-2222-222222222222", Name: "Notebook",
				BasePrice: mustDec("60.00"), IsActive: true, CategoryID: "cat-supplies",
				Variants: []catalog.Variant{
					{ID: "33333333-3333-3333-3333-333333333333", Name: "Ruled", SKU: "NB-R", Price: mustDecPtr("50.00")},
				},
			},
		},
	}
}
