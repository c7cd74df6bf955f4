// Package toydb implements the operations exposed as tools: lookups,
// filters, creation, stock updates and aggregates over the entity store.
//
// Service is the single owner of its store. Every operation runs inside
// one lock scope, so multi-collection reads see a consistent snapshot and
// create-order applies its checks, append and stock decrement atomically.
package toydb

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/example/toydb/go/pkg/models"
	"github.com/example/toydb/go/pkg/store"
)

// DefaultLowStockThreshold is used by callers that do not pass a threshold.
const DefaultLowStockThreshold = 10

// Service is the operation layer over a store.Store.
type Service struct {
	mu    sync.RWMutex
	store *store.Store
	now   func() time.Time
	log   *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the clock used to date new orders.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(s *Service) { s.log = log }
}

// New takes ownership of st. The caller must not touch st afterwards.
func New(st *store.Store, opts ...Option) *Service {
	s := &Service{
		store: st,
		now:   time.Now,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UserByID returns the user with the given id. ok is false when absent.
func (s *Service) UserByID(id int) (user models.User, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.User(id)
}

// UsersByCity returns users whose city equals city, ignoring case.
func (s *Service) UsersByCity(city string) []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.User, 0)
	for _, u := range s.store.Users() {
		if strings.EqualFold(u.City, city) {
			out = append(out, u)
		}
	}
	return out
}

// CreateUser appends a user with a freshly assigned id.
func (s *Service) CreateUser(in models.NewUser) (models.User, error) {
	if in.Age < 0 {
		return models.User{}, fmt.Errorf("%w: %d", ErrInvalidAge, in.Age)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := models.User{
		ID:    s.store.NextUserID(),
		Name:  in.Name,
		Email: in.Email,
		Age:   in.Age,
		City:  in.City,
	}
	s.store.AppendUser(u)
	s.log.Debug("user created", zap.Int("user_id", u.ID))
	return u, nil
}

// ProductByID returns the product with the given id. ok is false when absent.
func (s *Service) ProductByID(id int) (product models.Product, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Product(id)
}

// ProductsByCategory returns products whose category equals category, ignoring case.
func (s *Service) ProductsByCategory(category string) []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Product, 0)
	for _, p := range s.store.Products() {
		if strings.EqualFold(p.Category, category) {
			out = append(out, p)
		}
	}
	return out
}

// UpdateProductStock sets a product's stock. ok is false when the product
// does not exist. A negative stock is rejected with ErrNegativeStock and
// leaves the product untouched.
func (s *Service) UpdateProductStock(id, stock int) (product models.Product, ok bool, err error) {
	if stock < 0 {
		return models.Product{}, false, fmt.Errorf("%w: %d", ErrNegativeStock, stock)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok = s.store.SetStock(id, stock)
	if ok {
		s.log.Debug("stock updated", zap.Int("product_id", id), zap.Int("stock", stock))
	}
	return product, ok, nil
}

// OrdersForUser returns the user's orders in insertion order, each joined
// with the current user and product names.
func (s *Service) OrdersForUser(userID int) []models.OrderDetail {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.OrderDetail, 0)
	for _, o := range s.store.Orders() {
		if o.UserID == userID {
			out = append(out, s.detail(o))
		}
	}
	return out
}

// detail resolves the names an order references. Callers hold s.mu.
func (s *Service) detail(o models.Order) models.OrderDetail {
	d := models.OrderDetail{
		Order:       o,
		UserName:    models.UnknownName,
		ProductName: models.UnknownName,
	}
	if u, ok := s.store.User(o.UserID); ok {
		d.UserName = u.Name
	}
	if p, ok := s.store.Product(o.ProductID); ok {
		d.ProductName = p.Name
	}
	return d
}

// CreateOrder places an order and decrements the product's stock by
// quantity. It fails without side effects when the user or product is
// unknown, the quantity is not positive, or stock is insufficient.
func (s *Service) CreateOrder(userID, productID, quantity int) (models.OrderDetail, error) {
	if quantity <= 0 {
		return models.OrderDetail{}, fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.store.User(userID)
	if !ok {
		s.log.Info("order rejected", zap.String("reason", "unknown user"), zap.Int("user_id", userID))
		return models.OrderDetail{}, fmt.Errorf("%w: %d", ErrUnknownUser, userID)
	}
	product, ok := s.store.Product(productID)
	if !ok {
		s.log.Info("order rejected", zap.String("reason", "unknown product"), zap.Int("product_id", productID))
		return models.OrderDetail{}, fmt.Errorf("%w: %d", ErrUnknownProduct, productID)
	}
	if product.Stock < quantity {
		s.log.Info("order rejected",
			zap.String("reason", "insufficient stock"),
			zap.Int("product_id", productID),
			zap.Int("stock", product.Stock),
			zap.Int("quantity", quantity))
		return models.OrderDetail{}, fmt.Errorf("%w: product %d has %d, requested %d",
			ErrInsufficientStock, productID, product.Stock, quantity)
	}

	order := models.Order{
		ID:        s.store.NextOrderID(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		Date:      s.now().Format(models.DateLayout),
	}
	s.store.AppendOrder(order)
	s.store.SetStock(productID, product.Stock-quantity)

	total := product.Price.Mul(decimal.NewFromInt(int64(quantity)))
	s.log.Debug("order created",
		zap.Int("order_id", order.ID),
		zap.Int("user_id", userID),
		zap.Int("product_id", productID),
		zap.Int("quantity", quantity))

	return models.OrderDetail{
		Order:       order,
		UserName:    user.Name,
		ProductName: product.Name,
		TotalPrice:  &total,
	}, nil
}

// SalesByCategory sums price × quantity over all orders, keyed by the
// category of each order's product. Orders whose product no longer
// resolves are skipped.
func (s *Service) SalesByCategory() models.CategorySales {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sales := make(models.CategorySales)
	for _, o := range s.store.Orders() {
		p, ok := s.store.Product(o.ProductID)
		if !ok {
			continue
		}
		amount := p.Price.Mul(decimal.NewFromInt(int64(o.Quantity)))
		sales[p.Category] = sales[p.Category].Add(amount)
	}
	return sales
}

// UserStatistics reports the user count, the average age rounded to two
// decimals (0 with no users) and the number of users per city. Exact halves
// round to even, so an average of 28.125 reports 28.12.
func (s *Service) UserStatistics() models.UserStatistics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := s.store.Users()
	stats := models.UserStatistics{
		TotalUsers:  len(users),
		UsersByCity: make(map[string]int),
	}
	if len(users) == 0 {
		return stats
	}

	ageSum := 0
	for _, u := range users {
		ageSum += u.Age
		stats.UsersByCity[u.City]++
	}
	avg := float64(ageSum) / float64(len(users))
	stats.AverageAge = math.RoundToEven(avg*100) / 100
	return stats
}

// SearchUsers returns users whose name, email or city contains query, ignoring case.
func (s *Service) SearchUsers(query string) []models.User {
	q := strings.ToLower(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.User, 0)
	for _, u := range s.store.Users() {
		if strings.Contains(strings.ToLower(u.Name), q) ||
			strings.Contains(strings.ToLower(u.Email), q) ||
			strings.Contains(strings.ToLower(u.City), q) {
			out = append(out, u)
		}
	}
	return out
}

// LowStockProducts returns products with stock strictly below threshold.
func (s *Service) LowStockProducts(threshold int) []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Product, 0)
	for _, p := range s.store.Products() {
		if p.Stock < threshold {
			out = append(out, p)
		}
	}
	return out
}

// Snapshot returns a consistent copy of every collection.
func (s *Service) Snapshot() store.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Snapshot()
}
