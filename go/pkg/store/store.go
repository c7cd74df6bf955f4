// Package store holds the user, product and order collections.
//
// A Store performs no validation and no locking. It is owned by a single
// toydb.Service, which checks invariants before every mutation and
// serializes access.
package store

import (
	"slices"

	"github.com/example/toydb/go/pkg/models"
)

// Id assigned to the first row of an empty collection.
const (
	FirstUserID    = 1
	FirstProductID = 101
	FirstOrderID   = 1001
)

// Store is the in-memory entity store. Collections keep insertion order.
type Store struct {
	users    []models.User
	products []models.Product
	orders   []models.Order
}

// Snapshot is a point-in-time copy of every collection.
type Snapshot struct {
	Users    []models.User    `json:"users"`
	Products []models.Product `json:"products"`
	Orders   []models.Order   `json:"orders"`
}

// New returns a store populated with the seed rows. The seed is copied.
func New(seed models.Seed) *Store {
	return &Store{
		users:    slices.Clone(seed.Users),
		products: slices.Clone(seed.Products),
		orders:   slices.Clone(seed.Orders),
	}
}

// Users returns the user collection in insertion order.
// The slice must not be modified by the caller.
func (s *Store) Users() []models.User { return s.users }

// Products returns the product collection in insertion order.
// The slice must not be modified by the caller.
func (s *Store) Products() []models.Product { return s.products }

// Orders returns the order collection in insertion order.
// The slice must not be modified by the caller.
func (s *Store) Orders() []models.Order { return s.orders }

// User looks up a user by id.
func (s *Store) User(id int) (models.User, bool) {
	i := slices.IndexFunc(s.users, func(u models.User) bool { return u.ID == id })
	if i < 0 {
		return models.User{}, false
	}
	return s.users[i], true
}

// Product looks up a product by id.
func (s *Store) Product(id int) (models.Product, bool) {
	i := s.productIndex(id)
	if i < 0 {
		return models.Product{}, false
	}
	return s.products[i], true
}

func (s *Store) productIndex(id int) int {
	return slices.IndexFunc(s.products, func(p models.Product) bool { return p.ID == id })
}

// NextUserID returns the id the next appended user should carry.
func (s *Store) NextUserID() int {
	return nextID(s.users, func(u models.User) int { return u.ID }, FirstUserID)
}

// NextProductID returns the id the next appended product should carry.
// No operation creates products; seeding and test fixtures use it with
// AppendProduct.
func (s *Store) NextProductID() int {
	return nextID(s.products, func(p models.Product) int { return p.ID }, FirstProductID)
}

// NextOrderID returns the id the next appended order should carry.
func (s *Store) NextOrderID() int {
	return nextID(s.orders, func(o models.Order) int { return o.ID }, FirstOrderID)
}

func nextID[T any](rows []T, id func(T) int, first int) int {
	if len(rows) == 0 {
		return first
	}
	highest := id(rows[0])
	for _, row := range rows[1:] {
		highest = max(highest, id(row))
	}
	return highest + 1
}

// AppendUser adds a user to the end of the collection.
func (s *Store) AppendUser(u models.User) { s.users = append(s.users, u) }

// AppendProduct adds a product to the end of the collection. It serves
// seeding and fixtures only.
func (s *Store) AppendProduct(p models.Product) { s.products = append(s.products, p) }

// AppendOrder adds an order to the end of the collection.
func (s *Store) AppendOrder(o models.Order) { s.orders = append(s.orders, o) }

// SetStock overwrites a product's stock in place and returns the updated row.
func (s *Store) SetStock(productID, stock int) (models.Product, bool) {
	i := s.productIndex(productID)
	if i < 0 {
		return models.Product{}, false
	}
	s.products[i].Stock = stock
	return s.products[i], true
}

// Snapshot copies all three collections.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		Users:    slices.Clone(s.users),
		Products: slices.Clone(s.products),
		Orders:   slices.Clone(s.orders),
	}
}
