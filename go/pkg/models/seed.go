package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Seed is the initial content of a store.
type Seed struct {
	Users    []User    `json:"users" yaml:"users" toml:"users"`
	Products []Product `json:"products" yaml:"products" toml:"products"`
	Orders   []Order   `json:"orders" yaml:"orders" toml:"orders"`
}

// DefaultSeed returns the built-in sample rows.
func DefaultSeed() Seed {
	return Seed{
		Users: []User{
			{ID: 1, Name: "Alice", Email: "alice@example.com", Age: 28, City: "New York"},
			{ID: 2, Name: "Bob", Email: "bob@example.com", Age: 32, City: "San Francisco"},
			{ID: 3, Name: "Charlie", Email: "charlie@example.com", Age: 25, City: "Chicago"},
			{ID: 4, Name: "Diana", Email: "diana@example.com", Age: 29, City: "New York"},
		},
		Products: []Product{
			{ID: 101, Name: "Laptop", Price: decimal.RequireFromString("999.99"), Category: "Electronics", Stock: 15},
			{ID: 102, Name: "Coffee Mug", Price: decimal.RequireFromString("12.50"), Category: "Kitchen", Stock: 100},
			{ID: 103, Name: "Headphones", Price: decimal.RequireFromString("79.99"), Category: "Electronics", Stock: 25},
			{ID: 104, Name: "Notebook", Price: decimal.RequireFromString("8.99"), Category: "Office", Stock: 50},
		},
		Orders: []Order{
			{ID: 1001, UserID: 1, ProductID: 101, Quantity: 1, Date: "2024-01-15"},
			{ID: 1002, UserID: 2, ProductID: 102, Quantity: 2, Date: "2024-01-16"},
			{ID: 1003, UserID: 1, ProductID: 103, Quantity: 1, Date: "2024-01-17"},
		},
	}
}

// ErrInvalidSeed is returned when seed rows break an entity invariant.
var ErrInvalidSeed = errors.New("invalid seed")

// Validate checks the rows against the invariants the store relies on:
// unique ids, non-negative ages, prices and stock, positive quantities,
// well-formed dates and resolvable order references.
func (s Seed) Validate() error {
	users := make(map[int]struct{}, len(s.Users))
	for i, u := range s.Users {
		if _, dup := users[u.ID]; dup {
			return fmt.Errorf("%w: users[%d] duplicate id %d", ErrInvalidSeed, i, u.ID)
		}
		if u.Age < 0 {
			return fmt.Errorf("%w: users[%d] negative age", ErrInvalidSeed, i)
		}
		users[u.ID] = struct{}{}
	}

	products := make(map[int]struct{}, len(s.Products))
	for i, p := range s.Products {
		if _, dup := products[p.ID]; dup {
			return fmt.Errorf("%w: products[%d] duplicate id %d", ErrInvalidSeed, i, p.ID)
		}
		if p.Price.IsNegative() {
			return fmt.Errorf("%w: products[%d] negative price", ErrInvalidSeed, i)
		}
		if p.Stock < 0 {
			return fmt.Errorf("%w: products[%d] negative stock", ErrInvalidSeed, i)
		}
		products[p.ID] = struct{}{}
	}

	orders := make(map[int]struct{}, len(s.Orders))
	for i, o := range s.Orders {
		if _, dup := orders[o.ID]; dup {
			return fmt.Errorf("%w: orders[%d] duplicate id %d", ErrInvalidSeed, i, o.ID)
		}
		if _, ok := users[o.UserID]; !ok {
			return fmt.Errorf("%w: orders[%d] unknown user %d", ErrInvalidSeed, i, o.UserID)
		}
		if _, ok := products[o.ProductID]; !ok {
			return fmt.Errorf("%w: orders[%d] unknown product %d", ErrInvalidSeed, i, o.ProductID)
		}
		if o.Quantity <= 0 {
			return fmt.Errorf("%w: orders[%d] quantity must be positive", ErrInvalidSeed, i)
		}
		if _, err := time.Parse(DateLayout, o.Date); err != nil {
			return fmt.Errorf("%w: orders[%d] bad date %q", ErrInvalidSeed, i, o.Date)
		}
		orders[o.ID] = struct{}{}
	}
	return nil
}
