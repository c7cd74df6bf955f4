// Package models defines the users, products and orders held by the toy database.
package models

import (
	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-date format used for order dates.
const DateLayout = "2006-01-02"

// UnknownName is rendered in place of a user or product name that no longer resolves.
const UnknownName = "Unknown"

func init() {
	// Prices are JSON numbers on the wire, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// User represents a user in the system.
type User struct {
	ID    int    `json:"id" yaml:"id" toml:"id"`
	Name  string `json:"name" yaml:"name" toml:"name"`
	Email string `json:"email" yaml:"email" toml:"email"`
	Age   int    `json:"age" yaml:"age" toml:"age"`
	City  string `json:"city" yaml:"city" toml:"city"`
}

// NewUser carries the caller-supplied fields of a user before an id is assigned.
type NewUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Age   int    `json:"age"`
	City  string `json:"city"`
}

// Product represents a catalog item.
type Product struct {
	ID       int             `json:"id" yaml:"id" toml:"id"`
	Name     string          `json:"name" yaml:"name" toml:"name"`
	Price    decimal.Decimal `json:"price" yaml:"price" toml:"price"`
	Category string          `json:"category" yaml:"category" toml:"category"`
	Stock    int             `json:"stock" yaml:"stock" toml:"stock"`
}

// Order represents an order in the system.
type Order struct {
	ID        int    `json:"id" yaml:"id" toml:"id"`
	UserID    int    `json:"user_id" yaml:"user_id" toml:"user_id"`
	ProductID int    `json:"product_id" yaml:"product_id" toml:"product_id"`
	Quantity  int    `json:"quantity" yaml:"quantity" toml:"quantity"`
	Date      string `json:"date" yaml:"date" toml:"date"`
}

// OrderDetail is an Order joined with the names it references.
// TotalPrice is only populated on the response to a newly created order.
type OrderDetail struct {
	Order
	UserName    string           `json:"user_name"`
	ProductName string           `json:"product_name"`
	TotalPrice  *decimal.Decimal `json:"total_price,omitempty"`
}

// UserStatistics summarises the user collection.
type UserStatistics struct {
	TotalUsers  int            `json:"total_users"`
	AverageAge  float64        `json:"average_age"`
	UsersByCity map[string]int `json:"users_by_city"`
}

// CategorySales maps a product category to its summed order value.
type CategorySales map[string]decimal.Decimal
