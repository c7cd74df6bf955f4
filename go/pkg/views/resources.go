// Package views renders read-only resources and prompt templates.
//
// Resources read through the operation layer and render structured text.
// Prompts are pure templates: they describe a task for the caller and do
// no data access.
package views

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/example/toydb/go/pkg/models"
)

// Resource URI templates.
const (
	UserURITemplate    = "user://{user_id}"
	CatalogURITemplate = "catalog://{category}"

	userScheme    = "user://"
	catalogScheme = "catalog://"
)

// UserReader is the read path behind the user resource.
type UserReader interface {
	UserByID(id int) (models.User, bool)
}

// CatalogReader is the read path behind the catalog resource.
type CatalogReader interface {
	ProductsByCategory(category string) []models.Product
}

// UserResource renders the user identified by rawID as indented JSON.
// When rawID is not a known user id it returns a not-found message and
// found is false.
func UserResource(r UserReader, rawID string) (text string, found bool) {
	id, err := strconv.Atoi(strings.TrimSpace(rawID))
	if err == nil {
		if u, ok := r.UserByID(id); ok {
			if out, err := json.MarshalIndent(u, "", "  "); err == nil {
				return string(out), true
			}
		}
	}
	return fmt.Sprintf("User with ID %s not found", rawID), false
}

// CatalogResource renders the products in category as an indented JSON array.
func CatalogResource(r CatalogReader, category string) (string, error) {
	out, err := json.MarshalIndent(r.ProductsByCategory(category), "", "  ")
	if err != nil {
		return "", fmt.Errorf("render catalog %q: %w", category, err)
	}
	return string(out), nil
}

// UserURI returns the resource URI for a user id.
func UserURI(id string) string { return userScheme + url.PathEscape(id) }

// CatalogURI returns the resource URI for a category, percent-encoded.
func CatalogURI(category string) string { return catalogScheme + url.PathEscape(category) }

// ParseUserURI extracts the user id segment from a user:// URI.
func ParseUserURI(uri string) (string, bool) {
	return cutScheme(uri, userScheme)
}

// ParseCatalogURI extracts the category segment from a catalog:// URI.
func ParseCatalogURI(uri string) (string, bool) {
	return cutScheme(uri, catalogScheme)
}

// cutScheme returns the single percent-decoded segment after scheme.
func cutScheme(uri, scheme string) (string, bool) {
	rest, ok := strings.CutPrefix(uri, scheme)
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	seg, err := url.PathUnescape(rest)
	if err != nil || seg == "" {
		return "", false
	}
	return seg, true
}
