package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/example/toydb/go/pkg/models"
	"github.com/example/toydb/go/pkg/store"
	"github.com/example/toydb/go/pkg/toydb"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	svc := toydb.New(store.New(models.DefaultSeed()),
		toydb.WithClock(func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }))
	return New(svc, "ToyDatabaseServer", "test", zaptest.NewLogger(t))
}

// call invokes a registered tool the way the server would and returns the
// text payload and the error flag.
func call(t *testing.T, s *Server, name string, args map[string]any) (string, bool) {
	t.Helper()
	for _, tl := range s.tools {
		if tl.def.Name != name {
			continue
		}
		req := mcp.CallToolRequest{}
		req.Params.Name = name
		req.Params.Arguments = args

		res, err := s.instrument(name, tl.handle)(context.Background(), req)
		require.NoError(t, err)
		require.NotNil(t, res)
		require.Len(t, res.Content, 1)
		text, ok := res.Content[0].(mcp.TextContent)
		require.True(t, ok, "expected text content, got %T", res.Content[0])
		return text.Text, res.IsError
	}
	t.Fatalf("tool %s not registered", name)
	return "", false
}

func TestToolNames(t *testing.T) {
	s := newTestServer(t)

	var names []string
	for _, e := range s.Catalogue() {
		names = append(names, e.Name)
		assert.Contains(t, Areas, e.Area)
		assert.NotEmpty(t, e.Description)
	}
	sort.Strings(names)

	want := []string{
		"create_order", "create_user", "get_low_stock_products", "get_product_by_id",
		"get_products_by_category", "get_sales_by_category", "get_user_by_id",
		"get_user_orders", "get_user_statistics", "get_users_by_city",
		"search_users", "update_product_stock",
	}
	assert.Equal(t, want, names)
}

func TestLogCatalogue(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	svc := toydb.New(store.New(models.DefaultSeed()))
	s := New(svc, "ToyDatabaseServer", "test", zap.New(core))

	s.LogCatalogue("ToyDatabaseServer")

	entries := logs.FilterMessage("available tools").All()
	require.Len(t, entries, len(Areas))
	assert.Equal(t, AreaUsers, entries[0].ContextMap()["area"])
	assert.Equal(t, 1, logs.FilterMessage("toy database MCP server started").Len())
}

func TestGetUserByID(t *testing.T) {
	s := newTestServer(t)

	text, isErr := call(t, s, "get_user_by_id", map[string]any{"user_id": 1})
	assert.False(t, isErr)
	assert.JSONEq(t, `{"id":1,"name":"Alice","email":"alice@example.com","age":28,"city":"New York"}`, text)

	text, isErr = call(t, s, "get_user_by_id", map[string]any{"user_id": float64(999)})
	assert.False(t, isErr, "absent is not an error")
	assert.Equal(t, "null", text)

	_, isErr = call(t, s, "get_user_by_id", map[string]any{})
	assert.True(t, isErr)
}

func TestUserListings(t *testing.T) {
	s := newTestServer(t)

	text, _ := call(t, s, "get_users_by_city", map[string]any{"city": "new york"})
	var users []models.User
	require.NoError(t, json.Unmarshal([]byte(text), &users))
	require.Len(t, users, 2)
	assert.Equal(t, "Diana", users[1].Name)

	text, _ = call(t, s, "search_users", map[string]any{"query": "nobody"})
	assert.Equal(t, "[]", text)
}

func TestCreateUser(t *testing.T) {
	s := newTestServer(t)

	text, isErr := call(t, s, "create_user", map[string]any{
		"name": "Eve", "email": "eve@example.com", "age": 33, "city": "Austin",
	})
	require.False(t, isErr, text)
	assert.JSONEq(t, `{"id":5,"name":"Eve","email":"eve@example.com","age":33,"city":"Austin"}`, text)

	text, isErr = call(t, s, "create_user", map[string]any{"name": "NoEmail", "age": 1, "city": "X"})
	assert.True(t, isErr)
	assert.Contains(t, text, "email")
}

func TestProducts(t *testing.T) {
	s := newTestServer(t)

	text, _ := call(t, s, "get_product_by_id", map[string]any{"product_id": 102})
	assert.JSONEq(t, `{"id":102,"name":"Coffee Mug","price":12.5,"category":"Kitchen","stock":100}`, text)

	text, _ = call(t, s, "get_products_by_category", map[string]any{"category": "OFFICE"})
	assert.JSONEq(t, `[{"id":104,"name":"Notebook","price":8.99,"category":"Office","stock":50}]`, text)

	text, isErr := call(t, s, "update_product_stock", map[string]any{"product_id": 104, "new_stock": 3})
	require.False(t, isErr)
	assert.JSONEq(t, `{"id":104,"name":"Notebook","price":8.99,"category":"Office","stock":3}`, text)

	text, isErr = call(t, s, "update_product_stock", map[string]any{"product_id": 999, "new_stock": 3})
	assert.False(t, isErr)
	assert.Equal(t, "null", text)

	text, isErr = call(t, s, "update_product_stock", map[string]any{"product_id": 104, "new_stock": -3})
	assert.True(t, isErr)
	assert.Contains(t, text, "negative")
}

func TestLowStockDefaultThreshold(t *testing.T) {
	s := newTestServer(t)

	text, _ := call(t, s, "get_low_stock_products", map[string]any{})
	assert.Equal(t, "[]", text)

	text, _ = call(t, s, "get_low_stock_products", map[string]any{"threshold": 20})
	assert.JSONEq(t, `[{"id":101,"name":"Laptop","price":999.99,"category":"Electronics","stock":15}]`, text)
}

func TestOrders(t *testing.T) {
	s := newTestServer(t)

	text, isErr := call(t, s, "create_order", map[string]any{"user_id": 2, "product_id": 101, "quantity": 2})
	require.False(t, isErr, text)
	assert.JSONEq(t, `{
		"id": 1004, "user_id": 2, "product_id": 101, "quantity": 2, "date": "2025-06-01",
		"user_name": "Bob", "product_name": "Laptop", "total_price": 1999.98
	}`, text)

	text, _ = call(t, s, "get_user_orders", map[string]any{"user_id": 2})
	assert.JSONEq(t, `[
		{"id":1002,"user_id":2,"product_id":102,"quantity":2,"date":"2024-01-16","user_name":"Bob","product_name":"Coffee Mug"},
		{"id":1004,"user_id":2,"product_id":101,"quantity":2,"date":"2025-06-01","user_name":"Bob","product_name":"Laptop"}
	]`, text)

	text, isErr = call(t, s, "create_order", map[string]any{"user_id": 2, "product_id": 101, "quantity": 14})
	assert.True(t, isErr)
	assert.Contains(t, text, "insufficient stock")

	text, isErr = call(t, s, "create_order", map[string]any{"user_id": 99, "product_id": 101, "quantity": 1})
	assert.True(t, isErr)
	assert.Contains(t, text, "unknown user")
}

func TestFractionalIntegerArguments(t *testing.T) {
	s := newTestServer(t)

	text, isErr := call(t, s, "create_order", map[string]any{"user_id": 1, "product_id": 104, "quantity": 2.9})
	assert.True(t, isErr)
	assert.Contains(t, text, `"quantity" must be an integer`)

	text, isErr = call(t, s, "create_order", map[string]any{"user_id": 1, "product_id": 104, "quantity": 0.5})
	assert.True(t, isErr)
	assert.NotContains(t, text, "order rejected")

	text, _ = call(t, s, "get_product_by_id", map[string]any{"product_id": 104})
	assert.Contains(t, text, `"stock":50`)
	text, _ = call(t, s, "get_user_orders", map[string]any{"user_id": 1})
	assert.NotContains(t, text, "1004")

	for _, tc := range []struct {
		tool string
		args map[string]any
	}{
		{"get_user_by_id", map[string]any{"user_id": 1.5}},
		{"update_product_stock", map[string]any{"product_id": 104, "new_stock": 3.2}},
		{"create_user", map[string]any{"name": "Eve", "email": "e@example.com", "age": 30.5, "city": "Austin"}},
		{"get_low_stock_products", map[string]any{"threshold": 12.5}},
	} {
		_, isErr := call(t, s, tc.tool, tc.args)
		assert.True(t, isErr, tc.tool)
	}

	text, isErr = call(t, s, "get_user_by_id", map[string]any{"user_id": float64(2)})
	assert.False(t, isErr)
	assert.Contains(t, text, "Bob")
}

func TestIntegerSchema(t *testing.T) {
	s := newTestServer(t)

	for _, tl := range s.tools {
		for name, prop := range tl.def.InputSchema.Properties {
			schema, ok := prop.(map[string]any)
			require.True(t, ok)
			if name == "quantity" || name == "threshold" || name == "user_id" {
				assert.Equal(t, "integer", schema["type"], "%s.%s", tl.def.Name, name)
			}
		}
	}
}

func TestAnalytics(t *testing.T) {
	s := newTestServer(t)

	text, _ := call(t, s, "get_sales_by_category", nil)
	assert.JSONEq(t, `{"Electronics":1079.98,"Kitchen":25}`, text)

	text, _ = call(t, s, "get_user_statistics", nil)
	assert.JSONEq(t, `{
		"total_users": 4,
		"average_age": 28.5,
		"users_by_city": {"New York": 2, "San Francisco": 1, "Chicago": 1}
	}`, text)
}

func TestResources(t *testing.T) {
	s := newTestServer(t)

	req := mcp.ReadResourceRequest{}
	req.Params.URI = "user://1"
	contents, err := s.readUser(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, contents, 1)
	user := contents[0].(mcp.TextResourceContents)
	assert.Equal(t, "application/json", user.MIMEType)
	assert.Contains(t, user.Text, `"name": "Alice"`)

	req.Params.URI = "user://999"
	contents, err = s.readUser(context.Background(), req)
	require.NoError(t, err)
	missing := contents[0].(mcp.TextResourceContents)
	assert.Equal(t, "text/plain", missing.MIMEType)
	assert.Equal(t, "User with ID 999 not found", missing.Text)

	req.Params.URI = "catalog://Kitchen"
	contents, err = s.readCatalog(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, contents[0].(mcp.TextResourceContents).Text, "Coffee Mug")

	req.Params.URI = "catalog://"
	_, err = s.readCatalog(context.Background(), req)
	assert.Error(t, err)
}

func TestCatalogResourceDecodesCategory(t *testing.T) {
	seed := models.DefaultSeed()
	seed.Products = append(seed.Products, models.Product{
		ID: 105, Name: "Lamp", Price: decimal.RequireFromString("24.00"), Category: "Home Goods", Stock: 8,
	})
	s := New(toydb.New(store.New(seed)), "ToyDatabaseServer", "test", zaptest.NewLogger(t))

	req := mcp.ReadResourceRequest{}
	req.Params.URI = "catalog://Home%20Goods"
	contents, err := s.readCatalog(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, contents, 1)
	assert.Contains(t, contents[0].(mcp.TextResourceContents).Text, "Lamp")
}

func TestPrompts(t *testing.T) {
	s := newTestServer(t)

	req := mcp.GetPromptRequest{}
	req.Params.Arguments = map[string]string{"user_id": "3"}
	res, err := s.userReport(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)
	assert.Equal(t, mcp.RoleUser, res.Messages[0].Role)
	assert.Contains(t, res.Messages[0].Content.(mcp.TextContent).Text, "user ID 3.")

	req.Params.Arguments = map[string]string{"user_id": "three"}
	_, err = s.userReport(context.Background(), req)
	assert.Error(t, err)

	res, err = s.salesSummary(context.Background(), mcp.GetPromptRequest{})
	require.NoError(t, err)
	assert.Contains(t, res.Messages[0].Content.(mcp.TextContent).Text, "sales summary report")
}

func TestHandleMessageToolCall(t *testing.T) {
	s := newTestServer(t)

	msg := `{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":"get_user_by_id","arguments":{"user_id":4}}}`
	resp := s.MCP().HandleMessage(context.Background(), []byte(msg))

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded struct {
		Result struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded.Result.Content, 1)
	assert.Contains(t, decoded.Result.Content[0].Text, `"name":"Diana"`)
}

func TestStreamableHTTPInitialize(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"0"}}}`
	req, err := http.NewRequest(http.MethodPost, ts.URL, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ToyDatabaseServer")
}
