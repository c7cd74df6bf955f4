package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/example/toydb/go/pkg/models"
	"github.com/example/toydb/go/pkg/toydb"
)

// Tool areas, in the order they are listed.
const (
	AreaUsers     = "User management"
	AreaProducts  = "Product management"
	AreaOrders    = "Order management"
	AreaAnalytics = "Analytics"
	AreaUtilities = "Utilities"
)

// Areas lists the tool areas in display order.
var Areas = []string{AreaUsers, AreaProducts, AreaOrders, AreaAnalytics, AreaUtilities}

type tool struct {
	area   string
	def    mcp.Tool
	handle server.ToolHandlerFunc
}

// Entry describes one registered tool.
type Entry struct {
	Area        string
	Name        string
	Description string
}

// Catalogue lists the registered tools in registration order.
func (s *Server) Catalogue() []Entry {
	out := make([]Entry, 0, len(s.tools))
	for _, t := range s.tools {
		out = append(out, Entry{Area: t.area, Name: t.def.Name, Description: t.def.Description})
	}
	return out
}

func (s *Server) toolTable() []tool {
	return []tool{
		{AreaUsers, mcp.NewTool("get_user_by_id",
			mcp.WithDescription("Get user details by user ID"),
			withInt("user_id", mcp.Required(), mcp.Description("ID of the user")),
		), s.getUserByID},
		{AreaUsers, mcp.NewTool("get_users_by_city",
			mcp.WithDescription("Get all users from a specific city"),
			mcp.WithString("city", mcp.Required(), mcp.Description("City name, matched case-insensitively")),
		), s.getUsersByCity},
		{AreaUsers, mcp.NewTool("create_user",
			mcp.WithDescription("Create a new user in the database"),
			mcp.WithString("name", mcp.Required(), mcp.Description("Full name")),
			mcp.WithString("email", mcp.Required(), mcp.Description("Email address")),
			withInt("age", mcp.Required(), mcp.Description("Age in years")),
			mcp.WithString("city", mcp.Required(), mcp.Description("City of residence")),
		), s.createUser},
		{AreaProducts, mcp.NewTool("get_product_by_id",
			mcp.WithDescription("Get product details by product ID"),
			withInt("product_id", mcp.Required(), mcp.Description("ID of the product")),
		), s.getProductByID},
		{AreaProducts, mcp.NewTool("get_products_by_category",
			mcp.WithDescription("Get all products in a specific category"),
			mcp.WithString("category", mcp.Required(), mcp.Description("Category name, matched case-insensitively")),
		), s.getProductsByCategory},
		{AreaProducts, mcp.NewTool("update_product_stock",
			mcp.WithDescription("Update the stock quantity of a product"),
			withInt("product_id", mcp.Required(), mcp.Description("ID of the product")),
			withInt("new_stock", mcp.Required(), mcp.Description("New stock level, not negative")),
		), s.updateProductStock},
		{AreaOrders, mcp.NewTool("get_user_orders",
			mcp.WithDescription("Get all orders for a specific user"),
			withInt("user_id", mcp.Required(), mcp.Description("ID of the user")),
		), s.getUserOrders},
		{AreaOrders, mcp.NewTool("create_order",
			mcp.WithDescription("Create a new order"),
			withInt("user_id", mcp.Required(), mcp.Description("ID of the ordering user")),
			withInt("product_id", mcp.Required(), mcp.Description("ID of the ordered product")),
			withInt("quantity", mcp.Required(), mcp.Description("Units to order, at most the current stock")),
		), s.createOrder},
		{AreaAnalytics, mcp.NewTool("get_sales_by_category",
			mcp.WithDescription("Get total sales amount by product category"),
		), s.getSalesByCategory},
		{AreaAnalytics, mcp.NewTool("get_user_statistics",
			mcp.WithDescription("Get statistics about users"),
		), s.getUserStatistics},
		{AreaUtilities, mcp.NewTool("search_users",
			mcp.WithDescription("Search users by name, email or city"),
			mcp.WithString("query", mcp.Required(), mcp.Description("Substring to look for, case-insensitive")),
		), s.searchUsers},
		{AreaUtilities, mcp.NewTool("get_low_stock_products",
			mcp.WithDescription("Get products with low stock (below threshold)"),
			withInt("threshold", mcp.DefaultNumber(toydb.DefaultLowStockThreshold), mcp.Description("Stock level below which a product is listed")),
		), s.getLowStockProducts},
	}
}

// instrument stamps each call with a request id and logs its outcome.
func (s *Server) instrument(name string, next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		log := s.log.With(zap.String("tool", name), zap.String("request_id", uuid.NewString()))
		start := time.Now()

		res, err := next(ctx, req)

		fields := []zap.Field{zap.Duration("duration", time.Since(start))}
		switch {
		case err != nil:
			log.Error("tool call failed", append(fields, zap.Error(err))...)
		case res != nil && res.IsError:
			log.Info("tool call rejected", fields...)
		default:
			log.Debug("tool call", fields...)
		}
		return res, err
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// maxExactInt is the largest magnitude a JSON number carries without losing
// integer precision.
const maxExactInt = 1 << 53

// withInt declares a numeric argument whose schema type is integer.
func withInt(name string, opts ...mcp.PropertyOption) mcp.ToolOption {
	return mcp.WithNumber(name, append(opts, func(schema map[string]any) {
		schema["type"] = "integer"
	})...)
}

// requireInt reads a whole-number argument. Unlike RequireInt it rejects
// fractional values instead of truncating them.
func requireInt(req mcp.CallToolRequest, name string) (int, error) {
	v, ok := req.GetArguments()[name]
	if !ok {
		return 0, fmt.Errorf("required argument %q not found", name)
	}
	return toInt(name, v)
}

// optionalInt is requireInt with a default for an absent argument.
func optionalInt(req mcp.CallToolRequest, name string, def int) (int, error) {
	v, ok := req.GetArguments()[name]
	if !ok || v == nil {
		return def, nil
	}
	return toInt(name, v)
}

func toInt(name string, v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case float64:
		if n != math.Trunc(n) || math.Abs(n) > maxExactInt {
			return 0, fmt.Errorf("argument %q must be an integer, got %v", name, n)
		}
		return int(n), nil
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, fmt.Errorf("argument %q must be an integer, got %q", name, n)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("argument %q must be an integer, got %T", name, v)
	}
}

func argError(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err))
}

func (s *Server) getUserByID(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireInt(req, "user_id")
	if err != nil {
		return argError(err), nil
	}
	if u, ok := s.svc.UserByID(id); ok {
		return jsonResult(u)
	}
	return jsonResult(nil)
}

func (s *Server) getUsersByCity(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	city, err := req.RequireString("city")
	if err != nil {
		return argError(err), nil
	}
	return jsonResult(s.svc.UsersByCity(city))
}

func (s *Server) createUser(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in models.NewUser
	var err error
	if in.Name, err = req.RequireString("name"); err != nil {
		return argError(err), nil
	}
	if in.Email, err = req.RequireString("email"); err != nil {
		return argError(err), nil
	}
	if in.Age, err = requireInt(req, "age"); err != nil {
		return argError(err), nil
	}
	if in.City, err = req.RequireString("city"); err != nil {
		return argError(err), nil
	}

	u, err := s.svc.CreateUser(in)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(u)
}

func (s *Server) getProductByID(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireInt(req, "product_id")
	if err != nil {
		return argError(err), nil
	}
	if p, ok := s.svc.ProductByID(id); ok {
		return jsonResult(p)
	}
	return jsonResult(nil)
}

func (s *Server) getProductsByCategory(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category, err := req.RequireString("category")
	if err != nil {
		return argError(err), nil
	}
	return jsonResult(s.svc.ProductsByCategory(category))
}

func (s *Server) updateProductStock(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireInt(req, "product_id")
	if err != nil {
		return argError(err), nil
	}
	stock, err := requireInt(req, "new_stock")
	if err != nil {
		return argError(err), nil
	}

	p, ok, err := s.svc.UpdateProductStock(id, stock)
	switch {
	case err != nil:
		return mcp.NewToolResultError(err.Error()), nil
	case !ok:
		return jsonResult(nil)
	}
	return jsonResult(p)
}

func (s *Server) getUserOrders(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireInt(req, "user_id")
	if err != nil {
		return argError(err), nil
	}
	return jsonResult(s.svc.OrdersForUser(id))
}

func (s *Server) createOrder(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := requireInt(req, "user_id")
	if err != nil {
		return argError(err), nil
	}
	productID, err := requireInt(req, "product_id")
	if err != nil {
		return argError(err), nil
	}
	quantity, err := requireInt(req, "quantity")
	if err != nil {
		return argError(err), nil
	}

	order, err := s.svc.CreateOrder(userID, productID, quantity)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("order rejected: %v", err)), nil
	}
	return jsonResult(order)
}

func (s *Server) getSalesByCategory(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.SalesByCategory())
}

func (s *Server) getUserStatistics(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.UserStatistics())
}

func (s *Server) searchUsers(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return argError(err), nil
	}
	return jsonResult(s.svc.SearchUsers(query))
}

func (s *Server) getLowStockProducts(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	threshold, err := optionalInt(req, "threshold", toydb.DefaultLowStockThreshold)
	if err != nil {
		return argError(err), nil
	}
	return jsonResult(s.svc.LowStockProducts(threshold))
}
