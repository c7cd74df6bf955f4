package restapi

import (
	"errors"
	"net/http"

	"github.com/example/toydb/go/pkg/httputil"
	"github.com/example/toydb/go/pkg/models"
	"github.com/example/toydb/go/pkg/toydb"
)

type stockRequest struct {
	NewStock *int `json:"new_stock"`
}

type orderRequest struct {
	UserID    int `json:"user_id"`
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.JSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathInt(r, "id")
	if err != nil {
		httputil.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	u, ok := a.svc.UserByID(id)
	if !ok {
		httputil.ErrorResponse(w, http.StatusNotFound, "user not found")
		return
	}
	httputil.JSONResponse(w, http.StatusOK, u)
}

func (a *API) handleUsersByCity(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	if city == "" {
		httputil.ErrorResponse(w, http.StatusBadRequest, "city query parameter is required")
		return
	}
	httputil.JSONResponse(w, http.StatusOK, a.svc.UsersByCity(city))
}

func (a *API) handleSearchUsers(w http.ResponseWriter, r *http.Request) {
	httputil.JSONResponse(w, http.StatusOK, a.svc.SearchUsers(r.URL.Query().Get("q")))
}

func (a *API) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var in models.NewUser
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if in.Name == "" || in.Email == "" || in.City == "" {
		httputil.ErrorResponse(w, http.StatusBadRequest, "name, email and city are required")
		return
	}
	u, err := a.svc.CreateUser(in)
	if err != nil {
		writeRejection(w, err)
		return
	}
	httputil.JSONResponse(w, http.StatusCreated, u)
}

func (a *API) handleUserOrders(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathInt(r, "id")
	if err != nil {
		httputil.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	httputil.JSONResponse(w, http.StatusOK, a.svc.OrdersForUser(id))
}

func (a *API) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathInt(r, "id")
	if err != nil {
		httputil.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	p, ok := a.svc.ProductByID(id)
	if !ok {
		httputil.ErrorResponse(w, http.StatusNotFound, "product not found")
		return
	}
	httputil.JSONResponse(w, http.StatusOK, p)
}

func (a *API) handleProductsByCategory(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		httputil.ErrorResponse(w, http.StatusBadRequest, "category query parameter is required")
		return
	}
	httputil.JSONResponse(w, http.StatusOK, a.svc.ProductsByCategory(category))
}

func (a *API) handleLowStock(w http.ResponseWriter, r *http.Request) {
	threshold, err := httputil.QueryInt(r, "threshold", toydb.DefaultLowStockThreshold)
	if err != nil {
		httputil.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	httputil.JSONResponse(w, http.StatusOK, a.svc.LowStockProducts(threshold))
}

func (a *API) handleUpdateStock(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathInt(r, "id")
	if err != nil {
		httputil.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	var in stockRequest
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if in.NewStock == nil {
		httputil.ErrorResponse(w, http.StatusBadRequest, "new_stock is required")
		return
	}

	p, ok, err := a.svc.UpdateProductStock(id, *in.NewStock)
	switch {
	case err != nil:
		writeRejection(w, err)
	case !ok:
		httputil.ErrorResponse(w, http.StatusNotFound, "product not found")
	default:
		httputil.JSONResponse(w, http.StatusOK, p)
	}
}

func (a *API) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var in orderRequest
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	order, err := a.svc.CreateOrder(in.UserID, in.ProductID, in.Quantity)
	if err != nil {
		writeRejection(w, err)
		return
	}
	httputil.JSONResponse(w, http.StatusCreated, order)
}

func (a *API) handleSalesByCategory(w http.ResponseWriter, r *http.Request) {
	httputil.JSONResponse(w, http.StatusOK, a.svc.SalesByCategory())
}

func (a *API) handleUserStatistics(w http.ResponseWriter, r *http.Request) {
	httputil.JSONResponse(w, http.StatusOK, a.svc.UserStatistics())
}

// writeRejection maps a toydb rejection onto a status code.
func writeRejection(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, toydb.ErrInsufficientStock):
		status = http.StatusConflict
	case toydb.IsRejection(err):
		status = http.StatusUnprocessableEntity
	}
	httputil.ErrorResponse(w, status, err.Error())
}
