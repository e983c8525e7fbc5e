package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"parfumpos/internal/domain"
	"parfumpos/internal/service"
	"parfumpos/internal/store"
)

type API struct {
	svc           *service.Service
	allowedOrigin string
	log           *zap.Logger
}

func New(svc *service.Service, allowedOrigin string, log *zap.Logger) *API {
	return &API{svc: svc, allowedOrigin: allowedOrigin, log: log}
}

func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/categories", a.listCategories)
	mux.HandleFunc("GET /api/perfumes", a.listPerfumes)
	mux.HandleFunc("GET /api/perfumes/{id}", a.getPerfume)
	mux.HandleFunc("GET /api/variants", a.listVariants)
	mux.HandleFunc("GET /api/variants/{id}", a.getVariant)

	mux.HandleFunc("GET /api/sales", a.listSales)
	mux.HandleFunc("POST /api/sales", a.createSale)
	mux.HandleFunc("GET /api/sales/{id}", a.getSale)

	mux.HandleFunc("GET /api/returns", a.listReturns)
	mux.HandleFunc("POST /api/returns", a.createReturn)
	mux.HandleFunc("GET /api/returns/{id}", a.getReturn)

	mux.HandleFunc("GET /api/purchases", a.listPurchases)
	mux.HandleFunc("POST /api/purchases", a.createPurchase)
	mux.HandleFunc("GET /api/purchases/{id}", a.getPurchase)

	mux.HandleFunc("GET /api/carts", a.listCarts)
	mux.HandleFunc("POST /api/carts", a.createCart)
	mux.HandleFunc("GET /api/carts/{id}", a.getCart)
	mux.HandleFunc("DELETE /api/carts/{id}", a.removeCart)
	mux.HandleFunc("POST /api/carts/{id}/items", a.addCartItem)
	mux.HandleFunc("PATCH /api/carts/{id}/items/{variant}", a.setCartItemQuantity)
	mux.HandleFunc("DELETE /api/carts/{id}/items/{variant}", a.removeCartItem)
	mux.HandleFunc("POST /api/carts/{id}/checkout", a.checkoutCart)

	return a.cors(mux)
}

func (a *API) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *API) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := a.svc.ListCategories(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: categories})
}

func (a *API) listPerfumes(w http.ResponseWriter, r *http.Request) {
	filter := domain.PerfumeFilter{Search: r.URL.Query().Get("search")}
	if raw := r.URL.Query().Get("category"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			a.writeBadRequest(w, "category must be an integer")
			return
		}
		filter.CategoryID = id
	}
	perfumes, err := a.svc.ListPerfumes(r.Context(), filter)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: perfumes})
}

func (a *API) getPerfume(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r, "id")
	if !ok {
		return
	}
	perfume, err := a.svc.GetPerfume(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: perfume})
}

func (a *API) listVariants(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.VariantFilter{
		Search:      q.Get("search"),
		Barcode:     q.Get("barcode"),
		InStockOnly: q.Get("in_stock") == "true",
	}
	if raw := q.Get("perfume"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			a.writeBadRequest(w, "perfume must be an integer")
			return
		}
		filter.PerfumeID = id
	}
	variants, err := a.svc.ListVariants(r.Context(), filter)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: variants})
}

func (a *API) getVariant(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r, "id")
	if !ok {
		return
	}
	variant, err := a.svc.GetVariant(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: variant})
}

func (a *API) listSales(w http.ResponseWriter, r *http.Request) {
	dateRange, ok := a.dateRange(w, r)
	if !ok {
		return
	}
	sales, err := a.svc.ListSales(r.Context(), dateRange)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: sales})
}

func (a *API) createSale(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateSaleRequest
	if !a.decode(w, r, &req) {
		return
	}
	sale, err := a.svc.CreateSale(r.Context(), req)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{Data: sale})
}

func (a *API) getSale(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r, "id")
	if !ok {
		return
	}
	sale, err := a.svc.GetSale(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: sale})
}

func (a *API) listReturns(w http.ResponseWriter, r *http.Request) {
	dateRange, ok := a.dateRange(w, r)
	if !ok {
		return
	}
	returns, err := a.svc.ListReturns(r.Context(), dateRange)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: returns})
}

func (a *API) createReturn(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateReturnRequest
	if !a.decode(w, r, &req) {
		return
	}
	ret, err := a.svc.CreateReturn(r.Context(), req)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{Data: ret})
}

func (a *API) getReturn(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r, "id")
	if !ok {
		return
	}
	ret, err := a.svc.GetReturn(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: ret})
}

func (a *API) listPurchases(w http.ResponseWriter, r *http.Request) {
	dateRange, ok := a.dateRange(w, r)
	if !ok {
		return
	}
	purchases, err := a.svc.ListPurchases(r.Context(), dateRange)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: purchases})
}

func (a *API) createPurchase(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePurchaseRequest
	if !a.decode(w, r, &req) {
		return
	}
	purchase, err := a.svc.CreatePurchase(r.Context(), req)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{Data: purchase})
}

func (a *API) getPurchase(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r, "id")
	if !ok {
		return
	}
	purchase, err := a.svc.GetPurchase(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: purchase})
}

func (a *API) listCarts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, envelope{Data: a.svc.Carts().List()})
}

func (a *API) createCart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Label string `json:"label"`
	}
	if r.ContentLength > 0 && !a.decode(w, r, &req) {
		return
	}
	c, err := a.svc.Carts().Create(req.Label)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{Data: c})
}

func (a *API) getCart(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r, "id")
	if !ok {
		return
	}
	c, err := a.svc.Carts().Get(id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: c})
}

func (a *API) removeCart(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := a.svc.Carts().Remove(id); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) addCartItem(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		VariantID int64 `json:"variant"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	variant, err := a.svc.GetVariant(r.Context(), req.VariantID)
	if err != nil {
		a.writeError(w, err)
		return
	}
	added, err := a.svc.Carts().AddItem(id, *variant)
	if err != nil {
		a.writeError(w, err)
		return
	}
	c, err := a.svc.Carts().Get(id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: map[string]any{"added": added, "cart": c}})
}

func (a *API) setCartItemQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r, "id")
	if !ok {
		return
	}
	variantID, ok := a.pathID(w, r, "variant")
	if !ok {
		return
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	c, err := a.svc.Carts().SetQuantity(id, variantID, req.Quantity)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: c})
}

func (a *API) removeCartItem(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r, "id")
	if !ok {
		return
	}
	variantID, ok := a.pathID(w, r, "variant")
	if !ok {
		return
	}
	c, err := a.svc.Carts().RemoveItem(id, variantID)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: c})
}

func (a *API) checkoutCart(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		PaymentMethod domain.PaymentMethod `json:"payment_method"`
		CashierName   string               `json:"cashier_name,omitempty"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	sale, err := a.svc.CheckoutCart(r.Context(), id, req.PaymentMethod, req.CashierName)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{Data: sale})
}

type envelope struct {
	Data any `json:"data"`
}

func (a *API) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id < 1 {
		a.writeBadRequest(w, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}

func (a *API) dateRange(w http.ResponseWriter, r *http.Request) (domain.DateRange, bool) {
	var out domain.DateRange
	q := r.URL.Query()
	if raw := q.Get("start_date"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			a.writeBadRequest(w, "start_date must be RFC 3339 or YYYY-MM-DD")
			return out, false
		}
		out.From = t
	}
	if raw := q.Get("end_date"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			a.writeBadRequest(w, "end_date must be RFC 3339 or YYYY-MM-DD")
			return out, false
		}
		// A bare date upper bound means the whole day.
		if len(raw) == len("2006-01-02") {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		out.To = t
	}
	return out, true
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

func (a *API) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		a.writeBadRequest(w, "invalid JSON body")
		return false
	}
	return true
}

func (a *API) writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func (a *API) writeError(w http.ResponseWriter, err error) {
	var notFound *domain.NotFoundError
	var insufficient *domain.InsufficientStockError
	var overReturn *domain.OverReturnError
	var persistence *store.PersistenceError

	switch {
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": notFound.Error()})
	case errors.Is(err, domain.ErrAlreadyReturned):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.As(err, &insufficient):
		writeJSON(w, http.StatusConflict, map[string]string{"error": insufficient.Error()})
	case errors.As(err, &overReturn):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": overReturn.Error()})
	case errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrEmptyReturn),
		errors.Is(err, domain.ErrEmptyExchange),
		errors.Is(err, domain.ErrTooManyCarts),
		errors.Is(err, domain.ErrLastCart),
		errors.Is(err, domain.ErrInvalidRequest):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.As(err, &persistence):
		a.log.Error("storage failure", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "storage unavailable"})
	default:
		a.log.Error("unhandled error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
