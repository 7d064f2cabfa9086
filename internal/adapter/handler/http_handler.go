package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rl1809/stock-ledger/internal/core/domain"
	"github.com/rl1809/stock-ledger/internal/core/service"
	"github.com/rl1809/stock-ledger/internal/observability"
	"github.com/rl1809/stock-ledger/internal/pkg/logging"
)

const maxBodyBytes = 1 << 20

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HTTPHandler struct {
	items       *service.ItemService
	inventories *service.InventoryService
	orders      *service.OrderService
	store       Pinger
	metrics     *observability.Metrics
	logger      *zap.Logger
	now         func() time.Time
}

func NewHTTPHandler(
	items *service.ItemService,
	inventories *service.InventoryService,
	orders *service.OrderService,
	store Pinger,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *HTTPHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPHandler{
		items:       items,
		inventories: inventories,
		orders:      orders,
		store:       store,
		metrics:     metrics,
		logger:      logger.With(zap.String("component", "http_server")),
		now:         time.Now,
	}
}

func (h *HTTPHandler) Routes() http.Handler {
	mux := http.NewServeMux()

	h.handle(mux, "GET /api/v1/items", h.ListItems)
	h.handle(mux, "GET /api/v1/items/{id}", h.GetItem)
	h.handle(mux, "POST /api/v1/items/create", h.CreateItem)
	h.handle(mux, "PUT /api/v1/items/update", h.UpdateItem)
	h.handle(mux, "DELETE /api/v1/items/delete/{id}", h.DeleteItem)

	h.handle(mux, "GET /api/v1/inventories", h.ListInventories)
	h.handle(mux, "GET /api/v1/inventories/{id}", h.GetInventory)
	h.handle(mux, "POST /api/v1/inventories/create", h.CreateInventory)
	h.handle(mux, "PUT /api/v1/inventories/update", h.UpdateInventory)
	h.handle(mux, "DELETE /api/v1/inventories/delete/{id}", h.DeleteInventory)

	h.handle(mux, "GET /api/v1/orders", h.ListOrders)
	h.handle(mux, "GET /api/v1/orders/{orderNo}", h.GetOrder)
	h.handle(mux, "POST /api/v1/orders/create", h.CreateOrder)
	h.handle(mux, "PUT /api/v1/orders/update", h.UpdateOrder)
	h.handle(mux, "DELETE /api/v1/orders/delete/{orderNo}", h.DeleteOrder)

	h.handle(mux, "GET /health", h.HealthCheck)
	if h.metrics != nil {
		mux.Handle("GET /metrics", h.metrics.Handler())
	}

	mux.Handle("/", h.observe("unmatched", http.HandlerFunc(h.NotFound)))
	return mux
}

func (h *HTTPHandler) handle(mux *http.ServeMux, pattern string, fn http.HandlerFunc) {
	mux.Handle(pattern, h.observe(pattern, fn))
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if h.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			logging.FromContext(ctx).Warn("health_check_failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, r, domain.Errorf(domain.ErrEndpointNotFound, r.Method+" "+r.URL.Path))
}

// writeError maps err onto the envelope. Unclassified errors are logged
// in full and answered with a generic message.
func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind, message, known := domain.Classify(err)
	log := logging.FromContext(r.Context())

	status := http.StatusBadRequest
	switch {
	case !known:
		status = http.StatusInternalServerError
		log.Error("request_failed", zap.String("path", r.URL.Path), zap.Error(err))
	case kind == domain.ErrEndpointNotFound:
		status = http.StatusNotFound
		log.Info("endpoint_not_found", zap.String("method", r.Method), zap.String("path", r.URL.Path))
	case kind.Class() == domain.ClassValidation:
		log.Info("request_invalid", zap.String("code", kind.Code()), zap.String("reason", message))
	default:
		log.Warn("request_rejected", zap.String("code", kind.Code()), zap.Stringer("class", kind.Class()), zap.String("reason", message))
	}

	writeJSON(w, status, failure(h.now(), kind.Code(), message))
}

// decodeBody reads a JSON object into a new T. An empty body or a bare
// null yields a nil request so the validators can report it.
func decodeBody[T any](r *http.Request) (*T, error) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, domain.Errorf(domain.ErrMalformedRequest, "request body too large")
		}
		return nil, fmt.Errorf("read body: %w", err)
	}

	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}

	var req T
	if err := json.Unmarshal([]byte(trimmed), &req); err != nil {
		return nil, domain.Errorf(domain.ErrMalformedRequest, "invalid JSON body")
	}
	return &req, nil
}

func limitBody(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
}

func pathInt(r *http.Request, name string) (int, error) {
	v, err := strconv.Atoi(r.PathValue(name))
	if err != nil {
		return 0, domain.Errorf(domain.ErrMalformedRequest, "invalid path parameter "+name)
	}
	return v, nil
}

// queryInt returns nil when the parameter is absent or blank.
func queryInt(r *http.Request, name string) (*int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, domain.Errorf(domain.ErrMalformedRequest, "invalid query parameter "+name)
	}
	return &v, nil
}

// pageRequest reads page, size and sort=field[,asc|desc] from the query.
func pageRequest(r *http.Request, allowed []string) (domain.PageRequest, error) {
	q := r.URL.Query()

	number, size := 0, domain.DefaultPageSize
	if raw := strings.TrimSpace(q.Get("page")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 || v > domain.MaxPageNumber {
			return domain.PageRequest{}, domain.Errorf(domain.ErrMalformedRequest, "invalid query parameter page")
		}
		number = v
	}
	if raw := strings.TrimSpace(q.Get("size")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			return domain.PageRequest{}, domain.Errorf(domain.ErrMalformedRequest, "invalid query parameter size")
		}
		size = v
	}

	var sort string
	var desc bool
	if raw := strings.TrimSpace(q.Get("sort")); raw != "" {
		field, dir, _ := strings.Cut(raw, ",")
		sort = strings.TrimSpace(field)
		switch strings.ToLower(strings.TrimSpace(dir)) {
		case "", "asc":
		case "desc":
			desc = true
		default:
			return domain.PageRequest{}, domain.Errorf(domain.ErrMalformedRequest, "invalid sort direction")
		}
	}

	return domain.NewPageRequest(number, size, sort, desc, allowed), nil
}
