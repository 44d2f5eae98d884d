package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rl1809/car-inventory/internal/core/domain"
	"github.com/rl1809/car-inventory/internal/core/service"
)

const (
	msgItemNotFound     = "Item ID does not exist."
	msgItemExists       = "Item ID already exists."
	msgItemTypeNotFound = "Item name not found."
	msgDeleted          = "Item deleted successfully!"
	msgMissingFields    = "type, price and brand are required"
	msgInvalidBody      = "invalid request body"
)

const maxBodyBytes = 1 << 20

var errMissingFields = errors.New(msgMissingFields)

type HTTPHandler struct {
	inventory *service.InventoryService
	logger    *slog.Logger
}

// ItemFields is the create payload shared by HTTP and gRPC. Type, price and
// brand must be present; year defaults to "".
type ItemFields struct {
	Type  *string `json:"type,omitempty"`
	Price *string `json:"price,omitempty"`
	Brand *string `json:"brand,omitempty"`
	Year  *string `json:"year,omitempty"`
}

func (f ItemFields) toItem() (domain.Item, error) {
	if f.Type == nil || f.Price == nil || f.Brand == nil {
		return domain.Item{}, errMissingFields
	}
	item := domain.Item{Type: *f.Type, Price: *f.Price, Brand: *f.Brand}
	if f.Year != nil {
		item.Year = *f.Year
	}
	return item, nil
}

type ErrorHTTPResponse struct {
	Detail string `json:"detail"`
}

func NewHTTPHandler(inventory *service.InventoryService, logger *slog.Logger) *HTTPHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPHandler{inventory: inventory, logger: logger}
}

func (h *HTTPHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.StripSlashes)
	r.Use(middleware.RequestID)
	r.Use(h.logRequests)
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Get("/", h.Home)
	r.Get("/about", h.About)
	r.Get("/health", h.HealthCheck)
	r.Get("/items", h.ListItems)
	r.Get("/get-item/{itemID}", h.GetItem)
	r.Get("/get-by-name", h.GetItemByType)
	r.Post("/create-item/{itemID}", h.CreateItem)
	r.Put("/create-item/{itemID}", h.UpdateItem)
	r.Delete("/delete-item", h.DeleteItem)

	return r
}

func (h *HTTPHandler) Home(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"Data": "Testing"})
}

func (h *HTTPHandler) About(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"Data": "About"})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.inventory.ListItems(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *HTTPHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathItemID(w, r)
	if !ok {
		return
	}

	item, err := h.inventory.GetItem(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// GetItemByType serves /get-by-name. The optional "test" parameter is accepted
// for compatibility and ignored once it parses as an integer.
func (h *HTTPHandler) GetItemByType(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if raw := query.Get("test"); raw != "" {
		if _, err := strconv.Atoi(raw); err != nil {
			writeError(w, http.StatusUnprocessableEntity, "test must be an integer")
			return
		}
	}

	item, err := h.inventory.FindByType(r.Context(), query.Get("type"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *HTTPHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathItemID(w, r)
	if !ok {
		return
	}

	var fields ItemFields
	if err := decodeObject(w, r, &fields); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	item, err := fields.toItem()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	created, err := h.inventory.CreateItem(r.Context(), id, item)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (h *HTTPHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathItemID(w, r)
	if !ok {
		return
	}

	var patch domain.ItemPatch
	if err := decodeObject(w, r, &patch); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	updated, err := h.inventory.UpdateItem(r.Context(), id, patch)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *HTTPHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("item_id")
	if raw == "" {
		writeError(w, http.StatusUnprocessableEntity, "item_id is required")
		return
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "item_id must be an integer")
		return
	}

	if err := h.inventory.DeleteItem(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"Success": msgDeleted})
}

func (h *HTTPHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrItemNotFound):
		writeError(w, http.StatusNotFound, msgItemNotFound)
	case errors.Is(err, service.ErrItemTypeNotFound):
		writeError(w, http.StatusNotFound, msgItemTypeNotFound)
	case errors.Is(err, service.ErrItemExists):
		writeError(w, http.StatusBadRequest, msgItemExists)
	default:
		h.logger.Error("request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *HTTPHandler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		h.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func pathItemID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "itemID"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "item_id must be an integer")
		return 0, false
	}
	return id, true
}

// decodeObject reads exactly one JSON object from the request body into v.
// Trailing data, non-object bodies and null members are rejected.
func decodeObject(w http.ResponseWriter, r *http.Request, v any) error {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return errors.New(msgInvalidBody)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	var members map[string]json.RawMessage
	if err := dec.Decode(&members); err != nil || members == nil {
		return errors.New(msgInvalidBody)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New(msgInvalidBody)
	}
	for name, raw := range members {
		if string(raw) == "null" {
			return fmt.Errorf("%s must not be null", name)
		}
	}

	if err := json.Unmarshal(data, v); err != nil {
		return errors.New(msgInvalidBody)
	}
	return nil
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, ErrorHTTPResponse{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
