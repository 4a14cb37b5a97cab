package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	appinventory "github.com/marketplace/metronome/internal/application/inventory"
	"github.com/marketplace/metronome/internal/pkg/apierr"
)

// Handler exposes the inventory operations over JSON/HTTP. The caller's
// bearer credential is read from the Authorization header and handed to the
// application layer untouched.
type Handler struct {
	inventoryService *appinventory.Service
}

func NewHandler(inventorySvc *appinventory.Service) *Handler {
	return &Handler{
		inventoryService: inventorySvc,
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /inventory/{productId}", h.handleGetStock)
	mux.HandleFunc("POST /inventory/create", h.handleCreate)
	mux.HandleFunc("POST /inventory/add", h.handleAdd)
	mux.HandleFunc("POST /inventory/decrease", h.handleDecrease)
	mux.HandleFunc("DELETE /inventory/{productId}", h.handleDelete)
	mux.HandleFunc("POST /inventory/reserve", h.handleReserve)
	mux.HandleFunc("POST /inventory/release", h.handleRelease)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

type getStockResponse struct {
	ProductID         string `json:"product_id"`
	AvailableQuantity int    `json:"available_quantity"`
	ReservedQuantity  int    `json:"reserved_quantity"`
}

func (h *Handler) handleGetStock(w http.ResponseWriter, r *http.Request) {
	result, err := h.inventoryService.GetStock(r.Context(), r.PathValue("productId"))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, getStockResponse{
		ProductID:         result.ProductID,
		AvailableQuantity: result.AvailableQuantity,
		ReservedQuantity:  result.ReservedQuantity,
	})
}

type createRequest struct {
	ProductID       string `json:"productId"`
	InitialQuantity int    `json:"initialQuantity"`
}

type createResponse struct {
	Message         string `json:"message"`
	ProductID       string `json:"product_id"`
	InitialQuantity int    `json:"initial_quantity"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}

	result, err := h.inventoryService.Create(r.Context(), appinventory.CreateInput{
		ProductID:       req.ProductID,
		InitialQuantity: req.InitialQuantity,
		Credential:      credential(r),
	})
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, createResponse{
		Message:         result.Message,
		ProductID:       result.ProductID,
		InitialQuantity: result.InitialQuantity,
	})
}

type adjustRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type adjustResponse struct {
	Message     string `json:"message"`
	NewQuantity int    `json:"new_quantity"`
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req adjustRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}

	result, err := h.inventoryService.Add(r.Context(), appinventory.AdjustInput{
		ProductID:  req.ProductID,
		Quantity:   req.Quantity,
		Credential: credential(r),
	})
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, adjustResponse{
		Message:     result.Message,
		NewQuantity: result.NewQuantity,
	})
}

func (h *Handler) handleDecrease(w http.ResponseWriter, r *http.Request) {
	var req adjustRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}

	result, err := h.inventoryService.Decrease(r.Context(), appinventory.AdjustInput{
		ProductID:  req.ProductID,
		Quantity:   req.Quantity,
		Credential: credential(r),
	})
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, adjustResponse{
		Message:     result.Message,
		NewQuantity: result.NewQuantity,
	})
}

type deleteResponse struct {
	Message string `json:"message"`
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	result, err := h.inventoryService.Delete(r.Context(), r.PathValue("productId"), credential(r))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{Message: result.Message})
}

type reserveResponse struct {
	ReservedQuantity int    `json:"reserved_quantity"`
	ReservationID    string `json:"reservation_id"`
}

func (h *Handler) handleReserve(w http.ResponseWriter, r *http.Request) {
	var req adjustRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}

	result, err := h.inventoryService.Reserve(r.Context(), appinventory.AdjustInput{
		ProductID:  req.ProductID,
		Quantity:   req.Quantity,
		Credential: credential(r),
	})
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, reserveResponse{
		ReservedQuantity: result.ReservedQuantity,
		ReservationID:    result.ReservationID,
	})
}

type releaseRequest struct {
	ProductID     string `json:"productId"`
	Quantity      int    `json:"quantity"`
	ReservationID string `json:"reservationId"`
}

type releaseResponse struct {
	ReleasedQuantity int `json:"released_quantity"`
}

func (h *Handler) handleRelease(w http.ResponseWriter, r *http.Request) {
	var req releaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}

	result, err := h.inventoryService.Release(r.Context(), appinventory.ReleaseInput{
		ProductID:     req.ProductID,
		Quantity:      req.Quantity,
		ReservationID: req.ReservationID,
		Credential:    credential(r),
	})
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, releaseResponse{ReleasedQuantity: result.ReleasedQuantity})
}

func credential(r *http.Request) string {
	return r.Header.Get("Authorization")
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return apierr.BadRequest("invalid request body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type errorBody struct {
	StatusCode       int               `json:"statusCode"`
	Error            string            `json:"error"`
	Message          string            `json:"message"`
	Timestamp        string            `json:"timestamp"`
	Path             string            `json:"path"`
	ValidationErrors []validationError `json:"validationErrors,omitempty"`
	Details          map[string]any    `json:"details,omitempty"`
}

type validationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) {
		apiErr = apierr.Internal(err.Error())
	}

	status := statusFor(apiErr.Kind)
	body := errorBody{
		StatusCode: status,
		Error:      http.StatusText(status),
		Message:    apiErr.Message,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Path:       r.URL.Path,
		Details:    apiErr.Details,
	}
	if apiErr.Field != "" {
		body.ValidationErrors = []validationError{
			{Field: apiErr.Field, Message: apiErr.Message},
		}
	}
	writeJSON(w, status, body)
}

func statusFor(kind apierr.Kind) int {
	switch kind {
	case apierr.KindBadRequest:
		return http.StatusBadRequest
	case apierr.KindUnauthorized:
		return http.StatusUnauthorized
	case apierr.KindForbidden:
		return http.StatusForbidden
	case apierr.KindNotFound:
		return http.StatusNotFound
	case apierr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
