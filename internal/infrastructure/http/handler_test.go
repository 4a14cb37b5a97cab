package httptransport

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appinventory "github.com/marketplace/metronome/internal/application/inventory"
	"github.com/marketplace/metronome/internal/infrastructure/aria"
	"github.com/marketplace/metronome/internal/infrastructure/id"
	"github.com/marketplace/metronome/internal/infrastructure/memory"
	"github.com/marketplace/metronome/internal/infrastructure/mockaria"
)

const (
	adminToken  = "Bearer valid-admin-token"
	clientToken = "Bearer valid-client-token"
)

// newTestServer wires the full stack: the inventory handler and the mock
// identity endpoints share one mux, and the aria client points back at it,
// exactly as the service runs standalone.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mockaria.NewHandler().Register(mux)

	srv := httptest.NewServer(Observability(zap.NewNop(), nil, nil)(mux))
	t.Cleanup(srv.Close)

	gate := aria.NewClient(srv.URL+"/mock-aria", time.Second)
	svc := appinventory.NewService(memory.NewProductRepository(), gate, id.NewUUIDGenerator(), nil)
	NewHandler(svc).Register(mux)

	return srv
}

func doJSON(t *testing.T, method, url, token string, payload any) (int, map[string]any) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func TestFullReserveReleaseFlow(t *testing.T) {
	srv := newTestServer(t)

	status, body := doJSON(t, http.MethodPost, srv.URL+"/inventory/create", adminToken,
		map[string]any{"productId": "sku-1", "initialQuantity": 10})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "sku-1", body["product_id"])
	assert.EqualValues(t, 10, body["initial_quantity"])

	status, body = doJSON(t, http.MethodPost, srv.URL+"/inventory/reserve", adminToken,
		map[string]any{"productId": "sku-1", "quantity": 4})
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 4, body["reserved_quantity"])
	reservationID, ok := body["reservation_id"].(string)
	require.True(t, ok)
	require.NotEmpty(t, reservationID)

	status, body = doJSON(t, http.MethodGet, srv.URL+"/inventory/sku-1", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 6, body["available_quantity"])
	assert.EqualValues(t, 4, body["reserved_quantity"])

	status, body = doJSON(t, http.MethodPost, srv.URL+"/inventory/release", adminToken,
		map[string]any{"productId": "sku-1", "quantity": 4, "reservationId": reservationID})
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 4, body["released_quantity"])

	status, body = doJSON(t, http.MethodGet, srv.URL+"/inventory/sku-1", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 10, body["available_quantity"])
	assert.EqualValues(t, 0, body["reserved_quantity"])

	status, body = doJSON(t, http.MethodDelete, srv.URL+"/inventory/sku-1", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "product sku-1 deleted from inventory", body["message"])

	status, _ = doJSON(t, http.MethodGet, srv.URL+"/inventory/sku-1", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAddAndDecrease(t *testing.T) {
	srv := newTestServer(t)

	status, _ := doJSON(t, http.MethodPost, srv.URL+"/inventory/create", adminToken,
		map[string]any{"productId": "sku-1", "initialQuantity": 10})
	require.Equal(t, http.StatusCreated, status)

	status, body := doJSON(t, http.MethodPost, srv.URL+"/inventory/add", adminToken,
		map[string]any{"productId": "sku-1", "quantity": 5})
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 15, body["new_quantity"])

	status, body = doJSON(t, http.MethodPost, srv.URL+"/inventory/decrease", adminToken,
		map[string]any{"productId": "sku-1", "quantity": 5})
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 10, body["new_quantity"])
}

func TestDecreaseInsufficientStock(t *testing.T) {
	srv := newTestServer(t)

	status, _ := doJSON(t, http.MethodPost, srv.URL+"/inventory/create", adminToken,
		map[string]any{"productId": "sku-1", "initialQuantity": 10})
	require.Equal(t, http.StatusCreated, status)

	status, body := doJSON(t, http.MethodPost, srv.URL+"/inventory/decrease", adminToken,
		map[string]any{"productId": "sku-1", "quantity": 999})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "insufficient stock", body["message"])

	status, body = doJSON(t, http.MethodGet, srv.URL+"/inventory/sku-1", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 10, body["available_quantity"])
}

func TestMutationWithInvalidCredential(t *testing.T) {
	srv := newTestServer(t)

	status, body := doJSON(t, http.MethodPost, srv.URL+"/inventory/create", "Bearer bogus",
		map[string]any{"productId": "sku-1", "initialQuantity": 10})
	require.Equal(t, http.StatusUnauthorized, status)
	assert.EqualValues(t, 401, body["statusCode"])
	assert.Equal(t, "Unauthorized", body["error"])
	assert.Equal(t, "missing or invalid credential", body["message"])
	assert.Equal(t, "/inventory/create", body["path"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestMutationWithoutCredential(t *testing.T) {
	srv := newTestServer(t)

	status, _ := doJSON(t, http.MethodPost, srv.URL+"/inventory/add", "",
		map[string]any{"productId": "sku-1", "quantity": 1})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestMutationWithNonAdminCredential(t *testing.T) {
	srv := newTestServer(t)

	status, body := doJSON(t, http.MethodPost, srv.URL+"/inventory/create", clientToken,
		map[string]any{"productId": "sku-1", "initialQuantity": 10})
	require.Equal(t, http.StatusForbidden, status)
	assert.EqualValues(t, 403, body["statusCode"])
	assert.Equal(t, "Forbidden", body["error"])

	details, ok := body["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "admin", details["requiredRole"])
	assert.Equal(t, "client", details["userRole"])
}

func TestValidationRunsBeforeAuth(t *testing.T) {
	srv := newTestServer(t)

	// no credential at all: the invalid quantity must still win
	status, body := doJSON(t, http.MethodPost, srv.URL+"/inventory/create", "",
		map[string]any{"productId": "sku-1", "initialQuantity": -1})
	require.Equal(t, http.StatusBadRequest, status)

	validationErrors, ok := body["validationErrors"].([]any)
	require.True(t, ok)
	require.Len(t, validationErrors, 1)
	first, ok := validationErrors[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "quantity", first["field"])
}

func TestReleaseRequiresReservationID(t *testing.T) {
	srv := newTestServer(t)

	status, body := doJSON(t, http.MethodPost, srv.URL+"/inventory/release", "",
		map[string]any{"productId": "sku-1", "quantity": 1})
	require.Equal(t, http.StatusBadRequest, status)

	validationErrors, ok := body["validationErrors"].([]any)
	require.True(t, ok)
	require.Len(t, validationErrors, 1)
	first, ok := validationErrors[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "reservation_id", first["field"])
}

func TestCreateDuplicateProduct(t *testing.T) {
	srv := newTestServer(t)

	status, _ := doJSON(t, http.MethodPost, srv.URL+"/inventory/create", adminToken,
		map[string]any{"productId": "sku-1", "initialQuantity": 10})
	require.Equal(t, http.StatusCreated, status)

	status, body := doJSON(t, http.MethodPost, srv.URL+"/inventory/create", adminToken,
		map[string]any{"productId": "sku-1", "initialQuantity": 99})
	require.Equal(t, http.StatusConflict, status)
	assert.EqualValues(t, 409, body["statusCode"])

	status, body = doJSON(t, http.MethodGet, srv.URL+"/inventory/sku-1", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 10, body["available_quantity"])
}

func TestGetUnknownProduct(t *testing.T) {
	srv := newTestServer(t)

	status, body := doJSON(t, http.MethodGet, srv.URL+"/inventory/missing", "", nil)
	require.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "product missing not found", body["message"])
	assert.Equal(t, "/inventory/missing", body["path"])
}

func TestMalformedRequestBody(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/inventory/create",
		bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	req.Header.Set("Authorization", adminToken)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
