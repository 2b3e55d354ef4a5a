package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"sheetpos/pos/internal/cart"
	"sheetpos/pos/internal/catalog"
	"sheetpos/pos/internal/config"
	"sheetpos/pos/internal/domain"
	"sheetpos/pos/internal/metrics"
	"sheetpos/pos/internal/receipt"
	"sheetpos/pos/internal/service"
	"sheetpos/pos/internal/sheet"
	"sheetpos/pos/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	files map[string][]byte
}

func (s *stubClient) Download(_ context.Context, sourceURL string) ([]byte, error) {
	if data, ok := s.files[sourceURL]; ok {
		return data, nil
	}
	return nil, &domain.Error{
		Kind:       domain.KindFetchFailed,
		Message:    "File not found (404). Please check the URL.",
		StatusCode: http.StatusNotFound,
		Attempts:   []string{"direct: HTTP 404"},
	}
}

func catalogWorkbook(t *testing.T) []byte {
	t.Helper()
	data, err := sheet.Encode([][]any{
		{"Name (English)", "Name (Urdu)", "Unit", "Parchon Price", "Wholesale Price", "Stock"},
		{"Rice", "چاول", "Kg", 200, 180, 999},
		{"Soap", "", "Pack", 50, "", 1},
		{"Salt", "", "Kg", 40, "", 0},
	})
	require.NoError(t, err)
	return data
}

func newTestServer(t *testing.T) (http.Handler, *stubClient) {
	t.Helper()

	sources, err := state.NewBoltSourceStore(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sources.Close() })

	builder, err := receipt.NewBuilder(1, "Rs.", "en")
	require.NoError(t, err)

	m := metrics.New()
	client := &stubClient{files: map[string][]byte{}}
	store := catalog.NewStore()
	svc := service.NewService(
		client,
		catalog.NewNormalizer("Rs."),
		store,
		cart.New(store, builder, 0),
		sources,
		receipt.NewHTMLRenderer("Corner Store"),
		m,
		config.CatalogConfig{DefaultURL: "https://example.com/default.xlsx"},
		"excelUrl",
	)

	return New(config.ServerConfig{Host: "127.0.0.1", Port: 0}, svc, m).Handler(), client
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func loadCatalog(t *testing.T, h http.Handler, client *stubClient) {
	t.Helper()
	client.files["https://example.com/catalog.xlsx"] = catalogWorkbook(t)
	rec := do(t, h, http.MethodPost, "/api/catalog/load", map[string]string{"url": "https://example.com/catalog.xlsx"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestHealthAndMetrics(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["catalog_loaded"])

	rec = do(t, h, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestLoadCatalogAndSearch(t *testing.T) {
	h, client := newTestServer(t)
	loadCatalog(t, h, client)

	rec := do(t, h, http.MethodGet, "/api/catalog/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	status := decode(t, rec)
	assert.Equal(t, true, status["loaded"])
	assert.Equal(t, 3.0, status["products"])

	rec = do(t, h, http.MethodGet, "/api/catalog?q=RICE", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.0, decode(t, rec)["total"])

	rec = do(t, h, http.MethodGet, "/api/catalog/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
}

func TestLoadCatalogErrors(t *testing.T) {
	h, client := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/catalog/load", map[string]string{"url": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_source", decode(t, rec)["code"])

	rec = do(t, h, http.MethodPost, "/api/catalog/load", map[string]string{"url": "https://example.com/missing.xlsx"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "fetch_failed", body["code"])
	detail := body["detail"].(map[string]any)
	assert.Equal(t, 404.0, detail["status_code"])

	empty, err := sheet.Encode([][]any{{"Name", "Parchon Price"}, {"Nothing", 0}})
	require.NoError(t, err)
	client.files["https://example.com/empty.xlsx"] = empty

	rec = do(t, h, http.MethodPost, "/api/catalog/load", map[string]string{"url": "https://example.com/empty.xlsx"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, "no_valid_products", body["code"])
	assert.Equal(t, 1.0, body["detail"].(map[string]any)["row_count"])
}

func TestUploadCatalog(t *testing.T) {
	h, _ := newTestServer(t)

	upload := func(name string, data []byte) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		part, err := w.CreateFormFile("file", name)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/catalog/upload", &buf)
		req.Header.Set("Content-Type", w.FormDataContentType())
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := upload("prices.txt", []byte("hello"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_source", decode(t, rec)["code"])

	rec = upload("prices.xlsx", catalogWorkbook(t))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "file:prices.xlsx", decode(t, rec)["source"])
}

func TestCartEndpoints(t *testing.T) {
	h, client := newTestServer(t)
	loadCatalog(t, h, client)

	rec := do(t, h, http.MethodPost, "/api/cart/select", map[string]int{"product_id": 1})
	require.Equal(t, http.StatusOK, rec.Code)
	selection := decode(t, rec)
	options := selection["options"].([]any)
	require.Len(t, options, 2)
	assert.Equal(t, "Parchon Price", options[0].(map[string]any)["label"])
	assert.Equal(t, 200.0, selection["suggested"])

	rec = do(t, h, http.MethodPost, "/api/cart/select", map[string]int{"product_id": 3})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "out_of_stock", decode(t, rec)["code"])

	rec = do(t, h, http.MethodPost, "/api/cart/items", map[string]any{"product_id": 1, "tier": "wholesale"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/cart/items", map[string]any{"product_id": 2, "price": 50})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/cart/items/1/step", map[string]int{"direction": 1})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "insufficient_stock", decode(t, rec)["code"])

	rec = do(t, h, http.MethodPut, "/api/cart/items/0/quantity", map[string]any{"quantity": "750 gm"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/cart/items/0/quantity", map[string]any{"quantity": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_quantity", decode(t, rec)["code"])

	rec = do(t, h, http.MethodPut, "/api/cart/items/1/price", map[string]any{"price": 45})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/cart/items/1/price", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/cart/items/x", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/cart/items/9", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "line_not_found", decode(t, rec)["code"])

	rec = do(t, h, http.MethodGet, "/api/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode(t, rec)
	lines := view["lines"].([]any)
	require.Len(t, lines, 2)
	first := lines[0].(map[string]any)
	assert.Equal(t, "750 gm", first["quantity_formatted"])
	assert.Equal(t, true, first["custom_price"])
	assert.InDelta(t, 180.0, view["totals"].(map[string]any)["total"], 1e-9)

	rec = do(t, h, http.MethodGet, "/api/cart/receipt?lang=urdu&format=html", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html"))
	assert.Contains(t, rec.Body.String(), "چاول")

	rec = do(t, h, http.MethodPost, "/api/checkout?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/checkout?format=csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv"))
	assert.Contains(t, rec.Body.String(), "item,quantity,unit_price,line_total,custom_price")

	rec = do(t, h, http.MethodPost, "/api/checkout", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "empty_cart", decode(t, rec)["code"])
}

func TestClearCart(t *testing.T) {
	h, client := newTestServer(t)
	loadCatalog(t, h, client)

	rec := do(t, h, http.MethodPost, "/api/cart/items", map[string]any{"product_id": 1, "price": 200})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode(t, rec)["lines"])
}
