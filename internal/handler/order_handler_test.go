package handler_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"orderservice/internal/config"
	"orderservice/internal/handler"
	infraRepo "orderservice/internal/infra/repository"
	"orderservice/internal/server"
	"orderservice/internal/testutil"
	"orderservice/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderJSON struct {
	ID         int64      `json:"id"`
	DateOrder  string     `json:"date_order"`
	CustomerID int64      `json:"customer_id"`
	Items      []itemJSON `json:"items"`
}

type itemJSON struct {
	ID              int64  `json:"id"`
	OrderID         int64  `json:"order_id"`
	ProductID       int64  `json:"product_id"`
	ProductPrice    string `json:"product_price"`
	ProductQuantity int64  `json:"product_quantity"`
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	gormDB := testutil.NewSQLiteDB(t)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)

	uc := usecase.NewOrderUsecase(
		infraRepo.NewTxManagerGorm(gormDB),
		testutil.FixedClock{T: testutil.FixedNow},
		nil,
	)
	srv := server.New(
		config.Config{Port: "0"},
		nil,
		handler.NewOrderHandler(uc),
		handler.NewHealthHandler(sqlDB, "Order REST API Service", "1.0"),
	)
	return srv.Handler()
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func createOrder(t *testing.T, h http.Handler, body string) orderJSON {
	t.Helper()

	rec := doRequest(t, h, http.MethodPost, "/orders", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[orderJSON](t, rec)
}

func TestOrders_Create(t *testing.T) {
	h := newTestServer(t)

	rec := doRequest(t, h, http.MethodPost, "/orders", `{
		"customer_id": "3",
		"date_order": "2022-02-21",
		"item_list": [
			{"product_id": 10, "product_quantity": 2, "product_price": 19.9},
			{"product_id": 11, "product_quantity": 1, "product_price": "5"}
		]
	}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	got := decode[orderJSON](t, rec)
	assert.NotZero(t, got.ID)
	assert.Equal(t, fmt.Sprintf("/orders/%d", got.ID), rec.Header().Get(echo.HeaderLocation))
	assert.Equal(t, "Mon, 21 Feb 2022 00:00:00 GMT", got.DateOrder)
	assert.Equal(t, int64(3), got.CustomerID)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "19.90", got.Items[0].ProductPrice)
	assert.Equal(t, "5.00", got.Items[1].ProductPrice)
	assert.Equal(t, got.ID, got.Items[0].OrderID)

	//作成したものがそのまま取れる
	rec = doRequest(t, h, http.MethodGet, rec.Header().Get(echo.HeaderLocation), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, got, decode[orderJSON](t, rec))
}

func TestOrders_Create_DefaultDate(t *testing.T) {
	h := newTestServer(t)

	got := createOrder(t, h, `{"customer_id": 1, "date_order": null}`)
	assert.Equal(t, "Mon, 21 Feb 2022 10:30:00 GMT", got.DateOrder)
	assert.NotNil(t, got.Items)
	assert.Empty(t, got.Items)
}

func TestOrders_Create_BadRequests(t *testing.T) {
	h := newTestServer(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing customer_id", `{"date_order":"2022-02-21"}`, "Invalid Order: missing customer_id"},
		{"bad customer_id", `{"customer_id":"x","date_order":"2022-02-21"}`, "Invalid Order: bad value for customer_id"},
		{"not a mapping", `[1,2]`, "Invalid Order: body of request contained bad or no data"},
		{"broken json", `{"customer_id":`, "Invalid Order: body of request contained bad or no data"},
		{"bad item", `{"customer_id":1,"date_order":"2022-02-21","item_list":[{"product_quantity":1}]}`, "Invalid Order: item_list[0]: missing product_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, h, http.MethodPost, "/orders", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.want, decode[handler.ErrorResponse](t, rec).Error)
		})
	}
}

func TestOrders_ContentType(t *testing.T) {
	h := newTestServer(t)

	for _, ct := range []string{"", "text/plain", "application/xml"} {
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"customer_id":1,"date_order":"2022-02-21"}`))
		if ct != "" {
			req.Header.Set(echo.HeaderContentType, ct)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code, "content type %q", ct)
	}

	//charset付きは通る
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"customer_id":1,"date_order":"2022-02-21"}`))
	req.Header.Set(echo.HeaderContentType, "application/json; charset=utf-8")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestOrders_Get(t *testing.T) {
	h := newTestServer(t)

	rec := doRequest(t, h, http.MethodGet, "/orders/0", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "order not found", decode[handler.ErrorResponse](t, rec).Error)

	rec = doRequest(t, h, http.MethodGet, "/orders/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid id", decode[handler.ErrorResponse](t, rec).Error)
}

func TestOrders_List(t *testing.T) {
	h := newTestServer(t)

	for _, c := range []int{1, 2, 1} {
		createOrder(t, h, fmt.Sprintf(`{"customer_id":%d,"date_order":"2022-02-21"}`, c))
	}

	rec := doRequest(t, h, http.MethodGet, "/orders", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]orderJSON](t, rec), 3)

	rec = doRequest(t, h, http.MethodGet, "/orders?customer=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	byCustomer := decode[[]orderJSON](t, rec)
	require.Len(t, byCustomer, 2)
	for _, o := range byCustomer {
		assert.Equal(t, int64(1), o.CustomerID)
	}

	rec = doRequest(t, h, http.MethodGet, "/orders?customer_id=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]orderJSON](t, rec), 1)

	rec = doRequest(t, h, http.MethodGet, "/orders?customer=99", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))

	rec = doRequest(t, h, http.MethodGet, "/orders?customer=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrders_Update(t *testing.T) {
	h := newTestServer(t)

	created := createOrder(t, h, `{"customer_id":1,"date_order":"2022-02-21","item_list":[{"product_id":1,"product_quantity":1}]}`)
	path := fmt.Sprintf("/orders/%d", created.ID)

	//item_listなしは明細そのまま
	rec := doRequest(t, h, http.MethodPut, path, `{"customer_id":5,"date_order":"2022-03-01"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[orderJSON](t, rec)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, int64(5), updated.CustomerID)
	assert.Equal(t, "Tue, 01 Mar 2022 00:00:00 GMT", updated.DateOrder)
	assert.Equal(t, created.Items, updated.Items)

	//item_listありは総入れ替え
	rec = doRequest(t, h, http.MethodPut, path, `{"customer_id":5,"date_order":"","item_list":[{"product_id":7,"product_quantity":2},{"product_id":8,"product_quantity":3}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated = decode[orderJSON](t, rec)
	assert.Equal(t, "Tue, 01 Mar 2022 00:00:00 GMT", updated.DateOrder)
	require.Len(t, updated.Items, 2)
	assert.Equal(t, int64(7), updated.Items[0].ProductID)

	rec = doRequest(t, h, http.MethodPut, "/orders/9999", `{"customer_id":5,"date_order":"2022-03-01"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, h, http.MethodPut, path, `{"date_order":"2022-03-01"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrders_Update_MissingOrderIs404(t *testing.T) {
	h := newTestServer(t)

	tests := []struct {
		name string
		path string
		body string
	}{
		{"zero id", "/orders/0", `{"customer_id":5,"date_order":"2022-03-01"}`},
		{"negative id", "/orders/-1", `{"customer_id":5,"date_order":"2022-03-01"}`},
		{"unknown id with invalid body", "/orders/999", `{"customer_id":1}`},
		{"unknown id with broken body", "/orders/999", `{"customer_id":`},
		{"zero id items", "/orders/0/items", `{"item_list":[]}`},
		{"unknown id items with invalid body", "/orders/999/items", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, h, http.MethodPut, tt.path, tt.body)
			assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
			assert.Equal(t, "order not found", decode[handler.ErrorResponse](t, rec).Error)
		})
	}
}

func TestOrders_Delete(t *testing.T) {
	h := newTestServer(t)

	created := createOrder(t, h, `{"customer_id":1,"date_order":"2022-02-21","item_list":[{"product_id":1,"product_quantity":1}]}`)
	path := fmt.Sprintf("/orders/%d", created.ID)

	rec := doRequest(t, h, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = doRequest(t, h, http.MethodGet, path, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, h, http.MethodGet, path+"/items", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	//なくても204
	rec = doRequest(t, h, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestOrders_Items(t *testing.T) {
	h := newTestServer(t)

	created := createOrder(t, h, `{"customer_id":1,"date_order":"2022-02-21","item_list":[{"product_id":1,"product_quantity":1,"product_price":"2.5"}]}`)
	path := fmt.Sprintf("/orders/%d/items", created.ID)

	rec := doRequest(t, h, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.Items, decode[[]itemJSON](t, rec))

	rec = doRequest(t, h, http.MethodPut, path, `{"item_list":[{"product_id":4,"product_quantity":4},{"product_id":5,"product_quantity":5}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	replaced := decode[orderJSON](t, rec)
	require.Len(t, replaced.Items, 2)
	assert.Equal(t, "0.00", replaced.Items[0].ProductPrice)

	rec = doRequest(t, h, http.MethodPut, path, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid Order: missing item_list", decode[handler.ErrorResponse](t, rec).Error)

	rec = doRequest(t, h, http.MethodPut, path, `{"item_list":[]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[orderJSON](t, rec).Items)

	rec = doRequest(t, h, http.MethodPut, "/orders/9999/items", `{"item_list":[]}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouting_Errors(t *testing.T) {
	h := newTestServer(t)

	rec := doRequest(t, h, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", decode[handler.ErrorResponse](t, rec).Error)

	rec = doRequest(t, h, http.MethodDelete, "/orders", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "Method Not Allowed", decode[handler.ErrorResponse](t, rec).Error)
}
