package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	ordererrors "github.com/webmart/shopcore/internal/order/errors"
	"github.com/webmart/shopcore/internal/order/service"
	"github.com/webmart/shopcore/internal/order/store"
	"github.com/webmart/shopcore/pkg/web"
)

// mockOrderService is a mock implementation of the OrderService interface
type mockOrderService struct {
	order   *service.OrderDto
	orders  []service.OrderDto
	matched int64
	error   error

	statusSet string
}

func (m *mockOrderService) Create(_ context.Context, _ service.OrderCreateDto) (*service.OrderDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.order, nil
}

func (m *mockOrderService) FindByID(_ context.Context, _ uuid.UUID) (*service.OrderDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.order, nil
}

func (m *mockOrderService) FindByUserID(_ context.Context, _ uuid.UUID, _, _ int32) ([]service.OrderDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.orders, nil
}

func (m *mockOrderService) StatusValues() []string {
	return []string{"Not processed", "Received", "Processing", "Shipped", "Delivered", "Cancelled"}
}

func (m *mockOrderService) SetStatus(_ context.Context, _ uuid.UUID, status string) (int64, error) {
	if m.error != nil {
		return 0, m.error
	}
	m.statusSet = status
	return m.matched, nil
}

// mockFulfiller records the order it was asked to fulfill.
type mockFulfiller struct {
	order *store.Order
	error error
}

func (m *mockFulfiller) Apply(_ context.Context, order *store.Order) (int, error) {
	m.order = order
	if m.error != nil {
		return 0, m.error
	}
	return len(order.Items), nil
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// toJSON is a helper function to convert a struct to JSON string
func toJSON(t *testing.T, v interface{}) string {
	t.Helper()
	bytes, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal to JSON: %v", err)
	}
	return string(bytes)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func createdOrder(id, userID uuid.UUID, createdAt time.Time) *service.OrderDto {
	return &service.OrderDto{
		ID:            id,
		UserID:        userID,
		Status:        "Not processed",
		TransactionID: "tx-7",
		Amount:        decimal.NewFromInt(20),
		CreatedAt:     createdAt.Format(time.RFC3339),
		Items: []service.OrderItemDto{{
			ID:        uuid.New(),
			ProductID: uuid.New(),
			Name:      "Shirt",
			Price:     decimal.NewFromInt(10),
			Quantity:  2,
		}},
	}
}

func Test_OrderAPI_Create(t *testing.T) {
	mockID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")
	mockUserID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174001")
	created := createdOrder(mockID, mockUserID, time.Now())
	validBody := `{"transaction_id":"tx-7","amount":"20","items":[{"product_id":"` +
		created.Items[0].ProductID.String() + `","name":"Shirt","price":"10","quantity":2}]}`

	testCases := []struct {
		name            string
		mockService     *mockOrderService
		mockFulfillment *mockFulfiller
		body            string
		userID          uuid.UUID
		expectedCode    int
		expectFulfilled bool
	}{
		{
			name:            "Success - order created and fulfilled",
			mockService:     &mockOrderService{order: created},
			mockFulfillment: &mockFulfiller{},
			body:            validBody,
			userID:          mockUserID,
			expectedCode:    http.StatusCreated,
			expectFulfilled: true,
		},
		{
			name:            "Error - missing user",
			mockService:     &mockOrderService{order: created},
			mockFulfillment: &mockFulfiller{},
			body:            validBody,
			userID:          uuid.Nil,
			expectedCode:    http.StatusUnauthorized,
		},
		{
			name:            "Error - empty items rejected",
			mockService:     &mockOrderService{order: created},
			mockFulfillment: &mockFulfiller{},
			body:            `{"transaction_id":"tx-7","items":[]}`,
			userID:          mockUserID,
			expectedCode:    http.StatusBadRequest,
		},
		{
			name:            "Error - malformed body",
			mockService:     &mockOrderService{order: created},
			mockFulfillment: &mockFulfiller{},
			body:            `{"transaction_id":`,
			userID:          mockUserID,
			expectedCode:    http.StatusBadRequest,
		},
		{
			name:            "Error - service error",
			mockService:     &mockOrderService{error: errors.New("service unavailable")},
			mockFulfillment: &mockFulfiller{},
			body:            validBody,
			userID:          mockUserID,
			expectedCode:    http.StatusInternalServerError,
		},
		{
			name:            "Error - fulfillment failure after creation",
			mockService:     &mockOrderService{order: created},
			mockFulfillment: &mockFulfiller{error: ordererrors.ErrFulfillmentFailed},
			body:            validBody,
			userID:          mockUserID,
			expectedCode:    http.StatusInternalServerError,
			expectFulfilled: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := NewHandler(tc.mockService, tc.mockFulfillment, testLogger())
			req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(tc.body))
			if tc.userID != uuid.Nil {
				ctx := context.WithValue(context.Background(), web.UserIDKey, tc.userID.String())
				req = req.WithContext(ctx)
			}
			rr := httptest.NewRecorder()

			// when
			api.Create(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			if tc.expectFulfilled {
				// the coordinator saw the persisted order, not the raw request
				assert.NotNil(t, tc.mockFulfillment.order)
				assert.Equal(t, mockID, tc.mockFulfillment.order.ID)
				assert.Equal(t, mockUserID, tc.mockFulfillment.order.UserID)
				assert.Len(t, tc.mockFulfillment.order.Items, 1)
			} else {
				assert.Nil(t, tc.mockFulfillment.order)
			}
		})
	}
}

func Test_OrderAPI_FindByID(t *testing.T) {
	mockID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")
	mockUserID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174001")
	created := createdOrder(mockID, mockUserID, time.Now())
	testCases := []struct {
		name         string
		mockService  *mockOrderService
		orderID      string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - order found",
			mockService:  &mockOrderService{order: created},
			orderID:      mockID.String(),
			expectedCode: http.StatusOK,
			expectedBody: toJSON(t, created),
		},
		{
			name:         "Error - invalid id",
			mockService:  &mockOrderService{},
			orderID:      "123-invalid-id",
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ErrorResponse{Error: "Invalid ID: 123-invalid-id"}),
		},
		{
			name:         "Error - order not found",
			mockService:  &mockOrderService{error: ordererrors.ErrOrderNotFound},
			orderID:      mockID.String(),
			expectedCode: http.StatusNotFound,
			expectedBody: toJSON(t, ErrorResponse{Error: "Order with ID " + mockID.String() + " not found"}),
		},
		{
			name:         "Error - service error",
			mockService:  &mockOrderService{error: errors.New("service unavailable")},
			orderID:      mockID.String(),
			expectedCode: http.StatusInternalServerError,
			expectedBody: toJSON(t, ErrorResponse{Error: "Failed to retrieve order with ID " + mockID.String()}),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := NewHandler(tc.mockService, &mockFulfiller{}, testLogger())
			req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+tc.orderID, nil)
			req.SetPathValue("id", tc.orderID)
			rr := httptest.NewRecorder()

			// when
			api.FindByID(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
		})
	}
}

func Test_OrderAPI_FindByUserID(t *testing.T) {
	mockUserID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174001")
	createdAt := time.Now()
	orders := []service.OrderDto{
		{ID: uuid.New(), UserID: mockUserID, Status: "Delivered", CreatedAt: createdAt.Format(time.RFC3339)},
		{ID: uuid.New(), UserID: mockUserID, Status: "Not processed", CreatedAt: createdAt.Add(-time.Hour).Format(time.RFC3339)},
	}
	testCases := []struct {
		name         string
		mockService  *mockOrderService
		target       string
		userID       uuid.UUID
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - orders found with explicit paging",
			mockService:  &mockOrderService{orders: orders},
			target:       "/api/v1/orders?offset=0&limit=10",
			userID:       mockUserID,
			expectedCode: http.StatusOK,
			expectedBody: toJSON(t, orders),
		},
		{
			name:         "Success - paging defaults apply when absent",
			mockService:  &mockOrderService{orders: []service.OrderDto{}},
			target:       "/api/v1/orders",
			userID:       mockUserID,
			expectedCode: http.StatusOK,
			expectedBody: `[]`,
		},
		{
			name:         "Error - negative offset",
			mockService:  &mockOrderService{},
			target:       "/api/v1/orders?offset=-1",
			userID:       mockUserID,
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ErrorResponse{Error: "Invalid offset number: -1"}),
		},
		{
			name:         "Error - missing user",
			mockService:  &mockOrderService{},
			target:       "/api/v1/orders",
			userID:       uuid.Nil,
			expectedCode: http.StatusUnauthorized,
			expectedBody: toJSON(t, ErrorResponse{Error: "Unauthorized: Missing or invalid user ID"}),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := NewHandler(tc.mockService, &mockFulfiller{}, testLogger())
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if tc.userID != uuid.Nil {
				ctx := context.WithValue(context.Background(), web.UserIDKey, tc.userID.String())
				req = req.WithContext(ctx)
			}
			rr := httptest.NewRecorder()

			// when
			api.FindByUserID(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
		})
	}
}

func Test_OrderAPI_StatusValues(t *testing.T) {
	// given
	api := NewHandler(&mockOrderService{}, &mockFulfiller{}, testLogger())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/status-values", nil)
	rr := httptest.NewRecorder()

	// when
	api.StatusValues(rr, req)

	// then
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `["Not processed","Received","Processing","Shipped","Delivered","Cancelled"]`, rr.Body.String())
}

func Test_OrderAPI_SetStatus(t *testing.T) {
	mockID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")
	testCases := []struct {
		name         string
		mockService  *mockOrderService
		orderID      string
		body         string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - status set",
			mockService:  &mockOrderService{matched: 1},
			orderID:      mockID.String(),
			body:         `{"status":"Shipped"}`,
			expectedCode: http.StatusOK,
			expectedBody: `{"matched":1}`,
		},
		{
			name:         "Success - zero matches",
			mockService:  &mockOrderService{matched: 0},
			orderID:      mockID.String(),
			body:         `{"status":"Cancelled"}`,
			expectedCode: http.StatusOK,
			expectedBody: `{"matched":0}`,
		},
		{
			name:         "Error - unknown status",
			mockService:  &mockOrderService{error: ordererrors.ErrInvalidStatus},
			orderID:      mockID.String(),
			body:         `{"status":"Teleported"}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - missing status",
			mockService:  &mockOrderService{},
			orderID:      mockID.String(),
			body:         `{}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ErrorResponse{Error: "status is required"}),
		},
		{
			name:         "Error - invalid id",
			mockService:  &mockOrderService{},
			orderID:      "not-a-uuid",
			body:         `{"status":"Shipped"}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ErrorResponse{Error: "Invalid ID: not-a-uuid"}),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := NewHandler(tc.mockService, &mockFulfiller{}, testLogger())
			req := httptest.NewRequest(http.MethodPut, "/api/v1/orders/"+tc.orderID+"/status", strings.NewReader(tc.body))
			req.SetPathValue("id", tc.orderID)
			rr := httptest.NewRecorder()

			// when
			api.SetStatus(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			if tc.expectedBody != "" {
				assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
			}
		})
	}
}
