package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/webmart/shopcore/internal/user/service"
	"github.com/webmart/shopcore/pkg/web"
)

// mockUserService is a mock implementation of the UserService interface
type mockUserService struct {
	history []service.PurchaseHistoryEntryDto
	error   error
}

func (m *mockUserService) PurchaseHistory(_ context.Context, _ uuid.UUID) ([]service.PurchaseHistoryEntryDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.history, nil
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

func Test_UserAPI_PurchaseHistory(t *testing.T) {
	mockUserID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174001")
	history := []service.PurchaseHistoryEntryDto{
		{ProductID: uuid.New(), Name: "Shirt", Price: decimal.NewFromInt(15), Quantity: 2, TransactionID: "tx-1", Amount: decimal.NewFromInt(35)},
		{ProductID: uuid.New(), Name: "Mug", Price: decimal.NewFromInt(5), Quantity: 1, TransactionID: "tx-1", Amount: decimal.NewFromInt(35)},
	}
	testCases := []struct {
		name         string
		mockService  *mockUserService
		userID       uuid.UUID
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - history returned newest first",
			mockService:  &mockUserService{history: history},
			userID:       mockUserID,
			expectedCode: http.StatusOK,
			expectedBody: toJSON(t, history),
		},
		{
			name:         "Success - empty history",
			mockService:  &mockUserService{history: []service.PurchaseHistoryEntryDto{}},
			userID:       mockUserID,
			expectedCode: http.StatusOK,
			expectedBody: `[]`,
		},
		{
			name:         "Error - missing user",
			mockService:  &mockUserService{},
			userID:       uuid.Nil,
			expectedCode: http.StatusUnauthorized,
			expectedBody: toJSON(t, ErrorResponse{Error: "Unauthorized: Missing or invalid user ID"}),
		},
		{
			name:         "Error - service error",
			mockService:  &mockUserService{error: errors.New("service unavailable")},
			userID:       mockUserID,
			expectedCode: http.StatusInternalServerError,
			expectedBody: toJSON(t, ErrorResponse{Error: "Failed to fetch purchase history"}),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := NewHandler(tc.mockService, testLogger())
			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me/history", nil)
			if tc.userID != uuid.Nil {
				ctx := context.WithValue(context.Background(), web.UserIDKey, tc.userID.String())
				req = req.WithContext(ctx)
			}
			rr := httptest.NewRecorder()

			// when
			api.PurchaseHistory(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
		})
	}
}
