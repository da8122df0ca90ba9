package admin_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rvallim/raffle-allocation/pkg/allocation"
	"github.com/rvallim/raffle-allocation/pkg/api"
	"github.com/rvallim/raffle-allocation/pkg/dispatcher"
	dispatcher_mocks "github.com/rvallim/raffle-allocation/pkg/dispatcher/mocks"
	"github.com/rvallim/raffle-allocation/pkg/handlers/admin"
	"github.com/rvallim/raffle-allocation/pkg/models"
	"github.com/rvallim/raffle-allocation/pkg/notify"
	"github.com/rvallim/raffle-allocation/pkg/storage"
	storage_mocks "github.com/rvallim/raffle-allocation/pkg/storage/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func newHandler(mockStorage *storage_mocks.Storage, mockEngine *dispatcher_mocks.Engine) *admin.AdminHandler {
	d := dispatcher.NewDispatcher(mockStorage, mockEngine, nil, &notify.NoOpPublisher{})
	return admin.NewAdminHandler(mockStorage, d)
}

func TestCreateRaffle(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockStorage := new(storage_mocks.Storage)
		h := newHandler(mockStorage, new(dispatcher_mocks.Engine))

		created := &models.Raffle{Id: "raffle1", Name: "iPhone", TotalNumbers: 1000, PricePerNumber: 500, Status: models.RaffleActive}
		mockStorage.On("CreateRaffle", mock.Anything, mock.AnythingOfType("*models.Raffle")).Return(created, nil)

		body, _ := json.Marshal(api.NewRaffle{Name: "iPhone", TotalNumbers: 1000, PricePerNumber: 500})
		req := httptest.NewRequest(http.MethodPost, "/admin/raffles", bytes.NewReader(body))
		rr := httptest.NewRecorder()

		h.CreateRaffle(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		var resp api.Raffle
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "raffle1", resp.Id)
		mockStorage.AssertExpectations(t)
	})

	t.Run("Second Active Raffle Is Rejected", func(t *testing.T) {
		mockStorage := new(storage_mocks.Storage)
		h := newHandler(mockStorage, new(dispatcher_mocks.Engine))

		mockStorage.On("CreateRaffle", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: an active raffle already exists", storage.ErrInvalidInput))

		body, _ := json.Marshal(api.NewRaffle{Name: "Second", TotalNumbers: 100})
		req := httptest.NewRequest(http.MethodPost, "/admin/raffles", bytes.NewReader(body))
		rr := httptest.NewRecorder()

		h.CreateRaffle(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestMarkOrderPaid(t *testing.T) {
	t.Run("Override Settles And Returns Numbers", func(t *testing.T) {
		mockStorage := new(storage_mocks.Storage)
		mockEngine := new(dispatcher_mocks.Engine)
		h := newHandler(mockStorage, mockEngine)

		paid := &models.Order{Id: "order1", RaffleId: "raffle1", Status: models.PAID}
		mockStorage.On("MarkOrderPaid", mock.Anything, "order1").Return(paid, nil)
		mockEngine.On("Allocate", mock.Anything, "order1").
			Return(&allocation.Result{OrderId: "order1", RaffleId: "raffle1", Numbers: []int{3, 8}}, nil)

		req := withURLParam(httptest.NewRequest(http.MethodPost, "/admin/orders/order1/mark-paid", nil), "orderId", "order1")
		rr := httptest.NewRecorder()

		h.MarkOrderPaid(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp api.ConfirmResponse
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "paid", resp.Status)
		assert.Equal(t, []int{3, 8}, resp.Numbers)
		mockStorage.AssertExpectations(t)
		mockEngine.AssertExpectations(t)
	})

	t.Run("No Stock Gets A Precise Conflict", func(t *testing.T) {
		mockStorage := new(storage_mocks.Storage)
		mockEngine := new(dispatcher_mocks.Engine)
		h := newHandler(mockStorage, mockEngine)

		paid := &models.Order{Id: "order1", RaffleId: "raffle1", Status: models.PAID}
		mockStorage.On("MarkOrderPaid", mock.Anything, "order1").Return(paid, nil)
		mockEngine.On("Allocate", mock.Anything, "order1").
			Return(nil, fmt.Errorf("raffle raffle1 has 0 free numbers, need 2: %w", storage.ErrNoStock))

		req := withURLParam(httptest.NewRequest(http.MethodPost, "/admin/orders/order1/mark-paid", nil), "orderId", "order1")
		rr := httptest.NewRecorder()

		h.MarkOrderPaid(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("Cancelled Order Is Not Payable", func(t *testing.T) {
		mockStorage := new(storage_mocks.Storage)
		h := newHandler(mockStorage, new(dispatcher_mocks.Engine))

		mockStorage.On("MarkOrderPaid", mock.Anything, "order1").
			Return(nil, fmt.Errorf("order order1: %w", storage.ErrOrderNotPayable))

		req := withURLParam(httptest.NewRequest(http.MethodPost, "/admin/orders/order1/mark-paid", nil), "orderId", "order1")
		rr := httptest.NewRecorder()

		h.MarkOrderPaid(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("Unknown Order", func(t *testing.T) {
		mockStorage := new(storage_mocks.Storage)
		h := newHandler(mockStorage, new(dispatcher_mocks.Engine))

		mockStorage.On("MarkOrderPaid", mock.Anything, "missing").
			Return(nil, fmt.Errorf("order missing: %w", storage.ErrNotFound))

		req := withURLParam(httptest.NewRequest(http.MethodPost, "/admin/orders/missing/mark-paid", nil), "orderId", "missing")
		rr := httptest.NewRecorder()

		h.MarkOrderPaid(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestRevertOrder(t *testing.T) {
	revertBody := func(toStatus string) *bytes.Reader {
		body, _ := json.Marshal(api.RevertRequest{ToStatus: toStatus})
		return bytes.NewReader(body)
	}

	t.Run("Cancels And Releases Numbers", func(t *testing.T) {
		mockStorage := new(storage_mocks.Storage)
		h := newHandler(mockStorage, new(dispatcher_mocks.Engine))

		reverted := &models.Order{Id: "order1", RaffleId: "raffle1", Status: models.CANCELLED}
		mockStorage.On("RevertOrder", mock.Anything, "order1", models.CANCELLED).Return(nil)
		mockStorage.On("GetOrder", mock.Anything, "order1").Return(reverted, nil)

		req := withURLParam(httptest.NewRequest(http.MethodPost, "/admin/orders/order1/revert", revertBody("cancelled")), "orderId", "order1")
		rr := httptest.NewRecorder()

		h.RevertOrder(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp api.Order
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "cancelled", resp.Status)
		mockStorage.AssertExpectations(t)
	})

	t.Run("Invalid Target Status", func(t *testing.T) {
		mockStorage := new(storage_mocks.Storage)
		h := newHandler(mockStorage, new(dispatcher_mocks.Engine))

		mockStorage.On("RevertOrder", mock.Anything, "order1", models.OrderStatus("paid")).
			Return(fmt.Errorf("%w: cannot revert to status %q", storage.ErrInvalidInput, "paid"))

		req := withURLParam(httptest.NewRequest(http.MethodPost, "/admin/orders/order1/revert", revertBody("paid")), "orderId", "order1")
		rr := httptest.NewRecorder()

		h.RevertOrder(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Cancelled Order Is Not Revertible", func(t *testing.T) {
		mockStorage := new(storage_mocks.Storage)
		h := newHandler(mockStorage, new(dispatcher_mocks.Engine))

		mockStorage.On("RevertOrder", mock.Anything, "order1", models.PENDING).
			Return(fmt.Errorf("order order1 in status cancelled: %w", storage.ErrOrderNotRevertible))

		req := withURLParam(httptest.NewRequest(http.MethodPost, "/admin/orders/order1/revert", revertBody("pending")), "orderId", "order1")
		rr := httptest.NewRecorder()

		h.RevertOrder(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}
