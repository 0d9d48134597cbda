package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"order_lifecycle/internal/metrics"
	"order_lifecycle/internal/model"
	"order_lifecycle/internal/orders"
	"order_lifecycle/internal/validator"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

//go:generate mockgen -source=handler.go -destination=./mocks/service_mock.go -package=mocks Service

// Service - операции над заказами, доступные через HTTP.
type Service interface {
	Create(ctx context.Context, req orders.CreateRequest) (*model.Order, error)
	Get(ctx context.Context, orderID int64) (*model.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus, preparingTime *int) (*model.Order, error)
	Cancel(ctx context.Context, orderID int64, ignoreConstraints bool) (*model.Order, error)
	AssignCourier(ctx context.Context, orderID, courierID int64) (*orders.AssignResult, error)
	TopUp(ctx context.Context, courierID, amount int64) (*model.Transaction, error)
}

type statusRequest struct {
	Status        model.OrderStatus `json:"status" validate:"required,order_status"`
	PreparingTime *int              `json:"preparing_time" validate:"omitempty,gt=0"`
}

type cancelRequest struct {
	IgnoreConstraints bool `json:"ignore_constraints"`
}

type assignRequest struct {
	CourierID int64 `json:"courier_id" validate:"required,gt=0"`
}

type topUpRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

// OrderHandler обрабатывает HTTP-запросы, связанные с заказами.
type OrderHandler struct {
	svc Service
	log *zap.Logger
}

// NewOrderHandler создает новый экземпляр OrderHandler.
func NewOrderHandler(svc Service, log *zap.Logger) *OrderHandler {
	return &OrderHandler{svc: svc, log: log}
}

// Create оформляет новый заказ.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	const handlerName = "CreateOrder"
	timer := prometheus.NewTimer(metrics.HttpRequestDuration.WithLabelValues(handlerName))
	defer timer.ObserveDuration()

	var req orders.CreateRequest
	if !h.decode(w, r, handlerName, &req, false) {
		return
	}
	order, err := h.svc.Create(r.Context(), req)
	if err != nil {
		h.respondWithError(w, r, handlerName, err)
		return
	}
	respondWithJSON(w, handlerName, http.StatusCreated, order)
}

// Get отдает заказ. Повторные запросы обслуживаются из кэша контроллера.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	const handlerName = "GetOrder"
	timer := prometheus.NewTimer(metrics.HttpRequestDuration.WithLabelValues(handlerName))
	defer timer.ObserveDuration()

	orderID, ok := h.pathID(w, r, handlerName, "orderID")
	if !ok {
		return
	}
	order, err := h.svc.Get(r.Context(), orderID)
	if err != nil {
		h.respondWithError(w, r, handlerName, err)
		return
	}
	respondWithJSON(w, handlerName, http.StatusOK, order)
}

// UpdateStatus переводит заказ в новый статус.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	const handlerName = "UpdateStatus"
	timer := prometheus.NewTimer(metrics.HttpRequestDuration.WithLabelValues(handlerName))
	defer timer.ObserveDuration()

	orderID, ok := h.pathID(w, r, handlerName, "orderID")
	if !ok {
		return
	}
	var req statusRequest
	if !h.decode(w, r, handlerName, &req, false) {
		return
	}
	order, err := h.svc.UpdateStatus(r.Context(), orderID, req.Status, req.PreparingTime)
	if err != nil {
		h.respondWithError(w, r, handlerName, err)
		return
	}
	respondWithJSON(w, handlerName, http.StatusOK, order)
}

// Cancel отменяет заказ по просьбе клиента или оператора. Тело запроса необязательно.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	const handlerName = "CancelOrder"
	timer := prometheus.NewTimer(metrics.HttpRequestDuration.WithLabelValues(handlerName))
	defer timer.ObserveDuration()

	orderID, ok := h.pathID(w, r, handlerName, "orderID")
	if !ok {
		return
	}
	var req cancelRequest
	if !h.decode(w, r, handlerName, &req, true) {
		return
	}
	order, err := h.svc.Cancel(r.Context(), orderID, req.IgnoreConstraints)
	if err != nil {
		h.respondWithError(w, r, handlerName, err)
		return
	}
	respondWithJSON(w, handlerName, http.StatusOK, order)
}

// Assign назначает курьера. Отказ по правилам назначения - это ответ 200 со status=false.
func (h *OrderHandler) Assign(w http.ResponseWriter, r *http.Request) {
	const handlerName = "AssignCourier"
	timer := prometheus.NewTimer(metrics.HttpRequestDuration.WithLabelValues(handlerName))
	defer timer.ObserveDuration()

	orderID, ok := h.pathID(w, r, handlerName, "orderID")
	if !ok {
		return
	}
	var req assignRequest
	if !h.decode(w, r, handlerName, &req, false) {
		return
	}
	res, err := h.svc.AssignCourier(r.Context(), orderID, req.CourierID)
	if err != nil {
		h.respondWithError(w, r, handlerName, err)
		return
	}
	respondWithJSON(w, handlerName, http.StatusOK, res)
}

// TopUp пополняет баланс курьера.
func (h *OrderHandler) TopUp(w http.ResponseWriter, r *http.Request) {
	const handlerName = "TopUpCourier"
	timer := prometheus.NewTimer(metrics.HttpRequestDuration.WithLabelValues(handlerName))
	defer timer.ObserveDuration()

	courierID, ok := h.pathID(w, r, handlerName, "courierID")
	if !ok {
		return
	}
	var req topUpRequest
	if !h.decode(w, r, handlerName, &req, false) {
		return
	}
	tr, err := h.svc.TopUp(r.Context(), courierID, req.Amount)
	if err != nil {
		h.respondWithError(w, r, handlerName, err)
		return
	}
	respondWithJSON(w, handlerName, http.StatusCreated, tr)
}

func (h *OrderHandler) pathID(w http.ResponseWriter, r *http.Request, handlerName, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		h.respondWithBadRequest(w, r, handlerName, fmt.Errorf("некорректный %s: %q", param, chi.URLParam(r, param)))
		return 0, false
	}
	return id, true
}

// decode читает JSON-тело и проверяет его по тегам validate. optional разрешает пустое тело.
func (h *OrderHandler) decode(w http.ResponseWriter, r *http.Request, handlerName string, dst any, optional bool) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) && optional {
		err = nil
	}
	if err == nil {
		err = validator.ValidateStruct(dst)
	}
	if err != nil {
		h.respondWithBadRequest(w, r, handlerName, err)
		return false
	}
	return true
}

// respondWithJSON вспомогательная функция для отправки JSON-ответов.
func respondWithJSON(w http.ResponseWriter, handlerName string, code int, payload any) {
	metrics.HttpRequestsTotal.WithLabelValues(handlerName, strconv.Itoa(code)).Inc()
	response, err := json.Marshal(payload)
	if err != nil {
		code = http.StatusInternalServerError
		response = []byte(`{"error":"internal_error"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

func (h *OrderHandler) respondWithBadRequest(w http.ResponseWriter, r *http.Request, handlerName string, err error) {
	h.log.Info("некорректный запрос", zap.String("handler", handlerName), zap.Error(err))
	writeError(w, r, handlerName, http.StatusBadRequest, errorResponse{
		Error:   "invalid_request",
		Message: invalidRequest,
		Fields:  validator.Fields(err),
	})
}

func (h *OrderHandler) respondWithError(w http.ResponseWriter, r *http.Request, handlerName string, err error) {
	code, kind := statusFor(err)
	if code >= http.StatusInternalServerError {
		h.log.Error("ошибка обработки запроса", zap.String("handler", handlerName), zap.Error(err))
	} else {
		h.log.Info("запрос отклонен", zap.String("handler", handlerName), zap.Int("status", code), zap.Error(err))
	}
	writeError(w, r, handlerName, code, errorResponse{Error: kind, Message: orders.Message(err)})
}

func writeError(w http.ResponseWriter, r *http.Request, handlerName string, code int, resp errorResponse) {
	resp.Detail = resp.Message.In(r.Header.Get("Accept-Language"))
	respondWithJSON(w, handlerName, code, resp)
}
