package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"order_lifecycle/internal/config"
	"order_lifecycle/internal/model"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Состояния чека Payme.
const (
	ReceiptStateCreated   = 0
	ReceiptStatePaid      = 4
	ReceiptStateCancelled = 50
)

// GatewayError - ошибка, которую вернул платежный шлюз. Message показывается клиенту.
type GatewayError struct {
	Code    int
	Message string
}

func (e *GatewayError) Error() string {
	return e.Message
}

type rpcRequest struct {
	ID     int64  `json:"id"`
	Method string `json:"method"`
	Params any    `json:"params"`
}

type rpcError struct {
	Code    int             `json:"code"`
	Message json.RawMessage `json:"message"`
}

// text возвращает сообщение ошибки. Payme присылает либо строку, либо переводы {ru, uz, en}.
func (e *rpcError) text() string {
	var s string
	if err := json.Unmarshal(e.Message, &s); err == nil {
		return s
	}
	var loc map[string]string
	if err := json.Unmarshal(e.Message, &loc); err == nil {
		for _, k := range []string{"ru", "uz", "en"} {
			if loc[k] != "" {
				return loc[k]
			}
		}
	}
	return fmt.Sprintf("ошибка Payme %d", e.Code)
}

type rpcResponse struct {
	Result *struct {
		Receipt struct {
			ID    string `json:"_id"`
			State int    `json:"state"`
		} `json:"receipt"`
	} `json:"result"`
	Error *rpcError `json:"error"`
}

type receiptDiscount struct {
	Title string `json:"title"`
	Price int64  `json:"price"`
}

type receiptDetail struct {
	ReceiptType int              `json:"receipt_type"`
	Items       []ReceiptItem    `json:"items"`
	Discount    *receiptDiscount `json:"discount,omitempty"`
}

// PaymeClient - клиент JSON-RPC API чеков Payme.
type PaymeClient struct {
	url    string
	auth   string
	client *http.Client
	tracer trace.Tracer
	seq    atomic.Int64
}

func NewPaymeClient(cfg config.PaymeConfig, timeout time.Duration) *PaymeClient {
	return &PaymeClient{
		url:  cfg.URL,
		auth: cfg.MerchantID + ":" + cfg.Key,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		tracer: otel.Tracer("payme-client"),
	}
}

func (c *PaymeClient) call(ctx context.Context, id int64, method string, params any) (*rpcResponse, error) {
	ctx, span := c.tracer.Start(ctx, "Payme."+method)
	defer span.End()

	if id == 0 {
		id = c.seq.Add(1)
	}
	body, err := json.Marshal(rpcRequest{ID: id, Method: method, Params: params})
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации запроса %s: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Auth", c.auth)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("запрос %s к Payme не выполнен: %w", method, err)
	}
	defer resp.Body.Close()

	var out rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("некорректный ответ Payme на %s (HTTP %d): %w", method, resp.StatusCode, err)
	}
	if out.Error != nil {
		return nil, &GatewayError{Code: out.Error.Code, Message: out.Error.text()}
	}
	if out.Result == nil {
		return nil, fmt.Errorf("пустой ответ Payme на %s", method)
	}
	return &out, nil
}

// MakePayment создает чек на сумму заказа и оплачивает его сохраненной картой.
func (c *PaymeClient) MakePayment(ctx context.Context, o *model.Order, token string, items []ReceiptItem) (*ChargeResult, error) {
	detail := receiptDetail{Items: items}
	if o.DiscountSum > 0 {
		detail.Discount = &receiptDiscount{Title: "Скидка/Промокод", Price: tiyin(o.DiscountSum)}
	}

	created, err := c.call(ctx, o.ID, "receipts.create", map[string]any{
		"amount":  tiyin(o.TotalSum),
		"account": map[string]int64{"order_id": o.ID},
		"detail":  detail,
	})
	if err != nil {
		return nil, err
	}
	receiptID := created.Result.Receipt.ID

	paid, err := c.call(ctx, 0, "receipts.pay", map[string]string{"id": receiptID, "token": token})
	if err != nil {
		return &ChargeResult{ReceiptID: receiptID, State: created.Result.Receipt.State}, err
	}

	res := &ChargeResult{ReceiptID: receiptID, State: paid.Result.Receipt.State}
	if res.State != ReceiptStatePaid {
		return res, &GatewayError{Message: fmt.Sprintf("чек %s не оплачен, состояние %d", receiptID, res.State)}
	}
	res.Paid = true
	return res, nil
}

// CancelPayment отменяет чек.
func (c *PaymeClient) CancelPayment(ctx context.Context, receiptID string) error {
	_, err := c.call(ctx, 0, "receipts.cancel", map[string]string{"id": receiptID})
	return err
}
