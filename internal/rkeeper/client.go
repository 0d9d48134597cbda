// Package rkeeper - интеграция с внешней кухонной системой r_keeper: передача заказов
// после назначения курьера и сверка их статусов.
package rkeeper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"order_lifecycle/internal/model"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	tokenPath = "/security/oauth/token"
	// courierArrival - через сколько курьер ожидается в заведении.
	courierArrival = 20 * time.Minute
)

var ErrNotIntegrated = errors.New("заведение не подключено к кухонной системе")

// Client ходит в API r_keeper с токеном client credentials заведения.
// Токены кешируются отдельно для каждой пары адрес + клиент.
type Client struct {
	endpoint string
	base     *http.Client
	tracer   trace.Tracer
	now      func() time.Time

	mu      sync.Mutex
	clients map[string]*http.Client
}

func NewClient(defaultEndpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint: strings.TrimRight(defaultEndpoint, "/"),
		base: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		tracer:  otel.Tracer("rkeeper-client"),
		now:     time.Now,
		clients: make(map[string]*http.Client),
	}
}

// clientFor возвращает HTTP-клиент с авторизацией заведения и адрес его API.
func (c *Client) clientFor(inst *model.Institution) (*http.Client, string, error) {
	if !inst.KitchenIntegrated() {
		return nil, "", fmt.Errorf("%w: %d", ErrNotIntegrated, inst.ID)
	}
	endpoint := strings.TrimRight(*inst.KitchenEndpoint, "/")
	if endpoint == "" {
		endpoint = c.endpoint
	}
	key := endpoint + "|" + *inst.KitchenClientID

	c.mu.Lock()
	defer c.mu.Unlock()
	if hc, ok := c.clients[key]; ok {
		return hc, endpoint, nil
	}

	cfg := clientcredentials.Config{
		ClientID:     *inst.KitchenClientID,
		ClientSecret: *inst.KitchenClientSecret,
		TokenURL:     endpoint + tokenPath,
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	// Токен запрашивается тем же базовым клиентом, что и API.
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, c.base)
	hc := cfg.Client(tokenCtx)
	hc.Timeout = c.base.Timeout
	c.clients[key] = hc
	return hc, endpoint, nil
}

type modification struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
	Price    int64  `json:"price"`
}

type orderItem struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Price         int64          `json:"price"`
	Quantity      int64          `json:"quantity"`
	Modifications []modification `json:"modifications"`
	Promos        []any          `json:"promos"`
}

type deliveryInfo struct {
	ClientName            string `json:"clientName"`
	PhoneNumber           string `json:"phoneNumber"`
	CourierArrivementDate string `json:"courierArrivementDate"`
}

type paymentInfo struct {
	ItemsCost   int64  `json:"itemsCost"`
	PaymentType string `json:"paymentType"`
}

type orderRequest struct {
	Discriminator string       `json:"discriminator"`
	Comment       string       `json:"comment"`
	EatsID        string       `json:"eatsId"`
	RestaurantID  string       `json:"restaurantId"`
	DeliveryInfo  deliveryInfo `json:"deliveryInfo"`
	PaymentInfo   paymentInfo  `json:"paymentInfo"`
	Items         []orderItem  `json:"items"`
	Promos        []any        `json:"promos"`
	Persons       int          `json:"persons"`
}

// buildOrder собирает заказ для кухни. Клиентом кухни выступает курьер, который заберет заказ.
func buildOrder(o *model.Order, g *model.ItemGroup, now time.Time) orderRequest {
	req := orderRequest{
		Discriminator: "yesexpress",
		Comment:       o.Note,
		EatsID:        fmt.Sprint(o.ID),
		RestaurantID:  g.Branch.PlacesID,
		PaymentInfo:   paymentInfo{ItemsCost: o.ProductsSum, PaymentType: "CASH"},
		Items:         make([]orderItem, 0, len(g.Items)),
		Promos:        []any{},
	}
	if o.PaymentMethod == model.PaymentPayme {
		req.PaymentInfo.PaymentType = "CARD"
	}
	if o.Courier != nil {
		req.DeliveryInfo = deliveryInfo{ClientName: o.Courier.FirstName, PhoneNumber: o.Courier.Phone}
	}
	req.DeliveryInfo.CourierArrivementDate = now.Add(courierArrival).Format(time.RFC3339)

	for _, it := range g.Items {
		item := orderItem{
			ID:            it.Product.UUID,
			Name:          it.Product.Name,
			Price:         it.Product.Price,
			Quantity:      it.Count,
			Modifications: make([]modification, 0, len(it.Options)),
			Promos:        []any{},
		}
		for _, opt := range it.Options {
			item.Modifications = append(item.Modifications, modification{
				ID: opt.UUID, Name: opt.Title, Quantity: it.Count, Price: opt.AddingPrice,
			})
		}
		req.Items = append(req.Items, item)
	}
	return req
}

// CreateOrder передает заказ в кухонную систему заведения и возвращает id заказа в ней.
func (c *Client) CreateOrder(ctx context.Context, o *model.Order) (string, error) {
	ctx, span := c.tracer.Start(ctx, "RKeeper.CreateOrder")
	defer span.End()

	g := o.Group()
	if g == nil {
		return "", fmt.Errorf("заказ %d без позиций", o.ID)
	}
	hc, endpoint, err := c.clientFor(&g.Institution)
	if err != nil {
		return "", err
	}

	var out struct {
		OrderID string `json:"orderId"`
	}
	if err := c.do(ctx, hc, http.MethodPost, endpoint+"/order", buildOrder(o, g, c.now()), &out); err != nil {
		return "", fmt.Errorf("не удалось передать заказ %d на кухню: %w", o.ID, err)
	}
	if out.OrderID == "" {
		return "", fmt.Errorf("кухня не вернула id заказа %d", o.ID)
	}
	return out.OrderID, nil
}

// GetOrderStatus возвращает статус заказа в кухонной системе.
func (c *Client) GetOrderStatus(ctx context.Context, inst *model.Institution, externalID string) (model.RestaurantStatus, error) {
	ctx, span := c.tracer.Start(ctx, "RKeeper.GetOrderStatus")
	defer span.End()

	hc, endpoint, err := c.clientFor(inst)
	if err != nil {
		return "", err
	}
	var out struct {
		Status model.RestaurantStatus `json:"status"`
	}
	if err := c.do(ctx, hc, http.MethodGet, endpoint+"/order/"+externalID+"/status", nil, &out); err != nil {
		return "", fmt.Errorf("статус заказа %s на кухне: %w", externalID, err)
	}
	return out.Status, nil
}

func (c *Client) do(ctx context.Context, hc *http.Client, method, url string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("ошибка сериализации запроса: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("некорректный ответ: %w", err)
	}
	return nil
}
