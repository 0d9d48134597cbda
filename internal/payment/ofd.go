package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"order_lifecycle/internal/config"
	"order_lifecycle/internal/model"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Ташкент живет без перехода на летнее время.
var tashkent = time.FixedZone("Asia/Tashkent", 5*60*60)

type ofdItem struct {
	Name        string `json:"Name"`
	SPIC        string `json:"SPIC"`
	PackageCode string `json:"PackageCode"`
	GoodPrice   int64  `json:"GoodPrice"`
	Price       int64  `json:"Price"`
	VAT         int64  `json:"VAT"`
	VATPercent  int    `json:"VATPercent"`
	Amount      int64  `json:"Amount"`
	OwnerType   int    `json:"OwnerType"`
	Discount    int64  `json:"Discount"`
}

// SaleReceipt - чек продажи для ОФД.
type SaleReceipt struct {
	ReceiptSeq   int64     `json:"ReceiptSeq"`
	IsRefund     int       `json:"IsRefund"`
	Items        []ofdItem `json:"Items"`
	ReceivedCash int64     `json:"ReceivedCash"`
	ReceivedCard int64     `json:"ReceivedCard"`
	TotalVAT     int64     `json:"TotalVAT"`
	Time         string    `json:"Time"`
	ReceiptType  int       `json:"ReceiptType"`
}

type ofdResponse struct {
	Code       int    `json:"Code"`
	Message    string `json:"Message"`
	ReceiptSeq int64  `json:"ReceiptSeq"`
	TerminalID string `json:"TerminalID"`
	FiscalSign string `json:"FiscalSign"`
	QRCodeURL  string `json:"QRCodeURL"`
}

// vat выделяет НДС из суммы с НДС, округляя до сума.
func vat(sum int64, percent int) int64 {
	if percent <= 0 {
		return 0
	}
	return tiyin(sum * int64(percent) / int64(percent+100))
}

// OFDClient отправляет чеки в сервис фискализации. Повторная отправка чека того же платежа
// отсекается по Idempotency-Key.
type OFDClient struct {
	cfg    config.OFDConfig
	client *http.Client
	tracer trace.Tracer
}

func NewOFDClient(cfg config.OFDConfig, timeout time.Duration) *OFDClient {
	return &OFDClient{
		cfg: cfg,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		tracer: otel.Tracer("ofd-client"),
	}
}

// BuildSaleReceipt собирает чек продажи по платежу и заказу.
func (c *OFDClient) BuildSaleReceipt(p *model.Payment, o *model.Order) SaleReceipt {
	r := SaleReceipt{
		ReceiptSeq: p.ID,
		Time:       p.CreatedAt.In(tashkent).Format(time.DateTime),
	}
	if p.PaymentMethod == model.PaymentCash {
		r.ReceivedCash = tiyin(p.Amount)
	} else {
		r.ReceivedCard = tiyin(p.Amount)
	}

	add := func(it ofdItem) {
		r.Items = append(r.Items, it)
		r.TotalVAT += it.VAT
	}

	if g := o.Group(); g != nil {
		for _, it := range g.Items {
			if it.IsIncident || it.Count == 0 {
				continue
			}
			add(ofdItem{
				Name:        it.Product.Name,
				SPIC:        it.Product.SpicID,
				PackageCode: it.Product.PackageCode,
				GoodPrice:   tiyin(it.TotalSum / it.Count),
				Price:       tiyin(it.TotalSum),
				VAT:         vat(it.TotalSum, it.Product.VAT),
				VATPercent:  it.Product.VAT,
				Amount:      it.Count * 1000,
			})
		}
		if o.PackageQuantity > 0 {
			sum := o.PackageQuantity * o.PackageAmount
			add(ofdItem{
				Name:        "Пакет",
				SPIC:        g.Branch.PackageSpicID,
				PackageCode: g.Branch.PackageCode,
				GoodPrice:   tiyin(o.PackageAmount),
				Price:       tiyin(sum),
				VAT:         vat(sum, g.Branch.PackageVAT),
				VATPercent:  g.Branch.PackageVAT,
				Amount:      o.PackageQuantity * 1000,
			})
		}
	}

	if o.DeliveringSum > 0 {
		add(ofdItem{
			Name:        "Доставка еды",
			SPIC:        c.cfg.DeliverySPIC,
			PackageCode: c.cfg.DeliveryPackageCode,
			GoodPrice:   tiyin(o.DeliveringSum),
			Price:       tiyin(o.DeliveringSum),
			VAT:         vat(o.DeliveringSum, c.cfg.DeliveryVAT),
			VATPercent:  c.cfg.DeliveryVAT,
			Amount:      1000,
		})
	}
	return r
}

// CreateSaleReceipt отправляет чек продажи. Ответ с Code != 0 - ошибка ОФД.
func (c *OFDClient) CreateSaleReceipt(ctx context.Context, p *model.Payment, o *model.Order) error {
	ctx, span := c.tracer.Start(ctx, "OFD.CreateSaleReceipt")
	defer span.End()

	body, err := json.Marshal(c.BuildSaleReceipt(p, o))
	if err != nil {
		return fmt.Errorf("ошибка сериализации чека: %w", err)
	}

	url := strings.TrimRight(c.cfg.URL, "/") + "/receipts/sale"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", p.UUID)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("запрос в ОФД не выполнен: %w", err)
	}
	defer resp.Body.Close()

	var out ofdResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("некорректный ответ ОФД (HTTP %d): %w", resp.StatusCode, err)
	}
	if out.Code != 0 {
		return fmt.Errorf("ОФД отклонил чек платежа %s: код %d, %s", p.UUID, out.Code, out.Message)
	}
	return nil
}
