// Package square adapts the Square Go SDK to the billing gateway and payment
// checker used by the application layer.
package square

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	sq "github.com/square/square-go-sdk"
	sqclient "github.com/square/square-go-sdk/client"
	"github.com/square/square-go-sdk/option"

	"github.com/aada-api/internal/config"
	"github.com/aada-api/internal/domain"
)

const defaultTimeout = 10 * time.Second

// Client wraps the SDK client. Any SDK failure is returned wrapped in
// domain.ErrUpstream.
type Client struct {
	sdk        *sqclient.Client
	opts       []option.RequestOption
	baseURL    string
	timeout    time.Duration
	locationID string
}

func NewClient(cfg config.Square) *Client {
	base := sq.Environments.Sandbox
	if cfg.Environment == "production" {
		base = sq.Environments.Production
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	opts := []option.RequestOption{
		option.WithToken(cfg.AccessToken),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	if cfg.APIVersion != "" {
		opts = append(opts, option.WithHTTPHeader(http.Header{"Square-Version": []string{cfg.APIVersion}}))
	}
	c := &Client{opts: opts, timeout: timeout, locationID: cfg.LocationID}
	return c.WithBaseURL(base)
}

// WithBaseURL points the client at another host, e.g. a test server.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = strings.TrimRight(u, "/")
	opts := append([]option.RequestOption{}, c.opts...)
	c.sdk = sqclient.NewClient(append(opts, option.WithBaseURL(c.baseURL))...)
	return c
}

// CreateCustomer registers the student with Square and returns the customer id.
// The idempotency key is derived from the student id so a retried call after a
// lost response does not create a second customer.
func (c *Client) CreateCustomer(ctx context.Context, s *domain.Student) (string, error) {
	given, family := splitName(s.Name)
	resp, err := c.sdk.Customers.Create(ctx, &sq.CreateCustomerRequest{
		IdempotencyKey: sq.String("customer-" + s.StudentID),
		GivenName:      sq.String(given),
		FamilyName:     sq.String(family),
		EmailAddress:   sq.String(s.Email),
		ReferenceID:    sq.String(s.StudentID),
	})
	if err != nil {
		return "", upstream("create customer", err)
	}
	if resp.Customer == nil || resp.Customer.ID == nil {
		return "", fmt.Errorf("square create customer: empty customer: %w", domain.ErrUpstream)
	}
	return *resp.Customer.ID, nil
}

// CreateInvoice creates an order for the amount and a draft invoice against it,
// then publishes the invoice. It returns the Square invoice id.
func (c *Client) CreateInvoice(ctx context.Context, customerID string, inv *domain.Invoice) (string, error) {
	key := idempotencyKey(inv)

	order, err := c.sdk.Orders.Create(ctx, &sq.CreateOrderRequest{
		IdempotencyKey: sq.String(key + "-order"),
		Order: &sq.Order{
			LocationID: c.locationID,
			CustomerID: sq.String(customerID),
			LineItems: []*sq.OrderLineItem{{
				Name:     sq.String(inv.Description),
				Quantity: "1",
				BasePriceMoney: &sq.Money{
					Amount:   sq.Int64(inv.AmountCents),
					Currency: sq.CurrencyUsd.Ptr(),
				},
			}},
		},
	})
	if err != nil {
		return "", upstream("create order", err)
	}
	if order.Order == nil || order.Order.ID == nil {
		return "", fmt.Errorf("square create order: empty order: %w", domain.ErrUpstream)
	}

	created, err := c.sdk.Invoices.Create(ctx, &sq.CreateInvoiceRequest{
		IdempotencyKey: sq.String(key),
		Invoice: &sq.Invoice{
			LocationID:       sq.String(c.locationID),
			OrderID:          order.Order.ID,
			PrimaryRecipient: &sq.InvoiceRecipient{CustomerID: sq.String(customerID)},
			PaymentRequests: []*sq.InvoicePaymentRequest{{
				RequestType: sq.InvoiceRequestTypeBalance.Ptr(),
				DueDate:     sq.String(inv.DueDate.Format(time.DateOnly)),
			}},
			DeliveryMethod: sq.InvoiceDeliveryMethodEmail.Ptr(),
			Title:          sq.String(inv.Description),
			AcceptedPaymentMethods: &sq.InvoiceAcceptedPaymentMethods{
				Card:           sq.Bool(true),
				SquareGiftCard: sq.Bool(false),
				BankAccount:    sq.Bool(true),
				BuyNowPayLater: sq.Bool(false),
			},
		},
	})
	if err != nil {
		return "", upstream("create invoice", err)
	}
	if created.Invoice == nil || created.Invoice.ID == nil {
		return "", fmt.Errorf("square create invoice: empty invoice: %w", domain.ErrUpstream)
	}
	invoiceID := *created.Invoice.ID
	version := 0
	if created.Invoice.Version != nil {
		version = *created.Invoice.Version
	}

	if _, err := c.sdk.Invoices.Publish(ctx, &sq.PublishInvoiceRequest{
		InvoiceID:      invoiceID,
		Version:        version,
		IdempotencyKey: sq.String(key + "-publish"),
	}); err != nil {
		return "", upstream("publish invoice", err)
	}
	return invoiceID, nil
}

// IsPaid reports whether Square considers the invoice fully paid.
func (c *Client) IsPaid(ctx context.Context, billingInvoiceID string) (bool, error) {
	resp, err := c.sdk.Invoices.Get(ctx, &sq.GetInvoicesRequest{InvoiceID: billingInvoiceID})
	if err != nil {
		return false, upstream("get invoice", err)
	}
	if resp.Invoice == nil || resp.Invoice.Status == nil {
		return false, nil
	}
	return *resp.Invoice.Status == sq.InvoiceStatusPaid, nil
}

// idempotencyKey ties every Square write for an installment to its plan, so
// re-issuing after a failed local insert reuses the Square invoice.
func idempotencyKey(inv *domain.Invoice) string {
	if inv.PlanID != nil && *inv.PlanID != "" {
		return "plan-" + *inv.PlanID
	}
	return "invoice-" + inv.InvoiceID
}

func upstream(op string, err error) error {
	return fmt.Errorf("square %s: %v: %w", op, err, domain.ErrUpstream)
}

func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}
