package dynamo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/aada-api/internal/domain"
)

// InvoiceRepo provides typed DynamoDB operations for the invoices table.
// Status and notice flags are only ever written forward through conditional updates.
type InvoiceRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewInvoiceRepo(client *dynamodb.Client, tableName string) *InvoiceRepo {
	return &InvoiceRepo{client: client, tableName: tableName}
}

func (r *InvoiceRepo) Create(ctx context.Context, inv *domain.Invoice) error {
	return putNew(ctx, r.client, r.tableName, "invoice_id", inv)
}

func (r *InvoiceRepo) Get(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	var inv domain.Invoice
	if err := getItem(ctx, r.client, r.tableName, strKey("invoice_id", invoiceID), "invoice", &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *InvoiceRepo) GetByPlan(ctx context.Context, planID string) (*domain.Invoice, error) {
	var invoices []domain.Invoice
	if err := queryIndex(ctx, r.client, r.tableName, "plan_id-index", "plan_id", planID, &invoices); err != nil {
		return nil, err
	}
	if len(invoices) == 0 {
		return nil, fmt.Errorf("invoice for plan not found: %w", domain.ErrNotFound)
	}
	return &invoices[0], nil
}

func (r *InvoiceRepo) ListByStudent(ctx context.Context, studentID string) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	if err := queryIndex(ctx, r.client, r.tableName, "student_id-index", "student_id", studentID, &invoices); err != nil {
		return nil, err
	}
	sort.SliceStable(invoices, func(i, j int) bool { return invoices[i].DueDate.Before(invoices[j].DueDate) })
	return invoices, nil
}

func (r *InvoiceRepo) ListWithBillingID(ctx context.Context) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	err := scanAll(ctx, r.client, &dynamodb.ScanInput{
		TableName:                aws.String(r.tableName),
		FilterExpression:         aws.String("attribute_exists(#b)"),
		ExpressionAttributeNames: map[string]string{"#b": "billing_invoice_id"},
	}, &invoices)
	return invoices, err
}

// MarkPaid performs PENDING -> PAID. It returns false without error when the
// invoice was already PAID or does not exist.
func (r *InvoiceRepo) MarkPaid(ctx context.Context, invoiceID string) (bool, error) {
	now, err := attributevalue.Marshal(time.Now().UTC())
	if err != nil {
		return false, err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("invoice_id", invoiceID),
		UpdateExpression:    aws.String("SET #s = :paid, #u = :now"),
		ConditionExpression: aws.String("#s = :pending"),
		ExpressionAttributeNames: map[string]string{
			"#s": fieldStatus,
			"#u": fieldUpdatedAt,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":paid":    &types.AttributeValueMemberS{Value: string(domain.InvoicePaid)},
			":pending": &types.AttributeValueMemberS{Value: string(domain.InvoicePending)},
			":now":     now,
		},
	})
	if isConditionFailed(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *InvoiceRepo) MarkReminderSent(ctx context.Context, invoiceID string) error {
	return updateExisting(ctx, r.client, r.tableName, strKey("invoice_id", invoiceID), "invoice_id",
		map[string]interface{}{fieldReminderSent: true})
}

func (r *InvoiceRepo) MarkLateNoticeSent(ctx context.Context, invoiceID string) error {
	return updateExisting(ctx, r.client, r.tableName, strKey("invoice_id", invoiceID), "invoice_id",
		map[string]interface{}{fieldLateNoticeSent: true})
}

func (r *InvoiceRepo) MarkReceiptSent(ctx context.Context, invoiceID string) error {
	return updateExisting(ctx, r.client, r.tableName, strKey("invoice_id", invoiceID), "invoice_id",
		map[string]interface{}{fieldReceiptSent: true})
}
