package dynamo

import (
	"context"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/aada-api/internal/domain"
)

// PaymentPlanRepo provides typed DynamoDB operations for the payment_plans table.
type PaymentPlanRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewPaymentPlanRepo(client *dynamodb.Client, tableName string) *PaymentPlanRepo {
	return &PaymentPlanRepo{client: client, tableName: tableName}
}

func (r *PaymentPlanRepo) Create(ctx context.Context, p *domain.PaymentPlan) error {
	return putNew(ctx, r.client, r.tableName, "plan_id", p)
}

func (r *PaymentPlanRepo) Get(ctx context.Context, planID string) (*domain.PaymentPlan, error) {
	var p domain.PaymentPlan
	if err := getItem(ctx, r.client, r.tableName, strKey("plan_id", planID), "payment plan", &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentPlanRepo) ListByStudent(ctx context.Context, studentID string) ([]domain.PaymentPlan, error) {
	var plans []domain.PaymentPlan
	if err := queryIndex(ctx, r.client, r.tableName, "student_id-index", "student_id", studentID, &plans); err != nil {
		return nil, err
	}
	sortPlans(plans)
	return plans, nil
}

func (r *PaymentPlanRepo) List(ctx context.Context) ([]domain.PaymentPlan, error) {
	var plans []domain.PaymentPlan
	if err := scanAll(ctx, r.client, &dynamodb.ScanInput{TableName: aws.String(r.tableName)}, &plans); err != nil {
		return nil, err
	}
	sortPlans(plans)
	return plans, nil
}

func sortPlans(plans []domain.PaymentPlan) {
	sort.SliceStable(plans, func(i, j int) bool { return plans[i].DueDate.Before(plans[j].DueDate) })
}
