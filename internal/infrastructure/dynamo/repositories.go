package dynamo

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/aada-api/internal/config"
	"github.com/aada-api/internal/domain"
)

// NewRepositories wires every DynamoDB-backed store.
func NewRepositories(client *dynamodb.Client, tables config.DynamoTables) domain.Repositories {
	return domain.Repositories{
		Users:         NewUserRepo(client, tables.Users),
		Sessions:      NewSessionRepo(client, tables.Sessions),
		Verifications: NewVerificationRepo(client, tables.UserVerifications),
		Students:      NewStudentRepo(client, tables.Students),
		PaymentPlans:  NewPaymentPlanRepo(client, tables.PaymentPlans),
		Invoices:      NewInvoiceRepo(client, tables.Invoices),
		Externships:   NewExternshipRepo(client, tables.Externships),
		Documents:     NewDocumentRepo(client, tables.Documents),
		Notifications: NewNotificationRepo(client, tables.Notifications),
	}
}
