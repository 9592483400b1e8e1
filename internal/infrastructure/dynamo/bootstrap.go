package dynamo

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/aada-api/internal/config"
)

// Bootstrap creates all DynamoDB tables and GSIs if they don't already exist.
// Tables that already exist are skipped.
func Bootstrap(ctx context.Context, client *dynamodb.Client, tables config.DynamoTables) {
	createTable(ctx, client, table(tables.Users, "user_id", "",
		attrs("user_id", "email"),
		gsi("email-index", "email", ""),
	))

	createTable(ctx, client, table(tables.Sessions, "session_id", "",
		attrs("session_id", "refresh_token"),
		gsi("refresh_token-index", "refresh_token", ""),
	))

	createTable(ctx, client, table(tables.UserVerifications, "user_id", "type",
		attrs("user_id", "type"),
	))
	enableTTL(ctx, client, tables.UserVerifications, "expires_at")

	createTable(ctx, client, table(tables.Students, "student_id", "",
		attrs("student_id", "email"),
		gsi("email-index", "email", ""),
	))

	createTable(ctx, client, table(tables.PaymentPlans, "plan_id", "",
		attrs("plan_id", "student_id"),
		gsi("student_id-index", "student_id", ""),
	))

	createTable(ctx, client, table(tables.Invoices, "invoice_id", "",
		attrs("invoice_id", "student_id", "plan_id"),
		gsi("student_id-index", "student_id", ""),
		gsi("plan_id-index", "plan_id", ""),
	))

	createTable(ctx, client, table(tables.Externships, "student_id", "",
		attrs("student_id"),
	))

	createTable(ctx, client, table(tables.Documents, "document_id", "",
		attrs("document_id", "owner_id", "verification_status"),
		gsi("owner_id-index", "owner_id", ""),
		gsi("verification_status-index", "verification_status", ""),
	))

	createTable(ctx, client, table(tables.Notifications, "notification_id", "",
		attrs("notification_id", "student_id", "created_at"),
		gsi("student_id-created_at-index", "student_id", "created_at"),
	))
}

// table builds a pay-per-request CreateTableInput. All key attributes are strings.
func table(name, hashKey, rangeKey string, defs []types.AttributeDefinition, indexes ...types.GlobalSecondaryIndex) *dynamodb.CreateTableInput {
	ks := []types.KeySchemaElement{
		{AttributeName: aws.String(hashKey), KeyType: types.KeyTypeHash},
	}
	if rangeKey != "" {
		ks = append(ks, types.KeySchemaElement{AttributeName: aws.String(rangeKey), KeyType: types.KeyTypeRange})
	}
	in := &dynamodb.CreateTableInput{
		TableName:            aws.String(name),
		BillingMode:          types.BillingModePayPerRequest,
		AttributeDefinitions: defs,
		KeySchema:            ks,
	}
	if len(indexes) > 0 {
		in.GlobalSecondaryIndexes = indexes
	}
	return in
}

func attrs(names ...string) []types.AttributeDefinition {
	defs := make([]types.AttributeDefinition, 0, len(names))
	for _, n := range names {
		defs = append(defs, types.AttributeDefinition{
			AttributeName: aws.String(n),
			AttributeType: types.ScalarAttributeTypeS,
		})
	}
	return defs
}

// gsi builds a GSI descriptor. If sortKey is empty, only a hash key is added.
func gsi(indexName, hashKey, sortKey string) types.GlobalSecondaryIndex {
	ks := []types.KeySchemaElement{
		{AttributeName: aws.String(hashKey), KeyType: types.KeyTypeHash},
	}
	if sortKey != "" {
		ks = append(ks, types.KeySchemaElement{
			AttributeName: aws.String(sortKey), KeyType: types.KeyTypeRange,
		})
	}
	return types.GlobalSecondaryIndex{
		IndexName:  aws.String(indexName),
		KeySchema:  ks,
		Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
	}
}

func createTable(ctx context.Context, client *dynamodb.Client, input *dynamodb.CreateTableInput) {
	_, err := client.CreateTable(ctx, input)
	if err != nil {
		var riue *types.ResourceInUseException
		if !errors.As(err, &riue) {
			slog.Warn("could not create table", "table", *input.TableName, "err", err)
		}
	} else {
		slog.Info("created table", "table", *input.TableName)
	}
}

func enableTTL(ctx context.Context, client *dynamodb.Client, tableName, ttlAttr string) {
	_, err := client.UpdateTimeToLive(ctx, &dynamodb.UpdateTimeToLiveInput{
		TableName: aws.String(tableName),
		TimeToLiveSpecification: &types.TimeToLiveSpecification{
			Enabled:       aws.Bool(true),
			AttributeName: aws.String(ttlAttr),
		},
	})
	if err != nil {
		slog.Warn("could not enable TTL", "table", tableName, "err", err)
	}
}
