package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"
)

const defaultTableWaitTimeout = 2 * time.Minute

// CreateTablesIfNotExist creates the transitions table in local mode.
func CreateTablesIfNotExist(ctx context.Context, client *dynamodb.Client, cfg DynamoConfig, logger zerolog.Logger) error {
	return createTableIfNotExists(ctx, client, logger, &dynamodb.CreateTableInput{
		TableName: aws.String(cfg.TransitionsTable),
		AttributeDefinitions: []dbtypes.AttributeDefinition{
			{
				AttributeName: aws.String("DateKey"),
				AttributeType: dbtypes.ScalarAttributeTypeS,
			},
			{
				AttributeName: aws.String("TransitionID"),
				AttributeType: dbtypes.ScalarAttributeTypeS,
			},
		},
		KeySchema: []dbtypes.KeySchemaElement{
			{
				AttributeName: aws.String("DateKey"),
				KeyType:       dbtypes.KeyTypeHash,
			},
			{
				AttributeName: aws.String("TransitionID"),
				KeyType:       dbtypes.KeyTypeRange,
			},
		},
		BillingMode: dbtypes.BillingModePayPerRequest,
	})
}

func createTableIfNotExists(ctx context.Context, client *dynamodb.Client, logger zerolog.Logger, input *dynamodb.CreateTableInput) error {
	_, err := client.CreateTable(ctx, input)
	if err != nil {
		var inUse *dbtypes.ResourceInUseException
		if errors.As(err, &inUse) {
			logger.Debug().Str("table", *input.TableName).Msg("table already exists")
			return nil
		}
		return fmt.Errorf("failed to create table %s: %w", *input.TableName, err)
	}

	waiter := dynamodb.NewTableExistsWaiter(client)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{
		TableName: input.TableName,
	}, defaultTableWaitTimeout); err != nil {
		return fmt.Errorf("failed waiting for table %s: %w", *input.TableName, err)
	}

	logger.Info().Str("table", *input.TableName).Msg("table created")
	return nil
}
