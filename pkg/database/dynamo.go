// Package database owns the DynamoDB client and the physical layout of the
// single item table.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/ghuser/lostfound/pkg/config"
	"github.com/ghuser/lostfound/pkg/logger"
)

// Physical schema of the item table.
const (
	AttrPartitionKey = "item_id"
	AttrSortKey      = "item_type"

	StatusIndex         = "gsi1"
	StatusIndexKey      = "gsi1_pk"
	CategoryIndex       = "gsi2"
	CategoryIndexKey    = "gsi2_pk"
	IndexSortKey        = "created_at"
	tableCreateDeadline = 2 * time.Minute
)

// Database wraps the DynamoDB client together with the item table name.
type Database struct {
	client *dynamodb.Client
	table  string
	log    logger.Logger
}

// New builds a DynamoDB client from the default AWS credential chain.
// DYNAMO_ENDPOINT overrides the service endpoint (DynamoDB Local, LocalStack).
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*Database, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.DynamoEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoEndpoint)
		}
	})

	db := &Database{client: client, table: cfg.DynamoTable, log: log}

	if cfg.DynamoAutoCreate {
		if err := db.EnsureTable(ctx); err != nil {
			return nil, err
		}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.Ping(pingCtx); err != nil {
		return nil, err
	}

	return db, nil
}

// Client returns the underlying DynamoDB client.
func (d *Database) Client() *dynamodb.Client {
	return d.client
}

// TableName returns the item table name.
func (d *Database) TableName() string {
	return d.table
}

// Ping verifies the item table is reachable and active.
func (d *Database) Ping(ctx context.Context) error {
	out, err := d.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(d.table)})
	if err != nil {
		return fmt.Errorf("dynamo ping: %w", err)
	}
	if out.Table != nil && out.Table.TableStatus != types.TableStatusActive && out.Table.TableStatus != types.TableStatusUpdating {
		return fmt.Errorf("dynamo ping: table %s is %s", d.table, out.Table.TableStatus)
	}
	return nil
}

// EnsureTable creates the item table with both secondary indexes if it does
// not exist yet, and waits for it to become active.
func (d *Database) EnsureTable(ctx context.Context) error {
	_, err := d.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(d.table)})
	if err == nil {
		return nil
	}
	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return fmt.Errorf("describe table: %w", err)
	}

	if _, err := d.client.CreateTable(ctx, TableSchema(d.table)); err != nil {
		var inUse *types.ResourceInUseException
		if !errors.As(err, &inUse) {
			return fmt.Errorf("create table: %w", err)
		}
	}
	d.log.Info("item table created", "table", d.table)

	waiter := dynamodb.NewTableExistsWaiter(d.client)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(d.table)}, tableCreateDeadline); err != nil {
		return fmt.Errorf("wait for table: %w", err)
	}
	return nil
}

// TableSchema describes the item table: (item_id HASH, item_type RANGE) with
// gsi1 on the status projection and gsi2 on the category projection, both
// ranged by created_at.
func TableSchema(name string) *dynamodb.CreateTableInput {
	return &dynamodb.CreateTableInput{
		TableName:   aws.String(name),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(AttrPartitionKey), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String(AttrSortKey), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String(StatusIndexKey), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String(CategoryIndexKey), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String(IndexSortKey), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(AttrPartitionKey), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String(AttrSortKey), KeyType: types.KeyTypeRange},
		},
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			indexSchema(StatusIndex, StatusIndexKey),
			indexSchema(CategoryIndex, CategoryIndexKey),
		},
	}
}

func indexSchema(name, hashKey string) types.GlobalSecondaryIndex {
	return types.GlobalSecondaryIndex{
		IndexName: aws.String(name),
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(hashKey), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String(IndexSortKey), KeyType: types.KeyTypeRange},
		},
		Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
	}
}
