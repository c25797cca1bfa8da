// Package dynamo implements the item repository over a single DynamoDB table
// keyed by (item_id, item_type) with status and category secondary indexes.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/ghuser/lostfound/pkg/database"
	"github.com/ghuser/lostfound/pkg/logger"
	itemdomain "github.com/ghuser/lostfound/services/item/domain"
	"github.com/ghuser/lostfound/services/item/domain/models"
	"github.com/ghuser/lostfound/services/item/domain/services"
)

// API is the subset of the DynamoDB client used by the repository.
type API interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// ItemRepository implements repositories.ItemRepository against DynamoDB.
type ItemRepository struct {
	api   API
	table string
	log   logger.Logger
}

// NewItemRepository returns an ItemRepository backed by the given database.
func NewItemRepository(db *database.Database, log logger.Logger) *ItemRepository {
	return New(db.Client(), db.TableName(), log)
}

// New returns an ItemRepository over any implementation of API.
func New(api API, table string, log logger.Logger) *ItemRepository {
	return &ItemRepository{api: api, table: table, log: log}
}

// Create validates the draft, builds the item and writes it under a
// not-exists condition. Returns ErrItemAlreadyExists if the key is taken.
func (r *ItemRepository) Create(ctx context.Context, draft models.Draft) (*models.Item, error) {
	if err := services.ValidateDraft(draft); err != nil {
		return nil, fmt.Errorf("%w: %w", itemdomain.ErrValidation, err)
	}
	item, err := models.NewItem(draft)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", itemdomain.ErrValidation, err)
	}

	av, err := marshalItem(item)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", itemdomain.ErrRepository, err)
	}

	_, err = r.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(item_id)"),
	})
	if err != nil {
		if isConditionFailed(err) {
			return nil, itemdomain.ErrItemAlreadyExists
		}
		return nil, fmt.Errorf("%w: put item: %w", itemdomain.ErrRepository, err)
	}
	return item, nil
}

// FindByID recovers the item type with a keyed query on item_id alone.
// Returns ErrItemNotFound if no record matches.
func (r *ItemRepository) FindByID(ctx context.Context, id string) (*models.Item, error) {
	raw, err := r.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	item, err := decodeItem(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", itemdomain.ErrRepository, err)
	}
	return item, nil
}

// Update applies a partial field merge in a single UpdateItem call. status and
// category are always written together with their index keys so the derived
// projections can never lag behind their sources.
func (r *ItemRepository) Update(ctx context.Context, id string, updates models.FieldUpdates) (*models.Item, error) {
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: %w", itemdomain.ErrValidation, models.ErrEmptyUpdate)
	}

	raw, err := r.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	current, err := decodeItem(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", itemdomain.ErrRepository, err)
	}

	fields, err := updates.Normalize(current.Type)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", itemdomain.ErrValidation, err)
	}
	if _, ok := fields[models.AttrStatus]; !ok {
		fields[models.AttrStatus] = string(current.Status)
	}
	if _, ok := fields[models.AttrCategory]; !ok {
		fields[models.AttrCategory] = current.Category
	}

	in := r.buildUpdate(raw, fields)
	out, err := r.api.UpdateItem(ctx, in)
	if err != nil {
		if isConditionFailed(err) {
			return nil, itemdomain.ErrItemNotFound
		}
		return nil, fmt.Errorf("%w: update item: %w", itemdomain.ErrRepository, err)
	}

	item, err := decodeItem(out.Attributes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", itemdomain.ErrRepository, err)
	}
	return item, nil
}

// buildUpdate renders one SET clause per field plus updated_at and both index
// keys. created_at is backfilled for legacy records that lack it.
func (r *ItemRepository) buildUpdate(raw map[string]types.AttributeValue, fields models.FieldUpdates) *dynamodb.UpdateItemInput {
	names := map[string]string{
		"#updated_at": models.AttrUpdatedAt,
		"#created_at": models.AttrCreatedAt,
		"#gsi1_pk":    models.AttrStatusIndexKey,
		"#gsi2_pk":    models.AttrCategoryIndexKey,
	}
	now := models.FormatTimestamp(models.Now())
	values := map[string]types.AttributeValue{
		":updated_at": &types.AttributeValueMemberS{Value: now},
		":created_at": &types.AttributeValueMemberS{Value: now},
		":gsi1_pk":    &types.AttributeValueMemberS{Value: models.Status(fields[models.AttrStatus]).IndexKey()},
		":gsi2_pk":    &types.AttributeValueMemberS{Value: models.CategoryIndexKey(fields[models.AttrCategory])},
	}

	sets := make([]string, 0, len(fields)+4)
	for i, name := range fields.Names() {
		ph := fmt.Sprintf("f%d", i)
		names["#"+ph] = name
		values[":"+ph] = &types.AttributeValueMemberS{Value: fields[name]}
		sets = append(sets, fmt.Sprintf("#%s = :%s", ph, ph))
	}
	sets = append(sets,
		"#updated_at = :updated_at",
		"#created_at = if_not_exists(#created_at, :created_at)",
		"#gsi1_pk = :gsi1_pk",
		"#gsi2_pk = :gsi2_pk",
	)

	return &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.table),
		Key:                       keyOf(raw),
		UpdateExpression:          aws.String("SET " + strings.Join(sets, ", ")),
		ConditionExpression:       aws.String("attribute_exists(item_id)"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
	}
}

// Delete resolves the full key and removes the record.
func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	raw, err := r.lookup(ctx, id)
	if err != nil {
		return err
	}

	_, err = r.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.table),
		Key:                 keyOf(raw),
		ConditionExpression: aws.String("attribute_exists(item_id)"),
	})
	if err != nil {
		if isConditionFailed(err) {
			return itemdomain.ErrItemNotFound
		}
		return fmt.Errorf("%w: delete item: %w", itemdomain.ErrRepository, err)
	}
	return nil
}

// ScanAll reads the whole table, following LastEvaluatedKey to exhaustion.
// Records that cannot be decoded are logged and skipped.
func (r *ItemRepository) ScanAll(ctx context.Context) ([]*models.Item, error) {
	raws, err := r.scanRaw(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: scan items: %w", itemdomain.ErrRepository, err)
	}
	return r.decodeAll(ctx, raws), nil
}

// QueryByStatus reads the status index under the canonical key and each
// legacy label's key, following LastEvaluatedKey to exhaustion, and returns
// the items newest first. Failures are wrapped in ErrIndexUnavailable.
func (r *ItemRepository) QueryByStatus(ctx context.Context, status models.Status) ([]*models.Item, error) {
	var raws []map[string]types.AttributeValue
	for _, key := range status.IndexKeys() {
		page, err := r.queryStatusKey(ctx, key)
		if err != nil {
			return nil, err
		}
		raws = append(raws, page...)
	}
	items := r.decodeAll(ctx, raws)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

// queryStatusKey drains every page of the status index under key.
func (r *ItemRepository) queryStatusKey(ctx context.Context, key string) ([]map[string]types.AttributeValue, error) {
	var raws []map[string]types.AttributeValue
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.api.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.table),
			IndexName:              aws.String(database.StatusIndex),
			KeyConditionExpression: aws.String("#pk = :pk"),
			ExpressionAttributeNames: map[string]string{
				"#pk": models.AttrStatusIndexKey,
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: key},
			},
			ScanIndexForward:  aws.Bool(false),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: query %s %s: %w", itemdomain.ErrIndexUnavailable, database.StatusIndex, key, err)
		}
		raws = append(raws, out.Items...)
		if len(out.LastEvaluatedKey) == 0 {
			return raws, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// lookup queries the base table on item_id alone to recover the stored
// item_type, which may still be a legacy discriminator.
func (r *ItemRepository) lookup(ctx context.Context, id string) (map[string]types.AttributeValue, error) {
	if strings.TrimSpace(id) == "" {
		return nil, itemdomain.ErrItemNotFound
	}

	out, err := r.api.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.table),
		KeyConditionExpression: aws.String("#pk = :id"),
		ExpressionAttributeNames: map[string]string{
			"#pk": models.AttrItemID,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":id": &types.AttributeValueMemberS{Value: id},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: query item: %w", itemdomain.ErrRepository, err)
	}
	if len(out.Items) == 0 {
		return nil, itemdomain.ErrItemNotFound
	}
	return out.Items[0], nil
}

func (r *ItemRepository) scanRaw(ctx context.Context) ([]map[string]types.AttributeValue, error) {
	var raws []map[string]types.AttributeValue
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.api.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(r.table),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		raws = append(raws, out.Items...)
		if len(out.LastEvaluatedKey) == 0 {
			return raws, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

func (r *ItemRepository) decodeAll(ctx context.Context, raws []map[string]types.AttributeValue) []*models.Item {
	items := make([]*models.Item, 0, len(raws))
	for _, raw := range raws {
		item, err := decodeItem(raw)
		if err != nil {
			r.log.WarnContext(ctx, "skipping undecodable item record", "error", err)
			continue
		}
		items = append(items, item)
	}
	return items
}

// keyOf extracts the physical key, preserving the stored item_type verbatim.
func keyOf(raw map[string]types.AttributeValue) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		models.AttrItemID:   raw[models.AttrItemID],
		models.AttrItemType: raw[models.AttrItemType],
	}
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}
