package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/ghuser/lostfound/services/item/domain/models"
)

// MigrationStep describes the rewrite of one legacy record.
type MigrationStep struct {
	ItemID     string
	FromType   string
	ToType     string
	Status     string
	ExtraNames []string
	KeyChanged bool
}

// MigrationStats summarises a migration run.
type MigrationStats struct {
	Scanned   int
	Canonical int
	Migrated  int
	Failed    int
}

// MigrateLegacy rewrites every record not yet in the canonical shape. The
// canonical record is written first; when the item_type changes, the legacy
// key is deleted afterwards, so an interrupted run leaves at worst a
// duplicate that the next run cleans up. With dryRun set nothing is written.
func (r *ItemRepository) MigrateLegacy(ctx context.Context, dryRun bool, report func(MigrationStep)) (MigrationStats, error) {
	var stats MigrationStats

	raws, err := r.scanRaw(ctx)
	if err != nil {
		return stats, fmt.Errorf("scan items: %w", err)
	}

	for _, raw := range raws {
		stats.Scanned++

		item, err := decodeItem(raw)
		if err != nil {
			stats.Failed++
			r.log.WarnContext(ctx, "cannot decode record for migration", "error", err)
			continue
		}
		if isCanonical(raw, item) {
			stats.Canonical++
			continue
		}

		fromType := ""
		if s, ok := raw[models.AttrItemType].(*types.AttributeValueMemberS); ok {
			fromType = s.Value
		}
		step := MigrationStep{
			ItemID:     item.ID,
			FromType:   fromType,
			ToType:     string(item.Type),
			Status:     string(item.Status),
			ExtraNames: sortedExtraNames(item),
			KeyChanged: fromType != string(item.Type),
		}
		if report != nil {
			report(step)
		}
		if dryRun {
			stats.Migrated++
			continue
		}

		if err := r.rewrite(ctx, raw, item, step.KeyChanged); err != nil {
			stats.Failed++
			r.log.ErrorContext(ctx, "migrate record failed", "item_id", item.ID, "error", err)
			continue
		}
		stats.Migrated++
	}

	return stats, nil
}

func (r *ItemRepository) rewrite(ctx context.Context, raw map[string]types.AttributeValue, item *models.Item, keyChanged bool) error {
	av, err := marshalItem(item)
	if err != nil {
		return err
	}

	put := &dynamodb.PutItemInput{TableName: aws.String(r.table), Item: av}
	if keyChanged {
		put.ConditionExpression = aws.String("attribute_not_exists(item_id)")
	}
	if _, err := r.api.PutItem(ctx, put); err != nil && !(keyChanged && isConditionFailed(err)) {
		return fmt.Errorf("put canonical record: %w", err)
	}

	if !keyChanged {
		return nil
	}
	if _, err := r.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.table),
		Key:       keyOf(raw),
	}); err != nil {
		return fmt.Errorf("delete legacy record: %w", err)
	}
	return nil
}
