package dynamo

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamo is an in-memory stand-in for the DynamoDB API that understands
// exactly the expressions the repository emits.
type fakeDynamo struct {
	mu       sync.Mutex
	order    []string
	items    map[string]map[string]types.AttributeValue
	pageSize int

	putErr   error
	queryErr error
	indexErr error

	scanCalls  int
	queryCalls int
	puts       int
	deletes    int
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: make(map[string]map[string]types.AttributeValue), pageSize: 100}
}

var setClause = regexp.MustCompile(`#(\w+) = (if_not_exists\(#\w+, :\w+\)|:\w+)`)

func str(av types.AttributeValue) string {
	if s, ok := av.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func keyString(m map[string]types.AttributeValue) string {
	return str(m["item_id"]) + "|" + str(m["item_type"])
}

func copyItem(m map[string]types.AttributeValue) map[string]types.AttributeValue {
	out := make(map[string]types.AttributeValue, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (f *fakeDynamo) seed(item map[string]types.AttributeValue) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := keyString(item)
	if _, ok := f.items[k]; !ok {
		f.order = append(f.order, k)
	}
	f.items[k] = copyItem(item)
}

func (f *fakeDynamo) get(id, typ string) (map[string]types.AttributeValue, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id+"|"+typ]
	return item, ok
}

func (f *fakeDynamo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return nil, f.putErr
	}
	k := keyString(in.Item)
	_, exists := f.items[k]
	if aws.ToString(in.ConditionExpression) == "attribute_not_exists(item_id)" && exists {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("exists")}
	}
	if !exists {
		f.order = append(f.order, k)
	}
	f.items[k] = copyItem(in.Item)
	f.puts++
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queryCalls++

	if in.IndexName != nil && f.indexErr != nil {
		return nil, f.indexErr
	}
	if in.IndexName == nil && f.queryErr != nil {
		return nil, f.queryErr
	}

	attr := in.ExpressionAttributeNames["#pk"]
	var want string
	for _, v := range in.ExpressionAttributeValues {
		want = str(v)
	}

	var matched []map[string]types.AttributeValue
	for _, k := range f.order {
		item, ok := f.items[k]
		if !ok {
			continue
		}
		if str(item[attr]) == want {
			matched = append(matched, item)
		}
	}
	if in.IndexName != nil {
		// index entries require the sort key attribute
		filtered := matched[:0]
		for _, item := range matched {
			if _, ok := item["created_at"]; ok {
				filtered = append(filtered, item)
			}
		}
		matched = filtered
		sort.SliceStable(matched, func(i, j int) bool {
			less := str(matched[i]["created_at"]) < str(matched[j]["created_at"])
			if in.ScanIndexForward != nil && !*in.ScanIndexForward {
				return !less
			}
			return less
		})
	}

	limit := f.pageSize
	if in.Limit != nil && int(*in.Limit) < limit {
		limit = int(*in.Limit)
	}
	items, last := f.page(matched, in.ExclusiveStartKey, limit)
	return &dynamodb.QueryOutput{Items: items, Count: int32(len(items)), LastEvaluatedKey: last}, nil
}

func (f *fakeDynamo) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scanCalls++

	all := make([]map[string]types.AttributeValue, 0, len(f.order))
	for _, k := range f.order {
		if item, ok := f.items[k]; ok {
			all = append(all, item)
		}
	}
	items, last := f.page(all, in.ExclusiveStartKey, f.pageSize)
	return &dynamodb.ScanOutput{Items: items, Count: int32(len(items)), LastEvaluatedKey: last}, nil
}

func (f *fakeDynamo) page(all []map[string]types.AttributeValue, start map[string]types.AttributeValue, limit int) ([]map[string]types.AttributeValue, map[string]types.AttributeValue) {
	from := 0
	if len(start) > 0 {
		sk := keyString(start)
		for i, item := range all {
			if keyString(item) == sk {
				from = i + 1
				break
			}
		}
	}
	to := from + limit
	if to > len(all) {
		to = len(all)
	}
	out := make([]map[string]types.AttributeValue, 0, to-from)
	for _, item := range all[from:to] {
		out = append(out, copyItem(item))
	}
	var last map[string]types.AttributeValue
	if to < len(all) {
		last = map[string]types.AttributeValue{"item_id": all[to-1]["item_id"], "item_type": all[to-1]["item_type"]}
	}
	return out, last
}

func (f *fakeDynamo) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	k := keyString(in.Key)
	current, ok := f.items[k]
	if !ok {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("missing")}
	}
	expr := aws.ToString(in.UpdateExpression)
	if !strings.HasPrefix(expr, "SET ") {
		return nil, errors.New("fake: only SET expressions are supported")
	}

	next := copyItem(current)
	for _, m := range setClause.FindAllStringSubmatch(expr, -1) {
		name := in.ExpressionAttributeNames["#"+m[1]]
		rhs := m[2]
		if strings.HasPrefix(rhs, "if_not_exists") {
			if _, exists := next[name]; exists {
				continue
			}
			rhs = rhs[strings.Index(rhs, ":") : len(rhs)-1]
		}
		next[name] = in.ExpressionAttributeValues[rhs]
	}
	f.items[k] = next
	return &dynamodb.UpdateItemOutput{Attributes: copyItem(next)}, nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	k := keyString(in.Key)
	if _, ok := f.items[k]; !ok && in.ConditionExpression != nil {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("missing")}
	}
	delete(f.items, k)
	f.deletes++
	return &dynamodb.DeleteItemOutput{}, nil
}
