package dynamo

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/ghuser/lostfound/services/item/domain/models"
)

// itemRecord is the canonical physical shape of an item.
type itemRecord struct {
	ItemID             string `dynamodbav:"item_id"`
	ItemType           string `dynamodbav:"item_type"`
	CaseID             string `dynamodbav:"case_id"`
	Category           string `dynamodbav:"category"`
	Brand              string `dynamodbav:"brand,omitempty"`
	Details            string `dynamodbav:"details,omitempty"`
	Location           string `dynamodbav:"location"`
	Date               string `dynamodbav:"date,omitempty"`
	Time               string `dynamodbav:"time,omitempty"`
	ReporterName       string `dynamodbav:"reporter_name"`
	ReporterContact    string `dynamodbav:"reporter_contact"`
	ReporterStudentID  string `dynamodbav:"reporter_student_id,omitempty"`
	ReporterLiffUserID string `dynamodbav:"reporter_liff_user_id,omitempty"`
	ImageURL           string `dynamodbav:"image_url,omitempty"`
	Status             string `dynamodbav:"status"`
	CreatedAt          string `dynamodbav:"created_at"`
	UpdatedAt          string `dynamodbav:"updated_at"`
	StatusIndexKey     string `dynamodbav:"gsi1_pk"`
	CategoryIndexKey   string `dynamodbav:"gsi2_pk"`
}

// legacyAliases lists, per canonical attribute, the names earlier intake
// handlers wrote the same value under. The canonical name always wins.
var legacyAliases = map[string][]string{
	models.AttrCaseID:             {"caseId"},
	models.AttrCategory:           {"itemDescription"},
	models.AttrBrand:              {"brandName", "brandOrId", "brandInfo"},
	models.AttrDetails:            {"distinguishingFeatures"},
	models.AttrLocation:           {"foundLocation", "lostLocation"},
	models.AttrDate:               {"foundDate", "lostDate"},
	models.AttrTime:               {"foundTime", "lostTime"},
	models.AttrReporterName:       {"reporterName"},
	models.AttrReporterContact:    {"reporterContact"},
	models.AttrReporterStudentID:  {"reporterStudentId"},
	models.AttrReporterLiffUserID: {"reporterLiffUserId", "liffUserId"},
	models.AttrImageURL:           {"imageUrl"},
	models.AttrCreatedAt:          {"reportTimestamp"},
}

var canonicalAttributes = []string{
	models.AttrItemID, models.AttrItemType, models.AttrCaseID, models.AttrCategory,
	models.AttrBrand, models.AttrDetails, models.AttrLocation, models.AttrDate, models.AttrTime,
	models.AttrReporterName, models.AttrReporterContact, models.AttrReporterStudentID,
	models.AttrReporterLiffUserID, models.AttrImageURL, models.AttrStatus,
	models.AttrCreatedAt, models.AttrUpdatedAt, models.AttrStatusIndexKey, models.AttrCategoryIndexKey,
}

// knownAttributes holds every canonical and legacy attribute name; anything
// else is carried in Item.Extra.
var knownAttributes = func() map[string]bool {
	known := make(map[string]bool)
	for _, name := range canonicalAttributes {
		known[name] = true
	}
	for _, aliases := range legacyAliases {
		for _, name := range aliases {
			known[name] = true
		}
	}
	return known
}()

// timestampLayouts are tried in order when reading created_at/updated_at.
// Legacy records carry naive UTC isoformat strings.
var timestampLayouts = []string{
	models.TimestampLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

func toRecord(item *models.Item) itemRecord {
	return itemRecord{
		ItemID:             item.ID,
		ItemType:           string(item.Type),
		CaseID:             item.CaseID,
		Category:           item.Category,
		Brand:              item.Brand,
		Details:            item.Details,
		Location:           item.Location,
		Date:               item.Date,
		Time:               item.Time,
		ReporterName:       item.Reporter.Name,
		ReporterContact:    item.Reporter.Contact,
		ReporterStudentID:  item.Reporter.StudentID,
		ReporterLiffUserID: item.Reporter.LiffUserID,
		ImageURL:           item.ImageURL,
		Status:             string(item.Status),
		CreatedAt:          models.FormatTimestamp(item.CreatedAt),
		UpdatedAt:          models.FormatTimestamp(item.UpdatedAt),
		StatusIndexKey:     item.StatusIndexKey(),
		CategoryIndexKey:   item.CategoryIndexKey(),
	}
}

// marshalItem encodes an item in the canonical shape. Extra attributes are
// written back unless they collide with a canonical name.
func marshalItem(item *models.Item) (map[string]types.AttributeValue, error) {
	av, err := attributevalue.MarshalMap(toRecord(item))
	if err != nil {
		return nil, fmt.Errorf("marshal item: %w", err)
	}
	for name, value := range item.Extra {
		if knownAttributes[name] {
			continue
		}
		v, err := attributevalue.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("marshal attribute %s: %w", name, err)
		}
		av[name] = v
	}
	return av, nil
}

// decodeItem reads a stored record of either vocabulary into an Item.
func decodeItem(raw map[string]types.AttributeValue) (*models.Item, error) {
	var attrs map[string]any
	if err := attributevalue.UnmarshalMapWithOptions(raw, &attrs, func(o *attributevalue.DecoderOptions) {
		o.UseNumber = true
	}); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return fromAttributes(attrs)
}

func fromAttributes(attrs map[string]any) (*models.Item, error) {
	id := stringValue(attrs[models.AttrItemID])
	if id == "" {
		return nil, fmt.Errorf("record has no %s", models.AttrItemID)
	}

	rawType := stringValue(attrs[models.AttrItemType])
	itemType, ok := models.ParseItemType(rawType)
	if !ok {
		return nil, fmt.Errorf("record %s has unknown %s %q", id, models.AttrItemType, rawType)
	}

	item := &models.Item{
		ID:       id,
		Type:     itemType,
		CaseID:   pick(attrs, models.AttrCaseID),
		Category: pick(attrs, models.AttrCategory),
		Brand:    pick(attrs, models.AttrBrand),
		Details:  pick(attrs, models.AttrDetails),
		Location: pick(attrs, models.AttrLocation),
		Date:     pick(attrs, models.AttrDate),
		Time:     pick(attrs, models.AttrTime),
		Reporter: models.Reporter{
			Name:       pick(attrs, models.AttrReporterName),
			Contact:    pick(attrs, models.AttrReporterContact),
			StudentID:  pick(attrs, models.AttrReporterStudentID),
			LiffUserID: pick(attrs, models.AttrReporterLiffUserID),
		},
		ImageURL: pick(attrs, models.AttrImageURL),
		Status:   decodeStatus(stringValue(attrs[models.AttrStatus])),
	}
	if item.CaseID == "" {
		item.CaseID = models.CaseIDFor(id)
	}

	item.CreatedAt = parseTimestamp(pick(attrs, models.AttrCreatedAt))
	item.UpdatedAt = parseTimestamp(pick(attrs, models.AttrUpdatedAt))
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = item.CreatedAt
	}

	for name, value := range attrs {
		if knownAttributes[name] {
			continue
		}
		if item.Extra == nil {
			item.Extra = make(map[string]any)
		}
		item.Extra[name] = normalizeValue(value)
	}

	return item, nil
}

// isCanonical reports whether a decoded record is already stored in the
// canonical shape, with index keys in lockstep with their sources.
func isCanonical(attrs map[string]types.AttributeValue, item *models.Item) bool {
	if s, ok := attrs[models.AttrItemType].(*types.AttributeValueMemberS); !ok || s.Value != string(item.Type) {
		return false
	}
	if s, ok := attrs[models.AttrStatus].(*types.AttributeValueMemberS); !ok || s.Value != string(item.Status) {
		return false
	}
	if s, ok := attrs[models.AttrStatusIndexKey].(*types.AttributeValueMemberS); !ok || s.Value != item.StatusIndexKey() {
		return false
	}
	if s, ok := attrs[models.AttrCategoryIndexKey].(*types.AttributeValueMemberS); !ok || s.Value != item.CategoryIndexKey() {
		return false
	}
	if _, ok := attrs[models.AttrCreatedAt]; !ok {
		return false
	}
	for _, aliases := range legacyAliases {
		for _, name := range aliases {
			if _, ok := attrs[name]; ok {
				return false
			}
		}
	}
	return true
}

func pick(attrs map[string]any, canonical string) string {
	if s := stringValue(attrs[canonical]); s != "" {
		return s
	}
	for _, name := range legacyAliases[canonical] {
		if s := stringValue(attrs[name]); s != "" {
			return s
		}
	}
	return ""
}

func decodeStatus(raw string) models.Status {
	if raw == "" {
		return models.StatusReported
	}
	if st, err := models.ParseStatus(raw); err == nil {
		return st
	}
	return models.Status(raw)
}

func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case attributevalue.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// normalizeValue converts store numbers to int64 when integral and float64
// otherwise, descending into lists and maps.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case attributevalue.Number:
		return normalizeNumber(t)
	case []attributevalue.Number:
		out := make([]any, len(t))
		for i, n := range t {
			out[i] = normalizeNumber(n)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeValue(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalizeValue(e)
		}
		return out
	default:
		return v
	}
}

func normalizeNumber(n attributevalue.Number) any {
	if i, err := n.Int64(); err == nil {
		return i
	}
	f, err := n.Float64()
	if err != nil {
		return n.String()
	}
	if f == math.Trunc(f) && math.Abs(f) < math.MaxInt64 {
		return int64(f)
	}
	return f
}

// sortedExtraNames is used to keep log output deterministic.
func sortedExtraNames(item *models.Item) []string {
	names := make([]string, 0, len(item.Extra))
	for name := range item.Extra {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
