package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TimestampLayout is the fixed-width UTC layout used for created_at/updated_at.
// Fixed width keeps the string form lexically sortable for the index sort keys.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

const (
	categoryIndexPrefix = "CATEGORY#"
	caseIDLength        = 6
)

// Reporter is the contact identity of the party who filed a report.
type Reporter struct {
	Name       string
	Contact    string
	StudentID  string
	LiffUserID string // messaging-platform identity, optional
}

// Draft holds caller-supplied fields for a new Item before the generated
// fields (id, case id, timestamps, status) are assigned.
type Draft struct {
	Type     ItemType
	Category string
	Brand    string
	Details  string
	Location string
	Date     string
	Time     string
	Reporter Reporter
	ImageURL string
}

// Item is the single aggregate behind both lost and found reports.
// It is addressed by the pair (ID, Type).
type Item struct {
	ID        string
	Type      ItemType
	CaseID    string
	Category  string
	Brand     string
	Details   string
	Location  string
	Date      string
	Time      string
	Reporter  Reporter
	ImageURL  string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time

	// Extra carries attributes outside the canonical schema, read back from
	// older records. Numeric values are already normalised to int64 or float64.
	Extra map[string]any
}

// NewItem constructs an Item from a draft, assigning a fresh id, the derived
// case id, the initial status and creation timestamps.
func NewItem(d Draft) (*Item, error) {
	if !d.Type.Valid() {
		return nil, fmt.Errorf("item type must be one of %s, %s", ItemTypeLost, ItemTypeFound)
	}
	id := uuid.New().String()
	now := Now()
	return &Item{
		ID:        id,
		Type:      d.Type,
		CaseID:    CaseIDFor(id),
		Category:  d.Category,
		Brand:     d.Brand,
		Details:   d.Details,
		Location:  d.Location,
		Date:      d.Date,
		Time:      d.Time,
		Reporter:  d.Reporter,
		ImageURL:  d.ImageURL,
		Status:    StatusReported,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// CaseIDFor derives the short human-facing reference from an item id:
// its last six characters, upper-cased.
func CaseIDFor(id string) string {
	if len(id) <= caseIDLength {
		return strings.ToUpper(id)
	}
	return strings.ToUpper(id[len(id)-caseIDLength:])
}

// Now returns the current time in UTC truncated to the precision of TimestampLayout.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// FormatTimestamp renders t with TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// StatusIndexKey is the derived status projection, STATUS#<status>.
func (i *Item) StatusIndexKey() string {
	return i.Status.IndexKey()
}

// CategoryIndexKey is the derived category projection, CATEGORY#<category>.
func (i *Item) CategoryIndexKey() string {
	return CategoryIndexKey(i.Category)
}

// CategoryIndexKey returns CATEGORY#<category>.
func CategoryIndexKey(category string) string {
	return categoryIndexPrefix + category
}

// Clone returns a deep copy of the item.
func (i *Item) Clone() *Item {
	c := *i
	if i.Extra != nil {
		c.Extra = make(map[string]any, len(i.Extra))
		for k, v := range i.Extra {
			c.Extra[k] = v
		}
	}
	return &c
}

// RequiredFields returns the attribute names that must be non-empty for an item type.
func RequiredFields(t ItemType) []string {
	switch t {
	case ItemTypeLost:
		return []string{AttrCategory, AttrLocation, AttrDate, AttrReporterName, AttrReporterContact}
	case ItemTypeFound:
		return []string{AttrCategory, AttrLocation, AttrReporterName, AttrReporterContact}
	default:
		return nil
	}
}

// Field returns the value of a mutable descriptive attribute by its attribute name.
func (i *Item) Field(name string) (string, bool) {
	switch name {
	case AttrCategory:
		return i.Category, true
	case AttrBrand:
		return i.Brand, true
	case AttrDetails:
		return i.Details, true
	case AttrLocation:
		return i.Location, true
	case AttrDate:
		return i.Date, true
	case AttrTime:
		return i.Time, true
	case AttrReporterName:
		return i.Reporter.Name, true
	case AttrReporterContact:
		return i.Reporter.Contact, true
	case AttrReporterStudentID:
		return i.Reporter.StudentID, true
	case AttrReporterLiffUserID:
		return i.Reporter.LiffUserID, true
	case AttrImageURL:
		return i.ImageURL, true
	case AttrStatus:
		return string(i.Status), true
	default:
		return "", false
	}
}
