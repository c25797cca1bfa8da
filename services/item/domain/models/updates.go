package models

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Attribute names of the canonical item schema.
const (
	AttrItemID             = "item_id"
	AttrItemType           = "item_type"
	AttrCaseID             = "case_id"
	AttrCategory           = "category"
	AttrBrand              = "brand"
	AttrDetails            = "details"
	AttrLocation           = "location"
	AttrDate               = "date"
	AttrTime               = "time"
	AttrReporterName       = "reporter_name"
	AttrReporterContact    = "reporter_contact"
	AttrReporterStudentID  = "reporter_student_id"
	AttrReporterLiffUserID = "reporter_liff_user_id"
	AttrImageURL           = "image_url"
	AttrStatus             = "status"
	AttrCreatedAt          = "created_at"
	AttrUpdatedAt          = "updated_at"
	AttrStatusIndexKey     = "gsi1_pk"
	AttrCategoryIndexKey   = "gsi2_pk"
)

var updatableFields = map[string]bool{
	AttrCategory:           true,
	AttrBrand:              true,
	AttrDetails:            true,
	AttrLocation:           true,
	AttrDate:               true,
	AttrTime:               true,
	AttrReporterName:       true,
	AttrReporterContact:    true,
	AttrReporterStudentID:  true,
	AttrReporterLiffUserID: true,
	AttrImageURL:           true,
	AttrStatus:             true,
}

// ErrEmptyUpdate is returned when an update carries no fields.
var ErrEmptyUpdate = errors.New("no fields to update")

// FieldUpdates is a partial, field-level merge keyed by attribute name.
type FieldUpdates map[string]string

// Normalize validates the update set against the vocabulary of item type t and
// returns a copy with status values rewritten to their canonical form.
//
// Identity and derived attributes (item_id, item_type, case_id, created_at,
// updated_at, index keys) are not updatable. Required fields of t may not be cleared.
func (u FieldUpdates) Normalize(t ItemType) (FieldUpdates, error) {
	if len(u) == 0 {
		return nil, ErrEmptyUpdate
	}
	required := make(map[string]bool)
	for _, f := range RequiredFields(t) {
		required[f] = true
	}

	out := make(FieldUpdates, len(u))
	for _, name := range u.Names() {
		value := u[name]
		if !updatableFields[name] {
			return nil, fmt.Errorf("field %q cannot be updated", name)
		}
		if required[name] && value == "" {
			return nil, fmt.Errorf("field %q is required and cannot be cleared", name)
		}
		if name == AttrStatus {
			st, err := ParseStatus(value)
			if err != nil {
				return nil, err
			}
			if !st.AllowedFor(t) {
				return nil, fmt.Errorf("status %s is not valid for %s items", st, t)
			}
			value = string(st)
		}
		out[name] = value
	}
	return out, nil
}

// Names returns the attribute names in sorted order.
func (u FieldUpdates) Names() []string {
	names := make([]string, 0, len(u))
	for k := range u {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Apply merges normalised updates into the item and stamps UpdatedAt.
func (i *Item) Apply(u FieldUpdates, now time.Time) {
	for name, value := range u {
		switch name {
		case AttrCategory:
			i.Category = value
		case AttrBrand:
			i.Brand = value
		case AttrDetails:
			i.Details = value
		case AttrLocation:
			i.Location = value
		case AttrDate:
			i.Date = value
		case AttrTime:
			i.Time = value
		case AttrReporterName:
			i.Reporter.Name = value
		case AttrReporterContact:
			i.Reporter.Contact = value
		case AttrReporterStudentID:
			i.Reporter.StudentID = value
		case AttrReporterLiffUserID:
			i.Reporter.LiffUserID = value
		case AttrImageURL:
			i.ImageURL = value
		case AttrStatus:
			i.Status = Status(value)
		}
	}
	i.UpdatedAt = now
}
