// Package services contains stateless domain services for the item bounded context.
// Domain services enforce business rules that operate purely on domain types
// and have zero external dependencies beyond stdlib and the domain layer.
package services

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ghuser/lostfound/services/item/domain/models"
)

const maxTextLength = 2000

// ValidateText enforces business rules for free-text item attributes.
//
// Business rules:
//   - No leading or trailing whitespace
//   - No control characters (Unicode category Cc), except newlines when multiline is set
//   - At most 2000 characters
func ValidateText(field, s string, multiline bool) error {
	if s != strings.TrimSpace(s) {
		return fmt.Errorf("%s must not have leading or trailing whitespace", field)
	}

	if len([]rune(s)) > maxTextLength {
		return fmt.Errorf("%s must be at most %d characters", field, maxTextLength)
	}

	for _, r := range s {
		if multiline && (r == '\n' || r == '\r') {
			continue
		}
		if unicode.IsControl(r) {
			return fmt.Errorf("%s must not contain control characters", field)
		}
	}

	return nil
}

// ValidateDraft performs cross-field validation on a draft before an Item is
// built from it: the type must be canonical, the required fields of that type
// must be present and every text attribute must pass ValidateText.
func ValidateDraft(d models.Draft) error {
	if !d.Type.Valid() {
		return fmt.Errorf("item_type must be one of %s, %s", models.ItemTypeLost, models.ItemTypeFound)
	}

	values := draftValues(d)
	for _, field := range models.RequiredFields(d.Type) {
		if strings.TrimSpace(values[field]) == "" {
			return fmt.Errorf("%s is required", field)
		}
	}

	for _, field := range sortedKeys(values) {
		if field == models.AttrImageURL {
			continue
		}
		if err := ValidateText(field, values[field], field == models.AttrDetails); err != nil {
			return err
		}
	}

	return nil
}

func draftValues(d models.Draft) map[string]string {
	return map[string]string{
		models.AttrCategory:           d.Category,
		models.AttrBrand:              d.Brand,
		models.AttrDetails:            d.Details,
		models.AttrLocation:           d.Location,
		models.AttrDate:               d.Date,
		models.AttrTime:               d.Time,
		models.AttrReporterName:       d.Reporter.Name,
		models.AttrReporterContact:    d.Reporter.Contact,
		models.AttrReporterStudentID:  d.Reporter.StudentID,
		models.AttrReporterLiffUserID: d.Reporter.LiffUserID,
		models.AttrImageURL:           d.ImageURL,
	}
}

func sortedKeys(m map[string]string) []string {
	return models.FieldUpdates(m).Names()
}
