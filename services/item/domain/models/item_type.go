package models

import "strings"

// ItemType discriminates lost reports from found reports stored in the same table.
// It is the sort key of the physical item key.
type ItemType string

const (
	ItemTypeLost  ItemType = "LOST"
	ItemTypeFound ItemType = "FOUND"
)

// Discriminators written by earlier versions of the intake functions.
const (
	legacyItemTypeLost  = "LOST_REPORT"
	legacyItemTypeFound = "FOUND_ITEM"
)

// ParseItemType accepts the canonical vocabulary and the legacy one.
// The second return value reports whether s was recognised.
func ParseItemType(s string) (ItemType, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(ItemTypeLost), legacyItemTypeLost:
		return ItemTypeLost, true
	case string(ItemTypeFound), legacyItemTypeFound:
		return ItemTypeFound, true
	default:
		return "", false
	}
}

// IsLegacyItemType reports whether s is a discriminator from the legacy vocabulary.
func IsLegacyItemType(s string) bool {
	return s == legacyItemTypeLost || s == legacyItemTypeFound
}

// Valid reports whether t is a canonical item type.
func (t ItemType) Valid() bool {
	return t == ItemTypeLost || t == ItemTypeFound
}

func (t ItemType) String() string {
	return string(t)
}
