package models

import (
	"fmt"
	"sort"
	"strings"
)

// Status is the lifecycle state of an item.
//
//	LOST:  REPORTED -> RETURNED | EXPIRED
//	FOUND: REPORTED -> AWAITING_CLAIM -> RETURNED | EXPIRED
//
// Transitions are not graph-constrained: an administrator may set any status
// that belongs to the item type's vocabulary.
type Status string

const (
	StatusReported      Status = "REPORTED"
	StatusAwaitingClaim Status = "AWAITING_CLAIM"
	StatusReturned      Status = "RETURNED"
	StatusExpired       Status = "EXPIRED"
)

const statusIndexPrefix = "STATUS#"

// legacyStatuses maps values written by earlier handler versions onto the canonical vocabulary.
var legacyStatuses = map[string]Status{
	"found_reported":  StatusReported,
	"lost_reported":   StatusReported,
	"แจ้งแล้ว":        StatusReported,
	"รอรับคืน":        StatusAwaitingClaim,
	"คืนเจ้าของแล้ว":  StatusReturned,
	"หมดอายุ":         StatusExpired,
}

var statusesByType = map[ItemType][]Status{
	ItemTypeLost:  {StatusReported, StatusReturned, StatusExpired},
	ItemTypeFound: {StatusReported, StatusAwaitingClaim, StatusReturned, StatusExpired},
}

// ParseStatus resolves s to a canonical Status. Canonical names are matched
// case-insensitively; legacy labels are matched exactly.
func ParseStatus(s string) (Status, error) {
	trimmed := strings.TrimSpace(s)
	if st, ok := legacyStatuses[trimmed]; ok {
		return st, nil
	}
	switch st := Status(strings.ToUpper(trimmed)); st {
	case StatusReported, StatusAwaitingClaim, StatusReturned, StatusExpired:
		return st, nil
	}
	return "", fmt.Errorf("invalid status: %q", s)
}

// AllowedStatuses returns the status vocabulary for an item type.
func AllowedStatuses(t ItemType) []Status {
	out := make([]Status, len(statusesByType[t]))
	copy(out, statusesByType[t])
	return out
}

// AllowedFor reports whether s belongs to the vocabulary of item type t.
func (s Status) AllowedFor(t ItemType) bool {
	for _, allowed := range statusesByType[t] {
		if allowed == s {
			return true
		}
	}
	return false
}

// IndexKey returns the derived status index key, STATUS#<status>.
func (s Status) IndexKey() string {
	return statusIndexPrefix + string(s)
}

// IndexKeys returns every status index key an item in status s may be stored
// under: the canonical key first, then the keys of its legacy labels. Rows
// not yet rewritten by the legacy migration keep their legacy key.
func (s Status) IndexKeys() []string {
	keys := []string{s.IndexKey()}
	for label, st := range legacyStatuses {
		if st == s {
			keys = append(keys, statusIndexPrefix+label)
		}
	}
	sort.Strings(keys[1:])
	return keys
}

func (s Status) String() string {
	return string(s)
}
