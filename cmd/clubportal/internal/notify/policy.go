package notify

import (
	"fmt"
	"strings"
)

// BatchPolicy controls how MarkAllRead commits locally when some remote
// confirmations fail.
type BatchPolicy string

const (
	// BatchAllOrNothing commits nothing unless every confirmation succeeded.
	// Items confirmed remotely stay unread locally after a partial failure.
	BatchAllOrNothing BatchPolicy = "all-or-nothing"
	// BatchPerItem commits exactly the confirmed items.
	BatchPerItem BatchPolicy = "per-item"
)

// ParseBatchPolicy parses a configured policy name. Empty means all-or-nothing.
func ParseBatchPolicy(value string) (BatchPolicy, error) {
	switch BatchPolicy(strings.ToLower(strings.TrimSpace(value))) {
	case "", BatchAllOrNothing:
		return BatchAllOrNothing, nil
	case BatchPerItem:
		return BatchPerItem, nil
	default:
		return "", fmt.Errorf("unknown batch policy %q (expected %q or %q)", value, BatchAllOrNothing, BatchPerItem)
	}
}
