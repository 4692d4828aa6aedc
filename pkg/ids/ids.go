// Package ids generates record identifiers for the hub's JSON
// collections.
package ids

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// New returns a new record id: a UTC timestamp at second granularity
// followed by a UUID fragment. The timestamp keeps ids sortable by
// creation time, like the ids in existing data files; the suffix makes
// ids created within the same second (or concurrently) distinct.
func New() string {
	stamp := time.Now().UTC().Format("20060102150405")
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return stamp + "-" + suffix
}
