package checkout

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewOrderNumber builds a human-readable order number like
// LC-20260901-9F3A2B1C. The random suffix keeps numbers unguessable; the
// unique index on orders.number backstops collisions.
func NewOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("LC-%s-%s", now.UTC().Format("20060102"), suffix)
}
