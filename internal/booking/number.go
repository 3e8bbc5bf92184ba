package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewBookingNumber builds a human-readable unique reference like
// "NM-20250829-3FA9C1": prefix, pickup-request date, uuid fragment.
func NewBookingNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return fmt.Sprintf("NM-%s-%s", now.Format("20060102"), suffix)
}
