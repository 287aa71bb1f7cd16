/**
 * @description
 * This file maps the payment-day labels shown in the enrollment UI to the
 * numeric day-of-month the API expects.
 */

package workflow

import (
	"strings"

	"github.com/hanapay/bnpl-service/internal/domain"
)

// ParsePaymentDayLabel converts a display label such as "매월 15일" to its
// numeric payment day. The two-digit suffixes are tested first because "15일"
// and "25일" both contain "5일" as a substring. Unrecognized labels fall back
// to the 5th, the first option in the selection list.
func ParsePaymentDayLabel(label string) int {
	switch {
	case strings.Contains(label, "15일"):
		return domain.PaymentDayMiddle
	case strings.Contains(label, "25일"):
		return domain.PaymentDayLate
	case strings.Contains(label, "5일"):
		return domain.PaymentDayEarly
	default:
		return domain.PaymentDayEarly
	}
}
