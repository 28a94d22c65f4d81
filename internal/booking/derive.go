package booking

import "github.com/cubanstagelink-ai/reupspots-app/internal/models"

// DeriveStatus computes a split booking's parent status from its two
// installment statuses. It must be re-run against post-write values after
// every installment write; it is never memoized from a pre-fetch.
func DeriveStatus(depositStatus, finalStatus string) string {
	switch {
	case depositStatus == models.InstallmentPaid && finalStatus == models.InstallmentPaid:
		return models.BookingConfirmed
	case depositStatus == models.InstallmentPaid && finalStatus == models.InstallmentPending:
		return models.BookingDepositPaid
	case depositStatus == models.InstallmentSubmitted || finalStatus == models.InstallmentSubmitted:
		return models.BookingPaymentSubmitted
	default:
		return models.BookingPendingPayment
	}
}

// SplitAmounts divides a total into deposit and final installments, the
// deposit taking the ceiling of half so the two always sum to the total.
func SplitAmounts(total int64) (deposit, final int64) {
	deposit = (total + 1) / 2
	return deposit, total - deposit
}
