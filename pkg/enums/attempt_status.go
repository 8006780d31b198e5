package enums

// AttemptStatus tracks a checkout attempt from session creation to settlement.
type AttemptStatus string

const (
	AttemptStatusPendingPayment AttemptStatus = "pending_payment"
	AttemptStatusPaid           AttemptStatus = "paid"
	AttemptStatusFailed         AttemptStatus = "failed"
)

func (s AttemptStatus) String() string {
	return string(s)
}

func (s AttemptStatus) IsValid() bool {
	switch s {
	case AttemptStatusPendingPayment, AttemptStatusPaid, AttemptStatusFailed:
		return true
	}
	return false
}
