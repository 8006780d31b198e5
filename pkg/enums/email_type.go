package enums

// EmailType identifies a transactional email kind. Each (order, type) pair is
// sent at most once; the reliability store enforces the claim.
type EmailType string

const (
	EmailTypeStripePaid EmailType = "stripe_paid"
	EmailTypeCODPlaced  EmailType = "cod_placed"
)

func (e EmailType) String() string {
	return string(e)
}

func (e EmailType) IsValid() bool {
	return e == EmailTypeStripePaid || e == EmailTypeCODPlaced
}
