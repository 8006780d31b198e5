package enums

// WebhookStatus records the terminal disposition of a received webhook event.
type WebhookStatus string

const (
	WebhookStatusProcessed WebhookStatus = "processed"
	WebhookStatusIgnored   WebhookStatus = "ignored"
)

func (s WebhookStatus) String() string {
	return string(s)
}
