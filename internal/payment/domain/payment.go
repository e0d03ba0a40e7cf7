package domain

import "time"

// Processor payment statuses this integration reacts to. Mercado Pago has
// more (in_process, authorized, charged_back, ...); everything outside
// approved/rejected maps back to a pending order.
const (
	ProcessorApproved = "approved"
	ProcessorRejected = "rejected"
)

// Payment is the processor's view of one transaction, fetched after a
// webhook notification names its id.
type Payment struct {
	ID                string
	Status            string
	ExternalReference string
	LastUpdated       time.Time
}

// WebhookEvent is the notification body the processor POSTs. Only events of
// type "payment" are relevant; everything else is acknowledged and dropped.
type WebhookEvent struct {
	Type   string
	DataID string
}
