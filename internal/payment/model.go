package payment

import "time"

type Payment struct {
	ID            string    `db:"id" json:"id"`
	Status        Status    `db:"estado" json:"estado"`
	CheckoutID    *string   `db:"checkout_id" json:"checkout_id,omitempty"`
	CheckoutURL   *string   `db:"checkout_url" json:"checkout_url,omitempty"`
	OrderID       *string   `db:"order_id" json:"order_id,omitempty"`
	ReservaID     *int64    `db:"reserva_id" json:"reserva_id,omitempty"`
	InscripcionID *int64    `db:"inscripcion_id" json:"inscripcion_id,omitempty"`
	AmountCents   *int64    `db:"monto_centavos" json:"monto_centavos,omitempty"`
	Currency      *string   `db:"moneda" json:"moneda,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// ReconcileResult is what the estado endpoint returns.
type ReconcileResult struct {
	PaymentID string `json:"pago_id"`
	Status    Status `json:"estado"`
	OrderID   string `json:"order_id,omitempty"`
	Synced    bool   `json:"synced,omitempty"`
	Updated   bool   `json:"updated"`
}

// Confirmation is handed to the Notifier when a payment first becomes pagado.
type Confirmation struct {
	PaymentID      string `json:"pago_id"`
	PreviousStatus Status `json:"previous_estado"`
	NextStatus     Status `json:"next_estado"`
	ReservaID      *int64 `json:"reserva_id"`
	InscripcionID  *int64 `json:"inscripcion_id"`
}

// Target is the booking a checkout pays for. Exactly one field is set.
type Target struct {
	ReservaID     *int64
	InscripcionID *int64
}

// TargetInfo is what StartCheckout needs to know about a Target.
type TargetInfo struct {
	OwnerID     *int64 `db:"owner_id"`
	OwnerEmail  string `db:"owner_email"`
	Paid        bool   `db:"paid"`
	Status      string `db:"status"`
	AmountCents int64  `db:"amount_cents"`
	Description string `db:"description"`
}

type CheckoutResult struct {
	PaymentID   string `json:"pago_id"`
	CheckoutURL string `json:"checkout_url"`
}

// webhookEvent is the subset of the provider webhook payload we consume.
type webhookEvent struct {
	Meta struct {
		EventName  string `json:"event_name"`
		CustomData struct {
			PaymentID string `json:"pago_id"`
		} `json:"custom_data"`
	} `json:"meta"`
	Data struct {
		ID         string `json:"id"`
		Attributes struct {
			Status   string `json:"status"`
			Total    *int64 `json:"total"`
			Currency string `json:"currency"`
		} `json:"attributes"`
	} `json:"data"`
}

type WebhookResult struct {
	PaymentID string `json:"pago_id,omitempty"`
	Status    Status `json:"estado,omitempty"`
	Updated   bool   `json:"updated"`
	Ignored   bool   `json:"ignored,omitempty"`
}
