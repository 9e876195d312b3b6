package payment

import "strings"

// Status is the internal payment estado.
type Status string

const (
	StatusPending   Status = "pendiente"
	StatusPaid      Status = "pagado"
	StatusFailed    Status = "fallido"
	StatusRefunded  Status = "reembolsado"
	StatusCancelled Status = "cancelado"
)

// NormalizeStatus maps a stored or user supplied estado onto the enum.
// Anything unknown, including the empty string, is pendiente.
func NormalizeStatus(raw string) Status {
	switch s := Status(strings.ToLower(strings.TrimSpace(raw))); s {
	case StatusPaid, StatusFailed, StatusRefunded, StatusCancelled:
		return s
	}
	return StatusPending
}

func (s Status) IsTerminal() bool {
	switch s {
	case StatusPaid, StatusFailed, StatusRefunded, StatusCancelled:
		return true
	}
	return false
}

func IsTerminal(s Status) bool {
	return s.IsTerminal()
}

type rule struct {
	status        Status
	eventPrefixes []string
	events        []string
	tokens        []string
}

// rules is the single vocabulary shared by the webhook and polling paths.
// Order matters: the first matching rule wins.
var rules = []rule{
	{
		status:        StatusPaid,
		eventPrefixes: []string{"order_created", "order_paid", "order_payment_success", "order_payment_succeeded", "order_completed", "order_success"},
		tokens:        []string{"paid", "completed", "success", "succeeded"},
	},
	{
		status: StatusRefunded,
		events: []string{"order_refunded"},
		tokens: []string{"refunded", "partially_refunded"},
	},
	{
		status: StatusFailed,
		events: []string{"order_payment_failed"},
		tokens: []string{"failed", "voided"},
	},
	{
		status: StatusCancelled,
		events: []string{"order_expired", "order_cancelled"},
		tokens: []string{"cancelled", "canceled", "abandoned"},
	},
	{
		status: StatusPending,
		events: []string{"order_pending"},
		tokens: []string{"pending"},
	},
}

func (r rule) matchEvent(event string) bool {
	for _, p := range r.eventPrefixes {
		if strings.HasPrefix(event, p) {
			return true
		}
	}
	for _, e := range r.events {
		if event == e {
			return true
		}
	}
	return false
}

func (r rule) matchToken(token string) bool {
	for _, t := range r.tokens {
		if token == t {
			return true
		}
	}
	return false
}

func canonical(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// FromProviderEvent maps a webhook event name and an optional status hint.
// The event name is consulted first; the hint decides only when no rule
// claims the event.
func FromProviderEvent(event, statusHint string) Status {
	if e := canonical(event); e != "" {
		for _, r := range rules {
			if r.matchEvent(e) {
				return r.status
			}
		}
	}
	return FromCheckoutStatus(statusHint)
}

// FromCheckoutStatus maps the status string of a checkout or order.
func FromCheckoutStatus(status string) Status {
	t := canonical(status)
	if t == "" {
		return StatusPending
	}
	for _, r := range rules {
		if r.matchToken(t) {
			return r.status
		}
	}
	return StatusPending
}
