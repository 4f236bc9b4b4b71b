package model

type DeliveryKind string

const (
	DeliverySuccess       DeliveryKind = "success"
	DeliveryProviderError DeliveryKind = "provider_error"
	DeliveryException     DeliveryKind = "exception"
)

// DeliveryResult is the structured outcome of one outbound notification.
// Dispatch never raises; the caller maps provider_error to 502 and
// exception to 500.
type DeliveryResult struct {
	OK      bool         `json:"ok"`
	Kind    DeliveryKind `json:"kind"`
	Status  int          `json:"status,omitempty"`
	Details string       `json:"details,omitempty"`
	Payload any          `json:"payload,omitempty"`
}

type FailedDelivery struct {
	Entry  RosterEntry    `json:"entry"`
	Result DeliveryResult `json:"result"`
}

// RosterDispatch describes one roster send pass: the computed event date,
// every recipient that was delivered to and every one that failed.
type RosterDispatch struct {
	Category  Category         `json:"category"`
	EventDate string           `json:"eventDate"`
	Sent      []RosterEntry    `json:"sent"`
	Failed    []FailedDelivery `json:"failed,omitempty"`
}

func (d *RosterDispatch) HasProviderError() bool {
	for _, f := range d.Failed {
		if f.Result.Kind == DeliveryProviderError {
			return true
		}
	}

	return false
}
