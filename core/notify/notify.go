// Package notify declares the notification dispatcher boundary. Dispatch is
// fire-and-forget: the core never waits on delivery and its correctness
// never depends on it.
package notify

import (
	"time"

	"github.com/Medic423/medport-sub003/core/model"
	"github.com/Medic423/medport-sub003/internal/eventbus"
)

// Event names the occurrence being notified.
type Event string

const (
	EventBidSubmitted     Event = "bid_submitted"
	EventBidAccepted      Event = "bid_accepted"
	EventBidRejected      Event = "bid_rejected"
	EventBidWithdrawn     Event = "bid_withdrawn"
	EventBidExpired       Event = "bid_expired"
	EventRequestCancelled Event = "request_cancelled"
	EventRequestReopened  Event = "request_reopened"
)

// Notification is delivered to affected parties after a lifecycle change.
type Notification struct {
	Event     Event               `json:"event"`
	RequestID string              `json:"request_id"`
	BidID     string              `json:"bid_id,omitempty"`
	AgencyID  string              `json:"agency_id,omitempty"`
	Status    model.RequestStatus `json:"status,omitempty"`
	Reason    string              `json:"reason,omitempty"`
	Time      time.Time           `json:"time"`
}

// Dispatcher delivers notifications. Implementations must not block the
// caller; failures are their own to log.
type Dispatcher interface {
	Notify(n Notification)
}

// Nop discards every notification.
type Nop struct{}

func (Nop) Notify(Notification) {}

// BusDispatcher republishes notifications on the in-process event bus, where
// presentation-layer subscribers pick them up.
type BusDispatcher struct {
	bus eventbus.EventBus
}

// NewBusDispatcher wraps the given bus.
func NewBusDispatcher(bus eventbus.EventBus) *BusDispatcher {
	return &BusDispatcher{bus: bus}
}

// Notify implements Dispatcher.
func (d *BusDispatcher) Notify(n Notification) {
	if n.Time.IsZero() {
		n.Time = time.Now().UTC()
	}
	d.bus.Publish(n)
}
