// internal/model/event.go
package model

import "time"

const (
    EventCustomerCreated = "customer.created"
    EventCustomerUpdated = "customer.updated"
    EventCustomerDeleted = "customer.deleted"
    EventAddressCreated  = "address.created"
    EventAddressUpdated  = "address.updated"
    EventAddressDeleted  = "address.deleted"
)

// ChangeEvent is published after every successful mutation.
type ChangeEvent struct {
    ID         string    `json:"id"`
    Type       string    `json:"type"`
    CustomerID int       `json:"customer_id,omitempty"`
    AddressID  int       `json:"address_id,omitempty"`
    OccurredAt time.Time `json:"occurred_at"`
}
