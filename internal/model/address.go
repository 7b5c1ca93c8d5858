// internal/model/address.go
package model

type Address struct {
    ID             int    `db:"id" json:"id"`
    CustomerID     int    `db:"customer_id" json:"customer_id"`
    AddressDetails string `db:"address_details" json:"address_details"`
    City           string `db:"city" json:"city"`
    State          string `db:"state" json:"state"`
    PinCode        string `db:"pin_code" json:"pin_code"`
}

// AddressInput is the body of POST /customers/{id}/addresses and PUT /addresses/{addressId}.
type AddressInput struct {
    AddressDetails string `json:"address_details"`
    City           string `json:"city"`
    State          string `json:"state"`
    PinCode        string `json:"pin_code"`
}
