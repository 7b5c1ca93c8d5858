// internal/controller/address_controller.go
package controller

import (
    "net/http"

    "github.com/unclebandit/customer-address-backend/internal/model"
)

func (c *CustomerController) CreateAddress(w http.ResponseWriter, r *http.Request) {
    customerID, err := pathID(r, "id", "customer")
    if err != nil {
        c.fail(w, r, err)
        return
    }

    var body model.AddressInput
    if err := decodeBody(r, &body); err != nil {
        c.fail(w, r, err)
        return
    }

    id, err := c.CustomerService.CreateAddress(r.Context(), customerID, body)
    if err != nil {
        c.fail(w, r, err)
        return
    }

    writeJSON(w, http.StatusCreated, map[string]interface{}{
        "message":   "Address added successfully",
        "addressId": id,
    })
}

func (c *CustomerController) ListAddresses(w http.ResponseWriter, r *http.Request) {
    customerID, err := pathID(r, "id", "customer")
    if err != nil {
        c.fail(w, r, err)
        return
    }

    addresses, err := c.CustomerService.ListAddresses(r.Context(), customerID)
    if err != nil {
        c.fail(w, r, err)
        return
    }

    writeJSON(w, http.StatusOK, map[string]interface{}{
        "message": "success",
        "data":    addresses,
    })
}

func (c *CustomerController) UpdateAddress(w http.ResponseWriter, r *http.Request) {
    id, err := pathID(r, "addressId", "address")
    if err != nil {
        c.fail(w, r, err)
        return
    }

    var body model.AddressInput
    if err := decodeBody(r, &body); err != nil {
        c.fail(w, r, err)
        return
    }

    if err := c.CustomerService.UpdateAddress(r.Context(), id, body); err != nil {
        c.fail(w, r, err)
        return
    }

    writeJSON(w, http.StatusOK, map[string]string{"message": "Address updated successfully"})
}

func (c *CustomerController) DeleteAddress(w http.ResponseWriter, r *http.Request) {
    id, err := pathID(r, "addressId", "address")
    if err != nil {
        c.fail(w, r, err)
        return
    }

    if err := c.CustomerService.DeleteAddress(r.Context(), id); err != nil {
        c.fail(w, r, err)
        return
    }

    writeJSON(w, http.StatusOK, map[string]string{"message": "Address deleted successfully"})
}
