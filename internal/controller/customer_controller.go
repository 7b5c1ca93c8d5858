// internal/controller/customer_controller.go
package controller

import (
    "net/http"
    "strconv"

    "github.com/go-chi/chi/v5"
    "github.com/sirupsen/logrus"

    "github.com/unclebandit/customer-address-backend/internal/model"
    "github.com/unclebandit/customer-address-backend/internal/service"
)

type CustomerController struct {
    CustomerService *service.CustomerService
    Log             *logrus.Logger
}

// Routes mounts the customer and address endpoints under the given router.
func (c *CustomerController) Routes(r chi.Router) {
    r.Post("/customers", c.CreateCustomer)
    r.Get("/customers", c.ListCustomers)
    r.Get("/customers/{id}", c.GetCustomer)
    r.Put("/customers/{id}", c.UpdateCustomer)
    r.Delete("/customers/{id}", c.DeleteCustomer)

    r.Post("/customers/{id}/addresses", c.CreateAddress)
    r.Get("/customers/{id}/addresses", c.ListAddresses)
    r.Put("/addresses/{addressId}", c.UpdateAddress)
    r.Delete("/addresses/{addressId}", c.DeleteAddress)
}

func (c *CustomerController) CreateCustomer(w http.ResponseWriter, r *http.Request) {
    var body model.CustomerInput
    if err := decodeBody(r, &body); err != nil {
        c.fail(w, r, err)
        return
    }

    id, err := c.CustomerService.CreateCustomer(r.Context(), body)
    if err != nil {
        c.fail(w, r, err)
        return
    }

    writeJSON(w, http.StatusCreated, map[string]interface{}{
        "message":    "Customer created successfully",
        "customerId": id,
    })
}

func (c *CustomerController) ListCustomers(w http.ResponseWriter, r *http.Request) {
    // Parse query parameters; bad numbers fall back to defaults in the service
    query := r.URL.Query()
    page, _ := strconv.Atoi(query.Get("page"))
    limit, _ := strconv.Atoi(query.Get("limit"))

    filter := model.CustomerFilter{
        Search:  query.Get("search"),
        City:    query.Get("city"),
        State:   query.Get("state"),
        PinCode: query.Get("pin_code"),
        Page:    page,
        Limit:   limit,
        SortBy:  query.Get("sort_by"),
        Order:   query.Get("order"),
    }

    result, err := c.CustomerService.ListCustomers(r.Context(), filter)
    if err != nil {
        c.fail(w, r, err)
        return
    }

    writeJSON(w, http.StatusOK, map[string]interface{}{
        "message":    "success",
        "data":       result.Customers,
        "totalCount": result.TotalCount,
        "pagination": map[string]int{
            "page":        result.Page,
            "limit":       result.Limit,
            "total_pages": result.TotalPages(),
        },
    })
}

func (c *CustomerController) GetCustomer(w http.ResponseWriter, r *http.Request) {
    id, err := pathID(r, "id", "customer")
    if err != nil {
        c.fail(w, r, err)
        return
    }

    customer, err := c.CustomerService.GetCustomer(r.Context(), id)
    if err != nil {
        c.fail(w, r, err)
        return
    }

    writeJSON(w, http.StatusOK, map[string]interface{}{
        "message": "success",
        "data":    customer,
    })
}

func (c *CustomerController) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
    id, err := pathID(r, "id", "customer")
    if err != nil {
        c.fail(w, r, err)
        return
    }

    var body model.CustomerInput
    if err := decodeBody(r, &body); err != nil {
        c.fail(w, r, err)
        return
    }

    if err := c.CustomerService.UpdateCustomer(r.Context(), id, body); err != nil {
        c.fail(w, r, err)
        return
    }

    writeJSON(w, http.StatusOK, map[string]string{"message": "Customer updated successfully"})
}

func (c *CustomerController) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
    id, err := pathID(r, "id", "customer")
    if err != nil {
        c.fail(w, r, err)
        return
    }

    if err := c.CustomerService.DeleteCustomer(r.Context(), id); err != nil {
        c.fail(w, r, err)
        return
    }

    writeJSON(w, http.StatusOK, map[string]string{"message": "Customer deleted successfully"})
}

func (c *CustomerController) fail(w http.ResponseWriter, r *http.Request, err error) {
    log := c.Log
    if log == nil {
        log = logrus.StandardLogger()
    }
    writeError(w, r, log, err)
}
