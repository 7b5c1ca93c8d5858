// internal/model/customer.go
package model

import "math"

type Customer struct {
    ID          int    `db:"id" json:"id"`
    FirstName   string `db:"first_name" json:"first_name"`
    LastName    string `db:"last_name" json:"last_name"`
    PhoneNumber string `db:"phone_number" json:"phone_number"`
}

// CustomerInput is the body of POST/PUT /customers. All three fields are required.
type CustomerInput struct {
    FirstName   string `json:"first_name"`
    LastName    string `json:"last_name"`
    PhoneNumber string `json:"phone_number"`
}

// CustomerFilter carries the list query options. Zero values mean "not set".
type CustomerFilter struct {
    Search  string
    City    string
    State   string
    PinCode string
    Page    int
    Limit   int
    SortBy  string
    Order   string
}

// HasAddressFilter reports whether the list query must look at addresses.
func (f CustomerFilter) HasAddressFilter() bool {
    return f.City != "" || f.State != "" || f.PinCode != ""
}

// Offset is the row offset for the (1-based) page. It saturates at math.MaxInt
// instead of wrapping.
func (f CustomerFilter) Offset() int {
    if f.Page < 1 || f.Limit < 1 {
        return 0
    }
    if f.Page-1 > math.MaxInt/f.Limit {
        return math.MaxInt
    }
    return (f.Page - 1) * f.Limit
}

// CustomerPage is one page of a filtered customer listing.
type CustomerPage struct {
    Customers  []Customer
    TotalCount int
    Page       int
    Limit      int
}

// TotalPages derives the page count from TotalCount and Limit.
func (p CustomerPage) TotalPages() int {
    if p.Limit < 1 {
        return 0
    }
    return (p.TotalCount + p.Limit - 1) / p.Limit
}
