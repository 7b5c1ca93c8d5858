package main

import (
    "fmt"

    "github.com/unclebandit/customer-address-backend/internal/model"
)

var (
    firstNames = []string{"Aarav", "Diya", "Ishaan", "Kavya", "Rohan", "Sneha", "Vikram", "Ananya"}
    lastNames  = []string{"Sharma", "Patel", "Iyer", "Reddy", "Kulkarni", "Das", "Mehta", "Nair"}
    places     = []struct{ City, State, Pin string }{
        {"Pune", "Maharashtra", "411001"},
        {"Mumbai", "Maharashtra", "400001"},
        {"Bengaluru", "Karnataka", "560001"},
        {"Chennai", "Tamil Nadu", "600001"},
        {"Kolkata", "West Bengal", "700001"},
        {"Hyderabad", "Telangana", "500001"},
    }
)

// demoCustomer is deterministic in i: the phone number is unique per i, and every
// third customer gets a second address.
func demoCustomer(i int) (model.CustomerInput, []model.AddressInput) {
    in := model.CustomerInput{
        FirstName:   firstNames[i%len(firstNames)],
        LastName:    lastNames[(i/len(firstNames))%len(lastNames)],
        PhoneNumber: fmt.Sprintf("90000%05d", i),
    }

    n := 1
    if i%3 == 0 {
        n = 2
    }
    addrs := make([]model.AddressInput, 0, n)
    for k := 0; k < n; k++ {
        p := places[(i+k)%len(places)]
        addrs = append(addrs, model.AddressInput{
            AddressDetails: fmt.Sprintf("%d, Street %d", 10+i, k+1),
            City:           p.City,
            State:          p.State,
            PinCode:        p.Pin,
        })
    }
    return in, addrs
}
