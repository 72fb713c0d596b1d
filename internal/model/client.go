package model

import (
	"fmt"
	"strings"
)

// Client is a guest of the hotel.  Clients are referenced by
// reservations through an ownership-free back-reference: deleting a
// client never happens directly but always through the cascade
// coordinator so that dependent reservations are resolved first.
//
// Fields:
//  ID      – opaque identifier assigned by the store at creation.
//  Name    – family name.
//  Surname – given name.
//  Address – postal address.
//  Email   – contact email, unique across clients.
//  Phone   – contact phone number.
type Client struct {
	ID      string `json:"id"`      // clients.id
	Name    string `json:"name"`    // clients.name
	Surname string `json:"surname"` // clients.surname
	Address string `json:"address"` // clients.address
	Email   string `json:"email"`   // clients.email
	Phone   string `json:"phone"`   // clients.phone
}

// Validate checks that all required client fields are present.
func (c *Client) Validate() error {
	switch {
	case strings.TrimSpace(c.Name) == "":
		return fmt.Errorf("name is required")
	case strings.TrimSpace(c.Surname) == "":
		return fmt.Errorf("surname is required")
	case strings.TrimSpace(c.Address) == "":
		return fmt.Errorf("address is required")
	case strings.TrimSpace(c.Email) == "":
		return fmt.Errorf("email is required")
	case strings.TrimSpace(c.Phone) == "":
		return fmt.Errorf("phone is required")
	}
	return nil
}
