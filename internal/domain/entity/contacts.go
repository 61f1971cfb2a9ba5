package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// ContactType enumerates the accepted contact channel types
type ContactType string

const (
	ContactTypeMobile ContactType = "mobile"
	ContactTypeHome   ContactType = "home"
	ContactTypeWork   ContactType = "work"
	ContactTypeEmail  ContactType = "email"
	ContactTypeOther  ContactType = "other"
)

// IsValid checks membership in the contact type enum
func (t ContactType) IsValid() bool {
	switch t {
	case ContactTypeMobile, ContactTypeHome, ContactTypeWork, ContactTypeEmail, ContactTypeOther:
		return true
	}
	return false
}

// Contact is a single entry in a patient's ordered contact list
type Contact struct {
	Type      ContactType `json:"type"`
	Value     string      `json:"value"`
	Preferred *bool       `json:"preferred,omitempty"`
}

// Contacts is an ordered contact list stored as a JSONB column
type Contacts []Contact

// Value returns json value, implement driver.Valuer interface
func (c Contacts) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan scans value into Contacts, implements sql.Scanner interface
func (c *Contacts) Scan(value interface{}) error {
	if value == nil {
		*c = Contacts{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}

	result := Contacts{}
	err := json.Unmarshal(bytes, &result)
	*c = result
	return err
}
