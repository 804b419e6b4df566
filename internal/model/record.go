package model

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"
)

// CSVHeader holds the column labels written before the first record.
// The labels are in the language of the member directory the tool was
// written for, and the order matches Record.Fields.
var CSVHeader = []string{
	"Nombre",
	"Domicilio",
	"Teléfono",
	"Correo electrónico",
	"Persona de contacto",
}

// Record is one business entity extracted from a detail page.
// Every field defaults to the empty string when its label was not found.
// Records are values: once built by the extractor they are never mutated.
type Record struct {
	// Name is the business name taken from the detail card heading.
	Name string `json:"name"`

	// Address is the text following the address label.
	Address string `json:"address"`

	// Phone is the text following the phone label.
	Phone string `json:"phone"`

	// Email is the text following the email label.
	Email string `json:"email"`

	// ContactPerson is the text following the contact person label.
	ContactPerson string `json:"contact_person"`
}

// Fields returns the record as a row in CSVHeader order.
func (r Record) Fields() []string {
	return []string{r.Name, r.Address, r.Phone, r.Email, r.ContactPerson}
}

// IsZero reports whether every field is empty.
// A detail card without any recognizable content still yields a zero record;
// callers decide whether to keep it.
func (r Record) IsZero() bool {
	return r == Record{}
}

// fieldSeparator joins fields before hashing. The unit separator cannot
// appear in extracted text after whitespace trimming of normal markup.
const fieldSeparator = "\x1f"

// Fingerprint returns a hex encoded SHA3-256 digest of all fields.
// Stored with every archived record to find identical records across runs.
func (r Record) Fingerprint() string {
	sum := sha3.Sum256([]byte(strings.Join(r.Fields(), fieldSeparator)))
	return hex.EncodeToString(sum[:])
}
