package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrClientNotFound      = errors.New("client not found")
	ErrInvalidProfile      = errors.New("client profile is incomplete")
	ErrMissingDocument     = errors.New("required document is missing")
	ErrDocumentNotFound    = errors.New("document not found")
	ErrTermsAlreadyApplied = errors.New("loan terms already applied")
	ErrPrincipalMismatch   = errors.New("principal does not match the client's balance")
)

// Profile holds the borrower's contact data and the guarantor ("aval").
type Profile struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	GuarantorName  string `json:"guarantor_name"`
	GuarantorPhone string `json:"guarantor_phone"`
}

// Documents holds the storage keys of the three identity documents collected
// when a client is registered.
type Documents struct {
	ClientID       string `json:"client_id"`
	GuarantorID    string `json:"guarantor_id"`
	ProofOfAddress string `json:"proof_of_address"`
}

// Keys returns the document keys in a stable order.
func (d Documents) Keys() []string {
	return []string{d.ClientID, d.GuarantorID, d.ProofOfAddress}
}

// Has reports whether key is one of the client's documents.
func (d Documents) Has(key string) bool {
	for _, k := range d.Keys() {
		if k != "" && k == key {
			return true
		}
	}
	return false
}

// Client is a borrower. Balance starts as the principal, is replaced once by
// the terms calculation and then only decreases through payments.
type Client struct {
	ID         string `json:"id"`
	OwnerID    string `json:"owner_id"`
	Profile    `json:"profile"`
	Balance    decimal.Decimal `json:"balance"`
	DueDay     int             `json:"due_day,omitempty"`
	TermMonths int             `json:"term_months,omitempty"`
	Documents  Documents       `json:"documents"`
	CreatedAt  time.Time       `json:"created_at"`
}

// TermsApplied reports whether the repayment plan has been chosen.
func (c *Client) TermsApplied() bool {
	return c.TermMonths != 0
}

// HasDebt reports whether the client still owes money.
func (c *Client) HasDebt() bool {
	return c.Balance.IsPositive()
}

// FullName joins first and last name for display.
func (c *Client) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}
