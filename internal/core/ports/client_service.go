package ports

import (
	"context"
	"io"

	"github.com/shopspring/decimal"

	"github.com/prestamos/loan-tracker/internal/core/domain"
)

// DocumentUpload is a file received from the browser.
type DocumentUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// ClientDocuments groups the three uploads required to register a client.
type ClientDocuments struct {
	ClientID       *DocumentUpload
	GuarantorID    *DocumentUpload
	ProofOfAddress *DocumentUpload
}

// CreateClientInput carries everything needed to register a borrower.
type CreateClientInput struct {
	OwnerID   string
	Profile   domain.Profile
	Principal decimal.Decimal
	Documents ClientDocuments
}

// ApplyTermsInput selects the repayment plan for a freshly created client.
type ApplyTermsInput struct {
	OwnerID    string
	ClientID   string
	Principal  decimal.Decimal
	TermMonths int
	DueDay     int
}

// ClientList is the dashboard view.
type ClientList struct {
	WithDebt     []domain.Client
	TotalClients int
}

// ClientService is the client registry plus the loan terms calculator.
type ClientService interface {
	Create(ctx context.Context, input CreateClientInput) (*domain.Client, error)
	ListWithDebt(ctx context.Context, ownerID string) (*ClientList, error)
	Get(ctx context.Context, ownerID, clientID string) (*domain.Client, error)
	ApplyTerms(ctx context.Context, input ApplyTermsInput) (decimal.Decimal, error)
	OpenDocument(ctx context.Context, ownerID, key string) (*StoredDocument, error)
}
