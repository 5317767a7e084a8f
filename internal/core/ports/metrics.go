package ports

import "github.com/shopspring/decimal"

// Metrics records business events. Implementations must be safe for
// concurrent use.
type Metrics interface {
	LoginAttempt(result string)
	AccountRegistered()
	ClientCreated()
	TermsApplied(termMonths int)
	PaymentRecorded(amount decimal.Decimal)
	PaymentRejected(reason string)
}
