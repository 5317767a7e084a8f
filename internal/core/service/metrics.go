package service

import (
	"github.com/shopspring/decimal"

	"github.com/prestamos/loan-tracker/internal/core/ports"
)

// nopMetrics is the recorder used until WithMetrics is called.
type nopMetrics struct{}

var _ ports.Metrics = nopMetrics{}

func (nopMetrics) LoginAttempt(string)             {}
func (nopMetrics) AccountRegistered()              {}
func (nopMetrics) ClientCreated()                  {}
func (nopMetrics) TermsApplied(int)                {}
func (nopMetrics) PaymentRecorded(decimal.Decimal) {}
func (nopMetrics) PaymentRejected(string)          {}
