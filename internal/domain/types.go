package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Category represents the spending category enum.
// Order in CategoryPriority is the fixed classification priority; use
// ValidateCategory to ensure validity before use.
type Category string

const (
	CategoryFood          Category = "Food"
	CategoryTravel        Category = "Travel"
	CategoryShopping      Category = "Shopping"
	CategoryBills         Category = "Bills"
	CategoryEntertainment Category = "Entertainment"
	CategoryMedicine      Category = "Medicine"
	CategoryOther         Category = "Other"
)

// CategoryPriority is the fixed tie-break order for classification.
// When a message matches keywords from two categories, the earlier one wins.
var CategoryPriority = []Category{
	CategoryFood,
	CategoryTravel,
	CategoryShopping,
	CategoryBills,
	CategoryEntertainment,
	CategoryMedicine,
	CategoryOther,
}

// Direction represents whether money left (debit) or arrived (credit).
// Use ValidateDirection to ensure validity before use.
type Direction string

const (
	DirectionDebit  Direction = "debit"
	DirectionCredit Direction = "credit"
)

var (
	validCategories = map[Category]struct{}{
		CategoryFood: {}, CategoryTravel: {}, CategoryShopping: {},
		CategoryBills: {}, CategoryEntertainment: {}, CategoryMedicine: {},
		CategoryOther: {},
	}

	validDirections = map[Direction]struct{}{
		DirectionDebit: {}, DirectionCredit: {},
	}
)

// ParsedTransaction is the structured output of a successful parse.
// The zero value is not valid; construct via NewParsedTransaction so the
// amount/direction invariant holds (positive amount, known direction).
type ParsedTransaction struct {
	Amount          decimal.Decimal `json:"amount"`
	Direction       Direction       `json:"direction"`
	Merchant        string          `json:"merchant,omitempty"`
	CategoryGuess   Category        `json:"category_guess,omitempty"`
	TransactionDate time.Time       `json:"transaction_date"`
	// DateInferred is true when no date token was found in the message and
	// TransactionDate was defaulted to the parse time. Downstream duplicate
	// detection can use this to treat the date as approximate.
	DateInferred    bool   `json:"date_was_inferred"`
	AccountSuffix   string `json:"account_suffix,omitempty"`
	ReferenceNumber string `json:"reference_number,omitempty"`
}

// NewParsedTransaction creates a validated transaction result.
// Amount must be strictly positive and direction must be debit or credit;
// merchant, category, account suffix, and reference are optional and set
// by the caller afterwards.
func NewParsedTransaction(amount decimal.Decimal, direction Direction, date time.Time) (*ParsedTransaction, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive, got %s", amount)
	}
	if !ValidateDirection(direction) {
		return nil, fmt.Errorf("invalid direction: %s", direction)
	}
	if date.IsZero() {
		return nil, fmt.Errorf("transaction date cannot be zero")
	}

	return &ParsedTransaction{
		Amount:          amount,
		Direction:       direction,
		TransactionDate: date,
	}, nil
}

// SetCategoryGuess validates and sets the category guess.
func (t *ParsedTransaction) SetCategoryGuess(c Category) error {
	if !ValidateCategory(c) {
		return fmt.Errorf("invalid category: %s", c)
	}
	t.CategoryGuess = c
	return nil
}

// Reason is the rejection reason code for an unparseable message.
type Reason string

const (
	// ReasonNoAmount means no amount pattern matched anywhere in the text.
	ReasonNoAmount Reason = "no-amount"
	// ReasonNoTransactionKeyword means an amount was present but no
	// direction keyword (debited/credited/...) was found.
	ReasonNoTransactionKeyword Reason = "no-transaction-keyword"
	// ReasonLooksLikeOTP means the pre-filter classified the message as a
	// one-time-password prompt.
	ReasonLooksLikeOTP Reason = "looks-like-otp"
	// ReasonLooksLikePromotional means the pre-filter classified the message
	// as promotional content.
	ReasonLooksLikePromotional Reason = "looks-like-promotional"
)

var validReasons = map[Reason]struct{}{
	ReasonNoAmount: {}, ReasonNoTransactionKeyword: {},
	ReasonLooksLikeOTP: {}, ReasonLooksLikePromotional: {},
}

// Rejection is the expected, non-exceptional outcome of a failed parse.
// It carries no partial transaction data.
type Rejection struct {
	Reason Reason
}

// Reject creates a rejection error for the given reason.
// Unknown reasons are a programming error and panic immediately rather than
// surfacing as a bogus rejection downstream.
func Reject(reason Reason) *Rejection {
	if _, ok := validReasons[reason]; !ok {
		panic(fmt.Sprintf("unknown rejection reason: %s", reason))
	}
	return &Rejection{Reason: reason}
}

// Error implements the error interface.
func (r *Rejection) Error() string {
	return fmt.Sprintf("message rejected: %s", r.Reason)
}

// AsRejection unwraps err as a *Rejection if it is one.
// Callers use this to distinguish an expected rejection from a fault.
func AsRejection(err error) (*Rejection, bool) {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}

// ValidateCategory checks if category is valid.
func ValidateCategory(c Category) bool {
	_, ok := validCategories[c]
	return ok
}

// ValidateDirection checks if direction is valid.
func ValidateDirection(d Direction) bool {
	_, ok := validDirections[d]
	return ok
}
