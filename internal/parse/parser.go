// Package parse turns raw bank/wallet notification text into structured
// transaction records.
package parse

import (
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/rumor-ml/commons.systems/smsparse/internal/domain"
	"github.com/rumor-ml/commons.systems/smsparse/internal/extract"
	"github.com/rumor-ml/commons.systems/smsparse/internal/rules"
	"github.com/rumor-ml/commons.systems/smsparse/internal/sanitize"
)

// salaryRe canonicalizes credits mentioning SALARY/SAL when no merchant
// phrase is present.
var salaryRe = regexp.MustCompile(`(?i)\bsal(?:ary)?\b`)

// Parser runs the extraction pipeline. It holds only read-only configuration
// and is safe for concurrent use; each Parse call is independent.
type Parser struct {
	engine *rules.Engine
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger used for debug-level parse diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) { p.logger = logger }
}

// WithClock overrides the clock used when a message carries no date token.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) { p.now = now }
}

// New creates a parser backed by the given classification engine.
func New(engine *rules.Engine, opts ...Option) (*Parser, error) {
	if engine == nil {
		return nil, fmt.Errorf("rules engine cannot be nil")
	}

	p := &Parser{
		engine: engine,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Parse extracts a structured transaction from raw notification text.
// senderID is accepted for sender-specific pattern sets later; the current
// rule set is sender-agnostic and uses it only for log context. A failed
// parse returns a *domain.Rejection error; any other error is a fault.
//
// A result is only returned when the amount is positive and a direction
// keyword matched. Merchant, category, account suffix, reference, and date
// are best-effort: their absence never causes rejection.
func (p *Parser) Parse(rawText, senderID string) (*domain.ParsedTransaction, error) {
	text := sanitize.Clean(rawText)

	if reason, rejected := extract.Prefilter(text); rejected {
		p.logger.Debug("message rejected by pre-filter",
			"sender", senderID, "reason", string(reason))
		return nil, domain.Reject(reason)
	}

	amount, ok := extract.Amount(text)
	if !ok {
		return nil, domain.Reject(domain.ReasonNoAmount)
	}

	direction, ok := extract.Direction(text)
	if !ok {
		return nil, domain.Reject(domain.ReasonNoTransactionKeyword)
	}

	// Amount and direction are established; everything below is best-effort.
	merchant := p.resolveMerchant(text, direction)

	date, found := extract.Date(text)
	inferred := !found
	if inferred {
		date = p.now()
		p.logger.Debug("no date token in message, defaulting to current time",
			"sender", senderID, "transaction_date", date)
	}

	txn, err := domain.NewParsedTransaction(amount, direction, date)
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction: %w", err)
	}
	txn.DateInferred = inferred
	txn.Merchant = merchant

	if suffix, ok := extract.AccountSuffix(text); ok {
		txn.AccountSuffix = suffix
	}
	if ref, ok := extract.Reference(text); ok {
		txn.ReferenceNumber = ref
	}

	if err := txn.SetCategoryGuess(p.engine.Classify(merchant, text)); err != nil {
		return nil, fmt.Errorf("failed to set category: %w", err)
	}

	return txn, nil
}

// resolveMerchant applies the merchant rules in order: known-merchant table
// scan over the full text wins over the raw phrase candidate; credits with
// salary language and no phrase candidate canonicalize to "Salary". May
// return empty.
func (p *Parser) resolveMerchant(text string, direction domain.Direction) string {
	candidate, hasCandidate := extract.MerchantCandidate(text)

	if match, ok := p.engine.CanonicalMerchant(text); ok {
		return match.Display
	}
	if hasCandidate {
		return candidate
	}
	if direction == domain.DirectionCredit && salaryRe.MatchString(text) {
		return "Salary"
	}
	return ""
}
