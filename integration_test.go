package smsparse_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rumor-ml/commons.systems/smsparse/internal/dedup"
	"github.com/rumor-ml/commons.systems/smsparse/internal/domain"
	"github.com/rumor-ml/commons.systems/smsparse/internal/parse"
	"github.com/rumor-ml/commons.systems/smsparse/internal/rules"
	"github.com/rumor-ml/commons.systems/smsparse/internal/sender"
)

func newParser(t *testing.T) *parse.Parser {
	t.Helper()
	engine, err := rules.LoadEmbedded()
	if err != nil {
		t.Fatalf("failed to load embedded rules: %v", err)
	}
	p, err := parse.New(engine)
	if err != nil {
		t.Fatalf("failed to create parser: %v", err)
	}
	return p
}

// TestIntegration_MessageBatch runs a realistic batch through the full
// pipeline: parse, classify, fingerprint, and window dedup.
func TestIntegration_MessageBatch(t *testing.T) {
	p := newParser(t)
	store := dedup.NewStore(dedup.DefaultWindow)
	registry := sender.New()

	type message struct {
		sender string
		text   string
	}
	batch := []message{
		{"VM-HDFCBK", "Rs. 299 debited from A/c **1234 on 05/11/2024 to Zomato. Ref: 123456789. Avl bal: Rs. 15,000"},
		// Same notification delivered twice by the carrier.
		{"VM-HDFCBK", "Rs. 299 debited from A/c **1234 on 05/11/2024 to Zomato. Ref: 123456789. Avl bal: Rs. 15,000"},
		{"AD-SBIINB", "Your a/c no. XX5678 credited INR 50,000 on 01-11-2024 by SALARY NOV. Avl Bal INR 1,00,000"},
		{"VM-ICICIB", "INR 1,200.00 spent on ICICI Card XX7890 at Uber on 07 Nov 2024. Ref no. GP123456"},
		{"AX-VERIFY", "Your OTP for transaction of Rs. 5000 is 482913. Do not share with anyone."},
		{"AD-PROMO", "Mega sale! Up to 70% off. T&C apply. Unsubscribe: sms STOP"},
	}

	var (
		parsed     int
		duplicates int
		rejections []domain.Reason
	)
	now := time.Now()

	for i, msg := range batch {
		txn, err := p.Parse(msg.text, msg.sender)
		if err != nil {
			rej, ok := domain.AsRejection(err)
			if !ok {
				t.Fatalf("message %d: unexpected error: %v", i, err)
			}
			rejections = append(rejections, rej.Reason)
			continue
		}

		fp := dedup.Fingerprint(txn.Amount, txn.Merchant, txn.TransactionDate)
		dup, err := store.Observe(fp, txn.Merchant, now)
		if err != nil {
			t.Fatalf("message %d: observe failed: %v", i, err)
		}
		if dup {
			duplicates++
			continue
		}
		parsed++

		if _, ok := registry.Lookup(msg.sender); !ok {
			t.Errorf("message %d: expected known sender %s", i, msg.sender)
		}
	}

	if parsed != 3 {
		t.Errorf("expected 3 parsed transactions, got %d", parsed)
	}
	if duplicates != 1 {
		t.Errorf("expected 1 duplicate, got %d", duplicates)
	}
	want := []domain.Reason{domain.ReasonLooksLikeOTP, domain.ReasonLooksLikePromotional}
	if len(rejections) != len(want) {
		t.Fatalf("expected %d rejections, got %d: %v", len(want), len(rejections), rejections)
	}
	for i, reason := range want {
		if rejections[i] != reason {
			t.Errorf("rejection %d = %s, want %s", i, rejections[i], reason)
		}
	}
}

// TestIntegration_ScenarioFields checks the extracted fields end to end for
// a debit and a credit notification.
func TestIntegration_ScenarioFields(t *testing.T) {
	p := newParser(t)

	txn, err := p.Parse("Rs. 299 debited from A/c **1234 on 05/11/2024 to Zomato. Ref: 123456789. Avl bal: Rs. 15,000", "VM-HDFCBK")
	if err != nil {
		t.Fatalf("debit parse failed: %v", err)
	}
	if !txn.Amount.Equal(decimal.NewFromInt(299)) {
		t.Errorf("amount = %s, want 299", txn.Amount)
	}
	if txn.Direction != domain.DirectionDebit {
		t.Errorf("direction = %s, want debit", txn.Direction)
	}
	if txn.Merchant != "Zomato" {
		t.Errorf("merchant = %q, want Zomato", txn.Merchant)
	}
	if txn.CategoryGuess != domain.CategoryFood {
		t.Errorf("category = %s, want Food", txn.CategoryGuess)
	}
	if txn.AccountSuffix != "1234" {
		t.Errorf("account suffix = %q, want 1234", txn.AccountSuffix)
	}
	if txn.ReferenceNumber != "123456789" {
		t.Errorf("reference = %q, want 123456789", txn.ReferenceNumber)
	}
	if txn.DateInferred {
		t.Error("date should not be inferred when present in text")
	}
	wantDate := time.Date(2024, 11, 5, 0, 0, 0, 0, time.UTC)
	if !txn.TransactionDate.Equal(wantDate) {
		t.Errorf("date = %s, want %s", txn.TransactionDate, wantDate)
	}

	credit, err := p.Parse("Your a/c no. XX5678 credited INR 50,000 on 01-11-2024 by SALARY NOV.", "AD-SBIINB")
	if err != nil {
		t.Fatalf("credit parse failed: %v", err)
	}
	if credit.Direction != domain.DirectionCredit {
		t.Errorf("direction = %s, want credit", credit.Direction)
	}
	if !credit.Amount.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("amount = %s, want 50000", credit.Amount)
	}
	if credit.Merchant != "Salary" {
		t.Errorf("merchant = %q, want Salary", credit.Merchant)
	}
	if credit.AccountSuffix != "5678" {
		t.Errorf("account suffix = %q, want 5678", credit.AccountSuffix)
	}
}

// TestIntegration_StateRoundTrip persists fingerprints between two parsing
// sessions and checks the second session flags the replayed message.
func TestIntegration_StateRoundTrip(t *testing.T) {
	p := newParser(t)
	statePath := filepath.Join(t.TempDir(), "state.json")
	text := "Rs. 299 debited from A/c **1234 on 05/11/2024 to Zomato. Ref: 123456789"
	now := time.Now()

	// Session one: parse, record, save.
	store := dedup.NewStore(dedup.DefaultWindow)
	txn, err := p.Parse(text, "VM-HDFCBK")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	fp := dedup.Fingerprint(txn.Amount, txn.Merchant, txn.TransactionDate)
	if dup, err := store.Observe(fp, "det-1", now); err != nil || dup {
		t.Fatalf("first observe: dup=%v err=%v", dup, err)
	}
	if err := dedup.SaveState(store.Snapshot(), statePath); err != nil {
		t.Fatalf("save state failed: %v", err)
	}

	// Session two: reload and replay the same message.
	state, err := dedup.LoadState(statePath)
	if err != nil {
		t.Fatalf("load state failed: %v", err)
	}
	restored, err := dedup.NewStoreFromState(state)
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	txn2, err := p.Parse(text, "VM-HDFCBK")
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}
	fp2 := dedup.Fingerprint(txn2.Amount, txn2.Merchant, txn2.TransactionDate)
	if fp2 != fp {
		t.Fatalf("fingerprint changed across sessions: %s vs %s", fp, fp2)
	}
	dup, err := restored.Observe(fp2, "det-2", now.Add(time.Minute))
	if err != nil {
		t.Fatalf("second observe failed: %v", err)
	}
	if !dup {
		t.Error("expected replayed message to be a duplicate after state reload")
	}
}
