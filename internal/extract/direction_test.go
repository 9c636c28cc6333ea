package extract

import (
	"testing"

	"github.com/rumor-ml/commons.systems/smsparse/internal/domain"
)

func TestDirection(t *testing.T) {
	tests := []struct {
		name string
		text string
		want domain.Direction
	}{
		{"debited", "₹299 debited from A/c **1234", domain.DirectionDebit},
		{"paid", "You paid ₹1,200 to UBER", domain.DirectionDebit},
		{"spent", "Rs. 99 spent on your card", domain.DirectionDebit},
		{"withdrawn", "Rs. 2,000 withdrawn at ATM", domain.DirectionDebit},
		{"purchase of", "Purchase of Rs. 540 at DMART", domain.DirectionDebit},
		{"credited", "INR 50,000 credited to A/c **5678", domain.DirectionCredit},
		{"received", "You received Rs. 150 from Rahul", domain.DirectionCredit},
		{"deposited", "Rs. 5,000 deposited in your account", domain.DirectionCredit},
		{"case insensitive", "RS. 10 DEBITED", domain.DirectionDebit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Direction(tt.text)
			if !ok {
				t.Fatalf("Direction(%q) matched nothing", tt.text)
			}
			if got != tt.want {
				t.Errorf("Direction(%q) = %s, want %s", tt.text, got, tt.want)
			}
		})
	}
}

func TestDirection_DebitPrecedence(t *testing.T) {
	// Text containing both keyword sets must always resolve to debit.
	texts := []string{
		"₹500 debited; amount will be credited back within 5 days",
		"You paid ₹100. Cashback credited to your wallet",
		"Refund received? No - Rs. 250 debited again",
	}
	for _, text := range texts {
		got, ok := Direction(text)
		if !ok {
			t.Fatalf("Direction(%q) matched nothing", text)
		}
		if got != domain.DirectionDebit {
			t.Errorf("Direction(%q) = %s, want debit", text, got)
		}
	}
}

func TestDirection_NoMatch(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"balance only", "Your available balance is ₹5,000"},
		{"prepaid does not trigger paid", "Your prepaid recharge plan expires soon"},
		{"unrelated text", "Meeting at 5pm tomorrow"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, ok := Direction(tt.text); ok {
				t.Errorf("Direction(%q) = %s, want no match", tt.text, got)
			}
		})
	}
}
