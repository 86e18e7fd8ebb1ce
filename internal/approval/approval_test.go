package approval

import (
	"testing"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/bolajon/bolajon-backend/internal/catalog"
	"github.com/bolajon/bolajon-backend/pkg/enums"
	pkgerrors "github.com/bolajon/bolajon-backend/pkg/errors"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func mustCurrency(t *testing.T, code string) catalog.Currency {
	t.Helper()

	c, err := catalog.CurrencyByCode(code)
	if err != nil {
		t.Fatalf("currency %s: %v", code, err)
	}
	return c
}

func pinHash(t *testing.T, pin string) string {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing pin: %v", err)
	}
	return string(hash)
}

func TestEvaluateThreshold(t *testing.T) {
	t.Parallel()

	uzs := mustCurrency(t, "UZS")
	threshold := dec("100000")

	over := Evaluate(dec("150000"), uzs, threshold)
	if !over.Required || over.Status != enums.ApprovalPending {
		t.Fatalf("150000 over 100000 threshold: %+v", over)
	}

	under := Evaluate(dec("80000"), uzs, threshold)
	if under.Required || under.Status != enums.ApprovalNotRequired {
		t.Fatalf("80000 under threshold: %+v", under)
	}

	exact := Evaluate(dec("100000"), uzs, threshold)
	if exact.Required {
		t.Fatalf("exact threshold must not require approval: %+v", exact)
	}
}

func TestEvaluateConvertsBackToBase(t *testing.T) {
	t.Parallel()

	usd := mustCurrency(t, "USD")
	threshold := dec("100000")

	// 11.85 USD is 150,000 UZS at 0.000079; currency flips never move the gate.
	got := Evaluate(dec("11.85"), usd, threshold)
	if !got.Required {
		t.Fatalf("expected approval required, got %+v", got)
	}
}

func TestMergeStickiness(t *testing.T) {
	t.Parallel()

	required := Decision{Required: true, Status: enums.ApprovalPending}
	approved := Decision{Required: true, Status: enums.ApprovalApproved}

	// Dropping the total below the threshold does not lift the requirement.
	if got := Merge(required, NotRequired()); !got.Required || got.Status != enums.ApprovalPending {
		t.Fatalf("required downgraded: %+v", got)
	}

	// A granted approval survives recomputation.
	if got := Merge(approved, required); got.Status != enums.ApprovalApproved {
		t.Fatalf("approval reverted: %+v", got)
	}

	// A fresh requirement replaces a prior not-required verdict.
	if got := Merge(NotRequired(), required); !got.Required {
		t.Fatalf("requirement not raised: %+v", got)
	}
}

func TestApproveTransition(t *testing.T) {
	t.Parallel()

	hash := pinHash(t, "4321")
	pending := Decision{Required: true, Status: enums.ApprovalPending}

	got, err := Approve(pending, hash, "4321")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != enums.ApprovalApproved {
		t.Fatalf("expected approved, got %+v", got)
	}
}

func TestApproveWrongPINLeavesDecision(t *testing.T) {
	t.Parallel()

	hash := pinHash(t, "4321")
	pending := Decision{Required: true, Status: enums.ApprovalPending}

	got, err := Approve(pending, hash, "0000")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != enums.ApprovalPending {
		t.Fatalf("decision mutated on failure: %+v", got)
	}
}

func TestApproveWithoutPendingDecision(t *testing.T) {
	t.Parallel()

	hash := pinHash(t, "4321")

	_, err := Approve(NotRequired(), hash, "4321")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("unexpected error: %v", err)
	}

	approved := Decision{Required: true, Status: enums.ApprovalApproved}
	_, err = Approve(approved, hash, "4321")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestVerifyPINRequiresConfiguration(t *testing.T) {
	t.Parallel()

	if err := VerifyPIN("", "1234"); pkgerrors.As(err) == nil {
		t.Fatal("expected error for missing hash")
	}
	if err := VerifyPIN(pinHash(t, "1234"), ""); pkgerrors.As(err) == nil {
		t.Fatal("expected error for missing pin")
	}
}
