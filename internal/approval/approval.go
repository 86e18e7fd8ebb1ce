// Package approval implements the parental approval gate. Purchases over a
// configured base-currency threshold need a one-time parent PIN confirmation
// before checkout can complete.
package approval

import (
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/bolajon/bolajon-backend/internal/catalog"
	"github.com/bolajon/bolajon-backend/pkg/enums"
	pkgerrors "github.com/bolajon/bolajon-backend/pkg/errors"
	"github.com/bolajon/bolajon-backend/pkg/money"
)

// Decision is the gate's verdict for a checkout session.
type Decision struct {
	Required bool                 `json:"required"`
	Status   enums.ApprovalStatus `json:"status"`
}

// NotRequired is the zero decision for totals under the threshold.
func NotRequired() Decision {
	return Decision{Required: false, Status: enums.ApprovalNotRequired}
}

// Evaluate compares the grand total against a base-currency threshold. The
// total arrives in the display currency and is converted back to base first,
// so flipping display currency never moves the threshold.
func Evaluate(grandTotal decimal.Decimal, currency catalog.Currency, thresholdBase decimal.Decimal) Decision {
	baseTotal := money.ToBase(grandTotal, currency.RateToBase)
	if baseTotal.GreaterThan(thresholdBase) {
		return Decision{Required: true, Status: enums.ApprovalPending}
	}
	return NotRequired()
}

// Merge applies the stickiness rules: once a session has required approval,
// recomputing a smaller total does not lift the requirement, and an approval
// already granted survives recomputation.
func Merge(prev, next Decision) Decision {
	if !prev.Required {
		return next
	}
	merged := Decision{Required: true, Status: enums.ApprovalPending}
	if prev.Status == enums.ApprovalApproved {
		merged.Status = enums.ApprovalApproved
	}
	return merged
}

// Approve performs the one-way Pending to Approved transition after checking
// the PIN against the configured bcrypt hash. A wrong PIN leaves the
// decision untouched.
func Approve(d Decision, pinHash, pin string) (Decision, error) {
	if !d.Required || d.Status != enums.ApprovalPending {
		return d, pkgerrors.New(pkgerrors.CodeStateConflict, "no pending approval for this session")
	}
	if err := VerifyPIN(pinHash, pin); err != nil {
		return d, err
	}
	d.Status = enums.ApprovalApproved
	return d, nil
}

// VerifyPIN checks a parent PIN against its bcrypt hash.
func VerifyPIN(pinHash, pin string) error {
	if pinHash == "" {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "parental approval is not configured")
	}
	if pin == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "pin is required")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(pinHash), []byte(pin)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeForbidden, err, "pin does not match")
	}
	return nil
}
