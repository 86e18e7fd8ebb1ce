package checkout

import (
	cartpkg "github.com/bolajon/bolajon-backend/internal/cart"
	"github.com/bolajon/bolajon-backend/pkg/enums"
	pkgerrors "github.com/bolajon/bolajon-backend/pkg/errors"
)

// GuardAdvance validates the forward transition out of the session's current
// step. Guards are pure over the session and cart; a failed guard leaves the
// session unchanged.
func GuardAdvance(s *Session, c *cartpkg.Cart) error {
	switch s.Step {
	case enums.StepCart:
		if c == nil || c.IsEmpty() {
			return pkgerrors.NewStepValidation("items", "cart must contain at least one item")
		}
	case enums.StepShipping:
		if s.ShippingAddress.IsZero() {
			return pkgerrors.NewStepValidation("shipping_address", "a shipping address is required")
		}
	case enums.StepPayment:
		if s.PaymentMethodID == "" {
			return pkgerrors.NewStepValidation("payment_method_id", "a payment method is required")
		}
		if s.Approval.Status == enums.ApprovalPending {
			return pkgerrors.New(pkgerrors.CodeApprovalRequired, "parental approval is pending")
		}
	case enums.StepReview:
		if !s.TermsAccepted {
			return pkgerrors.NewStepValidation("terms_accepted", "terms must be accepted")
		}
		if s.Approval.Status == enums.ApprovalPending {
			return pkgerrors.New(pkgerrors.CodeApprovalRequired, "parental approval is pending")
		}
	case enums.StepComplete:
		return pkgerrors.New(pkgerrors.CodeStateConflict, "checkout is already complete")
	default:
		return pkgerrors.New(pkgerrors.CodeStateConflict, "unknown checkout step")
	}
	return nil
}

// GuardBack validates backward navigation to an earlier step. Going back
// never clears downstream fields; only forward re-validation may.
func GuardBack(s *Session, target enums.CheckoutStep) error {
	if !target.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown checkout step")
	}
	if s.Step == enums.StepComplete {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "checkout is already complete")
	}
	if target.Ordinal() >= s.Step.Ordinal() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "can only navigate to an earlier step")
	}
	return nil
}
