package enums

// CheckoutStep is the ordered position within the checkout flow.
type CheckoutStep string

const (
	StepCart     CheckoutStep = "cart"
	StepShipping CheckoutStep = "shipping"
	StepPayment  CheckoutStep = "payment"
	StepReview   CheckoutStep = "review"
	StepComplete CheckoutStep = "complete"
)

var stepOrder = map[CheckoutStep]int{
	StepCart:     0,
	StepShipping: 1,
	StepPayment:  2,
	StepReview:   3,
	StepComplete: 4,
}

func (s CheckoutStep) IsValid() bool {
	_, ok := stepOrder[s]
	return ok
}

// Ordinal returns the step's position, -1 for unknown steps.
func (s CheckoutStep) Ordinal() int {
	if pos, ok := stepOrder[s]; ok {
		return pos
	}
	return -1
}

// Next returns the step that follows s, or s itself when terminal.
func (s CheckoutStep) Next() CheckoutStep {
	switch s {
	case StepCart:
		return StepShipping
	case StepShipping:
		return StepPayment
	case StepPayment:
		return StepReview
	case StepReview:
		return StepComplete
	}
	return s
}

// ApprovalStatus is the state of the parental approval decision.
type ApprovalStatus string

const (
	ApprovalNotRequired ApprovalStatus = "not_required"
	ApprovalPending     ApprovalStatus = "pending"
	ApprovalApproved    ApprovalStatus = "approved"
)

func (s ApprovalStatus) IsValid() bool {
	switch s {
	case ApprovalNotRequired, ApprovalPending, ApprovalApproved:
		return true
	}
	return false
}
