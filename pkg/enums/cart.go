package enums

// CartMode distinguishes guest-held carts from session-bound carts.
type CartMode string

const (
	CartModeLocal  CartMode = "local"
	CartModeRemote CartMode = "remote"
)

func (m CartMode) IsValid() bool {
	switch m {
	case CartModeLocal, CartModeRemote:
		return true
	}
	return false
}

// CartStatus tracks the lifecycle of a persisted cart.
type CartStatus string

const (
	CartStatusActive    CartStatus = "active"
	CartStatusConverted CartStatus = "converted"
	CartStatusAbandoned CartStatus = "abandoned"
)

func (s CartStatus) IsValid() bool {
	switch s {
	case CartStatusActive, CartStatusConverted, CartStatusAbandoned:
		return true
	}
	return false
}
