// Package cart owns the canonical line-item set for one shopper. The Cart
// value is pure: every mutation recomputes the derived totals, so ItemCount
// and Subtotal can never drift from the items they summarize. Persistence
// (redis for guest carts, postgres for shopper carts) wraps around the value
// without adding state of its own.
package cart

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dbtypes "github.com/bolajon/bolajon-backend/pkg/db/types"
	"github.com/bolajon/bolajon-backend/pkg/enums"
	pkgerrors "github.com/bolajon/bolajon-backend/pkg/errors"
)

// DefaultMaxItemQuantity caps one line item's quantity. Reconciliation clamps
// to it; direct mutations reject quantities beyond it.
const DefaultMaxItemQuantity = 99

// LineItem is one product-quantity pair. UnitPrice is snapshotted when the
// item is first added and never re-fetched within the cart's lifetime.
type LineItem struct {
	ID        uuid.UUID               `json:"id"`
	ProductID uuid.UUID               `json:"product_id"`
	Quantity  int                     `json:"quantity"`
	UnitPrice decimal.Decimal         `json:"unit_price"`
	Snapshot  dbtypes.ProductSnapshot `json:"snapshot"`
}

// Product carries the catalog data captured into a line-item snapshot.
type Product struct {
	ID        uuid.UUID
	UnitPrice decimal.Decimal
	Snapshot  dbtypes.ProductSnapshot
}

// Cart is the serializable cart value. ItemCount and Subtotal are recomputed
// projections, never independently written.
type Cart struct {
	ID        uuid.UUID       `json:"id,omitempty"`
	Mode      enums.CartMode  `json:"mode"`
	Items     []LineItem      `json:"items"`
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	MaxQty    int             `json:"-"`
}

// New returns an empty cart in the given mode.
func New(mode enums.CartMode) *Cart {
	c := &Cart{Mode: mode, Items: []LineItem{}, MaxQty: DefaultMaxItemQuantity}
	c.recount()
	return c
}

func (c *Cart) maxQty() int {
	if c.MaxQty > 0 {
		return c.MaxQty
	}
	return DefaultMaxItemQuantity
}

// AddItem merges by product id, snapshotting the price on first add. Non
// positive quantities and quantities past the per-item cap are rejected and
// leave the cart untouched.
func (c *Cart) AddItem(product Product, quantity int) error {
	if quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeInvalidQuantity, "quantity must be a positive integer").
			WithDetails(map[string]any{"quantity": quantity})
	}
	if product.ID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if product.UnitPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}

	for i := range c.Items {
		if c.Items[i].ProductID == product.ID {
			next := c.Items[i].Quantity + quantity
			if next > c.maxQty() {
				return pkgerrors.New(pkgerrors.CodeInvalidQuantity, "quantity exceeds the per-item limit").
					WithDetails(map[string]any{"max": c.maxQty()})
			}
			c.Items[i].Quantity = next
			c.recount()
			return nil
		}
	}

	if quantity > c.maxQty() {
		return pkgerrors.New(pkgerrors.CodeInvalidQuantity, "quantity exceeds the per-item limit").
			WithDetails(map[string]any{"max": c.maxQty()})
	}
	c.Items = append(c.Items, LineItem{
		ID:        uuid.New(),
		ProductID: product.ID,
		Quantity:  quantity,
		UnitPrice: product.UnitPrice,
		Snapshot:  product.Snapshot,
	})
	c.recount()
	return nil
}

// UpdateQuantity replaces the quantity; zero or negative removes the line.
// Unknown product ids are a no-op.
func (c *Cart) UpdateQuantity(productID uuid.UUID, quantity int) error {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			if quantity > c.maxQty() {
				return pkgerrors.New(pkgerrors.CodeInvalidQuantity, "quantity exceeds the per-item limit").
					WithDetails(map[string]any{"max": c.maxQty()})
			}
			if quantity <= 0 {
				c.Items = append(c.Items[:i], c.Items[i+1:]...)
			} else {
				c.Items[i].Quantity = quantity
			}
			c.recount()
			return nil
		}
	}
	return nil
}

// RemoveItem drops the line if present; removing an absent product succeeds.
func (c *Cart) RemoveItem(productID uuid.UUID) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.recount()
			return
		}
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = []LineItem{}
	c.recount()
}

// IsEmpty reports whether the cart holds no items.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Item returns the line for a product, or nil.
func (c *Cart) Item(productID uuid.UUID) *LineItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

func (c *Cart) recount() {
	count := 0
	subtotal := decimal.Zero
	for _, item := range c.Items {
		count += item.Quantity
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	c.ItemCount = count
	c.Subtotal = subtotal
}

// Reconcile merges a guest cart into the shopper's cart at login. Per-product
// quantities are summed and clamped at the cap, so the merge is commutative
// over item sets. Remote line order is preserved; new local items are
// appended in product-id order to keep the result deterministic. The returned
// cart is canonical; the caller clears the local cart afterwards.
func Reconcile(local, remote *Cart) *Cart {
	merged := New(enums.CartModeRemote)
	if remote != nil {
		merged.ID = remote.ID
		if remote.MaxQty > 0 {
			merged.MaxQty = remote.MaxQty
		}
		merged.Items = make([]LineItem, len(remote.Items))
		copy(merged.Items, remote.Items)
	}

	if local != nil {
		appended := make([]LineItem, 0)
		for _, item := range local.Items {
			if existing := merged.Item(item.ProductID); existing != nil {
				existing.Quantity = clampQty(existing.Quantity+item.Quantity, merged.maxQty())
				continue
			}
			line := item
			line.Quantity = clampQty(line.Quantity, merged.maxQty())
			appended = append(appended, line)
		}
		sort.Slice(appended, func(i, j int) bool {
			return appended[i].ProductID.String() < appended[j].ProductID.String()
		})
		merged.Items = append(merged.Items, appended...)
	}

	merged.recount()
	return merged
}

func clampQty(qty, max int) int {
	if qty > max {
		return max
	}
	return qty
}
