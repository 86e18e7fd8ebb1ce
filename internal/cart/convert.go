package cart

import (
	"github.com/bolajon/bolajon-backend/pkg/db/models"
	"github.com/bolajon/bolajon-backend/pkg/enums"
)

// fromRecord projects a persisted cart into the pure Cart value. Totals are
// recomputed from the rows, never read back from storage.
func fromRecord(record *models.CartRecord) *Cart {
	c := New(enums.CartModeRemote)
	if record == nil {
		return c
	}
	c.ID = record.ID
	c.Items = make([]LineItem, 0, len(record.Items))
	for _, row := range record.Items {
		c.Items = append(c.Items, LineItem{
			ID:        row.ID,
			ProductID: row.ProductID,
			Quantity:  row.Quantity,
			UnitPrice: row.UnitPrice,
			Snapshot:  row.ProductSnapshot,
		})
	}
	c.recount()
	return c
}

// toItems flattens the cart lines into rows for ReplaceItems.
func toItems(c *Cart) []models.CartItem {
	if c == nil {
		return nil
	}
	rows := make([]models.CartItem, 0, len(c.Items))
	for _, item := range c.Items {
		rows = append(rows, models.CartItem{
			ID:              item.ID,
			CartID:          c.ID,
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			ProductSnapshot: item.Snapshot,
		})
	}
	return rows
}
