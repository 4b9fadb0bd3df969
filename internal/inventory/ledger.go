// Package inventory is the consume-only ledger for part stock.
// Consumption is one-directional: there is no restock or reversal.
package inventory

import (
	"errors"

	"garage-service/internal/apperr"
	"garage-service/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Consume decrements a part's on-hand quantity and appends the usage
// record for the given work order. It must run inside a transaction:
// the part row is locked so concurrent consumers serialize on the
// check-and-decrement and can never drive the quantity negative.
// On any failure nothing is mutated.
func Consume(tx *gorm.DB, orderID, partID uint, quantity int) (*model.Part, error) {
	if quantity <= 0 {
		return nil, apperr.Validation("quantity must be a positive number")
	}

	var part model.Part
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&part, partID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("part")
		}
		return nil, err
	}

	if part.Quantity < quantity {
		return nil, apperr.ErrInsufficientStock
	}

	part.Quantity -= quantity
	if err := tx.Model(&model.Part{}).Where("id = ?", part.ID).
		Update("quantity", part.Quantity).Error; err != nil {
		return nil, err
	}

	usage := model.WorkOrderPart{
		WorkOrderID:  orderID,
		PartID:       part.ID,
		QuantityUsed: quantity,
	}
	if err := tx.Create(&usage).Error; err != nil {
		return nil, err
	}

	return &part, nil
}
