package store

import (
	"math"

	"posledger/backend/internal/domain"
)

// CheckLineItems walks the items in order against a stock snapshot. For each
// item the product must be present in stock, and the running demand for that
// product (this item plus every earlier item for the same product) must not
// exceed what is on hand. It returns the first violation.
func CheckLineItems(items []domain.LineItem, stock map[int64]int) error {
	demand := make(map[int64]int, len(items))
	for _, item := range items {
		available, ok := stock[item.ProductID]
		if !ok {
			return NotFound(EntityProduct, item.ProductID)
		}
		earlier := demand[item.ProductID]
		if item.Quantity > available-earlier {
			requested := earlier + item.Quantity
			if requested < earlier {
				requested = math.MaxInt
			}
			return &InsufficientStockError{
				ProductID: item.ProductID,
				Available: available,
				Requested: requested,
			}
		}
		demand[item.ProductID] = earlier + item.Quantity
	}
	return nil
}

// ProductIDs returns the distinct product ids referenced by items, in first
// appearance order.
func ProductIDs(items []domain.LineItem) []int64 {
	seen := make(map[int64]struct{}, len(items))
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}
