package services

import "TakeawayPos/app/models"

// TicketDelta computes the cart lines that still need to go to the kitchen.
//
// Without a recalled baseline, a line is pending when its quantity exceeds
// what was already printed this session. With a recalled order as baseline,
// lines that exist in the baseline are compared against the baseline quantity
// instead, and brand new lines are compared against their printed count.
// The result preserves cart order and carries only the unprinted quantity.
func TicketDelta(cart []models.CartItem, baseline *models.HeldOrder) []models.CartItem {
	pending := []models.CartItem{}

	for _, item := range cart {
		if baseline != nil {
			if existing := baseline.FindItem(item.ID); existing != nil {
				if item.Quantity > existing.Quantity {
					delta := item
					delta.Quantity = item.Quantity - existing.Quantity
					pending = append(pending, delta)
				}
				continue
			}
		}

		if item.Quantity > item.PrintedQuantity {
			delta := item
			delta.Quantity = item.Quantity - item.PrintedQuantity
			pending = append(pending, delta)
		}
	}

	return pending
}
