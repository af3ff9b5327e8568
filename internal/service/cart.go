package service

import (
	"github.com/annapurna-pos/api/internal/database"
	"github.com/shopspring/decimal"
)

// CartKey identifies a cart line. The same menu item ordered in two
// different variants is two separate lines.
type CartKey struct {
	MenuItemID int64
	Variant    string
}

// CartLine is one entry of a draft order.
type CartLine struct {
	Key      CartKey
	Quantity int32
	Note     string
}

// Menu indexes menu items by id for cart validation and pricing.
type Menu map[int64]database.MenuItem

func MenuFromItems(items []database.MenuItem) Menu {
	m := make(Menu, len(items))
	for _, item := range items {
		m[item.ID] = item
	}
	return m
}

// ResolvePrice returns the price for the given variant, falling back to the
// item's base price when the variant is unknown or empty.
func ResolvePrice(item database.MenuItem, variantName string) decimal.Decimal {
	if variantName != "" {
		for _, v := range item.Variants {
			if v.Name == variantName {
				return v.Price
			}
		}
	}
	return numericToDecimal(item.Price)
}

// Cart accumulates lines for one seat before submission. Lines keep their
// insertion order so the submitted order reads the way it was keyed in.
type Cart struct {
	lines map[CartKey]*CartLine
	order []CartKey
}

func NewCart() *Cart {
	return &Cart{lines: make(map[CartKey]*CartLine)}
}

// UpdateQuantity applies a signed delta to the line identified by item and
// variant. A line whose quantity reaches zero is removed. Increments are
// pre-checked against the menu snapshot: unavailable items are rejected, and
// for tracked items the cart's total weighted demand for the item (across
// all its variant lines) must fit within the snapshot's stock count.
func (c *Cart) UpdateQuantity(menu Menu, menuItemID int64, delta int32, variantName string) error {
	item, ok := menu[menuItemID]
	if !ok {
		return ErrMenuItemNotFound
	}
	key := CartKey{MenuItemID: menuItemID, Variant: variantName}

	if delta > 0 {
		if !item.Available {
			return ErrItemUnavailable
		}
		if item.TrackInventory {
			demand := c.weightedDemand(menuItemID).
				Add(PortionWeight(variantName).Mul(decimal.NewFromInt32(delta)))
			if demand.GreaterThan(numericToDecimal(item.StockCount)) {
				return &InsufficientStockError{MenuItemID: item.ID, Name: item.Name}
			}
		}
	}

	line, exists := c.lines[key]
	if !exists {
		if delta <= 0 {
			return nil
		}
		c.lines[key] = &CartLine{Key: key, Quantity: delta}
		c.order = append(c.order, key)
		return nil
	}

	line.Quantity += delta
	if line.Quantity <= 0 {
		c.remove(key)
	}
	return nil
}

// SetNote attaches a kitchen note to an existing line. Unknown keys are
// ignored.
func (c *Cart) SetNote(key CartKey, note string) {
	if line, ok := c.lines[key]; ok {
		line.Note = note
	}
}

// Subtotal prices the cart against the menu snapshot. Lines whose item has
// vanished from the snapshot contribute nothing.
func (c *Cart) Subtotal(menu Menu) decimal.Decimal {
	total := decimal.Zero
	for _, key := range c.order {
		line := c.lines[key]
		item, ok := menu[key.MenuItemID]
		if !ok {
			continue
		}
		total = total.Add(ResolvePrice(item, key.Variant).Mul(decimal.NewFromInt32(line.Quantity)))
	}
	return total
}

// Lines returns the cart's lines in insertion order.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, *c.lines[key])
	}
	return out
}

func (c *Cart) Empty() bool {
	return len(c.lines) == 0
}

func (c *Cart) Clear() {
	c.lines = make(map[CartKey]*CartLine)
	c.order = nil
}

// weightedDemand sums stock units the cart already claims for one menu item
// across all of its variant lines.
func (c *Cart) weightedDemand(menuItemID int64) decimal.Decimal {
	demand := decimal.Zero
	for key, line := range c.lines {
		if key.MenuItemID != menuItemID {
			continue
		}
		demand = demand.Add(PortionWeight(key.Variant).Mul(decimal.NewFromInt32(line.Quantity)))
	}
	return demand
}

func (c *Cart) remove(key CartKey) {
	delete(c.lines, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
