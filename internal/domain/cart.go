package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// MaxLineQuantity caps the quantity of a single cart line.
const MaxLineQuantity = 99

var (
	// ErrUnknownVariant is returned when an add names a variant the item does not offer.
	ErrUnknownVariant = errors.New("unknown variant")

	// ErrQuantityLimit is returned when a line would exceed MaxLineQuantity or
	// its total would not fit in Money.
	ErrQuantityLimit = errors.New("quantity limit exceeded")
)

// CartLine is one entry of the cart: an item snapshot, its selection and a quantity.
type CartLine struct {
	LineID        string  `json:"line_id"`
	ItemID        string  `json:"item_id"`
	Name          string  `json:"name"`
	UnitPrice     Money   `json:"unit_price"`
	ImageURL      string  `json:"image_url,omitempty"`
	VariantValue  *string `json:"variant_value"`
	VariantLabel  *string `json:"variant_label"`
	AddOnSelected bool    `json:"add_on_selected"`
	AddOnLabel    string  `json:"add_on_label,omitempty"`
	Quantity      int     `json:"quantity"`
}

// LineTotal is the unit price times the quantity.
func (l CartLine) LineTotal() Money {
	return l.UnitPrice.Mul(l.Quantity)
}

func (l CartLine) matches(itemID string, variant *string, addOn bool) bool {
	if l.ItemID != itemID || l.AddOnSelected != addOn {
		return false
	}
	if l.VariantValue == nil || variant == nil {
		return l.VariantValue == nil && variant == nil
	}
	return *l.VariantValue == *variant
}

// Cart holds the lines of one visitor in insertion order. It is not safe for
// concurrent use; callers serialize access.
type Cart struct {
	lines []CartLine
	newID func() string
}

// NewCart seeds a cart with previously persisted lines. Lines with a
// quantity outside 1..MaxLineQuantity, or that would overflow the subtotal,
// are dropped.
func NewCart(lines []CartLine) *Cart {
	c := &Cart{newID: uuid.NewString}
	for _, l := range lines {
		if l.Quantity < 1 || l.Quantity > MaxLineQuantity {
			continue
		}
		if c.checkLine(-1, l.UnitPrice, l.Quantity) != nil {
			continue
		}
		c.lines = append(c.lines, l)
	}
	return c
}

// SetIDGenerator replaces the line id generator.
func (c *Cart) SetIDGenerator(fn func() string) {
	c.newID = fn
}

// Add puts quantity units of item into the cart. A quantity below 1 counts as 1.
// When the item has variants and none is given the first one is used. The add-on
// is ignored for items without one. A line with the same item, variant and
// add-on state absorbs the quantity and keeps its unit price; otherwise a new
// line is appended.
func (c *Cart) Add(item MenuItem, quantity int, variant *string, addOn bool) (CartLine, error) {
	if quantity < 1 {
		quantity = 1
	}
	if quantity > MaxLineQuantity {
		return CartLine{}, fmt.Errorf("%w: at most %d per line", ErrQuantityLimit, MaxLineQuantity)
	}

	price := item.Price
	var variantValue, variantLabel *string

	switch {
	case variant != nil:
		v, ok := item.Variant(*variant)
		if !ok {
			return CartLine{}, fmt.Errorf("%w %q for item %s", ErrUnknownVariant, *variant, item.ID)
		}
		variantValue, variantLabel = strPtr(v.Value), strPtr(v.Label)
		if v.Price != nil {
			price = *v.Price
		}
	case len(item.Variants) > 0:
		v := item.Variants[0]
		variantValue, variantLabel = strPtr(v.Value), strPtr(v.Label)
		if v.Price != nil {
			price = *v.Price
		}
	}

	addOnLabel := ""
	if item.AddOn == nil {
		addOn = false
	} else if addOn {
		var ok bool
		if price, ok = price.AddChecked(item.AddOn.Surcharge); !ok {
			return CartLine{}, fmt.Errorf("%w: unit price overflows", ErrQuantityLimit)
		}
		addOnLabel = item.AddOn.Label
	}

	for i := range c.lines {
		if c.lines[i].matches(item.ID, variantValue, addOn) {
			merged := c.lines[i].Quantity + quantity
			if err := c.checkLine(i, c.lines[i].UnitPrice, merged); err != nil {
				return CartLine{}, err
			}
			c.lines[i].Quantity = merged
			return c.lines[i], nil
		}
	}

	if err := c.checkLine(-1, price, quantity); err != nil {
		return CartLine{}, err
	}

	line := CartLine{
		LineID:        c.newID(),
		ItemID:        item.ID,
		Name:          item.Name,
		UnitPrice:     price,
		ImageURL:      item.ImageURL,
		VariantValue:  variantValue,
		VariantLabel:  variantLabel,
		AddOnSelected: addOn,
		AddOnLabel:    addOnLabel,
		Quantity:      quantity,
	}
	c.lines = append(c.lines, line)
	return line, nil
}

// Remove deletes the line and reports whether it existed.
func (c *Cart) Remove(lineID string) bool {
	for i := range c.lines {
		if c.lines[i].LineID == lineID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return true
		}
	}
	return false
}

// SetQuantity replaces the quantity of a line. n <= 0 removes the line.
// It reports whether the line existed; a quantity above MaxLineQuantity
// leaves the line untouched and returns ErrQuantityLimit.
func (c *Cart) SetQuantity(lineID string, n int) (bool, error) {
	if n <= 0 {
		return c.Remove(lineID), nil
	}
	for i := range c.lines {
		if c.lines[i].LineID == lineID {
			if err := c.checkLine(i, c.lines[i].UnitPrice, n); err != nil {
				return true, err
			}
			c.lines[i].Quantity = n
			return true, nil
		}
	}
	return false, nil
}

// checkLine verifies that line i (or a new line when i < 0) can hold qty units
// at price without exceeding MaxLineQuantity or overflowing the cart subtotal.
func (c *Cart) checkLine(i int, price Money, qty int) error {
	if qty > MaxLineQuantity {
		return fmt.Errorf("%w: at most %d per line", ErrQuantityLimit, MaxLineQuantity)
	}
	lineTotal, ok := price.MulChecked(qty)
	if !ok {
		return fmt.Errorf("%w: line total overflows", ErrQuantityLimit)
	}
	sum := lineTotal
	for j, l := range c.lines {
		if j == i {
			continue
		}
		if sum, ok = sum.AddChecked(l.LineTotal()); !ok {
			return fmt.Errorf("%w: cart total overflows", ErrQuantityLimit)
		}
	}
	return nil
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = nil
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Subtotal is the sum of unit price times quantity over all lines.
func (c *Cart) Subtotal() Money {
	return Subtotal(c.lines)
}

// Total is the subtotal plus the delivery fee.
func (c *Cart) Total(deliveryFee Money) Money {
	return c.Subtotal() + deliveryFee
}

// ItemCount is the sum of quantities.
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Subtotal sums the line totals.
func Subtotal(lines []CartLine) Money {
	var sum Money
	for _, l := range lines {
		sum += l.LineTotal()
	}
	return sum
}

func strPtr(s string) *string {
	return &s
}
