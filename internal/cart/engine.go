package cart

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/catalog"
)

// Outcome describes what a command did to the cart.
type Outcome int

const (
	// Applied means the cart changed.
	Applied Outcome = iota
	// Unchanged means the command was valid but had nothing to do.
	Unchanged
	// Rejected means the command was refused and the cart was left untouched.
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Unchanged:
		return "unchanged"
	case Rejected:
		return "rejected"
	}
	return "unknown"
}

// Item is the product snapshot taken when a product is added to the cart.
type Item struct {
	ID        int
	Title     string
	Price     decimal.Decimal
	Thumbnail string
	Stock     int
}

// ItemFromProduct snapshots the fields a cart line keeps from the catalog.
func ItemFromProduct(p catalog.Product) Item {
	return Item{
		ID:        p.ID,
		Title:     p.Title,
		Price:     p.Price,
		Thumbnail: p.Thumbnail,
		Stock:     p.Stock,
	}
}

// Line is one product's entry in the cart. Stock is the ceiling copied at add
// time and is never re-validated against the catalog.
type Line struct {
	ID        int             `json:"id"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Thumbnail string          `json:"thumbnail"`
	Stock     int             `json:"stock"`
	Quantity  int             `json:"quantity"`
}

// Subtotal is price × quantity for the line.
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// State is the cart: at most one line per product id, in insertion order,
// plus aggregates that are always recomputed from the lines.
type State struct {
	Lines         []Line          `json:"items"`
	TotalQuantity int             `json:"totalQuantity"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
}

// Empty returns a cart with no lines and zero totals.
func Empty() State {
	return State{Lines: []Line{}, TotalAmount: decimal.Zero}
}

// IsEmpty reports whether the cart holds no lines.
func (s State) IsEmpty() bool {
	return len(s.Lines) == 0
}

// Line returns the line for a product id.
func (s State) Line(id int) (Line, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.Lines[i], true
	}
	return Line{}, false
}

func (s State) indexOf(id int) int {
	for i := range s.Lines {
		if s.Lines[i].ID == id {
			return i
		}
	}
	return -1
}

// Recompute derives both aggregates by a full fold over the lines.
func Recompute(lines []Line) State {
	out := State{Lines: lines, TotalAmount: decimal.Zero}
	if out.Lines == nil {
		out.Lines = []Line{}
	}
	for _, l := range out.Lines {
		out.TotalQuantity += l.Quantity
		out.TotalAmount = out.TotalAmount.Add(l.Subtotal())
	}
	return out
}

// Command is a single cart mutation.
type Command interface {
	Name() string
	apply(State) (State, Outcome)
}

// Apply runs cmd against s and returns the resulting cart. s itself is never
// modified; on Rejected or Unchanged the returned state equals s.
func Apply(s State, cmd Command) (State, Outcome) {
	if cmd == nil {
		return s, Unchanged
	}
	return cmd.apply(s)
}

// AddItem merges Quantity units of Item into the cart, clamped to the stock
// ceiling. A non-positive Quantity means one unit.
type AddItem struct {
	Item     Item
	Quantity int
}

func (AddItem) Name() string { return "add_item" }

func (c AddItem) apply(s State) (State, Outcome) {
	requested := c.Quantity
	if requested <= 0 {
		requested = 1
	}

	if i := s.indexOf(c.Item.ID); i >= 0 {
		existing := s.Lines[i]
		qty := min(existing.Quantity+requested, existing.Stock)
		if qty == existing.Quantity {
			return s, Unchanged
		}
		lines := cloneLines(s.Lines)
		lines[i].Quantity = qty
		return Recompute(lines), Applied
	}

	qty := min(requested, c.Item.Stock)
	if qty <= 0 {
		// out of stock: a zero-quantity line must not exist
		return s, Rejected
	}
	lines := append(cloneLines(s.Lines), Line{
		ID:        c.Item.ID,
		Title:     c.Item.Title,
		Price:     c.Item.Price,
		Thumbnail: c.Item.Thumbnail,
		Stock:     c.Item.Stock,
		Quantity:  qty,
	})
	return Recompute(lines), Applied
}

// RemoveItem deletes a product's line. Removing an absent line is a no-op.
type RemoveItem struct {
	ID int
}

func (RemoveItem) Name() string { return "remove_item" }

func (c RemoveItem) apply(s State) (State, Outcome) {
	i := s.indexOf(c.ID)
	if i < 0 {
		return s, Unchanged
	}
	lines := make([]Line, 0, len(s.Lines)-1)
	lines = append(lines, s.Lines[:i]...)
	lines = append(lines, s.Lines[i+1:]...)
	return Recompute(lines), Applied
}

// SetQuantity sets a line's quantity exactly. Zero or less removes the line;
// more than the line's stock ceiling is rejected without clamping.
type SetQuantity struct {
	ID       int
	Quantity int
}

func (SetQuantity) Name() string { return "set_quantity" }

func (c SetQuantity) apply(s State) (State, Outcome) {
	i := s.indexOf(c.ID)
	if i < 0 {
		return s, Unchanged
	}
	if c.Quantity <= 0 {
		return RemoveItem{ID: c.ID}.apply(s)
	}
	if c.Quantity > s.Lines[i].Stock {
		return s, Rejected
	}
	if c.Quantity == s.Lines[i].Quantity {
		return s, Unchanged
	}
	lines := cloneLines(s.Lines)
	lines[i].Quantity = c.Quantity
	return Recompute(lines), Applied
}

// ClearCart empties the cart.
type ClearCart struct{}

func (ClearCart) Name() string { return "clear_cart" }

func (ClearCart) apply(s State) (State, Outcome) {
	if s.IsEmpty() {
		return s, Unchanged
	}
	return Empty(), Applied
}

// SettleLines removes the quantities a completed order paid for. Each paid
// line's quantity is subtracted from the matching cart line, dropping lines
// that reach zero. Lines the order did not include are kept.
type SettleLines struct {
	Lines []Line
}

func (SettleLines) Name() string { return "settle_lines" }

func (c SettleLines) apply(s State) (State, Outcome) {
	paid := make(map[int]int, len(c.Lines))
	for _, l := range c.Lines {
		paid[l.ID] += l.Quantity
	}

	lines := make([]Line, 0, len(s.Lines))
	changed := false
	for _, l := range s.Lines {
		qty, ok := paid[l.ID]
		if !ok || qty <= 0 {
			lines = append(lines, l)
			continue
		}
		changed = true
		if l.Quantity > qty {
			l.Quantity -= qty
			lines = append(lines, l)
		}
	}
	if !changed {
		return s, Unchanged
	}
	return Recompute(lines), Applied
}

func cloneLines(lines []Line) []Line {
	out := make([]Line, len(lines), len(lines)+1)
	copy(out, lines)
	return out
}
