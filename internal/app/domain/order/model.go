package order

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Separator joins the flattened item, quantity and ingredient fields. The
// stored representation is positional: the i-th item name corresponds to the
// i-th quantity, so names and annotations containing the separator (or the
// bracket characters used for ingredient annotations) are rejected at
// placement time.
const Separator = ", "

// Line is a single cart line as submitted by the client.
type Line struct {
	Price       float64 `json:"price"`
	Qty         int     `json:"qty"`
	Ingredients string  `json:"ingredients,omitempty"`
}

// Cart maps item display names to their submitted lines.
type Cart map[string]Line

// Submission is a checkout request. Username is empty for anonymous checkout.
type Submission struct {
	Phone    string
	Email    string
	Username string
	Cart     Cart
}

// Record is a persisted order row: the cart flattened into three parallel
// delimited text fields plus the derived total.
type Record struct {
	ID          string
	Phone       string
	Username    string
	Email       string
	Items       string
	Qtys        string
	Ingredients string
	Total       float64
	CreatedAt   time.Time
}

// Summary is a reconstructed past order: item name to quantity, plus the
// stored total.
type Summary struct {
	Quantities map[string]int
	Total      float64
}

// MarshalJSON renders the summary in the client shape: item names as keys
// alongside a total_price field.
func (s Summary) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Quantities)+1)
	for name, qty := range s.Quantities {
		out[name] = qty
	}
	out["total_price"] = s.Total
	return json.Marshal(out)
}

// Validate checks a submission for the required fields and for names or
// annotations that would corrupt the flattened storage format.
func (s Submission) Validate() error {
	if strings.TrimSpace(s.Phone) == "" {
		return fmt.Errorf("phone is required")
	}
	if strings.TrimSpace(s.Email) == "" {
		return fmt.Errorf("email is required")
	}
	if len(s.Cart) == 0 {
		return fmt.Errorf("cart must contain at least one item")
	}
	for name, line := range s.Cart {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("cart item name is required")
		}
		if strings.Contains(name, Separator) || strings.ContainsAny(name, "[]") {
			return fmt.Errorf("cart item name %q contains reserved characters", name)
		}
		if strings.Contains(line.Ingredients, Separator) || strings.ContainsAny(line.Ingredients, "[]") {
			return fmt.Errorf("ingredients for %q contain reserved characters", name)
		}
		if line.Qty <= 0 {
			return fmt.Errorf("quantity for %q must be positive", name)
		}
		if line.Price < 0 {
			return fmt.Errorf("price for %q must not be negative", name)
		}
	}
	return nil
}

// Names returns the cart's item names in deterministic order.
func (c Cart) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Total sums price times quantity over the cart.
func (c Cart) Total() float64 {
	var total float64
	for _, line := range c {
		total += line.Price * float64(line.Qty)
	}
	return total
}

// Flatten serializes the cart into the three parallel delimited fields that
// make up the persisted order shape. Items without an ingredient annotation
// are recorded as [None].
func (c Cart) Flatten() (items, qtys, ingredients string) {
	names := c.Names()
	itemParts := make([]string, 0, len(names))
	qtyParts := make([]string, 0, len(names))
	ingredientParts := make([]string, 0, len(names))
	for _, name := range names {
		line := c[name]
		itemParts = append(itemParts, name)
		qtyParts = append(qtyParts, strconv.Itoa(line.Qty))
		annotation := line.Ingredients
		if annotation == "" {
			annotation = "None"
		}
		ingredientParts = append(ingredientParts, "["+annotation+"]")
	}
	return strings.Join(itemParts, Separator),
		strings.Join(qtyParts, Separator),
		strings.Join(ingredientParts, Separator)
}

// Reconstruct rebuilds the item-to-quantity mapping from a stored record by
// re-splitting the delimited fields positionally.
func Reconstruct(rec Record) (Summary, error) {
	items := strings.Split(rec.Items, Separator)
	qtys := strings.Split(rec.Qtys, Separator)
	if len(items) != len(qtys) {
		return Summary{}, fmt.Errorf("order %s: %d items but %d quantities", rec.ID, len(items), len(qtys))
	}

	quantities := make(map[string]int, len(items))
	for i, name := range items {
		qty, err := strconv.Atoi(qtys[i])
		if err != nil {
			return Summary{}, fmt.Errorf("order %s: bad quantity %q: %w", rec.ID, qtys[i], err)
		}
		quantities[name] = qty
	}
	return Summary{Quantities: quantities, Total: rec.Total}, nil
}
