package cart

import (
	"fmt"
	"sort"
	"sync"

	"parfumpos/internal/domain"
)

// Item is one line of an open cart. Quantity never exceeds the stock snapshot
// taken when the variant was last added.
type Item struct {
	Variant  domain.Variant `json:"variant"`
	Quantity int            `json:"quantity"`
}

func (i Item) Subtotal() domain.Money {
	return i.Variant.PriceMAD.MulQty(i.Quantity)
}

type Cart struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
	Items []Item `json:"items"`
}

func (c *Cart) Total() domain.Money {
	total := domain.ZeroMoney()
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Manager holds the open carts of one till. It is purely in-process state;
// nothing here touches storage.
type Manager struct {
	mu       sync.Mutex
	maxCarts int
	nextID   int64
	carts    []*Cart
}

func NewManager(maxCarts int) *Manager {
	m := &Manager{maxCarts: maxCarts, nextID: 1}
	// A till always has at least one open cart.
	m.carts = append(m.carts, &Cart{ID: m.nextID, Label: "Ticket 1"})
	m.nextID++
	return m
}

func (m *Manager) Create(label string) (*Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.carts) >= m.maxCarts {
		return nil, domain.ErrTooManyCarts
	}
	if label == "" {
		label = fmt.Sprintf("Ticket %d", m.nextID)
	}
	c := &Cart{ID: m.nextID, Label: label}
	m.nextID++
	m.carts = append(m.carts, c)
	return m.snapshot(c), nil
}

// Remove deletes a cart. The last remaining cart cannot be removed; clear it
// instead.
func (m *Manager) Remove(cartID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.carts) <= 1 {
		return domain.ErrLastCart
	}
	for i, c := range m.carts {
		if c.ID == cartID {
			m.carts = append(m.carts[:i], m.carts[i+1:]...)
			return nil
		}
	}
	return domain.NewNotFound("cart", cartID)
}

// Complete discards a cart after checkout. Unlike Remove it may drop the last
// cart, in which case a fresh empty one takes its place so the till never has
// zero carts.
func (m *Manager) Complete(cartID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.carts {
		if c.ID == cartID {
			m.carts = append(m.carts[:i], m.carts[i+1:]...)
			if len(m.carts) == 0 {
				m.carts = append(m.carts, &Cart{ID: m.nextID, Label: fmt.Sprintf("Ticket %d", m.nextID)})
				m.nextID++
			}
			return nil
		}
	}
	return domain.NewNotFound("cart", cartID)
}

// AddItem puts one unit of the variant into the cart, or bumps the existing
// line. The boolean reports whether anything changed; false means the line is
// already at the variant's available stock.
func (m *Manager) AddItem(cartID int64, variant domain.Variant) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.find(cartID)
	if err != nil {
		return false, err
	}
	for i := range c.Items {
		if c.Items[i].Variant.ID == variant.ID {
			if c.Items[i].Quantity >= variant.StockQty {
				return false, nil
			}
			c.Items[i].Quantity++
			c.Items[i].Variant = variant
			return true, nil
		}
	}
	if variant.StockQty < 1 {
		return false, nil
	}
	c.Items = append(c.Items, Item{Variant: variant, Quantity: 1})
	return true, nil
}

// SetQuantity clamps the requested quantity into [1, stock]. A request below
// one keeps the line at one; removing a line is explicit via RemoveItem.
func (m *Manager) SetQuantity(cartID, variantID int64, qty int) (*Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.find(cartID)
	if err != nil {
		return nil, err
	}
	for i := range c.Items {
		if c.Items[i].Variant.ID == variantID {
			if qty < 1 {
				qty = 1
			}
			if max := c.Items[i].Variant.StockQty; qty > max {
				qty = max
			}
			c.Items[i].Quantity = qty
			return m.snapshot(c), nil
		}
	}
	return nil, domain.NewNotFound("cart item", variantID)
}

func (m *Manager) RemoveItem(cartID, variantID int64) (*Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.find(cartID)
	if err != nil {
		return nil, err
	}
	for i := range c.Items {
		if c.Items[i].Variant.ID == variantID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return m.snapshot(c), nil
		}
	}
	return nil, domain.NewNotFound("cart item", variantID)
}

func (m *Manager) Get(cartID int64) (*Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.find(cartID)
	if err != nil {
		return nil, err
	}
	return m.snapshot(c), nil
}

func (m *Manager) List() []*Cart {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Cart, 0, len(m.carts))
	for _, c := range m.carts {
		out = append(out, m.snapshot(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *Manager) find(cartID int64) (*Cart, error) {
	for _, c := range m.carts {
		if c.ID == cartID {
			return c, nil
		}
	}
	return nil, domain.NewNotFound("cart", cartID)
}

// snapshot copies a cart so callers cannot mutate manager state outside the
// lock.
func (m *Manager) snapshot(c *Cart) *Cart {
	out := &Cart{ID: c.ID, Label: c.Label, Items: make([]Item, len(c.Items))}
	copy(out.Items, c.Items)
	return out
}
