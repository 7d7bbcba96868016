package storefront

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// MemStore keeps every collection in process memory. One RWMutex guards all
// collections so multi-collection writes such as PlaceOrder are atomic.
// Filters are linear scans; the catalog is small.
type MemStore struct {
	mu sync.RWMutex

	users      *table[User]
	categories *table[Category]
	sellers    *table[Seller]
	products   *table[Product]
	cartItems  *table[CartItem]
	orders     *table[Order]
	orderItems *table[OrderItem]

	now        func() time.Time
	bcryptCost int
}

// NewMemStore returns a store preloaded with the demo catalog.
func NewMemStore() *MemStore {
	s := newEmptyMemStore()
	now := s.now()

	for _, c := range seedCategories() {
		s.categories.put(c.ID, c)
	}
	for _, sl := range seedSellers() {
		s.sellers.put(sl.ID, sl)
	}
	for _, p := range seedProducts(now) {
		s.products.put(p.ID, p)
	}
	return s
}

func newEmptyMemStore() *MemStore {
	return &MemStore{
		users:      newTable[User](),
		categories: newTable[Category](),
		sellers:    newTable[Seller](),
		products:   newTable[Product](),
		cartItems:  newTable[CartItem](),
		orders:     newTable[Order](),
		orderItems: newTable[OrderItem](),
		now:        storeNow,
		bcryptCost: bcrypt.DefaultCost,
	}
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) GetUser(ctx context.Context, id string) (User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users.get(id)
	return u, ok, nil
}

func (s *MemStore) GetUserByUsername(ctx context.Context, username string) (User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.userByUsername(username)
	return u, ok, nil
}

func (s *MemStore) userByUsername(username string) (User, bool) {
	var (
		found User
		ok    bool
	)
	s.users.each(func(u User) bool {
		if u.Username == username {
			found, ok = u, true
			return false
		}
		return true
	})
	return found, ok
}

func (s *MemStore) CreateUser(ctx context.Context, nu NewUser) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(nu.Password), s.bcryptCost)
	if err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.userByUsername(nu.Username); exists {
		return User{}, ErrUsernameTaken
	}

	u := User{
		ID:        newID(),
		Username:  nu.Username,
		Password:  string(hash),
		Email:     nu.Email,
		FullName:  nu.FullName,
		Phone:     nu.Phone,
		Address:   nu.Address,
		City:      nu.City,
		State:     nu.State,
		CreatedAt: s.now(),
	}
	s.users.put(u.ID, u)
	return u, nil
}

func (s *MemStore) ListCategories(ctx context.Context) ([]Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.categories.all(), nil
}

func (s *MemStore) GetCategory(ctx context.Context, id string) (Category, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.categories.get(id)
	return c, ok, nil
}

func (s *MemStore) CreateCategory(ctx context.Context, c Category) (Category, error) {
	if c.ID == "" {
		c.ID = newID()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories.put(c.ID, c)
	return c, nil
}

func (s *MemStore) ListSellers(ctx context.Context) ([]Seller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sellers.all(), nil
}

func (s *MemStore) GetSeller(ctx context.Context, id string) (Seller, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sl, ok := s.sellers.get(id)
	return sl, ok, nil
}

func (s *MemStore) CreateSeller(ctx context.Context, sl Seller) (Seller, error) {
	if sl.ID == "" {
		sl.ID = newID()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sellers.put(sl.ID, sl)
	return sl, nil
}

func (s *MemStore) ListProducts(ctx context.Context, f ProductFilter) ([]ProductWithDetails, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ProductWithDetails, 0)
	s.products.each(func(p Product) bool {
		if f.matches(p) {
			out = append(out, s.details(p))
		}
		return true
	})
	return out, nil
}

func (s *MemStore) GetProduct(ctx context.Context, id string) (ProductWithDetails, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products.get(id)
	if !ok {
		return ProductWithDetails{}, false, nil
	}
	return s.details(p), true, nil
}

func (s *MemStore) FeaturedProducts(ctx context.Context) ([]ProductWithDetails, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ProductWithDetails, 0, featuredLimit)
	s.products.each(func(p Product) bool {
		if p.Active() {
			out = append(out, s.details(p))
		}
		return len(out) < featuredLimit
	})
	return out, nil
}

func (s *MemStore) CreateProduct(ctx context.Context, p Product) (Product, error) {
	p, err := prepareProduct(p, s.now())
	if err != nil {
		return Product{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.products.put(p.ID, p)
	return p, nil
}

func (s *MemStore) UpdateProductPrice(ctx context.Context, id, price string) (Product, bool, error) {
	normalized, err := normalizePrice(price)
	if err != nil {
		return Product{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products.get(id)
	if !ok {
		return Product{}, false, nil
	}
	p.Price = normalized
	s.products.put(id, p)
	return p.clone(), true, nil
}

func (s *MemStore) details(p Product) ProductWithDetails {
	return joinProduct(p, s.categories.get, s.sellers.get)
}

func (s *MemStore) CartItems(ctx context.Context, userID string) ([]CartItemWithProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]CartItemWithProduct, 0)
	s.cartItems.each(func(it CartItem) bool {
		if it.UserID != userID {
			return true
		}
		row := CartItemWithProduct{CartItem: it}
		if p, ok := s.products.get(it.ProductID); ok {
			row.Product = joinSeller(p, s.sellers.get)
		}
		out = append(out, row)
		return true
	})
	return out, nil
}

// AddToCart merges into an existing (user, product) line by adding quantities.
func (s *MemStore) AddToCart(ctx context.Context, item CartItem) (CartItem, error) {
	if err := checkQuantity(item.Quantity); err != nil {
		return CartItem{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.cartLine(item.UserID, item.ProductID); ok {
		if err := checkQuantity(existing.Quantity + item.Quantity); err != nil {
			return CartItem{}, err
		}
		existing.Quantity += item.Quantity
		s.cartItems.put(existing.ID, existing)
		return existing, nil
	}

	item.ID = newID()
	item.CreatedAt = s.now()
	s.cartItems.put(item.ID, item)
	return item, nil
}

func (s *MemStore) cartLine(userID, productID string) (CartItem, bool) {
	var (
		found CartItem
		ok    bool
	)
	s.cartItems.each(func(it CartItem) bool {
		if it.UserID == userID && it.ProductID == productID {
			found, ok = it, true
			return false
		}
		return true
	})
	return found, ok
}

func (s *MemStore) UpdateCartItem(ctx context.Context, id string, quantity int) (CartItem, bool, error) {
	if err := checkQuantity(quantity); err != nil {
		return CartItem{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.cartItems.get(id)
	if !ok {
		return CartItem{}, false, nil
	}
	it.Quantity = quantity
	s.cartItems.put(id, it)
	return it, true, nil
}

func (s *MemStore) RemoveFromCart(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cartItems.remove(id)
	return nil
}

func (s *MemStore) ClearCart(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearCart(userID)
	return nil
}

func (s *MemStore) clearCart(userID string) {
	var ids []string
	s.cartItems.each(func(it CartItem) bool {
		if it.UserID == userID {
			ids = append(ids, it.ID)
		}
		return true
	})
	for _, id := range ids {
		s.cartItems.remove(id)
	}
}

// ListOrders returns newest first; orders created in the same instant keep
// reverse insertion order.
func (s *MemStore) ListOrders(ctx context.Context, userID string) ([]OrderWithItems, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.orders.all()
	out := make([]OrderWithItems, 0)
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].UserID == userID {
			out = append(out, s.withItems(all[i]))
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemStore) GetOrder(ctx context.Context, id string) (OrderWithItems, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders.get(id)
	if !ok {
		return OrderWithItems{}, false, nil
	}
	return s.withItems(o), true, nil
}

func (s *MemStore) withItems(o Order) OrderWithItems {
	out := OrderWithItems{Order: o, Items: make([]OrderItemWithProduct, 0)}
	s.orderItems.each(func(it OrderItem) bool {
		if it.OrderID != o.ID {
			return true
		}
		row := OrderItemWithProduct{OrderItem: it}
		if p, ok := s.products.get(it.ProductID); ok {
			p = p.clone()
			row.Product = &p
		}
		out.Items = append(out.Items, row)
		return true
	})
	return out
}

// CreateOrder assigns id, order number and timestamp. The total is stored as given.
func (s *MemStore) CreateOrder(ctx context.Context, o Order) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertOrder(o), nil
}

func (s *MemStore) insertOrder(o Order) Order {
	now := s.now()
	o.ID = newID()
	o.OrderNumber = orderNumber(now)
	o.CreatedAt = now
	s.orders.put(o.ID, o)
	return o
}

// AddOrderItem does not check that the order or product exists.
func (s *MemStore) AddOrderItem(ctx context.Context, it OrderItem) (OrderItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it.ID = newID()
	s.orderItems.put(it.ID, it)
	return it, nil
}

func (s *MemStore) PlaceOrder(ctx context.Context, c Checkout) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, total, err := priceCheckout(c.Lines, func(id string) (Product, bool, error) {
		p, ok := s.products.get(id)
		return p, ok, nil
	})
	if err != nil {
		return Order{}, err
	}

	o := s.insertOrder(Order{
		UserID:          c.UserID,
		Status:          OrderStatusProcessing,
		TotalAmount:     formatMoney(total),
		ShippingAddress: c.ShippingAddress,
		PaymentMethod:   c.PaymentMethod,
	})

	for _, l := range lines {
		it := OrderItem{
			ID:        newID(),
			OrderID:   o.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Price:     formatMoney(l.UnitPrice),
		}
		s.orderItems.put(it.ID, it)
	}

	s.clearCart(c.UserID)
	return o, nil
}
