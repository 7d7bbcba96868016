package storefront

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUsernameTaken  = errors.New("username already exists")
	ErrUnknownProduct = errors.New("unknown product")
	ErrEmptyCheckout  = errors.New("checkout has no items")
	ErrInvalidPrice   = errors.New("invalid price")

	ErrQuantityOutOfRange = errors.New("quantity out of range")
	ErrTotalOverflow      = errors.New("order total too large")
)

const featuredLimit = 8

// Quantities are stored as 32-bit integers in Postgres; MemStore enforces the
// same range.
const (
	MinQuantity = math.MinInt32
	MaxQuantity = math.MaxInt32
)

func checkQuantity(q int) error {
	if q < MinQuantity || q > MaxQuantity {
		return fmt.Errorf("%w: %d", ErrQuantityOutOfRange, q)
	}
	return nil
}

type ProductFilter struct {
	CategoryID string
	Search     string
}

func (f ProductFilter) matches(p Product) bool {
	if !p.Active() {
		return false
	}
	if f.CategoryID != "" && (p.CategoryID == nil || *p.CategoryID != f.CategoryID) {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		return strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q)
	}
	return true
}

type CheckoutLine struct {
	ProductID string
	Quantity  int
}

type Checkout struct {
	UserID          string
	ShippingAddress string
	PaymentMethod   string
	Lines           []CheckoutLine
}

// Store owns all storefront state. Single-entity lookups report absence with
// a false second return, never with an error.
type Store interface {
	Ping(ctx context.Context) error

	GetUser(ctx context.Context, id string) (User, bool, error)
	GetUserByUsername(ctx context.Context, username string) (User, bool, error)
	CreateUser(ctx context.Context, u NewUser) (User, error)

	ListCategories(ctx context.Context) ([]Category, error)
	GetCategory(ctx context.Context, id string) (Category, bool, error)
	CreateCategory(ctx context.Context, c Category) (Category, error)

	ListSellers(ctx context.Context) ([]Seller, error)
	GetSeller(ctx context.Context, id string) (Seller, bool, error)
	CreateSeller(ctx context.Context, s Seller) (Seller, error)

	ListProducts(ctx context.Context, f ProductFilter) ([]ProductWithDetails, error)
	GetProduct(ctx context.Context, id string) (ProductWithDetails, bool, error)
	FeaturedProducts(ctx context.Context) ([]ProductWithDetails, error)
	CreateProduct(ctx context.Context, p Product) (Product, error)
	UpdateProductPrice(ctx context.Context, id, price string) (Product, bool, error)

	CartItems(ctx context.Context, userID string) ([]CartItemWithProduct, error)
	// AddToCart merges into an existing line; a merged quantity above
	// MaxQuantity fails with ErrQuantityOutOfRange and leaves the line as is.
	AddToCart(ctx context.Context, item CartItem) (CartItem, error)
	UpdateCartItem(ctx context.Context, id string, quantity int) (CartItem, bool, error)
	RemoveFromCart(ctx context.Context, id string) error
	ClearCart(ctx context.Context, userID string) error

	ListOrders(ctx context.Context, userID string) ([]OrderWithItems, error)
	GetOrder(ctx context.Context, id string) (OrderWithItems, bool, error)
	CreateOrder(ctx context.Context, o Order) (Order, error)
	AddOrderItem(ctx context.Context, it OrderItem) (OrderItem, error)

	// PlaceOrder prices every line, writes the order with its items and
	// empties the user's cart as one unit. Nothing is written when any line
	// references an unknown product.
	PlaceOrder(ctx context.Context, c Checkout) (Order, error)
}

func newID() string { return uuid.NewString() }

func storeNow() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }

// orderNumber renders ONZ-<year>-<last six digits of epoch millis>.
func orderNumber(t time.Time) string {
	ms := strconv.FormatInt(t.UnixMilli(), 10)
	if len(ms) > 6 {
		ms = ms[len(ms)-6:]
	}
	return fmt.Sprintf("ONZ-%d-%s", t.Year(), ms)
}

func joinProduct(p Product, category func(string) (Category, bool), seller func(string) (Seller, bool)) ProductWithDetails {
	out := ProductWithDetails{Product: p.clone()}
	if p.CategoryID != nil {
		if c, ok := category(*p.CategoryID); ok {
			out.Category = &c
		}
	}
	if p.SellerID != nil {
		if s, ok := seller(*p.SellerID); ok {
			out.Seller = &s
		}
	}
	return out
}

func joinSeller(p Product, seller func(string) (Seller, bool)) *ProductWithSeller {
	out := &ProductWithSeller{Product: p.clone()}
	if p.SellerID != nil {
		if s, ok := seller(*p.SellerID); ok {
			out.Seller = &s
		}
	}
	return out
}

// prepareProduct assigns identity and normalises prices before insert.
func prepareProduct(p Product, now time.Time) (Product, error) {
	if p.ID == "" {
		p.ID = newID()
	}
	price, err := normalizePrice(p.Price)
	if err != nil {
		return Product{}, err
	}
	p.Price = price
	if p.OriginalPrice != nil {
		op, err := normalizePrice(*p.OriginalPrice)
		if err != nil {
			return Product{}, err
		}
		p.OriginalPrice = &op
	}
	if p.IsActive == nil {
		active := true
		p.IsActive = &active
	}
	p = p.clone()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	return p, nil
}

var (
	_ Store = (*MemStore)(nil)
	_ Store = (*PostgresStore)(nil)
)
