package storefront

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

const OrderStatusProcessing = "processing"

// User.Password holds a bcrypt hash, never the plain password.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Phone     *string   `json:"phone"`
	Address   *string   `json:"address"`
	City      *string   `json:"city"`
	State     *string   `json:"state"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

type NewUser struct {
	Username string
	Password string
	Email    string
	FullName string
	Phone    *string
	Address  *string
	City     *string
	State    *string
}

type Category struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description"`
	ImageURL    *string `json:"imageUrl"`
}

type Seller struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	ImageURL     *string `json:"imageUrl"`
	Rating       *string `json:"rating"`
	TotalReviews *int    `json:"totalReviews"`
	IsVerified   *bool   `json:"isVerified"`
	UserID       *string `json:"userId"`
}

// Product prices are decimal strings with two fraction digits, e.g. "89000.00".
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         string    `json:"price"`
	OriginalPrice *string   `json:"originalPrice"`
	ImageURL      string    `json:"imageUrl"`
	Images        []string  `json:"images"`
	CategoryID    *string   `json:"categoryId"`
	SellerID      *string   `json:"sellerId"`
	Stock         *int      `json:"stock"`
	Rating        *string   `json:"rating"`
	TotalReviews  *int      `json:"totalReviews"`
	IsActive      *bool     `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (p Product) Active() bool {
	return p.IsActive != nil && *p.IsActive
}

// clone detaches Images from the stored row.
func (p Product) clone() Product {
	if p.Images != nil {
		p.Images = append([]string(nil), p.Images...)
	}
	return p
}

// ProductWithDetails carries the resolved category and seller. Either is nil
// when the product has no reference or the reference is dangling.
type ProductWithDetails struct {
	Product
	Category *Category `json:"category"`
	Seller   *Seller   `json:"seller"`
}

type ProductWithSeller struct {
	Product
	Seller *Seller `json:"seller"`
}

type CartItem struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ProductID string    `json:"productId"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
}

type CartItemWithProduct struct {
	CartItem
	Product *ProductWithSeller `json:"product"`
}

type Order struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	OrderNumber     string    `json:"orderNumber"`
	Status          string    `json:"status"`
	TotalAmount     string    `json:"totalAmount"`
	ShippingAddress string    `json:"shippingAddress"`
	PaymentMethod   string    `json:"paymentMethod"`
	CreatedAt       time.Time `json:"createdAt"`
}

// OrderItem.Price is the unit price at purchase time.
type OrderItem struct {
	ID        string `json:"id"`
	OrderID   string `json:"orderId"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

type OrderItemWithProduct struct {
	OrderItem
	Product *Product `json:"product"`
}

type OrderWithItems struct {
	Order
	Items []OrderItemWithProduct `json:"items"`
}
