package storefront

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderNumberRe = regexp.MustCompile(`^ONZ-\d{4}-\d{1,6}$`)

func productIDs(rows []ProductWithDetails) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return out
}

// runStoreContract exercises behaviour every Store must share. newStore must
// return a freshly seeded store on each call.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("categories and sellers keep seed order", func(t *testing.T) {
		s := newStore(t)

		cats, err := s.ListCategories(t.Context())
		require.NoError(t, err)
		require.Len(t, cats, 7)
		assert.Equal(t, "electronics", cats[0].ID)
		assert.Equal(t, "books", cats[6].ID)

		sellers, err := s.ListSellers(t.Context())
		require.NoError(t, err)
		require.Len(t, sellers, 3)
		assert.Equal(t, "tech-solutions", sellers[0].ID)
		require.NotNil(t, sellers[0].Rating)
		assert.Equal(t, "4.9", *sellers[0].Rating)
	})

	t.Run("products filtered by category", func(t *testing.T) {
		s := newStore(t)

		got, err := s.ListProducts(t.Context(), ProductFilter{CategoryID: "electronics"})
		require.NoError(t, err)
		assert.Equal(t, []string{"samsung-a54", "hp-pavilion-laptop"}, productIDs(got))

		for _, p := range got {
			require.NotNil(t, p.Category)
			assert.Equal(t, "Electronics", p.Category.Name)
			require.NotNil(t, p.Seller)
			assert.Equal(t, "tech-solutions", p.Seller.ID)
		}
	})

	t.Run("products search is case-insensitive over name and description", func(t *testing.T) {
		s := newStore(t)

		byName, err := s.ListProducts(t.Context(), ProductFilter{Search: "POTTERY"})
		require.NoError(t, err)
		assert.Equal(t, []string{"clay-pottery-set"}, productIDs(byName))

		byDescription, err := s.ListProducts(t.Context(), ProductFilter{Search: "Camera"})
		require.NoError(t, err)
		assert.Equal(t, []string{"samsung-a54"}, productIDs(byDescription))

		all, err := s.ListProducts(t.Context(), ProductFilter{Search: "perfect"})
		require.NoError(t, err)
		assert.Len(t, all, 4)
	})

	t.Run("products filters combine with AND", func(t *testing.T) {
		s := newStore(t)

		got, err := s.ListProducts(t.Context(), ProductFilter{CategoryID: "fashion", Search: "samsung"})
		require.NoError(t, err)
		assert.Empty(t, got)

		got, err = s.ListProducts(t.Context(), ProductFilter{CategoryID: "electronics", Search: "laptop"})
		require.NoError(t, err)
		assert.Equal(t, []string{"hp-pavilion-laptop"}, productIDs(got))
	})

	t.Run("inactive products are hidden from listings but not from lookups", func(t *testing.T) {
		s := newStore(t)

		p, err := s.CreateProduct(t.Context(), Product{
			Name:       "Retired Phone",
			Price:      "100",
			ImageURL:   "https://example.com/p.jpg",
			CategoryID: strPtr("electronics"),
			IsActive:   boolPtr(false),
		})
		require.NoError(t, err)

		got, err := s.ListProducts(t.Context(), ProductFilter{CategoryID: "electronics"})
		require.NoError(t, err)
		assert.NotContains(t, productIDs(got), p.ID)

		one, ok, err := s.GetProduct(t.Context(), p.ID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.False(t, one.Active())
	})

	t.Run("create product normalises price and defaults to active", func(t *testing.T) {
		s := newStore(t)

		p, err := s.CreateProduct(t.Context(), Product{
			Name:     "Prayer Mat",
			Price:    "12.5",
			ImageURL: "https://example.com/mat.jpg",
			Images:   []string{"a.jpg", "b.jpg"},
		})
		require.NoError(t, err)
		assert.NotEmpty(t, p.ID)
		assert.Equal(t, "12.50", p.Price)
		assert.True(t, p.Active())

		got, ok, err := s.GetProduct(t.Context(), p.ID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "12.50", got.Price)
		assert.Equal(t, []string{"a.jpg", "b.jpg"}, got.Images)
		assert.Nil(t, got.Category)
		assert.Nil(t, got.Seller)

		_, err = s.CreateProduct(t.Context(), Product{Name: "Bad", Price: "abc", ImageURL: "x"})
		assert.ErrorIs(t, err, ErrInvalidPrice)
	})

	t.Run("featured returns at most eight in insertion order", func(t *testing.T) {
		s := newStore(t)

		for i := 0; i < 6; i++ {
			_, err := s.CreateProduct(t.Context(), Product{Name: "Extra", Price: "1.00", ImageURL: "x"})
			require.NoError(t, err)
		}

		got, err := s.FeaturedProducts(t.Context())
		require.NoError(t, err)
		require.Len(t, got, featuredLimit)
		assert.Equal(t, "samsung-a54", got[0].ID)
	})

	t.Run("missing product is reported as not found", func(t *testing.T) {
		s := newStore(t)

		_, ok, err := s.GetProduct(t.Context(), "nonexistent-id")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("dangling references join as nil", func(t *testing.T) {
		s := newStore(t)

		p, err := s.CreateProduct(t.Context(), Product{
			Name:       "Orphan",
			Price:      "5",
			ImageURL:   "x",
			CategoryID: strPtr("ghost-category"),
			SellerID:   strPtr("ghost-seller"),
		})
		require.NoError(t, err)

		got, ok, err := s.GetProduct(t.Context(), p.ID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Nil(t, got.Category)
		assert.Nil(t, got.Seller)

		_, err = s.AddToCart(t.Context(), CartItem{UserID: "u-dangling", ProductID: "ghost-product", Quantity: 1})
		require.NoError(t, err)

		items, err := s.CartItems(t.Context(), "u-dangling")
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Nil(t, items[0].Product)
	})

	t.Run("add to cart merges quantities per user and product", func(t *testing.T) {
		s := newStore(t)

		first, err := s.AddToCart(t.Context(), CartItem{UserID: "u1", ProductID: "samsung-a54", Quantity: 1})
		require.NoError(t, err)
		second, err := s.AddToCart(t.Context(), CartItem{UserID: "u1", ProductID: "samsung-a54", Quantity: 2})
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, 3, second.Quantity)

		items, err := s.CartItems(t.Context(), "u1")
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, 3, items[0].Quantity)
		require.NotNil(t, items[0].Product)
		assert.Equal(t, "samsung-a54", items[0].Product.ID)
		require.NotNil(t, items[0].Product.Seller)
		assert.Equal(t, "tech-solutions", items[0].Product.Seller.ID)

		other, err := s.CartItems(t.Context(), "u2")
		require.NoError(t, err)
		assert.Empty(t, other)
	})

	t.Run("update cart item replaces quantity as given", func(t *testing.T) {
		s := newStore(t)

		item, err := s.AddToCart(t.Context(), CartItem{UserID: "u1", ProductID: "traditional-thobe", Quantity: 4})
		require.NoError(t, err)

		got, ok, err := s.UpdateCartItem(t.Context(), item.ID, 0)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, 0, got.Quantity)

		got, ok, err = s.UpdateCartItem(t.Context(), item.ID, -2)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, -2, got.Quantity)

		_, ok, err = s.UpdateCartItem(t.Context(), "missing", 1)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("remove and clear are unconditional", func(t *testing.T) {
		s := newStore(t)

		require.NoError(t, s.RemoveFromCart(t.Context(), "missing"))
		require.NoError(t, s.ClearCart(t.Context(), "nobody"))

		a, err := s.AddToCart(t.Context(), CartItem{UserID: "u1", ProductID: "samsung-a54", Quantity: 1})
		require.NoError(t, err)
		_, err = s.AddToCart(t.Context(), CartItem{UserID: "u1", ProductID: "clay-pottery-set", Quantity: 1})
		require.NoError(t, err)
		_, err = s.AddToCart(t.Context(), CartItem{UserID: "u2", ProductID: "samsung-a54", Quantity: 1})
		require.NoError(t, err)

		require.NoError(t, s.RemoveFromCart(t.Context(), a.ID))
		items, err := s.CartItems(t.Context(), "u1")
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "clay-pottery-set", items[0].ProductID)

		require.NoError(t, s.ClearCart(t.Context(), "u1"))
		items, err = s.CartItems(t.Context(), "u1")
		require.NoError(t, err)
		assert.Empty(t, items)

		items, err = s.CartItems(t.Context(), "u2")
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})

	t.Run("place order totals lines, snapshots prices and clears the cart", func(t *testing.T) {
		s := newStore(t)

		_, err := s.AddToCart(t.Context(), CartItem{UserID: "u1", ProductID: "samsung-a54", Quantity: 2})
		require.NoError(t, err)
		_, err = s.AddToCart(t.Context(), CartItem{UserID: "u2", ProductID: "samsung-a54", Quantity: 1})
		require.NoError(t, err)

		o, err := s.PlaceOrder(t.Context(), Checkout{
			UserID:          "u1",
			ShippingAddress: "Omdurman",
			PaymentMethod:   "cash",
			Lines: []CheckoutLine{
				{ProductID: "samsung-a54", Quantity: 2},
				{ProductID: "clay-pottery-set", Quantity: 3},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "204250.00", o.TotalAmount)
		assert.Equal(t, OrderStatusProcessing, o.Status)
		assert.Equal(t, "u1", o.UserID)
		assert.Regexp(t, orderNumberRe, o.OrderNumber)

		got, ok, err := s.GetOrder(t.Context(), o.ID)
		require.NoError(t, err)
		require.True(t, ok)
		require.Len(t, got.Items, 2)
		assert.Equal(t, "samsung-a54", got.Items[0].ProductID)
		assert.Equal(t, 2, got.Items[0].Quantity)
		assert.Equal(t, "89000.00", got.Items[0].Price)
		require.NotNil(t, got.Items[0].Product)
		assert.Equal(t, "Samsung Galaxy A54", got.Items[0].Product.Name)
		assert.Equal(t, "clay-pottery-set", got.Items[1].ProductID)
		assert.Equal(t, "8750.00", got.Items[1].Price)

		mine, err := s.CartItems(t.Context(), "u1")
		require.NoError(t, err)
		assert.Empty(t, mine)

		theirs, err := s.CartItems(t.Context(), "u2")
		require.NoError(t, err)
		assert.Len(t, theirs, 1)
	})

	t.Run("place order with unknown product writes nothing", func(t *testing.T) {
		s := newStore(t)

		_, err := s.AddToCart(t.Context(), CartItem{UserID: "u1", ProductID: "samsung-a54", Quantity: 1})
		require.NoError(t, err)

		_, err = s.PlaceOrder(t.Context(), Checkout{
			UserID:          "u1",
			ShippingAddress: "Omdurman",
			PaymentMethod:   "cash",
			Lines: []CheckoutLine{
				{ProductID: "samsung-a54", Quantity: 1},
				{ProductID: "ghost", Quantity: 1},
			},
		})
		require.ErrorIs(t, err, ErrUnknownProduct)

		orders, err := s.ListOrders(t.Context(), "u1")
		require.NoError(t, err)
		assert.Empty(t, orders)

		items, err := s.CartItems(t.Context(), "u1")
		require.NoError(t, err)
		assert.Len(t, items, 1)

		_, err = s.PlaceOrder(t.Context(), Checkout{UserID: "u1", ShippingAddress: "x", PaymentMethod: "y"})
		assert.ErrorIs(t, err, ErrEmptyCheckout)
	})

	t.Run("orders are listed newest first per user", func(t *testing.T) {
		s := newStore(t)

		place := func(user, product string) Order {
			o, err := s.PlaceOrder(t.Context(), Checkout{
				UserID:          user,
				ShippingAddress: "Kassala",
				PaymentMethod:   "cash",
				Lines:           []CheckoutLine{{ProductID: product, Quantity: 1}},
			})
			require.NoError(t, err)
			return o
		}

		first := place("u1", "samsung-a54")
		second := place("u1", "traditional-thobe")
		place("u2", "clay-pottery-set")

		orders, err := s.ListOrders(t.Context(), "u1")
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, second.ID, orders[0].ID)
		assert.Equal(t, first.ID, orders[1].ID)
		require.Len(t, orders[0].Items, 1)
		assert.Equal(t, "traditional-thobe", orders[0].Items[0].ProductID)
	})

	t.Run("order primitives", func(t *testing.T) {
		s := newStore(t)

		o, err := s.CreateOrder(t.Context(), Order{
			UserID:          "u1",
			Status:          OrderStatusProcessing,
			TotalAmount:     "1.00",
			ShippingAddress: "Port Sudan",
			PaymentMethod:   "card",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, o.ID)
		assert.Regexp(t, orderNumberRe, o.OrderNumber)
		assert.False(t, o.CreatedAt.IsZero())

		empty, ok, err := s.GetOrder(t.Context(), o.ID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.NotNil(t, empty.Items)
		assert.Empty(t, empty.Items)

		_, err = s.AddOrderItem(t.Context(), OrderItem{OrderID: o.ID, ProductID: "ghost", Quantity: 1, Price: "1.00"})
		require.NoError(t, err)

		got, ok, err := s.GetOrder(t.Context(), o.ID)
		require.NoError(t, err)
		require.True(t, ok)
		require.Len(t, got.Items, 1)
		assert.Nil(t, got.Items[0].Product)

		_, ok, err = s.GetOrder(t.Context(), "missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("users hash passwords and reject duplicate usernames", func(t *testing.T) {
		s := newStore(t)

		u, err := s.CreateUser(t.Context(), NewUser{
			Username: "amira",
			Password: "s3cret-pass",
			Email:    "amira@example.com",
			FullName: "Amira Hassan",
			City:     strPtr("Khartoum"),
		})
		require.NoError(t, err)
		assert.NotEqual(t, "s3cret-pass", u.Password)
		assert.True(t, u.CheckPassword("s3cret-pass"))
		assert.False(t, u.CheckPassword("wrong"))

		got, ok, err := s.GetUserByUsername(t.Context(), "amira")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, u.ID, got.ID)
		require.NotNil(t, got.City)
		assert.Equal(t, "Khartoum", *got.City)
		assert.Nil(t, got.Phone)

		byID, ok, err := s.GetUser(t.Context(), u.ID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "amira", byID.Username)

		_, err = s.CreateUser(t.Context(), NewUser{Username: "amira", Password: "other", Email: "a2@example.com", FullName: "A"})
		assert.ErrorIs(t, err, ErrUsernameTaken)

		_, ok, err = s.GetUser(t.Context(), "missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("created categories and sellers get ids", func(t *testing.T) {
		s := newStore(t)

		c, err := s.CreateCategory(t.Context(), Category{Name: "Toys", Slug: "toys"})
		require.NoError(t, err)
		assert.NotEmpty(t, c.ID)

		got, ok, err := s.GetCategory(t.Context(), c.ID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "toys", got.Slug)
		assert.Nil(t, got.Description)

		sl, err := s.CreateSeller(t.Context(), Seller{Name: "Blue Nile Toys", IsVerified: boolPtr(false)})
		require.NoError(t, err)

		gotSeller, ok, err := s.GetSeller(t.Context(), sl.ID)
		require.NoError(t, err)
		require.True(t, ok)
		require.NotNil(t, gotSeller.IsVerified)
		assert.False(t, *gotSeller.IsVerified)
		assert.Nil(t, gotSeller.Rating)
	})

	t.Run("cart quantities stay within the stored range", func(t *testing.T) {
		s := newStore(t)

		item, err := s.AddToCart(t.Context(), CartItem{UserID: "u1", ProductID: "samsung-a54", Quantity: MaxQuantity})
		require.NoError(t, err)

		_, err = s.AddToCart(t.Context(), CartItem{UserID: "u1", ProductID: "samsung-a54", Quantity: 1})
		require.ErrorIs(t, err, ErrQuantityOutOfRange)

		items, err := s.CartItems(t.Context(), "u1")
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, MaxQuantity, items[0].Quantity)

		_, err = s.AddToCart(t.Context(), CartItem{UserID: "u1", ProductID: "clay-pottery-set", Quantity: MaxQuantity + 1})
		require.ErrorIs(t, err, ErrQuantityOutOfRange)

		_, _, err = s.UpdateCartItem(t.Context(), item.ID, MinQuantity-1)
		require.ErrorIs(t, err, ErrQuantityOutOfRange)

		got, ok, err := s.UpdateCartItem(t.Context(), item.ID, MinQuantity)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, MinQuantity, got.Quantity)
	})

	t.Run("place order rejects totals that do not fit", func(t *testing.T) {
		s := newStore(t)

		_, err := s.PlaceOrder(t.Context(), Checkout{
			UserID:          "u1",
			ShippingAddress: "Atbara",
			PaymentMethod:   "cash",
			Lines:           []CheckoutLine{{ProductID: "hp-pavilion-laptop", Quantity: MaxQuantity}},
		})
		require.ErrorIs(t, err, ErrTotalOverflow)

		_, err = s.PlaceOrder(t.Context(), Checkout{
			UserID:          "u1",
			ShippingAddress: "Atbara",
			PaymentMethod:   "cash",
			Lines:           []CheckoutLine{{ProductID: "samsung-a54", Quantity: MaxQuantity + 1}},
		})
		require.ErrorIs(t, err, ErrQuantityOutOfRange)

		orders, err := s.ListOrders(t.Context(), "u1")
		require.NoError(t, err)
		assert.Empty(t, orders)
	})

	t.Run("order items keep the price paid after a price change", func(t *testing.T) {
		s := newStore(t)

		o, err := s.PlaceOrder(t.Context(), Checkout{
			UserID:          "u1",
			ShippingAddress: "Wad Madani",
			PaymentMethod:   "cash",
			Lines:           []CheckoutLine{{ProductID: "samsung-a54", Quantity: 1}},
		})
		require.NoError(t, err)

		p, ok, err := s.UpdateProductPrice(t.Context(), "samsung-a54", "99000")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "99000.00", p.Price)

		got, ok, err := s.GetOrder(t.Context(), o.ID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "89000.00", got.TotalAmount)
		require.Len(t, got.Items, 1)
		assert.Equal(t, "89000.00", got.Items[0].Price)
		require.NotNil(t, got.Items[0].Product)
		assert.Equal(t, "99000.00", got.Items[0].Product.Price)

		_, ok, err = s.UpdateProductPrice(t.Context(), "missing", "1.00")
		require.NoError(t, err)
		assert.False(t, ok)

		_, _, err = s.UpdateProductPrice(t.Context(), "samsung-a54", "-1")
		assert.ErrorIs(t, err, ErrInvalidPrice)
	})
}
