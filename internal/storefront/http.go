package storefront

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"Storefront/internal/session"
	"Storefront/pkg/kit"
)

const maxBody = 1 << 20

type Server struct {
	Store   Store
	Log     *zap.Logger
	Metrics *Metrics

	// CheckoutLimiter throttles POST /orders per client IP. Nil disables it.
	CheckoutLimiter *kit.IPRateLimiter

	validate *validator.Validate
}

func NewServer(store Store, log *zap.Logger, m *Metrics) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{Store: store, Log: log, Metrics: m, validate: newValidator()}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Routes returns the storefront API. Callers mount it under /api behind the
// session middleware.
func (s *Server) Routes() http.Handler {
	if s.validate == nil {
		s.validate = newValidator()
	}

	r := chi.NewRouter()

	r.Get("/categories", s.listCategories)
	r.Get("/sellers", s.listSellers)

	r.Get("/products", s.listProducts)
	r.Get("/products/featured", s.featuredProducts)
	r.Get("/products/{id}", s.getProduct)

	r.Get("/cart", s.getCart)
	r.Post("/cart", s.addToCart)
	r.Patch("/cart/{id}", s.updateCartItem)
	r.Delete("/cart/{id}", s.removeCartItem)
	r.Delete("/cart", s.clearCart)

	r.Get("/orders", s.listOrders)
	r.Get("/orders/{id}", s.getOrder)
	if s.CheckoutLimiter != nil {
		r.With(s.CheckoutLimiter.Middleware).Post("/orders", s.createOrder)
	} else {
		r.Post("/orders", s.createOrder)
	}

	return r
}

type addToCartReq struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  *int   `json:"quantity" validate:"omitempty,min=1,max=2147483647"`
}

type updateCartReq struct {
	Quantity *int `json:"quantity" validate:"required,min=-2147483648,max=2147483647"`
}

type checkoutItemReq struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"min=1,max=2147483647"`
}

type createOrderReq struct {
	ShippingAddress string            `json:"shippingAddress" validate:"required"`
	PaymentMethod   string            `json:"paymentMethod" validate:"required"`
	Items           []checkoutItemReq `json:"items" validate:"required,min=1,dive"`
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.Store.ListCategories(r.Context())
	if err != nil {
		s.fail(w, r, "Failed to fetch categories", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, categories)
}

func (s *Server) listSellers(w http.ResponseWriter, r *http.Request) {
	sellers, err := s.Store.ListSellers(r.Context())
	if err != nil {
		s.fail(w, r, "Failed to fetch sellers", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, sellers)
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := ProductFilter{
		CategoryID: q.Get("categoryId"),
		Search:     q.Get("search"),
	}

	products, err := s.Store.ListProducts(r.Context(), f)
	if err != nil {
		s.fail(w, r, "Failed to fetch products", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, products)
}

func (s *Server) featuredProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.Store.FeaturedProducts(r.Context())
	if err != nil {
		s.fail(w, r, "Failed to fetch featured products", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, products)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, ok, err := s.Store.GetProduct(r.Context(), id)
	if err != nil {
		s.fail(w, r, "Failed to fetch product", err, zap.String("product_id", id))
		return
	}
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "Product not found", nil)
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) getCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	items, err := s.Store.CartItems(r.Context(), userID)
	if err != nil {
		s.fail(w, r, "Failed to fetch cart items", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, items)
}

func (s *Server) addToCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	var req addToCartReq
	if err := s.decodeValid(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "Failed to add to cart", requestDetail(err))
		return
	}

	_, exists, err := s.Store.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		s.fail(w, r, "Failed to add to cart", err, zap.String("product_id", req.ProductID))
		return
	}
	if !exists {
		kit.WriteError(w, r, http.StatusBadRequest, "Failed to add to cart",
			map[string]any{"productId": req.ProductID, "reason": ErrUnknownProduct.Error()})
		return
	}

	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	item, err := s.Store.AddToCart(r.Context(), CartItem{UserID: userID, ProductID: req.ProductID, Quantity: qty})
	if errors.Is(err, ErrQuantityOutOfRange) {
		kit.WriteError(w, r, http.StatusBadRequest, "Failed to add to cart", err.Error())
		return
	}
	if err != nil {
		s.fail(w, r, "Failed to add to cart", err, zap.String("product_id", req.ProductID))
		return
	}

	s.Metrics.cartAdded()
	kit.WriteJSON(w, http.StatusOK, item)
}

func (s *Server) updateCartItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateCartReq
	if err := s.decodeValid(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "Failed to update cart item", requestDetail(err))
		return
	}

	item, ok, err := s.Store.UpdateCartItem(r.Context(), id, *req.Quantity)
	if errors.Is(err, ErrQuantityOutOfRange) {
		kit.WriteError(w, r, http.StatusBadRequest, "Failed to update cart item", err.Error())
		return
	}
	if err != nil {
		s.fail(w, r, "Failed to update cart item", err, zap.String("cart_item_id", id))
		return
	}
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "Cart item not found", nil)
		return
	}
	kit.WriteJSON(w, http.StatusOK, item)
}

func (s *Server) removeCartItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.Store.RemoveFromCart(r.Context(), id); err != nil {
		s.fail(w, r, "Failed to remove cart item", err, zap.String("cart_item_id", id))
		return
	}
	kit.WriteMessage(w, http.StatusOK, "Item removed from cart")
}

func (s *Server) clearCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	if err := s.Store.ClearCart(r.Context(), userID); err != nil {
		s.fail(w, r, "Failed to clear cart", err)
		return
	}
	kit.WriteMessage(w, http.StatusOK, "Cart cleared")
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	orders, err := s.Store.ListOrders(r.Context(), userID)
	if err != nil {
		s.fail(w, r, "Failed to fetch orders", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, orders)
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	o, ok, err := s.Store.GetOrder(r.Context(), id)
	if err != nil {
		s.fail(w, r, "Failed to fetch order", err, zap.String("order_id", id))
		return
	}
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "Order not found", nil)
		return
	}
	kit.WriteJSON(w, http.StatusOK, o)
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	var req createOrderReq
	if err := s.decodeValid(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "Failed to create order", requestDetail(err))
		return
	}

	c := Checkout{
		UserID:          userID,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		Lines:           make([]CheckoutLine, 0, len(req.Items)),
	}
	for _, it := range req.Items {
		c.Lines = append(c.Lines, CheckoutLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	o, err := s.Store.PlaceOrder(r.Context(), c)
	switch {
	case errors.Is(err, ErrUnknownProduct), errors.Is(err, ErrEmptyCheckout),
		errors.Is(err, ErrQuantityOutOfRange), errors.Is(err, ErrTotalOverflow):
		kit.WriteError(w, r, http.StatusBadRequest, "Failed to create order", err.Error())
		return
	case err != nil:
		s.fail(w, r, "Failed to create order", err)
		return
	}

	s.Metrics.orderPlaced()
	s.Log.Info("order placed",
		zap.String("order_id", o.ID),
		zap.String("order_number", o.OrderNumber),
		zap.String("total", o.TotalAmount),
		zap.Int("lines", len(c.Lines)),
	)
	kit.WriteJSON(w, http.StatusOK, o)
}

func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := session.IDFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "Session required", nil)
		return "", false
	}
	return id, true
}

// fail logs an unexpected store error and answers 500 with msg.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err), zap.String("path", r.URL.Path))
	s.Log.Error(strings.ToLower(msg), fields...)
	kit.WriteError(w, r, http.StatusInternalServerError, msg, nil)
}

// decodeValid reads one JSON object of at most maxBody bytes into dst and
// runs struct validation on it.
func (s *Server) decodeValid(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("extra data after json object")
	}

	return s.validate.Struct(dst)
}

type fieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

func requestDetail(err error) any {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		out := make([]fieldError, 0, len(ve))
		for _, fe := range ve {
			field := fe.Namespace()
			if _, rest, ok := strings.Cut(field, "."); ok {
				field = rest
			}
			out = append(out, fieldError{Field: field, Rule: fe.Tag(), Param: fe.Param()})
		}
		return out
	}
	return err.Error()
}
