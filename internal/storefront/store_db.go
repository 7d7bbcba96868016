package storefront

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/crypto/bcrypt"
)

//go:embed schema.sql
var schemaSQL string

const (
	pingTimeout    = 1 * time.Second
	queryTimeout   = 3 * time.Second
	txTimeout      = 5 * time.Second
	migrateTimeout = 30 * time.Second
	pgUniqueCode   = "23505"
)

const (
	userColumns     = `id, username, password_hash, email, full_name, phone, address, city, state, created_at`
	categoryColumns = `id, name, slug, description, image_url`
	sellerColumns   = `id, name, description, image_url, rating::text, total_reviews, is_verified, user_id`
	productColumns  = `id, name, description, price::text, original_price::text, image_url, images,
		category_id, seller_id, stock, rating::text, total_reviews, is_active, created_at`
	cartColumns      = `id, user_id, product_id, quantity, created_at`
	orderColumns     = `id, user_id, order_number, status, total_amount::text, shipping_address, payment_method, created_at`
	orderItemColumns = `id, order_id, product_id, quantity, price::text`
)

const (
	insertCategorySQL = `INSERT INTO categories (id, name, slug, description, image_url)
		VALUES ($1, $2, $3, $4, $5)`
	insertSellerSQL = `INSERT INTO sellers (id, name, description, image_url, rating, total_reviews, is_verified, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	insertProductSQL = `INSERT INTO products (id, name, description, price, original_price, image_url, images,
			category_id, seller_id, stock, rating, total_reviews, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	insertOrderSQL = `INSERT INTO orders (id, user_id, order_number, status, total_amount, shipping_address, payment_method, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	insertOrderItemSQL = `INSERT INTO order_items (id, order_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4, $5)`

	onConflictIgnore = ` ON CONFLICT (id) DO NOTHING`
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

// PostgresStore persists the storefront through database/sql on the pgx driver.
type PostgresStore struct {
	db         *sql.DB
	now        func() time.Time
	bcryptCost int
}

// OpenPostgres opens a pooled connection and verifies it with a ping.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, now: storeNow, bcryptCost: bcrypt.DefaultCost}
}

// Migrate applies the embedded schema. Every statement is idempotent.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, migrateTimeout)
	defer cancel()

	for _, stmt := range strings.Split(schemaSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Seed inserts the demo catalog, leaving rows that already exist untouched.
func (s *PostgresStore) Seed(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, c := range seedCategories() {
		if err := insertCategory(ctx, tx, c, onConflictIgnore); err != nil {
			return fmt.Errorf("seed category %s: %w", c.ID, err)
		}
	}
	for _, sl := range seedSellers() {
		if err := insertSeller(ctx, tx, sl, onConflictIgnore); err != nil {
			return fmt.Errorf("seed seller %s: %w", sl.ID, err)
		}
	}
	for _, p := range seedProducts(s.now()) {
		if err := insertProduct(ctx, tx, p, onConflictIgnore); err != nil {
			return fmt.Errorf("seed product %s: %w", p.ID, err)
		}
	}

	return tx.Commit()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return s.db.PingContext(ctx)
}

// Users

func (s *PostgresStore) GetUser(ctx context.Context, id string) (User, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return found(scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)))
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (User, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return found(scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)))
}

func (s *PostgresStore) CreateUser(ctx context.Context, nu NewUser) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(nu.Password), s.bcryptCost)
	if err != nil {
		return User{}, err
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

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, password_hash, email, full_name, phone, address, city, state, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, u.ID, u.Username, u.Password, u.Email, u.FullName, u.Phone, u.Address, u.City, u.State, u.CreatedAt)
	if isUniqueViolation(err) {
		return User{}, ErrUsernameTaken
	}
	if err != nil {
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// Catalog

func (s *PostgresStore) ListCategories(ctx context.Context) ([]Category, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return queryAll(ctx, s.db, scanCategory, `SELECT `+categoryColumns+` FROM categories ORDER BY position`)
}

func (s *PostgresStore) GetCategory(ctx context.Context, id string) (Category, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return found(scanCategory(s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)))
}

func (s *PostgresStore) CreateCategory(ctx context.Context, c Category) (Category, error) {
	if c.ID == "" {
		c.ID = newID()
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if err := insertCategory(ctx, s.db, c, ""); err != nil {
		return Category{}, fmt.Errorf("insert category: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) ListSellers(ctx context.Context) ([]Seller, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return queryAll(ctx, s.db, scanSeller, `SELECT `+sellerColumns+` FROM sellers ORDER BY position`)
}

func (s *PostgresStore) GetSeller(ctx context.Context, id string) (Seller, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return found(scanSeller(s.db.QueryRowContext(ctx, `SELECT `+sellerColumns+` FROM sellers WHERE id = $1`, id)))
}

func (s *PostgresStore) CreateSeller(ctx context.Context, sl Seller) (Seller, error) {
	if sl.ID == "" {
		sl.ID = newID()
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if err := insertSeller(ctx, s.db, sl, ""); err != nil {
		return Seller{}, fmt.Errorf("insert seller: %w", err)
	}
	return sl, nil
}

func (s *PostgresStore) ListProducts(ctx context.Context, f ProductFilter) ([]ProductWithDetails, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	products, err := queryAll(ctx, s.db, scanProduct, `
		SELECT `+productColumns+`
		FROM products
		WHERE is_active
		  AND ($1 = '' OR category_id = $1)
		  AND ($2 = '' OR strpos(lower(name), lower($2)) > 0 OR strpos(lower(description), lower($2)) > 0)
		ORDER BY position
	`, f.CategoryID, f.Search)
	if err != nil {
		return nil, err
	}
	return s.withDetails(ctx, products)
}

func (s *PostgresStore) GetProduct(ctx context.Context, id string) (ProductWithDetails, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	p, ok, err := getProduct(ctx, s.db, id, "")
	if err != nil || !ok {
		return ProductWithDetails{}, ok, err
	}

	out, err := s.withDetails(ctx, []Product{p})
	if err != nil {
		return ProductWithDetails{}, false, err
	}
	return out[0], true, nil
}

func (s *PostgresStore) FeaturedProducts(ctx context.Context) ([]ProductWithDetails, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	products, err := queryAll(ctx, s.db, scanProduct, `
		SELECT `+productColumns+`
		FROM products
		WHERE is_active
		ORDER BY position
		LIMIT $1
	`, featuredLimit)
	if err != nil {
		return nil, err
	}
	return s.withDetails(ctx, products)
}

func (s *PostgresStore) CreateProduct(ctx context.Context, p Product) (Product, error) {
	p, err := prepareProduct(p, s.now())
	if err != nil {
		return Product{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if err := insertProduct(ctx, s.db, p, ""); err != nil {
		return Product{}, fmt.Errorf("insert product: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) UpdateProductPrice(ctx context.Context, id, price string) (Product, bool, error) {
	normalized, err := normalizePrice(price)
	if err != nil {
		return Product{}, false, err
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return found(scanProduct(s.db.QueryRowContext(ctx,
		`UPDATE products SET price = $2 WHERE id = $1 RETURNING `+productColumns, id, normalized)))
}

func (s *PostgresStore) withDetails(ctx context.Context, products []Product) ([]ProductWithDetails, error) {
	categories, err := s.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	sellers, err := s.ListSellers(ctx)
	if err != nil {
		return nil, err
	}

	catByID := indexBy(categories, func(c Category) string { return c.ID })
	sellerByID := indexBy(sellers, func(sl Seller) string { return sl.ID })

	out := make([]ProductWithDetails, 0, len(products))
	for _, p := range products {
		out = append(out, joinProduct(p, mapLookup(catByID), mapLookup(sellerByID)))
	}
	return out, nil
}

// Cart

func (s *PostgresStore) CartItems(ctx context.Context, userID string) ([]CartItemWithProduct, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	items, err := queryAll(ctx, s.db, scanCartItem,
		`SELECT `+cartColumns+` FROM cart_items WHERE user_id = $1 ORDER BY position`, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	productByID, err := s.productsByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	sellers, err := s.ListSellers(ctx)
	if err != nil {
		return nil, err
	}
	sellerByID := indexBy(sellers, func(sl Seller) string { return sl.ID })

	out := make([]CartItemWithProduct, 0, len(items))
	for _, it := range items {
		row := CartItemWithProduct{CartItem: it}
		if p, ok := productByID[it.ProductID]; ok {
			row.Product = joinSeller(p, mapLookup(sellerByID))
		}
		out = append(out, row)
	}
	return out, nil
}

// AddToCart relies on the (user_id, product_id) unique key to merge quantities.
// The merge is summed as bigint; a result past MaxQuantity updates no row.
func (s *PostgresStore) AddToCart(ctx context.Context, item CartItem) (CartItem, error) {
	if err := checkQuantity(item.Quantity); err != nil {
		return CartItem{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	out, err := scanCartItem(s.db.QueryRowContext(ctx, `
		INSERT INTO cart_items (id, user_id, product_id, quantity, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		WHERE cart_items.quantity::bigint + EXCLUDED.quantity BETWEEN $6 AND $7
		RETURNING `+cartColumns,
		newID(), item.UserID, item.ProductID, item.Quantity, s.now(), MinQuantity, MaxQuantity))
	if errors.Is(err, sql.ErrNoRows) {
		return CartItem{}, fmt.Errorf("%w: merged quantity", ErrQuantityOutOfRange)
	}
	if err != nil {
		return CartItem{}, fmt.Errorf("upsert cart item: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) UpdateCartItem(ctx context.Context, id string, quantity int) (CartItem, bool, error) {
	if err := checkQuantity(quantity); err != nil {
		return CartItem{}, false, err
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return found(scanCartItem(s.db.QueryRowContext(ctx,
		`UPDATE cart_items SET quantity = $2 WHERE id = $1 RETURNING `+cartColumns, id, quantity)))
}

func (s *PostgresStore) RemoveFromCart(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1`, id)
	return err
}

func (s *PostgresStore) ClearCart(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	return err
}

// Orders

func (s *PostgresStore) ListOrders(ctx context.Context, userID string) ([]OrderWithItems, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	orders, err := queryAll(ctx, s.db, scanOrder, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC, position DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, orders)
}

func (s *PostgresStore) GetOrder(ctx context.Context, id string) (OrderWithItems, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	o, ok, err := found(scanOrder(s.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)))
	if err != nil || !ok {
		return OrderWithItems{}, ok, err
	}

	out, err := s.withItems(ctx, []Order{o})
	if err != nil {
		return OrderWithItems{}, false, err
	}
	return out[0], true, nil
}

func (s *PostgresStore) withItems(ctx context.Context, orders []Order) ([]OrderWithItems, error) {
	out := make([]OrderWithItems, 0, len(orders))
	if len(orders) == 0 {
		return out, nil
	}

	orderIDs := make([]string, 0, len(orders))
	for _, o := range orders {
		orderIDs = append(orderIDs, o.ID)
	}

	items, err := queryAll(ctx, s.db, scanOrderItem,
		`SELECT `+orderItemColumns+` FROM order_items WHERE order_id = ANY($1) ORDER BY position`, orderIDs)
	if err != nil {
		return nil, err
	}

	productIDs := make([]string, 0, len(items))
	for _, it := range items {
		productIDs = append(productIDs, it.ProductID)
	}
	productByID, err := s.productsByID(ctx, productIDs)
	if err != nil {
		return nil, err
	}

	byOrder := make(map[string][]OrderItemWithProduct, len(orders))
	for _, it := range items {
		row := OrderItemWithProduct{OrderItem: it}
		if p, ok := productByID[it.ProductID]; ok {
			row.Product = &p
		}
		byOrder[it.OrderID] = append(byOrder[it.OrderID], row)
	}

	for _, o := range orders {
		rows := byOrder[o.ID]
		if rows == nil {
			rows = make([]OrderItemWithProduct, 0)
		}
		out = append(out, OrderWithItems{Order: o, Items: rows})
	}
	return out, nil
}

func (s *PostgresStore) CreateOrder(ctx context.Context, o Order) (Order, error) {
	now := s.now()
	o.ID = newID()
	o.OrderNumber = orderNumber(now)
	o.CreatedAt = now

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if err := insertOrder(ctx, s.db, o); err != nil {
		return Order{}, fmt.Errorf("insert order: %w", err)
	}
	return o, nil
}

func (s *PostgresStore) AddOrderItem(ctx context.Context, it OrderItem) (OrderItem, error) {
	it.ID = newID()

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, insertOrderItemSQL, it.ID, it.OrderID, it.ProductID, it.Quantity, it.Price); err != nil {
		return OrderItem{}, fmt.Errorf("insert order item: %w", err)
	}
	return it, nil
}

// PlaceOrder runs pricing, inserts and the cart purge in one transaction.
// Product rows are share-locked so a concurrent price change waits for commit.
func (s *PostgresStore) PlaceOrder(ctx context.Context, c Checkout) (Order, error) {
	ctx, cancel := context.WithTimeout(ctx, txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return Order{}, fmt.Errorf("begin checkout: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	lines, total, err := priceCheckout(c.Lines, func(id string) (Product, bool, error) {
		return getProduct(ctx, tx, id, " FOR SHARE")
	})
	if err != nil {
		return Order{}, err
	}

	now := s.now()
	o := Order{
		ID:              newID(),
		UserID:          c.UserID,
		OrderNumber:     orderNumber(now),
		Status:          OrderStatusProcessing,
		TotalAmount:     formatMoney(total),
		ShippingAddress: c.ShippingAddress,
		PaymentMethod:   c.PaymentMethod,
		CreatedAt:       now,
	}
	if err := insertOrder(ctx, tx, o); err != nil {
		return Order{}, fmt.Errorf("insert order: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertOrderItemSQL)
	if err != nil {
		return Order{}, err
	}
	defer stmt.Close()

	for _, l := range lines {
		if _, err := stmt.ExecContext(ctx, newID(), o.ID, l.ProductID, l.Quantity, formatMoney(l.UnitPrice)); err != nil {
			return Order{}, fmt.Errorf("insert order item: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, c.UserID); err != nil {
		return Order{}, fmt.Errorf("clear cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Order{}, fmt.Errorf("commit checkout: %w", err)
	}
	return o, nil
}

func (s *PostgresStore) productsByID(ctx context.Context, ids []string) (map[string]Product, error) {
	if len(ids) == 0 {
		return map[string]Product{}, nil
	}
	products, err := queryAll(ctx, s.db, scanProduct,
		`SELECT `+productColumns+` FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	return indexBy(products, func(p Product) string { return p.ID }), nil
}

// Row helpers

func getProduct(ctx context.Context, q querier, id, lock string) (Product, bool, error) {
	return found(scanProduct(q.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`+lock, id)))
}

func insertCategory(ctx context.Context, q querier, c Category, suffix string) error {
	_, err := q.ExecContext(ctx, insertCategorySQL+suffix, c.ID, c.Name, c.Slug, c.Description, c.ImageURL)
	return err
}

func insertSeller(ctx context.Context, q querier, sl Seller, suffix string) error {
	_, err := q.ExecContext(ctx, insertSellerSQL+suffix,
		sl.ID, sl.Name, sl.Description, sl.ImageURL, sl.Rating, sl.TotalReviews, sl.IsVerified, sl.UserID)
	return err
}

func insertProduct(ctx context.Context, q querier, p Product, suffix string) error {
	var images any
	if p.Images != nil {
		b, err := json.Marshal(p.Images)
		if err != nil {
			return err
		}
		images = string(b)
	}

	_, err := q.ExecContext(ctx, insertProductSQL+suffix,
		p.ID, p.Name, p.Description, p.Price, p.OriginalPrice, p.ImageURL, images,
		p.CategoryID, p.SellerID, p.Stock, p.Rating, p.TotalReviews, p.IsActive, p.CreatedAt)
	return err
}

func insertOrder(ctx context.Context, q querier, o Order) error {
	_, err := q.ExecContext(ctx, insertOrderSQL,
		o.ID, o.UserID, o.OrderNumber, o.Status, o.TotalAmount, o.ShippingAddress, o.PaymentMethod, o.CreatedAt)
	return err
}

func queryAll[T any](ctx context.Context, q querier, scan func(rowScanner) (T, error), query string, args ...any) ([]T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]T, 0, 16)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// found turns sql.ErrNoRows into the not-found sentinel.
func found[T any](v T, err error) (T, bool, error) {
	var zero T
	if errors.Is(err, sql.ErrNoRows) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

func scanUser(row rowScanner) (User, error) {
	var (
		u                           User
		phone, address, city, state sql.Null[string]
	)
	err := row.Scan(&u.ID, &u.Username, &u.Password, &u.Email, &u.FullName, &phone, &address, &city, &state, &u.CreatedAt)
	if err != nil {
		return User{}, err
	}
	u.Phone, u.Address, u.City, u.State = nullPtr(phone), nullPtr(address), nullPtr(city), nullPtr(state)
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}

func scanCategory(row rowScanner) (Category, error) {
	var (
		c                     Category
		description, imageURL sql.Null[string]
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Slug, &description, &imageURL); err != nil {
		return Category{}, err
	}
	c.Description, c.ImageURL = nullPtr(description), nullPtr(imageURL)
	return c, nil
}

func scanSeller(row rowScanner) (Seller, error) {
	var (
		sl                                     Seller
		description, imageURL, rating, userID sql.Null[string]
		totalReviews                           sql.Null[int]
		isVerified                             sql.Null[bool]
	)
	if err := row.Scan(&sl.ID, &sl.Name, &description, &imageURL, &rating, &totalReviews, &isVerified, &userID); err != nil {
		return Seller{}, err
	}
	sl.Description, sl.ImageURL, sl.Rating, sl.UserID = nullPtr(description), nullPtr(imageURL), nullPtr(rating), nullPtr(userID)
	sl.TotalReviews = nullPtr(totalReviews)
	sl.IsVerified = nullPtr(isVerified)
	return sl, nil
}

func scanProduct(row rowScanner) (Product, error) {
	var (
		p                                           Product
		originalPrice, categoryID, sellerID, rating sql.Null[string]
		stock, totalReviews                         sql.Null[int]
		isActive                                    sql.Null[bool]
		images                                      []byte
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &originalPrice, &p.ImageURL, &images,
		&categoryID, &sellerID, &stock, &rating, &totalReviews, &isActive, &p.CreatedAt)
	if err != nil {
		return Product{}, err
	}

	p.OriginalPrice, p.CategoryID, p.SellerID, p.Rating = nullPtr(originalPrice), nullPtr(categoryID), nullPtr(sellerID), nullPtr(rating)
	p.Stock, p.TotalReviews = nullPtr(stock), nullPtr(totalReviews)
	p.IsActive = nullPtr(isActive)
	p.CreatedAt = p.CreatedAt.UTC()

	if len(images) > 0 {
		if err := json.Unmarshal(images, &p.Images); err != nil {
			return Product{}, fmt.Errorf("decode images of %s: %w", p.ID, err)
		}
	}
	return p, nil
}

func scanCartItem(row rowScanner) (CartItem, error) {
	var it CartItem
	if err := row.Scan(&it.ID, &it.UserID, &it.ProductID, &it.Quantity, &it.CreatedAt); err != nil {
		return CartItem{}, err
	}
	it.CreatedAt = it.CreatedAt.UTC()
	return it, nil
}

func scanOrder(row rowScanner) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.UserID, &o.OrderNumber, &o.Status, &o.TotalAmount, &o.ShippingAddress, &o.PaymentMethod, &o.CreatedAt)
	if err != nil {
		return Order{}, err
	}
	o.CreatedAt = o.CreatedAt.UTC()
	return o, nil
}

func scanOrderItem(row rowScanner) (OrderItem, error) {
	var it OrderItem
	if err := row.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.Price); err != nil {
		return OrderItem{}, err
	}
	return it, nil
}

func nullPtr[T any](n sql.Null[T]) *T {
	if !n.Valid {
		return nil
	}
	v := n.V
	return &v
}

func indexBy[T any](items []T, key func(T) string) map[string]T {
	m := make(map[string]T, len(items))
	for _, it := range items {
		m[key(it)] = it
	}
	return m
}

func mapLookup[T any](m map[string]T) func(string) (T, bool) {
	return func(id string) (T, bool) {
		v, ok := m[id]
		return v, ok
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueCode
}
