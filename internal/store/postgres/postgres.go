package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"

	"posledger/backend/internal/domain"
	"posledger/backend/internal/store"
)

//go:embed schema.sql
var schemaSQL string

type Options struct {
	// LockTimeout bounds how long a sale commit waits on product row locks.
	LockTimeout time.Duration
}

type Store struct {
	db          *sql.DB
	lockTimeout time.Duration
}

func New(ctx context.Context, databaseURL string, opts Options) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, lockTimeout: opts.LockTimeout}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate applies the embedded schema. Every statement is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
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

func (s *Store) CashierExists(ctx context.Context, id int64) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id)
}

func (s *Store) CustomerExists(ctx context.Context, id int64) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)`, id)
}

func (s *Store) exists(ctx context.Context, query string, id int64) (bool, error) {
	var found bool
	if err := s.db.QueryRowContext(ctx, query, id).Scan(&found); err != nil {
		return false, store.Failure("exists", err)
	}
	return found, nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.User) (*domain.User, error) {
	user.Username = strings.ToLower(strings.TrimSpace(user.Username))
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.Username == "" || user.Email == "" || user.PasswordHash == "" {
		return nil, store.Invalid("user", "username, email and password are required")
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (username, email, password_hash, role, created_at, updated_at)
		VALUES ($1,$2,$3,$4,now(),now())
		RETURNING id, created_at, updated_at
	`, user.Username, user.Email, user.PasswordHash, user.Role).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		return nil, store.Failure("create user", err)
	}

	created := user
	return &created, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, role, created_at, updated_at
		FROM users
		WHERE username = $1
	`, strings.ToLower(strings.TrimSpace(username))).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, store.Failure("get user", err)
	}
	return &user, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, email, password_hash, role, created_at, updated_at
		FROM users
		ORDER BY id
	`)
	if err != nil {
		return nil, store.Failure("list users", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0, 16)
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, store.Failure("list users", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Failure("list users", err)
	}
	return users, nil
}

// DeleteUser locks the user row first so a concurrent sale naming this
// cashier either commits before the reference check or fails on the
// foreign key.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return store.Failure("delete user", err)
	}
	defer func() { _ = tx.Rollback() }()

	var locked int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.NotFound(store.EntityUser, id)
		}
		return store.Failure("delete user", err)
	}

	var referenced bool
	err = tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM sales WHERE cashier_id = $1)`, id).Scan(&referenced)
	if err != nil {
		return store.Failure("delete user", err)
	}
	if referenced {
		return store.ErrHasDependentSales
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrHasDependentSales
		}
		return store.Failure("delete user", err)
	}
	if err := tx.Commit(); err != nil {
		return store.Failure("delete user", err)
	}
	return nil
}

func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, store.Failure("count users", err)
	}
	return n, nil
}

func (s *Store) CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	customer.Name = strings.TrimSpace(customer.Name)
	if customer.Name == "" {
		return nil, store.Invalid("name", "is required")
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO customers (name, email, phone, created_at, updated_at)
		VALUES ($1,$2,$3,now(),now())
		RETURNING id, created_at, updated_at
	`, customer.Name, nullString(customer.Email), nullString(customer.Phone)).Scan(&customer.ID, &customer.CreatedAt, &customer.UpdatedAt)
	if err != nil {
		return nil, store.Failure("create customer", err)
	}

	created := customer
	return &created, nil
}

func (s *Store) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, phone, created_at, updated_at
		FROM customers
		ORDER BY id
	`)
	if err != nil {
		return nil, store.Failure("list customers", err)
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0, 16)
	for rows.Next() {
		var (
			customer domain.Customer
			email    sql.NullString
			phone    sql.NullString
		)
		if err := rows.Scan(&customer.ID, &customer.Name, &email, &phone, &customer.CreatedAt, &customer.UpdatedAt); err != nil {
			return nil, store.Failure("list customers", err)
		}
		customer.Email = stringPtr(email)
		customer.Phone = stringPtr(phone)
		customers = append(customers, customer)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Failure("list customers", err)
	}
	return customers, nil
}

const productColumns = `id, name, description, price, stock_quantity, sku, barcode, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var p domain.Product
	var description, barcode sql.NullString
	err := row.Scan(&p.ID, &p.Name, &description, &p.Price, &p.StockQuantity, &p.SKU, &barcode, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return p, err
	}
	p.Description = stringPtr(description)
	p.Barcode = stringPtr(barcode)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	product.SKU = strings.TrimSpace(product.SKU)
	product.Name = strings.TrimSpace(product.Name)
	if product.SKU == "" || product.Name == "" {
		return nil, store.Invalid("product", "name and sku are required")
	}
	if !product.Price.IsPositive() {
		return nil, store.Invalid("price", "must be positive")
	}
	if product.StockQuantity < 0 {
		return nil, store.Invalid("stock_quantity", "must not be negative")
	}

	created, err := scanProduct(s.db.QueryRowContext(ctx, `
		INSERT INTO products (name, description, price, stock_quantity, sku, barcode, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,now(),now())
		RETURNING `+productColumns,
		product.Name, nullString(product.Description), product.Price, product.StockQuantity, product.SKU, nullString(product.Barcode)))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		return nil, store.Failure("create product", err)
	}
	return &created, nil
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := scanProduct(s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.NotFound(store.EntityProduct, id)
		}
		return nil, store.Failure("get product", err)
	}
	return &product, nil
}

func (s *Store) GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	product, err := scanProduct(s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE sku = $1`, strings.TrimSpace(sku)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, store.Failure("get product by sku", err)
	}
	return &product, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, store.Failure("list products", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 64)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, store.Failure("list products", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Failure("list products", err)
	}
	return products, nil
}

func (s *Store) GetStockAndPrice(ctx context.Context, id int64) (domain.StockAndPrice, error) {
	sp := domain.StockAndPrice{ProductID: id}
	err := s.db.QueryRowContext(ctx, `SELECT stock_quantity, price FROM products WHERE id = $1`, id).Scan(&sp.Stock, &sp.Price)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sp, store.NotFound(store.EntityProduct, id)
		}
		return sp, store.Failure("get stock and price", err)
	}
	return sp, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return store.Failure("delete product", err)
	}
	defer func() { _ = tx.Rollback() }()

	var locked int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM products WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.NotFound(store.EntityProduct, id)
		}
		return store.Failure("delete product", err)
	}

	var referenced bool
	err = tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM sale_items WHERE product_id = $1)`, id).Scan(&referenced)
	if err != nil {
		return store.Failure("delete product", err)
	}
	if referenced {
		return store.ErrHasDependentSales
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrHasDependentSales
		}
		return store.Failure("delete product", err)
	}
	if err := tx.Commit(); err != nil {
		return store.Failure("delete product", err)
	}
	return nil
}

const commitAttempts = 3

// CommitSale locks every referenced product row in id order before checking
// stock, so concurrent commits on the same product serialize on the row lock
// and the second one sees the first one's decrement. Serialization failures
// and deadlocks are retried a bounded number of times.
func (s *Store) CommitSale(ctx context.Context, sale domain.NewSale) (*domain.Sale, error) {
	if len(sale.Items) == 0 {
		return nil, store.Invalid("items", "must not be empty")
	}

	var lastErr error
	for attempt := 0; attempt < commitAttempts; attempt++ {
		committed, err := s.commitSaleOnce(ctx, sale)
		if err == nil || !isRetryable(err) {
			return committed, err
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

func (s *Store) commitSaleOnce(ctx context.Context, sale domain.NewSale) (*domain.Sale, error) {
	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, store.Failure("begin sale", err)
	}
	defer func() { _ = pgTx.Rollback() }()

	if s.lockTimeout > 0 {
		if _, err := pgTx.ExecContext(ctx, fmt.Sprintf(`SET LOCAL lock_timeout = '%dms'`, s.lockTimeout.Milliseconds())); err != nil {
			return nil, store.Failure("set lock timeout", err)
		}
	}

	var found bool
	if err := pgTx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, sale.CashierID).Scan(&found); err != nil {
		return nil, store.Failure("check cashier", err)
	}
	if !found {
		return nil, store.NotFound(store.EntityCashier, sale.CashierID)
	}
	if sale.CustomerID != nil {
		if err := pgTx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)`, *sale.CustomerID).Scan(&found); err != nil {
			return nil, store.Failure("check customer", err)
		}
		if !found {
			return nil, store.NotFound(store.EntityCustomer, *sale.CustomerID)
		}
	}

	ids := store.ProductIDs(sale.Items)
	slices.Sort(ids)
	stockRows, err := pgTx.QueryContext(ctx, `
		SELECT id, stock_quantity
		FROM products
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`, ids)
	if err != nil {
		return nil, store.Failure("lock products", err)
	}
	stock := make(map[int64]int, len(ids))
	for stockRows.Next() {
		var id int64
		var qty int
		if err := stockRows.Scan(&id, &qty); err != nil {
			_ = stockRows.Close()
			return nil, store.Failure("lock products", err)
		}
		stock[id] = qty
	}
	if err := stockRows.Err(); err != nil {
		_ = stockRows.Close()
		return nil, store.Failure("lock products", err)
	}
	_ = stockRows.Close()

	if err := store.CheckLineItems(sale.Items, stock); err != nil {
		return nil, err
	}

	if sale.SaleDate.IsZero() {
		sale.SaleDate = time.Now().UTC()
	}

	committed := domain.Sale{
		CustomerID:    sale.CustomerID,
		CashierID:     sale.CashierID,
		TotalAmount:   sale.TotalAmount,
		PaymentMethod: sale.PaymentMethod,
	}
	err = pgTx.QueryRowContext(ctx, `
		INSERT INTO sales (customer_id, cashier_id, total_amount, payment_method, sale_date, created_at)
		VALUES ($1,$2,$3,$4,$5,now())
		RETURNING id, sale_date, created_at
	`, nullID(sale.CustomerID), sale.CashierID, sale.TotalAmount, string(sale.PaymentMethod), sale.SaleDate).Scan(
		&committed.ID, &committed.SaleDate, &committed.CreatedAt,
	)
	if err != nil {
		return nil, store.Failure("insert sale", err)
	}

	for _, item := range sale.Items {
		_, err := pgTx.ExecContext(ctx, `
			INSERT INTO sale_items (sale_id, product_id, quantity, unit_price, total_price, created_at)
			VALUES ($1,$2,$3,$4,$5,now())
		`, committed.ID, item.ProductID, item.Quantity, item.UnitPrice, item.TotalPrice())
		if err != nil {
			return nil, store.Failure("insert sale item", err)
		}

		res, err := pgTx.ExecContext(ctx, `
			UPDATE products
			SET stock_quantity = stock_quantity - $1, updated_at = now()
			WHERE id = $2 AND stock_quantity >= $1
		`, item.Quantity, item.ProductID)
		if err != nil {
			return nil, store.Failure("decrement stock", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, store.Failure("decrement stock", err)
		}
		if affected == 0 {
			return nil, &store.InsufficientStockError{ProductID: item.ProductID, Available: stock[item.ProductID], Requested: item.Quantity}
		}
	}

	if err := pgTx.Commit(); err != nil {
		return nil, store.Failure("commit sale", err)
	}

	committed.SaleDate = committed.SaleDate.UTC()
	committed.CreatedAt = committed.CreatedAt.UTC()
	return &committed, nil
}

const saleColumns = `id, customer_id, cashier_id, total_amount, payment_method, sale_date, created_at`

func scanSale(row rowScanner) (domain.Sale, error) {
	var sale domain.Sale
	var customerID sql.NullInt64
	var method string
	if err := row.Scan(&sale.ID, &customerID, &sale.CashierID, &sale.TotalAmount, &method, &sale.SaleDate, &sale.CreatedAt); err != nil {
		return sale, err
	}
	if customerID.Valid {
		id := customerID.Int64
		sale.CustomerID = &id
	}
	sale.PaymentMethod = domain.PaymentMethod(method)
	sale.SaleDate = sale.SaleDate.UTC()
	sale.CreatedAt = sale.CreatedAt.UTC()
	return sale, nil
}

func (s *Store) GetSaleWithItems(ctx context.Context, id int64) (*domain.SaleWithItems, error) {
	sale, err := scanSale(s.db.QueryRowContext(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.NotFound(store.EntitySale, id)
		}
		return nil, store.Failure("get sale", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sale_id, product_id, quantity, unit_price, total_price, created_at
		FROM sale_items
		WHERE sale_id = $1
		ORDER BY id
	`, id)
	if err != nil {
		return nil, store.Failure("get sale items", err)
	}
	defer rows.Close()

	items := make([]domain.SaleItem, 0, 8)
	for rows.Next() {
		var item domain.SaleItem
		if err := rows.Scan(&item.ID, &item.SaleID, &item.ProductID, &item.Quantity, &item.UnitPrice, &item.TotalPrice, &item.CreatedAt); err != nil {
			return nil, store.Failure("get sale items", err)
		}
		item.CreatedAt = item.CreatedAt.UTC()
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Failure("get sale items", err)
	}

	return &domain.SaleWithItems{Sale: sale, Items: items}, nil
}

func (s *Store) ListSales(ctx context.Context, filter domain.SaleFilter) ([]domain.Sale, error) {
	where, args := buildSaleWhere(filter)
	query := `SELECT ` + saleColumns + ` FROM sales` + where + ` ORDER BY sale_date DESC, id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.Failure("list sales", err)
	}
	defer rows.Close()

	sales := make([]domain.Sale, 0, 32)
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, store.Failure("list sales", err)
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Failure("list sales", err)
	}
	return sales, nil
}

func buildSaleWhere(filter domain.SaleFilter) (string, []any) {
	clauses := make([]string, 0, 5)
	args := make([]any, 0, 7)
	add := func(clause string, arg any) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if filter.From != nil {
		add("sale_date >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("sale_date < $%d", *filter.To)
	}
	if filter.CashierID != nil {
		add("cashier_id = $%d", *filter.CashierID)
	}
	if filter.CustomerID != nil {
		add("customer_id = $%d", *filter.CustomerID)
	}
	if filter.PaymentMethod != "" {
		add("payment_method = $%d", string(filter.PaymentMethod))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (s *Store) SalesTotals(ctx context.Context, period domain.ReportPeriod) (domain.SalesTotals, error) {
	totals := domain.SalesTotals{TotalAmount: decimal.Zero}
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)::bigint, COALESCE(SUM(total_amount), 0)
		FROM sales
		WHERE sale_date >= $1 AND sale_date < $2
	`, period.From, period.To).Scan(&totals.Count, &totals.TotalAmount)
	if err != nil {
		return totals, store.Failure("sales totals", err)
	}
	return totals, nil
}

func (s *Store) BestSellingProducts(ctx context.Context, period domain.ReportPeriod) ([]domain.BestSellingProduct, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT si.product_id, p.name, SUM(si.quantity)::bigint, COALESCE(SUM(si.total_price), 0)
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id
		JOIN products p ON p.id = si.product_id
		WHERE s.sale_date >= $1 AND s.sale_date < $2
		GROUP BY si.product_id, p.name
		ORDER BY SUM(si.quantity) DESC, si.product_id ASC
	`, period.From, period.To)
	if err != nil {
		return nil, store.Failure("best selling products", err)
	}
	defer rows.Close()

	result := make([]domain.BestSellingProduct, 0, 16)
	for rows.Next() {
		var row domain.BestSellingProduct
		if err := rows.Scan(&row.ProductID, &row.ProductName, &row.TotalQuantitySold, &row.TotalRevenue); err != nil {
			return nil, store.Failure("best selling products", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Failure("best selling products", err)
	}
	return result, nil
}

func (s *Store) InventoryReport(ctx context.Context) ([]domain.InventoryReportItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, stock_quantity, sku, price
		FROM products
		ORDER BY id
	`)
	if err != nil {
		return nil, store.Failure("inventory report", err)
	}
	defer rows.Close()

	report := make([]domain.InventoryReportItem, 0, 64)
	for rows.Next() {
		var item domain.InventoryReportItem
		if err := rows.Scan(&item.ProductID, &item.ProductName, &item.CurrentStock, &item.SKU, &item.Price); err != nil {
			return nil, store.Failure("inventory report", err)
		}
		report = append(report, item)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Failure("inventory report", err)
	}
	return report, nil
}

func isUniqueViolation(err error) bool {
	return pgCode(err) == "23505"
}

func isForeignKeyViolation(err error) bool {
	return pgCode(err) == "23503"
}

func isRetryable(err error) bool {
	switch pgCode(err) {
	case "40001", "40P01":
		return true
	}
	return false
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func nullString(val *string) any {
	if val == nil {
		return nil
	}
	return *val
}

func stringPtr(val sql.NullString) *string {
	if !val.Valid {
		return nil
	}
	v := val.String
	return &v
}

func nullID(val *int64) any {
	if val == nil {
		return nil
	}
	return *val
}
