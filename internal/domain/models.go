package domain

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash    PaymentMethod = "cash"
	PaymentCard    PaymentMethod = "card"
	PaymentDigital PaymentMethod = "digital"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentDigital:
		return true
	}
	return false
}

// MaxQuantity bounds a single line quantity and a product's stock; it matches
// the INTEGER columns the postgres store keeps them in.
const MaxQuantity = math.MaxInt32

const (
	RoleCashier = "cashier"
	RoleAdmin   = "admin"
)

type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Description   *string         `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	SKU           string          `json:"sku"`
	Barcode       *string         `json:"barcode"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type ProductCreateRequest struct {
	Name          string          `json:"name"`
	Description   *string         `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	SKU           string          `json:"sku"`
	Barcode       *string         `json:"barcode,omitempty"`
}

// StockAndPrice is the slice of a product the sale engine reads before committing.
type StockAndPrice struct {
	ProductID int64
	Stock     int
	Price     decimal.Decimal
}

type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email"`
	Phone     *string   `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CustomerCreateRequest struct {
	Name  string  `json:"name"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

// User is a directory entry. PasswordHash never leaves the process.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type UserCreateRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type Sale struct {
	ID            int64           `json:"id"`
	CustomerID    *int64          `json:"customer_id"`
	CashierID     int64           `json:"cashier_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	SaleDate      time.Time       `json:"sale_date"`
	CreatedAt     time.Time       `json:"created_at"`
}

type SaleItem struct {
	ID         int64           `json:"id"`
	SaleID     int64           `json:"sale_id"`
	ProductID  int64           `json:"product_id"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
	CreatedAt  time.Time       `json:"created_at"`
}

type SaleWithItems struct {
	Sale
	Items []SaleItem `json:"items"`
}

type LineItem struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// TotalPrice is quantity × unit price, exact at two places for validated prices.
func (l LineItem) TotalPrice() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type CommitSaleRequest struct {
	CustomerID    *int64           `json:"customer_id,omitempty"`
	CashierID     int64            `json:"cashier_id"`
	PaymentMethod PaymentMethod    `json:"payment_method"`
	TotalAmount   *decimal.Decimal `json:"total_amount,omitempty"`
	Items         []LineItem       `json:"items"`
}

// NewSale is what the ledger persists: the request after validation and
// total recomputation.
type NewSale struct {
	CustomerID    *int64
	CashierID     int64
	PaymentMethod PaymentMethod
	TotalAmount   decimal.Decimal
	SaleDate      time.Time
	Items         []LineItem
}

type SaleFilter struct {
	From          *time.Time
	To            *time.Time
	CashierID     *int64
	CustomerID    *int64
	PaymentMethod PaymentMethod
	Limit         int
	Offset        int
}

// SaleListQuery is the caller-facing form of SaleFilter: dates are
// YYYY-MM-DD calendar days, both inclusive.
type SaleListQuery struct {
	StartDate     string
	EndDate       string
	CashierID     *int64
	CustomerID    *int64
	PaymentMethod string
	Limit         int
	Offset        int
}

// ReportPeriod is a half-open UTC interval [From, To).
type ReportPeriod struct {
	From time.Time
	To   time.Time
}

type SalesTotals struct {
	Count       int64
	TotalAmount decimal.Decimal
}

type SalesSummary struct {
	TotalSales  int64           `json:"total_sales"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	AverageSale decimal.Decimal `json:"average_sale"`
	PeriodStart string          `json:"period_start"`
	PeriodEnd   string          `json:"period_end"`
}

type BestSellingProduct struct {
	ProductID         int64           `json:"product_id"`
	ProductName       string          `json:"product_name"`
	TotalQuantitySold int64           `json:"total_quantity_sold"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
}

type InventoryReportItem struct {
	ProductID    int64           `json:"product_id"`
	ProductName  string          `json:"product_name"`
	CurrentStock int             `json:"current_stock"`
	SKU          string          `json:"sku"`
	Price        decimal.Decimal `json:"price"`
}

// StockValue is derived for display only.
func (i InventoryReportItem) StockValue() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.CurrentStock)))
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	UserID      int64  `json:"user_id"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	UserID   int64
	Username string
	Role     string
}
