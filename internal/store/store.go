package store

import (
	"context"

	"posledger/backend/internal/domain"
)

// Directory answers identity questions about users and customers. List
// results are ordered by id. DeleteUser must refuse with ErrHasDependentSales
// while any sale names the user as its cashier.
type Directory interface {
	CashierExists(ctx context.Context, id int64) (bool, error)
	CustomerExists(ctx context.Context, id int64) (bool, error)
	CreateUser(ctx context.Context, user domain.User) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	DeleteUser(ctx context.Context, id int64) error
	CountUsers(ctx context.Context) (int, error)
	CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error)
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
}

// Catalog is the product side of the inventory store. DeleteProduct must
// refuse with ErrHasDependentSales while any sale item references the product.
type Catalog interface {
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetStockAndPrice(ctx context.Context, id int64) (domain.StockAndPrice, error)
	DeleteProduct(ctx context.Context, id int64) error
}

// Ledger is the append-only sale record.
//
// CommitSale runs the existence and stock checks and all writes as one unit
// of work: cashier, then customer, then each line item in order. Stock is
// checked against the cumulative demand per product before any decrement.
// On any error nothing is persisted.
type Ledger interface {
	CommitSale(ctx context.Context, sale domain.NewSale) (*domain.Sale, error)
	GetSaleWithItems(ctx context.Context, id int64) (*domain.SaleWithItems, error)
	ListSales(ctx context.Context, filter domain.SaleFilter) ([]domain.Sale, error)
}

// Reports reads committed ledger state only.
type Reports interface {
	SalesTotals(ctx context.Context, period domain.ReportPeriod) (domain.SalesTotals, error)
	BestSellingProducts(ctx context.Context, period domain.ReportPeriod) ([]domain.BestSellingProduct, error)
	InventoryReport(ctx context.Context) ([]domain.InventoryReportItem, error)
}

type Repository interface {
	Directory
	Catalog
	Ledger
	Reports
}
