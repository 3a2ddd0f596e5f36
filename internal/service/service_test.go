package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"posledger/backend/internal/domain"
	"posledger/backend/internal/store"
	"posledger/backend/internal/store/memory"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

type fixture struct {
	svc     *Service
	repo    *memory.Store
	clock   *testClock
	cashier domain.User
}

func newFixture(t *testing.T, opts Options) fixture {
	t.Helper()
	repo := memory.New()
	clock := &testClock{now: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)}
	opts.Logger = zaptest.NewLogger(t)
	opts.Now = clock.Now
	svc := New(repo, opts)

	cashier, err := svc.CreateUser(context.Background(), domain.UserCreateRequest{
		Username: "kasir01",
		Email:    "kasir01@example.com",
		Password: "rahasia-123",
	})
	require.NoError(t, err)
	return fixture{svc: svc, repo: repo, clock: clock, cashier: cashier}
}

func (f fixture) product(t *testing.T, sku string, price string, stock int) domain.Product {
	t.Helper()
	p, err := f.svc.CreateProduct(context.Background(), domain.ProductCreateRequest{
		Name:          "Product " + sku,
		SKU:           sku,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
	})
	require.NoError(t, err)
	return p
}

func (f fixture) stock(t *testing.T, id int64) int {
	t.Helper()
	p, err := f.svc.GetProduct(context.Background(), id)
	require.NoError(t, err)
	return p.StockQuantity
}

func (f fixture) sell(t *testing.T, items ...domain.LineItem) domain.Sale {
	t.Helper()
	sale, err := f.svc.CommitSale(context.Background(), domain.CommitSaleRequest{
		CashierID:     f.cashier.ID,
		PaymentMethod: domain.PaymentCash,
		Items:         items,
	})
	require.NoError(t, err)
	return sale
}

func line(p domain.Product, qty int) domain.LineItem {
	return domain.LineItem{ProductID: p.ID, Quantity: qty, UnitPrice: p.Price}
}

func TestCommitSaleDecrementsStockAndRecordsItems(t *testing.T) {
	f := newFixture(t, Options{})
	p := f.product(t, "SKU-P", "19.99", 100)
	q := f.product(t, "SKU-Q", "29.99", 50)

	sale := f.sell(t, line(p, 3), line(q, 2))

	assert.Equal(t, 97, f.stock(t, p.ID))
	assert.Equal(t, 48, f.stock(t, q.ID))
	assert.Equal(t, "119.95", sale.TotalAmount.StringFixed(2))
	assert.Equal(t, f.clock.Now(), sale.SaleDate)

	withItems, err := f.svc.GetSaleWithItems(context.Background(), sale.ID)
	require.NoError(t, err)
	require.Len(t, withItems.Items, 2)
	assert.Equal(t, p.ID, withItems.Items[0].ProductID)
	assert.Equal(t, "59.97", withItems.Items[0].TotalPrice.StringFixed(2))
	assert.Equal(t, "59.98", withItems.Items[1].TotalPrice.StringFixed(2))
}

func TestCommitSaleAcceptsMatchingTotal(t *testing.T) {
	f := newFixture(t, Options{})
	p := f.product(t, "SKU-P", "19.99", 100)
	total := decimal.RequireFromString("39.980")

	sale, err := f.svc.CommitSale(context.Background(), domain.CommitSaleRequest{
		CashierID:     f.cashier.ID,
		PaymentMethod: domain.PaymentCard,
		TotalAmount:   &total,
		Items:         []domain.LineItem{line(p, 2)},
	})
	require.NoError(t, err)
	assert.Equal(t, "39.98", sale.TotalAmount.StringFixed(2))
}

func TestCommitSaleRejectsMismatchedTotal(t *testing.T) {
	f := newFixture(t, Options{})
	p := f.product(t, "SKU-P", "19.99", 100)
	total := decimal.RequireFromString("40.00")

	_, err := f.svc.CommitSale(context.Background(), domain.CommitSaleRequest{
		CashierID:     f.cashier.ID,
		PaymentMethod: domain.PaymentCash,
		TotalAmount:   &total,
		Items:         []domain.LineItem{line(p, 2)},
	})
	var verr *store.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "total_amount", verr.Field)
	assert.Equal(t, 100, f.stock(t, p.ID))
}

func TestCommitSaleValidatesShape(t *testing.T) {
	f := newFixture(t, Options{})
	p := f.product(t, "SKU-P", "19.99", 100)

	cases := []struct {
		name  string
		req   domain.CommitSaleRequest
		field string
	}{
		{"empty items", domain.CommitSaleRequest{CashierID: f.cashier.ID, PaymentMethod: domain.PaymentCash}, "items"},
		{"missing cashier", domain.CommitSaleRequest{PaymentMethod: domain.PaymentCash, Items: []domain.LineItem{line(p, 1)}}, "cashier_id"},
		{"bad payment method", domain.CommitSaleRequest{CashierID: f.cashier.ID, PaymentMethod: "cheque", Items: []domain.LineItem{line(p, 1)}}, "payment_method"},
		{"zero quantity", domain.CommitSaleRequest{CashierID: f.cashier.ID, PaymentMethod: domain.PaymentCash, Items: []domain.LineItem{line(p, 0)}}, "items[0].quantity"},
		{"negative price", domain.CommitSaleRequest{CashierID: f.cashier.ID, PaymentMethod: domain.PaymentCash, Items: []domain.LineItem{
			line(p, 1), {ProductID: p.ID, Quantity: 1, UnitPrice: decimal.RequireFromString("-1.00")},
		}}, "items[1].unit_price"},
		{"sub-cent price", domain.CommitSaleRequest{CashierID: f.cashier.ID, PaymentMethod: domain.PaymentCash, Items: []domain.LineItem{
			{ProductID: p.ID, Quantity: 1, UnitPrice: decimal.RequireFromString("1.005")},
		}}, "items[0].unit_price"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.CommitSale(context.Background(), tc.req)
			var verr *store.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
	assert.Equal(t, 100, f.stock(t, p.ID))
}

func TestCommitSaleUnknownProductLeavesNoTrace(t *testing.T) {
	f := newFixture(t, Options{})
	p := f.product(t, "SKU-P", "19.99", 100)

	_, err := f.svc.CommitSale(context.Background(), domain.CommitSaleRequest{
		CashierID:     f.cashier.ID,
		PaymentMethod: domain.PaymentCash,
		Items: []domain.LineItem{
			line(p, 5),
			{ProductID: 9999, Quantity: 1, UnitPrice: decimal.RequireFromString("1.00")},
		},
	})
	var nf *store.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, store.EntityProduct, nf.Entity)
	assert.Equal(t, int64(9999), nf.ID)

	assert.Equal(t, 100, f.stock(t, p.ID))
	sales, err := f.svc.ListSales(context.Background(), domain.SaleListQuery{})
	require.NoError(t, err)
	assert.Empty(t, sales)
}

func TestCommitSaleUnknownCashierAndCustomer(t *testing.T) {
	f := newFixture(t, Options{})
	p := f.product(t, "SKU-P", "19.99", 100)

	_, err := f.svc.CommitSale(context.Background(), domain.CommitSaleRequest{
		CashierID: 4242, PaymentMethod: domain.PaymentCash, Items: []domain.LineItem{line(p, 1)},
	})
	var nf *store.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, store.EntityCashier, nf.Entity)

	customer := int64(77)
	_, err = f.svc.CommitSale(context.Background(), domain.CommitSaleRequest{
		CashierID: f.cashier.ID, CustomerID: &customer, PaymentMethod: domain.PaymentCash, Items: []domain.LineItem{line(p, 1)},
	})
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, store.EntityCustomer, nf.Entity)
	assert.Equal(t, 100, f.stock(t, p.ID))
}

func TestCommitSaleWithKnownCustomer(t *testing.T) {
	f := newFixture(t, Options{})
	p := f.product(t, "SKU-P", "19.99", 100)
	c, err := f.svc.CreateCustomer(context.Background(), domain.CustomerCreateRequest{Name: "Budi"})
	require.NoError(t, err)

	sale, err := f.svc.CommitSale(context.Background(), domain.CommitSaleRequest{
		CashierID: f.cashier.ID, CustomerID: &c.ID, PaymentMethod: domain.PaymentDigital, Items: []domain.LineItem{line(p, 1)},
	})
	require.NoError(t, err)
	require.NotNil(t, sale.CustomerID)
	assert.Equal(t, c.ID, *sale.CustomerID)
}

func TestCommitSaleRepeatedProductAccumulates(t *testing.T) {
	f := newFixture(t, Options{})
	p := f.product(t, "SKU-P", "19.99", 100)

	_, err := f.svc.CommitSale(context.Background(), domain.CommitSaleRequest{
		CashierID: f.cashier.ID, PaymentMethod: domain.PaymentCash, Items: []domain.LineItem{line(p, 60), line(p, 50)},
	})
	var stockErr *store.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, p.ID, stockErr.ProductID)
	assert.Equal(t, 100, stockErr.Available)
	assert.Equal(t, 110, stockErr.Requested)
	assert.Equal(t, 100, f.stock(t, p.ID))

	f.sell(t, line(p, 3), line(p, 4))
	assert.Equal(t, 93, f.stock(t, p.ID))
}

func TestCommitSaleRejectsOversizedQuantity(t *testing.T) {
	f := newFixture(t, Options{})
	p := f.product(t, "SKU-P", "0.01", 10)
	ctx := context.Background()

	_, err := f.svc.CommitSale(ctx, domain.CommitSaleRequest{
		CashierID: f.cashier.ID, PaymentMethod: domain.PaymentCash,
		Items: []domain.LineItem{line(p, 1), line(p, math.MaxInt)},
	})
	var validationErr *store.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "items[1].quantity", validationErr.Field)

	_, err = f.svc.CommitSale(ctx, domain.CommitSaleRequest{
		CashierID: f.cashier.ID, PaymentMethod: domain.PaymentCash,
		Items: []domain.LineItem{line(p, 1), line(p, domain.MaxQuantity)},
	})
	assert.ErrorIs(t, err, store.ErrInsufficientStock)

	assert.Equal(t, 10, f.stock(t, p.ID))
	sales, err := f.svc.ListSales(ctx, domain.SaleListQuery{})
	require.NoError(t, err)
	assert.Empty(t, sales)
}

func TestCommitSaleIsNotIdempotent(t *testing.T) {
	f := newFixture(t, Options{})
	p := f.product(t, "SKU-P", "19.99", 100)

	first := f.sell(t, line(p, 1))
	second := f.sell(t, line(p, 1))
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 98, f.stock(t, p.ID))
}

func TestConcurrentSalesCannotOversell(t *testing.T) {
	f := newFixture(t, Options{})
	p := f.product(t, "SKU-P", "19.99", 100)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.CommitSale(context.Background(), domain.CommitSaleRequest{
				CashierID: f.cashier.ID, PaymentMethod: domain.PaymentCash, Items: []domain.LineItem{line(p, 60)},
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, store.ErrInsufficientStock)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 40, f.stock(t, p.ID))
}

func TestCommitSaleCancelledContextIsStoreFailure(t *testing.T) {
	f := newFixture(t, Options{TxTimeout: time.Second})
	p := f.product(t, "SKU-P", "19.99", 100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.svc.CommitSale(ctx, domain.CommitSaleRequest{
		CashierID: f.cashier.ID, PaymentMethod: domain.PaymentCash, Items: []domain.LineItem{line(p, 1)},
	})
	require.ErrorIs(t, err, store.ErrStoreFailure)
	assert.Equal(t, "store_failure", store.Kind(err))
	assert.Equal(t, 100, f.stock(t, p.ID))
}

func TestSalesSummaryThreeSales(t *testing.T) {
	f := newFixture(t, Options{})
	a := f.product(t, "SKU-A", "100.50", 10)
	b := f.product(t, "SKU-B", "250.75", 10)
	c := f.product(t, "SKU-C", "75.25", 10)

	f.clock.Set(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	f.sell(t, line(a, 1))
	f.clock.Set(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC))
	f.sell(t, line(b, 1))
	f.clock.Set(time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC))
	f.sell(t, line(c, 1))
	f.clock.Set(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	f.sell(t, line(c, 1))

	summary, err := f.svc.SalesSummary(context.Background(), "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.TotalSales)
	assert.Equal(t, "426.50", summary.TotalAmount.StringFixed(2))
	assert.Equal(t, "142.17", summary.AverageSale.StringFixed(2))
	assert.Equal(t, "2024-01-01", summary.PeriodStart)
	assert.Equal(t, "2024-01-31", summary.PeriodEnd)
}

func TestSalesSummaryEmptyRange(t *testing.T) {
	f := newFixture(t, Options{})

	summary, err := f.svc.SalesSummary(context.Background(), "2023-06-01", "2023-06-30")
	require.NoError(t, err)
	assert.Zero(t, summary.TotalSales)
	assert.True(t, summary.TotalAmount.IsZero())
	assert.True(t, summary.AverageSale.IsZero())
}

func TestReportPeriodValidation(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	_, err := f.svc.SalesSummary(ctx, "2024-02-01", "2024-01-01")
	assert.ErrorIs(t, err, store.ErrValidation)
	_, err = f.svc.BestSellingProducts(ctx, "01/02/2024", "2024-02-01")
	assert.ErrorIs(t, err, store.ErrValidation)
	_, err = f.svc.SalesSummary(ctx, "", "2024-02-01")
	assert.ErrorIs(t, err, store.ErrValidation)

	_, err = f.svc.SalesSummary(ctx, "2024-01-01", "2024-01-01")
	assert.NoError(t, err)
	_, err = f.svc.SalesSummary(ctx, "2024-01-01T08:00:00Z", "2024-01-02T23:00:00+07:00")
	assert.NoError(t, err)
}

func TestBestSellingProductsRanksByQuantity(t *testing.T) {
	f := newFixture(t, Options{})
	a := f.product(t, "SKU-A", "5.00", 100)
	b := f.product(t, "SKU-B", "2.50", 100)
	c := f.product(t, "SKU-C", "1.00", 100)

	f.sell(t, line(b, 4), line(a, 5))
	f.sell(t, line(b, 6))
	f.clock.Set(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))
	f.sell(t, line(c, 50))

	ranking, err := f.svc.BestSellingProducts(context.Background(), "2024-03-01", "2024-03-31")
	require.NoError(t, err)
	require.Len(t, ranking, 2)
	assert.Equal(t, b.ID, ranking[0].ProductID)
	assert.Equal(t, int64(10), ranking[0].TotalQuantitySold)
	assert.Equal(t, "25.00", ranking[0].TotalRevenue.StringFixed(2))
	assert.Equal(t, b.Name, ranking[0].ProductName)
	assert.Equal(t, a.ID, ranking[1].ProductID)
	assert.Equal(t, int64(5), ranking[1].TotalQuantitySold)
}

func TestBestSellingProductsTieBreaksOnProductID(t *testing.T) {
	f := newFixture(t, Options{})
	a := f.product(t, "SKU-A", "5.00", 100)
	b := f.product(t, "SKU-B", "2.50", 100)

	f.sell(t, line(b, 3))
	f.sell(t, line(a, 3))

	ranking, err := f.svc.BestSellingProducts(context.Background(), "2024-03-10", "2024-03-10")
	require.NoError(t, err)
	require.Len(t, ranking, 2)
	assert.Equal(t, a.ID, ranking[0].ProductID)
	assert.Equal(t, b.ID, ranking[1].ProductID)
}

func TestInventoryReport(t *testing.T) {
	f := newFixture(t, Options{})

	report, err := f.svc.InventoryReport(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, report)
	assert.Empty(t, report)

	p := f.product(t, "SKU-P", "19.99", 100)
	f.sell(t, line(p, 10))

	report, err = f.svc.InventoryReport(context.Background())
	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.Equal(t, 90, report[0].CurrentStock)
	assert.Equal(t, "SKU-P", report[0].SKU)
	assert.Equal(t, "1799.10", report[0].StockValue().StringFixed(2))
}

func TestReportsAreCachedUntilNextCommit(t *testing.T) {
	reports := newMapCache()
	f := newFixture(t, Options{Reports: reports})
	p := f.product(t, "SKU-P", "10.00", 100)
	f.sell(t, line(p, 1))
	ctx := context.Background()

	first, err := f.svc.SalesSummary(ctx, "2024-03-10", "2024-03-10")
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.TotalSales)

	_, err = f.svc.SalesSummary(ctx, "2024-03-10", "2024-03-10")
	require.NoError(t, err)
	assert.Equal(t, 1, reports.hits)

	f.sell(t, line(p, 1))
	after, err := f.svc.SalesSummary(ctx, "2024-03-10", "2024-03-10")
	require.NoError(t, err)
	assert.Equal(t, int64(2), after.TotalSales)
	assert.Equal(t, 1, reports.hits)
}

func TestListSales(t *testing.T) {
	f := newFixture(t, Options{})
	p := f.product(t, "SKU-P", "1.00", 1000)
	ctx := context.Background()

	first := f.sell(t, line(p, 1))
	f.clock.Set(f.clock.Now().Add(time.Hour))
	second := f.sell(t, line(p, 1))

	sales, err := f.svc.ListSales(ctx, domain.SaleListQuery{StartDate: "2024-03-10", EndDate: "2024-03-10"})
	require.NoError(t, err)
	require.Len(t, sales, 2)
	assert.Equal(t, second.ID, sales[0].ID)
	assert.Equal(t, first.ID, sales[1].ID)

	sales, err = f.svc.ListSales(ctx, domain.SaleListQuery{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, first.ID, sales[0].ID)

	sales, err = f.svc.ListSales(ctx, domain.SaleListQuery{PaymentMethod: "card"})
	require.NoError(t, err)
	assert.Empty(t, sales)

	_, err = f.svc.ListSales(ctx, domain.SaleListQuery{PaymentMethod: "barter"})
	assert.ErrorIs(t, err, store.ErrValidation)
	_, err = f.svc.ListSales(ctx, domain.SaleListQuery{Offset: -1})
	assert.ErrorIs(t, err, store.ErrValidation)
}

func TestListSalesByCashier(t *testing.T) {
	f := newFixture(t, Options{})
	p := f.product(t, "SKU-P", "1.00", 1000)
	f.sell(t, line(p, 1))

	sales, err := f.svc.ListSalesByCashier(context.Background(), f.cashier.ID)
	require.NoError(t, err)
	assert.Len(t, sales, 1)

	_, err = f.svc.ListSalesByCashier(context.Background(), 999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteProductGuardedBySales(t *testing.T) {
	f := newFixture(t, Options{})
	sold := f.product(t, "SKU-P", "1.00", 10)
	unsold := f.product(t, "SKU-Q", "1.00", 10)
	f.sell(t, line(sold, 1))

	assert.ErrorIs(t, f.svc.DeleteProduct(context.Background(), sold.ID), store.ErrHasDependentSales)
	assert.NoError(t, f.svc.DeleteProduct(context.Background(), unsold.ID))
	_, err := f.svc.GetProduct(context.Background(), unsold.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateProductValidation(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	_, err := f.svc.CreateProduct(ctx, domain.ProductCreateRequest{Name: "x", SKU: "S", Price: decimal.Zero})
	assert.ErrorIs(t, err, store.ErrValidation)
	_, err = f.svc.CreateProduct(ctx, domain.ProductCreateRequest{Name: "x", SKU: "S", Price: decimal.NewFromInt(1), StockQuantity: -1})
	assert.ErrorIs(t, err, store.ErrValidation)
	_, err = f.svc.CreateProduct(ctx, domain.ProductCreateRequest{Name: "x", SKU: "S", Price: decimal.NewFromInt(1), StockQuantity: domain.MaxQuantity + 1})
	assert.ErrorIs(t, err, store.ErrValidation)

	f.product(t, "SKU-DUP", "1.00", 1)
	_, err = f.svc.CreateProduct(ctx, domain.ProductCreateRequest{Name: "y", SKU: "SKU-DUP", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, store.ErrConflict)

	got, err := f.svc.GetProductBySKU(ctx, " SKU-DUP ")
	require.NoError(t, err)
	assert.Equal(t, "SKU-DUP", got.SKU)
}

func TestCreateUserHashesPassword(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	user, err := f.svc.GetUserByUsername(ctx, "KASIR01")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCashier, user.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("rahasia-123")))

	_, err = f.svc.CreateUser(ctx, domain.UserCreateRequest{Username: "kasir01", Email: "other@example.com", Password: "rahasia-123"})
	assert.ErrorIs(t, err, store.ErrConflict)
	_, err = f.svc.CreateUser(ctx, domain.UserCreateRequest{Username: "boss", Email: "boss@example.com", Password: "rahasia-123", Role: "owner"})
	assert.ErrorIs(t, err, store.ErrValidation)
	_, err = f.svc.CreateUser(ctx, domain.UserCreateRequest{Username: "manager", Email: "m@example.com", Password: "short"})
	assert.ErrorIs(t, err, store.ErrValidation)
}

func TestEnsureAdminOnlyOnEmptyDirectory(t *testing.T) {
	svc := New(memory.New(), Options{Logger: zaptest.NewLogger(t)})
	ctx := context.Background()

	_, err := svc.EnsureAdmin(ctx, "admin", "")
	assert.Error(t, err)

	created, err := svc.EnsureAdmin(ctx, "admin", "very-secret-pass")
	require.NoError(t, err)
	assert.True(t, created)

	admin, err := svc.GetUserByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, admin.Role)

	created, err = svc.EnsureAdmin(ctx, "admin2", "very-secret-pass")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestDirectoryListsAndDeleteUser(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	p := f.product(t, "SKU-P", "1.00", 10)

	budi, err := f.svc.CreateCustomer(ctx, domain.CustomerCreateRequest{Name: " Budi "})
	require.NoError(t, err)
	customers, err := f.svc.ListCustomers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, budi.ID, customers[0].ID)
	assert.Equal(t, "Budi", customers[0].Name)

	idle, err := f.svc.CreateUser(ctx, domain.UserCreateRequest{Username: "kasir02", Email: "kasir02@example.com", Password: "rahasia-456"})
	require.NoError(t, err)
	users, err := f.svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, f.cashier.ID, users[0].ID)
	assert.Equal(t, idle.ID, users[1].ID)

	f.sell(t, line(p, 1))
	assert.ErrorIs(t, f.svc.DeleteUser(ctx, f.cashier.ID), store.ErrHasDependentSales)

	self := WithActor(ctx, domain.Actor{UserID: idle.ID, Username: idle.Username, Role: domain.RoleAdmin})
	assert.ErrorIs(t, f.svc.DeleteUser(self, idle.ID), store.ErrValidation)

	require.NoError(t, f.svc.DeleteUser(ctx, idle.ID))
	_, err = f.svc.GetUserByUsername(ctx, "kasir02")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, f.svc.DeleteUser(ctx, idle.ID), store.ErrNotFound)

	_, err = f.svc.CreateUser(ctx, domain.UserCreateRequest{Username: "kasir02", Email: "kasir02@example.com", Password: "rahasia-456"})
	assert.NoError(t, err)
}
