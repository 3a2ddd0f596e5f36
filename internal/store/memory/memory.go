package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"posledger/backend/internal/domain"
	"posledger/backend/internal/store"
)

// Store keeps everything in process. A single mutex serializes every commit,
// so check-then-decrement cannot interleave.
type Store struct {
	mu sync.RWMutex

	products     map[int64]domain.Product
	productBySKU map[string]int64
	itemRefs     map[int64]int

	users       map[int64]domain.User
	userByName  map[string]int64
	userByEmail map[string]int64
	customers   map[int64]domain.Customer

	sales     []domain.Sale
	saleIndex map[int64]int
	saleItems map[int64][]domain.SaleItem

	nextProductID  int64
	nextUserID     int64
	nextCustomerID int64
	nextSaleID     int64
	nextItemID     int64
}

func New() *Store {
	return &Store{
		products:     make(map[int64]domain.Product),
		productBySKU: make(map[string]int64),
		itemRefs:     make(map[int64]int),
		users:        make(map[int64]domain.User),
		userByName:   make(map[string]int64),
		userByEmail:  make(map[string]int64),
		customers:    make(map[int64]domain.Customer),
		sales:        make([]domain.Sale, 0, 64),
		saleIndex:    make(map[int64]int),
		saleItems:    make(map[int64][]domain.SaleItem),
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) CashierExists(_ context.Context, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[id]
	return ok, nil
}

func (s *Store) CustomerExists(_ context.Context, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.customers[id]
	return ok, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.User) (*domain.User, error) {
	user.Username = strings.ToLower(strings.TrimSpace(user.Username))
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.Username == "" || user.Email == "" || user.PasswordHash == "" {
		return nil, store.Invalid("user", "username, email and password are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.userByName[user.Username]; taken {
		return nil, store.ErrConflict
	}
	if _, taken := s.userByEmail[user.Email]; taken {
		return nil, store.ErrConflict
	}

	s.nextUserID++
	now := time.Now().UTC()
	user.ID = s.nextUserID
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = user
	s.userByName[user.Username] = user.ID
	s.userByEmail[user.Email] = user.ID

	created := user
	return &created, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.userByName[strings.ToLower(strings.TrimSpace(username))]
	if !ok {
		return nil, store.ErrNotFound
	}
	user := s.users[id]
	return &user, nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	slices.SortFunc(users, func(a, b domain.User) int { return cmpInt64(a.ID, b.ID) })
	return users, nil
}

func (s *Store) DeleteUser(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return store.NotFound(store.EntityUser, id)
	}
	for _, sale := range s.sales {
		if sale.CashierID == id {
			return store.ErrHasDependentSales
		}
	}
	delete(s.users, id)
	delete(s.userByName, user.Username)
	delete(s.userByEmail, user.Email)
	return nil
}

func (s *Store) CountUsers(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}

func (s *Store) CreateCustomer(_ context.Context, customer domain.Customer) (*domain.Customer, error) {
	customer.Name = strings.TrimSpace(customer.Name)
	if customer.Name == "" {
		return nil, store.Invalid("name", "is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextCustomerID++
	now := time.Now().UTC()
	customer.ID = s.nextCustomerID
	customer.CreatedAt = now
	customer.UpdatedAt = now
	s.customers[customer.ID] = customer

	created := customer
	return &created, nil
}

func (s *Store) ListCustomers(_ context.Context) ([]domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customers := make([]domain.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		customers = append(customers, c)
	}
	slices.SortFunc(customers, func(a, b domain.Customer) int { return cmpInt64(a.ID, b.ID) })
	return customers, nil
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
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

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.productBySKU[product.SKU]; taken {
		return nil, store.ErrConflict
	}

	s.nextProductID++
	now := time.Now().UTC()
	product.ID = s.nextProductID
	product.CreatedAt = now
	product.UpdatedAt = now
	s.products[product.ID] = product
	s.productBySKU[product.SKU] = product.ID

	created := product
	return &created, nil
}

func (s *Store) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, ok := s.products[id]
	if !ok {
		return nil, store.NotFound(store.EntityProduct, id)
	}
	return &product, nil
}

func (s *Store) GetProductBySKU(_ context.Context, sku string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.productBySKU[strings.TrimSpace(sku)]
	if !ok {
		return nil, store.ErrNotFound
	}
	product := s.products[id]
	return &product, nil
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, p)
	}
	slices.SortFunc(products, func(a, b domain.Product) int { return cmpInt64(a.ID, b.ID) })
	return products, nil
}

func (s *Store) GetStockAndPrice(_ context.Context, id int64) (domain.StockAndPrice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, ok := s.products[id]
	if !ok {
		return domain.StockAndPrice{}, store.NotFound(store.EntityProduct, id)
	}
	return domain.StockAndPrice{ProductID: id, Stock: product.StockQuantity, Price: product.Price}, nil
}

func (s *Store) DeleteProduct(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.products[id]
	if !ok {
		return store.NotFound(store.EntityProduct, id)
	}
	if s.itemRefs[id] > 0 {
		return store.ErrHasDependentSales
	}
	delete(s.products, id)
	delete(s.productBySKU, product.SKU)
	return nil
}

func (s *Store) CommitSale(ctx context.Context, sale domain.NewSale) (*domain.Sale, error) {
	if len(sale.Items) == 0 {
		return nil, store.Invalid("items", "must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, store.Failure("commit sale", err)
	}

	if _, ok := s.users[sale.CashierID]; !ok {
		return nil, store.NotFound(store.EntityCashier, sale.CashierID)
	}
	if sale.CustomerID != nil {
		if _, ok := s.customers[*sale.CustomerID]; !ok {
			return nil, store.NotFound(store.EntityCustomer, *sale.CustomerID)
		}
	}

	stock := make(map[int64]int, len(sale.Items))
	for _, id := range store.ProductIDs(sale.Items) {
		if product, ok := s.products[id]; ok {
			stock[id] = product.StockQuantity
		}
	}
	if err := store.CheckLineItems(sale.Items, stock); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if sale.SaleDate.IsZero() {
		sale.SaleDate = now
	}

	s.nextSaleID++
	committed := domain.Sale{
		ID:            s.nextSaleID,
		CustomerID:    cloneID(sale.CustomerID),
		CashierID:     sale.CashierID,
		TotalAmount:   sale.TotalAmount,
		PaymentMethod: sale.PaymentMethod,
		SaleDate:      sale.SaleDate.UTC(),
		CreatedAt:     now,
	}

	items := make([]domain.SaleItem, 0, len(sale.Items))
	for _, line := range sale.Items {
		s.nextItemID++
		items = append(items, domain.SaleItem{
			ID:         s.nextItemID,
			SaleID:     committed.ID,
			ProductID:  line.ProductID,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			TotalPrice: line.TotalPrice(),
			CreatedAt:  now,
		})

		product := s.products[line.ProductID]
		product.StockQuantity -= line.Quantity
		product.UpdatedAt = now
		s.products[line.ProductID] = product
		s.itemRefs[line.ProductID]++
	}

	s.saleIndex[committed.ID] = len(s.sales)
	s.sales = append(s.sales, committed)
	s.saleItems[committed.ID] = items

	out := committed
	return &out, nil
}

func (s *Store) GetSaleWithItems(_ context.Context, id int64) (*domain.SaleWithItems, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.saleIndex[id]
	if !ok {
		return nil, store.NotFound(store.EntitySale, id)
	}
	return &domain.SaleWithItems{
		Sale:  s.sales[idx],
		Items: slices.Clone(s.saleItems[id]),
	}, nil
}

func (s *Store) ListSales(_ context.Context, filter domain.SaleFilter) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]domain.Sale, 0, 16)
	for _, sale := range s.sales {
		if filter.From != nil && sale.SaleDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !sale.SaleDate.Before(*filter.To) {
			continue
		}
		if filter.CashierID != nil && sale.CashierID != *filter.CashierID {
			continue
		}
		if filter.CustomerID != nil && (sale.CustomerID == nil || *sale.CustomerID != *filter.CustomerID) {
			continue
		}
		if filter.PaymentMethod != "" && sale.PaymentMethod != filter.PaymentMethod {
			continue
		}
		matched = append(matched, sale)
	}

	slices.SortFunc(matched, func(a, b domain.Sale) int {
		if c := b.SaleDate.Compare(a.SaleDate); c != 0 {
			return c
		}
		return cmpInt64(b.ID, a.ID)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return []domain.Sale{}, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func (s *Store) SalesTotals(_ context.Context, period domain.ReportPeriod) (domain.SalesTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := domain.SalesTotals{TotalAmount: decimal.Zero}
	for _, sale := range s.sales {
		if !inPeriod(sale.SaleDate, period) {
			continue
		}
		totals.Count++
		totals.TotalAmount = totals.TotalAmount.Add(sale.TotalAmount)
	}
	return totals, nil
}

func (s *Store) BestSellingProducts(_ context.Context, period domain.ReportPeriod) ([]domain.BestSellingProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byProduct := make(map[int64]*domain.BestSellingProduct)
	for _, sale := range s.sales {
		if !inPeriod(sale.SaleDate, period) {
			continue
		}
		for _, item := range s.saleItems[sale.ID] {
			row, ok := byProduct[item.ProductID]
			if !ok {
				row = &domain.BestSellingProduct{
					ProductID:    item.ProductID,
					ProductName:  s.products[item.ProductID].Name,
					TotalRevenue: decimal.Zero,
				}
				byProduct[item.ProductID] = row
			}
			row.TotalQuantitySold += int64(item.Quantity)
			row.TotalRevenue = row.TotalRevenue.Add(item.TotalPrice)
		}
	}

	result := make([]domain.BestSellingProduct, 0, len(byProduct))
	for _, row := range byProduct {
		result = append(result, *row)
	}
	slices.SortFunc(result, func(a, b domain.BestSellingProduct) int {
		if c := cmpInt64(b.TotalQuantitySold, a.TotalQuantitySold); c != 0 {
			return c
		}
		return cmpInt64(a.ProductID, b.ProductID)
	})
	return result, nil
}

func (s *Store) InventoryReport(_ context.Context) ([]domain.InventoryReportItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report := make([]domain.InventoryReportItem, 0, len(s.products))
	for _, p := range s.products {
		report = append(report, domain.InventoryReportItem{
			ProductID:    p.ID,
			ProductName:  p.Name,
			CurrentStock: p.StockQuantity,
			SKU:          p.SKU,
			Price:        p.Price,
		})
	}
	slices.SortFunc(report, func(a, b domain.InventoryReportItem) int { return cmpInt64(a.ProductID, b.ProductID) })
	return report, nil
}

func inPeriod(t time.Time, period domain.ReportPeriod) bool {
	return !t.Before(period.From) && t.Before(period.To)
}

func cmpInt64(a int64, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cloneID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
