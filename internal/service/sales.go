package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"posledger/backend/internal/domain"
	"posledger/backend/internal/store"
)

const (
	defaultSaleListLimit = 50
	maxSaleListLimit     = 200
)

// CommitSale validates a cart, recomputes its total and commits the sale and
// its stock decrements as one unit. On any error nothing is persisted.
func (s *Service) CommitSale(ctx context.Context, req domain.CommitSaleRequest) (domain.Sale, error) {
	total, err := validateSale(req)
	if err != nil {
		s.logRejected(req, err)
		return domain.Sale{}, err
	}

	commitCtx := ctx
	if s.txTimeout > 0 {
		var cancel context.CancelFunc
		commitCtx, cancel = context.WithTimeout(ctx, s.txTimeout)
		defer cancel()
	}

	sale, err := s.repo.CommitSale(commitCtx, domain.NewSale{
		CustomerID:    req.CustomerID,
		CashierID:     req.CashierID,
		PaymentMethod: req.PaymentMethod,
		TotalAmount:   total,
		SaleDate:      s.now(),
		Items:         req.Items,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, store.ErrStoreFailure) {
			err = store.Failure("commit sale", err)
		}
		s.logRejected(req, err)
		return domain.Sale{}, err
	}

	s.invalidateReports(ctx)
	s.logger.Info("sale committed",
		zap.Int64("sale_id", sale.ID),
		zap.Int64("cashier_id", sale.CashierID),
		zap.Int("items", len(req.Items)),
		zap.String("total_amount", sale.TotalAmount.StringFixed(2)),
		zap.String("payment_method", string(sale.PaymentMethod)),
	)
	return *sale, nil
}

func validateSale(req domain.CommitSaleRequest) (decimal.Decimal, error) {
	if req.CashierID <= 0 {
		return decimal.Zero, store.Invalid("cashier_id", "is required")
	}
	if req.CustomerID != nil && *req.CustomerID <= 0 {
		return decimal.Zero, store.Invalid("customer_id", "must be positive")
	}
	if !req.PaymentMethod.Valid() {
		return decimal.Zero, store.Invalid("payment_method", "must be one of cash, card, digital")
	}
	if len(req.Items) == 0 {
		return decimal.Zero, store.Invalid("items", "must not be empty")
	}

	total := decimal.Zero
	for i, item := range req.Items {
		if item.ProductID <= 0 {
			return decimal.Zero, store.Invalid(fmt.Sprintf("items[%d].product_id", i), "must be positive")
		}
		if item.Quantity <= 0 {
			return decimal.Zero, store.Invalid(fmt.Sprintf("items[%d].quantity", i), "must be positive")
		}
		if item.Quantity > domain.MaxQuantity {
			return decimal.Zero, store.Invalid(fmt.Sprintf("items[%d].quantity", i), fmt.Sprintf("must not exceed %d", domain.MaxQuantity))
		}
		if err := checkMoney(fmt.Sprintf("items[%d].unit_price", i), item.UnitPrice); err != nil {
			return decimal.Zero, err
		}
		total = total.Add(item.TotalPrice())
	}

	if req.TotalAmount != nil && !req.TotalAmount.Equal(total) {
		return decimal.Zero, store.Invalid("total_amount", fmt.Sprintf("expected %s, got %s", total.StringFixed(2), req.TotalAmount.StringFixed(2)))
	}
	return total, nil
}

func (s *Service) logRejected(req domain.CommitSaleRequest, err error) {
	fields := []zap.Field{
		zap.String("kind", store.Kind(err)),
		zap.Int64("cashier_id", req.CashierID),
		zap.Int("items", len(req.Items)),
		zap.Error(err),
	}
	if errors.Is(err, store.ErrStoreFailure) {
		s.logger.Error("sale commit failed", fields...)
		return
	}
	s.logger.Warn("sale rejected", fields...)
}

func (s *Service) GetSaleWithItems(ctx context.Context, id int64) (domain.SaleWithItems, error) {
	if id <= 0 {
		return domain.SaleWithItems{}, store.Invalid("id", "must be positive")
	}
	sale, err := s.repo.GetSaleWithItems(ctx, id)
	if err != nil {
		return domain.SaleWithItems{}, err
	}
	return *sale, nil
}

func (s *Service) ListSales(ctx context.Context, query domain.SaleListQuery) ([]domain.Sale, error) {
	filter := domain.SaleFilter{
		CashierID:  query.CashierID,
		CustomerID: query.CustomerID,
		Limit:      query.Limit,
		Offset:     query.Offset,
	}

	if query.StartDate != "" || query.EndDate != "" {
		period, err := parseOpenPeriod(query.StartDate, query.EndDate)
		if err != nil {
			return nil, err
		}
		filter.From = period.from
		filter.To = period.to
	}
	if query.PaymentMethod != "" {
		filter.PaymentMethod = domain.PaymentMethod(query.PaymentMethod)
		if !filter.PaymentMethod.Valid() {
			return nil, store.Invalid("payment_method", "must be one of cash, card, digital")
		}
	}
	if filter.Offset < 0 {
		return nil, store.Invalid("offset", "must not be negative")
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultSaleListLimit
	}
	if filter.Limit > maxSaleListLimit {
		filter.Limit = maxSaleListLimit
	}

	return s.repo.ListSales(ctx, filter)
}

func (s *Service) ListSalesByCashier(ctx context.Context, cashierID int64) ([]domain.Sale, error) {
	if cashierID <= 0 {
		return nil, store.Invalid("cashier_id", "must be positive")
	}
	exists, err := s.repo.CashierExists(ctx, cashierID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, store.NotFound(store.EntityCashier, cashierID)
	}
	return s.repo.ListSales(ctx, domain.SaleFilter{CashierID: &cashierID})
}
