package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"posledger/backend/internal/cache"
	"posledger/backend/internal/domain"
	"posledger/backend/internal/store"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Options struct {
	Logger   *zap.Logger
	Reports  cache.ReportCache
	CacheTTL time.Duration
	// TxTimeout bounds a single sale commit. Zero disables the bound.
	TxTimeout time.Duration
	Now       func() time.Time
}

type Service struct {
	repo      store.Repository
	logger    *zap.Logger
	reports   cache.ReportCache
	cacheTTL  time.Duration
	txTimeout time.Duration
	now       func() time.Time
}

func New(repo store.Repository, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Reports == nil {
		opts.Reports = cache.NoopReportCache{}
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 30 * time.Second
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}

	return &Service{
		repo:      repo,
		logger:    opts.Logger,
		reports:   opts.Reports,
		cacheTTL:  opts.CacheTTL,
		txTimeout: opts.TxTimeout,
		now:       opts.Now,
	}
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	return *product, nil
}

func (s *Service) GetProductBySKU(ctx context.Context, sku string) (domain.Product, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return domain.Product{}, store.Invalid("sku", "is required")
	}
	product, err := s.repo.GetProductBySKU(ctx, sku)
	if err != nil {
		return domain.Product{}, err
	}
	return *product, nil
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.SKU = strings.TrimSpace(req.SKU)

	if req.Name == "" {
		return domain.Product{}, store.Invalid("name", "is required")
	}
	if req.SKU == "" {
		return domain.Product{}, store.Invalid("sku", "is required")
	}
	if err := checkMoney("price", req.Price); err != nil {
		return domain.Product{}, err
	}
	if req.StockQuantity < 0 {
		return domain.Product{}, store.Invalid("stock_quantity", "must not be negative")
	}
	if req.StockQuantity > domain.MaxQuantity {
		return domain.Product{}, store.Invalid("stock_quantity", fmt.Sprintf("must not exceed %d", domain.MaxQuantity))
	}

	created, err := s.repo.CreateProduct(ctx, domain.Product{
		Name:          req.Name,
		Description:   trimmedOrNil(req.Description),
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		SKU:           req.SKU,
		Barcode:       trimmedOrNil(req.Barcode),
	})
	if err != nil {
		return domain.Product{}, err
	}

	s.invalidateReports(ctx)
	s.logger.Info("product created", zap.Int64("product_id", created.ID), zap.String("sku", created.SKU), zap.String("actor", actorName(ctx)))
	return *created, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	if id <= 0 {
		return store.Invalid("id", "must be positive")
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.invalidateReports(ctx)
	s.logger.Info("product deleted", zap.Int64("product_id", id), zap.String("actor", actorName(ctx)))
	return nil
}

func (s *Service) CreateCustomer(ctx context.Context, req domain.CustomerCreateRequest) (domain.Customer, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return domain.Customer{}, store.Invalid("name", "is required")
	}

	created, err := s.repo.CreateCustomer(ctx, domain.Customer{
		Name:  req.Name,
		Email: trimmedOrNil(req.Email),
		Phone: trimmedOrNil(req.Phone),
	})
	if err != nil {
		return domain.Customer{}, err
	}
	return *created, nil
}

func (s *Service) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return s.repo.ListCustomers(ctx)
}

func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.repo.ListUsers(ctx)
}

// DeleteUser removes a directory user that has never rung up a sale. An
// actor cannot delete their own account.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	if id <= 0 {
		return store.Invalid("id", "must be positive")
	}
	if actor, ok := ActorFromContext(ctx); ok && actor.UserID == id {
		return store.Invalid("id", "cannot delete the signed-in user")
	}
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deleted", zap.Int64("user_id", id), zap.String("actor", actorName(ctx)))
	return nil
}

func (s *Service) CreateUser(ctx context.Context, req domain.UserCreateRequest) (domain.User, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	email := strings.ToLower(strings.TrimSpace(req.Email))
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role == "" {
		role = domain.RoleCashier
	}

	switch {
	case len(username) < 4:
		return domain.User{}, store.Invalid("username", "must be at least 4 characters")
	case strings.ContainsAny(username, " \t\r\n"):
		return domain.User{}, store.Invalid("username", "must not contain spaces")
	case !strings.Contains(email, "@"):
		return domain.User{}, store.Invalid("email", "must be an email address")
	case len(req.Password) < 8:
		return domain.User{}, store.Invalid("password", "must be at least 8 characters")
	case role != domain.RoleCashier && role != domain.RoleAdmin:
		return domain.User{}, store.Invalid("role", "must be cashier or admin")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, store.Failure("hash password", err)
	}

	created, err := s.repo.CreateUser(ctx, domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	})
	if err != nil {
		return domain.User{}, err
	}

	s.logger.Info("user created", zap.Int64("user_id", created.ID), zap.String("role", created.Role), zap.String("actor", actorName(ctx)))
	return *created, nil
}

func (s *Service) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.repo.GetUserByUsername(ctx, username)
}

// EnsureAdmin creates the given admin account when the directory is empty.
// It reports whether a user was created.
func (s *Service) EnsureAdmin(ctx context.Context, username string, password string) (bool, error) {
	n, err := s.repo.CountUsers(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if strings.TrimSpace(password) == "" {
		return false, errors.New("bootstrap admin password is not set")
	}

	username = strings.ToLower(strings.TrimSpace(username))
	_, err = s.CreateUser(ctx, domain.UserCreateRequest{
		Username: username,
		Email:    username + "@localhost",
		Password: password,
		Role:     domain.RoleAdmin,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) invalidateReports(ctx context.Context) {
	if err := s.reports.Invalidate(ctx); err != nil {
		s.logger.Warn("report cache invalidation failed", zap.Error(err))
	}
}

// checkMoney accepts strictly positive amounts with at most two decimal places.
func checkMoney(field string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return store.Invalid(field, "must be positive")
	}
	if !amount.Equal(amount.Truncate(2)) {
		return store.Invalid(field, "must have at most two decimal places")
	}
	return nil
}

func trimmedOrNil(val *string) *string {
	if val == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*val)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func actorName(ctx context.Context) string {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return "system"
	}
	return actor.Username
}
