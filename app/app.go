// Package app wires one instance of every store, the API client and the
// checkout orchestrator. Presentation code holds an *App and nothing else.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"storefront/api"
	"storefront/apperr"
	"storefront/checkout"
	"storefront/config"
	"storefront/model"
	"storefront/service"
	"storefront/store"
)

// ErrNotSignedIn guards operations that need a session.
var ErrNotSignedIn = apperr.Validation("Please sign in to continue")

type App struct {
	Session       *service.Session
	Wallet        *service.Wallet
	Cart          *service.Cart
	Wishlist      *service.Wishlist
	Subscriptions *service.Subscriptions
	Checkout      *checkout.Orchestrator
	Client        *api.Client

	kv     store.Store
	retry  api.RetryConfig
	logger *slog.Logger
	now    func() time.Time
}

// New opens the configured storage and API client.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	kv, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	opts := api.Options{BaseURL: cfg.API.BaseURL, Timeout: cfg.API.Timeout, Logger: logger.With("component", "api")}
	if cfg.API.ConnectivityCheck {
		hc, err := api.NewHostChecker(cfg.API.BaseURL, cfg.API.Timeout)
		if err != nil {
			kv.Close()
			return nil, err
		}
		opts.Checker = hc
	}
	client, err := api.New(opts)
	if err != nil {
		kv.Close()
		return nil, err
	}

	retry := api.RetryConfig{MaxAttempts: cfg.API.RetryAttempts, Delay: cfg.API.RetryDelay}
	return NewWith(kv, client, logger, retry), nil
}

// NewWith assembles an App from an already open store and client.
func NewWith(kv store.Store, client *api.Client, logger *slog.Logger, retry api.RetryConfig) *App {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{
		Session:       service.NewSession(kv, logger),
		Wallet:        service.NewWallet(kv, logger),
		Cart:          service.NewCart(kv, logger),
		Wishlist:      service.NewWishlist(kv, logger),
		Subscriptions: service.NewSubscriptions(kv, logger),
		Client:        client,
		kv:            kv,
		retry:         retry,
		logger:        logger,
		now:           time.Now,
	}
	a.Checkout = checkout.New(a.Cart, a.Wallet, client, logger.With("component", "checkout"), checkout.WithRetry(retry))
	client.SetTokenSource(a.Session)
	return a
}

func openStore(ctx context.Context, cfg config.StorageConfig) (store.Store, error) {
	var (
		kv  *store.SQLStore
		err error
	)
	switch cfg.Driver {
	case config.DriverMemory:
		return store.NewMemoryStore(), nil
	case config.DriverSQLite:
		kv, err = store.OpenSQLite(ctx, cfg.DSN)
	case config.DriverPostgres:
		kv, err = store.OpenPostgres(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	return kv, nil
}

// Load hydrates every store concurrently. State is usable even when the
// returned error is non-nil; it reports stores whose snapshot could not be
// read. An expired session token signs the user out.
func (a *App) Load(ctx context.Context) error {
	stores := []service.StateStore{a.Session, a.Wallet, a.Cart, a.Wishlist, a.Subscriptions}
	errs := make([]error, len(stores))

	var g errgroup.Group
	for i, s := range stores {
		g.Go(func() error {
			s.Load(ctx)
			errs[i] = s.Degraded()
			return nil
		})
	}
	_ = g.Wait()

	if a.Session.LoggedIn() && a.Session.Expired(a.now()) {
		a.logger.Info("session token expired, signing out")
		a.Session.Logout(ctx)
	}
	return errors.Join(errs...)
}

// SignIn authenticates and stores the session.
func (a *App) SignIn(ctx context.Context, email, password string) (model.Session, error) {
	sess, err := a.Client.SignIn(ctx, email, password)
	if err != nil {
		return model.Session{}, err
	}
	a.Session.Set(ctx, &sess)
	a.logger.Info("signed in", "user", sess.ID)
	return sess, nil
}

// SignUp registers an account. The user signs in separately.
func (a *App) SignUp(ctx context.Context, req api.SignUpRequest) error {
	return a.Client.SignUp(ctx, req)
}

// UpdateAccount saves the profile remotely and merges it into the session.
func (a *App) UpdateAccount(ctx context.Context, req api.UpdateAccountRequest) (model.Session, error) {
	cur, ok := a.Session.Current()
	if !ok {
		return model.Session{}, ErrNotSignedIn
	}
	if err := a.Client.UpdateAccount(ctx, cur.ID, req); err != nil {
		return model.Session{}, err
	}
	cur.Name = req.Name
	cur.Email = req.Email
	cur.ContactNo = req.ContactNo
	a.Session.Set(ctx, &cur)
	return cur, nil
}

// SignOut ends the session and clears the cart, wishlist, wallet and
// subscription so the next user on the device starts clean.
func (a *App) SignOut(ctx context.Context) {
	a.Session.Logout(ctx)
	a.Cart.Clear(ctx)
	a.Wishlist.Clear(ctx)
	a.Wallet.Reset(ctx)
	a.Subscriptions.Clear(ctx)
}

// CashIn tops up the wallet.
func (a *App) CashIn(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	return a.Wallet.CashIn(ctx, amount)
}

// PlaceOrder checks out the selected cart rows for the signed-in customer.
func (a *App) PlaceOrder(ctx context.Context, productIDs []string, voucher, paymentOptionID string) (*checkout.Result, error) {
	return a.Checkout.Checkout(ctx, checkout.Request{
		Email:           a.Session.Email(),
		ProductIDs:      productIDs,
		Voucher:         voucher,
		PaymentOptionID: paymentOptionID,
	})
}

// CompleteCheckout is called once the hosted payment page reports success.
func (a *App) CompleteCheckout(ctx context.Context, res *checkout.Result) {
	a.Checkout.Complete(ctx, res)
}

// OrderHistory lists the signed-in customer's orders.
func (a *App) OrderHistory(ctx context.Context) ([]model.Order, error) {
	email := a.Session.Email()
	if email == "" {
		return nil, ErrNotSignedIn
	}
	return api.Retry(ctx, a.retry, func(ctx context.Context) ([]model.Order, error) {
		return a.Client.ListOrders(ctx, email)
	})
}

// Products lists the catalog.
func (a *App) Products(ctx context.Context, category, query string) ([]model.Product, error) {
	return api.Retry(ctx, a.retry, func(ctx context.Context) ([]model.Product, error) {
		return a.Client.ListProducts(ctx, category, query)
	})
}

// Subscribe records a plan purchase. Paying from the wallet charges it
// through the checkout lock before the plan is stored.
func (a *App) Subscribe(ctx context.Context, planTitle string, amount decimal.Decimal, channelID string) (model.Subscription, error) {
	method := model.PaymentMethod{Type: model.PaymentTypeFor(channelID), Channel: channelID}
	sub := model.NewSubscription(planTitle, amount, method, a.now())
	record := func(ctx context.Context) error {
		a.Subscriptions.Set(ctx, sub)
		return nil
	}

	var err error
	if channelID == model.WalletOptionID {
		err = a.Checkout.PayFromWallet(ctx, amount, record)
	} else {
		err = record(ctx)
	}
	if err != nil {
		return model.Subscription{}, err
	}
	return sub, nil
}

func (a *App) Close() error {
	return a.kv.Close()
}
