package app

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/api"
	"storefront/apperr"
	"storefront/config"
	"storefront/devserver"
	"storefront/model"
	"storefront/service"
	"storefront/store"
)

type env struct {
	twin *devserver.Server
	url  string
	kv   *store.MemoryStore
	app  *App
}

func newEnv(t *testing.T) *env {
	t.Helper()
	twin, err := devserver.New(devserver.Options{JWTSecret: "app-test"})
	require.NoError(t, err)
	ts := httptest.NewServer(twin.Handler("/api"))
	t.Cleanup(ts.Close)

	e := &env{twin: twin, url: ts.URL + "/api", kv: store.NewMemoryStore()}
	e.app = e.open(t)
	return e
}

// open builds a fresh App over the same storage, as a restart would.
func (e *env) open(t *testing.T) *App {
	t.Helper()
	client, err := api.New(api.Options{BaseURL: e.url})
	require.NoError(t, err)
	a := NewWith(e.kv, client, nil, api.RetryConfig{MaxAttempts: 1})
	require.NoError(t, a.Load(context.Background()))
	return a
}

func signIn(t *testing.T, e *env) model.Session {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, e.app.SignUp(ctx, api.SignUpRequest{
		Name: "Ana Cruz", Email: "ana@example.com", Username: "ana", Password: "hunter22",
	}))
	sess, err := e.app.SignIn(ctx, "ana@example.com", "hunter22")
	require.NoError(t, err)
	return sess
}

func TestWalletCheckoutEndToEnd(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	signIn(t, e)

	products, err := e.app.Products(ctx, model.CategoryAll, "")
	require.NoError(t, err)
	byID := map[string]model.Product{}
	for _, p := range products {
		byID[p.ID] = p
	}
	e.app.Cart.Add(ctx, byID["sku3"].CartItem())
	e.app.Cart.Add(ctx, byID["sku2"].CartItem())
	e.app.Cart.Add(ctx, byID["sku1"].CartItem())

	bal, err := e.app.CashIn(ctx, decimal.NewFromInt(1500))
	require.NoError(t, err)
	assert.Equal(t, "1500", bal.String())

	res, err := e.app.PlaceOrder(ctx, []string{"sku3", "sku2"}, "", model.WalletOptionID)
	require.NoError(t, err)
	assert.False(t, res.Pending)
	assert.Equal(t, "1099", res.Total.String())
	assert.Equal(t, "401.00", e.app.Wallet.Balance().StringFixed(2))

	items := e.app.Cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "sku1", items[0].ProductID)

	orders, err := e.app.OrderHistory(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, res.Order.ID, orders[0].ID)
	require.Len(t, orders[0].Items, 2)
	assert.Equal(t, "Poster", orders[0].Items[0].Name)

	restarted := e.open(t)
	assert.True(t, restarted.Session.LoggedIn())
	assert.Equal(t, "401", restarted.Wallet.Balance().String())
	assert.Len(t, restarted.Cart.Items(), 1)
}

func TestExternalCheckoutAndComplete(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	signIn(t, e)
	e.app.Cart.Add(ctx, model.CartItem{ProductID: "sku1", Name: "Album", Price: "₱1,500"})

	res, err := e.app.PlaceOrder(ctx, []string{"sku1"}, "WELCOME", "gcash")
	require.NoError(t, err)
	assert.True(t, res.Pending)
	assert.Contains(t, res.RedirectURL, devserver.PaymentLinkBase)
	assert.Len(t, e.app.Cart.Items(), 1)

	e.app.CompleteCheckout(ctx, res)
	assert.Empty(t, e.app.Cart.Items())
}

func TestCheckoutServerFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	signIn(t, e)
	e.app.Cart.Add(ctx, model.CartItem{ProductID: "sku1", Name: "Album", Price: "₱1,500"})
	_, err := e.app.CashIn(ctx, decimal.NewFromInt(2000))
	require.NoError(t, err)

	e.twin.SetFault("/orders", 500)
	_, err = e.app.PlaceOrder(ctx, []string{"sku1"}, "", model.WalletOptionID)
	require.Error(t, err)
	assert.Equal(t, "Server error. Please try again later", apperr.UserMessage(err))
	assert.Len(t, e.app.Cart.Items(), 1)
	assert.Equal(t, "2000", e.app.Wallet.Balance().String())
	assert.Zero(t, e.twin.OrderCount())
}

func TestSignOutClearsEverything(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	signIn(t, e)
	e.app.Cart.Add(ctx, model.CartItem{ProductID: "sku1", Name: "Album", Price: "₱1,500"})
	e.app.Wishlist.Add(ctx, model.WishlistItem{ProductID: "sku2", Name: "Tour Shirt", Price: "₱749.00"})
	_, err := e.app.CashIn(ctx, decimal.NewFromInt(100))
	require.NoError(t, err)
	_, err = e.app.Subscribe(ctx, "Monthly Plan", decimal.NewFromInt(99), "maya")
	require.NoError(t, err)

	e.app.SignOut(ctx)

	for _, key := range []string{store.KeySession, store.KeyCart, store.KeyWishlist, store.KeyWallet, store.KeySubscription} {
		assert.False(t, e.kv.Has(key), key)
	}
	restarted := e.open(t)
	assert.False(t, restarted.Session.LoggedIn())
	assert.Empty(t, restarted.Cart.Items())
	assert.True(t, restarted.Wallet.Balance().IsZero())

	_, err = restarted.OrderHistory(ctx)
	assert.ErrorIs(t, err, ErrNotSignedIn)
}

func TestUpdateAccountMergesIntoSession(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	_, err := e.app.UpdateAccount(ctx, api.UpdateAccountRequest{Name: "x", Email: "x@example.com"})
	assert.ErrorIs(t, err, ErrNotSignedIn)

	signIn(t, e)
	updated, err := e.app.UpdateAccount(ctx, api.UpdateAccountRequest{
		Name: "Ana Reyes", Email: "ana.reyes@example.com", ContactNo: "09181112222",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana Reyes", updated.Name)

	cur, ok := e.app.Session.Current()
	require.True(t, ok)
	assert.Equal(t, "ana.reyes@example.com", cur.Email)
	assert.Equal(t, "09181112222", cur.ContactNo)
	assert.NotEmpty(t, cur.Token)
}

func TestLoadSignsOutExpiredSession(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}).SignedString([]byte("whatever"))
	require.NoError(t, err)
	e.app.Session.Set(ctx, &model.Session{ID: "1", Email: "old@example.com", Token: tok})
	e.app.Cart.Add(ctx, model.CartItem{ProductID: "sku1", Name: "Album", Price: "₱1,500"})

	restarted := e.open(t)
	assert.False(t, restarted.Session.LoggedIn())
	assert.Len(t, restarted.Cart.Items(), 1)
}

func TestLoadReportsDegradedStorage(t *testing.T) {
	e := newEnv(t)
	e.kv.SetFault(assert.AnError)

	client, err := api.New(api.Options{BaseURL: e.url})
	require.NoError(t, err)
	a := NewWith(e.kv, client, nil, api.RetryConfig{MaxAttempts: 1})
	err = a.Load(context.Background())
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindPersistence))
	assert.Empty(t, a.Cart.Items())
}

func TestSubscribeFromWallet(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	_, err := e.app.Subscribe(ctx, "Annual Plan", decimal.NewFromInt(999), model.WalletOptionID)
	assert.ErrorIs(t, err, service.ErrInsufficientFunds)
	_, ok := e.app.Subscriptions.Current()
	assert.False(t, ok, "unpaid plan must not be stored")

	_, err = e.app.CashIn(ctx, decimal.NewFromInt(1000))
	require.NoError(t, err)
	sub, err := e.app.Subscribe(ctx, "Annual Plan", decimal.NewFromInt(999), model.WalletOptionID)
	require.NoError(t, err)
	assert.Equal(t, "annual", sub.PlanID)
	assert.Equal(t, "credit-card", sub.PaymentMethod.Type)
	assert.Equal(t, "1", e.app.Wallet.Balance().String())
	assert.True(t, e.app.Subscriptions.Active(time.Now()))
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.API.ConnectivityCheck = false
	cfg.Storage.DSN = filepath.Join(t.TempDir(), "storefront.db")

	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.NoError(t, a.Load(context.Background()))
	a.Cart.Add(context.Background(), model.CartItem{ProductID: "p", Name: "P", Price: "₱1"})
	require.NoError(t, a.Close())

	again, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer again.Close()
	require.NoError(t, again.Load(context.Background()))
	assert.Len(t, again.Cart.Items(), 1)

	cfg.Storage.Driver = "redis"
	_, err = New(context.Background(), cfg, nil)
	assert.Error(t, err)
}
