package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/apperr"
	"storefront/devserver"
	"storefront/model"
)

type twin struct {
	srv    *devserver.Server
	client *Client
	token  *staticTokenVar
}

type staticTokenVar struct{ tok string }

func (s *staticTokenVar) Token() string { return s.tok }

func startTwin(t *testing.T) *twin {
	t.Helper()
	srv, err := devserver.New(devserver.Options{JWTSecret: "test-secret"})
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler("/api"))
	t.Cleanup(ts.Close)

	tok := &staticTokenVar{}
	c, err := New(Options{BaseURL: ts.URL + "/api", Tokens: tok})
	require.NoError(t, err)
	return &twin{srv: srv, client: c, token: tok}
}

func TestSignUpAndSignIn(t *testing.T) {
	ctx := context.Background()
	tw := startTwin(t)

	err := tw.client.SignUp(ctx, SignUpRequest{
		Name: "Ana Cruz", Email: "ana@example.com", Username: "ana", ContactNo: "09171234567", Password: "hunter22",
	})
	require.NoError(t, err)

	sess, err := tw.client.SignIn(ctx, "ana@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "Ana Cruz", sess.Name)
	assert.Equal(t, "ana", sess.Username)
	assert.Equal(t, model.AccountCustomer, sess.AccountType)
	require.NotEmpty(t, sess.Token)

	claims := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(sess.Token, claims)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, claims["sub"])
}

func TestSignUpConflicts(t *testing.T) {
	ctx := context.Background()
	tw := startTwin(t)
	_, err := tw.srv.AddUser("Ana", "ana@example.com", "ana", "hunter22")
	require.NoError(t, err)

	err = tw.client.SignUp(ctx, SignUpRequest{Email: "ana@example.com", Username: "other", Password: "hunter22"})
	assert.Equal(t, "This email address is already registered", apperr.UserMessage(err))

	err = tw.client.SignUp(ctx, SignUpRequest{Email: "new@example.com", Username: "ana", Password: "hunter22"})
	assert.Equal(t, "This username is already taken", apperr.UserMessage(err))

	err = tw.client.SignUp(ctx, SignUpRequest{Email: "new@example.com", Username: "new", Password: "123"})
	assert.Equal(t, "Email or username may already be in use", apperr.UserMessage(err))
}

func TestSignInFailures(t *testing.T) {
	ctx := context.Background()
	tw := startTwin(t)
	_, err := tw.srv.AddUser("Ana", "ana@example.com", "ana", "hunter22")
	require.NoError(t, err)

	_, err = tw.client.SignIn(ctx, "ana@example.com", "wrong")
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, e.Status)

	_, err = tw.client.SignIn(ctx, "", "")
	assert.Equal(t, "The email field is required.", apperr.UserMessage(err))
}

func TestSignInWithoutUser(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"token":"abc"}}`))
	}))
	defer ts.Close()

	_, err := newTestClient(t, ts.URL).SignIn(context.Background(), "a@example.com", "pw")
	assert.Equal(t, "No user data received from server", apperr.UserMessage(err))
}

func TestUpdateAccountRequiresToken(t *testing.T) {
	ctx := context.Background()
	tw := startTwin(t)
	_, err := tw.srv.AddUser("Ana", "ana@example.com", "ana", "hunter22")
	require.NoError(t, err)
	sess, err := tw.client.SignIn(ctx, "ana@example.com", "hunter22")
	require.NoError(t, err)

	update := UpdateAccountRequest{Name: "Ana Reyes", Email: "ana.reyes@example.com", ContactNo: "0918"}
	err = tw.client.UpdateAccount(ctx, sess.ID, update)
	assert.True(t, apperr.Is(err, apperr.KindHTTP))

	tw.token.tok = sess.Token
	require.NoError(t, tw.client.UpdateAccount(ctx, sess.ID, update))

	again, err := tw.client.SignIn(ctx, "ana.reyes@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "Ana Reyes", again.Name)
	assert.Equal(t, "0918", again.ContactNo)
}

func TestCreateAndListOrders(t *testing.T) {
	ctx := context.Background()
	tw := startTwin(t)
	lines, total, err := model.LinesFromCart([]model.CartItem{
		{ProductID: "sku1", Name: "Album", Price: "₱1,500", Quantity: 2},
		{ProductID: "sku3", Name: "Poster", Price: "₱350.50", Quantity: 1},
	})
	require.NoError(t, err)

	at := time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC)
	req := CreateOrderRequest{
		CustomerEmail:  "ana@example.com",
		Lines:          lines,
		Total:          total,
		PaymentType:    "e-wallet",
		PaymentChannel: "gcash",
		CheckoutAt:     at,
		IdempotencyKey: "idem-1",
	}
	order, err := tw.client.CreateOrder(ctx, req)
	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	assert.NotEmpty(t, order.OrderNumber)
	assert.Equal(t, devserver.PaymentLinkBase+order.ID, order.PaymentLink)
	assert.True(t, decimal.RequireFromString("3350.5").Equal(order.TotalAmount))

	replayed, err := tw.client.CreateOrder(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, order.ID, replayed.ID)
	assert.Equal(t, 1, tw.srv.OrderCount())

	req.IdempotencyKey = "idem-2"
	req.PaymentType, req.PaymentChannel = "wallet", "wallet"
	wallet, err := tw.client.CreateOrder(ctx, req)
	require.NoError(t, err)
	assert.Empty(t, wallet.PaymentLink)

	orders, err := tw.client.ListOrders(ctx, "ana@example.com")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	got := orders[0]
	require.Len(t, got.Items, 2)
	assert.Equal(t, "sku1", got.Items[0].SKU)
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.True(t, decimal.RequireFromString("3000").Equal(got.Items[0].Total))
	assert.True(t, at.Equal(got.CheckoutAt))

	none, err := tw.client.ListOrders(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListProducts(t *testing.T) {
	ctx := context.Background()
	tw := startTwin(t)

	all, err := tw.client.ListProducts(ctx, model.CategoryAll, "")
	require.NoError(t, err)
	require.Len(t, all, 5)

	apparel, err := tw.client.ListProducts(ctx, "Apparel", "")
	require.NoError(t, err)
	require.Len(t, apparel, 2)
	assert.Equal(t, "Tour Shirt", apparel[0].Name)
	assert.True(t, decimal.RequireFromString("749").Equal(apparel[0].Price), "discounted price substituted")

	found, err := tw.client.ListProducts(ctx, "", "VINYL")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "sku1", found[0].ID)

	empty, err := tw.client.ListProducts(ctx, "Food", "")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestTwinFaultInjection(t *testing.T) {
	tw := startTwin(t)
	tw.srv.SetFault("/products", http.StatusInternalServerError)

	_, err := tw.client.ListProducts(context.Background(), "", "")
	assert.Equal(t, "Server error. Please try again later", apperr.UserMessage(err))

	tw.srv.SetFault("/products", 0)
	_, err = tw.client.ListProducts(context.Background(), "", "")
	assert.NoError(t, err)
}

func TestEmptyCatalogMessage(t *testing.T) {
	assert.Equal(t, "No products found for your search", EmptyCatalogMessage(model.CategoryAll, "mug"))
	assert.Equal(t, "No products found for your search", EmptyCatalogMessage("", "mug"))
	assert.Equal(t, "No products available for this category", EmptyCatalogMessage("Apparel", ""))
	assert.Equal(t, "No products available", EmptyCatalogMessage("", ""))
}
