// Package checkout turns a cart selection into an order. It is the only
// place that touches the cart, the wallet and the orders API together.
package checkout

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront/api"
	"storefront/apperr"
	"storefront/model"
	"storefront/service"
)

// Validation failures raised before any request is sent.
var (
	ErrNoSelection = apperr.Validation("Please select items to checkout")
	ErrNoPayment   = apperr.Validation("Please select a payment option")
	ErrNotInCart   = apperr.Validation("Some selected items are no longer in your cart")
)

// MsgNoPaymentLink is returned when an external channel order comes back
// without a hosted payment page.
const MsgNoPaymentLink = "Payment link is unavailable. Please try again"

// OrderCreator is the slice of the API client checkout needs.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req api.CreateOrderRequest) (*model.Order, error)
}

type Request struct {
	Email           string
	ProductIDs      []string
	Voucher         string
	PaymentOptionID string
}

// Result describes a placed order. For external channels Pending is true
// and the purchased rows stay in the cart until Complete.
type Result struct {
	Order       *model.Order
	Channel     model.Channel
	Option      model.PaymentOption
	Total       decimal.Decimal
	RedirectURL string
	Pending     bool
	ProductIDs  []string
}

type Orchestrator struct {
	cart   *service.Cart
	wallet *service.Wallet
	orders OrderCreator
	retry  api.RetryConfig
	logger *slog.Logger
	now    func() time.Time
	newKey func() string

	mu sync.Mutex
}

type Option func(*Orchestrator)

// WithRetry sets the retry policy for order creation.
func WithRetry(cfg api.RetryConfig) Option {
	return func(o *Orchestrator) { o.retry = cfg }
}

// WithClock overrides the checkout timestamp source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func New(cart *service.Cart, wallet *service.Wallet, orders OrderCreator, logger *slog.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	o := &Orchestrator{
		cart:   cart,
		wallet: wallet,
		orders: orders,
		retry:  api.RetryConfig{MaxAttempts: 1},
		logger: logger,
		now:    time.Now,
		newKey: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Checkout places an order for the selected cart rows. A failed checkout
// leaves the cart and wallet as they were.
func (o *Orchestrator) Checkout(ctx context.Context, req Request) (*Result, error) {
	if len(req.ProductIDs) == 0 {
		return nil, ErrNoSelection
	}
	opt, ok := model.LookupPaymentOption(req.PaymentOptionID)
	if !ok {
		return nil, ErrNoPayment
	}
	o.mu.Lock()
	defer o.mu.Unlock()

	rows, missing := o.cart.Select(req.ProductIDs)
	if len(missing) > 0 || len(rows) == 0 {
		o.logger.Warn("checkout selection not in cart", "missing", missing)
		return nil, ErrNotInCart
	}
	lines, total, err := model.LinesFromCart(rows)
	if err != nil {
		o.logger.Error("unpriceable cart row", "error", err)
		return nil, apperr.Validation("Some selected items have an invalid price")
	}

	var order *model.Order
	if opt.Channel == model.ChannelWallet {
		err = o.chargeWallet(ctx, total, func(ctx context.Context) error {
			var cerr error
			order, cerr = o.create(ctx, req, opt, lines, total)
			return cerr
		})
	} else {
		order, err = o.create(ctx, req, opt, lines, total)
	}
	if err != nil {
		return nil, err
	}

	res := &Result{
		Order:      order,
		Channel:    opt.Channel,
		Option:     opt,
		Total:      total,
		ProductIDs: ids(rows),
	}

	if opt.Channel.External() {
		if order.PaymentLink == "" {
			o.logger.Error("order created without payment link", "order", order.ID, "channel", opt.ID)
			return nil, &apperr.Error{Kind: apperr.KindHTTP, Status: http.StatusBadGateway, Message: MsgNoPaymentLink}
		}
		res.RedirectURL = order.PaymentLink
		res.Pending = true
		return res, nil
	}

	o.cart.RemoveItems(ctx, res.ProductIDs...)
	o.logger.Info("checkout complete", "order", order.ID, "total", total.String())
	return res, nil
}

// PayFromWallet debits amount, then runs record. A failing record gets the
// amount refunded. Wallet checkouts share the same lock.
func (o *Orchestrator) PayFromWallet(ctx context.Context, amount decimal.Decimal, record func(context.Context) error) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.chargeWallet(ctx, amount, record)
}

// chargeWallet must be called with o.mu held.
func (o *Orchestrator) chargeWallet(ctx context.Context, amount decimal.Decimal, record func(context.Context) error) error {
	if !amount.IsPositive() {
		return record(ctx)
	}
	if _, err := o.wallet.Debit(ctx, amount); err != nil {
		return err
	}
	if err := record(ctx); err != nil {
		bal := o.wallet.Add(ctx, amount)
		o.logger.Info("wallet refunded", "amount", amount.String(), "balance", bal.String())
		return err
	}
	return nil
}

// Complete finalizes an external payment once the hosted page reports
// success. Wallet results were finalized by Checkout.
func (o *Orchestrator) Complete(ctx context.Context, res *Result) {
	if res == nil || !res.Pending {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()

	o.cart.RemoveItems(ctx, res.ProductIDs...)
	res.Pending = false
	o.logger.Info("external payment complete", "order", res.Order.ID, "channel", res.Option.ID)
}

func (o *Orchestrator) create(ctx context.Context, req Request, opt model.PaymentOption, lines []model.OrderLine, total decimal.Decimal) (*model.Order, error) {
	cr := api.CreateOrderRequest{
		CustomerEmail:  req.Email,
		Lines:          lines,
		Total:          total,
		Voucher:        req.Voucher,
		PaymentType:    opt.Channel.String(),
		PaymentChannel: opt.ID,
		CheckoutAt:     o.now(),
		IdempotencyKey: o.newKey(),
	}
	order, err := api.Retry(ctx, o.retry, func(ctx context.Context) (*model.Order, error) {
		return o.orders.CreateOrder(ctx, cr)
	})
	if err != nil {
		o.logger.Warn("create order failed", "channel", opt.ID, "error", err)
		if _, ok := apperr.As(err); !ok {
			err = &apperr.Error{Kind: apperr.KindUnknown, Message: apperr.MsgUnexpected, Err: err}
		}
		return nil, err
	}
	return order, nil
}

func ids(rows []model.CartItem) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		if !slices.Contains(out, r.ProductID) {
			out = append(out, r.ProductID)
		}
	}
	return out
}
