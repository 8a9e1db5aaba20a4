package model

import "fmt"

// Channel is the closed set of payment channels a checkout can use.
type Channel int

const (
	ChannelWallet Channel = iota + 1
	ChannelEWallet
	ChannelBank
	ChannelOverTheCounter
	ChannelQR
)

func (c Channel) String() string {
	switch c {
	case ChannelWallet:
		return "wallet"
	case ChannelEWallet:
		return "e-wallet"
	case ChannelBank:
		return "bank"
	case ChannelOverTheCounter:
		return "over-the-counter"
	case ChannelQR:
		return "qr"
	default:
		return fmt.Sprintf("channel(%d)", int(c))
	}
}

// Title is the human label used by payment pickers.
func (c Channel) Title() string {
	switch c {
	case ChannelWallet:
		return "Wallet"
	case ChannelEWallet:
		return "E-Wallet"
	case ChannelBank:
		return "Online Banking"
	case ChannelOverTheCounter:
		return "Over the Counter"
	case ChannelQR:
		return "QR Payment"
	default:
		return c.String()
	}
}

// External reports whether paying through c needs a hosted payment page.
func (c Channel) External() bool {
	return c != ChannelWallet
}

// PaymentOption is one selectable way to pay.
type PaymentOption struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Channel     Channel `json:"-"`
}

// WalletOptionID selects payment from the in-app balance.
const WalletOptionID = "wallet"

var paymentOptions = []PaymentOption{
	{ID: WalletOptionID, Name: "Wallet", Description: "Pay with your wallet balance", Channel: ChannelWallet},

	{ID: "gcash", Name: "GCash", Description: "Pay with your GCash account", Channel: ChannelEWallet},
	{ID: "maya", Name: "Maya", Description: "Pay with your Maya account", Channel: ChannelEWallet},
	{ID: "grabpay", Name: "GrabPay", Description: "Pay with your GrabPay account", Channel: ChannelEWallet},
	{ID: "shopeepay", Name: "ShopeePay", Description: "Pay with your ShopeePay account", Channel: ChannelEWallet},

	{ID: "bpi", Name: "BPI", Description: "Pay via BPI online banking", Channel: ChannelBank},
	{ID: "chinabank", Name: "China Bank", Description: "Pay via China Bank online banking", Channel: ChannelBank},
	{ID: "rcbc", Name: "RCBC", Description: "Pay via RCBC online banking", Channel: ChannelBank},
	{ID: "unionbank", Name: "UnionBank", Description: "Pay via UnionBank online banking", Channel: ChannelBank},

	{ID: "7-11", Name: "7-Eleven", Description: "Pay at any 7-Eleven branch", Channel: ChannelOverTheCounter},
	{ID: "cebuana", Name: "Cebuana Lhuillier", Description: "Pay at any Cebuana Lhuillier branch", Channel: ChannelOverTheCounter},
	{ID: "lbc", Name: "LBC", Description: "Pay at any LBC branch", Channel: ChannelOverTheCounter},

	{ID: "qrph", Name: "QR PH", Description: "Pay using QR PH code", Channel: ChannelQR},
}

// PaymentOptions returns the catalog of supported options.
func PaymentOptions() []PaymentOption {
	out := make([]PaymentOption, len(paymentOptions))
	copy(out, paymentOptions)
	return out
}

// PaymentOptionsFor returns the options of one channel.
func PaymentOptionsFor(c Channel) []PaymentOption {
	var out []PaymentOption
	for _, o := range paymentOptions {
		if o.Channel == c {
			out = append(out, o)
		}
	}
	return out
}

// LookupPaymentOption finds an option by id.
func LookupPaymentOption(id string) (PaymentOption, bool) {
	for _, o := range paymentOptions {
		if o.ID == id {
			return o, true
		}
	}
	return PaymentOption{}, false
}
