package model

// AccountType distinguishes customer accounts from everything else.
type AccountType string

const (
	AccountCustomer AccountType = "customer"
	AccountOther    AccountType = "other"
)

// Session is the authenticated user identity kept on the device.
type Session struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Username    string      `json:"username"`
	ContactNo   string      `json:"contact_no"`
	AccountType AccountType `json:"account_type"`
	Token       string      `json:"token,omitempty"`
}
