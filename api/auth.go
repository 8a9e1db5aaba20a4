package api

import (
	"context"
	"net/http"

	"storefront/apperr"
	"storefront/model"
)

type SignUpRequest struct {
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	Username    string            `json:"username"`
	ContactNo   string            `json:"contact_no"`
	Password    string            `json:"password"`
	AccountType model.AccountType `json:"account_type"`
}

type UpdateAccountRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	ContactNo string `json:"contact_no"`
	Address   string `json:"address,omitempty"`
	Password  string `json:"password,omitempty"`
}

// SignIn exchanges credentials for the user session. The caller stores it.
func (c *Client) SignIn(ctx context.Context, email, password string) (model.Session, error) {
	var resp struct {
		Data struct {
			User  *model.Session `json:"user"`
			Token string         `json:"token"`
		} `json:"data"`
	}
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/signin",
		body:   map[string]string{"email": email, "password": password},
	}, &resp)
	if err != nil {
		return model.Session{}, firstFieldMessage(err)
	}
	if resp.Data.User == nil {
		return model.Session{}, &apperr.Error{Kind: apperr.KindHTTP, Status: http.StatusOK, Message: "No user data received from server"}
	}
	sess := *resp.Data.User
	if sess.Token == "" {
		sess.Token = resp.Data.Token
	}
	return sess, nil
}

// SignUp registers an account. A 422 is translated into which identifier
// is already taken.
func (c *Client) SignUp(ctx context.Context, req SignUpRequest) error {
	if req.AccountType == "" {
		req.AccountType = model.AccountCustomer
	}
	err := c.do(ctx, request{method: http.MethodPost, path: "/auth/signup", body: req}, nil)
	if err == nil {
		return nil
	}
	e, ok := apperr.As(err)
	if !ok || e.Status != http.StatusUnprocessableEntity {
		return err
	}
	out := *e
	switch {
	case len(e.Errors["email"]) > 0:
		out.Message = "This email address is already registered"
	case len(e.Errors["username"]) > 0:
		out.Message = "This username is already taken"
	default:
		out.Message = "Email or username may already be in use"
	}
	return &out
}

// UpdateAccount saves profile changes for user id.
func (c *Client) UpdateAccount(ctx context.Context, id string, req UpdateAccountRequest) error {
	body := struct {
		UpdateAccountRequest
		ContactNumber string `json:"contact_number"`
	}{req, req.ContactNo}
	err := c.do(ctx, request{method: http.MethodPost, path: "/auth/update-account/" + id, body: body}, nil)
	if err != nil {
		return firstFieldMessage(err)
	}
	return nil
}

// firstFieldMessage promotes the first server field error of a 422 into
// the user message.
func firstFieldMessage(err error) error {
	e, ok := apperr.As(err)
	if !ok || e.Status != http.StatusUnprocessableEntity {
		return err
	}
	msg, ok := e.FirstFieldError()
	if !ok {
		return err
	}
	out := *e
	out.Message = msg
	return &out
}
