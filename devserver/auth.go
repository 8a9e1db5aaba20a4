package devserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"storefront/model"
)

type user struct {
	model.Session
	Address      string
	passwordHash []byte
}

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type signUpReq struct {
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	Username    string            `json:"username"`
	ContactNo   string            `json:"contact_no"`
	Password    string            `json:"password"`
	AccountType model.AccountType `json:"account_type"`
}

// AddUser registers an account directly, bypassing the signup handler.
func (s *Server) AddUser(name, email, username, password string) (model.Session, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return model.Session{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.users[strings.ToLower(email)]; taken {
		return model.Session{}, errors.New("email already registered")
	}
	u := s.insertUser(signUpReq{Name: name, Email: email, Username: username, AccountType: model.AccountCustomer}, hash)
	return u.Session, nil
}

// insertUser must be called with s.mu held.
func (s *Server) insertUser(req signUpReq, hash []byte) *user {
	s.userSeq++
	if req.AccountType == "" {
		req.AccountType = model.AccountCustomer
	}
	u := &user{
		Session: model.Session{
			ID:          strconv.Itoa(s.userSeq),
			Name:        req.Name,
			Email:       req.Email,
			Username:    req.Username,
			ContactNo:   req.ContactNo,
			AccountType: req.AccountType,
		},
		passwordHash: hash,
	}
	s.users[strings.ToLower(req.Email)] = u
	return u
}

// SignUp handles POST /auth/signup
func (s *Server) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpReq
	if !decodeBody(w, r, &req) {
		return
	}
	fields := map[string][]string{}
	if req.Email == "" {
		fields["email"] = []string{"The email field is required."}
	}
	if req.Username == "" {
		fields["username"] = []string{"The username field is required."}
	}
	if len(req.Password) < 6 {
		fields["password"] = []string{"The password must be at least 6 characters."}
	}
	if len(fields) > 0 {
		writeFieldErrs(w, fields)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "could not hash password")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.users[strings.ToLower(req.Email)]; taken {
		fields["email"] = []string{"The email has already been taken."}
	}
	for _, u := range s.users {
		if strings.EqualFold(u.Username, req.Username) {
			fields["username"] = []string{"The username has already been taken."}
		}
	}
	if len(fields) > 0 {
		writeFieldErrs(w, fields)
		return
	}
	u := s.insertUser(req, hash)
	writeJSON(w, http.StatusCreated, map[string]any{"data": map[string]any{"user": u.Session}})
}

// SignIn handles POST /auth/signin
func (s *Server) SignIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	fields := map[string][]string{}
	if req.Email == "" {
		fields["email"] = []string{"The email field is required."}
	}
	if req.Password == "" {
		fields["password"] = []string{"The password field is required."}
	}
	if len(fields) > 0 {
		writeFieldErrs(w, fields)
		return
	}

	s.mu.Lock()
	u, ok := s.users[strings.ToLower(req.Email)]
	var sess model.Session
	var hash []byte
	if ok {
		sess, hash = u.Session, u.passwordHash
	}
	s.mu.Unlock()

	if !ok || bcrypt.CompareHashAndPassword(hash, []byte(req.Password)) != nil {
		writeErr(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := s.issueToken(sess)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{"user": sess, "token": token},
	})
}

// UpdateAccount handles POST /auth/update-account/{id}
func (s *Server) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	sub, ok := s.authenticate(r)
	if !ok {
		writeErr(w, http.StatusUnauthorized, "Unauthenticated")
		return
	}
	id := mux.Vars(r)["id"]
	if sub != id {
		writeErr(w, http.StatusForbidden, "Forbidden")
		return
	}

	var req struct {
		Name          string `json:"name"`
		Email         string `json:"email"`
		ContactNo     string `json:"contact_no"`
		ContactNumber string `json:"contact_number"`
		Address       string `json:"address"`
		Password      string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" {
		writeFieldErrs(w, map[string][]string{"email": {"The email field is required."}})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var u *user
	for _, cand := range s.users {
		if cand.ID == id {
			u = cand
		}
	}
	if u == nil {
		writeErr(w, http.StatusNotFound, "user not found")
		return
	}
	newKey := strings.ToLower(req.Email)
	if other, taken := s.users[newKey]; taken && other != u {
		writeFieldErrs(w, map[string][]string{"email": {"The email has already been taken."}})
		return
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, "could not hash password")
			return
		}
		u.passwordHash = hash
	}

	delete(s.users, strings.ToLower(u.Email))
	u.Name = req.Name
	u.Email = req.Email
	u.ContactNo = req.ContactNumber
	if u.ContactNo == "" {
		u.ContactNo = req.ContactNo
	}
	u.Address = req.Address
	s.users[newKey] = u

	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"user": u.Session}})
}

func (s *Server) issueToken(sess model.Session) (string, error) {
	now := s.now()
	c := claims{
		Email: sess.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sess.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}

// authenticate verifies the bearer token and returns its subject.
func (s *Server) authenticate(r *http.Request) (string, bool) {
	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || raw == "" {
		return "", false
	}
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		s.logger.Debug("rejected token", "error", err)
		return "", false
	}
	return c.Subject, true
}
