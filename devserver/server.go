// Package devserver is an in-memory fake of the storefront REST API for
// local development and round-trip tests.
package devserver

import (
	_ "embed"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"storefront/model"
)

//go:embed seed.yaml
var seedYAML []byte

// DefaultTokenTTL is the lifetime of issued session tokens.
const DefaultTokenTTL = 24 * time.Hour

type Options struct {
	JWTSecret string
	TokenTTL  time.Duration
	Logger    *slog.Logger
	Now       func() time.Time
}

// Server holds all fake state behind one mutex.
type Server struct {
	secret []byte
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	basePath string
	users    map[string]*user
	orders   []*storedOrder
	replays  map[string]replay
	products []model.Product
	faults   map[string]int
	userSeq  int
	orderSeq int
}

func New(opts Options) (*Server, error) {
	if opts.JWTSecret == "" {
		return nil, fmt.Errorf("devserver: jwt secret is required")
	}
	s := &Server{
		secret:  []byte(opts.JWTSecret),
		ttl:     opts.TokenTTL,
		logger:  opts.Logger,
		now:     opts.Now,
		users:   make(map[string]*user),
		replays: make(map[string]replay),
		faults:  make(map[string]int),
	}
	if s.ttl <= 0 {
		s.ttl = DefaultTokenTTL
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	products, err := loadSeed(seedYAML)
	if err != nil {
		return nil, err
	}
	s.products = products
	return s, nil
}

// Handler mounts every route under basePath.
func (s *Server) Handler(basePath string) http.Handler {
	basePath = "/" + strings.Trim(basePath, "/")
	if basePath == "/" {
		basePath = ""
	}
	s.mu.Lock()
	s.basePath = basePath
	s.mu.Unlock()

	root := mux.NewRouter()
	r := root
	if basePath != "" {
		r = root.PathPrefix(basePath).Subrouter()
	}
	r.Use(s.logRequests, s.injectFaults)
	s.RegisterRoutes(r)
	return root
}

// RegisterRoutes registers all routes on the provided router.
func (s *Server) RegisterRoutes(r *mux.Router) {
	// Auth
	r.HandleFunc("/auth/signin", s.SignIn).Methods("POST")
	r.HandleFunc("/auth/signup", s.SignUp).Methods("POST")
	r.HandleFunc("/auth/update-account/{id}", s.UpdateAccount).Methods("POST")

	// Orders
	r.HandleFunc("/orders", s.CreateOrder).Methods("POST")
	r.HandleFunc("/orders", s.ListOrders).Methods("GET")

	// Products
	r.HandleFunc("/products", s.ListProducts).Methods("GET")
}

// SetFault makes every request to path answer with status until cleared
// with status 0. path is relative to the base path, e.g. "/orders".
func (s *Server) SetFault(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.faults, path)
		return
	}
	s.faults[path] = status
}

func (s *Server) injectFaults(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		status, ok := s.faults[strings.TrimPrefix(r.URL.Path, s.basePath)]
		s.mu.Unlock()
		if ok {
			writeErr(w, status, http.StatusText(status))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		s.logger.Debug("twin request", "method", r.Method, "path", r.URL.Path,
			"status", rec.status, "duration", time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

type seedProduct struct {
	ID              string `yaml:"id"`
	SKU             string `yaml:"sku"`
	Name            string `yaml:"name"`
	Category        string `yaml:"category"`
	Description     string `yaml:"description"`
	Price           string `yaml:"price"`
	DiscountedPrice string `yaml:"discounted_price"`
	IsDiscounted    bool   `yaml:"is_discounted"`
	StocksQty       int    `yaml:"stocks_qty"`
	Image           string `yaml:"image"`
}

func loadSeed(data []byte) ([]model.Product, error) {
	var seed struct {
		Products []seedProduct `yaml:"products"`
	}
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parsing seed catalog: %w", err)
	}

	out := make([]model.Product, 0, len(seed.Products))
	for _, sp := range seed.Products {
		price, err := model.ParsePrice(sp.Price)
		if err != nil {
			return nil, fmt.Errorf("seed product %s: %w", sp.ID, err)
		}
		discounted := decimal.Zero
		if sp.DiscountedPrice != "" {
			if discounted, err = model.ParsePrice(sp.DiscountedPrice); err != nil {
				return nil, fmt.Errorf("seed product %s: %w", sp.ID, err)
			}
		}
		out = append(out, model.Product{
			ID:              sp.ID,
			SKU:             sp.SKU,
			Name:            sp.Name,
			Category:        sp.Category,
			Description:     sp.Description,
			Price:           price,
			DiscountedPrice: discounted,
			IsDiscounted:    sp.IsDiscounted,
			StocksQty:       sp.StocksQty,
			Image:           sp.Image,
			IsPublished:     true,
		})
	}
	return out, nil
}
