package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/pardaaf/backoffice/pkg/blob"
	"github.com/pardaaf/backoffice/pkg/catalog"
	"github.com/pardaaf/backoffice/pkg/dbpool"
	"github.com/pardaaf/backoffice/pkg/faultlog"
	"github.com/pardaaf/backoffice/pkg/imaging"
	"github.com/pardaaf/backoffice/pkg/mailer"
	"github.com/pardaaf/backoffice/pkg/printqueue"
	"github.com/pardaaf/backoffice/pkg/token"
)

// Config holds the gateway's request policies and fixed public tenants.
type Config struct {
	RequestTimeout time.Duration `env:"GATEWAY_REQUEST_TIMEOUT" envDefault:"30s"`
	TenantCacheTTL time.Duration `env:"GATEWAY_TENANT_CACHE_TTL" envDefault:"1m"`
	SalesTenant    string        `env:"GATEWAY_SALES_TENANT" envDefault:"pardaaf_sales"`
	Namespace      string        `env:"GATEWAY_BLOB_NAMESPACE" envDefault:"curtaindb"`
	WebsiteThanks  string        `env:"GATEWAY_WEBSITE_THANKS_URL" envDefault:"https://pardaaf.example/thanks"`
	PublicBaseURL  string        `env:"GATEWAY_PUBLIC_BASE_URL" envDefault:"https://api.pardaaf.example"`
}

// Directory is the slice of the master catalog the gateway reads.
type Directory interface {
	Resolve(ctx context.Context, codename string) (catalog.Gallery, error)
	LatestRates(ctx context.Context) ([]catalog.Rate, error)
}

// BillNotifier pushes a bot message to every chat that asked to be told a
// bill is ready. The context carries the tenant binding.
type BillNotifier interface {
	NotifyBillReady(ctx context.Context, billCode string) error
}

// UpdateHandler processes one Telegram webhook update.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update)
}

// Service wires the gateway's dependencies. Construct with New.
type Service struct {
	cfg      Config
	registry *dbpool.Registry
	catalog  Directory
	tenants  *tenantCache
	tokens   *token.Service
	queue    *printqueue.Queue
	blobs    *blob.Storage
	images   *imaging.Transcoder
	notifier BillNotifier
	bot      UpdateHandler
	mail     mailer.EmailSender
	faults   *faultlog.Sink
	logger   *slog.Logger
}

// Deps are the collaborators a Service needs. Notifier and Bot may be nil
// when the process runs without the Telegram side.
type Deps struct {
	Registry *dbpool.Registry
	Catalog  Directory
	Tokens   *token.Service
	Queue    *printqueue.Queue
	Blobs    *blob.Storage
	Images   *imaging.Transcoder
	Notifier BillNotifier
	Bot      UpdateHandler
	Mail     mailer.EmailSender
	Faults   *faultlog.Sink
	Logger   *slog.Logger
}

// New creates the gateway service.
func New(cfg Config, deps Deps) *Service {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.TenantCacheTTL <= 0 {
		cfg.TenantCacheTTL = time.Minute
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:      cfg,
		registry: deps.Registry,
		catalog:  deps.Catalog,
		tenants:  newTenantCache(cfg.TenantCacheTTL),
		tokens:   deps.Tokens,
		queue:    deps.Queue,
		blobs:    deps.Blobs,
		images:   deps.Images,
		notifier: deps.Notifier,
		bot:      deps.Bot,
		mail:     deps.Mail,
		faults:   deps.Faults,
		logger:   logger,
	}
}

// Router builds the full route surface.
func (s *Service) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	// Public surface. Routes that need a data store bind a fixed tenant
	// themselves; nothing here trusts a tenant name from the client except
	// login, which resolves it through the catalog first.
	r.Post("/login", s.handleLogin)
	r.Post("/refresh-token", s.handleRefreshToken)
	r.Post("/telegram-webhook", s.handleTelegramWebhook)
	r.Get("/submit-request", s.handleSubmitRequest)
	r.Post("/add-online-order", s.handleAddOnlineOrder)
	r.Get("/subscribe-newsletter", s.handleSubscribeNewsletter)
	r.Get("/confirm-email-newsletter", s.handleConfirmNewsletter)
	r.Get("/unsubscribe-newsletter", s.handleUnsubscribeNewsletter)
	r.Get("/fx/latest", s.handleLatestRates)

	// Session routes.
	r.With(s.requireLevel(1)).Post("/is-token-valid", s.handleIsTokenValid)
	r.With(s.requireLevel(1)).Post("/change-password", s.handleChangePassword)

	// Entity CRUD families.
	for _, e := range entities {
		e := e
		r.With(s.requireLevel(e.writeLevel)).Post("/add-or-edit-"+e.name, s.handleAddOrEdit(e))
		r.With(s.requireLevel(e.readLevel)).Get("/"+e.name+"-list-get", s.handleList(e))
		r.With(s.requireLevel(e.readLevel)).Get("/"+e.name+"-get", s.handleGet(e))
		r.With(s.requireLevel(e.writeLevel)).Post("/remove-"+e.name, s.handleRemove(e))
	}

	// Payments.
	r.With(s.requireLevel(3)).Post("/add-payment", s.handleAddPayment)
	r.With(s.requireLevel(1)).Get("/payment-history-get", s.handlePaymentHistory)

	// Bill operations beyond plain CRUD.
	r.With(s.requireLevel(2)).Post("/update-bill-status", s.handleUpdateBillStatus)
	r.With(s.requireLevel(2)).Post("/update-bill-tailor", s.handleUpdateBillTailor)
	r.With(s.requireLevel(2)).Post("/add-payment-bill", s.handleAddPaymentBill)

	// Sync and bulk list reads for the desktop client.
	r.With(s.requireLevel(1)).Post("/check-sync", s.handleCheckSync)
	r.With(s.requireLevel(1)).Post("/get-lists", s.handleGetLists)
	r.With(s.requireLevel(2)).Post("/get-inventory-lists", s.handleGetInventoryLists)

	// Print spooling.
	r.With(s.requireLevel(2)).Post("/add-print-job", s.handleAddPrintJob)
	r.With(s.requireLevel(2)).Get("/get-print-jobs", s.handleGetPrintJobs)
	r.With(s.requireLevel(2)).Post("/mark-printed", s.handleMarkPrinted)

	return r
}

// Handler returns the router as a plain http.Handler for the server.
func (s *Service) Handler() http.Handler {
	return s.Router()
}
