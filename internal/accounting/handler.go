package accounting

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tillbook/tillbook/internal/accounting/accounts"
	"github.com/tillbook/tillbook/internal/accounting/journals"
	"github.com/tillbook/tillbook/internal/accounting/ledger"
	"github.com/tillbook/tillbook/internal/accounting/numbering"
	"github.com/tillbook/tillbook/internal/accounting/reports"
	"github.com/tillbook/tillbook/internal/platform/httpx"
)

// Handler wires the bookkeeping endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	accounts *accounts.Handler
	journals *journals.Handler
	ledger   *ledger.Handler
	reports  *reports.Handler
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, accountsHandler *accounts.Handler, journalsHandler *journals.Handler, ledgerHandler *ledger.Handler, reportsHandler *reports.Handler) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		accounts: accountsHandler,
		journals: journalsHandler,
		ledger:   ledgerHandler,
		reports:  reportsHandler,
	}
}

// MountRoutes registers HTTP routes for the bookkeeping core.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/accounts", h.accounts.MountRoutes)
	r.Route("/journal-entries", h.journals.MountRoutes)
	r.Route("/ledger", h.ledger.MountRoutes)
	r.Route("/reports", h.reports.MountRoutes)
	r.Get("/numbers/next", h.NextNumber)
}

// NextNumber previews the next number in a document series. The number is
// not reserved; the record modules insert it transactionally and retry on
// conflict.
func (h *Handler) NextNumber(w http.ResponseWriter, r *http.Request) {
	kind := numbering.DocumentKind(r.URL.Query().Get("kind"))
	if !kind.Valid() {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Kind", "unknown document kind")
		return
	}
	date := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Date", "date must be YYYY-MM-DD")
			return
		}
		date = parsed
	}
	number, err := h.service.NextRecordNumber(r.Context(), kind, date)
	if err != nil {
		h.logger.Error("next record number", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"number": number})
}
