package reports

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tillbook/tillbook/internal/accounting/ledger"
	"github.com/tillbook/tillbook/internal/platform/httpx"
)

// Handler renders financial reports from aggregated ledger balances.
type Handler struct {
	logger *slog.Logger
	ledger *ledger.Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, ledgerService *ledger.Service) *Handler {
	return &Handler{logger: logger, ledger: ledgerService}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/trial-balance", h.report(func(balances []ledger.AccountBalance) any {
		return BuildTrialBalance(balances)
	}))
	r.Get("/profit-loss", h.report(func(balances []ledger.AccountBalance) any {
		return BuildProfitAndLoss(balances)
	}))
	r.Get("/balance-sheet", h.report(func(balances []ledger.AccountBalance) any {
		return BuildBalanceSheet(balances)
	}))
}

func (h *Handler) report(build func([]ledger.AccountBalance) any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rng, err := rangeFromQuery(r)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Range", err.Error())
			return
		}
		balances, err := h.ledger.AllAccountBalances(r.Context(), rng)
		if err != nil {
			h.logger.Error("report balances", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
			return
		}
		httpx.JSON(w, http.StatusOK, build(balances))
	}
}

func rangeFromQuery(r *http.Request) (ledger.DateRange, error) {
	var rng ledger.DateRange
	if raw := r.URL.Query().Get("start"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return ledger.DateRange{}, err
		}
		rng.Start = &t
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return ledger.DateRange{}, err
		}
		rng.End = &t
	}
	return rng, nil
}
