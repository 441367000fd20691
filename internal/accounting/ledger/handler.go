package ledger

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tillbook/tillbook/internal/accounting/shared"
	"github.com/tillbook/tillbook/internal/platform/httpx"
)

// Handler exposes general ledger read endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers ledger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/accounts/{id}", h.AccountLedger)
	r.Get("/balances", h.AllBalances)
	r.Get("/top-accounts", h.TopAccounts)
}

func (h *Handler) AccountLedger(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "id must be an integer")
		return
	}
	rng, err := rangeFromQuery(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Range", err.Error())
		return
	}
	statement, err := h.service.AccountLedger(r.Context(), id, rng)
	if err != nil {
		h.logger.Error("account ledger", slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, statement)
}

func (h *Handler) AllBalances(w http.ResponseWriter, r *http.Request) {
	rng, err := rangeFromQuery(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Range", err.Error())
		return
	}
	balances, err := h.service.AllAccountBalances(r.Context(), rng)
	if err != nil {
		h.logger.Error("all balances", slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"balances": balances})
}

func (h *Handler) TopAccounts(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	top, err := h.service.TopAccountsByActivity(r.Context(), limit)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"accounts": top})
}

// rangeFromQuery reads optional inclusive start/end dates in YYYY-MM-DD form.
func rangeFromQuery(r *http.Request) (DateRange, error) {
	var rng DateRange
	if raw := r.URL.Query().Get("start"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return DateRange{}, err
		}
		rng.Start = &t
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return DateRange{}, err
		}
		rng.End = &t
	}
	return rng, nil
}
