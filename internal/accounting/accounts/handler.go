package accounts

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/tillbook/tillbook/internal/accounting/shared"
	"github.com/tillbook/tillbook/internal/platform/httpx"
)

// Handler exposes chart of accounts endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers account and subcategory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/subcategories", h.ListSubcategories)
	r.Post("/subcategories", h.CreateSubcategory)
	r.Put("/subcategories/{id}", h.UpdateSubcategory)
	r.Delete("/subcategories/{id}", h.DeleteSubcategory)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Get("/{id}/activity", h.Activity)
}

type accountRequest struct {
	Name           string          `json:"name" validate:"required"`
	Code           string          `json:"code"`
	Category       string          `json:"category" validate:"required,oneof=asset liability equity income expense"`
	Subcategory    string          `json:"subcategory"`
	LedgerGroup    string          `json:"ledger_group"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Description    string          `json:"description"`
	ActorID        int64           `json:"actor_id"`
}

type subcategoryRequest struct {
	Name     string `json:"name" validate:"required"`
	Category string `json:"category" validate:"required,oneof=asset liability equity income expense"`
	ParentID *int64 `json:"parent_id"`
	ActorID  int64  `json:"actor_id"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	accts, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list accounts", slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"accounts": accts})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	account, err := h.service.Get(r.Context(), id)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, account)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := httpx.DecodeValid(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	account, err := h.service.CreateAccount(r.Context(), CreateAccountInput{
		Name:           req.Name,
		Code:           req.Code,
		Category:       Category(req.Category),
		Subcategory:    req.Subcategory,
		LedgerGroup:    req.LedgerGroup,
		OpeningBalance: req.OpeningBalance,
		Description:    req.Description,
		ActorID:        req.ActorID,
	})
	if err != nil {
		h.logger.Error("create account", slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, account)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req accountRequest
	if err := httpx.DecodeValid(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	account, err := h.service.UpdateAccount(r.Context(), id, UpdateAccountInput{
		Name:           req.Name,
		Code:           req.Code,
		Category:       Category(req.Category),
		Subcategory:    req.Subcategory,
		LedgerGroup:    req.LedgerGroup,
		OpeningBalance: req.OpeningBalance,
		Description:    req.Description,
		ActorID:        req.ActorID,
	})
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, account)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteAccount(r.Context(), id, actorID(r)); err != nil {
		shared.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Activity(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	active, err := h.service.HasLedgerActivity(r.Context(), id)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"has_ledger_activity": active})
}

func (h *Handler) ListSubcategories(w http.ResponseWriter, r *http.Request) {
	subs, err := h.service.ListSubcategories(r.Context())
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"subcategories": subs})
}

func (h *Handler) CreateSubcategory(w http.ResponseWriter, r *http.Request) {
	var req subcategoryRequest
	if err := httpx.DecodeValid(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	sub, err := h.service.CreateSubcategory(r.Context(), Subcategory{
		Name:     req.Name,
		Category: Category(req.Category),
		ParentID: req.ParentID,
	}, req.ActorID)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, sub)
}

func (h *Handler) UpdateSubcategory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req subcategoryRequest
	if err := httpx.DecodeValid(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	sub, err := h.service.UpdateSubcategory(r.Context(), id, Subcategory{
		Name:     req.Name,
		Category: Category(req.Category),
		ParentID: req.ParentID,
	}, req.ActorID)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sub)
}

func (h *Handler) DeleteSubcategory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteSubcategory(r.Context(), id, actorID(r)); err != nil {
		shared.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "id must be an integer")
		return 0, false
	}
	return id, true
}

func actorID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(r.Header.Get("X-Actor-ID"), 10, 64)
	return id
}
