package journals

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/tillbook/tillbook/internal/accounting/numbering"
	"github.com/tillbook/tillbook/internal/accounting/shared"
	"github.com/tillbook/tillbook/internal/platform/httpx"
)

// Handler exposes journal entry endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

type lineRequest struct {
	AccountID   int64           `json:"account_id" validate:"required"`
	Debit       decimal.Decimal `json:"debit_amount"`
	Credit      decimal.Decimal `json:"credit_amount"`
	Description string          `json:"description"`
}

type postRequest struct {
	EntryDate              string        `json:"entry_date" validate:"required"`
	Reference              string        `json:"reference"`
	Description            string        `json:"description"`
	Lines                  []lineRequest `json:"lines" validate:"required,min=2,dive"`
	SourcePurchaseRecordID *int64        `json:"source_purchase_record_id"`
	VoucherKind            string        `json:"voucher_kind"`
	CreatedBy              int64         `json:"created_by"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list journals", slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"journal_entries": entries})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	entry, err := h.service.Get(r.Context(), id)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := httpx.DecodeValid(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	input, err := req.toPostingInput()
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	entry, err := h.service.Post(r.Context(), input)
	if err != nil {
		h.logger.Error("post journal", slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req postRequest
	if err := httpx.DecodeValid(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	entryDate, err := parseDate(req.EntryDate)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	entry, err := h.service.Update(r.Context(), id, UpdateInput{
		EntryDate:   entryDate,
		Reference:   req.Reference,
		Description: req.Description,
		Lines:       toLineInputs(req.Lines),
		ActorID:     req.CreatedBy,
	})
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	actor, _ := strconv.ParseInt(r.Header.Get("X-Actor-ID"), 10, 64)
	if err := h.service.Delete(r.Context(), id, actor); err != nil {
		shared.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (req postRequest) toPostingInput() (PostingInput, error) {
	entryDate, err := parseDate(req.EntryDate)
	if err != nil {
		return PostingInput{}, err
	}
	input := PostingInput{
		EntryDate:              entryDate,
		Reference:              req.Reference,
		Description:            req.Description,
		Lines:                  toLineInputs(req.Lines),
		SourcePurchaseRecordID: req.SourcePurchaseRecordID,
		CreatedBy:              req.CreatedBy,
	}
	if req.VoucherKind != "" {
		kind := numbering.DocumentKind(req.VoucherKind)
		input.VoucherKind = &kind
	}
	return input, nil
}

func toLineInputs(lines []lineRequest) []LineInput {
	out := make([]LineInput, 0, len(lines))
	for _, line := range lines {
		out = append(out, LineInput{
			AccountID:   line.AccountID,
			Debit:       line.Debit,
			Credit:      line.Credit,
			Description: line.Description,
		})
	}
	return out
}

func parseDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}

func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "id must be an integer")
		return 0, false
	}
	return id, true
}
