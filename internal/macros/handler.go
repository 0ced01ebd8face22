package macros

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/rolldeck/rolldeck/internal/identity"
	"github.com/rolldeck/rolldeck/internal/observability"
	"github.com/rolldeck/rolldeck/internal/platform/httpx"
)

// Handler serves the macro CRUD and roll endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	metrics   *observability.Metrics
}

// NewHandler constructs a Handler. Metrics may be nil.
func NewHandler(logger *slog.Logger, service *Service, metrics *observability.Metrics) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New(), metrics: metrics}
}

type createRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	NumDice  int    `json:"num_dice" validate:"required,min=1,max=100"`
	Sides    int    `json:"sides" validate:"required,min=2,max=1000"`
	Modifier int    `json:"modifier"`
}

// Pointer fields distinguish "absent" from an explicit zero; nil fields keep
// their stored values. Range tags still apply when a value is supplied.
type updateRequest struct {
	Name     *string `json:"name" validate:"omitnil,min=1,max=100"`
	NumDice  *int    `json:"num_dice" validate:"omitnil,min=1,max=100"`
	Sides    *int    `json:"sides" validate:"omitnil,min=2,max=1000"`
	Modifier *int    `json:"modifier"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	macros, err := h.service.List(r.Context(), owner)
	if err != nil {
		h.logger.Error("list macros", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, macros)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", validationDetail(err))
		return
	}

	created, err := h.service.Create(r.Context(), owner, Input{
		Name:     req.Name,
		NumDice:  req.NumDice,
		Sides:    req.Sides,
		Modifier: req.Modifier,
	})
	if err != nil {
		h.logger.Warn("create macro", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	id, ok := h.macroID(w, r)
	if !ok {
		return
	}

	macro, err := h.service.Get(r.Context(), owner, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, macro)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	id, ok := h.macroID(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", validationDetail(err))
		return
	}

	// Partial update: unspecified fields keep their stored values. The
	// owner-scoped Get doubles as the existence check.
	existing, err := h.service.Get(r.Context(), owner, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	in := Input{
		Name:     existing.Name,
		NumDice:  existing.NumDice,
		Sides:    existing.Sides,
		Modifier: existing.Modifier,
	}
	if req.Name != nil {
		in.Name = *req.Name
	}
	if req.NumDice != nil {
		in.NumDice = *req.NumDice
	}
	if req.Sides != nil {
		in.Sides = *req.Sides
	}
	if req.Modifier != nil {
		in.Modifier = *req.Modifier
	}

	updated, err := h.service.Update(r.Context(), owner, id, in)
	if err != nil {
		h.logger.Warn("update macro", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	id, ok := h.macroID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), owner, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Roll(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	id, ok := h.macroID(w, r)
	if !ok {
		return
	}

	outcome, err := h.service.Roll(r.Context(), owner, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.metrics.CountRoll("macro")
	httpx.JSON(w, http.StatusOK, outcome)
}

func (h *Handler) owner(w http.ResponseWriter, r *http.Request) (string, bool) {
	principal, ok := identity.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return "", false
	}
	return principal.ID, true
}

// macroID parses the id route param. Malformed ids report not-found, the
// same as ids that do not exist, so nothing is revealed about valid ids.
func (h *Handler) macroID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.RespondError(w, httpx.ErrNotFound)
		return 0, false
	}
	return id, true
}

func validationDetail(err error) string {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok || len(fieldErrs) == 0 {
		return err.Error()
	}
	return fieldErrs[0].Error()
}
