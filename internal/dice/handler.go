package dice

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/rolldeck/rolldeck/internal/observability"
	"github.com/rolldeck/rolldeck/internal/platform/httpx"
)

// Handler serves the public roll endpoint.
type Handler struct {
	logger    *slog.Logger
	validator *validator.Validate
	metrics   *observability.Metrics
}

// NewHandler constructs a Handler. Metrics may be nil.
func NewHandler(logger *slog.Logger, metrics *observability.Metrics) *Handler {
	return &Handler{logger: logger, validator: validator.New(), metrics: metrics}
}

type rollRequest struct {
	NumDice  int `json:"num_dice" validate:"required,min=1,max=100"`
	Sides    int `json:"sides" validate:"required,min=2,max=1000"`
	Modifier int `json:"modifier"`
}

// Roll handles POST /roll. No credential is required.
func (h *Handler) Roll(w http.ResponseWriter, r *http.Request) {
	var req rollRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", validationDetail(err))
		return
	}

	result := Roll(req.NumDice, req.Sides, req.Modifier)
	h.metrics.CountRoll("public")
	httpx.JSON(w, http.StatusOK, result)
}

func validationDetail(err error) string {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok || len(fieldErrs) == 0 {
		return err.Error()
	}
	return fieldErrs[0].Error()
}
