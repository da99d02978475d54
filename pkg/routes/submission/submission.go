package submission

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"

	"github.com/fretbase/registry/pkg/models"
	"github.com/fretbase/registry/pkg/processor"
	"github.com/fretbase/registry/pkg/tracing"
)

// Handler serves submission intake.
type Handler struct {
	controller *processor.Controller
}

// NewHandler creates a submission handler.
func NewHandler(controller *processor.Controller) *Handler {
	return &Handler{controller: controller}
}

// Register registers submission routes
func (h *Handler) Register(g *echo.Group) {
	g.POST("", h.Submit)
}

// Submit accepts either a single submission object or an array of them. A
// single object returns the unwrapped per-submission result; an array
// returns the batch result.
func (h *Handler) Submit(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "submission_handler.Submit")
	defer span.End()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "failed to read request body")
	}

	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) == 0 {
		return httperror.NewHTTPError(http.StatusBadRequest, "request body is empty")
	}

	if trimmed[0] == '[' {
		var submissions []models.Submission
		if err := json.Unmarshal(trimmed, &submissions); err != nil {
			return httperror.NewHTTPError(http.StatusBadRequest, "invalid submission batch")
		}
		return c.JSON(http.StatusOK, h.controller.ProcessBatch(ctx, submissions))
	}

	var sub models.Submission
	if err := json.Unmarshal(trimmed, &sub); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid submission")
	}
	if sub.IsEmpty() {
		return httperror.NewHTTPError(http.StatusBadRequest, "submission has no entities")
	}
	return c.JSON(http.StatusOK, h.controller.ProcessOne(ctx, &sub))
}
