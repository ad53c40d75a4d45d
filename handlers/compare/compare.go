package compare

import (
	"errors"

	"github.com/EnmanuelReynoso23/el-pensum/config"
	"github.com/EnmanuelReynoso23/el-pensum/services/comparison"
	"github.com/EnmanuelReynoso23/el-pensum/utils/middleware"
	"github.com/EnmanuelReynoso23/el-pensum/utils/response"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// CompareHandler serves side by side comparisons
type CompareHandler struct {
	service  *comparison.Service
	fieldSet string
}

// NewCompareHandler creates a compare handler for the named field set
func NewCompareHandler(service *comparison.Service, fieldSet string) *CompareHandler {
	if fieldSet == "" {
		fieldSet = config.DefaultFieldSet
	}
	return &CompareHandler{service: service, fieldSet: fieldSet}
}

// FieldsResponse describes the active field set
type FieldsResponse struct {
	FieldSet      string             `json:"field_set"`
	Fields        []comparison.Field `json:"fields"`
	AvailableSets []string           `json:"available_sets"`
}

// Fields handles GET /api/v1/compare/fields
func (h *CompareHandler) Fields(c *fiber.Ctx) error {
	return response.Success(c, FieldsResponse{
		FieldSet:      h.fieldSet,
		Fields:        h.service.Fields(),
		AvailableSets: config.FieldSetNames(),
	})
}

// Compare handles GET /api/v1/compare/:slug1/:slug2/:programSlug
func (h *CompareHandler) Compare(c *fiber.Ctx) error {
	view, err := h.run(c)
	if err != nil {
		return ErrorResponse(c, err)
	}
	return response.Success(c, view)
}

// Export handles GET /api/v1/compare/:slug1/:slug2/:programSlug/export
func (h *CompareHandler) Export(c *fiber.Ctx) error {
	view, err := h.run(c)
	if err != nil {
		return ErrorResponse(c, err)
	}

	buf, filename, err := comparison.Export(view)
	if err != nil {
		middleware.Logger(c).Error("comparison export failed", zap.Error(err))
		return response.InternalServerError(c, "Failed to generate comparison workbook")
	}

	return response.Attachment(c, xlsxContentType, filename, buf.Bytes())
}

func (h *CompareHandler) run(c *fiber.Ctx) (*comparison.View, error) {
	return h.service.RunComparison(c.UserContext(),
		c.Params("slug1"),
		c.Params("slug2"),
		c.Params("programSlug"),
	)
}

// ErrorResponse maps comparison errors onto the response envelope
func ErrorResponse(c *fiber.Ctx, err error) error {
	var storeErr *comparison.StoreError

	switch {
	case errors.Is(err, comparison.ErrInvalidArgument):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, comparison.ErrNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, comparison.ErrAmbiguousMatch):
		return response.Conflict(c, err.Error())
	case errors.As(err, &storeErr):
		middleware.Logger(c).Error("catalog lookup failed", zap.String("op", storeErr.Op), zap.Error(storeErr.Err))
		return response.InternalServerError(c, "Failed to load catalog")
	default:
		middleware.Logger(c).Error("comparison failed", zap.Error(err))
		return response.InternalServerError(c, "")
	}
}
