package program

import (
	"errors"
	"strings"

	"github.com/EnmanuelReynoso23/el-pensum/database"
	"github.com/EnmanuelReynoso23/el-pensum/model"
	"github.com/EnmanuelReynoso23/el-pensum/utils/middleware"
	"github.com/EnmanuelReynoso23/el-pensum/utils/response"
	"github.com/EnmanuelReynoso23/el-pensum/utils/validation"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProgramHandler handles program-related requests
type ProgramHandler struct {
	db        *gorm.DB
	validator *validation.Validator
	catalog   database.Invalidator
}

// NewProgramHandler creates a new program handler
func NewProgramHandler(db *gorm.DB, catalog database.Invalidator) *ProgramHandler {
	return &ProgramHandler{
		db:        db,
		validator: validation.NewValidator(),
		catalog:   catalog,
	}
}

// ProgramRequest is the body of create and update
type ProgramRequest struct {
	Name string `json:"name" validate:"required,notblank,max=255"`
}

// ListPrograms handles GET /api/v1/programs
func (h *ProgramHandler) ListPrograms(c *fiber.Ctx) error {
	page, limit := response.ParsePagination(c)
	search := strings.TrimSpace(c.Query("search"))

	query := h.db.WithContext(c.UserContext()).Model(&model.Program{})
	if search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count programs")
	}

	var programs []model.Program
	if err := query.Order("name ASC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&programs).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch programs")
	}

	return response.Paginated(c, programs, response.CalculatePagination(page, limit, total))
}

// GetProgram handles GET /api/v1/programs/:id
func (h *ProgramHandler) GetProgram(c *fiber.Ctx) error {
	id, err := response.ParamID(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var program model.Program
	if err := h.db.WithContext(c.UserContext()).First(&program, id).Error; err != nil {
		return notFoundOr500(c, err)
	}

	return response.Success(c, program)
}

// CreateProgram handles POST /api/v1/programs
func (h *ProgramHandler) CreateProgram(c *fiber.Ctx) error {
	var req ProgramRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	program := model.Program{Name: validation.SanitizeString(req.Name)}
	if err := h.db.WithContext(c.UserContext()).Create(&program).Error; err != nil {
		return response.InternalServerError(c, "Failed to create program")
	}

	h.invalidate(c)
	return response.Created(c, program)
}

// UpdateProgram handles PUT /api/v1/programs/:id
func (h *ProgramHandler) UpdateProgram(c *fiber.Ctx) error {
	id, err := response.ParamID(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var req ProgramRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var program model.Program
	if err := h.db.WithContext(c.UserContext()).First(&program, id).Error; err != nil {
		return notFoundOr500(c, err)
	}

	program.Name = validation.SanitizeString(req.Name)
	if err := h.db.WithContext(c.UserContext()).Save(&program).Error; err != nil {
		return response.InternalServerError(c, "Failed to update program")
	}

	h.invalidate(c)
	return response.SuccessWithMessage(c, "Program updated successfully", program)
}

// DeleteProgram handles DELETE /api/v1/programs/:id.
// Programs still offered by a university cannot be deleted.
func (h *ProgramHandler) DeleteProgram(c *fiber.Ctx) error {
	id, err := response.ParamID(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var program model.Program
	if err := h.db.WithContext(c.UserContext()).First(&program, id).Error; err != nil {
		return notFoundOr500(c, err)
	}

	var offerings int64
	if err := h.db.WithContext(c.UserContext()).Model(&model.Offering{}).Where("program_id = ?", id).Count(&offerings).Error; err != nil {
		return response.InternalServerError(c, "Failed to check offerings")
	}
	if offerings > 0 {
		return response.BadRequest(c, "Program is still offered; delete its offerings first")
	}

	if err := h.db.WithContext(c.UserContext()).Delete(&program).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete program")
	}

	h.invalidate(c)
	return response.SuccessWithMessage(c, "Program deleted successfully", nil)
}

func (h *ProgramHandler) invalidate(c *fiber.Ctx) {
	if h.catalog == nil {
		return
	}
	if err := h.catalog.Invalidate(c.UserContext()); err != nil {
		middleware.Logger(c).Warn("failed to invalidate catalog cache", zap.Error(err))
	}
}

func notFoundOr500(c *fiber.Ctx, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return response.NotFound(c, "Program not found")
	}
	return response.InternalServerError(c, "Failed to fetch program")
}
