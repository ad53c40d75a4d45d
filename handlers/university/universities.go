package university

import (
	"context"
	"errors"
	"strings"

	"github.com/EnmanuelReynoso23/el-pensum/database"
	"github.com/EnmanuelReynoso23/el-pensum/handlers/compare"
	"github.com/EnmanuelReynoso23/el-pensum/model"
	"github.com/EnmanuelReynoso23/el-pensum/services/comparison"
	"github.com/EnmanuelReynoso23/el-pensum/services/storage"
	"github.com/EnmanuelReynoso23/el-pensum/utils/middleware"
	"github.com/EnmanuelReynoso23/el-pensum/utils/response"
	"github.com/EnmanuelReynoso23/el-pensum/utils/validation"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UniversityHandler handles university-related requests
type UniversityHandler struct {
	db        *gorm.DB
	validator *validation.Validator
	catalog   database.Invalidator
	resolver  *comparison.Resolver
	store     storage.ObjectStore
}

// NewUniversityHandler creates a new university handler. store may be nil,
// in which case uploads answer 503.
func NewUniversityHandler(db *gorm.DB, catalog database.Invalidator, resolver *comparison.Resolver, store storage.ObjectStore) *UniversityHandler {
	return &UniversityHandler{
		db:        db,
		validator: validation.NewValidator(),
		catalog:   catalog,
		resolver:  resolver,
		store:     store,
	}
}

// UniversityRequest represents the request body for creating a university
type UniversityRequest struct {
	Name         string   `json:"name" validate:"required,notblank,max=255"`
	Country      string   `json:"country" validate:"required,notblank,max=100"`
	City         string   `json:"city" validate:"required,notblank,max=100"`
	NationalRank int      `json:"national_rank" validate:"gte=0"`
	WorldRank    int      `json:"world_rank" validate:"gte=0"`
	LogoURL      string   `json:"logo_url" validate:"required,url,max=500"`
	CampusImages []string `json:"campus_images" validate:"omitempty,max=20,dive,url"`
}

// UpdateUniversityRequest is a full replacement; ID must match the path
type UpdateUniversityRequest struct {
	ID uint `json:"id" validate:"required"`
	UniversityRequest
}

func (r *UniversityRequest) apply(u *model.University) {
	u.Name = validation.SanitizeString(r.Name)
	u.Country = validation.SanitizeString(r.Country)
	u.City = validation.SanitizeString(r.City)
	u.NationalRank = r.NationalRank
	u.WorldRank = r.WorldRank
	u.LogoURL = strings.TrimSpace(r.LogoURL)
	if r.CampusImages != nil {
		u.CampusImages = r.CampusImages
	}
}

// ListUniversities handles GET /api/v1/universities
func (h *UniversityHandler) ListUniversities(c *fiber.Ctx) error {
	page, limit := response.ParsePagination(c)
	search := strings.TrimSpace(c.Query("search"))

	query := h.db.WithContext(c.UserContext()).Model(&model.University{})
	if search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count universities")
	}

	var universities []model.University
	if err := query.Preload("Offerings").
		Order("name ASC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&universities).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch universities")
	}

	return response.Paginated(c, universities, response.CalculatePagination(page, limit, total))
}

// FilterUniversities handles GET /api/v1/universities/filter?name=
func (h *UniversityHandler) FilterUniversities(c *fiber.Ctx) error {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		return response.BadRequest(c, "name is required")
	}

	var universities []model.University
	if err := h.db.WithContext(c.UserContext()).
		Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%").
		Order("name ASC").
		Find(&universities).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch universities")
	}

	return response.Success(c, universities)
}

// GetUniversityID handles GET /api/v1/universities/id?name=
func (h *UniversityHandler) GetUniversityID(c *fiber.Ctx) error {
	id, err := h.resolver.ResolveID(c.UserContext(), c.Query("name"))
	if err != nil {
		return compare.ErrorResponse(c, err)
	}
	return response.Success(c, fiber.Map{"id": id})
}

// GetUniversity handles GET /api/v1/universities/:id
func (h *UniversityHandler) GetUniversity(c *fiber.Ctx) error {
	id, err := response.ParamID(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var university model.University
	if err := h.db.WithContext(c.UserContext()).Preload("Offerings.Program").First(&university, id).Error; err != nil {
		return h.notFoundOr500(c, err)
	}

	return response.Success(c, university)
}

// GetUniversityPrograms handles GET /api/v1/universities/:id/programs
func (h *UniversityHandler) GetUniversityPrograms(c *fiber.Ctx) error {
	id, err := response.ParamID(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var university model.University
	if err := h.db.WithContext(c.UserContext()).Select("id").First(&university, id).Error; err != nil {
		return h.notFoundOr500(c, err)
	}

	var offerings []model.Offering
	if err := h.db.WithContext(c.UserContext()).
		Preload("Program").
		Where("university_id = ?", id).
		Order("id ASC").
		Find(&offerings).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch programs")
	}

	return response.Success(c, offerings)
}

// GetUniversitiesByProgram handles GET /api/v1/universities/by-program/:programId
func (h *UniversityHandler) GetUniversitiesByProgram(c *fiber.Ctx) error {
	programID, err := response.ParamID(c, "programId")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	offering := h.db.Model(&model.Offering{}).Select("university_id").Where("program_id = ?", programID)

	var universities []model.University
	if err := h.db.WithContext(c.UserContext()).
		Where("id IN (?)", offering).
		Order("name ASC").
		Find(&universities).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch universities")
	}

	return response.Success(c, universities)
}

// CreateUniversity handles POST /api/v1/universities
func (h *UniversityHandler) CreateUniversity(c *fiber.Ctx) error {
	var req UniversityRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var university model.University
	req.apply(&university)

	taken, err := h.nameTaken(c.UserContext(), university.Name, 0)
	if err != nil {
		return response.InternalServerError(c, "Failed to check university name")
	}
	if taken {
		return response.Conflict(c, "University with this name already exists")
	}

	if err := h.db.WithContext(c.UserContext()).Create(&university).Error; err != nil {
		return response.InternalServerError(c, "Failed to create university")
	}

	h.invalidate(c)
	return response.Created(c, university)
}

// UpdateUniversity handles PUT /api/v1/universities/:id
func (h *UniversityHandler) UpdateUniversity(c *fiber.Ctx) error {
	id, err := response.ParamID(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var req UpdateUniversityRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}
	if req.ID != id {
		return response.BadRequest(c, "ID in body does not match ID in path")
	}

	var university model.University
	if err := h.db.WithContext(c.UserContext()).First(&university, id).Error; err != nil {
		return h.notFoundOr500(c, err)
	}

	req.apply(&university)

	taken, err := h.nameTaken(c.UserContext(), university.Name, id)
	if err != nil {
		return response.InternalServerError(c, "Failed to check university name")
	}
	if taken {
		return response.Conflict(c, "University with this name already exists")
	}

	// Save so BeforeSave refreshes the slug
	if err := h.db.WithContext(c.UserContext()).Save(&university).Error; err != nil {
		return response.InternalServerError(c, "Failed to update university")
	}

	h.invalidate(c)
	return response.SuccessWithMessage(c, "University updated successfully", university)
}

// DeleteUniversity handles DELETE /api/v1/universities/:id.
// Universities with offerings cannot be deleted.
func (h *UniversityHandler) DeleteUniversity(c *fiber.Ctx) error {
	id, err := response.ParamID(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var university model.University
	if err := h.db.WithContext(c.UserContext()).First(&university, id).Error; err != nil {
		return h.notFoundOr500(c, err)
	}

	var offerings int64
	if err := h.db.WithContext(c.UserContext()).Model(&model.Offering{}).Where("university_id = ?", id).Count(&offerings).Error; err != nil {
		return response.InternalServerError(c, "Failed to check offerings")
	}
	if offerings > 0 {
		return response.BadRequest(c, "University still has offerings; delete them first")
	}

	if err := h.db.WithContext(c.UserContext()).Delete(&university).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete university")
	}

	h.invalidate(c)
	return response.SuccessWithMessage(c, "University deleted successfully", nil)
}

func (h *UniversityHandler) nameTaken(ctx context.Context, name string, excludeID uint) (bool, error) {
	query := h.db.WithContext(ctx).Model(&model.University{}).Where("LOWER(name) = LOWER(?)", name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (h *UniversityHandler) invalidate(c *fiber.Ctx) {
	if h.catalog == nil {
		return
	}
	if err := h.catalog.Invalidate(c.UserContext()); err != nil {
		middleware.Logger(c).Warn("failed to invalidate catalog cache", zap.Error(err))
	}
}

func (h *UniversityHandler) notFoundOr500(c *fiber.Ctx, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return response.NotFound(c, "University not found")
	}
	return response.InternalServerError(c, "Failed to fetch university")
}
