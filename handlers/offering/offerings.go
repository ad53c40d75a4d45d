package offering

import (
	"context"
	"errors"
	"strconv"

	"github.com/EnmanuelReynoso23/el-pensum/handlers/compare"
	"github.com/EnmanuelReynoso23/el-pensum/model"
	"github.com/EnmanuelReynoso23/el-pensum/services/comparison"
	"github.com/EnmanuelReynoso23/el-pensum/services/storage"
	"github.com/EnmanuelReynoso23/el-pensum/utils/middleware"
	"github.com/EnmanuelReynoso23/el-pensum/utils/pdfvalidation"
	"github.com/EnmanuelReynoso23/el-pensum/utils/response"
	"github.com/EnmanuelReynoso23/el-pensum/utils/validation"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OfferingHandler handles offering-related requests
type OfferingHandler struct {
	db        *gorm.DB
	validator *validation.Validator
	resolver  *comparison.Resolver
	store     storage.ObjectStore
}

// NewOfferingHandler creates a new offering handler. store may be nil.
func NewOfferingHandler(db *gorm.DB, resolver *comparison.Resolver, store storage.ObjectStore) *OfferingHandler {
	return &OfferingHandler{
		db:        db,
		validator: validation.NewValidator(),
		resolver:  resolver,
		store:     store,
	}
}

// OfferingRequest is the body of create and update. Omitted attributes are unknown.
type OfferingRequest struct {
	UniversityID   uint     `json:"university_id" validate:"required"`
	ProgramID      uint     `json:"program_id" validate:"required"`
	DurationYears  *float64 `json:"duration_years" validate:"omitempty,gte=0"`
	EnrollmentCost *float64 `json:"enrollment_cost" validate:"omitempty,gte=0"`
	AdmissionCost  *float64 `json:"admission_cost" validate:"omitempty,gte=0"`
	CreditCost     *float64 `json:"credit_cost" validate:"omitempty,gte=0"`
	TotalCredits   *int     `json:"total_credits" validate:"omitempty,gte=0"`
	CardCost       *float64 `json:"card_cost" validate:"omitempty,gte=0"`
	SyllabusURL    *string  `json:"syllabus_url" validate:"omitempty,url,max=500"`
}

func (r *OfferingRequest) apply(o *model.Offering) {
	o.UniversityID = r.UniversityID
	o.ProgramID = r.ProgramID
	o.DurationYears = r.DurationYears
	o.EnrollmentCost = r.EnrollmentCost
	o.AdmissionCost = r.AdmissionCost
	o.CreditCost = r.CreditCost
	o.TotalCredits = r.TotalCredits
	o.CardCost = r.CardCost
	o.SyllabusURL = r.SyllabusURL
}

// GetOffering handles GET /api/v1/offerings/:id
func (h *OfferingHandler) GetOffering(c *fiber.Ctx) error {
	id, err := response.ParamID(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var offering model.Offering
	if err := h.db.WithContext(c.UserContext()).
		Preload("University").
		Preload("Program").
		First(&offering, id).Error; err != nil {
		return notFoundOr500(c, err)
	}

	return response.Success(c, offering)
}

// CompareOfferings handles GET /api/v1/offerings/compare?university1=&university2=&program=
// and returns the offerings of the program at each university that has it
func (h *OfferingHandler) CompareOfferings(c *fiber.Ctx) error {
	id1, err1 := strconv.ParseUint(c.Query("university1"), 10, 32)
	id2, err2 := strconv.ParseUint(c.Query("university2"), 10, 32)
	if err1 != nil || err2 != nil || id1 == 0 || id2 == 0 {
		return response.BadRequest(c, "university1 and university2 must be positive integers")
	}

	offerings, err := h.resolver.Compare(c.UserContext(), uint(id1), uint(id2), c.Query("program"))
	if err != nil {
		return compare.ErrorResponse(c, err)
	}

	return response.Success(c, offerings)
}

// CreateOffering handles POST /api/v1/offerings
func (h *OfferingHandler) CreateOffering(c *fiber.Ctx) error {
	var req OfferingRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	if err := h.checkReferences(c.UserContext(), &req); err != nil {
		return referenceError(c, err)
	}

	taken, err := h.pairTaken(c.UserContext(), req.UniversityID, req.ProgramID, 0)
	if err != nil {
		return response.InternalServerError(c, "Failed to check offerings")
	}
	if taken {
		return response.Conflict(c, "The university already offers this program")
	}

	var offering model.Offering
	req.apply(&offering)
	if err := h.db.WithContext(c.UserContext()).Create(&offering).Error; err != nil {
		return response.InternalServerError(c, "Failed to create offering")
	}

	return response.Created(c, offering)
}

// UpdateOffering handles PUT /api/v1/offerings/:id
func (h *OfferingHandler) UpdateOffering(c *fiber.Ctx) error {
	id, err := response.ParamID(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var req OfferingRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var offering model.Offering
	if err := h.db.WithContext(c.UserContext()).First(&offering, id).Error; err != nil {
		return notFoundOr500(c, err)
	}

	if err := h.checkReferences(c.UserContext(), &req); err != nil {
		return referenceError(c, err)
	}

	taken, err := h.pairTaken(c.UserContext(), req.UniversityID, req.ProgramID, offering.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to check offerings")
	}
	if taken {
		return response.Conflict(c, "The university already offers this program")
	}

	req.apply(&offering)
	if err := h.db.WithContext(c.UserContext()).Save(&offering).Error; err != nil {
		return response.InternalServerError(c, "Failed to update offering")
	}

	return response.SuccessWithMessage(c, "Offering updated successfully", offering)
}

// DeleteOffering handles DELETE /api/v1/offerings/:id
func (h *OfferingHandler) DeleteOffering(c *fiber.Ctx) error {
	id, err := response.ParamID(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	res := h.db.WithContext(c.UserContext()).Delete(&model.Offering{}, id)
	if res.Error != nil {
		return response.InternalServerError(c, "Failed to delete offering")
	}
	if res.RowsAffected == 0 {
		return response.NotFound(c, "Offering not found")
	}

	return response.SuccessWithMessage(c, "Offering deleted successfully", nil)
}

// UploadSyllabus handles POST /api/v1/offerings/:id/syllabus (multipart field "syllabus")
func (h *OfferingHandler) UploadSyllabus(c *fiber.Ctx) error {
	if h.store == nil {
		return response.ServiceUnavailable(c, "Object storage is not configured")
	}

	id, err := response.ParamID(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var offering model.Offering
	if err := h.db.WithContext(c.UserContext()).First(&offering, id).Error; err != nil {
		return notFoundOr500(c, err)
	}

	file, err := c.FormFile("syllabus")
	if err != nil {
		return response.BadRequest(c, "syllabus file is required")
	}

	content, result, err := pdfvalidation.ValidatePDFFile(file, pdfvalidation.SyllabusLimits)
	if err != nil {
		return response.InternalServerError(c, "Failed to read upload")
	}
	if !result.Valid {
		return response.BadRequest(c, result.Error)
	}

	url, err := h.store.Upload(c.UserContext(), storage.GenerateKey(storage.PrefixSyllabi, file.Filename), content, storage.ContentTypePDF)
	if err != nil {
		middleware.Logger(c).Error("syllabus upload failed", zap.Uint("offering_id", id), zap.Error(err))
		return response.InternalServerError(c, "Failed to store syllabus")
	}

	offering.SyllabusURL = &url
	if err := h.db.WithContext(c.UserContext()).Save(&offering).Error; err != nil {
		return response.InternalServerError(c, "Failed to update offering")
	}

	middleware.Logger(c).Info("syllabus uploaded",
		zap.Uint("offering_id", id),
		zap.Int("pages", result.PageCount),
	)
	return response.SuccessWithMessage(c, "Syllabus uploaded successfully", offering)
}

var (
	errUniversityMissing = errors.New("University not found")
	errProgramMissing    = errors.New("Program not found")
)

// checkReferences fails when the university or program of req does not exist
func (h *OfferingHandler) checkReferences(ctx context.Context, req *OfferingRequest) error {
	var count int64
	if err := h.db.WithContext(ctx).Model(&model.University{}).Where("id = ?", req.UniversityID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errUniversityMissing
	}

	if err := h.db.WithContext(ctx).Model(&model.Program{}).Where("id = ?", req.ProgramID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errProgramMissing
	}
	return nil
}

func referenceError(c *fiber.Ctx, err error) error {
	if errors.Is(err, errUniversityMissing) || errors.Is(err, errProgramMissing) {
		return response.NotFound(c, err.Error())
	}
	return response.InternalServerError(c, "Failed to check references")
}

func notFoundOr500(c *fiber.Ctx, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return response.NotFound(c, "Offering not found")
	}
	return response.InternalServerError(c, "Failed to fetch offering")
}

// pairTaken reports whether another offering already links universityID and programID
func (h *OfferingHandler) pairTaken(ctx context.Context, universityID, programID, exceptID uint) (bool, error) {
	query := h.db.WithContext(ctx).Model(&model.Offering{}).
		Where("university_id = ? AND program_id = ?", universityID, programID)
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}
	var n int64
	if err := query.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
