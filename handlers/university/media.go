package university

import (
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/EnmanuelReynoso23/el-pensum/model"
	"github.com/EnmanuelReynoso23/el-pensum/services/storage"
	"github.com/EnmanuelReynoso23/el-pensum/utils/middleware"
	"github.com/EnmanuelReynoso23/el-pensum/utils/response"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	maxImageSizeMB  = 10
	maxCampusImages = 20
)

var errImageTooLarge = fmt.Errorf("image exceeds %dMB", maxImageSizeMB)

// UploadLogo handles POST /api/v1/universities/:id/logo (multipart field "logo")
func (h *UniversityHandler) UploadLogo(c *fiber.Ctx) error {
	if h.store == nil {
		return response.ServiceUnavailable(c, "Object storage is not configured")
	}

	id, err := response.ParamID(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var university model.University
	if err := h.db.WithContext(c.UserContext()).First(&university, id).Error; err != nil {
		return h.notFoundOr500(c, err)
	}

	file, err := c.FormFile("logo")
	if err != nil {
		return response.BadRequest(c, "logo file is required")
	}

	url, err := h.storeImage(c, file, storage.PrefixLogos)
	if err != nil {
		return h.imageError(c, err)
	}

	university.LogoURL = url
	if err := h.db.WithContext(c.UserContext()).Save(&university).Error; err != nil {
		return response.InternalServerError(c, "Failed to update university")
	}

	h.invalidate(c)
	return response.SuccessWithMessage(c, "Logo uploaded successfully", university)
}

// UploadCampusImages handles POST /api/v1/universities/:id/campus-images
// (multipart field "images", repeatable). New images are appended.
func (h *UniversityHandler) UploadCampusImages(c *fiber.Ctx) error {
	if h.store == nil {
		return response.ServiceUnavailable(c, "Object storage is not configured")
	}

	id, err := response.ParamID(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var university model.University
	if err := h.db.WithContext(c.UserContext()).First(&university, id).Error; err != nil {
		return h.notFoundOr500(c, err)
	}

	form, err := c.MultipartForm()
	if err != nil || len(form.File["images"]) == 0 {
		return response.BadRequest(c, "at least one image is required")
	}
	files := form.File["images"]
	if len(university.CampusImages)+len(files) > maxCampusImages {
		return response.BadRequest(c, fmt.Sprintf("a university can have at most %d campus images", maxCampusImages))
	}

	for _, file := range files {
		url, err := h.storeImage(c, file, storage.PrefixCampus)
		if err != nil {
			return h.imageError(c, err)
		}
		university.CampusImages = append(university.CampusImages, url)
	}

	if err := h.db.WithContext(c.UserContext()).Save(&university).Error; err != nil {
		return response.InternalServerError(c, "Failed to update university")
	}

	h.invalidate(c)
	return response.SuccessWithMessage(c, "Campus images uploaded successfully", university)
}

// storeImage normalises an uploaded image and stores it under prefix.
// Replaced objects are left for the orphan sweep.
func (h *UniversityHandler) storeImage(c *fiber.Ctx, file *multipart.FileHeader, prefix string) (string, error) {
	if file.Size > maxImageSizeMB*1024*1024 {
		return "", errImageTooLarge
	}

	f, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := storage.NormalizeImage(f, storage.MaxImageDimension)
	if err != nil {
		return "", err
	}

	return h.store.Upload(c.UserContext(), storage.GenerateKey(prefix, "image.jpg"), data, storage.ContentTypeJPG)
}

func (h *UniversityHandler) imageError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, storage.ErrInvalidImage), errors.Is(err, errImageTooLarge):
		return response.BadRequest(c, err.Error())
	default:
		middleware.Logger(c).Error("image upload failed", zap.Error(err))
		return response.InternalServerError(c, "Failed to store image")
	}
}
