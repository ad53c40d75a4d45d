package admin

import (
	"errors"
	"strings"

	"github.com/EnmanuelReynoso23/el-pensum/database"
	"github.com/EnmanuelReynoso23/el-pensum/model"
	"github.com/EnmanuelReynoso23/el-pensum/utils/auth"
	"github.com/EnmanuelReynoso23/el-pensum/utils/middleware"
	"github.com/EnmanuelReynoso23/el-pensum/utils/response"
	"github.com/EnmanuelReynoso23/el-pensum/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var validator = validation.NewValidator()

// CreateUserRequest represents the request body for creating an operator
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required,notblank,max=255"`
	Role     string `json:"role" validate:"required,oneof=admin editor"`
}

// ListUsers retrieves operators with pagination
// GET /admin/users?role=&search=
func ListUsers(c *fiber.Ctx, db *gorm.DB) error {
	page, limit := response.ParsePagination(c)

	query := db.WithContext(c.UserContext()).Model(&model.User{})
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		searchTerm := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count users")
	}

	var users []model.User
	if err := query.Offset((page - 1) * limit).Limit(limit).Order("id ASC").Find(&users).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch users")
	}

	return response.Paginated(c, users, response.CalculatePagination(page, limit, total))
}

// CreateUser creates an operator account
// POST /admin/users
func CreateUser(c *fiber.Ctx, db *gorm.DB) error {
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}
	if ok, problems := validation.ValidatePassword(req.Password); !ok {
		return response.ErrorWithDetails(c, fiber.StatusBadRequest, "Password is too weak", "WEAK_PASSWORD", strings.Join(problems, "; "))
	}

	user, err := database.NewSeeder(db.WithContext(c.UserContext()), middleware.Logger(c)).
		CreateUser(req.Email, req.Password, validation.SanitizeString(req.Name), req.Role)
	if err != nil {
		if errors.Is(err, database.ErrUserExists) {
			return response.Conflict(c, "A user with this email already exists")
		}
		return response.InternalServerError(c, "Failed to create user")
	}

	return response.Created(c, user)
}

// DeleteUser removes an operator and invalidates their tokens
// DELETE /admin/users/:id
func DeleteUser(c *fiber.Ctx, db *gorm.DB) error {
	userID, err := response.ParamID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	if currentID, ok := middleware.GetUserID(c); ok && currentID == userID {
		return response.BadRequest(c, "You cannot delete your own account")
	}

	var user model.User
	if err := db.WithContext(c.UserContext()).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to fetch user")
	}

	if err := auth.NewBlacklistService(db).RevokeAllUserTokens(c.UserContext(), user.ID); err != nil {
		return response.InternalServerError(c, "Failed to revoke user tokens")
	}
	if err := db.WithContext(c.UserContext()).Delete(&user).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete user")
	}

	return response.SuccessWithMessage(c, "User deleted successfully", nil)
}
