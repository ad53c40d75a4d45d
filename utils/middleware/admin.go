package middleware

import (
	"encoding/json"
	"strconv"

	"github.com/EnmanuelReynoso23/el-pensum/model"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AdminAuditLog records every catalog write made by an authenticated user.
// Run it after Required so the user id is known.
func AdminAuditLog(db *gorm.DB, action, resource string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := GetUserID(c)
		if !ok {
			return c.Next()
		}

		var resourceID uint
		if id := c.Params("id"); id != "" {
			if parsed, err := strconv.ParseUint(id, 10, 32); err == nil {
				resourceID = uint(parsed)
			}
		}

		var newValue datatypes.JSON
		if body := c.Body(); len(body) > 0 && json.Valid(body) {
			newValue = datatypes.JSON(append([]byte(nil), body...))
		}

		err := c.Next()

		entry := model.AdminAuditLog{
			AdminID:     userID,
			Action:      action,
			Resource:    resource,
			ResourceID:  resourceID,
			NewValue:    newValue,
			StatusCode:  c.Response().StatusCode(),
			IPAddress:   c.IP(),
			UserAgent:   c.Get(fiber.HeaderUserAgent),
			Description: c.Method() + " " + c.Path(),
		}
		if dbErr := db.WithContext(c.UserContext()).Create(&entry).Error; dbErr != nil {
			Logger(c).Warn("failed to write audit log", zap.String("action", action), zap.Error(dbErr))
		}

		return err
	}
}
