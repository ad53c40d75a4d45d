package admin

import (
	"github.com/EnmanuelReynoso23/el-pensum/model"
	"github.com/EnmanuelReynoso23/el-pensum/utils/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ListCronJobLogs lists background job runs, newest first
// GET /admin/cron-logs?job_name=&status=
func ListCronJobLogs(c *fiber.Ctx, db *gorm.DB) error {
	page, limit := response.ParsePagination(c)

	query := db.WithContext(c.UserContext()).Model(&model.CronJobLog{})
	if name := c.Query("job_name"); name != "" {
		query = query.Where("job_name = ?", name)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count job logs")
	}

	var logs []model.CronJobLog
	if err := query.Offset((page - 1) * limit).Limit(limit).Order("started_at DESC").Find(&logs).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch job logs")
	}

	return response.Paginated(c, logs, response.CalculatePagination(page, limit, total))
}
