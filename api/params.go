package api

import (
	"strconv"
	"time"

	"ledger/models"
	"ledger/service"

	"github.com/gin-gonic/gin"
)

// idParam 解析路径中的 id，失败时已写入 400 响应
func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		BadRequest(c, "无效的 ID")
		return 0, false
	}
	return uint(id), true
}

// optionalDate 空字符串返回零值
func optionalDate(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := models.ParseDate(s)
	if err != nil {
		return time.Time{}, &service.ValidationError{Field: field, Message: "日期格式应为 YYYY-MM-DD"}
	}
	return t, nil
}

// periodRange 读取 period/start_date/end_date 查询参数
func periodRange(c *gin.Context, today time.Time) (service.DateRange, error) {
	return service.ParsePeriod(c.DefaultQuery("period", service.PeriodAll), c.Query("start_date"), c.Query("end_date"), today)
}
