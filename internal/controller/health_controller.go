package controller

import (
	"net/http"

	"alcie_study_backend/internal/dataset"
	"alcie_study_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthController struct {
	DB      *gorm.DB
	Catalog *dataset.Catalog
}

func NewHealthController(db *gorm.DB, catalog *dataset.Catalog) *HealthController {
	return &HealthController{DB: db, Catalog: catalog}
}

// @Summary 健康检查
// @Description 检查服务与数据集状态
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Router /health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	// 检查数据库连接
	dbStatus := "up"
	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err != nil || sqlDB.Ping() != nil {
			util.Error(ctx, http.StatusServiceUnavailable, "Database unavailable")
			return
		}
	} else {
		dbStatus = "disabled"
	}

	util.Success(ctx, gin.H{
		"status": "ok",
		"components": gin.H{
			"database": dbStatus,
			"dataset": gin.H{
				"samples": c.Catalog.Len(),
			},
		},
	})
}
