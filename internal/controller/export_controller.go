package controller

import (
	"bytes"
	"fmt"
	"strings"

	"alcie_study_backend/internal/middleware"
	"alcie_study_backend/internal/service"
	"alcie_study_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ExportController struct {
	Exports *service.ExportService
}

func NewExportController(exports *service.ExportService) *ExportController {
	return &ExportController{Exports: exports}
}

func exportContentType(format string) string {
	switch format {
	case service.FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case service.FormatJSON:
		return "application/json"
	}
	return "text/csv"
}

// @Summary 导出研究结果
// @Tags 结果导出
// @Produce octet-stream
// @Param id path string true "会话ID"
// @Param format query string false "导出格式：csv(默认)、xlsx、json"
// @Success 200 {file} file
// @Router /api/study/sessions/{id}/export [get]
func (c *ExportController) Export(ctx *gin.Context) {
	format := strings.ToLower(ctx.DefaultQuery("format", service.FormatCSV))

	var buf bytes.Buffer
	filename, err := c.Exports.Export(&buf, middleware.GetSessionID(ctx), format)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Data(200, exportContentType(format), buf.Bytes())
}

// @Summary 把结果落盘到导出目录
// @Tags 结果导出
// @Produce json
// @Param id path string true "会话ID"
// @Param format query string false "导出格式：csv(默认)、xlsx、json"
// @Success 200 {object} util.Response
// @Router /api/study/sessions/{id}/export/file [post]
func (c *ExportController) ExportToFile(ctx *gin.Context) {
	format := strings.ToLower(ctx.DefaultQuery("format", service.FormatCSV))

	path, err := c.Exports.ExportToFile(middleware.GetSessionID(ctx), format)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"path": path})
}
