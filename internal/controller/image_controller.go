package controller

import (
	"io"

	"alcie_study_backend/internal/service"
	"alcie_study_backend/internal/util"
	"alcie_study_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ImageController struct {
	Storage *service.StorageService
}

func NewImageController(storage *service.StorageService) *ImageController {
	return &ImageController{Storage: storage}
}

// @Summary 获取研究图片
// @Tags 数据集
// @Produce octet-stream
// @Param imageId path string true "图片ID"
// @Success 200 {file} file
// @Router /api/study/images/{imageId} [get]
func (c *ImageController) GetImage(ctx *gin.Context) {
	imageID := ctx.Param("imageId")

	rc, contentType, err := c.Storage.OpenImage(ctx.Request.Context(), imageID)
	if err != nil {
		if util.IsValidationError(err) {
			util.BadRequest(ctx, err.Error())
			return
		}
		util.NotFound(ctx)
		return
	}
	defer rc.Close()

	ctx.Header("Cache-Control", "public, max-age=86400")
	ctx.Header("Content-Type", contentType)
	ctx.Status(200)
	if _, err := io.Copy(ctx.Writer, rc); err != nil {
		logger.Log.Warn("failed to stream image", zap.String("imageId", imageID), zap.Error(err))
	}
}
