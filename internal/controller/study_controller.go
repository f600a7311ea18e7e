package controller

import (
	"alcie_study_backend/internal/dataset"
	"alcie_study_backend/internal/middleware"
	"alcie_study_backend/internal/model"
	"alcie_study_backend/internal/service"
	"alcie_study_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type StudyController struct {
	Sessions *service.SessionService
	Catalog  *dataset.Catalog
}

func NewStudyController(sessions *service.SessionService, catalog *dataset.Catalog) *StudyController {
	return &StudyController{Sessions: sessions, Catalog: catalog}
}

// @Summary 创建研究会话
// @Tags 研究会话
// @Accept json
// @Produce json
// @Param body body service.CreateSessionRequest true "参与者信息"
// @Success 201 {object} util.Response
// @Router /api/study/sessions [post]
func (c *StudyController) CreateSession(ctx *gin.Context) {
	var req service.CreateSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	snapshot, err := c.Sessions.Create(req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Created(ctx, snapshot)
}

// @Summary 开始评估
// @Tags 研究会话
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response
// @Router /api/study/sessions/{id}/start [post]
func (c *StudyController) StartSession(ctx *gin.Context) {
	snapshot, err := c.Sessions.Start(middleware.GetSessionID(ctx))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, snapshot)
}

// @Summary 获取会话状态
// @Tags 研究会话
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response
// @Router /api/study/sessions/{id} [get]
func (c *StudyController) GetSession(ctx *gin.Context) {
	snapshot, err := c.Sessions.Get(middleware.GetSessionID(ctx))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, snapshot)
}

// @Summary 获取当前样本
// @Tags 评估流程
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response
// @Router /api/study/sessions/{id}/current [get]
func (c *StudyController) GetCurrentSample(ctx *gin.Context) {
	view, err := c.Sessions.Current(middleware.GetSessionID(ctx))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	if view == nil {
		// 研究已完成，没有当前样本
		util.Success(ctx, gin.H{"complete": true})
		return
	}

	util.Success(ctx, view)
}

// RecordResponseRequest 参与者按展示标签提交的一次完整判断
type RecordResponseRequest struct {
	Ratings          map[string]model.CriteriaScores `json:"ratings"`     // 标签(Caption A/B/C) -> 各维度评分
	BestCaption      string                          `json:"bestCaption"` // 最优描述的标签
	PreferenceReason string                          `json:"preferenceReason"`
	Comment          string                          `json:"comment"`
}

// @Summary 提交当前样本的评分
// @Tags 评估流程
// @Accept json
// @Produce json
// @Param id path string true "会话ID"
// @Param body body RecordResponseRequest true "按标签的评分"
// @Success 200 {object} util.Response
// @Router /api/study/sessions/{id}/responses [post]
func (c *StudyController) RecordResponse(ctx *gin.Context) {
	var req RecordResponseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	id := middleware.GetSessionID(ctx)
	ratings, preferred, err := c.Sessions.ResolveLabels(id, req.Ratings, req.BestCaption)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	snapshot, err := c.Sessions.Record(id, service.RecordRequest{
		Ratings:          ratings,
		PreferredMethod:  preferred,
		PreferenceReason: req.PreferenceReason,
		Comment:          req.Comment,
	})
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, snapshot)
}

// @Summary 前进到下一个样本
// @Tags 评估流程
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response
// @Router /api/study/sessions/{id}/advance [post]
func (c *StudyController) Advance(ctx *gin.Context) {
	result, err := c.Sessions.Advance(middleware.GetSessionID(ctx))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary 获取评估进度
// @Tags 评估流程
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response
// @Router /api/study/sessions/{id}/progress [get]
func (c *StudyController) GetProgress(ctx *gin.Context) {
	progress, err := c.Sessions.Progress(middleware.GetSessionID(ctx))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, progress)
}

// ResetSessionRequest 重置需要显式确认，防止误触清空已有响应
type ResetSessionRequest struct {
	Confirm bool `json:"confirm"`
}

// @Summary 重置会话
// @Tags 研究会话
// @Accept json
// @Produce json
// @Param id path string true "会话ID"
// @Param body body ResetSessionRequest true "确认标记"
// @Success 200 {object} util.Response
// @Router /api/study/sessions/{id}/reset [post]
func (c *StudyController) ResetSession(ctx *gin.Context) {
	var req ResetSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	snapshot, err := c.Sessions.Reset(middleware.GetSessionID(ctx), req.Confirm)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, snapshot)
}

// @Summary 提交类目切换评估
// @Tags 评估流程
// @Accept json
// @Produce json
// @Param id path string true "会话ID"
// @Param body body service.AssessmentRequest true "类目评估"
// @Success 201 {object} util.Response
// @Router /api/study/sessions/{id}/assessments [post]
func (c *StudyController) RecordAssessment(ctx *gin.Context) {
	var req service.AssessmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	id := middleware.GetSessionID(ctx)
	if err := c.Sessions.RecordAssessment(id, req); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Created(ctx, gin.H{"recorded": true})
}

// @Summary 查询已提交的类目评估
// @Tags 评估流程
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response
// @Router /api/study/sessions/{id}/assessments [get]
func (c *StudyController) ListAssessments(ctx *gin.Context) {
	assessments, err := c.Sessions.Assessments(middleware.GetSessionID(ctx))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, assessments)
}

// @Summary 提交结束问卷
// @Tags 评估流程
// @Accept json
// @Produce json
// @Param id path string true "会话ID"
// @Param body body service.QuestionnaireRequest true "结束问卷"
// @Success 201 {object} util.Response
// @Router /api/study/sessions/{id}/questionnaire [post]
func (c *StudyController) SubmitQuestionnaire(ctx *gin.Context) {
	var req service.QuestionnaireRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	id := middleware.GetSessionID(ctx)
	if err := c.Sessions.CompleteQuestionnaire(id, req); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Created(ctx, gin.H{"submitted": true})
}

// @Summary 获取数据集元信息
// @Tags 数据集
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/study/dataset/meta [get]
func (c *StudyController) GetDatasetMeta(ctx *gin.Context) {
	meta := c.Catalog.Metadata()
	util.Success(ctx, gin.H{
		"samplingMethods": meta.SamplingMethods,
		"categories":      meta.Categories,
		"cfRiskMapping":   meta.CFRiskMapping,
		"totalSamples":    c.Catalog.Len(),
		"phaseBoundaries": c.Catalog.PhaseBoundaries(),
	})
}
