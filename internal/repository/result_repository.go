package repository

import (
	"alcie_study_backend/internal/model"

	"gorm.io/gorm"
)

type ResultRepository struct {
	DB *gorm.DB
}

func NewResultRepository(db *gorm.DB) *ResultRepository {
	return &ResultRepository{DB: db}
}

func (r *ResultRepository) CreateSession(s *model.StudySession) error {
	return r.DB.Create(s).Error
}

func (r *ResultRepository) UpdateSessionStatus(sessionID, status string) error {
	return r.DB.Model(&model.StudySession{}).
		Where("id = ?", sessionID).
		Update("status", status).Error
}

func (r *ResultRepository) CompleteSession(s *model.StudySession) error {
	return r.DB.Model(&model.StudySession{}).
		Where("id = ?", s.ID).
		Updates(map[string]interface{}{
			"status":       s.Status,
			"completed_at": s.CompletedAt,
		}).Error
}

func (r *ResultRepository) CreateResponse(resp *model.SampleResponse) error {
	return r.DB.Create(resp).Error
}

func (r *ResultRepository) ListResponses(sessionID string) ([]model.SampleResponse, error) {
	var rs []model.SampleResponse
	err := r.DB.Where("session_id = ?", sessionID).
		Order("sample_number asc").
		Find(&rs).Error
	return rs, err
}

// DeleteSessionResults 删除会话的全部结果，仅在显式reset时调用
func (r *ResultRepository) DeleteSessionResults(sessionID string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", sessionID).Delete(&model.SampleResponse{}).Error; err != nil {
			return err
		}
		if err := tx.Where("session_id = ?", sessionID).Delete(&model.CategoryAssessment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("session_id = ?", sessionID).Delete(&model.FinalQuestionnaire{}).Error; err != nil {
			return err
		}
		return tx.Model(&model.StudySession{}).
			Where("id = ?", sessionID).
			Updates(map[string]interface{}{
				"status":       "not_started",
				"completed_at": nil,
			}).Error
	})
}

func (r *ResultRepository) CreateAssessment(a *model.CategoryAssessment) error {
	return r.DB.Create(a).Error
}

func (r *ResultRepository) ListAssessments(sessionID string) ([]model.CategoryAssessment, error) {
	var as []model.CategoryAssessment
	err := r.DB.Where("session_id = ?", sessionID).
		Order("created_at asc").
		Find(&as).Error
	return as, err
}

func (r *ResultRepository) CreateQuestionnaire(q *model.FinalQuestionnaire) error {
	return r.DB.Create(q).Error
}

func (r *ResultRepository) FindQuestionnaire(sessionID string) (*model.FinalQuestionnaire, error) {
	var q model.FinalQuestionnaire
	err := r.DB.Where("session_id = ?", sessionID).First(&q).Error
	return &q, err
}

func (r *ResultRepository) CountResponses(sessionID string) (int64, error) {
	var total int64
	err := r.DB.Model(&model.SampleResponse{}).
		Where("session_id = ?", sessionID).
		Count(&total).Error
	return total, err
}
