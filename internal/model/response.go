package model

import (
	"encoding/json"
	"time"
)

// CaptionLabels 参与者看到的匿名描述标签，按展示位置排列
func CaptionLabels() []string {
	return []string{"Caption A", "Caption B", "Caption C"}
}

// CriteriaScores 单条描述在四个维度上的评分
type CriteriaScores struct {
	Relevance       int `json:"relevance"`
	Fluency         int `json:"fluency"`
	Descriptiveness int `json:"descriptiveness"`
	Novelty         int `json:"novelty"`
}

// Score 按维度名取分
func (s CriteriaScores) Score(criterion string) int {
	switch criterion {
	case CriterionRelevance:
		return s.Relevance
	case CriterionFluency:
		return s.Fluency
	case CriterionDescriptiveness:
		return s.Descriptiveness
	case CriterionNovelty:
		return s.Novelty
	}
	return 0
}

// Response 参与者对单个样本的一次完整判断，记录后不可修改
type Response struct {
	ImageID          string                    `json:"imageId"`
	SampleNumber     int                       `json:"sampleNumber"`
	Category         string                    `json:"category"`
	IntroducedPhase  int                       `json:"introducedPhase"`
	AssignedPhase    int                       `json:"assignedPhase"`
	CFRisk           string                    `json:"cfRisk"`
	MethodMapping    map[string]string         `json:"methodMapping"` // 展示标签(Caption A/B/C) -> 方法名
	Ratings          map[string]CriteriaScores `json:"ratings"`       // 方法名 -> 各维度评分
	PreferredMethod  string                    `json:"preferredMethod"`
	PreferenceReason string                    `json:"preferenceReason,omitempty"`
	Comment          string                    `json:"comment,omitempty"`
	Timestamp        time.Time                 `json:"timestamp"`
}

// StudySession 会话持久化记录
type StudySession struct {
	UUIDBase
	ParticipantID   string     `gorm:"size:64;index" json:"participantId"`
	FashionInterest string     `gorm:"size:64" json:"fashionInterest"`
	ConsentGiven    bool       `gorm:"default:false" json:"consentGiven"`
	Status          string     `gorm:"size:32;default:'not_started'" json:"status"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
}

func (StudySession) TableName() string {
	return "study_sessions"
}

// SampleResponse 单条判断的持久化记录，每次成功record后立即落库
type SampleResponse struct {
	UUIDBase
	SessionID        string          `gorm:"index;type:varchar(36)" json:"sessionId"`
	ParticipantID    string          `gorm:"size:64;index" json:"participantId"`
	SampleNumber     int             `gorm:"not null" json:"sampleNumber"`
	ImageID          string          `gorm:"size:128;not null" json:"imageId"`
	Category         string          `gorm:"size:32;index" json:"category"`
	IntroducedPhase  int             `json:"introducedPhase"`
	AssignedPhase    int             `json:"assignedPhase"`
	CFRisk           string          `gorm:"size:16" json:"cfRisk"`
	ModelCheckpoint  string          `gorm:"size:64" json:"modelCheckpoint"`
	DiversityScore   float64         `json:"diversityScore"`
	IsDiverse        bool            `json:"isDiverse"`
	MethodMapping    json.RawMessage `gorm:"type:json" json:"methodMapping"`
	Ratings          json.RawMessage `gorm:"type:json" json:"ratings"`
	PreferredMethod  string          `gorm:"size:32" json:"preferredMethod"`
	PreferenceReason string          `gorm:"type:text" json:"preferenceReason"`
	Comment          string          `gorm:"type:text" json:"comment"`
	RatedAt          time.Time       `json:"ratedAt"`
}

func (SampleResponse) TableName() string {
	return "sample_responses"
}

// CategoryAssessment 类目切换时的整体质量评估
type CategoryAssessment struct {
	UUIDBase
	SessionID          string `gorm:"index;type:varchar(36)" json:"sessionId"`
	ParticipantID      string `gorm:"size:64;index" json:"participantId"`
	PreviousCategory   string `gorm:"size:32" json:"previousCategory"`
	CurrentCategory    string `gorm:"size:32" json:"currentCategory"`
	SampleIndexAtShift int    `json:"sampleIndexAtShift"`
	QualityRating      string `gorm:"size:32" json:"qualityRating"`
	QualityDrop        string `gorm:"size:32" json:"qualityDrop"`
	ConsistencyRating  string `gorm:"size:32" json:"consistencyRating"`
	ExpectationsRating string `gorm:"size:32" json:"expectationsRating"`
	Comments           string `gorm:"type:text" json:"comments"`
}

func (CategoryAssessment) TableName() string {
	return "category_assessments"
}

// FinalQuestionnaire 结束问卷
type FinalQuestionnaire struct {
	UUIDBase
	SessionID          string          `gorm:"uniqueIndex;type:varchar(36)" json:"sessionId"`
	ParticipantID      string          `gorm:"size:64;index" json:"participantId"`
	AgeGroup           string          `gorm:"size:16" json:"ageGroup"`
	Gender             string          `gorm:"size:32" json:"gender"`
	QualityPatterns    string          `gorm:"size:64" json:"qualityPatterns"`
	BetterCategories   string          `gorm:"size:255" json:"betterCategories"`
	WorseCategories    string          `gorm:"size:255" json:"worseCategories"`
	LearningHypothesis string          `gorm:"size:64" json:"learningHypothesis"`
	BetterLearned      string          `gorm:"size:255" json:"betterLearned"`
	CategoryRankings   json.RawMessage `gorm:"type:json" json:"categoryRankings"`
	CaptionPreference  string          `gorm:"size:64" json:"captionPreference"`
	SummaryAssessment  string          `gorm:"size:128" json:"summaryAssessment"`
	ForgettingEvidence string          `gorm:"size:64" json:"forgettingEvidence"`
	FinalFeedback      string          `gorm:"type:text" json:"finalFeedback"`
}

func (FinalQuestionnaire) TableName() string {
	return "final_questionnaires"
}
