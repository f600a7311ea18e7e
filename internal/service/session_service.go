package service

import (
	"alcie_study_backend/internal/config"
	"alcie_study_backend/internal/dataset"
	"alcie_study_backend/internal/model"
	"alcie_study_backend/internal/repository"
	"alcie_study_backend/internal/util"
	"alcie_study_backend/pkg/logger"
	"alcie_study_backend/pkg/monitoring"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StudyState 研究流程状态机的状态
type StudyState string

const (
	StateNotStarted      StudyState = "not_started"
	StateInProgress      StudyState = "in_progress"
	StatePhaseTransition StudyState = "phase_transition"
	StateComplete        StudyState = "complete"
)

// PhaseTransition 阶段边界提示，纯信息性，下一次交互自动回到 in_progress
type PhaseTransition struct {
	FromPhase    int    `json:"fromPhase"`
	ToPhase      int    `json:"toPhase"`
	FromCategory string `json:"fromCategory"`
	ToCategory   string `json:"toCategory"`
	Message      string `json:"message"`
}

// Session 单个参与者的全部会话状态。
// 会话由单个参与者串行驱动，跨会话互不共享；
// 互斥锁只防御同一会话的并发HTTP重复提交。
type Session struct {
	ID              string
	ParticipantID   string
	FashionInterest string
	Seed            int64
	State           StudyState
	CurrentIndex    int
	Responses       []model.Response
	Assessments     []model.CategoryAssessment
	CreatedAt       time.Time

	displayOrder      map[string][]string
	rated             map[string]bool
	assessed          map[string]bool
	pendingTransition *PhaseTransition
	questionnaireDone bool

	mu sync.Mutex
}

type SessionService struct {
	catalog *dataset.Catalog
	cfg     *config.StudyConfig
	results *repository.ResultRepository

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionService(catalog *dataset.Catalog, results *repository.ResultRepository, cfg *config.StudyConfig) *SessionService {
	return &SessionService{
		catalog:  catalog,
		cfg:      cfg,
		results:  results,
		sessions: make(map[string]*Session),
	}
}

type CreateSessionRequest struct {
	ConsentGiven    bool   `json:"consentGiven"`
	FashionInterest string `json:"fashionInterest"`
}

type SessionSnapshot struct {
	ID                string           `json:"id"`
	ParticipantID     string           `json:"participantId"`
	FashionInterest   string           `json:"fashionInterest"`
	State             StudyState       `json:"state"`
	CurrentIndex      int              `json:"currentIndex"`
	TotalSamples      int              `json:"totalSamples"`
	ResponseCount     int              `json:"responseCount"`
	PendingTransition *PhaseTransition `json:"pendingTransition,omitempty"`
	CreatedAt         time.Time        `json:"createdAt"`
}

// Create 建立新会话，参与者必须先给出知情同意
func (s *SessionService) Create(req CreateSessionRequest) (*SessionSnapshot, error) {
	if !req.ConsentGiven {
		return nil, util.WrapValidationError(util.ErrConsentRequired)
	}
	if strings.TrimSpace(req.FashionInterest) == "" {
		return nil, util.NewValidationError("fashionInterest is required")
	}

	id := uuid.New().String()
	sess := &Session{
		ID:              id,
		ParticipantID:   "P-" + strings.ToUpper(id[:8]),
		FashionInterest: req.FashionInterest,
		Seed:            int64(fnvHash(id)),
		State:           StateNotStarted,
		CreatedAt:       time.Now(),
		displayOrder:    make(map[string][]string),
		rated:           make(map[string]bool),
		assessed:        make(map[string]bool),
	}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	s.persist(func() error {
		return s.results.CreateSession(&model.StudySession{
			UUIDBase:        model.UUIDBase{ID: id},
			ParticipantID:   sess.ParticipantID,
			FashionInterest: sess.FashionInterest,
			ConsentGiven:    true,
			Status:          string(StateNotStarted),
		})
	})

	return s.snapshotLocked(sess), nil
}

func (s *SessionService) get(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, util.ErrSessionNotFound
	}
	return sess, nil
}

// Get 会话状态快照
func (s *SessionService) Get(id string) (*SessionSnapshot, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.snapshotLocked(sess), nil
}

func (s *SessionService) snapshotLocked(sess *Session) *SessionSnapshot {
	return &SessionSnapshot{
		ID:                sess.ID,
		ParticipantID:     sess.ParticipantID,
		FashionInterest:   sess.FashionInterest,
		State:             sess.State,
		CurrentIndex:      sess.CurrentIndex,
		TotalSamples:      s.catalog.Len(),
		ResponseCount:     len(sess.Responses),
		PendingTransition: sess.pendingTransition,
		CreatedAt:         sess.CreatedAt,
	}
}

// Start 显式开始研究：not_started -> in_progress
func (s *SessionService) Start(id string) (*SessionSnapshot, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.State != StateNotStarted {
		return nil, util.NewInvalidStateError("start", string(sess.State))
	}
	sess.State = StateInProgress
	sess.CurrentIndex = 0

	s.persist(func() error {
		return s.results.UpdateSessionStatus(sess.ID, string(StateInProgress))
	})

	return s.snapshotLocked(sess), nil
}

// CaptionView 按展示顺序脱敏后的单条描述
type CaptionView struct {
	Label   string `json:"label"`
	Caption string `json:"caption"`
}

// SampleView 当前样本的只读视图，不暴露标签到方法的映射
type SampleView struct {
	ImageID        string           `json:"imageId"`
	Category       string           `json:"category"`
	AssignedPhase  int              `json:"assignedPhase"`
	CFRisk         string           `json:"cfRisk"`
	DiversityScore float64          `json:"diversityScore"`
	IsDiverse      bool             `json:"isDiverse"`
	SampleNumber   int              `json:"sampleNumber"`
	TotalSamples   int              `json:"totalSamples"`
	Captions       []CaptionView    `json:"captions"`
	Transition     *PhaseTransition `json:"transition,omitempty"`
}

// Current 当前样本视图；研究已完成时返回 (nil, nil)。
// 如有未消费的阶段过渡提示，会随视图一并返回并自动回到 in_progress。
func (s *SessionService) Current(id string) (*SampleView, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.State == StateNotStarted {
		return nil, util.NewInvalidStateError("current", string(sess.State))
	}
	if sess.State == StateComplete {
		return nil, nil
	}

	transition := s.resolveTransitionLocked(sess)

	sample, ok := s.catalog.Sample(sess.CurrentIndex)
	if !ok {
		return nil, fmt.Errorf("sample index %d out of range", sess.CurrentIndex)
	}

	order := s.displayOrderLocked(sess, sample.ImageID)
	labels := model.CaptionLabels()
	captions := make([]CaptionView, len(order))
	for i, method := range order {
		captions[i] = CaptionView{Label: labels[i], Caption: sample.Predictions[method]}
	}

	return &SampleView{
		ImageID:        sample.ImageID,
		Category:       sample.Category,
		AssignedPhase:  sample.AssignedPhase,
		CFRisk:         sample.CFRisk,
		DiversityScore: sample.DiversityScore,
		IsDiverse:      sample.IsDiverse,
		SampleNumber:   sess.CurrentIndex + 1,
		TotalSamples:   s.catalog.Len(),
		Captions:       captions,
		Transition:     transition,
	}, nil
}

// displayOrderLocked 样本的展示顺序：由(会话种子, 图片ID)确定性打乱，
// 首次访问生成并缓存，会话期内稳定
func (s *SessionService) displayOrderLocked(sess *Session, imageID string) []string {
	if order, ok := sess.displayOrder[imageID]; ok {
		return order
	}

	methods := model.SamplingMethods()
	order := make([]string, len(methods))
	copy(order, methods)

	h := fnv.New64a()
	h.Write([]byte(strconv.FormatInt(sess.Seed, 10)))
	h.Write([]byte(imageID))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))
	rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	sess.displayOrder[imageID] = order
	return order
}

// resolveTransitionLocked 消费挂起的阶段过渡提示并回到 in_progress
func (s *SessionService) resolveTransitionLocked(sess *Session) *PhaseTransition {
	if sess.State != StatePhaseTransition {
		return nil
	}
	t := sess.pendingTransition
	sess.pendingTransition = nil
	sess.State = StateInProgress
	return t
}

type RecordRequest struct {
	Ratings          map[string]model.CriteriaScores `json:"ratings"`
	PreferredMethod  string                          `json:"preferredMethod"`
	PreferenceReason string                          `json:"preferenceReason"`
	Comment          string                          `json:"comment"`
}

// Record 校验并追加当前样本的判断。校验失败时状态完全不变（无部分追加）。
// 同一样本在advance之前重复record会被拒绝，响应日志保持追加写。
// 记录成功后需要调用方显式advance，二者分离以便UI先渲染确认信息。
func (s *SessionService) Record(id string, req RecordRequest) (*SessionSnapshot, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.State == StateNotStarted || sess.State == StateComplete {
		return nil, util.NewInvalidStateError("record", string(sess.State))
	}
	s.resolveTransitionLocked(sess)

	sample, ok := s.catalog.Sample(sess.CurrentIndex)
	if !ok {
		return nil, fmt.Errorf("sample index %d out of range", sess.CurrentIndex)
	}
	if sess.rated[sample.ImageID] {
		return nil, util.WrapValidationError(util.ErrAlreadyRated)
	}

	if err := s.validateRatings(req); err != nil {
		return nil, err
	}

	order := s.displayOrderLocked(sess, sample.ImageID)
	labels := model.CaptionLabels()
	mapping := make(map[string]string, len(order))
	for i, method := range order {
		mapping[labels[i]] = method
	}

	resp := model.Response{
		ImageID:          sample.ImageID,
		SampleNumber:     sess.CurrentIndex + 1,
		Category:         sample.Category,
		IntroducedPhase:  sample.IntroducedPhase,
		AssignedPhase:    sample.AssignedPhase,
		CFRisk:           sample.CFRisk,
		MethodMapping:    mapping,
		Ratings:          req.Ratings,
		PreferredMethod:  req.PreferredMethod,
		PreferenceReason: req.PreferenceReason,
		Comment:          req.Comment,
		Timestamp:        time.Now(),
	}

	sess.Responses = append(sess.Responses, resp)
	sess.rated[sample.ImageID] = true
	monitoring.ResponsesRecorded.Inc()

	s.persistResponse(sess, sample, resp)

	return s.snapshotLocked(sess), nil
}

func (s *SessionService) validateRatings(req RecordRequest) error {
	known := make(map[string]bool, len(model.SamplingMethods()))
	for _, m := range model.SamplingMethods() {
		known[m] = true
	}

	if len(req.Ratings) != len(known) {
		return util.NewValidationError("ratings must cover exactly %d methods, got %d", len(known), len(req.Ratings))
	}
	for method, scores := range req.Ratings {
		if !known[method] {
			return util.NewValidationError("unknown method %q", method)
		}
		for _, criterion := range model.RatingCriteria() {
			score := scores.Score(criterion)
			if score < s.cfg.RatingMin || score > s.cfg.RatingMax {
				return util.NewValidationError("%s score for %q is %d, must be within [%d, %d]",
					criterion, method, score, s.cfg.RatingMin, s.cfg.RatingMax)
			}
		}
	}

	if req.PreferredMethod == "" {
		if s.cfg.RequirePreference {
			return util.NewValidationError("preferredMethod is required")
		}
		return nil
	}
	if !known[req.PreferredMethod] {
		return util.NewValidationError("unknown preferred method %q", req.PreferredMethod)
	}
	return nil
}

func (s *SessionService) persistResponse(sess *Session, sample model.Sample, resp model.Response) {
	mappingJSON, _ := json.Marshal(resp.MethodMapping)
	ratingsJSON, _ := json.Marshal(resp.Ratings)

	s.persist(func() error {
		return s.results.CreateResponse(&model.SampleResponse{
			SessionID:        sess.ID,
			ParticipantID:    sess.ParticipantID,
			SampleNumber:     resp.SampleNumber,
			ImageID:          resp.ImageID,
			Category:         resp.Category,
			IntroducedPhase:  resp.IntroducedPhase,
			AssignedPhase:    resp.AssignedPhase,
			CFRisk:           resp.CFRisk,
			ModelCheckpoint:  sample.ModelCheckpoint,
			DiversityScore:   sample.DiversityScore,
			IsDiverse:        sample.IsDiverse,
			MethodMapping:    mappingJSON,
			Ratings:          ratingsJSON,
			PreferredMethod:  resp.PreferredMethod,
			PreferenceReason: resp.PreferenceReason,
			Comment:          resp.Comment,
			RatedAt:          resp.Timestamp,
		})
	})
}

// ResolveLabels 把按展示标签(Caption A/B/C)提交的评分换算回方法名。
// 换算基于当前样本的展示顺序，参与者始终只接触标签。
func (s *SessionService) ResolveLabels(id string, labelRatings map[string]model.CriteriaScores, preferredLabel string) (map[string]model.CriteriaScores, string, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, "", err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.State == StateNotStarted || sess.State == StateComplete {
		return nil, "", util.NewInvalidStateError("record", string(sess.State))
	}
	sample, ok := s.catalog.Sample(sess.CurrentIndex)
	if !ok {
		return nil, "", fmt.Errorf("sample index %d out of range", sess.CurrentIndex)
	}

	order := s.displayOrderLocked(sess, sample.ImageID)
	labels := model.CaptionLabels()
	methodByLabel := make(map[string]string, len(order))
	for i, method := range order {
		methodByLabel[labels[i]] = method
	}

	ratings := make(map[string]model.CriteriaScores, len(labelRatings))
	for label, scores := range labelRatings {
		method, ok := methodByLabel[label]
		if !ok {
			return nil, "", util.NewValidationError("unknown caption label %q", label)
		}
		ratings[method] = scores
	}

	preferred := ""
	if preferredLabel != "" {
		method, ok := methodByLabel[preferredLabel]
		if !ok {
			return nil, "", util.NewValidationError("unknown caption label %q", preferredLabel)
		}
		preferred = method
	}
	return ratings, preferred, nil
}

// AdvanceResult advance的结果：可能携带阶段过渡提示或完成标记
type AdvanceResult struct {
	State        StudyState       `json:"state"`
	CurrentIndex int              `json:"currentIndex"`
	TotalSamples int              `json:"totalSamples"`
	Complete     bool             `json:"complete"`
	Transition   *PhaseTransition `json:"transition,omitempty"`
}

// Advance 前进到下一个样本。
// 到达末尾后保持complete并幂等；相邻样本assigned_phase不同则产生阶段过渡提示。
func (s *SessionService) Advance(id string) (*AdvanceResult, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.State == StateNotStarted {
		return nil, util.NewInvalidStateError("advance", string(sess.State))
	}
	if sess.State == StateComplete {
		return &AdvanceResult{
			State:        StateComplete,
			CurrentIndex: sess.CurrentIndex,
			TotalSamples: s.catalog.Len(),
			Complete:     true,
		}, nil
	}
	s.resolveTransitionLocked(sess)

	prev, _ := s.catalog.Sample(sess.CurrentIndex)
	sess.CurrentIndex++

	if sess.CurrentIndex >= s.catalog.Len() {
		sess.State = StateComplete
		monitoring.SessionsCompleted.Inc()
		s.persist(func() error {
			return s.results.UpdateSessionStatus(sess.ID, string(StateComplete))
		})
		return &AdvanceResult{
			State:        StateComplete,
			CurrentIndex: sess.CurrentIndex,
			TotalSamples: s.catalog.Len(),
			Complete:     true,
		}, nil
	}

	next, _ := s.catalog.Sample(sess.CurrentIndex)
	var transition *PhaseTransition
	if next.AssignedPhase != prev.AssignedPhase {
		transition = &PhaseTransition{
			FromPhase:    prev.AssignedPhase,
			ToPhase:      next.AssignedPhase,
			FromCategory: s.catalog.CategoryOfPhase(prev.AssignedPhase),
			ToCategory:   s.catalog.CategoryOfPhase(next.AssignedPhase),
			Message: fmt.Sprintf("Entering evaluation phase %d (%s checkpoint)",
				next.AssignedPhase, s.catalog.CategoryOfPhase(next.AssignedPhase)),
		}
		sess.State = StatePhaseTransition
		sess.pendingTransition = transition
	}

	return &AdvanceResult{
		State:        sess.State,
		CurrentIndex: sess.CurrentIndex,
		TotalSamples: s.catalog.Len(),
		Transition:   transition,
	}, nil
}

// ProgressView 进度视图：完成比例与按类目完成数
type ProgressView struct {
	Completed    int            `json:"completed"`
	Total        int            `json:"total"`
	Fraction     float64        `json:"fraction"`
	PerCategory  map[string]int `json:"perCategory"`
	CurrentPhase int            `json:"currentPhase"`
	State        StudyState     `json:"state"`
}

func (s *SessionService) Progress(id string) (*ProgressView, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	total := s.catalog.Len()
	perCategory := make(map[string]int, len(model.Categories()))
	for _, category := range model.Categories() {
		perCategory[category] = 0
	}
	for _, r := range sess.Responses {
		perCategory[r.Category]++
	}

	phase := 0
	if sample, ok := s.catalog.Sample(sess.CurrentIndex); ok && sess.State != StateNotStarted {
		phase = sample.AssignedPhase
	}

	return &ProgressView{
		Completed:    sess.CurrentIndex,
		Total:        total,
		Fraction:     float64(sess.CurrentIndex) / float64(total),
		PerCategory:  perCategory,
		CurrentPhase: phase,
		State:        sess.State,
	}, nil
}

// Reset 显式重置：丢弃全部响应回到 not_started。
// 破坏性操作，必须由调用方显式确认，绝不隐式触发。
func (s *SessionService) Reset(id string, confirm bool) (*SessionSnapshot, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if !confirm {
		return nil, util.WrapValidationError(util.ErrResetNotConfirmed)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.State = StateNotStarted
	sess.CurrentIndex = 0
	sess.Responses = nil
	sess.Assessments = nil
	sess.rated = make(map[string]bool)
	sess.assessed = make(map[string]bool)
	sess.pendingTransition = nil
	sess.questionnaireDone = false
	// 展示顺序由(种子, 图片ID)确定性生成，重置后重放得到相同顺序

	s.persist(func() error {
		return s.results.DeleteSessionResults(sess.ID)
	})

	return s.snapshotLocked(sess), nil
}

type AssessmentRequest struct {
	PreviousCategory   string `json:"previousCategory"`
	CurrentCategory    string `json:"currentCategory"`
	QualityRating      string `json:"qualityRating"`
	QualityDrop        string `json:"qualityDrop"`
	ConsistencyRating  string `json:"consistencyRating"`
	ExpectationsRating string `json:"expectationsRating"`
	Comments           string `json:"comments"`
}

// RecordAssessment 类目切换时的整体评估，每个切换只接受一次
func (s *SessionService) RecordAssessment(id string, req AssessmentRequest) error {
	sess, err := s.get(id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.State == StateNotStarted {
		return util.NewInvalidStateError("assessment", string(sess.State))
	}

	known := make(map[string]bool, len(model.Categories()))
	for _, c := range model.Categories() {
		known[c] = true
	}
	if !known[req.PreviousCategory] {
		return util.NewValidationError("unknown previous category %q", req.PreviousCategory)
	}
	if req.CurrentCategory != "completion" && !known[req.CurrentCategory] {
		return util.NewValidationError("unknown current category %q", req.CurrentCategory)
	}
	for name, v := range map[string]string{
		"qualityRating":      req.QualityRating,
		"qualityDrop":        req.QualityDrop,
		"consistencyRating":  req.ConsistencyRating,
		"expectationsRating": req.ExpectationsRating,
	} {
		if strings.TrimSpace(v) == "" {
			return util.NewValidationError("%s is required", name)
		}
	}

	key := req.PreviousCategory + "_to_" + req.CurrentCategory
	if sess.assessed[key] {
		return util.WrapValidationError(util.ErrTransitionAssessed)
	}

	assessment := model.CategoryAssessment{
		SessionID:          sess.ID,
		ParticipantID:      sess.ParticipantID,
		PreviousCategory:   req.PreviousCategory,
		CurrentCategory:    req.CurrentCategory,
		SampleIndexAtShift: sess.CurrentIndex,
		QualityRating:      req.QualityRating,
		QualityDrop:        req.QualityDrop,
		ConsistencyRating:  req.ConsistencyRating,
		ExpectationsRating: req.ExpectationsRating,
		Comments:           req.Comments,
	}

	sess.Assessments = append(sess.Assessments, assessment)
	sess.assessed[key] = true

	s.persist(func() error {
		a := assessment
		return s.results.CreateAssessment(&a)
	})

	return nil
}

type QuestionnaireRequest struct {
	AgeGroup           string         `json:"ageGroup"`
	Gender             string         `json:"gender"`
	QualityPatterns    string         `json:"qualityPatterns"`
	BetterCategories   []string       `json:"betterCategories"`
	WorseCategories    []string       `json:"worseCategories"`
	LearningHypothesis string         `json:"learningHypothesis"`
	BetterLearned      []string       `json:"betterLearned"`
	CategoryRankings   map[string]int `json:"categoryRankings"`
	CaptionPreference  string         `json:"captionPreference"`
	SummaryAssessment  string         `json:"summaryAssessment"`
	ForgettingEvidence string         `json:"forgettingEvidence"`
	FinalFeedback      string         `json:"finalFeedback"`
}

// CompleteQuestionnaire 提交结束问卷，仅在complete状态下允许，每会话一次
func (s *SessionService) CompleteQuestionnaire(id string, req QuestionnaireRequest) error {
	sess, err := s.get(id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.State != StateComplete {
		return util.NewInvalidStateError("questionnaire", string(sess.State))
	}
	if sess.questionnaireDone {
		return util.NewValidationError("questionnaire already submitted")
	}

	for name, v := range map[string]string{
		"qualityPatterns":    req.QualityPatterns,
		"learningHypothesis": req.LearningHypothesis,
		"captionPreference":  req.CaptionPreference,
		"summaryAssessment":  req.SummaryAssessment,
		"forgettingEvidence": req.ForgettingEvidence,
	} {
		if strings.TrimSpace(v) == "" {
			return util.NewValidationError("%s is required", name)
		}
	}

	if err := validateRankings(req.CategoryRankings); err != nil {
		return err
	}

	rankingsJSON, _ := json.Marshal(req.CategoryRankings)
	now := time.Now()
	sess.questionnaireDone = true

	s.persist(func() error {
		return s.results.CreateQuestionnaire(&model.FinalQuestionnaire{
			SessionID:          sess.ID,
			ParticipantID:      sess.ParticipantID,
			AgeGroup:           req.AgeGroup,
			Gender:             req.Gender,
			QualityPatterns:    req.QualityPatterns,
			BetterCategories:   strings.Join(req.BetterCategories, ", "),
			WorseCategories:    strings.Join(req.WorseCategories, ", "),
			LearningHypothesis: req.LearningHypothesis,
			BetterLearned:      strings.Join(req.BetterLearned, ", "),
			CategoryRankings:   rankingsJSON,
			CaptionPreference:  req.CaptionPreference,
			SummaryAssessment:  req.SummaryAssessment,
			ForgettingEvidence: req.ForgettingEvidence,
			FinalFeedback:      req.FinalFeedback,
		})
	})
	s.persist(func() error {
		return s.results.CompleteSession(&model.StudySession{
			UUIDBase:    model.UUIDBase{ID: sess.ID},
			Status:      "finished",
			CompletedAt: &now,
		})
	})

	return nil
}

// validateRankings 六个类目排名必须是1-6的一个排列
func validateRankings(rankings map[string]int) error {
	if len(rankings) != len(model.Categories()) {
		return util.NewValidationError("categoryRankings must rank all %d categories", len(model.Categories()))
	}
	seen := make(map[int]string, len(rankings))
	for _, category := range model.Categories() {
		rank, ok := rankings[category]
		if !ok {
			return util.NewValidationError("categoryRankings missing %q", category)
		}
		if rank < 1 || rank > len(model.Categories()) {
			return util.NewValidationError("rank %d for %q out of range", rank, category)
		}
		if other, dup := seen[rank]; dup {
			return util.NewValidationError("categories %q and %q share rank %d", other, category, rank)
		}
		seen[rank] = category
	}
	return nil
}

// Responses 响应序列的副本，供导出使用
func (s *SessionService) Responses(id string) ([]model.Response, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	out := make([]model.Response, len(sess.Responses))
	copy(out, sess.Responses)
	return out, nil
}

// Assessments 类目评估的副本
func (s *SessionService) Assessments(id string) ([]model.CategoryAssessment, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	out := make([]model.CategoryAssessment, len(sess.Assessments))
	copy(out, sess.Assessments)
	return out, nil
}

// persist 结果落库为旁路写，失败只告警不阻断研究流程
func (s *SessionService) persist(fn func() error) {
	if s.results == nil {
		return
	}
	if err := fn(); err != nil {
		logger.Log.Warn("failed to persist study result", zap.Error(err))
	}
}

func fnvHash(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}
