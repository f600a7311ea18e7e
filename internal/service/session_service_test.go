package service

import (
	"strings"
	"testing"

	"alcie_study_backend/internal/config"
	"alcie_study_backend/internal/dataset"
	"alcie_study_backend/internal/model"
	"alcie_study_backend/internal/util"
	"alcie_study_backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) *SessionService {
	t.Helper()
	if logger.Log == nil {
		logger.Log = zap.NewNop()
	}

	catalog, err := dataset.Load("../../data/alcie_study_dataset.json")
	require.NoError(t, err)

	cfg := &config.StudyConfig{
		RatingMin:         1,
		RatingMax:         5,
		RequirePreference: true,
	}
	return NewSessionService(catalog, nil, cfg)
}

func newStartedSession(t *testing.T, svc *SessionService) string {
	t.Helper()
	snapshot, err := svc.Create(CreateSessionRequest{ConsentGiven: true, FashionInterest: "high"})
	require.NoError(t, err)
	_, err = svc.Start(snapshot.ID)
	require.NoError(t, err)
	return snapshot.ID
}

func validRecord() RecordRequest {
	return RecordRequest{
		Ratings: map[string]model.CriteriaScores{
			model.MethodRandom:      {Relevance: 3, Fluency: 3, Descriptiveness: 3, Novelty: 3},
			model.MethodDiversity:   {Relevance: 4, Fluency: 4, Descriptiveness: 4, Novelty: 4},
			model.MethodUncertainty: {Relevance: 2, Fluency: 2, Descriptiveness: 2, Novelty: 2},
		},
		PreferredMethod: model.MethodDiversity,
	}
}

func TestCreateRequiresConsent(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(CreateSessionRequest{ConsentGiven: false, FashionInterest: "high"})
	require.Error(t, err)
	assert.True(t, util.IsValidationError(err))

	_, err = svc.Create(CreateSessionRequest{ConsentGiven: true})
	require.Error(t, err)
	assert.True(t, util.IsValidationError(err))

	snapshot, err := svc.Create(CreateSessionRequest{ConsentGiven: true, FashionInterest: "medium"})
	require.NoError(t, err)
	assert.Equal(t, StateNotStarted, snapshot.State)
	assert.True(t, strings.HasPrefix(snapshot.ParticipantID, "P-"))
	assert.Equal(t, 24, snapshot.TotalSamples)
}

func TestStartTransitions(t *testing.T) {
	svc := newTestService(t)
	snapshot, err := svc.Create(CreateSessionRequest{ConsentGiven: true, FashionInterest: "low"})
	require.NoError(t, err)

	// 未开始时current和advance都不可用
	_, err = svc.Current(snapshot.ID)
	assert.True(t, util.IsInvalidStateError(err))
	_, err = svc.Advance(snapshot.ID)
	assert.True(t, util.IsInvalidStateError(err))

	started, err := svc.Start(snapshot.ID)
	require.NoError(t, err)
	assert.Equal(t, StateInProgress, started.State)

	// 重复start是无效状态
	_, err = svc.Start(snapshot.ID)
	assert.True(t, util.IsInvalidStateError(err))
}

func TestSessionNotFound(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Get("missing")
	assert.ErrorIs(t, err, util.ErrSessionNotFound)
}

func TestAdvanceAloneReachesComplete(t *testing.T) {
	svc := newTestService(t)
	id := newStartedSession(t, svc)

	transitions := 0
	for i := 0; i < 24; i++ {
		result, err := svc.Advance(id)
		require.NoError(t, err)
		if i < 23 {
			assert.False(t, result.Complete, "complete after %d advances", i+1)
		} else {
			assert.True(t, result.Complete)
			assert.Equal(t, StateComplete, result.State)
		}
		if result.Transition != nil {
			transitions++
		}
	}

	// 六个评估阶段之间恰好5次过渡
	assert.Equal(t, 5, transitions)

	// 完成后advance幂等
	again, err := svc.Advance(id)
	require.NoError(t, err)
	assert.True(t, again.Complete)

	// 完成后没有当前样本
	view, err := svc.Current(id)
	require.NoError(t, err)
	assert.Nil(t, view)

	// 完成后不能再record
	_, err = svc.Record(id, validRecord())
	assert.True(t, util.IsInvalidStateError(err))
}

func TestPhaseTransitionResolvesOnNextCurrent(t *testing.T) {
	svc := newTestService(t)
	id := newStartedSession(t, svc)

	// 第一个阶段只有1个样本，第一次advance即过渡
	result, err := svc.Advance(id)
	require.NoError(t, err)
	require.NotNil(t, result.Transition)
	assert.Equal(t, StatePhaseTransition, result.State)
	assert.Equal(t, 1, result.Transition.FromPhase)
	assert.Equal(t, 2, result.Transition.ToPhase)
	assert.Equal(t, "accessories", result.Transition.FromCategory)
	assert.Equal(t, "bottoms", result.Transition.ToCategory)

	// current消费过渡提示并回到in_progress
	view, err := svc.Current(id)
	require.NoError(t, err)
	require.NotNil(t, view.Transition)

	snapshot, err := svc.Get(id)
	require.NoError(t, err)
	assert.Equal(t, StateInProgress, snapshot.State)

	// 提示只出现一次
	view, err = svc.Current(id)
	require.NoError(t, err)
	assert.Nil(t, view.Transition)
}

func TestFirstSampleIsAccessories(t *testing.T) {
	svc := newTestService(t)
	id := newStartedSession(t, svc)

	view, err := svc.Current(id)
	require.NoError(t, err)
	assert.Equal(t, "accessories", view.Category)
	assert.Equal(t, 1, view.AssignedPhase)
	assert.Equal(t, 1, view.SampleNumber)
	assert.Equal(t, 24, view.TotalSamples)
	assert.Len(t, view.Captions, 3)
	for i, label := range model.CaptionLabels() {
		assert.Equal(t, label, view.Captions[i].Label)
		assert.NotEmpty(t, view.Captions[i].Caption)
	}
}

func TestRecordValidationLeavesStateUnchanged(t *testing.T) {
	svc := newTestService(t)
	id := newStartedSession(t, svc)

	cases := []struct {
		name   string
		mutate func(*RecordRequest)
	}{
		{"评分超出范围", func(r *RecordRequest) {
			s := r.Ratings[model.MethodRandom]
			s.Fluency = 6
			r.Ratings[model.MethodRandom] = s
		}},
		{"评分低于下限", func(r *RecordRequest) {
			s := r.Ratings[model.MethodDiversity]
			s.Novelty = 0
			r.Ratings[model.MethodDiversity] = s
		}},
		{"未知方法", func(r *RecordRequest) {
			r.Ratings["cluster"] = model.CriteriaScores{Relevance: 3, Fluency: 3, Descriptiveness: 3, Novelty: 3}
			delete(r.Ratings, model.MethodRandom)
		}},
		{"方法不全", func(r *RecordRequest) {
			delete(r.Ratings, model.MethodUncertainty)
		}},
		{"缺少偏好", func(r *RecordRequest) {
			r.PreferredMethod = ""
		}},
		{"偏好不是已知方法", func(r *RecordRequest) {
			r.PreferredMethod = "cluster"
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRecord()
			tc.mutate(&req)

			_, err := svc.Record(id, req)
			require.Error(t, err)
			assert.True(t, util.IsValidationError(err), "expected ValidationError, got %T", err)

			// 校验失败不允许部分追加
			responses, err := svc.Responses(id)
			require.NoError(t, err)
			assert.Empty(t, responses)
		})
	}
}

func TestDuplicateRecordRejected(t *testing.T) {
	svc := newTestService(t)
	id := newStartedSession(t, svc)

	_, err := svc.Record(id, validRecord())
	require.NoError(t, err)

	_, err = svc.Record(id, validRecord())
	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrAlreadyRated)

	// 响应日志保持追加写，重复提交不覆盖
	responses, err := svc.Responses(id)
	require.NoError(t, err)
	assert.Len(t, responses, 1)
}

func TestRecordCapturesMethodMapping(t *testing.T) {
	svc := newTestService(t)
	id := newStartedSession(t, svc)

	_, err := svc.Record(id, validRecord())
	require.NoError(t, err)

	responses, err := svc.Responses(id)
	require.NoError(t, err)
	require.Len(t, responses, 1)

	resp := responses[0]
	assert.Equal(t, 1, resp.SampleNumber)
	assert.Equal(t, "accessories", resp.Category)

	// 三个标签映射到三个互不相同的方法
	require.Len(t, resp.MethodMapping, 3)
	seen := map[string]bool{}
	for _, label := range model.CaptionLabels() {
		method, ok := resp.MethodMapping[label]
		require.True(t, ok, "missing mapping for %s", label)
		assert.False(t, seen[method])
		seen[method] = true
	}
}

func TestDisplayOrderStableAcrossReset(t *testing.T) {
	svc := newTestService(t)
	id := newStartedSession(t, svc)

	first, err := svc.Current(id)
	require.NoError(t, err)

	again, err := svc.Current(id)
	require.NoError(t, err)
	assert.Equal(t, first.Captions, again.Captions)

	// 重置后重放：展示顺序由(种子, 图片ID)决定，必须逐字相同
	_, err = svc.Reset(id, true)
	require.NoError(t, err)
	_, err = svc.Start(id)
	require.NoError(t, err)

	replay, err := svc.Current(id)
	require.NoError(t, err)
	assert.Equal(t, first.Captions, replay.Captions)
}

func TestResetRequiresConfirm(t *testing.T) {
	svc := newTestService(t)
	id := newStartedSession(t, svc)

	_, err := svc.Record(id, validRecord())
	require.NoError(t, err)

	_, err = svc.Reset(id, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrResetNotConfirmed)

	// 未确认时什么都不变
	responses, err := svc.Responses(id)
	require.NoError(t, err)
	assert.Len(t, responses, 1)

	snapshot, err := svc.Reset(id, true)
	require.NoError(t, err)
	assert.Equal(t, StateNotStarted, snapshot.State)
	assert.Equal(t, 0, snapshot.CurrentIndex)

	responses, err = svc.Responses(id)
	require.NoError(t, err)
	assert.Empty(t, responses)
}

func TestResolveLabels(t *testing.T) {
	svc := newTestService(t)
	id := newStartedSession(t, svc)

	labelRatings := map[string]model.CriteriaScores{
		"Caption A": {Relevance: 3, Fluency: 3, Descriptiveness: 3, Novelty: 3},
		"Caption B": {Relevance: 4, Fluency: 4, Descriptiveness: 4, Novelty: 4},
		"Caption C": {Relevance: 2, Fluency: 2, Descriptiveness: 2, Novelty: 2},
	}

	ratings, preferred, err := svc.ResolveLabels(id, labelRatings, "Caption B")
	require.NoError(t, err)
	assert.Len(t, ratings, 3)
	assert.Contains(t, model.SamplingMethods(), preferred)
	for _, method := range model.SamplingMethods() {
		assert.Contains(t, ratings, method)
	}

	// 换算后可以直接record
	_, err = svc.Record(id, RecordRequest{Ratings: ratings, PreferredMethod: preferred})
	require.NoError(t, err)

	_, _, err = svc.ResolveLabels(id, map[string]model.CriteriaScores{"Caption D": {}}, "")
	require.Error(t, err)
	assert.True(t, util.IsValidationError(err))
}

func TestProgress(t *testing.T) {
	svc := newTestService(t)
	id := newStartedSession(t, svc)

	progress, err := svc.Progress(id)
	require.NoError(t, err)
	assert.Equal(t, 0, progress.Completed)
	assert.Equal(t, 24, progress.Total)
	assert.Equal(t, 1, progress.CurrentPhase)

	_, err = svc.Record(id, validRecord())
	require.NoError(t, err)
	_, err = svc.Advance(id)
	require.NoError(t, err)

	progress, err = svc.Progress(id)
	require.NoError(t, err)
	assert.Equal(t, 1, progress.Completed)
	assert.InDelta(t, 1.0/24.0, progress.Fraction, 1e-9)
	assert.Equal(t, 1, progress.PerCategory["accessories"])
	assert.Equal(t, 0, progress.PerCategory["tops"])
}

func TestRecordAssessment(t *testing.T) {
	svc := newTestService(t)
	id := newStartedSession(t, svc)

	req := AssessmentRequest{
		PreviousCategory:   "accessories",
		CurrentCategory:    "bottoms",
		QualityRating:      "good",
		QualityDrop:        "slight",
		ConsistencyRating:  "consistent",
		ExpectationsRating: "met",
	}

	require.NoError(t, svc.RecordAssessment(id, req))

	// 同一个切换只接受一次
	err := svc.RecordAssessment(id, req)
	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrTransitionAssessed)

	// 完成阶段的收尾评估用completion作为当前类目
	final := req
	final.PreviousCategory = "tops"
	final.CurrentCategory = "completion"
	require.NoError(t, svc.RecordAssessment(id, final))

	bad := req
	bad.PreviousCategory = "hats"
	err = svc.RecordAssessment(id, bad)
	require.Error(t, err)
	assert.True(t, util.IsValidationError(err))

	missing := req
	missing.CurrentCategory = "dresses"
	missing.QualityRating = ""
	err = svc.RecordAssessment(id, missing)
	require.Error(t, err)
	assert.True(t, util.IsValidationError(err))

	assessments, err := svc.Assessments(id)
	require.NoError(t, err)
	assert.Len(t, assessments, 2)
}

func completeStudy(t *testing.T, svc *SessionService, id string) {
	t.Helper()
	for i := 0; i < 24; i++ {
		_, err := svc.Advance(id)
		require.NoError(t, err)
	}
}

func validQuestionnaire() QuestionnaireRequest {
	return QuestionnaireRequest{
		AgeGroup:           "25-34",
		QualityPatterns:    "declined for early categories",
		LearningHypothesis: "forgetting",
		CategoryRankings: map[string]int{
			"accessories": 6,
			"bottoms":     5,
			"dresses":     4,
			"outerwear":   3,
			"shoes":       2,
			"tops":        1,
		},
		CaptionPreference:  "diversity",
		SummaryAssessment:  "clear quality differences between phases",
		ForgettingEvidence: "strong",
	}
}

func TestQuestionnaireOnlyAfterComplete(t *testing.T) {
	svc := newTestService(t)
	id := newStartedSession(t, svc)

	err := svc.CompleteQuestionnaire(id, validQuestionnaire())
	require.Error(t, err)
	assert.True(t, util.IsInvalidStateError(err))

	completeStudy(t, svc, id)

	require.NoError(t, svc.CompleteQuestionnaire(id, validQuestionnaire()))

	// 每会话只接受一次
	err = svc.CompleteQuestionnaire(id, validQuestionnaire())
	require.Error(t, err)
	assert.True(t, util.IsValidationError(err))
}

func TestQuestionnaireRankingsMustBePermutation(t *testing.T) {
	svc := newTestService(t)
	id := newStartedSession(t, svc)
	completeStudy(t, svc, id)

	cases := []struct {
		name   string
		mutate func(*QuestionnaireRequest)
	}{
		{"名次重复", func(q *QuestionnaireRequest) {
			q.CategoryRankings["accessories"] = 1
		}},
		{"名次越界", func(q *QuestionnaireRequest) {
			q.CategoryRankings["tops"] = 7
		}},
		{"缺少类目", func(q *QuestionnaireRequest) {
			delete(q.CategoryRankings, "shoes")
		}},
		{"未知类目", func(q *QuestionnaireRequest) {
			delete(q.CategoryRankings, "shoes")
			q.CategoryRankings["hats"] = 2
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validQuestionnaire()
			tc.mutate(&req)

			err := svc.CompleteQuestionnaire(id, req)
			require.Error(t, err)
			assert.True(t, util.IsValidationError(err), "expected ValidationError, got %T", err)
		})
	}
}
