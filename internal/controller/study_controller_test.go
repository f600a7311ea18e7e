package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"alcie_study_backend/internal/config"
	"alcie_study_backend/internal/dataset"
	"alcie_study_backend/internal/middleware"
	"alcie_study_backend/internal/service"
	"alcie_study_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if logger.Log == nil {
		logger.Log = zap.NewNop()
	}

	catalog, err := dataset.Load("../../data/alcie_study_dataset.json")
	require.NoError(t, err)

	cfg := &config.StudyConfig{RatingMin: 1, RatingMax: 5, RequirePreference: true}
	sessions := service.NewSessionService(catalog, nil, cfg)
	exports := service.NewExportService(catalog, sessions, t.TempDir())

	study := NewStudyController(sessions, catalog)
	export := NewExportController(exports)

	router := gin.New()
	api := router.Group("/api/study")
	api.GET("/dataset/meta", study.GetDatasetMeta)
	api.POST("/sessions", study.CreateSession)

	session := api.Group("/sessions/:id")
	session.Use(middleware.SessionMiddleware(sessions))
	{
		session.GET("", study.GetSession)
		session.POST("/start", study.StartSession)
		session.GET("/current", study.GetCurrentSample)
		session.POST("/responses", study.RecordResponse)
		session.POST("/advance", study.Advance)
		session.GET("/progress", study.GetProgress)
		session.POST("/reset", study.ResetSession)
		session.GET("/export", export.Export)
	}
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(data)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createSession(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := doJSON(t, router, "POST", "/api/study/sessions", gin.H{
		"consentGiven":    true,
		"fashionInterest": "high",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.ID)
	return resp.Data.ID
}

func TestCreateSessionRequiresConsent(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, "POST", "/api/study/sessions", gin.H{"consentGiven": false})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "consent")
}

func TestSessionNotFoundReturns404(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, "GET", "/api/study/sessions/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStudyFlowOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	id := createSession(t, router)
	base := "/api/study/sessions/" + id

	// 未开始时current是状态冲突
	w := doJSON(t, router, "GET", base+"/current", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, "POST", base+"/start", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "in_progress")

	w = doJSON(t, router, "GET", base+"/current", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Caption A")
	assert.Contains(t, w.Body.String(), "accessories")

	record := gin.H{
		"ratings": gin.H{
			"Caption A": gin.H{"relevance": 3, "fluency": 3, "descriptiveness": 3, "novelty": 3},
			"Caption B": gin.H{"relevance": 4, "fluency": 4, "descriptiveness": 4, "novelty": 4},
			"Caption C": gin.H{"relevance": 2, "fluency": 2, "descriptiveness": 2, "novelty": 2},
		},
		"bestCaption": "Caption B",
	}
	w = doJSON(t, router, "POST", base+"/responses", record)
	require.Equal(t, http.StatusOK, w.Code)

	// 同一样本重复提交被拒
	w = doJSON(t, router, "POST", base+"/responses", record)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, "POST", base+"/advance", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "GET", base+"/progress", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "\"completed\":1")

	// 导出CSV
	w = doJSON(t, router, "GET", base+"/export?format=csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "_complete.csv")
	assert.Contains(t, w.Body.String(), "participant_id")
}

func TestRatingOutOfRangeReturns400(t *testing.T) {
	router := newTestRouter(t)
	id := createSession(t, router)
	base := "/api/study/sessions/" + id

	w := doJSON(t, router, "POST", base+"/start", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "POST", base+"/responses", gin.H{
		"ratings": gin.H{
			"Caption A": gin.H{"relevance": 9, "fluency": 3, "descriptiveness": 3, "novelty": 3},
			"Caption B": gin.H{"relevance": 4, "fluency": 4, "descriptiveness": 4, "novelty": 4},
			"Caption C": gin.H{"relevance": 2, "fluency": 2, "descriptiveness": 2, "novelty": 2},
		},
		"bestCaption": "Caption A",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResetRequiresConfirmOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	id := createSession(t, router)
	base := "/api/study/sessions/" + id

	w := doJSON(t, router, "POST", base+"/start", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "POST", base+"/reset", gin.H{"confirm": false})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, "POST", base+"/reset", gin.H{"confirm": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "not_started")
}

func TestDatasetMeta(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, "GET", "/api/study/dataset/meta", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "\"totalSamples\":24")
	assert.Contains(t, w.Body.String(), "uncertainty")
	assert.Contains(t, w.Body.String(), "cfRiskMapping")
}
