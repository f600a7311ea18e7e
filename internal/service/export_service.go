package service

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"alcie_study_backend/internal/dataset"
	"alcie_study_backend/internal/model"
	"alcie_study_backend/internal/util"

	"github.com/xuri/excelize/v2"
)

// 支持的导出格式
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatJSON = "json"
)

// ExportRecord 结果导出的单行，响应数据与样本静态元数据已合并展平
type ExportRecord struct {
	ParticipantID   string  `json:"participant_id"`
	FashionInterest string  `json:"fashion_interest"`
	SampleNumber    int     `json:"sample_number"`
	ImageID         string  `json:"image_id"`
	Category        string  `json:"category"`
	IntroducedPhase int     `json:"introduced_phase"`
	CFRisk          string  `json:"cf_risk"`
	AssignedPhase   int     `json:"assigned_phase"`
	ModelCheckpoint string  `json:"model_checkpoint"`
	DiversityScore  float64 `json:"diversity_score"`
	IsDiverse       bool    `json:"is_diverse"`

	// 展示位置 -> 方法名，用于事后还原去偏映射
	MethodCaptionA string `json:"method_caption_a"`
	MethodCaptionB string `json:"method_caption_b"`
	MethodCaptionC string `json:"method_caption_c"`

	BestCaptionMethod string `json:"best_caption_method"`
	RankingReason     string `json:"ranking_reason"`
	Comment           string `json:"comment"`
	Timestamp         string `json:"timestamp"`

	// 方法名 -> 各维度评分
	Ratings map[string]model.CriteriaScores `json:"ratings"`
}

// ExportDocument JSON格式导出的顶层结构
type ExportDocument struct {
	Session     *SessionSnapshot           `json:"session"`
	Responses   []ExportRecord             `json:"responses"`
	Assessments []model.CategoryAssessment `json:"category_assessments"`
}

// ExportService 将会话的响应序列与数据集元数据合并为研究结果文件
type ExportService struct {
	catalog   *dataset.Catalog
	sessions  *SessionService
	exportDir string
}

func NewExportService(catalog *dataset.Catalog, sessions *SessionService, exportDir string) *ExportService {
	return &ExportService{
		catalog:   catalog,
		sessions:  sessions,
		exportDir: exportDir,
	}
}

// BuildRecords 把会话的响应逐条连接回样本静态元数据。
// 相同输入产出相同切片，不修改会话内的响应。
func (s *ExportService) BuildRecords(sessionID string) (*SessionSnapshot, []ExportRecord, error) {
	snapshot, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, nil, err
	}
	responses, err := s.sessions.Responses(sessionID)
	if err != nil {
		return nil, nil, err
	}

	records := make([]ExportRecord, 0, len(responses))
	for _, resp := range responses {
		sample, ok := s.catalog.ByImageID(resp.ImageID)
		if !ok {
			return nil, nil, util.NewValidationError("response references unknown image %s", resp.ImageID)
		}

		ratings := make(map[string]model.CriteriaScores, len(resp.Ratings))
		for method, scores := range resp.Ratings {
			ratings[method] = scores
		}

		records = append(records, ExportRecord{
			ParticipantID:     snapshot.ParticipantID,
			FashionInterest:   snapshot.FashionInterest,
			SampleNumber:      resp.SampleNumber,
			ImageID:           resp.ImageID,
			Category:          sample.Category,
			IntroducedPhase:   sample.IntroducedPhase,
			CFRisk:            sample.CFRisk,
			AssignedPhase:     sample.AssignedPhase,
			ModelCheckpoint:   sample.ModelCheckpoint,
			DiversityScore:    sample.DiversityScore,
			IsDiverse:         sample.IsDiverse,
			MethodCaptionA:    resp.MethodMapping["Caption A"],
			MethodCaptionB:    resp.MethodMapping["Caption B"],
			MethodCaptionC:    resp.MethodMapping["Caption C"],
			BestCaptionMethod: resp.PreferredMethod,
			RankingReason:     resp.PreferenceReason,
			Comment:           resp.Comment,
			Timestamp:         resp.Timestamp.UTC().Format(util.TimeFormat),
			Ratings:           ratings,
		})
	}
	return snapshot, records, nil
}

// csvHeaders 固定列顺序：基础列在前，随后每方法按固定维度顺序展开
func csvHeaders() []string {
	headers := []string{
		"participant_id", "fashion_interest", "sample_number", "image_id",
		"category", "introduced_phase", "cf_risk", "assigned_phase",
		"model_checkpoint", "diversity_score", "is_diverse",
		"method_caption_a", "method_caption_b", "method_caption_c",
		"best_caption_method", "ranking_reason", "comment", "timestamp",
	}
	for _, method := range model.SamplingMethods() {
		for _, criterion := range model.RatingCriteria() {
			headers = append(headers, method+"_"+criterion)
		}
	}
	return headers
}

func (r ExportRecord) row() []string {
	row := []string{
		r.ParticipantID,
		r.FashionInterest,
		strconv.Itoa(r.SampleNumber),
		r.ImageID,
		r.Category,
		strconv.Itoa(r.IntroducedPhase),
		r.CFRisk,
		strconv.Itoa(r.AssignedPhase),
		r.ModelCheckpoint,
		strconv.FormatFloat(r.DiversityScore, 'f', 4, 64),
		strconv.FormatBool(r.IsDiverse),
		r.MethodCaptionA,
		r.MethodCaptionB,
		r.MethodCaptionC,
		r.BestCaptionMethod,
		r.RankingReason,
		r.Comment,
		r.Timestamp,
	}
	for _, method := range model.SamplingMethods() {
		scores := r.Ratings[method]
		for _, criterion := range model.RatingCriteria() {
			row = append(row, strconv.Itoa(scores.Score(criterion)))
		}
	}
	return row
}

// WriteCSV 按固定列顺序写出响应明细
func (s *ExportService) WriteCSV(w io.Writer, records []ExportRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeaders()); err != nil {
		return err
	}
	for _, rec := range records {
		if err := cw.Write(rec.row()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX 写出Excel工作簿，响应与类目评估各占一张工作表
func (s *ExportService) WriteXLSX(w io.Writer, records []ExportRecord, assessments []model.CategoryAssessment) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Responses"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	if err := writeSheet(f, sheet, csvHeaders(), func() [][]string {
		rows := make([][]string, len(records))
		for i, rec := range records {
			rows[i] = rec.row()
		}
		return rows
	}()); err != nil {
		return err
	}

	if len(assessments) > 0 {
		assessSheet := "Category Assessments"
		if _, err := f.NewSheet(assessSheet); err != nil {
			return err
		}
		headers := []string{
			"participant_id", "previous_category", "current_category",
			"sample_index_at_shift", "quality_rating", "quality_drop",
			"consistency_rating", "expectations_rating", "comments",
		}
		rows := make([][]string, len(assessments))
		for i, a := range assessments {
			rows[i] = []string{
				a.ParticipantID, a.PreviousCategory, a.CurrentCategory,
				strconv.Itoa(a.SampleIndexAtShift), a.QualityRating, a.QualityDrop,
				a.ConsistencyRating, a.ExpectationsRating, a.Comments,
			}
		}
		if err := writeSheet(f, assessSheet, headers, rows); err != nil {
			return err
		}
	}

	_, err := f.WriteTo(w)
	return err
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]string) error {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteJSON 整体导出，附带会话快照与类目评估
func (s *ExportService) WriteJSON(w io.Writer, doc *ExportDocument) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// Export 将指定会话的结果写入io.Writer，返回建议的下载文件名
func (s *ExportService) Export(w io.Writer, sessionID, format string) (string, error) {
	snapshot, records, err := s.BuildRecords(sessionID)
	if err != nil {
		return "", err
	}
	assessments, err := s.sessions.Assessments(sessionID)
	if err != nil {
		return "", err
	}

	switch strings.ToLower(format) {
	case FormatCSV, "":
		return snapshot.ParticipantID + "_complete.csv", s.WriteCSV(w, records)
	case FormatXLSX:
		return snapshot.ParticipantID + "_complete.xlsx", s.WriteXLSX(w, records, assessments)
	case FormatJSON:
		doc := &ExportDocument{Session: snapshot, Responses: records, Assessments: assessments}
		return snapshot.ParticipantID + "_complete.json", s.WriteJSON(w, doc)
	default:
		return "", util.NewValidationError("unsupported export format %q", format)
	}
}

// ExportToFile 把结果落到导出目录，每次响应后的进度备份也走这里
func (s *ExportService) ExportToFile(sessionID, format string) (string, error) {
	if s.exportDir == "" {
		return "", util.NewValidationError("export directory is not configured")
	}
	if err := os.MkdirAll(s.exportDir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	snapshot, _, err := s.BuildRecords(sessionID)
	if err != nil {
		return "", err
	}

	switch strings.ToLower(format) {
	case FormatCSV, "":
		format = FormatCSV
	case FormatXLSX, FormatJSON:
	default:
		return "", util.NewValidationError("unsupported export format %q", format)
	}

	path := filepath.Join(s.exportDir, snapshot.ParticipantID+"_complete."+strings.ToLower(format))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer file.Close()

	if _, err := s.Export(file, sessionID, format); err != nil {
		return "", err
	}
	return path, nil
}
