package dataset

import (
	"alcie_study_backend/internal/model"
	"alcie_study_backend/internal/util"
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Catalog 加载完成后不可变的样本目录。
// 样本按 assigned_phase 升序、阶段内按数据集声明顺序排列。
type Catalog struct {
	meta            model.DatasetMetadata
	samples         []model.Sample
	categoryByPhase map[int]string
}

// Load 从文件读取并校验数据集，任何校验失败均返回 DatasetError，不允许部分加载
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, util.NewDatasetError("", "read %s: %v", path, err)
	}

	var ds model.StudyDataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, util.NewDatasetError("", "parse %s: %v", path, err)
	}

	return New(ds)
}

// New 校验并构建目录
func New(ds model.StudyDataset) (*Catalog, error) {
	if err := validateMetadata(ds.Metadata); err != nil {
		return nil, err
	}

	categoryByPhase := make(map[int]string, len(ds.Metadata.CFRiskMapping))
	for category, meta := range ds.Metadata.CFRiskMapping {
		categoryByPhase[meta.Phase] = category
	}

	if err := validateSamples(ds, categoryByPhase); err != nil {
		return nil, err
	}

	samples := make([]model.Sample, len(ds.Samples))
	copy(samples, ds.Samples)
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].AssignedPhase < samples[j].AssignedPhase
	})

	return &Catalog{
		meta:            ds.Metadata,
		samples:         samples,
		categoryByPhase: categoryByPhase,
	}, nil
}

func validateMetadata(meta model.DatasetMetadata) error {
	if err := requireSet("metadata.sampling_methods", meta.SamplingMethods, model.SamplingMethods()); err != nil {
		return err
	}
	if err := requireSet("metadata.categories", meta.Categories, model.Categories()); err != nil {
		return err
	}

	phases := make(map[int]string, len(meta.CFRiskMapping))
	for _, category := range model.Categories() {
		m, ok := meta.CFRiskMapping[category]
		if !ok {
			return util.NewDatasetError("metadata.cf_risk_mapping", "missing category %q", category)
		}
		if m.Phase < 1 || m.Phase > len(model.Categories()) {
			return util.NewDatasetError("metadata.cf_risk_mapping", "category %q has phase %d out of range", category, m.Phase)
		}
		if prev, dup := phases[m.Phase]; dup {
			return util.NewDatasetError("metadata.cf_risk_mapping", "categories %q and %q share phase %d", prev, category, m.Phase)
		}
		phases[m.Phase] = category
		if want := model.RiskByPhase(m.Phase); m.Risk != want {
			return util.NewDatasetError("metadata.cf_risk_mapping", "category %q risk %q does not match phase %d (want %q)", category, m.Risk, m.Phase, want)
		}
		if m.TargetSamples <= 0 {
			return util.NewDatasetError("metadata.cf_risk_mapping", "category %q has non-positive target_samples", category)
		}
	}
	return nil
}

func validateSamples(ds model.StudyDataset, categoryByPhase map[int]string) error {
	if len(ds.Samples) == 0 {
		return util.NewDatasetError("samples", "dataset contains no samples")
	}

	seen := make(map[string]bool, len(ds.Samples))
	perCategory := make(map[string]int, len(model.Categories()))

	for i, s := range ds.Samples {
		field := fmt.Sprintf("samples[%d]", i)

		if s.ImageID == "" {
			return util.NewDatasetError(field, "missing image_id")
		}
		if seen[s.ImageID] {
			return util.NewDatasetError(field, "duplicate image_id %q", s.ImageID)
		}
		seen[s.ImageID] = true

		meta, ok := ds.Metadata.CFRiskMapping[s.Category]
		if !ok {
			return util.NewDatasetError(field, "unknown category %q", s.Category)
		}
		if s.IntroducedPhase != meta.Phase {
			return util.NewDatasetError(field, "introduced_phase %d does not match category %q (phase %d)", s.IntroducedPhase, s.Category, meta.Phase)
		}
		if s.CFRisk != meta.Risk {
			return util.NewDatasetError(field, "cf_risk %q does not match category %q (risk %q)", s.CFRisk, s.Category, meta.Risk)
		}
		if s.AssignedPhase < s.IntroducedPhase || s.AssignedPhase > len(model.Categories()) {
			return util.NewDatasetError(field, "assigned_phase %d outside [%d, %d]", s.AssignedPhase, s.IntroducedPhase, len(model.Categories()))
		}
		if want := fmt.Sprintf("%s_on_%s", s.Category, categoryByPhase[s.AssignedPhase]); s.ModelCheckpoint != want {
			return util.NewDatasetError(field, "model_checkpoint %q does not match %q", s.ModelCheckpoint, want)
		}

		if len(s.Predictions) != len(model.SamplingMethods()) {
			return util.NewDatasetError(field, "predictions must contain exactly %d methods, got %d", len(model.SamplingMethods()), len(s.Predictions))
		}
		for _, method := range model.SamplingMethods() {
			caption, ok := s.Predictions[method]
			if !ok {
				return util.NewDatasetError(field, "predictions missing method %q", method)
			}
			if caption == "" {
				return util.NewDatasetError(field, "empty caption for method %q", method)
			}
		}

		perCategory[s.Category]++
	}

	for _, category := range model.Categories() {
		want := ds.Metadata.CFRiskMapping[category].TargetSamples
		if got := perCategory[category]; got != want {
			return util.NewDatasetError("samples", "category %q has %d samples, metadata declares %d", category, got, want)
		}
	}

	return nil
}

func requireSet(field string, got, want []string) error {
	if len(got) != len(want) {
		return util.NewDatasetError(field, "expected %d entries, got %d", len(want), len(got))
	}
	set := make(map[string]bool, len(got))
	for _, v := range got {
		set[v] = true
	}
	for _, v := range want {
		if !set[v] {
			return util.NewDatasetError(field, "missing %q", v)
		}
	}
	return nil
}

// Len 样本总数
func (c *Catalog) Len() int {
	return len(c.samples)
}

// Sample 按展示顺序取样本
func (c *Catalog) Sample(i int) (model.Sample, bool) {
	if i < 0 || i >= len(c.samples) {
		return model.Sample{}, false
	}
	return c.samples[i], true
}

// ByImageID 按图片ID取样本
func (c *Catalog) ByImageID(imageID string) (model.Sample, bool) {
	for _, s := range c.samples {
		if s.ImageID == imageID {
			return s, true
		}
	}
	return model.Sample{}, false
}

// Samples 返回展示顺序样本列表的副本
func (c *Catalog) Samples() []model.Sample {
	out := make([]model.Sample, len(c.samples))
	copy(out, c.samples)
	return out
}

func (c *Catalog) Metadata() model.DatasetMetadata {
	return c.meta
}

// CategoryOfPhase 某训练阶段引入的类目
func (c *Catalog) CategoryOfPhase(phase int) string {
	return c.categoryByPhase[phase]
}

// PhaseBoundaries 相邻样本 assigned_phase 发生变化的下标集合，
// 即阶段过渡提示出现的位置
func (c *Catalog) PhaseBoundaries() []int {
	var boundaries []int
	for i := 1; i < len(c.samples); i++ {
		if c.samples[i].AssignedPhase != c.samples[i-1].AssignedPhase {
			boundaries = append(boundaries, i)
		}
	}
	return boundaries
}
