package model

// 三种采样策略，每种为同一张图片生成一条候选描述
const (
	MethodRandom      = "random"
	MethodDiversity   = "diversity"
	MethodUncertainty = "uncertainty"
)

// SamplingMethods 返回固定顺序的采样方法列表
func SamplingMethods() []string {
	return []string{MethodRandom, MethodDiversity, MethodUncertainty}
}

// 六个服饰类目，按训练阶段引入顺序排列
const (
	CategoryAccessories = "accessories"
	CategoryBottoms     = "bottoms"
	CategoryDresses     = "dresses"
	CategoryOuterwear   = "outerwear"
	CategoryShoes       = "shoes"
	CategoryTops        = "tops"
)

func Categories() []string {
	return []string{
		CategoryAccessories,
		CategoryBottoms,
		CategoryDresses,
		CategoryOuterwear,
		CategoryShoes,
		CategoryTops,
	}
}

// 灾难性遗忘风险等级，随引入阶段单调递减
const (
	RiskHighest  = "highest"
	RiskVeryHigh = "very_high"
	RiskHigh     = "high"
	RiskMedium   = "medium"
	RiskLow      = "low"
	RiskLowest   = "lowest"
)

// RiskByPhase 阶段(1-6)到风险等级的固定映射
func RiskByPhase(phase int) string {
	risks := []string{RiskHighest, RiskVeryHigh, RiskHigh, RiskMedium, RiskLow, RiskLowest}
	if phase < 1 || phase > len(risks) {
		return ""
	}
	return risks[phase-1]
}

// 每张图片的评分维度
const (
	CriterionRelevance       = "relevance"
	CriterionFluency         = "fluency"
	CriterionDescriptiveness = "descriptiveness"
	CriterionNovelty         = "novelty"
)

func RatingCriteria() []string {
	return []string{
		CriterionRelevance,
		CriterionFluency,
		CriterionDescriptiveness,
		CriterionNovelty,
	}
}

// CategoryMeta 数据集元信息中单个类目的描述
type CategoryMeta struct {
	Phase         int    `json:"phase"`
	Risk          string `json:"risk"`
	TargetSamples int    `json:"target_samples"`
}

// DatasetMetadata 数据集顶层元信息
type DatasetMetadata struct {
	SamplingMethods []string                `json:"sampling_methods"`
	Categories      []string                `json:"categories"`
	CFRiskMapping   map[string]CategoryMeta `json:"cf_risk_mapping"`
}

// Sample 一条待评估的图片-描述组合，加载后只读
type Sample struct {
	ImageID         string            `json:"image_id"`
	Category        string            `json:"category"`
	IntroducedPhase int               `json:"introduced_phase"`
	CFRisk          string            `json:"cf_risk"`
	AssignedPhase   int               `json:"assigned_phase"`
	ModelCheckpoint string            `json:"model_checkpoint"`
	Predictions     map[string]string `json:"predictions"`
	DiversityScore  float64           `json:"diversity_score"`
	IsDiverse       bool              `json:"is_diverse"`
}

// StudyDataset 数据集文件的顶层结构
type StudyDataset struct {
	Metadata DatasetMetadata `json:"metadata"`
	Samples  []Sample        `json:"samples"`
}
