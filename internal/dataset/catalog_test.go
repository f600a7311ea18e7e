package dataset

import (
	"fmt"
	"testing"

	"alcie_study_backend/internal/model"
	"alcie_study_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validDataset 构造一个最小的合法数据集：每个类目一个样本，assigned_phase等于introduced_phase
func validDataset() model.StudyDataset {
	mapping := map[string]model.CategoryMeta{}
	for i, category := range model.Categories() {
		mapping[category] = model.CategoryMeta{
			Phase:         i + 1,
			Risk:          model.RiskByPhase(i + 1),
			TargetSamples: 1,
		}
	}

	var samples []model.Sample
	for i, category := range model.Categories() {
		phase := i + 1
		samples = append(samples, model.Sample{
			ImageID:         fmt.Sprintf("img_%03d", i),
			Category:        category,
			IntroducedPhase: phase,
			CFRisk:          model.RiskByPhase(phase),
			AssignedPhase:   phase,
			ModelCheckpoint: fmt.Sprintf("%s_on_%s", category, category),
			Predictions: map[string]string{
				model.MethodRandom:      "a plain caption",
				model.MethodDiversity:   "a detailed caption with attributes",
				model.MethodUncertainty: "a short caption",
			},
			DiversityScore: 0.5,
			IsDiverse:      true,
		})
	}

	return model.StudyDataset{
		Metadata: model.DatasetMetadata{
			SamplingMethods: model.SamplingMethods(),
			Categories:      model.Categories(),
			CFRiskMapping:   mapping,
		},
		Samples: samples,
	}
}

func TestNewValidDataset(t *testing.T) {
	catalog, err := New(validDataset())
	require.NoError(t, err)

	assert.Equal(t, 6, catalog.Len())
	assert.Equal(t, "accessories", catalog.CategoryOfPhase(1))
	assert.Equal(t, "tops", catalog.CategoryOfPhase(6))

	// 每个相邻样本都换阶段，边界应有5个
	assert.Len(t, catalog.PhaseBoundaries(), 5)
}

func TestCatalogOrderedByAssignedPhase(t *testing.T) {
	ds := validDataset()
	// 打乱输入顺序，目录必须按assigned_phase重排
	ds.Samples[0], ds.Samples[5] = ds.Samples[5], ds.Samples[0]

	catalog, err := New(ds)
	require.NoError(t, err)

	prev := 0
	for i := 0; i < catalog.Len(); i++ {
		s, ok := catalog.Sample(i)
		require.True(t, ok)
		assert.GreaterOrEqual(t, s.AssignedPhase, prev)
		prev = s.AssignedPhase
	}

	first, _ := catalog.Sample(0)
	assert.Equal(t, "accessories", first.Category)
}

func TestNewRejectsInvalidDatasets(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*model.StudyDataset)
	}{
		{"缺少采样方法", func(ds *model.StudyDataset) {
			ds.Metadata.SamplingMethods = []string{model.MethodRandom, model.MethodDiversity}
		}},
		{"阶段风险不匹配", func(ds *model.StudyDataset) {
			m := ds.Metadata.CFRiskMapping["accessories"]
			m.Risk = model.RiskLowest
			ds.Metadata.CFRiskMapping["accessories"] = m
		}},
		{"阶段重复", func(ds *model.StudyDataset) {
			m := ds.Metadata.CFRiskMapping["bottoms"]
			m.Phase = 1
			m.Risk = model.RiskByPhase(1)
			ds.Metadata.CFRiskMapping["bottoms"] = m
		}},
		{"重复image_id", func(ds *model.StudyDataset) {
			ds.Samples[1].ImageID = ds.Samples[0].ImageID
		}},
		{"未知类目", func(ds *model.StudyDataset) {
			ds.Samples[0].Category = "hats"
		}},
		{"assigned_phase早于introduced_phase", func(ds *model.StudyDataset) {
			ds.Samples[2].AssignedPhase = 1
		}},
		{"checkpoint与阶段不符", func(ds *model.StudyDataset) {
			ds.Samples[0].ModelCheckpoint = "accessories_on_tops"
		}},
		{"缺少一个方法的描述", func(ds *model.StudyDataset) {
			delete(ds.Samples[0].Predictions, model.MethodUncertainty)
		}},
		{"空描述", func(ds *model.StudyDataset) {
			ds.Samples[0].Predictions[model.MethodRandom] = ""
		}},
		{"样本数与target_samples不符", func(ds *model.StudyDataset) {
			ds.Samples = ds.Samples[:len(ds.Samples)-1]
		}},
		{"无样本", func(ds *model.StudyDataset) {
			ds.Samples = nil
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ds := validDataset()
			tc.mutate(&ds)

			_, err := New(ds)
			require.Error(t, err)
			assert.True(t, util.IsDatasetError(err), "expected DatasetError, got %T", err)
		})
	}
}

func TestLoadShippedDataset(t *testing.T) {
	catalog, err := Load("../../data/alcie_study_dataset.json")
	require.NoError(t, err)

	assert.Equal(t, 24, catalog.Len())

	// 阶段1只引入accessories，首个样本必然是它
	first, ok := catalog.Sample(0)
	require.True(t, ok)
	assert.Equal(t, "accessories", first.Category)
	assert.Equal(t, 1, first.AssignedPhase)

	// 六个阶段都有样本，阶段过渡共5次
	assert.Len(t, catalog.PhaseBoundaries(), 5)

	perCategory := map[string]int{}
	for _, s := range catalog.Samples() {
		perCategory[s.Category]++
	}
	assert.Equal(t, map[string]int{
		"accessories": 6,
		"bottoms":     5,
		"dresses":     4,
		"outerwear":   3,
		"shoes":       3,
		"tops":        3,
	}, perCategory)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("does_not_exist.json")
	require.Error(t, err)
	assert.True(t, util.IsDatasetError(err))
}
