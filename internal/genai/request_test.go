package genai

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Senjuv/healt-tracker/internal/models"
)

func weightAt(t *testing.T, day string, kg float64) models.WeightEntry {
	t.Helper()
	ts, err := time.Parse("2006-01-02", day)
	require.NoError(t, err)
	return models.WeightEntry{Weight: kg, Timestamp: ts}
}

func TestParseTask(t *testing.T) {
	for _, slug := range []string{"meal-plan", "photo-analysis", "symptom-check", "progress-advice", "skin-analysis"} {
		task, err := ParseTask(slug)
		require.NoError(t, err, slug)
		assert.Equal(t, slug, task.String())
	}

	_, err := ParseTask("palm-reading")
	assert.Error(t, err)
}

func TestBuildRequest_MealPlan(t *testing.T) {
	req, err := BuildRequest(TaskMealPlan, BuildInput{Text: "perder 5 kg"})
	require.NoError(t, err)

	require.NotNil(t, req.SystemInstruction)
	require.Len(t, req.Contents, 1)
	// System instruction and user content stay separate
	assert.NotContains(t, req.Contents[0].Parts[0].Text, "nutricionista")
	assert.Contains(t, req.Contents[0].Parts[0].Text, "perder 5 kg")
	assert.Empty(t, req.Tools)
}

func TestBuildRequest_PhotoAnalysisRequiresImage(t *testing.T) {
	_, err := BuildRequest(TaskPhotoAnalysis, BuildInput{Text: "mi comida"})
	assert.ErrorIs(t, err, ErrImageRequired)
}

func TestBuildRequest_PhotoAnalysisAttachesImage(t *testing.T) {
	img := &InlineData{MimeType: "image/jpeg", Data: "aGVsbG8="}
	req, err := BuildRequest(TaskPhotoAnalysis, BuildInput{Image: img})
	require.NoError(t, err)

	require.Len(t, req.Contents, 1)
	parts := req.Contents[0].Parts
	require.Len(t, parts, 2)
	assert.NotEmpty(t, parts[0].Text)
	require.NotNil(t, parts[1].InlineData)
	assert.Equal(t, "image/jpeg", parts[1].InlineData.MimeType)
	assert.Equal(t, "aGVsbG8=", parts[1].InlineData.Data)
}

func TestBuildRequest_SymptomCheckHasDisclaimerAndTool(t *testing.T) {
	req, err := BuildRequest(TaskSymptomCheck, BuildInput{Text: "dolor de cabeza"})
	require.NoError(t, err)

	require.NotNil(t, req.SystemInstruction)
	assert.Contains(t, req.SystemInstruction.Parts[0].Text, "no sustituye el consejo médico profesional")
	require.Len(t, req.Tools, 1)
	assert.NotNil(t, req.Tools[0].GoogleSearch)
}

func TestBuildRequest_ProgressAdviceNeedsHistory(t *testing.T) {
	_, err := BuildRequest(TaskProgressAdvice, BuildInput{})
	assert.ErrorIs(t, err, ErrInsufficientHistory)

	_, err = BuildRequest(TaskProgressAdvice, BuildInput{
		History: []models.WeightEntry{weightAt(t, "2026-01-01", 80)},
	})
	assert.ErrorIs(t, err, ErrInsufficientHistory)
}

func TestBuildRequest_ProgressAdviceSummarizesHistory(t *testing.T) {
	// Delivered out of order on purpose; the builder sorts by timestamp.
	req, err := BuildRequest(TaskProgressAdvice, BuildInput{
		History: []models.WeightEntry{
			weightAt(t, "2026-02-01", 78),
			weightAt(t, "2026-01-01", 80),
			weightAt(t, "2026-03-01", 76),
		},
	})
	require.NoError(t, err)

	prompt := req.Contents[0].Parts[0].Text
	assert.Contains(t, prompt, "initial 80, latest 76, change -4")
	// Oldest entry listed before the newest
	assert.Less(t, strings.Index(prompt, "2026-01-01"), strings.Index(prompt, "2026-03-01"))
}

func TestBuildRequest_SkinAnalysis(t *testing.T) {
	_, err := BuildRequest(TaskSkinAnalysis, BuildInput{Text: "piel seca"})
	assert.ErrorIs(t, err, ErrImageRequired)

	img := &InlineData{MimeType: "image/png", Data: "Zm9v"}
	req, err := BuildRequest(TaskSkinAnalysis, BuildInput{Text: "piel seca", Image: img})
	require.NoError(t, err)

	assert.Contains(t, req.SystemInstruction.Parts[0].Text, "dermatólogo")
	assert.Contains(t, req.Contents[0].Parts[0].Text, "piel seca")
	require.Len(t, req.Contents[0].Parts, 2)
	assert.Equal(t, img, req.Contents[0].Parts[1].InlineData)
}
