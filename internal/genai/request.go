package genai

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Senjuv/healt-tracker/internal/models"
)

// Task selects the generation behavior. The enumeration is closed: adding a
// task means adding a constant, its persona and a BuildRequest arm, all
// checked at compile time.
type Task int

const (
	TaskMealPlan Task = iota
	TaskPhotoAnalysis
	TaskSymptomCheck
	TaskProgressAdvice
	TaskSkinAnalysis
)

var taskNames = map[Task]string{
	TaskMealPlan:       "meal-plan",
	TaskPhotoAnalysis:  "photo-analysis",
	TaskSymptomCheck:   "symptom-check",
	TaskProgressAdvice: "progress-advice",
	TaskSkinAnalysis:   "skin-analysis",
}

func (t Task) String() string {
	if name, ok := taskNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseTask maps a URL slug to its Task. Unknown slugs are an error, not a
// default.
func ParseTask(s string) (Task, error) {
	for t, name := range taskNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown task %q", s)
}

// Validation errors reported before any network call.
var (
	ErrImageRequired       = errors.New("an image is required for this analysis")
	ErrInsufficientHistory = errors.New("at least 2 weight entries are required for progress advice")
)

// BuildInput carries the UI-collected material for one generation request.
type BuildInput struct {
	Text    string
	Image   *InlineData
	History []models.WeightEntry // only read by TaskProgressAdvice
}

// Fixed persona instructions. The symptom and skin personas always carry
// their disclaimers.
const (
	mealPlanPersona = "Eres un nutricionista experto. Elabora un plan de comidas realista y equilibrado " +
		"adaptado al objetivo del usuario. Si el usuario indica ingredientes disponibles o restricciones, " +
		"limítate a ellos. Responde en español, con cantidades aproximadas por comida."

	photoAnalysisPersona = "Eres un experto en estimación nutricional a partir de fotografías de comida. " +
		"Identifica los alimentos visibles y estima calorías y macronutrientes del plato completo. " +
		"Indica siempre que los valores son aproximados."

	symptomCheckPersona = "Eres un asistente de bienestar general. Ofrece orientación informativa sobre " +
		"los síntomas descritos y hábitos que pueden ayudar. IMPORTANTE: no eres un médico; incluye siempre " +
		"la aclaración de que esta información no sustituye el consejo médico profesional y que ante síntomas " +
		"graves o persistentes debe consultarse a un profesional de la salud."

	progressAdvicePersona = "Eres un entrenador personal motivador. Analiza la evolución del peso del " +
		"usuario y ofrece consejos concretos y alcanzables para la siguiente etapa, manteniendo un tono " +
		"positivo y realista."

	skinAnalysisPersona = "Eres un asesor cosmético de cuidado de la piel. Analiza la fotografía facial y " +
		"las notas del usuario y sugiere una rutina de cuidado cosmético. Tu análisis NO es un diagnóstico " +
		"médico: añade siempre al final la aclaración de que para cualquier afección cutánea debe acudirse " +
		"a un dermatólogo."

	photoAnalysisPrompt = "Analiza esta foto de comida y estima su contenido nutricional."
	skinAnalysisPrompt  = "Analiza esta foto de mi piel."
)

// BuildRequest assembles the full request payload for a task. Validation
// failures (missing image, insufficient history) are returned before any
// network call is made.
func BuildRequest(task Task, in BuildInput) (*GenerateRequest, error) {
	switch task {
	case TaskMealPlan:
		return textRequest(mealPlanPersona, "Mi objetivo: "+in.Text), nil

	case TaskPhotoAnalysis:
		if in.Image == nil {
			return nil, ErrImageRequired
		}
		req := textRequest(photoAnalysisPersona, photoAnalysisPrompt)
		attachImage(req, in.Image)
		return req, nil

	case TaskSymptomCheck:
		req := textRequest(symptomCheckPersona, "Mis síntomas: "+in.Text)
		req.Tools = []Tool{{GoogleSearch: &struct{}{}}}
		return req, nil

	case TaskProgressAdvice:
		summary, ok := models.SummarizeProgress(in.History)
		if !ok {
			return nil, ErrInsufficientHistory
		}
		return textRequest(progressAdvicePersona, historyPrompt(in.History, summary)), nil

	case TaskSkinAnalysis:
		if in.Image == nil {
			return nil, ErrImageRequired
		}
		prompt := skinAnalysisPrompt
		if strings.TrimSpace(in.Text) != "" {
			prompt += " Notas: " + in.Text
		}
		req := textRequest(skinAnalysisPersona, prompt)
		attachImage(req, in.Image)
		return req, nil
	}
	return nil, fmt.Errorf("unknown task %d", task)
}

func textRequest(persona, userText string) *GenerateRequest {
	return &GenerateRequest{
		SystemInstruction: &Content{Parts: []Part{{Text: persona}}},
		Contents:          []Content{{Parts: []Part{{Text: userText}}}},
	}
}

// attachImage adds the image as a distinct part after the text, preserving
// its encoding type.
func attachImage(req *GenerateRequest, img *InlineData) {
	parts := req.Contents[0].Parts
	req.Contents[0].Parts = append(parts, Part{InlineData: img})
}

func historyPrompt(history []models.WeightEntry, summary models.ProgressSummary) string {
	sorted := make([]models.WeightEntry, len(history))
	copy(sorted, history)
	models.SortWeightsAscending(sorted)

	var b strings.Builder
	b.WriteString("Mi registro de peso (kg), del más antiguo al más reciente:\n")
	for _, e := range sorted {
		b.WriteString(e.Timestamp.Format("2006-01-02"))
		b.WriteString(": ")
		b.WriteString(strconv.FormatFloat(e.Weight, 'f', -1, 64))
		b.WriteString("\n")
	}
	b.WriteString("Resumen: ")
	b.WriteString(summary.String())
	return b.String()
}
