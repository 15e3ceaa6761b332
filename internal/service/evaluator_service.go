package service

import (
	"math"
	"regexp"
	"strings"

	"mockmate/internal/model"
)

// Pre-compiled patterns used by the evaluator.
var (
	sentencePattern   = regexp.MustCompile(`[.!?]+`)
	examplesPattern   = regexp.MustCompile(`(?i)\b(example|instance|project|case\s+study)\b`)
	metricsPattern    = regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?%?|\d+\s*(?:years?|yrs?|\+|\$)|[$€£¥]\d+`)
	actionVerbPattern = regexp.MustCompile(`(?i)\b(developed|created|built|managed|led|improved|optimized|implemented|delivered)\b`)

	questionYourselfPattern  = regexp.MustCompile(`(?i)\byourself|\babout\s+you\b|introduce|background\b`)
	questionProjectPattern   = regexp.MustCompile(`(?i)\bproject\b|initiative|assignment`)
	questionTeamPattern      = regexp.MustCompile(`(?i)\bteam\b|collaborat|work\s+with|colleagues`)
	questionTechnicalPattern = regexp.MustCompile(`(?i)\btechnical\b|tech|code|programming|software|algorithm`)
)

const emptyAnswerFeedback = "Please provide an answer to receive feedback."

// Length-tier feedback, checked against ascending word-count thresholds.
var lengthFeedback = []struct {
	threshold int
	feedback  string
}{
	{15, "Good start! Try to elaborate with specific examples."},
	{30, "Solid answer! Consider adding more details."},
	{50, "Outstanding! Comprehensive and detailed answer. Great use of action-oriented language!"},
	{math.MaxInt, "Outstanding! Comprehensive and detailed answer."},
}

var questionFeedback = []struct {
	pattern  *regexp.Regexp
	feedback string
}{
	{questionYourselfPattern, "Excellent introduction! You clearly highlighted key strengths and experience."},
	{questionProjectPattern, "Strong project explanation! You demonstrated problem-solving skills effectively."},
	{questionTeamPattern, "Great teamwork example! You showed collaboration and leadership qualities."},
	{questionTechnicalPattern, "Solid technical depth! You explained complex concepts clearly."},
}

var (
	confidentWords = []string{"achieved", "successfully", "led", "managed", "improved", "created"}
	hesitantWords  = []string{"maybe", "perhaps", "sorry", "just", "actually"}

	positiveToneWords = []string{"excited", "passionate", "love", "great", "excellent", "amazing"}
	negativeToneWords = []string{"challenging", "difficult", "stress", "problem", "issue"}
)

// EvaluatorService scores spoken answers with keyword heuristics. All methods
// are pure functions of their inputs.
type EvaluatorService struct{}

// NewEvaluatorService creates a new evaluator service.
func NewEvaluatorService() *EvaluatorService {
	return &EvaluatorService{}
}

// Evaluate produces feedback plus performance and confidence scores for one
// answer. An empty or whitespace-only answer yields the fixed prompt message
// and zero scores.
func (s *EvaluatorService) Evaluate(answer, question string, durationSeconds int) model.Evaluation {
	if strings.TrimSpace(answer) == "" {
		return model.Evaluation{Feedback: emptyAnswerFeedback}
	}

	return model.Evaluation{
		Feedback:         s.GenerateFeedback(answer, question),
		PerformanceScore: s.PerformanceScore(answer, durationSeconds),
		ConfidenceLevel:  s.ConfidenceLevel(answer),
	}
}

// Analyze extracts structural signals from an answer.
func (s *EvaluatorService) Analyze(answer string) model.ContentAnalysis {
	trimmed := strings.TrimSpace(answer)
	words := strings.Fields(trimmed)

	sentenceCount := 0
	for _, part := range sentencePattern.Split(trimmed, -1) {
		if strings.TrimSpace(part) != "" {
			sentenceCount++
		}
	}
	if sentenceCount == 0 {
		sentenceCount = 1
	}

	return model.ContentAnalysis{
		WordCount:         len(words),
		SentenceCount:     sentenceCount,
		AvgSentenceLength: float64(len(words)) / float64(sentenceCount),
		HasExamples:       examplesPattern.MatchString(trimmed),
		HasMetrics:        metricsPattern.MatchString(trimmed),
		HasActionVerbs:    actionVerbPattern.MatchString(trimmed),
	}
}

// GenerateFeedback builds the feedback string: a question-specific template
// when the question matches a known topical pattern, otherwise a length-tier
// message augmented with content hints.
func (s *EvaluatorService) GenerateFeedback(answer, question string) string {
	if strings.TrimSpace(answer) == "" {
		return emptyAnswerFeedback
	}

	for _, qf := range questionFeedback {
		if question != "" && qf.pattern.MatchString(question) {
			return qf.feedback
		}
	}

	analysis := s.Analyze(answer)

	feedback := lengthFeedback[len(lengthFeedback)-1].feedback
	for _, tier := range lengthFeedback {
		if analysis.WordCount < tier.threshold {
			feedback = tier.feedback
			break
		}
	}

	if !analysis.HasExamples {
		feedback += " Try adding real-world examples."
	}
	if !analysis.HasMetrics {
		feedback += " Include numbers to quantify achievements."
	}
	if analysis.HasActionVerbs {
		feedback += " Great use of action-oriented language!"
	}
	return feedback
}

// PerformanceScore computes the 0-100 delivery score: two points per word,
// a pace bonus of up to 30 and a content bonus of 10 or 20.
func (s *EvaluatorService) PerformanceScore(answer string, durationSeconds int) float64 {
	wordCount := len(strings.Fields(answer))
	if wordCount == 0 {
		return 0
	}

	base := math.Min(float64(wordCount)*2, 100)

	pace := 0.0
	if durationSeconds > 0 {
		pace = math.Min(float64(wordCount)/float64(durationSeconds)*10, 30)
	}

	content := 10.0
	if len(answer) > 100 {
		content = 20
	}

	return math.Min(base+pace+content, 100)
}

// ConfidenceLevel starts at 50, adds 10 per confident keyword and subtracts 15
// per hesitant keyword, clamped to [0,100].
func (s *EvaluatorService) ConfidenceLevel(answer string) int {
	lower := strings.ToLower(answer)

	level := 50
	for _, w := range confidentWords {
		if strings.Contains(lower, w) {
			level += 10
		}
	}
	for _, w := range hesitantWords {
		if strings.Contains(lower, w) {
			level -= 15
		}
	}

	if level < 0 {
		return 0
	}
	if level > 100 {
		return 100
	}
	return level
}

// AnalyzeTone classifies the emotional tone of a transcript. The neutral tone
// is reserved for empty input.
func (s *EvaluatorService) AnalyzeTone(transcript string) model.EmotionalTone {
	if strings.TrimSpace(transcript) == "" {
		return model.ToneNeutral
	}

	lower := strings.ToLower(transcript)
	positive, negative := 0, 0
	for _, w := range positiveToneWords {
		if strings.Contains(lower, w) {
			positive++
		}
	}
	for _, w := range negativeToneWords {
		if strings.Contains(lower, w) {
			negative++
		}
	}

	switch {
	case positive > negative+2:
		return model.TonePositive
	case negative > positive+2:
		return model.ToneConcerned
	default:
		return model.ToneProfessional
	}
}

// SpeechRate returns words per minute for a transcript spoken over the given
// duration. A zero duration counts as one second.
func (s *EvaluatorService) SpeechRate(transcript string, durationSeconds int) int {
	words := len(strings.Fields(transcript))
	if durationSeconds <= 0 {
		durationSeconds = 1
	}
	return int(math.Round(float64(words) / (float64(durationSeconds) / 60)))
}
