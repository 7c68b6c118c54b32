package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/minios-linux/xckit/langmeta"
)

// ErrTranslationFailed is returned when the model reports that it could not
// translate the text.
var ErrTranslationFailed = errors.New("model reported a failed translation")

// AIService translates and reviews strings with a chat-style AI provider.
// It implements both Translator and Evaluator.
type AIService struct {
	// Provider is the AI provider configuration.
	Provider Provider
	// SourceLanguage is the language of the texts sent for translation.
	SourceLanguage string
	// MaxRetries bounds the provider-level retries on 429 and 5xx responses.
	MaxRetries int
	// Verbose logs every HTTP request.
	Verbose bool
}

// NewAIService returns a service for prov translating from sourceLanguage.
func NewAIService(prov Provider, sourceLanguage string) *AIService {
	return &AIService{Provider: prov, SourceLanguage: sourceLanguage, MaxRetries: 3}
}

func (s *AIService) vars(targetLanguage, comment string) promptVars {
	source := s.SourceLanguage
	if source == "" {
		source = "en"
	}
	return promptVars{
		targetLang: langmeta.EnglishName(targetLanguage),
		targetCode: targetLanguage,
		sourceLang: langmeta.EnglishName(source),
		comment:    comment,
	}
}

// Translate translates text into targetLanguage. Text without any letter is
// returned unchanged without calling the provider.
func (s *AIService) Translate(ctx context.Context, text, targetLanguage, comment string) (string, error) {
	if !hasLetters(text) {
		return text, nil
	}

	v := s.vars(targetLanguage, comment)
	v.text = text
	prompt := renderPrompt(getPrompt(PromptTranslate), v)

	content, err := callProvider(ctx, s.Provider, systemPrompt, prompt, s.MaxRetries, s.Verbose)
	if err != nil {
		return "", err
	}

	var resp struct {
		Status      string `json:"status"`
		Translation string `json:"translation"`
	}
	if err := parseJSONObject(content, &resp); err != nil {
		return "", err
	}
	if resp.Status != "" && resp.Status != "success" {
		return "", ErrTranslationFailed
	}
	if resp.Translation == "" {
		return "", fmt.Errorf("empty translation in response: %s", truncate(content, 300))
	}
	return resp.Translation, nil
}

// EvaluateQuality rates translation as a rendering of text in targetLanguage.
func (s *AIService) EvaluateQuality(ctx context.Context, text, translation, targetLanguage, comment string) (Evaluation, error) {
	if (text == "") != (translation == "") {
		return Evaluation{Quality: QualityBad, Explanation: "only one of source and translation is empty"}, nil
	}
	if !hasLetters(text) {
		if text == translation {
			return Evaluation{Quality: QualityGood}, nil
		}
		return Evaluation{Quality: QualityBad, Explanation: "text without letters must be kept as is"}, nil
	}

	v := s.vars(targetLanguage, comment)
	v.text = text
	v.translation = translation
	prompt := renderPrompt(getPrompt(PromptEvaluate), v)

	content, err := callProvider(ctx, s.Provider, systemPrompt, prompt, s.MaxRetries, s.Verbose)
	if err != nil {
		return Evaluation{}, err
	}

	var resp struct {
		Quality     string `json:"quality"`
		Explanation string `json:"explanation"`
	}
	if err := parseJSONObject(content, &resp); err != nil {
		return Evaluation{}, err
	}
	q := Quality(strings.ToLower(strings.TrimSpace(resp.Quality)))
	switch q {
	case QualityGood, QualityPoor, QualityBad:
	default:
		return Evaluation{}, fmt.Errorf("unknown quality %q in response", resp.Quality)
	}
	return Evaluation{Quality: q, Explanation: resp.Explanation}, nil
}

var markdownCodeBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// parseJSONObject extracts the JSON object from a model answer, tolerating a
// surrounding markdown code block or prose.
func parseJSONObject(content string, v any) error {
	content = strings.TrimSpace(content)

	if m := markdownCodeBlock.FindStringSubmatch(content); len(m) > 1 {
		content = m[1]
	}

	startIdx := strings.Index(content, "{")
	endIdx := strings.LastIndex(content, "}")
	if startIdx >= 0 && endIdx > startIdx {
		content = content[startIdx : endIdx+1]
	}

	if err := json.Unmarshal([]byte(content), v); err != nil {
		return fmt.Errorf("failed to parse response as JSON object: %w\nResponse: %s", err, truncate(content, 300))
	}
	return nil
}

func hasLetters(s string) bool {
	return strings.IndexFunc(s, unicode.IsLetter) >= 0
}
