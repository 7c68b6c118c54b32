package translate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/minios-linux/xckit/settings"
)

// ---------------------------------------------------------------------------
// System Prompts Configuration
// ---------------------------------------------------------------------------

// Prompt names used in prompts.json.
const (
	PromptTranslate = "translate"
	PromptEvaluate  = "evaluate"
)

// PromptsConfig holds the prompts loaded from prompts.json.
type PromptsConfig struct {
	Prompts map[string]string `json:"prompts"`
}

// globalPrompts holds the loaded prompts configuration
var globalPrompts *PromptsConfig

// LoadPromptsFromFile loads prompts from a JSON file. A missing file is not
// an error; the built-in prompts are used instead.
func LoadPromptsFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read prompts file: %w", err)
	}

	var config PromptsConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("failed to parse prompts file: %w", err)
	}

	globalPrompts = &config
	return nil
}

func defaultPromptsMap() map[string]string {
	return map[string]string{
		PromptTranslate: TranslatePrompt,
		PromptEvaluate:  EvaluatePrompt,
	}
}

// createDefaultPromptsFile writes the built-in prompts to path.
func createDefaultPromptsFile(path string) error {
	config := PromptsConfig{Prompts: defaultPromptsMap()}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling default prompts: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating prompts directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing default prompts file: %w", err)
	}
	return nil
}

// LoadPromptsFromDefaultLocations loads prompts from the user data directory
// ($XDG_DATA_HOME/xckit/prompts.json), creating the file with the built-in
// prompts first if it does not exist. It returns the path it loaded.
func LoadPromptsFromDefaultLocations() (string, error) {
	path, err := settings.PromptsFilePath()
	if err != nil {
		return "", fmt.Errorf("cannot determine prompts file path: %w", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := createDefaultPromptsFile(path); err != nil {
			return "", fmt.Errorf("creating default prompts file: %w", err)
		}
	}

	if err := LoadPromptsFromFile(path); err != nil {
		return "", err
	}
	return path, nil
}

// getPrompt returns the named prompt, preferring a loaded override.
func getPrompt(name string) string {
	if globalPrompts != nil {
		if prompt, ok := globalPrompts.Prompts[name]; ok && prompt != "" {
			return prompt
		}
	}
	return defaultPromptsMap()[name]
}

// ---------------------------------------------------------------------------
// Built-in prompts
// ---------------------------------------------------------------------------

const systemPrompt = "You are a helpful assistant designed to output JSON."

// TranslatePrompt is the user prompt for a single string. Placeholders:
// {{targetLang}}, {{targetCode}}, {{sourceLang}}, {{context}}, {{text}}.
const TranslatePrompt = `Translate the source text within the 6 backticks (` + "``````" + `) into {{targetLang}} (language code: {{targetCode}}).

Instructions:
- Read the source text exactly as it appears within the 6 backticks.
- Do not include the 6 backticks in the translation.
- Answer with a JSON object: {"status": "success" or "failure", "translation": "..."}.

Requirements:
- Any argument placeholders (%arg, %@, %lld, %1$@, %#@arg1@, etc) in the source must still be present in the translation.
- Any leading or trailing whitespace in the source must be preserved in the translation.
- Keep the tone and length appropriate for an app user interface.
{{context}}
Source ({{sourceLang}}): ` + "``````" + `{{text}}` + "``````"

// EvaluatePrompt is the user prompt for a quality review. Placeholders:
// {{targetLang}}, {{targetCode}}, {{sourceLang}}, {{context}}, {{text}},
// {{translation}}.
const EvaluatePrompt = `Evaluate the quality of the following translation by categorizing it as good, poor or bad.
Also provide a brief explanation of how the quality was decided.

Requirements of a good translation:
- Be in the correct language: {{targetLang}} (language code: {{targetCode}}).
- If the source text contains argument placeholders (%arg, %@, %lld, etc), they must be present in the translated text.
- Any leading or trailing whitespace should be matched in the translation.

Other instructions:
- Read the source string and translated string exactly as they appear within the 6 backticks (` + "``````" + `).
- Answer with a JSON object: {"quality": "good" or "poor" or "bad", "explanation": "..."}.
{{context}}
Source ({{sourceLang}}): ` + "``````" + `{{text}}` + "``````" + `
Translation: ` + "``````" + `{{translation}}` + "``````"

// promptVars fills the placeholders of a prompt.
type promptVars struct {
	targetLang  string
	targetCode  string
	sourceLang  string
	comment     string
	text        string
	translation string
}

func renderPrompt(tmpl string, v promptVars) string {
	context := ""
	if v.comment != "" {
		context = "- Take into account the following context: " + v.comment + "\n"
	}
	r := strings.NewReplacer(
		"{{targetLang}}", v.targetLang,
		"{{targetCode}}", v.targetCode,
		"{{sourceLang}}", v.sourceLang,
		"{{context}}", context,
		"{{text}}", v.text,
		"{{translation}}", v.translation,
	)
	return r.Replace(tmpl)
}
