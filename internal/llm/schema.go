package llm

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/studynotes/constants"
)

// templateFileSchema describes a prompt override file:
//
//	templates:
//	  summary:
//	    text: "Summarize: {text}"
//	    temperature: 0.5
//	    max_tokens: 800
func templateFileSchema() map[string]any {
	tpl := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"text":        map[string]any{"type": "string", "minLength": 1},
			"placeholder": map[string]any{"type": "string", "minLength": 1},
			"temperature": map[string]any{"type": "number", "minimum": 0.0, "maximum": 2.0},
			"max_tokens":  map[string]any{"type": "integer", "minimum": 1},
		},
	}
	kinds := map[string]any{}
	for _, k := range constants.AsStringSlice() {
		kinds[k] = tpl
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"templates"},
		"properties": map[string]any{
			"templates": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties":           kinds,
			},
		},
	}
}

type templateOverride struct {
	Text        string   `json:"text"`
	Placeholder string   `json:"placeholder"`
	Temperature *float64 `json:"temperature"`
	MaxTokens   *int     `json:"max_tokens"`
}

type templateFile struct {
	Templates map[string]templateOverride `json:"templates"`
}

// ValidateTemplateDocument checks a decoded JSON value against the template file schema.
func ValidateTemplateDocument(doc any) error {
	b, err := json.Marshal(templateFileSchema())
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	schema, err := jsonschema.CompileString("prompts.schema.json", string(b))
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("prompt file does not match schema: %w", err)
	}
	return nil
}

// ParseTemplates decodes a YAML prompt file and overlays it on base.
// Fields left out of an entry keep the base value.
func ParseTemplates(data []byte, base Templates) (Templates, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse prompt file: %w", err)
	}
	// round-trip through JSON so numbers and maps have the shapes the validator expects
	js, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("convert prompt file: %w", err)
	}
	var doc any
	if err := json.Unmarshal(js, &doc); err != nil {
		return nil, fmt.Errorf("convert prompt file: %w", err)
	}
	if err := ValidateTemplateDocument(doc); err != nil {
		return nil, err
	}

	var file templateFile
	if err := json.Unmarshal(js, &file); err != nil {
		return nil, fmt.Errorf("decode prompt file: %w", err)
	}

	out := make(Templates, len(base))
	for k, v := range base {
		out[k] = v
	}
	for name, override := range file.Templates {
		kind, _ := constants.Canonicalize(name)
		merged := out[kind]
		if override.Text != "" {
			merged.Text = override.Text
		}
		if override.Placeholder != "" {
			merged.Placeholder = override.Placeholder
		}
		if override.Temperature != nil {
			merged.Temperature = *override.Temperature
		}
		if override.MaxTokens != nil {
			merged.MaxTokens = *override.MaxTokens
		}
		ph := merged.Placeholder
		if ph == "" {
			ph = PlaceholderText
		}
		if !strings.Contains(merged.Text, ph) {
			return nil, fmt.Errorf("template %q does not contain placeholder %s", name, ph)
		}
		out[kind] = merged
	}
	return out, nil
}

// LoadTemplates reads the prompt file at path over the defaults. An empty path
// returns the defaults unchanged.
func LoadTemplates(path string) (Templates, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultTemplates(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt file: %w", err)
	}
	return ParseTemplates(data, DefaultTemplates())
}
