package summarizer

import (
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// PromptConfig is the versioned prompt artifact. The compiled-in defaults can
// be replaced by a YAML file so prompt changes do not require a redeploy.
type PromptConfig struct {
	Name           string `yaml:"name"`
	SystemTemplate string `yaml:"system_template"`
	PromptTemplate string `yaml:"prompt_template"`
}

const defaultSystemTemplate = `You summarize tweets from members of Congress for push notifications.
Rules:
- The summary must be 6 to 17 words long, closer to 17 when possible.
- Use abbreviations to stay short.
- Include the names of any figures mentioned in the tweet.
- Neutral, factual tone only. No adjectives, hashtags, or emojis.
- Be strictly accurate to the source text. Do not add information.
- Output exactly two lines:
@{{.Author}}: <summary>
Link: {{.URL}}`

const defaultPromptTemplate = `Tweet from @{{.Author}}:
{{.Text}}`

func DefaultPromptConfig() PromptConfig {
	return PromptConfig{
		Name:           "tweet-summary",
		SystemTemplate: defaultSystemTemplate,
		PromptTemplate: defaultPromptTemplate,
	}
}

// LoadPromptConfig reads a prompt artifact from path. An empty path returns
// the compiled-in defaults.
func LoadPromptConfig(path string) (PromptConfig, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultPromptConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return PromptConfig{}, fmt.Errorf("read prompt config: %w", err)
	}
	cfg := DefaultPromptConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return PromptConfig{}, fmt.Errorf("parse prompt config: %w", err)
	}
	if cfg.SystemTemplate == "" || cfg.PromptTemplate == "" {
		return PromptConfig{}, fmt.Errorf("prompt config %q is missing templates", path)
	}
	return cfg, nil
}

func parseTemplates(cfg PromptConfig) (*template.Template, *template.Template, error) {
	name := cfg.Name
	if name == "" {
		name = "summary"
	}
	systemTmpl, err := template.New(name).Parse(cfg.SystemTemplate)
	if err != nil {
		return nil, nil, fmt.Errorf("parse system template: %w", err)
	}
	promptTmpl, err := template.New(name).Parse(cfg.PromptTemplate)
	if err != nil {
		return nil, nil, fmt.Errorf("parse prompt template: %w", err)
	}
	return systemTmpl, promptTmpl, nil
}

func executeTemplate(tmpl *template.Template, data any) (string, error) {
	builder := &strings.Builder{}
	if err := tmpl.Execute(builder, data); err != nil {
		return "", err
	}
	return builder.String(), nil
}
