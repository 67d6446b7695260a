package llm

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	defaultOpenAIModel = "gpt-4o-mini"
	defaultOllamaModel = "mistral"
	defaultOllamaURL   = "http://localhost:11434"
)

// statusCodeRe pulls the HTTP status out of langchaingo's error strings.
var statusCodeRe = regexp.MustCompile(`status code:? (\d{3})`)

// LangChain generates through an OpenAI-compatible endpoint or a local
// Ollama server.
type LangChain struct {
	model       llms.Model
	provider    string
	temperature float64
	cfg         Config
}

// NewLangChain builds the openai or ollama backend named by cfg.Provider.
func NewLangChain(cfg Config) (*LangChain, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = ProviderOpenAI
	}

	var (
		model llms.Model
		err   error
	)
	switch provider {
	case ProviderOpenAI:
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, eris.New("llm: openai api key is required")
		}
		name := cfg.Model
		if name == "" {
			name = defaultOpenAIModel
		}
		opts := []openai.Option{
			openai.WithToken(strings.TrimSpace(cfg.APIKey)),
			openai.WithModel(name),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		model, err = openai.New(opts...)
	case ProviderOllama:
		name := cfg.Model
		if name == "" {
			name = defaultOllamaModel
		}
		url := cfg.BaseURL
		if url == "" {
			url = defaultOllamaURL
		}
		model, err = ollama.New(ollama.WithModel(name), ollama.WithServerURL(url))
	default:
		return nil, eris.Errorf("llm: langchain does not support provider %q", provider)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "llm: initialize %s", provider)
	}

	return &LangChain{
		model:       model,
		provider:    provider,
		temperature: cfg.Temperature,
		cfg:         cfg,
	}, nil
}

// Name implements the backend name used in logs and metrics.
func (l *LangChain) Name() string { return l.provider }

// Generate sends one prompt as a single human message.
func (l *LangChain) Generate(ctx context.Context, prompt string) (string, error) {
	if l.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.cfg.Timeout)
		defer cancel()
	}

	text, err := llms.GenerateFromSinglePrompt(ctx, l.model, prompt, llms.WithTemperature(l.temperature))
	if err != nil {
		return "", eris.Wrapf(classifyLangChainErr(err), "llm: %s generate", l.provider)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", eris.Errorf("llm: %s returned empty response", l.provider)
	}
	return text, nil
}

func classifyLangChainErr(err error) error {
	if m := statusCodeRe.FindStringSubmatch(err.Error()); m != nil {
		code, _ := strconv.Atoi(m[1])
		if code == 429 || code/100 == 5 {
			return &TransientError{Err: err}
		}
		return err
	}
	return classifyNetErr(err)
}
