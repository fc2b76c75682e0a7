package translate

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/paragraf-app/core/internal/config"
	"go.uber.org/zap"
)

// Service is the single gateway to the LLM providers. Each call carries
// its own timeout; transient failures are retried with exponential
// backoff before giving up.
type Service struct {
	cfg *config.AppConfig
	log *zap.Logger

	backoffBase time.Duration
}

func NewService(cfg *config.AppConfig, log *zap.Logger) *Service {
	return &Service{cfg: cfg, log: log, backoffBase: time.Second}
}

// Translate produces a draft translation for one paragraph.
func (s *Service) Translate(ctx context.Context, text, instructions string, rules []string) (string, error) {
	provider := selectProvider(s.cfg.AI, s.cfg.AI.TranslateModel)
	if provider == nil {
		return "", ErrNoProvider
	}

	prompt := buildTranslatePrompt(instructions, rules, text)
	raw, err := s.callWithRetry(ctx, provider, translateSystemPrompt, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}

// ExtractRule distills a reviewer correction into one reusable style
// rule. A malformed reply is an error, never a silent fallback.
func (s *Service) ExtractRule(ctx context.Context, draft, correction string) (string, error) {
	provider := selectProvider(s.cfg.AI, s.cfg.AI.RuleModel)
	if provider == nil {
		return "", ErrNoProvider
	}

	raw, err := s.callWithRetry(ctx, provider, ruleSystemPrompt, buildRulePrompt(draft, correction))
	if err != nil {
		return "", err
	}

	var out struct {
		Rule string `json:"rule"`
	}
	if err := unmarshalStructuredJSON(raw, &out); err != nil {
		return "", &StructuredOutputError{Raw: raw}
	}
	rule := strings.TrimSpace(out.Rule)
	if rule == "" {
		return "", &StructuredOutputError{Raw: raw}
	}
	return rule, nil
}

func (s *Service) callWithRetry(ctx context.Context, provider *config.AIProvider, systemPrompt, prompt string) (string, error) {
	attempts := s.cfg.Translate.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	timeout := time.Duration(s.cfg.Translate.TimeoutSeconds) * time.Second

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			backoff := s.backoffBase << (attempt - 1)
			s.log.Warn("provider call retrying",
				zap.String("provider", provider.ID),
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", backoff),
				zap.Error(lastErr),
			)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", classifyProviderErr(ctx.Err())
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, timeout)
		raw, err := callProvider(callCtx, provider, systemPrompt, prompt, s.cfg.Translate.MaxOutputTokens)
		cancel()
		if err == nil {
			return raw, nil
		}

		lastErr = err
		var perr *ProviderError
		if !errors.As(err, &perr) || !perr.Transient {
			return "", err
		}
		if ctx.Err() != nil {
			return "", err
		}
	}
	return "", lastErr
}
