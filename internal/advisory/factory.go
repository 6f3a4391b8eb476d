package advisory

import (
	"context"
	"fmt"

	"github.com/kanna-karuppasamy/solarwaterflow/internal/config"
)

// NewCompleter builds the transport for the configured provider.
func NewCompleter(ctx context.Context, cfg config.AdvisoryConfig, apiKey string) (Completer, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI, "":
		return NewOpenAICompleter(apiKey, cfg.BaseURL, cfg.Model, cfg.MaxTokens, nil), nil
	case config.ProviderBedrock:
		return NewBedrockCompleter(ctx, cfg.AWSRegion, cfg.Model, cfg.MaxTokens)
	case config.ProviderGemini:
		return NewGeminiCompleter(ctx, apiKey, cfg.Model, cfg.MaxTokens)
	default:
		return nil, fmt.Errorf("unknown advisory provider %q", cfg.Provider)
	}
}

// OptionsFrom maps configuration onto client options.
func OptionsFrom(adv config.AdvisoryConfig, variant config.VariantConfig) Options {
	return Options{
		Timeout:         adv.Timeout,
		ExtendedMetrics: variant.ExtendedMetrics,
		Fallback:        adv.Fallback,
		MaxPromptChars:  adv.MaxPromptChars,
	}
}
