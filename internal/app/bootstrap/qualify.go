package bootstrap

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/jkazadi/portfolio-ai-platform/internal/config"
	"github.com/jkazadi/portfolio-ai-platform/internal/observability/metrics"
	"github.com/jkazadi/portfolio-ai-platform/internal/qualify"
	"github.com/jkazadi/portfolio-ai-platform/pkg/logging"
)

// BuildLLMClient wires the text-generation capability from config: Gemini
// as primary, Bedrock as fallback when both are configured. Returns nil
// when neither provider is set, which routes every call through the
// deterministic fallbacks.
func BuildLLMClient(ctx context.Context, cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) qualify.LLMClient {
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var gemini qualify.LLMClient
	if cfg.GeminiAPIKey != "" {
		client, err := qualify.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error("failed to initialize Gemini client", "error", err)
		} else {
			gemini = client
			logger.Info("Gemini capability configured", "model", cfg.GeminiModel)
		}
	}

	var bedrock qualify.LLMClient
	if cfg.BedrockModelID != "" {
		bedrock = qualify.NewBedrockLLMClient(bedrockruntime.NewFromConfig(awsCfg))
		logger.Info("Bedrock capability configured", "model", cfg.BedrockModelID)
	}

	switch {
	case gemini != nil && bedrock != nil:
		return qualify.NewFallbackLLMClient(gemini, bedrock, logger)
	case gemini != nil:
		return gemini
	case bedrock != nil:
		return bedrock
	default:
		logger.Warn("no LLM provider configured; using keyword extraction and canned responses")
		return nil
	}
}

// QualifyConfigFromEnv maps environment config onto engine tuning, falling
// back to defaults when the result would be invalid.
func QualifyConfigFromEnv(cfg *appconfig.Config, logger *logging.Logger) qualify.Config {
	if logger == nil {
		logger = logging.Default()
	}

	qc := qualify.Config{
		Weights: qualify.ScoringWeights{
			ProjectType:  cfg.WeightProjectType,
			Timeline:     cfg.WeightTimeline,
			Budget:       cfg.WeightBudget,
			CompanySize:  cfg.WeightCompanySize,
			AIExperience: cfg.WeightAIExperience,
		},
		Thresholds: qualify.CategoryThresholds{
			HighValue: cfg.ThresholdHighValue,
			Qualified: cfg.ThresholdQualified,
			Nurture:   cfg.ThresholdNurture,
		},
		AutoResponseEnabled:   true,
		MaxConversationLength: cfg.MaxConversationLen,
	}
	if err := qc.Validate(); err != nil {
		logger.Warn("invalid qualification config, using defaults", "error", err)
		return qualify.DefaultConfig()
	}
	return qc
}

// BuildQualifyService assembles the session service from config: the
// extractor and responder around the shared capability client, the lead
// sink, and the optional redis-backed history store.
func BuildQualifyService(
	cfg *appconfig.Config,
	llm qualify.LLMClient,
	sink qualify.LeadSink,
	redisClient *redis.Client,
	m *metrics.QualificationMetrics,
	logger *logging.Logger,
) *qualify.SessionService {
	if logger == nil {
		logger = logging.Default()
	}

	model := cfg.GeminiModel
	if llm == nil || cfg.GeminiAPIKey == "" {
		model = cfg.BedrockModelID
	}

	extractor := qualify.NewLLMExtractor(llm, model, cfg.LLMTimeout, logger.WithComponent("extractor"), m)
	responder := qualify.NewLLMResponder(llm, model, cfg.LLMTimeout,
		qualify.NewCannedResponder(cfg.FallbackSeed), logger.WithComponent("responder"), m)

	opts := []qualify.SessionOption{qualify.WithMetrics(m)}
	if redisClient != nil {
		opts = append(opts, qualify.WithHistoryStore(qualify.NewRedisHistoryStore(redisClient, nil)))
		logger.Info("session history store enabled", "redis", cfg.RedisAddr)
	}

	return qualify.NewSessionService(extractor, responder, sink,
		QualifyConfigFromEnv(cfg, logger), logger.WithComponent("qualify"), opts...)
}
