package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Env         string
	DatabaseURL string

	Gemini GeminiConfig
	Risk   RiskConfig
	Run    RunConfig
	Object ObjectStoreConfig

	ResourceSeedPath string
	ScenarioYAMLPath string
}

type GeminiConfig struct {
	Model      string
	EmbedModel string
}

type RiskConfig struct {
	// Strategy selects the scoring variant: "label" (constant level-to-score
	// mapping) or "indicator" (weighted indicator combination).
	Strategy string
}

type RunConfig struct {
	// CallTimeout bounds a single model call; RunDeadline bounds one full
	// pipeline run.
	CallTimeout time.Duration
	RunDeadline time.Duration
}

type ObjectStoreConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = ":8080"
	} else if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	cfg := &Config{
		Port:        port,
		Env:         env,
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		Gemini: GeminiConfig{
			Model:      firstNonEmpty(strings.TrimSpace(os.Getenv("GEMINI_MODEL")), "gemini-2.5-flash"),
			EmbedModel: firstNonEmpty(strings.TrimSpace(os.Getenv("GEMINI_EMBEDDING_MODEL")), "text-embedding-004"),
		},
		Risk: RiskConfig{
			Strategy: firstNonEmpty(strings.ToLower(strings.TrimSpace(os.Getenv("RISK_STRATEGY"))), "label"),
		},
		Run: RunConfig{
			CallTimeout: durationEnv("LLM_CALL_TIMEOUT", 60*time.Second),
			RunDeadline: durationEnv("PIPELINE_RUN_DEADLINE", 5*time.Minute),
		},
		Object:           loadObjectStoreConfig(env),
		ResourceSeedPath: strings.TrimSpace(os.Getenv("RESOURCE_SEED_PATH")),
		ScenarioYAMLPath: strings.TrimSpace(os.Getenv("SCENARIO_CATALOG_PATH")),
	}
	return cfg, nil
}

func loadObjectStoreConfig(env string) ObjectStoreConfig {
	endpoint := resolveObjectEndpoint(env)
	return ObjectStoreConfig{
		Enabled:   endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("DOCS_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("DOCS_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("DOCS_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("DOCS_S3_BUCKET")), "campuslens-documents"),
		UseSSL:    resolveObjectUseSSL(env),
	}
}

func resolveObjectEndpoint(env string) string {
	if strings.EqualFold(env, "local") {
		return strings.TrimSpace(os.Getenv("DOCS_MINIO_ENDPOINT"))
	}
	return strings.TrimSpace(os.Getenv("DOCS_S3_ENDPOINT"))
}

func resolveObjectUseSSL(env string) bool {
	if strings.EqualFold(env, "local") {
		return false
	}
	raw := strings.TrimSpace(os.Getenv("DOCS_S3_USE_SSL"))
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return v
}

func durationEnv(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
