package generation

import (
	"embed"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/voyplan/voyplan-backend/internal/generation/linking"
	"github.com/voyplan/voyplan-backend/internal/platform/logger"
)

const pipelineYAMLEnv = "GENERATION_PIPELINE_YAML"

//go:embed pipeline.yaml
var pipelineFS embed.FS

// Config carries the pipeline tunables. Loaded once from the embedded YAML,
// optionally overridden by a file named in GENERATION_PIPELINE_YAML.
type Config struct {
	MaxRetries            int            `yaml:"max_retries"`
	DayTimeoutSeconds     int            `yaml:"day_timeout_seconds"`
	SummaryTimeoutSeconds int            `yaml:"summary_timeout_seconds"`
	Matcher               linking.Config `yaml:"matcher"`
}

func defaultConfig() Config {
	return Config{
		MaxRetries:            3,
		DayTimeoutSeconds:     45,
		SummaryTimeoutSeconds: 120,
		Matcher:               linking.DefaultConfig(),
	}
}

func (c Config) DayTimeout() time.Duration {
	return time.Duration(c.DayTimeoutSeconds) * time.Second
}

func (c Config) SummaryTimeout() time.Duration {
	return time.Duration(c.SummaryTimeoutSeconds) * time.Second
}

var (
	cfgOnce sync.Once
	cfg     Config
)

// LoadConfig returns the pipeline config, falling back to compiled-in
// defaults when YAML is missing or invalid.
func LoadConfig(log *logger.Logger) Config {
	cfgOnce.Do(func() {
		cfg = defaultConfig()

		raw, err := pipelineFS.ReadFile("pipeline.yaml")
		if path := strings.TrimSpace(os.Getenv(pipelineYAMLEnv)); path != "" {
			if fileRaw, fileErr := os.ReadFile(path); fileErr == nil {
				raw, err = fileRaw, nil
			} else if log != nil {
				log.Warn("Pipeline YAML override unreadable; using embedded", "path", path, "error", fileErr)
			}
		}
		if err != nil {
			return
		}

		parsed := defaultConfig()
		if err := yaml.Unmarshal(raw, &parsed); err != nil {
			if log != nil {
				log.Warn("Pipeline YAML invalid; using defaults", "error", err)
			}
			return
		}
		if parsed.MaxRetries <= 0 {
			parsed.MaxRetries = defaultConfig().MaxRetries
		}
		if parsed.DayTimeoutSeconds <= 0 {
			parsed.DayTimeoutSeconds = defaultConfig().DayTimeoutSeconds
		}
		if parsed.SummaryTimeoutSeconds <= 0 {
			parsed.SummaryTimeoutSeconds = defaultConfig().SummaryTimeoutSeconds
		}
		cfg = parsed
	})
	return cfg
}
