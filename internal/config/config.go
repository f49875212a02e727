package config

// Config represents the full application configuration.
type Config struct {
	Gates         GatesConfig         `yaml:"gates"`
	Git           GitConfig           `yaml:"git"`
	Output        OutputConfig        `yaml:"output"`
	Check         CheckConfig         `yaml:"check"`
	Store         StoreConfig         `yaml:"store"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// GatesConfig holds the pass/fail policy applied to tool results.
type GatesConfig struct {
	// MinCoverage is the minimum acceptable line coverage percentage.
	MinCoverage float64 `yaml:"minCoverage"`

	FailOnLint   bool `yaml:"failOnLint"`
	FailOnMypy   bool `yaml:"failOnMypy"`
	FailOnBandit bool `yaml:"failOnBandit"`
}

type GitConfig struct {
	RepositoryDir string `yaml:"repositoryDir"`
}

// OutputConfig names the artifacts a check run writes.
type OutputConfig struct {
	SARIFPath       string `yaml:"sarifPath"`
	JSONPath        string `yaml:"jsonPath"`
	HTMLPath        string `yaml:"htmlPath"`
	AnnotationsPath string `yaml:"annotationsPath"`
}

// CheckConfig configures how the check pipeline executes.
type CheckConfig struct {
	// Parallel runs independent tool categories concurrently.
	Parallel bool `yaml:"parallel"`

	// SkipTests leaves the test and coverage gates out of the run.
	SkipTests bool `yaml:"skipTests"`
}

// StoreConfig configures the run-history persistence layer.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ObservabilityConfig configures logging.
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`  // debug, info, warning, error
	Format  string `yaml:"format"` // json, human
}
