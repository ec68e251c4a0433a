package config

import "time"

// Config holds runtime settings for the pwvault CLI.
type Config struct {
	DatabasePath string
	ExportDir    string
	LogLevel     string

	ConfirmVerifierRepair bool

	// ExportTimeout bounds a single export, including the S3 upload.
	ExportTimeout time.Duration

	S3Region       string
	S3Bucket       string
	S3BaseEndpoint string
	S3AccessKey    string
	S3SecretKey    string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "vault.db"
	c.ExportDir = "exports"
	c.LogLevel = "info"
	c.ExportTimeout = 30 * time.Second
}

// LoadConfig builds a Config from defaults, the optional JSON file and the
// flags found in args (usually os.Args[1:]). Later sources take precedence.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
