package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/pwvault/internal/flagx"
	"github.com/dmitrijs2005/pwvault/internal/timex"
)

// JsonConfig is a DTO used only for unmarshalling. Pointer fields tell an
// omitted key apart from an explicit zero value.
type JsonConfig struct {
	DatabasePath          *string         `json:"database_path"`
	ExportDir             *string         `json:"export_dir"`
	LogLevel              *string         `json:"log_level"`
	ConfirmVerifierRepair *bool           `json:"confirm_verifier_repair"`
	ExportTimeout         *timex.Duration `json:"export_timeout"`
	S3                    *JsonS3Config   `json:"s3"`
}

type JsonS3Config struct {
	Region       string `json:"region"`
	Bucket       string `json:"bucket"`
	BaseEndpoint string `json:"base_endpoint"`
	AccessKey    string `json:"access_key"`
	SecretKey    string `json:"secret_key"`
}

// parseJson overlays cfg with the file named by -c/-config, if any.
func parseJson(cfg *Config, args []string) error {
	path := flagx.JsonConfigFlags(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	jc.apply(cfg)
	return nil
}

func (jc *JsonConfig) apply(cfg *Config) {
	if jc.DatabasePath != nil {
		cfg.DatabasePath = *jc.DatabasePath
	}
	if jc.ExportDir != nil {
		cfg.ExportDir = *jc.ExportDir
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
	if jc.ConfirmVerifierRepair != nil {
		cfg.ConfirmVerifierRepair = *jc.ConfirmVerifierRepair
	}
	if jc.ExportTimeout != nil {
		cfg.ExportTimeout = jc.ExportTimeout.Duration
	}
	if jc.S3 != nil {
		cfg.S3Region = jc.S3.Region
		cfg.S3Bucket = jc.S3.Bucket
		cfg.S3BaseEndpoint = jc.S3.BaseEndpoint
		cfg.S3AccessKey = jc.S3.AccessKey
		cfg.S3SecretKey = jc.S3.SecretKey
	}
}
