// Package config loads runtime configuration for the pwvault CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-d string          path to the vault database
//	-e string          directory for exports without an explicit destination
//	-l string          log level: debug, info, warn, error
//	-confirm-repair    ask for the password twice before recreating a missing verifier
//
// # JSON schema
//
// Durations use timex.Duration, so they can be strings like "30s" or integer
// nanoseconds. Omitted keys keep their default.
//
//	{
//	  "database_path": "vault.db",
//	  "export_dir": "exports",
//	  "log_level": "info",
//	  "confirm_verifier_repair": false,
//	  "export_timeout": "30s",
//	  "s3": {
//	    "region": "us-east-1",
//	    "bucket": "backups",
//	    "base_endpoint": "http://localhost:9000",
//	    "access_key": "minio",
//	    "secret_key": "minio123"
//	  }
//	}
package config
