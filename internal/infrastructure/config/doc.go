// Package config handles loading and validating the dashboard backend
// configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables (RACKDASH_* prefix)
//   - Validation of required fields
//   - Default value handling
//
// Security Considerations:
//   - Sensitive values (storage service key, JWT secret) should be set via
//     environment variables rather than committed to the config file
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Storage.Bucket)
package config
