// Package config handles application configuration loading and validation.
//
// Configuration is loaded from config.yml and validated using struct tags.
// Values from a .env file and GEOTREN_* environment variables override the
// file, which keeps container deployments free of mounted config files.
package config
