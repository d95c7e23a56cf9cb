// Package config provides configuration management for the device sync service.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings,
// divided into subsections:
//   - Server: HTTP server settings (port, API key, rate limit)
//   - Database: MySQL connection details for the sync store
//   - Storage: S3/MinIO credentials for the run-report archive
//   - Log: Logging level and format
//   - Sources: Endpoint-protection and MDM platform credentials
//   - Sync: Batch size, retry policy and schedule for the engine
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
