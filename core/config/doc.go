// Package config provides configuration management for Nebula.
//
// It utilizes Viper for loading configuration from environment variables and an
// optional .env file. Defaults come from the `default` struct tags of every section.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: listen address, API key, shutdown window
//   - Database: driver (sqlite or mysql), file name or connection details, busy timeout
//   - Storage: S3/MinIO credentials and bucket used for inventory backups
//   - Log: logging level and format
//   - Discovery: HTTP client settings and defaults for UniFi and Proxmox
//   - Secrets: passphrase sealing the stored controller password
//
// DB_FILE is still honoured as an alias of DATABASE_NAME.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
