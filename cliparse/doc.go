// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cliparse.LoadDotEnv(".env")
	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 5001)
  - DatabaseURL: sqlite file path or Postgres URL (default: data/duudl.db)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - SecretKey: Session signing key (default: dev)
  - SitePassword / PasswordHash: the shared site password (default: wattifnatt)
  - LogMode: auto, production or development (default: auto)

# CLI Flags

	-p         Server port
	-d         Database URL
	-t         Database type
	-log       Log mode
	-secret    Session signing key
	-password  Site password

# Environment Variables

Flags fall back to environment variables:

	PORT                   → -p
	DATABASE_URL           → -d (DUUDL_DB_PATH also accepted)
	DATABASE_TYPE          → -t
	LOG_MODE               → -log
	DUUDL_SECRET_KEY       → -secret
	DUUDL_SECRET_KEY_FILE  file holding the signing key
	DUUDL_PASSWORD         → -password
	DUUDL_PASSWORD_HASH    bcrypt hash, used instead of the plain password

CLI flags take precedence over environment variables. A .env file is
loaded first but never overrides variables already set.
*/
package cliparse
