// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

A .env file in the working directory is loaded first (godotenv); values
already present in the environment are not overwritten.

# CLI Flags and Environment Variables

	-p            PORT           Server port (default: 3318)
	-d            DATABASE_URL   Database URL (required)
	-t            DATABASE_TYPE  sqlite (default) or postgres
	-demo-store   DEMO_STORE     sql (default) or redis
	-redis        REDIS_URL      Redis URL (default: redis://localhost:6379/0)
	-log-format   LOG_FORMAT     json (default) or text
	-log-level    LOG_LEVEL      debug, info (default), warn, error
	-jwt-secret   JWT_SECRET     HS256 secret for bearer tokens (required)
	-ip-salt      IP_HASH_SALT   Salt for demo-vote IP hashing (required)

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if required values are missing or if
DATABASE_TYPE, DEMO_STORE or PORT hold unsupported values.
*/
package cliparse
