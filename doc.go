// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the pollapp API server.

pollapp runs single- and multiple-choice polls. Signed-in users cast real
votes; visitors without an account can try a poll with demo votes that never
touch the real counts.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=file:pollapp.db JWT_SECRET=... IP_HASH_SALT=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -demo-store redis

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file or PostgreSQL connection string
  - JWT_SECRET (-jwt-secret): HS256 secret for bearer tokens
  - IP_HASH_SALT (-ip-salt): Salt for demo-vote IP hashes

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - DEMO_STORE (-demo-store): sql (default) or redis
  - REDIS_URL (-redis): Redis URL for the redis demo store
  - LOG_FORMAT (-log-format): json (default) or text
  - LOG_LEVEL (-log-level): debug, info (default), warn, error

A .env file in the working directory is read first.

# Architecture

  - service: poll lifecycle, voting, demo votes, voter visibility, comments
  - store: SQL persistence and the demo-vote namespace (SQL or Redis)
  - handlers: HTTP adapters over the service
  - router: Route definitions using Go 1.22+ routing
  - middleware: logging, metrics, identity, recovery, CORS, JSON helpers
  - models: Request/response and domain types
  - apperr: Error codes and their HTTP statuses
  - auth: Bearer tokens, requester identity, IP hashing
  - db: Driver selection and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
