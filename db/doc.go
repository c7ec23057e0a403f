// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections, schema creation, and driver error
classification.

# Connections

Open selects the driver from the configured database type:

	conn, err := db.Open("postgres", "postgres://...") // lib/pq
	conn, err := db.Open("sqlite", "file:pollapp.db")   // modernc.org/sqlite

SQLite DSNs get foreign_keys and busy_timeout pragmas appended.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - profiles: Display data for voters and comment authors
  - polls: Poll metadata and lifecycle state
  - poll_options: Options per poll; votes_count caches COUNT(votes)
  - votes: Authenticated votes, uniqueness enforced per vote type
  - demo_votes: Anonymous session votes, unique per (poll, option, session)
  - comments: Poll discussion

# Relationships

	polls 1──* poll_options
	polls 1──* votes      *──1 poll_options
	polls 1──* demo_votes *──1 poll_options
	polls 1──* comments

All foreign keys use ON DELETE CASCADE.

# Error Classification

	if db.IsUniqueViolation(err) { ... }

Recognises PostgreSQL SQLSTATE 23505 and SQLite UNIQUE constraint failures.
*/
package db
