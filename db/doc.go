// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db is the response store: schema, connection setup, and queries.

# Connecting

	conn, err := db.Open(db.TypeSQLite, "data/duudl.db")
	if err != nil {
		log.Fatal(err)
	}
	if err := db.CreateSchema(conn, db.TypeSQLite); err != nil {
		log.Fatal(err)
	}
	if err := db.SeedUsers(ctx, conn); err != nil {
		log.Fatal(err)
	}

SQLite is served by modernc.org/sqlite with foreign keys enabled on every
connection; Postgres by lib/pq. Both share one set of queries.

# Tables

  - users: fixed roster
  - duudls: poll metadata, unique public token
  - duudl_dates: candidate days, primary key (duudl_id, day)
  - responses: one cell per (duudl_id, user_id, day)

# Relationships

	duudls 1──* duudl_dates 1──* responses
	users  1──* responses

Deleting a duudl cascades to its dates and responses. Deleting a date
cascades to the responses for that day.

# Transactions

Reads and single-cell writes run on the pool. Multi-row work goes through
WithTx:

	err := store.WithTx(ctx, func(q *db.Queries) error {
		id, err := q.InsertPoll(ctx, token, title, desc, creatorID, now)
		...
	})
*/
package db
