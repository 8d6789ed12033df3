// Menucast - Restaurant Menu Catalog Sync and Serving
// Copyright 2026 Tablewise Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablewise/menucast

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context for schema operations.
// Schema creation runs at startup before the server accepts traffic,
// so a generous timeout is fine.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the menu catalog schema.
// All statements are idempotent (IF NOT EXISTS) so startup after an
// unclean shutdown converges without special handling.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range getTableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

// getTableCreationQueries returns the schema DDL in dependency order.
// DuckDB has no AUTO_INCREMENT, so surrogate keys come from sequences.
func getTableCreationQueries() []string {
	return []string{
		`CREATE SEQUENCE IF NOT EXISTS seq_menu_categories START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_menu_items START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_display_categories START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_combo_categories START 1`,

		// Categories as delivered by the external catalog source.
		// external_id is the source's identifier and the stable join key
		// across syncs.
		`CREATE TABLE IF NOT EXISTS menu_categories (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_menu_categories'),
			external_id VARCHAR NOT NULL UNIQUE,
			name VARCHAR NOT NULL,
			display_order INTEGER NOT NULL DEFAULT 0,
			active BOOLEAN NOT NULL DEFAULT TRUE
		)`,

		// Menu items. sold_out is locally owned and must survive syncs;
		// every other column is replaced from the source on each sync.
		`CREATE TABLE IF NOT EXISTS menu_items (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_menu_items'),
			external_id VARCHAR NOT NULL UNIQUE,
			name VARCHAR NOT NULL,
			description VARCHAR NOT NULL DEFAULT '',
			display_order INTEGER NOT NULL DEFAULT 0,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			sold_out BOOLEAN NOT NULL DEFAULT FALSE,
			raw_payload VARCHAR NOT NULL DEFAULT '{}',
			updated_at TIMESTAMP NOT NULL DEFAULT now()
		)`,

		// Item to source-category membership, rebuilt on every sync.
		`CREATE TABLE IF NOT EXISTS menu_item_categories (
			item_id BIGINT NOT NULL,
			category_external_id VARCHAR NOT NULL,
			UNIQUE (item_id, category_external_id)
		)`,

		// Variations (size, temperature, ...) re-derived on every sync.
		`CREATE TABLE IF NOT EXISTS menu_item_variations (
			item_id BIGINT NOT NULL,
			external_id VARCHAR NOT NULL,
			name VARCHAR NOT NULL,
			value VARCHAR NOT NULL DEFAULT '',
			display_order INTEGER NOT NULL DEFAULT 0,
			UNIQUE (item_id, external_id)
		)`,

		// Single-row sync status. The CHECK constraint makes the
		// "exactly one current row" invariant structural.
		`CREATE TABLE IF NOT EXISTS sync_status (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			last_sync_attempt TIMESTAMP,
			last_successful_sync TIMESTAMP,
			status VARCHAR NOT NULL DEFAULT 'pending',
			last_error VARCHAR NOT NULL DEFAULT '',
			items_count INTEGER NOT NULL DEFAULT 0,
			categories_count INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMP NOT NULL DEFAULT now()
		)`,

		// Locally owned curation overlay. Never touched by sync except
		// to garbage-collect assignments of deleted items.
		`CREATE TABLE IF NOT EXISTS display_categories (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_display_categories'),
			name VARCHAR NOT NULL UNIQUE,
			description VARCHAR NOT NULL DEFAULT '',
			display_order INTEGER NOT NULL DEFAULT 0,
			active BOOLEAN NOT NULL DEFAULT TRUE
		)`,

		`CREATE TABLE IF NOT EXISTS menu_item_display_categories (
			item_id BIGINT NOT NULL,
			category_id BIGINT NOT NULL,
			UNIQUE (item_id, category_id)
		)`,

		`CREATE TABLE IF NOT EXISTS combo_categories (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_combo_categories'),
			name VARCHAR NOT NULL UNIQUE,
			description VARCHAR NOT NULL DEFAULT '',
			display_order INTEGER NOT NULL DEFAULT 0,
			required BOOLEAN NOT NULL DEFAULT FALSE,
			active BOOLEAN NOT NULL DEFAULT TRUE
		)`,

		`CREATE TABLE IF NOT EXISTS menu_item_combo_categories (
			item_id BIGINT NOT NULL,
			category_id BIGINT NOT NULL,
			UNIQUE (item_id, category_id)
		)`,
	}
}
