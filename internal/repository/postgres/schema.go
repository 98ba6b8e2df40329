package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the folders and documents tables if they don't exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	createFolders := `
		CREATE TABLE IF NOT EXISTS ` + tables.Folders + ` (
			folder_id SERIAL PRIMARY KEY,
			workspace_id INTEGER NOT NULL,
			parent_folder_id INTEGER REFERENCES ` + tables.Folders + `(folder_id),
			name VARCHAR(500) NOT NULL,
			category_id INTEGER NOT NULL,
			category_name VARCHAR(200) NOT NULL DEFAULT '',
			sub_category_id INTEGER,
			sub_category_name VARCHAR(200) NOT NULL DEFAULT '',
			hierarchy_level INTEGER NOT NULL DEFAULT 0,
			hierarchy_path VARCHAR(2000) NOT NULL DEFAULT '',
			status VARCHAR(50) NOT NULL DEFAULT 'draft',
			folder_order INTEGER NOT NULL,
			display_order INTEGER NOT NULL,
			owner_user_id INTEGER NOT NULL,
			is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
			created_by INTEGER NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			modified_by INTEGER,
			modified_at TIMESTAMPTZ
		)
	`
	if _, err := pool.Exec(ctx, createFolders); err != nil {
		return fmt.Errorf("create folders table: %w", err)
	}

	createDocuments := `
		CREATE TABLE IF NOT EXISTS ` + tables.Documents + ` (
			document_id SERIAL PRIMARY KEY,
			folder_id INTEGER NOT NULL REFERENCES ` + tables.Folders + `(folder_id),
			name VARCHAR(255) NOT NULL,
			file_name VARCHAR(255) NOT NULL,
			file_size BIGINT NOT NULL DEFAULT 0,
			mime_type VARCHAR(100) NOT NULL DEFAULT 'application/octet-stream',
			file_bytes BYTEA,
			document_type VARCHAR(100) NOT NULL DEFAULT 'file',
			category_id INTEGER NOT NULL,
			category_name VARCHAR(200) NOT NULL DEFAULT '',
			sub_category_id INTEGER,
			sub_category_name VARCHAR(200) NOT NULL DEFAULT '',
			status VARCHAR(20) NOT NULL DEFAULT 'draft',
			display_order INTEGER NOT NULL,
			owner_user_id INTEGER NOT NULL,
			is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
			created_by INTEGER NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			modified_by INTEGER,
			modified_at TIMESTAMPTZ,
			published_by INTEGER,
			published_at TIMESTAMPTZ
		)
	`
	if _, err := pool.Exec(ctx, createDocuments); err != nil {
		return fmt.Errorf("create documents table: %w", err)
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_` + tables.Folders + `_parent ON ` + tables.Folders + `(workspace_id, parent_folder_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tables.Folders + `_path ON ` + tables.Folders + `(hierarchy_path)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tables.Documents + `_folder ON ` + tables.Documents + `(folder_id)`,
	}
	for _, idx := range indexes {
		if _, err := pool.Exec(ctx, idx); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}

	return nil
}
