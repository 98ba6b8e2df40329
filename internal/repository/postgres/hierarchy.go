package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"docload/internal/config"
	"docload/internal/domain"
	"docload/internal/domain/models"
	"docload/internal/domain/repositories"
)

// PostgresHierarchyRepository implements the HierarchyRepository interface.
// Every query runs through GetExecutor, so calls made inside an import run
// join the run's transaction.
type PostgresHierarchyRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewHierarchyRepository creates a new hierarchy repository
func NewHierarchyRepository(cfg *RepositoryConfig) repositories.HierarchyRepository {
	return &PostgresHierarchyRepository{
		pool:   cfg.Pool,
		tables: cfg.Tables,
		logger: cfg.Logger,
	}
}

// persistenceError wraps a storage failure so callers can classify it with
// errors.Is(err, domain.ErrPersistence) while keeping the pg error chain.
func persistenceError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrPersistence, err)
}

// Ping reports whether the store is reachable. Failures are reported as
// false, never propagated.
func (r *PostgresHierarchyRepository) Ping(ctx context.Context) bool {
	if err := r.pool.Ping(ctx); err != nil {
		r.logger.Error("database connectivity probe failed", "error", err)
		return false
	}
	return true
}

// CreateFolder persists a folder row and fills in the assigned identity.
func (r *PostgresHierarchyRepository) CreateFolder(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (
			workspace_id, parent_folder_id, name,
			category_id, category_name, sub_category_id, sub_category_name,
			hierarchy_level, hierarchy_path, status,
			folder_order, display_order,
			owner_user_id, is_deleted, created_by, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING folder_id, created_at
	`, r.tables.Folders)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		folder.WorkspaceID,
		folder.ParentFolderID,
		folder.Name,
		folder.CategoryID,
		folder.CategoryName,
		folder.SubCategoryID,
		folder.SubCategoryName,
		folder.HierarchyLevel,
		folder.HierarchyPath,
		folder.Status,
		folder.FolderOrder,
		folder.DisplayOrder,
		folder.OwnerUserID,
		folder.IsDeleted,
		folder.CreatedBy,
		folder.CreatedAt,
	).Scan(&folder.FolderID, &folder.CreatedAt)

	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("folder '%s': %w", folder.Name, domain.ErrConflict)
		}
		if isPgForeignKeyError(err) {
			return fmt.Errorf("parent of folder '%s': %w", folder.Name, domain.ErrNotFound)
		}
		return persistenceError("create folder", err)
	}

	return nil
}

// CreateDocuments inserts a set of documents in one batched round trip.
func (r *PostgresHierarchyRepository) CreateDocuments(ctx context.Context, docs []*models.Document) error {
	if len(docs) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (
			folder_id, name, file_name, file_size, mime_type, file_bytes,
			document_type, category_id, category_name, sub_category_id, sub_category_name,
			status, display_order, owner_user_id, is_deleted, created_by, created_at,
			published_by, published_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`, r.tables.Documents)

	batch := &pgx.Batch{}
	for _, doc := range docs {
		batch.Queue(query,
			doc.FolderID,
			doc.Name,
			doc.FileName,
			doc.FileSize,
			doc.MimeType,
			doc.FileBytes,
			doc.DocumentType,
			doc.CategoryID,
			doc.CategoryName,
			doc.SubCategoryID,
			doc.SubCategoryName,
			doc.Status,
			doc.DisplayOrder,
			doc.OwnerUserID,
			doc.IsDeleted,
			doc.CreatedBy,
			doc.CreatedAt,
			doc.PublishedBy,
			doc.PublishedAt,
		)
	}

	results := GetExecutor(ctx, r.pool).SendBatch(ctx, batch)
	defer results.Close()

	for i := range docs {
		if _, err := results.Exec(); err != nil {
			return persistenceError(fmt.Sprintf("insert document %d of %d", i+1, len(docs)), err)
		}
	}

	return nil
}

// NextFolderOrder returns max(folder_order)+1 within (workspace, parent).
func (r *PostgresHierarchyRepository) NextFolderOrder(ctx context.Context, workspaceID int, parentFolderID *int) (int, error) {
	return r.nextOrder(ctx, "folder_order", workspaceID, parentFolderID)
}

// NextDisplayOrder returns max(display_order)+1 within (workspace, parent).
// Independent counter from NextFolderOrder.
func (r *PostgresHierarchyRepository) NextDisplayOrder(ctx context.Context, workspaceID int, parentFolderID *int) (int, error) {
	return r.nextOrder(ctx, "display_order", workspaceID, parentFolderID)
}

func (r *PostgresHierarchyRepository) nextOrder(ctx context.Context, column string, workspaceID int, parentFolderID *int) (int, error) {
	// column is one of two compile-time constants, never user input
	query := fmt.Sprintf(`
		SELECT COALESCE(MAX(%s), 0) + 1
		FROM %s
		WHERE workspace_id = $1 AND parent_folder_id IS NOT DISTINCT FROM $2
	`, column, r.tables.Folders)

	var next int
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, workspaceID, parentFolderID).Scan(&next)
	if err != nil {
		return 0, persistenceError("next "+column, err)
	}

	return next, nil
}

// NextDocumentDisplayOrder returns max(display_order)+1 among live documents
// in the folder.
func (r *PostgresHierarchyRepository) NextDocumentDisplayOrder(ctx context.Context, folderID int) (int, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(MAX(display_order), 0) + 1
		FROM %s
		WHERE folder_id = $1 AND is_deleted = FALSE
	`, r.tables.Documents)

	var next int
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, folderID).Scan(&next)
	if err != nil {
		return 0, persistenceError("next document display order", err)
	}

	return next, nil
}

// HierarchyLevel returns the stored level of a live folder, or 0 when the
// folder does not exist.
func (r *PostgresHierarchyRepository) HierarchyLevel(ctx context.Context, folderID int) (int, error) {
	query := fmt.Sprintf(`
		SELECT hierarchy_level
		FROM %s
		WHERE folder_id = $1 AND is_deleted = FALSE
	`, r.tables.Folders)

	var level int
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, folderID).Scan(&level)
	if err != nil {
		if isPgNoRowsError(err) {
			return 0, nil
		}
		return 0, persistenceError("hierarchy level", err)
	}

	return level, nil
}

// BuildHierarchyPath walks parent links upward from folderID using a
// recursive CTE and returns the id chain root-to-leaf, "/"-joined. The walk
// is depth-bounded: folder creation refuses cycles, so the bound only trips
// on a corrupted parent chain. Returns "" for an unknown folder.
func (r *PostgresHierarchyRepository) BuildHierarchyPath(ctx context.Context, folderID int) (string, error) {
	query := fmt.Sprintf(`
		WITH RECURSIVE chain AS (
			SELECT folder_id, parent_folder_id, folder_id::text AS path, 1 AS depth
			FROM %s
			WHERE folder_id = $1
			UNION ALL
			SELECT f.folder_id, f.parent_folder_id, f.folder_id::text || '/' || c.path, c.depth + 1
			FROM %s f
			JOIN chain c ON f.folder_id = c.parent_folder_id
			WHERE c.depth < $2
		)
		SELECT path FROM chain ORDER BY depth DESC LIMIT 1
	`, r.tables.Folders, r.tables.Folders)

	var path string
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, folderID, config.MaxHierarchyDepth).Scan(&path)
	if err != nil {
		if isPgNoRowsError(err) {
			return "", nil
		}
		return "", persistenceError("build hierarchy path", err)
	}

	return path, nil
}

// UpdateHierarchyPath writes the materialized path back onto the folder row.
func (r *PostgresHierarchyRepository) UpdateHierarchyPath(ctx context.Context, folderID int, path string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET hierarchy_path = $2
		WHERE folder_id = $1
	`, r.tables.Folders)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, folderID, path)
	if err != nil {
		return persistenceError("update hierarchy path", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %d: %w", folderID, domain.ErrNotFound)
	}

	return nil
}

// FindFolderByName looks up a live folder by case-insensitive exact name
// within the given parent/category scope. Returns nil when absent.
func (r *PostgresHierarchyRepository) FindFolderByName(ctx context.Context, name string, categoryID int, subCategoryID *int, parentFolderID *int) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT folder_id, workspace_id, parent_folder_id, name, hierarchy_level, hierarchy_path
		FROM %s
		WHERE LOWER(name) = LOWER($1)
		  AND category_id = $2
		  AND sub_category_id IS NOT DISTINCT FROM $3
		  AND parent_folder_id IS NOT DISTINCT FROM $4
		  AND is_deleted = FALSE
	`, r.tables.Folders)

	var folder models.Folder
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, name, categoryID, subCategoryID, parentFolderID).Scan(
		&folder.FolderID,
		&folder.WorkspaceID,
		&folder.ParentFolderID,
		&folder.Name,
		&folder.HierarchyLevel,
		&folder.HierarchyPath,
	)

	if err != nil {
		if isPgNoRowsError(err) {
			return nil, nil // Not found, not an error
		}
		return nil, persistenceError("find folder by name", err)
	}

	return &folder, nil
}

// ArchiveSubtree soft-deletes the folder subtree rooted at rootFolderID plus
// every live document inside it, restricted to the category scope. One bulk
// update per table so an interrupted run can never leave a half-archived
// tree visible.
func (r *PostgresHierarchyRepository) ArchiveSubtree(ctx context.Context, rootFolderID, userID, categoryID int, subCategoryID *int) (bool, error) {
	exec := GetExecutor(ctx, r.pool)
	rootID := strconv.Itoa(rootFolderID)
	now := time.Now().UTC()

	// A folder belongs to the subtree when the root id appears as a
	// segment of its materialized hierarchy path.
	folderQuery := fmt.Sprintf(`
		UPDATE %s
		SET is_deleted = TRUE, modified_by = $2, modified_at = $3
		WHERE (hierarchy_path = $1
		   OR hierarchy_path LIKE $1 || '/%%'
		   OR hierarchy_path LIKE '%%/' || $1 || '/%%'
		   OR hierarchy_path LIKE '%%/' || $1)
		  AND category_id = $4
		  AND sub_category_id IS NOT DISTINCT FROM $5
		  AND is_deleted = FALSE
		RETURNING folder_id
	`, r.tables.Folders)

	rows, err := exec.Query(ctx, folderQuery, rootID, userID, now, categoryID, subCategoryID)
	if err != nil {
		return false, persistenceError("archive folder subtree", err)
	}

	var folderIDs []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return false, persistenceError("scan archived folder", err)
		}
		folderIDs = append(folderIDs, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return false, persistenceError("iterate archived folders", err)
	}

	if len(folderIDs) == 0 {
		return false, nil
	}

	docQuery := fmt.Sprintf(`
		UPDATE %s
		SET is_deleted = TRUE, modified_by = $2, modified_at = $3
		WHERE folder_id = ANY($1)
		  AND category_id = $4
		  AND sub_category_id IS NOT DISTINCT FROM $5
		  AND is_deleted = FALSE
	`, r.tables.Documents)

	tag, err := exec.Exec(ctx, docQuery, folderIDs, userID, now, categoryID, subCategoryID)
	if err != nil {
		return false, persistenceError("archive subtree documents", err)
	}

	r.logger.Info("archived prior subtree",
		"root_folder_id", rootFolderID,
		"folders", len(folderIDs),
		"documents", tag.RowsAffected(),
	)

	return true, nil
}

// ListRootFolders returns live root folders for a category scope, ordered by
// display order.
func (r *PostgresHierarchyRepository) ListRootFolders(ctx context.Context, categoryName, subCategoryName string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT folder_id, workspace_id, parent_folder_id, name,
		       category_id, category_name, sub_category_id, sub_category_name,
		       hierarchy_level, hierarchy_path, display_order, owner_user_id
		FROM %s
		WHERE category_name = $1
		  AND sub_category_name = $2
		  AND parent_folder_id IS NULL
		  AND is_deleted = FALSE
		ORDER BY display_order ASC
	`, r.tables.Folders)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, categoryName, subCategoryName)
	if err != nil {
		return nil, persistenceError("list root folders", err)
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		var folder models.Folder
		err := rows.Scan(
			&folder.FolderID,
			&folder.WorkspaceID,
			&folder.ParentFolderID,
			&folder.Name,
			&folder.CategoryID,
			&folder.CategoryName,
			&folder.SubCategoryID,
			&folder.SubCategoryName,
			&folder.HierarchyLevel,
			&folder.HierarchyPath,
			&folder.DisplayOrder,
			&folder.OwnerUserID,
		)
		if err != nil {
			return nil, persistenceError("scan folder", err)
		}
		folders = append(folders, folder)
	}

	if err := rows.Err(); err != nil {
		return nil, persistenceError("iterate folders", err)
	}

	return folders, nil
}
