package repositories

import (
	"context"

	"docload/internal/domain/models"
)

// HierarchyRepository is the narrow persistence contract the import pipeline
// drives. Every method participates in the transaction carried by ctx when
// one is present (see SetTx/GetTx).
type HierarchyRepository interface {
	// Ping is a best-effort liveness probe. Failures come back as false,
	// never as an error, so callers can tell "down" from "crashed".
	Ping(ctx context.Context) bool

	// CreateFolder persists the folder and fills in its assigned
	// FolderID and CreatedAt.
	CreateFolder(ctx context.Context, folder *models.Folder) error

	// CreateDocuments inserts a batch of documents in one round trip.
	// The insert is atomic: either every document lands or none do.
	CreateDocuments(ctx context.Context, docs []*models.Document) error

	// NextFolderOrder returns the current max sibling order within
	// (workspace, parent) plus one, or 1 if no siblings exist.
	NextFolderOrder(ctx context.Context, workspaceID int, parentFolderID *int) (int, error)

	// NextDisplayOrder is the same shape as NextFolderOrder over the
	// independent display-order counter.
	NextDisplayOrder(ctx context.Context, workspaceID int, parentFolderID *int) (int, error)

	// NextDocumentDisplayOrder returns the max display order among live
	// documents in the folder plus one, or 1.
	NextDocumentDisplayOrder(ctx context.Context, folderID int) (int, error)

	// HierarchyLevel returns the stored level of a live folder, or 0 if
	// the folder is absent.
	HierarchyLevel(ctx context.Context, folderID int) (int, error)

	// BuildHierarchyPath walks parent links upward from folderID and
	// returns the id chain root-to-leaf, "/"-joined.
	BuildHierarchyPath(ctx context.Context, folderID int) (string, error)

	// UpdateHierarchyPath writes the materialized path. Idempotent.
	UpdateHierarchyPath(ctx context.Context, folderID int, path string) error

	// FindFolderByName returns the live folder matching name
	// (case-insensitive) within the given scope, or nil if none exists.
	FindFolderByName(ctx context.Context, name string, categoryID int, subCategoryID *int, parentFolderID *int) (*models.Folder, error)

	// ArchiveSubtree soft-deletes the root folder, every folder whose
	// hierarchy path contains it, and every live document in those
	// folders, restricted to the given category scope. Returns false
	// when no matching folders exist.
	ArchiveSubtree(ctx context.Context, rootFolderID, userID, categoryID int, subCategoryID *int) (bool, error)

	// ListRootFolders returns live root folders for a category scope,
	// ordered by display order.
	ListRootFolders(ctx context.Context, categoryName, subCategoryName string) ([]models.Folder, error)
}
