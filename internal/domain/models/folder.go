package models

import (
	"time"
)

// Folder is a node in the imported hierarchy. A nil ParentFolderID marks a
// root. Category/sub-category names are denormalized onto every row, matching
// the document-store schema the importer writes into.
type Folder struct {
	FolderID        int        `db:"folder_id"`
	WorkspaceID     int        `db:"workspace_id"`
	ParentFolderID  *int       `db:"parent_folder_id"` // NULL = root level
	Name            string     `db:"name"`
	CategoryID      int        `db:"category_id"`
	CategoryName    string     `db:"category_name"`
	SubCategoryID   *int       `db:"sub_category_id"`
	SubCategoryName string     `db:"sub_category_name"`
	HierarchyLevel  int        `db:"hierarchy_level"`
	HierarchyPath   string     `db:"hierarchy_path"` // "/"-joined id chain, root to self
	Status          string     `db:"status"`
	FolderOrder     int        `db:"folder_order"`
	DisplayOrder    int        `db:"display_order"`
	OwnerUserID     int        `db:"owner_user_id"`
	IsDeleted       bool       `db:"is_deleted"`
	CreatedBy       int        `db:"created_by"`
	CreatedAt       time.Time  `db:"created_at"`
	ModifiedBy      *int       `db:"modified_by"`
	ModifiedAt      *time.Time `db:"modified_at"`
}

// Folder lifecycle statuses. Folders created by an import stay in draft;
// publication is a concern of the wider document system, not the loader.
const (
	FolderStatusDraft = "draft"
)
