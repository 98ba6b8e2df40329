package models

import (
	"time"
)

// Document is a leaf artifact attached to exactly one folder. The raw file
// bytes travel on the row; the importer never mutates a document after the
// batch insert that created it.
type Document struct {
	DocumentID      int        `db:"document_id"`
	FolderID        int        `db:"folder_id"`
	Name            string     `db:"name"`      // file name without extension
	FileName        string     `db:"file_name"` // file name with extension
	FileSize        int64      `db:"file_size"`
	MimeType        string     `db:"mime_type"`
	FileBytes       []byte     `db:"file_bytes"`
	DocumentType    string     `db:"document_type"`
	CategoryID      int        `db:"category_id"`
	CategoryName    string     `db:"category_name"`
	SubCategoryID   *int       `db:"sub_category_id"`
	SubCategoryName string     `db:"sub_category_name"`
	Status          string     `db:"status"`
	DisplayOrder    int        `db:"display_order"`
	OwnerUserID     int        `db:"owner_user_id"`
	IsDeleted       bool       `db:"is_deleted"`
	CreatedBy       int        `db:"created_by"`
	CreatedAt       time.Time  `db:"created_at"`
	ModifiedBy      *int       `db:"modified_by"`
	ModifiedAt      *time.Time `db:"modified_at"`
	PublishedBy     *int       `db:"published_by"`
	PublishedAt     *time.Time `db:"published_at"`
}

// Imported files are considered published the moment they land.
const (
	DocumentStatusPublished = "published"
	DocumentTypeFile        = "file"
)
