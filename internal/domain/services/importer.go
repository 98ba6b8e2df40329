package services

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"docload/internal/domain/models"
)

// ImportRequest carries everything one import run needs: the archive to load
// and the classification the reconstructed tree is filed under.
type ImportRequest struct {
	ArchivePath     string
	WorkspaceID     int
	CategoryID      int
	CategoryName    string
	SubCategoryID   *int
	SubCategoryName string
	UserID          int
	ParentFolderID  *int
}

// Validate checks the request before any storage work starts.
func (r *ImportRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ArchivePath, validation.Required),
		validation.Field(&r.WorkspaceID, validation.Required, validation.Min(1)),
		validation.Field(&r.CategoryID, validation.Required, validation.Min(1)),
		validation.Field(&r.CategoryName, validation.Required),
		validation.Field(&r.UserID, validation.Required, validation.Min(1)),
	)
}

// ImportService reconstructs an archive's directory tree as a folder/document
// hierarchy inside the store.
type ImportService interface {
	// Run executes one import inside a single transaction. Progress
	// snapshots are pushed into progress (which may be nil) without ever
	// blocking. Run always returns an outcome; cancellation of ctx and
	// storage failures both roll back and are reported on the result,
	// never returned or re-panicked.
	Run(ctx context.Context, req *ImportRequest, progress chan<- models.Progress) *models.ImportResult
}
