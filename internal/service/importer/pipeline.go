package importer

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"docload/internal/config"
	"docload/internal/domain"
	"docload/internal/domain/models"
	"docload/internal/domain/repositories"
	"docload/internal/domain/services"
	"docload/internal/utils"
)

// Pipeline reconstructs an archive's directory tree as folder and document
// rows. One Run is strictly sequential and executes inside one transaction:
// nothing becomes visible until commit, and failure or cancellation at any
// point rolls everything back.
type Pipeline struct {
	repo      repositories.HierarchyRepository
	txManager repositories.TransactionManager
	logger    *slog.Logger
	batchSize int
}

// New creates an import pipeline. batchSize caps how many files are staged
// per document insert; values below 1 fall back to the default.
func New(
	repo repositories.HierarchyRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
	batchSize int,
) services.ImportService {
	if batchSize < 1 {
		batchSize = config.DefaultBatchSize
	}
	return &Pipeline{
		repo:      repo,
		txManager: txManager,
		logger:    logger,
		batchSize: batchSize,
	}
}

// run holds the working state of one pipeline invocation. The path map is
// owned exclusively by this run and discarded with it.
type run struct {
	p         *Pipeline
	req       *services.ImportRequest
	res       *models.ImportResult
	progress  chan<- models.Progress
	logger    *slog.Logger
	pathMap   map[string]int // normalized path prefix -> folder id
	docOrder  map[int]int    // folder id -> last display order handed out
	rootLevel int
}

// Run executes one import. It always returns an outcome: validation errors,
// storage failures and cancellation are all folded into the result rather
// than returned.
func (p *Pipeline) Run(ctx context.Context, req *services.ImportRequest, progress chan<- models.Progress) *models.ImportResult {
	started := time.Now()
	res := &models.ImportResult{RunID: uuid.NewString()}
	logger := p.logger.With("run_id", res.RunID)

	r := &run{
		p:        p,
		req:      req,
		res:      res,
		progress: progress,
		logger:   logger,
		pathMap:  make(map[string]int),
		docOrder: make(map[int]int),
	}

	if err := req.Validate(); err != nil {
		res.Message = fmt.Sprintf("Invalid import request: %v", err)
		res.Err = fmt.Errorf("%w: %v", domain.ErrValidation, err)
		res.Duration = time.Since(started)
		return res
	}

	logger.Info("starting archive import",
		"archive", req.ArchivePath,
		"workspace_id", req.WorkspaceID,
		"category_id", req.CategoryID,
	)
	r.report("Opening archive...", 0, "")

	archive, err := zip.OpenReader(req.ArchivePath)
	if err != nil {
		res.Message = fmt.Sprintf("Error opening archive: %v", err)
		res.Err = err
		res.Duration = time.Since(started)
		logger.Error(res.Message)
		return res
	}
	defer archive.Close()

	err = p.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		return r.execute(txCtx, &archive.Reader)
	})
	res.Duration = time.Since(started)

	switch {
	case err == nil:
		res.Success = true
		res.Message = fmt.Sprintf("Successfully imported %d folders and %d files in %.2f seconds",
			res.ProcessedFolders, res.ProcessedFiles, res.Duration.Seconds())
		r.reportFull("Complete!", 100, "")
		logger.Info(res.Message)
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		res.Cancelled = true
		res.Message = "Import was cancelled by user"
		logger.Warn(res.Message)
	default:
		res.Err = err
		res.Message = fmt.Sprintf("Error processing archive: %v", err)
		logger.Error(res.Message)
	}

	return res
}

// execute drives every stage inside the open transaction.
func (r *run) execute(ctx context.Context, archive *zip.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(archive.File) == 0 {
		return domain.ErrEmptyArchive
	}

	// The root folder name is the first path segment of the first entry.
	rootName := strings.SplitN(archive.File[0].Name, "/", 2)[0]
	_, fileEntries := partitionEntries(archive.File)

	// Count the synthesized root plus every directory the entries imply.
	// Marker-only counting undercounts: many zip tools emit no marker
	// entries at all, yet the tree creation pass still materializes the
	// directories their file paths imply.
	r.res.TotalFolders = 1 + countImpliedDirs(archive.File)
	r.res.TotalFiles = len(fileEntries)
	r.reportFull(fmt.Sprintf("Found %d folders and %d files", r.res.TotalFolders, r.res.TotalFiles), 5, "")

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := r.createRoot(ctx, rootName); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := r.createFolderTree(ctx, archive.File); err != nil {
		return err
	}

	return r.ingestFiles(ctx, fileEntries)
}

// createRoot resolves the root folder name, archives a clashing prior import,
// and creates the new root. Folder creation is two-phase: the hierarchy path
// depends on the store-assigned identity, so it is backfilled after insert.
func (r *run) createRoot(ctx context.Context, rootName string) error {
	existing, err := r.p.repo.FindFolderByName(ctx, rootName, r.req.CategoryID, r.req.SubCategoryID, r.req.ParentFolderID)
	if err != nil {
		return err
	}
	if existing != nil {
		// Re-import replaces the prior import: the old tree is soft
		// deleted, never physically removed.
		archived, err := r.p.repo.ArchiveSubtree(ctx, existing.FolderID, r.req.UserID, r.req.CategoryID, r.req.SubCategoryID)
		if err != nil {
			return err
		}
		r.logger.Info("prior import root found",
			"folder_id", existing.FolderID,
			"name", rootName,
			"archived", archived,
		)
	}

	r.reportFull(fmt.Sprintf("Creating root folder: %s", rootName), 10, "")

	r.rootLevel = 0
	if r.req.ParentFolderID != nil {
		r.rootLevel = config.NestedRootHierarchyLevel

		// The nested-root level assumes the external parent sits one
		// level above it. A mismatch is tolerated but worth surfacing.
		parentLevel, err := r.p.repo.HierarchyLevel(ctx, *r.req.ParentFolderID)
		if err != nil {
			return err
		}
		if parentLevel != r.rootLevel-1 {
			r.logger.Warn("external parent level differs from assumed depth",
				"parent_folder_id", *r.req.ParentFolderID,
				"parent_level", parentLevel,
				"assumed", r.rootLevel-1,
			)
		}
	}

	folder, err := r.createFolder(ctx, rootName, r.req.ParentFolderID, r.rootLevel)
	if err != nil {
		return err
	}

	r.res.RootFolderID = folder.FolderID
	r.res.ProcessedFolders = 1
	r.pathMap[rootName] = folder.FolderID

	return nil
}

// createFolderTree walks every archive entry in lexicographic path order and
// creates each directory prefix exactly once. Lexicographic order guarantees
// a parent prefix is registered before any of its children, so each creation
// only needs its immediate parent in the path map.
func (r *run) createFolderTree(ctx context.Context, entries []*zip.File) error {
	r.reportFull("Creating folder structure...", 20, "")

	sorted := make([]*zip.File, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	for _, entry := range sorted {
		if err := ctx.Err(); err != nil {
			return err
		}

		fullPath := strings.TrimSuffix(entry.Name, "/")
		if fullPath == "" {
			continue
		}
		if err := utils.ValidateEntryPath(fullPath); err != nil {
			r.logger.Warn("rejecting archive entry", "path", entry.Name, "reason", err)
			continue
		}
		parts := strings.Split(fullPath, "/")

		// Every prefix past the root segment is a candidate directory:
		// either the entry itself is a folder marker, or the prefix is
		// a strict ancestor of a file.
		for i := 1; i < len(parts); i++ {
			isFolder := strings.HasSuffix(entry.Name, "/") || i < len(parts)-1
			if !isFolder {
				continue
			}

			currentPath := strings.Join(parts[:i+1], "/")
			if _, ok := r.pathMap[currentPath]; ok {
				continue
			}

			parentPath := strings.Join(parts[:i], "/")
			parentID, ok := r.pathMap[parentPath]
			if !ok {
				// Archive entries that don't form a consistent tree
				// are a non-fatal anomaly: skip, keep going.
				r.logger.Warn("parent folder not found, skipping entry",
					"path", currentPath,
					"parent", parentPath,
				)
				continue
			}

			folder, err := r.createFolder(ctx, parts[i], &parentID, r.rootLevel+i)
			if err != nil {
				return err
			}

			r.pathMap[currentPath] = folder.FolderID
			r.res.ProcessedFolders++
			r.logger.Debug("created folder", "path", currentPath, "folder_id", folder.FolderID)
			r.reportFull(fmt.Sprintf("Creating folder: %s", parts[i]), r.folderPercent(), "")
		}
	}

	return nil
}

// createFolder inserts one folder and backfills its hierarchy path.
func (r *run) createFolder(ctx context.Context, name string, parentID *int, level int) (*models.Folder, error) {
	folderOrder, err := r.p.repo.NextFolderOrder(ctx, r.req.WorkspaceID, parentID)
	if err != nil {
		return nil, err
	}
	displayOrder, err := r.p.repo.NextDisplayOrder(ctx, r.req.WorkspaceID, parentID)
	if err != nil {
		return nil, err
	}

	folder := &models.Folder{
		WorkspaceID:     r.req.WorkspaceID,
		ParentFolderID:  parentID,
		Name:            name,
		CategoryID:      r.req.CategoryID,
		CategoryName:    r.req.CategoryName,
		SubCategoryID:   r.req.SubCategoryID,
		SubCategoryName: r.req.SubCategoryName,
		HierarchyLevel:  level,
		Status:          models.FolderStatusDraft,
		FolderOrder:     folderOrder,
		DisplayOrder:    displayOrder,
		OwnerUserID:     r.req.UserID,
		CreatedBy:       r.req.UserID,
		CreatedAt:       time.Now().UTC(),
	}

	if err := r.p.repo.CreateFolder(ctx, folder); err != nil {
		return nil, err
	}

	hierarchyPath, err := r.p.repo.BuildHierarchyPath(ctx, folder.FolderID)
	if err != nil {
		return nil, err
	}
	if err := r.p.repo.UpdateHierarchyPath(ctx, folder.FolderID, hierarchyPath); err != nil {
		return nil, err
	}
	folder.HierarchyPath = hierarchyPath

	return folder, nil
}

// ingestFiles stages file entries into documents in fixed-size batches, one
// insert round trip per batch.
func (r *run) ingestFiles(ctx context.Context, fileEntries []*zip.File) error {
	r.reportFull("Processing files...", 50, "")

	for start := 0; start < len(fileEntries); start += r.p.batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := start + r.p.batchSize
		if end > len(fileEntries) {
			end = len(fileEntries)
		}

		var docs []*models.Document
		for _, entry := range fileEntries[start:end] {
			if err := ctx.Err(); err != nil {
				return err
			}

			doc, err := r.buildDocument(ctx, entry)
			if err != nil {
				return err
			}
			if doc == nil {
				continue // unresolvable parent, already logged
			}
			docs = append(docs, doc)
			r.res.ProcessedFiles++
		}

		if len(docs) > 0 {
			if err := r.p.repo.CreateDocuments(ctx, docs); err != nil {
				return err
			}
		}

		r.reportFull(fmt.Sprintf("Processed %d of %d files", r.res.ProcessedFiles, r.res.TotalFiles), r.filePercent(), "")
	}

	return nil
}

// buildDocument reads one archive entry fully into memory and shapes it into
// a document row. Returns (nil, nil) when the entry's directory was never
// registered, the same anomaly tolerance as folder creation.
func (r *run) buildDocument(ctx context.Context, entry *zip.File) (*models.Document, error) {
	fullPath := strings.TrimSuffix(entry.Name, "/")
	if err := utils.ValidateEntryPath(fullPath); err != nil {
		r.logger.Warn("rejecting archive entry", "path", entry.Name, "reason", err)
		return nil, nil
	}
	folderPath := path.Dir(fullPath)
	fileName := path.Base(fullPath)

	folderID, ok := r.pathMap[folderPath]
	if !ok {
		r.logger.Warn("folder not resolved for file, skipping",
			"file", fullPath,
			"folder", folderPath,
		)
		return nil, nil
	}

	r.reportFull(fmt.Sprintf("Processing file: %s", fileName), r.filePercent(), fileName)

	reader, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("open archive entry %s: %w", fullPath, err)
	}
	data, err := io.ReadAll(reader)
	reader.Close()
	if err != nil {
		return nil, fmt.Errorf("read archive entry %s: %w", fullPath, err)
	}

	// Batch staging means the store can't see peers of this document yet,
	// so the display order counter lives here once seeded.
	displayOrder, ok := r.docOrder[folderID]
	if ok {
		displayOrder++
	} else {
		displayOrder, err = r.p.repo.NextDocumentDisplayOrder(ctx, folderID)
		if err != nil {
			return nil, err
		}
	}
	r.docOrder[folderID] = displayOrder

	now := time.Now().UTC()
	userID := r.req.UserID

	return &models.Document{
		FolderID:        folderID,
		Name:            strings.TrimSuffix(fileName, path.Ext(fileName)),
		FileName:        fileName,
		FileSize:        int64(entry.UncompressedSize64),
		MimeType:        utils.MimeTypeForFile(fileName, data),
		FileBytes:       data,
		DocumentType:    models.DocumentTypeFile,
		CategoryID:      r.req.CategoryID,
		CategoryName:    r.req.CategoryName,
		SubCategoryID:   r.req.SubCategoryID,
		SubCategoryName: r.req.SubCategoryName,
		Status:          models.DocumentStatusPublished,
		DisplayOrder:    displayOrder,
		OwnerUserID:     userID,
		CreatedBy:       userID,
		CreatedAt:       now,
		PublishedBy:     &userID,
		PublishedAt:     &now,
	}, nil
}

// countImpliedDirs returns the number of distinct directories below the root
// segment implied by the entries, whether declared through marker entries or
// only through file paths. Mirrors the prefix walk of createFolderTree so
// totals and processed counts agree.
func countImpliedDirs(entries []*zip.File) int {
	prefixes := make(map[string]struct{})
	for _, entry := range entries {
		fullPath := strings.TrimSuffix(entry.Name, "/")
		if fullPath == "" {
			continue
		}
		marker := strings.HasSuffix(entry.Name, "/")
		parts := strings.Split(fullPath, "/")
		for i := 1; i < len(parts); i++ {
			if marker || i < len(parts)-1 {
				prefixes[strings.Join(parts[:i+1], "/")] = struct{}{}
			}
		}
	}
	return len(prefixes)
}

// partitionEntries splits archive entries into folder markers (trailing
// separator) and non-empty file entries.
func partitionEntries(entries []*zip.File) (folders, files []*zip.File) {
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name, "/") {
			folders = append(folders, entry)
		} else if entry.UncompressedSize64 > 0 {
			files = append(files, entry)
		}
	}
	return folders, files
}

// folderPercent interpolates 20-50% across folder creation.
func (r *run) folderPercent() int {
	if r.res.TotalFolders == 0 {
		return 20
	}
	return 20 + int(float64(r.res.ProcessedFolders)/float64(r.res.TotalFolders)*30)
}

// filePercent interpolates 50-95% across file ingestion.
func (r *run) filePercent() int {
	if r.res.TotalFiles == 0 {
		return 50
	}
	return 50 + int(float64(r.res.ProcessedFiles)/float64(r.res.TotalFiles)*45)
}

// report pushes a snapshot without counters filled in.
func (r *run) report(operation string, percent int, currentFile string) {
	r.send(models.Progress{
		Operation:   operation,
		Percent:     percent,
		CurrentFile: currentFile,
	})
}

// reportFull pushes a snapshot carrying the run's current counters.
func (r *run) reportFull(operation string, percent int, currentFile string) {
	r.send(models.Progress{
		Operation:        operation,
		TotalFolders:     r.res.TotalFolders,
		TotalFiles:       r.res.TotalFiles,
		ProcessedFolders: r.res.ProcessedFolders,
		ProcessedFiles:   r.res.ProcessedFiles,
		Percent:          percent,
		CurrentFile:      currentFile,
	})
}

// send is fire-and-forget: a full or absent consumer never blocks the run.
func (r *run) send(snap models.Progress) {
	if r.progress == nil {
		return
	}
	select {
	case r.progress <- snap:
	default:
	}
}
