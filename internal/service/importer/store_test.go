package importer

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"docload/internal/domain"
	"docload/internal/domain/models"
	"docload/internal/domain/repositories"
)

// fakeStore is an in-memory HierarchyRepository with the same observable
// semantics as the SQL implementation: per-scope counters, materialized path
// walks and hierarchy-path based subtree archival.
type fakeStore struct {
	nextFolderID   int
	nextDocumentID int
	folders        map[int]*models.Folder
	documents      map[int]*models.Document

	failOp         string // method name that returns a persistence error
	onCreateFolder func(*models.Folder)
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextFolderID:   1,
		nextDocumentID: 1,
		folders:        make(map[int]*models.Folder),
		documents:      make(map[int]*models.Document),
	}
}

func (s *fakeStore) fail(op string) error {
	if s.failOp == op {
		return fmt.Errorf("%s: %w: injected failure", op, domain.ErrPersistence)
	}
	return nil
}

func (s *fakeStore) Ping(ctx context.Context) bool { return true }

func (s *fakeStore) CreateFolder(ctx context.Context, folder *models.Folder) error {
	if err := s.fail("CreateFolder"); err != nil {
		return err
	}
	folder.FolderID = s.nextFolderID
	s.nextFolderID++
	stored := *folder
	s.folders[stored.FolderID] = &stored
	if s.onCreateFolder != nil {
		s.onCreateFolder(folder)
	}
	return nil
}

func (s *fakeStore) CreateDocuments(ctx context.Context, docs []*models.Document) error {
	if err := s.fail("CreateDocuments"); err != nil {
		return err
	}
	for _, doc := range docs {
		doc.DocumentID = s.nextDocumentID
		s.nextDocumentID++
		stored := *doc
		s.documents[stored.DocumentID] = &stored
	}
	return nil
}

func (s *fakeStore) NextFolderOrder(ctx context.Context, workspaceID int, parentFolderID *int) (int, error) {
	if err := s.fail("NextFolderOrder"); err != nil {
		return 0, err
	}
	max := 0
	for _, f := range s.folders {
		if f.WorkspaceID == workspaceID && eqIntPtr(f.ParentFolderID, parentFolderID) && f.FolderOrder > max {
			max = f.FolderOrder
		}
	}
	return max + 1, nil
}

func (s *fakeStore) NextDisplayOrder(ctx context.Context, workspaceID int, parentFolderID *int) (int, error) {
	if err := s.fail("NextDisplayOrder"); err != nil {
		return 0, err
	}
	max := 0
	for _, f := range s.folders {
		if f.WorkspaceID == workspaceID && eqIntPtr(f.ParentFolderID, parentFolderID) && f.DisplayOrder > max {
			max = f.DisplayOrder
		}
	}
	return max + 1, nil
}

func (s *fakeStore) NextDocumentDisplayOrder(ctx context.Context, folderID int) (int, error) {
	if err := s.fail("NextDocumentDisplayOrder"); err != nil {
		return 0, err
	}
	max := 0
	for _, d := range s.documents {
		if d.FolderID == folderID && !d.IsDeleted && d.DisplayOrder > max {
			max = d.DisplayOrder
		}
	}
	return max + 1, nil
}

func (s *fakeStore) HierarchyLevel(ctx context.Context, folderID int) (int, error) {
	if f, ok := s.folders[folderID]; ok && !f.IsDeleted {
		return f.HierarchyLevel, nil
	}
	return 0, nil
}

func (s *fakeStore) BuildHierarchyPath(ctx context.Context, folderID int) (string, error) {
	if err := s.fail("BuildHierarchyPath"); err != nil {
		return "", err
	}
	folder, ok := s.folders[folderID]
	if !ok {
		return "", nil
	}
	parts := []string{strconv.Itoa(folder.FolderID)}
	current := folder.ParentFolderID
	for depth := 0; current != nil && depth < 64; depth++ {
		parent, ok := s.folders[*current]
		if !ok {
			break
		}
		parts = append([]string{strconv.Itoa(parent.FolderID)}, parts...)
		current = parent.ParentFolderID
	}
	return strings.Join(parts, "/"), nil
}

func (s *fakeStore) UpdateHierarchyPath(ctx context.Context, folderID int, path string) error {
	if err := s.fail("UpdateHierarchyPath"); err != nil {
		return err
	}
	folder, ok := s.folders[folderID]
	if !ok {
		return fmt.Errorf("folder %d: %w", folderID, domain.ErrNotFound)
	}
	folder.HierarchyPath = path
	return nil
}

func (s *fakeStore) FindFolderByName(ctx context.Context, name string, categoryID int, subCategoryID *int, parentFolderID *int) (*models.Folder, error) {
	if err := s.fail("FindFolderByName"); err != nil {
		return nil, err
	}
	for _, f := range s.folders {
		if strings.EqualFold(f.Name, name) &&
			f.CategoryID == categoryID &&
			eqIntPtr(f.SubCategoryID, subCategoryID) &&
			eqIntPtr(f.ParentFolderID, parentFolderID) &&
			!f.IsDeleted {
			found := *f
			return &found, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) ArchiveSubtree(ctx context.Context, rootFolderID, userID, categoryID int, subCategoryID *int) (bool, error) {
	if err := s.fail("ArchiveSubtree"); err != nil {
		return false, err
	}
	rootID := strconv.Itoa(rootFolderID)
	now := time.Now().UTC()
	var folderIDs []int
	for _, f := range s.folders {
		if f.IsDeleted || f.CategoryID != categoryID || !eqIntPtr(f.SubCategoryID, subCategoryID) {
			continue
		}
		if !pathContainsSegment(f.HierarchyPath, rootID) {
			continue
		}
		f.IsDeleted = true
		f.ModifiedBy = &userID
		f.ModifiedAt = &now
		folderIDs = append(folderIDs, f.FolderID)
	}
	if len(folderIDs) == 0 {
		return false, nil
	}
	for _, d := range s.documents {
		if d.IsDeleted || d.CategoryID != categoryID || !eqIntPtr(d.SubCategoryID, subCategoryID) {
			continue
		}
		for _, id := range folderIDs {
			if d.FolderID == id {
				d.IsDeleted = true
				d.ModifiedBy = &userID
				d.ModifiedAt = &now
				break
			}
		}
	}
	return true, nil
}

func (s *fakeStore) ListRootFolders(ctx context.Context, categoryName, subCategoryName string) ([]models.Folder, error) {
	var out []models.Folder
	for _, f := range s.folders {
		if f.CategoryName == categoryName && f.SubCategoryName == subCategoryName &&
			f.ParentFolderID == nil && !f.IsDeleted {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (s *fakeStore) liveFolders() []*models.Folder {
	var out []*models.Folder
	for _, f := range s.folders {
		if !f.IsDeleted {
			out = append(out, f)
		}
	}
	return out
}

func (s *fakeStore) liveDocuments() []*models.Document {
	var out []*models.Document
	for _, d := range s.documents {
		if !d.IsDeleted {
			out = append(out, d)
		}
	}
	return out
}

func (s *fakeStore) snapshot() (map[int]*models.Folder, map[int]*models.Document, int, int) {
	folders := make(map[int]*models.Folder, len(s.folders))
	for id, f := range s.folders {
		cp := *f
		folders[id] = &cp
	}
	documents := make(map[int]*models.Document, len(s.documents))
	for id, d := range s.documents {
		cp := *d
		documents[id] = &cp
	}
	return folders, documents, s.nextFolderID, s.nextDocumentID
}

func (s *fakeStore) restore(folders map[int]*models.Folder, documents map[int]*models.Document, nextFolderID, nextDocumentID int) {
	s.folders = folders
	s.documents = documents
	s.nextFolderID = nextFolderID
	s.nextDocumentID = nextDocumentID
}

// pathContainsSegment mirrors the SQL hierarchy-path matching: the id must
// appear as a whole "/"-separated segment.
func pathContainsSegment(path, id string) bool {
	for _, seg := range strings.Split(path, "/") {
		if seg == id {
			return true
		}
	}
	return false
}

func eqIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// fakeTxManager applies all-or-nothing semantics over fakeStore: fn's writes
// survive only when fn returns nil and the context is still live at commit.
type fakeTxManager struct {
	store     *fakeStore
	commits   int
	rollbacks int
}

func (m *fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	folders, documents, nf, nd := m.store.snapshot()
	if err := fn(ctx); err != nil {
		m.store.restore(folders, documents, nf, nd)
		m.rollbacks++
		return err
	}
	if err := ctx.Err(); err != nil {
		m.store.restore(folders, documents, nf, nd)
		m.rollbacks++
		return fmt.Errorf("commit transaction: %w", err)
	}
	m.commits++
	return nil
}
