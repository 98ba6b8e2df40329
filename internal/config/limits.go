package config

const (
	// MaxFolderNameLength is the maximum length for folder names.
	// Limited to 500 to fit the folders table VARCHAR(500).
	MaxFolderNameLength = 500

	// MaxFileNameLength is the maximum length for document file names.
	// Limited to 255 to fit the documents table VARCHAR(255).
	MaxFileNameLength = 255

	// MaxHierarchyDepth bounds the upward walk when materializing a
	// folder's hierarchy path. Folder creation never attaches a folder
	// under its own descendant, so the walk always terminates; the bound
	// exists so a corrupted parent chain surfaces as an error instead of
	// a runaway query.
	MaxHierarchyDepth = 64

	// DefaultBatchSize is the number of archive files inserted per
	// document batch when no override is configured.
	DefaultBatchSize = 10

	// NestedRootHierarchyLevel is the level assigned to an import root
	// created under an externally supplied parent folder. The value
	// assumes the external parent sits at level 1 of a pre-existing
	// tree; that depth is asserted by product, not derived.
	// TODO: confirm with product whether deeper external parents need
	// the level read from the parent row instead.
	NestedRootHierarchyLevel = 2
)
