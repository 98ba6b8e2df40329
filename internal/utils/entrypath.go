package utils

import (
	"fmt"
	"strings"

	"docload/internal/config"
)

// ValidateEntryPath checks an archive entry path before it is mapped onto the
// folder hierarchy. Archives are untrusted input: traversal segments, absolute
// paths and oversized names are rejected rather than normalized.
func ValidateEntryPath(path string) error {
	if path == "" {
		return fmt.Errorf("entry path is empty")
	}
	if strings.HasPrefix(path, "/") {
		return fmt.Errorf("entry path is absolute")
	}
	if strings.ContainsRune(path, '\\') {
		return fmt.Errorf("entry path contains a backslash")
	}

	segments := strings.Split(path, "/")
	if len(segments) > config.MaxHierarchyDepth {
		return fmt.Errorf("entry path exceeds %d segments", config.MaxHierarchyDepth)
	}
	for _, segment := range segments {
		if strings.TrimSpace(segment) == "" {
			return fmt.Errorf("entry path contains an empty segment")
		}
		if segment == "." || segment == ".." {
			return fmt.Errorf("entry path contains a traversal segment")
		}
		if len(segment) > config.MaxFolderNameLength {
			return fmt.Errorf("entry path segment exceeds %d characters", config.MaxFolderNameLength)
		}
	}

	return nil
}
