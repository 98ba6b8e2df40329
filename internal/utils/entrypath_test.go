package utils

import (
	"strings"
	"testing"
)

func TestValidateEntryPath(t *testing.T) {
	valid := []string{
		"root",
		"root/sub/file.txt",
		"root/with space/file-name_1.pdf",
	}
	for _, p := range valid {
		if err := ValidateEntryPath(p); err != nil {
			t.Errorf("ValidateEntryPath(%q) = %v, want nil", p, err)
		}
	}

	invalid := map[string]string{
		"empty":        "",
		"absolute":     "/root/file.txt",
		"backslash":    `root\file.txt`,
		"traversal":    "root/../file.txt",
		"dot segment":  "root/./file.txt",
		"blank middle": "root//file.txt",
		"long segment": "root/" + strings.Repeat("x", 501),
		"too deep":     strings.Repeat("d/", 70) + "file.txt",
	}
	for name, p := range invalid {
		if err := ValidateEntryPath(p); err == nil {
			t.Errorf("ValidateEntryPath(%s %q) = nil, want error", name, p)
		}
	}
}
