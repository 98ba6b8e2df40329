package utils

import (
	"testing"
)

func TestMimeTypeByExtension(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		want string
	}{
		{name: "pdf", ext: ".pdf", want: "application/pdf"},
		{name: "docx", ext: ".docx", want: "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		{name: "uppercase extension", ext: ".PDF", want: "application/pdf"},
		{name: "mixed case extension", ext: ".JpEg", want: "image/jpeg"},
		{name: "text", ext: ".txt", want: "text/plain"},
		{name: "unknown extension", ext: ".xyz", want: "application/octet-stream"},
		{name: "empty extension", ext: "", want: "application/octet-stream"},
		{name: "missing dot", ext: "pdf", want: "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MimeTypeByExtension(tt.ext); got != tt.want {
				t.Errorf("MimeTypeByExtension(%q) = %q, want %q", tt.ext, got, tt.want)
			}
		})
	}
}

func TestMimeTypeForFile(t *testing.T) {
	t.Run("known extension wins without sniffing", func(t *testing.T) {
		// bytes say PNG, extension says pdf; the table answers first
		pngHeader := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
		if got := MimeTypeForFile("report.pdf", pngHeader); got != "application/pdf" {
			t.Errorf("MimeTypeForFile = %q, want application/pdf", got)
		}
	})

	t.Run("unknown extension falls back to sniffing", func(t *testing.T) {
		pngHeader := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
		if got := MimeTypeForFile("snapshot.dat", pngHeader); got != "image/png" {
			t.Errorf("MimeTypeForFile = %q, want image/png", got)
		}
	})

	t.Run("unknown extension and opaque bytes", func(t *testing.T) {
		if got := MimeTypeForFile("blob.bin", []byte{0x00, 0x01, 0x02}); got != "application/octet-stream" {
			t.Errorf("MimeTypeForFile = %q, want application/octet-stream", got)
		}
	})
}
