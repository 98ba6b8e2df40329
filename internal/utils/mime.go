package utils

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const defaultMimeType = "application/octet-stream"

var mimeTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".ppt":  "application/vnd.ms-powerpoint",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".txt":  "text/plain",
	".csv":  "text/csv",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".svg":  "image/svg+xml",
	".zip":  "application/zip",
	".rar":  "application/x-rar-compressed",
	".7z":   "application/x-7z-compressed",
	".mp3":  "audio/mpeg",
	".mp4":  "video/mp4",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",
}

// MimeTypeByExtension maps a file extension (with leading dot) to a content
// type. Matching is case-insensitive; unknown or empty extensions yield the
// generic binary type. Pure and total.
func MimeTypeByExtension(ext string) string {
	if mt, ok := mimeTypes[strings.ToLower(ext)]; ok {
		return mt
	}
	return defaultMimeType
}

// MimeTypeForFile classifies a file by its extension, falling back to content
// sniffing when the extension table has no answer. Sniffing itself falls back
// to the generic binary type, so the result is always non-empty.
func MimeTypeForFile(name string, data []byte) string {
	if mt, ok := mimeTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return mt
	}
	return mimetype.Detect(data).String()
}
