package utils

import (
	"path/filepath"
	"strings"
)

// fileCategories maps filename extensions to the coarse categories the
// browsing UI groups and filters by.
var fileCategories = map[string]string{
	"pdf":  "document",
	"doc":  "document",
	"docx": "document",
	"txt":  "document",
	"xls":  "spreadsheet",
	"xlsx": "spreadsheet",
	"csv":  "spreadsheet",
	"ppt":  "presentation",
	"pptx": "presentation",
	"jpg":  "image",
	"jpeg": "image",
	"png":  "image",
	"gif":  "image",
	"webp": "image",
	"svg":  "image",
	"mp4":  "video",
	"avi":  "video",
	"mov":  "video",
	"mkv":  "video",
	"mp3":  "audio",
	"wav":  "audio",
	"ogg":  "audio",
	"zip":  "archive",
	"rar":  "archive",
	"7z":   "archive",
	"tar":  "archive",
	"gz":   "archive",
	"js":   "code",
	"py":   "code",
	"html": "code",
	"css":  "code",
	"json": "code",
}

// FileCategory returns the display category for a filename, falling back to
// the generic "file" for unknown extensions.
func FileCategory(name string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if cat, ok := fileCategories[ext]; ok {
		return cat
	}
	return "file"
}
