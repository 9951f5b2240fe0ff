package download

import (
	"fmt"
	"mime"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/flytam/filenamify"
)

// mimeExts maps common image content types to the extension used when a
// filename has to be synthesized.
var mimeExts = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/bmp":     ".bmp",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
	"image/x-icon":  ".ico",
}

// extFromContentType maps a response content-type to a filename extension,
// falling back to .jpg when the type is unknown.
func extFromContentType(contentType string) string {
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	contentType = strings.TrimSpace(strings.ToLower(contentType))

	if ext, ok := mimeExts[contentType]; ok {
		return ext
	}

	exts, err := mime.ExtensionsByType(contentType)
	if err == nil && len(exts) > 0 {
		return exts[0]
	}

	return ".jpg"
}

// deriveFilename picks a name for the image fetched from u: the url's last
// path segment when it looks like a filename, otherwise a synthesized
// {domain}_{unixSeconds}{ext} name. The result is sanitized.
func deriveFilename(u string, contentType string, now time.Time) string {
	parsed, err := url.Parse(u)
	if err != nil {
		parsed = nil
	}

	if parsed != nil {
		seg := path.Base(parsed.Path)
		if seg != "." && seg != "/" && strings.Contains(seg, ".") {
			clean := sanitizeFilename(seg)
			// A segment like ".." sanitizes to nothing but dots; fall
			// through to synthesis rather than store under a degenerate
			// name.
			if strings.Trim(clean, ".") != "" {
				return clean
			}
		}
	}

	domain := ""
	if parsed != nil {
		domain = strings.TrimPrefix(parsed.Hostname(), "www.")
	}
	if domain == "" {
		domain = "image"
	}

	name := fmt.Sprintf("%s_%d%s", domain, now.Unix(), extFromContentType(contentType))
	return sanitizeFilename(name)
}

// sanitizeFilename strips every character that is not alphanumeric, '.',
// '-', or '_'.
func sanitizeFilename(name string) string {
	// First pass knocks out path separators and reserved device names.
	clean, err := filenamify.Filenamify(name, filenamify.Options{Replacement: "_"})
	if err != nil {
		clean = name
	}

	sb := strings.Builder{}
	for _, r := range clean {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == '.', r == '-', r == '_':
			sb.WriteRune(r)
		}
	}

	return sb.String()
}

// candidatePath returns the i'th candidate destination path for the given
// filename under dir: the filename itself for i=0, then _1, _2, ... before
// the extension.
func candidatePath(dir string, filename string, i int) string {
	if i == 0 {
		return filepath.Join(dir, filename)
	}

	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)

	return filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, i, ext))
}
