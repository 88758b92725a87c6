package lsp

import (
	"net/url"
	"path/filepath"
	"strings"
)

// UriToPath returns the local path of a file:// URI, or "" for anything else.
func UriToPath(uri string) string {
	if !strings.HasPrefix(uri, "file://") {
		return ""
	}
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	return filepath.FromSlash(u.Path)
}

// displayName is what logs show for a document.
func displayName(uri string) string {
	if p := UriToPath(uri); p != "" {
		return filepath.Base(p)
	}
	return uri
}
