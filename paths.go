package apidocs

import (
	"fmt"
	"path/filepath"
	"strings"
)

// sourceExt is the extension documentation pages are written with.
const sourceExt = ".api.md"

// ResolveOutputPath determines the rendered output path from the page
// source path and its pragmas. Without an output pragma, page.api.md
// becomes page.md (or page.html when the format pragma says so). A path
// that would resolve onto the source page itself is rejected so rendering
// can never clobber its own input.
func ResolveOutputPath(pagePath string, pragma Pragma) (string, error) {
	var out string
	if pragma.Output != "" {
		out = filepath.Join(filepath.Dir(pagePath), pragma.Output)
	} else {
		ext := ".md"
		if pragma.Format == "html" {
			ext = ".html"
		}

		base := strings.TrimSuffix(pagePath, sourceExt)
		if base == pagePath {
			// not a .api.md page, fall back to swapping whatever extension it has
			base = strings.TrimSuffix(pagePath, filepath.Ext(pagePath))
		}
		out = base + ext
	}

	if filepath.Clean(out) == filepath.Clean(pagePath) {
		return "", fmt.Errorf("output path %s would overwrite the source page", out)
	}
	return out, nil
}

func MustAbs(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		panic(err)
	}
	return abs
}
