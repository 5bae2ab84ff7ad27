package docstore

import (
	"fmt"
	"path/filepath"
	"strings"
)

// URL schemes accepted by Open.
const (
	schemeSQLite = "sqlite:"

	// schemePLocal names a database directory rather than a file.
	schemePLocal = "plocal:"

	plocalFilename = "documents.db"
)

// ResolvePath maps a database URL to the SQLite file it names.
//
//	sqlite:./data/descriptions.db -> ./data/descriptions.db
//	plocal:/var/lib/graysense/db  -> /var/lib/graysense/db/documents.db
//	./data/descriptions.db        -> ./data/descriptions.db
//
// Any other scheme (postgres://, remote:, ...) returns ErrUnsupportedURL.
func ResolvePath(url string) (string, error) {
	switch {
	case url == "":
		return "", fmt.Errorf("%w: empty url", ErrUnsupportedURL)
	case strings.HasPrefix(url, schemeSQLite):
		path := strings.TrimPrefix(strings.TrimPrefix(url, schemeSQLite), "//")
		if path == "" {
			return "", fmt.Errorf("%w: %s has no path", ErrUnsupportedURL, url)
		}
		return path, nil
	case strings.HasPrefix(url, schemePLocal):
		dir := strings.TrimPrefix(url, schemePLocal)
		if dir == "" {
			return "", fmt.Errorf("%w: %s has no directory", ErrUnsupportedURL, url)
		}
		return filepath.Join(dir, plocalFilename), nil
	case strings.Contains(url, "://"), hasScheme(url):
		return "", fmt.Errorf("%w: %s", ErrUnsupportedURL, url)
	default:
		return url, nil
	}
}

// URLForName builds the URL of a named database inside a data directory.
func URLForName(dataDir, name string) string {
	return schemeSQLite + filepath.Join(dataDir, name+".db")
}

// hasScheme reports whether url starts with "word:" where word has no path
// separators. Windows drive letters are treated as paths.
func hasScheme(url string) bool {
	i := strings.Index(url, ":")
	if i <= 1 {
		return false
	}
	return !strings.ContainsAny(url[:i], `/\.`)
}
