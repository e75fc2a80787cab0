// Package archive stores raw fetched HTML so extraction regressions can
// be replayed without re-crawling.
package archive

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// ObjectPath builds the archive key for one fetched page:
// <source>/<yyyy>/<mm>/<dd>/<sha256(url)>.html. The URL hash keeps keys
// flat and collision-free regardless of path depth or query junk.
func ObjectPath(source, rawURL string, fetchedAt time.Time) string {
	sum := sha256.Sum256([]byte(rawURL))
	slug := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(source), " ", "-"))
	if slug == "" {
		slug = "unknown"
	}
	return fmt.Sprintf("%s/%s/%s.html", slug, fetchedAt.UTC().Format("2006/01/02"), hex.EncodeToString(sum[:]))
}
