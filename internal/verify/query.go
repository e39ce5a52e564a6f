// internal/verify/query.go
package verify

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// matchCount reports how many elements in the document contain fragment in
// their rendered text. Script and style bodies are not rendered text and are
// excluded.
func matchCount(r io.Reader, fragment string) (int, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return 0, err
	}

	// Drop non-rendered text so a fragment inside a bundled script does not
	// count as visible content.
	doc.Find("script, style").Remove()

	count := 0
	doc.Find("body, body *").Each(func(_ int, s *goquery.Selection) {
		if strings.Contains(s.Text(), fragment) {
			count++
		}
	})
	return count, nil
}
