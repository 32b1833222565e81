// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package paper

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/pdiddy/litreview/pkg/types"
)

// Fingerprint returns a stable content hash of a paper's title and author
// list: the first 16 hex characters of SHA-256 over the title and the
// order-preserving author join. Papers that differ only in URL share a
// fingerprint, so derived results (analyses, citation lookups) computed
// for one copy are reusable for the other. A collision between two
// distinct papers with identical title and authors is accepted risk.
func Fingerprint(title string, authors []string) string {
	h := sha256.New()
	h.Write([]byte(strings.TrimSpace(title)))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(authors, ", ")))
	return fmt.Sprintf("%x", h.Sum(nil))[:16]
}

// FingerprintPaper returns the fingerprint of p's title and authors.
func FingerprintPaper(p types.Paper) string {
	return Fingerprint(p.Title, p.Authors)
}
