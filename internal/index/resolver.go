package index

import (
	"sort"
	"strings"
)

// Resolve maps a user-supplied gene token (canonical identifier, possibly
// versioned, or gene symbol) to the dataset's canonical gene identifier.
//
// Resolution order:
//  1. token carries the identifier prefix and exists verbatim in the gene
//     index: returned unchanged;
//  2. token carries the prefix but is not indexed: the version suffix (text
//     after the first period) is stripped and the lexicographically smallest
//     indexed identifier starting with the unversioned base wins;
//  3. otherwise the token is treated as a symbol: exact match, then
//     lowercase match.
//
// A false return is a normal outcome, not an error.
func (ix *Index) Resolve(token string) (string, bool) {
	if token == "" {
		return "", false
	}

	if ix.hasIDPrefix(token) {
		if _, ok := ix.genePos[token]; ok {
			return token, true
		}
		base, _, _ := strings.Cut(token, ".")
		if id, ok := ix.firstWithBase(base); ok {
			return id, true
		}
		return "", false
	}

	if ix.symbolToID != nil {
		if id, ok := ix.symbolToID[token]; ok {
			return id, true
		}
		if id, ok := ix.symbolToID[strings.ToLower(token)]; ok {
			return id, true
		}
	}
	return "", false
}

func (ix *Index) hasIDPrefix(token string) bool {
	prefix := ix.cfg.IDPrefix
	return prefix != "" && len(token) >= len(prefix) && strings.EqualFold(token[:len(prefix)], prefix)
}

// firstWithBase returns the smallest indexed identifier with base as prefix.
func (ix *Index) firstWithBase(base string) (string, bool) {
	i := sort.SearchStrings(ix.sortedIDs, base)
	if i < len(ix.sortedIDs) && strings.HasPrefix(ix.sortedIDs[i], base) {
		return ix.sortedIDs[i], true
	}
	return "", false
}
