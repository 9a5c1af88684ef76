package adminapi

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// Signature derives the deterministic key used by both the cache and the
// deduplicator. Identical method+path+params+body always produce the same
// signature; changing any one changes it. The key stays human readable
// (method, path and canonical query in the clear, body folded to a digest)
// so cache invalidation can match on path.
func Signature(method, path string, query url.Values, body []byte) string {
	var b strings.Builder
	b.WriteString(method)
	b.WriteByte(':')
	b.WriteString(path)
	if len(query) > 0 {
		b.WriteByte('?')
		b.WriteString(canonicalQuery(query))
	}
	if len(body) > 0 {
		sum := sha256.Sum256(body)
		b.WriteByte('#')
		b.WriteString(hex.EncodeToString(sum[:8]))
	}
	return b.String()
}

// canonicalQuery renders parameters with sorted keys and sorted values so
// logically identical parameter sets share one signature.
func canonicalQuery(q url.Values) string {
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	first := true
	for _, k := range keys {
		vals := append([]string(nil), q[k]...)
		sort.Strings(vals)
		for _, v := range vals {
			if !first {
				b.WriteByte('&')
			}
			first = false
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	return b.String()
}
