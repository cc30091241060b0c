package exports

// ShortenColumn truncates every value to the shortest prefix length that
// keeps the column's distinct values pairwise unique. Identifying columns
// (user names, IP digests, session tokens) carry long opaque strings; a
// minimal unique prefix keeps the table readable and exports small without
// losing the ability to tell rows apart.
func ShortenColumn(values []string) []string {
	distinct := make(map[string]struct{}, len(values))
	maxLen := 0
	for _, v := range values {
		distinct[v] = struct{}{}
		if len(v) > maxLen {
			maxLen = len(v)
		}
	}
	if len(distinct) == 0 {
		return values
	}

	length := maxLen
	for i := 1; i <= maxLen; i++ {
		prefixes := make(map[string]struct{}, len(distinct))
		for v := range distinct {
			prefixes[prefix(v, i)] = struct{}{}
		}
		if len(prefixes) == len(distinct) {
			length = i
			break
		}
	}

	shortened := make([]string, len(values))
	for i, v := range values {
		shortened[i] = prefix(v, length)
	}
	return shortened
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
