package engine

import "strings"

// mergeKey normalizes a link into its dedup identity.
func mergeKey(link string) string {
	return strings.ToLower(strings.TrimSpace(link))
}

// MergeCandidates combines both providers' lists into one deduplicated,
// order-stable list. Serper's list is consumed first, so when both
// providers surface the same URL the Serper candidate wins and Tavily
// only contributes novel URLs. Empty links are skipped.
func MergeCandidates(serper, tavily []Candidate) []Candidate {
	seen := make(map[string]struct{}, len(serper)+len(tavily))
	merged := make([]Candidate, 0, len(serper)+len(tavily))
	for _, list := range [][]Candidate{serper, tavily} {
		for _, c := range list {
			key := mergeKey(c.Link)
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, c)
		}
	}
	return merged
}
