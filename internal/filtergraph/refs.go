package filtergraph

import "regexp"

var streamRefPattern = regexp.MustCompile(`\[(\d+):[av]\]`)

// InputIndices returns the set of numeric input indices a graph references.
// The command builder compares this against the declared input list before
// spawning anything.
func InputIndices(graph string) map[int]struct{} {
	refs := make(map[int]struct{})
	for _, match := range streamRefPattern.FindAllStringSubmatch(graph, -1) {
		index := 0
		for _, ch := range match[1] {
			index = index*10 + int(ch-'0')
		}
		refs[index] = struct{}{}
	}
	return refs
}
