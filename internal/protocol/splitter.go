package protocol

import (
	"regexp"
	"strings"
)

// separator matches a maximal run of ASCII control bytes. Decompressed
// batches carry the inner frame headers inline, and their bytes fall mostly
// in this range, so splitting on it isolates the JSON texts.
var separator = regexp.MustCompile(`[\x00-\x1f]+`)

// SplitMessages extracts candidate JSON-object texts from a decompressed
// batch. The blob is cut at every run of control bytes, empty segments are
// dropped, and the segments containing at least one '{' are returned in
// their original order.
//
// This is a delimiter heuristic, not a JSON validator.
func SplitMessages(blob string) []string {
	var fragments []string
	for _, seg := range separator.Split(blob, -1) {
		if seg == "" || !strings.Contains(seg, "{") {
			continue
		}
		fragments = append(fragments, seg)
	}
	return fragments
}
