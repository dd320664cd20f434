// Package matcher votes an unknown face embedding against the encoding store.
package matcher

import (
	"math"

	"github.com/andresmejia3/facepipe/internal/store"
	"github.com/andresmejia3/facepipe/internal/types"
)

// DefaultTolerance is the distance at or below which two faces are the same person.
const DefaultTolerance = 0.6

// Vote is the winning label and how many stored embeddings matched it.
type Vote struct {
	Label string
	Count int
}

// Distance is the Euclidean distance between two embeddings.
func Distance(a, b types.Embedding) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Compare reports, for every known embedding, whether it is within tolerance of unknown.
func Compare(known []types.Embedding, unknown types.Embedding, tolerance float64) []bool {
	matches := make([]bool, len(known))
	for i, k := range known {
		matches[i] = Distance(k, unknown) <= tolerance
	}
	return matches
}

// Recognize returns the label with the most matching embeddings. Ties go to
// the lexicographically smallest label. ok is false when nothing matched.
func Recognize(unknown types.Embedding, enc *store.Encodings, tolerance float64) (vote Vote, ok bool) {
	if enc == nil {
		return Vote{}, false
	}
	votes := make(map[string]int)
	for i, matched := range Compare(enc.Vectors, unknown, tolerance) {
		if matched {
			votes[enc.Names[i]]++
		}
	}

	for label, count := range votes {
		if count > vote.Count || (count == vote.Count && label < vote.Label) {
			vote = Vote{Label: label, Count: count}
		}
	}
	return vote, vote.Count > 0
}

// Label maps a Recognize result to the rendered label.
func Label(vote Vote, ok bool) string {
	if !ok {
		return types.UnknownLabel
	}
	return vote.Label
}
