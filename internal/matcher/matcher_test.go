package matcher

import (
	"math"
	"reflect"
	"testing"

	"github.com/andresmejia3/facepipe/internal/store"
	"github.com/andresmejia3/facepipe/internal/types"
)

func axis(i int, v float32) types.Embedding {
	var e types.Embedding
	e[i] = v
	return e
}

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b types.Embedding
		want float64
	}{
		{"identical", axis(0, 1), axis(0, 1), 0},
		{"orthogonal unit vectors", axis(0, 1), axis(1, 1), math.Sqrt2},
		{"same axis", axis(3, 0.2), axis(3, 0.7), 0.5},
		{"zero vectors", types.Embedding{}, types.Embedding{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Distance(tt.a, tt.b); math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("Distance() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	known := []types.Embedding{axis(0, 1), axis(0, 0.5), axis(1, 1), axis(0, 0.4)}
	got := Compare(known, axis(0, 1), DefaultTolerance)
	// distances: 0, 0.5, sqrt2, 0.6 (inclusive boundary)
	want := []bool{true, true, false, true}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Compare() = %v, want %v", got, want)
	}
	if len(Compare(nil, axis(0, 1), DefaultTolerance)) != 0 {
		t.Error("Compare() with no known embeddings should be empty")
	}
}

func storeOf(pairs ...any) *store.Encodings {
	enc := &store.Encodings{}
	for i := 0; i < len(pairs); i += 2 {
		enc.Add(pairs[i].(string), pairs[i+1].(types.Embedding))
	}
	return enc
}

func TestRecognize(t *testing.T) {
	tests := []struct {
		name    string
		enc     *store.Encodings
		unknown types.Embedding
		want    Vote
		wantOK  bool
	}{
		{
			name:    "exact match returns its label",
			enc:     storeOf("alice", axis(0, 1), "bob", axis(1, 1)),
			unknown: axis(0, 1),
			want:    Vote{Label: "alice", Count: 1},
			wantOK:  true,
		},
		{
			name:    "no match is absent",
			enc:     storeOf("alice", axis(0, 1), "bob", axis(1, 1)),
			unknown: axis(2, 1),
			wantOK:  false,
		},
		{
			name:    "majority wins",
			enc:     storeOf("bob", axis(0, 0.9), "alice", axis(0, 1), "alice", axis(0, 0.8)),
			unknown: axis(0, 1),
			want:    Vote{Label: "alice", Count: 2},
			wantOK:  true,
		},
		{
			name:    "tie broken lexicographically",
			enc:     storeOf("zoe", axis(0, 1), "adam", axis(0, 0.9)),
			unknown: axis(0, 1),
			want:    Vote{Label: "adam", Count: 1},
			wantOK:  true,
		},
		{
			name:    "empty store is absent",
			enc:     &store.Encodings{},
			unknown: axis(0, 1),
			wantOK:  false,
		},
		{
			name:    "nil store is absent",
			enc:     nil,
			unknown: axis(0, 1),
			wantOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Recognize(tt.unknown, tt.enc, DefaultTolerance)
			if ok != tt.wantOK {
				t.Fatalf("Recognize() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Recognize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRecognizeTieBreakIsStable(t *testing.T) {
	enc := storeOf("carol", axis(0, 1), "bob", axis(0, 1), "alice", axis(0, 1))
	for i := 0; i < 20; i++ {
		got, _ := Recognize(axis(0, 1), enc, DefaultTolerance)
		if got.Label != "alice" {
			t.Fatalf("tie-break not deterministic: got %q", got.Label)
		}
	}
}

func TestLabel(t *testing.T) {
	if got := Label(Vote{}, false); got != types.UnknownLabel {
		t.Errorf("Label(absent) = %q, want %q", got, types.UnknownLabel)
	}
	if got := Label(Vote{Label: "alice", Count: 3}, true); got != "alice" {
		t.Errorf("Label() = %q, want alice", got)
	}
}
