package layout

import (
	"sort"
	"strings"

	"packslip/internal/domain"
)

// DefaultEdgeMargin is how far the first band extends left of its center and
// the last band extends right of its center. It is a tunable heuristic.
const DefaultEdgeMargin = 40.0

// ColumnGroup names the header keywords that identify one semantic column.
// A keyword may span several words ("order id"); it then matches consecutive
// header words.
type ColumnGroup struct {
	Key      domain.ColumnKey `yaml:"key" json:"key"`
	Keywords []string         `yaml:"keywords" json:"keywords"`
}

type headerWord struct {
	text  string
	x     float64
	token int
}

// splitHeaderWords expands header tokens into lowercased words. Words from a
// multi-word token share the token's x.
func splitHeaderWords(header domain.Line) []headerWord {
	var words []headerWord
	for i, tok := range header.Tokens {
		for _, w := range strings.Fields(strings.ToLower(tok.Text)) {
			w = strings.Trim(w, ":.#|,()")
			if w == "" {
				continue
			}
			words = append(words, headerWord{text: w, x: tok.X, token: i})
		}
	}
	return words
}

// DeriveBands builds non-overlapping column bands from a header line.
//
// For every group whose keywords appear in the header, the band center is
// the mean x of the matched header tokens. Centers are sorted ascending and
// adjacent bands meet at the midpoint between their centers. The first band
// starts edgeMargin left of its center and the last band ends edgeMargin
// right of its center. Each header token is claimed by at most one group, in
// group order. Groups with no match produce no band.
func DeriveBands(header domain.Line, groups []ColumnGroup, edgeMargin float64) []domain.ColumnBand {
	words := splitHeaderWords(header)
	claimed := make(map[int]bool)

	var bands []domain.ColumnBand
	seen := make(map[domain.ColumnKey]bool)
	for _, g := range groups {
		if seen[g.Key] {
			continue
		}
		var matched []int
		for _, kw := range g.Keywords {
			matched = matchKeyword(words, strings.Fields(strings.ToLower(kw)), claimed)
			if len(matched) > 0 {
				break
			}
		}
		if len(matched) == 0 {
			continue
		}

		// Matched words are consecutive, so their tokens come in ascending
		// order and the sum is taken in header order.
		var sum float64
		var tokens []int
		for _, wi := range matched {
			ti := words[wi].token
			if n := len(tokens); n > 0 && tokens[n-1] == ti {
				continue
			}
			tokens = append(tokens, ti)
			sum += header.Tokens[ti].X
			claimed[ti] = true
		}
		seen[g.Key] = true
		bands = append(bands, domain.ColumnBand{Key: g.Key, CenterX: sum / float64(len(tokens))})
	}

	sort.SliceStable(bands, func(i, j int) bool {
		return bands[i].CenterX < bands[j].CenterX
	})
	for i := range bands {
		if i == 0 {
			bands[i].MinX = bands[i].CenterX - edgeMargin
		} else {
			bands[i].MinX = (bands[i-1].CenterX + bands[i].CenterX) / 2
		}
		if i == len(bands)-1 {
			bands[i].MaxX = bands[i].CenterX + edgeMargin
		} else {
			bands[i].MaxX = (bands[i].CenterX + bands[i+1].CenterX) / 2
		}
	}
	return bands
}

// matchKeyword finds the first run of consecutive header words equal to kw
// whose tokens are not yet claimed, and returns the word indexes.
func matchKeyword(words []headerWord, kw []string, claimed map[int]bool) []int {
	if len(kw) == 0 {
		return nil
	}
	for start := 0; start+len(kw) <= len(words); start++ {
		ok := true
		for k := range kw {
			w := words[start+k]
			if w.text != kw[k] || claimed[w.token] {
				ok = false
				break
			}
		}
		if ok {
			idx := make([]int, len(kw))
			for k := range kw {
				idx[k] = start + k
			}
			return idx
		}
	}
	return nil
}

// BandFor returns the first band containing x. Adjacent bands share their
// boundary point, so the left band wins at an exact boundary.
func BandFor(bands []domain.ColumnBand, x float64) (domain.ColumnBand, bool) {
	for _, b := range bands {
		if b.Contains(x) {
			return b, true
		}
	}
	return domain.ColumnBand{}, false
}

// HasBand reports whether a band with the given key exists.
func HasBand(bands []domain.ColumnBand, key domain.ColumnKey) bool {
	for _, b := range bands {
		if b.Key == key {
			return true
		}
	}
	return false
}
