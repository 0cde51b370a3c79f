// Package layout recovers visual structure (lines, header, column bands)
// from positioned text tokens.
package layout

import (
	"math"
	"sort"

	"packslip/internal/domain"
)

// DefaultYTolerance is the maximum y-center distance from a line's anchor
// token for another token to join that line.
const DefaultYTolerance = 3.0

// ClusterLines groups tokens into visual lines in a single greedy pass.
//
// Each token joins the first existing line (in creation order) whose anchor,
// the first token placed in it, has a y-center within yTolerance of the
// token's own y-center. This is first-fit, not nearest-fit: a token that is
// within tolerance of two lines always goes to the older one. Lines are
// returned top-to-bottom by anchor and tokens inside a line left-to-right;
// both sorts are stable so equal coordinates keep insertion order.
func ClusterLines(tokens []domain.Token, yTolerance float64) []domain.Line {
	var lines []domain.Line
	for _, tok := range tokens {
		cy := tok.CenterY()
		placed := false
		for i := range lines {
			if math.Abs(cy-lines[i].AnchorY) <= yTolerance {
				lines[i].Tokens = append(lines[i].Tokens, tok)
				placed = true
				break
			}
		}
		if !placed {
			lines = append(lines, domain.Line{AnchorY: cy, Tokens: []domain.Token{tok}})
		}
	}

	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].AnchorY < lines[j].AnchorY
	})
	for i := range lines {
		toks := lines[i].Tokens
		sort.SliceStable(toks, func(a, b int) bool {
			return toks[a].X < toks[b].X
		})
	}
	return lines
}
