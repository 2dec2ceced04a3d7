package layout

import (
	"sort"
	"strings"
	"unicode"

	"github.com/paperpoint/invoice-extractor/constants"
	"github.com/paperpoint/invoice-extractor/internal/pdfio"
)

// Thresholds are the geometric tuning constants of the resolver, in page
// units. Defaults reproduce the layouts this tool was built against; expose
// them through configuration when porting to other document resolutions.
type Thresholds struct {
	RightGap      float64 // gap between label's right edge and the capture box
	RightMaxWidth float64 // capture box width, right-of-label
	BelowGap      float64 // gap between label's bottom edge and the capture box
	BelowHeight   float64 // capture box height, below-label
	BelowMaxWidth float64 // capture box width, below-label
	ColumnGap     float64 // minimum vertical drop for column candidates
	ColumnMaxDrop float64 // maximum vertical drop for column candidates
	ColumnDrift   float64 // horizontal drift tolerance around the column span
}

// DefaultThresholds returns the stock geometry constants.
func DefaultThresholds() Thresholds {
	return Thresholds{
		RightGap:      5,
		RightMaxWidth: 200,
		BelowGap:      5,
		BelowHeight:   40,
		BelowMaxWidth: 200,
		ColumnGap:     5,
		ColumnMaxDrop: 60,
		ColumnDrift:   10,
	}
}

// Resolver finds the value token(s) for a located label by trying geometric
// strategies in order and returning the first accepted result. The label
// exclusion set is built once from the field configuration and never mutated.
type Resolver struct {
	labels map[string]struct{}
	th     Thresholds
}

// NewResolver builds a resolver for the given field set. The lowercased label
// strings become the exclusion list that stops one field's label being read
// as another field's value.
func NewResolver(specs []constants.FieldSpec, th Thresholds) *Resolver {
	return &Resolver{labels: constants.LabelSet(specs), th: th}
}

// strategyFn produces a candidate value; accept decides whether the cascade
// stops there. All strategies share one signature so the cascade is a plain
// ordered slice.
type strategyFn struct {
	apply  func() string
	accept func(string) bool
}

// Resolve runs the strategy cascade for one located label. An empty string
// means no strategy produced an acceptable value.
func (r *Resolver) Resolve(page *pdfio.Page, labelTokens []pdfio.Token, spec constants.FieldSpec) string {
	if len(labelTokens) == 0 {
		return ""
	}

	nonEmpty := func(s string) bool { return s != "" }

	var cascade []strategyFn
	if spec.Column {
		cascade = append(cascade, strategyFn{
			apply:  func() string { return r.columnBelow(page, labelTokens) },
			accept: nonEmpty,
		})
	}
	cascade = append(cascade,
		strategyFn{
			apply: func() string { return r.rightOfLabel(page, labelTokens) },
			// A right-of-label capture must not itself be another configured
			// label, and must carry at least one digit; label text with no
			// numeral is a mis-detected boundary, not a value.
			accept: func(s string) bool {
				if s == "" {
					return false
				}
				if _, isLabel := r.labels[strings.ToLower(s)]; isLabel {
					return false
				}
				return containsDigit(s)
			},
		},
		// Lowest-confidence fallback: anything non-empty below the label.
		strategyFn{
			apply:  func() string { return r.belowLabel(page, labelTokens) },
			accept: nonEmpty,
		},
	)

	for _, s := range cascade {
		if v := s.apply(); s.accept(v) {
			return v
		}
	}
	return ""
}

// columnBelow recovers a value printed directly beneath a table-header style
// label: tokens whose top sits in the vertical band under the label and whose
// center aligns with the label's column span, joined left to right. Tolerant
// of the value splitting into several tokens (currency marker, then number).
func (r *Resolver) columnBelow(page *pdfio.Page, labelTokens []pdfio.Token) string {
	colLeft := labelTokens[0].X0
	colRight := labelTokens[0].X1
	labelBottom := labelTokens[0].Bottom
	for _, t := range labelTokens[1:] {
		if t.X0 < colLeft {
			colLeft = t.X0
		}
		if t.X1 > colRight {
			colRight = t.X1
		}
		if t.Bottom > labelBottom {
			labelBottom = t.Bottom
		}
	}

	var candidates []pdfio.Token
	for _, t := range page.Words() {
		if !(t.Top > labelBottom+r.th.ColumnGap && t.Top < labelBottom+r.th.ColumnMaxDrop) {
			continue
		}
		center := t.CenterX()
		if center >= colLeft-r.th.ColumnDrift && center <= colRight+r.th.ColumnDrift {
			candidates = append(candidates, t)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].X0 < candidates[j].X0 })

	parts := make([]string, 0, len(candidates))
	for _, t := range candidates {
		parts = append(parts, t.Text)
	}
	return pdfio.Clean(strings.Join(parts, " "))
}

// rightOfLabel crops a box immediately right of the label's last token,
// matching the label's own vertical extent.
func (r *Resolver) rightOfLabel(page *pdfio.Page, labelTokens []pdfio.Token) string {
	last := labelTokens[len(labelTokens)-1]
	x0 := last.X1 + r.th.RightGap
	x1 := x0 + r.th.RightMaxWidth
	if x1 > page.Width {
		x1 = page.Width
	}
	return page.Crop(pdfio.Box{X0: x0, Top: last.Top, X1: x1, Bottom: last.Bottom})
}

// belowLabel crops a box anchored at the label's left edge, starting just
// under the label's first token.
func (r *Resolver) belowLabel(page *pdfio.Page, labelTokens []pdfio.Token) string {
	first := labelTokens[0]
	top := first.Bottom + r.th.BelowGap
	x1 := first.X0 + r.th.BelowMaxWidth
	if x1 > page.Width {
		x1 = page.Width
	}
	bottom := top + r.th.BelowHeight
	if bottom > page.Height {
		bottom = page.Height
	}
	return page.Crop(pdfio.Box{X0: first.X0, Top: top, X1: x1, Bottom: bottom})
}

func containsDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
