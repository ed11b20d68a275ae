package issue

import (
	"sort"
	"strconv"
	"strings"

	"github.com/sondelabs/querywatch/internal/analyzer"
	"github.com/sondelabs/querywatch/internal/fingerprint"
	"github.com/sondelabs/querywatch/internal/severity"
)

// Assembler converts raw findings into the final issue list: suppressed
// findings are dropped, each finding's evidence is deduplicated by
// operation shape, equivalent findings of the same kind are merged, and
// the survivors are rated and ordered.
type Assembler struct {
	overrides map[string]map[string]float64
}

// NewAssembler builds an assembler using the given threshold overrides,
// keyed by issue kind, layered over the documented defaults.
func NewAssembler(overrides map[string]map[string]float64) *Assembler {
	return &Assembler{overrides: overrides}
}

// merged is a finding plus its deduplicated evidence, accumulated while
// equivalent findings fold into it.
type merged struct {
	finding     analyzer.Finding
	occurrences []Occurrence
	order       int
}

// Assemble produces the ordered issue list for one pass.
func (a *Assembler) Assemble(findings []analyzer.Finding) []Issue {
	groups := make(map[string]*merged)
	var keys []string

	for _, f := range findings {
		th := severity.Resolve(f.Kind, a.overrides[f.Kind])
		if severity.ShouldSuppress(f.Kind, f.Metrics, th) {
			continue
		}

		occ := dedupeOperations(f)
		key := mergeKey(f.Kind, occ)
		if len(occ) == 0 {
			// Findings without operation evidence (source category)
			// describe distinct sites and never merge.
			key += "\x00#" + strconv.Itoa(len(keys))
		}

		if g, ok := groups[key]; ok {
			g.fold(f, occ)
			continue
		}
		groups[key] = &merged{finding: f, occurrences: occ, order: len(keys)}
		keys = append(keys, key)
	}

	issues := make([]Issue, 0, len(keys))
	for _, key := range keys {
		g := groups[key]
		f := g.finding
		th := severity.Resolve(f.Kind, a.overrides[f.Kind])

		issues = append(issues, Issue{
			ID:          NewID(),
			Kind:        f.Kind,
			Title:       f.Title,
			Narrative:   f.Narrative,
			Severity:    severity.Calculate(f.Kind, f.Metrics, th),
			Metrics:     f.Metrics,
			Occurrences: g.occurrences,
			Origin:      f.Origin,
			Params:      f.Params,
		})
	}

	// Critical first, then warnings; equal severities keep first-seen
	// order.
	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Severity > issues[j].Severity
	})

	return issues
}

// fold merges an equivalent finding into the group: metrics are summed
// and occurrence counts accumulate, while the first finding keeps
// supplying the wording and the origin. Summing happens on a fresh
// map; the findings handed to Assemble are never mutated.
func (g *merged) fold(f analyzer.Finding, occ []Occurrence) {
	summed := make(severity.Metrics, len(g.finding.Metrics))
	for k, v := range g.finding.Metrics {
		summed[k] = v
	}
	for k, v := range f.Metrics {
		summed[k] += v
	}
	g.finding.Metrics = summed
	for i := range g.occurrences {
		g.occurrences[i].Count += occ[i].Count
		g.occurrences[i].DurationMs += occ[i].DurationMs
	}
}

// dedupeOperations collapses a finding's operations by shape. The first
// instance of each shape represents it; later instances only add to the
// count and duration.
func dedupeOperations(f analyzer.Finding) []Occurrence {
	index := make(map[string]int)
	var occ []Occurrence

	for _, op := range f.Operations {
		fp := fingerprint.Fingerprint(op.Text)
		if i, seen := index[fp]; seen {
			occ[i].Count++
			occ[i].DurationMs += op.DurationMs
			continue
		}
		index[fp] = len(occ)
		occ = append(occ, Occurrence{
			Fingerprint: fp,
			Query:       op.Text,
			Count:       1,
			DurationMs:  op.DurationMs,
			Origin:      op.TopFrame(),
		})
	}
	return occ
}

// mergeKey identifies findings that describe the same problem: same
// kind over the same ordered list of operation shapes.
func mergeKey(kind string, occ []Occurrence) string {
	var b strings.Builder
	b.WriteString(kind)
	for _, o := range occ {
		b.WriteByte('\x00')
		b.WriteString(o.Fingerprint)
	}
	return b.String()
}
