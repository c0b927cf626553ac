package metrics

import (
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"overviewer.app/internal/save/world"
)

// LookupObserver counts chunk lookup outcomes per dimension so "empty" and
// "corrupt" can be told apart even though callers only see absence.
type LookupObserver struct {
	lookups *prometheus.CounterVec
}

var _ world.Observer = (*LookupObserver)(nil)

// NewLookupObserver registers its collector on reg. A nil reg uses a private
// registry.
func NewLookupObserver(reg prometheus.Registerer) (*LookupObserver, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	o := &LookupObserver{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "overviewer",
			Subsystem: "save",
			Name:      "chunk_lookups_total",
			Help:      "Chunk lookups by dimension, operation and outcome.",
		}, []string{"dimension", "op", "outcome"}),
	}
	if err := reg.Register(o.lookups); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *LookupObserver) ObserveLookup(kind string, op world.Op, outcome world.Outcome) {
	o.lookups.WithLabelValues(kind, string(op), outcome.String()).Inc()
}

// Total is one counter series.
type Total struct {
	Dimension string
	Op        string
	Outcome   string
	Count     uint64
}

// Totals reads back every non-zero series, sorted by labels.
func (o *LookupObserver) Totals() []Total {
	ch := make(chan prometheus.Metric, 64)
	go func() {
		o.lookups.Collect(ch)
		close(ch)
	}()

	var out []Total
	for m := range ch {
		var pb dto.Metric
		if err := m.Write(&pb); err != nil {
			continue
		}
		t := Total{Count: uint64(pb.GetCounter().GetValue())}
		for _, lp := range pb.GetLabel() {
			switch lp.GetName() {
			case "dimension":
				t.Dimension = lp.GetValue()
			case "op":
				t.Op = lp.GetValue()
			case "outcome":
				t.Outcome = lp.GetValue()
			}
		}
		if t.Count > 0 {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Dimension != b.Dimension {
			return a.Dimension < b.Dimension
		}
		if a.Op != b.Op {
			return a.Op < b.Op
		}
		return a.Outcome < b.Outcome
	})
	return out
}
