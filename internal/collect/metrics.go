package collect

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts orchestrator turns and fallbacks.
type Metrics struct {
	turns     *prometheus.CounterVec
	fallbacks *prometheus.CounterVec
}

// NewMetrics registers the collection metrics on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		turns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "collection_turns_total",
				Help: "Conversational turns processed, by mode and resulting action.",
			},
			[]string{"mode", "action"},
		),
		fallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "collection_fallbacks_total",
				Help: "Turns answered by the deterministic fallback, by mode and reason.",
			},
			[]string{"mode", "reason"},
		),
	}
	for _, c := range []prometheus.Collector{m.turns, m.fallbacks} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) turn(mode Mode, action string) {
	if m == nil {
		return
	}
	m.turns.WithLabelValues(string(mode), action).Inc()
}

func (m *Metrics) fallback(mode Mode, reason string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(string(mode), reason).Inc()
}
