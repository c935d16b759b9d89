package metrics

// Wrapper adapts Metrics to the narrow interfaces the ml and resolver
// packages depend on, so neither imports Prometheus.
type Wrapper struct {
	m *Metrics
}

func NewWrapper(m *Metrics) *Wrapper {
	return &Wrapper{m: m}
}

func (w *Wrapper) ClassifierCallsInc() {
	w.m.ClassifierCalls.Inc()
}

func (w *Wrapper) ClassifierFailuresInc() {
	w.m.ClassifierFailures.Inc()
}

func (w *Wrapper) ClassifierLatencyObserve(v float64) {
	w.m.ClassifierLatency.Observe(v)
}

func (w *Wrapper) ModelAgeSet(v float64) {
	w.m.ModelAge.Set(v)
}

func (w *Wrapper) OutcomeInc(tag string) {
	w.m.Outcomes.WithLabelValues(tag).Inc()
}

func (w *Wrapper) RejectionInc(reason string) {
	w.m.Rejections.WithLabelValues(reason).Inc()
}

// WinProbabilityObserve records a returned win probability.
func (w *Wrapper) WinProbabilityObserve(v float64) {
	w.m.WinProbability.Observe(v)
}
