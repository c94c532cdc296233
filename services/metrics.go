package services

import "github.com/prometheus/client_golang/prometheus"

// Metrics zählt die schreibenden Operationen des Connectors.
type Metrics struct {
	PapersAdded    prometheus.Counter
	PapersDeleted  prometheus.Counter
	EntriesUpdated prometheus.Counter
	IngestSkipped  prometheus.Counter
}

// NewMetrics erstellt die Zähler und registriert sie bei reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PapersAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "papers_added_total",
			Help: "Total number of papers added to the database.",
		}),
		PapersDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "papers_deleted_total",
			Help: "Total number of papers deleted from the database.",
		}),
		EntriesUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "entries_updated_total",
			Help: "Total number of successful entry updates.",
		}),
		IngestSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ingest_skipped_total",
			Help: "Total number of literature entries skipped during batch ingestion.",
		}),
	}
	reg.MustRegister(m.PapersAdded, m.PapersDeleted, m.EntriesUpdated, m.IngestSkipped)
	return m
}

func (m *Metrics) incAdded() {
	if m != nil {
		m.PapersAdded.Inc()
	}
}

func (m *Metrics) incDeleted() {
	if m != nil {
		m.PapersDeleted.Inc()
	}
}

func (m *Metrics) incUpdated() {
	if m != nil {
		m.EntriesUpdated.Inc()
	}
}

func (m *Metrics) incSkipped() {
	if m != nil {
		m.IngestSkipped.Inc()
	}
}
