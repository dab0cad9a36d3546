package otel

import "go.opentelemetry.io/otel/metric"

// Metrics holds all chatdigest metric instruments.
type Metrics struct {
	MessagesStored    metric.Int64Counter
	MessagesEvicted   metric.Int64Counter
	ChatsCleared      metric.Int64Counter
	SummariesServed   metric.Int64Counter
	SummarizeDuration metric.Float64Histogram
	StorageErrors     metric.Int64Counter
}

// NewMetrics creates all metric instruments from the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.MessagesStored, err = meter.Int64Counter("chatdigest.messages.stored",
		metric.WithDescription("Messages appended to the transcript store"),
	)
	if err != nil {
		return nil, err
	}

	m.MessagesEvicted, err = meter.Int64Counter("chatdigest.messages.evicted",
		metric.WithDescription("Messages deleted by age-based eviction"),
	)
	if err != nil {
		return nil, err
	}

	m.ChatsCleared, err = meter.Int64Counter("chatdigest.chats.cleared",
		metric.WithDescription("Messages deleted by explicit chat clears"),
	)
	if err != nil {
		return nil, err
	}

	m.SummariesServed, err = meter.Int64Counter("chatdigest.summaries.served",
		metric.WithDescription("Summaries rendered and replied"),
	)
	if err != nil {
		return nil, err
	}

	m.SummarizeDuration, err = meter.Float64Histogram("chatdigest.summarize.duration",
		metric.WithDescription("Summary computation duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	m.StorageErrors, err = meter.Int64Counter("chatdigest.storage.errors",
		metric.WithDescription("Storage-unavailable failures surfaced to callers"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}
