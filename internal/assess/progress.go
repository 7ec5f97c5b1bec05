package assess

import "github.com/rs/zerolog/log"

// Progress is one immutable milestone event. Fractions are monotonically
// non-decreasing within a single assessment.
type Progress struct {
	Message  string
	Fraction float64
}

// progressSink delivers events to the consumer's channel without ever
// blocking the pipeline worker. The consumer drains on its own schedule;
// if its buffer is full the event is dropped, not waited on.
type progressSink struct {
	ch   chan<- Progress
	last float64
}

func newProgressSink(ch chan<- Progress) *progressSink {
	return &progressSink{ch: ch}
}

func (p *progressSink) emit(message string, fraction float64) {
	if fraction < p.last {
		fraction = p.last
	}
	p.last = fraction

	if p.ch == nil {
		return
	}
	select {
	case p.ch <- Progress{Message: message, Fraction: fraction}:
	default:
		log.Debug().Str("message", message).Msg("Progress consumer busy, event dropped")
	}
}
