package mailer

import (
	"time"

	"outreach-gateway/pkg/models"

	"github.com/rs/zerolog"
)

// Dispatcher sends batches strictly one message at a time. Providers are
// not safe under concurrent submission from a single account, so throttling
// is a fixed pause between sends rather than a worker pool.
type Dispatcher struct {
	transport Transport
	log       zerolog.Logger

	// OnOutcome, when set, observes each outcome as it is produced (used
	// for live progress streaming). It must not block for long.
	OnOutcome func(models.DispatchOutcome)

	sleep func(time.Duration)
}

func NewDispatcher(transport Transport, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		transport: transport,
		log:       log,
		sleep:     time.Sleep,
	}
}

// DispatchAll sends every message in order, pausing for delay after each
// send except the last, whether or not that send succeeded. A failed send
// is recorded in its outcome and never stops the rest of the batch; the
// whole batch always runs to completion. Outcomes are returned in input
// order with Index matching the input position. There are no retries and
// no deduplication.
func (d *Dispatcher) DispatchAll(messages []models.OutboundMessage, delay time.Duration) models.DispatchSummary {
	summary := models.DispatchSummary{
		TotalSent: len(messages),
		Results:   make([]models.DispatchOutcome, 0, len(messages)),
	}

	for i, msg := range messages {
		outcome := models.DispatchOutcome{
			Index:   i,
			To:      msg.To,
			Subject: msg.Subject,
		}

		messageID, err := d.transport.Send(msg)
		if err != nil {
			outcome.Error = err.Error()
			summary.FailureCount++
			d.log.Warn().Err(err).
				Int("index", i+1).
				Int("total", len(messages)).
				Str("to", msg.To).
				Msg("email failed")
		} else {
			outcome.Success = true
			outcome.MessageID = messageID
			summary.SuccessCount++
			d.log.Info().
				Int("index", i+1).
				Int("total", len(messages)).
				Str("to", msg.To).
				Msg("email sent")
		}

		summary.Results = append(summary.Results, outcome)
		if d.OnOutcome != nil {
			d.OnOutcome(outcome)
		}

		if i < len(messages)-1 && delay > 0 {
			d.sleep(delay)
		}
	}

	return summary
}
