package worker

import (
	"context"
	"time"

	"sjsage522/gramrelay/internal/crawler"
	"sjsage522/gramrelay/internal/post"
	"sjsage522/gramrelay/logger"
	"sjsage522/gramrelay/pkg/errors"
	"sjsage522/gramrelay/services/ledger"
	"sjsage522/gramrelay/services/publisher"
)

// Options tunes a worker run
type Options struct {
	// SendDelay is the pause between two deliveries
	SendDelay time.Duration
	// FlushEachDelivery persists the ledger after every delivery, not only at the end
	FlushEachDelivery bool
}

// Summary counts what happened to each source in a run
type Summary struct {
	Sources        int
	Delivered      int
	Unchanged      int
	Failed         int
	DeliveryFailed int
	Interrupted    bool
}

type outcome int

const (
	outcomeDelivered outcome = iota
	outcomeUnchanged
	outcomeFailed
	outcomeDeliveryFailed
	outcomeInterrupted
)

// Worker relays the latest post of every source, one source at a time
type Worker struct {
	crawlers   []crawler.Crawler
	classifier *post.Classifier
	ledger     *ledger.Ledger
	store      ledger.Store
	publisher  publisher.Publisher
	opts       Options

	// sleep waits for d or until ctx is done
	sleep func(ctx context.Context, d time.Duration) error

	// sent is true once a delivery succeeded in this run
	sent bool
}

// NewWorker creates a new worker
func NewWorker(
	crawlers []crawler.Crawler,
	classifier *post.Classifier,
	l *ledger.Ledger,
	store ledger.Store,
	pub publisher.Publisher,
	opts Options,
) *Worker {
	return &Worker{
		crawlers:   crawlers,
		classifier: classifier,
		ledger:     l,
		store:      store,
		publisher:  pub,
		opts:       opts,
		sleep:      sleepContext,
	}
}

// Run processes every source in order and flushes the ledger.
// A failing source is logged and skipped. Only a ledger write failure is
// returned. Cancelling ctx stops before the next source; the ledger is
// still flushed so deliveries already made stay recorded.
func (w *Worker) Run(ctx context.Context) (Summary, error) {
	log := logger.ForWorker()
	start := time.Now()

	var summary Summary
	for _, c := range w.crawlers {
		if ctx.Err() != nil {
			summary.Interrupted = true
			break
		}

		summary.Sources++
		result, err := w.relay(ctx, c)
		if err != nil {
			return summary, err
		}

		switch result {
		case outcomeDelivered:
			summary.Delivered++
		case outcomeUnchanged:
			summary.Unchanged++
		case outcomeFailed:
			summary.Failed++
		case outcomeDeliveryFailed:
			summary.DeliveryFailed++
		case outcomeInterrupted:
			summary.Interrupted = true
		}
		if summary.Interrupted {
			break
		}
	}

	if summary.Interrupted {
		log.Warn().Msg("Run interrupted, flushing ledger")
	}
	// Flush must not be skipped because ctx was cancelled
	if err := w.ledger.Flush(context.WithoutCancel(ctx), w.store); err != nil {
		return summary, err
	}

	log.Info().
		Int("sources", summary.Sources).
		Int("delivered", summary.Delivered).
		Int("unchanged", summary.Unchanged).
		Int("failed", summary.Failed).
		Int("delivery_failed", summary.DeliveryFailed).
		Dur("elapsed", time.Since(start)).
		Msg("Run finished")
	return summary, nil
}

// relay handles one source. Everything up to delivery is caught here; the
// returned error is reserved for ledger writes.
func (w *Worker) relay(ctx context.Context, c crawler.Crawler) (outcome, error) {
	log := logger.ForSource(c.GetSource())

	item, err := c.FetchLatest(ctx)
	if err != nil {
		log.Warn().
			Str("error_type", string(errors.TypeOf(err))).
			Bool("retryable", errors.IsRetryable(err)).
			Err(err).
			Msg("Skipping source")
		return outcomeFailed, nil
	}

	p := w.classifier.Classify(item)
	log = log.WithFields(logger.Fields{
		"username": p.Username,
		"item_id":  p.ItemID,
	})

	if !w.ledger.IsNew(p.Username, p.ItemID) {
		log.Debug().Msg("No new post")
		return outcomeUnchanged, nil
	}

	body, err := post.BuildPayload(p)
	if err != nil {
		log.Error().Str("error_type", "payload").Err(err).Msg("Skipping source")
		return outcomeFailed, nil
	}

	if w.sent {
		if err := w.sleep(ctx, w.opts.SendDelay); err != nil {
			return outcomeInterrupted, nil
		}
	}

	if err := w.publisher.Publish(ctx, body); err != nil {
		log.Error().
			Str("error_type", string(errors.TypeOf(err))).
			Bool("retryable", errors.IsRetryable(err)).
			Err(err).
			Msg("Delivery failed")
		return outcomeDeliveryFailed, nil
	}
	w.sent = true

	w.ledger.Record(p.Username, p.ItemID)
	log.Info().
		Int("images", len(p.ImageURLs)).
		Msg("Delivered new post")

	if w.opts.FlushEachDelivery {
		if err := w.ledger.Flush(context.WithoutCancel(ctx), w.store); err != nil {
			return outcomeDelivered, err
		}
	}
	return outcomeDelivered, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
