package ledger

import (
	"context"
	"errors"
	"sync"
	"time"

	"chain-chat-relay/backend/internal/metrics"
	"chain-chat-relay/backend/internal/models"
	"chain-chat-relay/backend/pkg/logger"
)

// ResultCache stores resolved transactions keyed by identifier so
// repeated mentions of the same hash skip the ledger round trips.
type ResultCache interface {
	Get(txID string) (models.Transaction, bool)
	Set(txID string, tx models.Transaction)
}

// Enricher resolves transaction identifiers concurrently against a
// TxReader. Per-identifier failures are contained here: the caller
// always gets back a (possibly shorter) list, never an error.
type Enricher struct {
	reader        TxReader
	cache         ResultCache // optional
	lookupTimeout time.Duration
	log           *logger.Logger
}

// NewEnricher creates an enricher. cache may be nil. lookupTimeout
// bounds one identifier's full lookup chain so a stalled endpoint
// cannot delay a message broadcast indefinitely.
func NewEnricher(reader TxReader, cache ResultCache, lookupTimeout time.Duration, log *logger.Logger) *Enricher {
	if lookupTimeout <= 0 {
		lookupTimeout = 15 * time.Second
	}
	return &Enricher{
		reader:        reader,
		cache:         cache,
		lookupTimeout: lookupTimeout,
		log:           log,
	}
}

// Enrich resolves every identifier concurrently and returns the
// successful results in input order; failed identifiers are dropped.
// Zero identifiers short-circuits without touching the ledger.
func (e *Enricher) Enrich(ctx context.Context, txIDs []string) []models.Transaction {
	if len(txIDs) == 0 {
		return []models.Transaction{}
	}

	start := time.Now()
	metrics.EnrichmentLookups.Add(float64(len(txIDs)))

	// Index-tagged results keep input order regardless of which
	// lookup settles first.
	results := make([]*models.Transaction, len(txIDs))
	var wg sync.WaitGroup
	for i, txID := range txIDs {
		wg.Add(1)
		go func(i int, txID string) {
			defer wg.Done()
			tx, err := e.resolve(ctx, txID)
			if err != nil {
				metrics.EnrichmentFailures.WithLabelValues(failureReason(err)).Inc()
				e.log.Warn("transaction enrichment dropped", "txId", txID, "error", err.Error())
				return
			}
			results[i] = tx
		}(i, txID)
	}
	wg.Wait()

	out := make([]models.Transaction, 0, len(txIDs))
	for _, tx := range results {
		if tx != nil {
			out = append(out, *tx)
		}
	}

	metrics.EnrichmentDuration.Observe(time.Since(start).Seconds())
	return out
}

// resolve runs the three-step chain for one identifier: transaction by
// hash, containing block for the timestamp, wei-to-ether conversion.
func (e *Enricher) resolve(ctx context.Context, txID string) (*models.Transaction, error) {
	if e.cache != nil {
		if tx, ok := e.cache.Get(txID); ok {
			metrics.EnrichmentCacheHits.Inc()
			return &tx, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, e.lookupTimeout)
	defer cancel()

	rpcTx, err := e.reader.TransactionByHash(ctx, txID)
	if err != nil {
		return nil, err
	}
	if rpcTx.BlockNumber == "" {
		// Pending transactions carry no block yet, so no timestamp.
		return nil, ErrNotFound
	}

	blk, err := e.reader.BlockByNumber(ctx, rpcTx.BlockNumber)
	if err != nil {
		return nil, err
	}

	wei, err := ParseQuantity(rpcTx.Value)
	if err != nil {
		return nil, err
	}
	date, err := ParseTimestamp(blk.Timestamp)
	if err != nil {
		return nil, err
	}

	tx := &models.Transaction{
		TxID:  txID,
		From:  rpcTx.From,
		To:    rpcTx.To,
		Date:  date,
		Value: WeiToEther(wei),
	}
	if e.cache != nil {
		e.cache.Set(txID, *tx)
	}
	return tx, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		var rpcErr *rpcError
		if errors.As(err, &rpcErr) {
			return "rpc_error"
		}
		return "lookup_error"
	}
}
