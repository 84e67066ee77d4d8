// Package enrich backfills missing fields on snapshot records with a bounded pool
// of concurrent workers.
//
// Workers share a single atomic cursor over the item slice and claim indices
// exclusively, so every record is written by at most one goroutine and no locking
// is needed around the records themselves. Records that already carry the field are
// skipped without a fetch, which makes repeated runs cheap and idempotent.
//
// A failed fetch is logged as a warning and leaves the field absent; it never stops
// the pool. There is no mid-flight cancellation: Fill runs until every index has
// been claimed.
//
// # Usage
//
//	pool := enrich.NewPool(logger, cfg.Enrich.Concurrency)
//	stats := pool.Fill(ctx, collection.Records(), enrich.Job{
//	    Field: "last_repository_updated_at",
//	    Fetch: client.LastRepositoryUpdate,
//	})
package enrich
