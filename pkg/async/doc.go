// Package async provides a minimal, generic future abstraction used as the
// engine's explicit suspension-point contract: remote rule round-trips and
// concurrent constraint evaluation are both expressed as futures with defined
// resolve/reject semantics.
//
// Go starts a computation and hands back a Future that settles exactly once.
// SettleAll waits for every future regardless of outcome and reports all
// rejections; it backs the engine's exhaustive orchestration strategy and
// its collection-level fan-out. The sequential short-circuit strategy runs
// its steps inline instead, so work after a failure is never started.
//
// # Usage
//
//	fut := async.Go(ctx, func(ctx context.Context) (string, error) {
//	    return client.Lookup(ctx, key)
//	})
//	value, err := fut.Await()
//
// All operations are safe for concurrent use; a Future may be awaited from
// multiple goroutines.
package async
