// Package metrics classifies request outcomes and aggregates them per host.
//
// # Outcomes
//
// Every GET attempt produces one [Outcome]: either [OK] with a status code and
// elapsed time, or [Failure] for a transport-level problem. [Classify] maps an
// outcome to a report bucket:
//
//   - 2xx: success, latency counted
//   - 4xx and 5xx: failed, latency ignored
//   - transport failure: error
//   - anything else (1xx, 3xx, out of range): other
//
// # Host reports
//
// [Aggregate] folds the outcomes of one host into an immutable [HostReport]:
//
//	report := metrics.Aggregate("https://example.com", outcomes)
//	if fastest, ok := report.Min(); ok {
//		fmt.Println(fastest)
//	}
//
// Min and max latency are only defined when at least one request succeeded;
// the accessors return ok=false otherwise. Percentiles come from an
// HdrHistogram over the successful latencies.
//
// # Live progress
//
// [Collector] receives per-request callbacks while a batch runs and serves
// snapshots to the progress reporter and the dashboard. It is safe for
// concurrent use.
package metrics
