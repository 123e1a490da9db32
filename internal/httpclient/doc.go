// Package httpclient performs the GET attempts hostbench measures.
//
// [NewClient] builds an *http.Client with pooled keep-alive connections whose
// dial, TLS and response-header waits are bounded by the per-request timeout.
// [Executor] wraps that client:
//
//	exec := httpclient.NewExecutor(httpclient.NewClient(5*time.Second),
//		httpclient.WithTracer(provider.Tracer(), provider.ShouldPropagate()),
//	)
//	outcomes, err := exec.ExecuteN(ctx, "https://example.com", 5*time.Second, 10)
//
// Transport failures never surface as Go errors from [Executor.Execute]; they
// become [metrics.OutcomeError] outcomes so every attempt is counted. The only
// error [ExecuteN] returns is [ErrInvalidArgument] for a count below one.
// The executor does not log; the runner logs failed attempts per host.
package httpclient
