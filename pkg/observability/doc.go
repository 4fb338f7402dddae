/*
Package observability turns wizard lifecycle events into Prometheus metrics and
structured log records.

Both Metrics.Hooks and LogHooks return domain.LifecycleHooks; combine them with
domain.MergeHooks before handing them to the engine or the session manager.
*/
package observability
