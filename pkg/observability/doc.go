/*
Package observability turns engine lifecycle hooks into logs and Prometheus metrics.

Both MetricsHooks and LogHooks return domain.LifecycleHooks, so they compose
with caller hooks through LifecycleHooks.Merge.
*/
package observability
