/*
Package observability turns reporter lifecycle events into metrics and logs.

Everything here is built on domain.LifecycleHooks: Metrics exposes Prometheus
collectors fed by hooks, LoggingHooks writes one structured record per event,
and ComposeHooks chains several hook sets into one.
*/
package observability
