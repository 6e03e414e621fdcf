// Package ports defines the interfaces between the application core and its
// adapters: inbound service ports implemented by the app layer and called by
// HTTP handlers, the store port implemented by the persistence adapters, and
// the outbound collaborator ports (payment gateway, notifier) implemented by
// the client adapters.
//
// All methods take a context for cancellation and tracing, and report
// failures through the sentinel errors in the domain package.
package ports
