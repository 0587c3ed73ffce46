// Package resilience provides retry, reconnect backoff and circuit breaking.
//
// Retry wraps a finite operation (opening the database, posting an image).
// Backoff drives open-ended reconnect loops such as the event stream
// subscriber, where the base delay can change while the loop runs.
// CircuitBreaker stops calling a dependency that keeps failing, such as the
// redis feed channel.
package resilience
