// Package stream connects the gallery to stream subscribers.
//
// HubPublisher announces an image to the local SSE hub. RedisBridge
// publishes to a redis channel instead and forwards every channel message to
// the local hub, so all instances behind a load balancer share one feed.
package stream
