// Package sseclient is an EventSource for Go programs.
//
// A Source connects to a text/event-stream endpoint and dispatches events to
// handlers the way a browser EventSource does: unnamed events go to the
// OnMessage handler, named events to listeners added for their type. When
// the stream ends or the network fails, the Source reconnects after the
// retry delay, resuming with Last-Event-ID. A response that is not a 2xx
// text/event-stream closes the Source for good.
//
//	src, _ := sseclient.New("http://localhost:8080/stream/listen")
//	src.AddEventListener("new_msg", func(ev *sseclient.Event) {
//		p, err := sseclient.Decode(ev)
//		...
//	})
//	err := src.Run(ctx)
package sseclient
