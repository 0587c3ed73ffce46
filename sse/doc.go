// Package sse provides the server side of Server-Sent Events.
//
// A Hub owns the connected clients. Broadcasts are encoded once and fanned
// out to every client whose ID matches a glob pattern; events with an ID are
// kept in a bounded history so reconnecting clients that send Last-Event-ID
// receive what they missed. Clients that cannot keep up lose events instead
// of stalling the hub.
//
//	comp := sse.NewComponent("/stream/listen", sse.WithRetry(3*time.Second))
//	router.GET("/stream/listen", func(c *gin.Context) {
//		sse.ServeSSE(comp.Hub(), c.Writer, c.Request, "feed:"+uuid.NewString())
//	})
//	comp.Hub().Broadcast(sse.Event{ID: id, Event: "new_msg", Data: payload})
package sse
