// Package redis provides a go-redis client component with pooling,
// health checks and pub/sub helpers.
//
//	comp := redis.NewComponent(cfg.Redis, log)
//	// after Start
//	err := comp.Client().Publish(ctx, "imagefeed:events", payload)
//	sub := comp.Client().Subscribe(ctx, "imagefeed:events")
package redis
