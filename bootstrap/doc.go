// Package bootstrap runs a service or a finite task with a uniform
// lifecycle: start components, run hooks and configure callbacks, check
// readiness, print a startup summary, then shut down gracefully on
// SIGINT/SIGTERM or when the task returns.
//
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil {
//	    return err
//	}
//	app.RegisterComponent(server.NewComponent(srv))
//	return app.Run(ctx)
package bootstrap
