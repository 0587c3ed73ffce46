// Command feedwatch follows an imagefeed event stream and prints each new
// image, or submits one image and exits.
//
//	feedwatch --stream.url http://localhost:5000/stream/listen --output.html_file events.html
//	feedwatch --send https://example.com/cat.png --message "look"
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/kbukum/imagefeed/bootstrap"
	"github.com/kbukum/imagefeed/config"
	"github.com/kbukum/imagefeed/gallery"
	"github.com/kbukum/imagefeed/httpclient"
	"github.com/kbukum/imagefeed/logger"
	"github.com/kbukum/imagefeed/render"
	"github.com/kbukum/imagefeed/sseclient"
)

const serviceName = "feedwatch"

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := pflag.NewFlagSet(serviceName, pflag.ContinueOnError)
	configFile := fs.String("config", "", "path to config.yml")
	envFile := fs.String("env-file", "", "path to a .env file")
	sendURL := fs.String("send", "", "submit the image at `URL` and exit")
	message := fs.String("message", "", "message sent with --send")
	fs.String("stream.url", "", "event stream URL")
	fs.String("stream.token", "", "bearer token for the stream")
	fs.String("stream.tls.ca_file", "", "PEM bundle trusted for an https stream")
	fs.String("output.html_file", "", "rewrite this file with the events list on every event")
	fs.String("api.base_url", "", "imagefeed base URL used by --send")
	fs.String("api.token", "", "bearer token used by --send")
	fs.String("logging.level", "", "log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		if stderrors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	opts := []config.LoaderOption{config.WithFlags(fs)}
	if *configFile != "" {
		opts = append(opts, config.WithConfigFile(*configFile))
	}
	if *envFile != "" {
		opts = append(opts, config.WithEnvFile(*envFile))
	}
	var cfg Config
	if err := config.LoadConfig(serviceName, &cfg, opts...); err != nil {
		return err
	}

	app, err := bootstrap.NewApp(&cfg, bootstrap.WithoutSummary())
	if err != nil {
		return err
	}
	if *sendURL != "" {
		return app.RunTask(ctx, func(ctx context.Context) error {
			return send(ctx, cfg.API, *sendURL, *message, stdout)
		})
	}
	return app.RunTask(ctx, func(ctx context.Context) error {
		return watch(ctx, &cfg, app.Logger, stdout)
	})
}

// send submits one image and prints the stored URL.
func send(ctx context.Context, cfg gallery.ClientConfig, url, message string, w io.Writer) error {
	client, err := gallery.NewClient(cfg)
	if err != nil {
		return err
	}
	resp, err := client.SendImage(ctx, url, message)
	if err != nil {
		return fmt.Errorf("send image: %w", err)
	}
	_, err = fmt.Fprintf(w, "received %s\n", resp.URL)
	return err
}

// watch prints every new image until ctx ends or the stream fails for good.
func watch(ctx context.Context, cfg *Config, log *logger.Logger, w io.Writer) error {
	opts := []sseclient.Option{
		sseclient.WithLogger(log.WithComponent("sseclient")),
		sseclient.WithRetry(cfg.Stream.Retry),
		sseclient.WithMaxRetry(cfg.Stream.MaxRetry),
		sseclient.WithTLS(&cfg.Stream.TLS),
	}
	if cfg.Stream.Token != "" {
		opts = append(opts, sseclient.WithAuth(httpclient.BearerAuth(cfg.Stream.Token)))
	}
	source, err := sseclient.New(cfg.Stream.URL, opts...)
	if err != nil {
		return err
	}

	source.OnMessage(func(ev *sseclient.Event) {
		log.Info("Stream message", map[string]interface{}{"id": ev.ID, "data": ev.Data})
	})

	list := render.NewList(max(cfg.Output.Limit, 0))
	source.AddEventListener(gallery.EventNewImage, func(ev *sseclient.Event) {
		p, err := sseclient.Decode(ev)
		if err != nil {
			log.Warn("Skipping malformed event", map[string]interface{}{"id": ev.ID, "error": err.Error()})
			return
		}
		entry := render.NewEntry(p)
		if err := render.WriteText(w, entry); err != nil {
			log.Error("Write entry", map[string]interface{}{"error": err.Error()})
		}
		list.Append(entry)
		if cfg.Output.HTMLFile == "" {
			return
		}
		if err := writeHTMLFile(cfg.Output.HTMLFile, list); err != nil {
			log.Error("Rewrite HTML file", map[string]interface{}{
				"file":  cfg.Output.HTMLFile,
				"error": err.Error(),
			})
		}
	})
	return source.Run(ctx)
}

// writeHTMLFile replaces path with the rendered list. Readers never see a
// partial file.
func writeHTMLFile(path string, list *render.List) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := list.WriteHTML(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
