package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gogpu/gg"

	"CanvasBoard/internal/client"
	"CanvasBoard/internal/config"
	cbnet "CanvasBoard/internal/net"
	"CanvasBoard/internal/render"
	"CanvasBoard/internal/server"
	"CanvasBoard/internal/state"
	"CanvasBoard/internal/ui"
	"CanvasBoard/internal/upload"
)

const browseTimeout = 3 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	args := os.Args[1:]
	var err error
	switch {
	case len(args) > 0 && args[0] == "serve":
		err = runServer(ctx, args[1:])
	case len(args) > 0 && args[0] == "join":
		err = runJoin(ctx, args[1:])
	case len(args) > 0 && strings.HasPrefix(args[0], cbnet.Scheme):
		err = runClient(ctx, args[0], args[1:])
	default:
		err = runHost(ctx, args)
	}
	if err != nil {
		log.Fatalf("canvasboard: %v", err)
	}
}

type backend struct {
	cfg     config.Config
	handler *server.Server
	mdns    interface{ Shutdown() error }
}

func newBackend(cfg config.Config) (*backend, error) {
	if cfg.Debug {
		gg.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	uploads, err := upload.NewStore(cfg.UploadDir, cfg.MaxUploadBytes)
	if err != nil {
		return nil, err
	}
	store := state.NewStore(uploads)
	srv := server.New(store, uploads, server.Options{AllowedOrigins: cfg.AllowedOrigins})
	return &backend{cfg: cfg, handler: srv}, nil
}

// start binds the port, advertises it and serves until ctx is done. The
// returned channel yields Serve's result.
func (b *backend) start(ctx context.Context) (int, <-chan error, error) {
	ln, err := cbnet.Listen(b.cfg.Port)
	if err != nil {
		return 0, nil, err
	}
	port := cbnet.Port(ln)
	if b.cfg.Advertise {
		m, err := cbnet.Advertise(b.cfg.InstanceName, port)
		if err != nil {
			log.Printf("[MDNS] Advertising disabled: %v", err)
		} else {
			b.mdns = m
		}
	}
	done := make(chan error, 1)
	go func() {
		done <- cbnet.Serve(ctx, ln, b.handler.Handler())
		if b.mdns != nil {
			_ = b.mdns.Shutdown()
		}
	}()
	return port, done, nil
}

func runServer(ctx context.Context, args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}
	b, err := newBackend(cfg)
	if err != nil {
		return err
	}
	port, done, err := b.start(ctx)
	if err != nil {
		return err
	}
	log.Printf("[SERVER] CanvasBoard API ready at %s", cbnet.ShareLink(cbnet.OutgoingIP(), port, ""))
	return <-done
}

// runHost serves in-process and opens a board on a fresh session, the way the
// board's original host mode worked.
func runHost(ctx context.Context, args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}
	b, err := newBackend(cfg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	port, done, err := b.start(ctx)
	if err != nil {
		return err
	}
	log.Println("[SERVER] Starting as HOST")

	api := client.New(fmt.Sprintf("http://127.0.0.1:%d", port))
	err = openBoard(ctx, api, "", cfg, func(id string) string {
		return cbnet.ShareLink(cbnet.OutgoingIP(), port, id)
	})
	cancel()
	if serr := <-done; err == nil {
		err = serr
	}
	return err
}

// runClient joins the session a share link points at.
func runClient(ctx context.Context, link string, args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}
	base, sessionID, err := cbnet.ParseShareLink(link)
	if err != nil {
		return err
	}
	log.Printf("[CLIENT] Joining %s", link)
	return openBoard(ctx, client.New(base), sessionID, cfg, func(string) string { return link })
}

// runJoin opens a new session on the configured server, or on the first one
// advertised on the LAN.
func runJoin(ctx context.Context, args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}
	base := cfg.ServerURL
	if base == "" {
		if base, err = cbnet.Browse(ctx, browseTimeout); err != nil {
			return err
		}
		log.Printf("[CLIENT] Found server at %s", base)
	}
	return openBoard(ctx, client.New(base), "", cfg, func(id string) string {
		return cbnet.Scheme + strings.TrimPrefix(base, "http://") + "/" + id
	})
}

func openBoard(ctx context.Context, api *client.Client, sessionID string, cfg config.Config, share func(id string) string) error {
	s := client.NewSync(api, client.NewBoard(render.DefaultFonts))
	if err := s.Open(ctx, sessionID, cfg.CanvasWidth, cfg.CanvasHeight); err != nil {
		return err
	}
	ui.RunApp(ctx, s, share(s.Board().SessionID()))
	return nil
}
