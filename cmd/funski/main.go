package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"

	"github.com/funvibe/funski/internal/config"
	"github.com/funvibe/funski/internal/engine"
	"github.com/funvibe/funski/internal/history"
	"github.com/funvibe/funski/internal/rpc"
)

const usage = `Usage:
  funski [-config FILE]                   start the interactive shell
  funski [-config FILE] -e CMD [CMD...]   run commands and exit
  funski [-config FILE] serve [ADDR]      serve the gRPC API
  funski connect [ADDR]                   shell against a running server
  funski help                             show this message
`

// session is what every mode needs: the loaded configuration and, except for
// connect, a running engine.
type session struct {
	cfg    *config.Config
	engine *engine.Engine
	store  history.Store
}

func (s *session) Close() {
	if s.store == nil {
		return
	}
	if err := s.store.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error closing history: %s\n", err)
	}
}

// loadConfig reads path, or the funski.yaml found from the working
// directory upwards, or falls back to the defaults.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		if path, err = config.FindConfig(wd); err != nil {
			return nil, err
		}
		if path == "" {
			return config.Default(), nil
		}
	}
	return config.LoadConfig(path)
}

func openSession(ctx context.Context, configPath string) (*session, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	store, err := history.Open(cfg.History)
	if err != nil {
		return nil, err
	}
	eng, err := engine.New(ctx, cfg, store)
	if err != nil {
		store.Close()
		return nil, err
	}
	return &session{cfg: cfg, engine: eng, store: store}, nil
}

// splitConfigFlag removes a leading "-config FILE" from args.
func splitConfigFlag(args []string) (path string, rest []string, err error) {
	if len(args) == 0 || (args[0] != "-config" && args[0] != "--config") {
		return "", args, nil
	}
	if len(args) < 2 {
		return "", nil, fmt.Errorf("%s needs a file name", args[0])
	}
	return args[1], args[2:], nil
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// =============================================================================
// Modes
// =============================================================================

func runCommands(ctx context.Context, s *session, lines []string) int {
	style := s.engine.Style()
	status := 0
	for _, line := range lines {
		out, err := s.engine.RunLine(ctx, line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err)
			status = 1
			continue
		}
		for _, l := range engine.Lines(style, out, engine.Plain) {
			fmt.Println(l)
		}
	}
	return status
}

func serve(ctx context.Context, s *session, addr string) error {
	if addr == "" {
		addr = s.cfg.Server.Addr
	}
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)
	srv := rpc.NewServer(s.engine, logger, rpc.WithRateLimit(s.cfg.Server.RateLimit))
	gs := grpc.NewServer(srv.ServerOptions()...)
	if err := srv.Register(gs); err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		gs.GracefulStop()
	}()
	logger.Printf("serving %s on %s", rpc.ServiceName, lis.Addr())
	return gs.Serve(lis)
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(1)
		}
	}()
	log.SetFlags(0)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configPath, args, err := splitConfigFlag(os.Args[1:])
	if err != nil {
		fail("Error: %s", err)
	}

	if len(args) > 0 {
		switch args[0] {
		case "help", "-help", "--help", "-h":
			fmt.Print(usage)
			return

		case "connect":
			addr := config.DefaultServerAddr
			if len(args) > 1 {
				addr = args[1]
			}
			c, err := rpc.Dial(addr)
			if err != nil {
				fail("Error: %s", err)
			}
			defer c.Close()
			remoteRepl(ctx, c)
			return
		}
	}

	s, err := openSession(ctx, configPath)
	if err != nil {
		fail("Error: %s", err)
	}
	defer s.Close()

	if len(args) == 0 {
		repl(ctx, s)
		return
	}

	switch args[0] {
	case "-e", "--eval":
		if len(args) < 2 {
			fail("Usage: funski -e CMD [CMD...]")
		}
		if status := runCommands(ctx, s, args[1:]); status != 0 {
			s.Close()
			os.Exit(status)
		}
	case "serve":
		addr := ""
		if len(args) > 1 {
			addr = args[1]
		}
		if err := serve(ctx, s, addr); err != nil {
			s.Close()
			fail("Error: %s", err)
		}
	default:
		fmt.Fprint(os.Stderr, usage)
		s.Close()
		os.Exit(2)
	}
}
