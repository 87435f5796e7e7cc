// Package main provides simpleserve, a one-connection-at-a-time HTTP file server.
//
// Usage:
//
//	simpleserve [PORT]
//
// The served root is the directory holding the executable unless a
// simpleserve.toml or simpleserve.yaml in the working directory says
// otherwise. An index.html in the working directory is served for every
// request while it exists.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/fatih/color"

	"github.com/f4ah6o/simpleserve-go/internal/config"
	"github.com/f4ah6o/simpleserve-go/internal/listing"
	"github.com/f4ah6o/simpleserve-go/internal/resolve"
	"github.com/f4ah6o/simpleserve-go/internal/server"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Simple HTTP server\n\nUsage: %s [PORT]\n\n  PORT  listening port (default %d)\n",
			filepath.Base(os.Args[0]), config.DefaultPort)
	}
	flag.Parse()
	if flag.NArg() > 1 {
		flag.Usage()
		os.Exit(2)
	}

	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("Failed to get working directory: %v", err)
	}

	cfg := config.Default()
	if path := config.Find(wd); path != "" {
		cfg, err = config.Load(path)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		log.Printf("Loaded config from %s", path)
	}

	if arg := flag.Arg(0); arg != "" {
		port, err := strconv.Atoi(arg)
		if err != nil {
			log.Fatalf("Invalid port %q: %v", arg, err)
		}
		cfg.Port = port
		if err := cfg.Validate(); err != nil {
			log.Fatalf("Invalid port: %v", err)
		}
	}

	root, err := cfg.ResolveRoot()
	if err != nil {
		log.Fatalf("Failed to resolve directory: %v", err)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		log.Fatalf("Directory does not exist: %s", root)
	}

	format, err := listing.ParseFormat(cfg.ListingFormat)
	if err != nil {
		log.Fatalf("Invalid listing format: %v", err)
	}
	renderer, err := listing.NewRenderer(format, cfg.Charset)
	if err != nil {
		log.Fatalf("Invalid charset: %v", err)
	}

	handler := &server.Handler{
		Resolver:      resolve.New(root, cfg.ConfineToRoot),
		Renderer:      renderer,
		IndexFile:     cfg.IndexFile,
		StrictMethods: cfg.StrictMethods,
		Timeout:       cfg.Timeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf(":%d", cfg.Port)
	banner := color.New(color.FgCyan, color.Bold)
	banner.Printf("🌐 Serving %s at http://localhost%s\n", root, addr)
	if _, _, ok := resolve.IndexFile(wd, cfg.IndexFile); ok {
		color.Yellow("%s found in %s: it will be served for every request", cfg.IndexFile, wd)
	}
	if !cfg.ConfineToRoot {
		color.Red("confine_to_root is off: paths containing .. can leave %s", root)
	}
	fmt.Println("Press Ctrl+C to stop")

	if err := server.New(handler).ListenAndServe(ctx, addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Server stopped")
}
