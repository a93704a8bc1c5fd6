// Command localstored runs a page-local storage node.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"localstore/internal/config"
	"localstore/internal/node"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "localstored: %v\n", err)
		os.Exit(1)
	}

	flag.StringVar(&cfg.NodeID, "node-id", cfg.NodeID, "node identifier used in logs")
	flag.StringVar(&cfg.ListenAddr, "listen", cfg.ListenAddr, "gRPC listen address")
	flag.IntVar(&cfg.QueueSize, "queue-size", cfg.QueueSize, "storage request queue capacity")
	flag.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "time allowed for in-flight calls on shutdown")
	flag.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "log every request")
	flag.Parse()

	n, err := node.NewNode(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "localstored: %v\n", err)
		os.Exit(1)
	}

	stopped := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer close(stopped)
		sig := <-sigCh
		log.Printf("[%s] Received %s", cfg.NodeID, sig)
		n.Stop()
	}()

	if err := n.Start(); err != nil {
		log.Printf("[%s] %v", cfg.NodeID, err)
		n.Stop()
		os.Exit(1)
	}
	// Serve returns as soon as shutdown begins; wait for it to finish.
	<-stopped
}
