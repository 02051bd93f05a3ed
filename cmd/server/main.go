// Command server runs the chat service: a TCP listener for plaintext clients
// and an HTTP side exposing a health check and a WebSocket gateway.
package main

import (
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tcpchat/internal/server"
)

const shutdownTimeout = 5 * time.Second

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (overrides environment)")
	flag.Parse()

	cfg := server.NewConfigFromEnv()
	if *configPath != "" {
		fileCfg, err := server.LoadConfigFile(*configPath)
		if err != nil {
			log.Fatalf("Unable to load config %s: %v", *configPath, err)
		}
		cfg = fileCfg
	}
	server.SetConfig(cfg)
	active := server.CurrentConfig()
	log.Printf("Starting with config: %+v", active)

	hub := server.NewHub()

	tcpServer := server.NewTCPServer(hub)
	if err := tcpServer.Listen(active.TCPAddr); err != nil {
		log.Fatalf("Unable to listen on %s: %v", active.TCPAddr, err)
	}
	log.Printf("Chat server listening on %s", tcpServer.Addr())

	go func() {
		if err := tcpServer.Serve(); err != nil {
			log.Printf("TCP serve error: %v", err)
		}
	}()

	httpServer := server.CreateServer(active.HTTPAddr, server.SetupRoutes(hub))
	go func() {
		if err := server.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("HTTP serve error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	log.Println("Stop signal received")

	if err := server.ShutdownServer(httpServer, shutdownTimeout); err != nil {
		log.Printf("HTTP shutdown: %v", err)
	}
	if err := tcpServer.Shutdown(shutdownTimeout); err != nil {
		log.Printf("TCP shutdown: %v", err)
	}
	log.Println("Bye")
}
