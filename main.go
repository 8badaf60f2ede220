package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"time"

	"SketchBoard/internal/config"
	boardnet "SketchBoard/internal/net"
	"SketchBoard/internal/ui"
)

const discoverTimeout = 2 * time.Second

func main() {
	configPath := flag.String("config", "sketchboard.toml", "path to the TOML config file")
	host := flag.Bool("host", false, "host a new board instead of joining one")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if link := flag.Arg(0); link != "" {
		addr, ok := boardnet.ParseLink(link)
		if !ok {
			log.Fatalf("Not a board link: %s (expected %shost:port)", link, boardnet.LinkScheme)
		}
		runClient(cfg, addr)
		return
	}
	if *host {
		runHost(cfg)
		return
	}
	if cfg.Relay.Address != "" {
		runClient(cfg, cfg.Relay.Address)
		return
	}
	if cfg.Relay.Discover {
		if addr, ok := discover(); ok {
			runClient(cfg, addr)
			return
		}
	}
	runHost(cfg)
}

// discover looks for a board already hosted on the local network.
func discover() (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), discoverTimeout)
	defer cancel()
	hosts, err := boardnet.Discover(ctx, discoverTimeout)
	if err != nil {
		log.Printf("[NET] Discovery failed: %v", err)
	}
	if len(hosts) == 0 {
		log.Println("No board found on the network, hosting a new one")
		return "", false
	}
	for _, h := range hosts[1:] {
		log.Printf("[NET] Also found %q at %s", h.Name, h.Addr)
	}
	log.Printf("Joining %q at %s", hosts[0].Name, hosts[0].Addr)
	return hosts[0].Addr, true
}

func runHost(cfg *config.Config) {
	log.Println("Starting as HOST")
	port := cfg.Relay.Port
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	relay := boardnet.NewRelay(cfg.Relay.Name, cfg.Relay.BatchInterval.Duration)
	go func() {
		if err := relay.Serve(ctx, ln); err != nil {
			log.Printf("[RELAY] Stopped: %v", err)
		}
	}()

	if cfg.Relay.Advertise {
		server, err := boardnet.Advertise(port, cfg.Relay.Name)
		if err != nil {
			log.Printf("[NET] Not advertising: %v", err)
		} else {
			defer server.Shutdown()
			log.Printf("[NET] Advertising %q over mDNS", cfg.Relay.Name)
		}
	}

	hostIP, err := boardnet.OutgoingIP()
	if err != nil {
		log.Printf("[NET] %v", err)
		hostIP = "127.0.0.1"
	}
	shareLink := boardnet.ShareLink(hostIP, port)
	log.Printf("Share this link: %s", shareLink)

	ui.RunApp(ui.Options{
		Config:    cfg,
		Addr:      net.JoinHostPort("127.0.0.1", fmt.Sprint(port)),
		ShareLink: shareLink,
		Relay:     relay,
	})
}

func runClient(cfg *config.Config, addr string) {
	log.Println("Starting as CLIENT")
	ui.RunApp(ui.Options{Config: cfg, Addr: addr})
}
