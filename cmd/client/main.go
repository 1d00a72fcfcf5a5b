package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"streamgate/internal/client"
	"streamgate/internal/client/cli"
	"streamgate/internal/client/session"
	"streamgate/internal/logging"
)

func main() {
	cfg, err := client.LoadConfig(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	log := logging.NewLogger("streamgate-client", "warn")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deviceID, err := client.DeviceID(cfg.StateDir)
	if err != nil {
		log.WithError(err).Fatal("failed to load device id")
	}

	var obf *session.Obfuscator
	if cfg.Obfuscate {
		if obf, err = session.NewObfuscator(session.HostKey()); err != nil {
			log.WithError(err).Fatal("failed to set up session obfuscation")
		}
	}
	store := session.NewFileStore(cfg.StateDir, obf)

	api := client.NewAPI(cfg.ServerURL, 15*time.Second)
	auth := client.NewAuth(ctx, api, store, deviceID, cfg.PollInterval, log)
	defer auth.Close()

	if state, err := auth.Restore(ctx); err != nil {
		log.WithError(err).Warn("failed to restore session")
	} else if state != client.LoggedOut {
		fmt.Printf("resumed %s session\n", state)
	}

	cli.NewApp(auth, api, os.Stdin, os.Stdout).Run(ctx)
}
