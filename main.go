package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/dweymouth/mpris-rpc/backend"
	"github.com/dweymouth/mpris-rpc/backend/mpris"
	"github.com/dweymouth/mpris-rpc/res"
)

func main() {
	flag.Parse()
	if *backend.FlagVersion {
		fmt.Println(res.AppVersionTag)
		return
	}
	if *backend.FlagHelp {
		flag.Usage()
		return
	}

	myApp, err := backend.StartupApp(res.AppName, res.AppVersionTag, res.LatestReleaseURL, res.DiscordAppID)
	if err != nil {
		log.Fatalf("fatal startup error: %v", err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = myApp.Run(ctx)
	stop()

	log.Println("Running shutdown tasks...")
	myApp.Shutdown()

	var violation *mpris.ProtocolViolation
	switch {
	case errors.As(err, &violation):
		log.Fatalf("fatal: media player broke the MPRIS contract: %v", err)
	case err != nil:
		log.Fatalf("fatal error: %v", err)
	}
}
