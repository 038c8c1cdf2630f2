package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/voyplan/voyplan-backend/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Printf("failed to initialize app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Start(); err != nil {
		fmt.Printf("failed to start background services: %v\n", err)
		os.Exit(1)
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		a.Close()
		os.Exit(0)
	}()

	addr := ":" + a.Cfg.Port
	if err := a.Run(addr); err != nil {
		fmt.Printf("server exited: %v\n", err)
		os.Exit(1)
	}
}
