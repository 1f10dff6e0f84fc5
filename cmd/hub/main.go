// Command hub runs and inspects a file-synchronization hub.
//
// Usage:
//
//	hub [-config FILE] serve
//	hub [-config FILE] store [-addr ADDR]
//	hub [-config FILE] referee
//	hub [-config FILE] service NAME
//	hub [-config FILE] status
//	hub [-config FILE] check
//
// The serve subcommand runs a whole deployment in one process.
// The store, referee, and service subcommands run its parts separately:
// one store server, one referee, and one process per service,
// all configured with a store of type "rpc" pointing at the store server.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/bobg/subcmd"

	"github.com/bobg/hub"
	_ "github.com/bobg/hub/driver/gcs"
	_ "github.com/bobg/hub/driver/local"
	_ "github.com/bobg/hub/driver/mem"
	_ "github.com/bobg/hub/driver/s3"
	_ "github.com/bobg/hub/driver/sftp"
	_ "github.com/bobg/hub/kv/logging"
	_ "github.com/bobg/hub/kv/lru"
	_ "github.com/bobg/hub/kv/mem"
	_ "github.com/bobg/hub/kv/pg"
	_ "github.com/bobg/hub/kv/rpc"
	_ "github.com/bobg/hub/kv/sqlite3"
)

type maincmd struct {
	conf *hub.Config
}

func main() {
	config := flag.String("config", "hub.json", "path to config file")
	flag.Parse()

	if *config == "" {
		log.Fatal("Config value not set")
	}

	conf, err := hub.LoadConfig(*config)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = subcmd.Run(ctx, maincmd{conf: conf}, flag.Args())
	if err != nil {
		log.Fatal(err)
	}
}

func (c maincmd) Subcmds() subcmd.Map {
	return subcmd.Commands(
		"check", c.check, subcmd.Params(
			"drivers", subcmd.Bool, false, "list the available drivers and their options",
		),
		"referee", c.referee, nil,
		"serve", c.serve, nil,
		"service", c.service, subcmd.Params(
			"addr", subcmd.String, "", "router address to listen on (default: the service's `listen` setting)",
		),
		"status", c.status, subcmd.Params(
			"json", subcmd.Bool, false, "print JSON",
		),
		"store", c.store, subcmd.Params(
			"addr", subcmd.String, c.conf.Listen, "address to listen on",
		),
	)
}
