package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/AlibekovAA/snapfeed/internal/common/bootstrap"
	"github.com/AlibekovAA/snapfeed/internal/common/config"
	"github.com/AlibekovAA/snapfeed/internal/common/db"
)

func main() {
	target := flag.Int64("to", 0, "version to roll back to (down only; 0 rolls back one step)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: migrate [-to version] up|status|down\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	log, err := bootstrap.NewLogger("migrate")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.LoadMigrateConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	migrator, err := db.NewMigrator(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatalf("failed to initialize migrator: %v", err)
	}

	ctx := context.Background()
	switch command {
	case "up":
		err = migrator.Up(ctx)
	case "status":
		err = migrator.Status(ctx)
	case "down":
		err = migrator.Down(ctx, *target)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("migrate %s failed: %v", command, err)
	}
	_ = log.Close()
}
