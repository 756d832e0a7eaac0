package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/mansoorceksport/liftlog/internal/config"
	"github.com/mansoorceksport/liftlog/internal/domain"
	"github.com/mansoorceksport/liftlog/internal/logging"
	"github.com/mansoorceksport/liftlog/internal/server"
	"github.com/mansoorceksport/liftlog/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	mode := flag.String("mode", "bootstrap", "bootstrap (recompute and overwrite) or reset (clear, then recompute)")
	dryRun := flag.Bool("dry-run", false, "Show the recomputed index next to the stored one without writing")
	flag.Parse()

	if *mode != "bootstrap" && *mode != "reset" {
		fmt.Println("Usage: rebuild_1rm [-mode bootstrap|reset] [-dry-run]")
		fmt.Println("\nRecomputes the historical 1RM index from every logged set.")
		fmt.Println("Both modes discard manual overrides.")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	logging.Setup(logging.LoggerSetupParams{
		LogToStdout: true,
		LogLevel:    cfg.Log.Level,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoDB.URI))
	if err != nil {
		logrus.Fatalf("failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())
	db := client.Database(cfg.MongoDB.Database)

	var redisClient *redis.Client
	if cfg.Historical1RM.Store == config.StoreRedis {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	store, err := server.NewHistorical1RMStore(cfg.Historical1RM, db, redisClient)
	if err != nil {
		logrus.Fatalf("failed to open historical 1RM store: %v", err)
	}
	historical := service.NewHistorical1RMService(store, server.NewRepositories(db).Sets)

	if *dryRun {
		computed, err := historical.Compute(ctx)
		if err != nil {
			logrus.Fatalf("failed to compute index: %v", err)
		}
		printDiff(historical.Snapshot(ctx), computed)
		fmt.Println("\n(dry run, nothing written)")
		return
	}

	fmt.Printf("Rebuilding historical 1RM index (mode=%s, store=%s)...\n", *mode, cfg.Historical1RM.Store)
	if *mode == "reset" {
		err = historical.Reset(ctx)
	} else {
		err = historical.Bootstrap(ctx)
	}
	if err != nil {
		logrus.Fatalf("rebuild failed: %v", err)
	}
	fmt.Printf("Done. %d exercises have a historical 1RM.\n", len(historical.Snapshot(ctx)))
}

func printDiff(stored, computed domain.Historical1RMIndex) {
	ids := make(map[string]struct{})
	for id := range stored {
		ids[id] = struct{}{}
	}
	for id := range computed {
		ids[id] = struct{}{}
	}
	sorted := make([]string, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)

	fmt.Printf("%-26s %12s %12s  %s\n", "EXERCISE", "STORED", "COMPUTED", "NOTE")
	for _, id := range sorted {
		s, c := stored[id], computed[id]
		note := ""
		switch {
		case s == nil:
			note = "new"
		case c == nil && s.IsManual():
			note = "manual, would be dropped"
		case c == nil:
			note = "no qualifying sets, would be dropped"
		case s.IsManual():
			note = "manual, would be overwritten"
		case s.Value != c.Value:
			note = "changed"
		}
		fmt.Printf("%-26s %12s %12s  %s\n", id, format(s), format(c), note)
	}
}

func format(rec *domain.Best1RmRecord) string {
	if rec == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", rec.Value)
}
