// Command heatmap reconstructs every receipt in a directory and writes all
// routes to one GeoJSON FeatureCollection.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"ridetrace/internal/app"
	"ridetrace/internal/config"
	"ridetrace/internal/logging"
	"ridetrace/internal/model"
	"ridetrace/internal/service/ride"

	flag "github.com/spf13/pflag"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	flag.StringVar(&cfg.StationsPath, "stations", cfg.StationsPath, "station GeoJSON or OSM PBF file")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	flag.IntVarP(&cfg.Workers, "workers", "w", cfg.Workers, "receipts processed in parallel")
	output := flag.StringP("output", "o", "heatmap.geojson", "output file")
	verbose := flag.BoolP("verbose", "v", false, "print details of each receipt")
	purge := flag.Bool("purge-cache", false, "drop cached routes before processing")
	activity := flag.Bool("activity", false, "print active rides per 10-minute bucket")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <directory>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// rides are not persisted from here, only cached
	cfg.DBUrl = ""
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize")
	}
	defer a.Close()

	if *purge {
		n, err := a.Service.PurgeCache(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to purge route cache")
		}
		log.Info().Int("keys", n).Msg("route cache purged")
	}

	items, err := a.Service.ProcessDir(ctx, flag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Msg("batch aborted")
	}

	var rides []*model.Ride
	for _, it := range items {
		if it.Err != nil {
			fmt.Printf("Skipping %s: %v\n", filepath.Base(it.Path), it.Err)
			continue
		}
		if *verbose {
			fmt.Printf("== %s\n", filepath.Base(it.Path))
			fmt.Print(it.Result.Summary)
			fmt.Println(it.Result.ASCII)
		}
		rides = append(rides, it.Ride)
	}

	if *activity {
		printActivity(ride.ActiveRiding(rides))
	}

	center, ok := ride.Center(rides)
	if !ok {
		fmt.Println("No GPS coordinates found in the processed files.")
		return
	}

	data, err := json.Marshal(ride.FeatureCollection(rides))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to encode GeoJSON")
	}
	if err := os.WriteFile(*output, data, 0o644); err != nil {
		log.Fatal().Err(err).Msg("failed to write heat map")
	}
	log.Info().Int("routes", len(rides)).Str("center", center.String()).Str("output", *output).Msg("heat map written")
	fmt.Printf("Heatmap saved to %s\n", *output)
}

func printActivity(a ride.Activity) {
	for b, n := range a.Counts {
		if n > 0 {
			fmt.Printf("%s %d\n", ride.Label(b), n)
		}
	}
	fmt.Printf("Total rides analyzed: %d (skipped %d without times)\n", a.Rides, a.Skipped)
	if b, n := a.Peak(); n > 0 {
		fmt.Printf("Peak active riding time: %s\nPeak active rides: %d\n", ride.Label(b), n)
	}
}
