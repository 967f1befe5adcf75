// Command ride-route reconstructs the route of one receipt e-mail and writes it
// as GeoJSON next to the receipt.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ridetrace/internal/app"
	"ridetrace/internal/config"
	"ridetrace/internal/logging"
	"ridetrace/internal/model"
	"ridetrace/internal/service/diagnostics"
	"ridetrace/internal/service/receipt"

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
	imagePath := flag.String("image", "", "map image to use instead of the one referenced by the receipt")
	outPath := flag.String("output", "", "GeoJSON output path (default <receipt>_route.geojson)")
	colorize := flag.Bool("color", false, "colorize the ASCII grid")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <receipt.eml>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()

	// the CLI never needs the shared stores
	cfg.RedisUrl, cfg.DBUrl = "", ""
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize")
	}
	defer a.Close()

	path := flag.Arg(0)
	rc, err := receipt.ParseFile(path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse receipt")
	}
	fmt.Print(rc)

	var img []byte
	if *imagePath != "" {
		img, err = os.ReadFile(*imagePath)
	} else {
		img, err = rc.MapImage(ctx, receipt.NewHTTPFetcher(cfg.FetchTimeout))
	}
	if err != nil {
		log.Fatal().Err(err).Str("kind", model.Kind(err)).Msg("failed to load map image")
	}

	rec, err := a.Service.ReconstructReceipt(ctx, rc, img)
	if rec != nil && rec.ASCII != "" {
		printGrid(rec.ASCII, *colorize)
	}
	if err != nil {
		log.Fatal().Err(err).Str("kind", model.Kind(err)).Msg("reconstruction failed")
	}
	fmt.Print(rec.Summary)

	if *outPath == "" {
		*outPath = strings.TrimSuffix(path, filepath.Ext(path)) + "_route.geojson"
	}
	data, err := json.MarshalIndent(rec.Ride.Feature(), "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to encode GeoJSON")
	}
	if err := os.WriteFile(*outPath, data, 0o644); err != nil {
		log.Fatal().Err(err).Msg("failed to write GeoJSON")
	}
	fmt.Printf("Route saved as: %s\n", *outPath)
}

func printGrid(grid string, colorize bool) {
	if colorize {
		grid = diagnostics.Colorize(grid)
	}
	fmt.Println(grid)
}
