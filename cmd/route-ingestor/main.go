// Command route-ingestor extracts the pixel route from a map image and prints
// it as an ASCII grid.
package main

import (
	"context"
	"fmt"
	"os"

	"ridetrace/internal/config"
	"ridetrace/internal/logging"
	"ridetrace/internal/model"
	"ridetrace/internal/service/diagnostics"
	"ridetrace/internal/service/endpoint"
	"ridetrace/internal/service/segment"

	flag "github.com/spf13/pflag"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	flag.IntVar(&cfg.AsciiWidth, "width", cfg.AsciiWidth, "ASCII grid width")
	flag.IntVar(&cfg.AsciiHeight, "height", cfg.AsciiHeight, "ASCII grid height")
	flag.StringVar(&cfg.SegmenterBackend, "backend", cfg.SegmenterBackend, fmt.Sprintf("segmentation backend %v", segment.Backends()))
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	colorize := flag.Bool("color", false, "colorize the ASCII grid")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <image>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read image")
	}

	opts, err := segment.OptionsFromConfig(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid HSV configuration")
	}
	seg, err := segment.New(cfg.SegmenterBackend, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create segmenter")
	}

	res, err := segment.SegmentBytes(context.Background(), seg, data)
	if err != nil {
		// without a destination the route contour alone is still worth showing
		if res != nil {
			printContour(endpoint.LargestArea(res.Route))
		}
		log.Fatal().Err(err).Str("kind", model.Kind(err)).Msg("segmentation failed")
	}
	resolution, err := endpoint.New(cfg.CircularityMin, log).Resolve(res.Route, res.Marker)
	if err != nil {
		if resolution != nil {
			printContour(resolution.Contour)
		}
		log.Fatal().Err(err).Str("kind", model.Kind(err)).Msg("endpoint resolution failed")
	}

	route := resolution.Route
	fmt.Print(diagnostics.Summarize(route, nil, model.GeoPoint{}, model.GeoPoint{}, nil, diagnostics.DefaultHead))
	grid := diagnostics.ASCII(route, cfg.AsciiWidth, cfg.AsciiHeight)
	if *colorize {
		grid = diagnostics.Colorize(grid)
	}
	fmt.Println(grid)
}

func printContour(c *model.ContourRegion) {
	if c != nil {
		fmt.Print(diagnostics.ContourReport(c, diagnostics.DefaultHead))
	}
}
