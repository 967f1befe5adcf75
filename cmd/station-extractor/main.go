// Command station-extractor turns the bike-share docks of an OSM PBF extract
// into the station GeoJSON the pipeline loads.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"ridetrace/internal/logging"
	"ridetrace/internal/service/gazetteer"

	flag "github.com/spf13/pflag"
)

func main() {
	output := flag.StringP("output", "o", "data/stations.json", "output GeoJSON file")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <path-to-osm.pbf>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	log := logging.New(*logLevel, "console")

	osmFile := flag.Arg(0)
	log.Info().Str("file", osmFile).Msg("processing file")

	f, err := os.Open(osmFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open file")
	}
	defer f.Close()

	gaz, err := gazetteer.LoadOSM(f)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to extract docks")
	}
	log.Info().Int("stations", gaz.Len()).Msg("collected bicycle_rental nodes")

	data, err := json.MarshalIndent(gaz.FeatureCollection(), "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to encode GeoJSON")
	}
	if err := os.WriteFile(*output, data, 0o644); err != nil {
		log.Fatal().Err(err).Msg("failed to write stations")
	}
	log.Info().Str("output", *output).Msg("stations written")
}
