package main

import (
	"flag"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/himdisplay/internal/config"
	"github.com/danmuck/himdisplay/internal/observability"
)

func main() {
	observability.InitLogger("configgen")

	kind := flag.String("kind", config.KindDecode, "config kind: "+strings.Join(config.Kinds(), "|"))
	output := flag.String("output", "", "output path for config template")
	validate := flag.Bool("validate", false, "validate an existing config file")
	input := flag.String("input", "", "config path for validation (defaults to per-kind cmd path)")
	force := flag.Bool("force", false, "overwrite existing config file")
	flag.Parse()

	if *validate {
		path := *input
		if path == "" {
			p, err := config.DefaultPath(*kind)
			if err != nil {
				log.Fatal().Err(err).Send()
			}
			path = p
		}
		if err := config.Validate(path, *kind); err != nil {
			log.Fatal().Err(err).Str("kind", *kind).Msg("validation failed")
		}
		log.Info().Str("kind", *kind).Str("path", path).Msg("validated config")
		return
	}

	target := *output
	if target == "" {
		p, err := config.DefaultPath(*kind)
		if err != nil {
			log.Fatal().Err(err).Send()
		}
		target = p
	}
	if err := config.WriteTemplate(target, *kind, *force); err != nil {
		log.Fatal().Err(err).Msg("write template failed")
	}
	log.Info().Str("kind", *kind).Str("path", target).Msg("wrote config template")
}
