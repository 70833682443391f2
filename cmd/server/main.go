// Command server runs the HTTP API for the proposal equalization service.
package main

import (
	"log"

	"equalprop/ai"
	"equalprop/internal/config"
	"equalprop/pipeline"
	"equalprop/registry"
	"equalprop/server"
	"equalprop/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.GeminiAPIKey == "" {
		log.Fatal("GEMINI_API_KEY is required")
	}

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer st.Close()

	var reg *registry.Registry
	if cfg.RegistryEnabled {
		reg = registry.New(
			registry.NewBrasilAPIProvider(),
			registry.NewScrapeProvider(cfg.ScrapeBaseURL),
		)
	}

	extractor := ai.NewExtractor(ai.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.AITimeout))
	runner := pipeline.NewRunner(extractor, st, reg)

	srv := server.New(cfg, st, runner)
	if err := srv.Run(); err != nil {
		log.Fatalf("server: %v", err)
	}
}
