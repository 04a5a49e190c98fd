package main

import (
	"context"
	"log"

	"gradebetter/internal/ai"
	"gradebetter/internal/config"
	"gradebetter/internal/firebase"
	"gradebetter/internal/repository"
	"gradebetter/internal/server"
)

func main() {
	cfg := config.Load()

	fbApp, err := firebase.NewApp(context.Background(), cfg.FirebaseCredentialsFile)
	if err != nil {
		log.Panicf("❌ Error initializing Firebase: %v\n", err)
	}

	repo, err := repository.NewFirebaseRepository(fbApp, cfg)
	if err != nil {
		log.Panicf("❌ Error creating repository: %v\n", err)
	}
	defer repo.Close()

	var aiClient *ai.Client
	if cfg.OpenAIAPIKey != "" {
		aiClient, err = ai.NewClient(ai.Config{APIKey: cfg.OpenAIAPIKey, Model: cfg.OpenAIModel})
		if err != nil {
			log.Panicf("❌ Error creating AI client: %v\n", err)
		}
	}

	server.Start(cfg, repo, aiClient)
}
