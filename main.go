package main

import (
	"context"
	"log"

	"tablesense/internal"
	"tablesense/internal/config"
	"tablesense/internal/container"
	"tablesense/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	internal.DefaultLogger.SetLevel(internal.ParseLogLevel(appConfig.LogLevel))
	gin.SetMode(appConfig.Server.GinMode)

	// Create dependency injection container
	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	if err := appContainer.Open(context.Background()); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	server := ui.NewServer(ui.Services{
		Analyses:  appContainer.Analyses,
		Reports:   appContainer.Reports,
		Templates: appContainer.Templates,
	}, ui.WithRequestTimeout(appConfig.Server.WriteTimeout))

	log.Printf("Starting tablesense API on port %s", appConfig.Server.Port)
	log.Fatal(server.Start(":"+appConfig.Server.Port, appConfig.Server.ReadTimeout, appConfig.Server.WriteTimeout))
}
