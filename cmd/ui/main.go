package main

import (
	"context"
	"log"

	"tablesense/internal/config"
	"tablesense/internal/container"
	"tablesense/ui"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	if err := appContainer.Open(context.Background()); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	app := ui.NewApp(ui.Services{
		Analyses:  appContainer.Analyses,
		Reports:   appContainer.Reports,
		Templates: appContainer.Templates,
	})
	log.Fatal(app.Start(":" + appConfig.Server.UIPort))
}
