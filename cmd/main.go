package main

import (
	"context"
	"errors"
	"io/fs"

	"github.com/farellandr/influencehub/internal/logger"
	"github.com/farellandr/influencehub/internal/server"
	"github.com/joho/godotenv"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "influencehub"})

	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logg.Fatal(context.Background(), "failed to load .env file", err)
	}

	if err := server.Start(); err != nil {
		logg.Fatal(context.Background(), "server failed to start", err)
	}
}
