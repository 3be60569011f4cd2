package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"escrituras/internal/common"
	"escrituras/internal/export"
	"escrituras/internal/repository"
)

// export writes one stored record to an XLSX file.
func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 3 {
		logger.Error("usage", "cmd", "export <numero-carpeta> <out.xlsx>")
		os.Exit(2)
	}
	carpeta, err := strconv.Atoi(os.Args[1])
	if err != nil || carpeta <= 0 {
		logger.Error("invalid folder number (must be a positive integer)", "arg", os.Args[1])
		os.Exit(2)
	}
	outPath := os.Args[2]

	cfg := common.LoadConfig()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := repository.OpenFromConfig(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("open store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	rec, err := store.Find(ctx, carpeta)
	if err != nil {
		logger.Error("find failed", "numero_carpeta", carpeta, "error", err)
		os.Exit(1)
	}

	book, err := export.NewService(logger).BuildWorkbook(rec)
	if err != nil {
		logger.Error("export failed", "numero_carpeta", carpeta, "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(outPath, book, 0o644); err != nil {
		logger.Error("write file", "path", outPath, "error", err)
		os.Exit(1)
	}
	logger.Info("exported", "numero_carpeta", carpeta, "path", outPath, "bytes", len(book))
}
