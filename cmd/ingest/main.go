package main

import (
	"context"
	"flag"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/yithril/docpipeline/internal/bootstrap"
	"github.com/yithril/docpipeline/internal/config"
	"github.com/yithril/docpipeline/internal/observability/logging"
)

func main() {
	var (
		tenantID    = flag.String("tenant", "", "tenant identifier")
		projectID   = flag.Int("project", 0, "project identifier")
		filePath    = flag.String("file", "", "path of the file to upload")
		contentType = flag.String("content-type", "", "MIME type (derived from the extension when empty)")
	)
	flag.Parse()

	cfg := config.Load()
	logger := logging.NewJSONLogger("docpipeline-ingest", cfg.LogLevel)

	if *tenantID == "" || *projectID == 0 || *filePath == "" {
		logger.Error("missing required flags: -tenant, -project, -file")
		os.Exit(2)
	}

	mimeType := *contentType
	if mimeType == "" {
		mimeType = mime.TypeByExtension(filepath.Ext(*filePath))
	}
	if mimeType == "" {
		logger.Error("content type could not be derived, pass -content-type")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		logger.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	f, err := os.Open(*filePath)
	if err != nil {
		logger.Error("open file", "path", *filePath, "error", err)
		os.Exit(1)
	}
	defer f.Close()

	doc, err := app.IngestUC.Upload(ctx, *tenantID, *projectID, filepath.Base(*filePath), mimeType, f)
	if err != nil {
		logger.Error("upload failed", "error", err)
		os.Exit(1)
	}

	logger.Info("document uploaded",
		"document_id", doc.ID,
		"filename", doc.Filename,
		"blob_url", doc.BlobURL,
		"status", string(doc.Status),
	)
}
