package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/swiftsale/label-annotator/client"
	"github.com/swiftsale/label-annotator/config"
	"github.com/swiftsale/label-annotator/handler"
	"github.com/swiftsale/label-annotator/service"
	"github.com/swiftsale/label-annotator/store"
)

func main() {
	// Initialize configuration
	cfg := config.LoadConfig()

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("Failed to create data directory %s: %v", cfg.DataDir, err)
	}

	ctx := context.Background()

	// Initialize stores
	binStore, err := store.OpenBins(ctx, cfg.BinDBPath)
	if err != nil {
		log.Fatalf("Failed to open bin store: %v", err)
	}
	defer binStore.Close()

	mailingStore, err := store.OpenMailing(ctx, cfg.MailingDBPath)
	if err != nil {
		log.Fatalf("Failed to open mailing store: %v", err)
	}
	defer mailingStore.Close()

	// Initialize OCR client for pages with no extractable text
	ocrClient := client.NewOCRClient(cfg.TesseractDataPath)
	defer ocrClient.Close()

	// Initialize PDF processor and annotator
	pdfProcessor := service.NewPDFProcessor(ocrClient)
	annotator := service.NewAnnotator(service.DefaultStampGeometry())

	// Initialize service layer
	labelService := service.NewLabelService(binStore, mailingStore, pdfProcessor, annotator)
	exportService := service.NewExportService(service.BusinessInfo{
		Name:         cfg.Business.Name,
		AddressLine1: cfg.Business.AddressLine1,
		City:         cfg.Business.City,
		State:        cfg.Business.State,
		ZipCode:      cfg.Business.ZipCode,
	})

	// Initialize handler layer
	labelHandler := handler.NewLabelHandler(labelService, cfg.DataDir)
	binHandler := handler.NewBinHandler(binStore)
	mailingHandler := handler.NewMailingHandler(mailingStore, exportService)

	// Setup Gin router
	router := gin.Default()
	router.MaxMultipartMemory = cfg.MaxFileSize

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "SwiftSale Label Annotator",
		})
	})

	// API routes
	api := router.Group("/api/v1")
	{
		labels := api.Group("/labels")
		{
			labels.POST("/annotate", labelHandler.AnnotateLabels)
		}

		bins := api.Group("/bins")
		{
			bins.POST("", binHandler.AssignBin)
			bins.GET("", binHandler.ListBins)
			bins.DELETE("", binHandler.ClearBins)
		}

		mailing := api.Group("/mailing-list")
		{
			mailing.GET("", mailingHandler.SearchEntries)
			mailing.DELETE("", mailingHandler.ClearEntries)
			mailing.GET("/:id", mailingHandler.GetEntry)
			mailing.PUT("/:id/checked", mailingHandler.SetChecked)
			mailing.POST("/import-emails", mailingHandler.ImportEmails)
			mailing.POST("/export-labels", mailingHandler.ExportLabels)
		}
	}

	// Start server
	log.Printf("Starting SwiftSale Label Annotator on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
