package main

import (
	"flag"
	"os"
	"time"

	"car-arbitrage/catalog"
	"car-arbitrage/config"
	"car-arbitrage/models"
	"car-arbitrage/scraper"
	"car-arbitrage/scraper/autotrader"
	"car-arbitrage/scraper/gumtree"
	"car-arbitrage/scraper/pistonheads"
	"car-arbitrage/scraper/sample"
	"car-arbitrage/server"
	"car-arbitrage/services"
	"car-arbitrage/storage"
	"car-arbitrage/utils"
)

func main() {
	demo := flag.Bool("demo", false, "evaluate the built-in sample listings instead of scraping")
	serve := flag.Bool("serve", false, "start the dashboard API instead of a one-shot run")
	flag.Parse()

	logger := utils.NewLogger()
	cfg := config.Load()

	logger.Info("=== Car Arbitrage Finder starting ===")
	logger.Info("Origin (%.4f, %.4f) | radius %.0f miles | transfer cost £%.0f | profit floor £%.0f",
		cfg.Origin.Lat, cfg.Origin.Lon, cfg.MaxDistanceMiles, cfg.TransferCost, cfg.MinProfitFloor)

	cat := catalog.Default()
	if cfg.ModelsFile != "" {
		loaded, err := catalog.Load(cfg.ModelsFile)
		if err != nil {
			logger.Error("Failed to load model catalog from %s: %v", cfg.ModelsFile, err)
			os.Exit(1)
		}
		cat = loaded
		logger.Info("Loaded %d model rules from %s", len(cat), cfg.ModelsFile)
	}
	if err := cat.Validate(); err != nil {
		logger.Error("Model catalog invalid: %v", err)
		os.Exit(1)
	}

	app := &application{logger: logger, cfg: cfg, cat: cat}

	if *serve {
		srv := server.New(logger, cat, app.run)
		if doc := app.loadSnapshot(); doc != nil {
			srv.Preload(doc)
		}
		if err := srv.ListenAndServe(cfg.ServerAddr); err != nil {
			logger.Error("Server stopped: %v", err)
			os.Exit(1)
		}
		return
	}

	doc, err := app.run(*demo)
	if err != nil {
		logger.Error("Run failed: %v", err)
		os.Exit(1)
	}
	if doc.Summary.Count == 0 {
		logger.Warn("No profitable deals found this run")
	}
}

type application struct {
	logger *utils.Logger
	cfg    *config.Config
	cat    catalog.Catalog
}

// loadSnapshot restores the last stored deal snapshot from PostgreSQL so the
// dashboard has data before the first run of this process. Any failure just
// means starting empty.
func (a *application) loadSnapshot() *models.StructuredDocument {
	pgWriter, err := storage.NewPostgresWriter(a.cfg.DSN())
	if err != nil {
		a.logger.Warn("PostgreSQL unavailable, starting without a stored snapshot: %v", err)
		return nil
	}
	defer pgWriter.Close()

	records, err := pgWriter.FetchAll()
	if err != nil {
		a.logger.Warn("Failed to restore deal snapshot: %v", err)
		return nil
	}
	if len(records) == 0 {
		return nil
	}

	doc := &models.StructuredDocument{Deals: records, GeneratedAt: time.Now()}
	doc.Summary.Count = len(records)
	for _, r := range records {
		doc.Summary.TotalProfit += r.NetProfit
		if r.MarginPct > doc.Summary.BestMargin {
			doc.Summary.BestMargin = r.MarginPct
		}
	}
	doc.Summary.AverageProfit = doc.Summary.TotalProfit / float64(len(records))

	a.logger.Info("Restored %d deals from the previous snapshot", len(records))
	return doc
}

// run executes one full snapshot: search, evaluate, aggregate, export.
func (a *application) run(demo bool) (*models.StructuredDocument, error) {
	var sources []scraper.Source
	if demo {
		a.logger.Info("Running in demo mode with sample listings")
		sources = []scraper.Source{sample.New()}
	} else {
		at := autotrader.New(a.cfg, a.logger)
		defer at.Close()
		gt := gumtree.New(a.cfg, a.logger)
		defer gt.Close()
		ph := pistonheads.New(a.cfg, a.logger)
		defer ph.Close()
		sources = []scraper.Source{at, gt, ph}
	}

	finder, err := services.NewFinder(a.cfg, a.logger, a.cat, sources)
	if err != nil {
		return nil, err
	}

	report, err := finder.Run()
	if err != nil {
		return nil, err
	}
	finder.Print(report)

	tab, doc := services.NewExporter().Export(report)
	a.export(report, tab, doc)
	return doc, nil
}

// export writes the documents out. Export failures are logged, never fatal:
// the report already reached the terminal and the caller.
func (a *application) export(report *models.AggregateReport, tab *models.TabularDocument, doc *models.StructuredDocument) {
	if csvWriter, err := storage.NewCSVWriter(a.cfg.CSVOutputPath); err != nil {
		a.logger.Error("Failed to create CSV writer: %v", err)
	} else {
		defer csvWriter.Close()
		if err := csvWriter.WriteTabular(tab); err != nil {
			a.logger.Error("CSV write failed: %v", err)
		} else {
			a.logger.Info("Deals saved to %s", a.cfg.CSVOutputPath)
		}
	}

	if jsonWriter, err := storage.NewJSONWriter(a.cfg.JSONOutputPath); err != nil {
		a.logger.Error("Failed to create JSON writer: %v", err)
	} else {
		defer jsonWriter.Close()
		if err := jsonWriter.WriteStructured(doc); err != nil {
			a.logger.Error("JSON write failed: %v", err)
		} else {
			a.logger.Info("Structured report saved to %s", a.cfg.JSONOutputPath)
		}
	}

	pgWriter, err := storage.NewPostgresWriter(a.cfg.DSN())
	if err != nil {
		a.logger.Warn("PostgreSQL unavailable, skipping snapshot storage: %v", err)
		return
	}
	defer pgWriter.Close()

	if err := pgWriter.Write(report.Deals); err != nil {
		a.logger.Error("PostgreSQL write failed: %v", err)
	} else {
		a.logger.Info("Deal snapshot stored in PostgreSQL (table: deals)")
	}
}
