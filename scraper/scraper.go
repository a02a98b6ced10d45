// Package scraper defines the source adapter contract and the shared
// headless-browser plumbing the marketplace adapters build on. Any adapter
// that emits SourceRecords can feed the evaluation core.
package scraper

import (
	"os"
	"os/exec"

	"github.com/chromedp/chromedp"

	"car-arbitrage/config"
	"car-arbitrage/models"
)

// Source is one marketplace being searched for a model rule.
type Source interface {
	// ID identifies the marketplace in listings and logs, e.g. "autotrader".
	ID() string
	// Search runs one search term for one model and returns whatever raw
	// records it found. A failed search returns an error; the caller decides
	// whether to carry on with other sources.
	Search(modelKey string, rule models.ModelRule, term string) ([]models.SourceRecord, error)
}

// AllocatorOptions returns the chromedp exec allocator flags shared by all
// browser-based adapters.
func AllocatorOptions(cfg *config.Config) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)

	if bin := FindChromeBinary(cfg.ChromeBin); bin != "" {
		opts = append(opts, chromedp.ExecPath(bin))
	}
	return opts
}

// FindChromeBinary locates a Chrome/Chromium binary, preferring the
// configured path.
func FindChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
