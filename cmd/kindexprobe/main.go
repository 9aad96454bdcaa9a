// Command kindexprobe performs a single fetch-and-parse against the forecast
// widget and prints the result, for checking connectivity and selector drift
// without running the service.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/meteowatch/kindex-forecast/internal/adapter/meteoagent"
	"github.com/meteowatch/kindex-forecast/internal/config"
	"github.com/meteowatch/kindex-forecast/internal/domain"
)

func main() {
	url := flag.String("url", config.DefaultForecastURL, "forecast widget URL")
	days := flag.Int("days", 2, "forecast horizon in days")
	timeout := flag.Duration("timeout", 10*time.Second, "overall fetch timeout")
	flag.Parse()

	if err := run(*url, *days, *timeout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(url string, days int, timeout time.Duration) error {
	if days < 1 {
		return fmt.Errorf("days must be >= 1, got %d", days)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := meteoagent.NewClient(url, timeout, logger)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	markup, err := client.Fetch(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("fetched %d bytes from %s\n\n", len(markup), url)

	referenceDate := time.Now()
	fmt.Printf("%-12s %-8s %-9s %-8s %s\n", "date", "kindex", "status", "severity", "icon")
	for offset := 0; offset < days; offset++ {
		date := referenceDate.AddDate(0, 0, offset)
		r := domain.Extract(markup, date)

		value := "-"
		if r.OK() {
			value = fmt.Sprintf("%d", r.Value)
		}
		fmt.Printf("%-12s %-8s %-9s %-8s %s\n",
			date.Format("2006-01-02"),
			value,
			r.Status,
			domain.DeriveSeverity(r),
			domain.Icon(r),
		)
	}
	return nil
}
