// internal/config/validation.go

package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks the configuration for structural problems that would
// prevent a scraping deployment from running.
func (c *Config) Validate() error {
	var errs []string

	if len(c.SourceAddresses) == 0 {
		errs = append(errs, "at least one source address is required")
	}
	for i, addr := range c.SourceAddresses {
		if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
			errs = append(errs, fmt.Sprintf("source_addresses[%d]: %q is not an absolute HTTP URL", i, addr))
		}
	}

	if (c.DateFrom == "") != (c.DateTo == "") {
		errs = append(errs, "date_from and date_to must be set together")
	}
	if c.DateFrom != "" && c.DateTo != "" {
		from, errFrom := time.Parse("2006-01-02", c.DateFrom)
		to, errTo := time.Parse("2006-01-02", c.DateTo)
		switch {
		case errFrom != nil:
			errs = append(errs, fmt.Sprintf("date_from: %q is not a YYYY-MM-DD date", c.DateFrom))
		case errTo != nil:
			errs = append(errs, fmt.Sprintf("date_to: %q is not a YYYY-MM-DD date", c.DateTo))
		case to.Before(from):
			errs = append(errs, "date_to precedes date_from")
		}
	}

	for _, h := range c.ParsingHours {
		if h != 100 && (h < 0 || h > 23) {
			errs = append(errs, fmt.Sprintf("parsing_hours: %d is not an hour of the day", h))
		}
	}

	if c.Concurrency.NavigationsPerSecond < 0 {
		errs = append(errs, "concurrency.navigations_per_second must not be negative")
	}
	if c.Browser.SettleDelayMax < c.Browser.SettleDelayMin {
		errs = append(errs, "browser.settle_delay_max precedes settle_delay_min")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}
