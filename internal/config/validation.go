package config

import "fmt"

func validate(c *Config) error {
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be > 0")
	}
	if c.DefaultCount <= 0 {
		return fmt.Errorf("default count must be > 0")
	}
	if c.MaxCount < c.DefaultCount {
		return fmt.Errorf("max count must be >= default count (%d)", c.DefaultCount)
	}
	if c.MaxPages < 0 {
		return fmt.Errorf("max pages must be >= 0")
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry max_retries must be >= 0")
	}
	if c.Retry.Multiplier < 1 {
		return fmt.Errorf("retry multiplier must be >= 1")
	}
	if c.Retry.InitialBackoff > c.Retry.MaxBackoff {
		return fmt.Errorf("retry initial backoff must not exceed max backoff")
	}
	if c.ImplicitWait < 0 || c.ListingSettle < 0 || c.DetailSettle < 0 {
		return fmt.Errorf("browser waits must be >= 0")
	}
	if c.PageLoadTimeout <= 0 {
		return fmt.Errorf("page load timeout must be > 0")
	}
	if c.StreamTimeout <= 0 {
		return fmt.Errorf("stream timeout must be > 0")
	}
	if c.ImageWorkers <= 0 || c.ImageWorkers > DefaultMaxImageWorkers {
		return fmt.Errorf("image workers must be between 1 and %d", DefaultMaxImageWorkers)
	}
	return nil
}
