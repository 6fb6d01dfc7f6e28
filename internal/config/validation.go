package config

import "fmt"

func validate(c *Config) error {
	if c.NavigationTimeout <= 0 {
		return fmt.Errorf("navigation timeout must be > 0")
	}
	if c.GotoTimeout <= 0 {
		return fmt.Errorf("goto timeout must be > 0")
	}
	if c.NetworkIdleWindow <= 0 {
		return fmt.Errorf("network idle window must be > 0")
	}
	if c.ElementsToMatch <= 0 {
		return fmt.Errorf("elements to match must be > 0")
	}
	if c.WindowWidth <= 0 || c.WindowHeight <= 0 {
		return fmt.Errorf("window size must be positive")
	}
	return nil
}
