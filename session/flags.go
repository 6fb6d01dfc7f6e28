package session

import "fmt"

// LaunchOptions configures OpenBrowser (spec.md §4.1, §6 Options).
type LaunchOptions struct {
	// ChromePath overrides auto-detection (session.FindChrome).
	ChromePath string
	// Headless launches with --headless=new when true.
	Headless bool
	// UserDataDir overrides the per-session temp profile directory.
	UserDataDir string
	// Port pins --remote-debugging-port; 0 lets Chrome pick one (reported
	// via the stderr DevTools-listening line, see cdp.WaitForEndpoint).
	Port int
	// WindowWidth/WindowHeight set --window-size.
	WindowWidth, WindowHeight int
	// Args appends arbitrary extra flags, for callers needing something
	// this builder doesn't expose (spec.md §6 Options: "args: string[]").
	Args []string
}

// buildArgs translates LaunchOptions into the Chrome command-line flag set.
// The flag list is adapted from the teacher's BrowserPoolOptions allocator
// options (internal/engine/dynamic/browser_pool.go), translated from
// chromedp.ExecAllocatorOption values to plain argv strings since this
// module spawns Chrome directly rather than through chromedp.
func buildArgs(opts LaunchOptions, userDataDir string) []string {
	width, height := opts.WindowWidth, opts.WindowHeight
	if width <= 0 {
		width = 1440
	}
	if height <= 0 {
		height = 900
	}

	args := []string{
		"--remote-debugging-port=" + portArg(opts.Port),
		"--user-data-dir=" + userDataDir,
		"--no-first-run",
		"--no-default-browser-check",
		"--disable-gpu",
		"--disable-extensions",
		"--disable-background-networking",
		"--disable-breakpad",
		"--disable-client-side-phishing-detection",
		"--disable-default-apps",
		"--disable-hang-monitor",
		"--disable-ipc-flooding-protection",
		"--disable-prompt-on-repost",
		"--disable-renderer-backgrounding",
		"--disable-sync",
		"--disable-infobars",
		"--use-mock-keychain",
		"--mute-audio",
		"--metrics-recording-only",
		"--safebrowsing-disable-auto-update",
		fmt.Sprintf("--window-size=%d,%d", width, height),
	}

	if opts.Headless {
		args = append(args, "--headless=new")
	}

	args = append(args, opts.Args...)
	return args
}

func portArg(port int) string {
	if port <= 0 {
		return "0"
	}
	return fmt.Sprintf("%d", port)
}
