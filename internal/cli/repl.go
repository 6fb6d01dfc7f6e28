package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/taiko-go/taiko/internal/ui"
	"github.com/taiko-go/taiko/taiko"
)

// replHelpLines documents the REPL's line grammar; also rendered by
// customHelpFunc under "REPL commands".
var replHelpLines = []string{
	"goto <url>                  navigate the current tab",
	"reload | back | forward     session history",
	"click|dblclick|rightclick|hover|focus <css>",
	"write <text> into <css>     type text into a field",
	"clear <css>                 clear a field",
	"press <key[,key...]>        dispatch one or more key presses",
	"scrollto <css>              scroll an element into view",
	"scrollup|down|left|right <px>",
	"exists <css>                print true/false",
	"text|value <css>            print an element's text/value",
	"highlight <css> [ms]        flash an overlay box",
	"screenshot [full]           save Screenshot-<ms>.png",
	"opentab <url> | closetab <id> | switchto <id>",
	"quit | exit                 close the browser and exit",
}

// runRepl is rootCmd's RunE: it reads taiko verbs from stdin, one per line,
// against the Browser opened by PersistentPreRunE (spec.md §2.4 "a REPL for
// manual exploration").
func runRepl(cmd *cobra.Command, args []string) error {
	appCtx := GetAppFromCmd(cmd)
	if appCtx == nil {
		return fmt.Errorf("taiko-repl: application was not initialized")
	}
	browser := appCtx.Browser
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	fmt.Fprintln(os.Stdout, ui.Info("taiko-repl ready — type \"help\" for commands, \"quit\" to exit"))
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Fprint(os.Stdout, ui.Bold("taiko> "))
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}
		if line == "help" {
			for _, h := range replHelpLines {
				fmt.Fprintln(os.Stdout, h)
			}
			continue
		}

		result, err := dispatchVerb(ctx, browser, line)
		if err != nil {
			fmt.Fprintln(os.Stdout, ui.Error(err.Error()))
			appCtx.Logger.Debug().Err(err).Str("line", line).Msg("repl command failed")
			continue
		}
		fmt.Fprintln(os.Stdout, ui.Success(result))
	}

	return scanner.Err()
}

// dispatchVerb parses one REPL line ("<command> <rest>") and runs the
// matching Browser verb, returning a one-line human-readable result.
func dispatchVerb(ctx context.Context, b *taiko.Browser, line string) (string, error) {
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	cmd = strings.ToLower(cmd)

	switch cmd {
	case "goto":
		r, err := b.Goto(ctx, rest)
		return r.Description, err
	case "reload":
		r, err := b.Reload(ctx, "")
		return r.Description, err
	case "back":
		r, err := b.GoBack(ctx)
		return r.Description, err
	case "forward":
		r, err := b.GoForward(ctx)
		return r.Description, err

	case "click":
		r, err := b.Click(ctx, taiko.CSS(rest))
		return r.Description, err
	case "dblclick":
		r, err := b.DoubleClick(ctx, taiko.CSS(rest))
		return r.Description, err
	case "rightclick":
		r, err := b.RightClick(ctx, taiko.CSS(rest))
		return r.Description, err
	case "hover":
		r, err := b.Hover(ctx, taiko.CSS(rest))
		return r.Description, err
	case "focus":
		r, err := b.Focus(ctx, taiko.CSS(rest))
		return r.Description, err

	case "write":
		text, sel, ok := strings.Cut(rest, " into ")
		if !ok {
			return "", fmt.Errorf("usage: write <text> into <css>")
		}
		selector := taiko.CSS(strings.TrimSpace(sel))
		r, err := b.WriteText(ctx, text, taiko.Into(selector))
		return r.Description, err
	case "clear":
		sel := taiko.CSS(rest)
		r, err := b.Clear(ctx, &sel)
		return r.Description, err
	case "press":
		keys := strings.Split(rest, ",")
		for i := range keys {
			keys[i] = strings.TrimSpace(keys[i])
		}
		r, err := b.Press(ctx, keys, 0)
		return r.Description, err

	case "scrollto":
		r, err := b.ScrollTo(ctx, taiko.CSS(rest))
		return r.Description, err
	case "scrollup":
		r, err := b.ScrollUp(ctx, parsePixels(rest))
		return r.Description, err
	case "scrolldown":
		r, err := b.ScrollDown(ctx, parsePixels(rest))
		return r.Description, err
	case "scrollleft":
		r, err := b.ScrollLeft(ctx, parsePixels(rest))
		return r.Description, err
	case "scrollright":
		r, err := b.ScrollRight(ctx, parsePixels(rest))
		return r.Description, err

	case "exists":
		ok, err := b.Exists(ctx, taiko.CSS(rest), 5)
		return strconv.FormatBool(ok), err
	case "text":
		s, err := b.Text(ctx, taiko.CSS(rest), 5)
		return s, err
	case "value":
		s, err := b.Value(ctx, taiko.CSS(rest), 5)
		return s, err

	case "highlight":
		sel, ms, _ := strings.Cut(rest, " ")
		d := 2 * time.Second
		if ms != "" {
			if n, err := strconv.Atoi(strings.TrimSpace(ms)); err == nil {
				d = time.Duration(n) * time.Millisecond
			}
		}
		r, err := b.Highlight(ctx, taiko.CSS(sel), d)
		return r.Description, err
	case "screenshot":
		full := strings.TrimSpace(rest) == "full"
		r, _, err := b.Screenshot(ctx, full, true)
		return r.Description, err

	case "opentab":
		r, err := b.OpenTab(ctx, rest)
		return r.Description, err
	case "closetab":
		r, err := b.CloseTab(ctx, rest)
		return r.Description, err
	case "switchto":
		r, err := b.SwitchTo(ctx, rest)
		return r.Description, err

	default:
		return "", fmt.Errorf("unknown command %q (type \"help\")", cmd)
	}
}

func parsePixels(s string) float64 {
	n, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return n
}
