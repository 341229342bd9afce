package loopback

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"
)

// BrowserOpener prints pageURL to out and asks the desktop to open it. A
// failed launch is not an error: the user can follow the printed link.
func BrowserOpener(out io.Writer) Opener {
	return func(ctx context.Context, pageURL string) error {
		if _, err := fmt.Fprintf(out, "Complete your payment in the browser: %s\n", pageURL); err != nil {
			return err
		}

		var cmd *exec.Cmd
		switch runtime.GOOS {
		case "darwin":
			cmd = exec.CommandContext(ctx, "open", pageURL)
		case "windows":
			cmd = exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", pageURL)
		default:
			cmd = exec.CommandContext(ctx, "xdg-open", pageURL)
		}
		if err := cmd.Start(); err == nil {
			go func() { _ = cmd.Wait() }()
		}
		return nil
	}
}
