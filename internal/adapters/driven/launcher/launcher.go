// Package launcher opens URLs in the local browser. It is the one adapter
// that only makes sense when the core runs on the analyst's own machine;
// deployments without a desktop use the disabled variant.
package launcher

import (
	"log"
	"os/exec"
	"runtime"

	"github.com/custodia-labs/dorkdesk-core/internal/core/ports/driven"
)

// Verify interface compliance
var (
	_ driven.Launcher = (*Browser)(nil)
	_ driven.Launcher = (*Disabled)(nil)
)

// Browser launches the platform browser via the OS opener command
type Browser struct{}

// NewBrowser creates a Launcher using the platform opener
// (xdg-open, open or rundll32)
func NewBrowser() *Browser {
	return &Browser{}
}

// Open launches the URL in a background goroutine. Failures are logged
// and otherwise swallowed: a missing browser must never break the query
// workflow.
func (b *Browser) Open(url string) {
	go func() {
		var cmd *exec.Cmd
		switch runtime.GOOS {
		case "darwin":
			cmd = exec.Command("open", url)
		case "windows":
			cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
		default:
			cmd = exec.Command("xdg-open", url)
		}
		if err := cmd.Start(); err != nil {
			log.Printf("launcher: failed to open browser: %v", err)
		}
	}()
}

// Disabled is a Launcher that does nothing. Used when browser opening is
// turned off or no desktop is present.
type Disabled struct{}

// NewDisabled creates a no-op Launcher
func NewDisabled() *Disabled {
	return &Disabled{}
}

// Open does nothing
func (d *Disabled) Open(url string) {}
