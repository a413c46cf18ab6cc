package label

import (
	"context"
	"fmt"
	"io"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// PDF prints html through a headless Chromium and returns the document.
// A local Chromium is downloaded by the launcher on first use when none is installed.
func PDF(ctx context.Context, html string) ([]byte, error) {
	// Leakless(false) avoids the helper binary that antivirus tools flag.
	u, err := launcher.New().
		Context(ctx).
		Headless(true).
		Leakless(false).
		Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(u).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	defer browser.Close()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	if err := page.SetDocumentContent(html); err != nil {
		return nil, fmt.Errorf("failed to load label: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("label did not finish loading: %w", err)
	}

	stream, err := page.PDF(&proto.PagePrintToPDF{
		PrintBackground:   true,
		PreferCSSPageSize: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to print label: %w", err)
	}
	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("failed to read printed label: %w", err)
	}
	return data, nil
}
