// Package render runs script-dependent pages through a headless browser.
package render

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// Renderer materializes a page's content by executing its scripts.
type Renderer interface {
	RenderHTML(ctx context.Context, url string) (string, error)
}

// ChromeConfig controls the behavior of the chromedp renderer.
type ChromeConfig struct {
	UserAgent         string
	NavigationTimeout time.Duration
	SettleDelay       time.Duration
}

// Chrome implements Renderer with chromedp. Each call launches its own
// browser and tears it down afterward, so no rendering state crosses calls.
type Chrome struct {
	cfg ChromeConfig
}

// NewChrome creates a headless renderer backed by chromedp.
func NewChrome(cfg ChromeConfig) *Chrome {
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 15 * time.Second
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = 3 * time.Second
	}
	return &Chrome{cfg: cfg}
}

// RenderHTML navigates to the URL, waits for asynchronous rendering to settle,
// and returns the resulting DOM serialized as HTML.
func (r *Chrome) RenderHTML(ctx context.Context, url string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	taskCtx, taskCancel := chromedp.NewContext(allocCtx)
	defer taskCancel()

	taskCtx, cancel := context.WithTimeout(taskCtx, r.cfg.NavigationTimeout+r.cfg.SettleDelay)
	defer cancel()

	var html string
	actions := []chromedp.Action{
		r.networkSetupAction(),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(r.cfg.SettleDelay),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}
	if err := chromedp.Run(taskCtx, actions...); err != nil {
		return "", fmt.Errorf("chromedp run: %w", err)
	}
	return html, nil
}

func (r *Chrome) networkSetupAction() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := network.Enable().Do(ctx); err != nil {
			return fmt.Errorf("enable network domain: %w", err)
		}
		if r.cfg.UserAgent != "" {
			if err := emulation.SetUserAgentOverride(r.cfg.UserAgent).Do(ctx); err != nil {
				return fmt.Errorf("set user-agent: %w", err)
			}
		}
		return nil
	})
}
