package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/stealth"
)

// Tab wraps the Rod page hosting the dashboard.
type Tab struct {
	Page     *rod.Page
	PageURL  string
	Attached bool // an existing tab was reused
	manager  *Manager
}

// OpenTab returns a tab showing pageURL. On an attached Chrome it first
// looks for an open tab whose URL starts with pageURL, so an operator's
// logged-in session is reused as is. Otherwise it opens a stealth tab and
// navigates.
func OpenTab(ctx context.Context, mgr *Manager, pageURL string) (*Tab, error) {
	b := mgr.Browser()
	if b == nil {
		return nil, fmt.Errorf("browser: no active browser")
	}
	log := mgr.cfg.Logger

	if mgr.Remote() {
		page, err := findPage(b, pageURL)
		if err != nil {
			return nil, err
		}
		if page != nil {
			log.Info("browser: attached to open tab", "url", pageURL)
			return &Tab{Page: page, PageURL: pageURL, Attached: true, manager: mgr}, nil
		}
	}

	page, err := stealth.Page(b)
	if err != nil {
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}

	// Apply resource blocking.
	if len(mgr.cfg.ResourceBlocking) > 0 {
		if err := applyResourceBlocking(page, mgr.cfg.ResourceBlocking); err != nil {
			log.Warn("browser: resource blocking failed", "error", err)
		}
	}

	// Navigate with timeout.
	navCtx, cancel := context.WithTimeout(ctx, mgr.cfg.NavigateTimeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		page.Close()
		return nil, fmt.Errorf("browser: navigate %s: %w", pageURL, err)
	}

	// Wait for page load. The dashboard renders after load anyway; edit
	// workflows wait on elements, not on this.
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		log.Warn("browser: wait load timeout", "url", pageURL, "error", err)
	}

	return &Tab{Page: page, PageURL: pageURL, manager: mgr}, nil
}

// Document returns the tab's top-level document.
func (t *Tab) Document() *Document {
	return newDocument(t.Page, t.manager.cfg.PollInterval, t.manager.cfg.Logger)
}

// Close closes the tab. A reused tab belongs to the operator and stays open.
func (t *Tab) Close() error {
	if t.Page == nil || t.Attached {
		return nil
	}
	return t.Page.Close()
}

func findPage(b *rod.Browser, prefix string) (*rod.Page, error) {
	pages, err := b.Pages()
	if err != nil {
		return nil, fmt.Errorf("browser: list tabs: %w", err)
	}
	for _, p := range pages {
		info, err := p.Info()
		if err != nil {
			continue
		}
		if strings.HasPrefix(info.URL, prefix) {
			return p, nil
		}
	}
	return nil, nil
}
