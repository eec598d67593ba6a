/*
Package portal drives a headless Chrome session against the CFE procurement
portal and extracts the results table for each tracked procedure code.
*/
package portal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/rmedina/cfewatch/internal/types"
)

const (
	portalURL = "https://msc.cfe.mx/Aplicaciones/NCFE/Concursos/"

	searchInputSelector  = `input[placeholder="Número de procedimiento"]`
	searchButtonSelector = "button.btn.btn-success"
	nextPageSelector     = `ul.pagination li.page-item:last-child`

	navigationTimeout = 30 * time.Second
	resultsSettleWait = 5 * time.Second

	// The portal shows at most a few hundred rows per code; anything past
	// this is a pagination control that never disables.
	maxPages = 50
)

// Extractor owns one Chrome instance for the whole run. The portal keeps
// search state in the page session, so codes are queried sequentially on
// fresh pages rather than in parallel tabs.
type Extractor struct {
	logger   *zap.Logger
	headful  bool
	launcher *launcher.Launcher
	browser  *rod.Browser
}

func NewExtractor(logger *zap.Logger, headful bool) *Extractor {
	return &Extractor{logger: logger, headful: headful}
}

// Start launches Chrome and connects to it. Kept separate from NewExtractor
// so configuration errors surface before a browser ever spawns.
func (x *Extractor) Start(ctx context.Context) error {
	l := launcher.New().
		Headless(!x.headful).
		Set("no-sandbox").
		Set("disable-dev-shm-usage")

	controlURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launch chrome: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return fmt.Errorf("connect to chrome: %w", err)
	}

	x.launcher = l
	x.browser = browser
	return nil
}

// Close tears the browser down. Safe to call on a half-started extractor.
func (x *Extractor) Close() {
	if x.browser != nil {
		if err := x.browser.Close(); err != nil {
			x.logger.Warn("closing browser", zap.Error(err))
		}
		x.browser = nil
	}
	if x.launcher != nil {
		x.launcher.Cleanup()
		x.launcher = nil
	}
}

// Extract searches the portal for one procedure code and returns every result
// row across all pages, de-duplicated by procedure number in first-seen
// order. A results table with zero data rows is a valid empty result; any
// navigation or timeout failure is an error, so the caller can tell a
// truncated extraction apart from a genuinely empty one.
func (x *Extractor) Extract(ctx context.Context, code string) ([]types.TenderRecord, error) {
	if x.browser == nil {
		return nil, fmt.Errorf("extractor not started")
	}

	page, err := x.browser.Page(proto.TargetCreateTarget{URL: portalURL})
	if err != nil {
		return nil, fmt.Errorf("open portal page: %w", err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			x.logger.Warn("closing portal page", zap.String("code", code), zap.Error(err))
		}
	}()

	// The timeout bounds each wait, not the whole extraction: a code with
	// many result pages legitimately takes longer than one navigation.
	page = page.Context(ctx)

	if err := page.Timeout(navigationTimeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("load portal: %w", err)
	}

	if err := x.search(page, code); err != nil {
		return nil, err
	}

	var records []types.TenderRecord
	seen := make(map[string]struct{})

	for pageNum := 1; pageNum <= maxPages; pageNum++ {
		pageRecords, err := extractPage(page)
		if err != nil {
			return nil, fmt.Errorf("extract page %d for %s: %w", pageNum, code, err)
		}
		for _, rec := range pageRecords {
			if _, dup := seen[rec.ID]; dup {
				continue
			}
			seen[rec.ID] = struct{}{}
			records = append(records, rec)
		}

		more, err := nextPage(page)
		if err != nil {
			return nil, fmt.Errorf("advance past page %d for %s: %w", pageNum, code, err)
		}
		if !more {
			break
		}
	}

	x.logger.Info("extracted records",
		zap.String("code", code),
		zap.Int("count", len(records)),
	)
	return records, nil
}

// search fills the procedure-number field and submits the form.
func (x *Extractor) search(page *rod.Page, code string) error {
	input, err := page.Timeout(navigationTimeout).Element(searchInputSelector)
	if err != nil {
		return fmt.Errorf("find search input: %w", err)
	}
	if err := input.SelectAllText(); err != nil {
		return fmt.Errorf("clear search input: %w", err)
	}
	if err := input.Input(code); err != nil {
		return fmt.Errorf("type procedure code: %w", err)
	}

	button, err := page.Timeout(navigationTimeout).Element(searchButtonSelector)
	if err != nil {
		return fmt.Errorf("find search button: %w", err)
	}
	if err := button.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click search: %w", err)
	}

	// The table re-renders in place after the search request; give the
	// frontend a moment before reading rows.
	time.Sleep(resultsSettleWait)
	if err := page.Timeout(navigationTimeout).WaitDOMStable(time.Second, 0); err != nil {
		return fmt.Errorf("wait for results: %w", err)
	}
	return nil
}

// extractPage snapshots the current results table and parses it outside the
// browser.
func extractPage(page *rod.Page) ([]types.TenderRecord, error) {
	table, err := page.Timeout(navigationTimeout).Element("table")
	if err != nil {
		return nil, fmt.Errorf("find results table: %w", err)
	}
	tableHTML, err := table.HTML()
	if err != nil {
		return nil, fmt.Errorf("read results table: %w", err)
	}
	return parseRecords(tableHTML)
}

// nextPage clicks the pagination "next" control. Returns false once the
// control is absent or disabled, which is how the portal marks the last page.
func nextPage(page *rod.Page) (bool, error) {
	has, next, err := page.Has(nextPageSelector)
	if err != nil {
		return false, fmt.Errorf("probe pagination: %w", err)
	}
	if !has {
		return false, nil
	}

	class, err := next.Attribute("class")
	if err != nil {
		return false, fmt.Errorf("read pagination state: %w", err)
	}
	if class != nil && strings.Contains(*class, "disabled") {
		return false, nil
	}

	if err := next.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return false, fmt.Errorf("click next page: %w", err)
	}
	if err := page.Timeout(navigationTimeout).WaitDOMStable(time.Second, 0); err != nil {
		return false, fmt.Errorf("wait for next page: %w", err)
	}
	return true, nil
}
