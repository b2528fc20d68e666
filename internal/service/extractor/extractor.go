package extractor

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/extractweb/extract-web/internal/domain"
	"github.com/extractweb/extract-web/internal/port"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/net/html/charset"
)

// Extractor fetches a page and lists the scripts and stylesheets it links to
type Extractor struct {
	fetcher port.Fetcher
	logger  *zap.Logger
}

// New creates a new Extractor
func New(fetcher port.Fetcher, logger *zap.Logger) *Extractor {
	return &Extractor{
		fetcher: fetcher,
		logger:  logger,
	}
}

// Extract fetches pageURL, collects <script src> and stylesheet <link href>
// references resolved against pageURL, and serializes the parsed document.
//
// Fetch failures are returned as *domain.FetchError. Anything else, including
// a panic while walking the document, is wrapped in domain.ErrUnexpected.
func (e *Extractor) Extract(ctx context.Context, pageURL string) (page *domain.Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			page = nil
			err = fmt.Errorf("%w: %v", domain.ErrUnexpected, r)
		}
	}()

	e.logger.Debug("fetching page", zap.String("url", pageURL))

	resp, err := e.fetcher.Get(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := charset.NewReader(resp.Body, resp.ContentType)
	if err != nil {
		return nil, unexpected("decode body", err)
	}

	// Scripting off so <noscript> content is parsed as markup
	doc, err := html.ParseWithOptions(body, html.ParseOptionEnableScripting(false))
	if err != nil {
		return nil, unexpected("parse html", err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, unexpected("parse page url", err)
	}

	page = &domain.Page{URL: pageURL}
	for _, ref := range collectReferences(doc) {
		abs, ok := e.resolve(base, ref.value)
		if !ok {
			continue
		}
		switch ref.kind {
		case domain.KindScript:
			page.Scripts = append(page.Scripts, abs)
		case domain.KindStylesheet:
			page.Stylesheets = append(page.Stylesheets, abs)
		}
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return nil, unexpected("render html", err)
	}
	page.HTML = buf.String()

	e.logger.Debug("page extracted",
		zap.String("url", pageURL),
		zap.Int("scripts", len(page.Scripts)),
		zap.Int("stylesheets", len(page.Stylesheets)),
		zap.Int("html_bytes", buf.Len()))

	return page, nil
}

// unexpected wraps err in domain.ErrUnexpected unless it is a body read failure
func unexpected(stage string, err error) error {
	if domain.IsFetchError(err) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrUnexpected, stage, err)
}

// resolve converts a reference into an absolute URL
func (e *Extractor) resolve(base *url.URL, ref string) (string, bool) {
	u, err := url.Parse(ref)
	if err != nil {
		e.logger.Warn("skipping unparseable reference",
			zap.String("ref", ref),
			zap.Error(err))
		return "", false
	}
	return base.ResolveReference(u).String(), true
}

type reference struct {
	kind  domain.ResourceKind
	value string
}

// collectReferences walks the tree in document order
func collectReferences(doc *html.Node) []reference {
	var refs []reference

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script:
				if src := attr(n, "src"); src != "" {
					refs = append(refs, reference{kind: domain.KindScript, value: src})
				}
			case atom.Link:
				if isStylesheet(n) {
					if href := attr(n, "href"); href != "" {
						refs = append(refs, reference{kind: domain.KindStylesheet, value: href})
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return refs
}

// isStylesheet reports whether the rel attribute lists the stylesheet keyword
func isStylesheet(n *html.Node) bool {
	for _, token := range strings.Fields(attr(n, "rel")) {
		if strings.EqualFold(token, "stylesheet") {
			return true
		}
	}
	return false
}

// attr returns the trimmed value of the named attribute, or "" if absent
func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}
