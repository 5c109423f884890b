package translate

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	DefaultMorfixURL = "https://www.morfix.co.il/"

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36"
	referer   = "https://www.google.com/"

	translationSelector = "div.normal_translation_div"
	examplesSelector    = "ul.Translation_ulFooter_enTohe"
	maxMorfixExamples   = 3
)

// Morfix scrapes translations and examples from the morfix dictionary site
type Morfix struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewMorfix creates a scraper. An empty baseURL uses the public site.
func NewMorfix(baseURL string, timeout time.Duration, log zerolog.Logger) *Morfix {
	if baseURL == "" {
		baseURL = DefaultMorfixURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Morfix{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		log:     log.With().Str("source", "morfix").Logger(),
	}
}

// Translate returns the text of the main translation block
func (m *Morfix) Translate(ctx context.Context, word string) (string, error) {
	doc, err := m.fetch(ctx, word)
	if err != nil || doc == nil {
		return "", err
	}

	sel := doc.Find(translationSelector).First()
	if sel.Length() == 0 {
		m.log.Warn().Str("word", word).Msgf("the div with class %q was not found on the page", translationSelector)
		return "", nil
	}
	return strings.TrimSpace(sel.Text()), nil
}

// FetchExamples returns up to three example sentences joined by newlines
func (m *Morfix) FetchExamples(ctx context.Context, word string) (string, error) {
	doc, err := m.fetch(ctx, word)
	if err != nil || doc == nil {
		return "", err
	}

	list := doc.Find(examplesSelector).First()
	if list.Length() == 0 {
		m.log.Warn().Str("word", word).Msgf("the list with class %q was not found on the page", examplesSelector)
		return "", nil
	}

	var examples []string
	list.Find("li").EachWithBreak(func(_ int, li *goquery.Selection) bool {
		if text := strings.TrimSpace(li.Text()); text != "" {
			examples = append(examples, text)
		}
		return len(examples) < maxMorfixExamples
	})
	return strings.Join(examples, "\n"), nil
}

type pageCacheKey struct{}

type pageCache struct {
	mu    sync.Mutex
	pages map[string]*goquery.Document
}

// WithPageCache returns a context under which each page is downloaded at
// most once, so a translation and an example lookup for the same word share
// one request. Pages are never evicted: scope the context to one operation.
func WithPageCache(ctx context.Context) context.Context {
	return context.WithValue(ctx, pageCacheKey{}, &pageCache{pages: map[string]*goquery.Document{}})
}

// fetch returns a nil document for non-200 responses
func (m *Morfix) fetch(ctx context.Context, word string) (*goquery.Document, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return nil, nil
	}
	pageURL := m.baseURL + url.PathEscape(word)

	cache, _ := ctx.Value(pageCacheKey{}).(*pageCache)
	if cache == nil {
		return m.download(ctx, word, pageURL)
	}

	// held across the download so concurrent lookups wait for one request
	cache.mu.Lock()
	defer cache.mu.Unlock()
	if doc, ok := cache.pages[pageURL]; ok {
		return doc, nil
	}
	doc, err := m.download(ctx, word, pageURL)
	if err != nil {
		return nil, err
	}
	cache.pages[pageURL] = doc
	return doc, nil
}

func (m *Morfix) download(ctx context.Context, word, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", referer)

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch page")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		m.log.Warn().Str("word", word).Int("status", resp.StatusCode).Msg("unable to fetch the page")
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to parse page for %q", word))
	}
	return doc, nil
}
