package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	DefaultDictionaryURL  = "https://api.dictionaryapi.dev/api/v2/entries/en/"
	maxDictionaryExamples = 5
)

// DictionaryAPI reads example sentences from the free dictionary API
type DictionaryAPI struct {
	baseURL string
	client  *http.Client
}

// NewDictionaryAPI creates a client. An empty baseURL uses the public API.
func NewDictionaryAPI(baseURL string, timeout time.Duration) *DictionaryAPI {
	if baseURL == "" {
		baseURL = DefaultDictionaryURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &DictionaryAPI{baseURL: baseURL, client: &http.Client{Timeout: timeout}}
}

type dictionaryEntry struct {
	Meanings []struct {
		Definitions []struct {
			Example string `json:"example"`
		} `json:"definitions"`
	} `json:"meanings"`
}

// FetchExamples implements ExampleSource
func (d *DictionaryAPI) FetchExamples(ctx context.Context, word string) (string, error) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return "", nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+url.PathEscape(word), nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to create request")
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("dictionary api returned status %d", resp.StatusCode)
	}

	var entries []dictionaryEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return "", errors.Wrap(err, "failed to decode response")
	}

	var examples []string
	for _, entry := range entries {
		for _, meaning := range entry.Meanings {
			for _, def := range meaning.Definitions {
				if ex := strings.TrimSpace(def.Example); ex != "" {
					examples = append(examples, ex)
				}
				if len(examples) == maxDictionaryExamples {
					return strings.Join(examples, "\n"), nil
				}
			}
		}
	}
	return strings.Join(examples, "\n"), nil
}
