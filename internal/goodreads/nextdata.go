package goodreads

import (
	"encoding/json"
	"errors"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoShelvesURL indicates the page's embedded state blob, its work entry, or
// the shelves link is missing. This is a normal outcome, not a failure.
var ErrNoShelvesURL = errors.New("goodreads: shelves url not found")

const workTypename = "Work"

// ShelvesURL digs the work's shelf-listing URL out of the page's embedded
// script-tag state blob. Entries that do not decode cleanly are skipped; only
// total absence is reported, via ErrNoShelvesURL.
func ShelvesURL(doc *goquery.Document) (string, error) {
	raw := doc.Find("script#__NEXT_DATA__").First().Text()
	if raw == "" {
		return "", ErrNoShelvesURL
	}

	var payload struct {
		Props struct {
			PageProps struct {
				ApolloState map[string]json.RawMessage `json:"apolloState"`
			} `json:"pageProps"`
		} `json:"props"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return "", ErrNoShelvesURL
	}

	for _, entry := range payload.Props.PageProps.ApolloState {
		var node struct {
			Typename string `json:"__typename"`
			Details  struct {
				ShelvesURL string `json:"shelvesUrl"`
			} `json:"details"`
		}
		if err := json.Unmarshal(entry, &node); err != nil {
			continue
		}
		if node.Typename == workTypename && node.Details.ShelvesURL != "" {
			return node.Details.ShelvesURL, nil
		}
	}
	return "", ErrNoShelvesURL
}
