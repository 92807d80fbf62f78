package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/lehigh-university-libraries/placeimages/internal/models"
)

// queryModifiers are appended to "<name> <country>" in this order; the empty
// modifier is the plain query.
var queryModifiers = []string{"", "skyline", "landmarks", "street", "culture", "architecture", "travel", "tourism"}

// QueryStrings returns the ordered query templates for a location
func QueryStrings(name, country string) []string {
	base := strings.TrimSpace(strings.TrimSpace(name) + " " + strings.TrimSpace(country))
	queries := make([]string, 0, len(queryModifiers))
	for _, modifier := range queryModifiers {
		if modifier == "" {
			queries = append(queries, base)
			continue
		}
		queries = append(queries, base+" "+modifier)
	}
	return queries
}

// QueryResult is the outcome of one provider query. Err is set when the
// query failed; Images is then empty.
type QueryResult struct {
	Query  string
	Images []models.ExternalImage
	Err    error
}

// ProviderRequestError describes a single failed provider query
type ProviderRequestError struct {
	Query      string
	StatusCode int
	Err        error
}

func (e *ProviderRequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("query %q (status %d): %v", e.Query, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("query %q: %v", e.Query, e.Err)
}

func (e *ProviderRequestError) Unwrap() error {
	return e.Err
}

// Cursor walks the query templates of one location, issuing one request per Next.
// It is finite and cannot be rewound.
type Cursor struct {
	client  *Client
	queries []string
	next    int
}

// Queries returns a cursor over the location's query templates
func (c *Client) Queries(name, country string) *Cursor {
	return &Cursor{
		client:  c,
		queries: QueryStrings(name, country),
	}
}

// Next runs the next query asking for up to perPage results. It returns false once
// the templates are exhausted or ctx is done. Successive requests are separated by
// the client's fixed request delay.
func (cur *Cursor) Next(ctx context.Context, perPage int) (QueryResult, bool) {
	if cur.next >= len(cur.queries) || ctx.Err() != nil {
		return QueryResult{}, false
	}

	if cur.next > 0 {
		if err := cur.client.sleep(ctx, cur.client.RequestDelay()); err != nil {
			return QueryResult{}, false
		}
	}

	perPage = max(1, min(perPage, MaxPerPage))
	query := cur.queries[cur.next]
	cur.next++

	return cur.client.search(ctx, query, perPage), true
}

// Issued returns how many queries have been sent so far
func (cur *Cursor) Issued() int {
	return cur.next
}
