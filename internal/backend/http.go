package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lanternfox/storefront/internal/domain"
)

// HTTPClient implements Client against the hosted data service's REST API.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPClient creates a data service client. baseURL is the service root
// without a trailing slash.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// Select reads rows from a collection into dest.
func (c *HTTPClient) Select(ctx context.Context, collection string, q Query, dest interface{}) error {
	const op = "backend.select"

	endpoint := fmt.Sprintf("%s/rest/v1/%s?%s", c.baseURL, collection, encodeQuery(q))
	body, err := c.do(ctx, op, http.MethodGet, endpoint, nil, "")
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return domain.Remote(err, op, "failed to parse response")
	}

	return nil
}

// Insert creates a row. When dest is non-nil the created row is requested
// back from the service and unmarshaled into it.
func (c *HTTPClient) Insert(ctx context.Context, collection string, payload interface{}, dest interface{}) error {
	const op = "backend.insert"

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return domain.Internal(err, op, "failed to marshal payload")
	}

	prefer := "return=minimal"
	if dest != nil {
		prefer = "return=representation"
	}

	endpoint := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, collection)
	body, err := c.do(ctx, op, http.MethodPost, endpoint, bytes.NewReader(jsonData), prefer)
	if err != nil {
		return err
	}

	if dest == nil {
		return nil
	}

	// The service wraps created rows in an array.
	if err := unmarshalRow(body, dest); err != nil {
		return domain.Remote(err, op, "failed to parse created row")
	}

	return nil
}

// Update patches rows matching the filters.
func (c *HTTPClient) Update(ctx context.Context, collection string, filters map[string]string, payload interface{}) error {
	const op = "backend.update"

	if len(filters) == 0 {
		return domain.Invalid(op, "refusing an unfiltered update")
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return domain.Internal(err, op, "failed to marshal payload")
	}

	endpoint := fmt.Sprintf("%s/rest/v1/%s?%s", c.baseURL, collection, encodeQuery(Query{Filters: filters}))
	if _, err := c.do(ctx, op, http.MethodPatch, endpoint, bytes.NewReader(jsonData), ""); err != nil {
		return err
	}

	return nil
}

func (c *HTTPClient) do(ctx context.Context, op, method, endpoint string, body io.Reader, prefer string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to create request")
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, domain.Unavailable(err, op, "data service unreachable")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.Remote(err, op, "failed to read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.Errorf(domain.EREMOTE, op, "data service error (status %d): %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

// encodeQuery renders a Query in the service's filter dialect.
func encodeQuery(q Query) string {
	values := url.Values{}

	for column, value := range q.Filters {
		values.Set(column, "eq."+value)
	}

	if q.Search != "" && q.SearchColumn != "" {
		values.Set(q.SearchColumn, "ilike.*"+q.Search+"*")
	}

	if len(q.IDs) > 0 {
		parts := make([]string, len(q.IDs))
		for i, id := range q.IDs {
			parts[i] = strconv.FormatInt(id, 10)
		}
		values.Set("id", "in.("+strings.Join(parts, ",")+")")
	}

	if q.Sort != "" {
		order := q.Sort + ".asc"
		if q.Descending {
			order = q.Sort + ".desc"
		}
		values.Set("order", order)
	}

	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}

	return values.Encode()
}

// unmarshalRow accepts either a bare object or a single-element array and
// unmarshals the row into dest.
func unmarshalRow(body []byte, dest interface{}) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var rows []json.RawMessage
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			return err
		}
		if len(rows) == 0 {
			return ErrNoRows
		}
		return json.Unmarshal(rows[0], dest)
	}

	return json.Unmarshal(trimmed, dest)
}
