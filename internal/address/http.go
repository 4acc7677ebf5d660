package address

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lanternfox/storefront/internal/domain"
)

// HTTPLookup resolves postal codes against a ViaCEP-compatible JSON service.
type HTTPLookup struct {
	baseURL string
	client  *http.Client
}

// lookupResponse is the service's wire format. The service reports an
// unknown code with HTTP 200 and an "erro" flag rather than a 404.
type lookupResponse struct {
	CEP          string `json:"cep"`
	Street       string `json:"logradouro"`
	Neighborhood string `json:"bairro"`
	City         string `json:"localidade"`
	State        string `json:"uf"`
	Erro         bool   `json:"erro"`
}

// NewHTTPLookup creates a lookup client for the given service base URL
// (e.g. "https://viacep.com.br/ws").
func NewHTTPLookup(baseURL string, timeout time.Duration) *HTTPLookup {
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &HTTPLookup{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// ByPostalCode resolves an 8-digit postal code to an address.
func (l *HTTPLookup) ByPostalCode(ctx context.Context, code string) (*Address, error) {
	digits := OnlyDigits(code)
	if !ValidCode(digits) {
		return nil, ErrInvalidCode
	}

	url := fmt.Sprintf("%s/%s/json/", l.baseURL, digits)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, domain.Unavailable(err, "address.lookup", "Address lookup service unreachable")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, domain.Unavailable(
			fmt.Errorf("lookup service status %d: %s", resp.StatusCode, string(body)),
			"address.lookup", "Address lookup failed")
	}

	var result lookupResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if result.Erro {
		return nil, ErrNotFound
	}

	return &Address{
		PostalCode:   Format(result.CEP),
		Street:       result.Street,
		Neighborhood: result.Neighborhood,
		City:         result.City,
		State:        result.State,
	}, nil
}
