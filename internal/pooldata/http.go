package pooldata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aman-zulfiqar/dlmm-swap-client/internal/dlmm"
	"github.com/shopspring/decimal"
)

const DefaultBaseURL = "https://dlmm-api.meteora.ag"

// PairInfo is the subset of the pair API response the client uses
type PairInfo struct {
	Address        string          `json:"address"`
	Name           string          `json:"name"`
	MintX          string          `json:"mint_x"`
	MintY          string          `json:"mint_y"`
	BinStep        int             `json:"bin_step"`
	Liquidity      decimal.Decimal `json:"liquidity"`
	CurrentPrice   float64         `json:"current_price"`
	TradeVolume24h float64         `json:"trade_volume_24h"`
	Fees24h        float64         `json:"fees_24h"`
}

// HTTPSource reads pair state from the DLMM pair API
type HTTPSource struct {
	BaseURL string
	HTTP    *http.Client
}

var _ dlmm.PoolDataSource = (*HTTPSource)(nil)

func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout == 0 {
		timeout = 12 * time.Second
	}
	return &HTTPSource{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	b := strings.TrimSpace(string(e.Body))
	if b == "" {
		return fmt.Sprintf("pair api http %d", e.StatusCode)
	}
	return fmt.Sprintf("pair api http %d: %s", e.StatusCode, b)
}

// Pair fetches the pair document for address
func (s *HTTPSource) Pair(ctx context.Context, address string) (*PairInfo, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, fmt.Errorf("pair address is required")
	}

	u := s.BaseURL + "/pair/" + url.PathEscape(address)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("accept", "application/json")

	res, err := s.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(res.Body)
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: res.StatusCode, Body: body}
	}

	var out PairInfo
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode pair response: %w", err)
	}
	return &out, nil
}

// TotalLiquidity returns the pair's liquidity in USD
func (s *HTTPSource) TotalLiquidity(ctx context.Context, pairAddress string) (float64, error) {
	p, err := s.Pair(ctx, pairAddress)
	if err != nil {
		return 0, err
	}
	return p.Liquidity.InexactFloat64(), nil
}

// Price returns the pair's current price of token X in token Y
func (s *HTTPSource) Price(ctx context.Context, pairAddress string) (float64, error) {
	p, err := s.Pair(ctx, pairAddress)
	if err != nil {
		return 0, err
	}
	return p.CurrentPrice, nil
}
