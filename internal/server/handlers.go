package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aman-zulfiqar/dlmm-swap-client/internal/constants"
	"github.com/aman-zulfiqar/dlmm-swap-client/internal/dlmm"
	"github.com/aman-zulfiqar/dlmm-swap-client/internal/flags"
	"github.com/aman-zulfiqar/dlmm-swap-client/internal/models"
	"github.com/aman-zulfiqar/dlmm-swap-client/internal/storage"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// Handlers contains all dependencies for API endpoint handlers
type Handlers struct {
	Client    *dlmm.Client          // swap facade
	Flags     *flags.Store          // Redis-backed feature flags store (optional)
	Publisher storage.SwapPublisher // swap result fan-out (optional)
	DryRun    bool                  // submitter never touches the network
	DevMode   bool                  // Enable detailed error responses in development
	Logger    *logrus.Logger        // Structured logger
}

// err returns a standardized JSON error response
// In dev mode, includes additional error details for debugging
func (h *Handlers) err(c echo.Context, code int, msg string, details any) error {
	resp := ErrorResponse{Error: msg, Code: code}
	if h.DevMode && details != nil {
		resp.Details = details
	}
	return c.JSON(code, resp)
}

// withTimeout creates a context with timeout, defaulting to 10 seconds if duration <= 0
func (h *Handlers) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 10 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

// Health returns a simple health check endpoint
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		OK:      true,
		Network: string(h.Client.Config().Network),
		DryRun:  h.DryRun,
	})
}

// Config returns the client's network and slippage tolerance
func (h *Handlers) Config(c echo.Context) error {
	cfg := h.Client.Config()
	return c.JSON(http.StatusOK, ConfigResponse{
		Network:              string(cfg.Network),
		SlippageToleranceBps: cfg.SlippageToleranceBps,
		DryRun:               h.DryRun,
	})
}

// Tokens lists the known token registry
func (h *Handlers) Tokens(c echo.Context) error {
	items := make([]dlmm.Token, 0, len(constants.Tokens))
	for _, t := range constants.Tokens {
		items = append(items, t)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// Quote prices a swap without submitting it
// Query: input, output, amount, wallet (optional)
func (h *Handlers) Quote(c echo.Context) error {
	p, err := swapParamsFromQuery(c)
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid amount", map[string]any{"amount": "must be a number"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	q, err := h.Client.Quote(ctx, p)
	if err != nil {
		if dlmm.IsValidation(err) {
			return h.err(c, http.StatusBadRequest, err.Error(), nil)
		}
		return h.err(c, http.StatusBadGateway, "quote failed", map[string]any{"err": err.Error()})
	}

	bps := h.Client.Config().SlippageToleranceBps
	return c.JSON(http.StatusOK, QuoteResponse{
		QuoteResult:   q,
		MinimumOutput: dlmm.ApplySlippage(q.ExpectedOutput, bps),
		SlippageBps:   bps,
	})
}

func swapParamsFromQuery(c echo.Context) (dlmm.SwapParams, error) {
	p := dlmm.SwapParams{
		InputToken:      c.QueryParam("input"),
		OutputToken:     c.QueryParam("output"),
		WalletPublicKey: strings.TrimSpace(c.QueryParam("wallet")),
	}
	if v := strings.TrimSpace(c.QueryParam("amount")); v != "" {
		amount, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return p, err
		}
		p.Amount = amount
	}
	return p, nil
}

// ExecuteSwap validates, quotes and submits one swap. The body is a SwapParams
// document and the response is always a SwapResult.
func (h *Handlers) ExecuteSwap(c echo.Context) error {
	var p dlmm.SwapParams
	if err := c.Bind(&p); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	if err := dlmm.Validate(p); err != nil {
		return c.JSON(http.StatusBadRequest, dlmm.Failed(err))
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), constants.ConfirmTimeout+15*time.Second)
	defer cancel()

	if h.Flags != nil {
		on, err := h.Flags.Enabled(ctx, constants.FlagSwapsEnabled, true)
		if err != nil {
			h.Logger.WithError(err).Warn("swap kill switch unreadable, refusing swap")
			return h.err(c, http.StatusServiceUnavailable, "swaps are unavailable", nil)
		}
		if !on {
			return h.err(c, http.StatusServiceUnavailable, "swaps are disabled", nil)
		}
	}

	res, q, err := h.Client.ExecuteSwapWithQuote(ctx, p)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, res)
	}

	h.publish(p, q, res)

	if !res.Success {
		return c.JSON(http.StatusBadGateway, res)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handlers) publish(p dlmm.SwapParams, q dlmm.QuoteResult, res dlmm.SwapResult) {
	if h.Publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	ev := models.NewSwapExecuted(h.Client.Config().Network, p, q, res, h.DryRun)
	if err := h.Publisher.PublishSwap(ctx, ev); err != nil {
		h.Logger.WithError(err).Warn("failed to publish swap event")
	}
}

// PoolStats returns the total liquidity of a pair
func (h *Handlers) PoolStats(c echo.Context) error {
	addr := strings.TrimSpace(c.Param("address"))
	if addr == "" {
		return h.err(c, http.StatusBadRequest, "invalid address", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	liq, err := h.Client.GetPoolStats(ctx, addr)
	if err != nil {
		if errors.Is(err, dlmm.ErrPoolDataNotConfigured) {
			return h.err(c, http.StatusServiceUnavailable, err.Error(), nil)
		}
		return h.err(c, http.StatusBadGateway, "pool stats failed", map[string]any{"err": err.Error()})
	}
	return c.JSON(http.StatusOK, PoolStatsResponse{PairAddress: addr, TotalLiquidity: liq})
}

// FlagsUpsert creates or updates a feature flag with the given key and value
func (h *Handlers) FlagsUpsert(c echo.Context) error {
	if h.Flags == nil {
		return h.flagsUnavailable(c)
	}
	var req FlagUpsertRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	if err := flags.ValidateKey(req.Key); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": "invalid format"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Flags.Upsert(ctx, req.Key, req.Value)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to upsert flag", nil)
	}
	return c.JSON(http.StatusOK, out)
}

// FlagsUpdate updates an existing feature flag with the given key
func (h *Handlers) FlagsUpdate(c echo.Context) error {
	if h.Flags == nil {
		return h.flagsUnavailable(c)
	}
	key := c.Param("key")
	if err := flags.ValidateKey(key); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": "invalid format"})
	}
	var req FlagUpdateRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Flags.Upsert(ctx, key, req.Value)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to update flag", nil)
	}
	return c.JSON(http.StatusOK, out)
}

// FlagsGet retrieves a feature flag by its key
func (h *Handlers) FlagsGet(c echo.Context) error {
	if h.Flags == nil {
		return h.flagsUnavailable(c)
	}
	key := c.Param("key")
	if err := flags.ValidateKey(key); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": "invalid format"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Flags.Get(ctx, key)
	if err != nil {
		if errors.Is(err, flags.ErrNotFound) {
			return h.err(c, http.StatusNotFound, "flag not found", nil)
		}
		return h.err(c, http.StatusInternalServerError, "failed to get flag", nil)
	}
	return c.JSON(http.StatusOK, out)
}

// FlagsList returns all feature flags
func (h *Handlers) FlagsList(c echo.Context) error {
	if h.Flags == nil {
		return h.flagsUnavailable(c)
	}
	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Flags.List(ctx)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to list flags", nil)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// FlagsDelete removes a feature flag by its key
func (h *Handlers) FlagsDelete(c echo.Context) error {
	if h.Flags == nil {
		return h.flagsUnavailable(c)
	}
	key := c.Param("key")
	if err := flags.ValidateKey(key); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": "invalid format"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	if err := h.Flags.Delete(ctx, key); err != nil {
		if errors.Is(err, flags.ErrNotFound) {
			return h.err(c, http.StatusNotFound, "flag not found", nil)
		}
		return h.err(c, http.StatusInternalServerError, "failed to delete flag", nil)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handlers) flagsUnavailable(c echo.Context) error {
	return h.err(c, http.StatusServiceUnavailable, "flags are not configured", nil)
}
