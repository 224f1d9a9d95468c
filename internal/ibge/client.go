// Package ibge proxies the BrasilAPI IBGE lookups used by the address
// forms (UF list and cities per UF), with an in-memory TTL cache so the
// clinic's forms do not hammer the public API.
package ibge

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/cache"
	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/metrics"
)

type State struct {
	ID     int    `json:"id"`
	Sigla  string `json:"sigla"`
	Nome   string `json:"nome"`
	Regiao struct {
		Sigla string `json:"sigla"`
		Nome  string `json:"nome"`
	} `json:"regiao"`
}

type City struct {
	Nome       string `json:"nome"`
	CodigoIBGE string `json:"codigo_ibge"`
}

type Client struct {
	http   *resty.Client
	cache  *cache.TTL
	logger *zap.Logger
}

var ufRe = regexp.MustCompile(`^[A-Z]{2}$`)

// ErrInvalidUF is returned for anything that is not a two-letter UF.
var ErrInvalidUF = errors.New("ibge: UF inválida")

func NewClient(baseURL string, c *cache.TTL, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		SetHeader("Accept", "application/json")
	return &Client{http: client, cache: c, logger: logger}
}

// States returns every Brazilian UF.
func (c *Client) States(ctx context.Context) ([]State, error) {
	var cached []State
	if c.cache != nil && c.cache.GetJSON("ibge:states", &cached) {
		metrics.RecordIBGELookup("states", "hit")
		return cached, nil
	}

	var states []State
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&states).
		Get("/uf/v1")
	if err != nil {
		metrics.RecordIBGELookup("states", "error")
		c.logger.Error("IBGE states lookup failed", zap.Error(err))
		return nil, fmt.Errorf("ibge: estados: %w", err)
	}
	if resp.IsError() {
		metrics.RecordIBGELookup("states", "error")
		c.logger.Error("IBGE states lookup failed", zap.Int("status", resp.StatusCode()))
		return nil, fmt.Errorf("ibge: estados: status %d", resp.StatusCode())
	}

	metrics.RecordIBGELookup("states", "miss")
	if c.cache != nil {
		c.cache.SetJSON("ibge:states", states)
	}
	return states, nil
}

// Cities returns the cities of a UF (e.g. "SC").
func (c *Client) Cities(ctx context.Context, uf string) ([]City, error) {
	uf = strings.ToUpper(strings.TrimSpace(uf))
	if !ufRe.MatchString(uf) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidUF, uf)
	}

	key := "ibge:cities:" + uf
	var cached []City
	if c.cache != nil && c.cache.GetJSON(key, &cached) {
		metrics.RecordIBGELookup("cities", "hit")
		return cached, nil
	}

	var cities []City
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&cities).
		Get("/municipios/v1/" + uf)
	if err != nil {
		metrics.RecordIBGELookup("cities", "error")
		c.logger.Error("IBGE cities lookup failed", zap.String("uf", uf), zap.Error(err))
		return nil, fmt.Errorf("ibge: municípios de %s: %w", uf, err)
	}
	if resp.IsError() {
		metrics.RecordIBGELookup("cities", "error")
		c.logger.Error("IBGE cities lookup failed", zap.String("uf", uf), zap.Int("status", resp.StatusCode()))
		return nil, fmt.Errorf("ibge: municípios de %s: status %d", uf, resp.StatusCode())
	}

	metrics.RecordIBGELookup("cities", "miss")
	if c.cache != nil {
		c.cache.SetJSON(key, cities)
	}
	return cities, nil
}
