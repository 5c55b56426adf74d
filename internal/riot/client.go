package riot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
	"github.com/valyala/fasthttp"

	"league-advisor/internal/apperr"
	"league-advisor/internal/config"
	"league-advisor/internal/constants"
)

// Client talks to the Riot API. It is a thin transport: retry/backoff on
// 429 and 5xx lives here, request budgeting belongs to the caller.
type Client struct {
	apiKey string
	region string
	http   *fasthttp.Client
	logger zerolog.Logger

	// overrides the platform and regional hosts in tests
	baseOverride string
}

func NewClient(cfg *config.Config, logger zerolog.Logger) *Client {
	return &Client{
		apiKey: cfg.RiotAPIKey,
		region: cfg.Region,
		logger: logger,
		http: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         constants.ExternalAPITimeout,
			WriteTimeout:        constants.ExternalAPITimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

// SetRegion overrides the configured platform region for this client.
func (c *Client) SetRegion(region string) {
	if region != "" {
		c.region = region
	}
}

// cluster maps a platform region to its regional routing cluster.
func (c *Client) cluster() string {
	switch c.region {
	case "na1", "br1", "la1", "la2":
		return "americas"
	case "euw1", "eun1", "tr1", "ru":
		return "europe"
	case "kr", "jp1":
		return "asia"
	case "oc1", "ph2", "sg2", "th2", "vn2":
		return "sea"
	default:
		return "americas"
	}
}

func (c *Client) platformHost() string {
	if c.baseOverride != "" {
		return c.baseOverride
	}
	return fmt.Sprintf("https://%s.api.riotgames.com", c.region)
}

func (c *Client) regionalHost() string {
	if c.baseOverride != "" {
		return c.baseOverride
	}
	return fmt.Sprintf("https://%s.api.riotgames.com", c.cluster())
}

// GetAccount resolves a Riot ID to an account. A 404 maps to the
// player-not-found kind.
func (c *Client) GetAccount(ctx context.Context, gameName, tagLine string) (*Account, error) {
	u := fmt.Sprintf("%s/riot/account/v1/accounts/by-riot-id/%s/%s",
		c.regionalHost(), url.PathEscape(gameName), url.PathEscape(tagLine))
	account, err := doRequest[Account](ctx, c, u)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.code == fasthttp.StatusNotFound {
			return nil, fmt.Errorf("%w: %s#%s", apperr.ErrPlayerNotFound, gameName, tagLine)
		}
		return nil, fmt.Errorf("fetch account: %w", err)
	}
	return account, nil
}

func (c *Client) GetSummoner(ctx context.Context, puuid string) (*Summoner, error) {
	u := fmt.Sprintf("%s/lol/summoner/v4/summoners/by-puuid/%s", c.platformHost(), url.PathEscape(puuid))
	summoner, err := doRequest[Summoner](ctx, c, u)
	if err != nil {
		return nil, fmt.Errorf("fetch summoner: %w", err)
	}
	return summoner, nil
}

func (c *Client) GetLeagueEntries(ctx context.Context, puuid string) ([]LeagueEntry, error) {
	u := fmt.Sprintf("%s/lol/league/v4/entries/by-puuid/%s", c.platformHost(), url.PathEscape(puuid))
	entries, err := doRequest[[]LeagueEntry](ctx, c, u)
	if err != nil {
		return nil, fmt.Errorf("fetch league entries: %w", err)
	}
	return *entries, nil
}

// GetMatchIDs lists the player's most recent ranked match identifiers,
// newest first. An empty list is not an error here; the caller decides.
func (c *Client) GetMatchIDs(ctx context.Context, puuid string, count int) ([]string, error) {
	u := fmt.Sprintf("%s/lol/match/v5/matches/by-puuid/%s/ids?type=ranked&count=%d",
		c.regionalHost(), url.PathEscape(puuid), count)
	ids, err := doRequest[[]string](ctx, c, u)
	if err != nil {
		return nil, fmt.Errorf("fetch match ids: %w", err)
	}
	return *ids, nil
}

func (c *Client) GetMatch(ctx context.Context, matchID string) (*Match, error) {
	u := fmt.Sprintf("%s/lol/match/v5/matches/%s", c.regionalHost(), url.PathEscape(matchID))
	match, err := doRequest[Match](ctx, c, u)
	if err != nil {
		return nil, fmt.Errorf("fetch match %s: %w", matchID, err)
	}
	return match, nil
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("riot api error: status %d", e.code)
}

func doRequest[T any](ctx context.Context, c *Client, u string) (*T, error) {
	var result T

	backoff := retry.WithMaxRetries(constants.MaxRetries, retry.NewExponential(constants.RetryBaseDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req := fasthttp.AcquireRequest()
		resp := fasthttp.AcquireResponse()
		defer fasthttp.ReleaseRequest(req)
		defer fasthttp.ReleaseResponse(resp)

		req.SetRequestURI(u)
		req.Header.SetMethod(fasthttp.MethodGet)
		req.Header.Set("X-Riot-Token", c.apiKey)

		var err error
		if deadline, ok := ctx.Deadline(); ok {
			err = c.http.DoDeadline(req, resp, deadline)
		} else {
			err = c.http.Do(req, resp)
		}
		if err != nil {
			return retry.RetryableError(fmt.Errorf("riot request: %w", err))
		}

		switch status := resp.StatusCode(); {
		case status == fasthttp.StatusOK:
		case status == fasthttp.StatusTooManyRequests || status >= 500:
			c.logger.Warn().Int("status", status).Str("url", u).Msg("retryable riot response")
			return retry.RetryableError(&statusError{code: status})
		default:
			return &statusError{code: status}
		}

		if err := json.Unmarshal(resp.Body(), &result); err != nil {
			return fmt.Errorf("%w: %v", apperr.ErrMalformedResponse, err)
		}
		return nil
	})
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.code == fasthttp.StatusTooManyRequests {
			return nil, fmt.Errorf("%w: riot api kept returning 429", apperr.ErrRateLimited)
		}
		return nil, err
	}
	return &result, nil
}
