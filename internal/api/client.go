// Package api implements the undocumented JSON API of the affiliate
// platform family: the landing-page merchant handshake, login, syncData
// and getDownline modules.
package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"slapred/bonusscraper/helpers"
	"slapred/bonusscraper/internal/coerce"
	"slapred/bonusscraper/logger"
	"slapred/bonusscraper/pkg/errors"
	"slapred/bonusscraper/services/cache"
)

const (
	apiPath = "/api/v1/index.php"

	moduleLogin    = "/users/login"
	moduleSyncData = "/users/syncData"
	moduleDownline = "/referrer/getDownline"

	// How long a site stays blocked after the upstream rate-limits us.
	rateLimitBlockTime = 5 * time.Minute
)

var (
	merchantIDRe   = regexp.MustCompile(`(?i)var MERCHANTID = (\d+);`)
	merchantNameRe = regexp.MustCompile(`(?i)var MERCHANTNAME = ["'](.*?)["'];`)
)

// Client talks to one platform API endpoint per site. A single client is
// shared across sites; no connection or session state survives a site.
type Client struct {
	http        *resty.Client
	cache       cache.CacheService
	authTimeout time.Duration
	log         *logger.Logger
}

// NewClient creates an API client. cacheSvc records rate-limit blocks per
// site and may not be nil.
func NewClient(requestTimeout, authTimeout time.Duration, cacheSvc cache.CacheService) *Client {
	httpClient := resty.New().
		SetTimeout(requestTimeout).
		SetHeader("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/112.0.0.0 Safari/537.36")

	return &Client{
		http:        httpClient,
		cache:       cacheSvc,
		authTimeout: authTimeout,
		log:         logger.ForAPI(),
	}
}

// Login performs the full auth handshake for one site: landing-page fetch,
// merchant extraction, and credential exchange. No retries are attempted.
func (c *Client) Login(ctx context.Context, siteURL, mobile, password string) (*AuthData, error) {
	if err := c.checkBlocked(siteURL); err != nil {
		return nil, err
	}

	html, err := helpers.FetchPage(ctx, siteURL, c.authTimeout)
	if err != nil {
		var rle *helpers.RateLimitedError
		if stderrors.As(err, &rle) {
			c.block(siteURL)
			return nil, errors.NewRateLimit(siteURL, rateLimitBlockTime)
		}
		return nil, errors.NewUnreachable(siteURL, "failed to fetch landing page", err)
	}
	if html == "" {
		return nil, errors.NewUnreachable(siteURL, "empty landing page body", nil)
	}

	merchantID, merchantName := extractMerchantInfo(html)
	if merchantID == "" {
		// Expected for sites outside this platform family.
		return nil, errors.NewMerchantInfo(siteURL, "no MERCHANTID marker in landing page")
	}

	apiURL := siteURL + apiPath
	form := map[string]string{
		"module":        moduleLogin,
		"mobile":        mobile,
		"password":      password,
		"merchantId":    merchantID,
		"domainId":      "0",
		"accessId":      "",
		"accessToken":   "",
		"walletIsAdmin": "",
	}

	env, err := c.postModule(ctx, siteURL, apiURL, form)
	if err != nil {
		if errors.TypeOf(err) == errors.ErrorTypeAPI {
			// Unparseable or non-JSON login response.
			return nil, errors.NewLogin(siteURL, "login response not parseable", err)
		}
		return nil, err
	}
	if env.Status != statusSuccess {
		c.log.Warn().
			Str("url", apiURL).
			Str("status", env.Status).
			Str("message", env.Message).
			Msg("Login rejected by API")
		return nil, errors.NewLogin(siteURL, fmt.Sprintf("login status %q", env.Status), nil)
	}

	data := env.dataMap()
	accessID, _ := data["id"].(string)
	if accessID == "" {
		if n, ok := data["id"].(float64); ok {
			accessID = strconv.FormatFloat(n, 'f', -1, 64)
		}
	}
	token, _ := data["token"].(string)
	if token == "" {
		return nil, errors.NewToken(siteURL, "login succeeded without token")
	}

	c.log.Info().
		Str("url", siteURL).
		Str("merchant", merchantName).
		Msg("Login success")

	return &AuthData{
		MerchantID:   merchantID,
		MerchantName: merchantName,
		AccessID:     accessID,
		Token:        token,
		APIURL:       apiURL,
	}, nil
}

// SyncData fetches the current bonus and promotion lists for an
// authenticated session and returns them concatenated. A missing or
// non-array field is treated as empty.
func (c *Client) SyncData(ctx context.Context, auth *AuthData) ([]interface{}, error) {
	site := siteOf(auth)
	form := map[string]string{
		"module":        moduleSyncData,
		"merchantId":    auth.MerchantID,
		"domainId":      "0",
		"accessId":      auth.AccessID,
		"accessToken":   auth.Token,
		"walletIsAdmin": "",
	}

	env, err := c.postModule(ctx, site, auth.APIURL, form)
	if err != nil {
		return nil, err
	}
	if env.Status != statusSuccess {
		c.logAPIFailure(auth.APIURL, moduleSyncData, env)
		return nil, errors.NewAPI(site, fmt.Sprintf("syncData status %q: %s", env.Status, env.Message), nil)
	}

	data := env.dataMap()
	items := coerce.List(data["bonus"])
	items = append(items, coerce.List(data["promotions"])...)
	return items, nil
}

// GetDownline fetches one page of the referral network for level "1".
// The raw downlines field is returned untyped; the caller owns shape
// checking because a non-list value ends pagination rather than failing.
func (c *Client) GetDownline(ctx context.Context, auth *AuthData, pageIndex int) (interface{}, error) {
	site := siteOf(auth)
	form := map[string]string{
		"module":        moduleDownline,
		"level":         "1",
		"pageIndex":     strconv.Itoa(pageIndex),
		"merchantId":    auth.MerchantID,
		"domainId":      "0",
		"accessId":      auth.AccessID,
		"accessToken":   auth.Token,
		"walletIsAdmin": "true",
	}

	c.log.Debug().
		Str("url", auth.APIURL).
		Str("module", moduleDownline).
		Int("page", pageIndex).
		Msg("Downline page request")

	env, err := c.postModule(ctx, site, auth.APIURL, form)
	if err != nil {
		return nil, err
	}
	if env.Status != statusSuccess {
		c.logAPIFailure(auth.APIURL, moduleDownline, env)
		return nil, errors.NewAPI(site, fmt.Sprintf("getDownline status %q: %s", env.Status, env.Message), nil)
	}

	data := env.dataMap()
	return data["downlines"], nil
}

// postModule sends one form-encoded module call and decodes the envelope.
func (c *Client) postModule(ctx context.Context, site, apiURL string, form map[string]string) (*envelope, error) {
	if err := c.checkBlocked(site); err != nil {
		return nil, err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(form).
		Post(apiURL)
	if err != nil {
		return nil, errors.NewUnreachable(site, fmt.Sprintf("POST %s failed", form["module"]), err)
	}

	if resp.StatusCode() == http.StatusTooManyRequests || resp.StatusCode() == 430 {
		c.block(site)
		return nil, errors.NewRateLimit(site, rateLimitBlockTime)
	}
	// A non-200 here is upstream unavailability, not a business response;
	// it stays in the retryable class.
	if resp.StatusCode() != http.StatusOK {
		return nil, errors.NewUnreachable(site, fmt.Sprintf("%s unexpected status code %d", form["module"], resp.StatusCode()), nil)
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return nil, errors.NewAPI(site, fmt.Sprintf("%s response not JSON", form["module"]), err)
	}
	return &env, nil
}

// logAPIFailure records a non-success business response with full detail.
func (c *Client) logAPIFailure(apiURL, module string, env *envelope) {
	evt := c.log.Warn().
		Str("url", apiURL).
		Str("module", module).
		Str("status", env.Status).
		Str("message", env.Message)
	if s := env.dataString(); s != "" {
		evt = evt.Str("data", s)
	}
	evt.Msg("API reported failure")
}

// checkBlocked returns a rate-limit error while a site block is active.
func (c *Client) checkBlocked(site string) error {
	if c.cache == nil {
		return nil
	}
	if _, err := c.cache.Get(blockKey(site)); err == nil {
		return errors.NewRateLimit(site, rateLimitBlockTime)
	}
	return nil
}

// block marks a site as rate limited for rateLimitBlockTime.
func (c *Client) block(site string) {
	if c.cache == nil {
		return
	}
	value := []byte(strconv.Itoa(int(rateLimitBlockTime / time.Second)))
	if err := c.cache.Set(blockKey(site), value, rateLimitBlockTime); err != nil {
		c.log.Warn().Err(err).Str("site", site).Msg("Failed to record rate-limit block")
	}
}

func blockKey(site string) string {
	return "rate_limited:" + site
}

// siteOf recovers the site key from an AuthData endpoint URL.
func siteOf(auth *AuthData) string {
	return strings.TrimSuffix(auth.APIURL, apiPath)
}

// extractMerchantInfo pulls the merchant id and display name out of the
// embedded script variables of a landing page. The name is optional; the
// id is the platform marker.
func extractMerchantInfo(html string) (string, string) {
	var id, name string

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err == nil {
		doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := s.Text()
			if id == "" {
				if m := merchantIDRe.FindStringSubmatch(text); m != nil {
					id = m[1]
				}
			}
			if name == "" {
				if m := merchantNameRe.FindStringSubmatch(text); m != nil {
					name = m[1]
				}
			}
			return id == "" || name == ""
		})
	}

	// Some sites inline the variables outside script elements.
	if id == "" {
		if m := merchantIDRe.FindStringSubmatch(html); m != nil {
			id = m[1]
		}
	}
	if name == "" {
		if m := merchantNameRe.FindStringSubmatch(html); m != nil {
			name = m[1]
		}
	}
	return id, name
}
