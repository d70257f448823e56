package core

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"
	"untis-scraper/lib/restyutil"
	"untis-scraper/lib/scrapers/webuntis/records"
	"untis-scraper/lib/textutil"
	"untis-scraper/lib/timezone"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/dgraph-io/badger/v4"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	defaultTimeout       = 30 * time.Second
	defaultCacheLifetime = time.Hour
)

var (
	usernameFields = []string{"j_username", "user", "username", "login", "benutzername"}
	passwordFields = []string{"j_password", "password", "passwd", "pass", "passwort"}
)

type ClientOptions struct {
	// for example https://nessa.webuntis.com
	BaseUrl string
	School  string
	// 30 seconds when zero
	Timeout time.Duration
	// pages are not cached when nil
	Cache *badger.DB
	// one hour when zero
	CacheLifetime    time.Duration
	InstrumentOutput restyutil.InstrumentOutput
}

// Client is a session with the portal's web interface.
//
// The session fields are guarded by a mutex but logging in concurrently
// on the same client is not supported.
type Client struct {
	BaseUrl *url.URL
	School  string
	Http    *resty.Client

	cache         *pageCache
	cacheLifetime time.Duration

	mutex         sync.Mutex
	jar           http.CookieJar
	username      string
	sessionCookie *http.Cookie
}

func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	baseUrl, err := url.Parse(strings.TrimSuffix(opts.BaseUrl, "/"))
	if err != nil {
		return nil, err
	}
	if baseUrl.Scheme == "" || baseUrl.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", opts.BaseUrl)
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	client := resty.New()
	client.SetBaseURL(baseUrl.String())
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetHeader("accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	client.SetHeader("accept-language", "de-DE,de;q=0.8,en;q=0.6")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(timeout)

	restyutil.InstrumentClient(client, tracer, opts.InstrumentOutput)

	c := &Client{
		BaseUrl:       baseUrl,
		School:        opts.School,
		Http:          client,
		jar:           jar,
		cacheLifetime: opts.CacheLifetime,
	}
	if c.cacheLifetime == 0 {
		c.cacheLifetime = defaultCacheLifetime
	}
	if opts.Cache != nil {
		c.cache = &pageCache{db: opts.Cache, baseUrl: baseUrl}
	}
	return c, nil
}

type loginForm struct {
	action *url.URL
	method string
	fields map[string]string
}

func findLoginForm(pageUrl *url.URL, doc *goquery.Document) (loginForm, bool) {
	var form *goquery.Selection
	doc.Find("form").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		action := s.AttrOr("action", "")
		if strings.Contains(action, "login") || strings.Contains(action, "j_security_check") {
			form = s
			return false
		}
		return true
	})
	if form == nil {
		return loginForm{}, false
	}

	action, err := url.Parse(form.AttrOr("action", ""))
	if err != nil {
		return loginForm{}, false
	}

	method := strings.ToUpper(strings.TrimSpace(form.AttrOr("method", "")))
	if method == "" {
		method = http.MethodPost
	}

	fields := map[string]string{}
	form.Find("input[name]").Each(func(_ int, input *goquery.Selection) {
		name := input.AttrOr("name", "")
		if name == "" {
			return
		}
		fields[name] = input.AttrOr("value", "")
	})

	return loginForm{
		action: pageUrl.ResolveReference(action),
		method: method,
		fields: fields,
	}, true
}

// fill puts the credentials into the first known username and password
// fields of the form, j_username and j_password are used when the form has
// none of them.
func (f loginForm) fill(username, password string) {
	usernameField := "j_username"
	for _, name := range usernameFields {
		if _, ok := f.fields[name]; ok {
			usernameField = name
			break
		}
	}
	passwordField := "j_password"
	for _, name := range passwordFields {
		if _, ok := f.fields[name]; ok {
			passwordField = name
			break
		}
	}
	f.fields[usernameField] = username
	f.fields[passwordField] = password
}

func isSessionCookie(cookie *http.Cookie) bool {
	return cookie.Name == "JSESSIONID" ||
		strings.Contains(strings.ToLower(cookie.Name), "session")
}

// Login submits the portal's login form. it returns false without an error
// when the portal answered but did not accept the credentials.
func (c *Client) Login(ctx context.Context, username, password string) (bool, error) {
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		SetQueryParam("school", c.School).
		Get("/WebUntis/")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch login page")
		return false, fmt.Errorf("%w: fetch login page: %w", ErrNetwork, err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse login page")
		return false, fmt.Errorf("%w: parse login page: %w", ErrUnsupportedVersion, err)
	}

	pageUrl := c.BaseUrl
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		pageUrl = res.RawResponse.Request.URL
	}
	form, ok := findLoginForm(pageUrl, doc)
	if !ok {
		span.SetStatus(codes.Error, "could not find login form")
		return false, fmt.Errorf("%w: could not find login form", ErrUnsupportedVersion)
	}
	form.fill(username, password)
	span.SetAttributes(
		attribute.String("action", form.action.String()),
		attribute.String("method", form.method),
	)

	req := c.Http.R().SetContext(ctx)
	if form.method == http.MethodGet {
		res, err = req.SetQueryParams(form.fields).Get(form.action.String())
	} else {
		res, err = req.SetFormData(form.fields).Execute(form.method, form.action.String())
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to submit login form")
		return false, fmt.Errorf("%w: submit login form: %w", ErrNetwork, err)
	}
	if res.StatusCode() == http.StatusUnauthorized || res.StatusCode() == http.StatusForbidden {
		span.SetStatus(codes.Error, "login rejected")
		return false, fmt.Errorf("%w: login rejected with %s", ErrAuthenticationFailed, res.Status())
	}

	body := strings.ToLower(res.String())
	success := !textutil.ContainsAny(body, "error", "fehler", "invalid") &&
		textutil.ContainsAny(body, "timetable", "stundenplan", "main.do")
	if !success {
		slog.WarnContext(ctx, "login was not accepted", "school", c.School, "status", res.StatusCode())
		span.SetStatus(codes.Error, "login was not accepted")
		return false, nil
	}

	finalUrl := form.action
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		finalUrl = res.RawResponse.Request.URL
	}
	cookie := c.findSessionCookie(res.Cookies(), finalUrl, form.action, pageUrl)

	c.mutex.Lock()
	c.username = username
	c.sessionCookie = cookie
	c.mutex.Unlock()

	if cookie == nil {
		slog.WarnContext(ctx, "login accepted but no session cookie was set", "school", c.School)
		return false, nil
	}
	return true, nil
}

// findSessionCookie looks through the cookies of the last response first,
// then through the jar for each of the urls. cookies set on a redirect only
// end up in the jar.
func (c *Client) findSessionCookie(last []*http.Cookie, urls ...*url.URL) *http.Cookie {
	for _, cookie := range last {
		if isSessionCookie(cookie) {
			return cookie
		}
	}
	c.mutex.Lock()
	jar := c.jar
	c.mutex.Unlock()
	for _, u := range urls {
		for _, cookie := range jar.Cookies(u) {
			if isSessionCookie(cookie) {
				return cookie
			}
		}
	}
	return nil
}

func (c *Client) webuntisUrl() *url.URL {
	return c.BaseUrl.JoinPath("WebUntis/")
}

// IsAuthenticated reports whether a session cookie is known and the cookie
// jar still holds cookies for the portal.
func (c *Client) IsAuthenticated() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.sessionCookie == nil {
		return false
	}
	return len(c.jar.Cookies(c.webuntisUrl())) > 0 || len(c.jar.Cookies(c.BaseUrl)) > 0
}

// FetchPage fetches the html of the page holding records of the given
// kind. dates may be nil, the current week is used then.
func (c *Client) FetchPage(ctx context.Context, kind records.Kind, dates *DateRange) (string, error) {
	ctx, span := tracer.Start(ctx, "client:FetchPage")
	defer span.End()
	span.SetAttributes(attribute.String("kind", string(kind)))

	if !c.IsAuthenticated() {
		span.SetStatus(codes.Error, ErrSessionExpired.Error())
		return "", ErrSessionExpired
	}

	p, err := pageFor(kind, c.School, dates)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "unknown page kind")
		return "", err
	}

	c.mutex.Lock()
	username := c.username
	c.mutex.Unlock()

	for _, endpoint := range p.candidates {
		if c.cache != nil {
			cached, err := c.cache.get(ctx, username, endpoint)
			if err == nil {
				slog.DebugContext(ctx, "using cached page", "kind", kind, "url", endpoint)
				return string(cached.Contents), nil
			}
			if err != errPageNotCached {
				slog.WarnContext(ctx, "failed to read page cache", "url", endpoint, "err", err)
			}
		}

		res, err := c.Http.R().
			SetContext(ctx).
			Get(endpoint)
		if err != nil {
			slog.WarnContext(ctx, "failed to fetch candidate page", "kind", kind, "url", endpoint, "err", err)
			continue
		}
		if res.IsError() {
			slog.DebugContext(ctx, "candidate page returned an error", "kind", kind, "url", endpoint, "status", res.StatusCode())
			continue
		}
		body := res.String()
		if len(p.keywords) > 0 && !textutil.ContainsAny(body, p.keywords...) {
			slog.DebugContext(ctx, "candidate page is missing keywords", "kind", kind, "url", endpoint)
			continue
		}

		slog.DebugContext(ctx, "found page", "kind", kind, "url", endpoint)
		span.SetAttributes(attribute.String("url", endpoint))

		if c.cache != nil {
			err = c.cache.set(ctx, username, endpoint, cachedPage{
				Contents:  res.Body(),
				ExpiresAt: timezone.Now().Add(c.cacheLifetime).Unix(),
			})
			if err != nil {
				slog.WarnContext(ctx, "failed to cache page", "url", endpoint, "err", err)
			}
		}
		return body, nil
	}

	span.SetStatus(codes.Error, "no candidate page matched")
	return "", fmt.Errorf("%w: %s page", ErrPageNotFound, kind)
}

// Logout ends the session on the portal and forgets all cookies. it does
// nothing when not logged in.
func (c *Client) Logout(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "client:Logout")
	defer span.End()

	if !c.IsAuthenticated() {
		return nil
	}

	_, err := c.Http.R().
		SetContext(ctx).
		SetQueryParam("school", c.School).
		Get("/WebUntis/logout.do")

	jar, jarErr := cookiejar.New(nil)
	if jarErr != nil {
		return jarErr
	}
	c.mutex.Lock()
	c.sessionCookie = nil
	c.username = ""
	c.jar = jar
	c.Http.SetCookieJar(jar)
	c.mutex.Unlock()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to call logout")
		return fmt.Errorf("%w: logout: %w", ErrNetwork, err)
	}
	return nil
}
