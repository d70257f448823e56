package core

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
	devenv "untis-scraper/dev/env"
	"untis-scraper/lib/scrapers/webuntis/records"
	"untis-scraper/lib/telemetry"
	"untis-scraper/lib/timezone"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

const loginPage = `<html><body>
<form method="post" action="/WebUntis/search.do"><input name="q"></form>
<form method="post" action="j_security_check">
	<input type="hidden" name="school" value="demo">
	<input type="hidden" name="token" value="abc">
	<input name="j_username">
	<input name="j_password" type="password">
</form>
</body></html>`

type fakePortal struct {
	mutex sync.Mutex
	hits  map[string]int
	// query of the last timetable request
	timetableQuery string
	rejectStatus   int
}

func (p *fakePortal) hit(path string) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.hits[path]++
}

func (p *fakePortal) count(path string) int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.hits[path]
}

func (p *fakePortal) handler(t testing.TB) http.Handler {
	requireSession := func(w http.ResponseWriter, r *http.Request) bool {
		cookie, err := r.Cookie("JSESSIONID")
		if err != nil || cookie.Value != "session-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return false
		}
		return true
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/WebUntis/", func(w http.ResponseWriter, r *http.Request) {
		p.hit(r.URL.Path)
		if r.URL.Path != "/WebUntis/" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, loginPage)
	})
	mux.HandleFunc("/WebUntis/j_security_check", func(w http.ResponseWriter, r *http.Request) {
		p.hit(r.URL.Path)
		if p.rejectStatus != 0 {
			w.WriteHeader(p.rejectStatus)
			return
		}
		err := r.ParseForm()
		if err != nil {
			t.Error(err)
		}
		if r.Method != http.MethodPost || r.PostForm.Get("token") != "abc" || r.PostForm.Get("school") != "demo" {
			t.Errorf("unexpected login submission: %s %v", r.Method, r.PostForm)
		}
		if r.PostForm.Get("j_username") != "max" || r.PostForm.Get("j_password") != "secret" {
			fmt.Fprint(w, `<html><body>Fehler: invalid credentials</body></html>`)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "session-1", Path: "/WebUntis"})
		fmt.Fprint(w, `<html><body><a href="main.do">Stundenplan</a></body></html>`)
	})
	mux.HandleFunc("/WebUntis/main.do", func(w http.ResponseWriter, r *http.Request) {
		p.hit(r.URL.Path)
		if !requireSession(w, r) {
			return
		}
		fmt.Fprint(w, `<html><body><div id="app"></div></body></html>`)
	})
	mux.HandleFunc("/WebUntis/classbook.do", func(w http.ResponseWriter, r *http.Request) {
		p.hit(r.URL.Path + "?" + r.URL.Query().Get("method"))
		if !requireSession(w, r) {
			return
		}
		switch r.URL.Query().Get("method") {
		case "showAbsences":
			fmt.Fprint(w, `<html><body><h1>Fehlzeiten</h1><table class="list"><tr><td>12.03.2024</td><td>krank</td><td>entschuldigt</td></tr></table></body></html>`)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})
	mux.HandleFunc("/WebUntis/homework.do", func(w http.ResponseWriter, r *http.Request) {
		p.hit(r.URL.Path)
		fmt.Fprint(w, `<html><body>nothing here</body></html>`)
	})
	mux.HandleFunc("/WebUntis/timetable.do", func(w http.ResponseWriter, r *http.Request) {
		p.hit(r.URL.Path)
		if !requireSession(w, r) {
			return
		}
		p.mutex.Lock()
		p.timetableQuery = r.URL.RawQuery
		p.mutex.Unlock()
		fmt.Fprint(w, `<html><body><div class="period">08:00 08:45 M</div></body></html>`)
	})
	mux.HandleFunc("/WebUntis/logout.do", func(w http.ResponseWriter, r *http.Request) {
		p.hit(r.URL.Path)
		http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "", Path: "/WebUntis", MaxAge: -1})
	})
	return mux
}

func newFakePortal(t testing.TB) (*fakePortal, *httptest.Server) {
	portal := &fakePortal{hits: map[string]int{}}
	server := httptest.NewServer(portal.handler(t))
	t.Cleanup(server.Close)
	return portal, server
}

func newTestClient(t testing.TB, baseUrl string, cache *badger.DB) *Client {
	client, err := NewClient(context.Background(), ClientOptions{
		BaseUrl: baseUrl,
		School:  "demo",
		Timeout: 5 * time.Second,
		Cache:   cache,
	})
	require.NoError(t, err)
	return client
}

func TestLogin(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:webuntis/core")
	defer cleanup()

	ctx := context.Background()
	portal, server := newFakePortal(t)
	client := newTestClient(t, server.URL, nil)

	require.False(t, client.IsAuthenticated())

	ok, err := client.Login(ctx, "max", "wrong")
	require.NoError(t, err)
	require.False(t, ok)
	require.False(t, client.IsAuthenticated())

	ok, err = client.Login(ctx, "max", "secret")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, client.IsAuthenticated())
	require.Equal(t, 2, portal.count("/WebUntis/j_security_check"))

	err = client.Logout(ctx)
	require.NoError(t, err)
	require.False(t, client.IsAuthenticated())
	require.Equal(t, 1, portal.count("/WebUntis/logout.do"))

	// logging out twice does not call the portal again
	require.NoError(t, client.Logout(ctx))
	require.Equal(t, 1, portal.count("/WebUntis/logout.do"))
}

func TestLoginRejected(t *testing.T) {
	portal, server := newFakePortal(t)
	portal.rejectStatus = http.StatusForbidden
	client := newTestClient(t, server.URL, nil)

	ok, err := client.Login(context.Background(), "max", "secret")
	require.False(t, ok)
	require.True(t, errors.Is(err, ErrAuthenticationFailed), err)
}

func TestLoginWithoutForm(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><form action="/search"><input name="q"></form></body></html>`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)
	ok, err := client.Login(context.Background(), "max", "secret")
	require.False(t, ok)
	require.True(t, errors.Is(err, ErrUnsupportedVersion), err)
}

func TestLoginNetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := newTestClient(t, url, nil)
	ok, err := client.Login(context.Background(), "max", "secret")
	require.False(t, ok)
	require.True(t, errors.Is(err, ErrNetwork), err)
}

func TestFetchPage(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:webuntis/core")
	defer cleanup()

	ctx := context.Background()
	portal, server := newFakePortal(t)
	client := newTestClient(t, server.URL, nil)

	_, err := client.FetchPage(ctx, records.KindAbsence, nil)
	require.True(t, errors.Is(err, ErrSessionExpired), err)
	require.Equal(t, 0, portal.count("/WebUntis/main.do"))

	ok, err := client.Login(ctx, "max", "secret")
	require.NoError(t, err)
	require.True(t, ok)

	t.Run("CandidateCascade", func(t *testing.T) {
		html, err := client.FetchPage(ctx, records.KindAbsence, nil)
		require.NoError(t, err)
		require.Contains(t, html, "Fehlzeiten")
		// main.do answers without keywords, index.do does not exist
		require.Equal(t, 1, portal.count("/WebUntis/main.do"))
		require.Equal(t, 1, portal.count("/WebUntis/index.do"))
		require.Equal(t, 1, portal.count("/WebUntis/classbook.do?showAbsences"))
	})

	t.Run("PageNotFound", func(t *testing.T) {
		_, err := client.FetchPage(ctx, records.KindHomework, nil)
		require.True(t, errors.Is(err, ErrPageNotFound), err)
		require.Contains(t, err.Error(), "homework")
		require.Equal(t, 1, portal.count("/WebUntis/homework.do"))
		require.Equal(t, 1, portal.count("/WebUntis/classbook.do?showHomework"))
	})

	t.Run("TimetableIsAlwaysAccepted", func(t *testing.T) {
		html, err := client.FetchPage(ctx, records.KindPeriod, &DateRange{
			Start: time.Date(2024, 3, 11, 0, 0, 0, 0, timezone.Location),
			End:   time.Date(2024, 3, 17, 0, 0, 0, 0, timezone.Location),
		})
		require.NoError(t, err)
		require.Contains(t, html, "08:00")

		portal.mutex.Lock()
		query := portal.timetableQuery
		portal.mutex.Unlock()
		require.Equal(t, "school=demo&startDate=20240311&endDate=20240317", query)
	})

	t.Run("UnknownKind", func(t *testing.T) {
		_, err := client.FetchPage(ctx, records.Kind("grades"), nil)
		require.Error(t, err)
	})
}

func TestFetchPageCache(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:webuntis/core")
	defer cleanup()

	cache, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	defer cache.Close()

	ctx := context.Background()
	portal, server := newFakePortal(t)
	client := newTestClient(t, server.URL, cache)

	ok, err := client.Login(ctx, "max", "secret")
	require.NoError(t, err)
	require.True(t, ok)

	first, err := client.FetchPage(ctx, records.KindAbsence, nil)
	require.NoError(t, err)
	second, err := client.FetchPage(ctx, records.KindAbsence, nil)
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, 1, portal.count("/WebUntis/classbook.do?showAbsences"))
	// rejected candidates are not cached
	require.Equal(t, 2, portal.count("/WebUntis/main.do"))
}

func TestPageCacheExpiry(t *testing.T) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	client := newTestClient(t, "https://example.webuntis.com", db)
	cache := client.cache

	err = cache.set(ctx, "max", "/WebUntis/homework.do?school=demo", cachedPage{
		Contents:  []byte("old"),
		ExpiresAt: timezone.Now().Add(-time.Minute).Unix(),
	})
	require.NoError(t, err)
	_, err = cache.get(ctx, "max", "/WebUntis/homework.do?school=demo")
	require.Equal(t, errPageNotCached, err)

	err = cache.set(ctx, "max", "/WebUntis/homework.do?school=demo", cachedPage{
		Contents:  []byte("fresh"),
		ExpiresAt: timezone.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)
	page, err := cache.get(ctx, "max", "/WebUntis/homework.do?school=demo")
	require.NoError(t, err)
	require.Equal(t, "fresh", string(page.Contents))

	// other users do not share pages
	_, err = cache.get(ctx, "erika", "/WebUntis/homework.do?school=demo")
	require.Equal(t, errPageNotCached, err)
}

func TestCacheKey(t *testing.T) {
	client := newTestClient(t, "https://example.webuntis.com", nil)
	cache := pageCache{baseUrl: client.BaseUrl}

	a, err := cache.key("max", "/WebUntis/timetable.do?startDate=20240311&school=demo")
	require.NoError(t, err)
	b, err := cache.key("max", "/WebUntis/timetable.do?school=demo&startDate=20240311")
	require.NoError(t, err)
	require.Equal(t, a, b)

	exams, err := cache.key("max", "/WebUntis/main.do?school=demo#/basic/exams")
	require.NoError(t, err)
	homework, err := cache.key("max", "/WebUntis/main.do?school=demo#/basic/homework")
	require.NoError(t, err)
	require.NotEqual(t, exams, homework)
}

func TestLivePortal(t *testing.T) {
	config, err := devenv.GetStateConfig[devenv.WebUntisTestConfig]("webuntis_config.json5")
	if err != nil {
		t.Skip("no webuntis test config in dev state:", err)
	}
	if config.BaseUrl == "" {
		t.Skip("webuntis test config has no base_url")
	}

	cleanup := telemetry.SetupForTesting(t, "test:webuntis/core")
	defer cleanup()

	ctx := context.Background()
	client, err := NewClient(ctx, ClientOptions{
		BaseUrl: config.BaseUrl,
		School:  config.School,
	})
	require.NoError(t, err)

	ok, err := client.Login(ctx, config.Username, config.Password)
	require.NoError(t, err)
	require.True(t, ok)
	defer client.Logout(ctx)

	html, err := client.FetchPage(ctx, records.KindPeriod, nil)
	require.NoError(t, err)
	require.NotEmpty(t, html)
}
