package web_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/trackquiz/internal/factory"
	"github.com/mcoot/trackquiz/internal/model"
	"github.com/mcoot/trackquiz/internal/session"
	"github.com/mcoot/trackquiz/internal/testutil"
	"github.com/mcoot/trackquiz/internal/web"
)

// webTestServer provides a test server for web interface testing
type webTestServer struct {
	t       *testing.T
	handler http.Handler
	app     *factory.TestApp
	fake    *testutil.FakeSpotify
	cookies *cookieJar
}

// newWebTestServer creates a new test server with all dependencies wired
func newWebTestServer(t *testing.T) *webTestServer {
	t.Helper()

	fake := testutil.NewFakeSpotify(t)
	app := factory.NewTestApp(factory.SpotifyEndpoints{
		AuthURL:  fake.AuthURL(),
		TokenURL: fake.TokenURL(),
		APIURL:   fake.APIURL(),
	})

	router := web.NewRouter(web.RouterConfig{
		Logger:             testutil.NopLogger(),
		Sessions:           app.SessionManager,
		AuthService:        app.AuthService,
		LeaderboardService: app.LeaderboardService,
	})

	return &webTestServer{
		t:       t,
		handler: router,
		app:     app,
		fake:    fake,
		cookies: newCookieJar(),
	}
}

// get makes a GET request carrying the jar's cookies
func (ts *webTestServer) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	ts.cookies.addTo(req)

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	ts.cookies.extract(rr)
	return rr
}

// followRedirect follows a redirect and returns the response
func (ts *webTestServer) followRedirect(rr *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	ts.t.Helper()
	location := rr.Header().Get("Location")
	require.NotEmpty(ts.t, location, "Expected Location header for redirect")
	return ts.get(location)
}

// setSession stores a session record and points the jar's cookie at it
func (ts *webTestServer) setSession(sess *session.Session) {
	ts.t.Helper()
	if sess.ID == "" {
		sess.ID = "test-session"
	}
	require.NoError(ts.t, ts.app.Memory.SaveSession(context.Background(), sess, time.Hour))
	ts.cookies.cookies[session.CookieName] = &http.Cookie{Name: session.CookieName, Value: sess.ID}
}

// currentSession loads the session the jar's cookie refers to
func (ts *webTestServer) currentSession() *session.Session {
	ts.t.Helper()
	cookie, ok := ts.cookies.cookies[session.CookieName]
	require.True(ts.t, ok, "Expected session cookie to be set")
	sess, err := ts.app.Memory.GetSession(context.Background(), cookie.Value)
	require.NoError(ts.t, err)
	return sess
}

func (ts *webTestServer) createUser(username, displayName string) *model.User {
	ts.t.Helper()
	u, _, err := ts.app.Memory.GetOrCreateUser(context.Background(), &model.User{
		Username:    username,
		DisplayName: displayName,
		Password:    "!",
	})
	require.NoError(ts.t, err)
	return u
}

func (ts *webTestServer) addEntry(userID int64, score int) {
	ts.t.Helper()
	require.NoError(ts.t, ts.app.Memory.CreateEntry(context.Background(), &model.LeaderboardEntry{UserID: userID, Score: score}))
}

// parseHTML parses the response body as HTML
func parseHTML(r io.Reader) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		panic(err)
	}
	return doc
}

// cookieJar maintains cookies across requests (like a browser would)
type cookieJar struct {
	cookies map[string]*http.Cookie
}

func newCookieJar() *cookieJar {
	return &cookieJar{
		cookies: make(map[string]*http.Cookie),
	}
}

// addTo adds all cookies to the request
func (j *cookieJar) addTo(req *http.Request) {
	for _, cookie := range j.cookies {
		req.AddCookie(cookie)
	}
}

// extract extracts Set-Cookie headers from response
func (j *cookieJar) extract(rr *httptest.ResponseRecorder) {
	for _, cookie := range rr.Result().Cookies() {
		if cookie.MaxAge < 0 {
			// Cookie being deleted
			delete(j.cookies, cookie.Name)
		} else {
			j.cookies[cookie.Name] = cookie
		}
	}
}

// hasSession returns true if the session cookie is set
func (j *cookieJar) hasSession() bool {
	_, ok := j.cookies[session.CookieName]
	return ok
}

// Assertion helpers

// assertContainsElement asserts that the document contains an element matching the selector
func assertContainsElement(t *testing.T, doc *goquery.Document, selector string) {
	t.Helper()
	if doc.Find(selector).Length() == 0 {
		t.Errorf("Expected to find element matching %q, but none found", selector)
	}
}

// assertNotContainsElement asserts that the document does not contain an element matching the selector
func assertNotContainsElement(t *testing.T, doc *goquery.Document, selector string) {
	t.Helper()
	if doc.Find(selector).Length() > 0 {
		t.Errorf("Expected NOT to find element matching %q, but found %d", selector, doc.Find(selector).Length())
	}
}

// assertContainsText asserts that the element matching the selector contains the text
func assertContainsText(t *testing.T, doc *goquery.Document, selector, text string) {
	t.Helper()
	el := doc.Find(selector)
	if el.Length() == 0 {
		t.Errorf("Expected to find element matching %q, but none found", selector)
		return
	}
	if !strings.Contains(el.Text(), text) {
		t.Errorf("Expected element %q to contain %q, but got %q", selector, text, el.Text())
	}
}
