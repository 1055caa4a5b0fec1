package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStream(t *testing.T) (*eventStream, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/subscribe", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return newEventStream(c.Response()), rec
}

func TestEventStreamSetsHeaders(t *testing.T) {
	_, rec := newTestStream(t)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "no-cache", rec.Header().Get(echo.HeaderCacheControl))
}

func TestPatchElementsFormat(t *testing.T) {
	es, rec := newTestStream(t)

	require.NoError(t, es.patchElements("<div id=\"tracker\">a</div>\n<span>b</span>"))

	want := "event: datastar-patch-elements\n" +
		"data: elements <div id=\"tracker\">a</div>\n" +
		"data: elements <span>b</span>\n" +
		"\n"
	assert.Equal(t, want, rec.Body.String())
}

func TestAppendElementsFormat(t *testing.T) {
	es, rec := newTestStream(t)

	require.NoError(t, es.appendElements("#leaderboard-body", "<tr id=\"row-bob\"></tr>"))

	want := "event: datastar-patch-elements\n" +
		"data: selector #leaderboard-body\n" +
		"data: mode append\n" +
		"data: elements <tr id=\"row-bob\"></tr>\n" +
		"\n"
	assert.Equal(t, want, rec.Body.String())
}

func TestRemoveElementFormat(t *testing.T) {
	es, rec := newTestStream(t)

	require.NoError(t, es.removeElement("#row-alice"))

	want := "event: datastar-patch-elements\n" +
		"data: selector #row-alice\n" +
		"data: mode remove\n" +
		"\n"
	assert.Equal(t, want, rec.Body.String())
}

func TestKeepaliveIsComment(t *testing.T) {
	es, rec := newTestStream(t)

	require.NoError(t, es.keepalive())

	assert.Equal(t, ": keepalive\n\n", rec.Body.String())
}
