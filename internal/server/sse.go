package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// datastar SSE protocol: every update is a datastar-patch-elements event.
// Without selector/mode the elements are morphed into the page by id;
// "append" inserts inside the selector target, "remove" deletes it.
const (
	eventPatchElements = "datastar-patch-elements"
	patchModeAppend    = "append"
	patchModeRemove    = "remove"
)

// eventStream writes datastar patch events onto a long-lived SSE response.
type eventStream struct {
	response *echo.Response
}

func newEventStream(res *echo.Response) *eventStream {
	h := res.Header()
	h.Set(echo.HeaderContentType, "text/event-stream")
	h.Set(echo.HeaderCacheControl, "no-cache")
	h.Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()
	return &eventStream{response: res}
}

// patchElements morphs the given elements into the page by id.
func (es *eventStream) patchElements(html string) error {
	return es.writeEvent("", "", html)
}

// appendElements appends the given elements inside the selector target.
func (es *eventStream) appendElements(selector, html string) error {
	return es.writeEvent(selector, patchModeAppend, html)
}

// removeElement deletes the selector target from the page.
func (es *eventStream) removeElement(selector string) error {
	return es.writeEvent(selector, patchModeRemove, "")
}

// keepalive writes an SSE comment so idle connections are not reaped by
// intermediaries.
func (es *eventStream) keepalive() error {
	if _, err := io.WriteString(es.response, ": keepalive\n\n"); err != nil {
		return err
	}
	es.response.Flush()
	return nil
}

func (es *eventStream) writeEvent(selector, mode, html string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "event: %s\n", eventPatchElements)
	if selector != "" {
		fmt.Fprintf(&b, "data: selector %s\n", selector)
	}
	if mode != "" {
		fmt.Fprintf(&b, "data: mode %s\n", mode)
	}
	if html != "" {
		for _, line := range strings.Split(strings.TrimRight(html, "\n"), "\n") {
			fmt.Fprintf(&b, "data: elements %s\n", line)
		}
	}
	b.WriteString("\n")

	if _, err := io.WriteString(es.response, b.String()); err != nil {
		return err
	}
	es.response.Flush()
	return nil
}
