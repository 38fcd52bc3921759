package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// MediaCause classifies why a media candidate failed, so playback code can
// decide whether the failure is actionable (retry, fall back) or terminal.
type MediaCause string

const (
	// CauseAborted: the fetch was cancelled by the caller, typically
	// because the component was torn down or a newer request superseded it.
	CauseAborted MediaCause = "aborted"

	// CauseNetwork: the candidate could not be fetched — DNS, connect,
	// timeout, or a non-success HTTP status.
	CauseNetwork MediaCause = "network"

	// CauseDecode: the candidate was fetched but its bytes are empty or
	// corrupt.
	CauseDecode MediaCause = "decode"

	// CauseUnsupported: the candidate decoded to a content type the
	// presentation layer cannot play.
	CauseUnsupported MediaCause = "unsupported"
)

// MediaError is a classified media fetch failure.
type MediaError struct {
	Cause MediaCause
	URL   string
	Err   error
}

func (e *MediaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("media %s: %s: %v", e.Cause, e.URL, e.Err)
	}
	return fmt.Sprintf("media %s: %s", e.Cause, e.URL)
}

func (e *MediaError) Unwrap() error {
	return e.Err
}

// CauseOf extracts the classification from err, or CauseNetwork when the
// error is not a MediaError. Unclassified failures are treated as network
// problems because that is the only cause a retry can fix.
func CauseOf(err error) MediaCause {
	var me *MediaError
	if errors.As(err, &me) {
		return me.Cause
	}
	return CauseNetwork
}

// playableTypes are the content-type prefixes the presentation layer can
// hand to a media element.
var playableTypes = []string{"image/", "audio/", "video/", "application/octet-stream"}

// probeRemote checks whether url serves playable media. It fetches just
// enough of the body to sniff the content type; a nil return means the URL
// is usable as a remote candidate.
func (r *Resolver) probeRemote(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &MediaError{Cause: CauseNetwork, URL: url, Err: err}
	}

	resp, err := r.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return &MediaError{Cause: CauseAborted, URL: url, Err: ctx.Err()}
		}
		return &MediaError{Cause: CauseNetwork, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &MediaError{Cause: CauseNetwork, URL: url, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	// 512 bytes is what DetectContentType considers.
	head := make([]byte, 512)
	n, err := io.ReadFull(resp.Body, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		if ctx.Err() != nil {
			return &MediaError{Cause: CauseAborted, URL: url, Err: ctx.Err()}
		}
		return &MediaError{Cause: CauseNetwork, URL: url, Err: err}
	}
	if n == 0 {
		return &MediaError{Cause: CauseDecode, URL: url, Err: errors.New("empty body")}
	}

	ct := http.DetectContentType(head[:n])
	for _, prefix := range playableTypes {
		if strings.HasPrefix(ct, prefix) {
			return nil
		}
	}
	return &MediaError{Cause: CauseUnsupported, URL: url, Err: fmt.Errorf("content type %q", ct)}
}
