package vision

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/jpeg"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/teslashibe/go-wastesort/internal/httpc"
	"github.com/teslashibe/go-wastesort/internal/log"
)

// maxPartSize caps a single JPEG part to guard against a corrupt stream.
const maxPartSize = 8 << 20

// MJPEGSource reads frames from a multipart/x-mixed-replace HTTP stream.
type MJPEGSource struct {
	url    string
	resp   *http.Response
	reader *multipart.Reader
	cancel context.CancelFunc
	log    *slog.Logger
}

// OpenMJPEG connects to url and validates the multipart content type.
func OpenMJPEG(url string, client *http.Client) (*MJPEGSource, error) {
	if client == nil {
		client = httpc.NewStreamClient(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("mjpeg request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("mjpeg connect %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("mjpeg connect %s: status %d", url, resp.StatusCode)
	}

	mediaType, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("mjpeg connect %s: unexpected content type %q", url, resp.Header.Get("Content-Type"))
	}
	boundary := strings.TrimPrefix(params["boundary"], "--")
	if boundary == "" {
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("mjpeg connect %s: missing boundary", url)
	}

	return &MJPEGSource{
		url:    url,
		resp:   resp,
		reader: multipart.NewReader(resp.Body, boundary),
		cancel: cancel,
		log:    log.Component("mjpeg").With("url", url),
	}, nil
}

// MJPEGOpener returns an Opener that dials url with a stream client.
func MJPEGOpener(url string, connectTimeout time.Duration) Opener {
	client := httpc.NewStreamClient(connectTimeout)
	return func() (Source, error) {
		return OpenMJPEG(url, client)
	}
}

// Read decodes the next JPEG part. Any transport or framing failure yields
// an error wrapping ErrStreamEnded.
func (s *MJPEGSource) Read() (Frame, error) {
	for {
		part, err := s.reader.NextPart()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStreamEnded, err)
		}

		var buf bytes.Buffer
		n, err := io.Copy(&buf, io.LimitReader(part, maxPartSize+1))
		part.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStreamEnded, err)
		}
		if n > maxPartSize {
			return nil, fmt.Errorf("%w: part exceeds %d bytes", ErrStreamEnded, maxPartSize)
		}
		if n == 0 {
			continue
		}

		img, err := jpeg.Decode(&buf)
		if err != nil {
			// A single corrupt part is skipped rather than tearing down the
			// connection.
			s.log.Debug("skipping undecodable part", "bytes", n, "error", err)
			continue
		}
		return NewImageFrame(img), nil
	}
}

// Close aborts the HTTP stream.
func (s *MJPEGSource) Close() error {
	s.cancel()
	err := s.resp.Body.Close()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
