package core

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/clnbrd/clnbrd/internal/rules"
	"github.com/clnbrd/clnbrd/internal/urlclean"
)

// RemoteCleanService implements CleanService against a running `clnbrd serve`.
type RemoteCleanService struct {
	BaseURL string
	Token   string
	Client  *http.Client
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewRemoteCleanService creates a new remote service instance.
func NewRemoteCleanService(baseURL string, token string) *RemoteCleanService {
	ctx, cancel := context.WithCancel(context.Background())
	return &RemoteCleanService{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		Client:  &http.Client{Timeout: 30 * time.Second},
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (s *RemoteCleanService) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.BaseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+s.Token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		defer func() { _ = resp.Body.Close() }()
		// Limit error body read to 1KB
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}

	return resp, nil
}

func (s *RemoteCleanService) decode(ctx context.Context, method, path string, body, out any) error {
	resp, err := s.doRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	return json.NewDecoder(resp.Body).Decode(out)
}

// Health checks that the server answers.
func (s *RemoteCleanService) Health(ctx context.Context) error {
	var out map[string]any
	return s.decode(ctx, http.MethodGet, "/health", nil, &out)
}

// Clean asks the server to clean its clipboard.
func (s *RemoteCleanService) Clean(ctx context.Context, rctx rules.Context) (*Result, error) {
	var out CleanResponse
	if err := s.decode(ctx, http.MethodPost, "/clipboard/clean", ClipboardRequest{Context: rctx.String()}, &out); err != nil {
		return nil, err
	}
	return out.Result(), nil
}

// CleanAndPaste asks the server to clean and paste.
func (s *RemoteCleanService) CleanAndPaste(ctx context.Context) (*Result, error) {
	var out CleanResponse
	if err := s.decode(ctx, http.MethodPost, "/clipboard/paste", ClipboardRequest{}, &out); err != nil {
		return nil, err
	}
	return out.Result(), nil
}

// CleanText sends text to the server's pipeline.
func (s *RemoteCleanService) CleanText(ctx context.Context, rctx rules.Context, text string) (*Result, error) {
	var out CleanResponse
	req := CleanTextRequest{Text: text, Context: rctx.String()}
	if err := s.decode(ctx, http.MethodPost, "/clean", req, &out); err != nil {
		return nil, err
	}
	res := out.Result()
	res.Input = text
	return res, nil
}

// CleanURLs detracks urls on the server.
func (s *RemoteCleanService) CleanURLs(ctx context.Context, urls []string) ([]urlclean.Report, error) {
	var out URLResponse
	if err := s.decode(ctx, http.MethodPost, "/url", URLRequest{URLs: urls}, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// Shutdown stops the service.
func (s *RemoteCleanService) Shutdown() error {
	s.cancel()
	return nil
}

// StreamEvents returns a channel that receives clean events via SSE.
func (s *RemoteCleanService) StreamEvents(ctx context.Context) (<-chan any, func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		select {
		case <-s.ctx.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	ch := make(chan any, 100)
	go s.streamWithReconnect(ctx, ch)

	var once sync.Once
	return ch, func() { once.Do(cancel) }, nil
}

func (s *RemoteCleanService) streamWithReconnect(ctx context.Context, ch chan any) {
	defer close(ch)
	backoff := 1 * time.Second
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		err := s.connectSSE(ctx, ch)
		if err == nil {
			return // server closed the stream cleanly
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}

		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func (s *RemoteCleanService) connectSSE(ctx context.Context, ch chan any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"/events", nil)
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Bearer "+s.Token)
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	// The stream outlives the client timeout.
	client := *s.Client
	client.Timeout = 0
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to connect to event stream: %s", resp.Status)
	}

	return readSSE(bufio.NewReader(resp.Body), ch)
}

// readSSE parses "event:"/"data:" pairs into typed messages until the reader
// fails. io.EOF is reported as a clean close.
func readSSE(reader *bufio.Reader, ch chan<- any) error {
	var eventType string
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		line = strings.TrimRight(line, "\r\n")

		switch {
		case strings.HasPrefix(line, "event: "):
			eventType = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			msg, ok := decodeEvent(eventType, []byte(strings.TrimPrefix(line, "data: ")))
			eventType = ""
			if !ok {
				continue
			}
			// Non-blocking send
			select {
			case ch <- msg:
			default:
			}
		}
	}
}

func decodeEvent(eventType string, data []byte) (any, bool) {
	switch eventType {
	case "cleaned":
		var m CleanedMsg
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, false
		}
		return m, true
	case "skipped":
		var m SkippedMsg
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, false
		}
		return m, true
	case "error":
		var m ErrorMsg
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, false
		}
		return m, true
	}
	return nil, false
}
