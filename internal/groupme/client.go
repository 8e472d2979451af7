package groupme

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"

	"scorebot/internal/config"
)

// MaxTextLength is the longest text GroupMe accepts in one bot post.
const MaxTextLength = 1000

// ErrAPI is wrapped by every non-success response.
var ErrAPI = errors.New("groupme api error")

// Client posts bot replies and reads group history.
type Client struct {
	apiBase string
	botID   string
	groupID string
	token   string
	timeout time.Duration
	client  *fasthttp.Client
}

// NewClient creates a client from the GroupMe configuration.
func NewClient(cfg *config.GroupMeConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiBase: strings.TrimRight(cfg.APIBase, "/"),
		botID:   cfg.BotID,
		groupID: cfg.GroupID,
		token:   cfg.AccessToken,
		timeout: timeout,
		client: &fasthttp.Client{
			MaxConnsPerHost:     16,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		},
	}
}

type postRequest struct {
	BotID string `json:"bot_id"`
	Text  string `json:"text"`
}

// Post sends text to the group as the bot. Text longer than MaxTextLength is
// split on line boundaries and sent as several posts.
func (c *Client) Post(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}
	for _, chunk := range SplitText(text, MaxTextLength) {
		body, err := json.Marshal(postRequest{BotID: c.botID, Text: chunk})
		if err != nil {
			return fmt.Errorf("failed to encode post: %w", err)
		}
		if _, err := c.do(ctx, fasthttp.MethodPost, c.apiBase+"/bots/post", body); err != nil {
			return fmt.Errorf("failed to post message: %w", err)
		}
	}
	return nil
}

type messagesEnvelope struct {
	Response struct {
		Count    int       `json:"count"`
		Messages []Message `json:"messages"`
	} `json:"response"`
}

// MessagesBefore returns up to limit group messages older than beforeID,
// newest first as GroupMe orders them.
func (c *Client) MessagesBefore(ctx context.Context, beforeID string, limit int) ([]Message, error) {
	q := url.Values{}
	q.Set("token", c.token)
	q.Set("before_id", beforeID)
	q.Set("limit", strconv.Itoa(limit))
	uri := fmt.Sprintf("%s/groups/%s/messages?%s", c.apiBase, url.PathEscape(c.groupID), q.Encode())

	env, err := doJSON[messagesEnvelope](ctx, c, fasthttp.MethodGet, uri)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	if env == nil {
		return nil, nil
	}
	return env.Response.Messages, nil
}

// do runs one request and returns the response body. 304 yields a nil body.
func (c *Client) do(ctx context.Context, method, uri string, body []byte) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(uri)
	req.Header.SetMethod(method)
	if body != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.timeout)
	}
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, err
	}

	status := resp.StatusCode()
	log.Debug().Str("method", method).Int("status", status).Msg("GroupMe request")

	switch {
	case status == fasthttp.StatusNotModified:
		return nil, nil
	case status < 200 || status >= 300:
		return nil, fmt.Errorf("%w: %d %s", ErrAPI, status, strings.TrimSpace(string(resp.Body())))
	}
	out := make([]byte, len(resp.Body()))
	copy(out, resp.Body())
	return out, nil
}

func doJSON[T any](ctx context.Context, c *Client, method, uri string) (*T, error) {
	body, err := c.do(ctx, method, uri, nil)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}
	var result T
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SplitText breaks text into pieces of at most limit runes, preferring to cut
// after a newline.
func SplitText(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}
	var out []string
	for len(runes) > limit {
		cut := limit
		for i := limit - 1; i > 0; i-- {
			if runes[i] == '\n' {
				cut = i + 1
				break
			}
		}
		out = append(out, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		out = append(out, string(runes))
	}
	return out
}
