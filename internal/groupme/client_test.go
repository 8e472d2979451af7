package groupme

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scorebot/internal/config"
)

func newTestClient(url string) *Client {
	return NewClient(&config.GroupMeConfig{
		APIBase:     url,
		BotID:       "bot-1",
		GroupID:     "g-1",
		AccessToken: "tok",
		Timeout:     2 * time.Second,
	})
}

func TestClientPost(t *testing.T) {
	var (
		mu    sync.Mutex
		posts []postRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/bots/post", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		var p postRequest
		assert.NoError(t, json.Unmarshal(body, &p))
		mu.Lock()
		posts = append(posts, p)
		mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	require.NoError(t, c.Post(context.Background(), "Match recorded"))
	require.NoError(t, c.Post(context.Background(), ""))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, posts, 1)
	assert.Equal(t, "bot-1", posts[0].BotID)
	assert.Equal(t, "Match recorded", posts[0].Text)
}

func TestClientPostSplitsLongText(t *testing.T) {
	var count atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count.Add(1)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	line := strings.Repeat("x", 99) + "\n"
	text := strings.Repeat(line, 25)
	require.NoError(t, newTestClient(srv.URL).Post(context.Background(), text))
	assert.Equal(t, int32(3), count.Load())
}

func TestClientPostError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad bot", http.StatusBadRequest)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).Post(context.Background(), "hi")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAPI)
	assert.Contains(t, err.Error(), "400")
}

func TestClientMessagesBefore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/groups/g-1/messages", r.URL.Path)
		assert.Equal(t, "tok", r.URL.Query().Get("token"))
		assert.Equal(t, "m-9", r.URL.Query().Get("before_id"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		_, _ = io.WriteString(w, `{"response":{"count":2,"messages":[
			{"id":"m-8","text":"/score @b @c @d 7 3","sender_id":"1","sender_type":"user","created_at":200,
			 "attachments":[{"type":"mentions","user_ids":["2","3","4"]}],"favorited_by":["99"]},
			{"id":"m-7","text":null,"sender_id":"5","sender_type":"bot","created_at":150,"attachments":[],"favorited_by":[]}
		]}}`)
	}))
	defer srv.Close()

	msgs, err := newTestClient(srv.URL).MessagesBefore(context.Background(), "m-9", 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, []string{"2", "3", "4"}, msgs[0].MentionIDs())
	assert.True(t, msgs[0].FavoritedByAny([]string{"98", "99"}))
	assert.False(t, msgs[0].FromBot())
	assert.Equal(t, int64(200), msgs[0].CreatedAt)

	assert.Empty(t, msgs[1].Text)
	assert.True(t, msgs[1].FromBot())
	assert.Nil(t, msgs[1].MentionIDs())
}

func TestClientMessagesNotModified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotModified)
	}))
	defer srv.Close()

	msgs, err := newTestClient(srv.URL).MessagesBefore(context.Background(), "m-1", 10)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestSplitText(t *testing.T) {
	assert.Equal(t, []string{"short"}, SplitText("short", 10))
	assert.Equal(t, []string{"abc\n", "defgh"}, SplitText("abc\ndefgh", 6))
	assert.Equal(t, []string{"abcdef", "ghij"}, SplitText("abcdefghij", 6))
	for _, part := range SplitText(strings.Repeat("é", 25), 10) {
		assert.LessOrEqual(t, len([]rune(part)), 10)
	}
}
