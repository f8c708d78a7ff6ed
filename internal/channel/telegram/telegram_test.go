package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mypts/profile-api/internal/channel"
)

func newTestNotifier(t *testing.T, handler http.HandlerFunc) (*Notifier, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewNotifier(Config{BotToken: "bot-token", APIBase: srv.URL}, zerolog.Nop()), srv
}

func TestSendNotificationPostsHTMLMessage(t *testing.T) {
	var form url.Values
	n, _ := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/botbot-token/sendMessage")
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		w.Write([]byte(`{"ok": true}`))
	})

	err := n.SendNotification(context.Background(), "123456", "Alert <1>", "Check & respond", "https://my-pts.com/x", "Open")
	require.NoError(t, err)

	assert.Equal(t, "123456", form.Get("chat_id"))
	assert.Equal(t, "HTML", form.Get("parse_mode"))
	assert.Contains(t, form.Get("text"), "<b>Alert &lt;1&gt;</b>")
	assert.Contains(t, form.Get("text"), "Check &amp; respond")
	assert.Contains(t, form.Get("text"), `<a href="https://my-pts.com/x">Open</a>`)
}

func TestSendTransactionNotificationFormatsDetails(t *testing.T) {
	var text string
	n, _ := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		text = r.PostForm.Get("text")
		w.Write([]byte(`{"ok": true}`))
	})

	err := n.SendTransactionNotification(context.Background(), "@janedoe", "Purchase", "Done",
		channel.TransactionDetails{
			ID:      "tx-1",
			Type:    "BUY_MYPTS",
			Amount:  250,
			Balance: 1037.5,
			Status:  "Completed",
		}, "https://my-pts.com/dashboard/transactions/tx-1")
	require.NoError(t, err)

	assert.Contains(t, text, "Type: BUY_MYPTS")
	assert.Contains(t, text, "Amount: 250 MyPts")
	assert.Contains(t, text, "Balance: 1037.50 MyPts")
	assert.Contains(t, text, "Status: Completed")
	assert.Contains(t, text, "View Transaction")
}

func TestSendMessageProviderRejection(t *testing.T) {
	n, _ := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok": false, "error_code": 403, "description": "bot was blocked"}`))
	})

	err := n.SendNotification(context.Background(), "123", "t", "b", "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bot was blocked")
}

func TestChatIDNormalization(t *testing.T) {
	assert.Equal(t, "123456789", chatID("123456789"))
	assert.Equal(t, "@janedoe", chatID("janedoe"))
	assert.Equal(t, "@janedoe", chatID("@janedoe"))
}
