package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"companion-counselling-be/internal/entity"
	"companion-counselling-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(nil, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func connect(t *testing.T, hub *Hub, r entity.Recipient) *Client {
	t.Helper()
	c := &Client{Hub: hub, Recipient: r, Send: make(chan []byte, sendBuffer)}
	hub.Register(c)
	require.Eventually(t, func() bool { return hub.Connected(r) > 0 }, time.Second, 5*time.Millisecond)
	return c
}

func receive(t *testing.T, c *Client) Push {
	t.Helper()
	select {
	case data := <-c.Send:
		var p Push
		require.NoError(t, json.Unmarshal(data, &p))
		return p
	case <-time.After(time.Second):
		t.Fatal("no push received")
	}
	return Push{}
}

func assertSilent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.Send:
		t.Fatalf("unexpected push %s", data)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestSendToTargetsOneRecipient(t *testing.T) {
	hub := startHub(t)
	user := connect(t, hub, entity.Recipient{Type: entity.RecipientUser, Id: 7})
	// Same numeric id, different inbox.
	consultant := connect(t, hub, entity.Recipient{Type: entity.RecipientConsultant, Id: 7})

	hub.SendTo(context.Background(), entity.Recipient{Type: entity.RecipientUser, Id: 7}, Push{
		Kind:    entity.NotificationSessionApproved,
		Message: "approved",
	})

	p := receive(t, user)
	assert.Equal(t, "notification", p.Type)
	assert.Equal(t, "approved", p.Message)
	assertSilent(t, consultant)
}

func TestBroadcastToClasses(t *testing.T) {
	hub := startHub(t)
	u1 := connect(t, hub, entity.Recipient{Type: entity.RecipientUser, Id: 1})
	u2 := connect(t, hub, entity.Recipient{Type: entity.RecipientUser, Id: 2})
	c1 := connect(t, hub, entity.Recipient{Type: entity.RecipientConsultant, Id: 1})

	hub.BroadcastTo(context.Background(), []entity.RecipientType{entity.RecipientUser}, Push{Message: "hello"})

	assert.Equal(t, "hello", receive(t, u1).Message)
	assert.Equal(t, "hello", receive(t, u2).Message)
	assertSilent(t, c1)
}

func TestUnregisterClosesSend(t *testing.T) {
	hub := startHub(t)
	r := entity.Recipient{Type: entity.RecipientUser, Id: 3}
	c := connect(t, hub, r)

	hub.Unregister(c)
	require.Eventually(t, func() bool { return hub.Connected(r) == 0 }, time.Second, 5*time.Millisecond)

	_, open := <-c.Send
	assert.False(t, open)
}

func TestHandleRelay(t *testing.T) {
	hub := startHub(t)
	r := entity.Recipient{Type: entity.RecipientConsultant, Id: 9}
	c := connect(t, hub, r)

	msg, err := encodePush(Push{Message: "from elsewhere"})
	require.NoError(t, err)

	own, _ := json.Marshal(relay{Origin: hub.instance, Target: &r, Message: msg})
	hub.handleRelay(own)
	assertSilent(t, c)

	other, _ := json.Marshal(relay{Origin: "another-instance", Target: &r, Message: msg})
	hub.handleRelay(other)
	assert.Equal(t, "from elsewhere", receive(t, c).Message)

	hub.handleRelay([]byte("garbage"))
	assertSilent(t, c)
}
