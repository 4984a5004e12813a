package messagequeue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/GSH-LAN/Unwindia_cricket/src/models"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessMessages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	commands := make(chan *Command, 4)
	s := &Subscriber{mainContext: ctx, topic: "commands", commandChan: commands}

	messages := make(chan *message.Message)
	done := make(chan struct{})
	go func() {
		s.processMessages(messages)
		close(done)
	}()

	messages <- message.NewMessage("k1", []byte(`{"type":"SCORE_BALL","inningId":"665a1f0c2b1e4a0001000001","ball":{"overNumber":1,"ballNumber":1,"runs":4,"batsman":"a","nonStriker":"b","bowler":"c","deliveryType":"normal"}}`))
	messages <- message.NewMessage("k2", []byte(`{"type":"SCORE_BALL","inningId":"665a1f0c2b1e4a0001000001"}`))
	messages <- message.NewMessage("k3", []byte(`not json`))
	messages <- message.NewMessage("k4", []byte(`{"type":"UNDO_BALL","inningId":"665a1f0c2b1e4a0001000001"}`))
	close(messages)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("processMessages did not return")
	}
	close(commands)

	var got []*Command
	for c := range commands {
		got = append(got, c)
	}
	require.Len(t, got, 2)

	assert.Equal(t, CommandScoreBall, got[0].Type)
	assert.Equal(t, "k1", got[0].MessageID)
	require.NotNil(t, got[0].Ball)
	assert.Equal(t, 4, got[0].Ball.Runs)
	assert.Equal(t, models.DeliveryNormal, got[0].Ball.DeliveryType)

	assert.Equal(t, CommandUndoBall, got[1].Type)
	assert.Nil(t, got[1].Ball)
}

func TestCommand_Validate(t *testing.T) {
	tests := []struct {
		name    string
		command Command
		wantErr bool
	}{
		{"undo", Command{Type: CommandUndoBall, InningID: "x"}, false},
		{"unknown type", Command{Type: "BOWL", InningID: "x"}, true},
		{"missing inning", Command{Type: CommandUndoBall}, true},
		{"missing ball", Command{Type: CommandScoreBall, InningID: "x"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.command.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewEventMessage(t *testing.T) {
	event := &models.Event{
		EventID: "e-1",
		Type:    models.EventBallScored,
		Payload: []byte(`{"matchId":"m"}`),
	}

	b, err := NewEventMessage(event)
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(b, &msg))
	assert.Equal(t, MessageTypeCricket, msg.Type)
	assert.Equal(t, "BALL_SCORED", msg.SubType)
	assert.Equal(t, "e-1", msg.ID)
	assert.JSONEq(t, `{"matchId":"m"}`, string(msg.Data))
}
