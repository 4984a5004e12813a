package messagequeue

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/apache/pulsar-client-go/pulsar"
	"github.com/rs/zerolog/log"
)

const (
	SubscriberName = "UNWINDIA_CRICKET"
)

type Subscriber struct {
	mainContext    context.Context
	pulsarConsumer pulsar.Consumer
	topic          string
	commandChan    chan<- *Command
}

// NewSubscriber subscribes to topic. Scoring commands of one match must stay in order, so the
// subscription is a failover one.
func NewSubscriber(ctx context.Context, client pulsar.Client, topic string, commandChan chan<- *Command) (*Subscriber, error) {
	consumer, err := client.Subscribe(pulsar.ConsumerOptions{
		Topic:            topic,
		SubscriptionName: SubscriberName,
		Type:             pulsar.Failover,
	})

	if err != nil {
		return nil, err
	}

	subscriber := Subscriber{
		mainContext:    ctx,
		topic:          topic,
		pulsarConsumer: consumer,
		commandChan:    commandChan,
	}

	return &subscriber, nil
}

func (s *Subscriber) processMessages(messages <-chan *message.Message) {
	log := log.With().Str("topic", s.topic).Logger()
	for msg := range messages {
		if s.mainContext.Err() != nil {
			return
		}

		command, err := decodeCommand(msg)
		if err != nil {
			log.Info().Interface("payload", string(msg.Payload)).Msg("Received message but error on decode")
			log.Error().Err(err).Msg("Error decoding command")
			continue
		}
		log.Info().Str("type", string(command.Type)).Str("inning", command.InningID).Msg("Received command")

		select {
		case s.commandChan <- command:
		case <-s.mainContext.Done():
			return
		}
	}
}

func decodeCommand(msg *message.Message) (*Command, error) {
	var command Command
	if err := json.Unmarshal(msg.Payload, &command); err != nil {
		return nil, err
	}
	if err := command.Validate(); err != nil {
		return nil, err
	}
	command.MessageID = msg.UUID
	return &command, nil
}

func (s *Subscriber) StartConsumer() {
	messageChan := make(chan *message.Message)

	go func() {
		defer close(messageChan)
		defer s.pulsarConsumer.Close()

		for s.mainContext.Err() == nil {
			msg, err := s.pulsarConsumer.Receive(s.mainContext)
			if err != nil {
				if s.mainContext.Err() == nil {
					log.Error().Err(err).Msg("Error receiving message")
				}
				continue
			}

			if !json.Valid(msg.Payload()) {
				log.Warn().Str("topic", s.topic).Msg("Dropping message with invalid json payload")
				if err = s.pulsarConsumer.Ack(msg); err != nil {
					log.Error().Err(err).Msg("Error acking message")
				}
				continue
			}
			log.Debug().Msgf("[%s] Received message with key %q", s.topic, msg.Key())

			messageChan <- &message.Message{
				UUID:    msg.Key(),
				Payload: msg.Payload(),
			}

			if err = s.pulsarConsumer.Ack(msg); err != nil {
				log.Error().Err(err).Msg("Error acking message")
			}
		}
	}()

	go s.processMessages(messageChan)

	log.Info().Str("topic", s.topic).Msg("Started pulsar subscriber")
}
