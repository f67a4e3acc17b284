// Package notify turns domain events from the queue into notification mail.
package notify

import (
	"context"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/blogilista/pkg/helpers"
	"github.com/oksasatya/blogilista/pkg/mailer"
)

// Outcome is what the consumer does with a delivery after handling it.
type Outcome int

const (
	Ack     Outcome = iota
	Drop            // nack without requeue
	Requeue         // nack with requeue
)

type Worker struct {
	AppName string
	To      string
	Sender  mailer.Sender
	Logger  *logrus.Logger
	Timeout time.Duration
}

// Handle decodes one event body, renders it and sends it.
// Undecodable events are dropped and events with no template are acked. Send failures are requeued.
func (w *Worker) Handle(ctx context.Context, body []byte) Outcome {
	ev, err := helpers.DecodeEvent(body)
	if err != nil || ev.Type == "" {
		w.Logger.WithError(err).Warn("dropping undecodable event")
		return Drop
	}
	log := w.Logger.WithField("event", ev.Type)

	job, err := mailer.FromEvent(w.AppName, w.To, ev)
	if err != nil {
		if errors.Is(err, mailer.ErrUnknownTemplate) {
			log.Debug("no notification for event")
			return Ack
		}
		log.WithError(err).Error("render failed")
		return Drop
	}

	timeout := w.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := w.Sender.Send(c, job); err != nil {
		log.WithError(err).Warn("send failed, requeueing")
		return Requeue
	}
	log.Info("notification sent")
	return Ack
}

// Consume handles deliveries until the channel closes or ctx is cancelled.
func (w *Worker) Consume(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			switch w.Handle(ctx, d.Body) {
			case Ack:
				_ = d.Ack(false)
			case Drop:
				_ = d.Nack(false, false)
			case Requeue:
				_ = d.Nack(false, true)
			}
		}
	}
}
