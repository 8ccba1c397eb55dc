package message

import (
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/lithammer/shortuuid/v3"
	"github.com/sirupsen/logrus"
)

// addMiddlewares builds the chain outermost first. Retry wraps only the logged handler call,
// so every attempt is logged, and a message still failing after the last retry is acked.
func addMiddlewares(router *message.Router, logger watermill.LoggerAdapter) {
	router.AddMiddleware(
		messageContextMiddleware,
		bestEffortMiddleware,
		middleware.Retry{
			MaxRetries:      10,
			InitialInterval: time.Millisecond * 100,
			MaxInterval:     time.Second,
			Multiplier:      2,
			Logger:          logger,
		}.Middleware,
		attemptLogMiddleware,
	)
}

// messageContextMiddleware puts the correlation id and a logger describing the message
// into its context.
func messageContextMiddleware(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		correlationID := middleware.MessageCorrelationID(msg)
		if correlationID == "" {
			correlationID = "gen_" + shortuuid.New()
		}

		ctx := log.ContextWithCorrelationID(msg.Context(), correlationID)
		ctx = log.ToContext(ctx, logrus.WithFields(logrus.Fields{
			"correlation_id": correlationID,
			"message_uuid":   msg.UUID,
			"handler":        message.HandlerNameFromCtx(msg.Context()),
			"event_name":     msg.Metadata.Get("name"),
		}))
		msg.SetContext(ctx)

		return next(msg)
	}
}

func attemptLogMiddleware(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		start := time.Now()
		msgs, err := next(msg)

		logger := log.FromContext(msg.Context()).WithField("duration", time.Since(start))
		if err != nil {
			logger.WithError(err).Warn("Message handling attempt failed")
		} else {
			logger.Info("Message handled")
		}

		return msgs, err
	}
}

// bestEffortMiddleware acks messages that still fail after retries. Notifications must
// never block the stream behind them.
func bestEffortMiddleware(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		msgs, err := next(msg)
		if err != nil {
			log.FromContext(msg.Context()).WithError(err).Error("Giving up on message after retries")
			return nil, nil
		}

		return msgs, nil
	}
}
