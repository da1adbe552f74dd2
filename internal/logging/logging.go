// Package logging builds the service logger and the eventbus subscriber that
// turns request, operation and store events into structured log lines.
package logging

import (
	"context"

	eventbus "github.com/usergraph-io/usergraph/internal/eventbus"
	events "github.com/usergraph-io/usergraph/internal/events"
	reqid "github.com/usergraph-io/usergraph/internal/reqid"

	"github.com/jensneuse/abstractlogger"
	"go.uber.org/zap"
)

// New builds the service logger. With debug enabled the underlying zap core
// logs human-readable output at debug level; otherwise JSON at info level.
// The returned flush must be called on shutdown.
func New(debug bool) (abstractlogger.Logger, func() error, error) {
	var (
		zl  *zap.Logger
		err error
	)
	level := abstractlogger.InfoLevel
	if debug {
		zl, err = zap.NewDevelopment()
		level = abstractlogger.DebugLevel
	} else {
		zl, err = zap.NewProduction()
	}
	if err != nil {
		return nil, nil, err
	}
	return abstractlogger.NewZapLogger(zl, level), zl.Sync, nil
}

// RegisterSubscriber attaches log handlers for the finish events on the global
// bus. Start events are not logged; the finish events carry the durations.
func RegisterSubscriber(log abstractlogger.Logger) {
	eventbus.Subscribe(func(ctx context.Context, e events.HTTPFinish) {
		rid, _ := reqid.FromContext(ctx)
		log.Info("http request",
			abstractlogger.Any("reqid", rid),
			abstractlogger.String("method", e.Request.Method),
			abstractlogger.String("path", e.Request.URL.Path),
			abstractlogger.Int("status", e.Status),
			abstractlogger.String("duration", e.Duration.String()),
		)
	})

	eventbus.Subscribe(func(ctx context.Context, e events.GraphQLFinish) {
		rid, _ := reqid.FromContext(ctx)
		fields := []abstractlogger.Field{
			abstractlogger.Any("reqid", rid),
			abstractlogger.String("operation", e.OperationName),
			abstractlogger.String("type", e.OperationType),
			abstractlogger.Int("errors", len(e.Errors)),
			abstractlogger.String("duration", e.Duration.String()),
		}
		if len(e.Errors) > 0 {
			log.Error("graphql operation", append(fields, abstractlogger.Error(e.Errors[0]))...)
			return
		}
		log.Info("graphql operation", fields...)
	})

	eventbus.Subscribe(func(ctx context.Context, e events.StoreFetchFinish) {
		rid, _ := reqid.FromContext(ctx)
		fields := []abstractlogger.Field{
			abstractlogger.Any("reqid", rid),
			abstractlogger.String("collection", e.Collection),
			abstractlogger.String("kind", string(e.Kind)),
			abstractlogger.String("field", e.Field),
			abstractlogger.Int("rows", e.Rows),
			abstractlogger.String("duration", e.Duration.String()),
		}
		if e.Err != nil {
			log.Error("store fetch", append(fields, abstractlogger.Error(e.Err))...)
			return
		}
		log.Debug("store fetch", fields...)
	})
}
