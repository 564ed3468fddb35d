package appointment

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-booking/internal/notify"
)

var tracer = otel.Tracer("github.com/BruksfildServices01/barber-booking/internal/usecase/appointment")

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// publish sends ev after commit. A failed publish is logged and never
// undoes the write.
func publish(ctx context.Context, pub notify.Publisher, logger *zap.Logger, ev notify.Event, err error) {
	if err == nil {
		err = pub.Publish(ctx, ev)
	}
	if err != nil {
		logger.Warn("event publish failed",
			zap.String("type", ev.Type),
			zap.String("key", ev.Key),
			zap.Error(err),
		)
	}
}
