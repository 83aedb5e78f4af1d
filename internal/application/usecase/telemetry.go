package usecase

import "go.opentelemetry.io/otel"

const instrumentationName = "github.com/greystone/lending-api/internal/application/usecase"

var tracer = otel.Tracer(instrumentationName)
