// Package logger builds *slog.Logger values with functional options and
// provides attribute helpers so every package names its log keys the same way.
//
// New picks a text or JSON handler, applies static attributes and wraps the
// handler in a LogHandlerDecorator that runs ContextExtractor callbacks for
// each record. Extractors pull request-scoped values, such as a request id,
// out of the context passed to the *Context logging methods.
//
//	log := logger.New(
//		logger.WithDevelopment("orders"),
//		logger.WithContextValue("request_id", ctxKeyRequestID),
//	)
//	log.DebugContext(ctx, "parameter bound",
//		logger.ModelName("order.Lines[0]"),
//		logger.ModelType(reflect.TypeFor[Order]()),
//	)
//
// # Configuration
//
// Config reads LOG_LEVEL, LOG_FORMAT, APP_ENV and SERVICE_NAME. Load it with
// config.Load and turn it into options with FromConfig:
//
//	var cfg logger.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//	opts, err := logger.FromConfig(cfg)
//
// WithDevelopment logs text at debug level; WithStaging and WithProduction
// log JSON at info level. WithLevel and the format options override them.
//
// # Attributes
//
// Error returns an empty attribute for a nil error, so it can be passed
// without a nil check. ModelName, ModelType, BinderKind and Field
// describe binding work; Component tags the package that logged.
package logger
