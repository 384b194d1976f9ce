package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldOperation   = "operation"
	FieldError       = "error"
	FieldDuration    = "duration_ms"
	FieldCacheKey    = "cache_key"
	FieldCacheHit    = "cache_hit"
	FieldGranularity = "granularity"
	FieldCurrency    = "currency"
	FieldWindowStart = "window_start"
	FieldWindowEnd   = "window_end"
	FieldBucketCount = "bucket_count"
	FieldTxCount     = "transaction_count"
	FieldInsightType = "insight_type"
	FieldGenerator   = "generator"
	FieldCategory    = "category"
)

// Components defines standard component names
const (
	ComponentApp        = "app"
	ComponentHTTP       = "http"
	ComponentInsights   = "insights"
	ComponentAggregator = "aggregator"
	ComponentCache      = "cache"
	ComponentStorage    = "storage"
	ComponentCurrency   = "currency"
	ComponentAMQP       = "amqp"
	ComponentWorker     = "worker"
)

// Operations defines standard operation names
const (
	OpCompute    = "compute"
	OpAggregate  = "aggregate"
	OpInvalidate = "invalidate"
	OpRefresh    = "refresh"
	OpPrefetch   = "prefetch"
	OpList       = "list"
	OpConvert    = "convert"
	OpStartup    = "startup"
	OpShutdown   = "shutdown"
)
