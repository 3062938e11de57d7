package observability

// Metric keys registered at startup. Use cases and HTTP middleware resolve
// instruments through these instead of naming vendors directly.
const (
	MUsecaseRequests     MetricKey = "usecase_requests_total"
	MUsecaseDuration     MetricKey = "usecase_duration_seconds"
	MHTTPRequests        MetricKey = "http_requests_total"
	MHTTPRequestDuration MetricKey = "http_request_duration_seconds"
	MEventPublishFailed  MetricKey = "event_publish_failed_total"
	MCheckoutCartSize    MetricKey = "checkout_cart_size"
)
