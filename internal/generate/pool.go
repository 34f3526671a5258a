package generate

// Option is one simulated HTTP response the generator can emit. ErrorCode is
// empty when the response carries no application error.
type Option struct {
	Method     string `yaml:"method"`
	Path       string `yaml:"path"`
	StatusCode int    `yaml:"status_code"`
	ErrorCode  string `yaml:"error_code,omitempty"`
	Message    string `yaml:"message"`
}

// DefaultPool returns the built-in response pool: a mix of successes,
// redirects, client errors, and server errors.
func DefaultPool() []Option {
	return []Option{
		// Successes
		{Method: "GET", Path: "/api/health", StatusCode: 200, Message: "OK"},
		{Method: "GET", Path: "/api/users", StatusCode: 200, Message: "OK"},
		{Method: "POST", Path: "/api/users", StatusCode: 201, Message: "Created"},
		{Method: "PUT", Path: "/api/users/42", StatusCode: 200, Message: "Updated"},
		{Method: "DELETE", Path: "/api/users/42", StatusCode: 204, Message: "No Content"},
		{Method: "GET", Path: "/static/logo.png", StatusCode: 304, Message: "Not Modified"},

		// Redirects
		{Method: "GET", Path: "/", StatusCode: 301, Message: "Moved Permanently"},
		{Method: "GET", Path: "/old-endpoint", StatusCode: 302, Message: "Found"},

		// Client errors
		{Method: "GET", Path: "/api/secret", StatusCode: 401, ErrorCode: "EAUTH", Message: "Unauthorized"},
		{Method: "GET", Path: "/api/secret", StatusCode: 403, ErrorCode: "EFORBIDDEN", Message: "Forbidden"},
		{Method: "GET", Path: "/api/unknown", StatusCode: 404, ErrorCode: "ENOTFOUND", Message: "Not Found"},
		{Method: "POST", Path: "/api/users", StatusCode: 409, ErrorCode: "ECONFLICT", Message: "Conflict"},
		{Method: "GET", Path: "/api/slow", StatusCode: 408, ErrorCode: "ETIMEOUT", Message: "Request Timeout"},
		{Method: "GET", Path: "/api/limited", StatusCode: 429, ErrorCode: "ERATE", Message: "Too Many Requests"},

		// Server errors
		{Method: "GET", Path: "/api/report", StatusCode: 500, ErrorCode: "ESERVER", Message: "Internal Server Error"},
		{Method: "GET", Path: "/api/proxy", StatusCode: 502, ErrorCode: "EBADGATEWAY", Message: "Bad Gateway"},
		{Method: "GET", Path: "/api/external", StatusCode: 503, ErrorCode: "EUNAVAILABLE", Message: "Service Unavailable"},
		{Method: "GET", Path: "/api/external", StatusCode: 504, ErrorCode: "EGATEWAYTIMEOUT", Message: "Gateway Timeout"},
	}
}

// DefaultProducts is the built-in product catalog for inventory events.
func DefaultProducts() []string {
	return []string{"P-100", "P-200", "P-300", "P-400", "P-500"}
}
