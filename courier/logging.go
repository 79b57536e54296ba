package courier

// Verbosity controls how much of each attempt is logged. Logging never
// alters control flow; with a nil logger it is a no-op.
type Verbosity string

const (
	// VerbosityOff disables request/response logging
	VerbosityOff Verbosity = "off"
	// VerbositySummary logs method, URL, status and attempt number
	VerbositySummary Verbosity = "summary"
	// VerbosityVerbose additionally logs headers and bodies. Credential
	// headers are masked by the logger's sensitive-data filter.
	VerbosityVerbose Verbosity = "verbose"
)

// logRequest logs the outgoing request before each send attempt
func (c *Client) logRequest(req *WireRequest, attempt int) {
	if c.log == nil || c.verbosity == VerbosityOff {
		return
	}

	event := c.log.Info().
		Str("direction", "outbound").
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Int("attempt", attempt)

	if c.verbosity == VerbosityVerbose {
		event = event.Interface("headers", map[string][]string(req.Header))
		if len(req.Body) > 0 {
			event = event.Bytes("body", req.Body)
		}
	}

	event.Msg("courier request")
}

// logResponse logs the classified outcome of each attempt, retried ones
// included.
func (c *Client) logResponse(req *WireRequest, resp *RawResponse, failure error, attempt int) {
	if c.log == nil || c.verbosity == VerbosityOff {
		return
	}

	event := c.log.Info()
	if failure != nil {
		event = c.log.Warn().Err(failure)
	}
	event = event.
		Str("direction", "inbound").
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Int("attempt", attempt)

	if resp != nil {
		event = event.Int("status", resp.StatusCode)
		if c.verbosity == VerbosityVerbose {
			event = event.Interface("headers", map[string][]string(resp.Header))
			if len(resp.Body) > 0 {
				event = event.Bytes("body", resp.Body)
			}
		}
	}

	event.Msg("courier response")
}
