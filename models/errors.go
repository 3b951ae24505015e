package models

import "fmt"

// ConfigError reports an unusable connection configuration, e.g. an exchange id
// with no registered venue. Retrying cannot succeed, so the refresh controller
// surfaces it immediately instead of counting it against the failure threshold.
type ConfigError struct {
	Exchange string
	Reason   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Exchange, e.Reason)
}

// TransportError reports a failed HTTP exchange: network error, non-2xx status,
// or every configured relay exhausted. Err holds the last underlying cause.
type TransportError struct {
	Exchange string
	URL      string
	Status   int
	Err      error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("transport: %s: http %d (%s)", e.Exchange, e.Status, e.URL)
	}
	return fmt.Sprintf("transport: %s: %v", e.Exchange, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// NormalizationError reports a payload that arrived but could not be turned into
// an order book: schema mismatch or an error envelope reported by the exchange
// itself inside a 200 response.
type NormalizationError struct {
	Exchange string
	Msg      string
	Err      error
}

func (e *NormalizationError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("normalize: %s: %s", e.Exchange, e.Msg)
	}
	return fmt.Sprintf("normalize: %s: %v", e.Exchange, e.Err)
}

func (e *NormalizationError) Unwrap() error { return e.Err }
