package logger

import "strings"

// DefaultMaskValue is the replacement string for masked values.
const DefaultMaskValue = "***"

// FilterConfig defines the configuration for sensitive data filtering.
type FilterConfig struct {
	// SensitiveFields contains field or header names that are masked in logs.
	// Matching is case-insensitive and matches on substrings, so "authorization"
	// also covers "proxy-authorization".
	SensitiveFields []string
	// MaskValue is the value used to replace sensitive data (default: "***")
	MaskValue string
}

// DefaultFilterConfig returns a configuration covering the credential
// material an HTTP client is likely to log: auth headers, tokens, API keys.
func DefaultFilterConfig() *FilterConfig {
	return &FilterConfig{
		SensitiveFields: []string{
			"authorization",
			"cookie",
			"set-cookie",
			"password", "passwd",
			"secret",
			"api_key", "apikey", "api-key",
			"token", "access_token", "refresh_token",
			"credential", "credentials",
		},
		MaskValue: DefaultMaskValue,
	}
}

// SensitiveDataFilter masks sensitive values before they reach log output.
type SensitiveDataFilter struct {
	config *FilterConfig
}

// NewSensitiveDataFilter creates a new filter with the given configuration.
// A nil config selects the defaults.
func NewSensitiveDataFilter(config *FilterConfig) *SensitiveDataFilter {
	if config == nil {
		config = DefaultFilterConfig()
	}
	if config.MaskValue == "" {
		config.MaskValue = DefaultMaskValue
	}
	return &SensitiveDataFilter{config: config}
}

// FilterString masks the value if the key names a sensitive field.
func (f *SensitiveDataFilter) FilterString(key, value string) string {
	if f.isSensitiveField(key) && value != "" {
		return f.config.MaskValue
	}
	return value
}

// FilterValue masks sensitive entries inside common composite values.
// Maps of string keys are filtered per entry; everything else is masked
// wholesale when the field key itself is sensitive.
func (f *SensitiveDataFilter) FilterValue(key string, value any) any {
	switch v := value.(type) {
	case map[string]string:
		out := make(map[string]string, len(v))
		for k, val := range v {
			out[k] = f.FilterString(k, val)
		}
		return out
	case map[string]any:
		return f.FilterFields(v)
	case map[string][]string:
		out := make(map[string][]string, len(v))
		for k, vals := range v {
			if f.isSensitiveField(k) && len(vals) > 0 {
				out[k] = []string{f.config.MaskValue}
				continue
			}
			out[k] = vals
		}
		return out
	case string:
		return f.FilterString(key, v)
	default:
		if f.isSensitiveField(key) {
			return f.config.MaskValue
		}
		return value
	}
}

// FilterFields returns a copy of fields with sensitive entries masked.
func (f *SensitiveDataFilter) FilterFields(fields map[string]any) map[string]any {
	if fields == nil {
		return nil
	}
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = f.FilterValue(k, v)
	}
	return out
}

func (f *SensitiveDataFilter) isSensitiveField(key string) bool {
	lower := strings.ToLower(key)
	for _, field := range f.config.SensitiveFields {
		if strings.Contains(lower, field) {
			return true
		}
	}
	return false
}
