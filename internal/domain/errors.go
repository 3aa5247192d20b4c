package domain

import "fmt"

// ConfigurationError reports an unusable column selector: an index outside
// the reference table, or a header name the table does not carry. It is
// fatal and aborts the run before any document is touched.
type ConfigurationError struct {
	Column   string // logical role: "site ID", "primary name", "alternate name"
	Selector string // the configured index or header name
	Err      error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("column %s: selector %q: %v", e.Column, e.Selector, e.Err)
	}
	return fmt.Sprintf("column %s: selector %q is not usable", e.Column, e.Selector)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// DataSourceError reports a reference table that cannot be read or parsed
// at all. Fatal, aborts before document processing.
type DataSourceError struct {
	Path string
	Err  error
}

func (e *DataSourceError) Error() string {
	return fmt.Sprintf("reference source %s: %v", e.Path, e.Err)
}

func (e *DataSourceError) Unwrap() error { return e.Err }

// OutputWriteError reports an unwritable report destination. Fatal, but
// surfaces only after all matching work is done.
type OutputWriteError struct {
	Path string
	Err  error
}

func (e *OutputWriteError) Error() string {
	return fmt.Sprintf("report %s: %v", e.Path, e.Err)
}

func (e *OutputWriteError) Unwrap() error { return e.Err }
