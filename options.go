package drawbatch

// DefaultScanWindow is the number of leading records of a shell that Insert
// compares against when looking for a record to merge into.
const DefaultScanWindow = 8

type options struct {
	scanWindow int
	sizeHint   int
	logger     *Logger
}

func defaultOptions() options {
	return options{
		scanWindow: DefaultScanWindow,
	}
}

// Option configures a Store.
type Option func(*options)

// WithScanWindow sets how many records of a shell Insert scans for a
// matching secondary key before appending a new record.
//
// The window bounds the cost of a single insert. It is a heuristic, not a
// uniqueness guarantee: a secondary key whose record sits past the window
// gets a second record. A window of 0 disables merging altogether.
// Negative values select DefaultScanWindow.
func WithScanWindow(n int) Option {
	return func(o *options) {
		if n < 0 {
			n = DefaultScanWindow
		}
		o.scanWindow = n
	}
}

// WithSizeHint pre-sizes the primary key index for n keys.
func WithSizeHint(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.sizeHint = n
		}
	}
}

// WithLogger sets the logger used for clear and prune diagnostics.
//
// If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
