package ocr

// Options for OCR operations
type Options struct {
	// Language hint passed to the provider ("ko", "ja", ...)
	Lang string

	// EnableTables turns on table detection
	EnableTables bool

	// Provider-specific
	ProviderOptions map[string]any
}

type Option func(*Options)

func WithTables() Option {
	return func(o *Options) { o.EnableTables = true }
}

func WithLang(lang string) Option {
	return func(o *Options) { o.Lang = lang }
}

// Provider-specific options
func WithProviderOption(key string, value any) Option {
	return func(o *Options) {
		if o.ProviderOptions == nil {
			o.ProviderOptions = make(map[string]any)
		}
		o.ProviderOptions[key] = value
	}
}

func DefaultOptions() *Options {
	return &Options{
		Lang:            "ko",
		EnableTables:    true,
		ProviderOptions: make(map[string]any),
	}
}

func ApplyOptions(opts ...Option) *Options {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	return options
}
