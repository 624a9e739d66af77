package service

import (
	"time"

	"go.uber.org/zap"
)

type options struct {
	now    func() time.Time
	log    *zap.Logger
	events EventBus
}

type Option func(*options)

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithEvents включает публикацию событий; без него события не отправляются
func WithEvents(bus EventBus) Option {
	return func(o *options) { o.events = bus }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, log: zap.NewNop()}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
