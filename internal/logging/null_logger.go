package logging

import "github.com/vvka-141/dwload/pkg/dwload"

// NullLogger drops every message. Loaders built for tests and dry runs use it
// when nothing should reach stderr.
type NullLogger struct{}

var _ dwload.Logger = (*NullLogger)(nil)

// NewNullLogger returns a logger that writes nothing.
func NewNullLogger() *NullLogger { return &NullLogger{} }

func (*NullLogger) Verbose(string, ...interface{}) {}
func (*NullLogger) Info(string, ...interface{})    {}
func (*NullLogger) Error(string, ...interface{})   {}
