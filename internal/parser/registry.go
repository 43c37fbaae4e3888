package parser

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/jbweber/verne/internal/verne"
)

// Factory builds a parser for the template at path.
type Factory func(path string, log logrus.FieldLogger) verne.Parser

var factories = map[string]Factory{
	"yaml": func(path string, log logrus.FieldLogger) verne.Parser {
		return NewYAML(path, log)
	},
}

// Lookup returns the factory registered under name.
func Lookup(name string) (Factory, bool) {
	f, ok := factories[name]
	return f, ok
}

// Names returns the registered parser names, sorted.
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
