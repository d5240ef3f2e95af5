// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging configures the structured logger shared by all stages.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// New returns a logrus logger writing to w at the named level. Level names
// are the logrus ones (debug, info, warn, error); an empty level means info.
// When json is true entries are emitted as JSON objects, otherwise as
// key=value text without colours.
func New(w io.Writer, level string, json bool) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(w)

	if strings.TrimSpace(level) == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", level, err)
	}
	log.SetLevel(lvl)

	if json {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			DisableColors:    true,
			FullTimestamp:    true,
			DisableQuote:     true,
			QuoteEmptyFields: true,
		})
	}
	return log, nil
}

// Discard returns a logger that drops everything. Tests and library
// callers that pass no logger use it.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// OrDiscard returns log, or a discarding logger when log is nil.
func OrDiscard(log logrus.FieldLogger) logrus.FieldLogger {
	if log == nil {
		return Discard()
	}
	return log
}
