// Package logger provides the structured logger used across the listing scraper.
//
// It wraps zerolog behind a small Logger interface so components can take a
// logger as a dependency and tests can swap in a TestLogger that captures
// messages instead of printing them.
//
//	if err := logger.Initialize(&cfg.Logging); err != nil {
//	    return err
//	}
//	logger.WithField("url", url).Info("Processing listing")
//
// Console output uses zerolog.ConsoleWriter, coloured when writing to a
// terminal. When a log file is configured, events are written both to the
// console and, as JSON, to the file.
package logger
