// Package cli constructs the relclean command-line interface, wiring the
// cleanup command, the Viper configuration loader with its embedded defaults,
// and the zap logger configured from the common settings.
package cli
