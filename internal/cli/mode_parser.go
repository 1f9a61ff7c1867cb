package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
)

const (
	ModeRide         = "ride-service"
	ModeBooking      = "booking-service"
	ModeNotification = "notification-service"
)

// isKnownMode checks if the provided mode name is known.
func isKnownMode(s string) (string, bool) {
	switch s {
	case ModeRide, "ride", "r":
		return ModeRide, true
	case ModeBooking, "booking", "b":
		return ModeBooking, true
	case ModeNotification, "notification", "n":
		return ModeNotification, true
	default:
		return "", false
	}
}

// ParseMode supports:
//
//	--mode=<value>
//	<value> (subcommand shorthand), e.g., `ride-service --max-concurrent=100`
func ParseMode(args []string) (string, []string, error) {
	var mode string
	var out []string

	for i := range args {
		arg := args[i]
		if after, ok := strings.CutPrefix(arg, "--mode="); ok {
			mode = after
			continue
		}

		if mode == "" {
			if m, ok := isKnownMode(arg); ok {
				mode = m
				continue
			}
		}
		out = append(out, arg)
	}

	if mode == "" {
		return "", out, errors.New("no mode specified: use --mode=<service>")
	}

	if m, ok := isKnownMode(mode); ok {
		mode = m
	}

	return mode, out, nil
}

// PrintUsage prints the usage information with examples.
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, "\033[36m") // cyan

	fmt.Fprintln(w, `Usage:
  ./ride-booking --mode=<service> [flags]

Services (modes):
  ride-service                 Ride lifecycle API and seat inventory
  booking-service              Booking API and the seat reservation saga
  notification-service         Event consumer turning domain events into notifications

Examples:
  ./ride-booking --mode=ride-service --max-concurrent=100
  ./ride-booking --mode=booking-service --max-concurrent=100
  ./ride-booking --mode=notification-service --prefetch=10`)

	fmt.Fprint(w, "\033[0m") // reset
}

// AttachUsage wires a concise per-mode usage to a FlagSet.
func AttachUsage(fs *flag.FlagSet, mode string) {
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: ./ride-booking --mode=%s [flags]\n", mode)
		fs.PrintDefaults()
	}
}
