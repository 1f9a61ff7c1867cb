package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// parseYAML parses the specific two-level mapping used by config.yaml
func parseYAML(r io.Reader, cfg *Config) error {
	type section int
	const (
		none section = iota
		db
		rm
		rd
		sv
		jw
		ob
		bk
	)

	scanner := bufio.NewScanner(r)
	var cur section

	lineNo := 0
	seenTop := map[section]bool{}

	markSeen := func(s section, name string) error {
		if seenTop[s] {
			return fmt.Errorf("line %d: duplicate '%s' section", lineNo, name)
		}
		seenTop[s] = true
		cur = s
		return nil
	}

	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()

		// strip comments
		if i := strings.IndexByte(raw, '#'); i >= 0 {
			raw = raw[:i]
		}

		line := strings.TrimRight(raw, " \t\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}

		// top-level section? (no leading spaces)
		if len(line) > 0 && (line[0] != ' ' && line[0] != '\t') {
			var err error
			switch strings.TrimSpace(line) {
			case "database:":
				err = markSeen(db, "database")
			case "rabbitmq:":
				err = markSeen(rm, "rabbitmq")
			case "redis:":
				err = markSeen(rd, "redis")
			case "services:":
				err = markSeen(sv, "services")
			case "jwt:":
				err = markSeen(jw, "jwt")
			case "outbox:":
				err = markSeen(ob, "outbox")
			case "booking:":
				err = markSeen(bk, "booking")
			default:
				err = fmt.Errorf("line %d: unknown top-level key %q", lineNo, strings.TrimSuffix(strings.TrimSpace(line), ":"))
			}
			if err != nil {
				return err
			}
			continue
		}

		// expect indented "key: value"
		if cur == none {
			return fmt.Errorf("line %d: key without a section", lineNo)
		}
		trim := strings.TrimSpace(line)
		colon := strings.IndexByte(trim, ':')
		if colon <= 0 {
			return fmt.Errorf("line %d: expected 'key: value'", lineNo)
		}
		key := strings.TrimSpace(trim[:colon])
		val := strings.TrimLeft(strings.TrimSpace(trim[colon+1:]), " \t")

		atoi := func(field string) (int, error) {
			n, err := strconv.Atoi(resolveScalar(val))
			if err != nil {
				return 0, fmt.Errorf("line %d: %s must be int: %v", lineNo, field, err)
			}
			return n, nil
		}

		var err error
		switch cur {
		case db:
			switch key {
			case "host":
				cfg.Database.Host = resolveScalar(val)
			case "port":
				cfg.Database.Port, err = atoi("database.port")
			case "user":
				cfg.Database.User = resolveScalar(val)
			case "password":
				cfg.Database.Password = resolveScalar(val)
			case "database":
				cfg.Database.Name = resolveScalar(val)
			default:
				return fmt.Errorf("line %d: unknown key in database: %q", lineNo, key)
			}
		case rm:
			switch key {
			case "host":
				cfg.RabbitMQ.Host = resolveScalar(val)
			case "port":
				cfg.RabbitMQ.Port, err = atoi("rabbitmq.port")
			case "user":
				cfg.RabbitMQ.User = resolveScalar(val)
			case "password":
				cfg.RabbitMQ.Password = resolveScalar(val)
			default:
				return fmt.Errorf("line %d: unknown key in rabbitmq: %q", lineNo, key)
			}
		case rd:
			switch key {
			case "host":
				cfg.Redis.Host = resolveScalar(val)
			case "port":
				cfg.Redis.Port, err = atoi("redis.port")
			case "password":
				cfg.Redis.Password = resolveScalar(val)
			default:
				return fmt.Errorf("line %d: unknown key in redis: %q", lineNo, key)
			}
		case sv:
			switch key {
			case "ride_service":
				cfg.Services.RideServicePort, err = atoi("services.ride_service")
			case "booking_service":
				cfg.Services.BookingServicePort, err = atoi("services.booking_service")
			case "notification_service":
				cfg.Services.NotificationServicePort, err = atoi("services.notification_service")
			case "ride_service_url":
				cfg.Services.RideServiceURL = resolveScalar(val)
			case "user_service_url":
				cfg.Services.UserServiceURL = resolveScalar(val)
			default:
				return fmt.Errorf("line %d: unknown key in services: %q", lineNo, key)
			}
		case jw:
			switch key {
			case "secret_key":
				cfg.JWT.SecretKey = resolveScalar(val)
			default:
				return fmt.Errorf("line %d: unknown key in jwt: %q", lineNo, key)
			}
		case ob:
			switch key {
			case "poll_interval_ms":
				cfg.Outbox.PollIntervalMS, err = atoi("outbox.poll_interval_ms")
			case "batch_size":
				cfg.Outbox.BatchSize, err = atoi("outbox.batch_size")
			case "max_retries":
				cfg.Outbox.MaxRetries, err = atoi("outbox.max_retries")
			case "claim_ttl_seconds":
				cfg.Outbox.ClaimTTLSeconds, err = atoi("outbox.claim_ttl_seconds")
			default:
				return fmt.Errorf("line %d: unknown key in outbox: %q", lineNo, key)
			}
		case bk:
			switch key {
			case "rpc_timeout_ms":
				cfg.Booking.RPCTimeoutMS, err = atoi("booking.rpc_timeout_ms")
			case "compensation_attempts":
				cfg.Booking.CompensationAttempts, err = atoi("booking.compensation_attempts")
			case "compensation_backoff_ms":
				cfg.Booking.CompensationBackoffMS, err = atoi("booking.compensation_backoff_ms")
			default:
				return fmt.Errorf("line %d: unknown key in booking: %q", lineNo, key)
			}
		}
		if err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return err
	}

	return nil
}

// resolveScalar trims whitespace and removes surrounding quotes from YAML-like scalars.
// For example:
//
//	"localhost"  -> localhost
//	'password123' -> password123
//	localhost     -> localhost
func resolveScalar(s string) string {
	s = strings.TrimSpace(s)

	// if value is quoted with "..." or '...', remove quotes safely
	n := len(s)
	if n >= 2 {
		if (s[0] == '"' && s[n-1] == '"') || (s[0] == '\'' && s[n-1] == '\'') {
			if unq, err := strconv.Unquote(s); err == nil {
				return unq
			}
			// fallback if strconv.Unquote fails (e.g., mismatched quotes)
			return s[1 : n-1]
		}
	}

	return s
}
