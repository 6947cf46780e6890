package radiator

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/KOMKZ/radiator-exporter/logger"
	"github.com/KOMKZ/radiator-exporter/openmetrics"
)

// listDelimiter separates entries in STATS and DESCRIBE payloads.
const listDelimiter = "\x01"

// SplitResponse splits a response frame into the echoed command line and
// the payload after the first newline. A frame without a newline, or one
// whose payload is not valid UTF-8, cannot be decoded.
func SplitResponse(frame []byte) (echo string, payload string, err error) {
	idx := bytes.IndexByte(frame, '\n')
	if idx < 0 {
		return "", "", errors.New("radiator: response has no payload separator")
	}
	if !utf8.Valid(frame) {
		return "", "", errors.New("radiator: response is not valid UTF-8")
	}
	return string(frame[:idx]), string(frame[idx+1:]), nil
}

// DecodeStats parses a STATS payload: entries separated by U+0001, each a
// key:value pair split at the first colon. Integer values are preferred
// over floats. Entries that do not parse are dropped with a warning, and
// a repeated key overwrites the earlier value.
func DecodeStats(payload string) map[string]openmetrics.Number {
	stats := make(map[string]openmetrics.Number)

	for _, entry := range strings.Split(payload, listDelimiter) {
		if entry == "" {
			continue
		}

		key, raw, found := strings.Cut(entry, ":")
		if !found {
			logger.Warn("radiator", "statistics entry has no value, skipping",
				zap.String("entry", entry))
			continue
		}

		var value openmetrics.Number
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			value = openmetrics.Int(i)
		} else if f, err := strconv.ParseFloat(raw, 64); err == nil {
			value = openmetrics.Float(f)
		} else {
			logger.Warn("radiator", "statistics value is not numeric, skipping",
				zap.String("key", key), zap.String("value", raw))
			continue
		}

		if _, dup := stats[key]; dup {
			logger.Warn("radiator", "duplicate statistics key, keeping the later value",
				zap.String("key", key))
		}
		stats[key] = value
	}

	return stats
}

// ExtractIdentifier scans a DESCRIBE payload for the object identifier.
// Entries are key:type:value triples split at the first two colons; the
// identifier is the first triple with key "Identifier" and type "string".
func ExtractIdentifier(payload string) (string, bool) {
	for _, entry := range strings.Split(payload, listDelimiter) {
		parts := strings.SplitN(entry, ":", 3)
		if len(parts) != 3 {
			continue
		}
		if parts[0] == "Identifier" && parts[1] == "string" {
			return parts[2], true
		}
	}
	return "", false
}
