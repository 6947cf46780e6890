package radiator

import (
	"bytes"
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/KOMKZ/radiator-exporter/logger"
	"github.com/KOMKZ/radiator-exporter/openmetrics"
)

// noSuchObject is the frame ending an enumeration. The server sends it
// bare, without an echoed command line.
var noSuchObject = []byte("NOSUCHOBJECT")

// Object is one enumerated server object: its configured identifier and
// its current statistics.
type Object struct {
	Identifier string
	Stats      map[string]openmetrics.Number
}

// EnumerateObjects walks the objects of one kind by probing DESCRIBE
// kind.0, kind.1, ... until the server answers NOSUCHOBJECT. Objects
// without a string Identifier attribute are skipped; the rest get their
// statistics fetched with STATS. The result maps object index to object.
func EnumerateObjects(ctx context.Context, q Querier, kind string) (map[int]Object, error) {
	objects := make(map[int]Object)

	for i := 0; ; i++ {
		describe := fmt.Sprintf("DESCRIBE %s.%d", kind, i)
		frame, err := q.Query(ctx, []byte(describe))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", describe, err)
		}
		if bytes.Equal(frame, noSuchObject) {
			break
		}

		_, payload, err := SplitResponse(frame)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", describe, err)
		}
		// Some responses echo the command line before the terminator.
		if payload == "NOSUCHOBJECT" {
			break
		}

		id, ok := ExtractIdentifier(payload)
		if !ok {
			logger.Warn("radiator", "object has no identifier, skipping",
				zap.String("kind", kind), zap.Int("index", i))
			continue
		}

		stats := fmt.Sprintf("STATS %s.%d", kind, i)
		statsPayload, err := queryPayload(ctx, q, stats)
		if err != nil {
			return nil, err
		}

		objects[i] = Object{
			Identifier: id,
			Stats:      DecodeStats(statsPayload),
		}
	}

	return objects, nil
}

// queryPayload runs one command and peels the echoed command line off the
// response.
func queryPayload(ctx context.Context, q Querier, command string) (string, error) {
	frame, err := q.Query(ctx, []byte(command))
	if err != nil {
		return "", fmt.Errorf("%s: %w", command, err)
	}
	_, payload, err := SplitResponse(frame)
	if err != nil {
		return "", fmt.Errorf("%s: %w", command, err)
	}
	return payload, nil
}
