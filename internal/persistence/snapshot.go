package persistence

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/lox/blackjack/internal/stats"
)

// ErrCorrupt is returned by Decode for values that fail to parse or whose
// checksum does not match.
var ErrCorrupt = errors.New("persistence: corrupt snapshot")

// SnapshotVersion is written with every snapshot.
const SnapshotVersion = 1

// Snapshot is the durable part of a player's account.
type Snapshot struct {
	UserID      string         `json:"userId"`
	Balance     int            `json:"balance"`
	Timestamp   int64          `json:"timestamp"` // unix milliseconds
	HandCounter int            `json:"handCounter"`
	Stats       stats.Counters `json:"stats"`
	Version     int            `json:"version"`
}

// envelope carries the encoded snapshot with an xxhash checksum of its bytes.
type envelope struct {
	Data     json.RawMessage `json:"d"`
	Checksum string          `json:"c"`
}

// Encode serializes a snapshot into the stored value format.
func Encode(s Snapshot) (string, error) {
	if s.Version == 0 {
		s.Version = SnapshotVersion
	}
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	env, err := json.Marshal(envelope{Data: data, Checksum: checksum(data)})
	if err != nil {
		return "", fmt.Errorf("marshal envelope: %w", err)
	}
	return base64.StdEncoding.EncodeToString(env), nil
}

// Decode parses a stored value, verifying its checksum.
func Decode(value string) (Snapshot, error) {
	raw, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: base64: %v", ErrCorrupt, err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Snapshot{}, fmt.Errorf("%w: envelope: %v", ErrCorrupt, err)
	}
	if len(env.Data) == 0 {
		return Snapshot{}, fmt.Errorf("%w: empty payload", ErrCorrupt)
	}
	if got := checksum(env.Data); got != env.Checksum {
		return Snapshot{}, fmt.Errorf("%w: checksum %s, want %s", ErrCorrupt, env.Checksum, got)
	}

	var s Snapshot
	if err := json.Unmarshal(env.Data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("%w: payload: %v", ErrCorrupt, err)
	}
	if s.Balance < 0 {
		return Snapshot{}, fmt.Errorf("%w: negative balance %d", ErrCorrupt, s.Balance)
	}
	return s, nil
}

func checksum(data []byte) string {
	return strconv.FormatUint(xxhash.Sum64(data), 16)
}
