package telemetry

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/pthm-cable/flock/traits"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// ErrSnapshotVersion is returned when loading a snapshot written by another format version.
var ErrSnapshotVersion = errors.New("unsupported snapshot version")

//go:embed snapshot.schema.json
var snapshotSchemaJSON string

var snapshotSchema = jsonschema.MustCompileString("snapshot.schema.json", snapshotSchemaJSON)

// Format selects the snapshot encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// FormatFor picks the encoding from a file extension. Anything but .msgpack is JSON.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".msgpack") {
		return FormatMsgpack
	}
	return FormatJSON
}

// Snapshot holds the population and counters needed to resume a simulation.
type Snapshot struct {
	Version int   `json:"version" msgpack:"version"`
	RNGSeed int64 `json:"rng_seed" msgpack:"rng_seed"`

	WorldWidth  float32 `json:"world_width" msgpack:"world_width"`
	WorldHeight float32 `json:"world_height" msgpack:"world_height"`

	Tick              int32  `json:"tick" msgpack:"tick"`
	NextID            uint32 `json:"next_id" msgpack:"next_id"`
	CollisionCount    int    `json:"collision_count" msgpack:"collision_count"`
	ReproductionCount int    `json:"reproduction_count" msgpack:"reproduction_count"`

	Birds []BirdState `json:"birds" msgpack:"birds"`

	Bookmark *Bookmark `json:"bookmark,omitempty" msgpack:"bookmark,omitempty"`
}

// BirdState holds one bird's persistent state.
type BirdState struct {
	ID          uint32     `json:"id" msgpack:"id"`
	X           float32    `json:"x" msgpack:"x"`
	Y           float32    `json:"y" msgpack:"y"`
	VelX        float32    `json:"vel_x" msgpack:"vel_x"`
	VelY        float32    `json:"vel_y" msgpack:"vel_y"`
	Heading     float32    `json:"heading" msgpack:"heading"`
	Radius      float32    `json:"radius" msgpack:"radius"`
	Energy      float32    `json:"energy" msgpack:"energy"`
	FoodCounter int32      `json:"food_counter" msgpack:"food_counter"`
	Traits      traits.Set `json:"traits" msgpack:"traits"`
	Generation  uint32     `json:"generation" msgpack:"generation"`
	ParentA     uint32     `json:"parent_a" msgpack:"parent_a"`
	ParentB     uint32     `json:"parent_b" msgpack:"parent_b"`

	Lifetime *LifetimeStats `json:"lifetime,omitempty" msgpack:"lifetime,omitempty"`
}

// SaveSnapshot writes a snapshot into dir with a name derived from its tick and bookmark.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string, format Format) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if snapshot.Bookmark != nil {
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, sanitized)
	}
	path := filepath.Join(dir, name+"."+string(format))

	if err := WriteSnapshot(snapshot, path); err != nil {
		return "", err
	}
	return path, nil
}

// WriteSnapshot writes a snapshot to path, encoded according to its extension.
func WriteSnapshot(snapshot *Snapshot, path string) error {
	var data []byte
	var err error
	switch FormatFor(path) {
	case FormatMsgpack:
		data, err = msgpack.Marshal(snapshot)
	default:
		data, err = json.MarshalIndent(snapshot, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads a snapshot from disk.
// JSON files are validated against the embedded schema before decoding.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	switch FormatFor(path) {
	case FormatMsgpack:
		if err := msgpack.Unmarshal(data, &snapshot); err != nil {
			return nil, fmt.Errorf("unmarshal snapshot: %w", err)
		}
	default:
		if err := validateSnapshotJSON(data); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &snapshot); err != nil {
			return nil, fmt.Errorf("unmarshal snapshot: %w", err)
		}
	}

	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: %d (want %d)", ErrSnapshotVersion, snapshot.Version, SnapshotVersion)
	}
	return &snapshot, nil
}

func validateSnapshotJSON(data []byte) error {
	var v any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("decode snapshot json: %w", err)
	}
	if err := snapshotSchema.Validate(v); err != nil {
		return fmt.Errorf("snapshot validation failed: %w", err)
	}
	return nil
}
