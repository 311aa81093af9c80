package massifs

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind distinguishes a massif blob from its checkpoint (signed tree head).
type Kind uint8

const (
	KindMassif Kind = iota
	KindCheckpoint
)

const (
	pathVersion  = "v2"
	pathRoot     = "merklelog"
	massifsDir   = "massifs"
	checkpoints  = "checkpoints"
	massifExt    = "log"
	checkpointExt = "sth"
	massifIndexHexDigits = 16
)

// ErrUnrecognizedPath is returned by ParseStoragePath with a reason
// appended via %w wrapping describing exactly what failed to parse.
var ErrUnrecognizedPath = errors.New("massifs: unrecognized storage path")

func unrecognized(reason string) error {
	return fmt.Errorf("%w: %s", ErrUnrecognizedPath, reason)
}

// StoragePath is the parsed form of a massif or checkpoint blob path.
type StoragePath struct {
	LogID        string
	MassifHeight uint64
	MassifIndex  uint64
	Kind         Kind
}

// FormatStoragePath renders the bit-exact storage path for a massif
// blob or its checkpoint:
//
//	v2/merklelog/massifs/{massifHeight}/{logId}/{massifIndex:016x}.log
//	v2/merklelog/checkpoints/{massifHeight}/{logId}/{massifIndex:016x}.sth
func FormatStoragePath(logID string, massifHeight uint64, massifIndex uint64, kind Kind) string {
	dir, ext := massifsDir, massifExt
	if kind == KindCheckpoint {
		dir, ext = checkpoints, checkpointExt
	}
	return fmt.Sprintf(
		"%s/%s/%s/%d/%s/%016x.%s",
		pathVersion, pathRoot, dir, massifHeight, logID, massifIndex, ext,
	)
}

// ParseStoragePath parses a storage path produced by FormatStoragePath,
// failing with ErrUnrecognizedPath (wrapping a precise reason) on any
// deviation.
func ParseStoragePath(s string) (StoragePath, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 6 {
		return StoragePath{}, unrecognized("expected 6 path segments")
	}
	if parts[0] != pathVersion {
		return StoragePath{}, unrecognized("path version must be v2")
	}
	if parts[1] != pathRoot {
		return StoragePath{}, unrecognized("path root must be merklelog")
	}

	var kind Kind
	var wantExt string
	switch parts[2] {
	case massifsDir:
		kind, wantExt = KindMassif, massifExt
	case checkpoints:
		kind, wantExt = KindCheckpoint, checkpointExt
	default:
		return StoragePath{}, unrecognized("kind must be massifs or checkpoints")
	}

	height, err := strconv.ParseUint(parts[3], 10, 64)
	if err != nil {
		return StoragePath{}, unrecognized("massif height must be decimal")
	}

	logID := parts[4]
	if logID == "" {
		return StoragePath{}, unrecognized("log id must not be empty")
	}

	nameAndExt := strings.SplitN(parts[5], ".", 2)
	if len(nameAndExt) != 2 {
		return StoragePath{}, unrecognized("file name must have an extension")
	}
	name, ext := nameAndExt[0], nameAndExt[1]
	if ext != wantExt {
		return StoragePath{}, unrecognized("extension does not match kind")
	}
	if len(name) != massifIndexHexDigits {
		return StoragePath{}, unrecognized("massif index must be 16 hex digits")
	}
	index, err := strconv.ParseUint(name, 16, 64)
	if err != nil {
		return StoragePath{}, unrecognized("massif index must be 16 hex digits")
	}

	return StoragePath{
		LogID:        logID,
		MassifHeight: height,
		MassifIndex:  index,
		Kind:         kind,
	}, nil
}
