package names

import "fmt"

// UnknownKindError is returned for a namespace other than global, function, type, field
// or local.
type UnknownKindError struct {
	Kind string
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("names: unknown kind %q", e.Kind)
}

// UndecodedKeysError is returned when a symbol file contains keys that are not part of the
// schema.
type UndecodedKeysError struct {
	Path string
	Keys []string
}

func (e *UndecodedKeysError) Error() string {
	return fmt.Sprintf("names: %s: unknown keys %v", e.Path, e.Keys)
}

// SnapshotVersionError is returned when a snapshot was written by an incompatible version.
type SnapshotVersionError struct {
	Version int
}

func (e *SnapshotVersionError) Error() string {
	return fmt.Sprintf("names: unsupported snapshot version %d", e.Version)
}
