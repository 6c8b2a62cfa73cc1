// Package config is the configuration layer for the example programs under
// cmd/: a plain Go struct loaded from YAML, with defaults applied and
// validated separately, the same Load/LoadWithDefaults/LoadAndValidate
// shape the teacher's config loader uses. The library itself (internal/
// session, internal/conn, ...) takes explicit Config structs from its
// caller and never reads a file or an environment variable on its own.
package config
