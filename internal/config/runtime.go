package config

import (
	"encoding/json"
	"os"

	"github.com/spf13/viper"
)

// Runtime configuration keys. These mirror the deployment-time override file;
// any key present there wins over the corresponding environment value.
const (
	keyReplicateToDrive = "replicate_to_drive"
	keyReplicateStrict  = "replicate_to_drive_strict"
	keyDriveFolderID    = "google_drive_folder_id"
	keyPathTemplate     = "drive_replication_path_template"
	keyTypeRemap        = "drive_replication_fo_type_map"
)

// LoadRuntime reads the optional runtime override file. The file is named by
// RUNTIME_CONFIG_FILE, or discovered as runtime-config.{json,yaml,toml} in the
// working directory. A missing file is not an error: the resolver then falls
// through to the environment layer for every key.
func LoadRuntime() *viper.Viper {
	v := viper.New()
	if file := os.Getenv("RUNTIME_CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("runtime-config")
		v.AddConfigPath(".")
	}
	// Best effort: an unreadable or absent override file degrades to env-only.
	_ = v.ReadInConfig()
	return v
}

// Resolver yields effective configuration values with a defined precedence:
// runtime override > environment > built-in default. It exists because the
// same setting can legitimately arrive at two layers and /health must report
// what the service actually does, not what the env says.
type Resolver struct {
	env     *AppConfig
	runtime *viper.Viper
}

// NewResolver builds a Resolver over the environment config and the runtime
// override set. runtime may be an empty viper instance.
func NewResolver(env *AppConfig, runtime *viper.Viper) *Resolver {
	return &Resolver{env: env, runtime: runtime}
}

// Backend returns the configured primary storage backend.
func (r *Resolver) Backend() string { return r.env.StorageBackend }

// ReplicateToDrive reports whether mirror replication is effectively enabled.
// Replication only applies to the object backend: with drive as primary
// storage there is nothing to mirror.
func (r *Resolver) ReplicateToDrive() bool {
	if r.env.StorageBackend != "object" {
		return false
	}
	if r.runtime.IsSet(keyReplicateToDrive) {
		return r.runtime.GetBool(keyReplicateToDrive)
	}
	return r.env.Replication.Enabled
}

// StrictReplication reports whether replication failures abort the request.
func (r *Resolver) StrictReplication() bool {
	if r.runtime.IsSet(keyReplicateStrict) {
		return r.runtime.GetBool(keyReplicateStrict)
	}
	return r.env.Replication.Strict
}

// DriveFolderID returns the effective mirror root folder id, or "".
func (r *Resolver) DriveFolderID() string {
	if r.runtime.IsSet(keyDriveFolderID) {
		return r.runtime.GetString(keyDriveFolderID)
	}
	return r.env.Drive.FolderID
}

// PathTemplate returns the effective folder path template.
func (r *Resolver) PathTemplate() string {
	if r.runtime.IsSet(keyPathTemplate) {
		if t := r.runtime.GetString(keyPathTemplate); t != "" {
			return t
		}
	}
	return r.env.Replication.PathTemplate
}

// TypeRemap parses the effective business-object-type remap table. A
// malformed JSON value yields an empty table rather than an error; the path
// resolver then falls back to raw type names.
func (r *Resolver) TypeRemap() map[string]string {
	raw := r.env.Replication.TypeRemapRaw
	if r.runtime.IsSet(keyTypeRemap) {
		if v := r.runtime.GetString(keyTypeRemap); v != "" {
			raw = v
		}
	}
	remap := map[string]string{}
	if raw == "" {
		return remap
	}
	if err := json.Unmarshal([]byte(raw), &remap); err != nil {
		return map[string]string{}
	}
	return remap
}
