package store

import (
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"
)

// CurrentSchemaVersion is the archive schema version.
// Increment this when making breaking changes to the record format.
const CurrentSchemaVersion = 1

var keySchemaVersion = []byte("schema_version")

// SchemaVersion returns the stored schema version, 0 for a fresh file.
func (a *ReviewArchive) SchemaVersion() (int, error) {
	var version int
	err := a.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketMeta).Get(keySchemaVersion)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &version)
	})
	return version, err
}

// Migrate upgrades the archive to CurrentSchemaVersion. Archives written by
// a newer version are refused rather than rewritten.
func (a *ReviewArchive) Migrate() error {
	version, err := a.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version > CurrentSchemaVersion {
		return fmt.Errorf("archive created by newer version (v%d > v%d)", version, CurrentSchemaVersion)
	}

	for v := version; v < CurrentSchemaVersion; v++ {
		if err := a.runMigration(v, v+1); err != nil {
			return fmt.Errorf("migration from v%d to v%d failed: %w", v, v+1, err)
		}
	}

	return a.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(CurrentSchemaVersion)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketMeta).Put(keySchemaVersion, data)
	})
}

func (a *ReviewArchive) runMigration(from, to int) error {
	switch {
	case from == 0 && to == 1:
		return a.db.Update(func(tx *bbolt.Tx) error {
			_, err := tx.CreateBucketIfNotExists(bucketReviews)
			return err
		})
	default:
		return nil
	}
}
