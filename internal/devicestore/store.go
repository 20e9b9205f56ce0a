// Package devicestore persists a device's nonce counter across process
// restarts in a local SQLite database, so a device's nonce is never
// reused under the same key. The symmetric key itself is never
// persisted here; key management is the caller's responsibility, and
// the key must be supplied again on every reload.
package devicestore

import (
	"database/sql"
	"fmt"
	"math/big"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mozaik-sbo/libmozaik-go/internal/deviceaead"
)

// DB wraps the SQLite connection backing one or more devices' nonce state.
type DB struct {
	conn *sql.DB
}

// Open opens or creates the SQLite database at path.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("devicestore: failed to open database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("devicestore: failed to migrate database: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS device_state (
		device_uid TEXT PRIMARY KEY,
		nonce BLOB NOT NULL,
		used_nonces TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// Save persists state's nonce counter under deviceUID, overwriting any
// prior record. usedNonces is stored as a base-10 string since it can
// exceed 2^64. The key is never written.
func (db *DB) Save(deviceUID string, state *deviceaead.State) error {
	nonce := state.Nonce()

	query := `
		INSERT INTO device_state (device_uid, nonce, used_nonces, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(device_uid) DO UPDATE SET
			nonce = excluded.nonce,
			used_nonces = excluded.used_nonces,
			updated_at = excluded.updated_at
	`
	_, err := db.conn.Exec(query, deviceUID, nonce[:], state.UsedNonces().String())
	if err != nil {
		return fmt.Errorf("devicestore: save: %w", err)
	}
	return nil
}

// Load retrieves the persisted nonce state for deviceUID and combines it
// with key (supplied fresh by the caller on every reload) to rebuild a
// deviceaead.State. It returns sql.ErrNoRows if no state has been saved
// for that device yet.
func (db *DB) Load(deviceUID string, key [16]byte) (*deviceaead.State, error) {
	var nonceBytes []byte
	var usedNonces string
	err := db.conn.QueryRow(
		"SELECT nonce, used_nonces FROM device_state WHERE device_uid = ?", deviceUID,
	).Scan(&nonceBytes, &usedNonces)
	if err != nil {
		return nil, err
	}
	if len(nonceBytes) != 12 {
		return nil, fmt.Errorf("devicestore: stored nonce for %q is malformed", deviceUID)
	}
	var nonce [12]byte
	copy(nonce[:], nonceBytes)

	used, ok := new(big.Int).SetString(usedNonces, 10)
	if !ok {
		return nil, fmt.Errorf("devicestore: stored used_nonces for %q is malformed", deviceUID)
	}

	state := deviceaead.NewState(nonce, key)
	state.RestoreUsedNonces(used)
	return state, nil
}
