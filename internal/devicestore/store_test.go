package devicestore

import (
	"database/sql"
	"math/big"
	"testing"

	"github.com/mozaik-sbo/libmozaik-go/internal/deviceaead"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveLoadRoundTrip(t *testing.T) {
	db := openTestDB(t)

	key := [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	nonce := [12]byte{0xaa, 0xbb, 0xcc}
	state := deviceaead.NewState(nonce, key)
	if _, err := deviceaead.Protect("user-1", state, deviceaead.AesGcm128, []byte("hello")); err != nil {
		t.Fatalf("advancing state: %v", err)
	}

	if err := db.Save("device-1", state); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded, err := db.Load("device-1", key)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if reloaded.Nonce() != state.Nonce() {
		t.Fatalf("nonce mismatch: got %x want %x", reloaded.Nonce(), state.Nonce())
	}
	if reloaded.UsedNonces().Cmp(state.UsedNonces()) != 0 {
		t.Fatalf("used_nonces mismatch: got %s want %s", reloaded.UsedNonces(), state.UsedNonces())
	}
}

func TestSaveLoadUsedNoncesBeyondUint64(t *testing.T) {
	db := openTestDB(t)

	key := [16]byte{}
	nonce := [12]byte{}
	state := deviceaead.NewState(nonce, key)

	huge := new(big.Int).Lsh(big.NewInt(1), 90)
	state.RestoreUsedNonces(huge)

	if err := db.Save("device-huge", state); err != nil {
		t.Fatalf("Save: %v", err)
	}
	reloaded, err := db.Load("device-huge", key)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if reloaded.UsedNonces().Cmp(huge) != 0 {
		t.Fatalf("used_nonces beyond uint64 mismatch: got %s want %s", reloaded.UsedNonces(), huge)
	}
}

func TestLoadMissingDevice(t *testing.T) {
	db := openTestDB(t)

	if _, err := db.Load("nobody", [16]byte{}); err != sql.ErrNoRows {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestSaveOverwritesPriorRecord(t *testing.T) {
	db := openTestDB(t)

	key := [16]byte{1}
	state := deviceaead.NewState([12]byte{0, 0, 1}, key)
	if err := db.Save("device-1", state); err != nil {
		t.Fatalf("Save: %v", err)
	}

	state2 := deviceaead.NewState([12]byte{0, 0, 2}, key)
	state2.RestoreUsedNonces(big.NewInt(42))
	if err := db.Save("device-1", state2); err != nil {
		t.Fatalf("Save (overwrite): %v", err)
	}

	reloaded, err := db.Load("device-1", key)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if reloaded.Nonce() != state2.Nonce() {
		t.Fatalf("expected overwritten nonce, got %x", reloaded.Nonce())
	}
	if reloaded.UsedNonces().Cmp(big.NewInt(42)) != 0 {
		t.Fatalf("expected overwritten used_nonces, got %s", reloaded.UsedNonces())
	}
}
