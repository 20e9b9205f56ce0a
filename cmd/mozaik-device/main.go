// mozaik-device produces one protected device record per invocation: it
// loads the device's persisted nonce state (or starts fresh), protects
// the given message under the given key, persists the advanced nonce
// state, and prints the hex-encoded record.
package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mozaik-sbo/libmozaik-go/internal/config"
	"github.com/mozaik-sbo/libmozaik-go/internal/deviceaead"
	"github.com/mozaik-sbo/libmozaik-go/internal/devicestore"
	"github.com/mozaik-sbo/libmozaik-go/internal/telemetry"
)

var (
	configFile  string
	statedbFile string
	userIDFlag  string
	keyHex      string
	messageHex  string

	rootCmd = &cobra.Command{
		Use:   "mozaik-device",
		Short: "Produce one AES-GCM-128 protected device record",
		RunE:  runDevice,
	}
)

func init() {
	rootCmd.Flags().StringVar(&configFile, "config", "", "device YAML configuration file (required)")
	rootCmd.Flags().StringVar(&statedbFile, "statedb", "", "override the state database path from --config")
	rootCmd.Flags().StringVar(&userIDFlag, "user-id", "", "override the device user id from --config")
	rootCmd.Flags().StringVar(&keyHex, "key", "", "16-byte AES-128 key, hex (required)")
	rootCmd.Flags().StringVar(&messageHex, "message", "", "message to protect, hex (required)")
	rootCmd.MarkFlagRequired("config")
	rootCmd.MarkFlagRequired("key")
	rootCmd.MarkFlagRequired("message")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runDevice(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadDeviceConfig(configFile)
	if err != nil {
		return err
	}
	dbPath := cfg.Device.StateDBPath
	if statedbFile != "" {
		dbPath = statedbFile
	}
	userID := cfg.Device.UserID
	if userIDFlag != "" {
		userID = userIDFlag
	}

	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return fmt.Errorf("parsing --key: %w", err)
	}
	if len(key) != 16 {
		return fmt.Errorf("--key must be 16 bytes (32 hex characters), got %d bytes", len(key))
	}
	var key16 [16]byte
	copy(key16[:], key)

	message, err := hex.DecodeString(messageHex)
	if err != nil {
		return fmt.Errorf("parsing --message: %w", err)
	}

	db, err := devicestore.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening state database: %w", err)
	}
	defer db.Close()

	state, err := db.Load(userID, key16)
	if err != nil {
		state = deviceaead.NewState([12]byte{}, key16)
	}

	record, err := deviceaead.Protect(userID, state, deviceaead.AesGcm128, message)
	if err != nil {
		return fmt.Errorf("protecting message: %w", err)
	}

	if err := db.Save(userID, state); err != nil {
		return fmt.Errorf("persisting state: %w", err)
	}

	fmt.Println(hex.EncodeToString(record))

	if cfg.Telemetry.Enabled && cfg.Telemetry.PubEndpoint != "" {
		pub, err := telemetry.NewPublisher(cfg.Telemetry.PubEndpoint)
		if err != nil {
			return fmt.Errorf("opening telemetry publisher: %w", err)
		}
		defer pub.Close()
		if err := pub.Publish(userID, record); err != nil {
			return fmt.Errorf("publishing telemetry: %w", err)
		}
	}

	return nil
}
