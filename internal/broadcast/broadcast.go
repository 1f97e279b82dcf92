package broadcast

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/baohaus/expeditor/internal/models"
)

// Transport publishes the consolidated state after each extraction
// pass. Exactly one transport is active per process.
type Transport interface {
	Publish(snapshot *models.StateSnapshot) error
	Close() error
}

// ConsoleTransport writes each snapshot to stdout as one JSON line.
type ConsoleTransport struct{}

func (c *ConsoleTransport) Publish(snapshot *models.StateSnapshot) error {
	msg, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encoding state snapshot: %w", err)
	}

	output := fmt.Sprintf("[state] %s\n", string(msg))
	_, err = os.Stdout.Write([]byte(output))
	if err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}

	// Try to sync, but don't return an error if it fails
	_ = os.Stdout.Sync()

	return nil
}

func (c *ConsoleTransport) Close() error { return nil }

// FileTransport appends snapshots to a file as JSON lines.
type FileTransport struct {
	file *os.File
}

func NewFileTransport(path string) (*FileTransport, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening broadcast file %s: %w", path, err)
	}
	return &FileTransport{file: file}, nil
}

func (f *FileTransport) Publish(snapshot *models.StateSnapshot) error {
	msg, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encoding state snapshot: %w", err)
	}
	if _, err := f.file.Write(msg); err != nil {
		return fmt.Errorf("writing state snapshot: %w", err)
	}
	_, err = f.file.WriteString("\n")
	return err
}

func (f *FileTransport) Close() error {
	return f.file.Close()
}

// ForConfig picks the transport the configuration asks for.
func ForConfig(cfg *models.Config) (Transport, error) {
	if cfg.KafkaEnabled {
		return NewKafkaTransport(cfg)
	}
	if cfg.OutputFile != "" {
		return NewFileTransport(cfg.OutputFile)
	}
	return &ConsoleTransport{}, nil
}
