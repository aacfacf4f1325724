package led

import (
	"fmt"
	"os"
	"path/filepath"
)

const sysfsLEDPath = "/sys/class/leds"

// sysfs drives LEDs through the Linux LED class interface.
type sysfs struct {
	root string
	leds map[Channel]string // channel -> sysfs LED name
}

func newSysfs(root string, leds map[Channel]string) *sysfs {
	if root == "" {
		root = sysfsLEDPath
	}
	return &sysfs{root: root, leds: leds}
}

func (s *sysfs) path(ch Channel) (string, error) {
	name, ok := s.leds[ch]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownChannel, ch)
	}
	return filepath.Join(s.root, name), nil
}

// Init switches the kernel trigger off so brightness writes stick.
func (s *sysfs) Init(ch Channel) error {
	ledPath, err := s.path(ch)
	if err != nil {
		return err
	}
	if _, statErr := os.Stat(ledPath); statErr != nil {
		return fmt.Errorf("LED %s not found at %s: %w", ch, ledPath, statErr)
	}
	if err := os.WriteFile(filepath.Join(ledPath, "trigger"), []byte("none"), 0o644); err != nil {
		return fmt.Errorf("failed to set LED trigger: %w", err)
	}
	return s.Set(ch, false)
}

// Set writes the brightness attribute.
func (s *sysfs) Set(ch Channel, on bool) error {
	ledPath, err := s.path(ch)
	if err != nil {
		return err
	}
	value := "0"
	if on {
		value = "1"
	}
	if err := os.WriteFile(filepath.Join(ledPath, "brightness"), []byte(value), 0o644); err != nil {
		return fmt.Errorf("failed to set LED brightness: %w", err)
	}
	return nil
}

// Available returns the configured channels.
func (s *sysfs) Available() []Channel {
	return sortedChannels(s.leds)
}

// present reports whether every configured LED directory exists.
func (s *sysfs) present() bool {
	for ch, name := range s.leds {
		if name == "" {
			return false
		}
		ledPath, _ := s.path(ch)
		if _, err := os.Stat(ledPath); err != nil {
			return false
		}
	}
	return len(s.leds) > 0
}
