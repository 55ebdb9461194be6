package lab

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"
)

// stateVersion is written into every saved file. Older files load with a
// warning; newer files are refused.
const stateVersion = 2

// Errors returned when loading or saving a state file.
var (
	ErrCorruptState  = errors.New("lab: state file hash mismatch")
	ErrVersionTooNew = errors.New(
		"lab: state file written by a newer version")
	ErrStaleState = errors.New(
		"lab: state file changed on disk since it was loaded")
)

// statePayload is the hashed portion of a state file.
type statePayload struct {
	Version     int          `json:"version"`
	Hosts       []Host       `json:"hosts"`
	Benches     []Bench      `json:"benches"`
	Instruments []Instrument `json:"instruments"`
	Devices     []Device     `json:"devices"`
	Connections []Connection `json:"connections"`
}

// stateFile is the full on-disk format. User and SavedAt are informational
// and excluded from the hash.
type stateFile struct {
	SHA256  string `json:"sha256"`
	User    string `json:"user"`
	SavedAt string `json:"saved_at"`

	statePayload
}

func hashPayload(p statePayload) string {
	encoded, err := json.MarshalIndent(p, "", "    ")
	if err != nil {
		panic(err)
	}

	sum := sha256.Sum256(encoded)

	return hex.EncodeToString(sum[:])
}

func (s *State) payload() statePayload {
	return statePayload{
		Version:     stateVersion,
		Hosts:       append([]Host(nil), s.hosts...),
		Benches:     append([]Bench(nil), s.benches...),
		Instruments: append([]Instrument(nil), s.instruments...),
		Devices:     append([]Device(nil), s.devices...),
		Connections: append([]Connection(nil), s.connections...),
	}
}

// LoadState reads a state file, verifies its hash, and restores the state.
func LoadState(filename string) (*State, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var file stateFile

	err = json.Unmarshal(raw, &file)
	if err != nil {
		return nil, fmt.Errorf("lab: cannot decode %s: %w", filename, err)
	}

	if file.Version > stateVersion {
		return nil, fmt.Errorf("%w: file version %d, software version %d",
			ErrVersionTooNew, file.Version, stateVersion)
	}

	if file.Version < stateVersion {
		log.Printf("lab: loading older state version %d", file.Version)
	}

	if hashPayload(file.statePayload) != file.SHA256 {
		return nil, fmt.Errorf("%w: %s", ErrCorruptState, filename)
	}

	return &State{
		hosts:       file.Hosts,
		benches:     file.Benches,
		instruments: file.Instruments,
		devices:     file.Devices,
		connections: file.Connections,
		loadedHash:  file.SHA256,
	}, nil
}

// SaveState writes the state to a JSON file. If the file already exists, it
// must still carry the hash recorded when this state was loaded; a mismatch
// means someone else saved in between, and the save is refused with
// ErrStaleState. The previous file is kept as a timestamped backup.
func (s *State) SaveState(filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload := s.payload()
	hash := hashPayload(payload)

	onDisk, err := LoadState(filename)

	switch {
	case errors.Is(err, os.ErrNotExist):
		return s.writeFile(filename, payload, hash, false)
	case err != nil:
		return err
	}

	if onDisk.loadedHash == hash {
		log.Printf("lab: no changes in state, nothing to do")
		return nil
	}

	if onDisk.loadedHash != s.loadedHash {
		return fmt.Errorf("%w: %s", ErrStaleState, filename)
	}

	return s.writeFile(filename, payload, hash, true)
}

func (s *State) writeFile(
	filename string,
	payload statePayload,
	hash string,
	backup bool,
) error {
	if backup {
		err := backupFile(filename)
		if err != nil {
			return err
		}
	}

	file := stateFile{
		SHA256:       hash,
		User:         currentUser(),
		SavedAt:      time.Now().Format(time.RFC3339),
		statePayload: payload,
	}

	encoded, err := json.MarshalIndent(file, "", "    ")
	if err != nil {
		panic(err)
	}

	err = os.WriteFile(filename, encoded, 0o644)
	if err != nil {
		return err
	}

	s.loadedHash = hash

	return nil
}

func backupFile(filename string) error {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)
	stamp := time.Now().Format("2006-01-02T15-04-05")
	backup := fmt.Sprintf("%s_%s%s", stem, stamp, ext)

	return os.WriteFile(backup, raw, 0o644)
}

func currentUser() string {
	u, err := user.Current()
	if err != nil {
		return ""
	}

	return u.Username
}
