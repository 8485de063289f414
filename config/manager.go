package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joho/godotenv"

	"github.com/souze/code-challenge-client/policy"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidProfile  = errors.New("invalid profile")
)

// Transport names accepted in a profile.
const (
	TransportTCP       = "tcp"
	TransportWebSocket = "websocket"
)

// Profile describes one bot: where to connect, who to log in as, and how
// to pick moves.
type Profile struct {
	Name      string `json:"name,omitempty"`
	Server    string `json:"server"`
	Transport string `json:"transport,omitempty"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Policy    string `json:"policy,omitempty"`
	LogFile   string `json:"log_file,omitempty"`
}

// Manager loads and caches bot profiles from a directory of JSON files.
type Manager struct {
	profileDir string
	profiles   map[string]*Profile
	mu         sync.RWMutex
}

// NewManager creates a profile manager rooted at profileDir.
func NewManager(profileDir string) (*Manager, error) {
	if _, err := os.Stat(profileDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("profile directory does not exist: %s", profileDir)
	}

	return &Manager{
		profileDir: profileDir,
		profiles:   make(map[string]*Profile),
	}, nil
}

// Load returns the named profile, reading and validating it on first use.
func (m *Manager) Load(name string) (*Profile, error) {
	m.mu.RLock()
	if p, ok := m.profiles[name]; ok {
		m.mu.RUnlock()
		return p, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring the write lock.
	if p, ok := m.profiles[name]; ok {
		return p, nil
	}

	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename += ".json"
	}

	data, err := os.ReadFile(filepath.Join(m.profileDir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("read profile: %w", err)
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	if p.Name == "" {
		p.Name = name
	}

	ApplyEnv(&p)
	if err := Validate(&p); err != nil {
		return nil, err
	}

	m.profiles[name] = &p
	return &p, nil
}

// List names every profile file in the directory.
func (m *Manager) List() ([]string, error) {
	entries, err := os.ReadDir(m.profileDir)
	if err != nil {
		return nil, fmt.Errorf("read profile directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}
	return names, nil
}

// LoadEnv reads a dotenv file into the process environment. A missing file
// is not an error.
func LoadEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv fills unset profile fields from CHALLENGE_* variables.
func ApplyEnv(p *Profile) {
	if p.Server == "" {
		p.Server = os.Getenv("CHALLENGE_SERVER")
	}
	if p.Username == "" {
		p.Username = os.Getenv("CHALLENGE_USER")
	}
	if p.Password == "" {
		p.Password = os.Getenv("CHALLENGE_PASS")
	}
}

// Validate checks that a profile can actually drive a session.
func Validate(p *Profile) error {
	if p.Username == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidProfile)
	}

	switch p.Transport {
	case "", TransportTCP:
		if _, _, err := net.SplitHostPort(p.Server); err != nil {
			return fmt.Errorf("%w: server %q is not host:port: %v", ErrInvalidProfile, p.Server, err)
		}
	case TransportWebSocket:
		if !strings.HasPrefix(p.Server, "ws://") && !strings.HasPrefix(p.Server, "wss://") {
			return fmt.Errorf("%w: websocket server %q must be a ws:// or wss:// URL", ErrInvalidProfile, p.Server)
		}
	default:
		return fmt.Errorf("%w: unknown transport %q", ErrInvalidProfile, p.Transport)
	}

	if _, err := policy.New(p.Policy, p.Username); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	return nil
}
