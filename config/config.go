package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// Page identifies the screen shown in the main panel
type Page int

const (
	PageHome Page = iota
	PageMemberships
	PageMember
	PageWorkingGroups
	PageCouncil
	PageForum
	PageSettings
)

func (p Page) String() string {
	switch p {
	case PageHome:
		return "Home"
	case PageMemberships:
		return "Memberships"
	case PageMember:
		return "Member"
	case PageWorkingGroups:
		return "Working Groups"
	case PageCouncil:
		return "Council"
	case PageForum:
		return "Forum"
	case PageSettings:
		return "Settings"
	}
	return "Unknown"
}

// EndpointKind says which service an endpoint points at
type EndpointKind string

const (
	KindNode   EndpointKind = "node"
	KindQuery  EndpointKind = "query"
	KindSigner EndpointKind = "signer"
)

// Config represents the application configuration
type Config struct {
	Endpoints     []Endpoint     `json:"endpoints"`
	Accounts      []AccountEntry `json:"accounts"`
	ActiveMember  string         `json:"active_member,omitempty"`
	Logger        bool           `json:"logger"`
	TokenSymbol   string         `json:"token_symbol"`
	TokenDecimals int32          `json:"token_decimals"`
}

// Endpoint is a node, query node or signer URL
type Endpoint struct {
	Name   string       `json:"name"`
	URL    string       `json:"url"`
	Kind   EndpointKind `json:"kind"`
	Active bool         `json:"active"`

	// Set by ApplyEnv and never written back to the file.
	Transient bool `json:"-"` // added for an override
	FromEnv   bool `json:"-"` // activated by an override
	WasActive bool `json:"-"` // active in the file before the override
}

// AccountEntry is an account whose memberships are listed
type AccountEntry struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
}

// DefaultPath returns ~/.pioneer-tui.json
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".pioneer-tui.json")
}

// Load reads the config from the specified path
func Load(path string) Config {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}
	}

	return cfg
}

// Save writes the config to the specified path
func Save(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// DefaultConfig returns a new configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		Endpoints: []Endpoint{
			{Name: "Joystream mainnet", URL: "wss://rpc.joystream.org", Kind: KindNode, Active: true},
			{Name: "Local node", URL: "ws://127.0.0.1:9944", Kind: KindNode},
			{Name: "Joystream query node", URL: "https://query.joystream.org/graphql", Kind: KindQuery, Active: true},
			{Name: "Local query node", URL: "http://localhost:8081/graphql", Kind: KindQuery},
			{Name: "Local signer", URL: "http://127.0.0.1:9955", Kind: KindSigner, Active: true},
		},
		Accounts:      []AccountEntry{},
		Logger:        false,
		TokenSymbol:   "JOY",
		TokenDecimals: 10,
	}
}

// LoadOrCreate loads config from path, or creates a default one if not found
func LoadOrCreate(path string) Config {
	data, err := os.ReadFile(path)
	if err != nil {
		cfg := DefaultConfig()
		_ = Save(path, cfg)
		return cfg
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig()
	}
	if cfg.TokenSymbol == "" {
		cfg.TokenSymbol = "JOY"
	}
	if cfg.TokenDecimals == 0 {
		cfg.TokenDecimals = 10
	}
	return cfg
}

// Filter returns the endpoints of one kind, keeping their order
func Filter(list []Endpoint, kind EndpointKind) []Endpoint {
	var out []Endpoint
	for _, e := range list {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// ActiveEndpoint returns the active endpoint of kind
func ActiveEndpoint(list []Endpoint, kind EndpointKind) (Endpoint, bool) {
	for _, e := range list {
		if e.Kind == kind && e.Active {
			return e, true
		}
	}
	return Endpoint{}, false
}

// Activate marks list[idx] active and every other endpoint of its kind inactive
func Activate(list []Endpoint, idx int) []Endpoint {
	if idx < 0 || idx >= len(list) {
		return list
	}
	out := append([]Endpoint(nil), list...)
	kind := out[idx].Kind
	for i := range out {
		if out[i].Kind == kind {
			out[i].Active = i == idx
		}
	}
	return out
}

type envOverrides struct {
	NodeURL      string `env:"PIONEER_NODE_URL"`
	QueryNodeURL string `env:"PIONEER_QUERY_NODE_URL"`
	SignerURL    string `env:"PIONEER_SIGNER_URL"`
	Log          *bool  `env:"PIONEER_LOG"`
}

// ApplyEnv overrides the active endpoints and the logger flag from the
// environment. An override URL becomes the active endpoint of its kind.
func ApplyEnv(cfg *Config) error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	cfg.Endpoints = override(cfg.Endpoints, KindNode, o.NodeURL)
	cfg.Endpoints = override(cfg.Endpoints, KindQuery, o.QueryNodeURL)
	cfg.Endpoints = override(cfg.Endpoints, KindSigner, o.SignerURL)
	if o.Log != nil {
		cfg.Logger = *o.Log
	}
	return nil
}

func override(list []Endpoint, kind EndpointKind, url string) []Endpoint {
	if url == "" {
		return list
	}
	list = append([]Endpoint(nil), list...)
	idx := -1
	for i := range list {
		if list[i].Kind != kind {
			continue
		}
		list[i].WasActive = list[i].Active
		if idx < 0 && list[i].URL == url {
			idx = i
		}
	}
	if idx < 0 {
		list = append(list, Endpoint{Name: "Environment", URL: url, Kind: kind, Transient: true})
		idx = len(list) - 1
	}
	list = Activate(list, idx)
	list[idx].FromEnv = true
	return list
}

// Persisted returns the endpoints as they belong in the config file: endpoints
// added by ApplyEnv are dropped and, for every kind an override is still
// active for, the activation from the file is restored.
func Persisted(list []Endpoint) []Endpoint {
	overridden := map[EndpointKind]bool{}
	for _, e := range list {
		if e.Active && e.FromEnv {
			overridden[e.Kind] = true
		}
	}
	out := make([]Endpoint, 0, len(list))
	for _, e := range list {
		if e.Transient {
			continue
		}
		if overridden[e.Kind] {
			e.Active = e.WasActive
		}
		e.FromEnv, e.WasActive = false, false
		out = append(out, e)
	}
	return out
}
