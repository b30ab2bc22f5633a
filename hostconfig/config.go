// Package hostconfig parses and validates the host-side connection
// configuration: where to connect, which auth method to present, and the
// canned chat/clipboard behavior a front-end wants out of the box. It only
// parses and validates a YAML document already in memory; reading it from
// disk or a flag set stays the front-end's job.
package hostconfig

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// HostConfig is the full set of host-side knobs a front-end feeds into a
// connection attempt.
type HostConfig struct {
	ConnectAddr             string     `yaml:"connect_addr"`
	Verbose                 bool       `yaml:"verbose"`
	Auth                    string     `yaml:"auth"`
	Chat                    *ChatEntry `yaml:"chat"`
	OnSyncMessage           string     `yaml:"on_sync_message"`
	OnClipboardReadyMessage string     `yaml:"on_clipboard_ready_message"`
}

// ChatEntry configures the identity advertised on the chat channel.
// `<friendly_name>[,<status_text>]` is also accepted as a flat scalar, so a
// front-end can take it straight from a flag the same shape as --chat-config
// in the original CLI.
type ChatEntry struct {
	FriendlyName string `yaml:"friendly_name"`
	StatusText   string `yaml:"status_text"`
}

// UnmarshalYAML accepts either the struct form or a bare
// "name,status" scalar, mirroring the two shapes a front-end might hand in.
func (c *ChatEntry) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		parsed, err := ParseChatDescriptor(value.Value)
		if err != nil {
			return err
		}
		*c = *parsed
		return nil
	}
	type plain ChatEntry
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*c = ChatEntry(p)
	return nil
}

// AuthMethod names a supported authentication method.
type AuthMethod string

const (
	AuthMethodNone AuthMethod = "none"
	AuthMethodPFP  AuthMethod = "pfp"
)

// AuthDescriptor is the parsed form of HostConfig.Auth.
type AuthDescriptor struct {
	Method       AuthMethod
	FriendlyName string
	FriendlyText string
}

// Parse unmarshals a YAML document into a HostConfig and validates it.
func Parse(data []byte) (*HostConfig, error) {
	var cfg HostConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing host config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating host config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the fields that don't already get checked as a side
// effect of parsing the auth descriptor.
func (c *HostConfig) Validate() error {
	if strings.TrimSpace(c.ConnectAddr) == "" {
		return fmt.Errorf("connect_addr is required")
	}
	if _, err := c.ParsedAuth(); err != nil {
		return err
	}
	return nil
}

// ParsedAuth parses the `auth` field, accepting "pfp:<friendly_name>,<friendly_text>"
// or "none" (case-insensitive method name, as in the original CLI syntax).
func (c *HostConfig) ParsedAuth() (AuthDescriptor, error) {
	return ParseAuthDescriptor(c.Auth)
}

// ParseAuthDescriptor parses a standalone auth descriptor string.
func ParseAuthDescriptor(s string) (AuthDescriptor, error) {
	s = strings.TrimSpace(s)

	method, body := s, ""
	if pos := strings.IndexByte(s, ':'); pos >= 0 {
		method, body = strings.TrimSpace(s[:pos]), s[pos+1:]
	}

	switch strings.ToLower(method) {
	case "pfp":
		args := strings.SplitN(body, ",", 2)
		if len(args) < 2 {
			return AuthDescriptor{}, fmt.Errorf("invalid PFP arguments in %q: syntax is pfp:<friendly_name>,<friendly_text>", s)
		}
		return AuthDescriptor{
			Method:       AuthMethodPFP,
			FriendlyName: strings.TrimSpace(args[0]),
			FriendlyText: strings.TrimSpace(args[1]),
		}, nil
	case "none":
		return AuthDescriptor{Method: AuthMethodNone}, nil
	default:
		return AuthDescriptor{}, fmt.Errorf("unknown authentication method %q: available methods are pfp, none", method)
	}
}

// ParseChatDescriptor parses a standalone `<friendly_name>[,<status_text>]` descriptor.
func ParseChatDescriptor(s string) (*ChatEntry, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("chat descriptor: friendly name missing")
	}
	parts := strings.SplitN(s, ",", 2)
	entry := &ChatEntry{FriendlyName: strings.TrimSpace(parts[0])}
	if len(parts) == 2 {
		entry.StatusText = strings.TrimSpace(parts[1])
	}
	return entry, nil
}
