// ABOUTME: Charm KV client wrapper used as a backup destination
// ABOUTME: Serializes access and syncs to the charm server after writes

package charm

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
	"github.com/dgraph-io/badger/v3"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("key not found")

// store is the subset of charm's KV used here. Tests swap in plain badger.
type store interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	Keys() ([][]byte, error)
	Sync() error
	Reset() error
}

type Client struct {
	kv     store
	config *Config
	mu     sync.RWMutex
	remote bool
}

// Open connects to the charm KV named AppName on cfg.Host. Charm
// authenticates with the local SSH key, so there is no login step.
func Open(cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	// charm reads the host from the environment when opening the KV
	_ = os.Setenv("CHARM_HOST", cfg.Host)

	db, err := kv.OpenWithDefaults(AppName)
	if err != nil {
		return nil, fmt.Errorf("failed to open charm kv: %w", err)
	}

	c := &Client{kv: db, config: cfg, remote: true}
	if cfg.AutoSync {
		_ = db.Sync()
	}
	return c, nil
}

func (c *Client) Config() *Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

// ID returns the charm account ID for this device's SSH key.
func (c *Client) ID() (string, error) {
	if !c.remote {
		return "local-test", nil
	}
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("failed to create charm client: %w", err)
	}
	return cc.ID()
}

func (c *Client) Sync() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kv.Sync()
}

func (c *Client) Get(key []byte) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, err := c.kv.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	return value, err
}

func (c *Client) Set(key, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.kv.Set(key, value); err != nil {
		return err
	}
	if c.config.AutoSync {
		return c.kv.Sync()
	}
	return nil
}

func (c *Client) Delete(key []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.kv.Delete(key); err != nil {
		return err
	}
	if c.config.AutoSync {
		return c.kv.Sync()
	}
	return nil
}

func (c *Client) Keys() ([][]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.kv.Keys()
}

func (c *Client) KeysWithPrefix(prefix []byte) ([][]byte, error) {
	all, err := c.Keys()
	if err != nil {
		return nil, err
	}
	var matched [][]byte
	for _, k := range all {
		if bytes.HasPrefix(k, prefix) {
			matched = append(matched, k)
		}
	}
	return matched, nil
}

// Reset wipes every key in the local KV.
func (c *Client) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kv.Reset()
}
