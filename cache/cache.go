// Package cache persists discovered GATT profiles between connections so a
// client can skip discovery on a peer it has already seen.
package cache

import (
	"io/ioutil"
	"os"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	ble "github.com/ComputeCycles/Bluetooth"
)

type gattCache struct {
	filename string
	mu       sync.RWMutex
}

// New returns a file-backed ble.GattCache. The file holds one JSON document
// mapping peer addresses to profiles and is created on first store.
func New(filename string) ble.GattCache {
	return &gattCache{filename: filename}
}

func (gc *gattCache) Store(mac ble.Addr, profile ble.Profile, replace bool) error {
	gc.mu.Lock()
	defer gc.mu.Unlock()

	entries, err := gc.load()
	if err != nil {
		return err
	}
	if _, ok := entries[mac.String()]; ok && !replace {
		return errors.Errorf("cache already contains gatt db for %s", mac.String())
	}
	entries[mac.String()] = profile

	return gc.flush(entries)
}

func (gc *gattCache) Load(mac ble.Addr) (ble.Profile, error) {
	gc.mu.RLock()
	defer gc.mu.RUnlock()

	entries, err := gc.load()
	if err != nil {
		return ble.Profile{}, err
	}
	p, ok := entries[mac.String()]
	if !ok {
		return ble.Profile{}, errors.Errorf("gatt db for %s not found in cache", mac.String())
	}
	return p, nil
}

func (gc *gattCache) Clear() error {
	gc.mu.Lock()
	defer gc.mu.Unlock()

	if err := os.Remove(gc.filename); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "can't clear cache")
	}
	return nil
}

func (gc *gattCache) load() (map[string]ble.Profile, error) {
	in, err := ioutil.ReadFile(gc.filename)
	if os.IsNotExist(err) {
		return map[string]ble.Profile{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "can't read cache")
	}

	var entries map[string]ble.Profile
	if err := jsoniter.Unmarshal(in, &entries); err != nil {
		return nil, errors.Wrap(err, "can't unmarshal cache")
	}
	return entries, nil
}

func (gc *gattCache) flush(entries map[string]ble.Profile) error {
	out, err := jsoniter.Marshal(entries)
	if err != nil {
		return errors.Wrap(err, "can't marshal cache")
	}
	return ioutil.WriteFile(gc.filename, out, 0644)
}
