// Package store persists the durable pieces of the app — cart, favorites,
// order log and the view preference — as per-key JSON files under the user
// config directory.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"event-catalog-cli/model"
)

// Durable keys, matching the original web app's localStorage so the data
// shapes stay interchangeable.
const (
	keyFavorites = "favEvents"
	keyCart      = "cart"
	keyOrders    = "orders"
	keyView      = "view"
)

// Store is a typed key-value wrapper. Reads never fail: an absent or corrupt
// payload degrades to the key's empty default. Writes are whole-file
// overwrites, last writer wins.
type Store struct {
	dir string
}

func Open() (*Store, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	return &Store{dir: filepath.Join(dir, "event-catalog-cli")}, nil
}

// OpenAt roots the store at an explicit directory.
func OpenAt(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Cart() []model.CartLine {
	return load[[]model.CartLine](s, keyCart)
}

func (s *Store) SaveCart(cart []model.CartLine) error {
	if cart == nil {
		cart = []model.CartLine{}
	}
	return save(s, keyCart, cart)
}

func (s *Store) Orders() []model.OrderRecord {
	return load[[]model.OrderRecord](s, keyOrders)
}

// AppendOrder adds one record to the order log. The log is append-only; no
// other code path rewrites it.
func (s *Store) AppendOrder(order model.OrderRecord) error {
	return save(s, keyOrders, append(s.Orders(), order))
}

// Favorites returns the favorite event ids as a set. The durable encoding is
// a JSON id list.
func (s *Store) Favorites() map[string]bool {
	ids := load[[]string](s, keyFavorites)
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id != "" {
			set[id] = true
		}
	}
	return set
}

func (s *Store) SaveFavorites(set map[string]bool) error {
	ids := make([]string, 0, len(set))
	for id, ok := range set {
		if ok && id != "" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return save(s, keyFavorites, ids)
}

// ToggleFavorite flips id's membership and reports whether it is now a
// favorite.
func (s *Store) ToggleFavorite(id string) (bool, error) {
	set := s.Favorites()
	if set[id] {
		delete(set, id)
	} else {
		set[id] = true
	}
	return set[id], s.SaveFavorites(set)
}

func (s *Store) ViewMode() model.ViewMode {
	mode := model.ViewMode(load[string](s, keyView))
	if !mode.Valid() {
		return model.ViewGrid
	}
	return mode
}

func (s *Store) SaveViewMode(mode model.ViewMode) error {
	return save(s, keyView, string(mode))
}

func load[T any](s *Store, key string) T {
	var value T
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return value
	}
	if err := json.Unmarshal(data, &value); err != nil {
		// Corruption degrades to the empty default, never an error.
		var zero T
		return zero
	}
	return value
}

func save[T any](s *Store, key string, value T) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(key), payload, 0o644)
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}
