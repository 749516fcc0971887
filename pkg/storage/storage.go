// Package storage is the persisted key/value capability shared by the HTTP client and the
// session store.
package storage

// Keys persisted by the client.
const (
	TokenKey   = "token"
	UserKey    = "user"
	CompanyKey = "company"
	ThemeKey   = "theme"
)

// Storage is a string-keyed store. Implementations are safe for concurrent use; concurrent
// writers to one key resolve last-write-wins.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string) error
}
