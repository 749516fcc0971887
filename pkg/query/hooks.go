package query

import (
	"context"
	"fmt"

	"rental-backend/pkg/api"
	"rental-backend/pkg/client"

	"go.uber.org/zap"
)

const (
	UsersKey      = "/users"
	PropertiesKey = "/properties"
	BookingsKey   = "/bookings"
)

// UserKey is empty when id is absent, which suppresses the fetch.
func UserKey(id uint) string {
	if id == 0 {
		return ""
	}
	return fmt.Sprintf("/users/%d", id)
}

func PropertyKey(id uint) string {
	if id == 0 {
		return ""
	}
	return fmt.Sprintf("/properties/%d", id)
}

func FavoritesKey(userID uint) string {
	if userID == 0 {
		return ""
	}
	return fmt.Sprintf("/users/%d/favorites", userID)
}

// Result is the view a caller renders from.
type Result[T any] struct {
	Data      T
	IsLoading bool
	IsError   bool
	Err       error
}

// Mutable is a Result whose key can be revalidated on demand.
type Mutable[T any] struct {
	Result[T]
	mutate func(ctx context.Context) Result[T]
}

// Mutate refetches the key and returns the fresh result.
func (m Mutable[T]) Mutate(ctx context.Context) Result[T] {
	if m.mutate == nil {
		return m.Result
	}
	return m.mutate(ctx)
}

// ActionResult reports the outcome of a user-initiated mutation. Failures are values.
type ActionResult struct {
	Success bool
	Error   string
}

type Hooks struct {
	client *client.Client
	cache  *Cache
	log    *zap.Logger
}

func New(c *client.Client, cache *Cache, log *zap.Logger) *Hooks {
	if log == nil {
		log = zap.NewNop()
	}
	if cache == nil {
		cache = NewCache(log)
	}
	return &Hooks{client: c, cache: cache, log: log}
}

func (h *Hooks) Cache() *Cache {
	return h.cache
}

func (h *Hooks) Users(ctx context.Context) Result[[]api.User] {
	return fetchList[api.User](ctx, h, UsersKey)
}

func (h *Hooks) User(ctx context.Context, id uint) Result[*api.User] {
	return fetchOne[api.User](ctx, h, UserKey(id))
}

func (h *Hooks) Properties(ctx context.Context) Result[[]api.Property] {
	return fetchList[api.Property](ctx, h, PropertiesKey)
}

func (h *Hooks) Property(ctx context.Context, id uint) Result[*api.Property] {
	return fetchOne[api.Property](ctx, h, PropertyKey(id))
}

func (h *Hooks) Favorites(ctx context.Context, userID uint) Mutable[[]api.Favorite] {
	key := FavoritesKey(userID)
	return Mutable[[]api.Favorite]{
		Result: fetchList[api.Favorite](ctx, h, key),
		mutate: func(ctx context.Context) Result[[]api.Favorite] {
			return revalidateList[api.Favorite](ctx, h, key)
		},
	}
}

func (h *Hooks) Bookings(ctx context.Context) Mutable[[]api.Booking] {
	return Mutable[[]api.Booking]{
		Result: fetchList[api.Booking](ctx, h, BookingsKey),
		mutate: func(ctx context.Context) Result[[]api.Booking] {
			return revalidateList[api.Booking](ctx, h, BookingsKey)
		},
	}
}

// CancelBooking cancels the booking and, on success, refreshes the bookings list.
func (h *Hooks) CancelBooking(ctx context.Context, id uint) ActionResult {
	path := fmt.Sprintf("/bookings/%d/cancel", id)
	if err := h.client.Post(ctx, path, nil, nil); err != nil {
		h.log.Info("cancel booking failed", zap.Uint("booking_id", id), zap.Error(err))
		return ActionResult{Error: client.Message(err)}
	}
	h.revalidate(ctx, BookingsKey)
	return ActionResult{Success: true}
}

// ToggleFavorite flips the favorite state of propertyID and refreshes the user's favorites.
func (h *Hooks) ToggleFavorite(ctx context.Context, userID, propertyID uint) ActionResult {
	var out api.ToggleFavoriteResult
	body := map[string]uint{"property_id": propertyID}
	if err := h.client.Post(ctx, "/favorites/toggle", body, &out); err != nil {
		h.log.Info("toggle favorite failed", zap.Uint("property_id", propertyID), zap.Error(err))
		return ActionResult{Error: client.Message(err)}
	}
	h.revalidate(ctx, FavoritesKey(userID))
	return ActionResult{Success: true}
}

// UpdateUser sends a partial update and refreshes the user's key.
func (h *Hooks) UpdateUser(ctx context.Context, id uint, patch api.UserPatch) ActionResult {
	if err := h.client.Put(ctx, UserKey(id), patch, nil); err != nil {
		return ActionResult{Error: client.Message(err)}
	}
	h.revalidate(ctx, UserKey(id))
	return ActionResult{Success: true}
}

func (h *Hooks) revalidate(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if st, ok := h.cache.Revalidate(ctx, key); ok && st.Err != nil {
		h.log.Debug("revalidation failed", zap.String("key", key), zap.Error(st.Err))
	}
}

func (h *Hooks) getter(key string, newOut func() any) Fetcher {
	return func(ctx context.Context) (any, error) {
		out := newOut()
		if err := h.client.Get(ctx, key, out); err != nil {
			return nil, err
		}
		return out, nil
	}
}

func fetchList[E any](ctx context.Context, h *Hooks, key string) Result[[]E] {
	st := h.cache.Fetch(ctx, key, h.getter(key, func() any { return &[]E{} }))
	return listResult[E](st)
}

func revalidateList[E any](ctx context.Context, h *Hooks, key string) Result[[]E] {
	st, _ := h.cache.Revalidate(ctx, key)
	return listResult[E](st)
}

func fetchOne[T any](ctx context.Context, h *Hooks, key string) Result[*T] {
	st := h.cache.Fetch(ctx, key, h.getter(key, func() any { return new(T) }))
	r := Result[*T]{IsLoading: st.Loading, IsError: st.Err != nil, Err: st.Err}
	if v, ok := st.Data.(*T); ok {
		r.Data = v
	}
	return r
}

func listResult[E any](st State) Result[[]E] {
	r := Result[[]E]{Data: []E{}, IsLoading: st.Loading, IsError: st.Err != nil, Err: st.Err}
	if v, ok := st.Data.(*[]E); ok && *v != nil {
		r.Data = *v
	}
	return r
}
