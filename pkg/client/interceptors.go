package client

import (
	"net/http"

	"rental-backend/pkg/storage"

	"go.uber.org/zap"
)

// BearerToken attaches "Authorization: Bearer <token>" when storage holds a token. Without a
// token the request is left unchanged.
func BearerToken(store storage.Storage) RequestInterceptor {
	return func(req *http.Request) error {
		if token, ok := store.Get(storage.TokenKey); ok && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return nil
	}
}

// SessionTeardown reacts to 401 by dropping the stored session keys and navigating to the
// login screen. The error still reaches the caller. Other outcomes pass through untouched.
func SessionTeardown(store storage.Storage, nav Navigator, log *zap.Logger) ResponseInterceptor {
	if log == nil {
		log = zap.NewNop()
	}
	return func(resp *http.Response, err error) error {
		if !IsStatus(err, http.StatusUnauthorized) {
			return err
		}

		path := ""
		if resp != nil && resp.Request != nil {
			path = resp.Request.URL.Path
		}
		log.Info("session rejected by server, signing out", zap.String("path", path))
		for _, key := range []string{storage.TokenKey, storage.UserKey, storage.CompanyKey} {
			if rmErr := store.Remove(key); rmErr != nil {
				log.Warn("could not clear session key", zap.String("key", key), zap.Error(rmErr))
			}
		}
		if nav != nil {
			nav.Navigate(LoginPath)
		}
		return err
	}
}
