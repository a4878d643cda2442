package i18n

import "net/http"

// Middleware injects a localizer into every request context. A per-request
// ?lang= query parameter overrides the configured default.
func Middleware(lang string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqLang := r.URL.Query().Get("lang")
			if reqLang == "" {
				reqLang = lang
			}
			ctx := WithLocalizer(r.Context(), NewLocalizer(reqLang))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
