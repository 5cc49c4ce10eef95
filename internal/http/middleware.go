package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gorilla/sessions"
	"github.com/rs/cors"

	domainauth "github.com/target/wardrobe/internal/domain/auth"
	apperrors "github.com/target/wardrobe/internal/errors"
	"github.com/target/wardrobe/internal/observability/metrics"
	"github.com/target/wardrobe/internal/websession"
)

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.InfoContext(r.Context(), "http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *respWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *respWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *respWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler { //nolint:errorlint // sentinel compared by identity, as net/http does
						panic(err)
					}
					logger.ErrorContext(r.Context(), "panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// routeLabel carries the matched route pattern back out to the Metrics middleware.
type routeLabel struct{ pattern string }

type routeLabelKey struct{}

// labelRoute records pattern as the metrics label for requests served by next.
func labelRoute(pattern string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l, ok := r.Context().Value(routeLabelKey{}).(*routeLabel); ok {
			l.pattern = pattern
		}
		next.ServeHTTP(w, r)
	})
}

// Metrics returns a middleware that records request counts, latencies and in-flight requests.
// Requests that match no route are labelled "unmatched" to bound label cardinality.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			done := m.TrackInFlight()
			defer done()

			label := &routeLabel{pattern: "unmatched"}
			r = r.WithContext(context.WithValue(r.Context(), routeLabelKey{}, label))
			start := time.Now()
			ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			m.ObserveHTTP(r.Method, label.pattern, ww.status, time.Since(start))
		})
	}
}

// CORS returns a middleware that allows credentialed requests from the given origins.
func CORS(origins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Content-Type", "X-Requested-With", CSRFHeaderName},
		AllowCredentials: true,
		MaxAge:           600,
	})
	return c.Handler
}

// Session returns a middleware that loads (or starts) the web session and stores it in the
// request context. A session backend failure fails the request with 500.
func Session(store sessions.Store, name string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := store.Get(r, name)
			if err != nil {
				logger.ErrorContext(r.Context(), "session store unavailable", "error", err)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r.WithContext(setSessionInContext(r.Context(), sess)))
		})
	}
}

// PrincipalResolver loads the principal for a user id held in a session.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, userID string) (*domainauth.Principal, error)
}

// IdentityOptions configures the Identity middleware.
type IdentityOptions struct {
	Resolver PrincipalResolver
	Cache    *PrincipalCache // Optional
	Logger   *slog.Logger
}

// Identity returns a middleware that attaches the signed-in principal to the request context.
// A session naming a user that no longer exists is signed out.
func Identity(opts IdentityOptions) func(http.Handler) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := SessionFromContext(r.Context())
			userID := websession.UserID(sess)
			if userID == "" {
				next.ServeHTTP(w, r)
				return
			}

			p, ok := opts.Cache.Get(userID)
			if !ok {
				resolved, err := opts.Resolver.ResolvePrincipal(r.Context(), userID)
				switch {
				case apperrors.IsNotFound(err):
					websession.ClearUserID(sess)
					if saveErr := sess.Save(r, w); saveErr != nil {
						logger.WarnContext(r.Context(), "failed to clear stale session user", "error", saveErr)
					}
					next.ServeHTTP(w, r)
					return
				case err != nil:
					logger.ErrorContext(r.Context(), "resolve identity failed", "user_id", userID, "error", err)
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
				p = *resolved
				opts.Cache.Add(p)
			}
			next.ServeHTTP(w, r.WithContext(SetPrincipalInContext(r.Context(), &p)))
		})
	}
}

// Flash returns a middleware that moves pending flash messages from the session into the
// request context, so each message is rendered exactly once.
func Flash(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := SessionFromContext(r.Context())
			flashes, changed := websession.ConsumeFlashes(sess)
			if changed {
				if err := sess.Save(r, w); err != nil {
					logger.WarnContext(r.Context(), "failed to clear flashes", "error", err)
				}
			}
			next.ServeHTTP(w, r.WithContext(setFlashesInContext(r.Context(), flashes)))
		})
	}
}

// EnsureAuthenticated lets requests with an identity through and redirects all others to /login.
func EnsureAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFromContext(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}
		http.Redirect(w, r, "/login", http.StatusFound)
	})
}

// RequireAuthJSON answers unauthenticated API requests with 401 instead of a redirect.
func RequireAuthJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFromContext(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
	})
}

// Chain applies middleware so that the first argument is the outermost.
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
