package routes

import (
	"net/http"

	"userdirectory/handlers"
)

// CORS middleware. Origins are configured, not wildcarded, so that
// credentialed browser requests are allowed.
func withCORS(allowedOrigins []string, next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		// Handle preflight request
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func SetupRoutes(userHandler *handlers.UserHandler, uploadDir string, allowedOrigins []string) *http.ServeMux {
	mux := http.NewServeMux()

	cors := func(h http.HandlerFunc) http.Handler {
		return withCORS(allowedOrigins, handlers.RecoverWrapper(h))
	}

	// Collection routes
	mux.Handle("/api/users", cors(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			userHandler.ListUsers(w, r)
		case http.MethodPost:
			userHandler.CreateUser(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))

	// Single-user routes
	mux.Handle("/api/users/", cors(func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Path[len("/api/users/"):]
		if id == "" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch r.Method {
		case http.MethodGet:
			userHandler.GetUser(w, r, id)
		case http.MethodPut:
			userHandler.UpdateUser(w, r, id)
		case http.MethodDelete:
			userHandler.DeleteUser(w, r, id)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))

	// Uploaded images, served read-only
	mux.Handle("/uploads/", withCORS(allowedOrigins,
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir)))))

	return mux
}
