package routes_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"userdirectory/handlers"
	"userdirectory/models"
	"userdirectory/repository"
	"userdirectory/routes"
	"userdirectory/services"
	"userdirectory/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// emptyRepo satisfies UserRepository with an empty directory; CORS and
// routing behavior do not depend on data.
type emptyRepo struct{}

var _ repository.UserRepository = emptyRepo{}

func (emptyRepo) GetAll() ([]*models.User, error)         { return nil, nil }
func (emptyRepo) GetByID(int64) (*models.User, error)     { return nil, nil }
func (emptyRepo) GetByEmail(string) (*models.User, error) { return nil, nil }
func (emptyRepo) EmailTaken(string, int64) (bool, error)  { return false, nil }
func (emptyRepo) Create(*models.User) error               { return nil }
func (emptyRepo) Update(*models.User) error               { return nil }
func (emptyRepo) Delete(int64) (bool, error)              { return false, nil }

func newMux(t *testing.T, origins []string) http.Handler {
	t.Helper()
	svc := services.NewUserService(emptyRepo{}, storage.NewLocalStore(t.TempDir()))
	return routes.SetupRoutes(&handlers.UserHandler{Service: svc}, t.TempDir(), origins)
}

func TestCORSPreflight(t *testing.T) {
	mux := newMux(t, []string{"http://localhost:5173"})

	req := httptest.NewRequest(http.MethodOptions, "/api/users", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PUT")
}

func TestCORSUnknownOriginNotEchoed(t *testing.T) {
	mux := newMux(t, []string{"http://localhost:5173"})

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Origin", "http://evil.example.com")

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

// chdir mirrors testing.T.Chdir, which requires Go 1.24; this module
// builds with an older toolchain.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}

func TestStaticUploadsServing(t *testing.T) {
	chdir(t, t.TempDir())

	svc := services.NewUserService(emptyRepo{}, storage.NewLocalStore("uploads"))
	mux := routes.SetupRoutes(&handlers.UserHandler{Service: svc}, "uploads", nil)

	rel, err := storage.NewLocalStore("uploads").Save("pic.gif", strings.NewReader("gif bytes"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/"+rel, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gif bytes", rec.Body.String())
}
