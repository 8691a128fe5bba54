package services

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"userdirectory/models"
	"userdirectory/repository"
	"userdirectory/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// memRepo is an in-memory UserRepository enforcing the same email
// uniqueness the database index would.
type memRepo struct {
	nextID int64
	users  map[int64]*models.User
}

var _ repository.UserRepository = (*memRepo)(nil)

func newMemRepo() *memRepo {
	return &memRepo{users: make(map[int64]*models.User)}
}

func (r *memRepo) GetAll() ([]*models.User, error) {
	var out []*models.User
	for id := int64(1); id <= r.nextID; id++ {
		if u, ok := r.users[id]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memRepo) GetByID(id int64) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *memRepo) GetByEmail(email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memRepo) EmailTaken(email string, excludeID int64) (bool, error) {
	for _, u := range r.users {
		if u.Email == email && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) Create(user *models.User) error {
	if taken, _ := r.EmailTaken(user.Email, 0); taken {
		return repository.ErrEmailTaken
	}
	r.nextID++
	user.ID = r.nextID
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memRepo) Update(user *models.User) error {
	if taken, _ := r.EmailTaken(user.Email, user.ID); taken {
		return repository.ErrEmailTaken
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memRepo) Delete(id int64) (bool, error) {
	if _, ok := r.users[id]; !ok {
		return false, nil
	}
	delete(r.users, id)
	return true, nil
}

// nopStore is an ImageStore for tests that never touch images.
type nopStore struct{}

func (nopStore) Save(string, io.Reader) (string, error) { return "", nil }
func (nopStore) Delete(string) error                    { return nil }

func newService(t *testing.T) (*UserService, *memRepo) {
	t.Helper()
	repo := newMemRepo()
	return NewUserService(repo, nopStore{}), repo
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

func newServiceWithDisk(t *testing.T) (*UserService, *memRepo) {
	t.Helper()
	chdir(t, t.TempDir())
	repo := newMemRepo()
	return NewUserService(repo, storage.NewLocalStore("uploads")), repo
}

func TestUserService_CreatePasswordOpacity(t *testing.T) {
	svc, repo := newService(t)

	resp, err := svc.Create("Ada", "ada@example.com", "secret123", "", nil)
	require.NoError(t, err)
	require.NotZero(t, resp.ID)

	stored := repo.users[resp.ID]
	assert.NotEqual(t, "secret123", stored.PasswordHash)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret123")))

	// Same password, different user: salted hashes must differ yet both verify.
	resp2, err := svc.Create("Bob", "bob@example.com", "secret123", "", nil)
	require.NoError(t, err)
	stored2 := repo.users[resp2.ID]
	assert.NotEqual(t, stored.PasswordHash, stored2.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored2.PasswordHash), []byte("secret123")))
}

func TestUserService_CreateDuplicateEmail(t *testing.T) {
	svc, repo := newService(t)

	_, err := svc.Create("Ada", "ada@example.com", "secret123", "", nil)
	require.NoError(t, err)

	_, err = svc.Create("Imposter", "ada@example.com", "hunter2", "", nil)
	assert.ErrorIs(t, err, repository.ErrEmailTaken)
	assert.Len(t, repo.users, 1, "failed create must not add a record")
}

func TestUserService_GetNotFound(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Get(42)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_ListEmpty(t *testing.T) {
	svc, _ := newService(t)

	users, err := svc.List()
	require.NoError(t, err)
	assert.NotNil(t, users, "empty directory serializes as [], not null")
	assert.Empty(t, users)
}

func TestUserService_UpdatePartial(t *testing.T) {
	svc, repo := newService(t)

	created, err := svc.Create("Ada", "ada@example.com", "secret123", "", nil)
	require.NoError(t, err)
	before := *repo.users[created.ID]

	// All fields empty: nothing changes.
	resp, err := svc.Update(created.ID, "", "", "", "", nil)
	require.NoError(t, err)
	assert.Equal(t, before, *repo.users[created.ID])
	assert.Equal(t, "Ada", resp.Name)

	// Name only; email kept, password hash untouched.
	resp, err = svc.Update(created.ID, "Ada L.", "", "", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", resp.Name)
	assert.Equal(t, "ada@example.com", resp.Email)
	assert.Equal(t, before.PasswordHash, repo.users[created.ID].PasswordHash)
}

func TestUserService_UpdateSameEmailNoConflict(t *testing.T) {
	svc, _ := newService(t)

	created, err := svc.Create("Ada", "ada@example.com", "secret123", "", nil)
	require.NoError(t, err)

	resp, err := svc.Update(created.ID, "Ada L.", "ada@example.com", "", "", nil)
	require.NoError(t, err, "updating to the record's own email is not a conflict")
	assert.Equal(t, "Ada L.", resp.Name)
	assert.Equal(t, "ada@example.com", resp.Email)
}

func TestUserService_UpdateEmailConflict(t *testing.T) {
	svc, repo := newService(t)

	_, err := svc.Create("Ada", "ada@example.com", "secret123", "", nil)
	require.NoError(t, err)
	bob, err := svc.Create("Bob", "bob@example.com", "hunter2", "", nil)
	require.NoError(t, err)
	before := *repo.users[bob.ID]

	_, err = svc.Update(bob.ID, "", "ada@example.com", "", "", nil)
	assert.ErrorIs(t, err, repository.ErrEmailTaken)
	assert.Equal(t, before, *repo.users[bob.ID], "failed update leaves the record unchanged")
}

func TestUserService_UpdateRehashesPassword(t *testing.T) {
	svc, repo := newService(t)

	created, err := svc.Create("Ada", "ada@example.com", "secret123", "", nil)
	require.NoError(t, err)
	oldHash := repo.users[created.ID].PasswordHash

	_, err = svc.Update(created.ID, "", "", "newsecret", "", nil)
	require.NoError(t, err)

	newHash := repo.users[created.ID].PasswordHash
	assert.NotEqual(t, oldHash, newHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(newHash), []byte("newsecret")))
}

func TestUserService_UpdateNotFound(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Update(99, "Nobody", "", "", "", nil)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_ImageSwap(t *testing.T) {
	svc, repo := newServiceWithDisk(t)

	created, err := svc.Create("Ada", "ada@example.com", "secret123", "first.png", bytes.NewReader([]byte("one")))
	require.NoError(t, err)
	oldPath := repo.users[created.ID].ProfileImagePath
	require.NotEmpty(t, oldPath)

	resp, err := svc.Update(created.ID, "", "", "", "second.jpg", bytes.NewReader([]byte("two")))
	require.NoError(t, err)
	require.NotEqual(t, oldPath, resp.ProfileImagePath)

	// New file on disk, old one best-effort removed.
	_, err = os.Stat(filepath.FromSlash(resp.ProfileImagePath))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.FromSlash(oldPath))
	assert.True(t, os.IsNotExist(err))
}

func TestUserService_InvalidImageLeavesRecordUntouched(t *testing.T) {
	svc, repo := newServiceWithDisk(t)

	created, err := svc.Create("Ada", "ada@example.com", "secret123", "", nil)
	require.NoError(t, err)
	before := *repo.users[created.ID]

	_, err = svc.Update(created.ID, "Changed", "", "", "malware.exe", bytes.NewReader([]byte("nope")))
	assert.ErrorIs(t, err, storage.ErrInvalidFormat)
	assert.Equal(t, before, *repo.users[created.ID], "image validation happens before any field mutates")
}

func TestUserService_CreateInvalidImageNoRecord(t *testing.T) {
	svc, repo := newServiceWithDisk(t)

	_, err := svc.Create("Ada", "ada@example.com", "secret123", "script.exe", bytes.NewReader([]byte("nope")))
	assert.ErrorIs(t, err, storage.ErrInvalidFormat)
	assert.Empty(t, repo.users)
}

func TestUserService_DeleteFinality(t *testing.T) {
	svc, repo := newServiceWithDisk(t)

	created, err := svc.Create("Ada", "ada@example.com", "secret123", "pic.webp", bytes.NewReader([]byte("bytes")))
	require.NoError(t, err)
	imagePath := repo.users[created.ID].ProfileImagePath

	require.NoError(t, svc.Delete(created.ID))

	_, err = svc.Get(created.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, statErr := os.Stat(filepath.FromSlash(imagePath))
	assert.True(t, os.IsNotExist(statErr), "image file removed with the record")

	// Second delete reports not-found, never crashes.
	assert.ErrorIs(t, svc.Delete(created.ID), ErrUserNotFound)
}
