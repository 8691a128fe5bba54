package repository

import (
	"database/sql"
	"errors"

	"userdirectory/models"

	"github.com/lib/pq"
)

type PostgresUserRepo struct {
	DB *sql.DB
}

func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{DB: db}
}

// uniqueViolation is the postgres error code for a unique-constraint hit.
const uniqueViolation = "23505"

func translatePgErr(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrEmailTaken
	}
	return err
}

func (r *PostgresUserRepo) GetAll() ([]*models.User, error) {
	rows, err := r.DB.Query(`
		SELECT id, name, email, password_hash, profile_image_path
		FROM users
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *PostgresUserRepo) GetByID(id int64) (*models.User, error) {
	return r.getOne(`
		SELECT id, name, email, password_hash, profile_image_path
		FROM users
		WHERE id=$1
	`, id)
}

func (r *PostgresUserRepo) GetByEmail(email string) (*models.User, error) {
	return r.getOne(`
		SELECT id, name, email, password_hash, profile_image_path
		FROM users
		WHERE email=$1
	`, email)
}

func (r *PostgresUserRepo) EmailTaken(email string, excludeID int64) (bool, error) {
	var taken bool
	err := r.DB.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM users WHERE email=$1 AND id<>$2)
	`, email, excludeID).Scan(&taken)
	return taken, err
}

func (r *PostgresUserRepo) Create(user *models.User) error {
	err := r.DB.QueryRow(`
		INSERT INTO users (name, email, password_hash, profile_image_path)
		VALUES ($1, $2, $3, NULLIF($4, ''))
		RETURNING id
	`, user.Name, user.Email, user.PasswordHash, user.ProfileImagePath).Scan(&user.ID)
	return translatePgErr(err)
}

func (r *PostgresUserRepo) Update(user *models.User) error {
	_, err := r.DB.Exec(`
		UPDATE users
		SET name=$1, email=$2, password_hash=$3, profile_image_path=NULLIF($4, '')
		WHERE id=$5
	`, user.Name, user.Email, user.PasswordHash, user.ProfileImagePath, user.ID)
	return translatePgErr(err)
}

func (r *PostgresUserRepo) Delete(id int64) (bool, error) {
	res, err := r.DB.Exec(`DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *PostgresUserRepo) getOne(query string, arg interface{}) (*models.User, error) {
	user, err := scanUser(r.DB.QueryRow(query, arg))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(s scanner) (*models.User, error) {
	user := &models.User{}
	var imagePath sql.NullString
	if err := s.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &imagePath); err != nil {
		return nil, err
	}
	user.ProfileImagePath = imagePath.String
	return user, nil
}
