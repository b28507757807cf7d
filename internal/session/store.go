package session

import (
	"context"
	"time"

	"github.com/Glenn-2k/holidaze/internal/db"
)

// CLISessionID is the fixed row the command-line client signs in under. Web
// sessions get a random id each.
const CLISessionID = "cli"

// Record is one signed-in session: who, and the token proving it.
type Record struct {
	ID           string
	ProfileName  string
	Email        string
	AccessToken  string
	VenueManager bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Store persists sessions in postgres with the access token encrypted at
// rest.
type Store struct {
	db   *db.DB
	aead *aead
}

func NewStore(d *db.DB, passphrase string) (*Store, error) {
	a, err := newAEAD(passphrase)
	if err != nil {
		return nil, err
	}
	return &Store{db: d, aead: a}, nil
}

func (s *Store) Save(ctx context.Context, rec Record) error {
	enc, err := s.aead.encrypt(rec.AccessToken)
	if err != nil {
		return err
	}
	return s.db.Exec(ctx, `
		INSERT INTO sessions (id, profile_name, email, access_token, venue_manager)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET profile_name=$2, email=$3, access_token=$4, venue_manager=$5, updated_at=now()
	`, rec.ID, rec.ProfileName, rec.Email, enc, rec.VenueManager)
}

func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, profile_name, email, access_token, venue_manager, created_at, updated_at
		FROM sessions WHERE id=$1
	`, id)
	var rec Record
	if err := row.Scan(&rec.ID, &rec.ProfileName, &rec.Email, &rec.AccessToken, &rec.VenueManager, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return Record{}, db.WrapNotFound(err)
	}
	tok, err := s.aead.decrypt(rec.AccessToken)
	if err != nil {
		return Record{}, err
	}
	rec.AccessToken = tok
	return rec, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	return s.db.Exec(ctx, `DELETE FROM sessions WHERE id=$1`, id)
}
