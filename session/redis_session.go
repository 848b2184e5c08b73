package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/redis/go-redis/v9"
)

// Store holds in-progress passkey ceremonies between their begin and finish
// calls.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store { return &Store{rdb: rdb, ttl: ttl} }

func regKey(username string) string   { return fmt.Sprintf("webauthn:reg:%s", username) }
func authKey(sid string) string       { return fmt.Sprintf("webauthn:auth:%s", sid) }
func regTokenKey(token string) string { return fmt.Sprintf("webauthn:reg:inv:%s", token) }

func (s *Store) save(ctx context.Context, k string, sd *webauthn.SessionData) error {
	b, err := json.Marshal(sd)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, k, b, s.ttl).Err()
}

func (s *Store) load(ctx context.Context, k string) (*webauthn.SessionData, error) {
	b, err := s.rdb.Get(ctx, k).Bytes()
	if err != nil {
		return nil, err
	}
	var sd webauthn.SessionData
	if err := json.Unmarshal(b, &sd); err != nil {
		return nil, err
	}
	return &sd, nil
}

func (s *Store) del(ctx context.Context, k string) { _ = s.rdb.Del(ctx, k).Err() }

// Adding a passkey to an existing account.
func (s *Store) SaveReg(ctx context.Context, username string, sd *webauthn.SessionData) error {
	return s.save(ctx, regKey(username), sd)
}

func (s *Store) LoadReg(ctx context.Context, username string) (*webauthn.SessionData, error) {
	return s.load(ctx, regKey(username))
}

func (s *Store) DelReg(ctx context.Context, username string) { s.del(ctx, regKey(username)) }

// Login.
func (s *Store) SaveAuth(ctx context.Context, sid string, sd *webauthn.SessionData) error {
	return s.save(ctx, authKey(sid), sd)
}

func (s *Store) LoadAuth(ctx context.Context, sid string) (*webauthn.SessionData, error) {
	return s.load(ctx, authKey(sid))
}

func (s *Store) DelAuth(ctx context.Context, sid string) { s.del(ctx, authKey(sid)) }

// Invite-based registration, keyed by the invite token.
func (s *Store) SaveRegByToken(ctx context.Context, token string, sd *webauthn.SessionData) error {
	return s.save(ctx, regTokenKey(token), sd)
}

func (s *Store) LoadRegByToken(ctx context.Context, token string) (*webauthn.SessionData, error) {
	return s.load(ctx, regTokenKey(token))
}

func (s *Store) DelRegByToken(ctx context.Context, token string) { s.del(ctx, regTokenKey(token)) }
