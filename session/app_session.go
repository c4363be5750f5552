package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"Gin_postgres_redis_lab_inventory/workflow"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("session not found or expired")

// Store 会话存在 Redis：token → Identity，外加每个 subject 的 token 集合，
// 方便禁用账号时一次性撤销
type Store struct {
	rdb *redis.Client
	ttl time.Duration
	now func() time.Time
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl, now: time.Now}
}

func (s *Store) TTL() time.Duration { return s.ttl }

type Session struct {
	workflow.Identity
	IssuedAt  int64 `json:"iat"`
	ExpiresAt int64 `json:"exp"`
}

func key(token string) string         { return fmt.Sprintf("lab:sess:%s", token) }
func subjectSetKey(sub string) string { return fmt.Sprintf("lab:subject_sessions:%s", sub) }

// Create 生成新 token 并保存
func (s *Store) Create(ctx context.Context, id workflow.Identity) (string, *Session, error) {
	if id.SubjectID == "" || !id.Role.Valid() {
		return "", nil, fmt.Errorf("session: invalid identity %q/%q", id.SubjectID, id.Role)
	}
	token := uuid.NewString()
	now := s.now()
	sess := &Session{
		Identity:  id,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.ttl).Unix(),
	}
	b, err := json.Marshal(sess)
	if err != nil {
		return "", nil, err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, key(token), b, s.ttl)
	pipe.SAdd(ctx, subjectSetKey(id.SubjectID), token)
	// 集合只续期不缩短，否则短会话会让长会话漏掉撤销
	pipe.ExpireNX(ctx, subjectSetKey(id.SubjectID), s.ttl)
	pipe.ExpireGT(ctx, subjectSetKey(id.SubjectID), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", nil, err
	}
	return token, sess, nil
}

func (s *Store) Get(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}
	b, err := s.rdb.Get(ctx, key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *Store) Delete(ctx context.Context, token string) error {
	sess, _ := s.Get(ctx, token) // 忽略失败
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key(token))
	if sess != nil {
		pipe.SRem(ctx, subjectSetKey(sess.SubjectID), token)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// RevokeAllForSubject 禁用成员时撤销其所有会话
func (s *Store) RevokeAllForSubject(ctx context.Context, subjectID string) error {
	tokens, err := s.rdb.SMembers(ctx, subjectSetKey(subjectID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	pipe := s.rdb.TxPipeline()
	for _, t := range tokens {
		pipe.Del(ctx, key(t))
	}
	pipe.Del(ctx, subjectSetKey(subjectID))
	_, err = pipe.Exec(ctx)
	return err
}
