// Package session 会话状态存储
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Danigallego24/RutaN/internal/domain/trip"
	"github.com/Danigallego24/RutaN/internal/infrastructure/config"
	"github.com/Danigallego24/RutaN/internal/infrastructure/log"
)

// Store 会话存储
// 同一会话的所有修改串行执行，不同会话并行
type Store struct {
	repo       trip.SessionRepository
	locks      *KeyedMutex
	maxHistory int
	logger     *slog.Logger
}

// NewStore 创建会话存储
func NewStore(repo trip.SessionRepository, cfg *config.SessionConfig) *Store {
	return &Store{
		repo:       repo,
		locks:      NewKeyedMutex(),
		maxHistory: cfg.MaxHistory,
		logger:     log.NewModuleLogger("session", "store"),
	}
}

// loadOrCreate 调用方持有该会话的锁
func (s *Store) loadOrCreate(ctx context.Context, id string) (*trip.Session, bool, error) {
	sess, err := s.repo.Load(ctx, id)
	if err == nil {
		return sess, false, nil
	}
	if !errors.Is(err, trip.ErrSessionNotFound) {
		return nil, false, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	return trip.NewSession(id), true, nil
}

// mutate 加锁读取、修改并写回
func (s *Store) mutate(ctx context.Context, id string, fn func(*trip.Session)) (*trip.Session, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	sess, created, err := s.loadOrCreate(ctx, id)
	if err != nil {
		return nil, err
	}
	if created {
		s.logger.Debug("Session created", "session_id", id)
	}

	fn(sess)
	sess.Touch()

	if err := s.repo.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session %s: %w", id, err)
	}
	return sess.Clone(), nil
}

// Get 获取会话快照，不存在时创建
func (s *Store) Get(ctx context.Context, id string) (*trip.Session, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	sess, created, err := s.loadOrCreate(ctx, id)
	if err != nil {
		return nil, err
	}
	if created {
		if err := s.repo.Save(ctx, sess); err != nil {
			return nil, fmt.Errorf("failed to save session %s: %w", id, err)
		}
		s.logger.Debug("Session created", "session_id", id)
	}
	return sess.Clone(), nil
}

// UpdateTripMemory 写入非空字段
func (s *Store) UpdateTripMemory(ctx context.Context, id string, update trip.TripMemory) (trip.TripMemory, error) {
	sess, err := s.mutate(ctx, id, func(sess *trip.Session) {
		sess.Memory = sess.Memory.Merge(update)
	})
	if err != nil {
		return trip.TripMemory{}, err
	}
	return sess.Memory, nil
}

// FillTripMemory 只填充仍为空的字段
func (s *Store) FillTripMemory(ctx context.Context, id string, attrs trip.Attributes) (trip.TripMemory, error) {
	sess, err := s.mutate(ctx, id, func(sess *trip.Session) {
		sess.Memory = sess.Memory.Fill(attrs)
	})
	if err != nil {
		return trip.TripMemory{}, err
	}
	return sess.Memory, nil
}

// TripMemory 当前旅行记忆
func (s *Store) TripMemory(ctx context.Context, id string) (trip.TripMemory, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return trip.TripMemory{}, err
	}
	return sess.Memory, nil
}

// AppendHistory 追加一条消息
func (s *Store) AppendHistory(ctx context.Context, id string, role trip.Role, text string) error {
	_, err := s.mutate(ctx, id, func(sess *trip.Session) {
		sess.AppendMessage(role, text, s.maxHistory)
	})
	return err
}

// AppendTurn 原子地追加一问一答
func (s *Store) AppendTurn(ctx context.Context, id, userText, assistantText string) error {
	_, err := s.mutate(ctx, id, func(sess *trip.Session) {
		sess.AppendMessage(trip.RoleUser, userText, s.maxHistory)
		sess.AppendMessage(trip.RoleAssistant, assistantText, s.maxHistory)
	})
	return err
}

// History 按时间顺序的历史快照
func (s *Store) History(ctx context.Context, id string) ([]trip.Message, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return sess.History, nil
}

// SetItinerary 整体替换行程
func (s *Store) SetItinerary(ctx context.Context, id string, it *trip.Itinerary) error {
	_, err := s.mutate(ctx, id, func(sess *trip.Session) {
		sess.Itinerary = it.Clone()
	})
	return err
}

// Itinerary 当前行程，没有时返回 nil
func (s *Store) Itinerary(ctx context.Context, id string) (*trip.Itinerary, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return sess.Itinerary, nil
}

// ResetHistory 只清空历史，记忆、行程和待确认状态保留
// 会话不存在时不做任何事
func (s *Store) ResetHistory(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	sess, err := s.repo.Load(ctx, id)
	if errors.Is(err, trip.ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load session %s: %w", id, err)
	}

	sess.History = []trip.Message{}
	sess.Touch()
	if err := s.repo.Save(ctx, sess); err != nil {
		return fmt.Errorf("failed to save session %s: %w", id, err)
	}
	return nil
}

// Pending 待确认状态
func (s *Store) Pending(ctx context.Context, id string) (map[string]any, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return sess.Pending, nil
}

// SetPending 整体替换待确认状态
func (s *Store) SetPending(ctx context.Context, id string, pending map[string]any) error {
	_, err := s.mutate(ctx, id, func(sess *trip.Session) {
		sess.Pending = make(map[string]any, len(pending))
		for k, v := range pending {
			sess.Pending[k] = v
		}
	})
	return err
}

// ClearPending 清空待确认状态
func (s *Store) ClearPending(ctx context.Context, id string) error {
	_, err := s.mutate(ctx, id, func(sess *trip.Session) {
		sess.Pending = map[string]any{}
	})
	return err
}
