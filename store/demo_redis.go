// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/redis/go-redis/v9"

	"github.com/pollapp/pollapp-api/models"
)

// RedisDemoStore keeps demo votes in Redis under demo:{pollID}. Replacing a
// session's votes is a delete followed by an insert and is not atomic.
type RedisDemoStore struct {
	rdb *redis.Client
}

func NewRedisDemoStore(rdb *redis.Client) *RedisDemoStore {
	return &RedisDemoStore{rdb: rdb}
}

func demoPrefix(pollID string) string {
	return "demo:" + pollID
}

func optionVotersKey(pollID, optionID string) string {
	return demoPrefix(pollID) + ":option:" + optionID
}

func demoOptionsKey(pollID string) string {
	return demoPrefix(pollID) + ":options"
}

func demoSessionsKey(pollID string) string {
	return demoPrefix(pollID) + ":sessions"
}

func sessionKey(pollID, sessionID string) string {
	return demoPrefix(pollID) + ":session:" + sessionID
}

func sessionMetaKey(pollID, sessionID string) string {
	return sessionKey(pollID, sessionID) + ":meta"
}

// sessionMeta is the hash stored beside each session's option set.
type sessionMeta struct {
	UserAgent string    `mapstructure:"user_agent"`
	IPHash    string    `mapstructure:"ip_hash"`
	UpdatedAt time.Time `mapstructure:"updated_at"`
}

func decodeSessionMeta(data map[string]string) (sessionMeta, error) {
	var meta sessionMeta
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
		Result:     &meta,
	})
	if err != nil {
		return sessionMeta{}, err
	}
	if err := decoder.Decode(data); err != nil {
		return sessionMeta{}, err
	}
	return meta, nil
}

// InsertDemoVotes adds the session to each option's voter set. SADD
// returning 0 means the (poll, option, session) triple already exists; the
// members added by this call are removed again and ErrDuplicate returned.
func (s *RedisDemoStore) InsertDemoVotes(ctx context.Context, votes []models.DemoVote) error {
	if len(votes) == 0 {
		return nil
	}

	pipe := s.rdb.TxPipeline()
	adds := make([]*redis.IntCmd, len(votes))
	for i, v := range votes {
		adds[i] = pipe.SAdd(ctx, optionVotersKey(v.PollID, v.OptionID), v.SessionID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("add demo votes: %w", err)
	}

	var added []models.DemoVote
	duplicate := false
	for i, cmd := range adds {
		if cmd.Val() == 0 {
			duplicate = true
			continue
		}
		added = append(added, votes[i])
	}

	if duplicate {
		if len(added) > 0 {
			undo := s.rdb.TxPipeline()
			for _, v := range added {
				undo.SRem(ctx, optionVotersKey(v.PollID, v.OptionID), v.SessionID)
			}
			if _, err := undo.Exec(ctx); err != nil {
				return fmt.Errorf("undo demo votes: %w", err)
			}
		}
		return ErrDuplicate
	}

	first := votes[0]
	pipe = s.rdb.TxPipeline()
	for _, v := range votes {
		pipe.SAdd(ctx, demoOptionsKey(v.PollID), v.OptionID)
		pipe.SAdd(ctx, sessionKey(v.PollID, v.SessionID), v.OptionID)
	}
	pipe.SAdd(ctx, demoSessionsKey(first.PollID), first.SessionID)
	pipe.HSet(ctx, sessionMetaKey(first.PollID, first.SessionID), map[string]interface{}{
		"user_agent": first.UserAgent,
		"ip_hash":    first.IPHash,
		"updated_at": first.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("index demo votes: %w", err)
	}
	return nil
}

// ReplaceDemoVotes clears the session and then inserts votes.
func (s *RedisDemoStore) ReplaceDemoVotes(ctx context.Context, pollID, sessionID string, votes []models.DemoVote) error {
	if err := s.DeleteDemoVotes(ctx, pollID, sessionID); err != nil {
		return err
	}
	return s.InsertDemoVotes(ctx, votes)
}

// DeleteDemoVotes removes the session from every option it selected.
func (s *RedisDemoStore) DeleteDemoVotes(ctx context.Context, pollID, sessionID string) error {
	optionIDs, err := s.rdb.SMembers(ctx, sessionKey(pollID, sessionID)).Result()
	if err != nil {
		return fmt.Errorf("load demo session: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	for _, optionID := range optionIDs {
		pipe.SRem(ctx, optionVotersKey(pollID, optionID), sessionID)
	}
	pipe.Del(ctx, sessionKey(pollID, sessionID), sessionMetaKey(pollID, sessionID))
	pipe.SRem(ctx, demoSessionsKey(pollID), sessionID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete demo votes: %w", err)
	}
	return nil
}

// PurgePoll removes every key under the poll's demo prefix.
func (s *RedisDemoStore) PurgePoll(ctx context.Context, pollID string) error {
	optionIDs, err := s.rdb.SMembers(ctx, demoOptionsKey(pollID)).Result()
	if err != nil {
		return fmt.Errorf("load demo options: %w", err)
	}
	sessionIDs, err := s.rdb.SMembers(ctx, demoSessionsKey(pollID)).Result()
	if err != nil {
		return fmt.Errorf("load demo sessions: %w", err)
	}

	keys := []string{demoOptionsKey(pollID), demoSessionsKey(pollID)}
	for _, optionID := range optionIDs {
		keys = append(keys, optionVotersKey(pollID, optionID))
	}
	for _, sessionID := range sessionIDs {
		keys = append(keys, sessionKey(pollID, sessionID), sessionMetaKey(pollID, sessionID))
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("purge demo votes: %w", err)
	}
	return nil
}

// DemoAggregate counts session members per option. Options whose set has
// emptied are left out of the map.
func (s *RedisDemoStore) DemoAggregate(ctx context.Context, pollID string) (models.DemoAggregate, error) {
	agg := models.DemoAggregate{PollID: pollID, OptionDemoVotes: map[string]int{}}

	optionIDs, err := s.rdb.SMembers(ctx, demoOptionsKey(pollID)).Result()
	if err != nil {
		return models.DemoAggregate{}, fmt.Errorf("load demo options: %w", err)
	}
	if len(optionIDs) == 0 {
		return agg, nil
	}

	pipe := s.rdb.Pipeline()
	counts := make([]*redis.IntCmd, len(optionIDs))
	for i, optionID := range optionIDs {
		counts[i] = pipe.SCard(ctx, optionVotersKey(pollID, optionID))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return models.DemoAggregate{}, fmt.Errorf("count demo votes: %w", err)
	}

	for i, cmd := range counts {
		n := int(cmd.Val())
		if n == 0 {
			continue
		}
		agg.OptionDemoVotes[optionIDs[i]] = n
		agg.TotalDemoVotes += n
	}
	return agg, nil
}

// SessionDemoVotes rebuilds the session's rows from its option set and
// metadata hash. Rows are ordered by option id.
func (s *RedisDemoStore) SessionDemoVotes(ctx context.Context, pollID, sessionID string) ([]models.DemoVote, error) {
	optionIDs, err := s.rdb.SMembers(ctx, sessionKey(pollID, sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("load demo session: %w", err)
	}
	votes := []models.DemoVote{}
	if len(optionIDs) == 0 {
		return votes, nil
	}

	data, err := s.rdb.HGetAll(ctx, sessionMetaKey(pollID, sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("load demo session meta: %w", err)
	}
	meta, err := decodeSessionMeta(data)
	if err != nil {
		return nil, fmt.Errorf("decode demo session meta: %w", err)
	}

	sort.Strings(optionIDs)
	for _, optionID := range optionIDs {
		votes = append(votes, models.DemoVote{
			PollID:    pollID,
			OptionID:  optionID,
			SessionID: sessionID,
			UserAgent: meta.UserAgent,
			IPHash:    meta.IPHash,
			CreatedAt: meta.UpdatedAt,
		})
	}
	return votes, nil
}
