// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// Poll status constants. Only draft, active and closed are persisted;
// expired is an overlay computed at read time.
const (
	StatusDraft   = "draft"
	StatusActive  = "active"
	StatusExpired = "expired"
	StatusClosed  = "closed"
)

// Vote type constants
const (
	VoteTypeSingle   = "single"
	VoteTypeMultiple = "multiple"
)

// Poll and option limits
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
	MaxOptionLength      = 200
	MinOptions           = 2
	MaxOptions           = 10
	MaxCommentLength     = 1000
	MaxSessionIDLength   = 128
)

// Request types

type CreatePollRequest struct {
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Options            []string   `json:"options"`
	AllowMultipleVotes bool       `json:"allowMultipleVotes"`
	IsAnonymous        bool       `json:"isAnonymous"`
	ExpiresAt          *time.Time `json:"expiresAt,omitempty"`
	AsDraft            bool       `json:"asDraft"`
}

type OptionUpdate struct {
	ID    string `json:"id,omitempty"`
	Text  string `json:"text"`
	IsNew bool   `json:"isNew"`
}

// UpdatePollRequest carries a partial update; nil fields are left unchanged.
type UpdatePollRequest struct {
	Title              *string        `json:"title,omitempty"`
	Description        *string        `json:"description,omitempty"`
	Options            []OptionUpdate `json:"options,omitempty"`
	ExpiresAt          OptionalTime   `json:"expiresAt,omitzero"`
	AllowMultipleVotes *bool          `json:"allowMultipleVotes,omitempty"`
	IsAnonymous        *bool          `json:"isAnonymous,omitempty"`
	IsActive           *bool          `json:"isActive,omitempty"`
}

// OptionalTime distinguishes an absent JSON field from an explicit null.
type OptionalTime struct {
	Set   bool
	Value *time.Time
}

func (o *OptionalTime) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var t time.Time
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	o.Value = &t
	return nil
}

func (o OptionalTime) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

type SubmitVoteRequest struct {
	OptionIDs []string `json:"optionIds"`
}

type SubmitDemoVoteRequest struct {
	OptionIDs []string `json:"optionIds"`
	SessionID string   `json:"sessionId"`
	UserAgent string   `json:"userAgent,omitempty"`
}

type CreateCommentRequest struct {
	CommentText string `json:"commentText"`
}

type UpdateProfileRequest struct {
	Username    *string `json:"username,omitempty"`
	DisplayName *string `json:"displayName,omitempty"`
	AvatarURL   *string `json:"avatarUrl,omitempty"`
}

// Response types

type UpdatePollResponse struct {
	Poll          PollDetails `json:"poll"`
	IgnoredFields []string    `json:"ignoredFields"`
}

type ListPollsResponse struct {
	Polls      []PollDetails `json:"polls"`
	Pagination Pagination    `json:"pagination"`
}

type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}

type MyVotesResponse struct {
	HasVoted  bool     `json:"hasVoted"`
	OptionIDs []string `json:"optionIds"`
}

type DemoVoteResponse struct {
	Success   bool          `json:"success"`
	DemoVotes DemoAggregate `json:"demoVotes"`
}

type SessionDemoVotesResponse struct {
	SessionID string   `json:"sessionId"`
	OptionIDs []string `json:"optionIds"`
}

type CommentsResponse struct {
	Comments []Comment `json:"comments"`
}

type CommentResponse struct {
	Comment Comment `json:"comment"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Domain types

type Poll struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	VoteType    string     `json:"voteType"`
	IsAnonymous bool       `json:"isAnonymous"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	CreatedBy   string     `json:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type Option struct {
	ID         string `json:"id"`
	PollID     string `json:"pollId"`
	Text       string `json:"text"`
	Order      int    `json:"order"`
	VotesCount int    `json:"votes"`
}

// PollDetails is the read view of a poll with its options and derived fields.
type PollDetails struct {
	Poll
	Options            []Option `json:"options"`
	TotalVotes         int      `json:"totalVotes"`
	EffectiveStatus    string   `json:"effectiveStatus"`
	IsExpired          bool     `json:"isExpired"`
	IsActive           bool     `json:"isActive"`
	AllowMultipleVotes bool     `json:"allowMultipleVotes"`
}

type Vote struct {
	ID        string    `json:"id"`
	PollID    string    `json:"pollId"`
	OptionID  string    `json:"optionId"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

type DemoVote struct {
	ID        string    `json:"id"`
	PollID    string    `json:"pollId"`
	OptionID  string    `json:"optionId"`
	SessionID string    `json:"sessionId"`
	UserAgent string    `json:"userAgent,omitempty"`
	IPHash    string    `json:"-"` // Never expose in JSON
	CreatedAt time.Time `json:"createdAt"`
}

type Profile struct {
	ID          string    `json:"id"`
	Username    string    `json:"username,omitempty"`
	DisplayName string    `json:"displayName,omitempty"`
	AvatarURL   string    `json:"avatarUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Comment struct {
	ID          string    `json:"id"`
	PollID      string    `json:"pollId"`
	CommentText string    `json:"commentText"`
	CreatedAt   time.Time `json:"createdAt"`
	Author      Author    `json:"author"`
}

type Author struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

// Aggregate types

// VoteAggregate is computed by counting persisted vote rows.
type VoteAggregate struct {
	PollID      string         `json:"pollId"`
	TotalVotes  int            `json:"totalVotes"`
	OptionVotes map[string]int `json:"optionVotes"`
}

type DemoAggregate struct {
	PollID          string         `json:"pollId"`
	TotalDemoVotes  int            `json:"totalDemoVotes"`
	OptionDemoVotes map[string]int `json:"optionDemoVotes"`
}

// Voter visibility types

type VoterPermission struct {
	CanView bool   `json:"canView"`
	Reason  string `json:"reason"`
}

type VoterView struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Username        string    `json:"username,omitempty"`
	DisplayName     string    `json:"displayName,omitempty"`
	AvatarURL       string    `json:"avatarUrl,omitempty"`
	VotedAt         time.Time `json:"votedAt"`
	SelectedOptions []string  `json:"selectedOptions,omitempty"`
}

type PollVoters struct {
	Total        int                    `json:"total"`
	Voters       []VoterView            `json:"voters"`
	OptionVoters map[string][]VoterView `json:"optionVoters"`
}

// Error response

type ErrorResponse struct {
	Error         string `json:"error"`
	Code          string `json:"code,omitempty"`
	HasPermission *bool  `json:"hasPermission,omitempty"`
}
