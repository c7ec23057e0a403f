// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pollapp/pollapp-api/apperr"
	"github.com/pollapp/pollapp-api/auth"
	"github.com/pollapp/pollapp-api/models"
	"github.com/pollapp/pollapp-api/service"
	"github.com/pollapp/pollapp-api/testutil"
)

func TestCanViewVoters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	open := f.createPoll(t, langPoll(false))
	_, err := f.svc.SubmitVote(ctx, alice, open.ID, []string{open.Options[0].ID})
	require.NoError(t, err)

	anonReq := langPoll(false)
	anonReq.IsAnonymous = true
	anonymous := f.createPoll(t, anonReq)

	tests := []struct {
		name      string
		requester auth.Requester
		pollID    string
		canView   bool
		reason    string
	}{
		{"missing poll", owner, "missing", false, service.ReasonPollNotFound},
		{"anonymous poll hides from owner", owner, anonymous.ID, false, service.ReasonAnonymousPoll},
		{"anonymous poll hides from guests", auth.Anonymous, anonymous.ID, false, service.ReasonAnonymousPoll},
		{"unauthenticated", auth.Anonymous, open.ID, false, service.ReasonAuthRequired},
		{"owner", owner, open.ID, true, service.ReasonPollOwner},
		{"voter", alice, open.ID, true, service.ReasonPollVoter},
		{"non-voter", bob, open.ID, false, "Only poll creators and voters can view the voters list"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			perm, err := f.svc.CanViewVoters(ctx, tt.requester, tt.pollID)
			if tt.reason == service.ReasonPollNotFound {
				assertCode(t, err, apperr.CodeNotFound)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.canView, perm.CanView)
			assert.Equal(t, tt.reason, perm.Reason)
		})
	}
}

func TestListVoters_AnonymousPollHidesFromOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := langPoll(false)
	req.IsAnonymous = true
	d := f.createPoll(t, req)
	for i := 0; i < 5; i++ {
		_, err := f.svc.SubmitVote(ctx, auth.User(fmt.Sprintf("voter-%d", i)), d.ID, []string{d.Options[0].ID})
		require.NoError(t, err)
	}

	_, err := f.svc.ListVoters(ctx, owner, d.ID)
	assertCode(t, err, apperr.CodeForbidden)
	assert.Equal(t, service.ReasonAnonymousPoll, apperr.MessageOf(err))
}

func TestListVoters_Denials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.createPoll(t, langPoll(false))

	_, err := f.svc.ListVoters(ctx, auth.Anonymous, d.ID)
	assertCode(t, err, apperr.CodeUnauthorized)

	_, err = f.svc.ListVoters(ctx, bob, d.ID)
	assertCode(t, err, apperr.CodeForbidden)

	_, err = f.svc.ListVoters(ctx, owner, "missing")
	assertCode(t, err, apperr.CodeNotFound)
}

func TestListVoters_Grouping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pollID := testutil.CreateTestPollWith(t, f.conn, models.Poll{CreatedBy: "owner", VoteType: models.VoteTypeMultiple})
	goID := testutil.AddTestOption(t, f.conn, pollID, "Go")
	rustID := testutil.AddTestOption(t, f.conn, pollID, "Rust")
	testutil.CreateTestProfile(t, f.conn, "alice", "alice_dev", "Alice")
	testutil.CreateTestProfile(t, f.conn, "bob", "bob_b", "")

	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	testutil.CreateTestVoteAt(t, f.conn, pollID, rustID, "bob", base.Add(1*time.Minute))
	testutil.CreateTestVoteAt(t, f.conn, pollID, goID, "alice", base.Add(2*time.Minute))
	testutil.CreateTestVoteAt(t, f.conn, pollID, rustID, "alice", base.Add(3*time.Minute))
	testutil.CreateTestVoteAt(t, f.conn, pollID, goID, "carol", base.Add(4*time.Minute))

	voters, err := f.svc.ListVoters(ctx, owner, pollID)
	require.NoError(t, err)

	assert.Equal(t, 3, voters.Total)
	require.Len(t, voters.Voters, 3)

	assert.Equal(t, "bob", voters.Voters[0].ID)
	assert.Equal(t, "bob_b", voters.Voters[0].Name)

	aliceView := voters.Voters[1]
	assert.Equal(t, "Alice", aliceView.Name)
	assert.Equal(t, "alice_dev", aliceView.Username)
	assert.True(t, base.Add(2*time.Minute).Equal(aliceView.VotedAt))
	assert.Equal(t, []string{goID, rustID}, aliceView.SelectedOptions)

	assert.Equal(t, "Anonymous", voters.Voters[2].Name)

	require.Len(t, voters.OptionVoters[rustID], 2)
	assert.Equal(t, "bob", voters.OptionVoters[rustID][0].ID)
	assert.Equal(t, "alice", voters.OptionVoters[rustID][1].ID)
	require.Len(t, voters.OptionVoters[goID], 2)
	assert.Equal(t, "alice", voters.OptionVoters[goID][0].ID)
}

func TestListVoters_Empty(t *testing.T) {
	f := newFixture(t)
	d := f.createPoll(t, langPoll(false))

	voters, err := f.svc.ListVoters(context.Background(), owner, d.ID)
	require.NoError(t, err)
	assert.Zero(t, voters.Total)
	assert.NotNil(t, voters.Voters)
	assert.Empty(t, voters.Voters)
	assert.NotNil(t, voters.OptionVoters)
	assert.Empty(t, voters.OptionVoters)
}

func TestDraftHiddenFromOthers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := langPoll(false)
	req.AsDraft = true
	draft := f.createPoll(t, req)

	for _, r := range []auth.Requester{auth.Anonymous, alice} {
		t.Run(fmt.Sprintf("requester %q", r.UserID), func(t *testing.T) {
			_, err := f.svc.GetPoll(ctx, r, draft.ID)
			assertCode(t, err, apperr.CodeNotFound)

			_, err = f.svc.ListComments(ctx, r, draft.ID)
			assertCode(t, err, apperr.CodeNotFound)

			perm, err := f.svc.CanViewVoters(ctx, r, draft.ID)
			assertCode(t, err, apperr.CodeNotFound)
			assert.Equal(t, models.VoterPermission{Reason: service.ReasonPollNotFound}, perm)

			_, err = f.svc.ListVoters(ctx, r, draft.ID)
			assertCode(t, err, apperr.CodeNotFound)
		})
	}

	_, err := f.svc.AddComment(ctx, alice, draft.ID, "first!")
	assertCode(t, err, apperr.CodeNotFound)
	_, err = f.svc.MyVotes(ctx, alice, draft.ID)
	assertCode(t, err, apperr.CodeNotFound)

	// The owner still sees everything.
	_, err = f.svc.ListComments(ctx, owner, draft.ID)
	require.NoError(t, err)
	_, err = f.svc.AddComment(ctx, owner, draft.ID, "note to self")
	require.NoError(t, err)
	perm, err := f.svc.CanViewVoters(ctx, owner, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, service.ReasonPollOwner, perm.Reason)
}
