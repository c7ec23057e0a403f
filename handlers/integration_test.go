// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pollapp/pollapp-api/middleware"
	"github.com/pollapp/pollapp-api/models"
	"github.com/pollapp/pollapp-api/testutil"
)

// TestFullVotingWorkflow tests the complete end-to-end workflow over real
// bearer tokens:
// 1. Owner creates a draft and publishes it
// 2. Two users vote; a second ballot conflicts
// 3. A guest casts a demo vote
// 4. Voter list and comments
// 5. Owner edits a poll that has votes
// 6. Owner closes, voting stops, owner deletes
func TestFullVotingWorkflow(t *testing.T) {
	svc, _, cfg := setupService(t)
	identity := middleware.WithIdentity(cfg.JWTSecret)

	polls := NewPollHandler(svc)
	voting := NewVotingHandler(svc)
	demo := NewDemoVoteHandler(svc, cfg)
	voters := NewVoterHandler(svc)
	comments := NewCommentHandler(svc)
	profiles := NewProfileHandler(svc)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /polls", identity(polls.CreatePoll))
	mux.HandleFunc("GET /polls/{id}", identity(polls.GetPoll))
	mux.HandleFunc("PUT /polls/{id}", identity(polls.UpdatePoll))
	mux.HandleFunc("DELETE /polls/{id}", identity(polls.DeletePoll))
	mux.HandleFunc("POST /polls/{id}/publish", identity(polls.PublishPoll))
	mux.HandleFunc("POST /polls/{id}/close", identity(polls.ClosePoll))
	mux.HandleFunc("POST /polls/{id}/votes", identity(voting.SubmitVote))
	mux.HandleFunc("GET /polls/{id}/my-votes", identity(voting.GetMyVotes))
	mux.HandleFunc("POST /polls/{id}/demo-votes", identity(demo.SubmitDemoVote))
	mux.HandleFunc("GET /polls/{id}/voters", identity(voters.ListVoters))
	mux.HandleFunc("POST /polls/{id}/comments", identity(comments.CreateComment))
	mux.HandleFunc("GET /polls/{id}/comments", identity(comments.ListComments))
	mux.HandleFunc("PUT /profiles/me", identity(profiles.UpdateMe))

	owner := testutil.AuthHeaders(t, cfg, "owner")
	alice := testutil.AuthHeaders(t, cfg, "alice")
	bob := testutil.AuthHeaders(t, cfg, "bob")

	do := func(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
		req := testutil.MakeRequest(method, path, body, headers)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		return w
	}

	// Step 1: Create a draft and publish it
	w := do("POST", "/polls", models.CreatePollRequest{
		Title:   "Lunch?",
		Options: []string{"Pizza", "Sushi", "Tacos"},
		AsDraft: true,
	}, owner)
	if w.Code != http.StatusCreated {
		t.Fatalf("Step 1 - Create poll failed: %d - %s", w.Code, w.Body.String())
	}
	var poll models.PollDetails
	testutil.AssertJSON(t, w, &poll)
	pollID := poll.ID
	pizza, sushi := poll.Options[0].ID, poll.Options[1].ID

	w = do("POST", "/polls/"+pollID+"/votes", models.SubmitVoteRequest{OptionIDs: []string{pizza}}, alice)
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	w = do("POST", "/polls/"+pollID+"/publish", nil, owner)
	if w.Code != http.StatusOK {
		t.Fatalf("Step 1 - Publish failed: %d - %s", w.Code, w.Body.String())
	}
	t.Logf("Step 1 - Published poll: %s", pollID)

	// Step 2: Votes
	w = do("PUT", "/profiles/me", map[string]string{"displayName": "Alice"}, alice)
	testutil.AssertStatus(t, w, http.StatusOK)

	w = do("POST", "/polls/"+pollID+"/votes", models.SubmitVoteRequest{OptionIDs: []string{pizza}}, alice)
	testutil.AssertStatus(t, w, http.StatusCreated)
	w = do("POST", "/polls/"+pollID+"/votes", models.SubmitVoteRequest{OptionIDs: []string{sushi}}, bob)
	testutil.AssertStatus(t, w, http.StatusCreated)
	w = do("POST", "/polls/"+pollID+"/votes", models.SubmitVoteRequest{OptionIDs: []string{sushi}}, alice)
	testutil.AssertStatus(t, w, http.StatusConflict)

	w = do("GET", "/polls/"+pollID+"/my-votes", nil, alice)
	testutil.AssertStatus(t, w, http.StatusOK)
	var mine models.MyVotesResponse
	testutil.AssertJSON(t, w, &mine)
	if !mine.HasVoted || mine.OptionIDs[0] != pizza {
		t.Errorf("Step 2 - Expected alice's vote for pizza, got %+v", mine)
	}

	// Step 3: Demo vote from a guest
	w = do("POST", "/polls/"+pollID+"/demo-votes", models.SubmitDemoVoteRequest{OptionIDs: []string{sushi}, SessionID: "guest-1"}, nil)
	testutil.AssertStatus(t, w, http.StatusOK)

	w = do("GET", "/polls/"+pollID, nil, nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertJSON(t, w, &poll)
	if poll.TotalVotes != 2 {
		t.Errorf("Step 3 - Expected 2 real votes, got %d", poll.TotalVotes)
	}

	// Step 4: Voter list and comments
	w = do("GET", "/polls/"+pollID+"/voters", nil, owner)
	testutil.AssertStatus(t, w, http.StatusOK)
	var list models.PollVoters
	testutil.AssertJSON(t, w, &list)
	if list.Total != 2 || list.Voters[0].Name != "Alice" {
		t.Errorf("Step 4 - Unexpected voter list: %+v", list)
	}

	w = do("GET", "/polls/"+pollID+"/voters", nil, nil)
	testutil.AssertStatus(t, w, http.StatusUnauthorized)

	w = do("POST", "/polls/"+pollID+"/comments", models.CreateCommentRequest{CommentText: "Pizza forever"}, alice)
	testutil.AssertStatus(t, w, http.StatusCreated)

	w = do("GET", "/polls/"+pollID+"/comments", nil, nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	var thread models.CommentsResponse
	testutil.AssertJSON(t, w, &thread)
	if len(thread.Comments) != 1 || thread.Comments[0].Author.Name != "Alice" {
		t.Errorf("Step 4 - Unexpected comments: %+v", thread.Comments)
	}

	// Step 5: Edit with votes present
	w = do("PUT", "/polls/"+pollID, map[string]interface{}{
		"title":       "Lunch today?",
		"isAnonymous": true,
	}, owner)
	testutil.AssertStatus(t, w, http.StatusOK)
	var updated models.UpdatePollResponse
	testutil.AssertJSON(t, w, &updated)
	if updated.Poll.IsAnonymous || len(updated.IgnoredFields) != 1 || updated.IgnoredFields[0] != "isAnonymous" {
		t.Errorf("Step 5 - Expected isAnonymous to be ignored, got %+v", updated)
	}

	// Step 6: Close, then delete
	w = do("POST", "/polls/"+pollID+"/close", nil, owner)
	testutil.AssertStatus(t, w, http.StatusOK)

	w = do("POST", "/polls/"+pollID+"/votes", models.SubmitVoteRequest{OptionIDs: []string{pizza}}, testutil.AuthHeaders(t, cfg, "carol"))
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	w = do("DELETE", "/polls/"+pollID, nil, bob)
	testutil.AssertStatus(t, w, http.StatusForbidden)
	w = do("DELETE", "/polls/"+pollID, nil, owner)
	testutil.AssertStatus(t, w, http.StatusOK)

	w = do("GET", "/polls/"+pollID, nil, owner)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestInvalidTokenRejected(t *testing.T) {
	svc, _, cfg := setupService(t)
	handler := middleware.WithIdentity(cfg.JWTSecret)(NewPollHandler(svc).GetPoll)

	req := testutil.MakeRequest("GET", "/polls/p1", nil, map[string]string{"Authorization": "Bearer forged"})
	req.SetPathValue("id", "p1")
	w := httptest.NewRecorder()

	handler(w, req)

	testutil.AssertStatus(t, w, http.StatusUnauthorized)
}
