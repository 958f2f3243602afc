package query

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeNode answers every query whose text contains a key of responses with
// the matching body, and records the variables it received.
type fakeNode struct {
	responses map[string]string
	lastVars  map[string]any
}

func (f *fakeNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	var req request
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.lastVars = req.Variables
	for key, resp := range f.responses {
		if strings.Contains(req.Query, key) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, resp)
			return
		}
	}
	http.Error(w, "unknown query", http.StatusNotFound)
}

func newTestClient(t *testing.T, responses map[string]string) (*Client, *fakeNode) {
	t.Helper()
	node := &fakeNode{responses: responses}
	srv := httptest.NewServer(node)
	t.Cleanup(srv.Close)
	return New(srv.URL, WithRateLimit(1000, 100)), node
}

func TestMembers(t *testing.T) {
	client, node := newTestClient(t, map[string]string{
		"GetMembers": `{"data":{"memberships":[{
			"id":"1","handle":"alice","rootAccount":"root","controllerAccount":"ctrl",
			"boundAccounts":["bound"],"isVerified":true,"isFoundingMember":false,
			"isCouncilMember":true,"inviteCount":5,"createdAt":"2023-01-01T00:00:00Z",
			"metadata":{"name":"Alice","about":"hi","avatar":{"avatarUri":"https://a/b.png"}},
			"roles":[{"id":"forumWorkingGroup-1","isLead":true,"group":{"id":"forumWorkingGroup"}}]
		}]}}`,
	})

	members, err := client.Members(context.Background(), []string{"root"})
	require.NoError(t, err)
	require.Len(t, members, 1)

	m := members[0]
	assert.Equal(t, "alice", m.Handle)
	assert.Equal(t, "Alice", m.Name)
	assert.Equal(t, "https://a/b.png", m.Avatar)
	assert.True(t, m.IsVerified)
	assert.True(t, m.IsCouncilMember)
	assert.Equal(t, 5, m.InviteCount)
	assert.Equal(t, []string{"root", "ctrl", "bound"}, m.Accounts())
	require.Len(t, m.Roles, 1)
	assert.True(t, m.Roles[0].IsLead)
	assert.Equal(t, []any{"root"}, node.lastVars["accounts"])
}

func TestMembersNoAccounts(t *testing.T) {
	client, _ := newTestClient(t, nil)
	members, err := client.Members(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestGroupEvents(t *testing.T) {
	client, node := newTestClient(t, map[string]string{
		"GetGroupEvents": `{"data":{
			"appliedOnOpeningEvents":[{"id":"a1","createdAt":"2023-01-02","group":{"name":"forum"},"opening":{"id":"7"},"application":{"applicant":{"handle":"bob"}}}],
			"applicationWithdrawnEvents":[],
			"budgetSpendingEvents":[{"id":"b1","createdAt":"2023-01-03","group":{"name":"forum"},"reciever":"dest","amount":"1000","rationale":"infra"}]
		}}`,
	})

	ev, err := client.GroupEvents(context.Background(), "forumWorkingGroup")
	require.NoError(t, err)
	assert.Equal(t, "forumWorkingGroup", node.lastVars["group_eq"])

	require.Len(t, ev.AppliedOnOpening, 1)
	assert.Equal(t, "bob", ev.AppliedOnOpening[0].Applicant)
	assert.Equal(t, "7", ev.AppliedOnOpening[0].OpeningID)
	assert.Empty(t, ev.ApplicationWithdrawn)
	require.Len(t, ev.BudgetSpending, 1)
	assert.Equal(t, "1000", ev.BudgetSpending[0].Amount.String())
}

func TestPastCouncilMembers(t *testing.T) {
	client, _ := newTestClient(t, map[string]string{
		"GetPastCouncilMembers": `{"data":{
			"councilMembers":[{"member":{"id":"1","handle":"alice"}},{"member":{"id":"2","handle":"bob"}}],
			"proposalVotedEvents":[
				{"voter":{"id":"1"},"voteKind":"APPROVE"},
				{"voter":{"id":"1"},"voteKind":"APPROVE"},
				{"voter":{"id":"1"},"voteKind":"SLASH"},
				{"voter":{"id":"2"},"voteKind":"REJECT"},
				{"voter":{"id":"2"},"voteKind":"ABSTAIN"},
				{"voter":{"id":"9"},"voteKind":"APPROVE"}
			]
		}}`,
	})

	members, err := client.PastCouncilMembers(context.Background(), "3")
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, PastCouncilMember{MemberID: "1", Handle: "alice", Approved: 2, Slashed: 1}, members[0])
	assert.Equal(t, PastCouncilMember{MemberID: "2", Handle: "bob", Rejected: 1, Abstained: 1}, members[1])
}

func TestPastCouncils(t *testing.T) {
	client, _ := newTestClient(t, map[string]string{
		"GetPastCouncils": `{"data":{"electedCouncils":[{"id":"3","endedAtTime":"2023-02-01",
			"councilMembers":[{"id":"a"},{"id":"b"}],
			"budgetSpendings":[{"rewardAmount":"10"},{"rewardAmount":"15"}]}]}}`,
	})

	councils, err := client.PastCouncils(context.Background())
	require.NoError(t, err)
	require.Len(t, councils, 1)
	assert.Equal(t, 2, councils[0].Members)
	assert.Equal(t, "25", councils[0].Spendings.String())
}

func TestPostParents(t *testing.T) {
	client, _ := newTestClient(t, map[string]string{
		"GetPostParents": `{"data":{"forumPostByUniqueInput":{"id":"5","thread":{"id":"2","categoryId":"1"}}}}`,
	})
	parents, err := client.PostParents(context.Background(), "5")
	require.NoError(t, err)
	assert.Equal(t, PostParents{PostID: "5", ThreadID: "2", CategoryID: "1"}, parents)

	missing, _ := newTestClient(t, map[string]string{
		"GetPostParents": `{"data":{"forumPostByUniqueInput":null}}`,
	})
	_, err = missing.PostParents(context.Background(), "6")
	assert.Error(t, err)
}

func TestGraphQLError(t *testing.T) {
	client, _ := newTestClient(t, map[string]string{
		"GetOpenings": `{"errors":[{"message":"field missing"},{"message":"bad arg"}]}`,
	})

	_, err := client.Openings(context.Background())
	var gqlErr *Error
	require.ErrorAs(t, err, &gqlErr)
	assert.Equal(t, []string{"field missing", "bad arg"}, gqlErr.Messages)
	assert.Equal(t, "graphql: field missing; bad arg", err.Error())
}

func TestHTTPError(t *testing.T) {
	client, _ := newTestClient(t, map[string]string{})
	_, err := client.WorkingGroups(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestUnconfigured(t *testing.T) {
	var c *Client
	_, err := c.Openings(context.Background())
	assert.Error(t, err)
}
