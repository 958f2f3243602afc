package query

import (
	"context"
	"fmt"
	"math/big"

	"github.com/tidwall/gjson"
)

const memberFields = `
  id handle rootAccount controllerAccount boundAccounts
  isVerified isFoundingMember isCouncilMember inviteCount createdAt
  metadata { name about avatar { ... on AvatarUri { avatarUri } } }
  roles { id isLead group { id } }`

const membersQuery = `query GetMembers($accounts: [String!]) {
  memberships(where: { OR: [{ rootAccount_in: $accounts }, { controllerAccount_in: $accounts }] }, orderBy: [createdAt_ASC]) {` + memberFields + `
  }
}`

const groupEventsQuery = `query GetGroupEvents($group_eq: ID) {
  appliedOnOpeningEvents(where: { group: { id_eq: $group_eq } }) {
    id createdAt group { name } opening { id } application { applicant { handle } }
  }
  applicationWithdrawnEvents(where: { group: { id_eq: $group_eq } }) {
    id createdAt group { name } application { opening { id } applicant { handle } }
  }
  budgetSpendingEvents(where: { group: { id_eq: $group_eq } }) {
    id createdAt group { name } reciever amount rationale
  }
}`

const openingsQuery = `query GetOpenings {
  workingGroupOpenings(orderBy: [createdAt_DESC]) {
    id type stakeAmount rewardPerBlock createdAt
    group { id name }
    metadata { title shortDescription hiringLimit }
    status { __typename }
    applications { id }
  }
}`

const workingGroupsQuery = `query GetWorkingGroups {
  workingGroups(orderBy: [name_ASC]) {
    id name budget status { __typename }
    leader { membership { id } }
    workers(where: { isActive_eq: true }) { id }
  }
}`

const applicationsQuery = `query GetApplications($member: ID) {
  workingGroupApplications(where: { applicant: { id_eq: $member } }, orderBy: [createdAt_DESC]) {
    id stake createdAt status { __typename }
    opening { id group { name } }
  }
}`

const rolesQuery = `query GetRoles($member: ID) {
  workers(where: { membership: { id_eq: $member } }, orderBy: [createdAt_DESC]) {
    id isLead stake rewardPerBlock createdAt status { __typename }
    group { name }
  }
}`

const pastCouncilsQuery = `query GetPastCouncils {
  electedCouncils(where: { endedAtBlock_gt: 0 }, orderBy: [createdAt_DESC]) {
    id endedAtTime
    councilMembers { id }
    budgetSpendings: councilorRewardUpdatedEvents { rewardAmount }
  }
}`

const pastCouncilMembersQuery = `query GetPastCouncilMembers($council: ID) {
  councilMembers(where: { electedInCouncil: { id_eq: $council } }) {
    member { id handle }
  }
  proposalVotedEvents(where: { electedCouncil: { id_eq: $council } }) {
    voter { id }
    voteKind
  }
}`

const postsByAuthorQuery = `query GetPostsByAuthor($author: ID) {
  forumPosts(where: { author: { id_eq: $author }, isVisible_eq: true }, orderBy: [createdAt_DESC]) {
    id text createdAt status { __typename }
    author { id }
    thread { id title categoryId }
  }
}`

const postParentsQuery = `query GetPostParents($post: ID!) {
  forumPostByUniqueInput(where: { id: $post }) {
    id
    thread { id categoryId }
  }
}`

// Members returns the memberships whose root or controller account is one of accounts.
func (c *Client) Members(ctx context.Context, accounts []string) ([]Member, error) {
	if len(accounts) == 0 {
		return nil, nil
	}
	data, err := c.do(ctx, membersQuery, map[string]any{"accounts": accounts})
	if err != nil {
		return nil, err
	}
	var out []Member
	for _, r := range data.Get("memberships").Array() {
		out = append(out, parseMember(r))
	}
	return out, nil
}

// GroupEvents returns the raw activity events of one working group.
func (c *Client) GroupEvents(ctx context.Context, groupID string) (GroupEvents, error) {
	data, err := c.do(ctx, groupEventsQuery, map[string]any{"group_eq": groupID})
	if err != nil {
		return GroupEvents{}, err
	}

	var ev GroupEvents
	for _, r := range data.Get("appliedOnOpeningEvents").Array() {
		ev.AppliedOnOpening = append(ev.AppliedOnOpening, AppliedOnOpeningEvent{
			ID:        r.Get("id").String(),
			CreatedAt: r.Get("createdAt").String(),
			GroupName: r.Get("group.name").String(),
			Applicant: r.Get("application.applicant.handle").String(),
			OpeningID: r.Get("opening.id").String(),
		})
	}
	for _, r := range data.Get("applicationWithdrawnEvents").Array() {
		ev.ApplicationWithdrawn = append(ev.ApplicationWithdrawn, ApplicationWithdrawnEvent{
			ID:        r.Get("id").String(),
			CreatedAt: r.Get("createdAt").String(),
			GroupName: r.Get("group.name").String(),
			Applicant: r.Get("application.applicant.handle").String(),
			OpeningID: r.Get("application.opening.id").String(),
		})
	}
	for _, r := range data.Get("budgetSpendingEvents").Array() {
		ev.BudgetSpending = append(ev.BudgetSpending, BudgetSpendingEvent{
			ID:        r.Get("id").String(),
			CreatedAt: r.Get("createdAt").String(),
			GroupName: r.Get("group.name").String(),
			Reciever:  r.Get("reciever").String(),
			Amount:    bigValue(r.Get("amount")),
			Rationale: r.Get("rationale").String(),
		})
	}
	return ev, nil
}

// Openings lists every working group opening, newest first.
func (c *Client) Openings(ctx context.Context) ([]Opening, error) {
	data, err := c.do(ctx, openingsQuery, nil)
	if err != nil {
		return nil, err
	}
	var out []Opening
	for _, r := range data.Get("workingGroupOpenings").Array() {
		out = append(out, parseOpening(r))
	}
	return out, nil
}

// WorkingGroups lists the working groups.
func (c *Client) WorkingGroups(ctx context.Context) ([]WorkingGroup, error) {
	data, err := c.do(ctx, workingGroupsQuery, nil)
	if err != nil {
		return nil, err
	}
	var out []WorkingGroup
	for _, r := range data.Get("workingGroups").Array() {
		out = append(out, WorkingGroup{
			ID:      r.Get("id").String(),
			Name:    r.Get("name").String(),
			Budget:  bigValue(r.Get("budget")),
			Workers: len(r.Get("workers").Array()),
			LeadID:  r.Get("leader.membership.id").String(),
			Status:  r.Get("status.__typename").String(),
		})
	}
	return out, nil
}

// Applications lists the applications submitted by a member.
func (c *Client) Applications(ctx context.Context, memberID string) ([]Application, error) {
	data, err := c.do(ctx, applicationsQuery, map[string]any{"member": memberID})
	if err != nil {
		return nil, err
	}
	var out []Application
	for _, r := range data.Get("workingGroupApplications").Array() {
		out = append(out, Application{
			ID:        r.Get("id").String(),
			OpeningID: r.Get("opening.id").String(),
			GroupName: r.Get("opening.group.name").String(),
			Status:    r.Get("status.__typename").String(),
			Stake:     bigValue(r.Get("stake")),
			CreatedAt: r.Get("createdAt").String(),
		})
	}
	return out, nil
}

// Roles lists the worker positions held by a member.
func (c *Client) Roles(ctx context.Context, memberID string) ([]Worker, error) {
	data, err := c.do(ctx, rolesQuery, map[string]any{"member": memberID})
	if err != nil {
		return nil, err
	}
	var out []Worker
	for _, r := range data.Get("workers").Array() {
		out = append(out, Worker{
			ID:             r.Get("id").String(),
			GroupName:      r.Get("group.name").String(),
			IsLead:         r.Get("isLead").Bool(),
			Status:         r.Get("status.__typename").String(),
			Stake:          bigValue(r.Get("stake")),
			RewardPerBlock: bigValue(r.Get("rewardPerBlock")),
			HiredAt:        r.Get("createdAt").String(),
		})
	}
	return out, nil
}

// PastCouncils lists the council terms that have ended.
func (c *Client) PastCouncils(ctx context.Context) ([]Council, error) {
	data, err := c.do(ctx, pastCouncilsQuery, nil)
	if err != nil {
		return nil, err
	}
	var out []Council
	for _, r := range data.Get("electedCouncils").Array() {
		total := new(big.Int)
		for _, s := range r.Get("budgetSpendings").Array() {
			total.Add(total, bigValue(s.Get("rewardAmount")))
		}
		out = append(out, Council{
			ID:        r.Get("id").String(),
			EndedAt:   r.Get("endedAtTime").String(),
			Members:   len(r.Get("councilMembers").Array()),
			Spendings: total,
		})
	}
	return out, nil
}

// PastCouncilMembers tallies the proposal votes of each councilor of a term.
func (c *Client) PastCouncilMembers(ctx context.Context, councilID string) ([]PastCouncilMember, error) {
	data, err := c.do(ctx, pastCouncilMembersQuery, map[string]any{"council": councilID})
	if err != nil {
		return nil, err
	}

	var out []PastCouncilMember
	index := make(map[string]int)
	for _, r := range data.Get("councilMembers").Array() {
		id := r.Get("member.id").String()
		index[id] = len(out)
		out = append(out, PastCouncilMember{MemberID: id, Handle: r.Get("member.handle").String()})
	}
	for _, v := range data.Get("proposalVotedEvents").Array() {
		i, ok := index[v.Get("voter.id").String()]
		if !ok {
			continue
		}
		switch v.Get("voteKind").String() {
		case "APPROVE":
			out[i].Approved++
		case "REJECT":
			out[i].Rejected++
		case "SLASH":
			out[i].Slashed++
		case "ABSTAIN":
			out[i].Abstained++
		}
	}
	return out, nil
}

// PostsByAuthor lists the visible posts written by a member.
func (c *Client) PostsByAuthor(ctx context.Context, memberID string) ([]Post, error) {
	data, err := c.do(ctx, postsByAuthorQuery, map[string]any{"author": memberID})
	if err != nil {
		return nil, err
	}
	var out []Post
	for _, r := range data.Get("forumPosts").Array() {
		out = append(out, parsePost(r))
	}
	return out, nil
}

// PostParents resolves the thread and category of a post.
func (c *Client) PostParents(ctx context.Context, postID string) (PostParents, error) {
	data, err := c.do(ctx, postParentsQuery, map[string]any{"post": postID})
	if err != nil {
		return PostParents{}, err
	}
	r := data.Get("forumPostByUniqueInput")
	if !r.Exists() || r.Type == gjson.Null {
		return PostParents{}, fmt.Errorf("post %s not found", postID)
	}
	return PostParents{
		PostID:     r.Get("id").String(),
		ThreadID:   r.Get("thread.id").String(),
		CategoryID: r.Get("thread.categoryId").String(),
	}, nil
}
