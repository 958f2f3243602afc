package query

import (
	"math/big"

	"github.com/tidwall/gjson"
)

// Member is a membership as indexed by the query node.
type Member struct {
	ID                string
	Handle            string
	Name              string
	About             string
	Avatar            string
	RootAccount       string
	ControllerAccount string
	BoundAccounts     []string
	IsVerified        bool
	IsFoundingMember  bool
	IsCouncilMember   bool
	InviteCount       int
	Roles             []Role
	CreatedAt         string
}

// Role is a worker position held by a member.
type Role struct {
	ID      string
	GroupID string
	IsLead  bool
}

// Accounts returns every account the member controls, root first.
func (m Member) Accounts() []string {
	out := []string{m.RootAccount}
	if m.ControllerAccount != "" && m.ControllerAccount != m.RootAccount {
		out = append(out, m.ControllerAccount)
	}
	return append(out, m.BoundAccounts...)
}

// AppliedOnOpeningEvent is emitted when a member applies to an opening.
type AppliedOnOpeningEvent struct {
	ID        string
	CreatedAt string
	GroupName string
	Applicant string
	OpeningID string
}

// ApplicationWithdrawnEvent is emitted when an applicant withdraws.
type ApplicationWithdrawnEvent struct {
	ID        string
	CreatedAt string
	GroupName string
	Applicant string
	OpeningID string
}

// BudgetSpendingEvent records a payment out of a group budget.
type BudgetSpendingEvent struct {
	ID        string
	CreatedAt string
	GroupName string
	Reciever  string
	Amount    *big.Int
	Rationale string
}

// GroupEvents holds the three event lists that make up a group's activity.
type GroupEvents struct {
	AppliedOnOpening     []AppliedOnOpeningEvent
	ApplicationWithdrawn []ApplicationWithdrawnEvent
	BudgetSpending       []BudgetSpendingEvent
}

// Opening is a working group opening.
type Opening struct {
	ID             string
	GroupID        string
	GroupName      string
	Type           string
	Title          string
	ShortDesc      string
	Status         string
	StakeAmount    *big.Int
	RewardPerBlock *big.Int
	HiringLimit    int
	Applications   int
	CreatedAt      string
}

// WorkingGroup summarises a working group.
type WorkingGroup struct {
	ID      string
	Name    string
	Budget  *big.Int
	Workers int
	LeadID  string
	Status  string
}

// Application is a member's application to an opening.
type Application struct {
	ID        string
	OpeningID string
	GroupName string
	Status    string
	Stake     *big.Int
	CreatedAt string
}

// Worker is a role held by a member in a working group.
type Worker struct {
	ID             string
	GroupName      string
	IsLead         bool
	Status         string
	Stake          *big.Int
	RewardPerBlock *big.Int
	HiredAt        string
}

// Council is a past council term.
type Council struct {
	ID        string
	EndedAt   string
	Members   int
	Spendings *big.Int
}

// PastCouncilMember tallies how one councilor voted during a term.
type PastCouncilMember struct {
	MemberID  string
	Handle    string
	Approved  int
	Rejected  int
	Slashed   int
	Abstained int
}

// Post is a forum post.
type Post struct {
	ID         string
	ThreadID   string
	ThreadName string
	CategoryID string
	AuthorID   string
	Text       string
	Status     string
	CreatedAt  string
}

// PostParents is the category and thread a post lives in.
type PostParents struct {
	PostID     string
	ThreadID   string
	CategoryID string
}

func bigValue(r gjson.Result) *big.Int {
	v, ok := new(big.Int).SetString(r.String(), 10)
	if !ok {
		return big.NewInt(0)
	}
	return v
}

func parseMember(r gjson.Result) Member {
	m := Member{
		ID:                r.Get("id").String(),
		Handle:            r.Get("handle").String(),
		Name:              r.Get("metadata.name").String(),
		About:             r.Get("metadata.about").String(),
		Avatar:            r.Get("metadata.avatar.avatarUri").String(),
		RootAccount:       r.Get("rootAccount").String(),
		ControllerAccount: r.Get("controllerAccount").String(),
		IsVerified:        r.Get("isVerified").Bool(),
		IsFoundingMember:  r.Get("isFoundingMember").Bool(),
		IsCouncilMember:   r.Get("isCouncilMember").Bool(),
		InviteCount:       int(r.Get("inviteCount").Int()),
		CreatedAt:         r.Get("createdAt").String(),
	}
	m.BoundAccounts = stringList(r.Get("boundAccounts"))
	for _, role := range r.Get("roles").Array() {
		m.Roles = append(m.Roles, Role{
			ID:      role.Get("id").String(),
			GroupID: role.Get("group.id").String(),
			IsLead:  role.Get("isLead").Bool(),
		})
	}
	return m
}

func parseOpening(r gjson.Result) Opening {
	return Opening{
		ID:             r.Get("id").String(),
		GroupID:        r.Get("group.id").String(),
		GroupName:      r.Get("group.name").String(),
		Type:           r.Get("type").String(),
		Title:          r.Get("metadata.title").String(),
		ShortDesc:      r.Get("metadata.shortDescription").String(),
		Status:         r.Get("status.__typename").String(),
		StakeAmount:    bigValue(r.Get("stakeAmount")),
		RewardPerBlock: bigValue(r.Get("rewardPerBlock")),
		HiringLimit:    int(r.Get("metadata.hiringLimit").Int()),
		Applications:   len(r.Get("applications").Array()),
		CreatedAt:      r.Get("createdAt").String(),
	}
}

func parsePost(r gjson.Result) Post {
	return Post{
		ID:         r.Get("id").String(),
		ThreadID:   r.Get("thread.id").String(),
		ThreadName: r.Get("thread.title").String(),
		CategoryID: r.Get("thread.categoryId").String(),
		AuthorID:   r.Get("author.id").String(),
		Text:       r.Get("text").String(),
		Status:     r.Get("status.__typename").String(),
		CreatedAt:  r.Get("createdAt").String(),
	}
}
