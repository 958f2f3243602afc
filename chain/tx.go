package chain

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// Tx describes a pending extrinsic call. It is immutable once built: when the
// inputs change a new Tx is constructed and its ID changes with it.
type Tx struct {
	module string
	method string
	args   []any
	id     string
}

type txJSON struct {
	Module string `json:"module"`
	Method string `json:"method"`
	Args   []any  `json:"args"`
}

// NewTx builds a call descriptor for tx.<module>.<method>(args...).
func NewTx(module, method string, args ...any) *Tx {
	t := &Tx{
		module: module,
		method: method,
		args:   append([]any(nil), args...),
	}
	payload, err := json.Marshal(txJSON{Module: module, Method: method, Args: t.args})
	if err != nil {
		payload = []byte(fmt.Sprintf("%s.%s%v", module, method, t.args))
	}
	t.id = Blake2_256Hex(payload)
	return t
}

// Module returns the pallet the call targets.
func (t *Tx) Module() string { return t.module }

// Method returns the dispatchable name.
func (t *Tx) Method() string { return t.method }

// Args returns a copy of the call arguments.
func (t *Tx) Args() []any { return append([]any(nil), t.args...) }

// ID identifies the call by the hash of its canonical JSON form.
func (t *Tx) ID() string {
	if t == nil {
		return ""
	}
	return t.id
}

func (t *Tx) String() string {
	if t == nil {
		return "<nil tx>"
	}
	return t.module + "." + t.method
}

// MarshalJSON encodes the call for the external signer.
func (t *Tx) MarshalJSON() ([]byte, error) {
	return json.Marshal(txJSON{Module: t.module, Method: t.method, Args: t.args})
}

// SigningPayload is the text handed to air-gapped signers.
func (t *Tx) SigningPayload(signer string) string {
	body, _ := json.Marshal(struct {
		Signer string `json:"signer"`
		Call   *Tx    `json:"call"`
	}{signer, t})
	return string(body)
}

// TransferTx moves amount (in base units) to the destination account.
func TransferTx(to string, amount *big.Int) *Tx {
	if amount == nil {
		amount = big.NewInt(0)
	}
	return NewTx("balances", "transfer", to, amount.String())
}

// MemberMetadata is the off-chain profile attached to updateProfile.
type MemberMetadata struct {
	Name      *string `json:"name,omitempty"`
	About     *string `json:"about,omitempty"`
	AvatarURI *string `json:"avatarUri,omitempty"`
}

// UpdateProfileTx updates a member's handle and metadata. A nil handle leaves it unchanged.
func UpdateProfileTx(memberID string, handle *string, meta MemberMetadata) *Tx {
	return NewTx("members", "updateProfile", memberID, handle, meta)
}

// PostRef locates a forum post for deletion.
type PostRef struct {
	CategoryID string
	ThreadID   string
	PostID     string
	Hide       bool
}

// DeletePostsTx removes posts authored by the given forum user.
func DeletePostsTx(forumUserID string, posts []PostRef, rationale string) *Tx {
	refs := make([][]any, 0, len(posts))
	for _, p := range posts {
		refs = append(refs, []any{p.CategoryID, p.ThreadID, p.PostID, p.Hide})
	}
	return NewTx("forum", "deletePosts", forumUserID, refs, rationale)
}

// StakePolicy is the stake required from applicants of an opening.
type StakePolicy struct {
	StakeAmount            string `json:"stakeAmount"`
	LeavingUnstakingPeriod uint32 `json:"leavingUnstakingPeriod"`
}

// AddOpeningTx posts a new opening on the given working group pallet.
func AddOpeningTx(group, description, openingType string, stake StakePolicy, rewardPerBlock *big.Int) *Tx {
	var reward any
	if rewardPerBlock != nil {
		reward = rewardPerBlock.String()
	}
	return NewTx(group, "addOpening", description, openingType, stake, reward)
}
