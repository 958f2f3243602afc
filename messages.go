package main

import (
	"math/big"

	"pioneer-tui/fee"
	"pioneer-tui/form"
	"pioneer-tui/query"
	"pioneer-tui/rpc"
)

// -------------------- TEA MESSAGES --------------------
// All custom message types for The Elm Architecture

// clipboardCopiedMsg indicates clipboard copy completed
type clipboardCopiedMsg struct{}

// clearClipboard clears the clipboard feedback
type clearClipboard struct{}

// logInitMsg signals that log viewport should be initialized
type logInitMsg struct{}

// logMsg asks the model to write a log line; flows use it since they have no logger
type logMsg struct {
	level string
	text  string
}

// nodeConnectedMsg contains result of the node connection attempt
type nodeConnectedMsg struct {
	client *rpc.Client
	err    error
}

// signerDialedMsg contains result of dialing the signer service
type signerDialedMsg struct {
	signer *rpc.Signer
	err    error
}

// membersLoadedMsg contains the memberships controlled by the configured accounts
type membersLoadedMsg struct {
	members []query.Member
	err     error
}

// balancesLoadedMsg contains transferable balances by address
type balancesLoadedMsg struct {
	balances map[string]*big.Int
	err      error
}

// groupsLoadedMsg contains the data of the working groups page
type groupsLoadedMsg struct {
	openings     []query.Opening
	groups       []query.WorkingGroup
	applications []query.Application
	roles        []query.Worker
	err          error
}

// groupEventsLoadedMsg contains the events of one working group
type groupEventsLoadedMsg struct {
	groupID string
	events  query.GroupEvents
	err     error
}

// councilsLoadedMsg contains the past councils
type councilsLoadedMsg struct {
	councils []query.Council
	err      error
}

// councilMembersLoadedMsg contains the vote tallies of one past council
type councilMembersLoadedMsg struct {
	councilID string
	members   []query.PastCouncilMember
	err       error
}

// postsLoadedMsg contains the posts of one member
type postsLoadedMsg struct {
	memberID string
	posts    []query.Post
	err      error
}

// chainDataChangedMsg is sent after a transaction succeeded so pages reload
type chainDataChangedMsg struct{}

// -------------------- FLOW MESSAGES --------------------
// Routed to the active modal flow

// feeEstimatedMsg is a fee estimate tagged with its transaction id
type feeEstimatedMsg struct {
	result fee.Result
}

// txSubmittedMsg contains the outcome of signAndSend for one transaction
type txSubmittedMsg struct {
	txID   string
	result rpc.SubmitResult
	err    error
}

// handleSizeMsg is the storage size under a handle's hash
type handleSizeMsg struct {
	handle string
	size   int
	err    error
}

// postParentsMsg contains the category and thread of a post
type postParentsMsg struct {
	postID  string
	parents query.PostParents
	err     error
}

// accountBalanceMsg contains the transferable balance of one account
type accountBalanceMsg struct {
	address string
	balance *big.Int
	err     error
}

// openingExportedMsg reports where the opening draft was written
type openingExportedMsg struct {
	path string
	err  error
}

// openingImportedMsg contains a draft read back from disk
type openingImportedMsg struct {
	path  string
	draft form.OpeningDraft
	err   error
}

// memberSwitchedMsg makes a membership the active one
type memberSwitchedMsg struct {
	memberID string
}
