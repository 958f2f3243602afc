package main

import (
	"fmt"

	"pioneer-tui/chain"
	"pioneer-tui/machine"
	"pioneer-tui/query"
	"pioneer-tui/views/modals"

	tea "github.com/charmbracelet/bubbletea"
)

// deletePostFlow deletes one of the active member's forum posts. The post's
// thread and category are looked up first since the call needs them.
type deletePostFlow struct {
	*txAction
	post query.Post
}

func newDeletePostFlow(post query.Post, payer string) *deletePostFlow {
	return &deletePostFlow{
		txAction: newTxAction(machine.PostActionChart(), payer),
		post:     post,
	}
}

func (f *deletePostFlow) Init(ctx flowContext) tea.Cmd {
	return loadPostParents(ctx.posts, f.post.ID)
}

func (f *deletePostFlow) Update(ctx flowContext, msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case postParentsMsg:
		if msg.postID != f.post.ID {
			return nil, false
		}
		if msg.err != nil {
			f.setupErr = msg.err
			return logCmd("error", "Post lookup failed: "+msg.err.Error()), false
		}
		tx := chain.DeletePostsTx(f.post.AuthorID, []chain.PostRef{{
			CategoryID: msg.parents.CategoryID,
			ThreadID:   msg.parents.ThreadID,
			PostID:     f.post.ID,
			Hide:       true,
		}}, "")
		return f.track(ctx, tx), false

	case feeEstimatedMsg:
		if f.acceptFee(msg) {
			f.verify(machine.Pass)
		}
		return nil, false

	case txSubmittedMsg:
		return f.submitted(msg, fmt.Sprintf("Post #%s deleted", f.post.ID)), false

	case tea.KeyMsg:
		cmd, done, _ := f.handleKey(ctx, msg, nil)
		return cmd, done
	}
	return nil, false
}

func (f *deletePostFlow) View(ctx flowContext) string {
	return f.render(ctx, "Delete post",
		"The post has been deleted.",
		"There was a problem deleting your post.",
		func() string { return "" },
		func() string {
			v := f.signView(ctx, "Authorize transaction", "You intend to delete your post.", "Sign transaction and Delete", nil)
			v.Fields = []modals.Field{
				{Label: "Post", Value: "#" + f.post.ID},
				{Label: "Controller account", Value: f.payer},
			}
			return modals.Sign(v)
		},
	)
}
