package groups

import (
	"math/big"
	"testing"

	"pioneer-tui/query"

	"github.com/stretchr/testify/assert"
)

func TestBudget(t *testing.T) {
	gs := []query.WorkingGroup{
		{ID: "forumWorkingGroup", Budget: big.NewInt(300)},
		{ID: "storageWorkingGroup"},
		{ID: "membershipWorkingGroup", Budget: big.NewInt(20)},
	}
	assert.Equal(t, "320", Budget(gs).String())
	assert.Equal(t, "0", Budget(nil).String())
}

func TestColumnsPerTab(t *testing.T) {
	for _, tab := range []int{TabOpenings, TabApplications, TabRoles} {
		assert.NotEmpty(t, Columns(tab))
	}
}
