package form

import (
	"pioneer-tui/chain"
	"pioneer-tui/query"
)

// Membership form fields.
const (
	FieldName      = "name"
	FieldHandle    = "handle"
	FieldAbout     = "about"
	FieldAvatarURI = "avatarURI"
)

// MemberFields lists the editable membership fields in display order.
var MemberFields = []string{FieldName, FieldHandle, FieldAbout, FieldAvatarURI}

// UpdateMemberDraft seeds the edit form from the member's current profile.
func UpdateMemberDraft(m query.Member) Draft {
	return Draft{
		"id":           m.ID,
		FieldName:      m.Name,
		FieldHandle:    m.Handle,
		FieldAbout:     m.About,
		FieldAvatarURI: m.Avatar,
	}
}

// UpdateMemberContext carries the values validation depends on besides the
// draft itself. Size is the storage size of the member id stored under the
// draft handle's hash; zero means the handle is free.
type UpdateMemberContext struct {
	Size            int
	IsHandleChanged bool
}

// ValidateUpdateMember checks the membership edit form. The handle is only
// checked when it was changed.
func ValidateUpdateMember(d Draft, ctx UpdateMemberContext) Errors {
	errs := Errors{}
	if ctx.IsHandleChanged {
		if err := validate.Var(d[FieldHandle], "required"); err != nil {
			errs.add(FieldHandle, "Handle is required")
		} else if ctx.Size != 0 {
			errs.add(FieldHandle, "This handle is already taken")
		}
	}
	if err := validate.Var(d[FieldAvatarURI], "omitempty,url"); err != nil {
		errs.add(FieldAvatarURI, "Invalid URL")
	}
	return errs
}

// UpdateMemberTx builds the updateProfile call. Fields equal to baseline are
// left unset so the chain keeps their current value.
func UpdateMemberTx(d Draft, baseline Draft) *chain.Tx {
	changed := func(field string) *string {
		if d[field] == baseline[field] {
			return nil
		}
		v := d[field]
		return &v
	}
	return chain.UpdateProfileTx(d["id"], changed(FieldHandle), chain.MemberMetadata{
		Name:      changed(FieldName),
		About:     changed(FieldAbout),
		AvatarURI: changed(FieldAvatarURI),
	})
}
