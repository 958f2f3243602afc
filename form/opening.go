package form

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"

	"pioneer-tui/chain"
	"pioneer-tui/helpers"
	"pioneer-tui/machine"
)

// OpeningDraft is the create opening wizard, one section per step.
type OpeningDraft struct {
	WorkingGroupAndDescription WorkingGroupAndDescription `json:"workingGroupAndDescription"`
	DurationAndProcess         DurationAndProcess         `json:"durationAndProcess"`
	ApplicationForm            ApplicationForm            `json:"applicationForm"`
	StakingPolicyAndReward     StakingPolicyAndReward     `json:"stakingPolicyAndReward"`
}

type WorkingGroupAndDescription struct {
	Title            string `json:"title" validate:"required,max=55"`
	ShortDescription string `json:"shortDescription" validate:"required,max=150"`
	Description      string `json:"description" validate:"required"`
}

type DurationAndProcess struct {
	Details   string `json:"details" validate:"required"`
	IsLimited bool   `json:"isLimited"`
	Duration  uint32 `json:"duration" validate:"required_if=IsLimited true"`
	Target    int    `json:"target"`
}

type Question struct {
	Question   string `json:"question" validate:"required"`
	ShortValue bool   `json:"shortValue"`
}

type ApplicationForm struct {
	Questions []Question `json:"questions" validate:"min=1,dive"`
}

type StakingPolicyAndReward struct {
	StakingAmount          string `json:"stakingAmount" validate:"required"`
	LeavingUnstakingPeriod uint32 `json:"leavingUnstakingPeriod" validate:"required"`
	RewardPerBlock         string `json:"rewardPerBlock" validate:"required"`
}

// OpeningConditions are the chain limits an opening must satisfy.
type OpeningConditions struct {
	Group              string
	HiringTarget       int
	MinStake           *big.Int
	MinUnstakingPeriod uint32
	Decimals           int32
}

// DefaultOpening returns an empty draft with a single application question.
func DefaultOpening() OpeningDraft {
	return OpeningDraft{
		DurationAndProcess: DurationAndProcess{Target: 1},
		ApplicationForm: ApplicationForm{
			Questions: []Question{{ShortValue: true}},
		},
	}
}

var openingMessages = map[string]string{
	"title.required":            "Opening title is required",
	"shortDescription.required": "Short description is required",
	"description.required":      "Description is required",
	"details.required":          "Process details are required",
	"duration.required_if":      "Duration is required for a limited opening",
	"questions.min":             "Add at least one question",
	"question.required":         "Question is required",
}

// ValidateOpeningStep checks the section edited in step. Steps outside the
// wizard have nothing to check.
func ValidateOpeningStep(step machine.State, d OpeningDraft, cond OpeningConditions) Errors {
	errs := Errors{}
	switch step {
	case machine.WorkingGroupAndDescription:
		collect(validate.Struct(d.WorkingGroupAndDescription), errs, "workingGroupAndDescription", openingMessages)
	case machine.DurationAndProcess:
		collect(validate.Struct(d.DurationAndProcess), errs, "durationAndProcess", openingMessages)
		if d.DurationAndProcess.Target < cond.HiringTarget {
			errs.add("durationAndProcess.target", fmt.Sprintf("Hiring target must be at least %d", cond.HiringTarget))
		}
	case machine.ApplicationForm:
		collect(validate.Struct(d.ApplicationForm), errs, "applicationForm", openingMessages)
	case machine.StakingPolicyAndReward:
		s := d.StakingPolicyAndReward
		collect(validate.Struct(s), errs, "stakingPolicyAndReward", openingMessages)
		if !errs.Has("stakingPolicyAndReward.stakingAmount") {
			stake, err := helpers.ParseTokens(s.StakingAmount, cond.Decimals)
			switch {
			case err != nil:
				errs.add("stakingPolicyAndReward.stakingAmount", err.Error())
			case cond.MinStake != nil && stake.Cmp(cond.MinStake) < 0:
				errs.add("stakingPolicyAndReward.stakingAmount",
					"Minimal stake amount is "+helpers.FormatTokens(cond.MinStake, cond.Decimals, ""))
			}
		}
		if !errs.Has("stakingPolicyAndReward.leavingUnstakingPeriod") && s.LeavingUnstakingPeriod < cond.MinUnstakingPeriod {
			errs.add("stakingPolicyAndReward.leavingUnstakingPeriod",
				fmt.Sprintf("Minimal period is %d blocks", cond.MinUnstakingPeriod))
		}
		if !errs.Has("stakingPolicyAndReward.rewardPerBlock") {
			if _, err := helpers.ParseTokens(s.RewardPerBlock, cond.Decimals); err != nil {
				errs.add("stakingPolicyAndReward.rewardPerBlock", err.Error())
			}
		}
	}
	return errs
}

// ValidateOpening checks every section.
func ValidateOpening(d OpeningDraft, cond OpeningConditions) Errors {
	errs := Errors{}
	for _, step := range []machine.State{
		machine.WorkingGroupAndDescription,
		machine.DurationAndProcess,
		machine.ApplicationForm,
		machine.StakingPolicyAndReward,
	} {
		for k, v := range ValidateOpeningStep(step, d, cond) {
			errs.add(k, v)
		}
	}
	return errs
}

// ExportJSON encodes the draft as it is, valid or not.
func ExportJSON(d OpeningDraft) ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// ImportJSON decodes an exported draft. Sections missing from data keep
// their default values.
func ImportJSON(data []byte) (OpeningDraft, error) {
	d := DefaultOpening()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&d); err != nil {
		return OpeningDraft{}, fmt.Errorf("import opening: %w", err)
	}
	return d, nil
}

type openingMetadata struct {
	Title              string     `json:"title"`
	ShortDescription   string     `json:"shortDescription"`
	Description        string     `json:"description"`
	HiringLimit        int        `json:"hiringLimit"`
	ExpectedDuration   uint32     `json:"expectedEndingBlock,omitempty"`
	ApplicationDetails string     `json:"applicationDetails"`
	Questions          []Question `json:"applicationFormQuestions"`
}

// OpeningParams are the arguments of addOpening.
type OpeningParams struct {
	Description    string
	StakePolicy    chain.StakePolicy
	RewardPerBlock *big.Int
}

// OpeningTxParams converts a valid draft into addOpening arguments.
func OpeningTxParams(d OpeningDraft, cond OpeningConditions) (OpeningParams, error) {
	if errs := ValidateOpening(d, cond); !errs.Valid() {
		return OpeningParams{}, fmt.Errorf("invalid opening: %s", errs)
	}

	meta := openingMetadata{
		Title:              d.WorkingGroupAndDescription.Title,
		ShortDescription:   d.WorkingGroupAndDescription.ShortDescription,
		Description:        d.WorkingGroupAndDescription.Description,
		HiringLimit:        d.DurationAndProcess.Target,
		ApplicationDetails: d.DurationAndProcess.Details,
		Questions:          d.ApplicationForm.Questions,
	}
	if d.DurationAndProcess.IsLimited {
		meta.ExpectedDuration = d.DurationAndProcess.Duration
	}
	desc, err := json.Marshal(meta)
	if err != nil {
		return OpeningParams{}, err
	}

	stake, _ := helpers.ParseTokens(d.StakingPolicyAndReward.StakingAmount, cond.Decimals)
	reward, _ := helpers.ParseTokens(d.StakingPolicyAndReward.RewardPerBlock, cond.Decimals)
	return OpeningParams{
		Description: string(desc),
		StakePolicy: chain.StakePolicy{
			StakeAmount:            stake.String(),
			LeavingUnstakingPeriod: d.StakingPolicyAndReward.LeavingUnstakingPeriod,
		},
		RewardPerBlock: reward,
	}, nil
}

// OpeningTx builds the addOpening call for cond.Group.
func OpeningTx(d OpeningDraft, cond OpeningConditions) (*chain.Tx, error) {
	p, err := OpeningTxParams(d, cond)
	if err != nil {
		return nil, err
	}
	return chain.AddOpeningTx(cond.Group, p.Description, "Regular", p.StakePolicy, p.RewardPerBlock), nil
}
