package models

// State is a node of the dialogue state machine.
type State string

const (
	StateInitial                 State = "initial"
	StateAskingEmail             State = "asking_email"
	StateStageSelection          State = "stage_selection"
	StatePost10th                State = "post_10th"
	StatePost10thClarification   State = "post_10th_clarification"
	StatePost10thGroupSelection  State = "post_10th_group_selection"
	StatePost10thMPC             State = "post_10th_mpc"
	StatePost10thBiPC            State = "post_10th_bipc"
	StatePost10thCommerce        State = "post_10th_commerce"
	StatePost12th                State = "post_12th"
	StatePost12thStreamProvided  State = "post_12th_stream_provided"
	StateUndergraduate           State = "undergraduate"
	StatePostgraduate            State = "postgraduate"
	StatePostgraduateOptions     State = "postgraduate_options"
	StateAwaitingCourseEnjoyment State = "awaiting_course_enjoyment_response"
	StateUndergraduateOptions    State = "undergraduate_options"
)

// AllStates lists every state in declaration order.
var AllStates = []State{
	StateInitial,
	StateAskingEmail,
	StateStageSelection,
	StatePost10th,
	StatePost10thClarification,
	StatePost10thGroupSelection,
	StatePost10thMPC,
	StatePost10thBiPC,
	StatePost10thCommerce,
	StatePost12th,
	StatePost12thStreamProvided,
	StateUndergraduate,
	StatePostgraduate,
	StatePostgraduateOptions,
	StateAwaitingCourseEnjoyment,
	StateUndergraduateOptions,
}

// Valid reports whether s is one of the known states.
func (s State) Valid() bool {
	for _, known := range AllStates {
		if s == known {
			return true
		}
	}
	return false
}

// Control names the host-rendered input a state expects besides free text.
type Control string

const (
	ControlNone              Control = "none"
	ControlStageButtons      Control = "stage_buttons"
	ControlUndergraduateForm Control = "undergraduate_form"
	ControlPostgraduateForm  Control = "postgraduate_form"
)

// Stage is an educational stage offered by the stage buttons.
type Stage string

const (
	StagePost10th      Stage = "Post-10th"
	StagePost12th      Stage = "Post-12th"
	StageUndergraduate Stage = "Undergraduate"
	StagePostgraduate  Stage = "Postgraduate"
)

// Stages lists the stage buttons in display order.
var Stages = []Stage{StagePost10th, StagePost12th, StageUndergraduate, StagePostgraduate}

// YearsOfStudy lists the options of the undergraduate year selector.
var YearsOfStudy = []string{"1st Year", "2nd Year", "3rd Year", "4th Year"}
