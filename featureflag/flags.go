package featureflag

type Flag string

const (
	FlagDisableSessionState              Flag = "DISABLE_SESSION_STATE"
	FlagDisableParticipantJoinBroadcast  Flag = "DISABLE_PARTICIPANT_JOIN_BROADCAST"
	FlagDisableParticipantLeaveBroadcast Flag = "DISABLE_PARTICIPANT_LEAVE_BROADCAST"
	FlagDisableBodyAddBroadcast          Flag = "DISABLE_BODY_ADD_BROADCAST"
	FlagDisableBodyRemoveBroadcast       Flag = "DISABLE_BODY_REMOVE_BROADCAST"
	FlagDisableBodyMoveBroadcast         Flag = "DISABLE_BODY_MOVE_BROADCAST"
)
