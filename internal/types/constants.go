package types

const ContextUserKey = "user"

const (
	ParamUserID    = "userId"
	ParamProjectID = "projectId"
	ParamColumnID  = "columnId"
	ParamCardID    = "cardId"
)
