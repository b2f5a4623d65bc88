package http

// 业务码: 前三位对应 http 状态, 末位区分具体原因
var (
	Success = code(200, "Request Success")

	BadRequest        = code(4000, "Bad request")
	InvalidArgument   = code(4001, "Invalid argument")
	InvalidVoteType   = code(4002, "Invalid vote type")
	RequesterRequired = code(4003, "X-User-Id header is required")
	NotFound          = code(4004, "Not found")
	MalformedBody     = code(4005, "Request body can not be parsed")

	Forbidden = code(4030, "Forbidden")

	DuplicateVote     = code(4091, "User has already voted for this idea")
	AlreadyMember     = code(4092, "User is already a team member")
	NotMember         = code(4093, "User is not a team member")
	DuplicateBookmark = code(4094, "Idea is already bookmarked")

	InvalidTransition = code(4221, "Invalid status transition")
	NotSubmittable    = code(4222, "Idea can not be submitted")
	BudgetNotAllowed  = code(4223, "Budget can not be approved in current status")
	UserNotExist      = code(4224, "User does not exist")
	NotEditable       = code(4225, "Idea is no longer editable")

	InternalError        = code(5000, "Internal error, please contact the administrator")
	DirectoryUnavailable = code(5031, "User directory is unavailable")
	ShuttingDown         = code(5032, "Service is shutting down")
)

func code(c int, msg string) *Response {
	return &Response{Code: c, Msg: msg}
}
