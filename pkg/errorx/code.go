package errorx

type Code int

// Unknown is returned for every infrastructure failure. The real cause is
// logged server side and never sent to the client.
var Unknown = Error{Code: 100000, Message: "Request failed"}

const (
	// Common codes
	BadRequest       Code = 100001
	BadResponse      Code = 100002
	PermissionDenied Code = 100003
	NotFound         Code = 100004
	Unauthenticated  Code = 100005
	AlreadyExists    Code = 100006
	Internal         Code = 100007
	Unavailable      Code = 100008
	NotImplemented   Code = 100009
	TooManyRequests  Code = 100010

	// Reservation codes. LotUnavailable and DailyQuotaExceeded are contention
	// outcomes, not failures; clients show a specific message and let the user
	// pick another lot or come back tomorrow.
	LotUnavailable     Code = 200001
	DailyQuotaExceeded Code = 200002
	InvalidPin         Code = 200003
	AlreadyFinalized   Code = 200004
)
