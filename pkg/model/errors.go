package model

import "github.com/m-mizutani/goerr/v2"

var (
	ErrEmptyQuery         = goerr.New("query is empty")
	ErrQueryDenied        = goerr.New("query denied by policy")
	ErrConnectionSevered  = goerr.New("the connection to the beyond was severed")
	ErrInvalidResultType  = goerr.New("invalid result type")
	ErrInvalidResult      = goerr.New("invalid oracle result")
	ErrInvalidHistoryItem = goerr.New("invalid history item")
	ErrHistoryNotFound    = goerr.New("history item not found")
)

// SeveredMessage is the only text shown to a user when a query fails
const SeveredMessage = "The connection to the beyond was severed. Try again."
