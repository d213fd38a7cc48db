package network

// Message IDs on the gateway wire. 1xx are client requests, 2xx are server
// pushes, 5xx are errors.
const (
	MsgTypeHeartbeat = 1

	MsgTypeNewGame      = 101
	MsgTypeJoinGame     = 102
	MsgTypeQuitGame     = 103
	MsgTypeStartGame    = 104
	MsgTypeGameAction   = 105
	MsgTypeConfirmReply = 106

	MsgTypeChannelState   = 201
	MsgTypePrivateNotice  = 202
	MsgTypeConfirmRequest = 203

	MsgTypeError = 500
)
