package signal

import (
	"encoding/json"

	"github.com/dkeye/Ring/internal/domain"
)

// Wire event names. Inbound and outbound share the flat envelope
// {"type": "...", ...fields}; names are part of the public contract.
const (
	evPing = "ping"
	evPong = "pong"

	evOnlineUsers = "getOnlineUsers"

	evJoinGroups = "joinGroups"
	evLeaveGroup = "leaveGroup"

	evCallInitiate = "call:initiate"
	evCallAccept   = "call:accept"
	evCallReject   = "call:reject"
	evCallEnd      = "call:end"

	evCallIncoming = "call:incoming"
	evCallAccepted = "call:accepted"
	evCallRejected = "call:rejected"
	evCallEnded    = "call:ended"
	evUserBusy     = "call:user-busy"
	evUserOffline  = "call:user-offline"

	evSignal = "webrtc:signal"

	evMessageSend = "message:send"
	evNewMessage  = "newMessage"

	evError = "error"
)

type pingAck struct {
	Type string `json:"type"`
}

type errEvent struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

type rosterEvent struct {
	Type    string          `json:"type"`
	UserIDs []domain.UserID `json:"userIds"`
}

type incomingCallEvent struct {
	Type             string          `json:"type"`
	CallID           domain.CallID   `json:"callId"`
	CallerID         domain.UserID   `json:"callerId"`
	TargetUserID     domain.UserID   `json:"targetUserId"`
	CallType         domain.CallType `json:"callType"`
	CallerName       string          `json:"callerName,omitempty"`
	CallerProfilePic string          `json:"callerProfilePic,omitempty"`
}

type callAcceptedEvent struct {
	Type             string        `json:"type"`
	CallID           domain.CallID `json:"callId"`
	TargetUserID     domain.UserID `json:"targetUserId"`
	TargetName       string        `json:"targetName,omitempty"`
	TargetProfilePic string        `json:"targetProfilePic,omitempty"`
}

type callRejectedEvent struct {
	Type         string        `json:"type"`
	TargetUserID domain.UserID `json:"targetUserId"`
}

type callEndedEvent struct {
	Type   string        `json:"type"`
	CallID domain.CallID `json:"callId"`
}

type userBusyEvent struct {
	Type         string        `json:"type"`
	TargetUserID domain.UserID `json:"targetUserId"`
}

type signalEvent struct {
	Type   string          `json:"type"`
	Signal json.RawMessage `json:"signal"`
}
