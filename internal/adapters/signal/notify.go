package signal

import (
	"context"
	"encoding/json"

	"github.com/dkeye/Ring/internal/app/call"
	"github.com/dkeye/Ring/internal/domain"
	"github.com/dkeye/Ring/internal/metrics"
)

// The hub is the engine's Notifier: every engine outcome becomes a
// wire event addressed to a user's current connection.
var _ call.Notifier = (*Hub)(nil)

func (h *Hub) toUser(uid domain.UserID, v any) bool {
	conn, ok := h.connOf(uid)
	if !ok {
		return false
	}
	return h.sendJSON(conn, v)
}

func (h *Hub) IncomingCall(to domain.UserID, inv call.Invitation) bool {
	return h.toUser(to, incomingCallEvent{
		Type:             evCallIncoming,
		CallID:           inv.CallID,
		CallerID:         inv.CallerID,
		TargetUserID:     inv.TargetID,
		CallType:         inv.Type,
		CallerName:       inv.Caller.DisplayName,
		CallerProfilePic: inv.Caller.AvatarURL,
	})
}

func (h *Hub) CallAccepted(to domain.UserID, ans call.Answer) bool {
	metrics.CallsTotal.WithLabelValues("accepted").Inc()
	return h.toUser(to, callAcceptedEvent{
		Type:             evCallAccepted,
		CallID:           ans.CallID,
		TargetUserID:     ans.TargetID,
		TargetName:       ans.Target.DisplayName,
		TargetProfilePic: ans.Target.AvatarURL,
	})
}

func (h *Hub) CallRejected(to domain.UserID, target domain.UserID) {
	metrics.CallsTotal.WithLabelValues("rejected").Inc()
	h.toUser(to, callRejectedEvent{Type: evCallRejected, TargetUserID: target})
}

func (h *Hub) CallEnded(to domain.UserID, id domain.CallID) {
	h.toUser(to, callEndedEvent{Type: evCallEnded, CallID: id})
}

func (h *Hub) UserBusy(to domain.UserID, target domain.UserID) {
	metrics.CallsTotal.WithLabelValues("busy").Inc()
	h.toUser(to, userBusyEvent{Type: evUserBusy, TargetUserID: target})
}

func (h *Hub) UserOffline(to domain.UserID, target domain.UserID) {
	metrics.CallsTotal.WithLabelValues("offline").Inc()
	h.toUser(to, userBusyEvent{Type: evUserOffline, TargetUserID: target})
}

func (h *Hub) Signal(to domain.UserID, payload json.RawMessage) {
	metrics.SignalsRelayed.Inc()
	h.toUser(to, signalEvent{Type: evSignal, Signal: payload})
}

// broadcastRoster publishes the online-user list to every connection
// and mirrors it to the cache off the event path.
func (h *Hub) broadcastRoster() {
	ids := h.registry.Snapshot()
	h.Broadcast(rosterEvent{Type: evOnlineUsers, UserIDs: ids})
	go h.mirror.Publish(context.Background(), ids)
}
