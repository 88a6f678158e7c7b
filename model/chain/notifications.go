package chain

import (
	"fmt"

	"github.com/copernet/copernicus/model/blockindex"
)

// NotificationType identifies the kind of event carried by a Notification.
type NotificationType int

// NotificationCallback receives chain events registered via Subscribe.
type NotificationCallback func(*Notification)

const (
	// NTBlockConnected indicates the associated block was connected to the
	// active chain.
	NTBlockConnected NotificationType = iota

	// NTBlockDisconnected indicates the associated block was disconnected
	// from the active chain.
	NTBlockDisconnected

	// NTChainTipUpdated indicates the active chain's tip moved; Data is a
	// *TipUpdatedEvent.
	NTChainTipUpdated
)

var notificationTypeStrings = map[NotificationType]string{
	NTBlockConnected:    "NTBlockConnected",
	NTBlockDisconnected: "NTBlockDisconnected",
	NTChainTipUpdated:   "NTChainTipUpdated",
}

func (n NotificationType) String() string {
	if s, ok := notificationTypeStrings[n]; ok {
		return s
	}
	return fmt.Sprintf("unknown notification type (%d)", int(n))
}

// Notification is delivered to every callback registered with Subscribe.
type Notification struct {
	Type NotificationType
	Data interface{}
}

// TipUpdatedEvent is the Data payload of an NTChainTipUpdated notification.
type TipUpdatedEvent struct {
	NewTip              *blockindex.BlockIndex
	ForkPoint           *blockindex.BlockIndex
	IsInitialBlockDownload bool
}

// Subscribe registers callback to be run, in registration order, from
// SendNotification. There is no unsubscribe: the engine's notification
// consumers live for the process lifetime.
func (c *Chain) Subscribe(callback NotificationCallback) {
	c.notifications = append(c.notifications, callback)
}

// SendNotification runs every subscriber with a Notification of the given
// type and data. Callbacks run synchronously, in the caller's goroutine,
// under whatever lock (cs_main) the caller already holds.
func (c *Chain) SendNotification(typ NotificationType, data interface{}) {
	n := Notification{Type: typ, Data: data}
	for _, callback := range c.notifications {
		callback(&n)
	}
}
