// Package notify shows desktop notifications for action outcomes.
package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"

	"quickactions/internal/core"
	"quickactions/pkg/text"
)

const (
	notificationsService = "org.freedesktop.Notifications"
	notificationsPath    = "/org/freedesktop/Notifications"
	notifyMethod         = notificationsService + ".Notify"

	// MaxTitleLength and MaxBodyLength keep toasts readable on small popups.
	MaxTitleLength = 80
	MaxBodyLength  = 200

	urgencyNormal   byte = 1
	urgencyCritical byte = 2
)

// Service is a Notifier holding resources that must be released.
type Service interface {
	core.Notifier
	Close() error
}

// New returns a D-Bus notifier, or a log-only notifier when notifications are
// disabled or no session bus is reachable.
func New(config *core.NotificationConfig, appName string, logger *zap.Logger) Service {
	if !config.Enabled {
		logger.Info("Desktop notifications disabled")
		return NewLogNotifier(logger)
	}

	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		logger.Warn("Session bus unavailable, notifications go to the log only", zap.Error(err))
		return NewLogNotifier(logger)
	}

	notifier := NewDBusNotifier(conn.Object(notificationsService, notificationsPath), appName, config.TimeoutMs, logger)
	notifier.conn = conn
	return notifier
}

// busObject is the part of dbus.BusObject the notifier calls.
type busObject interface {
	CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// DBusNotifier sends notifications to org.freedesktop.Notifications. Each
// notification replaces the previous one so rapid actions do not stack.
type DBusNotifier struct {
	object    busObject
	conn      *dbus.Conn
	appName   string
	timeoutMs int
	logger    *zap.Logger

	mutex  sync.Mutex
	lastID uint32
}

func NewDBusNotifier(object busObject, appName string, timeoutMs int, logger *zap.Logger) *DBusNotifier {
	return &DBusNotifier{
		object:    object,
		appName:   appName,
		timeoutMs: timeoutMs,
		logger:    logger,
	}
}

func (n *DBusNotifier) Notify(ctx context.Context, notification core.Notification) error {
	title, body := format(notification)

	urgency := urgencyNormal
	if notification.Urgent {
		urgency = urgencyCritical
	}
	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(urgency),
	}

	n.mutex.Lock()
	defer n.mutex.Unlock()

	call := n.object.CallWithContext(ctx, notifyMethod, 0,
		n.appName,
		n.lastID,
		"",
		title,
		body,
		[]string{},
		hints,
		int32(n.timeoutMs), //nolint:gosec // timeout is validated to a small non-negative value
	)
	if call.Err != nil {
		return fmt.Errorf("sending notification: %w", call.Err)
	}

	var id uint32
	if err := call.Store(&id); err != nil {
		return fmt.Errorf("reading notification id: %w", err)
	}
	n.lastID = id

	n.logger.Debug("Notification shown",
		zap.Uint32("id", id),
		zap.String("title", title))
	return nil
}

func (n *DBusNotifier) Close() error {
	if n.conn == nil {
		return nil
	}
	return n.conn.Close()
}

// LogNotifier writes notifications to the log.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, notification core.Notification) error {
	title, body := format(notification)
	n.logger.Info("Notification",
		zap.String("title", title),
		zap.String("body", body),
		zap.Bool("urgent", notification.Urgent))
	return nil
}

func (n *LogNotifier) Close() error {
	return nil
}

func format(notification core.Notification) (title, body string) {
	return text.Truncate(text.Clean(notification.Title), MaxTitleLength),
		text.Truncate(text.Clean(notification.Body), MaxBodyLength)
}
