package mqtt

import "errors"

var (
	// ErrConnectionFailed wraps the reason Connect gave up.
	ErrConnectionFailed = errors.New("mqtt: cannot reach broker")

	// ErrNotConnected is returned while the broker link is down.
	ErrNotConnected = errors.New("mqtt: broker link down")

	// ErrInvalidTopic rejects an empty topic.
	ErrInvalidTopic = errors.New("mqtt: empty topic")

	// ErrInvalidQoS rejects QoS above 2.
	ErrInvalidQoS = errors.New("mqtt: qos out of range")

	// ErrPublishFailed wraps a rejected or unacknowledged publish.
	ErrPublishFailed = errors.New("mqtt: publish not delivered")

	// ErrSubscribeFailed wraps a rejected or unacknowledged subscribe or
	// unsubscribe.
	ErrSubscribeFailed = errors.New("mqtt: subscription change failed")
)
