package transport

import (
	"fmt"
	"net"
	"sync"

	"github.com/hypebeast/go-osc/osc"

	"github.com/nerrad567/myo-osc/internal/dispatch"
)

// OSC sends messages as OSC packets over one connected UDP socket.
//
// Thread Safety: All methods are safe for concurrent use.
type OSC struct {
	mu     sync.Mutex
	conn   net.Conn
	target string
}

// DialOSC opens a UDP socket to target ("host:port").
// UDP is connectionless, so an unreachable target only shows up as
// send errors later.
func DialOSC(target string) (*OSC, error) {
	conn, err := net.Dial("udp", target)
	if err != nil {
		return nil, fmt.Errorf("dialing OSC target %s: %w", target, err)
	}
	return &OSC{conn: conn, target: target}, nil
}

// Send encodes m and writes it as a single datagram.
func (o *OSC) Send(m dispatch.Message) error {
	data, err := ToOSC(m).MarshalBinary()
	if err != nil {
		return fmt.Errorf("encoding %s: %w", m.Address, err)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.conn == nil {
		return ErrClosed
	}
	if _, err := o.conn.Write(data); err != nil {
		return fmt.Errorf("sending %s to %s: %w", m.Address, o.target, err)
	}
	return nil
}

// Close releases the socket. Further sends return ErrClosed.
func (o *OSC) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.conn == nil {
		return nil
	}
	err := o.conn.Close()
	o.conn = nil
	return err
}

// ToOSC converts m to an OSC message. OSC has no 8-bit integer type, so
// Int8 fields travel as int32 ("i") arguments.
func ToOSC(m dispatch.Message) *osc.Message {
	msg := osc.NewMessage(m.Address)
	for _, f := range m.Fields {
		switch v := f.(type) {
		case dispatch.Int8:
			msg.Append(int32(v))
		case dispatch.Float32:
			msg.Append(float32(v))
		case dispatch.String:
			msg.Append(string(v))
		}
	}
	return msg
}
