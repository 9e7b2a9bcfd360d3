package oscnet

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test_framed_socket_reassembles_split_write confirms a message split
// across two separate OS-level writes (a half-header then the rest) still
// decodes as exactly one frame on the receiving side.
func Test_framed_socket_reassembles_split_write(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	recv := newFramedSocket(server)

	payload := []byte("hello, framed world")
	frame := make([]byte, 4+len(payload))
	frame[0], frame[1], frame[2], frame[3] = 0, 0, 0, byte(len(payload))
	copy(frame[4:], payload)

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Split the write mid-header and mid-payload so the reader must
		// buffer across multiple short reads to reassemble one frame.
		client.Write(frame[:2])
		time.Sleep(10 * time.Millisecond)
		client.Write(frame[2:10])
		time.Sleep(10 * time.Millisecond)
		client.Write(frame[10:])
	}()

	buf, _, err := recv.Receive(time.Second)
	require.NoError(t, err)
	assert.Equal(t, payload, buf)
	<-done
}

func Test_framed_socket_rejects_oversized_frame_header(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	recv := newFramedSocket(server)

	var hdr [4]byte
	hdr[0] = 0xFF // absurd size, well past MaxFrameSize
	go client.Write(hdr[:])

	_, _, err := recv.Receive(time.Second)
	assert.Error(t, err)
}
