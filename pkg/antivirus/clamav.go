package antivirus

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// clamd rejects streams above StreamMaxLength; chunks stay well below it.
const chunkSize = 1 << 20

var ErrScanFailed = errors.New("malware scan failed")

// ClamAVScanner talks to a clamd daemon over the INSTREAM protocol.
type ClamAVScanner struct {
	address string
	timeout time.Duration
}

var _ Scanner = (*ClamAVScanner)(nil)

// NewClamAVScanner accepts a TCP "host:port" or a unix socket path.
func NewClamAVScanner(address string, timeout time.Duration) *ClamAVScanner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ClamAVScanner{address: address, timeout: timeout}
}

func (c *ClamAVScanner) Name() string { return "clamav" }

func (c *ClamAVScanner) dial(ctx context.Context, timeout time.Duration) (net.Conn, error) {
	network := "tcp"
	if strings.HasPrefix(c.address, "/") {
		network = "unix"
	}
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, network, c.address)
	if err != nil {
		return nil, err
	}
	deadline := time.Now().Add(timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	_ = conn.SetDeadline(deadline)
	return conn, nil
}

// Available sends PING and expects PONG.
func (c *ClamAVScanner) Available(ctx context.Context) bool {
	conn, err := c.dial(ctx, 5*time.Second)
	if err != nil {
		return false
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("zPING\x00")); err != nil {
		return false
	}
	reply, err := bufio.NewReader(conn).ReadString(0)
	if err != nil && reply == "" {
		return false
	}
	return strings.HasPrefix(reply, "PONG")
}

func (c *ClamAVScanner) Scan(ctx context.Context, filename string, data []byte) (string, error) {
	conn, err := c.dial(ctx, c.timeout)
	if err != nil {
		return "", fmt.Errorf("%w: connect to clamd: %v", ErrScanFailed, err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("zINSTREAM\x00")); err != nil {
		return "", fmt.Errorf("%w: send command: %v", ErrScanFailed, err)
	}

	size := make([]byte, 4)
	for start := 0; start < len(data); start += chunkSize {
		end := min(start+chunkSize, len(data))
		binary.BigEndian.PutUint32(size, uint32(end-start))
		if _, err := conn.Write(size); err != nil {
			return "", fmt.Errorf("%w: send chunk size: %v", ErrScanFailed, err)
		}
		if _, err := conn.Write(data[start:end]); err != nil {
			return "", fmt.Errorf("%w: send chunk: %v", ErrScanFailed, err)
		}
	}
	if _, err := conn.Write([]byte{0, 0, 0, 0}); err != nil {
		return "", fmt.Errorf("%w: send end marker: %v", ErrScanFailed, err)
	}

	reply, err := bufio.NewReader(conn).ReadString(0)
	if err != nil && reply == "" {
		return "", fmt.Errorf("%w: read reply for %s: %v", ErrScanFailed, filename, err)
	}
	return parseReply(reply)
}

// parseReply understands "stream: OK", "stream: <name> FOUND" and
// "<message> ERROR".
func parseReply(reply string) (string, error) {
	reply = strings.TrimSpace(strings.TrimRight(reply, "\x00"))
	switch {
	case strings.HasSuffix(reply, "FOUND"):
		threat := strings.TrimSuffix(reply, "FOUND")
		if _, after, ok := strings.Cut(threat, ":"); ok {
			threat = after
		}
		threat = strings.TrimSpace(threat)
		if threat == "" {
			threat = "unknown"
		}
		return threat, nil
	case strings.HasSuffix(reply, "OK"):
		return "", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrScanFailed, reply)
	}
}
